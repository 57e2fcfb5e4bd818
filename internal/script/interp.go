// Package script evaluates the consensus opcode subset used by the
// acceleration layer's script operations. The interpreter is a reference
// implementation: deterministic, allocation-light and identical on every
// architecture. Signature checks are delegated to btcec.
package script

import (
	"bytes"
	"crypto/sha1"
	"crypto/sha256"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	btcecdsa "github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"golang.org/x/crypto/ripemd160"
)

// Consensus limits.
const (
	maxScriptSize  = 10000
	maxElementSize = 520
	maxStackSize   = 1000
	maxOpsPerBase  = 201
	maxNumLen      = 4
)

var (
	// ErrScriptTooBig is returned for scripts above the consensus size cap.
	ErrScriptTooBig = errors.New("script: script exceeds maximum size")
	// ErrElementTooBig is returned when a push exceeds the element size cap.
	ErrElementTooBig = errors.New("script: element exceeds maximum size")
	// ErrStackOverflow is returned when combined stack depth exceeds the cap.
	ErrStackOverflow = errors.New("script: stack overflow")
	// ErrStackUnderflow is returned when an opcode pops an empty stack.
	ErrStackUnderflow = errors.New("script: stack underflow")
	// ErrUnbalancedConditional is returned for mismatched IF/ELSE/ENDIF.
	ErrUnbalancedConditional = errors.New("script: unbalanced conditional")
	// ErrEarlyReturn is returned when OP_RETURN executes.
	ErrEarlyReturn = errors.New("script: OP_RETURN executed")
	// ErrVerifyFailed is returned when a VERIFY-class opcode sees a falsy top.
	ErrVerifyFailed = errors.New("script: verify failed")
	// ErrDisabledOpcode is returned when a disabled opcode appears in an
	// executed branch.
	ErrDisabledOpcode = errors.New("script: disabled opcode")
	// ErrReservedOpcode is returned when a reserved opcode executes, or when
	// OP_VERIF or OP_VERNOTIF appears anywhere in the script.
	ErrReservedOpcode = errors.New("script: reserved opcode")
	// ErrTooManyOps is returned when a base script exceeds the operation limit.
	ErrTooManyOps = errors.New("script: too many operations")
	// ErrNumberTooBig is returned when a numeric operand exceeds 4 bytes.
	ErrNumberTooBig = errors.New("script: numeric operand too large")
	// ErrTruncatedPush is returned when a push runs past the script end.
	ErrTruncatedPush = errors.New("script: truncated data push")
	// ErrInvalidSignature is returned in tapscript mode when a non-empty
	// signature fails to verify.
	ErrInvalidSignature = errors.New("script: invalid signature")
)

// Options selects the evaluation rule set.
type Options struct {
	// Tapscript enables the BIP-342 rules: 64-byte Schnorr signatures for
	// CHECKSIG, OP_SUCCESS short-circuiting, OP_CHECKSIGADD, and no
	// operation limit.
	Tapscript bool
}

// Execute evaluates script against sigHash and reports whether it left a
// truthy value on top of the stack. Structural failures (bad pushes,
// unbalanced conditionals, disabled opcodes, OP_RETURN) are errors; an
// orderly run that leaves a falsy or empty stack returns false, nil.
func Execute(script []byte, sigHash [32]byte, opts Options) (bool, error) {
	if len(script) > maxScriptSize {
		return false, fmt.Errorf("%w: %d bytes", ErrScriptTooBig, len(script))
	}

	if opts.Tapscript {
		success, err := scanOpSuccess(script)
		if err != nil {
			return false, err
		}
		if success {
			return true, nil
		}
	}

	vm := &engine{
		script:    script,
		sigHash:   sigHash,
		tapscript: opts.Tapscript,
	}
	if err := vm.run(); err != nil {
		return false, err
	}
	if vm.stack.depth() == 0 {
		return false, nil
	}
	top, _ := vm.stack.pop()
	return asBool(top), nil
}

// scanOpSuccess parses the token stream looking for OP_SUCCESSx opcodes.
// Parse failures here fail the script before evaluation starts.
func scanOpSuccess(script []byte) (bool, error) {
	for pc := 0; pc < len(script); {
		op := script[pc]
		if isOpSuccess(op) {
			return true, nil
		}
		_, next, err := parsePush(script, pc)
		if err != nil {
			return false, err
		}
		pc = next
	}
	return false, nil
}

// parsePush decodes the token at pc and returns its payload (nil for
// non-push opcodes) and the offset of the next token.
func parsePush(script []byte, pc int) ([]byte, int, error) {
	op := script[pc]
	pc++

	var n int
	switch {
	case op <= 0x4b:
		n = int(op)
	case op == OP_PUSHDATA1:
		if pc >= len(script) {
			return nil, 0, ErrTruncatedPush
		}
		n = int(script[pc])
		pc++
	case op == OP_PUSHDATA2:
		if pc+2 > len(script) {
			return nil, 0, ErrTruncatedPush
		}
		n = int(script[pc]) | int(script[pc+1])<<8
		pc += 2
	case op == OP_PUSHDATA4:
		if pc+4 > len(script) {
			return nil, 0, ErrTruncatedPush
		}
		n = int(script[pc]) | int(script[pc+1])<<8 |
			int(script[pc+2])<<16 | int(script[pc+3])<<24
		pc += 4
	default:
		return nil, pc, nil
	}

	if n > maxElementSize {
		return nil, 0, fmt.Errorf("%w: push of %d bytes", ErrElementTooBig, n)
	}
	if pc+n > len(script) {
		return nil, 0, fmt.Errorf("%w: %s wants %d bytes", ErrTruncatedPush, opcodeName(op), n)
	}
	return script[pc : pc+n], pc + n, nil
}

// Branch states for the conditional stack.
const (
	condTrue = iota
	condFalse
	condSkip
)

type engine struct {
	script    []byte
	sigHash   [32]byte
	tapscript bool

	stack     stack
	altStack  stack
	condStack []int
	numOps    int
}

func (vm *engine) executing() bool {
	for _, c := range vm.condStack {
		if c != condTrue {
			return false
		}
	}
	return true
}

func (vm *engine) run() error {
	for pc := 0; pc < len(vm.script); {
		op := vm.script[pc]

		data, next, err := parsePush(vm.script, pc)
		if err != nil {
			return err
		}

		// Disabled opcodes fail the script by presence, executed or not.
		// Under the tapscript rules they all fall in the OP_SUCCESS range
		// and never reach this loop.
		if isDisabled(op) {
			return fmt.Errorf("%s: %w", opcodeName(op), ErrDisabledOpcode)
		}

		// OP_VERIF and OP_VERNOTIF also fail by presence, unlike the other
		// reserved opcodes which fail only when executed.
		if op == OP_VERIF || op == OP_VERNOTIF {
			return fmt.Errorf("%s: %w", opcodeName(op), ErrReservedOpcode)
		}

		if op > OP_16 {
			vm.numOps++
			if !vm.tapscript && vm.numOps > maxOpsPerBase {
				return ErrTooManyOps
			}
		}

		executing := vm.executing()
		switch {
		case op <= OP_PUSHDATA4:
			if executing {
				if err := vm.pushData(data); err != nil {
					return err
				}
			}
		case executing || isConditional(op):
			if err := vm.step(op); err != nil {
				return fmt.Errorf("%s: %w", opcodeName(op), err)
			}
		}
		pc = next
	}

	if len(vm.condStack) != 0 {
		return ErrUnbalancedConditional
	}
	return nil
}

// pushData places data on the main stack, copying out of the script buffer
// so later stack edits cannot alias it.
func (vm *engine) pushData(data []byte) error {
	return vm.push(append([]byte(nil), data...))
}

func (vm *engine) push(item []byte) error {
	if len(item) > maxElementSize {
		return fmt.Errorf("%w: %d bytes", ErrElementTooBig, len(item))
	}
	if vm.stack.depth()+vm.altStack.depth() >= maxStackSize {
		return ErrStackOverflow
	}
	vm.stack.push(item)
	return nil
}

// step executes a single non-push opcode.
func (vm *engine) step(op byte) error {
	switch {
	case op == OP_1NEGATE:
		return vm.push(scriptNum(-1).bytes())
	case op >= OP_1 && op <= OP_16:
		return vm.push(scriptNum(op - OP_1 + 1).bytes())
	case op >= OP_NOP1 && op <= OP_NOP10:
		return nil
	}

	switch op {
	case OP_NOP, OP_CODESEPARATOR:
		return nil

	case OP_RESERVED, OP_VER:
		return ErrReservedOpcode

	case OP_IF, OP_NOTIF:
		if !vm.executing() {
			vm.condStack = append(vm.condStack, condSkip)
			return nil
		}
		top, err := vm.stack.pop()
		if err != nil {
			return err
		}
		cond := asBool(top)
		if op == OP_NOTIF {
			cond = !cond
		}
		if cond {
			vm.condStack = append(vm.condStack, condTrue)
		} else {
			vm.condStack = append(vm.condStack, condFalse)
		}
		return nil

	case OP_ELSE:
		if len(vm.condStack) == 0 {
			return ErrUnbalancedConditional
		}
		switch vm.condStack[len(vm.condStack)-1] {
		case condTrue:
			vm.condStack[len(vm.condStack)-1] = condFalse
		case condFalse:
			vm.condStack[len(vm.condStack)-1] = condTrue
		}
		return nil

	case OP_ENDIF:
		if len(vm.condStack) == 0 {
			return ErrUnbalancedConditional
		}
		vm.condStack = vm.condStack[:len(vm.condStack)-1]
		return nil

	case OP_VERIFY:
		top, err := vm.stack.pop()
		if err != nil {
			return err
		}
		if !asBool(top) {
			return ErrVerifyFailed
		}
		return nil

	case OP_RETURN:
		return ErrEarlyReturn

	case OP_TOALTSTACK:
		item, err := vm.stack.pop()
		if err != nil {
			return err
		}
		vm.altStack.push(item)
		return nil

	case OP_FROMALTSTACK:
		item, err := vm.altStack.pop()
		if err != nil {
			return err
		}
		return vm.push(item)

	case OP_2DROP:
		if _, err := vm.stack.pop(); err != nil {
			return err
		}
		_, err := vm.stack.pop()
		return err

	case OP_2DUP:
		a, b, err := vm.stack.peek2()
		if err != nil {
			return err
		}
		if err := vm.push(dup(a)); err != nil {
			return err
		}
		return vm.push(dup(b))

	case OP_3DUP:
		if vm.stack.depth() < 3 {
			return ErrStackUnderflow
		}
		n := vm.stack.depth()
		for i := n - 3; i < n; i++ {
			if err := vm.push(dup(vm.stack.items[i])); err != nil {
				return err
			}
		}
		return nil

	case OP_2OVER:
		if vm.stack.depth() < 4 {
			return ErrStackUnderflow
		}
		n := vm.stack.depth()
		a, b := dup(vm.stack.items[n-4]), dup(vm.stack.items[n-3])
		if err := vm.push(a); err != nil {
			return err
		}
		return vm.push(b)

	case OP_2ROT:
		if vm.stack.depth() < 6 {
			return ErrStackUnderflow
		}
		n := vm.stack.depth()
		a, b := vm.stack.items[n-6], vm.stack.items[n-5]
		copy(vm.stack.items[n-6:], vm.stack.items[n-4:])
		vm.stack.items[n-2], vm.stack.items[n-1] = a, b
		return nil

	case OP_2SWAP:
		if vm.stack.depth() < 4 {
			return ErrStackUnderflow
		}
		n := vm.stack.depth()
		vm.stack.items[n-4], vm.stack.items[n-2] = vm.stack.items[n-2], vm.stack.items[n-4]
		vm.stack.items[n-3], vm.stack.items[n-1] = vm.stack.items[n-1], vm.stack.items[n-3]
		return nil

	case OP_IFDUP:
		top, err := vm.stack.peek()
		if err != nil {
			return err
		}
		if asBool(top) {
			return vm.push(dup(top))
		}
		return nil

	case OP_DEPTH:
		return vm.push(scriptNum(vm.stack.depth()).bytes())

	case OP_DROP:
		_, err := vm.stack.pop()
		return err

	case OP_DUP:
		top, err := vm.stack.peek()
		if err != nil {
			return err
		}
		return vm.push(dup(top))

	case OP_NIP:
		if vm.stack.depth() < 2 {
			return ErrStackUnderflow
		}
		n := vm.stack.depth()
		vm.stack.items[n-2] = vm.stack.items[n-1]
		vm.stack.items = vm.stack.items[:n-1]
		return nil

	case OP_OVER:
		if vm.stack.depth() < 2 {
			return ErrStackUnderflow
		}
		return vm.push(dup(vm.stack.items[vm.stack.depth()-2]))

	case OP_PICK, OP_ROLL:
		nBytes, err := vm.stack.pop()
		if err != nil {
			return err
		}
		n, err := makeScriptNum(nBytes)
		if err != nil {
			return err
		}
		depth := vm.stack.depth()
		if n < 0 || int(n) >= depth {
			return ErrStackUnderflow
		}
		idx := depth - 1 - int(n)
		item := vm.stack.items[idx]
		if op == OP_ROLL {
			vm.stack.items = append(vm.stack.items[:idx], vm.stack.items[idx+1:]...)
			vm.stack.push(item)
			return nil
		}
		return vm.push(dup(item))

	case OP_ROT:
		if vm.stack.depth() < 3 {
			return ErrStackUnderflow
		}
		n := vm.stack.depth()
		a := vm.stack.items[n-3]
		vm.stack.items[n-3] = vm.stack.items[n-2]
		vm.stack.items[n-2] = vm.stack.items[n-1]
		vm.stack.items[n-1] = a
		return nil

	case OP_SWAP:
		if vm.stack.depth() < 2 {
			return ErrStackUnderflow
		}
		n := vm.stack.depth()
		vm.stack.items[n-2], vm.stack.items[n-1] = vm.stack.items[n-1], vm.stack.items[n-2]
		return nil

	case OP_TUCK:
		x2, err := vm.stack.pop()
		if err != nil {
			return err
		}
		x1, err := vm.stack.pop()
		if err != nil {
			return err
		}
		if err := vm.push(dup(x2)); err != nil {
			return err
		}
		if err := vm.push(x1); err != nil {
			return err
		}
		return vm.push(x2)

	case OP_SIZE:
		top, err := vm.stack.peek()
		if err != nil {
			return err
		}
		return vm.push(scriptNum(len(top)).bytes())

	case OP_EQUAL, OP_EQUALVERIFY:
		a, err := vm.stack.pop()
		if err != nil {
			return err
		}
		b, err := vm.stack.pop()
		if err != nil {
			return err
		}
		eq := bytes.Equal(a, b)
		if op == OP_EQUALVERIFY {
			if !eq {
				return ErrVerifyFailed
			}
			return nil
		}
		return vm.push(boolBytes(eq))

	case OP_1ADD, OP_1SUB, OP_NEGATE, OP_ABS, OP_NOT, OP_0NOTEQUAL:
		return vm.unaryNum(op)

	case OP_ADD, OP_SUB, OP_BOOLAND, OP_BOOLOR,
		OP_NUMEQUAL, OP_NUMEQUALVERIFY, OP_NUMNOTEQUAL,
		OP_LESSTHAN, OP_GREATERTHAN,
		OP_LESSTHANOREQUAL, OP_GREATERTHANOREQUAL,
		OP_MIN, OP_MAX:
		return vm.binaryNum(op)

	case OP_WITHIN:
		max, err := vm.popNum()
		if err != nil {
			return err
		}
		min, err := vm.popNum()
		if err != nil {
			return err
		}
		x, err := vm.popNum()
		if err != nil {
			return err
		}
		return vm.push(boolBytes(x >= min && x < max))

	case OP_RIPEMD160, OP_SHA1, OP_SHA256, OP_HASH160, OP_HASH256:
		return vm.hashTop(op)

	case OP_CHECKSIG, OP_CHECKSIGVERIFY:
		return vm.checkSig(op)

	case OP_CHECKSIGADD:
		if !vm.tapscript {
			return fmt.Errorf("%w: OP_CHECKSIGADD outside tapscript", ErrReservedOpcode)
		}
		return vm.checkSigAdd()

	case OP_CHECKMULTISIG, OP_CHECKMULTISIGVERIFY:
		if vm.tapscript {
			// Removed by the tapscript rules in favor of OP_CHECKSIGADD.
			return ErrReservedOpcode
		}
		return vm.checkMultiSig(op)
	}

	return fmt.Errorf("%w: unhandled opcode", ErrReservedOpcode)
}

func (vm *engine) popNum() (scriptNum, error) {
	raw, err := vm.stack.pop()
	if err != nil {
		return 0, err
	}
	return makeScriptNum(raw)
}

func (vm *engine) unaryNum(op byte) error {
	n, err := vm.popNum()
	if err != nil {
		return err
	}
	switch op {
	case OP_1ADD:
		n++
	case OP_1SUB:
		n--
	case OP_NEGATE:
		n = -n
	case OP_ABS:
		if n < 0 {
			n = -n
		}
	case OP_NOT:
		if n == 0 {
			n = 1
		} else {
			n = 0
		}
	case OP_0NOTEQUAL:
		if n != 0 {
			n = 1
		} else {
			n = 0
		}
	}
	return vm.push(n.bytes())
}

func (vm *engine) binaryNum(op byte) error {
	b, err := vm.popNum()
	if err != nil {
		return err
	}
	a, err := vm.popNum()
	if err != nil {
		return err
	}

	var out scriptNum
	switch op {
	case OP_ADD:
		out = a + b
	case OP_SUB:
		out = a - b
	case OP_BOOLAND:
		out = boolNum(a != 0 && b != 0)
	case OP_BOOLOR:
		out = boolNum(a != 0 || b != 0)
	case OP_NUMEQUAL:
		out = boolNum(a == b)
	case OP_NUMEQUALVERIFY:
		if a != b {
			return ErrVerifyFailed
		}
		return nil
	case OP_NUMNOTEQUAL:
		out = boolNum(a != b)
	case OP_LESSTHAN:
		out = boolNum(a < b)
	case OP_GREATERTHAN:
		out = boolNum(a > b)
	case OP_LESSTHANOREQUAL:
		out = boolNum(a <= b)
	case OP_GREATERTHANOREQUAL:
		out = boolNum(a >= b)
	case OP_MIN:
		out = a
		if b < a {
			out = b
		}
	case OP_MAX:
		out = a
		if b > a {
			out = b
		}
	}
	return vm.push(out.bytes())
}

func (vm *engine) hashTop(op byte) error {
	data, err := vm.stack.pop()
	if err != nil {
		return err
	}
	var out []byte
	switch op {
	case OP_RIPEMD160:
		out = ripemd160Sum(data)
	case OP_SHA1:
		sum := sha1.Sum(data)
		out = sum[:]
	case OP_SHA256:
		sum := sha256.Sum256(data)
		out = sum[:]
	case OP_HASH160:
		sum := sha256.Sum256(data)
		out = ripemd160Sum(sum[:])
	case OP_HASH256:
		first := sha256.Sum256(data)
		second := sha256.Sum256(first[:])
		out = second[:]
	}
	return vm.push(out)
}

func ripemd160Sum(data []byte) []byte {
	h := ripemd160.New()
	h.Write(data)
	return h.Sum(nil)
}

// checkSig pops a public key and a signature and verifies the signature over
// the supplied sighash. Base mode takes DER ECDSA with a compressed key;
// tapscript mode takes 64-byte Schnorr with an x-only key, and a non-empty
// signature that fails to verify aborts evaluation.
func (vm *engine) checkSig(op byte) error {
	pubKeyBytes, err := vm.stack.pop()
	if err != nil {
		return err
	}
	sigBytes, err := vm.stack.pop()
	if err != nil {
		return err
	}

	var valid bool
	if len(sigBytes) > 0 {
		if vm.tapscript {
			valid = verifySchnorrSig(sigBytes, pubKeyBytes, vm.sigHash)
			if !valid {
				return ErrInvalidSignature
			}
		} else {
			valid = verifyECDSASig(sigBytes, pubKeyBytes, vm.sigHash)
		}
	}

	if op == OP_CHECKSIGVERIFY {
		if !valid {
			return ErrVerifyFailed
		}
		return nil
	}
	return vm.push(boolBytes(valid))
}

// checkSigAdd implements the BIP-342 accumulator form: sig, n, pubkey on the
// stack become n plus one when the signature verifies.
func (vm *engine) checkSigAdd() error {
	pubKeyBytes, err := vm.stack.pop()
	if err != nil {
		return err
	}
	n, err := vm.popNum()
	if err != nil {
		return err
	}
	sigBytes, err := vm.stack.pop()
	if err != nil {
		return err
	}

	if len(sigBytes) > 0 {
		if !verifySchnorrSig(sigBytes, pubKeyBytes, vm.sigHash) {
			return ErrInvalidSignature
		}
		n++
	}
	return vm.push(n.bytes())
}

// checkMultiSig implements the base-mode k-of-n check against the single
// supplied sighash. Keys and signatures are matched in order, mirroring the
// consensus pairing walk.
func (vm *engine) checkMultiSig(op byte) error {
	nKeys, err := vm.popNum()
	if err != nil {
		return err
	}
	if nKeys < 0 || nKeys > 20 {
		return fmt.Errorf("%w: %d keys", ErrStackUnderflow, nKeys)
	}
	keys := make([][]byte, nKeys)
	for i := int(nKeys) - 1; i >= 0; i-- {
		if keys[i], err = vm.stack.pop(); err != nil {
			return err
		}
	}

	nSigs, err := vm.popNum()
	if err != nil {
		return err
	}
	if nSigs < 0 || nSigs > nKeys {
		return fmt.Errorf("%w: %d signatures for %d keys", ErrStackUnderflow, nSigs, nKeys)
	}
	sigs := make([][]byte, nSigs)
	for i := int(nSigs) - 1; i >= 0; i-- {
		if sigs[i], err = vm.stack.pop(); err != nil {
			return err
		}
	}

	// The off-by-one dummy element is consensus-mandated.
	if _, err := vm.stack.pop(); err != nil {
		return err
	}

	sigIdx := 0
	for keyIdx := 0; keyIdx < len(keys) && sigIdx < len(sigs); keyIdx++ {
		if verifyECDSASig(sigs[sigIdx], keys[keyIdx], vm.sigHash) {
			sigIdx++
		}
	}
	valid := sigIdx == len(sigs)

	if op == OP_CHECKMULTISIGVERIFY {
		if !valid {
			return ErrVerifyFailed
		}
		return nil
	}
	return vm.push(boolBytes(valid))
}

func verifyECDSASig(sigBytes, pubKeyBytes []byte, sigHash [32]byte) bool {
	pubKey, err := btcec.ParsePubKey(pubKeyBytes)
	if err != nil {
		return false
	}
	sig, err := btcecdsa.ParseDERSignature(sigBytes)
	if err != nil {
		return false
	}
	return sig.Verify(sigHash[:], pubKey)
}

func verifySchnorrSig(sigBytes, pubKeyBytes []byte, sigHash [32]byte) bool {
	if len(sigBytes) != 64 || len(pubKeyBytes) != 32 {
		return false
	}
	pubKey, err := schnorr.ParsePubKey(pubKeyBytes)
	if err != nil {
		return false
	}
	sig, err := schnorr.ParseSignature(sigBytes)
	if err != nil {
		return false
	}
	return sig.Verify(sigHash[:], pubKey)
}

// stack is a byte-slice stack with explicit underflow reporting.
type stack struct {
	items [][]byte
}

func (s *stack) depth() int { return len(s.items) }

func (s *stack) push(item []byte) {
	s.items = append(s.items, item)
}

func (s *stack) pop() ([]byte, error) {
	if len(s.items) == 0 {
		return nil, ErrStackUnderflow
	}
	item := s.items[len(s.items)-1]
	s.items = s.items[:len(s.items)-1]
	return item, nil
}

func (s *stack) peek() ([]byte, error) {
	if len(s.items) == 0 {
		return nil, ErrStackUnderflow
	}
	return s.items[len(s.items)-1], nil
}

func (s *stack) peek2() ([]byte, []byte, error) {
	if len(s.items) < 2 {
		return nil, nil, ErrStackUnderflow
	}
	return s.items[len(s.items)-2], s.items[len(s.items)-1], nil
}

func dup(b []byte) []byte {
	return append([]byte(nil), b...)
}

// asBool applies the consensus truthiness rule: any non-zero byte makes the
// element true, except a sole 0x80 (negative zero), which is false.
func asBool(item []byte) bool {
	for i, b := range item {
		if b != 0 {
			if i == len(item)-1 && b == 0x80 {
				return false
			}
			return true
		}
	}
	return false
}

func boolBytes(v bool) []byte {
	if v {
		return []byte{1}
	}
	return nil
}

// scriptNum is the little-endian sign-magnitude integer used by the numeric
// opcodes. Operands are capped at 4 bytes on input; results may serialize to
// 5 bytes and remain usable as booleans.
type scriptNum int64

func boolNum(v bool) scriptNum {
	if v {
		return 1
	}
	return 0
}

// makeScriptNum decodes raw as a script number, rejecting operands above the
// input length cap.
func makeScriptNum(raw []byte) (scriptNum, error) {
	if len(raw) > maxNumLen {
		return 0, fmt.Errorf("%w: %d bytes", ErrNumberTooBig, len(raw))
	}
	if len(raw) == 0 {
		return 0, nil
	}

	var v int64
	for i, b := range raw {
		v |= int64(b) << uint(8*i)
	}
	if raw[len(raw)-1]&0x80 != 0 {
		v &= ^(int64(0x80) << uint(8*(len(raw)-1)))
		return scriptNum(-v), nil
	}
	return scriptNum(v), nil
}

// bytes serializes n to the minimal little-endian sign-magnitude encoding.
func (n scriptNum) bytes() []byte {
	if n == 0 {
		return nil
	}

	negative := n < 0
	v := uint64(n)
	if negative {
		v = uint64(-n)
	}

	out := make([]byte, 0, 5)
	for v > 0 {
		out = append(out, byte(v&0xff))
		v >>= 8
	}
	if out[len(out)-1]&0x80 != 0 {
		extra := byte(0)
		if negative {
			extra = 0x80
		}
		out = append(out, extra)
	} else if negative {
		out[len(out)-1] |= 0x80
	}
	return out
}
