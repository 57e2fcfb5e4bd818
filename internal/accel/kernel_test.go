package accel

import (
	"bytes"
	stdsha256 "crypto/sha256"
	"crypto/sha512"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/BitForge-Labs/accel_layer/internal/hardware"
	"github.com/BitForge-Labs/accel_layer/pkg/logger"
)

func genericPath(op Operation) ExecutionPath {
	opt := newGenericOptimizer(hardware.Minimal(), logger.Nop())
	return opt.CreatePath(op, DefaultWorkloadProfile())
}

func mustRun(t *testing.T, p ExecutionPath, input []byte) []byte {
	t.Helper()
	out, err := p.Execute(input)
	if err != nil {
		t.Fatalf("%s: %v", p.Name(), err)
	}
	return out
}

func TestSchnorrVerifyKernel(t *testing.T) {
	p := genericPath(OpSchnorrVerify)

	valid := validSchnorrInput(1)
	if out := mustRun(t, p, valid); out[0] != 1 {
		t.Error("valid signature rejected")
	}

	corrupted := append([]byte(nil), valid...)
	corrupted[70] ^= 0xff
	if out := mustRun(t, p, corrupted); out[0] != 0 {
		t.Error("corrupted signature accepted")
	}

	wrongMsg := append([]byte(nil), valid...)
	wrongMsg[0] ^= 0x01
	if out := mustRun(t, p, wrongMsg); out[0] != 0 {
		t.Error("signature over a different message accepted")
	}

	for _, input := range [][]byte{nil, valid[:100], append(valid, 0)} {
		if _, err := p.Execute(input); !errors.Is(err, ErrMalformedInput) {
			t.Errorf("input of %d bytes: got %v, want ErrMalformedInput", len(input), err)
		}
	}
}

func TestECDSAVerifyKernel(t *testing.T) {
	p := genericPath(OpECDSAVerify)

	valid := validECDSAInput(2)
	if out := mustRun(t, p, valid); out[0] != 1 {
		t.Error("valid signature rejected")
	}

	// Truncating the DER tail is parsable framing but a semantic rejection.
	truncated := valid[:len(valid)-2]
	if out := mustRun(t, p, truncated); out[0] != 0 {
		t.Error("truncated DER signature accepted")
	}

	badKeyPrefix := append([]byte(nil), valid...)
	badKeyPrefix[32] = 0x07
	if out := mustRun(t, p, badKeyPrefix); out[0] != 0 {
		t.Error("unparsable public key accepted")
	}

	if _, err := p.Execute(valid[:40]); !errors.Is(err, ErrMalformedInput) {
		t.Errorf("got %v, want ErrMalformedInput", err)
	}
}

func TestHashKernels(t *testing.T) {
	inputs := [][]byte{nil, {}, []byte("abc"), bytes.Repeat([]byte{0xaa}, 1000)}

	p256 := genericPath(OpSHA256)
	p512 := genericPath(OpSHA512)
	for _, input := range inputs {
		want256 := stdsha256.Sum256(input)
		if out := mustRun(t, p256, input); !bytes.Equal(out, want256[:]) {
			t.Errorf("sha256(%d bytes) mismatch", len(input))
		}
		want512 := sha512.Sum512(input)
		if out := mustRun(t, p512, input); !bytes.Equal(out, want512[:]) {
			t.Errorf("sha512(%d bytes) mismatch", len(input))
		}

		// The SIMD kernel must agree with the standard library bit for bit.
		simd := simdSHA256(input)
		if !bytes.Equal(simd[:], want256[:]) {
			t.Errorf("simd sha256(%d bytes) diverges from the reference", len(input))
		}
	}
}

func TestBatchVerifyKernel(t *testing.T) {
	p := genericPath(OpBatchVerify)

	valid := validBatchInput(5)
	if out := mustRun(t, p, valid); out[0] != 1 {
		t.Error("batch of valid signatures rejected")
	}

	oneBad := append([]byte(nil), valid...)
	oneBad[4+2*schnorrInputLen+80] ^= 0xff
	if out := mustRun(t, p, oneBad); out[0] != 0 {
		t.Error("batch with one corrupted signature accepted")
	}

	// The empty batch is vacuously valid.
	if out := mustRun(t, p, make([]byte, 4)); out[0] != 1 {
		t.Error("empty batch rejected")
	}

	short := valid[:len(valid)-1]
	if _, err := p.Execute(short); !errors.Is(err, ErrMalformedInput) {
		t.Errorf("short body: got %v, want ErrMalformedInput", err)
	}

	lyingCount := append([]byte(nil), valid...)
	binary.BigEndian.PutUint32(lyingCount[:4], 2)
	if _, err := p.Execute(lyingCount); !errors.Is(err, ErrMalformedInput) {
		t.Errorf("count mismatch: got %v, want ErrMalformedInput", err)
	}

	if _, err := p.Execute([]byte{0, 0}); !errors.Is(err, ErrMalformedInput) {
		t.Errorf("missing header: got %v, want ErrMalformedInput", err)
	}
}

// TestBatchVerifyWindowInvariance pins the batch invariant: the scheduling
// window never changes the verdict.
func TestBatchVerifyWindowInvariance(t *testing.T) {
	valid := validBatchInput(9)
	oneBad := append([]byte(nil), valid...)
	oneBad[4+7*schnorrInputLen+90] ^= 0xff

	for _, window := range []int{1, 2, 7, 64, 4096} {
		cfg := kernelConfig{hash: stdSHA256, batchWindow: window}
		out, err := kernelBatchVerify(cfg, valid)
		if err != nil || out[0] != 1 {
			t.Errorf("window %d: valid batch gave (%v, %v)", window, out, err)
		}
		out, err = kernelBatchVerify(cfg, oneBad)
		if err != nil || out[0] != 0 {
			t.Errorf("window %d: bad batch gave (%v, %v)", window, out, err)
		}
	}
}

func TestMerkleVerifyKernel(t *testing.T) {
	p := genericPath(OpMerkleVerify)

	valid := validMerkleInput(6)
	if out := mustRun(t, p, valid); out[0] != 1 {
		t.Error("valid inclusion proof rejected")
	}

	wrongRoot := append([]byte(nil), valid...)
	wrongRoot[35] ^= 0x01
	if out := mustRun(t, p, wrongRoot); out[0] != 0 {
		t.Error("proof against a different root accepted")
	}

	wrongIndex := append([]byte(nil), valid...)
	wrongIndex[67] = 1
	if out := mustRun(t, p, wrongIndex); out[0] != 0 {
		t.Error("proof with flipped orientation accepted")
	}

	// Depth zero: the leaf must equal the root.
	zeroDepth := validMerkleInput(0)
	if out := mustRun(t, p, zeroDepth); out[0] != 1 {
		t.Error("zero-depth proof with leaf == root rejected")
	}

	ragged := valid[:len(valid)-5]
	if _, err := p.Execute(ragged); !errors.Is(err, ErrMalformedInput) {
		t.Errorf("ragged siblings: got %v, want ErrMalformedInput", err)
	}
}

func TestTaprootVerifyKernel(t *testing.T) {
	p := genericPath(OpTaprootVerify)

	keyPath := validTaprootInput(3, false)
	if out := mustRun(t, p, keyPath); out[0] != 1 {
		t.Error("valid key-path commitment rejected")
	}

	scriptPath := validTaprootInput(4, true)
	if out := mustRun(t, p, scriptPath); out[0] != 1 {
		t.Error("valid script-path commitment rejected")
	}

	wrongOutput := append([]byte(nil), keyPath...)
	wrongOutput[40] ^= 0x01
	if out := mustRun(t, p, wrongOutput); out[0] != 0 {
		t.Error("mismatched output key accepted")
	}

	wrongParity := append([]byte(nil), keyPath...)
	wrongParity[64] ^= 0x01
	if out := mustRun(t, p, wrongParity); out[0] != 0 {
		t.Error("flipped parity accepted")
	}

	badParity := append([]byte(nil), keyPath...)
	badParity[64] = 9
	if out := mustRun(t, p, badParity); out[0] != 0 {
		t.Error("out-of-range parity byte accepted")
	}

	if _, err := p.Execute(keyPath[:60]); !errors.Is(err, ErrMalformedInput) {
		t.Errorf("short input: got %v, want ErrMalformedInput", err)
	}
}

func TestScriptExecuteKernel(t *testing.T) {
	base := genericPath(OpScriptExecute)
	tap := genericPath(OpTapscriptExecute)

	// OP_1 OP_1 OP_EQUAL succeeds in both modes.
	pass := validScriptInput([]byte{0x51, 0x51, 0x87})
	if out := mustRun(t, base, pass); out[0] != 1 {
		t.Error("passing script rejected in base mode")
	}
	if out := mustRun(t, tap, pass); out[0] != 1 {
		t.Error("passing script rejected in tapscript mode")
	}

	// OP_1 OP_2 OP_EQUAL leaves false on the stack.
	fail := validScriptInput([]byte{0x51, 0x52, 0x87})
	if out := mustRun(t, base, fail); out[0] != 0 {
		t.Error("failing script accepted")
	}

	// Evaluation errors fold into a rejection, not a framing error.
	abort := validScriptInput([]byte{0x6a})
	if out := mustRun(t, base, abort); out[0] != 0 {
		t.Error("OP_RETURN script accepted")
	}

	// 0xbb is an unknown opcode in base mode but OP_SUCCESS in tapscript.
	success := validScriptInput([]byte{0xbb})
	if out := mustRun(t, base, success); out[0] != 0 {
		t.Error("unknown opcode accepted in base mode")
	}
	if out := mustRun(t, tap, success); out[0] != 1 {
		t.Error("OP_SUCCESS rejected in tapscript mode")
	}

	// Header framing violations are errors.
	headerLie := pass[:len(pass)-1]
	if _, err := base.Execute(headerLie); !errors.Is(err, ErrMalformedInput) {
		t.Errorf("length mismatch: got %v, want ErrMalformedInput", err)
	}
	if _, err := base.Execute(pass[:20]); !errors.Is(err, ErrMalformedInput) {
		t.Errorf("missing header: got %v, want ErrMalformedInput", err)
	}
}

func TestVerificationResultsAreOneByte(t *testing.T) {
	for _, op := range []Operation{
		OpSchnorrVerify, OpECDSAVerify, OpBatchVerify,
		OpScriptExecute, OpMerkleVerify, OpTaprootVerify, OpTapscriptExecute,
	} {
		out := mustRun(t, genericPath(op), representativeInput(op))
		if len(out) != 1 || out[0] > 1 {
			t.Errorf("%s: result %x is not a canonical verdict byte", op, out)
		}
	}
}

func TestOperationNames(t *testing.T) {
	for _, op := range AllOperations() {
		if !op.Valid() {
			t.Errorf("%d not valid", op)
		}
		if op.String() == "unknown" {
			t.Errorf("operation %d has no name", op)
		}
	}
	if Operation(-1).Valid() || Operation(int(numOperations)).Valid() {
		t.Error("out-of-range operations must not be valid")
	}
	if Operation(99).String() != "unknown" {
		t.Error("out-of-range operation must render as unknown")
	}
}
