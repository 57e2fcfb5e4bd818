package accel

import (
	"bytes"
	stdsha256 "crypto/sha256"
	"crypto/sha512"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	btcecdsa "github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	simd "github.com/minio/sha256-simd"

	"github.com/BitForge-Labs/accel_layer/internal/hardware"
	"github.com/BitForge-Labs/accel_layer/internal/script"
)

// Wire shapes, following the layer's canonical encoding:
//
//	schnorr_verify:    32 msg || 32 x-only pubkey || 64 sig
//	ecdsa_verify:      32 msg || 33 compressed pubkey || DER sig
//	sha256 / sha512:   arbitrary bytes
//	batch_verify:      4-byte BE count || count * 128-byte schnorr triples
//	script_execute:    32 sighash || 2-byte BE script len || script
//	merkle_verify:     32 leaf || 32 root || 4-byte BE index || k * 32 siblings
//	taproot_verify:    32 internal key || 32 output key || 1 parity [|| 32 root]
const (
	schnorrInputLen   = 32 + 32 + 64
	ecdsaMinInputLen  = 32 + 33 + 8
	merkleMinInputLen = 32 + 32 + 4
	taprootKeyLen     = 32 + 32 + 1
	taprootScriptLen  = 32 + 32 + 1 + 32
	scriptHeaderLen   = 32 + 2
)

// ErrMalformedInput reports an input that violates the operation's wire
// shape. Framing errors are distinct from semantic rejections: a parsable
// but invalid signature yields result 0, not an error.
var ErrMalformedInput = errors.New("accel: malformed input")

// hashFn is the SHA-256 kernel a backend binds. The Generic reference binds
// the standard library; accelerated backends bind the SIMD implementation,
// which dispatches to SHA-NI, AVX-512 or the ARM SHA2 extension and returns
// bit-identical digests.
type hashFn func([]byte) [32]byte

func stdSHA256(data []byte) [32]byte  { return stdsha256.Sum256(data) }
func simdSHA256(data []byte) [32]byte { return simd.Sum256(data) }

// kernelConfig carries the backend-specific parameters captured by value
// into each issued path.
type kernelConfig struct {
	hash hashFn
	// batchWindow bounds how many signatures a batch pass examines before
	// yielding an intermediate verdict. Affects scheduling only; the final
	// result is always the conjunction of the individual verifications.
	batchWindow int
}

func genericKernel() kernelConfig {
	return kernelConfig{hash: stdSHA256, batchWindow: 16}
}

// kernelSchnorrVerify verifies a single BIP-340 triple. Parse failures are
// semantic rejections shared by every backend.
func kernelSchnorrVerify(input []byte) ([]byte, error) {
	if len(input) != schnorrInputLen {
		return nil, fmt.Errorf("%w: schnorr input must be %d bytes, got %d",
			ErrMalformedInput, schnorrInputLen, len(input))
	}
	msg := input[:32]
	pubKey, err := schnorr.ParsePubKey(input[32:64])
	if err != nil {
		return resultBytes(false), nil
	}
	sig, err := schnorr.ParseSignature(input[64:])
	if err != nil {
		return resultBytes(false), nil
	}
	return resultBytes(sig.Verify(msg, pubKey)), nil
}

// kernelECDSAVerify verifies a DER-encoded ECDSA signature over a 32-byte
// message digest with a compressed public key.
func kernelECDSAVerify(input []byte) ([]byte, error) {
	if len(input) < ecdsaMinInputLen {
		return nil, fmt.Errorf("%w: ecdsa input must be at least %d bytes, got %d",
			ErrMalformedInput, ecdsaMinInputLen, len(input))
	}
	msg := input[:32]
	pubKey, err := btcec.ParsePubKey(input[32:65])
	if err != nil {
		return resultBytes(false), nil
	}
	sig, err := btcecdsa.ParseDERSignature(input[65:])
	if err != nil {
		return resultBytes(false), nil
	}
	return resultBytes(sig.Verify(msg, pubKey)), nil
}

// kernelSHA256 computes the digest with the backend's bound hash kernel.
func kernelSHA256(cfg kernelConfig, input []byte) ([]byte, error) {
	sum := cfg.hash(input)
	return sum[:], nil
}

// kernelSHA512 computes a SHA-512 digest. Every backend binds the standard
// library implementation, which already carries per-architecture assembly.
func kernelSHA512(input []byte) ([]byte, error) {
	sum := sha512.Sum512(input)
	return sum[:], nil
}

// kernelBatchVerify verifies count Schnorr triples and returns 1 iff every
// one of them verifies. The window size shapes the verification schedule
// only; the verdict equals the AND of the individual results on every
// backend, which is what keeps batch semantics consensus-safe.
func kernelBatchVerify(cfg kernelConfig, input []byte) ([]byte, error) {
	if len(input) < 4 {
		return nil, fmt.Errorf("%w: batch input missing count header", ErrMalformedInput)
	}
	count := int(binary.BigEndian.Uint32(input[:4]))
	body := input[4:]
	if len(body) != count*schnorrInputLen {
		return nil, fmt.Errorf("%w: batch body is %d bytes, want %d for %d triples",
			ErrMalformedInput, len(body), count*schnorrInputLen, count)
	}

	window := cfg.batchWindow
	if window < 1 {
		window = 1
	}
	for start := 0; start < count; start += window {
		end := start + window
		if end > count {
			end = count
		}
		for i := start; i < end; i++ {
			triple := body[i*schnorrInputLen : (i+1)*schnorrInputLen]
			res, err := kernelSchnorrVerify(triple)
			if err != nil {
				return nil, err
			}
			if res[0] == 0 {
				return resultBytes(false), nil
			}
		}
	}
	return resultBytes(true), nil
}

// kernelMerkleVerify walks a double-SHA256 merkle inclusion proof from leaf
// to root. The index supplies the left/right orientation at each level.
func kernelMerkleVerify(cfg kernelConfig, input []byte) ([]byte, error) {
	if len(input) < merkleMinInputLen || (len(input)-merkleMinInputLen)%32 != 0 {
		return nil, fmt.Errorf("%w: merkle input must be 68 + k*32 bytes, got %d",
			ErrMalformedInput, len(input))
	}
	leaf := input[:32]
	root := input[32:64]
	index := binary.BigEndian.Uint32(input[64:68])
	proof := input[68:]

	node := make([]byte, 32)
	copy(node, leaf)
	buf := make([]byte, 64)
	for off := 0; off < len(proof); off += 32 {
		sibling := proof[off : off+32]
		if index&1 == 0 {
			copy(buf[:32], node)
			copy(buf[32:], sibling)
		} else {
			copy(buf[:32], sibling)
			copy(buf[32:], node)
		}
		first := cfg.hash(buf)
		second := cfg.hash(first[:])
		copy(node, second[:])
		index >>= 1
	}
	return resultBytes(bytes.Equal(node, root)), nil
}

// taggedHash implements the BIP-340 tagged hash construction with the
// backend's bound SHA-256 kernel.
func taggedHash(cfg kernelConfig, tag string, chunks ...[]byte) [32]byte {
	tagSum := cfg.hash([]byte(tag))
	buf := make([]byte, 0, 64+len(chunks)*32)
	buf = append(buf, tagSum[:]...)
	buf = append(buf, tagSum[:]...)
	for _, c := range chunks {
		buf = append(buf, c...)
	}
	return cfg.hash(buf)
}

// kernelTaprootVerify checks a BIP-341 output-key commitment: the output key
// must equal the internal key tweaked by H_TapTweak(internal || merkleRoot).
// The parity byte carries the output key's Y parity from the control block.
func kernelTaprootVerify(cfg kernelConfig, input []byte) ([]byte, error) {
	if len(input) != taprootKeyLen && len(input) != taprootScriptLen {
		return nil, fmt.Errorf("%w: taproot input must be %d or %d bytes, got %d",
			ErrMalformedInput, taprootKeyLen, taprootScriptLen, len(input))
	}
	internalKey := input[:32]
	outputKey := input[32:64]
	parity := input[64]
	if parity > 1 {
		return resultBytes(false), nil
	}
	var merkleRoot []byte
	if len(input) == taprootScriptLen {
		merkleRoot = input[65:]
	}

	internal, err := schnorr.ParsePubKey(internalKey)
	if err != nil {
		return resultBytes(false), nil
	}

	var tweakChunks [][]byte
	if merkleRoot == nil {
		tweakChunks = [][]byte{internalKey}
	} else {
		tweakChunks = [][]byte{internalKey, merkleRoot}
	}
	tweakSum := taggedHash(cfg, "TapTweak", tweakChunks...)

	var tweak btcec.ModNScalar
	if overflow := tweak.SetByteSlice(tweakSum[:]); overflow {
		return resultBytes(false), nil
	}

	var internalPoint, tweakPoint btcec.JacobianPoint
	internal.AsJacobian(&internalPoint)
	btcec.ScalarBaseMultNonConst(&tweak, &tweakPoint)
	btcec.AddNonConst(&internalPoint, &tweakPoint, &internalPoint)
	if (internalPoint.X.IsZero() && internalPoint.Y.IsZero()) || internalPoint.Z.IsZero() {
		return resultBytes(false), nil
	}
	internalPoint.ToAffine()

	computed := btcec.NewPublicKey(&internalPoint.X, &internalPoint.Y)
	xMatches := bytes.Equal(schnorr.SerializePubKey(computed), outputKey)
	parityMatches := internalPoint.Y.IsOdd() == (parity == 1)
	return resultBytes(xMatches && parityMatches), nil
}

// kernelScriptExecute evaluates a framed script. Evaluation failures of any
// kind fold into result 0 so every backend rejects identically; only framing
// violations surface as errors.
func kernelScriptExecute(input []byte, tapscript bool) ([]byte, error) {
	if len(input) < scriptHeaderLen {
		return nil, fmt.Errorf("%w: script input missing header, got %d bytes",
			ErrMalformedInput, len(input))
	}
	var sigHash [32]byte
	copy(sigHash[:], input[:32])
	scriptLen := int(binary.BigEndian.Uint16(input[32:34]))
	if len(input) != scriptHeaderLen+scriptLen {
		return nil, fmt.Errorf("%w: script body is %d bytes, header says %d",
			ErrMalformedInput, len(input)-scriptHeaderLen, scriptLen)
	}
	ok, err := script.Execute(input[scriptHeaderLen:], sigHash, script.Options{Tapscript: tapscript})
	if err != nil {
		return resultBytes(false), nil
	}
	return resultBytes(ok), nil
}

// buildPath binds op to cfg for the named backend. This is the single
// construction point for every ExecutionPath in the layer; the exhaustive
// switch is what makes dispatch total over the closed operation set.
func buildPath(op Operation, arch archInfo, rung string, cfg kernelConfig) ExecutionPath {
	name := fmt.Sprintf("%s/%s/%s", arch.name, rung, op)
	if rung == arch.name {
		name = fmt.Sprintf("%s/%s", arch.name, op)
	}
	switch op {
	case OpSchnorrVerify:
		return newPath(op, arch.arch, name, kernelSchnorrVerify)
	case OpECDSAVerify:
		return newPath(op, arch.arch, name, kernelECDSAVerify)
	case OpSHA256:
		return newPath(op, arch.arch, name, func(in []byte) ([]byte, error) {
			return kernelSHA256(cfg, in)
		})
	case OpSHA512:
		return newPath(op, arch.arch, name, kernelSHA512)
	case OpBatchVerify:
		return newPath(op, arch.arch, name, func(in []byte) ([]byte, error) {
			return kernelBatchVerify(cfg, in)
		})
	case OpScriptExecute:
		return newPath(op, arch.arch, name, func(in []byte) ([]byte, error) {
			return kernelScriptExecute(in, false)
		})
	case OpMerkleVerify:
		return newPath(op, arch.arch, name, func(in []byte) ([]byte, error) {
			return kernelMerkleVerify(cfg, in)
		})
	case OpTaprootVerify:
		return newPath(op, arch.arch, name, func(in []byte) ([]byte, error) {
			return kernelTaprootVerify(cfg, in)
		})
	case OpTapscriptExecute:
		return newPath(op, arch.arch, name, func(in []byte) ([]byte, error) {
			return kernelScriptExecute(in, true)
		})
	default:
		// Unreachable for members of the closed set; an invalid Operation
		// value is a programming error and still resolves to a usable path.
		return newPath(op, arch.arch, name, func(in []byte) ([]byte, error) {
			return nil, fmt.Errorf("%w: unknown operation %d", ErrMalformedInput, op)
		})
	}
}

// archInfo names a backend family for path construction.
type archInfo struct {
	name string
	arch hardware.Architecture
}
