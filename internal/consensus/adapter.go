package consensus

import (
	"encoding/binary"
	"fmt"

	"github.com/BitForge-Labs/accel_layer/internal/accel"
)

// Binding adapts an acceleration engine to the domain ports. Each call frames
// the domain value into the operation's wire shape and dispatches through the
// engine, which resolves to the best reachable backend or Generic. Validation
// is therefore never skipped: a machine with no specialized backend still
// answers every port call.
type Binding struct {
	engine *accel.Engine
}

// NewBinding wraps engine as the port implementation.
func NewBinding(engine *accel.Engine) *Binding {
	return &Binding{engine: engine}
}

// NewValidationContext is the composition point: it wires every domain port
// to the engine.
func NewValidationContext(engine *accel.Engine) *ValidationContext {
	b := NewBinding(engine)
	return &ValidationContext{
		Signatures: b,
		Scripts:    b,
		Merkle:     b,
		Taproot:    b,
	}
}

// dispatch frames nothing itself; it runs an already framed input and folds
// the single result byte into a verdict.
func (b *Binding) dispatch(op accel.Operation, input []byte) (bool, error) {
	path := b.engine.CreateOptimizedPath(op)
	out, err := path.Execute(input)
	if err != nil {
		return false, fmt.Errorf("consensus: %s on %s: %w", op, path.Name(), err)
	}
	if len(out) != 1 {
		return false, fmt.Errorf("consensus: %s returned %d result bytes", op, len(out))
	}
	return out[0] == 1, nil
}

// VerifySchnorr implements SignatureVerifier.
func (b *Binding) VerifySchnorr(check SchnorrCheck) (bool, error) {
	return b.dispatch(accel.OpSchnorrVerify, frameSchnorr(check))
}

// VerifyECDSA implements SignatureVerifier.
func (b *Binding) VerifyECDSA(check ECDSACheck) (bool, error) {
	in := make([]byte, 0, 65+len(check.Signature))
	in = append(in, check.Message[:]...)
	in = append(in, check.PubKey[:]...)
	in = append(in, check.Signature...)
	return b.dispatch(accel.OpECDSAVerify, in)
}

// VerifySchnorrBatch implements SignatureVerifier.
func (b *Binding) VerifySchnorrBatch(checks []SchnorrCheck) (bool, error) {
	in := make([]byte, 4, 4+len(checks)*128)
	binary.BigEndian.PutUint32(in, uint32(len(checks)))
	for _, check := range checks {
		in = append(in, frameSchnorr(check)...)
	}
	return b.dispatch(accel.OpBatchVerify, in)
}

// ExecuteScript implements ScriptExecutor.
func (b *Binding) ExecuteScript(check ScriptCheck) (bool, error) {
	if len(check.Script) > 0xffff {
		return false, fmt.Errorf("consensus: script of %d bytes exceeds frame capacity", len(check.Script))
	}
	in := make([]byte, 0, 34+len(check.Script))
	in = append(in, check.SigHash[:]...)
	var lenBytes [2]byte
	binary.BigEndian.PutUint16(lenBytes[:], uint16(len(check.Script)))
	in = append(in, lenBytes[:]...)
	in = append(in, check.Script...)

	op := accel.OpScriptExecute
	if check.Tapscript {
		op = accel.OpTapscriptExecute
	}
	return b.dispatch(op, in)
}

// VerifyInclusion implements MerkleProver.
func (b *Binding) VerifyInclusion(proof MerkleProof) (bool, error) {
	in := make([]byte, 0, 68+len(proof.Siblings)*32)
	in = append(in, proof.Leaf[:]...)
	in = append(in, proof.Root[:]...)
	var idx [4]byte
	binary.BigEndian.PutUint32(idx[:], proof.Index)
	in = append(in, idx[:]...)
	for _, sibling := range proof.Siblings {
		in = append(in, sibling[:]...)
	}
	return b.dispatch(accel.OpMerkleVerify, in)
}

// VerifyCommitment implements TaprootVerifier.
func (b *Binding) VerifyCommitment(check TaprootCheck) (bool, error) {
	in := make([]byte, 0, 97)
	in = append(in, check.InternalKey[:]...)
	in = append(in, check.OutputKey[:]...)
	if check.ParityOdd {
		in = append(in, 1)
	} else {
		in = append(in, 0)
	}
	if check.MerkleRoot != nil {
		in = append(in, check.MerkleRoot[:]...)
	}
	return b.dispatch(accel.OpTaprootVerify, in)
}

func frameSchnorr(check SchnorrCheck) []byte {
	in := make([]byte, 0, 128)
	in = append(in, check.Message[:]...)
	in = append(in, check.PubKey[:]...)
	in = append(in, check.Signature[:]...)
	return in
}
