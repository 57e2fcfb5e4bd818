// Package consensus holds the validation domain: value types for
// transactions and blocks, the port interfaces the domain consumes, and a
// Validator that decides accept or reject through those ports alone. The
// domain never imports the acceleration layer; the adapter in this package
// binds the ports to it at composition time.
package consensus

import (
	"errors"
	"fmt"

	"github.com/BitForge-Labs/accel_layer/pkg/logger"
)

// ErrNoContext is returned when a Validator is used without a wired context.
var ErrNoContext = errors.New("consensus: validation context not configured")

// SchnorrCheck is one BIP-340 verification: message digest, x-only public
// key and 64-byte signature.
type SchnorrCheck struct {
	Message   [32]byte
	PubKey    [32]byte
	Signature [64]byte
}

// ECDSACheck is one DER-encoded ECDSA verification with a compressed key.
type ECDSACheck struct {
	Message   [32]byte
	PubKey    [33]byte
	Signature []byte
}

// ScriptCheck is one script evaluation against a precomputed sighash.
type ScriptCheck struct {
	SigHash   [32]byte
	Script    []byte
	Tapscript bool
}

// TaprootCheck is one BIP-341 output-key commitment check. MerkleRoot is nil
// for key-path spends.
type TaprootCheck struct {
	InternalKey [32]byte
	OutputKey   [32]byte
	ParityOdd   bool
	MerkleRoot  *[32]byte
}

// MerkleProof locates a transaction leaf under a block's merkle root.
type MerkleProof struct {
	Leaf     [32]byte
	Root     [32]byte
	Index    uint32
	Siblings [][32]byte
}

// Transaction bundles the checks a transaction must pass. The structural
// fields the layer does not accelerate (amounts, locktime) are out of scope
// here; callers run those separately.
type Transaction struct {
	ID            string
	SchnorrChecks []SchnorrCheck
	ECDSAChecks   []ECDSACheck
	ScriptChecks  []ScriptCheck
	TaprootChecks []TaprootCheck
}

// Block bundles transactions with their inclusion proofs.
type Block struct {
	Height       uint64
	MerkleRoot   [32]byte
	Transactions []Transaction
	Proofs       []MerkleProof
}

// SignatureVerifier is the domain's port for signature checks.
type SignatureVerifier interface {
	VerifySchnorr(check SchnorrCheck) (bool, error)
	VerifyECDSA(check ECDSACheck) (bool, error)
	// VerifySchnorrBatch reports whether every check verifies. Semantically
	// equal to verifying each check alone and conjoining the results.
	VerifySchnorrBatch(checks []SchnorrCheck) (bool, error)
}

// ScriptExecutor is the domain's port for script evaluation.
type ScriptExecutor interface {
	ExecuteScript(check ScriptCheck) (bool, error)
}

// MerkleProver is the domain's port for inclusion proofs.
type MerkleProver interface {
	VerifyInclusion(proof MerkleProof) (bool, error)
}

// TaprootVerifier is the domain's port for output-key commitment checks.
type TaprootVerifier interface {
	VerifyCommitment(check TaprootCheck) (bool, error)
}

// ValidationContext carries the wired ports. The domain consumes it without
// knowing which backend sits behind the interfaces.
type ValidationContext struct {
	Signatures SignatureVerifier
	Scripts    ScriptExecutor
	Merkle     MerkleProver
	Taproot    TaprootVerifier
}

func (c *ValidationContext) complete() bool {
	return c != nil && c.Signatures != nil && c.Scripts != nil &&
		c.Merkle != nil && c.Taproot != nil
}

// Validator runs transactions and blocks through the context's ports.
type Validator struct {
	ctx *ValidationContext
	log logger.Logger
}

// NewValidator wires a validator to a context. A nil log disables logging.
func NewValidator(ctx *ValidationContext, log logger.Logger) *Validator {
	if log == nil {
		log = logger.Nop()
	}
	return &Validator{ctx: ctx, log: log}
}

// ValidateTransaction runs every check the transaction carries. The verdict
// is the conjunction; the first failing check decides and is logged. An error
// means a check could not be evaluated, which is distinct from a rejection.
func (v *Validator) ValidateTransaction(tx Transaction) (bool, error) {
	if !v.ctx.complete() {
		return false, ErrNoContext
	}

	// Batch the Schnorr checks when there is more than one.
	if len(tx.SchnorrChecks) > 1 {
		ok, err := v.ctx.Signatures.VerifySchnorrBatch(tx.SchnorrChecks)
		if err != nil {
			return false, fmt.Errorf("transaction %s: batch verify: %w", tx.ID, err)
		}
		if !ok {
			v.log.Debug("transaction rejected", "tx", tx.ID, "check", "schnorr_batch")
			return false, nil
		}
	} else {
		for i, check := range tx.SchnorrChecks {
			ok, err := v.ctx.Signatures.VerifySchnorr(check)
			if err != nil {
				return false, fmt.Errorf("transaction %s: schnorr check %d: %w", tx.ID, i, err)
			}
			if !ok {
				v.log.Debug("transaction rejected", "tx", tx.ID, "check", "schnorr", "index", i)
				return false, nil
			}
		}
	}

	for i, check := range tx.ECDSAChecks {
		ok, err := v.ctx.Signatures.VerifyECDSA(check)
		if err != nil {
			return false, fmt.Errorf("transaction %s: ecdsa check %d: %w", tx.ID, i, err)
		}
		if !ok {
			v.log.Debug("transaction rejected", "tx", tx.ID, "check", "ecdsa", "index", i)
			return false, nil
		}
	}

	for i, check := range tx.TaprootChecks {
		ok, err := v.ctx.Taproot.VerifyCommitment(check)
		if err != nil {
			return false, fmt.Errorf("transaction %s: taproot check %d: %w", tx.ID, i, err)
		}
		if !ok {
			v.log.Debug("transaction rejected", "tx", tx.ID, "check", "taproot", "index", i)
			return false, nil
		}
	}

	for i, check := range tx.ScriptChecks {
		ok, err := v.ctx.Scripts.ExecuteScript(check)
		if err != nil {
			return false, fmt.Errorf("transaction %s: script check %d: %w", tx.ID, i, err)
		}
		if !ok {
			v.log.Debug("transaction rejected", "tx", tx.ID, "check", "script", "index", i)
			return false, nil
		}
	}

	return true, nil
}

// ValidateBlock checks every inclusion proof against the block's root, then
// validates every transaction.
func (v *Validator) ValidateBlock(block Block) (bool, error) {
	if !v.ctx.complete() {
		return false, ErrNoContext
	}

	for i, proof := range block.Proofs {
		if proof.Root != block.MerkleRoot {
			v.log.Debug("block rejected", "height", block.Height, "check", "merkle_root", "index", i)
			return false, nil
		}
		ok, err := v.ctx.Merkle.VerifyInclusion(proof)
		if err != nil {
			return false, fmt.Errorf("block %d: inclusion proof %d: %w", block.Height, i, err)
		}
		if !ok {
			v.log.Debug("block rejected", "height", block.Height, "check", "merkle", "index", i)
			return false, nil
		}
	}

	for _, tx := range block.Transactions {
		ok, err := v.ValidateTransaction(tx)
		if err != nil {
			return false, fmt.Errorf("block %d: %w", block.Height, err)
		}
		if !ok {
			return false, nil
		}
	}

	v.log.Debug("block validated",
		"height", block.Height, "transactions", len(block.Transactions))
	return true, nil
}
