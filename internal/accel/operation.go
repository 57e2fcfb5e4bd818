// Package accel implements the hardware acceleration layer for
// consensus-critical validation primitives. It detects the machine's
// capabilities, selects the best reachable execution path per operation on a
// fixed per-architecture preference ladder, and guarantees that every path
// returns results bit-identical to the Generic reference implementation.
package accel

// Operation identifies an accelerable validation primitive. The set is
// closed: dispatch tables switch exhaustively over these values and new
// primitives are added only by extending this list.
type Operation int

const (
	// OpSchnorrVerify verifies a BIP-340 Schnorr signature.
	OpSchnorrVerify Operation = iota
	// OpECDSAVerify verifies a DER-encoded ECDSA signature.
	OpECDSAVerify
	// OpSHA256 computes a SHA-256 digest.
	OpSHA256
	// OpSHA512 computes a SHA-512 digest.
	OpSHA512
	// OpBatchVerify verifies a batch of Schnorr signatures.
	OpBatchVerify
	// OpScriptExecute evaluates a script under base (pre-tapscript) rules.
	OpScriptExecute
	// OpMerkleVerify checks a double-SHA256 merkle inclusion proof.
	OpMerkleVerify
	// OpTaprootVerify checks a BIP-341 taproot output-key commitment.
	OpTaprootVerify
	// OpTapscriptExecute evaluates a script under BIP-342 tapscript rules.
	OpTapscriptExecute

	numOperations
)

var operationNames = [numOperations]string{
	OpSchnorrVerify:    "schnorr_verify",
	OpECDSAVerify:      "ecdsa_verify",
	OpSHA256:           "sha256",
	OpSHA512:           "sha512",
	OpBatchVerify:      "batch_verify",
	OpScriptExecute:    "script_execute",
	OpMerkleVerify:     "merkle_verify",
	OpTaprootVerify:    "taproot_verify",
	OpTapscriptExecute: "tapscript_execute",
}

// String returns the canonical snake_case name of the operation.
func (op Operation) String() string {
	if op < 0 || op >= numOperations {
		return "unknown"
	}
	return operationNames[op]
}

// Valid reports whether op is a member of the closed operation set.
func (op Operation) Valid() bool {
	return op >= 0 && op < numOperations
}

// AllOperations returns every member of the closed operation set, in
// declaration order. Callers iterate this for exhaustive verification and
// benchmarking.
func AllOperations() []Operation {
	ops := make([]Operation, numOperations)
	for i := range ops {
		ops[i] = Operation(i)
	}
	return ops
}
