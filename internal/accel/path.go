package accel

import (
	"github.com/BitForge-Labs/accel_layer/internal/hardware"
)

// ExecutionPath is the uniform execution contract: one operation, one
// backend, pure byte-in/byte-out semantics. Implementations own no mutable
// state and are safe for unsynchronized concurrent use. Execute returns an
// error only for framing violations (inputs that do not match the
// operation's wire shape); semantic rejections such as an invalid signature
// are encoded in the output so that every backend rejects identically.
type ExecutionPath interface {
	// Operation returns the primitive this path implements.
	Operation() Operation
	// Architecture returns the architecture the backend was selected for.
	Architecture() hardware.Architecture
	// Name identifies the backend, e.g. "intel/avx512/schnorr_verify".
	Name() string
	// Execute runs the operation on input and returns the result bytes.
	Execute(input []byte) ([]byte, error)
}

// path is the single ExecutionPath implementation. Backends differ only in
// the kernel closure bound at construction; all parameters are captured by
// value so issued paths are unaffected by later engine re-tuning.
type path struct {
	op   Operation
	arch hardware.Architecture
	name string
	exec func(input []byte) ([]byte, error)
}

func (p *path) Operation() Operation                 { return p.op }
func (p *path) Architecture() hardware.Architecture  { return p.arch }
func (p *path) Name() string                         { return p.name }
func (p *path) Execute(input []byte) ([]byte, error) { return p.exec(input) }

func newPath(op Operation, arch hardware.Architecture, name string, exec func([]byte) ([]byte, error)) ExecutionPath {
	return &path{op: op, arch: arch, name: name, exec: exec}
}

// resultBytes encodes a boolean validation outcome as the 1-byte wire result
// shared by all verification operations.
func resultBytes(ok bool) []byte {
	if ok {
		return []byte{1}
	}
	return []byte{0}
}
