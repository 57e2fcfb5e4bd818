package accel

import (
	"github.com/BitForge-Labs/accel_layer/internal/hardware"
	"github.com/BitForge-Labs/accel_layer/pkg/logger"
)

// riscvOptimizer serves RISC-V 64-bit parts. Ladder: scalar crypto
// extensions (Zkn family) first, then the vector extension (RVV), then
// Generic. The hash kernel stays on the portable implementation because the
// SIMD library carries no RISC-V code paths; the rungs still differ in batch
// scheduling, which is where RVV-class parts gain.
type riscvOptimizer struct {
	caps   hardware.Capabilities
	info   archInfo
	ladder ladder
}

func newRISCVOptimizer(caps hardware.Capabilities, log logger.Logger, faults ...string) *riscvOptimizer {
	hasScalarCrypto := caps.HasCrypto("ZKNE") || caps.HasCrypto("ZKNH") || caps.HasCrypto("ZKND")
	candidates := []rung{
		{
			name:   "zk-crypto",
			cfg:    kernelConfig{hash: stdSHA256, batchWindow: 64},
			usable: hasScalarCrypto,
		},
		{
			name:   "rvv",
			cfg:    kernelConfig{hash: stdSHA256, batchWindow: 32},
			usable: caps.HasVector("RVV"),
		},
	}
	return &riscvOptimizer{
		caps:   caps,
		info:   archInfo{name: "riscv", arch: hardware.ArchRISCV64},
		ladder: buildLadder(log, "riscv", candidates, faults),
	}
}

func (o *riscvOptimizer) Name() string                        { return "riscv" }
func (o *riscvOptimizer) Architecture() hardware.Architecture { return hardware.ArchRISCV64 }
func (o *riscvOptimizer) degradedRungs() []string             { return o.ladder.degraded }

func (o *riscvOptimizer) CreatePath(op Operation, profile WorkloadProfile) ExecutionPath {
	return createOnLadder(o.ladder, op, o.info, profile)
}
