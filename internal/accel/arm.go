package accel

import (
	"github.com/BitForge-Labs/accel_layer/internal/hardware"
	"github.com/BitForge-Labs/accel_layer/pkg/logger"
)

// armOptimizer serves AArch64 parts. Ladder: the SHA2 crypto extension
// first, then SVE, then NEON, then Generic.
type armOptimizer struct {
	caps   hardware.Capabilities
	info   archInfo
	ladder ladder
}

func newARMOptimizer(caps hardware.Capabilities, log logger.Logger, faults ...string) *armOptimizer {
	candidates := []rung{
		{
			name:   "crypto-sha2",
			cfg:    kernelConfig{hash: simdSHA256, batchWindow: 64},
			usable: caps.HasCrypto("SHA2"),
		},
		{
			name:   "sve",
			cfg:    kernelConfig{hash: simdSHA256, batchWindow: 64},
			usable: caps.HasVector("SVE"),
		},
		{
			name:   "neon",
			cfg:    kernelConfig{hash: simdSHA256, batchWindow: 32},
			usable: caps.HasVector("NEON"),
		},
	}
	return &armOptimizer{
		caps:   caps,
		info:   archInfo{name: "arm", arch: hardware.ArchAArch64},
		ladder: buildLadder(log, "arm", candidates, faults),
	}
}

func (o *armOptimizer) Name() string                        { return "arm" }
func (o *armOptimizer) Architecture() hardware.Architecture { return hardware.ArchAArch64 }
func (o *armOptimizer) degradedRungs() []string             { return o.ladder.degraded }

func (o *armOptimizer) CreatePath(op Operation, profile WorkloadProfile) ExecutionPath {
	return createOnLadder(o.ladder, op, o.info, profile)
}
