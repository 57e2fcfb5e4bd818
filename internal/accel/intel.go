package accel

import (
	"github.com/BitForge-Labs/accel_layer/internal/hardware"
	"github.com/BitForge-Labs/accel_layer/pkg/logger"
)

// intelOptimizer serves Intel x86-64 parts. Preference ladder: dedicated
// SHA extensions first, then AVX-512, then AVX2, then Generic.
type intelOptimizer struct {
	caps   hardware.Capabilities
	info   archInfo
	ladder ladder
}

func newIntelOptimizer(caps hardware.Capabilities, log logger.Logger, faults ...string) *intelOptimizer {
	candidates := []rung{
		{
			name:   "sha-ni",
			cfg:    kernelConfig{hash: simdSHA256, batchWindow: 64},
			usable: caps.HasCrypto("SHA"),
		},
		{
			name:   "avx512",
			cfg:    kernelConfig{hash: simdSHA256, batchWindow: 128},
			usable: caps.HasVector("AVX512F"),
		},
		{
			name:   "avx2",
			cfg:    kernelConfig{hash: simdSHA256, batchWindow: 64},
			usable: caps.HasVector("AVX2"),
		},
	}
	return &intelOptimizer{
		caps:   caps,
		info:   archInfo{name: "intel", arch: hardware.ArchX86_64},
		ladder: buildLadder(log, "intel", candidates, faults),
	}
}

func (o *intelOptimizer) Name() string                        { return "intel" }
func (o *intelOptimizer) Architecture() hardware.Architecture { return hardware.ArchX86_64 }
func (o *intelOptimizer) degradedRungs() []string             { return o.ladder.degraded }

func (o *intelOptimizer) CreatePath(op Operation, profile WorkloadProfile) ExecutionPath {
	return createOnLadder(o.ladder, op, o.info, profile)
}
