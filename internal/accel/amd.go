package accel

import (
	"github.com/BitForge-Labs/accel_layer/internal/hardware"
	"github.com/BitForge-Labs/accel_layer/pkg/logger"
)

// amdOptimizer serves AMD x86-64 parts. Zen parts group cores into CCXs that
// share an L3 slice; the batch window is sized to a CCX's worth of work so a
// verification burst stays cache-resident. Ladder: SHA extensions, then
// CCX-aware AVX2, then AVX, then Generic.
type amdOptimizer struct {
	caps   hardware.Capabilities
	info   archInfo
	ladder ladder
}

func newAMDOptimizer(caps hardware.Capabilities, log logger.Logger, faults ...string) *amdOptimizer {
	zenWindow := 64
	if caps.Topology == "zen-ccx" && caps.CoreCount >= 8 {
		zenWindow = 128
	}
	candidates := []rung{
		{
			name:   "sha-ni",
			cfg:    kernelConfig{hash: simdSHA256, batchWindow: zenWindow},
			usable: caps.HasCrypto("SHA"),
		},
		{
			name:   "zen-avx2",
			cfg:    kernelConfig{hash: simdSHA256, batchWindow: zenWindow},
			usable: caps.HasVector("AVX2"),
		},
		{
			name:   "avx",
			cfg:    kernelConfig{hash: simdSHA256, batchWindow: 32},
			usable: caps.HasVector("AVX"),
		},
	}
	return &amdOptimizer{
		caps:   caps,
		info:   archInfo{name: "amd", arch: hardware.ArchX86_64},
		ladder: buildLadder(log, "amd", candidates, faults),
	}
}

func (o *amdOptimizer) Name() string                        { return "amd" }
func (o *amdOptimizer) Architecture() hardware.Architecture { return hardware.ArchX86_64 }
func (o *amdOptimizer) degradedRungs() []string             { return o.ladder.degraded }

func (o *amdOptimizer) CreatePath(op Operation, profile WorkloadProfile) ExecutionPath {
	return createOnLadder(o.ladder, op, o.info, profile)
}
