package accel

import (
	"github.com/BitForge-Labs/accel_layer/internal/hardware"
	"github.com/BitForge-Labs/accel_layer/pkg/logger"
)

// genericOptimizer is the reference backend and the terminal fallback for
// every ladder. Its outputs define consensus: every other backend must match
// them byte for byte on every input.
type genericOptimizer struct {
	caps hardware.Capabilities
	info archInfo
}

func newGenericOptimizer(caps hardware.Capabilities, _ logger.Logger) *genericOptimizer {
	return &genericOptimizer{
		caps: caps,
		info: archInfo{name: rungGeneric, arch: caps.Architecture},
	}
}

func (o *genericOptimizer) Name() string                        { return rungGeneric }
func (o *genericOptimizer) Architecture() hardware.Architecture { return o.caps.Architecture }
func (o *genericOptimizer) degradedRungs() []string             { return nil }

func (o *genericOptimizer) CreatePath(op Operation, profile WorkloadProfile) ExecutionPath {
	cfg := genericKernel()
	cfg.batchWindow = profile.batchWindow(cfg.batchWindow)
	return buildPath(op, o.info, rungGeneric, cfg)
}
