package accel

// Priority ranks block-validation urgency in a workload profile.
type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityNormal   Priority = "normal"
	PriorityLow      Priority = "low"
)

// MemoryTarget expresses the memory/performance trade-off a caller wants.
type MemoryTarget string

const (
	MemoryMinimal     MemoryTarget = "minimal"
	MemoryBalanced    MemoryTarget = "balanced"
	MemoryPerformance MemoryTarget = "performance"
)

// PowerTarget expresses the power/performance trade-off a caller wants.
type PowerTarget string

const (
	PowerEfficient   PowerTarget = "efficient"
	PowerBalanced    PowerTarget = "balanced"
	PowerPerformance PowerTarget = "performance"
)

// WorkloadProfile is a descriptive tuning hint. It biases future path
// selection (batch window sizing in particular) and never affects
// correctness: any profile yields bit-identical results.
type WorkloadProfile struct {
	TransactionVolume       int                `yaml:"transaction_volume"`
	BlockValidationPriority Priority           `yaml:"block_validation_priority"`
	MemoryTarget            MemoryTarget       `yaml:"memory_target"`
	PowerTarget             PowerTarget        `yaml:"power_target"`
	Custom                  map[string]float64 `yaml:"custom,omitempty"`
}

// DefaultWorkloadProfile returns the untuned profile every engine starts
// with.
func DefaultWorkloadProfile() WorkloadProfile {
	return WorkloadProfile{
		TransactionVolume:       1000,
		BlockValidationPriority: PriorityNormal,
		MemoryTarget:            MemoryBalanced,
		PowerTarget:             PowerBalanced,
	}
}

// batchWindow derives the batch scheduling window from the profile. Bounded
// so a hostile or absurd profile cannot distort scheduling; the value never
// influences any path's output.
func (p WorkloadProfile) batchWindow(defaultWindow int) int {
	window := defaultWindow
	switch p.MemoryTarget {
	case MemoryMinimal:
		window = defaultWindow / 2
	case MemoryPerformance:
		window = defaultWindow * 4
	}
	if p.TransactionVolume > 10000 && p.MemoryTarget != MemoryMinimal {
		window *= 2
	}
	if window < 1 {
		window = 1
	}
	if window > 4096 {
		window = 4096
	}
	return window
}
