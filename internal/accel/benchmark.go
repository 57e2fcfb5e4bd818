package accel

import (
	"fmt"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// PerformanceMetrics is the informational output of the micro-benchmark
// suite. Nothing in it feeds back into path selection or correctness; the
// documented per-architecture improvement figures are design targets, not
// guarantees, so callers must treat these numbers as descriptive only.
type PerformanceMetrics struct {
	SigVerificationsPerSecond float64
	TransactionsPerSecond     float64
	ScriptOpsPerSecond        float64
	HashesPerSecond           float64
	CPUUtilization            float64
	MemoryUsageMB             float64

	// PathLatencies maps backend path names to their measured mean latency.
	PathLatencies map[string]time.Duration

	CollectedAt time.Time
}

// BenchmarkOptions bounds a benchmark run.
type BenchmarkOptions struct {
	// Iterations per (operation, backend) measurement.
	Iterations int
	// IncludeGeneric additionally measures the Generic path for each
	// operation so callers can compare specialized rungs to the reference.
	IncludeGeneric bool
}

// DefaultBenchmarkOptions returns the fixed suite configuration.
func DefaultBenchmarkOptions() BenchmarkOptions {
	return BenchmarkOptions{Iterations: 200, IncludeGeneric: true}
}

// BenchmarkPerformance runs the fixed micro-benchmark suite over every
// operation on the selected backend (and the Generic reference when
// requested). Strictly out-of-band: it spends wall-clock time and must not
// be called from the validation hot path.
func (e *Engine) BenchmarkPerformance(opts BenchmarkOptions) (PerformanceMetrics, error) {
	if opts.Iterations < 1 {
		opts.Iterations = 1
	}

	metrics := PerformanceMetrics{
		PathLatencies: make(map[string]time.Duration),
		CollectedAt:   time.Now(),
	}

	generic := newGenericOptimizer(e.caps, e.log)
	profile := e.Profile()

	for _, op := range AllOperations() {
		input := representativeInput(op)

		selected := e.opt.CreatePath(op, profile)
		lat, err := measurePath(selected, input, opts.Iterations)
		if err != nil {
			return metrics, fmt.Errorf("benchmark %s on %s: %w", op, selected.Name(), err)
		}
		metrics.PathLatencies[selected.Name()] = lat
		e.metrics.observeBenchmark(selected, lat.Seconds())

		if opts.IncludeGeneric && e.opt.Name() != rungGeneric {
			ref := generic.CreatePath(op, profile)
			refLat, err := measurePath(ref, input, opts.Iterations)
			if err != nil {
				return metrics, fmt.Errorf("benchmark %s on %s: %w", op, ref.Name(), err)
			}
			metrics.PathLatencies[ref.Name()] = refLat
			e.metrics.observeBenchmark(ref, refLat.Seconds())
		}

		rate := ratePerSecond(lat)
		switch op {
		case OpSchnorrVerify:
			metrics.SigVerificationsPerSecond = rate
		case OpBatchVerify:
			metrics.TransactionsPerSecond = rate
		case OpScriptExecute:
			metrics.ScriptOpsPerSecond = rate
		case OpSHA256:
			metrics.HashesPerSecond = rate
		}
	}

	fillUtilization(&metrics)

	e.log.Info("benchmark complete",
		"sig_verifications_per_second", metrics.SigVerificationsPerSecond,
		"hashes_per_second", metrics.HashesPerSecond,
		"script_ops_per_second", metrics.ScriptOpsPerSecond)
	return metrics, nil
}

// measurePath times iterations of path.Execute over input and returns the
// mean latency.
func measurePath(p ExecutionPath, input []byte, iterations int) (time.Duration, error) {
	// Warm once so constant-table setup does not pollute the measurement.
	if _, err := p.Execute(input); err != nil {
		return 0, err
	}
	start := time.Now()
	for i := 0; i < iterations; i++ {
		if _, err := p.Execute(input); err != nil {
			return 0, err
		}
	}
	return time.Since(start) / time.Duration(iterations), nil
}

func ratePerSecond(lat time.Duration) float64 {
	if lat <= 0 {
		return 0
	}
	return float64(time.Second) / float64(lat)
}

// fillUtilization samples process-visible CPU and memory figures via
// gopsutil. Sampling failures leave the fields at zero; the benchmark result
// is informational either way.
func fillUtilization(m *PerformanceMetrics) {
	if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
		m.CPUUtilization = percents[0]
	}
	if vm, err := mem.VirtualMemory(); err == nil && vm != nil {
		m.MemoryUsageMB = float64(vm.Used) / (1024 * 1024)
	}
}
