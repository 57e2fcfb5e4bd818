package accel

import (
	"sync"

	"github.com/BitForge-Labs/accel_layer/internal/hardware"
	"github.com/BitForge-Labs/accel_layer/pkg/logger"
)

// Engine is the single entry point for capability detection, path selection,
// workload tuning and benchmarking. Construct one per process at startup and
// pass it explicitly to validation call sites; everything except the tuning
// profile is read-only after construction.
type Engine struct {
	caps    hardware.Capabilities
	opt     Optimizer
	log     logger.Logger
	metrics *Metrics

	// The tuning profile is the engine's only mutable state. Single-writer
	// discipline: tune during a quiescent phase, then treat the engine as
	// read-only. Issued paths copy their parameters at creation and are
	// never affected by later tuning.
	mu      sync.RWMutex
	profile WorkloadProfile
}

// Option configures an Engine at construction.
type Option func(*engineOptions)

type engineOptions struct {
	caps    *hardware.Capabilities
	log     logger.Logger
	metrics *Metrics
	profile WorkloadProfile
	faults  []string
}

// WithCapabilities injects a capability snapshot instead of probing the
// machine. Tests and the equivalence harness use this to pin dispatch.
func WithCapabilities(caps hardware.Capabilities) Option {
	return func(o *engineOptions) { o.caps = &caps }
}

// WithLogger sets the engine's logger. Defaults to a no-op logger.
func WithLogger(log logger.Logger) Option {
	return func(o *engineOptions) { o.log = log }
}

// WithMetrics attaches prometheus collectors to the engine.
func WithMetrics(m *Metrics) Option {
	return func(o *engineOptions) { o.metrics = m }
}

// WithWorkloadProfile sets the initial tuning profile.
func WithWorkloadProfile(p WorkloadProfile) Option {
	return func(o *engineOptions) { o.profile = p }
}

// WithFaults marks the named acceleration rungs as unusable at construction.
// The equivalence harness uses it to force ladder degradation on machines
// that do not exhibit the fault naturally.
func WithFaults(rungs ...string) Option {
	return func(o *engineOptions) { o.faults = append(o.faults, rungs...) }
}

// New builds an engine: detect (or accept) a capability snapshot, select the
// optimizer for the detected architecture, and start in the untuned state.
// Construction never fails; an undetectable machine dispatches to Generic.
func New(opts ...Option) *Engine {
	options := engineOptions{profile: DefaultWorkloadProfile()}
	for _, opt := range opts {
		opt(&options)
	}
	if options.log == nil {
		options.log = logger.Nop()
	}

	var caps hardware.Capabilities
	if options.caps != nil {
		caps = *options.caps
	} else {
		caps = hardware.Detect()
	}

	optimizer := newOptimizer(caps, options.log, options.faults...)
	options.metrics.observeDegradations(optimizer.degradedRungs())
	options.log.Info("acceleration engine ready",
		"backend", optimizer.Name(),
		"architecture", string(caps.Architecture),
		"vendor", string(caps.Vendor),
		"vector", caps.VectorExtensions,
		"crypto", caps.CryptoExtensions)

	return &Engine{
		caps:    caps,
		opt:     optimizer,
		log:     options.log,
		metrics: options.metrics,
		profile: options.profile,
	}
}

// Capabilities returns the cached snapshot taken at construction. Immutable;
// re-detection after a hot-plug event means constructing a new engine.
func (e *Engine) Capabilities() hardware.Capabilities {
	return e.caps
}

// Backend returns the name of the selected optimizer.
func (e *Engine) Backend() string {
	return e.opt.Name()
}

// CreateOptimizedPath resolves op to the best reachable backend under the
// current tuning profile. Total: every operation always yields a usable
// path, terminating at Generic when nothing specialized is reachable.
func (e *Engine) CreateOptimizedPath(op Operation) ExecutionPath {
	e.mu.RLock()
	profile := e.profile
	e.mu.RUnlock()

	p := e.opt.CreatePath(op, profile)
	e.metrics.observePathCreated(p)
	return p
}

// TuneForWorkload replaces the tuning profile. Only future CreateOptimizedPath
// calls observe the new profile; paths already issued keep the parameters
// they were built with.
func (e *Engine) TuneForWorkload(profile WorkloadProfile) {
	e.mu.Lock()
	e.profile = profile
	e.mu.Unlock()
	e.log.Info("workload profile tuned",
		"transaction_volume", profile.TransactionVolume,
		"priority", string(profile.BlockValidationPriority),
		"memory_target", string(profile.MemoryTarget),
		"power_target", string(profile.PowerTarget))
}

// Profile returns the current tuning profile.
func (e *Engine) Profile() WorkloadProfile {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.profile
}
