package accel

import (
	"bytes"
	"encoding/hex"

	"github.com/BitForge-Labs/accel_layer/internal/hardware"
	"github.com/BitForge-Labs/accel_layer/pkg/logger"
)

// Optimizer selects the best reachable ExecutionPath for one architecture.
// The implementer set is sealed: instances are created only by newOptimizer,
// so every backend that can ever run is auditable here. Optimizers are
// stateless after construction and freely shareable.
type Optimizer interface {
	// Name identifies the backend family, e.g. "intel".
	Name() string
	// Architecture returns the architecture this optimizer serves.
	Architecture() hardware.Architecture
	// CreatePath resolves op to the highest usable rung of the preference
	// ladder. Total: it never fails, terminating at the Generic kernel.
	CreatePath(op Operation, profile WorkloadProfile) ExecutionPath
	// degradedRungs lists rungs whose feature was advertised but proved
	// unusable at construction. Unexported so the implementer set stays
	// sealed to this package.
	degradedRungs() []string
}

// newOptimizer maps a capability snapshot to the matching optimizer. The
// switch is the closed composition point demanded by consensus safety: no
// plugin registration, no dynamic lookup.
func newOptimizer(caps hardware.Capabilities, log logger.Logger, faults ...string) Optimizer {
	switch caps.Architecture {
	case hardware.ArchRISCV64:
		return newRISCVOptimizer(caps, log, faults...)
	case hardware.ArchX86_64:
		switch caps.Vendor {
		case hardware.VendorAMD:
			return newAMDOptimizer(caps, log, faults...)
		case hardware.VendorIntel:
			return newIntelOptimizer(caps, log, faults...)
		default:
			return newGenericOptimizer(caps, log)
		}
	case hardware.ArchAArch64:
		return newARMOptimizer(caps, log, faults...)
	default:
		return newGenericOptimizer(caps, log)
	}
}

// rungGeneric is the terminal rung of every ladder.
const rungGeneric = "generic"

// selfCheckVector is the FIPS-180 "abc" vector. Every accelerated SHA-256
// rung must reproduce it at construction time before it is allowed to serve
// consensus operations.
var (
	selfCheckInput  = []byte("abc")
	selfCheckDigest = mustHex("ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad")
)

func mustHex(s string) []byte {
	b, err := hex.DecodeString(s)
	if err != nil {
		panic(err)
	}
	return b
}

// checkHashKernel reports whether the kernel reproduces the reference
// digest. A false return means the advertised feature is unusable on this
// machine (firmware or virtualization mismatch) and the ladder must degrade
// one rung.
func checkHashKernel(fn hashFn) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	sum := fn(selfCheckInput)
	return bytes.Equal(sum[:], selfCheckDigest)
}

// ladder is the ordered rung list shared by the concrete optimizers. Rungs
// are probed once at construction; selection walks the list and takes the
// first usable entry, so degradation is a by-construction property rather
// than a runtime branch.
type ladder struct {
	rungs []rung
	// degraded lists advertised rungs that failed their construction probe,
	// in ladder order. Rungs whose feature was never advertised are plain
	// absence, not degradation, and are not recorded here.
	degraded []string
}

type rung struct {
	name   string
	cfg    kernelConfig
	usable bool
}

// buildLadder probes each candidate rung and appends the always-usable
// Generic rung. faults lists rung names to treat as unusable; the
// equivalence harness uses it to exercise the degrade path.
func buildLadder(log logger.Logger, backend string, candidates []rung, faults []string) ladder {
	faulted := make(map[string]bool, len(faults))
	for _, f := range faults {
		faulted[f] = true
	}

	out := make([]rung, 0, len(candidates)+1)
	var degraded []string
	for _, c := range candidates {
		// Only an advertised rung can degrade; absence stays silent.
		if c.usable && (faulted[c.name] || !checkHashKernel(c.cfg.hash)) {
			c.usable = false
			degraded = append(degraded, c.name)
			log.Warn("acceleration rung degraded",
				"backend", backend, "rung", c.name)
		}
		out = append(out, c)
	}
	out = append(out, rung{name: rungGeneric, cfg: genericKernel(), usable: true})
	return ladder{rungs: out, degraded: degraded}
}

// selectRung returns the highest usable rung.
func (l ladder) selectRung() rung {
	for _, r := range l.rungs {
		if r.usable {
			return r
		}
	}
	// The Generic terminal rung is always usable; reaching this line would
	// mean the ladder was built without it.
	return rung{name: rungGeneric, cfg: genericKernel(), usable: true}
}

// createOnLadder binds op to the selected rung with the profile's batch
// window applied. Shared by all concrete optimizers.
func createOnLadder(l ladder, op Operation, arch archInfo, profile WorkloadProfile) ExecutionPath {
	r := l.selectRung()
	cfg := r.cfg
	cfg.batchWindow = profile.batchWindow(cfg.batchWindow)
	return buildPath(op, arch, r.name, cfg)
}
