// Package hardware detects and describes the capabilities of the machine the
// acceleration layer runs on. Detection happens once at startup and produces
// an immutable snapshot; every downstream selection decision is a pure
// function of that snapshot.
package hardware

import (
	"fmt"
	"sort"
)

// Architecture identifies the base CPU architecture.
type Architecture string

const (
	ArchX86_64  Architecture = "x86_64"
	ArchAArch64 Architecture = "aarch64"
	ArchRISCV64 Architecture = "riscv64"
	ArchOther   Architecture = "other"
)

// Vendor identifies the CPU vendor for vendor-specific selection.
type Vendor string

const (
	VendorAMD   Vendor = "amd"
	VendorIntel Vendor = "intel"
	VendorARM   Vendor = "arm"
	VendorRISCV Vendor = "riscv"
	VendorOther Vendor = "other"
)

// CacheTopology holds per-level cache sizes in bytes. Zero means unknown.
type CacheTopology struct {
	L1D int `yaml:"l1d"`
	L2  int `yaml:"l2"`
	L3  int `yaml:"l3"`
}

// Capabilities is an immutable snapshot of the machine's hardware features.
// Absent or undeterminable features are recorded as empty rather than as
// errors, so a snapshot is always a valid dispatch input.
type Capabilities struct {
	Architecture Architecture
	Vendor       Vendor
	Model        string
	CoreCount    int
	ThreadCount  int

	// Instruction-set extensions, normalized to upper-case names
	// (e.g. "AVX2", "AVX512F", "SHA", "NEON", "SVE", "RVV", "ZKNE").
	VectorExtensions []string
	CryptoExtensions []string

	Cache          CacheTopology
	NUMANodes      int
	MemoryChannels int

	// Topology carries vendor-specific layout hints, e.g. CCX grouping on
	// AMD Zen. Empty when not applicable.
	Topology string

	// Accelerators lists detected off-CPU devices. Informational only; the
	// validation paths never depend on them.
	Accelerators []string
}

// Minimal returns the all-absent snapshot used when every probe fails.
// Dispatch over this snapshot always resolves to the Generic backend.
func Minimal() Capabilities {
	return Capabilities{
		Architecture: ArchOther,
		Vendor:       VendorOther,
		Model:        "unknown",
		CoreCount:    1,
		ThreadCount:  1,
		NUMANodes:    1,
	}
}

// HasVector reports whether the named vector extension was detected.
func (c Capabilities) HasVector(name string) bool {
	return containsString(c.VectorExtensions, name)
}

// HasCrypto reports whether the named crypto extension was detected.
func (c Capabilities) HasCrypto(name string) bool {
	return containsString(c.CryptoExtensions, name)
}

// Equal reports whether two snapshots describe identical capabilities.
func (c Capabilities) Equal(o Capabilities) bool {
	if c.Architecture != o.Architecture || c.Vendor != o.Vendor || c.Model != o.Model {
		return false
	}
	if c.CoreCount != o.CoreCount || c.ThreadCount != o.ThreadCount {
		return false
	}
	if c.Cache != o.Cache || c.NUMANodes != o.NUMANodes || c.MemoryChannels != o.MemoryChannels {
		return false
	}
	if c.Topology != o.Topology {
		return false
	}
	return equalStrings(c.VectorExtensions, o.VectorExtensions) &&
		equalStrings(c.CryptoExtensions, o.CryptoExtensions) &&
		equalStrings(c.Accelerators, o.Accelerators)
}

// String renders a short human-readable summary for logs.
func (c Capabilities) String() string {
	return fmt.Sprintf("%s/%s %q cores=%d threads=%d vector=%v crypto=%v",
		c.Architecture, c.Vendor, c.Model, c.CoreCount, c.ThreadCount,
		c.VectorExtensions, c.CryptoExtensions)
}

func containsString(list []string, name string) bool {
	for _, s := range list {
		if s == name {
			return true
		}
	}
	return false
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	as := append([]string(nil), a...)
	bs := append([]string(nil), b...)
	sort.Strings(as)
	sort.Strings(bs)
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}
