package hardware

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/klauspost/cpuid/v2"
	"github.com/shirou/gopsutil/v3/host"
)

var (
	detectOnce sync.Once
	detected   Capabilities
)

// Detect probes the running machine and returns a capability snapshot.
// It is infallible: any probe that cannot be resolved leaves the field
// absent. The probe runs once per process; later calls return the cached
// snapshot, so two calls always return Equal values.
func Detect() Capabilities {
	detectOnce.Do(func() {
		detected = probe()
	})
	return detected
}

// probe performs the actual hardware inspection. Split from Detect so tests
// can exercise it without the process-wide cache.
func probe() Capabilities {
	caps := Minimal()

	switch runtime.GOARCH {
	case "amd64":
		caps.Architecture = ArchX86_64
	case "arm64":
		caps.Architecture = ArchAArch64
		cpuid.DetectARM()
	case "riscv64":
		caps.Architecture = ArchRISCV64
	default:
		caps.Architecture = ArchOther
	}

	probeCPUID(&caps)
	if caps.Architecture == ArchRISCV64 {
		probeRISCVISA(&caps, "/proc/cpuinfo")
	}
	probeHost(&caps)
	probeAccelerators(&caps, "/sys/class")

	if caps.ThreadCount < caps.CoreCount {
		caps.ThreadCount = caps.CoreCount
	}
	return caps
}

// probeCPUID fills vendor, model, topology and extension sets from the CPUID
// leaf data (or its ARM equivalent). Fields stay absent when the leaf is not
// readable, e.g. under restrictive virtualization.
func probeCPUID(caps *Capabilities) {
	info := cpuid.CPU

	switch info.VendorID {
	case cpuid.Intel:
		caps.Vendor = VendorIntel
	case cpuid.AMD:
		caps.Vendor = VendorAMD
	case cpuid.ARM, cpuid.Ampere, cpuid.Qualcomm:
		caps.Vendor = VendorARM
	default:
		if caps.Architecture == ArchAArch64 {
			caps.Vendor = VendorARM
		} else if caps.Architecture == ArchRISCV64 {
			caps.Vendor = VendorRISCV
		}
	}

	if info.BrandName != "" {
		caps.Model = strings.TrimSpace(info.BrandName)
	}
	if info.PhysicalCores > 0 {
		caps.CoreCount = info.PhysicalCores
	} else {
		caps.CoreCount = runtime.NumCPU()
	}
	if info.LogicalCores > 0 {
		caps.ThreadCount = info.LogicalCores
	} else {
		caps.ThreadCount = runtime.NumCPU()
	}

	if info.Cache.L1D > 0 {
		caps.Cache.L1D = info.Cache.L1D
	}
	if info.Cache.L2 > 0 {
		caps.Cache.L2 = info.Cache.L2
	}
	if info.Cache.L3 > 0 {
		caps.Cache.L3 = info.Cache.L3
	}

	switch caps.Architecture {
	case ArchX86_64:
		for _, f := range []struct {
			id   cpuid.FeatureID
			name string
		}{
			{cpuid.SSE42, "SSE4.2"},
			{cpuid.AVX, "AVX"},
			{cpuid.AVX2, "AVX2"},
			{cpuid.AVX512F, "AVX512F"},
			{cpuid.AVX512VL, "AVX512VL"},
		} {
			if info.Has(f.id) {
				caps.VectorExtensions = append(caps.VectorExtensions, f.name)
			}
		}
		for _, f := range []struct {
			id   cpuid.FeatureID
			name string
		}{
			{cpuid.SHA, "SHA"},
			{cpuid.AESNI, "AESNI"},
		} {
			if info.Has(f.id) {
				caps.CryptoExtensions = append(caps.CryptoExtensions, f.name)
			}
		}
		// Zen parts expose core-complex groupings that matter for batch
		// scheduling. Record the hint when the brand string gives it away.
		if caps.Vendor == VendorAMD && strings.Contains(caps.Model, "Ryzen") {
			caps.Topology = "zen-ccx"
		}
	case ArchAArch64:
		if info.Has(cpuid.ASIMD) {
			caps.VectorExtensions = append(caps.VectorExtensions, "NEON")
		}
		if info.Has(cpuid.SVE) {
			caps.VectorExtensions = append(caps.VectorExtensions, "SVE")
		}
		if info.Has(cpuid.SHA2) {
			caps.CryptoExtensions = append(caps.CryptoExtensions, "SHA2")
		}
		if info.Has(cpuid.SHA3) {
			caps.CryptoExtensions = append(caps.CryptoExtensions, "SHA3")
		}
		if info.Has(cpuid.AESARM) {
			caps.CryptoExtensions = append(caps.CryptoExtensions, "AES")
		}
	}
}

// probeRISCVISA parses the ISA string from /proc/cpuinfo. cpuid has no
// RISC-V support, so the kernel's view is the only portable source. A missing
// or unreadable file leaves the extension sets absent.
func probeRISCVISA(caps *Capabilities, cpuinfoPath string) {
	data, err := os.ReadFile(cpuinfoPath)
	if err != nil {
		return
	}
	for _, line := range strings.Split(string(data), "\n") {
		if !strings.HasPrefix(line, "isa") {
			continue
		}
		parts := strings.SplitN(line, ":", 2)
		if len(parts) != 2 {
			continue
		}
		isa := strings.ToLower(strings.TrimSpace(parts[1]))
		if strings.Contains(isa, "v") && strings.HasPrefix(isa, "rv64") {
			// Single-letter extensions follow the rv64 base string.
			base := strings.SplitN(isa, "_", 2)[0]
			if strings.ContainsRune(base[4:], 'v') {
				caps.VectorExtensions = append(caps.VectorExtensions, "RVV")
			}
		}
		for _, ext := range strings.Split(isa, "_") {
			switch ext {
			case "zkne", "zknd", "zknh":
				caps.CryptoExtensions = append(caps.CryptoExtensions, strings.ToUpper(ext))
			case "zvkned", "zvknha", "zvknhb":
				caps.CryptoExtensions = append(caps.CryptoExtensions, strings.ToUpper(ext))
			}
		}
		caps.Vendor = VendorRISCV
		return
	}
}

// probeAccelerators records off-CPU compute devices visible under sysfs:
// GPUs through the drm class, compute accelerators through the accel class
// and RDMA NICs through the infiniband class. Class-level granularity is
// enough; selection never dispatches on these, they only inform logs and
// workload profiles. An unreadable sysfs leaves the field absent.
func probeAccelerators(caps *Capabilities, sysClass string) {
	classes := []struct {
		dir    string
		prefix string
		name   string
	}{
		{"drm", "card", "gpu"},
		{"accel", "accel", "compute"},
		{"infiniband", "", "rdma"},
	}
	for _, c := range classes {
		entries, err := os.ReadDir(filepath.Join(sysClass, c.dir))
		if err != nil {
			continue
		}
		for _, e := range entries {
			if c.prefix != "" && !strings.HasPrefix(e.Name(), c.prefix) {
				continue
			}
			caps.Accelerators = append(caps.Accelerators, c.name)
			break
		}
	}
}

// probeHost fills the model name from the OS when CPUID left it absent.
// Never fails; gopsutil errors are swallowed into absent fields.
func probeHost(caps *Capabilities) {
	if caps.Model != "unknown" && caps.Model != "" {
		return
	}
	info, err := host.Info()
	if err != nil || info == nil {
		return
	}
	if info.KernelArch != "" {
		caps.Model = info.KernelArch
	}
}
