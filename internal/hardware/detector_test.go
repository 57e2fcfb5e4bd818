package hardware

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDetect_Idempotent(t *testing.T) {
	a := Detect()
	b := Detect()
	if !a.Equal(b) {
		t.Errorf("two detections within one process differ:\n%s\n%s", a, b)
	}
}

func TestDetect_AlwaysUsable(t *testing.T) {
	caps := Detect()

	if caps.CoreCount < 1 {
		t.Errorf("CoreCount = %d, want >= 1", caps.CoreCount)
	}
	if caps.ThreadCount < caps.CoreCount {
		t.Errorf("ThreadCount = %d < CoreCount = %d", caps.ThreadCount, caps.CoreCount)
	}
	if caps.Architecture == "" {
		t.Error("Architecture is empty; detection must never yield an invalid snapshot")
	}
	if caps.Vendor == "" {
		t.Error("Vendor is empty; absent vendors must be recorded as VendorOther")
	}
}

func TestMinimal_IsValidSnapshot(t *testing.T) {
	caps := Minimal()

	if caps.Architecture != ArchOther {
		t.Errorf("Architecture = %s, want %s", caps.Architecture, ArchOther)
	}
	if caps.CoreCount != 1 || caps.ThreadCount != 1 {
		t.Errorf("minimal snapshot must report one core/thread, got %d/%d",
			caps.CoreCount, caps.ThreadCount)
	}
	if len(caps.VectorExtensions) != 0 || len(caps.CryptoExtensions) != 0 {
		t.Error("minimal snapshot must advertise no extensions")
	}
}

func TestCapabilities_HasVectorHasCrypto(t *testing.T) {
	caps := Capabilities{
		VectorExtensions: []string{"AVX2", "AVX512F"},
		CryptoExtensions: []string{"SHA"},
	}

	if !caps.HasVector("AVX2") {
		t.Error("HasVector(AVX2) = false, want true")
	}
	if caps.HasVector("NEON") {
		t.Error("HasVector(NEON) = true, want false")
	}
	if !caps.HasCrypto("SHA") {
		t.Error("HasCrypto(SHA) = false, want true")
	}
	if caps.HasCrypto("AESNI") {
		t.Error("HasCrypto(AESNI) = true, want false")
	}
}

func TestCapabilities_EqualIgnoresExtensionOrder(t *testing.T) {
	a := Minimal()
	a.VectorExtensions = []string{"AVX", "AVX2"}
	b := Minimal()
	b.VectorExtensions = []string{"AVX2", "AVX"}

	if !a.Equal(b) {
		t.Error("Equal must not depend on extension ordering")
	}

	b.VectorExtensions = []string{"AVX2"}
	if a.Equal(b) {
		t.Error("Equal must detect differing extension sets")
	}
}

func TestProbeRISCVISA_ParsesVectorAndCrypto(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cpuinfo")
	content := "processor\t: 0\nhart\t: 0\nisa\t: rv64imafdcv_zicsr_zkne_zknh\nmmu\t: sv48\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	caps := Minimal()
	caps.Architecture = ArchRISCV64
	probeRISCVISA(&caps, path)

	if !caps.HasVector("RVV") {
		t.Errorf("RVV not detected from isa string, got %v", caps.VectorExtensions)
	}
	if !caps.HasCrypto("ZKNE") || !caps.HasCrypto("ZKNH") {
		t.Errorf("scalar crypto extensions not detected, got %v", caps.CryptoExtensions)
	}
	if caps.Vendor != VendorRISCV {
		t.Errorf("Vendor = %s, want %s", caps.Vendor, VendorRISCV)
	}
}

func TestProbeAccelerators_DetectsSysfsClasses(t *testing.T) {
	root := t.TempDir()
	// Two drm entries map to a single class-level "gpu" record; connector
	// nodes such as card0-DP-1 share the card prefix.
	for _, p := range []string{"drm/card0", "drm/card0-DP-1", "accel/accel0"} {
		if err := os.MkdirAll(filepath.Join(root, p), 0o755); err != nil {
			t.Fatalf("fixture: %v", err)
		}
	}
	// An empty class directory records nothing.
	if err := os.MkdirAll(filepath.Join(root, "infiniband"), 0o755); err != nil {
		t.Fatalf("fixture: %v", err)
	}

	caps := Minimal()
	probeAccelerators(&caps, root)

	if !equalStrings(caps.Accelerators, []string{"gpu", "compute"}) {
		t.Errorf("Accelerators = %v, want [gpu compute]", caps.Accelerators)
	}
}

func TestProbeAccelerators_MissingSysfsLeavesAbsent(t *testing.T) {
	caps := Minimal()
	probeAccelerators(&caps, filepath.Join(t.TempDir(), "nope"))
	if len(caps.Accelerators) != 0 {
		t.Errorf("unreadable sysfs must leave accelerators absent, got %v", caps.Accelerators)
	}
}

func TestProbeRISCVISA_MissingFileLeavesFieldsAbsent(t *testing.T) {
	caps := Minimal()
	caps.Architecture = ArchRISCV64
	probeRISCVISA(&caps, filepath.Join(t.TempDir(), "nope"))

	if len(caps.VectorExtensions) != 0 || len(caps.CryptoExtensions) != 0 {
		t.Error("unreadable cpuinfo must leave extensions absent, not error")
	}
}
