// Package config loads the process configuration: environment variables for
// runtime settings and an optional YAML file for the workload tuning profile.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joeshaw/envdecode"
	"gopkg.in/yaml.v3"

	"github.com/BitForge-Labs/accel_layer/internal/accel"
)

// Config carries the environment-driven settings.
type Config struct {
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `env:"ACCEL_LOG_LEVEL,default=info"`
	// MetricsEnabled registers the prometheus collectors.
	MetricsEnabled bool `env:"ACCEL_METRICS_ENABLED,default=true"`
	// ProfilePath points at a YAML workload profile; empty means defaults.
	ProfilePath string `env:"ACCEL_PROFILE_PATH,default="`

	Bench BenchConfig
}

// BenchConfig bounds a benchmark run.
type BenchConfig struct {
	Iterations     int  `env:"ACCEL_BENCH_ITERATIONS,default=200"`
	IncludeGeneric bool `env:"ACCEL_BENCH_INCLUDE_GENERIC,default=true"`
}

// Load decodes the configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode environment: %w", err)
	}
	if cfg.Bench.Iterations < 1 {
		return nil, fmt.Errorf("ACCEL_BENCH_ITERATIONS must be positive, got %d", cfg.Bench.Iterations)
	}
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("unknown log level %q", cfg.LogLevel)
	}
	return &cfg, nil
}

// LoadWorkloadProfile reads a workload profile from a YAML file.
func LoadWorkloadProfile(path string) (accel.WorkloadProfile, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return accel.WorkloadProfile{}, fmt.Errorf("failed to read workload profile: %w", err)
	}

	profile := accel.DefaultWorkloadProfile()
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return accel.WorkloadProfile{}, fmt.Errorf("failed to parse workload profile: %w", err)
	}
	if profile.TransactionVolume < 0 {
		return accel.WorkloadProfile{}, fmt.Errorf("transaction volume must not be negative, got %d", profile.TransactionVolume)
	}
	return profile, nil
}

// LoadWorkloadProfileOrDefault loads a profile or falls back to the default
// when path is empty or the file is missing.
func LoadWorkloadProfileOrDefault(path string) accel.WorkloadProfile {
	if path == "" {
		return accel.DefaultWorkloadProfile()
	}
	profile, err := LoadWorkloadProfile(path)
	if err != nil {
		return accel.DefaultWorkloadProfile()
	}
	return profile
}
