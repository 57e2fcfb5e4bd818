// Package main implements accelbench, the out-of-band benchmark tool for the
// acceleration layer. It detects the machine, builds an engine, runs the
// fixed micro-benchmark suite and logs the resulting report. It never runs
// alongside validation.
package main

import (
	"flag"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/BitForge-Labs/accel_layer/internal/accel"
	"github.com/BitForge-Labs/accel_layer/internal/config"
	"github.com/BitForge-Labs/accel_layer/pkg/logger"
)

func main() {
	envFile := flag.String("env", "", "Optional .env file to load before reading the environment")
	profilePath := flag.String("profile", "", "Workload profile YAML (overrides ACCEL_PROFILE_PATH)")
	flag.Parse()

	if *envFile != "" {
		if err := godotenv.Load(*envFile); err != nil {
			logger.NewConsole("error").Error("failed to load env file", "path", *envFile, "error", err)
			os.Exit(1)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		logger.NewConsole("error").Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	log := logger.NewConsole(cfg.LogLevel)

	path := cfg.ProfilePath
	if *profilePath != "" {
		path = *profilePath
	}
	profile := config.LoadWorkloadProfileOrDefault(path)

	opts := []accel.Option{
		accel.WithLogger(log),
		accel.WithWorkloadProfile(profile),
	}
	if cfg.MetricsEnabled {
		opts = append(opts, accel.WithMetrics(accel.NewMetrics(prometheus.NewRegistry())))
	}
	engine := accel.New(opts...)

	caps := engine.Capabilities()
	log.Info("machine detected",
		"architecture", string(caps.Architecture),
		"vendor", string(caps.Vendor),
		"model", caps.Model,
		"cores", caps.CoreCount,
		"vector", caps.VectorExtensions,
		"crypto", caps.CryptoExtensions,
		"backend", engine.Backend())

	benchOpts := accel.BenchmarkOptions{
		Iterations:     cfg.Bench.Iterations,
		IncludeGeneric: cfg.Bench.IncludeGeneric,
	}
	report, err := engine.BenchmarkPerformance(benchOpts)
	if err != nil {
		log.Error("benchmark failed", "error", err)
		os.Exit(1)
	}

	for name, latency := range report.PathLatencies {
		log.Info("path measured", "path", name, "mean_latency", latency.String())
	}
	log.Info("benchmark report",
		"sig_verifications_per_second", report.SigVerificationsPerSecond,
		"transactions_per_second", report.TransactionsPerSecond,
		"script_ops_per_second", report.ScriptOpsPerSecond,
		"hashes_per_second", report.HashesPerSecond,
		"cpu_utilization_percent", report.CPUUtilization,
		"memory_usage_mb", report.MemoryUsageMB)
}
