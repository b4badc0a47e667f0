package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/okian/tourintel/internal/probe"
)

// Default configuration constants.
const (
	defaultNumQueries   = 50
	defaultRepeats      = 2
	defaultWorkers      = 2 // multiplier for runtime.NumCPU()
	defaultTimeout      = 30 * time.Second
	defaultProbeTimeout = 10 * time.Minute
)

func main() {
	var (
		baseURL     = flag.String("url", "http://localhost:8080", "Base URL of the service")
		numQueries  = flag.Int("queries", defaultNumQueries, "Number of artist queries to probe")
		workers     = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
		timeout     = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		repeats     = flag.Int("repeats", defaultRepeats, "Repeat fetches per query for the determinism check")
		outputFile  = flag.String("output", "", "Output file for fetched reports (default: probe_reports_TIMESTAMP.json)")
		logFile     = flag.String("log", "", "Log file for probe output (default: probe_log_TIMESTAMP.log)")
		skipHeatmap = flag.Bool("skip-heatmap", false, "Skip the heatmap ordering check")
		verbose     = flag.Bool("verbose", false, "Enable verbose logging")
		help        = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		probe.ShowHelp()
		return
	}

	// Setup logging
	if err := probe.SetupLogging(*logFile); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		return
	}

	// Create context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), defaultProbeTimeout)
	defer cancel()

	// Create probe configuration
	config := &probe.Config{
		BaseURL:     *baseURL,
		NumQueries:  *numQueries,
		Workers:     *workers,
		Timeout:     *timeout,
		Repeats:     *repeats,
		OutputFile:  *outputFile,
		LogFile:     *logFile,
		Verbose:     *verbose,
		SkipHeatmap: *skipHeatmap,
	}

	// Run the probe
	if err := probe.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Probe failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}
