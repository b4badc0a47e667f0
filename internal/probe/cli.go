package probe

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/okian/tourintel/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0600
)

// SetupLogging configures logging to both console and file.
// If logFile is empty, a timestamped filename is generated.
func SetupLogging(logFile string) error {
	// Initialize the logger first
	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if logFile == "" {
		timestamp := time.Now().Format("20060102_150405")
		logFile = "probe_log_" + timestamp + ".log"
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}

	multiWriter := io.MultiWriter(os.Stdout, file)
	log.SetOutput(multiWriter)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	logger.Get().Info(context.Background(), "logging to file", logger.String("logFile", logFile))
	return nil
}

// ShowHelp prints usage information for the intel probe tool.
func ShowHelp() {
	os.Stdout.WriteString(`Tourintel Probe Tool
====================

A concurrent tool for smoke-testing a running tourintel instance: it
drives the intel API with a mix of known and unknown artist queries and
verifies the output contract holds for every response.

Usage:
  go run cmd/intel-probe/main.go [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:8080")
  -queries int
        Number of artist queries to probe (default 50)
  -workers int
        Number of concurrent workers (default CPU cores * 2)
  -timeout duration
        HTTP request timeout (default 30s)
  -repeats int
        Repeat fetches per query for the determinism check (default 2)
  -output string
        Output file for fetched reports (default: probe_reports_TIMESTAMP.json)
  -log string
        Log file for probe output (default: probe_log_TIMESTAMP.log)
  -skip-heatmap
        Skip the heatmap ordering check
  -verbose
        Enable verbose logging
  -help
        Show this help message

Examples:
  # Probe with default settings
  go run cmd/intel-probe/main.go

  # Probe with custom parameters
  go run cmd/intel-probe/main.go -queries 200 -workers 16 -url http://localhost:9090

  # Probe with verbose output
  go run cmd/intel-probe/main.go -verbose -queries 100
`)
}
