package probe

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	json "github.com/goccy/go-json"

	"github.com/okian/tourintel/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0750
)

// Run executes the complete probe: health check, query generation,
// concurrent report fetching, contract verification, determinism and
// heatmap checks, and a final statistics summary.
func Run(ctx context.Context, config *Config) error {
	stats := &Stats{
		StartTime: time.Now(),
	}

	logger.Get().Info(ctx, "starting tourintel probe",
		logger.String("baseURL", config.BaseURL),
		logger.Int("queries", config.NumQueries),
		logger.Int("workers", config.Workers),
		logger.String("timeout", config.Timeout.String()),
		logger.Int("repeats", config.Repeats),
		logger.String("logFile", config.LogFile),
		logger.Any("verbose", config.Verbose))

	// Step 1: Check service health
	if err := checkServiceHealth(ctx, config); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Generate probe queries
	queries := generateQueries(ctx, config, stats)

	// Step 3: Fetch reports concurrently
	results, err := fetchReports(ctx, config, queries, stats)
	if err != nil {
		return fmt.Errorf("report fetching failed: %w", err)
	}

	// Step 4: Verify the output contract
	if err := verifyContracts(ctx, config, results, stats); err != nil {
		return fmt.Errorf("contract verification failed: %w", err)
	}

	// Step 5: Verify score determinism on repeat fetches
	if err := verifyDeterminism(ctx, config, results, stats); err != nil {
		return fmt.Errorf("determinism verification failed: %w", err)
	}

	// Step 6: Verify heatmap ordering
	if err := verifyHeatmaps(ctx, config, results, stats); err != nil {
		return fmt.Errorf("heatmap verification failed: %w", err)
	}

	// Step 7: Save fetched reports to file
	if err := saveReportsToFile(ctx, config, results); err != nil {
		logger.Get().Warn(ctx, "failed to save reports to file", logger.Error(err))
	}

	// Final statistics
	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	displayFinalStats(stats)

	if stats.ContractViolations > 0 || stats.DeterminismFailures > 0 || stats.HeatmapViolations > 0 {
		return fmt.Errorf("probe found %d contract, %d determinism, %d heatmap violations",
			stats.ContractViolations, stats.DeterminismFailures, stats.HeatmapViolations)
	}

	logger.Get().Info(ctx, "probe completed successfully")
	return nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, config *Config) error {
	logger.Get().Info(ctx, "checking service health")

	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/healthz"

	resp, err := client.Get(ctx, url)
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Get().Error(context.Background(), "failed to close response body", logger.Error(err))
		}
	}()

	if resp.StatusCode != StatusOK {
		return fmt.Errorf("service health check failed with status: %d", resp.StatusCode)
	}

	logger.Get().Info(ctx, "service is healthy")
	return nil
}

// saveReportsToFile saves the fetched reports to a JSON file.
func saveReportsToFile(ctx context.Context, config *Config, results []FetchResult) error {
	reports := make([]Report, 0, len(results))
	for _, result := range results {
		if result.Err == nil {
			reports = append(reports, result.Report)
		}
	}
	if len(reports) == 0 {
		return fmt.Errorf("no reports to save")
	}

	filename := config.OutputFile
	if filename == "" {
		timestamp := time.Now().Format("20060102_150405")
		filename = "probe_reports_" + timestamp + ".json"
	}

	dir := filepath.Dir(filename)
	if dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(reports, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal reports: %w", err)
	}
	if err := os.WriteFile(filename, data, logFilePermission); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	logger.Get().Info(ctx, "reports saved to file", logger.String("filename", filename))
	return nil
}

// displayFinalStats prints the final probe statistics.
func displayFinalStats(stats *Stats) {
	var successRate, reportsPerSecond float64

	total := stats.ReportsFetched + stats.ReportsFailed
	if total > 0 {
		successRate = float64(stats.ReportsFetched) / float64(total) * PercentageMultiplier
	}
	if stats.Duration > 0 {
		reportsPerSecond = float64(total) / stats.Duration.Seconds()
	}

	logger.Get().Info(context.Background(), "final statistics",
		logger.Int("queriesGenerated", stats.QueriesGenerated),
		logger.Int("reportsFetched", stats.ReportsFetched),
		logger.Int("reportsFailed", stats.ReportsFailed),
		logger.Int("contractViolations", stats.ContractViolations),
		logger.Int("determinismChecks", stats.DeterminismChecks),
		logger.Int("determinismFailures", stats.DeterminismFailures),
		logger.Int("heatmapsFetched", stats.HeatmapsFetched),
		logger.Int("heatmapViolations", stats.HeatmapViolations),
		logger.Int("warningsObserved", stats.WarningsObserved),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("successRate", successRate),
		logger.Float64("reportsPerSecond", reportsPerSecond))
}
