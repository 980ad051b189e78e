package probe

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/okian/edupredict/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0750
	filePermission      = 0600
)

// Run executes a complete probe against a running service. It returns the
// statistics and ErrContractViolation when any exchange broke the contract.
func Run(ctx context.Context, config *Config) (*Stats, error) {
	if config.Count < 1 || config.Workers < 1 || config.BaseURL == "" {
		return nil, fmt.Errorf("%w: url, count and workers are required", ErrInvalidConfig)
	}

	stats := &Stats{
		ByLabel:   map[string]int{},
		StartTime: time.Now(),
	}
	log := logger.Get()

	log.Info(ctx, "starting edupredict probe",
		logger.String("baseURL", config.BaseURL),
		logger.Int("count", config.Count),
		logger.Int("workers", config.Workers),
		logger.Duration("timeout", config.Timeout),
		logger.Any("seed", config.Seed),
		logger.Bool("verbose", config.Verbose))

	// Step 1: Check service health
	if err := checkServiceHealth(ctx, config); err != nil {
		return nil, err
	}

	// Step 2: Generate records
	records := Generate(ctx, config.Count, config.Seed)

	// Step 3: Submit and verify concurrently
	exchanges := submitRecords(ctx, config, records)

	// Step 4: Tally
	for _, ex := range exchanges {
		stats.Sent++
		if len(ex.Violations) > 0 || ex.Error != "" {
			stats.Failed++
			stats.Violations += len(ex.Violations)
			if config.Verbose || ex.Index == 0 {
				log.Warn(ctx, "exchange failed",
					logger.Int("index", ex.Index),
					logger.String("requestID", ex.RequestID),
					logger.Int("status", ex.Status),
					logger.String("error", ex.Error),
					logger.Any("violations", ex.Violations))
			}
			continue
		}
		stats.Passed++
		stats.ByLabel[ex.Result.Label]++
	}

	// Step 5: Save report
	if config.OutputFile != "" {
		if err := saveReport(ctx, config.OutputFile, exchanges); err != nil {
			log.Warn(ctx, "failed to save report", logger.Error(err))
		}
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, stats)

	if stats.Failed > 0 {
		return stats, fmt.Errorf("%w: %d of %d exchanges failed", ErrContractViolation, stats.Failed, stats.Sent)
	}
	log.Info(ctx, "probe completed successfully")
	return stats, nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, config *Config) error {
	logger.Get().Info(ctx, "checking service health")

	client := newHTTPClient(config.Timeout)
	resp, err := client.Get(ctx, config.BaseURL+"/healthz")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnhealthy, err)
	}
	defer func() { _ = resp.Body.Close() }()

	// Accept any 200 response as healthy (the service returns Prometheus metrics)
	if resp.StatusCode != StatusOK {
		return fmt.Errorf("%w: status %d", ErrUnhealthy, resp.StatusCode)
	}

	logger.Get().Info(ctx, "service is healthy")
	return nil
}

// saveReport writes every exchange to filename as indented JSON.
func saveReport(ctx context.Context, filename string, exchanges []Exchange) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(exchanges, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	if err := os.WriteFile(filename, data, filePermission); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	logger.Get().Info(ctx, "report saved to file", logger.String("filename", filename))
	return nil
}

// displayFinalStats logs the final probe statistics.
func displayFinalStats(ctx context.Context, stats *Stats) {
	var passRate, perSecond float64
	if stats.Sent > 0 {
		passRate = float64(stats.Passed) / float64(stats.Sent) * PercentageMultiplier
	}
	if stats.Duration > 0 {
		perSecond = float64(stats.Sent) / stats.Duration.Seconds()
	}

	logger.Get().Info(ctx, "final statistics",
		logger.Int("sent", stats.Sent),
		logger.Int("passed", stats.Passed),
		logger.Int("failed", stats.Failed),
		logger.Int("violations", stats.Violations),
		logger.Any("byLabel", stats.ByLabel),
		logger.Duration("duration", stats.Duration),
		logger.Float64("passRate", passRate),
		logger.Float64("requestsPerSecond", perSecond))
}
