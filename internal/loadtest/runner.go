package loadtest

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joshmont53/SwimTeamOptimizer/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0o750
	filePermission      = 0o600
)

// Run executes the complete load test and returns its statistics. The
// error is non-nil when the service is unreachable or a result breaks an
// assignment rule.
func Run(ctx context.Context, config *Config) (*Stats, error) {
	stats := &Stats{StartTime: time.Now()}
	if config.PollInterval <= 0 {
		config.PollInterval = DefaultPollInterval
	}
	if config.WaitTimeout <= 0 {
		config.WaitTimeout = DefaultWaitTimeout
	}
	if config.Workers < 1 {
		config.Workers = 1
	}

	logger.GetOrNop().Info(ctx, "starting optimizer load test",
		logger.String("baseURL", config.BaseURL),
		logger.Int("requests", config.NumRequests),
		logger.Int("workers", config.Workers),
		logger.String("timeout", config.Timeout.String()),
		logger.Any("seed", config.Seed))

	if err := checkServiceHealth(ctx, config); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}

	requests, err := generateRequests(ctx, config, stats)
	if err != nil {
		return stats, fmt.Errorf("request generation failed: %w", err)
	}
	if config.OutputFile != "" {
		if err := saveRequestsToFile(ctx, config.OutputFile, requests); err != nil {
			logger.GetOrNop().Warn(ctx, "failed to save requests to file", logger.Error(err))
		}
	}

	runIDs := submitRequests(ctx, config, requests, stats)
	runs := awaitRuns(ctx, config, runIDs)
	verifyErr := verifyResults(ctx, config, requests, runs, stats)

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(stats)

	if verifyErr != nil {
		return stats, verifyErr
	}
	logger.GetOrNop().Info(ctx, "load test completed successfully")
	return stats, nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, config *Config) error {
	client := newHTTPClient(config.Timeout)
	resp, err := client.Get(ctx, config.BaseURL+"/healthz")
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	if _, err := readResponseBody(resp); err != nil {
		return err
	}
	// The service answers with Prometheus metrics.
	if resp.StatusCode != StatusOK {
		return fmt.Errorf("service health check failed with status: %d", resp.StatusCode)
	}
	return nil
}

// saveRequestsToFile writes the generated requests as a JSON array.
func saveRequestsToFile(ctx context.Context, filename string, requests []Request) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	b, err := json.MarshalIndent(requests, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal requests: %w", err)
	}
	if err := os.WriteFile(filename, b, filePermission); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	logger.GetOrNop().Info(ctx, "requests saved to file", logger.String("filename", filename))
	return nil
}

// displayFinalStats logs the final statistics.
func displayFinalStats(stats *Stats) {
	var successRate, runsPerSecond float64
	if stats.RequestsAccepted > 0 {
		successRate = float64(stats.RunsSucceeded) / float64(stats.RequestsAccepted) * PercentageMultiplier
	}
	if stats.Duration > 0 {
		runsPerSecond = float64(stats.RunsSucceeded) / stats.Duration.Seconds()
	}

	logger.GetOrNop().Info(context.Background(), "final statistics",
		logger.Int("requestsGenerated", stats.RequestsGenerated),
		logger.Int("requestsSubmitted", stats.RequestsSubmitted),
		logger.Int("requestsAccepted", stats.RequestsAccepted),
		logger.Int("requestsDuplicate", stats.RequestsDuplicate),
		logger.Int("requestsRejected", stats.RequestsRejected),
		logger.Int("runsSucceeded", stats.RunsSucceeded),
		logger.Int("runsFailed", stats.RunsFailed),
		logger.Int("runsUnfinished", stats.RunsUnfinished),
		logger.Int("violations", stats.Violations),
		logger.Int("filledSlots", stats.FilledSlots),
		logger.Int("unfilledSlots", stats.UnfilledSlots),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("successRate", successRate),
		logger.Float64("runsPerSecond", runsPerSecond))
}
