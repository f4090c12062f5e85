package loadtest

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/joshmont53/SwimTeamOptimizer/pkg/logger"
)

const logFilePermission = 0o600

// SetupLogging sends log records to stderr and, when logFile is set, to
// that file as well. The returned func closes the file.
func SetupLogging(logFile string, verbose bool) (func() error, error) {
	var w io.Writer = os.Stderr
	closeFn := func() error { return nil }
	if logFile != "" {
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
		if err != nil {
			return nil, fmt.Errorf("failed to create log file: %w", err)
		}
		w = io.MultiWriter(os.Stderr, file)
		closeFn = file.Close
	}
	if err := logger.InitWriter(w); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	if verbose {
		_ = logger.SetLevelString("debug")
	}
	return closeFn, nil
}

// DefaultOutputFile names a timestamped request dump.
func DefaultOutputFile(now time.Time) string {
	return "generated_requests_" + now.Format("20060102_150405") + ".json"
}

// ShowHelp prints usage information for the load test tool.
func ShowHelp() {
	os.Stdout.WriteString(`Swim Team Optimizer Load Test
=============================

Generates synthetic club rosters, queues them on a running optimizer
service, waits for the runs and checks every result for rule violations:
individual event caps, duplicate slot instances, shared relay swimmers and
unavailable swimmers.

Usage:
  go run ./cmd/loadtest [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -requests int
        Number of clubs to generate and submit (default 200)
  -swimmers int
        Swimmers per club (default 60)
  -duplicate-every int
        Resubmit every Nth request id to exercise deduplication (default 10)
  -max-events int
        Individual event cap sent with each run (default 2)
  -workers int
        Number of concurrent workers (default CPU cores * 2)
  -seed uint
        Generator seed (default 1)
  -timeout duration
        HTTP request timeout (default 30s)
  -wait duration
        Bound on waiting for queued runs (default 5m)
  -output string
        Write the generated requests to this file
  -save
        Write the generated requests to generated_requests_TIMESTAMP.json
  -log string
        Also write logs to this file
  -verbose
        Log every violation and failed run
  -help
        Show this help message

Examples:
  go run ./cmd/loadtest
  go run ./cmd/loadtest -requests 1000 -workers 16 -url http://localhost:8080
`)
}
