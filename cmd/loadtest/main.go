package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/joshmont53/SwimTeamOptimizer/internal/loadtest"
)

// Default configuration constants.
const (
	defaultNumRequests    = 200
	defaultSwimmers       = 60
	defaultDuplicateEvery = 10
	defaultMaxEvents      = 2
	defaultWorkers        = 2 // multiplier for runtime.NumCPU()
	defaultTimeout        = 30 * time.Second
	defaultWait           = 5 * time.Minute
	defaultTestTimeout    = 10 * time.Minute
)

func main() {
	var (
		baseURL        = flag.String("url", "http://localhost:9080", "Base URL of the service")
		numRequests    = flag.Int("requests", defaultNumRequests, "Number of clubs to generate and submit")
		swimmers       = flag.Int("swimmers", defaultSwimmers, "Swimmers per club")
		duplicateEvery = flag.Int("duplicate-every", defaultDuplicateEvery, "Resubmit every Nth request id")
		maxEvents      = flag.Int("max-events", defaultMaxEvents, "Individual event cap sent with each run")
		workers        = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
		seed           = flag.Uint64("seed", 1, "Generator seed")
		timeout        = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		wait           = flag.Duration("wait", defaultWait, "Bound on waiting for queued runs")
		outputFile     = flag.String("output", "", "Write the generated requests to this file")
		save           = flag.Bool("save", false, "Write the generated requests to a timestamped file")
		logFile        = flag.String("log", "", "Also write logs to this file")
		verbose        = flag.Bool("verbose", false, "Log every violation and failed run")
		help           = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		loadtest.ShowHelp()
		return
	}

	closeLog, err := loadtest.SetupLogging(*logFile, *verbose)
	if err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultTestTimeout)
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)

	if *save && *outputFile == "" {
		*outputFile = loadtest.DefaultOutputFile(time.Now())
	}

	config := &loadtest.Config{
		BaseURL:         *baseURL,
		NumRequests:     *numRequests,
		SwimmersPerClub: *swimmers,
		DuplicateEvery:  *duplicateEvery,
		MaxEvents:       *maxEvents,
		Workers:         *workers,
		Seed:            *seed,
		Timeout:         *timeout,
		WaitTimeout:     *wait,
		OutputFile:      *outputFile,
		Verbose:         *verbose,
	}

	_, err = loadtest.Run(ctx, config)
	stop()
	cancel()
	_ = closeLog()
	if err != nil {
		os.Stderr.WriteString("Load test failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}
