// Command optimize runs one optimization over local input files and writes
// the result document as JSON.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joshmont53/SwimTeamOptimizer/internal/adapters/csvio"
	app "github.com/joshmont53/SwimTeamOptimizer/internal/app"
	"github.com/joshmont53/SwimTeamOptimizer/internal/config"
	"github.com/joshmont53/SwimTeamOptimizer/pkg/logger"
)

const outputPermission = 0o600

var errUsage = errors.New("usage")

type options struct {
	roster    string
	standards string
	events    string
	pins      string
	config    string
	out       string
	logLevel  string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, errUsage) {
			os.Stderr.WriteString("optimize: " + err.Error() + "\n")
		}
		stop()
		os.Exit(1)
	}
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var o options
	fs := flag.NewFlagSet("optimize", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.roster, "roster", "", "Roster and times CSV (required)")
	fs.StringVar(&o.standards, "standards", "", "County standards CSV")
	fs.StringVar(&o.events, "events", "", "Event list JSON; defaults to the competition preset")
	fs.StringVar(&o.pins, "pins", "", "Pre-assignments JSON")
	fs.StringVar(&o.config, "config", "", "Run configuration JSON")
	fs.StringVar(&o.out, "out", "", "Output file (default stdout)")
	fs.StringVar(&o.logLevel, "log-level", "warn", "Log level: debug, info, warn, error")
	if err := fs.Parse(args); err != nil {
		return o, errUsage
	}
	if o.roster == "" {
		fmt.Fprintln(stderr, "optimize: -roster is required")
		fs.Usage()
		return o, errUsage
	}
	return o, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	o, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	// Logs go to stderr so stdout carries only the result.
	if err := logger.InitWriter(stderr); err != nil {
		return err
	}
	if err := logger.SetLevelString(o.logLevel); err != nil {
		return err
	}
	log := logger.Get()

	req, err := loadRequest(o)
	if err != nil {
		return err
	}

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	// A one-shot run keeps everything in process.
	cfg.StoreBackend = config.StoreMemory
	cfg.AMQPURL = ""
	cfg.WorkerCount = 1

	svc := app.New(app.WithConfig(cfg), app.WithLogger(log.Named("service")))
	if err := svc.Start(ctx); err != nil {
		return err
	}
	defer svc.Stop()

	result, err := svc.Optimize(ctx, req)
	if err != nil {
		return err
	}
	log.Info(ctx, "optimization finished",
		logger.String("runId", result.ID),
		logger.Int("filled", result.Result.Stats.FilledSlots),
		logger.Int("unfilled", result.Result.Stats.UnfilledSlots),
	)

	b, err := json.MarshalIndent(result.Result, "", "  ")
	if err != nil {
		return err
	}
	b = append(b, '\n')
	if o.out == "" {
		_, err = stdout.Write(b)
		return err
	}
	return os.WriteFile(o.out, b, outputPermission)
}

func loadRequest(o options) (app.Request, error) {
	var req app.Request

	roster, err := readFile(o.roster, csvio.ReadRoster)
	if err != nil {
		return req, err
	}
	req.Roster = *roster

	if o.standards != "" {
		if req.Standards, err = readFile(o.standards, csvio.ReadStandards); err != nil {
			return req, err
		}
	}
	if o.events != "" {
		if req.Events, err = readFile(o.events, csvio.DecodeDemand); err != nil {
			return req, err
		}
	}
	if o.pins != "" {
		if req.Pins, err = readFile(o.pins, csvio.DecodePins); err != nil {
			return req, err
		}
	}
	if o.config != "" {
		if req.Config, err = readFile(o.config, csvio.DecodeRunConfig); err != nil {
			return req, err
		}
	}
	return req, nil
}

func readFile[T any](path string, parse func(io.Reader) (T, error)) (T, error) {
	var zero T
	f, err := os.Open(path)
	if err != nil {
		return zero, err
	}
	defer f.Close()

	v, err := parse(f)
	if err != nil {
		return zero, fmt.Errorf("%s: %w", path, err)
	}
	return v, nil
}
