// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults; Load layers file and env on top.
// - External errors are wrapped with this package's sentinel kinds.
package config

import (
	"runtime"
	"time"

	"github.com/joshmont53/SwimTeamOptimizer/internal/domain/swimtime"
)

// Store backends.
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level" validate:"oneof=debug info warn error"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr" validate:"required"`

	// QueueSize bounds the in-memory job queue.
	QueueSize int `koanf:"queue_size" validate:"min=1"`

	// WorkerCount sets the number of optimization workers.
	WorkerCount int `koanf:"worker_count" validate:"min=1"`

	// DedupeSize sets the size of the request-id deduplication cache.
	DedupeSize int `koanf:"dedupe_size" validate:"min=1"`

	// MaxIndividualEvents is the default per-swimmer cap when neither the
	// request nor the competition preset sets one; -1 is unlimited.
	MaxIndividualEvents int `koanf:"max_individual_events" validate:"min=-1"`

	// CompetitionType selects the default preset.
	CompetitionType string `koanf:"competition_type" validate:"required"`

	// CompetitionYear picks the 31 December age cut-off; 0 means the
	// current year at request time.
	CompetitionYear int `koanf:"competition_year" validate:"min=0"`

	// ReferenceDate overrides CompetitionYear when set.
	ReferenceDate string `koanf:"reference_date"`

	Course                    string `koanf:"course" validate:"omitempty,oneof=SC LC sc lc any Any"`
	RelaysCountTowardCapacity bool   `koanf:"relays_count_toward_capacity"`
	Objective                 string `koanf:"objective" validate:"omitempty,oneof=min_total_time max_qualifying"`

	// Qualifying standards.
	StandardTimeType string `koanf:"standard_time_type" validate:"required"`
	OpenFallbackAge  int    `koanf:"open_fallback_age" validate:"min=1"`
	MinStandardAge   int    `koanf:"min_standard_age" validate:"min=1"`

	// RunTimeoutMS bounds a single optimization run.
	RunTimeoutMS int `koanf:"run_timeout_ms" validate:"min=1"`

	// Run store.
	StoreBackend  string `koanf:"store_backend" validate:"oneof=memory redis"`
	RedisAddr     string `koanf:"redis_addr" validate:"required_if=StoreBackend redis"`
	RedisPassword string `koanf:"redis_password"`
	RedisDB       int    `koanf:"redis_db" validate:"min=0"`
	ResultTTLS    int    `koanf:"result_ttl_s" validate:"min=0"`

	// AMQP run-completed notifications; disabled when AMQPURL is empty.
	AMQPURL   string `koanf:"amqp_url"`
	AMQPQueue string `koanf:"amqp_queue" validate:"required_with=AMQPURL"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		Addr:                ":9080",
		QueueSize:           1_000,
		WorkerCount:         runtime.NumCPU(),
		DedupeSize:          10_000,
		MaxIndividualEvents: 2,
		CompetitionType:     "arena_league",
		Course:              "SC",
		Objective:           "min_total_time",
		StandardTimeType:    "QT",
		OpenFallbackAge:     17,
		MinStandardAge:      11,
		RunTimeoutMS:        30_000,
		StoreBackend:        StoreMemory,
		RedisAddr:           "localhost:6379",
		ResultTTLS:          86_400,
		AMQPQueue:           "swimopt.runs",
	}
}

// RunTimeout is the wall-clock bound of one run.
func (c *Config) RunTimeout() time.Duration {
	return time.Duration(c.RunTimeoutMS) * time.Millisecond
}

// ResultTTL is how long stored runs are kept; zero keeps them forever.
func (c *Config) ResultTTL() time.Duration {
	return time.Duration(c.ResultTTLS) * time.Second
}

// DefaultReferenceDate resolves the age cut-off used when a request does
// not carry one.
func (c *Config) DefaultReferenceDate(now time.Time) (time.Time, error) {
	if c.ReferenceDate != "" {
		return swimtime.ParseDate(c.ReferenceDate)
	}
	year := c.CompetitionYear
	if year == 0 {
		year = now.Year()
	}
	return swimtime.SeasonCutoff(year), nil
}
