// Package loadtest drives a running optimizer service with synthetic club
// rosters, polls the queued runs and checks every result for assignment
// rule violations.
package loadtest

import (
	"errors"
	"time"
)

// ErrVerification is returned when a finished run breaks an assignment rule.
var ErrVerification = errors.New("result verification failed")

// Config holds configuration for a load test.
type Config struct {
	BaseURL         string        // Base URL of the service
	NumRequests     int           // Number of clubs to generate and submit
	SwimmersPerClub int           // Roster size of each club
	DuplicateEvery  int           // Resubmit every Nth request id; 0 disables
	MaxEvents       int           // Individual event cap sent with each run
	Workers         int           // Number of concurrent workers
	Seed            uint64        // Generator seed
	Timeout         time.Duration // HTTP request timeout
	PollInterval    time.Duration // Delay between run status polls
	WaitTimeout     time.Duration // Bound on waiting for all runs to finish
	OutputFile      string        // Optional file for the generated requests
	Verbose         bool          // Log every violation
}

// Request is one generated optimization request.
type Request struct {
	RequestID string         `json:"requestId"`
	Roster    string         `json:"roster"`
	Config    map[string]any `json:"config"`

	// available maps every generated swimmer id to its availability.
	available map[string]bool
}

type submitResponse struct {
	RunID     string `json:"runId"`
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

// Stats holds load test statistics.
type Stats struct {
	RequestsGenerated int
	RequestsSubmitted int
	RequestsAccepted  int
	RequestsDuplicate int
	RequestsRejected  int
	RunsSucceeded     int
	RunsFailed        int
	RunsUnfinished    int
	Violations        int
	FilledSlots       int
	UnfilledSlots     int
	StartTime         time.Time
	EndTime           time.Time
	Duration          time.Duration
}
