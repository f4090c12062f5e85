// Package repository stores optimization runs and their results.
package repository

import (
	"context"
	"time"

	"github.com/joshmont53/SwimTeamOptimizer/internal/domain/engine"
)

// Status is the lifecycle state of a run.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Done reports whether the run reached a terminal state.
func (s Status) Done() bool {
	return s == StatusSucceeded || s == StatusFailed
}

// Run is one optimization request and, once finished, its outcome.
type Run struct {
	ID              string         `json:"id"`
	RequestID       string         `json:"requestId,omitempty"`
	Status          Status         `json:"status"`
	CompetitionType string         `json:"competitionType"`
	SubmittedAt     time.Time      `json:"submittedAt"`
	StartedAt       *time.Time     `json:"startedAt,omitempty"`
	FinishedAt      *time.Time     `json:"finishedAt,omitempty"`
	Result          *engine.Result `json:"result,omitempty"`
	Error           string         `json:"error,omitempty"`
}

// Store provides read/write access to runs.
type Store interface {
	// Save inserts or replaces the run with the same ID.
	Save(ctx context.Context, run Run) error

	// Get returns the run with the given ID.
	// Returns ErrNotFound if the run is unknown or expired.
	Get(ctx context.Context, id string) (Run, error)

	// Count returns the number of runs held by the store.
	Count(ctx context.Context) int
}
