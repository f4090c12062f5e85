package repository

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/joshmont53/SwimTeamOptimizer/pkg/metrics"
)

const backendMemory = "memory"

// MemoryStore is an in-process Store. Finished runs older than the TTL are
// evicted by a background sweeper.
type MemoryStore struct {
	mu   sync.RWMutex
	runs map[string]Run

	ttl                   time.Duration
	sweepInterval         time.Duration
	metricsUpdateInterval time.Duration
	now                   func() time.Time

	wg       sync.WaitGroup
	stopChan chan struct{}
}

// NewMemoryStore constructs a memory store and starts its background loops.
// They stop when ctx is cancelled or Close is called.
func NewMemoryStore(ctx context.Context, opts ...Option) *MemoryStore {
	s := &MemoryStore{
		runs:                  make(map[string]Run),
		ttl:                   24 * time.Hour,
		sweepInterval:         time.Minute,
		metricsUpdateInterval: 5 * time.Second,
		now:                   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.stopChan = make(chan struct{})
	s.startLoop(ctx, s.sweepInterval, s.sweep)
	s.startLoop(ctx, s.metricsUpdateInterval, s.updateMetrics)
	return s
}

func (s *MemoryStore) startLoop(ctx context.Context, every time.Duration, fn func()) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(every)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopChan:
				return
			case <-ticker.C:
				fn()
			}
		}
	}()
}

// Close stops the background goroutines.
func (s *MemoryStore) Close() error {
	select {
	case <-s.stopChan:
	default:
		close(s.stopChan)
	}
	s.wg.Wait()
	return nil
}

// Save implements Store.Save.
func (s *MemoryStore) Save(_ context.Context, run Run) error {
	start := time.Now()
	if strings.TrimSpace(run.ID) == "" {
		return fmt.Errorf("%w: empty", ErrInvalidID)
	}

	s.mu.Lock()
	s.runs[run.ID] = run
	s.mu.Unlock()

	metrics.RecordStoreLatency(backendMemory, "save", float64(time.Since(start).Milliseconds()))
	return nil
}

// Get implements Store.Get.
func (s *MemoryStore) Get(_ context.Context, id string) (Run, error) {
	start := time.Now()
	s.mu.RLock()
	run, ok := s.runs[id]
	s.mu.RUnlock()
	metrics.RecordStoreLatency(backendMemory, "get", float64(time.Since(start).Milliseconds()))

	if !ok || s.expired(run) {
		return Run{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return run, nil
}

// Count implements Store.Count.
func (s *MemoryStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.runs)
}

// expired reports whether a finished run has outlived the TTL. Pending and
// running runs never expire.
func (s *MemoryStore) expired(run Run) bool {
	if s.ttl == 0 || !run.Status.Done() || run.FinishedAt == nil {
		return false
	}
	return s.now().Sub(*run.FinishedAt) > s.ttl
}

func (s *MemoryStore) sweep() {
	s.mu.Lock()
	for id, run := range s.runs {
		if s.expired(run) {
			delete(s.runs, id)
		}
	}
	s.mu.Unlock()
}

func (s *MemoryStore) updateMetrics() {
	metrics.UpdateStoreRecords(s.Count(context.Background()))
}
