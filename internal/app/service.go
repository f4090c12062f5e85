// Package service wires the optimization engine to the run store, the job
// queue and the notification publisher. It implements the dependencies
// required by the HTTP API and the CLI.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/joshmont53/SwimTeamOptimizer/internal/adapters/csvio"
	"github.com/joshmont53/SwimTeamOptimizer/internal/adapters/mq/publisher"
	jobqueue "github.com/joshmont53/SwimTeamOptimizer/internal/adapters/mq/queue"
	workerpool "github.com/joshmont53/SwimTeamOptimizer/internal/adapters/mq/worker"
	"github.com/joshmont53/SwimTeamOptimizer/internal/adapters/repository"
	"github.com/joshmont53/SwimTeamOptimizer/internal/config"
	"github.com/joshmont53/SwimTeamOptimizer/internal/domain/dedupe"
	"github.com/joshmont53/SwimTeamOptimizer/internal/domain/engine"
	"github.com/joshmont53/SwimTeamOptimizer/internal/domain/model"
	"github.com/joshmont53/SwimTeamOptimizer/internal/domain/qualify"
	"github.com/joshmont53/SwimTeamOptimizer/pkg/logger"
	"github.com/joshmont53/SwimTeamOptimizer/pkg/metrics"
)

// Sentinel kinds for service errors.
var (
	ErrInvalidRequest = errors.New("invalid request")
	ErrQueueFull      = errors.New("job queue full")
	ErrNotStarted     = errors.New("service not started")
)

// Request is one optimization request with its inputs already parsed.
// Events may be empty when the competition preset supplies them.
type Request struct {
	RequestID string
	Roster    csvio.Roster
	Standards []model.QualifyingStandard
	Events    []model.EventSlot
	Pins      model.Pins
	Config    csvio.RunConfig
}

// Service implements the API dependencies for the optimizer.
type Service struct {
	mu sync.RWMutex

	cfg *config.Config

	store      repository.Store
	deduper    dedupe.Deduper
	jobQueue   *jobqueue.InMemoryQueue
	workerPool *workerpool.Pool
	publisher  publisher.Publisher
	closers    []func() error

	started bool
	now     func() time.Time
	logger  logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithConfig sets the process configuration. Defaults to config.New().
func WithConfig(cfg *config.Config) Option {
	return func(s *Service) {
		if cfg != nil {
			s.cfg = cfg
		}
	}
}

// WithStore sets the run store. Start builds one from the configuration
// when none is given.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithPublisher sets the run notification publisher.
func WithPublisher(p publisher.Publisher) Option {
	return func(s *Service) {
		if p != nil {
			s.publisher = p
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New constructs a new Service. Call Start before submitting jobs.
func New(opts ...Option) *Service {
	s := &Service{
		cfg:    config.New(),
		now:    time.Now,
		logger: logger.GetOrNop().Named("service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start initializes the store, queue, worker pool and publisher.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	s.logger.Info(ctx, "starting optimizer service...")

	if s.store == nil {
		store, err := s.openStore(ctx)
		if err != nil {
			return err
		}
		s.store = store
	}
	if s.publisher == nil {
		p, err := publisher.New(s.cfg.AMQPURL, s.cfg.AMQPQueue)
		if err != nil {
			s.logger.Warn(ctx, "run notifications disabled", logger.Error(err))
			p = publisher.Nop{}
		}
		s.publisher = p
		s.closers = append(s.closers, p.Close)
	}

	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.cfg.DedupeSize))
	s.jobQueue = jobqueue.NewInMemoryQueue(jobqueue.WithCapacity(s.cfg.QueueSize))
	s.workerPool = workerpool.NewPool(s.cfg.WorkerCount, s.jobQueue, workerpool.ProcessorFunc(s.process))
	s.workerPool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "optimizer service started",
		logger.Int("workers", s.workerPool.Size()),
		logger.Int("queueSize", s.cfg.QueueSize),
		logger.Int("dedupeSize", s.cfg.DedupeSize),
		logger.String("store", s.cfg.StoreBackend),
	)
	return nil
}

func (s *Service) openStore(ctx context.Context) (repository.Store, error) {
	switch s.cfg.StoreBackend {
	case config.StoreRedis:
		client, err := repository.DialRedis(ctx, s.cfg.RedisAddr, s.cfg.RedisPassword, s.cfg.RedisDB)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, client.Close)
		return repository.NewRedisStore(client, repository.WithRedisTTL(s.cfg.ResultTTL())), nil
	default:
		store := repository.NewMemoryStore(context.WithoutCancel(ctx), repository.WithTTL(s.cfg.ResultTTL()))
		s.closers = append(s.closers, store.Close)
		return store, nil
	}
}

// Stop drains queued jobs and releases the resources opened by Start.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	ctx := context.Background()
	s.logger.Info(ctx, "stopping optimizer service...")

	if err := s.workerPool.Shutdown(ctx); err != nil {
		s.logger.Warn(ctx, "worker pool did not drain", logger.Error(err))
	}
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			s.logger.Warn(ctx, "close failed", logger.Error(err))
		}
	}
	s.closers = nil

	s.started = false
	s.logger.Info(ctx, "optimizer service stopped")
}

// Optimize runs a request synchronously and stores the finished run. A
// failed run is stored and returned together with its error.
func (s *Service) Optimize(ctx context.Context, req Request) (repository.Run, error) { //nolint:gocritic // hugeParam
	in, err := s.resolve(req)
	if err != nil {
		return repository.Run{}, err
	}
	run := repository.Run{
		ID:              uuid.NewString(),
		RequestID:       req.RequestID,
		Status:          repository.StatusPending,
		CompetitionType: in.Config.CompetitionType,
		SubmittedAt:     s.now().UTC(),
	}
	return s.execute(ctx, run, in)
}

// Submit validates a request and queues it. A request id seen before
// returns the original run id with duplicate set.
func (s *Service) Submit(ctx context.Context, req Request) (runID string, duplicate bool, err error) { //nolint:gocritic // hugeParam
	s.mu.RLock()
	started := s.started
	s.mu.RUnlock()
	if !started {
		return "", false, ErrNotStarted
	}

	in, err := s.resolve(req)
	if err != nil {
		return "", false, err
	}

	runID = uuid.NewString()
	if req.RequestID != "" {
		if claimed, dup := s.deduper.Claim(ctx, req.RequestID, runID); dup {
			metrics.RecordRequestDuplicate()
			s.logger.Debug(ctx, "duplicate submission", logger.String("request_id", req.RequestID), logger.String("run_id", claimed))
			return claimed, true, nil
		}
	}

	run := repository.Run{
		ID:              runID,
		RequestID:       req.RequestID,
		Status:          repository.StatusPending,
		CompetitionType: in.Config.CompetitionType,
		SubmittedAt:     s.now().UTC(),
	}
	if err := s.store.Save(ctx, run); err != nil {
		s.release(ctx, req.RequestID)
		return "", false, err
	}
	if !s.jobQueue.Enqueue(ctx, jobqueue.Job{RunID: runID, RequestID: req.RequestID, Input: in}) {
		s.release(ctx, req.RequestID)
		s.finish(ctx, &run, nil, ErrQueueFull)
		return "", false, ErrQueueFull
	}
	return runID, false, nil
}

func (s *Service) release(ctx context.Context, requestID string) {
	if requestID != "" {
		s.deduper.Release(ctx, requestID)
	}
}

// process is the worker pool's job handler.
func (s *Service) process(ctx context.Context, j jobqueue.Job) error { //nolint:gocritic // hugeParam
	run, err := s.store.Get(ctx, j.RunID)
	if err != nil {
		return fmt.Errorf("load run %s: %w", j.RunID, err)
	}
	_, err = s.execute(ctx, run, j.Input)
	return err
}

// execute runs the engine under the configured deadline and stores the
// outcome.
func (s *Service) execute(ctx context.Context, run repository.Run, in engine.Input) (repository.Run, error) { //nolint:gocritic // hugeParam
	started := s.now().UTC()
	run.Status = repository.StatusRunning
	run.StartedAt = &started
	if err := s.store.Save(ctx, run); err != nil {
		return run, err
	}

	runCtx, cancel := context.WithTimeout(ctx, s.cfg.RunTimeout())
	defer cancel()

	res, err := engine.Optimize(runCtx, in,
		engine.WithLogger(s.logger.Named("engine")),
		engine.WithClassifierOptions(
			qualify.WithTimeType(s.cfg.StandardTimeType),
			qualify.WithOpenFallbackAge(s.cfg.OpenFallbackAge),
			qualify.WithMinStandardAge(s.cfg.MinStandardAge),
		),
	)
	s.finish(ctx, &run, res, err)
	return run, err
}

// finish records the terminal state of a run, its metrics and its
// notification.
func (s *Service) finish(ctx context.Context, run *repository.Run, res *engine.Result, runErr error) {
	finished := s.now().UTC()
	run.FinishedAt = &finished
	run.Result = res

	ev := publisher.RunCompleted{
		RunID:           run.ID,
		RequestID:       run.RequestID,
		CompetitionType: run.CompetitionType,
		FinishedAt:      finished,
	}
	if run.StartedAt != nil {
		ev.DurationMS = finished.Sub(*run.StartedAt).Milliseconds()
	}

	if runErr != nil {
		run.Status = repository.StatusFailed
		run.Error = runErr.Error()
		ev.Error = run.Error
		metrics.RecordRun(string(repository.StatusFailed), float64(ev.DurationMS))
		metrics.RecordErrorByComponent("engine", errorKind(runErr))
		s.logger.Warn(ctx, "run failed", logger.String("run_id", run.ID), logger.Error(runErr))
	} else {
		run.Status = repository.StatusSucceeded
		st := res.Stats
		ev.FilledSlots, ev.UnfilledSlots, ev.IncompleteRelays, ev.Warnings = st.FilledSlots, st.UnfilledSlots, st.IncompleteRelays, len(res.Warnings)
		metrics.RecordRun(string(repository.StatusSucceeded), float64(ev.DurationMS))
		metrics.RecordRunResult(st.FilledSlots, st.UnfilledSlots, st.IncompleteRelays, st.QualifyingTimes, len(res.Warnings))
		s.logger.Info(ctx, "run succeeded",
			logger.String("run_id", run.ID),
			logger.Int("filled", st.FilledSlots),
			logger.Int("unfilled", st.UnfilledSlots),
			logger.Int("warnings", len(res.Warnings)),
		)
	}
	ev.Status = string(run.Status)

	// The run outcome is stored even when the caller has gone away.
	saveCtx := context.WithoutCancel(ctx)
	if err := s.store.Save(saveCtx, *run); err != nil {
		s.logger.Error(ctx, "failed to store run", logger.String("run_id", run.ID), logger.Error(err))
	}
	if s.publisher != nil {
		if err := s.publisher.PublishRunCompleted(saveCtx, ev); err != nil {
			s.logger.Warn(ctx, "run notification failed", logger.String("run_id", run.ID), logger.Error(err))
		}
	}
}

func errorKind(err error) string {
	for _, kind := range []error{
		engine.ErrDeadlineExceeded, engine.ErrInvalidConfig, engine.ErrUnknownSwimmer,
		engine.ErrUnknownSlot, engine.ErrIneligible, engine.ErrConflict, engine.ErrCapacity, ErrQueueFull,
	} {
		if errors.Is(err, kind) {
			return kind.Error()
		}
	}
	return "other"
}

// Run returns a stored run.
func (s *Service) Run(ctx context.Context, id string) (repository.Run, error) {
	if s.store == nil {
		return repository.Run{}, ErrNotStarted
	}
	return s.store.Get(ctx, id)
}

// OptimizeBatch runs several requests concurrently, at most WorkerCount at
// a time. Runs that fail in the engine are reported through their status;
// an invalid request aborts the batch.
func (s *Service) OptimizeBatch(ctx context.Context, reqs []Request) ([]repository.Run, error) {
	runs := make([]repository.Run, len(reqs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, s.cfg.WorkerCount))
	for i := range reqs {
		g.Go(func() error {
			run, err := s.Optimize(gctx, reqs[i])
			if errors.Is(err, ErrInvalidRequest) {
				return fmt.Errorf("batch[%d]: %w", i, err)
			}
			runs[i] = run
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return runs, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":      s.started,
		"workerCount":  s.cfg.WorkerCount,
		"queueSize":    s.cfg.QueueSize,
		"dedupeSize":   s.cfg.DedupeSize,
		"storeBackend": s.cfg.StoreBackend,
		"goroutines":   runtime.NumGoroutine(),
	}
	if s.started {
		stats["queueLength"] = s.jobQueue.Len(ctx)
		stats["storedRuns"] = s.store.Count(ctx)
		stats["trackedRequests"] = s.deduper.Size()
		stats["processedJobs"] = s.workerPool.Processed()
		stats["failedJobs"] = s.workerPool.Failed()
	}
	return stats
}
