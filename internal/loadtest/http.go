package loadtest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/joshmont53/SwimTeamOptimizer/internal/adapters/repository"
	"github.com/joshmont53/SwimTeamOptimizer/pkg/logger"
)

// HTTPClient wraps http.Client with timeout.
type HTTPClient struct {
	client *http.Client
}

func newHTTPClient(timeout time.Duration) *HTTPClient {
	return &HTTPClient{client: &http.Client{Timeout: timeout}}
}

// Get performs a GET request.
func (c *HTTPClient) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.client.Do(req)
}

// Post performs a POST request with a JSON body.
func (c *HTTPClient) Post(ctx context.Context, url string, body interface{}) (*http.Response, error) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.client.Do(req)
}

// readResponseBody reads and closes the response body.
func readResponseBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

// submission is the outcome of one POST /jobs.
type submission struct {
	runID     string
	duplicate bool
	err       error
}

// submitRequests posts every request, plus a resubmission of every
// DuplicateEvery-th request id, using config.Workers workers. The returned
// slice holds the run id of each request, empty when it was rejected.
func submitRequests(ctx context.Context, config *Config, requests []Request, stats *Stats) []string {
	logger.GetOrNop().Info(ctx, "submitting requests",
		logger.Int("requests", len(requests)),
		logger.Int("workers", config.Workers))

	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/jobs"

	var accepted, duplicate, rejected, submitted int64
	runIDs := make([]string, len(requests))

	type job struct {
		index  int
		resend bool
	}
	jobs := make(chan job, config.Workers*WorkerChannelMultiplier)
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				res := submitSingle(ctx, client, url, requests[j.index])
				atomic.AddInt64(&submitted, 1)

				switch {
				case res.err != nil:
					atomic.AddInt64(&rejected, 1)
					if config.Verbose {
						logger.GetOrNop().Warn(ctx, "submission rejected", logger.String("requestId", requests[j.index].RequestID), logger.Error(res.err))
					}
				case res.duplicate:
					atomic.AddInt64(&duplicate, 1)
				default:
					atomic.AddInt64(&accepted, 1)
				}
				if res.err == nil && !j.resend {
					mu.Lock()
					runIDs[j.index] = res.runID
					mu.Unlock()
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		send := func(j job) bool {
			select {
			case <-ctx.Done():
				return false
			case jobs <- j:
				return true
			}
		}
		for i := range requests {
			if !send(job{index: i}) {
				return
			}
		}
		if config.DuplicateEvery <= 0 {
			return
		}
		for i := 0; i < len(requests); i += config.DuplicateEvery {
			if !send(job{index: i, resend: true}) {
				return
			}
		}
	}()

	wg.Wait()

	stats.RequestsSubmitted = int(atomic.LoadInt64(&submitted))
	stats.RequestsAccepted = int(atomic.LoadInt64(&accepted))
	stats.RequestsDuplicate = int(atomic.LoadInt64(&duplicate))
	stats.RequestsRejected = int(atomic.LoadInt64(&rejected))

	logger.GetOrNop().Info(ctx, "submission completed",
		logger.Int("accepted", stats.RequestsAccepted),
		logger.Int("duplicate", stats.RequestsDuplicate),
		logger.Int("rejected", stats.RequestsRejected))
	return runIDs
}

// submitSingle posts one request. 202 is a new run and 200 a duplicate.
func submitSingle(ctx context.Context, client *HTTPClient, url string, req Request) submission { //nolint:gocritic // hugeParam
	resp, err := client.Post(ctx, url, req)
	if err != nil {
		return submission{err: err}
	}
	body, err := readResponseBody(resp)
	if err != nil {
		return submission{err: err}
	}

	switch resp.StatusCode {
	case StatusAccepted, StatusOK:
		var ack submitResponse
		if err := json.Unmarshal(body, &ack); err != nil {
			return submission{err: fmt.Errorf("failed to parse response: %w", err)}
		}
		return submission{runID: ack.RunID, duplicate: ack.Duplicate || resp.StatusCode == StatusOK}
	default:
		return submission{err: fmt.Errorf("HTTP %d: %s", resp.StatusCode, bytes.TrimSpace(body))}
	}
}

// fetchRun retrieves one run.
func fetchRun(ctx context.Context, client *HTTPClient, baseURL, id string) (repository.Run, error) {
	resp, err := client.Get(ctx, baseURL+"/runs/"+id)
	if err != nil {
		return repository.Run{}, fmt.Errorf("request failed: %w", err)
	}
	body, err := readResponseBody(resp)
	if err != nil {
		return repository.Run{}, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != StatusOK {
		return repository.Run{}, fmt.Errorf("HTTP %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}

	var run repository.Run
	if err := json.Unmarshal(body, &run); err != nil {
		return repository.Run{}, fmt.Errorf("failed to parse response: %w", err)
	}
	return run, nil
}

// awaitRuns polls every run id until it is finished or WaitTimeout passes.
// Unfinished runs are left as the zero Run.
func awaitRuns(ctx context.Context, config *Config, runIDs []string) []repository.Run {
	client := newHTTPClient(config.Timeout)
	runs := make([]repository.Run, len(runIDs))

	ctx, cancel := context.WithTimeout(ctx, config.WaitTimeout)
	defer cancel()

	pending := make([]int, 0, len(runIDs))
	for i, id := range runIDs {
		if id != "" {
			pending = append(pending, i)
		}
	}

	ticker := time.NewTicker(config.PollInterval)
	defer ticker.Stop()

	for len(pending) > 0 {
		next := pending[:0]
		for _, i := range pending {
			run, err := fetchRun(ctx, client, config.BaseURL, runIDs[i])
			if err == nil && run.Status.Done() {
				runs[i] = run
				continue
			}
			next = append(next, i)
		}
		pending = next
		if len(pending) == 0 {
			break
		}

		logger.GetOrNop().Debug(ctx, "waiting for runs", logger.Int("pending", len(pending)))
		select {
		case <-ctx.Done():
			logger.GetOrNop().Warn(context.WithoutCancel(ctx), "stopped waiting for runs", logger.Int("pending", len(pending)))
			return runs
		case <-ticker.C:
		}
	}
	return runs
}
