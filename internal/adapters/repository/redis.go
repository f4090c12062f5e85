package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/joshmont53/SwimTeamOptimizer/pkg/metrics"
)

const (
	backendRedis     = "redis"
	defaultKeyPrefix = "swimopt:run:"
	scanBatch        = 500
)

// RedisStore keeps runs as JSON documents under prefix+id. Finished runs
// expire after the TTL; pending and running runs do not expire.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStore wraps an existing client. The caller owns the client.
func NewRedisStore(client *redis.Client, opts ...RedisOption) *RedisStore {
	s := &RedisStore{
		client: client,
		prefix: defaultKeyPrefix,
		ttl:    24 * time.Hour,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DialRedis connects and pings the server with a short timeout.
func DialRedis(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return client, nil
}

func (s *RedisStore) key(id string) string { return s.prefix + id }

// Save implements Store.Save.
func (s *RedisStore) Save(ctx context.Context, run Run) error {
	start := time.Now()
	defer func() {
		metrics.RecordStoreLatency(backendRedis, "save", float64(time.Since(start).Milliseconds()))
	}()

	if strings.TrimSpace(run.ID) == "" {
		return fmt.Errorf("%w: empty", ErrInvalidID)
	}
	body, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("encode run %s: %w", run.ID, err)
	}
	var ttl time.Duration
	if run.Status.Done() {
		ttl = s.ttl
	}
	if err := s.client.Set(ctx, s.key(run.ID), body, ttl).Err(); err != nil {
		return fmt.Errorf("save run %s: %w", run.ID, err)
	}
	return nil
}

// Get implements Store.Get.
func (s *RedisStore) Get(ctx context.Context, id string) (Run, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStoreLatency(backendRedis, "get", float64(time.Since(start).Milliseconds()))
	}()

	body, err := s.client.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Run{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return Run{}, fmt.Errorf("get run %s: %w", id, err)
	}
	var run Run
	if err := json.Unmarshal(body, &run); err != nil {
		return Run{}, fmt.Errorf("decode run %s: %w", id, err)
	}
	return run, nil
}

// Count implements Store.Count by scanning the key prefix. Errors count as
// zero.
func (s *RedisStore) Count(ctx context.Context) int {
	var (
		cursor uint64
		total  int
	)
	for {
		keys, next, err := s.client.Scan(ctx, cursor, s.prefix+"*", scanBatch).Result()
		if err != nil {
			return 0
		}
		total += len(keys)
		if next == 0 {
			break
		}
		cursor = next
	}
	metrics.UpdateStoreRecords(total)
	return total
}
