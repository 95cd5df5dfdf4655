package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// AttemptStore persists the wall-clock start of a survey attempt under a
// well-known key. Presence of the key fully determines resume-vs-fresh-start:
// the timer controller reads it on attempt start and only finalization clears
// it, so disconnecting mid-attempt resumes the same countdown.
type AttemptStore interface {
	GetStart(ctx context.Context, attemptKey string) (time.Time, bool, error)
	SetStart(ctx context.Context, attemptKey string, start time.Time) error
	ClearStart(ctx context.Context, attemptKey string) error
}

const attemptKeyPrefix = "survey:timer_start:"

type redisAttemptStore struct {
	client *redis.Client

	// keys expire well after any plausible attempt so abandoned attempts do
	// not accumulate forever
	ttl time.Duration
}

func NewRedisAttemptStore(client *redis.Client) AttemptStore {
	return &redisAttemptStore{
		client: client,
		ttl:    24 * time.Hour,
	}
}

func (s *redisAttemptStore) GetStart(ctx context.Context, attemptKey string) (time.Time, bool, error) {
	value, err := s.client.Get(ctx, attemptKeyPrefix+attemptKey).Result()
	if errors.Is(err, redis.Nil) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("attempt store get: %w", err)
	}

	unixMilli, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		// A corrupt value is treated as absent so the attempt restarts fresh
		// instead of failing.
		return time.Time{}, false, nil
	}
	return time.UnixMilli(unixMilli), true, nil
}

func (s *redisAttemptStore) SetStart(ctx context.Context, attemptKey string, start time.Time) error {
	value := strconv.FormatInt(start.UnixMilli(), 10)
	if err := s.client.Set(ctx, attemptKeyPrefix+attemptKey, value, s.ttl).Err(); err != nil {
		return fmt.Errorf("attempt store set: %w", err)
	}
	return nil
}

func (s *redisAttemptStore) ClearStart(ctx context.Context, attemptKey string) error {
	if err := s.client.Del(ctx, attemptKeyPrefix+attemptKey).Err(); err != nil {
		return fmt.Errorf("attempt store clear: %w", err)
	}
	return nil
}

// MemoryAttemptStore is an in-memory AttemptStore for tests.
type MemoryAttemptStore struct {
	mu     sync.Mutex
	starts map[string]time.Time
}

func NewMemoryAttemptStore() *MemoryAttemptStore {
	return &MemoryAttemptStore{starts: make(map[string]time.Time)}
}

func (s *MemoryAttemptStore) GetStart(_ context.Context, attemptKey string) (time.Time, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	start, ok := s.starts[attemptKey]
	return start, ok, nil
}

func (s *MemoryAttemptStore) SetStart(_ context.Context, attemptKey string, start time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.starts[attemptKey] = start
	return nil
}

func (s *MemoryAttemptStore) ClearStart(_ context.Context, attemptKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.starts, attemptKey)
	return nil
}

// Has reports key presence without reading the value (test helper).
func (s *MemoryAttemptStore) Has(attemptKey string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.starts[attemptKey]
	return ok
}
