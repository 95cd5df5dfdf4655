package services

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/intranet-suite/survey-service/internal/cache"
	"github.com/intranet-suite/survey-service/internal/config"
)

func TestAttemptTimer_FreshStartPersistsAndCountsDown(t *testing.T) {
	store := cache.NewMemoryAttemptStore()
	timer := NewAttemptTimer(store, "u1:ss-1", 120*time.Second, time.Hour, nil, testLogger())
	defer timer.Stop()

	remaining := timer.Initialize(context.Background())

	assert.Equal(t, 120, remaining)
	assert.True(t, store.Has("u1:ss-1"), "start should be persisted on first init")
}

func TestAttemptTimer_ResumesFromPersistedStart(t *testing.T) {
	store := cache.NewMemoryAttemptStore()
	key := "u1:ss-1"
	require.NoError(t, store.SetStart(context.Background(), key, time.Now().Add(-30*time.Second)))

	timer := NewAttemptTimer(store, key, 120*time.Second, time.Hour, nil, testLogger())
	defer timer.Stop()

	remaining := timer.Initialize(context.Background())

	// 30 of 120 seconds already elapsed
	assert.InDelta(t, 90, remaining, 1)
	assert.True(t, store.Has(key), "resume must not rewrite the start")
}

func TestAttemptTimer_ExpiredWindowFiresTimeoutOnce(t *testing.T) {
	store := cache.NewMemoryAttemptStore()
	key := "u1:ss-1"
	require.NoError(t, store.SetStart(context.Background(), key, time.Now().Add(-10*time.Minute)))

	var fired atomic.Int32
	timer := NewAttemptTimer(store, key, 120*time.Second, time.Hour, func() {
		fired.Add(1)
	}, testLogger())

	remaining := timer.Initialize(context.Background())

	assert.Equal(t, 0, remaining)
	assert.Equal(t, int32(1), fired.Load())

	// a second fire path must be swallowed
	timer.fireTimeout()
	assert.Equal(t, int32(1), fired.Load())
}

func TestAttemptTimer_TickReachesZero(t *testing.T) {
	store := cache.NewMemoryAttemptStore()

	done := make(chan struct{})
	timer := NewAttemptTimer(store, "u1:ss-1", 2*time.Second, 5*time.Millisecond, func() {
		close(done)
	}, testLogger())

	remaining := timer.Initialize(context.Background())
	assert.Equal(t, 2, remaining)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timeout callback never fired")
	}
	assert.Equal(t, 0, timer.Remaining())
}

func TestAttemptTimer_StopIsIdempotentAndKeepsStart(t *testing.T) {
	store := cache.NewMemoryAttemptStore()
	timer := NewAttemptTimer(store, "u1:ss-1", 120*time.Second, time.Hour, nil, testLogger())
	timer.Initialize(context.Background())

	timer.Stop()
	timer.Stop()

	assert.True(t, store.Has("u1:ss-1"), "stopping must not clear the persisted start")
}

func TestAttemptTimer_InvalidDurationFallsBack(t *testing.T) {
	store := cache.NewMemoryAttemptStore()
	timer := NewAttemptTimer(store, "u1:ss-1", 0, time.Hour, nil, testLogger())
	defer timer.Stop()

	remaining := timer.Initialize(context.Background())

	assert.Equal(t, int(config.DefaultSurveyDuration/time.Second), remaining)
}
