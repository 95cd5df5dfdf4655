package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/intranet-suite/survey-service/internal/cache"
	"github.com/intranet-suite/survey-service/internal/config"
)

// AttemptTimer counts an attempt down in whole seconds. The wall-clock start
// is persisted through the AttemptStore, so a timer constructed for a key
// that already has a start resumes the remaining window instead of granting
// a fresh one. Only finalization clears the persisted start; stopping the
// timer does not.
type AttemptTimer struct {
	store    cache.AttemptStore
	logger   *slog.Logger
	key      string
	duration time.Duration
	tick     time.Duration

	// now is swapped out in tests
	now func() time.Time

	mu        sync.Mutex
	remaining int
	running   bool
	stopCh    chan struct{}

	// the timeout callback fires at most once per timer, whether it fires
	// from a tick reaching zero or from resuming an already expired window
	timeoutOnce sync.Once
	onTimeout   func()
}

func NewAttemptTimer(store cache.AttemptStore, key string, duration, tick time.Duration, onTimeout func(), logger *slog.Logger) *AttemptTimer {
	return &AttemptTimer{
		store:     store,
		logger:    logger,
		key:       key,
		duration:  duration,
		tick:      tick,
		now:       time.Now,
		stopCh:    make(chan struct{}),
		onTimeout: onTimeout,
	}
}

// Initialize resolves the remaining window and starts ticking. A persisted
// start means resume: remaining = duration - elapsed. An already exhausted
// window fires the timeout immediately and never ticks. Store failures are
// logged and degrade to an unpersisted in-memory countdown rather than
// blocking the attempt.
func (t *AttemptTimer) Initialize(ctx context.Context) int {
	duration := t.duration
	if duration <= 0 {
		t.logger.Warn("invalid attempt duration, falling back to default",
			"attempt_key", t.key,
			"configured", t.duration.String(),
			"default", config.DefaultSurveyDuration.String())
		duration = config.DefaultSurveyDuration
	}
	total := int(duration / time.Second)

	start, found, err := t.store.GetStart(ctx, t.key)
	if err != nil {
		t.logger.Warn("attempt store unavailable, countdown will not survive a restart",
			"attempt_key", t.key, "error", err)
		found = false
	}

	remaining := total
	if found {
		elapsed := int(t.now().Sub(start) / time.Second)
		remaining = total - elapsed
		if remaining <= 0 {
			t.setRemaining(0)
			t.fireTimeout()
			return 0
		}
	} else {
		if err := t.store.SetStart(ctx, t.key, t.now()); err != nil {
			t.logger.Warn("failed to persist attempt start",
				"attempt_key", t.key, "error", err)
		}
	}

	t.setRemaining(remaining)
	t.start()
	return remaining
}

func (t *AttemptTimer) start() {
	t.mu.Lock()
	if t.running {
		t.mu.Unlock()
		return
	}
	t.running = true
	t.mu.Unlock()

	go t.run()
}

func (t *AttemptTimer) run() {
	ticker := time.NewTicker(t.tick)
	defer ticker.Stop()

	for {
		select {
		case <-t.stopCh:
			return
		case <-ticker.C:
			if t.decrement() == 0 {
				t.Stop()
				t.fireTimeout()
				return
			}
		}
	}
}

func (t *AttemptTimer) decrement() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.remaining > 0 {
		t.remaining--
	}
	return t.remaining
}

func (t *AttemptTimer) setRemaining(remaining int) {
	t.mu.Lock()
	t.remaining = remaining
	t.mu.Unlock()
}

// Remaining returns the seconds left in the attempt window.
func (t *AttemptTimer) Remaining() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.remaining
}

// Stop halts ticking. It is idempotent and safe to call from any goroutine.
// A tick already in flight finds the attempt finalized and does nothing.
func (t *AttemptTimer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.running {
		return
	}
	t.running = false
	close(t.stopCh)
}

// ClearPersisted removes the persisted start. Called on finalization only.
func (t *AttemptTimer) ClearPersisted(ctx context.Context) error {
	return t.store.ClearStart(ctx, t.key)
}

func (t *AttemptTimer) fireTimeout() {
	t.timeoutOnce.Do(func() {
		if t.onTimeout != nil {
			t.onTimeout()
		}
	})
}
