package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/intranet-suite/survey-service/internal/auth"
	"github.com/intranet-suite/survey-service/internal/events"
)

func startAttempt(t *testing.T, f *attemptFixture) *AttemptView {
	t.Helper()
	view, err := f.service.Start(context.Background(), "user-1", "ss-1")
	require.NoError(t, err)
	return view
}

func toLastQuestion(t *testing.T, f *attemptFixture, key string) {
	t.Helper()
	for {
		view, err := f.service.Next(context.Background(), key)
		require.NoError(t, err)
		if view.IsLast {
			return
		}
	}
}

func TestAttemptService_StartAndResume(t *testing.T) {
	f := newAttemptFixture(testConfig(2*time.Minute, time.Hour))
	ctx := context.Background()

	view := startAttempt(t, f)
	defer f.service.Close(view.Key)

	assert.Equal(t, PhaseIdle, view.Phase)
	assert.Equal(t, 120, view.RemainingSeconds)
	assert.Equal(t, 4, view.Total)
	assert.Equal(t, "q1", view.Question.ID)
	assert.True(t, f.store.Has(view.Key))

	t.Run("starting again reuses the session", func(t *testing.T) {
		again, err := f.service.Start(ctx, "user-1", "ss-1")
		require.NoError(t, err)
		assert.Equal(t, view.Key, again.Key)
	})

	t.Run("taker view never exposes the correct option", func(t *testing.T) {
		assert.NotContains(t, view.Question.Prompt, "option-a")
		assert.Empty(t, view.Question.Answer)
	})
}

func TestAttemptService_ResumeAfterClose(t *testing.T) {
	f := newAttemptFixture(testConfig(2*time.Minute, time.Hour))
	ctx := context.Background()

	require.NoError(t, f.store.SetStart(ctx, AttemptKey("user-1", "ss-1"), time.Now().Add(-40*time.Second)))

	view := startAttempt(t, f)
	defer f.service.Close(view.Key)

	assert.InDelta(t, 80, view.RemainingSeconds, 1)
}

func TestAttemptService_RecordAnswer(t *testing.T) {
	f := newAttemptFixture(testConfig(2*time.Minute, time.Hour))
	ctx := context.Background()
	view := startAttempt(t, f)
	defer f.service.Close(view.Key)

	t.Run("records and updates in place", func(t *testing.T) {
		require.NoError(t, f.service.RecordAnswer(ctx, view.Key, "q1", "option-x"))
		require.NoError(t, f.service.RecordAnswer(ctx, view.Key, "q1", "option-a"))

		current, err := f.service.Get(ctx, view.Key)
		require.NoError(t, err)
		assert.Equal(t, 1, current.Answered)
		assert.Equal(t, "option-a", current.Question.Answer)
	})

	t.Run("unknown question is rejected", func(t *testing.T) {
		assert.ErrorIs(t, f.service.RecordAnswer(ctx, view.Key, "q-missing", "x"), ErrQuestionNotFound)
	})

	t.Run("unknown attempt is rejected", func(t *testing.T) {
		assert.ErrorIs(t, f.service.RecordAnswer(ctx, "nope", "q1", "x"), ErrAttemptNotFound)
	})
}

func TestAttemptService_SubmitRequiresAnAnswer(t *testing.T) {
	f := newAttemptFixture(testConfig(2*time.Minute, time.Hour))
	ctx := context.Background()
	view := startAttempt(t, f)
	key := view.Key
	defer f.service.Close(key)

	toLastQuestion(t, f, key)

	_, err := f.service.RequestSubmit(ctx, key)
	assert.ErrorIs(t, err, ErrEmptyAttempt)

	require.NoError(t, f.service.RecordAnswer(ctx, key, "q1", "option-a"))
	submitView, err := f.service.RequestSubmit(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, PhaseConfirmPending, submitView.Phase)
}

func TestAttemptService_SubmitLifecycle(t *testing.T) {
	f := newAttemptFixture(testConfig(2*time.Minute, time.Hour))
	ctx := context.Background()
	view := startAttempt(t, f)
	key := view.Key

	require.NoError(t, f.service.RecordAnswer(ctx, key, "q1", "option-a")) // correct
	require.NoError(t, f.service.RecordAnswer(ctx, key, "q2", "option-a")) // wrong
	require.NoError(t, f.service.RecordAnswer(ctx, key, "q3", "option-a")) // correct
	require.NoError(t, f.service.RecordAnswer(ctx, key, "q4", "free text"))

	t.Run("submit requires the last question", func(t *testing.T) {
		_, err := f.service.RequestSubmit(ctx, key)
		assert.ErrorIs(t, err, ErrNotLastQuestion)
	})

	toLastQuestion(t, f, key)

	t.Run("cancel returns to answering", func(t *testing.T) {
		view, err := f.service.RequestSubmit(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, PhaseConfirmPending, view.Phase)

		view, err = f.service.CancelSubmit(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, PhaseIdle, view.Phase)
		assert.Empty(t, f.submitter.records())
	})

	t.Run("cancel without a pending confirm is rejected", func(t *testing.T) {
		_, err := f.service.CancelSubmit(ctx, key)
		assert.ErrorIs(t, err, ErrNoPendingConfirm)
	})

	t.Run("confirm without a request is rejected", func(t *testing.T) {
		_, err := f.service.ConfirmSubmit(ctx, key, bearerToken("user-1"))
		assert.ErrorIs(t, err, ErrNoPendingConfirm)
	})

	t.Run("confirmed submit delivers in recording order", func(t *testing.T) {
		_, err := f.service.RequestSubmit(ctx, key)
		require.NoError(t, err)

		view, err := f.service.ConfirmSubmit(ctx, key, bearerToken("user-1"))
		require.NoError(t, err)
		assert.Equal(t, PhaseCompleted, view.Phase)

		records := f.submitter.records()
		require.Len(t, records, 4)
		assert.Equal(t, "q1", records[0].QuestionID)
		assert.Equal(t, "q2", records[1].QuestionID)
		assert.Equal(t, "q3", records[2].QuestionID)
		assert.Equal(t, "q4", records[3].QuestionID)

		// correct answers earn the question weight, everything else zero
		assert.Equal(t, 1, records[0].Score)
		assert.Equal(t, 0, records[1].Score)
		assert.Equal(t, 1, records[2].Score)
		assert.Equal(t, 0, records[3].Score, "descriptive answers are never scored")

		for _, record := range records {
			assert.Equal(t, "user-1", record.UserID)
			assert.Equal(t, "ss-1", record.SubsectionID)
		}

		assert.False(t, f.store.Has(key), "finalization clears the persisted start")
	})

	t.Run("completed attempt rejects further mutation", func(t *testing.T) {
		_, err := f.service.RequestSubmit(ctx, key)
		assert.ErrorIs(t, err, ErrAttemptFinalized)
		assert.ErrorIs(t, f.service.RecordAnswer(ctx, key, "q1", "late"), ErrAttemptFinalized)

		_, err = f.service.ConfirmSubmit(ctx, key, bearerToken("user-1"))
		assert.ErrorIs(t, err, ErrAttemptFinalized)
		assert.Len(t, f.submitter.records(), 4, "no duplicate deliveries")
	})

	t.Run("submitted event carries the outcome", func(t *testing.T) {
		var submitted []events.NotificationEvent
		for _, event := range f.publisher.GetPublishedEvents() {
			if event.Type == events.EventAttemptSubmitted {
				submitted = append(submitted, event)
			}
		}
		require.Len(t, submitted, 1)
		payload, ok := submitted[0].Data.(events.AttemptSubmittedEvent)
		require.True(t, ok)
		assert.Equal(t, 4, payload.Answered)
		assert.False(t, payload.TimedOut)
	})
}

func TestAttemptService_ConfirmRejectsBadToken(t *testing.T) {
	f := newAttemptFixture(testConfig(2*time.Minute, time.Hour))
	ctx := context.Background()
	view := startAttempt(t, f)
	key := view.Key
	defer f.service.Close(key)

	require.NoError(t, f.service.RecordAnswer(ctx, key, "q1", "option-a"))
	toLastQuestion(t, f, key)
	_, err := f.service.RequestSubmit(ctx, key)
	require.NoError(t, err)

	t.Run("undecodable token", func(t *testing.T) {
		_, err := f.service.ConfirmSubmit(ctx, key, "Bearer not-a-jwt")
		var authErr *auth.AuthError
		assert.ErrorAs(t, err, &authErr)
		assert.Empty(t, f.submitter.records(), "nothing is sent on auth failure")
	})

	t.Run("token for a different user", func(t *testing.T) {
		_, err := f.service.ConfirmSubmit(ctx, key, bearerToken("someone-else"))
		var authErr *auth.AuthError
		assert.ErrorAs(t, err, &authErr)
		assert.Empty(t, f.submitter.records())
	})

	t.Run("attempt stays resumable", func(t *testing.T) {
		current, err := f.service.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, PhaseFailed, current.Phase)
		assert.True(t, f.store.Has(key))
	})
}

func TestAttemptService_AbortsOnFirstFailure(t *testing.T) {
	f := newAttemptFixture(testConfig(2*time.Minute, time.Hour))
	f.submitter.failAt = 2
	ctx := context.Background()
	view := startAttempt(t, f)
	key := view.Key
	defer f.service.Close(key)

	require.NoError(t, f.service.RecordAnswer(ctx, key, "q1", "option-a"))
	require.NoError(t, f.service.RecordAnswer(ctx, key, "q2", "option-b"))
	require.NoError(t, f.service.RecordAnswer(ctx, key, "q3", "option-a"))
	toLastQuestion(t, f, key)

	_, err := f.service.RequestSubmit(ctx, key)
	require.NoError(t, err)
	_, err = f.service.ConfirmSubmit(ctx, key, bearerToken("user-1"))

	var submissionErr *SubmissionError
	require.ErrorAs(t, err, &submissionErr)
	assert.Equal(t, "q2", submissionErr.QuestionID)
	assert.Equal(t, 1, submissionErr.Sent)

	// the failing record and everything after it stay unsent; the one before
	// it is not rolled back
	records := f.submitter.records()
	require.Len(t, records, 1)
	assert.Equal(t, "q1", records[0].QuestionID)

	current, err := f.service.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, PhaseFailed, current.Phase)
	assert.True(t, f.store.Has(key), "a failed submission keeps the countdown persisted")

	t.Run("retry succeeds after the backend recovers", func(t *testing.T) {
		f.submitter.failAt = 0
		_, err := f.service.RequestSubmit(ctx, key)
		require.NoError(t, err)
		view, err := f.service.ConfirmSubmit(ctx, key, bearerToken("user-1"))
		require.NoError(t, err)
		assert.Equal(t, PhaseCompleted, view.Phase)
		assert.Len(t, f.submitter.records(), 4)
	})
}

func TestAttemptService_NavigationLockedWhileSubmitting(t *testing.T) {
	f := newAttemptFixture(testConfig(2*time.Minute, time.Hour))
	gate := make(chan struct{})
	f.submitter.gate = gate
	ctx := context.Background()
	view := startAttempt(t, f)
	key := view.Key

	require.NoError(t, f.service.RecordAnswer(ctx, key, "q1", "option-a"))
	require.NoError(t, f.service.RecordAnswer(ctx, key, "q2", "option-b"))
	toLastQuestion(t, f, key)

	_, err := f.service.RequestSubmit(ctx, key)
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = f.service.ConfirmSubmit(ctx, key, bearerToken("user-1"))
	}()

	require.Eventually(t, func() bool {
		current, err := f.service.Get(ctx, key)
		return err == nil && current.Phase == PhaseSubmitting
	}, time.Second, 5*time.Millisecond)

	// the view must hold still while the delivery loop runs
	_, err = f.service.Previous(ctx, key)
	assert.ErrorIs(t, err, ErrSubmitInFlight)
	_, err = f.service.Next(ctx, key)
	assert.ErrorIs(t, err, ErrSubmitInFlight)
	_, err = f.service.SetCategoryFilter(ctx, key, "cat-1")
	assert.ErrorIs(t, err, ErrSubmitInFlight)
	assert.ErrorIs(t, f.service.RecordAnswer(ctx, key, "q1", "late"), ErrSubmitInFlight)

	current, err := f.service.Get(ctx, key)
	require.NoError(t, err)
	assert.True(t, current.IsLast, "position did not move")

	close(gate)
	<-done

	current, err = f.service.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, PhaseCompleted, current.Phase)
	assert.Len(t, f.submitter.records(), 2)
}

func TestAttemptService_TimeoutSubmitsRecordedAnswers(t *testing.T) {
	f := newAttemptFixture(testConfig(2*time.Second, 5*time.Millisecond))
	ctx := context.Background()
	view := startAttempt(t, f)
	key := view.Key

	require.NoError(t, f.service.RecordAnswer(ctx, key, "q1", "option-a"))
	require.NoError(t, f.service.RecordAnswer(ctx, key, "q2", "option-b"))

	require.Eventually(t, func() bool {
		current, err := f.service.Get(ctx, key)
		return err == nil && current.Phase == PhaseCompleted
	}, 2*time.Second, 10*time.Millisecond)

	records := f.submitter.records()
	require.Len(t, records, 2)
	assert.Equal(t, "q1", records[0].QuestionID)
	assert.Equal(t, "q2", records[1].QuestionID)
	assert.False(t, f.store.Has(key))

	current, err := f.service.Get(ctx, key)
	require.NoError(t, err)
	assert.True(t, current.TimedOut)
}

func TestAttemptService_TimeoutWithNothingRecorded(t *testing.T) {
	f := newAttemptFixture(testConfig(1*time.Second, 5*time.Millisecond))
	ctx := context.Background()
	view := startAttempt(t, f)
	key := view.Key

	require.Eventually(t, func() bool {
		current, err := f.service.Get(ctx, key)
		return err == nil && current.Phase == PhaseCompleted
	}, 2*time.Second, 10*time.Millisecond)

	assert.Empty(t, f.submitter.records(), "an empty attempt never touches the backend")
	assert.False(t, f.store.Has(key))

	var timedOut int
	for _, event := range f.publisher.GetPublishedEvents() {
		if event.Type == events.EventAttemptTimedOut {
			timedOut++
		}
	}
	assert.Equal(t, 1, timedOut)
}

func TestAttemptService_CategoryFilter(t *testing.T) {
	f := newAttemptFixture(testConfig(2*time.Minute, time.Hour))
	ctx := context.Background()
	view := startAttempt(t, f)
	key := view.Key
	defer f.service.Close(key)

	filtered, err := f.service.SetCategoryFilter(ctx, key, "cat-2")
	require.NoError(t, err)
	assert.Equal(t, "q3", filtered.Question.ID)
	assert.Equal(t, 2, filtered.Total)
	assert.Equal(t, "Policy", filtered.CategoryName)

	_, err = f.service.SetCategoryFilter(ctx, key, "bogus")
	assert.ErrorIs(t, err, ErrUnknownFilter)

	reset, err := f.service.SetCategoryFilter(ctx, key, CategoryFilterAll)
	require.NoError(t, err)
	assert.Equal(t, 4, reset.Total)
}

func TestAttemptService_CatalogUnavailable(t *testing.T) {
	f := newAttemptFixture(testConfig(2*time.Minute, time.Hour))
	f.repo.questions.listErr = assert.AnError

	_, err := f.service.Start(context.Background(), "user-1", "ss-1")
	assert.ErrorIs(t, err, ErrCatalogUnavailable)
}
