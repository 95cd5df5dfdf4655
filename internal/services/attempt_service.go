package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/intranet-suite/survey-service/internal/auth"
	"github.com/intranet-suite/survey-service/internal/cache"
	"github.com/intranet-suite/survey-service/internal/config"
	"github.com/intranet-suite/survey-service/internal/events"
	"github.com/intranet-suite/survey-service/internal/models"
	"github.com/intranet-suite/survey-service/internal/repositories"
)

// ResponseSubmitter delivers one graded response record. The coordinator
// submits sequentially and aborts on the first failure; implementations do
// not need to be atomic across records.
type ResponseSubmitter interface {
	SubmitResponse(ctx context.Context, record *models.ResponseRecord) error
}

// NewRepositorySubmitter stores graded responses through the repository layer.
func NewRepositorySubmitter(repo repositories.Repository) ResponseSubmitter {
	return &repositorySubmitter{repo: repo}
}

type repositorySubmitter struct {
	repo repositories.Repository
}

func (s *repositorySubmitter) SubmitResponse(ctx context.Context, record *models.ResponseRecord) error {
	return s.repo.Response().Create(ctx, record)
}

// AttemptService coordinates timed survey attempts: the countdown, question
// navigation, answer accumulation and the submission lifecycle.
type AttemptService interface {
	// Start creates the attempt session for the user and subsection, or
	// returns the existing one. A previously persisted countdown resumes.
	Start(ctx context.Context, userID, subsectionID string) (*AttemptView, error)

	// Get returns the current view of an attempt.
	Get(ctx context.Context, attemptKey string) (*AttemptView, error)

	// RecordAnswer upserts the answer for a question of the attempt.
	RecordAnswer(ctx context.Context, attemptKey, questionID, answer string) error

	// Next and Previous move through the active question sequence.
	Next(ctx context.Context, attemptKey string) (*AttemptView, error)
	Previous(ctx context.Context, attemptKey string) (*AttemptView, error)

	// SetCategoryFilter restricts navigation to one category ("all" resets).
	SetCategoryFilter(ctx context.Context, attemptKey, filter string) (*AttemptView, error)

	// RequestSubmit opens the confirmation step; only valid on the last
	// question. CancelSubmit returns to answering without side effects.
	RequestSubmit(ctx context.Context, attemptKey string) (*AttemptView, error)
	CancelSubmit(ctx context.Context, attemptKey string) (*AttemptView, error)

	// ConfirmSubmit grades and delivers the recorded answers. The bearer
	// token is decoded here; a token that does not identify the attempt
	// owner blocks the submission before anything is sent.
	ConfirmSubmit(ctx context.Context, attemptKey, bearerToken string) (*AttemptView, error)

	// TimeRemaining returns the seconds left in the attempt window.
	TimeRemaining(ctx context.Context, attemptKey string) (int, error)

	// Close drops the in-memory session but keeps the persisted countdown,
	// so reopening the attempt resumes rather than restarts.
	Close(attemptKey string)
}

type attemptService struct {
	repo      repositories.Repository
	store     cache.AttemptStore
	submitter ResponseSubmitter
	publisher events.EventPublisher
	logger    *slog.Logger

	duration time.Duration
	tick     time.Duration

	mu       sync.RWMutex
	attempts map[string]*Attempt
}

func NewAttemptService(
	repo repositories.Repository,
	store cache.AttemptStore,
	submitter ResponseSubmitter,
	publisher events.EventPublisher,
	logger *slog.Logger,
	cfg *config.Config,
) AttemptService {
	duration := cfg.SurveyDuration
	tick := cfg.TimerTick
	if tick <= 0 {
		tick = time.Second
	}
	if submitter == nil {
		submitter = NewRepositorySubmitter(repo)
	}
	return &attemptService{
		repo:      repo,
		store:     store,
		submitter: submitter,
		publisher: publisher,
		logger:    logger,
		duration:  duration,
		tick:      tick,
		attempts:  make(map[string]*Attempt),
	}
}

// AttemptKey derives the session and countdown key for a user/subsection pair.
func AttemptKey(userID, subsectionID string) string {
	return userID + ":" + subsectionID
}

// ===== SESSION LIFECYCLE =====

func (s *attemptService) Start(ctx context.Context, userID, subsectionID string) (*AttemptView, error) {
	key := AttemptKey(userID, subsectionID)

	s.mu.Lock()
	if existing, ok := s.attempts[key]; ok {
		s.mu.Unlock()
		existing.mu.Lock()
		defer existing.mu.Unlock()
		return s.buildView(existing), nil
	}
	s.mu.Unlock()

	questions, err := s.repo.Question().GetBySubsection(ctx, subsectionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}
	categories, err := s.repo.Category().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}

	attempt := newAttempt(key, userID, subsectionID, categories, questions)
	attempt.nav.OnCategoryChange(func(category *models.Category) {
		s.publishEvent(context.Background(), events.EventCategoryChanged, events.CategoryChangedEvent{
			AttemptKey:   key,
			CategoryID:   category.ID,
			CategoryName: category.Name,
		})
	})
	attempt.timer = NewAttemptTimer(s.store, key, s.duration, s.tick, func() {
		s.handleTimeout(attempt)
	}, s.logger)

	s.mu.Lock()
	if raced, ok := s.attempts[key]; ok {
		// lost the race to a concurrent Start for the same key
		s.mu.Unlock()
		raced.mu.Lock()
		defer raced.mu.Unlock()
		return s.buildView(raced), nil
	}
	s.attempts[key] = attempt
	s.mu.Unlock()

	_, resumed, _ := s.store.GetStart(ctx, key)
	remaining := attempt.timer.Initialize(ctx)

	s.logger.Info("attempt started",
		"attempt_key", key,
		"user_id", userID,
		"subsection_id", subsectionID,
		"questions", len(questions),
		"remaining_seconds", remaining,
		"resumed", resumed)

	s.publishEvent(ctx, events.EventAttemptStarted, events.AttemptStartedEvent{
		AttemptKey: key,
		UserID:     userID,
		StartedAt:  time.Now(),
		Duration:   remaining,
		Resumed:    resumed,
	})

	attempt.mu.Lock()
	defer attempt.mu.Unlock()
	return s.buildView(attempt), nil
}

func (s *attemptService) Get(_ context.Context, attemptKey string) (*AttemptView, error) {
	attempt, err := s.lookup(attemptKey)
	if err != nil {
		return nil, err
	}
	attempt.mu.Lock()
	defer attempt.mu.Unlock()
	return s.buildView(attempt), nil
}

func (s *attemptService) Close(attemptKey string) {
	s.mu.Lock()
	attempt, ok := s.attempts[attemptKey]
	delete(s.attempts, attemptKey)
	s.mu.Unlock()

	if ok {
		// the persisted start survives on purpose: reopening resumes
		attempt.timer.Stop()
	}
}

func (s *attemptService) lookup(attemptKey string) (*Attempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	attempt, ok := s.attempts[attemptKey]
	if !ok {
		return nil, ErrAttemptNotFound
	}
	return attempt, nil
}

// ===== ANSWERING AND NAVIGATION =====

func (s *attemptService) RecordAnswer(_ context.Context, attemptKey, questionID, answer string) error {
	attempt, err := s.lookup(attemptKey)
	if err != nil {
		return err
	}

	attempt.mu.Lock()
	defer attempt.mu.Unlock()
	if err := attempt.recordAnswer(questionID, answer); err != nil {
		if errors.Is(err, ErrOrphanedQuestion) {
			s.logger.Warn("rejected answer for question without resolvable category",
				"attempt_key", attemptKey, "question_id", questionID)
		}
		return err
	}
	return nil
}

func (s *attemptService) Next(_ context.Context, attemptKey string) (*AttemptView, error) {
	attempt, err := s.lookup(attemptKey)
	if err != nil {
		return nil, err
	}
	attempt.mu.Lock()
	defer attempt.mu.Unlock()
	if err := attempt.ensureMutable(); err != nil {
		return nil, err
	}
	attempt.nav.Next()
	return s.buildView(attempt), nil
}

func (s *attemptService) Previous(_ context.Context, attemptKey string) (*AttemptView, error) {
	attempt, err := s.lookup(attemptKey)
	if err != nil {
		return nil, err
	}
	attempt.mu.Lock()
	defer attempt.mu.Unlock()
	if err := attempt.ensureMutable(); err != nil {
		return nil, err
	}
	attempt.nav.Previous()
	return s.buildView(attempt), nil
}

func (s *attemptService) SetCategoryFilter(_ context.Context, attemptKey, filter string) (*AttemptView, error) {
	attempt, err := s.lookup(attemptKey)
	if err != nil {
		return nil, err
	}
	attempt.mu.Lock()
	defer attempt.mu.Unlock()
	if err := attempt.ensureMutable(); err != nil {
		return nil, err
	}
	if err := attempt.nav.SetFilter(filter); err != nil {
		return nil, err
	}
	return s.buildView(attempt), nil
}

// ===== SUBMISSION LIFECYCLE =====

func (s *attemptService) RequestSubmit(_ context.Context, attemptKey string) (*AttemptView, error) {
	attempt, err := s.lookup(attemptKey)
	if err != nil {
		return nil, err
	}

	attempt.mu.Lock()
	defer attempt.mu.Unlock()

	switch attempt.phase {
	case PhaseCompleted:
		return nil, ErrAttemptFinalized
	case PhaseSubmitting:
		return nil, ErrSubmitInFlight
	case PhaseConfirmPending:
		return s.buildView(attempt), nil
	}
	if !attempt.nav.IsLast() {
		return nil, ErrNotLastQuestion
	}
	if attempt.answeredCount() == 0 {
		return nil, ErrEmptyAttempt
	}

	attempt.phase = PhaseConfirmPending
	return s.buildView(attempt), nil
}

func (s *attemptService) CancelSubmit(_ context.Context, attemptKey string) (*AttemptView, error) {
	attempt, err := s.lookup(attemptKey)
	if err != nil {
		return nil, err
	}

	attempt.mu.Lock()
	defer attempt.mu.Unlock()

	if attempt.phase != PhaseConfirmPending {
		return nil, ErrNoPendingConfirm
	}
	attempt.phase = PhaseIdle
	return s.buildView(attempt), nil
}

func (s *attemptService) ConfirmSubmit(ctx context.Context, attemptKey, bearerToken string) (*AttemptView, error) {
	attempt, err := s.lookup(attemptKey)
	if err != nil {
		return nil, err
	}

	attempt.mu.Lock()
	switch attempt.phase {
	case PhaseCompleted:
		attempt.mu.Unlock()
		return nil, ErrAttemptFinalized
	case PhaseSubmitting:
		attempt.mu.Unlock()
		return nil, ErrSubmitInFlight
	case PhaseIdle:
		attempt.mu.Unlock()
		return nil, ErrNoPendingConfirm
	}

	// Identity is resolved before anything is sent; a bad token leaves the
	// attempt untouched apart from the recorded failure reason.
	tokenUserID, err := auth.UserIDFromToken(bearerToken)
	if err != nil {
		attempt.phase = PhaseFailed
		attempt.failReason = "could not resolve user from token"
		attempt.mu.Unlock()
		return nil, err
	}
	if tokenUserID != attempt.UserID {
		attempt.phase = PhaseFailed
		attempt.failReason = "token does not identify the attempt owner"
		attempt.mu.Unlock()
		return nil, auth.NewAuthError("token does not identify the attempt owner")
	}

	answers := attempt.snapshotAnswers()
	attempt.phase = PhaseSubmitting
	attempt.mu.Unlock()

	sent, submitErr := s.submitAll(ctx, attempt, answers)

	attempt.mu.Lock()
	defer attempt.mu.Unlock()

	if submitErr != nil {
		attempt.phase = PhaseFailed
		attempt.failReason = submitErr.Error()
		s.logger.Error("submission aborted",
			"attempt_key", attemptKey, "sent", sent, "error", submitErr)
		return nil, submitErr
	}

	s.finalize(ctx, attempt, sent, false)
	return s.buildView(attempt), nil
}

// handleTimeout runs when the countdown reaches zero. It mirrors a confirmed
// submit without the confirmation step, except that an attempt with nothing
// recorded completes immediately without touching the network.
func (s *attemptService) handleTimeout(attempt *Attempt) {
	ctx := context.Background()

	attempt.mu.Lock()
	switch attempt.phase {
	case PhaseCompleted, PhaseSubmitting:
		// a submit won the race; the expiry is moot
		attempt.mu.Unlock()
		return
	}
	attempt.timedOut = true

	answers := attempt.snapshotAnswers()
	if len(answers) == 0 {
		s.finalize(ctx, attempt, 0, true)
		attempt.mu.Unlock()
		return
	}

	attempt.phase = PhaseSubmitting
	attempt.mu.Unlock()

	sent, submitErr := s.submitAll(ctx, attempt, answers)

	attempt.mu.Lock()
	defer attempt.mu.Unlock()

	if submitErr != nil {
		attempt.phase = PhaseFailed
		attempt.failReason = submitErr.Error()
		s.logger.Error("timed-out submission aborted",
			"attempt_key", attempt.Key, "sent", sent, "error", submitErr)
		return
	}

	s.finalize(ctx, attempt, sent, true)
}

// submitAll grades and delivers the snapshot sequentially, stopping at the
// first hard failure. Answers whose question has vanished from the catalog
// are skipped with a warning rather than failing the whole batch.
func (s *attemptService) submitAll(ctx context.Context, attempt *Attempt, answers []recordedAnswer) (int, error) {
	sent := 0
	for _, recorded := range answers {
		question, ok := attempt.questions[recorded.QuestionID]
		if !ok {
			s.logger.Warn("skipping answer for unknown question",
				"attempt_key", attempt.Key, "question_id", recorded.QuestionID)
			continue
		}

		score := 0
		if question.Type.Scorable() && question.IsCorrect(recorded.Answer) {
			score = question.Weight()
		}

		record := &models.ResponseRecord{
			UserID:       attempt.UserID,
			QuestionID:   recorded.QuestionID,
			Answer:       recorded.Answer,
			Score:        score,
			SubsectionID: attempt.SubsectionID,
		}
		if err := s.submitter.SubmitResponse(ctx, record); err != nil {
			return sent, &SubmissionError{QuestionID: recorded.QuestionID, Sent: sent, Err: err}
		}
		sent++
	}
	return sent, nil
}

// finalize marks the attempt completed, stops the countdown and clears the
// persisted start so a later visit gets a fresh window.
// Callers must hold attempt.mu.
func (s *attemptService) finalize(ctx context.Context, attempt *Attempt, sent int, timedOut bool) {
	attempt.phase = PhaseCompleted
	attempt.failReason = ""
	attempt.timer.Stop()

	if err := attempt.timer.ClearPersisted(ctx); err != nil {
		s.logger.Warn("failed to clear persisted attempt start",
			"attempt_key", attempt.Key, "error", err)
	}

	eventType := events.EventAttemptSubmitted
	if timedOut && sent == 0 {
		eventType = events.EventAttemptTimedOut
	}
	s.publishEvent(ctx, eventType, events.AttemptSubmittedEvent{
		AttemptKey:  attempt.Key,
		UserID:      attempt.UserID,
		SubmittedAt: time.Now(),
		Answered:    sent,
		TimedOut:    timedOut,
	})

	s.logger.Info("attempt finalized",
		"attempt_key", attempt.Key, "answered", sent, "timed_out", timedOut)
}

func (s *attemptService) TimeRemaining(_ context.Context, attemptKey string) (int, error) {
	attempt, err := s.lookup(attemptKey)
	if err != nil {
		return 0, err
	}
	return attempt.timer.Remaining(), nil
}

func (s *attemptService) publishEvent(ctx context.Context, eventType events.EventType, payload interface{}) {
	if s.publisher == nil {
		return
	}
	event := events.NewNotificationEvent(eventType, payload)
	if err := s.publisher.PublishNotificationEvent(ctx, event); err != nil {
		s.logger.Error("failed to publish event", "event_type", eventType, "error", err)
	}
}

// ===== VIEWS =====

// AttemptQuestion is the taker-facing projection of a question. The correct
// option is deliberately absent.
type AttemptQuestion struct {
	ID         string              `json:"id"`
	Prompt     string              `json:"prompt"`
	Options    []string            `json:"options"`
	Type       models.QuestionType `json:"question_type"`
	CategoryID string              `json:"category_id"`
	Answer     string              `json:"answer,omitempty"`
}

type AttemptView struct {
	Key          string       `json:"attempt_key"`
	UserID       string       `json:"user_id"`
	SubsectionID string       `json:"subsection_id"`
	Phase        AttemptPhase `json:"phase"`
	FailReason   string       `json:"fail_reason,omitempty"`
	TimedOut     bool         `json:"timed_out"`

	RemainingSeconds int `json:"remaining_seconds"`

	Question     *AttemptQuestion `json:"question,omitempty"`
	CategoryID   string           `json:"category_id,omitempty"`
	CategoryName string           `json:"category_name,omitempty"`

	Filter   string `json:"filter"`
	Position int    `json:"position"`
	Total    int    `json:"total"`
	IsFirst  bool   `json:"is_first"`
	IsLast   bool   `json:"is_last"`
	Answered int    `json:"answered"`
}

// buildView renders the attempt for the caller.
// Callers must hold attempt.mu.
func (s *attemptService) buildView(attempt *Attempt) *AttemptView {
	position, total := attempt.nav.Position()
	view := &AttemptView{
		Key:              attempt.Key,
		UserID:           attempt.UserID,
		SubsectionID:     attempt.SubsectionID,
		Phase:            attempt.phase,
		FailReason:       attempt.failReason,
		TimedOut:         attempt.timedOut,
		RemainingSeconds: attempt.timer.Remaining(),
		Filter:           attempt.nav.Filter(),
		Position:         position,
		Total:            total,
		IsFirst:          attempt.nav.IsFirst(),
		IsLast:           attempt.nav.IsLast(),
		Answered:         attempt.answeredCount(),
	}

	if question := attempt.nav.Current(); question != nil {
		view.Question = &AttemptQuestion{
			ID:      question.ID,
			Prompt:  question.Prompt,
			Options: question.OptionList(),
			Type:    question.Type,
			Answer:  attempt.answers[question.ID],
		}
		if question.CategoryID != nil {
			view.Question.CategoryID = *question.CategoryID
		}
	}
	if category := attempt.nav.CurrentCategory(); category != nil {
		view.CategoryID = category.ID
		view.CategoryName = category.Name
	}

	return view
}
