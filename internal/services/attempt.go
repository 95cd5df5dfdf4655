package services

import (
	"sync"

	"github.com/intranet-suite/survey-service/internal/models"
)

// ===== ATTEMPT LIFECYCLE =====

// AttemptPhase is the single source of truth for where an attempt stands in
// its submission lifecycle. Exactly one phase holds at any time; there is no
// way to be simultaneously "submitting" and "submitted".
type AttemptPhase string

const (
	// PhaseIdle is the normal answering state.
	PhaseIdle AttemptPhase = "idle"
	// PhaseConfirmPending means submit was requested and awaits confirmation.
	PhaseConfirmPending AttemptPhase = "confirm_pending"
	// PhaseSubmitting means the per-question submission loop is running.
	PhaseSubmitting AttemptPhase = "submitting"
	// PhaseCompleted is terminal: answers were delivered (or the window
	// expired with nothing to deliver).
	PhaseCompleted AttemptPhase = "completed"
	// PhaseFailed records an aborted submission. It is not terminal; the
	// attempt stays resumable and submit can be retried.
	PhaseFailed AttemptPhase = "failed"
)

// Attempt is one user's in-flight pass over one subsection's questions.
// Answers live here until a confirmed submit or the window expiring pushes
// them out; nothing is written per answer.
type Attempt struct {
	Key          string
	UserID       string
	SubsectionID string

	mu         sync.Mutex
	phase      AttemptPhase
	failReason string
	timedOut   bool

	// answers in first-recorded order; re-answering updates in place
	answers map[string]string
	order   []string

	questions  map[string]*models.Question
	categories map[string]*models.Category
	nav        *Navigator
	timer      *AttemptTimer
}

func newAttempt(key, userID, subsectionID string, categories []*models.Category, questions []*models.Question) *Attempt {
	a := &Attempt{
		Key:          key,
		UserID:       userID,
		SubsectionID: subsectionID,
		phase:        PhaseIdle,
		answers:      make(map[string]string),
		questions:    make(map[string]*models.Question, len(questions)),
		categories:   make(map[string]*models.Category, len(categories)),
		nav:          NewNavigator(categories, questions),
	}
	for _, q := range questions {
		a.questions[q.ID] = q
	}
	for _, c := range categories {
		a.categories[c.ID] = c
	}
	return a
}

// ensureMutable rejects answering and navigation once the attempt left the
// answering states: while the submission loop runs and after finalization
// the view must hold still.
// Callers must hold a.mu.
func (a *Attempt) ensureMutable() error {
	switch a.phase {
	case PhaseCompleted:
		return ErrAttemptFinalized
	case PhaseSubmitting:
		return ErrSubmitInFlight
	}
	return nil
}

// recordAnswer upserts an answer keyed by question ID. First-time answers
// append to the submission order; updates keep their original slot. A
// question outside the catalog, or one whose category can not be resolved,
// is rejected so nothing is ever recorded against an orphan.
// Callers must hold a.mu.
func (a *Attempt) recordAnswer(questionID, answer string) error {
	if err := a.ensureMutable(); err != nil {
		return err
	}

	question, ok := a.questions[questionID]
	if !ok {
		return ErrQuestionNotFound
	}
	if question.CategoryID == nil {
		return ErrOrphanedQuestion
	}
	if _, ok := a.categories[*question.CategoryID]; !ok {
		return ErrOrphanedQuestion
	}

	if _, exists := a.answers[questionID]; !exists {
		a.order = append(a.order, questionID)
	}
	a.answers[questionID] = answer
	return nil
}

// snapshotAnswers copies the recorded answers in submission order. Empty
// answers are dropped here so the submission loop never sees them.
// Callers must hold a.mu.
func (a *Attempt) snapshotAnswers() []recordedAnswer {
	snapshot := make([]recordedAnswer, 0, len(a.order))
	for _, questionID := range a.order {
		answer := a.answers[questionID]
		if questionID == "" || answer == "" {
			continue
		}
		snapshot = append(snapshot, recordedAnswer{QuestionID: questionID, Answer: answer})
	}
	return snapshot
}

type recordedAnswer struct {
	QuestionID string
	Answer     string
}

// answeredCount reports how many questions carry a non-empty answer.
// Callers must hold a.mu.
func (a *Attempt) answeredCount() int {
	count := 0
	for _, answer := range a.answers {
		if answer != "" {
			count++
		}
	}
	return count
}
