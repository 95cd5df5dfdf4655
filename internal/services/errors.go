package services

import (
	"errors"
	"fmt"

	apperrors "github.com/intranet-suite/survey-service/internal/errors"
)

// ===== COMMON SERVICE ERRORS =====

var (
	// Generic errors
	ErrNotFound         = errors.New("resource not found")
	ErrValidationFailed = errors.New("validation failed")

	// Catalog errors
	ErrCatalogUnavailable = errors.New("question catalog unavailable")
	ErrQuestionNotFound   = errors.New("question not found")
	ErrCategoryNotFound   = errors.New("category not found")
	ErrSubsectionNotFound = errors.New("subsection not found")

	// Attempt specific errors
	ErrAttemptNotFound    = errors.New("attempt not found")
	ErrAttemptFinalized   = errors.New("attempt already finalized")
	ErrSubmitInFlight     = errors.New("submission already in progress")
	ErrNotLastQuestion    = errors.New("submit is only available from the last question")
	ErrNoPendingConfirm   = errors.New("no submission awaiting confirmation")
	ErrEmptyAttempt       = errors.New("attempt has no recorded answers")
	ErrOrphanedQuestion   = errors.New("question has no resolvable category")
	ErrUnknownFilter      = errors.New("unknown category filter")

	// Bulletin errors
	ErrPostNotFound = errors.New("bulletin post not found")
)

// ===== CUSTOM ERROR TYPES =====

// Use shared validation errors from errors package
type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

// SubmissionError wraps the first hard failure of the per-question submission
// loop. Earlier submissions in the same batch are not rolled back; the
// at-least-once, non-atomic semantics is the documented contract.
type SubmissionError struct {
	QuestionID string
	Sent       int
	Err        error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("submission aborted at question %s after %d sent: %v", e.QuestionID, e.Sent, e.Err)
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}

// ===== ERROR HELPERS =====

// NewValidationError creates a new validation error using the shared type
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return apperrors.NewValidationError(field, message, value)
}

// IsNotFound checks if error represents a "not found" condition
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrQuestionNotFound) ||
		errors.Is(err, ErrCategoryNotFound) ||
		errors.Is(err, ErrSubsectionNotFound) ||
		errors.Is(err, ErrAttemptNotFound) ||
		errors.Is(err, ErrPostNotFound)
}

// IsValidation checks if error represents a validation failure
func IsValidation(err error) bool {
	if errors.Is(err, ErrValidationFailed) {
		return true
	}
	var ve apperrors.ValidationErrors
	return errors.As(err, &ve)
}

// IsConflict checks if error represents a state conflict on the attempt
func IsConflict(err error) bool {
	return errors.Is(err, ErrAttemptFinalized) ||
		errors.Is(err, ErrSubmitInFlight) ||
		errors.Is(err, ErrNotLastQuestion) ||
		errors.Is(err, ErrNoPendingConfirm) ||
		errors.Is(err, ErrEmptyAttempt)
}
