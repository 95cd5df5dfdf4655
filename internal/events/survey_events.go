package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType represents different types of notification events
type EventType string

const (
	// Attempt events
	EventAttemptStarted   EventType = "attempt.started"
	EventAttemptSubmitted EventType = "attempt.submitted"
	EventAttemptTimedOut  EventType = "attempt.timed_out"

	// Navigation events
	EventCategoryChanged EventType = "attempt.category_changed"

	// Bulletin events
	EventAnnouncementPublished EventType = "bulletin.announcement_published"
)

// NotificationEvent is the base event structure for all notification events
type NotificationEvent struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// NewNotificationEvent fills in the envelope fields around a payload.
func NewNotificationEvent(eventType EventType, data interface{}) *NotificationEvent {
	return &NotificationEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now(),
		Source:    "survey-service",
		Version:   "1.0",
		Data:      data,
	}
}

// Attempt event payloads

type AttemptStartedEvent struct {
	AttemptKey string    `json:"attempt_key"`
	UserID     string    `json:"user_id"`
	StartedAt  time.Time `json:"started_at"`
	Duration   int       `json:"duration_seconds"`
	Resumed    bool      `json:"resumed"`
}

type AttemptSubmittedEvent struct {
	AttemptKey  string    `json:"attempt_key"`
	UserID      string    `json:"user_id"`
	SubmittedAt time.Time `json:"submitted_at"`
	Answered    int       `json:"answered"`
	TimedOut    bool      `json:"timed_out"`
}

// CategoryChangedEvent is emitted when forward navigation crosses into the
// next category under an active category filter.
type CategoryChangedEvent struct {
	AttemptKey   string `json:"attempt_key"`
	CategoryID   string `json:"category_id"`
	CategoryName string `json:"category_name"`
}

// Bulletin event payloads

type AnnouncementPublishedEvent struct {
	PostID    string    `json:"post_id"`
	Kind      string    `json:"kind"`
	Title     string    `json:"title"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}
