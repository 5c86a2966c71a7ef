package events

import (
	"time"

	"github.com/lithammer/shortuuid/v3"
)

type EventType string

const (
	// EventAttemptSubmitted fires after an attempt result is persisted.
	EventAttemptSubmitted EventType = "attempt.submitted"
	// EventAbilityUpdated fires after a proficiency estimate is upserted.
	EventAbilityUpdated EventType = "ability.updated"
)

// ScoringEvent is the envelope published to the scoring topic. Downstream
// consumers (notification service, analytics) key off Type.
type ScoringEvent struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Source    string    `json:"source"`
	Version   string    `json:"version"`
	Timestamp time.Time `json:"timestamp"`

	UserID string `json:"user_id"`

	// Attempt fields (attempt.submitted)
	AssessmentID *uint `json:"assessment_id,omitempty"`
	Score        *int  `json:"score,omitempty"`
	TotalItems   *int  `json:"total_items,omitempty"`
	AutoSubmit   *bool `json:"auto_submit,omitempty"`

	// Ability fields (ability.updated)
	CategoryID *uint    `json:"category_id,omitempty"`
	Theta      *float64 `json:"theta,omitempty"`
}

func NewAttemptSubmittedEvent(userID string, assessmentID uint, score, totalItems int, autoSubmit bool) *ScoringEvent {
	return &ScoringEvent{
		ID:           shortuuid.New(),
		Type:         EventAttemptSubmitted,
		Source:       "proficiency-service",
		Version:      "1.0",
		Timestamp:    time.Now().UTC(),
		UserID:       userID,
		AssessmentID: &assessmentID,
		Score:        &score,
		TotalItems:   &totalItems,
		AutoSubmit:   &autoSubmit,
	}
}

func NewAbilityUpdatedEvent(userID string, categoryID uint, theta float64) *ScoringEvent {
	return &ScoringEvent{
		ID:         shortuuid.New(),
		Type:       EventAbilityUpdated,
		Source:     "proficiency-service",
		Version:    "1.0",
		Timestamp:  time.Now().UTC(),
		UserID:     userID,
		CategoryID: &categoryID,
		Theta:      &theta,
	}
}
