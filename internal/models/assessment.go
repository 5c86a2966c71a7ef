package models

import (
	"time"
)

type AssessmentKind string

const (
	KindExam AssessmentKind = "exam"
	KindQuiz AssessmentKind = "quiz"
)

type ItemSource string

const (
	SourcePreviousExam ItemSource = "previous_exam"
	SourceAIGenerated  ItemSource = "ai_generated"
	SourceMixed        ItemSource = "mixed"
)

// AttemptStatus is derived from the session ledger, never stored: a session
// row means InProgress, a result row means Completed.
type AttemptStatus string

const (
	StatusNotStarted AttemptStatus = "not_started"
	StatusInProgress AttemptStatus = "in_progress"
	StatusCompleted  AttemptStatus = "completed"
)

// Assessment is an immutable-once-created attempt configuration: the item set
// is fixed at creation and never mutated afterwards.
type Assessment struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	Name      string `json:"name" gorm:"size:255"`
	CreatedBy string `json:"created_by" gorm:"not null;index;size:255"`

	Kind   AssessmentKind `json:"kind" gorm:"not null;size:20" validate:"required,oneof=exam quiz"`
	Source ItemSource     `json:"source" gorm:"not null;size:50" validate:"required,oneof=previous_exam ai_generated mixed"`

	// Class-owned assessments (e.g. the initial exam) are only visible to
	// enrolled students. Self-generated quizzes leave ClassID nil.
	ClassID   *uint `json:"class_id" gorm:"index"`
	IsInitial bool  `json:"is_initial" gorm:"default:false;index"`

	// Deadline is the absolute wall-clock cutoff for manual submission.
	// TimeLimit is the per-attempt budget in seconds.
	Deadline  *time.Time `json:"deadline"`
	TimeLimit int        `json:"time_limit" gorm:"not null"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Items              []Item     `json:"items,omitempty" gorm:"many2many:assessment_items"`
	SelectedCategories []Category `json:"selected_categories,omitempty" gorm:"many2many:assessment_categories"`
	Creator            User       `json:"creator" gorm:"foreignKey:CreatedBy"`
}

func (Assessment) TableName() string {
	return "assessments"
}

// AttemptSession is the ledger record anchoring the attempt clock. Exactly one
// row may exist per (assessment, user); the first take request creates it and
// every later request reuses it.
type AttemptSession struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	AssessmentID uint      `json:"assessment_id" gorm:"not null;uniqueIndex:idx_sessions_assessment_user"`
	UserID       string    `json:"user_id" gorm:"not null;size:255;uniqueIndex:idx_sessions_assessment_user"`
	StartedAt    time.Time `json:"started_at" gorm:"not null"`

	CreatedAt time.Time `json:"created_at"`

	// Relations
	Assessment Assessment `json:"assessment" gorm:"foreignKey:AssessmentID"`
}

func (AttemptSession) TableName() string {
	return "attempt_sessions"
}
