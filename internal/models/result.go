package models

import (
	"time"
)

// AttemptResult is created exactly once per (assessment, user); the composite
// unique index backs the single-submission invariant under concurrent submits.
type AttemptResult struct {
	ID           uint   `json:"id" gorm:"primaryKey"`
	AssessmentID uint   `json:"assessment_id" gorm:"not null;uniqueIndex:idx_results_assessment_user"`
	UserID       string `json:"user_id" gorm:"not null;size:255;uniqueIndex:idx_results_assessment_user"`

	Score     int `json:"score" gorm:"not null;default:0"`
	TimeTaken int `json:"time_taken" gorm:"not null;default:0"` // seconds, wall clock

	CreatedAt time.Time `json:"created_at"`

	// Relations
	Assessment Assessment `json:"assessment" gorm:"foreignKey:AssessmentID"`
	Responses  []Response `json:"responses,omitempty" gorm:"foreignKey:ResultID"`
}

func (AttemptResult) TableName() string {
	return "attempt_results"
}

// Response records a single item outcome. IsCorrect is always derived at
// submission time by comparing the chosen choice with the item's stored
// correct choice; the client-asserted value is never trusted.
type Response struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	ResultID uint   `json:"result_id" gorm:"not null;index"`
	ItemID   string `json:"item_id" gorm:"not null;index;size:10"`

	ChosenChoice string `json:"chosen_choice" gorm:"size:255"`
	TimeSpent    int    `json:"time_spent" gorm:"not null;default:0"` // seconds
	IsCorrect    bool   `json:"is_correct" gorm:"not null;default:false"`

	// Relations
	Item Item `json:"item" gorm:"foreignKey:ItemID"`
}

func (Response) TableName() string {
	return "responses"
}
