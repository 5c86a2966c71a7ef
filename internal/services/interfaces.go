package services

import (
	"context"
	"time"

	"github.com/SAP-F-2025/proficiency-service/internal/models"
	"github.com/SAP-F-2025/proficiency-service/internal/repositories"
)

// ===== REQUEST / RESPONSE TYPES =====

// ItemView is an item as shown to a test taker. The correct choice never
// leaves the service layer.
type ItemView struct {
	ID         string            `json:"id"`
	Text       string            `json:"text"`
	ImageURL   *string           `json:"image_url,omitempty"`
	CategoryID uint              `json:"category_id"`
	Choices    map[string]string `json:"choices"`
}

type BeginAttemptResponse struct {
	AssessmentID     uint                  `json:"assessment_id"`
	Name             string                `json:"name"`
	Kind             models.AssessmentKind `json:"kind"`
	Items            []ItemView            `json:"items"`
	StartedAt        time.Time             `json:"started_at"`
	RemainingSeconds int                   `json:"remaining_seconds"`
}

// SubmittedAnswer carries one answer from the client. Choice is the chosen
// answer text, not a choice label.
type SubmittedAnswer struct {
	ItemID    string `json:"item_id" validate:"required"`
	Choice    string `json:"choice"`
	TimeSpent int    `json:"time_spent" validate:"gte=0"`
}

type SubmitAttemptRequest struct {
	AssessmentID uint              `json:"assessment_id" validate:"required"`
	Answers      []SubmittedAnswer `json:"answers" validate:"dive"`
}

type SubmitAttemptResponse struct {
	AssessmentID  uint                        `json:"assessment_id"`
	Score         int                         `json:"score"`
	TotalItems    int                         `json:"total_items"`
	TimeTaken     int                         `json:"time_taken"`
	AutoSubmitted bool                        `json:"auto_submitted"`
	Breakdown     map[uint]*CategoryBreakdown `json:"breakdown"`
}

// CategoryBreakdown is the per-category tally of a scored attempt.
type CategoryBreakdown struct {
	CategoryID   uint   `json:"category_id"`
	CategoryName string `json:"category_name"`
	Total        int    `json:"total"`
	Correct      int    `json:"correct"`
	Wrong        int    `json:"wrong"`
}

type GenerateAttemptRequest struct {
	Name        string                `json:"name" validate:"required"`
	Kind        models.AssessmentKind `json:"kind" validate:"required,assessment_kind"`
	Source      models.ItemSource     `json:"source" validate:"required,item_source"`
	CategoryIDs []uint                `json:"category_ids" validate:"required,min=1"`
	Count       int                   `json:"count" validate:"required,gt=0"`
	TimeLimit   int                   `json:"time_limit" validate:"gte=0"`
	Deadline    *time.Time            `json:"deadline"`
}

// AssessmentSummary is the per-student projection of a class assessment.
type AssessmentSummary struct {
	ID        uint                  `json:"id"`
	Name      string                `json:"name"`
	Kind      models.AssessmentKind `json:"kind"`
	Status    models.AttemptStatus  `json:"status"`
	IsOpen    bool                  `json:"is_open"`
	Deadline  *time.Time            `json:"deadline"`
	TimeLimit int                   `json:"time_limit"`
}

// ResponseReview is one answered item in a result review, with the correct
// answer revealed.
type ResponseReview struct {
	ItemID        string `json:"item_id"`
	Text          string `json:"text"`
	CategoryID    uint   `json:"category_id"`
	ChosenChoice  string `json:"chosen_choice"`
	CorrectChoice string `json:"correct_choice"`
	IsCorrect     bool   `json:"is_correct"`
	TimeSpent     int    `json:"time_spent"`
}

type AttemptReview struct {
	AssessmentID uint                        `json:"assessment_id"`
	Score        int                         `json:"score"`
	TotalItems   int                         `json:"total_items"`
	TimeTaken    int                         `json:"time_taken"`
	SubmittedAt  time.Time                   `json:"submitted_at"`
	Responses    []ResponseReview            `json:"responses"`
	Breakdown    map[uint]*CategoryBreakdown `json:"breakdown"`
}

type HistoryEntry struct {
	ResultID     uint                        `json:"result_id"`
	AssessmentID uint                        `json:"assessment_id"`
	Name         string                      `json:"name"`
	Kind         models.AssessmentKind       `json:"kind"`
	Source       models.ItemSource           `json:"source"`
	Score        int                         `json:"score"`
	TotalItems   int                         `json:"total_items"`
	TimeTaken    int                         `json:"time_taken"`
	Date         time.Time                   `json:"date"`
	Breakdown    map[uint]*CategoryBreakdown `json:"breakdown"`
}

// ===== SERVICE INTERFACES =====

// AttemptService manages the attempt lifecycle for one (assessment, user)
// pair: NotStarted until the first begin, InProgress while a session row
// exists, Completed once a result row exists.
type AttemptService interface {
	Begin(ctx context.Context, assessmentID uint, userID string) (*BeginAttemptResponse, error)
	RemainingTime(ctx context.Context, assessmentID uint, userID string) (int, error)
	Submit(ctx context.Context, req *SubmitAttemptRequest, userID string, isAuto bool) (*SubmitAttemptResponse, error)
	Generate(ctx context.Context, req *GenerateAttemptRequest, userID string) (*models.Assessment, error)

	ListForClass(ctx context.Context, classID uint, userID string) ([]*AssessmentSummary, error)
	InitialExam(ctx context.Context) (*models.Assessment, error)
	InitialExamTaken(ctx context.Context, userID string) (bool, error)
}

// ScoringService grades fixed item sets and serves result reviews.
type ScoringService interface {
	Score(items []models.Item, answers []SubmittedAnswer) (int, []models.Response, map[uint]*CategoryBreakdown)
	Result(ctx context.Context, assessmentID uint, userID string) (*AttemptReview, error)
}

// AbilityService derives and serves per-category proficiency estimates.
type AbilityService interface {
	// Estimate re-derives the estimate from the full response history and
	// persists it. Zero history returns the default ability and
	// ErrEstimationSkipped without persisting anything.
	Estimate(ctx context.Context, userID string, categoryID uint) (float64, error)
	// EstimateAll re-estimates every category, silently skipping those the
	// user has no history in, and returns the stored estimates.
	EstimateAll(ctx context.Context, userID string) (map[uint]float64, error)
	// Get serves the stored estimate through the cache, falling back to the
	// default ability when none exists.
	Get(ctx context.Context, userID string, categoryID uint) (float64, error)
	Profile(ctx context.Context, userID string) ([]*models.ProficiencyEstimate, error)
}

// HistoryService serves past-result projections.
type HistoryService interface {
	History(ctx context.Context, userID string, filters repositories.HistoryFilters) ([]*HistoryEntry, int64, error)
}

// ExportService renders a user's history as a spreadsheet.
type ExportService interface {
	ExportHistory(ctx context.Context, userID string) ([]byte, error)
}
