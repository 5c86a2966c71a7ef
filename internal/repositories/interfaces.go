package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/SAP-F-2025/proficiency-service/internal/models"
)

// Sentinel errors returned by repository implementations. Services classify
// them with errors.Is instead of depending on driver error types.
var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

// ===== SHARED FILTER STRUCTS =====

type HistoryFilters struct {
	AssessmentKind *models.AssessmentKind `json:"kind"`
	DateFrom       *time.Time             `json:"date_from"`
	DateTo         *time.Time             `json:"date_to"`
	Limit          int                    `json:"limit"`
	Offset         int                    `json:"offset"`
	SortOrder      string                 `json:"sort_order"` // "asc", "desc"
}

// CategoryResponse is a response joined with the item parameters the
// estimator needs. Rows come back ordered by submission time.
type CategoryResponse struct {
	ItemID         string  `json:"item_id"`
	Discrimination float64 `json:"discrimination"`
	Difficulty     float64 `json:"difficulty"`
	Guessing       float64 `json:"guessing"`
	IsCorrect      bool    `json:"is_correct"`
}

// ===== REPOSITORY INTERFACES =====

// ItemRepository provides read access to the calibrated item bank.
type ItemRepository interface {
	GetByID(ctx context.Context, id string) (*models.Item, error)
	GetByIDs(ctx context.Context, ids []string) ([]*models.Item, error)
	GetRandomByCategories(ctx context.Context, categoryIDs []uint, count int) ([]*models.Item, error)
	CountByCategories(ctx context.Context, categoryIDs []uint) (int64, error)

	GetCategory(ctx context.Context, id uint) (*models.Category, error)
	ListCategories(ctx context.Context) ([]*models.Category, error)
}

// AssessmentRepository manages assessment definitions and their item sets.
type AssessmentRepository interface {
	Create(ctx context.Context, assessment *models.Assessment) error
	GetByID(ctx context.Context, id uint) (*models.Assessment, error)
	GetByIDWithItems(ctx context.Context, id uint) (*models.Assessment, error)
	Update(ctx context.Context, assessment *models.Assessment) error

	ListForClass(ctx context.Context, classID uint) ([]*models.Assessment, error)
	GetInitialExam(ctx context.Context) (*models.Assessment, error)

	// ReplaceItems swaps the assessment's item set atomically.
	ReplaceItems(ctx context.Context, assessment *models.Assessment, items []*models.Item) error
}

// AttemptRepository manages attempt sessions and persisted results. Both
// tables carry a unique (assessment_id, user_id) index; the implementations
// lean on it so concurrent begins and submits stay single-row.
type AttemptRepository interface {
	// GetOrCreateSession returns the existing session or inserts one,
	// anchored to the current time. Losing a concurrent insert race still
	// returns the winner's row.
	GetOrCreateSession(ctx context.Context, assessmentID uint, userID string) (*models.AttemptSession, error)
	GetSession(ctx context.Context, assessmentID uint, userID string) (*models.AttemptSession, error)

	// CreateResult inserts the result row, returning ErrDuplicate when one
	// already exists for the (assessment, user) pair.
	CreateResult(ctx context.Context, result *models.AttemptResult) error
	GetResult(ctx context.Context, assessmentID uint, userID string) (*models.AttemptResult, error)
	HasResult(ctx context.Context, assessmentID uint, userID string) (bool, error)

	ListResultsByUser(ctx context.Context, userID string, filters HistoryFilters) ([]*models.AttemptResult, int64, error)
	ListResultsByAssessment(ctx context.Context, assessmentID uint) ([]*models.AttemptResult, error)

	// GetCategoryResponses returns the user's full response history for one
	// category, joined with item parameters, oldest first.
	GetCategoryResponses(ctx context.Context, userID string, categoryID uint) ([]CategoryResponse, error)
}

// AbilityRepository persists per-category proficiency estimates.
type AbilityRepository interface {
	Upsert(ctx context.Context, estimate *models.ProficiencyEstimate) error
	Get(ctx context.Context, userID string, categoryID uint) (*models.ProficiencyEstimate, error)
	ListByUser(ctx context.Context, userID string) ([]*models.ProficiencyEstimate, error)
}

// UserRepository provides read access to the identity projection. Enrollment
// is mirrored from the external roster, never written here.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetClass(ctx context.Context, id uint) (*models.Class, error)
}

// Repository aggregates all sub-repositories behind one handle.
type Repository interface {
	Items() ItemRepository
	Assessments() AssessmentRepository
	Attempts() AttemptRepository
	Abilities() AbilityRepository
	Users() UserRepository

	// WithTransaction runs fn against a repository bound to a single
	// transaction, committing on nil and rolling back on error.
	WithTransaction(ctx context.Context, fn func(Repository) error) error
}
