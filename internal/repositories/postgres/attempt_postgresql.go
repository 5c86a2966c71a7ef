package postgres

import (
	"context"
	"time"

	"github.com/SAP-F-2025/proficiency-service/internal/models"
	"github.com/SAP-F-2025/proficiency-service/internal/repositories"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AttemptPostgreSQL struct {
	db *gorm.DB
}

func NewAttemptPostgreSQL(db *gorm.DB) repositories.AttemptRepository {
	return &AttemptPostgreSQL{db: db}
}

func (a *AttemptPostgreSQL) GetOrCreateSession(ctx context.Context, assessmentID uint, userID string) (*models.AttemptSession, error) {
	session := &models.AttemptSession{
		AssessmentID: assessmentID,
		UserID:       userID,
		StartedAt:    time.Now().UTC(),
	}

	// ON CONFLICT DO NOTHING keeps the first writer's clock anchor. When the
	// insert is skipped the refetch below returns the existing row, so every
	// caller observes the same StartedAt.
	result := a.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "assessment_id"}, {Name: "user_id"}},
			DoNothing: true,
		}).
		Create(session)
	if result.Error != nil {
		return nil, translate(result.Error)
	}
	if result.RowsAffected > 0 {
		return session, nil
	}

	return a.GetSession(ctx, assessmentID, userID)
}

func (a *AttemptPostgreSQL) GetSession(ctx context.Context, assessmentID uint, userID string) (*models.AttemptSession, error) {
	var session models.AttemptSession
	if err := a.db.WithContext(ctx).
		Where("assessment_id = ? AND user_id = ?", assessmentID, userID).
		First(&session).Error; err != nil {
		return nil, translate(err)
	}
	return &session, nil
}

func (a *AttemptPostgreSQL) CreateResult(ctx context.Context, result *models.AttemptResult) error {
	return translate(a.db.WithContext(ctx).Create(result).Error)
}

func (a *AttemptPostgreSQL) GetResult(ctx context.Context, assessmentID uint, userID string) (*models.AttemptResult, error) {
	var result models.AttemptResult
	if err := a.db.WithContext(ctx).
		Where("assessment_id = ? AND user_id = ?", assessmentID, userID).
		Preload("Responses").
		Preload("Responses.Item").
		Preload("Responses.Item.Category").
		First(&result).Error; err != nil {
		return nil, translate(err)
	}
	return &result, nil
}

func (a *AttemptPostgreSQL) HasResult(ctx context.Context, assessmentID uint, userID string) (bool, error) {
	var count int64
	if err := a.db.WithContext(ctx).
		Model(&models.AttemptResult{}).
		Where("assessment_id = ? AND user_id = ?", assessmentID, userID).
		Count(&count).Error; err != nil {
		return false, translate(err)
	}
	return count > 0, nil
}

func (a *AttemptPostgreSQL) ListResultsByUser(ctx context.Context, userID string, filters repositories.HistoryFilters) ([]*models.AttemptResult, int64, error) {
	var results []*models.AttemptResult
	var total int64

	query := a.db.WithContext(ctx).
		Model(&models.AttemptResult{}).
		Joins("JOIN assessments ON assessments.id = attempt_results.assessment_id").
		Where("attempt_results.user_id = ?", userID)
	query = applyHistoryFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translate(err)
	}

	order := "attempt_results.created_at DESC"
	if filters.SortOrder == "asc" {
		order = "attempt_results.created_at ASC"
	}
	query = query.Order(order)
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit).Offset(filters.Offset)
	}

	if err := query.
		Preload("Assessment").
		Preload("Responses").
		Preload("Responses.Item").
		Preload("Responses.Item.Category").
		Find(&results).Error; err != nil {
		return nil, 0, translate(err)
	}
	return results, total, nil
}

func (a *AttemptPostgreSQL) ListResultsByAssessment(ctx context.Context, assessmentID uint) ([]*models.AttemptResult, error) {
	var results []*models.AttemptResult
	if err := a.db.WithContext(ctx).
		Where("assessment_id = ?", assessmentID).
		Order("score DESC, time_taken ASC").
		Find(&results).Error; err != nil {
		return nil, translate(err)
	}
	return results, nil
}

func (a *AttemptPostgreSQL) GetCategoryResponses(ctx context.Context, userID string, categoryID uint) ([]repositories.CategoryResponse, error) {
	var rows []repositories.CategoryResponse
	if err := a.db.WithContext(ctx).
		Table("responses").
		Select("responses.item_id, items.discrimination, items.difficulty, items.guessing, responses.is_correct").
		Joins("JOIN items ON items.id = responses.item_id").
		Joins("JOIN attempt_results ON attempt_results.id = responses.result_id").
		Where("attempt_results.user_id = ? AND items.category_id = ?", userID, categoryID).
		Order("attempt_results.created_at ASC, responses.id ASC").
		Scan(&rows).Error; err != nil {
		return nil, translate(err)
	}
	return rows, nil
}

func applyHistoryFilters(query *gorm.DB, filters repositories.HistoryFilters) *gorm.DB {
	if filters.AssessmentKind != nil {
		query = query.Where("assessments.kind = ?", *filters.AssessmentKind)
	}
	if filters.DateFrom != nil {
		query = query.Where("attempt_results.created_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("attempt_results.created_at <= ?", *filters.DateTo)
	}
	return query
}
