package postgres

import (
	"context"
	"time"

	"github.com/SAP-F-2025/proficiency-service/internal/models"
	"github.com/SAP-F-2025/proficiency-service/internal/repositories"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AbilityPostgreSQL struct {
	db *gorm.DB
}

func NewAbilityPostgreSQL(db *gorm.DB) repositories.AbilityRepository {
	return &AbilityPostgreSQL{db: db}
}

func (a *AbilityPostgreSQL) Upsert(ctx context.Context, estimate *models.ProficiencyEstimate) error {
	estimate.UpdatedAt = time.Now().UTC()
	return translate(a.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "category_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"theta", "updated_at"}),
		}).
		Create(estimate).Error)
}

func (a *AbilityPostgreSQL) Get(ctx context.Context, userID string, categoryID uint) (*models.ProficiencyEstimate, error) {
	var estimate models.ProficiencyEstimate
	if err := a.db.WithContext(ctx).
		Where("user_id = ? AND category_id = ?", userID, categoryID).
		First(&estimate).Error; err != nil {
		return nil, translate(err)
	}
	return &estimate, nil
}

func (a *AbilityPostgreSQL) ListByUser(ctx context.Context, userID string) ([]*models.ProficiencyEstimate, error) {
	var estimates []*models.ProficiencyEstimate
	if err := a.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Preload("Category").
		Order("category_id ASC").
		Find(&estimates).Error; err != nil {
		return nil, translate(err)
	}
	return estimates, nil
}
