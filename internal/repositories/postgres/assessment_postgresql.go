package postgres

import (
	"context"

	"github.com/SAP-F-2025/proficiency-service/internal/models"
	"github.com/SAP-F-2025/proficiency-service/internal/repositories"
	"gorm.io/gorm"
)

type AssessmentPostgreSQL struct {
	db *gorm.DB
}

func NewAssessmentPostgreSQL(db *gorm.DB) repositories.AssessmentRepository {
	return &AssessmentPostgreSQL{db: db}
}

func (a *AssessmentPostgreSQL) Create(ctx context.Context, assessment *models.Assessment) error {
	return translate(a.db.WithContext(ctx).Create(assessment).Error)
}

func (a *AssessmentPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Assessment, error) {
	var assessment models.Assessment
	if err := a.db.WithContext(ctx).
		Preload("SelectedCategories").
		First(&assessment, id).Error; err != nil {
		return nil, translate(err)
	}
	return &assessment, nil
}

func (a *AssessmentPostgreSQL) GetByIDWithItems(ctx context.Context, id uint) (*models.Assessment, error) {
	var assessment models.Assessment
	if err := a.db.WithContext(ctx).
		Preload("Items").
		Preload("Items.Category").
		Preload("SelectedCategories").
		First(&assessment, id).Error; err != nil {
		return nil, translate(err)
	}
	return &assessment, nil
}

func (a *AssessmentPostgreSQL) Update(ctx context.Context, assessment *models.Assessment) error {
	return translate(a.db.WithContext(ctx).Save(assessment).Error)
}

func (a *AssessmentPostgreSQL) ListForClass(ctx context.Context, classID uint) ([]*models.Assessment, error) {
	var assessments []*models.Assessment
	if err := a.db.WithContext(ctx).
		Where("class_id = ?", classID).
		Order("created_at DESC").
		Find(&assessments).Error; err != nil {
		return nil, translate(err)
	}
	return assessments, nil
}

func (a *AssessmentPostgreSQL) GetInitialExam(ctx context.Context) (*models.Assessment, error) {
	var assessment models.Assessment
	if err := a.db.WithContext(ctx).
		Where("is_initial = ?", true).
		Preload("SelectedCategories").
		First(&assessment).Error; err != nil {
		return nil, translate(err)
	}
	return &assessment, nil
}

func (a *AssessmentPostgreSQL) ReplaceItems(ctx context.Context, assessment *models.Assessment, items []*models.Item) error {
	return translate(a.db.WithContext(ctx).Model(assessment).Association("Items").Replace(items))
}
