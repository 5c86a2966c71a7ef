package postgres

import (
	"context"

	"github.com/SAP-F-2025/proficiency-service/internal/models"
	"github.com/SAP-F-2025/proficiency-service/internal/repositories"
	"gorm.io/gorm"
)

type ItemPostgreSQL struct {
	db *gorm.DB
}

func NewItemPostgreSQL(db *gorm.DB) repositories.ItemRepository {
	return &ItemPostgreSQL{db: db}
}

func (i *ItemPostgreSQL) GetByID(ctx context.Context, id string) (*models.Item, error) {
	var item models.Item
	if err := i.db.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &item, nil
}

func (i *ItemPostgreSQL) GetByIDs(ctx context.Context, ids []string) ([]*models.Item, error) {
	var items []*models.Item
	if len(ids) == 0 {
		return items, nil
	}
	if err := i.db.WithContext(ctx).Where("id IN ?", ids).Find(&items).Error; err != nil {
		return nil, translate(err)
	}
	return items, nil
}

func (i *ItemPostgreSQL) GetRandomByCategories(ctx context.Context, categoryIDs []uint, count int) ([]*models.Item, error) {
	var items []*models.Item
	if err := i.db.WithContext(ctx).
		Where("category_id IN ?", categoryIDs).
		Order("RANDOM()").
		Limit(count).
		Find(&items).Error; err != nil {
		return nil, translate(err)
	}
	return items, nil
}

func (i *ItemPostgreSQL) CountByCategories(ctx context.Context, categoryIDs []uint) (int64, error) {
	var count int64
	if err := i.db.WithContext(ctx).
		Model(&models.Item{}).
		Where("category_id IN ?", categoryIDs).
		Count(&count).Error; err != nil {
		return 0, translate(err)
	}
	return count, nil
}

func (i *ItemPostgreSQL) GetCategory(ctx context.Context, id uint) (*models.Category, error) {
	var category models.Category
	if err := i.db.WithContext(ctx).First(&category, id).Error; err != nil {
		return nil, translate(err)
	}
	return &category, nil
}

func (i *ItemPostgreSQL) ListCategories(ctx context.Context) ([]*models.Category, error) {
	var categories []*models.Category
	if err := i.db.WithContext(ctx).Order("name ASC").Find(&categories).Error; err != nil {
		return nil, translate(err)
	}
	return categories, nil
}
