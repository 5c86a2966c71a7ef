package postgres

import (
	"context"
	"errors"

	"github.com/SAP-F-2025/proficiency-service/internal/models"
	"github.com/SAP-F-2025/proficiency-service/internal/repositories"
	"gorm.io/gorm"
)

type gormRepository struct {
	db          *gorm.DB
	items       repositories.ItemRepository
	assessments repositories.AssessmentRepository
	attempts    repositories.AttemptRepository
	abilities   repositories.AbilityRepository
	users       repositories.UserRepository
}

// NewRepository wires all sub-repositories around one gorm handle. The handle
// must be opened with error translation so unique violations surface as
// gorm.ErrDuplicatedKey.
func NewRepository(db *gorm.DB) repositories.Repository {
	return &gormRepository{
		db:          db,
		items:       NewItemPostgreSQL(db),
		assessments: NewAssessmentPostgreSQL(db),
		attempts:    NewAttemptPostgreSQL(db),
		abilities:   NewAbilityPostgreSQL(db),
		users:       NewUserPostgreSQL(db),
	}
}

func (r *gormRepository) Items() repositories.ItemRepository             { return r.items }
func (r *gormRepository) Assessments() repositories.AssessmentRepository { return r.assessments }
func (r *gormRepository) Attempts() repositories.AttemptRepository       { return r.attempts }
func (r *gormRepository) Abilities() repositories.AbilityRepository      { return r.abilities }
func (r *gormRepository) Users() repositories.UserRepository             { return r.users }

func (r *gormRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepository(tx))
	})
}

// AutoMigrate creates or updates the schema for every model this service owns.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Class{},
		&models.Category{},
		&models.Item{},
		&models.Assessment{},
		&models.AttemptSession{},
		&models.AttemptResult{},
		&models.Response{},
		&models.ProficiencyEstimate{},
	)
}

// translate maps gorm errors onto the repository sentinels.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return repositories.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return repositories.ErrDuplicate
	default:
		return err
	}
}
