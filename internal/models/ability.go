package models

import (
	"time"
)

// ProficiencyEstimate holds the latent ability point estimate for one user in
// one category. Exactly one row per (user, category); it is only ever upserted
// by re-deriving from the full response history, never patched incrementally.
type ProficiencyEstimate struct {
	ID         uint   `json:"id" gorm:"primaryKey"`
	UserID     string `json:"user_id" gorm:"not null;size:255;uniqueIndex:idx_estimates_user_category"`
	CategoryID uint   `json:"category_id" gorm:"not null;uniqueIndex:idx_estimates_user_category"`

	Theta float64 `json:"theta" gorm:"not null;default:0"`

	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Category Category `json:"category" gorm:"foreignKey:CategoryID"`
}

func (ProficiencyEstimate) TableName() string {
	return "proficiency_estimates"
}
