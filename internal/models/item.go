package models

import (
	"time"

	"gorm.io/datatypes"
)

type Category struct {
	ID   uint   `json:"id" gorm:"primaryKey"`
	Name string `json:"name" gorm:"uniqueIndex;not null;size:255"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Items []Item `json:"items,omitempty" gorm:"foreignKey:CategoryID"`
}

func (Category) TableName() string {
	return "categories"
}

// Item is a calibrated question from the item bank. The three IRT parameters
// (discrimination a, difficulty b, guessing floor c) are supplied by an
// external calibration process and never fitted here. Items are immutable for
// the lifetime of any assessment that references them.
type Item struct {
	ID       string  `json:"id" gorm:"primaryKey;size:10"`
	Text     string  `json:"text" gorm:"not null;type:text" validate:"required"`
	ImageURL *string `json:"image_url" gorm:"size:255"`

	CategoryID uint `json:"category_id" gorm:"not null;index"`

	// 3PL parameters
	Discrimination float64 `json:"discrimination" gorm:"not null;default:1.0" validate:"gt=0"`
	Difficulty     float64 `json:"difficulty" gorm:"not null;default:0.0"`
	Guessing       float64 `json:"guessing" gorm:"not null;default:0.0" validate:"gte=0,lt=1"`

	// Choices maps a choice label (e.g. "a".."d") to its display text.
	// CorrectChoice is a label into that map.
	Choices       datatypes.JSON `json:"choices" gorm:"type:jsonb;not null"`
	CorrectChoice string         `json:"correct_choice" gorm:"not null;size:255"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Category Category `json:"category" gorm:"foreignKey:CategoryID"`
}

func (Item) TableName() string {
	return "items"
}
