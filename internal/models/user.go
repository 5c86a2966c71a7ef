package models

import (
	"time"

	"gorm.io/gorm"
)

type UserRole string

const (
	RoleStudent UserRole = "student"
	RoleTeacher UserRole = "teacher"
)

// User mirrors the identity provider's subject. The proficiency service is not
// the owner of user data; rows here are read-only projections plus the class
// enrollment needed for eligibility checks.
type User struct {
	ID        string   `json:"id" gorm:"primaryKey;size:255"`
	Email     string   `json:"email" gorm:"uniqueIndex;not null;size:255"`
	FirstName *string  `json:"first_name" gorm:"size:255"`
	LastName  *string  `json:"last_name" gorm:"size:255"`
	Role      UserRole `json:"role" gorm:"not null;default:student;size:50"`

	// Enrollment (a student belongs to at most one class)
	ClassID *uint `json:"class_id" gorm:"index"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (User) TableName() string {
	return "users"
}

type Class struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	Name      string `json:"name" gorm:"not null;size:255"`
	TeacherID string `json:"teacher_id" gorm:"not null;index;size:255"`
	ClassCode string `json:"class_code" gorm:"uniqueIndex;size:8"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Teacher User `json:"teacher" gorm:"foreignKey:TeacherID"`
}

func (Class) TableName() string {
	return "classes"
}
