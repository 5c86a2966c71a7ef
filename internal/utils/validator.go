package utils

import (
	"reflect"
	"strings"

	"github.com/SAP-F-2025/proficiency-service/internal/models"
	"github.com/go-playground/validator/v10"
)

// Validator wraps go-playground struct validation with the custom tags used
// by the proficiency service request types.
type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	validate := validator.New()
	registerCustomValidators(validate)
	return &Validator{validate: validate}
}

func (v *Validator) Validate(s interface{}) error {
	return v.validate.Struct(s)
}

func registerCustomValidators(validate *validator.Validate) {
	validate.RegisterValidation("assessment_kind", validateAssessmentKind)
	validate.RegisterValidation("item_source", validateItemSource)
	validate.RegisterValidation("user_role", validateUserRole)

	// Report JSON field names in error messages.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

func validateAssessmentKind(fl validator.FieldLevel) bool {
	switch models.AssessmentKind(fl.Field().String()) {
	case models.KindExam, models.KindQuiz:
		return true
	}
	return false
}

func validateItemSource(fl validator.FieldLevel) bool {
	switch models.ItemSource(fl.Field().String()) {
	case models.SourcePreviousExam, models.SourceAIGenerated, models.SourceMixed:
		return true
	}
	return false
}

func validateUserRole(fl validator.FieldLevel) bool {
	switch models.UserRole(fl.Field().String()) {
	case models.RoleStudent, models.RoleTeacher:
		return true
	}
	return false
}
