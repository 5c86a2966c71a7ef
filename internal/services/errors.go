package services

import (
	"errors"
)

// ===== COMMON SERVICE ERRORS =====

var (
	// Lookup errors
	ErrAssessmentNotFound = errors.New("assessment not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrClassNotFound      = errors.New("class not found")
	ErrCategoryNotFound   = errors.New("category not found")
	ErrItemNotFound       = errors.New("item not found")
	ErrResultNotFound     = errors.New("result not found")

	// Eligibility
	ErrNotEligible = errors.New("user is not eligible for this assessment")

	// Lifecycle errors
	ErrAlreadySubmitted = errors.New("attempt already submitted")
	ErrDeadlinePassed   = errors.New("assessment deadline has passed")
	ErrNotStarted       = errors.New("attempt not started")
	ErrEmptySubmission  = errors.New("submission contains no responses")

	// Generation errors
	ErrInsufficientItems = errors.New("not enough items in the selected categories")
	ErrSourceUnavailable = errors.New("item source is not available")

	// Estimation no-op marker: the user has no response history in the
	// category, so the default ability is returned and nothing is persisted.
	ErrEstimationSkipped = errors.New("estimation skipped: no response history")

	ErrValidationFailed = errors.New("validation failed")
)

// ===== ERROR CLASSIFIERS =====

// IsNotFound reports whether err represents a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrAssessmentNotFound) ||
		errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrClassNotFound) ||
		errors.Is(err, ErrCategoryNotFound) ||
		errors.Is(err, ErrItemNotFound) ||
		errors.Is(err, ErrResultNotFound)
}

// IsEligibility reports whether err is an authorization failure.
func IsEligibility(err error) bool {
	return errors.Is(err, ErrNotEligible)
}

// IsConflict reports whether err represents a duplicate-submission conflict.
func IsConflict(err error) bool {
	return errors.Is(err, ErrAlreadySubmitted)
}

// IsRejectedSubmission reports whether err rejects the request itself rather
// than a missing or conflicting resource.
func IsRejectedSubmission(err error) bool {
	return errors.Is(err, ErrDeadlinePassed) ||
		errors.Is(err, ErrNotStarted) ||
		errors.Is(err, ErrEmptySubmission) ||
		errors.Is(err, ErrValidationFailed)
}
