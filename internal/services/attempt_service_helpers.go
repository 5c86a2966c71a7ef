package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SAP-F-2025/proficiency-service/internal/cache"
	"github.com/SAP-F-2025/proficiency-service/internal/events"
	"github.com/SAP-F-2025/proficiency-service/internal/models"
	"github.com/SAP-F-2025/proficiency-service/internal/repositories"
)

// defaultSecondsPerItem sizes the time budget when the creator does not set
// one explicitly.
const defaultSecondsPerItem = 90

// authorize is the single eligibility predicate for entering an attempt.
// Only students take assessments, class-owned assessments require matching
// enrollment, and an initial exam is only open once its deadline is set.
func (s *attemptService) authorize(user *models.User, assessment *models.Assessment) error {
	if user.Role != models.RoleStudent {
		return ErrNotEligible
	}
	if assessment.ClassID != nil {
		if user.ClassID == nil || *user.ClassID != *assessment.ClassID {
			return ErrNotEligible
		}
	}
	if assessment.IsInitial && assessment.Deadline == nil {
		return ErrNotEligible
	}
	return nil
}

// attemptStatus derives the lifecycle state from the ledger rows.
func (s *attemptService) attemptStatus(ctx context.Context, assessmentID uint, userID string) (models.AttemptStatus, error) {
	taken, err := s.repo.Attempts().HasResult(ctx, assessmentID, userID)
	if err != nil {
		return "", fmt.Errorf("failed to check result: %w", err)
	}
	if taken {
		return models.StatusCompleted, nil
	}

	if _, err := s.repo.Attempts().GetSession(ctx, assessmentID, userID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.StatusNotStarted, nil
		}
		return "", fmt.Errorf("failed to load session: %w", err)
	}
	return models.StatusInProgress, nil
}

// afterSubmit runs the post-persist side effects: cache invalidation, the
// submitted event, and re-estimation for every category the attempt touched.
// None of them can fail the already-stored submission; errors are logged.
func (s *attemptService) afterSubmit(ctx context.Context, userID string, assessmentID uint, score, totalItems int, isAuto bool, breakdown map[uint]*CategoryBreakdown) {
	keys := make([]string, 0, len(breakdown))
	for categoryID := range breakdown {
		keys = append(keys, cache.AbilityKey(userID, categoryID))
	}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		s.logger.Warn("Failed to invalidate ability cache", "user_id", userID, "error", err)
	}

	if err := s.publisher.PublishScoringEvent(ctx, events.NewAttemptSubmittedEvent(userID, assessmentID, score, totalItems, isAuto)); err != nil {
		s.logger.LogError(err, "Failed to publish attempt submission",
			"assessment_id", assessmentID,
			"user_id", userID)
	}

	for categoryID := range breakdown {
		if _, err := s.ability.Estimate(ctx, userID, categoryID); err != nil && !errors.Is(err, ErrEstimationSkipped) {
			s.logger.LogError(err, "Failed to re-estimate ability",
				"user_id", userID,
				"category_id", categoryID)
		}
	}
}

func remainingSeconds(assessment *models.Assessment, session *models.AttemptSession, now time.Time) int {
	elapsed := int(now.Sub(session.StartedAt).Seconds())
	remaining := assessment.TimeLimit - elapsed
	if remaining < 0 {
		return 0
	}
	return remaining
}

func itemViews(items []models.Item) []ItemView {
	views := make([]ItemView, 0, len(items))
	for _, item := range items {
		views = append(views, ItemView{
			ID:         item.ID,
			Text:       item.Text,
			ImageURL:   item.ImageURL,
			CategoryID: item.CategoryID,
			Choices:    parseChoices(&item),
		})
	}
	return views
}

func dereferenceItems(items []*models.Item) []models.Item {
	out := make([]models.Item, 0, len(items))
	for _, item := range items {
		out = append(out, *item)
	}
	return out
}
