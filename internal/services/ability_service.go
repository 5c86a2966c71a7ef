package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SAP-F-2025/proficiency-service/internal/cache"
	"github.com/SAP-F-2025/proficiency-service/internal/events"
	"github.com/SAP-F-2025/proficiency-service/internal/irt"
	"github.com/SAP-F-2025/proficiency-service/internal/models"
	"github.com/SAP-F-2025/proficiency-service/internal/repositories"
	"github.com/SAP-F-2025/proficiency-service/internal/utils"
)

// abilityCacheTTL bounds staleness if an invalidation is ever missed.
const abilityCacheTTL = 6 * time.Hour

type abilityService struct {
	repo      repositories.Repository
	cache     cache.CacheService
	publisher events.EventPublisher
	logger    utils.Logger
}

func NewAbilityService(repo repositories.Repository, cacheService cache.CacheService, publisher events.EventPublisher, logger utils.Logger) AbilityService {
	return &abilityService{
		repo:      repo,
		cache:     cacheService,
		publisher: publisher,
		logger:    logger,
	}
}

// Estimate re-derives the user's ability in one category from their full
// response history. The stored estimate seeds the search so repeated runs
// converge quickly. A user with no history gets the default ability back and
// no persisted row.
func (s *abilityService) Estimate(ctx context.Context, userID string, categoryID uint) (float64, error) {
	if _, err := s.repo.Items().GetCategory(ctx, categoryID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return 0, ErrCategoryNotFound
		}
		return 0, fmt.Errorf("failed to load category: %w", err)
	}

	history, err := s.repo.Attempts().GetCategoryResponses(ctx, userID, categoryID)
	if err != nil {
		return 0, fmt.Errorf("failed to load response history: %w", err)
	}
	if len(history) == 0 {
		return irt.DefaultTheta, ErrEstimationSkipped
	}

	start := irt.DefaultTheta
	if stored, err := s.repo.Abilities().Get(ctx, userID, categoryID); err == nil {
		start = stored.Theta
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return 0, fmt.Errorf("failed to load stored estimate: %w", err)
	}

	observations := make([]irt.Observation, 0, len(history))
	for _, row := range history {
		observations = append(observations, irt.Observation{
			Params: irt.ItemParams{
				Discrimination: row.Discrimination,
				Difficulty:     row.Difficulty,
				Guessing:       row.Guessing,
			},
			Correct: row.IsCorrect,
		})
	}

	theta := irt.EstimateTheta(observations, start)

	estimate := &models.ProficiencyEstimate{
		UserID:     userID,
		CategoryID: categoryID,
		Theta:      theta,
	}
	if err := s.repo.Abilities().Upsert(ctx, estimate); err != nil {
		return 0, fmt.Errorf("failed to persist estimate: %w", err)
	}

	key := cache.AbilityKey(userID, categoryID)
	if err := s.cache.Set(ctx, key, theta, abilityCacheTTL); err != nil {
		s.logger.Warn("Failed to refresh ability cache", "key", key, "error", err)
	}

	if err := s.publisher.PublishScoringEvent(ctx, events.NewAbilityUpdatedEvent(userID, categoryID, theta)); err != nil {
		s.logger.LogError(err, "Failed to publish ability update",
			"user_id", userID,
			"category_id", categoryID)
	}

	s.logger.Info("Ability estimate updated",
		"user_id", userID,
		"category_id", categoryID,
		"theta", theta,
		"observations", len(observations))

	return theta, nil
}

// EstimateAll re-estimates every category and returns the resulting map.
// Categories without history are skipped silently.
func (s *abilityService) EstimateAll(ctx context.Context, userID string) (map[uint]float64, error) {
	categories, err := s.repo.Items().ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	estimates := make(map[uint]float64)
	for _, category := range categories {
		theta, err := s.Estimate(ctx, userID, category.ID)
		if err != nil {
			if errors.Is(err, ErrEstimationSkipped) {
				continue
			}
			return nil, err
		}
		estimates[category.ID] = theta
	}
	return estimates, nil
}

// Get serves the stored estimate through the cache. A user with no stored
// estimate reads as the default ability.
func (s *abilityService) Get(ctx context.Context, userID string, categoryID uint) (float64, error) {
	key := cache.AbilityKey(userID, categoryID)

	var theta float64
	err := s.cache.Get(ctx, key, &theta)
	if err == nil {
		return theta, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn("Ability cache read failed", "key", key, "error", err)
	}

	stored, err := s.repo.Abilities().Get(ctx, userID, categoryID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return irt.DefaultTheta, nil
		}
		return 0, fmt.Errorf("failed to load stored estimate: %w", err)
	}

	if err := s.cache.Set(ctx, key, stored.Theta, abilityCacheTTL); err != nil {
		s.logger.Warn("Failed to populate ability cache", "key", key, "error", err)
	}
	return stored.Theta, nil
}

func (s *abilityService) Profile(ctx context.Context, userID string) ([]*models.ProficiencyEstimate, error) {
	estimates, err := s.repo.Abilities().ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load estimates: %w", err)
	}
	return estimates, nil
}
