package services

import (
	"context"
	"testing"

	"github.com/SAP-F-2025/proficiency-service/internal/cache"
	"github.com/SAP-F-2025/proficiency-service/internal/events"
	"github.com/SAP-F-2025/proficiency-service/internal/irt"
	"github.com/SAP-F-2025/proficiency-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedResponses stores a graded result so the user has response history to
// estimate from. Items must already be seeded.
func (env *testEnv) seedResponses(t *testing.T, userID string, assessmentID uint, correct map[string]bool) {
	t.Helper()
	responses := make([]models.Response, 0, len(correct))
	for itemID, isCorrect := range correct {
		responses = append(responses, models.Response{
			ItemID:    itemID,
			IsCorrect: isCorrect,
			TimeSpent: 30,
		})
	}
	score := 0
	for _, isCorrect := range correct {
		if isCorrect {
			score++
		}
	}
	result := &models.AttemptResult{
		AssessmentID: assessmentID,
		UserID:       userID,
		Score:        score,
		TimeTaken:    60,
		Responses:    responses,
	}
	require.NoError(t, env.repo.Attempts().CreateResult(context.Background(), result))
}

func TestEstimate_ZeroHistorySkips(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.seedCategory(2, "Geometry")

	theta, err := env.ability.Estimate(ctx, "u1", 2)
	assert.ErrorIs(t, err, ErrEstimationSkipped)
	assert.Equal(t, irt.DefaultTheta, theta)

	// Nothing is persisted, cached, or published for a skipped estimation.
	_, err = env.repo.Abilities().Get(ctx, "u1", 2)
	assert.Error(t, err)
	assert.Empty(t, env.cache.values)
	assert.Empty(t, env.publisher.Events)
}

func TestEstimate_UnknownCategory(t *testing.T) {
	env := newTestEnv()

	_, err := env.ability.Estimate(context.Background(), "u1", 99)
	assert.ErrorIs(t, err, ErrCategoryNotFound)
}

func TestEstimate_PersistsCachesAndPublishes(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.seedCategory(1, "Algebra")
	env.seedItem("q1", 1)
	env.seedItem("q2", 1)
	env.seedItem("q3", 1)
	env.seedResponses(t, "u1", 100, map[string]bool{"q1": true, "q2": true, "q3": true})

	theta, err := env.ability.Estimate(ctx, "u1", 1)
	require.NoError(t, err)

	// All-correct history pulls the estimate above the prior.
	assert.Greater(t, theta, irt.DefaultTheta)
	assert.LessOrEqual(t, theta, irt.ThetaMax)

	stored, err := env.repo.Abilities().Get(ctx, "u1", 1)
	require.NoError(t, err)
	assert.InDelta(t, theta, stored.Theta, 1e-9)

	var cached float64
	require.NoError(t, env.cache.Get(ctx, cache.AbilityKey("u1", 1), &cached))
	assert.InDelta(t, theta, cached, 1e-9)

	require.Len(t, env.publisher.Events, 1)
	event := env.publisher.Events[0]
	assert.Equal(t, events.EventAbilityUpdated, event.Type)
	assert.Equal(t, "u1", event.UserID)
	require.NotNil(t, event.Theta)
	assert.InDelta(t, theta, *event.Theta, 1e-9)
}

func TestEstimate_AllWrongLowersTheta(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.seedCategory(1, "Algebra")
	env.seedItem("q1", 1)
	env.seedItem("q2", 1)
	env.seedItem("q3", 1)
	env.seedResponses(t, "u1", 100, map[string]bool{"q1": false, "q2": false, "q3": false})

	theta, err := env.ability.Estimate(ctx, "u1", 1)
	require.NoError(t, err)
	assert.Less(t, theta, irt.DefaultTheta)
	assert.GreaterOrEqual(t, theta, irt.ThetaMin)
}

func TestEstimateAll_SkipsEmptyCategories(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.seedCategory(1, "Algebra")
	env.seedCategory(2, "Geometry")
	env.seedItem("q1", 1)
	env.seedItem("q2", 1)
	env.seedResponses(t, "u1", 100, map[string]bool{"q1": true, "q2": false})

	estimates, err := env.ability.EstimateAll(ctx, "u1")
	require.NoError(t, err)

	assert.Contains(t, estimates, uint(1))
	assert.NotContains(t, estimates, uint(2))

	// Geometry stays unpersisted.
	_, err = env.repo.Abilities().Get(ctx, "u1", 2)
	assert.Error(t, err)
}

func TestGet_DefaultWhenNoEstimate(t *testing.T) {
	env := newTestEnv()

	theta, err := env.ability.Get(context.Background(), "u1", 1)
	require.NoError(t, err)
	assert.Equal(t, irt.DefaultTheta, theta)
}

func TestGet_ReadsThroughCache(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	require.NoError(t, env.repo.Abilities().Upsert(ctx, &models.ProficiencyEstimate{
		UserID:     "u1",
		CategoryID: 1,
		Theta:      1.25,
	}))

	theta, err := env.ability.Get(ctx, "u1", 1)
	require.NoError(t, err)
	assert.InDelta(t, 1.25, theta, 1e-9)

	// The read populated the cache for the next lookup.
	var cached float64
	require.NoError(t, env.cache.Get(ctx, cache.AbilityKey("u1", 1), &cached))
	assert.InDelta(t, 1.25, cached, 1e-9)
}

func TestProfile_ListsStoredEstimates(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	require.NoError(t, env.repo.Abilities().Upsert(ctx, &models.ProficiencyEstimate{UserID: "u1", CategoryID: 2, Theta: -0.5}))
	require.NoError(t, env.repo.Abilities().Upsert(ctx, &models.ProficiencyEstimate{UserID: "u1", CategoryID: 1, Theta: 0.75}))
	require.NoError(t, env.repo.Abilities().Upsert(ctx, &models.ProficiencyEstimate{UserID: "other", CategoryID: 1, Theta: 2.0}))

	profile, err := env.ability.Profile(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, profile, 2)
	assert.Equal(t, uint(1), profile[0].CategoryID)
	assert.Equal(t, uint(2), profile[1].CategoryID)
}
