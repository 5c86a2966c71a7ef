package irt

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProbability_Bounds(t *testing.T) {
	params := []ItemParams{
		{Discrimination: 1.0, Difficulty: 0.0, Guessing: 0.25},
		{Discrimination: 0.2, Difficulty: -3.0, Guessing: 0.0},
		{Discrimination: 3.0, Difficulty: 3.0, Guessing: 0.5},
	}

	for _, p := range params {
		for theta := -6.0; theta <= 6.0; theta += 0.25 {
			prob := Probability(theta, p)
			assert.GreaterOrEqual(t, prob, p.Guessing,
				"probability below guessing floor at theta=%v params=%+v", theta, p)
			assert.Less(t, prob, 1.0,
				"probability reached 1 at theta=%v params=%+v", theta, p)
		}
	}
}

func TestProbability_MonotoneInTheta(t *testing.T) {
	p := ItemParams{Discrimination: 1.2, Difficulty: 0.5, Guessing: 0.2}

	prev := Probability(-6, p)
	for theta := -5.75; theta <= 6.0; theta += 0.25 {
		cur := Probability(theta, p)
		assert.Greater(t, cur, prev, "probability not increasing at theta=%v", theta)
		prev = cur
	}
}

func TestProbability_GuessingFloorAtLowAbility(t *testing.T) {
	p := ItemParams{Discrimination: 2.0, Difficulty: 0.0, Guessing: 0.25}
	assert.InDelta(t, 0.25, Probability(-10, p), 1e-3)
}

func TestEstimateTheta_AllCorrectClampsAtUpperBound(t *testing.T) {
	obs := make([]Observation, 10)
	for i := range obs {
		obs[i] = Observation{
			Params:  ItemParams{Discrimination: 1.5, Difficulty: 1.0, Guessing: 0.2},
			Correct: true,
		}
	}

	theta := EstimateTheta(obs, 0)
	assert.Equal(t, ThetaMax, theta)
}

func TestEstimateTheta_AllIncorrectClampsAtLowerBound(t *testing.T) {
	obs := make([]Observation, 10)
	for i := range obs {
		obs[i] = Observation{
			Params:  ItemParams{Discrimination: 1.5, Difficulty: -1.0, Guessing: 0.0},
			Correct: false,
		}
	}

	theta := EstimateTheta(obs, 0)
	assert.Equal(t, ThetaMin, theta)
}

func TestEstimateTheta_OrderIndependent(t *testing.T) {
	obs := mixedObservations()

	base := EstimateTheta(obs, 0)

	shuffled := make([]Observation, len(obs))
	copy(shuffled, obs)
	rng := rand.New(rand.NewSource(42))
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	assert.InDelta(t, base, EstimateTheta(shuffled, 0), 1e-9)
}

func TestEstimateTheta_Deterministic(t *testing.T) {
	obs := mixedObservations()

	first := EstimateTheta(obs, 0)
	second := EstimateTheta(obs, 0)
	assert.InDelta(t, first, second, 1e-12)
}

func TestEstimateTheta_NoObservationsReturnsStart(t *testing.T) {
	assert.Equal(t, DefaultTheta, EstimateTheta(nil, DefaultTheta))
	assert.Equal(t, 1.5, EstimateTheta(nil, 1.5))
	assert.Equal(t, ThetaMax, EstimateTheta(nil, 99))
}

func TestEstimateTheta_RecoversAbilitySign(t *testing.T) {
	// A user who answers easy items correctly and hard items incorrectly
	// should land near the middle; one who also answers the hard items
	// correctly should land strictly higher.
	easy := ItemParams{Discrimination: 1.0, Difficulty: -1.5, Guessing: 0.1}
	hard := ItemParams{Discrimination: 1.0, Difficulty: 1.5, Guessing: 0.1}

	middling := []Observation{
		{Params: easy, Correct: true},
		{Params: easy, Correct: true},
		{Params: hard, Correct: false},
		{Params: hard, Correct: false},
	}
	strong := []Observation{
		{Params: easy, Correct: true},
		{Params: easy, Correct: true},
		{Params: hard, Correct: true},
		{Params: hard, Correct: false},
	}

	mid := EstimateTheta(middling, 0)
	high := EstimateTheta(strong, 0)

	require.Greater(t, high, mid)
	assert.Less(t, math.Abs(mid), 1.5)
}

func TestEstimateTheta_WarmStartConverges(t *testing.T) {
	obs := mixedObservations()

	cold := EstimateTheta(obs, 0)
	warm := EstimateTheta(obs, cold)

	assert.InDelta(t, cold, warm, 1e-3)
}

func mixedObservations() []Observation {
	return []Observation{
		{Params: ItemParams{Discrimination: 1.0, Difficulty: -1.0, Guessing: 0.25}, Correct: true},
		{Params: ItemParams{Discrimination: 1.2, Difficulty: 0.0, Guessing: 0.2}, Correct: true},
		{Params: ItemParams{Discrimination: 0.8, Difficulty: 0.5, Guessing: 0.25}, Correct: false},
		{Params: ItemParams{Discrimination: 1.5, Difficulty: 1.0, Guessing: 0.2}, Correct: false},
		{Params: ItemParams{Discrimination: 1.1, Difficulty: -0.5, Guessing: 0.0}, Correct: true},
		{Params: ItemParams{Discrimination: 0.9, Difficulty: 2.0, Guessing: 0.25}, Correct: false},
	}
}
