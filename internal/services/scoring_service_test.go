package services

import (
	"context"
	"testing"

	"github.com/SAP-F-2025/proficiency-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func algebraItem(id string) models.Item {
	return models.Item{
		ID:             id,
		Text:           "solve for x",
		CategoryID:     1,
		Discrimination: 1.0,
		Difficulty:     0.0,
		Guessing:       0.2,
		Choices:        datatypes.JSON([]byte(`{"a":"10","b":"20","c":"30","d":"40"}`)),
		CorrectChoice:  "a",
		Category:       models.Category{ID: 1, Name: "Algebra"},
	}
}

func TestScore_GradesAgainstCorrectText(t *testing.T) {
	env := newTestEnv()
	items := []models.Item{algebraItem("q1"), algebraItem("q2")}

	score, responses, breakdown := env.scoring.Score(items, []SubmittedAnswer{
		{ItemID: "q1", Choice: "10", TimeSpent: 30},
		{ItemID: "q2", Choice: "20", TimeSpent: 45},
	})

	assert.Equal(t, 1, score)
	require.Len(t, responses, 2)
	assert.True(t, responses[0].IsCorrect)
	assert.False(t, responses[1].IsCorrect)

	tally := breakdown[1]
	require.NotNil(t, tally)
	assert.Equal(t, "Algebra", tally.CategoryName)
	assert.Equal(t, 2, tally.Total)
	assert.Equal(t, 1, tally.Correct)
	assert.Equal(t, 1, tally.Wrong)
}

func TestScore_UnansweredItemIsIncorrect(t *testing.T) {
	env := newTestEnv()
	items := []models.Item{algebraItem("q1"), algebraItem("q2")}

	score, responses, breakdown := env.scoring.Score(items, []SubmittedAnswer{
		{ItemID: "q1", Choice: "10", TimeSpent: 30},
	})

	assert.Equal(t, 1, score)
	require.Len(t, responses, 2)

	missing := responses[1]
	assert.Equal(t, "q2", missing.ItemID)
	assert.False(t, missing.IsCorrect)
	assert.Equal(t, 0, missing.TimeSpent)
	assert.Empty(t, missing.ChosenChoice)
	assert.Equal(t, 1, breakdown[1].Wrong)
}

func TestScore_MalformedChoicesNeverMatch(t *testing.T) {
	env := newTestEnv()
	item := algebraItem("q1")
	item.Choices = datatypes.JSON([]byte(`not json`))

	score, responses, _ := env.scoring.Score([]models.Item{item}, []SubmittedAnswer{
		{ItemID: "q1", Choice: "10", TimeSpent: 5},
	})

	assert.Equal(t, 0, score)
	require.Len(t, responses, 1)
	assert.False(t, responses[0].IsCorrect)
}

func TestScore_AnswerForUnknownItemIgnored(t *testing.T) {
	env := newTestEnv()
	items := []models.Item{algebraItem("q1")}

	score, responses, _ := env.scoring.Score(items, []SubmittedAnswer{
		{ItemID: "q1", Choice: "10", TimeSpent: 10},
		{ItemID: "stray", Choice: "10", TimeSpent: 10},
	})

	assert.Equal(t, 1, score)
	assert.Len(t, responses, 1)
}

func TestResult_ReviewRevealsCorrectChoice(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.seedCategory(1, "Algebra")
	env.seedItem("q1", 1)
	env.seedItem("q2", 1)
	env.seedStudent("u1", nil)
	assessment := env.seedAssessment(t, []string{"q1", "q2"}, nil)

	_, err := env.attempts.Begin(ctx, assessment.ID, "u1")
	require.NoError(t, err)
	_, err = env.attempts.Submit(ctx, &SubmitAttemptRequest{
		AssessmentID: assessment.ID,
		Answers: []SubmittedAnswer{
			{ItemID: "q1", Choice: "10", TimeSpent: 30},
			{ItemID: "q2", Choice: "30", TimeSpent: 40},
		},
	}, "u1", false)
	require.NoError(t, err)

	review, err := env.scoring.Result(ctx, assessment.ID, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, review.Score)
	assert.Equal(t, 2, review.TotalItems)
	require.Len(t, review.Responses, 2)

	for _, response := range review.Responses {
		assert.Equal(t, "10", response.CorrectChoice)
	}
	assert.Equal(t, 1, review.Breakdown[1].Correct)
	assert.Equal(t, 1, review.Breakdown[1].Wrong)
}

func TestResult_NotFound(t *testing.T) {
	env := newTestEnv()

	_, err := env.scoring.Result(context.Background(), 42, "u1")
	assert.ErrorIs(t, err, ErrResultNotFound)
}
