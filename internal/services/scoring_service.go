package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/SAP-F-2025/proficiency-service/internal/models"
	"github.com/SAP-F-2025/proficiency-service/internal/repositories"
	"github.com/SAP-F-2025/proficiency-service/internal/utils"
)

type scoringService struct {
	repo   repositories.Repository
	logger utils.Logger
}

func NewScoringService(repo repositories.Repository, logger utils.Logger) ScoringService {
	return &scoringService{
		repo:   repo,
		logger: logger,
	}
}

// Score grades one submission against the assessment's fixed item set. Every
// item produces a response row: an item the client did not answer is recorded
// as incorrect with zero time spent. Correctness compares the submitted text
// with the item's correct choice text; the client never asserts correctness.
func (s *scoringService) Score(items []models.Item, answers []SubmittedAnswer) (int, []models.Response, map[uint]*CategoryBreakdown) {
	byItem := make(map[string]SubmittedAnswer, len(answers))
	for _, answer := range answers {
		byItem[answer.ItemID] = answer
	}

	total := 0
	responses := make([]models.Response, 0, len(items))
	breakdown := make(map[uint]*CategoryBreakdown)

	for _, item := range items {
		answer, answered := byItem[item.ID]

		response := models.Response{
			ItemID: item.ID,
		}
		if answered {
			response.ChosenChoice = answer.Choice
			response.TimeSpent = answer.TimeSpent
			response.IsCorrect = answer.Choice == correctChoiceText(&item)
		}

		if response.IsCorrect {
			total++
		}
		responses = append(responses, response)

		entry, ok := breakdown[item.CategoryID]
		if !ok {
			entry = &CategoryBreakdown{
				CategoryID:   item.CategoryID,
				CategoryName: item.Category.Name,
			}
			breakdown[item.CategoryID] = entry
		}
		entry.Total++
		if response.IsCorrect {
			entry.Correct++
		} else {
			entry.Wrong++
		}
	}

	return total, responses, breakdown
}

// Result returns the stored result with the full response review and the
// per-category tally re-derived from the persisted responses.
func (s *scoringService) Result(ctx context.Context, assessmentID uint, userID string) (*AttemptReview, error) {
	result, err := s.repo.Attempts().GetResult(ctx, assessmentID, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrResultNotFound
		}
		return nil, fmt.Errorf("failed to load result: %w", err)
	}

	review := &AttemptReview{
		AssessmentID: result.AssessmentID,
		Score:        result.Score,
		TotalItems:   len(result.Responses),
		TimeTaken:    result.TimeTaken,
		SubmittedAt:  result.CreatedAt,
		Responses:    make([]ResponseReview, 0, len(result.Responses)),
		Breakdown:    make(map[uint]*CategoryBreakdown),
	}

	for _, response := range result.Responses {
		item := response.Item
		review.Responses = append(review.Responses, ResponseReview{
			ItemID:        item.ID,
			Text:          item.Text,
			CategoryID:    item.CategoryID,
			ChosenChoice:  response.ChosenChoice,
			CorrectChoice: correctChoiceText(&item),
			IsCorrect:     response.IsCorrect,
			TimeSpent:     response.TimeSpent,
		})

		entry, ok := review.Breakdown[item.CategoryID]
		if !ok {
			entry = &CategoryBreakdown{
				CategoryID:   item.CategoryID,
				CategoryName: item.Category.Name,
			}
			review.Breakdown[item.CategoryID] = entry
		}
		entry.Total++
		if response.IsCorrect {
			entry.Correct++
		} else {
			entry.Wrong++
		}
	}

	return review, nil
}

// parseChoices decodes the item's choice map. A malformed map yields an empty
// one; the item is then unanswerable rather than an error at grading time.
func parseChoices(item *models.Item) map[string]string {
	choices := make(map[string]string)
	if err := json.Unmarshal(item.Choices, &choices); err != nil {
		return map[string]string{}
	}
	return choices
}

func correctChoiceText(item *models.Item) string {
	return parseChoices(item)[item.CorrectChoice]
}
