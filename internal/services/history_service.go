package services

import (
	"context"
	"fmt"

	"github.com/SAP-F-2025/proficiency-service/internal/repositories"
	"github.com/SAP-F-2025/proficiency-service/internal/utils"
)

type historyService struct {
	repo   repositories.Repository
	logger utils.Logger
}

func NewHistoryService(repo repositories.Repository, logger utils.Logger) HistoryService {
	return &historyService{
		repo:   repo,
		logger: logger,
	}
}

// History projects the user's past results, newest first, with the
// per-category tally re-derived from the stored responses.
func (s *historyService) History(ctx context.Context, userID string, filters repositories.HistoryFilters) ([]*HistoryEntry, int64, error) {
	results, total, err := s.repo.Attempts().ListResultsByUser(ctx, userID, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list results: %w", err)
	}

	entries := make([]*HistoryEntry, 0, len(results))
	for _, result := range results {
		entry := &HistoryEntry{
			ResultID:     result.ID,
			AssessmentID: result.AssessmentID,
			Name:         result.Assessment.Name,
			Kind:         result.Assessment.Kind,
			Source:       result.Assessment.Source,
			Score:        result.Score,
			TotalItems:   len(result.Responses),
			TimeTaken:    result.TimeTaken,
			Date:         result.CreatedAt,
			Breakdown:    make(map[uint]*CategoryBreakdown),
		}

		for _, response := range result.Responses {
			categoryID := response.Item.CategoryID
			tally, ok := entry.Breakdown[categoryID]
			if !ok {
				tally = &CategoryBreakdown{
					CategoryID:   categoryID,
					CategoryName: response.Item.Category.Name,
				}
				entry.Breakdown[categoryID] = tally
			}
			tally.Total++
			if response.IsCorrect {
				tally.Correct++
			} else {
				tally.Wrong++
			}
		}

		entries = append(entries, entry)
	}

	return entries, total, nil
}
