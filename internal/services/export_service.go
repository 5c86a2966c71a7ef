package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/SAP-F-2025/proficiency-service/internal/repositories"
	"github.com/SAP-F-2025/proficiency-service/internal/utils"
	"github.com/xuri/excelize/v2"
)

type exportService struct {
	history HistoryService
	logger  utils.Logger
}

func NewExportService(history HistoryService, logger utils.Logger) ExportService {
	return &exportService{
		history: history,
		logger:  logger,
	}
}

// ExportHistory renders the user's full attempt history as an .xlsx workbook,
// one row per result with a per-category summary column.
func (s *exportService) ExportHistory(ctx context.Context, userID string) ([]byte, error) {
	entries, _, err := s.history.History(ctx, userID, repositories.HistoryFilters{})
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	sheetName := "History"

	// Create sheet
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	f.SetActiveSheet(index)

	// Write headers
	headers := []string{
		"Date", "Assessment", "Kind", "Score", "Total Items", "Time Taken (s)", "Categories",
	}

	for i, header := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
	}

	// Write data
	for rowIndex, entry := range entries {
		row := []interface{}{
			entry.Date.Format("2006-01-02 15:04"),
			entry.Name,
			string(entry.Kind),
			entry.Score,
			entry.TotalItems,
			entry.TimeTaken,
			summarizeBreakdown(entry.Breakdown),
		}
		for colIndex, value := range row {
			cell := fmt.Sprintf("%c%d", 'A'+colIndex, rowIndex+2)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	// Save to buffer
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}

	s.logger.InfoContext(ctx, "History exported",
		"user_id", userID,
		"rows", len(entries))

	return buf.Bytes(), nil
}

// summarizeBreakdown flattens the per-category tally into a stable,
// human-readable cell value.
func summarizeBreakdown(breakdown map[uint]*CategoryBreakdown) string {
	ids := make([]uint, 0, len(breakdown))
	for id := range breakdown {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		tally := breakdown[id]
		name := tally.CategoryName
		if name == "" {
			name = fmt.Sprintf("category %d", id)
		}
		parts = append(parts, fmt.Sprintf("%s: %d/%d", name, tally.Correct, tally.Total))
	}
	return strings.Join(parts, "; ")
}
