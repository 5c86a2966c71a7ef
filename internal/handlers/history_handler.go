package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/SAP-F-2025/proficiency-service/internal/models"
	"github.com/SAP-F-2025/proficiency-service/internal/repositories"
	"github.com/SAP-F-2025/proficiency-service/internal/services"
	"github.com/SAP-F-2025/proficiency-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type HistoryHandler struct {
	BaseHandler
	historyService services.HistoryService
	exportService  services.ExportService
}

func NewHistoryHandler(
	historyService services.HistoryService,
	exportService services.ExportService,
	logger utils.Logger,
) *HistoryHandler {
	return &HistoryHandler{
		BaseHandler:    NewBaseHandler(logger),
		historyService: historyService,
		exportService:  exportService,
	}
}

// GetHistory lists the caller's past results
// @Summary Attempt history
// @Tags history
// @Produce json
// @Param kind query string false "Filter by assessment kind (exam|quiz)"
// @Param date_from query string false "RFC 3339 lower bound"
// @Param date_to query string false "RFC 3339 upper bound"
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Success 200 {object} map[string]interface{}
// @Router /history [get]
func (h *HistoryHandler) GetHistory(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	filters, err := parseHistoryFilters(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid history filters",
			Details: err.Error(),
		})
		return
	}

	entries, total, err := h.historyService.History(c.Request.Context(), userID, filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"entries": entries,
		"total":   total,
	})
}

// ExportHistory downloads the caller's history as a spreadsheet
// @Summary Export history
// @Tags history
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} binary
// @Router /history/export [get]
func (h *HistoryHandler) ExportHistory(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Exporting history")

	data, err := h.exportService.ExportHistory(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("history-%s.xlsx", time.Now().UTC().Format("2006-01-02"))
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

func parseHistoryFilters(c *gin.Context) (repositories.HistoryFilters, error) {
	var filters repositories.HistoryFilters

	if kind := c.Query("kind"); kind != "" {
		parsed := models.AssessmentKind(kind)
		if parsed != models.KindExam && parsed != models.KindQuiz {
			return filters, fmt.Errorf("unknown kind %q", kind)
		}
		filters.AssessmentKind = &parsed
	}
	if from := c.Query("date_from"); from != "" {
		parsed, err := time.Parse(time.RFC3339, from)
		if err != nil {
			return filters, err
		}
		filters.DateFrom = &parsed
	}
	if to := c.Query("date_to"); to != "" {
		parsed, err := time.Parse(time.RFC3339, to)
		if err != nil {
			return filters, err
		}
		filters.DateTo = &parsed
	}
	if limit := c.Query("limit"); limit != "" {
		parsed, err := strconv.Atoi(limit)
		if err != nil || parsed < 0 {
			return filters, fmt.Errorf("invalid limit %q", limit)
		}
		filters.Limit = parsed
	}
	if offset := c.Query("offset"); offset != "" {
		parsed, err := strconv.Atoi(offset)
		if err != nil || parsed < 0 {
			return filters, fmt.Errorf("invalid offset %q", offset)
		}
		filters.Offset = parsed
	}
	filters.SortOrder = c.DefaultQuery("sort_order", "desc")

	return filters, nil
}
