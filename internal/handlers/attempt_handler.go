package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/proficiency-service/internal/services"
	"github.com/SAP-F-2025/proficiency-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type AttemptHandler struct {
	BaseHandler
	attemptService services.AttemptService
	scoringService services.ScoringService
	validator      *utils.Validator
}

func NewAttemptHandler(
	attemptService services.AttemptService,
	scoringService services.ScoringService,
	validator *utils.Validator,
	logger utils.Logger,
) *AttemptHandler {
	return &AttemptHandler{
		BaseHandler:    NewBaseHandler(logger),
		attemptService: attemptService,
		scoringService: scoringService,
		validator:      validator,
	}
}

// BeginAttempt opens or re-opens the caller's attempt
// @Summary Begin attempt
// @Description Opens the attempt session and returns the item set with the remaining time
// @Tags attempts
// @Produce json
// @Param id path uint true "Assessment ID"
// @Success 200 {object} services.BeginAttemptResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /assessments/{id}/attempts [post]
func (h *AttemptHandler) BeginAttempt(c *gin.Context) {
	assessmentID := ParseUintIDParam(c, "id")
	if assessmentID == 0 {
		return
	}
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Beginning attempt", "assessment_id", assessmentID)

	resp, err := h.attemptService.Begin(c.Request.Context(), assessmentID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetRemainingTime reports the seconds left on the attempt clock
// @Summary Remaining time
// @Tags attempts
// @Produce json
// @Param id path uint true "Assessment ID"
// @Success 200 {object} map[string]int
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /assessments/{id}/attempts/remaining-time [get]
func (h *AttemptHandler) GetRemainingTime(c *gin.Context) {
	assessmentID := ParseUintIDParam(c, "id")
	if assessmentID == 0 {
		return
	}
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	remaining, err := h.attemptService.RemainingTime(c.Request.Context(), assessmentID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"remaining_seconds": remaining})
}

// SubmitAttempt grades and persists the caller's submission
// @Summary Submit attempt
// @Description Grades the submission, persists the result once, and returns the score breakdown
// @Tags attempts
// @Accept json
// @Produce json
// @Param id path uint true "Assessment ID"
// @Param submission body services.SubmitAttemptRequest true "Submission payload"
// @Param auto query bool false "Client-initiated auto submission"
// @Success 200 {object} services.SubmitAttemptResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /assessments/{id}/attempts/submit [post]
func (h *AttemptHandler) SubmitAttempt(c *gin.Context) {
	assessmentID := ParseUintIDParam(c, "id")
	if assessmentID == 0 {
		return
	}
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	var req services.SubmitAttemptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}
	req.AssessmentID = assessmentID

	isAuto := c.Query("auto") == "true"

	h.LogRequest(c, "Submitting attempt",
		"assessment_id", assessmentID,
		"answers", len(req.Answers),
		"auto", isAuto)

	resp, err := h.attemptService.Submit(c.Request.Context(), &req, userID, isAuto)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetResult returns the stored result with the full response review
// @Summary Attempt result
// @Tags attempts
// @Produce json
// @Param id path uint true "Assessment ID"
// @Success 200 {object} services.AttemptReview
// @Failure 404 {object} ErrorResponse
// @Router /assessments/{id}/attempts/result [get]
func (h *AttemptHandler) GetResult(c *gin.Context) {
	assessmentID := ParseUintIDParam(c, "id")
	if assessmentID == 0 {
		return
	}
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	review, err := h.scoringService.Result(c.Request.Context(), assessmentID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, review)
}

// GenerateAssessment samples the item bank into a new static assessment
// @Summary Generate assessment
// @Tags assessments
// @Accept json
// @Produce json
// @Param request body services.GenerateAttemptRequest true "Generation parameters"
// @Success 201 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 501 {object} ErrorResponse
// @Router /assessments/generate [post]
func (h *AttemptHandler) GenerateAssessment(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	var req services.GenerateAttemptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Generating assessment",
		"categories", len(req.CategoryIDs),
		"count", req.Count,
		"source", req.Source)

	assessment, err := h.attemptService.Generate(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, SuccessResponse{
		Message: "Assessment generated",
		Data:    assessment,
	})
}

// ListClassAssessments projects the class's assessments with attempt status
// @Summary List class assessments
// @Tags assessments
// @Produce json
// @Param id path uint true "Class ID"
// @Success 200 {array} services.AssessmentSummary
// @Failure 404 {object} ErrorResponse
// @Router /classes/{id}/assessments [get]
func (h *AttemptHandler) ListClassAssessments(c *gin.Context) {
	classID := ParseUintIDParam(c, "id")
	if classID == 0 {
		return
	}
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	summaries, err := h.attemptService.ListForClass(c.Request.Context(), classID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, summaries)
}

// GetInitialExam returns the configured initial exam
// @Summary Initial exam
// @Tags assessments
// @Produce json
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse
// @Router /assessments/initial [get]
func (h *AttemptHandler) GetInitialExam(c *gin.Context) {
	assessment, err := h.attemptService.InitialExam(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Initial exam",
		Data:    assessment,
	})
}

// GetInitialExamTaken reports whether the caller has completed the initial exam
// @Summary Initial exam taken
// @Tags assessments
// @Produce json
// @Success 200 {object} map[string]bool
// @Failure 404 {object} ErrorResponse
// @Router /assessments/initial/taken [get]
func (h *AttemptHandler) GetInitialExamTaken(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	taken, err := h.attemptService.InitialExamTaken(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"taken": taken})
}
