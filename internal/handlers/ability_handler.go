package handlers

import (
	"errors"
	"net/http"

	"github.com/SAP-F-2025/proficiency-service/internal/services"
	"github.com/SAP-F-2025/proficiency-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type AbilityHandler struct {
	BaseHandler
	abilityService services.AbilityService
}

func NewAbilityHandler(abilityService services.AbilityService, logger utils.Logger) *AbilityHandler {
	return &AbilityHandler{
		BaseHandler:    NewBaseHandler(logger),
		abilityService: abilityService,
	}
}

// EstimateAbility re-derives the caller's estimate for one category
// @Summary Estimate ability
// @Description Re-derives the ability estimate from the full response history
// @Tags abilities
// @Produce json
// @Param category_id path uint true "Category ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} ErrorResponse
// @Router /abilities/{category_id}/estimate [post]
func (h *AbilityHandler) EstimateAbility(c *gin.Context) {
	categoryID := ParseUintIDParam(c, "category_id")
	if categoryID == 0 {
		return
	}
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Estimating ability", "category_id", categoryID)

	theta, err := h.abilityService.Estimate(c.Request.Context(), userID, categoryID)
	if err != nil && !errors.Is(err, services.ErrEstimationSkipped) {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"category_id": categoryID,
		"theta":       theta,
		"skipped":     errors.Is(err, services.ErrEstimationSkipped),
	})
}

// EstimateAllAbilities re-estimates every category for the caller
// @Summary Estimate all abilities
// @Tags abilities
// @Produce json
// @Success 200 {object} map[uint]float64
// @Router /abilities/estimate-all [post]
func (h *AbilityHandler) EstimateAllAbilities(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Estimating all abilities")

	estimates, err := h.abilityService.EstimateAll(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, estimates)
}

// GetAbility serves the stored estimate for one category
// @Summary Get ability
// @Tags abilities
// @Produce json
// @Param category_id path uint true "Category ID"
// @Success 200 {object} map[string]interface{}
// @Router /abilities/{category_id} [get]
func (h *AbilityHandler) GetAbility(c *gin.Context) {
	categoryID := ParseUintIDParam(c, "category_id")
	if categoryID == 0 {
		return
	}
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	theta, err := h.abilityService.Get(c.Request.Context(), userID, categoryID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"category_id": categoryID,
		"theta":       theta,
	})
}

// GetProfile lists every stored estimate for the caller
// @Summary Ability profile
// @Tags abilities
// @Produce json
// @Success 200 {array} models.ProficiencyEstimate
// @Router /abilities [get]
func (h *AbilityHandler) GetProfile(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	estimates, err := h.abilityService.Profile(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, estimates)
}
