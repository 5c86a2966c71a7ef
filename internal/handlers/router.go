package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/proficiency-service/internal/config"
	"github.com/SAP-F-2025/proficiency-service/internal/services"
	"github.com/SAP-F-2025/proficiency-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type HandlerManager struct {
	attemptHandler *AttemptHandler
	abilityHandler *AbilityHandler
	historyHandler *HistoryHandler
}

func NewHandlerManager(
	attemptService services.AttemptService,
	scoringService services.ScoringService,
	abilityService services.AbilityService,
	historyService services.HistoryService,
	exportService services.ExportService,
	validator *utils.Validator,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		attemptHandler: NewAttemptHandler(attemptService, scoringService, validator, logger),
		abilityHandler: NewAbilityHandler(abilityService, logger),
		historyHandler: NewHistoryHandler(historyService, exportService, logger),
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine, cfg *config.Config, logger utils.Logger) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "proficiency-service",
		})
	})

	v1 := router.Group("/api/v1")
	v1.Use(AuthMiddleware(cfg, logger))
	{
		assessments := v1.Group("/assessments")
		{
			assessments.POST("/generate", hm.attemptHandler.GenerateAssessment)
			assessments.GET("/initial", hm.attemptHandler.GetInitialExam)
			assessments.GET("/initial/taken", hm.attemptHandler.GetInitialExamTaken)

			assessments.POST("/:id/attempts", hm.attemptHandler.BeginAttempt)
			assessments.GET("/:id/attempts/remaining-time", hm.attemptHandler.GetRemainingTime)
			assessments.POST("/:id/attempts/submit", hm.attemptHandler.SubmitAttempt)
			assessments.GET("/:id/attempts/result", hm.attemptHandler.GetResult)
		}

		classes := v1.Group("/classes")
		{
			classes.GET("/:id/assessments", hm.attemptHandler.ListClassAssessments)
		}

		abilities := v1.Group("/abilities")
		{
			abilities.GET("", hm.abilityHandler.GetProfile)
			abilities.POST("/estimate-all", hm.abilityHandler.EstimateAllAbilities)
			abilities.GET("/:category_id", hm.abilityHandler.GetAbility)
			abilities.POST("/:category_id/estimate", hm.abilityHandler.EstimateAbility)
		}

		history := v1.Group("/history")
		{
			history.GET("", hm.historyHandler.GetHistory)
			history.GET("/export", hm.historyHandler.ExportHistory)
		}
	}
}
