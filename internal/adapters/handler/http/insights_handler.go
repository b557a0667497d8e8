package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/altrove/habitlens/internal/adapters/handler/http/middleware"
	"github.com/altrove/habitlens/internal/core/services"
)

type InsightsHandler struct {
	svc *services.InsightService
}

func NewInsightsHandler(svc *services.InsightService) *InsightsHandler {
	return &InsightsHandler{svc: svc}
}

func (h *InsightsHandler) RegisterRoutes(router *gin.RouterGroup) {
	insights := router.Group("/insights")
	{
		insights.GET("/correlations", h.Correlations)
		insights.GET("/recommendations", h.Recommendations)
		insights.GET("/weekly-report", h.WeeklyReport)
	}
}

func (h *InsightsHandler) Correlations(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	window := 30
	if w := c.Query("window"); w != "" {
		parsed, err := strconv.Atoi(w)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "window must be a positive number of days"})
			return
		}
		window = parsed
	}

	correlations, err := h.svc.Correlations(c.Request.Context(), userID, window)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"correlations": correlations})
}

func (h *InsightsHandler) Recommendations(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	recs, err := h.svc.Recommendations(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"recommendations": recs})
}

func (h *InsightsHandler) WeeklyReport(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	report, err := h.svc.WeeklyReport(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, report)
}
