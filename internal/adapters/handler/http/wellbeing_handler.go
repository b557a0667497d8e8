package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/altrove/habitlens/internal/adapters/handler/http/middleware"
	"github.com/altrove/habitlens/internal/core/domain"
	"github.com/altrove/habitlens/internal/core/services"
)

type WellbeingHandler struct {
	svc *services.WellbeingService
}

func NewWellbeingHandler(svc *services.WellbeingService) *WellbeingHandler {
	return &WellbeingHandler{svc: svc}
}

type startDetoxRequest struct {
	DailyLimitMinutes    int  `json:"daily_limit_minutes" binding:"required"`
	BreakIntervalMinutes int  `json:"break_interval_minutes"`
	EnableAppBlocking    bool `json:"enable_app_blocking"`
}

type setAppLimitRequest struct {
	AppName           string `json:"app_name" binding:"required"`
	DailyLimitMinutes int    `json:"daily_limit_minutes" binding:"required"`
}

func (h *WellbeingHandler) RegisterRoutes(router *gin.RouterGroup) {
	wb := router.Group("/wellbeing")
	{
		wb.GET("/insights", h.Insights)
		wb.POST("/detox", h.StartDetox)
		wb.GET("/detox", h.ActiveDetoxPlans)
		wb.PUT("/detox/:id/complete", h.CompleteDetox)
		wb.POST("/limits", h.SetAppLimit)
		wb.GET("/limits", h.ListAppLimits)
		wb.DELETE("/limits/:id", h.RemoveAppLimit)
	}
}

func (h *WellbeingHandler) Insights(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	insights, err := h.svc.Insights(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, insights)
}

func (h *WellbeingHandler) StartDetox(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	var req startDetoxRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	plan, err := h.svc.StartDetox(c.Request.Context(), services.StartDetoxInput{
		UserID:               userID,
		DailyLimitMinutes:    req.DailyLimitMinutes,
		BreakIntervalMinutes: req.BreakIntervalMinutes,
		EnableAppBlocking:    req.EnableAppBlocking,
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidDailyLimit) || errors.Is(err, domain.ErrInvalidBreakInterval) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusCreated, plan)
}

func (h *WellbeingHandler) ActiveDetoxPlans(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	plans, err := h.svc.ActiveDetoxPlans(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, plans)
}

func (h *WellbeingHandler) CompleteDetox(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	plan, err := h.svc.CompleteDetox(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrDetoxPlanNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "detox plan not found"})
		case errors.Is(err, domain.ErrPlanAlreadyInactive):
			c.JSON(http.StatusConflict, gin.H{"error": "detox plan is already completed"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		}
		return
	}

	c.JSON(http.StatusOK, plan)
}

func (h *WellbeingHandler) SetAppLimit(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	var req setAppLimitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	limit, err := h.svc.SetAppLimit(c.Request.Context(), userID, req.AppName, req.DailyLimitMinutes)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidDailyLimit) || errors.Is(err, domain.ErrScreenTimeAppEmpty) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, limit)
}

func (h *WellbeingHandler) ListAppLimits(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	limits, err := h.svc.ListAppLimits(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, limits)
}

func (h *WellbeingHandler) RemoveAppLimit(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	err := h.svc.RemoveAppLimit(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		if errors.Is(err, domain.ErrAppLimitNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "app limit not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.Status(http.StatusNoContent)
}
