package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/altrove/habitlens/internal/adapters/handler/http/middleware"
	"github.com/altrove/habitlens/internal/core/domain"
	"github.com/altrove/habitlens/internal/core/services"
)

type HabitHandler struct {
	svc   *services.HabitService
	twins *services.TwinService
}

func NewHabitHandler(svc *services.HabitService, twins *services.TwinService) *HabitHandler {
	return &HabitHandler{
		svc:   svc,
		twins: twins,
	}
}

type createHabitRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Frequency   string `json:"frequency"`
	Goal        int    `json:"goal"`
}

type updateHabitRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Frequency   string `json:"frequency"`
	Goal        int    `json:"goal"`
	Version     int    `json:"version"`
}

func (h *HabitHandler) RegisterRoutes(router *gin.RouterGroup) {
	habits := router.Group("/habits")
	{
		habits.POST("", h.Create)
		habits.GET("", h.List)
		habits.GET("/:id", h.Detail)
		habits.GET("/:id/twin", h.Twin)
		habits.PUT("/:id", h.Update)
		habits.DELETE("/:id", h.Delete)
	}
}

func (h *HabitHandler) Create(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	var req createHabitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input := services.CreateHabitInput{
		UserID:      userID,
		Name:        req.Name,
		Description: req.Description,
		Frequency:   req.Frequency,
		Goal:        req.Goal,
	}

	habit, err := h.svc.Create(c.Request.Context(), input)
	if err != nil {
		if isHabitValidationErr(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusCreated, habit)
}

func (h *HabitHandler) List(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	list, err := h.svc.ListByUserID(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, list)
}

func (h *HabitHandler) Detail(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	detail, err := h.svc.Detail(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		if errors.Is(err, domain.ErrHabitNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "habit not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, detail)
}

func (h *HabitHandler) Twin(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	id := c.Param("id")

	// Ownership check before exposing the twin.
	if _, err := h.svc.GetByID(c.Request.Context(), id, userID); err != nil {
		if errors.Is(err, domain.ErrHabitNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "habit not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	twin, err := h.twins.EnsureTwin(c.Request.Context(), userID, id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, twin)
}

func (h *HabitHandler) Update(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	var req updateHabitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input := services.UpdateHabitInput{
		ID:          c.Param("id"),
		UserID:      userID,
		Name:        req.Name,
		Description: req.Description,
		Frequency:   req.Frequency,
		Goal:        req.Goal,
		Version:     req.Version,
	}

	habit, err := h.svc.Update(c.Request.Context(), input)
	if err != nil {
		if errors.Is(err, domain.ErrHabitConflict) {
			c.JSON(http.StatusConflict, gin.H{
				"error":   "version conflict",
				"message": "Data has been modified elsewhere. Please refresh.",
			})
			return
		}
		if errors.Is(err, domain.ErrHabitNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "habit not found"})
			return
		}
		if isHabitValidationErr(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, habit)
}

func (h *HabitHandler) Delete(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	err := h.svc.Delete(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		if errors.Is(err, domain.ErrHabitNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "habit not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.Status(http.StatusNoContent)
}

func isHabitValidationErr(err error) bool {
	return errors.Is(err, domain.ErrHabitNameEmpty) ||
		errors.Is(err, domain.ErrHabitNameTooLong) ||
		errors.Is(err, domain.ErrHabitDescTooLong) ||
		errors.Is(err, domain.ErrInvalidFrequency) ||
		errors.Is(err, domain.ErrInvalidGoal)
}
