package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/altrove/habitlens/internal/adapters/handler/http/middleware"
	"github.com/altrove/habitlens/internal/core/services"
)

type AchievementHandler struct {
	svc *services.AchievementService
}

func NewAchievementHandler(svc *services.AchievementService) *AchievementHandler {
	return &AchievementHandler{svc: svc}
}

func (h *AchievementHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/achievements", h.Overview)
}

// Overview re-evaluates the user's criteria and returns earned badges,
// locked badges with progress, and any earned by this very request.
func (h *AchievementHandler) Overview(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	overview, err := h.svc.Overview(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, overview)
}
