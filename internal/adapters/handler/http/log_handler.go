package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/altrove/habitlens/internal/adapters/handler/http/middleware"
	"github.com/altrove/habitlens/internal/core/domain"
	"github.com/altrove/habitlens/internal/core/services"
)

type LogHandler struct {
	svc *services.LogService
}

func NewLogHandler(svc *services.LogService) *LogHandler {
	return &LogHandler{
		svc: svc,
	}
}

type logHabitRequest struct {
	LogDate   time.Time `json:"log_date"`
	Completed bool      `json:"completed"`
	Notes     string    `json:"notes"`
}

func (h *LogHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/habits/:id/logs", h.Log)
	router.GET("/habits/:id/logs", h.ListByHabit)
	router.GET("/logs", h.ListByUser)
}

// Log records a daily check-in. Omitting log_date means today; logging
// an already-logged day overwrites it instead of duplicating.
func (h *LogHandler) Log(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	var req logHabitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	logDate := req.LogDate
	if logDate.IsZero() {
		logDate = time.Now().UTC()
	}

	input := services.LogHabitInput{
		HabitID:   c.Param("id"),
		UserID:    userID,
		LogDate:   logDate,
		Completed: req.Completed,
		Notes:     req.Notes,
	}

	result, err := h.svc.Log(c.Request.Context(), input)
	if err != nil {
		handleError(c, err)
		return
	}

	status := http.StatusCreated
	if result.Updated {
		status = http.StatusOK
	}
	c.JSON(status, result)
}

func (h *LogHandler) ListByHabit(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	from, to, ok := parseRange(c)
	if !ok {
		return
	}

	list, err := h.svc.ListByHabitID(c.Request.Context(), c.Param("id"), userID, from, to)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

func (h *LogHandler) ListByUser(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	from, to, ok := parseRange(c)
	if !ok {
		return
	}

	list, err := h.svc.ListByUserID(c.Request.Context(), userID, from, to)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

// parseRange reads optional from/to query params. Defaults cover the
// trailing 30 days.
func parseRange(c *gin.Context) (time.Time, time.Time, bool) {
	to := time.Now().UTC()
	from := to.AddDate(0, 0, -30)

	if t := c.Query("to"); t != "" {
		parsed, err := time.Parse(time.RFC3339, t)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid to date, use RFC3339"})
			return from, to, false
		}
		to = parsed
	}
	if f := c.Query("from"); f != "" {
		parsed, err := time.Parse(time.RFC3339, f)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid from date, use RFC3339"})
			return from, to, false
		}
		from = parsed
	}

	return from, to, true
}

func handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": "unauthorized access"})

	case errors.Is(err, domain.ErrLogNotFound) || errors.Is(err, domain.ErrHabitNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "resource not found"})

	case errors.Is(err, domain.ErrLogConflict):
		c.JSON(http.StatusConflict, gin.H{
			"error":   "version conflict",
			"message": "data has been modified elsewhere, please retry",
		})

	default:
		logrus.WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
		}).WithError(err).Error("request failed")

		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
