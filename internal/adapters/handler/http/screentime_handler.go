package http

import (
	"encoding/csv"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/altrove/habitlens/internal/adapters/handler/http/middleware"
	"github.com/altrove/habitlens/internal/core/services"
)

type ScreenTimeHandler struct {
	svc *services.ScreenTimeService
}

func NewScreenTimeHandler(svc *services.ScreenTimeService) *ScreenTimeHandler {
	return &ScreenTimeHandler{svc: svc}
}

type screenTimeRowRequest struct {
	Date         string `json:"date" binding:"required"`
	AppName      string `json:"app_name" binding:"required"`
	UsageMinutes int    `json:"usage_minutes"`
}

type ingestRequest struct {
	Rows []screenTimeRowRequest `json:"rows" binding:"required"`
}

func (h *ScreenTimeHandler) RegisterRoutes(router *gin.RouterGroup) {
	st := router.Group("/screentime")
	{
		st.POST("", h.Ingest)
		st.POST("/upload", h.Upload)
		st.GET("", h.Recent)
		st.GET("/summary", h.Summary)
	}
}

func (h *ScreenTimeHandler) Ingest(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	var req ingestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	rows := make([]services.ScreenTimeRow, 0, len(req.Rows))
	for _, r := range req.Rows {
		date, err := time.Parse("2006-01-02", r.Date)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date, expected YYYY-MM-DD: " + r.Date})
			return
		}
		rows = append(rows, services.ScreenTimeRow{
			Date:         date,
			AppName:      r.AppName,
			UsageMinutes: r.UsageMinutes,
		})
	}

	stored, skipped, err := h.svc.Ingest(c.Request.Context(), userID, rows, "")
	if err != nil {
		if errors.Is(err, services.ErrNoScreenTimeRows) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "no valid rows in batch"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"stored": stored, "skipped": skipped})
}

// Upload ingests a CSV export with Date, App Name and Usage (Minutes)
// columns. Column order is taken from the header row.
func (h *ScreenTimeHandler) Upload(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read file"})
		return
	}
	defer file.Close()

	rows, err := parseScreenTimeCSV(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	stored, skipped, err := h.svc.Ingest(c.Request.Context(), userID, rows, fileHeader.Filename)
	if err != nil {
		if errors.Is(err, services.ErrNoScreenTimeRows) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "no valid rows in file"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"stored": stored, "skipped": skipped, "file": fileHeader.Filename})
}

func (h *ScreenTimeHandler) Recent(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	days := 7
	if d := c.Query("days"); d != "" {
		parsed, err := strconv.Atoi(d)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "days must be a positive integer"})
			return
		}
		days = parsed
	}

	logs, err := h.svc.RecentLogs(c.Request.Context(), userID, days)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, logs)
}

func (h *ScreenTimeHandler) Summary(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	to := time.Now().UTC()
	from := to.AddDate(0, 0, -7)

	if f := c.Query("from"); f != "" {
		parsed, err := time.Parse("2006-01-02", f)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid from date, expected YYYY-MM-DD"})
			return
		}
		from = parsed
	}
	if t := c.Query("to"); t != "" {
		parsed, err := time.Parse("2006-01-02", t)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid to date, expected YYYY-MM-DD"})
			return
		}
		to = parsed
	}

	summary, err := h.svc.Summary(c.Request.Context(), userID, from, to)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	change, err := h.svc.WeekOverWeekChange(c.Request.Context(), userID, to)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"summary":        summary,
		"week_over_week": change,
	})
}

func parseScreenTimeCSV(r io.Reader) ([]services.ScreenTimeRow, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, errors.New("empty or unreadable csv")
	}

	dateCol, appCol, usageCol := -1, -1, -1
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "date":
			dateCol = i
		case "app name", "app":
			appCol = i
		case "usage (minutes)", "usage", "minutes":
			usageCol = i
		}
	}
	if dateCol < 0 || appCol < 0 || usageCol < 0 {
		return nil, errors.New("csv must have Date, App Name and Usage (Minutes) columns")
	}

	var rows []services.ScreenTimeRow
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.New("malformed csv record")
		}

		date, err := time.Parse("2006-01-02", strings.TrimSpace(record[dateCol]))
		if err != nil {
			// Rows with a bad date pass through as zero values and are
			// counted as skipped by the service.
			rows = append(rows, services.ScreenTimeRow{AppName: ""})
			continue
		}

		minutes, err := strconv.Atoi(strings.TrimSpace(record[usageCol]))
		if err != nil {
			minutes = -1
		}

		rows = append(rows, services.ScreenTimeRow{
			Date:         date,
			AppName:      strings.TrimSpace(record[appCol]),
			UsageMinutes: minutes,
		})
	}

	if len(rows) == 0 {
		return nil, errors.New("csv has no data rows")
	}

	return rows, nil
}
