package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	adapterHTTP "github.com/altrove/habitlens/internal/adapters/handler/http"
	"github.com/altrove/habitlens/internal/adapters/repository"
	"github.com/altrove/habitlens/internal/core/domain"
	"github.com/altrove/habitlens/internal/core/services"
	"github.com/altrove/habitlens/internal/core/workers"
)

func setupServer(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	userRepo := repository.NewInMemoryUserRepository()
	habitRepo := repository.NewInMemoryHabitRepository()
	logRepo := repository.NewInMemoryHabitLogRepository()
	screenRepo := repository.NewInMemoryScreenTimeRepository()
	detoxRepo := repository.NewInMemoryDetoxPlanRepository()
	limitRepo := repository.NewInMemoryAppLimitRepository()
	twinRepo := repository.NewInMemoryTwinRepository()
	achieveRepo := repository.NewInMemoryAchievementRepository([]*domain.Achievement{
		{ID: "first-step", Name: "First Step", Kind: domain.CriteriaHabits, Threshold: 1},
		{ID: "on-a-roll", Name: "On A Roll", Kind: domain.CriteriaStreak, Threshold: 3},
	})

	worker := workers.NewStreakWorker(habitRepo, logRepo, logger)
	ctx, cancel := context.WithCancel(context.Background())
	worker.Start(ctx)
	t.Cleanup(cancel)

	tokenService := services.NewTokenService("e2e-test-secret", "habitlens-e2e", time.Hour, userRepo)
	authService := services.NewAuthService(userRepo, tokenService)
	twinService := services.NewTwinService(twinRepo, rand.New(rand.NewSource(11)))
	habitService := services.NewHabitService(habitRepo, logRepo, twinService, worker)
	achieveService := services.NewAchievementService(achieveRepo, habitRepo, logRepo, screenRepo, detoxRepo)
	logService := services.NewLogService(logRepo, habitRepo, twinService, worker, achieveService)
	screenService := services.NewScreenTimeService(screenRepo)
	wellbeingService := services.NewWellbeingService(screenRepo, detoxRepo, limitRepo)
	insightService := services.NewInsightService(habitRepo, logRepo, screenRepo, detoxRepo, limitRepo)

	return adapterHTTP.NewRouter(adapterHTTP.RouterDependencies{
		AuthHandler:        adapterHTTP.NewAuthHandler(authService),
		HabitHandler:       adapterHTTP.NewHabitHandler(habitService, twinService),
		LogHandler:         adapterHTTP.NewLogHandler(logService),
		ScreenTimeHandler:  adapterHTTP.NewScreenTimeHandler(screenService),
		WellbeingHandler:   adapterHTTP.NewWellbeingHandler(wellbeingService),
		AchievementHandler: adapterHTTP.NewAchievementHandler(achieveService),
		InsightsHandler:    adapterHTTP.NewInsightsHandler(insightService),
		TokenService:       tokenService,
		StartTime:          time.Now(),
	})
}

func do(router *gin.Engine, method, path, body, token string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req, _ = http.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req, _ = http.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestEndToEnd_UserJourney(t *testing.T) {
	router := setupServer(t)

	var token string
	var habitID string

	t.Run("1. Register And Login", func(t *testing.T) {
		w := do(router, http.MethodPost, "/api/v1/auth/register",
			`{"username": "marta_b", "email": "marta@example.com", "password": "correct-horse-9"}`, "")
		require.Equal(t, http.StatusCreated, w.Code)

		w2 := do(router, http.MethodPost, "/api/v1/auth/login",
			`{"email": "marta@example.com", "password": "correct-horse-9"}`, "")
		require.Equal(t, http.StatusOK, w2.Code)

		var resp struct {
			Token string `json:"token"`
		}
		require.NoError(t, json.Unmarshal(w2.Body.Bytes(), &resp))
		require.NotEmpty(t, resp.Token)
		token = resp.Token
	})

	t.Run("2. Protected Routes Reject Anonymous Calls", func(t *testing.T) {
		w := do(router, http.MethodGet, "/api/v1/habits", "", "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("3. Create Habit", func(t *testing.T) {
		w := do(router, http.MethodPost, "/api/v1/habits",
			`{"name": "Morning Run", "description": "5km", "frequency": "daily", "goal": 1}`, token)
		require.Equal(t, http.StatusCreated, w.Code)

		var habit domain.Habit
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &habit))
		require.NotEmpty(t, habit.ID)
		habitID = habit.ID
	})

	t.Run("4. Log Three Consecutive Days", func(t *testing.T) {
		for offset := 2; offset >= 0; offset-- {
			date := time.Now().UTC().AddDate(0, 0, -offset).Format(time.RFC3339)
			body := fmt.Sprintf(`{"log_date": %q, "completed": true}`, date)

			w := do(router, http.MethodPost, "/api/v1/habits/"+habitID+"/logs", body, token)
			require.Equal(t, http.StatusCreated, w.Code)
		}
	})

	t.Run("5. Detail Shows Live Streak", func(t *testing.T) {
		w := do(router, http.MethodGet, "/api/v1/habits/"+habitID, "", token)
		require.Equal(t, http.StatusOK, w.Code)

		var detail struct {
			CurrentStreak  int     `json:"current_streak"`
			LongestStreak  int     `json:"longest_streak"`
			CompletionRate float64 `json:"completion_rate"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &detail))
		assert.Equal(t, 3, detail.CurrentStreak)
		assert.Equal(t, 3, detail.LongestStreak)
		assert.InDelta(t, 100.0, detail.CompletionRate, 0.01)
	})

	t.Run("6. Streak Achievements Unlock", func(t *testing.T) {
		w := do(router, http.MethodGet, "/api/v1/achievements", "", token)
		require.Equal(t, http.StatusOK, w.Code)

		var overview domain.AchievementOverview
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &overview))
		assert.Len(t, overview.Earned, 2, "Both the habit-count and streak badges should be earned")
		assert.Equal(t, 100, overview.Percentage)
	})

	t.Run("7. Screen Time And Wellbeing", func(t *testing.T) {
		today := time.Now().UTC().Format("2006-01-02")
		body := fmt.Sprintf(`{"rows": [{"date": %q, "app_name": "Instagram", "usage_minutes": 150}]}`, today)

		w := do(router, http.MethodPost, "/api/v1/screentime", body, token)
		require.Equal(t, http.StatusCreated, w.Code)

		w2 := do(router, http.MethodGet, "/api/v1/wellbeing/insights", "", token)
		require.Equal(t, http.StatusOK, w2.Code)

		var insights domain.WellbeingInsights
		require.NoError(t, json.Unmarshal(w2.Body.Bytes(), &insights))
		assert.Equal(t, 90, insights.Score)
		assert.Equal(t, domain.BandExcellent, insights.Band)
	})

	t.Run("8. Weekly Report Aggregates Both Sides", func(t *testing.T) {
		w := do(router, http.MethodGet, "/api/v1/insights/weekly-report", "", token)
		require.Equal(t, http.StatusOK, w.Code)

		var report domain.WeeklyReport
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
		assert.Equal(t, 1, report.ActiveHabits)
		assert.Equal(t, 100, report.HabitCompletionRate)
		assert.Equal(t, "Instagram", report.MostUsedApp)
		assert.Equal(t, 3, report.LongestStreak)
	})

	t.Run("9. Delete Habit Removes Its Twin", func(t *testing.T) {
		w := do(router, http.MethodDelete, "/api/v1/habits/"+habitID, "", token)
		require.Equal(t, http.StatusNoContent, w.Code)

		w2 := do(router, http.MethodGet, "/api/v1/habits/"+habitID+"/twin", "", token)
		assert.Equal(t, http.StatusNotFound, w2.Code)
	})
}
