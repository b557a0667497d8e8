package http_test

import (
	"context"
	"io"
	"math/rand"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	adapterHTTP "github.com/altrove/habitlens/internal/adapters/handler/http"
	"github.com/altrove/habitlens/internal/adapters/handler/http/middleware"
	"github.com/altrove/habitlens/internal/adapters/repository"
	"github.com/altrove/habitlens/internal/core/domain"
	"github.com/altrove/habitlens/internal/core/services"
	"github.com/altrove/habitlens/internal/core/workers"
)

// testEnv wires every handler against in-memory repositories, with a
// header-based auth stub in place of the JWT middleware.
type testEnv struct {
	router *gin.Engine

	users  *repository.InMemoryUserRepository
	habits *repository.InMemoryHabitRepository
	logs   *repository.InMemoryHabitLogRepository
	screen *repository.InMemoryScreenTimeRepository
	detox  *repository.InMemoryDetoxPlanRepository
	limits *repository.InMemoryAppLimitRepository
	twins  *repository.InMemoryTwinRepository

	auth *services.AuthService
}

func fakeAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if id := c.GetHeader("X-User-ID"); id != "" {
			c.Set(middleware.ContextUserIDKey, id)
		}
		c.Next()
	}
}

func newTestEnv(t *testing.T, definitions []*domain.Achievement) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	env := &testEnv{
		users:  repository.NewInMemoryUserRepository(),
		habits: repository.NewInMemoryHabitRepository(),
		logs:   repository.NewInMemoryHabitLogRepository(),
		screen: repository.NewInMemoryScreenTimeRepository(),
		detox:  repository.NewInMemoryDetoxPlanRepository(),
		limits: repository.NewInMemoryAppLimitRepository(),
		twins:  repository.NewInMemoryTwinRepository(),
	}

	achieveRepo := repository.NewInMemoryAchievementRepository(definitions)

	worker := workers.NewStreakWorker(env.habits, env.logs, logger)
	ctx, cancel := context.WithCancel(context.Background())
	worker.Start(ctx)
	t.Cleanup(cancel)

	twinSvc := services.NewTwinService(env.twins, rand.New(rand.NewSource(7)))
	habitSvc := services.NewHabitService(env.habits, env.logs, twinSvc, worker)
	achieveSvc := services.NewAchievementService(achieveRepo, env.habits, env.logs, env.screen, env.detox)
	logSvc := services.NewLogService(env.logs, env.habits, twinSvc, worker, achieveSvc)
	screenSvc := services.NewScreenTimeService(env.screen)
	wellbeingSvc := services.NewWellbeingService(env.screen, env.detox, env.limits)
	insightSvc := services.NewInsightService(env.habits, env.logs, env.screen, env.detox, env.limits)

	tokenSvc := services.NewTokenService("test-secret", "habitlens-test", time.Hour, env.users)
	env.auth = services.NewAuthService(env.users, tokenSvc)

	r := gin.New()
	api := r.Group("/api/v1")

	adapterHTTP.NewAuthHandler(env.auth).RegisterRoutes(api)

	protected := api.Group("")
	protected.Use(fakeAuth())
	adapterHTTP.NewHabitHandler(habitSvc, twinSvc).RegisterRoutes(protected)
	adapterHTTP.NewLogHandler(logSvc).RegisterRoutes(protected)
	adapterHTTP.NewScreenTimeHandler(screenSvc).RegisterRoutes(protected)
	adapterHTTP.NewWellbeingHandler(wellbeingSvc).RegisterRoutes(protected)
	adapterHTTP.NewAchievementHandler(achieveSvc).RegisterRoutes(protected)
	adapterHTTP.NewInsightsHandler(insightSvc).RegisterRoutes(protected)

	env.router = r
	return env
}
