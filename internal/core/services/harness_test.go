package services_test

import (
	"context"
	"io"
	"math/rand"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/altrove/habitlens/internal/adapters/repository"
	"github.com/altrove/habitlens/internal/core/domain"
	"github.com/altrove/habitlens/internal/core/services"
	"github.com/altrove/habitlens/internal/core/workers"
)

// harness wires every service against the in-memory adapters, the way
// main does against postgres. The deterministic seed keeps twin draws
// reproducible across runs.
type harness struct {
	habits  *repository.InMemoryHabitRepository
	logs    *repository.InMemoryHabitLogRepository
	screen  *repository.InMemoryScreenTimeRepository
	badges  *repository.InMemoryAchievementRepository
	detox   *repository.InMemoryDetoxPlanRepository
	limits  *repository.InMemoryAppLimitRepository
	twins   *repository.InMemoryTwinRepository
	users   *repository.InMemoryUserRepository

	habitSvc  *services.HabitService
	logSvc    *services.LogService
	screenSvc *services.ScreenTimeService
	wellSvc   *services.WellbeingService
	insight   *services.InsightService
	achieve   *services.AchievementService
	twinSvc   *services.TwinService
}

func newHarness(t *testing.T, definitions []*domain.Achievement) *harness {
	t.Helper()

	h := &harness{
		habits: repository.NewInMemoryHabitRepository(),
		logs:   repository.NewInMemoryHabitLogRepository(),
		screen: repository.NewInMemoryScreenTimeRepository(),
		badges: repository.NewInMemoryAchievementRepository(definitions),
		detox:  repository.NewInMemoryDetoxPlanRepository(),
		limits: repository.NewInMemoryAppLimitRepository(),
		twins:  repository.NewInMemoryTwinRepository(),
		users:  repository.NewInMemoryUserRepository(),
	}

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	worker := workers.NewStreakWorker(h.habits, h.logs, logger)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	worker.Start(ctx)

	h.twinSvc = services.NewTwinService(h.twins, rand.New(rand.NewSource(42)))
	h.habitSvc = services.NewHabitService(h.habits, h.logs, h.twinSvc, worker)
	h.achieve = services.NewAchievementService(h.badges, h.habits, h.logs, h.screen, h.detox)
	h.logSvc = services.NewLogService(h.logs, h.habits, h.twinSvc, worker, h.achieve)
	h.screenSvc = services.NewScreenTimeService(h.screen)
	h.wellSvc = services.NewWellbeingService(h.screen, h.detox, h.limits)
	h.insight = services.NewInsightService(h.habits, h.logs, h.screen, h.detox, h.limits)

	return h
}

func (h *harness) mustCreateHabit(t *testing.T, userID, name string) *domain.Habit {
	t.Helper()
	habit, err := h.habitSvc.Create(context.Background(), services.CreateHabitInput{
		UserID: userID,
		Name:   name,
	})
	require.NoError(t, err)
	return habit
}

func (h *harness) mustLog(t *testing.T, habitID, userID string, date time.Time, completed bool) {
	t.Helper()
	_, err := h.logSvc.Log(context.Background(), services.LogHabitInput{
		HabitID:   habitID,
		UserID:    userID,
		LogDate:   date,
		Completed: completed,
	})
	require.NoError(t, err)
}

func (h *harness) mustIngestScreenTime(t *testing.T, userID string, date time.Time, app string, minutes int) {
	t.Helper()
	_, _, err := h.screenSvc.Ingest(context.Background(), userID, []services.ScreenTimeRow{
		{Date: date, AppName: app, UsageMinutes: minutes},
	}, "")
	require.NoError(t, err)
}
