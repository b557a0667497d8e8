package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/altrove/habitlens/internal/core/domain"
	"github.com/altrove/habitlens/internal/core/services"
)

func TestLogService_SameDayUpsert(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	habit := h.mustCreateHabit(t, "u1", "Meditate")

	morning := time.Date(2024, 2, 1, 8, 0, 0, 0, time.UTC)
	evening := time.Date(2024, 2, 1, 21, 30, 0, 0, time.UTC)

	first, err := h.logSvc.Log(ctx, services.LogHabitInput{
		HabitID: habit.ID, UserID: "u1", LogDate: morning, Completed: false, Notes: "skipped",
	})
	require.NoError(t, err)
	assert.False(t, first.Updated)

	second, err := h.logSvc.Log(ctx, services.LogHabitInput{
		HabitID: habit.ID, UserID: "u1", LogDate: evening, Completed: true, Notes: "made it after all",
	})
	require.NoError(t, err)
	assert.True(t, second.Updated, "same calendar day flips the existing row")
	assert.Equal(t, first.Log.ID, second.Log.ID)
	assert.True(t, second.Log.Completed)

	logs, err := h.logSvc.ListByHabitID(ctx, habit.ID, "u1", time.Time{}, time.Now().UTC())
	require.NoError(t, err)
	assert.Len(t, logs, 1, "one row per day, never two")
}

func TestLogService_TwinDrawHappensOnEveryLog(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	habit := h.mustCreateHabit(t, "u1", "Meditate")

	res, err := h.logSvc.Log(ctx, services.LogHabitInput{
		HabitID: habit.ID, UserID: "u1", LogDate: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), Completed: true,
	})
	require.NoError(t, err)
	require.NotNil(t, res.Twin)

	if res.TwinCompleted {
		assert.Greater(t, res.Twin.Streak, 0)
	} else {
		assert.Equal(t, 0, res.Twin.Streak)
	}
}

func TestLogService_RejectsForeignHabit(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	habit := h.mustCreateHabit(t, "u1", "Meditate")

	_, err := h.logSvc.Log(ctx, services.LogHabitInput{
		HabitID: habit.ID, UserID: "intruder", LogDate: time.Now().UTC(), Completed: true,
	})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestLogService_RefreshesStreakCache(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	habit := h.mustCreateHabit(t, "u1", "Meditate")

	base := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		h.mustLog(t, habit.ID, "u1", base.AddDate(0, 0, i), true)
	}

	assert.Eventually(t, func() bool {
		stored, err := h.habitSvc.GetByID(ctx, habit.ID, "u1")
		return err == nil && stored.CurrentStreak == 3 && stored.LongestStreak == 3
	}, 2*time.Second, 10*time.Millisecond, "worker catches the cache up")
}
