package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/altrove/habitlens/internal/core/services"
)

func TestScreenTimeService_Ingest(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	date := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	t.Run("Mixed batch stores valid rows and counts the rest", func(t *testing.T) {
		stored, skipped, err := h.screenSvc.Ingest(ctx, "u1", []services.ScreenTimeRow{
			{Date: date, AppName: "Instagram", UsageMinutes: 60},
			{Date: date, AppName: "", UsageMinutes: 30},
			{Date: date, AppName: "YouTube", UsageMinutes: -5},
			{Date: date, AppName: "YouTube", UsageMinutes: 40},
		}, "export.csv")

		require.NoError(t, err)
		assert.Equal(t, 2, stored)
		assert.Equal(t, 2, skipped)
	})

	t.Run("All-invalid batch is rejected", func(t *testing.T) {
		stored, skipped, err := h.screenSvc.Ingest(ctx, "u1", []services.ScreenTimeRow{
			{Date: date, AppName: "", UsageMinutes: 30},
		}, "")

		assert.ErrorIs(t, err, services.ErrNoScreenTimeRows)
		assert.Equal(t, 0, stored)
		assert.Equal(t, 1, skipped)
	})
}

func TestScreenTimeService_Summary(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	day1 := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 1)

	h.mustIngestScreenTime(t, "u1", day1, "Instagram", 60)
	h.mustIngestScreenTime(t, "u1", day1, "YouTube", 40)
	h.mustIngestScreenTime(t, "u1", day2, "Instagram", 30)

	summary, err := h.screenSvc.Summary(ctx, "u1", time.Time{}, time.Now().UTC())
	require.NoError(t, err)

	assert.Equal(t, 130, summary.TotalMinutes)
	assert.Equal(t, 2, summary.DaysObserved)
	assert.InDelta(t, 65.0, summary.DailyAverage, 0.001)
	assert.Equal(t, "Instagram", summary.TopApps[0].AppName)
	assert.Equal(t, 90, summary.TopApps[0].Minutes)
}

func TestScreenTimeService_WeekOverWeekChange(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	ref := time.Date(2024, 5, 14, 0, 0, 0, 0, time.UTC)

	// Previous week: 120 a day on one date. Current week: 90.
	h.mustIngestScreenTime(t, "u1", ref.AddDate(0, 0, -10), "Instagram", 120)
	h.mustIngestScreenTime(t, "u1", ref.AddDate(0, 0, -2), "Instagram", 90)

	change, err := h.screenSvc.WeekOverWeekChange(ctx, "u1", ref)
	require.NoError(t, err)
	assert.InDelta(t, -25.0, change, 0.001)

	t.Run("No previous data reports zero", func(t *testing.T) {
		change, err := h.screenSvc.WeekOverWeekChange(ctx, "u2", ref)
		require.NoError(t, err)
		assert.Equal(t, 0.0, change)
	})
}
