package domain

import (
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrScreenTimeAppEmpty   = errors.New("app name cannot be empty")
	ErrNegativeUsageMinutes = errors.New("usage minutes cannot be negative")
)

// ScreenTimeLog is one uploaded per-app-per-day usage row. Multiple rows
// for the same (user, date, app) are legitimate (multiple uploads) and
// are always summed, never deduplicated.
type ScreenTimeLog struct {
	ID           string    `json:"id" db:"id"`
	UserID       string    `json:"user_id" db:"user_id"`
	LogDate      time.Time `json:"log_date" db:"log_date"`
	AppName      string    `json:"app_name" db:"app_name"`
	UsageMinutes int       `json:"usage_minutes" db:"usage_minutes"`
	UploadFile   string    `json:"upload_file,omitempty" db:"upload_file"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

func NewScreenTimeLog(userID string, date time.Time, appName string, minutes int) (*ScreenTimeLog, error) {
	if userID == "" {
		return nil, ErrHabitInvalidUserID
	}
	if strings.TrimSpace(appName) == "" {
		return nil, ErrScreenTimeAppEmpty
	}
	if minutes < 0 {
		return nil, ErrNegativeUsageMinutes
	}

	return &ScreenTimeLog{
		ID:           uuid.New().String(),
		UserID:       userID,
		LogDate:      Day(date),
		AppName:      strings.TrimSpace(appName),
		UsageMinutes: minutes,
		CreatedAt:    time.Now().UTC(),
	}, nil
}

type AppUsage struct {
	AppName string `json:"app_name"`
	Minutes int    `json:"minutes"`
}

type ScreenTimeSummary struct {
	TotalMinutes int            `json:"total_minutes"`
	DaysObserved int            `json:"days_observed"`
	DailyAverage float64        `json:"daily_average"`
	TopApps      []AppUsage     `json:"top_apps"`
	AppTotals    map[string]int `json:"app_totals"`
}

// SummarizeScreenTime rolls raw rows into totals, per-app totals and the
// top-K apps. The daily average divides by the count of distinct dates
// that have at least one row, not by calendar days in the window; no
// rows means average 0. Tie-break between equal app totals is undefined.
func SummarizeScreenTime(logs []*ScreenTimeLog, topK int) ScreenTimeSummary {
	summary := ScreenTimeSummary{
		AppTotals: make(map[string]int),
		TopApps:   []AppUsage{},
	}

	days := make(map[time.Time]bool)
	for _, l := range logs {
		summary.TotalMinutes += l.UsageMinutes
		summary.AppTotals[l.AppName] += l.UsageMinutes
		days[Day(l.LogDate)] = true
	}

	summary.DaysObserved = len(days)
	if summary.DaysObserved > 0 {
		summary.DailyAverage = float64(summary.TotalMinutes) / float64(summary.DaysObserved)
	}

	for app, minutes := range summary.AppTotals {
		summary.TopApps = append(summary.TopApps, AppUsage{AppName: app, Minutes: minutes})
	}
	sort.Slice(summary.TopApps, func(i, j int) bool {
		return summary.TopApps[i].Minutes > summary.TopApps[j].Minutes
	})
	if topK > 0 && len(summary.TopApps) > topK {
		summary.TopApps = summary.TopApps[:topK]
	}

	return summary
}

// DailyTotals collapses rows into total minutes per distinct day.
func DailyTotals(logs []*ScreenTimeLog) map[time.Time]int {
	totals := make(map[time.Time]int)
	for _, l := range logs {
		totals[Day(l.LogDate)] += l.UsageMinutes
	}
	return totals
}

// WeekOverWeekChange is the percent change of the current average
// against the previous one, defined as 0 when there is no previous data.
func WeekOverWeekChange(currentAvg, previousAvg float64) float64 {
	if previousAvg == 0 {
		return 0
	}
	return (currentAvg - previousAvg) / previousAvg * 100
}
