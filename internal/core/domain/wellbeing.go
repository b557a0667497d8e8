package domain

import (
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidDailyLimit    = errors.New("daily limit must be positive")
	ErrInvalidBreakInterval = errors.New("break interval must be positive")
	ErrPlanAlreadyInactive  = errors.New("detox plan is already inactive")
)

// DetoxPlan is a self-imposed screen-time budget. The wellbeing score
// only cares whether any plan is active; the achievement engine counts
// the completed (deactivated) ones.
type DetoxPlan struct {
	ID                string     `json:"id" db:"id"`
	UserID            string     `json:"user_id" db:"user_id"`
	DailyLimitMinutes int        `json:"daily_limit_minutes" db:"daily_limit_minutes"`
	StartDate         time.Time  `json:"start_date" db:"start_date"`
	EndDate           *time.Time `json:"end_date,omitempty" db:"end_date"`
	IsActive          bool       `json:"is_active" db:"is_active"`

	EnableAppBlocking     bool `json:"enable_app_blocking" db:"enable_app_blocking"`
	EnableNotifications   bool `json:"enable_notifications" db:"enable_notifications"`
	EnableBreakReminders  bool `json:"enable_break_reminders" db:"enable_break_reminders"`
	BreakIntervalMinutes  int  `json:"break_interval_minutes" db:"break_interval_minutes"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

func NewDetoxPlan(userID string, dailyLimit, breakInterval int) (*DetoxPlan, error) {
	if userID == "" {
		return nil, ErrHabitInvalidUserID
	}
	if dailyLimit <= 0 {
		return nil, ErrInvalidDailyLimit
	}
	if breakInterval <= 0 {
		breakInterval = 60
	}

	now := time.Now().UTC()

	return &DetoxPlan{
		ID:                   uuid.New().String(),
		UserID:               userID,
		DailyLimitMinutes:    dailyLimit,
		StartDate:            Day(now),
		IsActive:             true,
		EnableNotifications:  true,
		EnableBreakReminders: true,
		BreakIntervalMinutes: breakInterval,
		CreatedAt:            now,
	}, nil
}

// Deactivate completes the plan, stamping the end date.
func (p *DetoxPlan) Deactivate() error {
	if !p.IsActive {
		return ErrPlanAlreadyInactive
	}
	now := Day(time.Now().UTC())
	p.IsActive = false
	p.EndDate = &now
	return nil
}

// AppLimit is a per-app daily usage cap.
type AppLimit struct {
	ID                string    `json:"id" db:"id"`
	UserID            string    `json:"user_id" db:"user_id"`
	AppName           string    `json:"app_name" db:"app_name"`
	DailyLimitMinutes int       `json:"daily_limit_minutes" db:"daily_limit_minutes"`
	IsActive          bool      `json:"is_active" db:"is_active"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
}

func NewAppLimit(userID, appName string, dailyLimit int) (*AppLimit, error) {
	if userID == "" {
		return nil, ErrHabitInvalidUserID
	}
	if appName == "" {
		return nil, ErrScreenTimeAppEmpty
	}
	if dailyLimit <= 0 {
		return nil, ErrInvalidDailyLimit
	}

	return &AppLimit{
		ID:                uuid.New().String(),
		UserID:            userID,
		AppName:           appName,
		DailyLimitMinutes: dailyLimit,
		IsActive:          true,
		CreatedAt:         time.Now().UTC(),
	}, nil
}

type TrendLabel string

const (
	TrendSignificantDecrease TrendLabel = "significant_decrease"
	TrendGradualDecrease     TrendLabel = "gradual_decrease"
	TrendSlightIncrease      TrendLabel = "slight_increase"
	TrendSignificantIncrease TrendLabel = "significant_increase"
	TrendInsufficientData    TrendLabel = "insufficient_data"
)

type ScoreBand string

const (
	BandExcellent      ScoreBand = "excellent"
	BandGood           ScoreBand = "good"
	BandNeedsAttention ScoreBand = "needs_attention"
	BandCritical       ScoreBand = "critical"
)

type LimitEffect string

const (
	LimitEffective   LimitEffect = "effective"
	LimitPartial     LimitEffect = "partial"
	LimitIneffective LimitEffect = "ineffective"
	LimitUnknown     LimitEffect = "unknown"
)

type WellbeingInsights struct {
	Score       int         `json:"score"`
	Band        ScoreBand   `json:"band"`
	Trend       TrendLabel  `json:"trend"`
	DetoxActive bool        `json:"detox_active"`
	LimitEffect LimitEffect `json:"limit_effect"`
}

// WellbeingScore combines average daily screen time with the presence
// of an active detox plan and the number of configured app limits.
// Bounded to [0, 100] whatever the inputs.
func WellbeingScore(dailyAvgMinutes float64, hasActiveDetox bool, appLimitCount int) int {
	base := 100 - dailyAvgMinutes/15
	if base < 0 {
		base = 0
	}

	detoxBonus := 0.0
	if hasActiveDetox {
		detoxBonus = 15
	}

	limitBonus := float64(appLimitCount * 3)
	if limitBonus > 15 {
		limitBonus = 15
	}

	score := base + detoxBonus + limitBonus
	if score > 100 {
		score = 100
	}
	return int(score)
}

func BandForScore(score int) ScoreBand {
	switch {
	case score >= 80:
		return BandExcellent
	case score >= 60:
		return BandGood
	case score >= 40:
		return BandNeedsAttention
	default:
		return BandCritical
	}
}

// ScreenTimeTrend classifies the usage trajectory with a degree-1
// least-squares fit of minutes against day offset. Needs at least 3
// rows spread over more than one distinct date, otherwise reports
// insufficient data rather than failing.
func ScreenTimeTrend(logs []*ScreenTimeLog) TrendLabel {
	if len(logs) < 3 {
		return TrendInsufficientData
	}

	sorted := make([]*ScreenTimeLog, len(logs))
	copy(sorted, logs)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].LogDate.Before(sorted[j].LogDate)
	})

	first := Day(sorted[0].LogDate)
	distinct := make(map[float64]bool)

	xs := make([]float64, len(sorted))
	ys := make([]float64, len(sorted))
	for i, l := range sorted {
		xs[i] = Day(l.LogDate).Sub(first).Hours() / 24
		ys[i] = float64(l.UsageMinutes)
		distinct[xs[i]] = true
	}

	if len(distinct) < 2 {
		return TrendInsufficientData
	}

	slope := leastSquaresSlope(xs, ys)
	switch {
	case slope < -10:
		return TrendSignificantDecrease
	case slope < 0:
		return TrendGradualDecrease
	case slope < 10:
		return TrendSlightIncrease
	default:
		return TrendSignificantIncrease
	}
}

func leastSquaresSlope(xs, ys []float64) float64 {
	n := float64(len(xs))
	var sumX, sumY, sumXY, sumXX float64
	for i := range xs {
		sumX += xs[i]
		sumY += ys[i]
		sumXY += xs[i] * ys[i]
		sumXX += xs[i] * xs[i]
	}

	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0
	}
	return (n*sumXY - sumX*sumY) / denom
}

// LimitEffectiveness classifies how much of the total usage still goes
// to the limited apps. Unknown when there are no limits or no usage.
func LimitEffectiveness(logs []*ScreenTimeLog, limits []*AppLimit) LimitEffect {
	if len(limits) == 0 || len(logs) == 0 {
		return LimitUnknown
	}

	limited := make(map[string]bool, len(limits))
	for _, l := range limits {
		limited[l.AppName] = true
	}

	total := 0
	limitedUsage := 0
	for _, l := range logs {
		total += l.UsageMinutes
		if limited[l.AppName] {
			limitedUsage += l.UsageMinutes
		}
	}
	if total == 0 {
		return LimitUnknown
	}

	share := float64(limitedUsage) / float64(total) * 100
	switch {
	case share < 30:
		return LimitEffective
	case share < 60:
		return LimitPartial
	default:
		return LimitIneffective
	}
}
