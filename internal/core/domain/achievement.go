package domain

import (
	"fmt"
	"time"
)

// CriteriaKind selects which user statistic an achievement threshold
// applies to. Unknown kinds are inert: they are never earned and
// report zero progress, but never fail evaluation.
type CriteriaKind string

const (
	CriteriaStreak      CriteriaKind = "streak"
	CriteriaHabits      CriteriaKind = "habits"
	CriteriaCompletion  CriteriaKind = "completion"
	CriteriaConsistency CriteriaKind = "consistency"
	CriteriaDetox       CriteriaKind = "detox"
	CriteriaScreenTime  CriteriaKind = "screentime"
	CriteriaPerfectWeek CriteriaKind = "perfect_week"
)

// Achievement is an immutable badge definition, seeded once and
// read-only to the engine.
type Achievement struct {
	ID          string       `json:"id" db:"id"`
	Name        string       `json:"name" db:"name"`
	Description string       `json:"description" db:"description"`
	Icon        string       `json:"icon" db:"icon"`
	Kind        CriteriaKind `json:"kind" db:"kind"`
	Threshold   int          `json:"threshold" db:"threshold"`
}

// RequirementText renders the unlock condition for locked-badge views.
func (a *Achievement) RequirementText() string {
	switch a.Kind {
	case CriteriaStreak:
		return fmt.Sprintf("Maintain a streak of %d days for any habit", a.Threshold)
	case CriteriaHabits:
		return fmt.Sprintf("Create %d habits", a.Threshold)
	case CriteriaCompletion:
		return fmt.Sprintf("Achieve a %d%% completion rate across all habits", a.Threshold)
	case CriteriaConsistency:
		return fmt.Sprintf("Log habits for %d consecutive days", a.Threshold)
	case CriteriaDetox:
		return fmt.Sprintf("Complete %d digital detox plans", a.Threshold)
	case CriteriaScreenTime:
		return fmt.Sprintf("Maintain average daily screen time below %s", formatMinutes(a.Threshold))
	case CriteriaPerfectWeek:
		return fmt.Sprintf("Complete all habits for %d days in a week", a.Threshold)
	default:
		return "Keep going to unlock this achievement"
	}
}

func formatMinutes(minutes int) string {
	h := minutes / 60
	m := minutes % 60
	switch {
	case h > 0 && m > 0:
		return fmt.Sprintf("%d hours %d minutes", h, m)
	case h > 0:
		return fmt.Sprintf("%d hours", h)
	default:
		return fmt.Sprintf("%d minutes", m)
	}
}

// UserAchievement records an earned badge. At most one exists per
// (user, achievement) pair; earning is terminal.
type UserAchievement struct {
	ID            string    `json:"id" db:"id"`
	UserID        string    `json:"user_id" db:"user_id"`
	AchievementID string    `json:"achievement_id" db:"achievement_id"`
	EarnedAt      time.Time `json:"earned_at" db:"earned_at"`
}

// LockedAchievement is a not-yet-earned badge plus how close the user
// is, for progress bars.
type LockedAchievement struct {
	Achievement Achievement `json:"achievement"`
	Progress    int         `json:"progress"`
	Requirement string      `json:"requirement"`
}

// AchievementOverview is the full badge page payload.
type AchievementOverview struct {
	Earned      []*Achievement       `json:"earned"`
	Locked      []*LockedAchievement `json:"locked"`
	NewlyEarned []*Achievement       `json:"newly_earned"`
	Percentage  int                  `json:"percentage"`
}
