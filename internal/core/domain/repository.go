package domain

import (
	"context"
	"errors"
	"time"
)

var (
	ErrHabitNotFound = errors.New("habit not found")
	ErrHabitConflict = errors.New("habit version conflict")
	ErrUnauthorized  = errors.New("resource does not belong to user")
)

type HabitRepository interface {
	// Create persists a new habit definition.
	Create(ctx context.Context, habit *Habit) error

	// GetByID retrieves an active (non-deleted) habit by id.
	GetByID(ctx context.Context, id string) (*Habit, error)

	// ListByUserID retrieves all of a user's active habits.
	ListByUserID(ctx context.Context, userID string) ([]*Habit, error)

	// Update modifies an existing habit. Implementations must enforce
	// optimistic locking on the version column.
	Update(ctx context.Context, habit *Habit) error

	// Delete soft-deletes a habit.
	Delete(ctx context.Context, id string) error

	// UpdateStreaks writes the cached streak columns without bumping
	// the habit's version.
	UpdateStreaks(ctx context.Context, id string, current, longest int) error
}

var (
	ErrLogNotFound = errors.New("habit log not found")
	ErrLogConflict = errors.New("habit log version conflict")
)

type HabitLogRepository interface {
	// Create persists a new daily log.
	Create(ctx context.Context, log *HabitLog) error

	// Update modifies an existing log under optimistic locking.
	Update(ctx context.Context, log *HabitLog) error

	// GetByHabitAndDate fetches the log for one habit on one calendar
	// day, ErrLogNotFound when absent. Used by the same-day upsert.
	GetByHabitAndDate(ctx context.Context, habitID string, date time.Time) (*HabitLog, error)

	// ListByHabitID retrieves a habit's logs in [from, to], newest
	// first. A zero from means no lower bound.
	ListByHabitID(ctx context.Context, habitID string, from, to time.Time) ([]*HabitLog, error)

	// ListByUserID retrieves all of a user's logs in [from, to],
	// across every habit, newest first. A zero from means no lower
	// bound.
	ListByUserID(ctx context.Context, userID string, from, to time.Time) ([]*HabitLog, error)
}

type ScreenTimeRepository interface {
	// CreateBatch persists a set of uploaded rows in one transaction.
	CreateBatch(ctx context.Context, logs []*ScreenTimeLog) error

	// ListByUserID retrieves a user's rows in [from, to].
	ListByUserID(ctx context.Context, userID string, from, to time.Time) ([]*ScreenTimeLog, error)
}

var (
	ErrAchievementNotFound = errors.New("achievement not found")
)

type AchievementRepository interface {
	// ListDefinitions returns every seeded achievement definition.
	ListDefinitions(ctx context.Context) ([]*Achievement, error)

	// ListGrants returns the user's earned achievements.
	ListGrants(ctx context.Context, userID string) ([]*UserAchievement, error)

	// InsertGrant records an earned achievement. Safe to call twice for
	// the same pair: a duplicate is a silent no-op, never an error.
	InsertGrant(ctx context.Context, grant *UserAchievement) error
}

var (
	ErrDetoxPlanNotFound = errors.New("detox plan not found")
	ErrAppLimitNotFound  = errors.New("app limit not found")
)

type DetoxPlanRepository interface {
	Create(ctx context.Context, plan *DetoxPlan) error
	Update(ctx context.Context, plan *DetoxPlan) error
	GetByID(ctx context.Context, id string) (*DetoxPlan, error)

	// ListActive returns the user's active plans. Zero, one or many are
	// all legal states.
	ListActive(ctx context.Context, userID string) ([]*DetoxPlan, error)

	// CountInactive counts completed plans, for the detox criteria.
	CountInactive(ctx context.Context, userID string) (int, error)
}

type AppLimitRepository interface {
	Create(ctx context.Context, limit *AppLimit) error
	Update(ctx context.Context, limit *AppLimit) error
	GetByID(ctx context.Context, id string) (*AppLimit, error)
	GetByUserAndApp(ctx context.Context, userID, appName string) (*AppLimit, error)
	ListByUserID(ctx context.Context, userID string) ([]*AppLimit, error)
	Delete(ctx context.Context, id string) error
}

var (
	ErrTwinNotFound = errors.New("digital twin not found")
)

type TwinRepository interface {
	Create(ctx context.Context, twin *DigitalTwin) error
	Update(ctx context.Context, twin *DigitalTwin) error
	GetByHabitID(ctx context.Context, habitID string) (*DigitalTwin, error)
	DeleteByHabitID(ctx context.Context, habitID string) error
}

type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
}
