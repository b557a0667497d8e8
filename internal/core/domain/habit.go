package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrHabitNameEmpty     = errors.New("habit name cannot be empty")
	ErrHabitNameTooLong   = errors.New("habit name is too long (max 100 chars)")
	ErrHabitDescTooLong   = errors.New("habit description is too long (max 500 chars)")
	ErrHabitInvalidUserID = errors.New("invalid user id")
	ErrInvalidFrequency   = errors.New("invalid frequency (must be daily or weekly)")
	ErrInvalidGoal        = errors.New("goal cannot be negative")
)

const (
	FrequencyDaily  = "daily"
	FrequencyWeekly = "weekly"
	MaxNameLen      = 100
	MaxDescLen      = 500
)

type Habit struct {
	ID          string `json:"id" db:"id"`
	UserID      string `json:"user_id" db:"user_id"`
	Name        string `json:"name" db:"name"`
	Description string `json:"description,omitempty" db:"description"`
	Frequency   string `json:"frequency" db:"frequency"`
	Goal        int    `json:"goal" db:"goal"`

	// Cached streak state, maintained by the streak worker.
	// Recomputation from raw logs stays the source of truth.
	CurrentStreak int `json:"current_streak" db:"current_streak"`
	LongestStreak int `json:"longest_streak" db:"longest_streak"`

	Version   int        `json:"version" db:"version"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}

func validateHabit(name, desc, frequency string, goal int) error {
	if strings.TrimSpace(name) == "" {
		return ErrHabitNameEmpty
	}
	if len(strings.TrimSpace(name)) > MaxNameLen {
		return ErrHabitNameTooLong
	}
	if len(desc) > MaxDescLen {
		return ErrHabitDescTooLong
	}
	switch frequency {
	case FrequencyDaily, FrequencyWeekly:
	default:
		return ErrInvalidFrequency
	}
	if goal < 0 {
		return ErrInvalidGoal
	}
	return nil
}

func NewHabit(userID, name, description, frequency string, goal int) (*Habit, error) {
	if userID == "" {
		return nil, ErrHabitInvalidUserID
	}

	if frequency == "" {
		frequency = FrequencyDaily
	}

	cleanDesc := strings.TrimSpace(description)
	if err := validateHabit(name, cleanDesc, frequency, goal); err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	return &Habit{
		ID:          uuid.New().String(),
		UserID:      userID,
		Name:        strings.TrimSpace(name),
		Description: cleanDesc,
		Frequency:   frequency,
		Goal:        goal,
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Update edits the habit definition. Completion history is never touched.
func (h *Habit) Update(name, description, frequency string, goal int) error {
	cleanDesc := strings.TrimSpace(description)

	if frequency == "" {
		frequency = h.Frequency
	}

	if err := validateHabit(name, cleanDesc, frequency, goal); err != nil {
		return err
	}

	h.Name = strings.TrimSpace(name)
	h.Description = cleanDesc
	h.Frequency = frequency
	h.Goal = goal
	h.UpdatedAt = time.Now().UTC()

	return nil
}

// ApplyStreaks overwrites the cached streak state with recomputed values.
func (h *Habit) ApplyStreaks(current, longest int) {
	h.CurrentStreak = current
	h.LongestStreak = longest
	h.UpdatedAt = time.Now().UTC()
}
