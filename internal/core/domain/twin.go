package domain

import (
	"time"

	"github.com/google/uuid"
)

// DigitalTwin is the simulated competitor attached to one habit. Its
// completion rate is fixed at creation; its streak advances by a
// Bernoulli draw whenever the user logs the habit.
type DigitalTwin struct {
	ID             string    `json:"id" db:"id"`
	UserID         string    `json:"user_id" db:"user_id"`
	HabitID        string    `json:"habit_id" db:"habit_id"`
	CompletionRate float64   `json:"completion_rate" db:"completion_rate"`
	Streak         int       `json:"streak" db:"streak"`
	LastUpdated    time.Time `json:"last_updated" db:"last_updated"`
}

func NewDigitalTwin(userID, habitID string, completionRate float64, streak int) *DigitalTwin {
	if completionRate < 0 {
		completionRate = 0
	}
	if completionRate > 1 {
		completionRate = 1
	}
	if streak < 0 {
		streak = 0
	}

	return &DigitalTwin{
		ID:             uuid.New().String(),
		UserID:         userID,
		HabitID:        habitID,
		CompletionRate: completionRate,
		Streak:         streak,
		LastUpdated:    time.Now().UTC(),
	}
}

// RecordDraw applies one Bernoulli trial: the twin completes its habit
// when roll < CompletionRate. The roll comes from an injected random
// source so simulations are reproducible.
func (t *DigitalTwin) RecordDraw(roll float64) bool {
	completed := roll < t.CompletionRate
	if completed {
		t.Streak++
	} else {
		t.Streak = 0
	}
	t.LastUpdated = time.Now().UTC()
	return completed
}
