package domain

import (
	"errors"
	"sort"
	"strings"
	"time"
)

var (
	ErrInvalidLog = errors.New("invalid habit log data")
)

// HabitLog is one daily check-in for a habit. At most one log per
// (habit, date) is enforced at the storage layer, but every calculator
// below tolerates duplicates by collapsing to distinct dates.
type HabitLog struct {
	ID      string `json:"id" db:"id"`
	HabitID string `json:"habit_id" db:"habit_id"`
	UserID  string `json:"user_id" db:"user_id"`

	LogDate   time.Time `json:"log_date" db:"log_date"`
	Completed bool      `json:"completed" db:"completed"`
	Notes     string    `json:"notes" db:"notes"`

	Version   int       `json:"version" db:"version"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

func NewHabitLog(habitID, userID string, date time.Time, completed bool, notes string) *HabitLog {
	now := time.Now().UTC()

	return &HabitLog{
		HabitID:   habitID,
		UserID:    userID,
		LogDate:   Day(date),
		Completed: completed,
		Notes:     notes,

		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (l *HabitLog) Validate() error {
	if strings.TrimSpace(l.HabitID) == "" {
		return errors.New("habit_id is required")
	}
	if strings.TrimSpace(l.UserID) == "" {
		return errors.New("user_id is required")
	}
	if l.LogDate.IsZero() {
		return errors.New("log_date is required")
	}
	return nil
}

// Day truncates a timestamp to UTC midnight. All log math works on
// calendar days, never time of day.
func Day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func distinctDatesDesc(logs []*HabitLog, completedOnly bool) []time.Time {
	seen := make(map[time.Time]bool)
	var dates []time.Time

	for _, l := range logs {
		if completedOnly && !l.Completed {
			continue
		}
		day := Day(l.LogDate)
		if !seen[day] {
			seen[day] = true
			dates = append(dates, day)
		}
	}

	sort.Slice(dates, func(i, j int) bool {
		return dates[i].After(dates[j])
	})

	return dates
}

func consecutiveDays(a, b time.Time) bool {
	return a.Sub(b).Hours() == 24
}

// CurrentStreak counts consecutive completed days ending at the most
// recent completed log. A single gap day ends the run. Incomplete logs
// are invisible to the streak.
func CurrentStreak(logs []*HabitLog) int {
	dates := distinctDatesDesc(logs, true)
	if len(dates) == 0 {
		return 0
	}

	streak := 1
	for i := 0; i < len(dates)-1; i++ {
		if consecutiveDays(dates[i], dates[i+1]) {
			streak++
		} else {
			break
		}
	}
	return streak
}

// LongestStreak is the longest run of consecutive completed days
// anywhere in the log history.
func LongestStreak(logs []*HabitLog) int {
	dates := distinctDatesDesc(logs, true)
	if len(dates) == 0 {
		return 0
	}

	longest := 1
	run := 1
	for i := 0; i < len(dates)-1; i++ {
		if consecutiveDays(dates[i], dates[i+1]) {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}
	return longest
}

// CompletionRate is completed-logs over total-logs as a percentage.
// The denominator is the log count, not calendar days: a habit logged
// on 2 of 30 days divides by 2. Empty input yields 0, never an error.
func CompletionRate(logs []*HabitLog) float64 {
	if len(logs) == 0 {
		return 0
	}

	completed := 0
	for _, l := range logs {
		if l.Completed {
			completed++
		}
	}
	return float64(completed) / float64(len(logs)) * 100
}

// LongestConsecutiveRun is the longest run of consecutive distinct log
// dates regardless of completion status. Used by the consistency
// achievement criteria.
func LongestConsecutiveRun(logs []*HabitLog) int {
	dates := distinctDatesDesc(logs, false)
	if len(dates) == 0 {
		return 0
	}

	longest := 1
	run := 1
	for i := 0; i < len(dates)-1; i++ {
		if consecutiveDays(dates[i], dates[i+1]) {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}
	return longest
}
