package services

import (
	"context"
	"errors"
	"time"

	"github.com/altrove/habitlens/internal/core/domain"
	"github.com/altrove/habitlens/internal/core/workers"
)

type LogService struct {
	repo      domain.HabitLogRepository
	habitRepo domain.HabitRepository
	twins     *TwinService
	worker    *workers.StreakWorker
	achiever  *AchievementService
}

func NewLogService(repo domain.HabitLogRepository, habitRepo domain.HabitRepository, twins *TwinService, worker *workers.StreakWorker, achiever *AchievementService) *LogService {
	return &LogService{
		repo:      repo,
		habitRepo: habitRepo,
		twins:     twins,
		worker:    worker,
		achiever:  achiever,
	}
}

type LogHabitInput struct {
	HabitID   string
	UserID    string
	LogDate   time.Time
	Completed bool
	Notes     string
}

// LogResult reports what one check-in did: the stored log, whether an
// existing same-day log was overwritten, the twin's draw, and any
// achievements the check-in unlocked.
type LogResult struct {
	Log           *domain.HabitLog      `json:"log"`
	Updated       bool                  `json:"updated"`
	Twin          *domain.DigitalTwin   `json:"twin,omitempty"`
	TwinCompleted bool                  `json:"twin_completed"`
	NewlyEarned   []*domain.Achievement `json:"newly_earned,omitempty"`
}

// Log records a daily check-in. Logging the same habit twice on one
// calendar day updates the existing row instead of inserting a second
// one, so a day flips between done and missed without duplicate
// history.
func (s *LogService) Log(ctx context.Context, input LogHabitInput) (*LogResult, error) {
	habit, err := s.habitRepo.GetByID(ctx, input.HabitID)
	if err != nil {
		return nil, err
	}
	if habit.UserID != input.UserID {
		return nil, domain.ErrUnauthorized
	}

	date := input.LogDate
	if date.IsZero() {
		date = time.Now().UTC()
	}

	result := &LogResult{}

	existing, err := s.repo.GetByHabitAndDate(ctx, input.HabitID, domain.Day(date))
	switch {
	case err == nil:
		existing.Completed = input.Completed
		existing.Notes = input.Notes
		existing.Version++
		existing.UpdatedAt = time.Now().UTC()
		if err := s.repo.Update(ctx, existing); err != nil {
			return nil, err
		}
		result.Log = existing
		result.Updated = true
	case errors.Is(err, domain.ErrLogNotFound):
		log := domain.NewHabitLog(input.HabitID, input.UserID, date, input.Completed, input.Notes)
		if err := log.Validate(); err != nil {
			return nil, err
		}
		if err := s.repo.Create(ctx, log); err != nil {
			return nil, err
		}
		result.Log = log
	default:
		return nil, err
	}

	s.worker.Enqueue(input.HabitID)

	// The log row is already committed. Twin draws and achievement
	// evaluation are best effort on top of it.
	twin, twinCompleted, err := s.twins.RecordUserLog(ctx, input.UserID, input.HabitID)
	if err == nil {
		result.Twin = twin
		result.TwinCompleted = twinCompleted
	}

	if s.achiever != nil {
		if earned, err := s.achiever.Evaluate(ctx, input.UserID); err == nil {
			result.NewlyEarned = earned
		}
	}

	return result, nil
}

func (s *LogService) ListByHabitID(ctx context.Context, habitID string, userID string, from, to time.Time) ([]*domain.HabitLog, error) {
	habit, err := s.habitRepo.GetByID(ctx, habitID)
	if err != nil {
		return nil, err
	}
	if habit.UserID != userID {
		return nil, domain.ErrUnauthorized
	}

	return s.repo.ListByHabitID(ctx, habitID, from, to)
}

func (s *LogService) ListByUserID(ctx context.Context, userID string, from, to time.Time) ([]*domain.HabitLog, error) {
	return s.repo.ListByUserID(ctx, userID, from, to)
}
