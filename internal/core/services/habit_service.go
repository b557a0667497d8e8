package services

import (
	"context"
	"fmt"
	"time"

	"github.com/altrove/habitlens/internal/core/domain"
	"github.com/altrove/habitlens/internal/core/workers"
)

type HabitService struct {
	repo    domain.HabitRepository
	logRepo domain.HabitLogRepository
	twins   *TwinService
	worker  *workers.StreakWorker
}

func NewHabitService(repo domain.HabitRepository, logRepo domain.HabitLogRepository, twins *TwinService, worker *workers.StreakWorker) *HabitService {
	return &HabitService{
		repo:    repo,
		logRepo: logRepo,
		twins:   twins,
		worker:  worker,
	}
}

type CreateHabitInput struct {
	UserID      string
	Name        string
	Description string
	Frequency   string
	Goal        int
}

type UpdateHabitInput struct {
	ID          string
	UserID      string
	Name        string
	Description string
	Frequency   string
	Goal        int
	Version     int
}

func (s *HabitService) Create(ctx context.Context, input CreateHabitInput) (*domain.Habit, error) {
	habit, err := domain.NewHabit(input.UserID, input.Name, input.Description, input.Frequency, input.Goal)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, habit); err != nil {
		return nil, err
	}

	// The twin is a companion record; losing it leaves the habit
	// fully functional and RecordUserLog recreates it lazily.
	if _, err := s.twins.EnsureTwin(ctx, habit.UserID, habit.ID); err != nil {
		return habit, fmt.Errorf("habit created but twin seeding failed: %w", err)
	}

	return habit, nil
}

func (s *HabitService) GetByID(ctx context.Context, id string, userID string) (*domain.Habit, error) {
	habit, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if habit.UserID != userID {
		return nil, domain.ErrHabitNotFound
	}
	return habit, nil
}

func (s *HabitService) ListByUserID(ctx context.Context, userID string) ([]*domain.Habit, error) {
	return s.repo.ListByUserID(ctx, userID)
}

func (s *HabitService) Update(ctx context.Context, input UpdateHabitInput) (*domain.Habit, error) {
	habit, err := s.GetByID(ctx, input.ID, input.UserID)
	if err != nil {
		return nil, err
	}

	if input.Version > 0 && habit.Version != input.Version {
		return nil, fmt.Errorf("%w: client v%d vs server v%d", domain.ErrHabitConflict, input.Version, habit.Version)
	}

	name := input.Name
	if name == "" {
		name = habit.Name
	}
	desc := input.Description
	if desc == "" {
		desc = habit.Description
	}
	goal := habit.Goal
	if input.Goal > 0 {
		goal = input.Goal
	}

	if err := habit.Update(name, desc, input.Frequency, goal); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, habit); err != nil {
		return nil, err
	}
	return habit, nil
}

func (s *HabitService) Delete(ctx context.Context, id string, userID string) error {
	if _, err := s.GetByID(ctx, id, userID); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	return s.twins.RemoveForHabit(ctx, id)
}

// CurrentStreak recomputes the streak from raw logs. The cached columns
// on the habit row exist for cheap list views; this is the source of
// truth.
func (s *HabitService) CurrentStreak(ctx context.Context, habitID string, userID string) (int, error) {
	logs, err := s.ownedLogs(ctx, habitID, userID, time.Time{})
	if err != nil {
		return 0, err
	}
	return domain.CurrentStreak(logs), nil
}

func (s *HabitService) CompletionRate(ctx context.Context, habitID string, userID string) (float64, error) {
	logs, err := s.ownedLogs(ctx, habitID, userID, time.Time{})
	if err != nil {
		return 0, err
	}
	return domain.CompletionRate(logs), nil
}

// HabitDetail is the per-habit analytics payload for detail views.
type HabitDetail struct {
	Habit          *domain.Habit     `json:"habit"`
	CurrentStreak  int               `json:"current_streak"`
	LongestStreak  int               `json:"longest_streak"`
	CompletionRate float64           `json:"completion_rate"`
	RecentLogs     []*domain.HabitLog `json:"recent_logs"`
}

// Detail bundles the streaks and rate in one round trip. Streaks come
// from full history; the recent-log window is 30 days.
func (s *HabitService) Detail(ctx context.Context, habitID string, userID string) (*HabitDetail, error) {
	habit, err := s.GetByID(ctx, habitID, userID)
	if err != nil {
		return nil, err
	}

	logs, err := s.logRepo.ListByHabitID(ctx, habitID, time.Time{}, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	cutoff := domain.Day(time.Now().UTC()).AddDate(0, 0, -30)
	recent := make([]*domain.HabitLog, 0, len(logs))
	for _, l := range logs {
		if !l.LogDate.Before(cutoff) {
			recent = append(recent, l)
		}
	}

	return &HabitDetail{
		Habit:          habit,
		CurrentStreak:  domain.CurrentStreak(logs),
		LongestStreak:  domain.LongestStreak(logs),
		CompletionRate: domain.CompletionRate(logs),
		RecentLogs:     recent,
	}, nil
}

func (s *HabitService) ownedLogs(ctx context.Context, habitID, userID string, from time.Time) ([]*domain.HabitLog, error) {
	if _, err := s.GetByID(ctx, habitID, userID); err != nil {
		return nil, err
	}
	return s.logRepo.ListByHabitID(ctx, habitID, from, time.Now().UTC())
}
