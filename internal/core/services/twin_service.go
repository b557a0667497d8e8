package services

import (
	"context"
	"errors"
	"math/rand"
	"sync"

	"github.com/altrove/habitlens/internal/core/domain"
)

// TwinService manages the simulated per-habit competitors. Every habit
// gets one twin at creation; each user log triggers one Bernoulli draw
// at the twin's own completion rate.
//
// The random source is injected so tests and simulations are
// reproducible. rand.Rand is not safe for concurrent use, hence the
// mutex around draws.
type TwinService struct {
	repo domain.TwinRepository

	mu  sync.Mutex
	rng *rand.Rand
}

func NewTwinService(repo domain.TwinRepository, rng *rand.Rand) *TwinService {
	return &TwinService{
		repo: repo,
		rng:  rng,
	}
}

// EnsureTwin creates the habit's twin if it does not exist yet. The
// seeded completion rate lands in [0.6, 0.9) and the starting streak in
// [0, 5].
func (s *TwinService) EnsureTwin(ctx context.Context, userID, habitID string) (*domain.DigitalTwin, error) {
	twin, err := s.repo.GetByHabitID(ctx, habitID)
	if err == nil {
		return twin, nil
	}
	if !errors.Is(err, domain.ErrTwinNotFound) {
		return nil, err
	}

	s.mu.Lock()
	rate := 0.6 + s.rng.Float64()*0.3
	streak := s.rng.Intn(6)
	s.mu.Unlock()

	twin = domain.NewDigitalTwin(userID, habitID, rate, streak)
	if err := s.repo.Create(ctx, twin); err != nil {
		return nil, err
	}
	return twin, nil
}

// RecordUserLog advances the twin by one draw in response to a user
// log. A missing twin is recreated first, so habits that predate the
// twin feature still compete.
func (s *TwinService) RecordUserLog(ctx context.Context, userID, habitID string) (*domain.DigitalTwin, bool, error) {
	twin, err := s.EnsureTwin(ctx, userID, habitID)
	if err != nil {
		return nil, false, err
	}

	s.mu.Lock()
	roll := s.rng.Float64()
	s.mu.Unlock()

	completed := twin.RecordDraw(roll)
	if err := s.repo.Update(ctx, twin); err != nil {
		return nil, false, err
	}
	return twin, completed, nil
}

func (s *TwinService) GetByHabitID(ctx context.Context, habitID string) (*domain.DigitalTwin, error) {
	return s.repo.GetByHabitID(ctx, habitID)
}

// RemoveForHabit drops the twin when its habit is deleted. A twin that
// was never created is not an error.
func (s *TwinService) RemoveForHabit(ctx context.Context, habitID string) error {
	err := s.repo.DeleteByHabitID(ctx, habitID)
	if errors.Is(err, domain.ErrTwinNotFound) {
		return nil
	}
	return err
}
