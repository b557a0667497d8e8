package workers

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/altrove/habitlens/internal/core/domain"
)

type HabitRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Habit, error)
	UpdateStreaks(ctx context.Context, id string, current, longest int) error
}

type LogRepository interface {
	ListByHabitID(ctx context.Context, habitID string, from, to time.Time) ([]*domain.HabitLog, error)
}

type StreakJob struct {
	HabitID string
}

// StreakWorker refreshes the cached streak columns after each log
// write. The cache only serves list views; detail endpoints recompute
// from raw logs, so a dropped job costs staleness, not correctness.
type StreakWorker struct {
	habitRepo HabitRepository
	logRepo   LogRepository
	logger    *logrus.Logger
	jobs      chan StreakJob
}

func NewStreakWorker(hRepo HabitRepository, lRepo LogRepository, logger *logrus.Logger) *StreakWorker {
	return &StreakWorker{
		habitRepo: hRepo,
		logRepo:   lRepo,
		logger:    logger,
		jobs:      make(chan StreakJob, 100),
	}
}

func (w *StreakWorker) Start(ctx context.Context) {
	go func() {
		w.logger.Info("streak worker started")
		for {
			select {
			case job := <-w.jobs:
				w.processJob(ctx, job)
			case <-ctx.Done():
				w.logger.Info("streak worker shutting down")
				return
			}
		}
	}()
}

// Enqueue never blocks the caller: when the queue is full the job is
// dropped and the cache catches up on the next write.
func (w *StreakWorker) Enqueue(habitID string) {
	select {
	case w.jobs <- StreakJob{HabitID: habitID}:
	default:
		w.logger.WithField("habit_id", habitID).Warn("streak worker queue full, dropping job")
	}
}

func (w *StreakWorker) processJob(ctx context.Context, job StreakJob) {
	habit, err := w.habitRepo.GetByID(ctx, job.HabitID)
	if err != nil {
		w.logger.WithError(err).WithField("habit_id", job.HabitID).Error("streak worker: fetch habit")
		return
	}

	logs, err := w.logRepo.ListByHabitID(ctx, job.HabitID, time.Time{}, time.Now().UTC())
	if err != nil {
		w.logger.WithError(err).WithField("habit_id", job.HabitID).Error("streak worker: fetch logs")
		return
	}

	current := domain.CurrentStreak(logs)
	longest := domain.LongestStreak(logs)

	if habit.CurrentStreak == current && habit.LongestStreak == longest {
		return
	}

	if err := w.habitRepo.UpdateStreaks(ctx, job.HabitID, current, longest); err != nil {
		w.logger.WithError(err).WithField("habit_id", job.HabitID).Error("streak worker: update streaks")
		return
	}

	w.logger.WithFields(logrus.Fields{
		"habit_id": job.HabitID,
		"current":  current,
		"longest":  longest,
	}).Debug("streaks refreshed")
}
