package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/altrove/habitlens/internal/core/domain"
)

var _ domain.HabitRepository = (*CachedHabitRepository)(nil)

// CachedHabitRepository decorates a HabitRepository with a per-user
// Redis cache over the habit list. Every write invalidates the owner's
// entry; streak refreshes from the worker invalidate too, so list
// responses never show stale streak columns.
type CachedHabitRepository struct {
	next   domain.HabitRepository
	cache  *redis.Client
	logger *logrus.Logger
}

func NewCachedHabitRepository(next domain.HabitRepository, cache *redis.Client, logger *logrus.Logger) *CachedHabitRepository {
	return &CachedHabitRepository{
		next:   next,
		cache:  cache,
		logger: logger,
	}
}

func (r *CachedHabitRepository) cacheKey(userID string) string {
	return fmt.Sprintf("habits:%s", userID)
}

func (r *CachedHabitRepository) invalidate(ctx context.Context, userID string) {
	if err := r.cache.Del(ctx, r.cacheKey(userID)).Err(); err != nil {
		r.logger.WithField("user_id", userID).WithError(err).Warn("cache invalidation failed")
	}
}

func (r *CachedHabitRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Habit, error) {
	key := r.cacheKey(userID)

	val, err := r.cache.Get(ctx, key).Result()
	if err == nil {
		var habits []*domain.Habit
		if err := json.Unmarshal([]byte(val), &habits); err == nil {
			return habits, nil
		}

		r.logger.WithField("user_id", userID).Warn("corrupted cache entry, cleaning up key")
		r.cache.Del(ctx, key)
	} else if err != redis.Nil {
		r.logger.WithError(err).Warn("cache read failed")
	}

	habits, err := r.next.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(habits); err == nil {
		if setErr := r.cache.Set(ctx, key, data, 30*time.Minute).Err(); setErr != nil {
			r.logger.WithError(setErr).Warn("cache write failed")
		}
	}

	return habits, nil
}

func (r *CachedHabitRepository) GetByID(ctx context.Context, id string) (*domain.Habit, error) {
	return r.next.GetByID(ctx, id)
}

func (r *CachedHabitRepository) Create(ctx context.Context, habit *domain.Habit) error {
	if err := r.next.Create(ctx, habit); err != nil {
		return err
	}
	r.invalidate(ctx, habit.UserID)
	return nil
}

func (r *CachedHabitRepository) Update(ctx context.Context, habit *domain.Habit) error {
	if err := r.next.Update(ctx, habit); err != nil {
		return err
	}
	r.invalidate(ctx, habit.UserID)
	return nil
}

func (r *CachedHabitRepository) Delete(ctx context.Context, id string) error {
	habit, err := r.next.GetByID(ctx, id)
	if err == nil && habit != nil {
		defer r.invalidate(ctx, habit.UserID)
	}

	return r.next.Delete(ctx, id)
}

func (r *CachedHabitRepository) UpdateStreaks(ctx context.Context, id string, current, longest int) error {
	habit, err := r.next.GetByID(ctx, id)
	if err == nil && habit != nil {
		defer r.invalidate(ctx, habit.UserID)
	}

	return r.next.UpdateStreaks(ctx, id, current, longest)
}
