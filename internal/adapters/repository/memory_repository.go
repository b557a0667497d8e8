package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/altrove/habitlens/internal/core/domain"
)

// In-memory implementations of every repository port. They back the
// service tests and the end-to-end suite; the postgres adapters are the
// production counterparts.

type InMemoryHabitRepository struct {
	store map[string]*domain.Habit

	mu sync.RWMutex
}

func NewInMemoryHabitRepository() *InMemoryHabitRepository {
	return &InMemoryHabitRepository{
		store: make(map[string]*domain.Habit),
	}
}

func (r *InMemoryHabitRepository) Create(ctx context.Context, habit *domain.Habit) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	clone := *habit
	r.store[habit.ID] = &clone
	return nil
}

func (r *InMemoryHabitRepository) GetByID(ctx context.Context, id string) (*domain.Habit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	habit, ok := r.store[id]
	if !ok || habit.DeletedAt != nil {
		return nil, domain.ErrHabitNotFound
	}
	clone := *habit
	return &clone, nil
}

func (r *InMemoryHabitRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Habit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var habits []*domain.Habit
	for _, h := range r.store {
		if h.UserID == userID && h.DeletedAt == nil {
			clone := *h
			habits = append(habits, &clone)
		}
	}

	sort.Slice(habits, func(i, j int) bool {
		return habits[i].CreatedAt.Before(habits[j].CreatedAt)
	})

	return habits, nil
}

func (r *InMemoryHabitRepository) Update(ctx context.Context, habit *domain.Habit) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.store[habit.ID]
	if !ok || stored.DeletedAt != nil {
		return domain.ErrHabitNotFound
	}
	if stored.Version != habit.Version {
		return domain.ErrHabitConflict
	}

	clone := *habit
	clone.Version++
	r.store[habit.ID] = &clone
	habit.Version = clone.Version
	return nil
}

func (r *InMemoryHabitRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	h, ok := r.store[id]
	if !ok || h.DeletedAt != nil {
		return domain.ErrHabitNotFound
	}
	now := time.Now().UTC()
	h.DeletedAt = &now
	return nil
}

func (r *InMemoryHabitRepository) UpdateStreaks(ctx context.Context, id string, current, longest int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	h, ok := r.store[id]
	if !ok || h.DeletedAt != nil {
		return domain.ErrHabitNotFound
	}
	h.CurrentStreak = current
	h.LongestStreak = longest
	return nil
}

type InMemoryHabitLogRepository struct {
	store map[string]*domain.HabitLog

	mu sync.RWMutex
}

func NewInMemoryHabitLogRepository() *InMemoryHabitLogRepository {
	return &InMemoryHabitLogRepository{
		store: make(map[string]*domain.HabitLog),
	}
}

func (r *InMemoryHabitLogRepository) Create(ctx context.Context, log *domain.HabitLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	clone := *log
	r.store[log.ID] = &clone
	return nil
}

func (r *InMemoryHabitLogRepository) Update(ctx context.Context, log *domain.HabitLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.store[log.ID]; !ok {
		return domain.ErrLogNotFound
	}
	clone := *log
	r.store[log.ID] = &clone
	return nil
}

func (r *InMemoryHabitLogRepository) GetByHabitAndDate(ctx context.Context, habitID string, date time.Time) (*domain.HabitLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	day := domain.Day(date)
	for _, l := range r.store {
		if l.HabitID == habitID && domain.Day(l.LogDate).Equal(day) {
			clone := *l
			return &clone, nil
		}
	}
	return nil, domain.ErrLogNotFound
}

func inRange(date, from, to time.Time) bool {
	if !from.IsZero() && date.Before(domain.Day(from)) {
		return false
	}
	return !date.After(to)
}

func (r *InMemoryHabitLogRepository) ListByHabitID(ctx context.Context, habitID string, from, to time.Time) ([]*domain.HabitLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var logs []*domain.HabitLog
	for _, l := range r.store {
		if l.HabitID == habitID && inRange(l.LogDate, from, to) {
			clone := *l
			logs = append(logs, &clone)
		}
	}
	sortLogsDesc(logs)
	return logs, nil
}

func (r *InMemoryHabitLogRepository) ListByUserID(ctx context.Context, userID string, from, to time.Time) ([]*domain.HabitLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var logs []*domain.HabitLog
	for _, l := range r.store {
		if l.UserID == userID && inRange(l.LogDate, from, to) {
			clone := *l
			logs = append(logs, &clone)
		}
	}
	sortLogsDesc(logs)
	return logs, nil
}

func sortLogsDesc(logs []*domain.HabitLog) {
	sort.Slice(logs, func(i, j int) bool {
		return logs[i].LogDate.After(logs[j].LogDate)
	})
}

type InMemoryScreenTimeRepository struct {
	store []*domain.ScreenTimeLog

	mu sync.RWMutex
}

func NewInMemoryScreenTimeRepository() *InMemoryScreenTimeRepository {
	return &InMemoryScreenTimeRepository{}
}

func (r *InMemoryScreenTimeRepository) CreateBatch(ctx context.Context, logs []*domain.ScreenTimeLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, l := range logs {
		clone := *l
		r.store = append(r.store, &clone)
	}
	return nil
}

func (r *InMemoryScreenTimeRepository) ListByUserID(ctx context.Context, userID string, from, to time.Time) ([]*domain.ScreenTimeLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var logs []*domain.ScreenTimeLog
	for _, l := range r.store {
		if l.UserID == userID && inRange(domain.Day(l.LogDate), from, to) {
			clone := *l
			logs = append(logs, &clone)
		}
	}
	return logs, nil
}

type InMemoryAchievementRepository struct {
	definitions []*domain.Achievement
	grants      map[string]map[string]*domain.UserAchievement

	mu sync.RWMutex
}

func NewInMemoryAchievementRepository(definitions []*domain.Achievement) *InMemoryAchievementRepository {
	return &InMemoryAchievementRepository{
		definitions: definitions,
		grants:      make(map[string]map[string]*domain.UserAchievement),
	}
}

func (r *InMemoryAchievementRepository) ListDefinitions(ctx context.Context) ([]*domain.Achievement, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Achievement, len(r.definitions))
	copy(out, r.definitions)
	return out, nil
}

func (r *InMemoryAchievementRepository) ListGrants(ctx context.Context, userID string) ([]*domain.UserAchievement, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*domain.UserAchievement
	for _, g := range r.grants[userID] {
		clone := *g
		out = append(out, &clone)
	}
	return out, nil
}

func (r *InMemoryAchievementRepository) InsertGrant(ctx context.Context, grant *domain.UserAchievement) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.grants[grant.UserID] == nil {
		r.grants[grant.UserID] = make(map[string]*domain.UserAchievement)
	}
	if _, exists := r.grants[grant.UserID][grant.AchievementID]; exists {
		return nil
	}
	clone := *grant
	r.grants[grant.UserID][grant.AchievementID] = &clone
	return nil
}

type InMemoryDetoxPlanRepository struct {
	store map[string]*domain.DetoxPlan

	mu sync.RWMutex
}

func NewInMemoryDetoxPlanRepository() *InMemoryDetoxPlanRepository {
	return &InMemoryDetoxPlanRepository{
		store: make(map[string]*domain.DetoxPlan),
	}
}

func (r *InMemoryDetoxPlanRepository) Create(ctx context.Context, plan *domain.DetoxPlan) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	clone := *plan
	r.store[plan.ID] = &clone
	return nil
}

func (r *InMemoryDetoxPlanRepository) Update(ctx context.Context, plan *domain.DetoxPlan) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.store[plan.ID]; !ok {
		return domain.ErrDetoxPlanNotFound
	}
	clone := *plan
	r.store[plan.ID] = &clone
	return nil
}

func (r *InMemoryDetoxPlanRepository) GetByID(ctx context.Context, id string) (*domain.DetoxPlan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.store[id]
	if !ok {
		return nil, domain.ErrDetoxPlanNotFound
	}
	clone := *p
	return &clone, nil
}

func (r *InMemoryDetoxPlanRepository) ListActive(ctx context.Context, userID string) ([]*domain.DetoxPlan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var plans []*domain.DetoxPlan
	for _, p := range r.store {
		if p.UserID == userID && p.IsActive {
			clone := *p
			plans = append(plans, &clone)
		}
	}
	return plans, nil
}

func (r *InMemoryDetoxPlanRepository) CountInactive(ctx context.Context, userID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, p := range r.store {
		if p.UserID == userID && !p.IsActive {
			count++
		}
	}
	return count, nil
}

type InMemoryAppLimitRepository struct {
	store map[string]*domain.AppLimit

	mu sync.RWMutex
}

func NewInMemoryAppLimitRepository() *InMemoryAppLimitRepository {
	return &InMemoryAppLimitRepository{
		store: make(map[string]*domain.AppLimit),
	}
}

func (r *InMemoryAppLimitRepository) Create(ctx context.Context, limit *domain.AppLimit) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	clone := *limit
	r.store[limit.ID] = &clone
	return nil
}

func (r *InMemoryAppLimitRepository) Update(ctx context.Context, limit *domain.AppLimit) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.store[limit.ID]; !ok {
		return domain.ErrAppLimitNotFound
	}
	clone := *limit
	r.store[limit.ID] = &clone
	return nil
}

func (r *InMemoryAppLimitRepository) GetByID(ctx context.Context, id string) (*domain.AppLimit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	l, ok := r.store[id]
	if !ok {
		return nil, domain.ErrAppLimitNotFound
	}
	clone := *l
	return &clone, nil
}

func (r *InMemoryAppLimitRepository) GetByUserAndApp(ctx context.Context, userID, appName string) (*domain.AppLimit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, l := range r.store {
		if l.UserID == userID && strings.EqualFold(l.AppName, appName) {
			clone := *l
			return &clone, nil
		}
	}
	return nil, domain.ErrAppLimitNotFound
}

func (r *InMemoryAppLimitRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.AppLimit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var limits []*domain.AppLimit
	for _, l := range r.store {
		if l.UserID == userID {
			clone := *l
			limits = append(limits, &clone)
		}
	}
	return limits, nil
}

func (r *InMemoryAppLimitRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.store[id]; !ok {
		return domain.ErrAppLimitNotFound
	}
	delete(r.store, id)
	return nil
}

type InMemoryTwinRepository struct {
	store map[string]*domain.DigitalTwin

	mu sync.RWMutex
}

func NewInMemoryTwinRepository() *InMemoryTwinRepository {
	return &InMemoryTwinRepository{
		store: make(map[string]*domain.DigitalTwin),
	}
}

func (r *InMemoryTwinRepository) Create(ctx context.Context, twin *domain.DigitalTwin) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	clone := *twin
	r.store[twin.HabitID] = &clone
	return nil
}

func (r *InMemoryTwinRepository) Update(ctx context.Context, twin *domain.DigitalTwin) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.store[twin.HabitID]; !ok {
		return domain.ErrTwinNotFound
	}
	clone := *twin
	r.store[twin.HabitID] = &clone
	return nil
}

func (r *InMemoryTwinRepository) GetByHabitID(ctx context.Context, habitID string) (*domain.DigitalTwin, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.store[habitID]
	if !ok {
		return nil, domain.ErrTwinNotFound
	}
	clone := *t
	return &clone, nil
}

func (r *InMemoryTwinRepository) DeleteByHabitID(ctx context.Context, habitID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.store[habitID]; !ok {
		return domain.ErrTwinNotFound
	}
	delete(r.store, habitID)
	return nil
}

type InMemoryUserRepository struct {
	store map[string]*domain.User

	mu sync.RWMutex
}

func NewInMemoryUserRepository() *InMemoryUserRepository {
	return &InMemoryUserRepository{
		store: make(map[string]*domain.User),
	}
}

func (r *InMemoryUserRepository) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.store {
		if u.Email == user.Email {
			return domain.ErrEmailAlreadyExists
		}
	}
	clone := *user
	r.store[user.ID] = &clone
	return nil
}

func (r *InMemoryUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	email = strings.ToLower(email)
	for _, u := range r.store {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *InMemoryUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.store[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}
