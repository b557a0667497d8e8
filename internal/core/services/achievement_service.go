package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/altrove/habitlens/internal/core/domain"
)

type AchievementService struct {
	repo       domain.AchievementRepository
	habitRepo  domain.HabitRepository
	logRepo    domain.HabitLogRepository
	screenRepo domain.ScreenTimeRepository
	detoxRepo  domain.DetoxPlanRepository
}

func NewAchievementService(repo domain.AchievementRepository, habitRepo domain.HabitRepository, logRepo domain.HabitLogRepository, screenRepo domain.ScreenTimeRepository, detoxRepo domain.DetoxPlanRepository) *AchievementService {
	return &AchievementService{
		repo:       repo,
		habitRepo:  habitRepo,
		logRepo:    logRepo,
		screenRepo: screenRepo,
		detoxRepo:  detoxRepo,
	}
}

// userStats is everything the criteria predicates need, gathered once
// per evaluation.
type userStats struct {
	habitCount     int
	maxStreak      int
	completionRate float64
	consistency    int
	inactiveDetox  int
	screenAvg      float64
	hasScreenData  bool
	perfectDays    int
}

func (s *AchievementService) gatherStats(ctx context.Context, userID string) (*userStats, error) {
	now := time.Now().UTC()
	today := domain.Day(now)

	habits, err := s.habitRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	logs, err := s.logRepo.ListByUserID(ctx, userID, time.Time{}, now)
	if err != nil {
		return nil, err
	}

	byHabit := make(map[string][]*domain.HabitLog)
	for _, l := range logs {
		byHabit[l.HabitID] = append(byHabit[l.HabitID], l)
	}

	stats := &userStats{
		habitCount:     len(habits),
		completionRate: domain.CompletionRate(logs),
		consistency:    domain.LongestConsecutiveRun(logs),
	}

	for _, h := range habits {
		if streak := domain.CurrentStreak(byHabit[h.ID]); streak > stats.maxStreak {
			stats.maxStreak = streak
		}
	}

	stats.inactiveDetox, err = s.detoxRepo.CountInactive(ctx, userID)
	if err != nil {
		return nil, err
	}

	screenLogs, err := s.screenRepo.ListByUserID(ctx, userID, today.AddDate(0, 0, -6), today)
	if err != nil {
		return nil, err
	}
	summary := domain.SummarizeScreenTime(screenLogs, 0)
	stats.screenAvg = summary.DailyAverage
	stats.hasScreenData = summary.DaysObserved > 0

	// A perfect day has a completed log for every habit the user has.
	if len(habits) > 0 {
		completedPerDay := make(map[time.Time]map[string]bool)
		missedPerDay := make(map[time.Time]bool)
		for _, l := range logs {
			d := domain.Day(l.LogDate)
			if d.Before(today.AddDate(0, 0, -6)) || d.After(today) {
				continue
			}
			if !l.Completed {
				missedPerDay[d] = true
				continue
			}
			if completedPerDay[d] == nil {
				completedPerDay[d] = make(map[string]bool)
			}
			completedPerDay[d][l.HabitID] = true
		}
		for d, done := range completedPerDay {
			if !missedPerDay[d] && len(done) == len(habits) {
				stats.perfectDays++
			}
		}
	}

	return stats, nil
}

// met reports whether the achievement's criteria holds. Unknown kinds
// are inert: never met, never an error.
func (st *userStats) met(a *domain.Achievement) bool {
	switch a.Kind {
	case domain.CriteriaStreak:
		return st.maxStreak >= a.Threshold
	case domain.CriteriaHabits:
		return st.habitCount >= a.Threshold
	case domain.CriteriaCompletion:
		return st.completionRate >= float64(a.Threshold)
	case domain.CriteriaConsistency:
		return st.consistency >= a.Threshold
	case domain.CriteriaDetox:
		return st.inactiveDetox >= a.Threshold
	case domain.CriteriaScreenTime:
		return st.hasScreenData && st.screenAvg <= float64(a.Threshold)
	case domain.CriteriaPerfectWeek:
		return st.perfectDays >= a.Threshold
	default:
		return false
	}
}

// progress is how close the user is, 0..100. Screen time is inverted:
// at or under the threshold is 100, and progress decays linearly to 0
// across a grace band up to 1.5 times the threshold.
func (st *userStats) progress(a *domain.Achievement) int {
	if a.Threshold <= 0 {
		return 0
	}

	ratio := func(current float64) int {
		p := current / float64(a.Threshold) * 100
		if p < 0 {
			p = 0
		}
		if p > 100 {
			p = 100
		}
		return int(p)
	}

	switch a.Kind {
	case domain.CriteriaStreak:
		return ratio(float64(st.maxStreak))
	case domain.CriteriaHabits:
		return ratio(float64(st.habitCount))
	case domain.CriteriaCompletion:
		return ratio(st.completionRate)
	case domain.CriteriaConsistency:
		return ratio(float64(st.consistency))
	case domain.CriteriaDetox:
		return ratio(float64(st.inactiveDetox))
	case domain.CriteriaScreenTime:
		if !st.hasScreenData {
			return 0
		}
		limit := float64(a.Threshold)
		if st.screenAvg <= limit {
			return 100
		}
		grace := limit * 1.5
		if st.screenAvg >= grace {
			return 0
		}
		return int((grace - st.screenAvg) / (grace - limit) * 100)
	case domain.CriteriaPerfectWeek:
		return ratio(float64(st.perfectDays))
	default:
		return 0
	}
}

// Evaluate grants every achievement whose criteria now holds and
// returns the newly earned ones. Granting is idempotent twice over:
// the earned set is checked first, and the insert itself treats a
// duplicate as a no-op, so concurrent evaluations cannot double-grant.
func (s *AchievementService) Evaluate(ctx context.Context, userID string) ([]*domain.Achievement, error) {
	defs, err := s.repo.ListDefinitions(ctx)
	if err != nil {
		return nil, err
	}

	grants, err := s.repo.ListGrants(ctx, userID)
	if err != nil {
		return nil, err
	}
	earned := make(map[string]bool, len(grants))
	for _, g := range grants {
		earned[g.AchievementID] = true
	}

	stats, err := s.gatherStats(ctx, userID)
	if err != nil {
		return nil, err
	}

	var newly []*domain.Achievement
	for _, def := range defs {
		if earned[def.ID] || !stats.met(def) {
			continue
		}

		grant := &domain.UserAchievement{
			ID:            uuid.New().String(),
			UserID:        userID,
			AchievementID: def.ID,
			EarnedAt:      time.Now().UTC(),
		}
		if err := s.repo.InsertGrant(ctx, grant); err != nil {
			return newly, err
		}
		newly = append(newly, def)
	}

	return newly, nil
}

// Overview assembles the badge page: earned badges, locked ones with
// progress, and the completion percentage. Runs an evaluation first so
// the page never lags behind the data.
func (s *AchievementService) Overview(ctx context.Context, userID string) (*domain.AchievementOverview, error) {
	newly, err := s.Evaluate(ctx, userID)
	if err != nil {
		return nil, err
	}

	defs, err := s.repo.ListDefinitions(ctx)
	if err != nil {
		return nil, err
	}
	grants, err := s.repo.ListGrants(ctx, userID)
	if err != nil {
		return nil, err
	}
	earnedSet := make(map[string]bool, len(grants))
	for _, g := range grants {
		earnedSet[g.AchievementID] = true
	}

	stats, err := s.gatherStats(ctx, userID)
	if err != nil {
		return nil, err
	}

	overview := &domain.AchievementOverview{
		Earned:      []*domain.Achievement{},
		Locked:      []*domain.LockedAchievement{},
		NewlyEarned: newly,
	}

	for _, def := range defs {
		if earnedSet[def.ID] {
			overview.Earned = append(overview.Earned, def)
			continue
		}
		overview.Locked = append(overview.Locked, &domain.LockedAchievement{
			Achievement: *def,
			Progress:    stats.progress(def),
			Requirement: def.RequirementText(),
		})
	}

	if len(defs) > 0 {
		overview.Percentage = len(overview.Earned) * 100 / len(defs)
	}

	return overview, nil
}
