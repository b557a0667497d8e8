package services

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/altrove/habitlens/internal/core/domain"
)

// Correlation gates: a habit needs this many logs with same-day screen
// data, and each of the completed/missed groups needs this many points.
const (
	correlationMinLogs     = 3
	correlationMinPerGroup = 2
	correlationMinPercent  = 10.0
	reportWindowDays       = 7
)

type InsightService struct {
	habitRepo  domain.HabitRepository
	logRepo    domain.HabitLogRepository
	screenRepo domain.ScreenTimeRepository
	detoxRepo  domain.DetoxPlanRepository
	limitRepo  domain.AppLimitRepository
}

func NewInsightService(habitRepo domain.HabitRepository, logRepo domain.HabitLogRepository, screenRepo domain.ScreenTimeRepository, detoxRepo domain.DetoxPlanRepository, limitRepo domain.AppLimitRepository) *InsightService {
	return &InsightService{
		habitRepo:  habitRepo,
		logRepo:    logRepo,
		screenRepo: screenRepo,
		detoxRepo:  detoxRepo,
		limitRepo:  limitRepo,
	}
}

// Correlations contrasts each habit's completed days against its missed
// days in same-day total screen minutes. The percent difference is
// taken relative to the missed-day mean. When no habit clears the data
// gates, a single low-confidence placeholder comes back so callers
// never see an empty set.
func (s *InsightService) Correlations(ctx context.Context, userID string, window int) ([]*domain.Correlation, error) {
	now := time.Now().UTC()
	from := time.Time{}
	if window > 0 {
		from = domain.Day(now).AddDate(0, 0, -(window - 1))
	}

	habits, err := s.habitRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	logs, err := s.logRepo.ListByUserID(ctx, userID, from, now)
	if err != nil {
		return nil, err
	}
	byHabit := make(map[string][]*domain.HabitLog)
	for _, l := range logs {
		byHabit[l.HabitID] = append(byHabit[l.HabitID], l)
	}

	screenLogs, err := s.screenRepo.ListByUserID(ctx, userID, from, now)
	if err != nil {
		return nil, err
	}
	screenByDate := domain.DailyTotals(screenLogs)

	var correlations []*domain.Correlation
	for _, habit := range habits {
		var completed, missed []int
		matched := 0
		for _, l := range byHabit[habit.ID] {
			minutes, ok := screenByDate[domain.Day(l.LogDate)]
			if !ok {
				continue
			}
			matched++
			if l.Completed {
				completed = append(completed, minutes)
			} else {
				missed = append(missed, minutes)
			}
		}

		if matched < correlationMinLogs || len(completed) < correlationMinPerGroup || len(missed) < correlationMinPerGroup {
			continue
		}

		avgCompleted := mean(completed)
		avgMissed := mean(missed)
		if avgMissed == 0 {
			continue
		}

		diff := (avgMissed - avgCompleted) / avgMissed * 100
		if math.Abs(diff) <= correlationMinPercent {
			continue
		}

		direction := "less"
		if diff < 0 {
			direction = "more"
		}

		correlations = append(correlations, &domain.Correlation{
			HabitID:     habit.ID,
			Title:       fmt.Sprintf("%s & Screen Time", habit.Name),
			Description: fmt.Sprintf("Days when you complete '%s' have %d%% %s screen time.", habit.Name, int(math.Abs(diff)), direction),
			Strength:    clampStrength(diff),
		})
	}

	if len(correlations) == 0 {
		correlations = append(correlations, &domain.Correlation{
			Title:       "Habits & Screen Time",
			Description: "Not enough data to find strong correlations between your habits and screen time yet.",
			Strength:    30,
		})
	}

	return correlations, nil
}

func mean(xs []int) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0
	for _, x := range xs {
		sum += x
	}
	return float64(sum) / float64(len(xs))
}

func clampStrength(percentDiff float64) int {
	strength := int(math.Abs(percentDiff * 1.5))
	if strength > 100 {
		strength = 100
	}
	return strength
}

// Recommendations derives next actions from the trailing week. The
// daily average here divides by the fixed 7-day window so quiet days
// count against the user, unlike the aggregator's distinct-date
// average.
func (s *InsightService) Recommendations(ctx context.Context, userID string) ([]domain.Recommendation, error) {
	today := domain.Day(time.Now().UTC())
	weekAgo := today.AddDate(0, 0, -(reportWindowDays - 1))

	screenLogs, err := s.screenRepo.ListByUserID(ctx, userID, weekAgo, today)
	if err != nil {
		return nil, err
	}
	summary := domain.SummarizeScreenTime(screenLogs, 3)

	dailyAvg := 0.0
	if len(screenLogs) > 0 {
		dailyAvg = float64(summary.TotalMinutes) / reportWindowDays
	}

	active, err := s.detoxRepo.ListActive(ctx, userID)
	if err != nil {
		return nil, err
	}

	habits, err := s.habitRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	var recs []domain.Recommendation

	if dailyAvg > 240 {
		recs = append(recs, domain.Recommendation{
			Title:       "Reduce Screen Time",
			Description: "Your daily screen time is high. Try to reduce it by setting specific tech-free hours.",
			Category:    domain.RecommendationScreenTime,
		})
	}

	if len(summary.TopApps) > 0 && summary.TopApps[0].Minutes > 120 {
		top := summary.TopApps[0].AppName
		recs = append(recs, domain.Recommendation{
			Title:       fmt.Sprintf("Limit %s", top),
			Description: fmt.Sprintf("You're spending a lot of time on %s. Consider setting a specific time limit.", top),
			Category:    domain.RecommendationAppLimit,
		})
	}

	if len(active) == 0 && dailyAvg > 180 {
		recs = append(recs, domain.Recommendation{
			Title:       "Start Digital Detox",
			Description: "A structured digital detox plan can help you reduce screen time and improve wellbeing.",
			Category:    domain.RecommendationDetox,
		})
	}

	names := make([]string, 0, len(habits))
	for _, h := range habits {
		names = append(names, strings.ToLower(h.Name))
	}
	allNames := strings.Join(names, " ")

	if dailyAvg > 180 && !containsAny(allNames, "meditate", "meditation", "mindful") {
		recs = append(recs, domain.Recommendation{
			Title:       "Add Meditation Habit",
			Description: "Meditation can help reduce the urge to check devices and improve focus.",
			Category:    domain.RecommendationHabit,
		})
	}

	if dailyAvg > 240 && !containsAny(allNames, "outdoor", "outside", "nature", "walk") {
		recs = append(recs, domain.Recommendation{
			Title:       "Add Outdoor Activity",
			Description: "Spending time outdoors can reduce screen time and improve mood and wellbeing.",
			Category:    domain.RecommendationHabit,
		})
	}

	if len(recs) == 0 {
		recs = append(recs, domain.Recommendation{
			Title:       "Maintain Balance",
			Description: "You're doing well! Continue to maintain a healthy balance between screen time and other activities.",
			Category:    domain.RecommendationGeneral,
		})
	}

	return recs, nil
}

func containsAny(haystack string, needles ...string) bool {
	for _, n := range needles {
		if strings.Contains(haystack, n) {
			return true
		}
	}
	return false
}

// WeeklyReport folds one week of habit and screen metrics into a
// scored report. Habit component caps at 50, screen component is
// max(0, 50 - avg/12).
func (s *InsightService) WeeklyReport(ctx context.Context, userID string) (*domain.WeeklyReport, error) {
	now := time.Now().UTC()
	today := domain.Day(now)
	weekAgo := today.AddDate(0, 0, -(reportWindowDays - 1))

	habits, err := s.habitRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	logs, err := s.logRepo.ListByUserID(ctx, userID, weekAgo, now)
	if err != nil {
		return nil, err
	}

	screenLogs, err := s.screenRepo.ListByUserID(ctx, userID, weekAgo, today)
	if err != nil {
		return nil, err
	}
	previousLogs, err := s.screenRepo.ListByUserID(ctx, userID, weekAgo.AddDate(0, 0, -reportWindowDays), weekAgo.AddDate(0, 0, -1))
	if err != nil {
		return nil, err
	}

	habitScore := 0.0
	completionRate := 0
	if len(habits) > 0 && len(logs) > 0 {
		rate := domain.CompletionRate(logs)
		habitScore = rate / 100 * 50
		completionRate = int(rate)
	}

	summary := domain.SummarizeScreenTime(screenLogs, 1)
	dailyAvg := 0.0
	if len(screenLogs) > 0 {
		dailyAvg = float64(summary.TotalMinutes) / reportWindowDays
	}
	screenScore := 50 - dailyAvg/12
	if screenScore < 0 {
		screenScore = 0
	}

	previousAvg := 0.0
	if len(previousLogs) > 0 {
		prev := domain.SummarizeScreenTime(previousLogs, 0)
		previousAvg = float64(prev.TotalMinutes) / reportWindowDays
	}

	byHabit := make(map[string][]*domain.HabitLog)
	for _, l := range logs {
		byHabit[l.HabitID] = append(byHabit[l.HabitID], l)
	}
	longestStreak := 0
	for _, h := range habits {
		if streak := domain.CurrentStreak(byHabit[h.ID]); streak > longestStreak {
			longestStreak = streak
		}
	}

	mostUsed := "None"
	if len(summary.TopApps) > 0 {
		mostUsed = summary.TopApps[0].AppName
	}

	report := &domain.WeeklyReport{
		OverallScore:        int(habitScore + screenScore),
		HabitSummary:        habitSummaryBand(completionRate),
		HabitCompletionRate: completionRate,
		ActiveHabits:        len(habits),
		LongestStreak:       longestStreak,
		ScreenTimeSummary:   usageBand(dailyAvg),
		AvgScreenTime:       int(dailyAvg),
		ScreenTimeChange:    int(domain.WeekOverWeekChange(dailyAvg, previousAvg)),
		MostUsedApp:         mostUsed,
	}
	report.Recommendations = reportRecommendations(report)

	return report, nil
}

func habitSummaryBand(completionRate int) domain.HabitSummaryBand {
	switch {
	case completionRate > 80:
		return domain.HabitSummaryExcellent
	case completionRate > 60:
		return domain.HabitSummaryGood
	case completionRate > 40:
		return domain.HabitSummaryModerate
	default:
		return domain.HabitSummaryNeedsImprovement
	}
}

func usageBand(dailyAvg float64) domain.UsageBand {
	switch {
	case dailyAvg > 240:
		return domain.UsageHigh
	case dailyAvg > 180:
		return domain.UsageModerateHigh
	case dailyAvg > 120:
		return domain.UsageModerate
	default:
		return domain.UsageLow
	}
}

func reportRecommendations(r *domain.WeeklyReport) []domain.Recommendation {
	var recs []domain.Recommendation

	if r.HabitCompletionRate < 60 {
		recs = append(recs, domain.Recommendation{
			Title:       "Improve Habit Consistency",
			Description: "Focus on completing your most important habits daily. Consider using reminders or habit stacking.",
			Category:    domain.RecommendationHabit,
		})
	}

	if r.AvgScreenTime > 180 {
		recs = append(recs, domain.Recommendation{
			Title:       "Reduce Screen Time",
			Description: "Set specific tech-free hours or use app limits to reduce your daily screen time.",
			Category:    domain.RecommendationScreenTime,
		})
	}

	if r.ScreenTimeChange > 20 {
		recs = append(recs, domain.Recommendation{
			Title:       "Screen Time Increasing",
			Description: "Your screen time has increased significantly. Be mindful of your usage patterns.",
			Category:    domain.RecommendationScreenTime,
		})
	}

	if len(recs) == 0 {
		recs = append(recs, domain.Recommendation{
			Title:       "Maintain Your Progress",
			Description: "You're doing well! Continue your current habits and digital wellbeing practices.",
			Category:    domain.RecommendationGeneral,
		})
	}

	return recs
}
