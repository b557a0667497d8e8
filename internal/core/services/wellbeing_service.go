package services

import (
	"context"
	"time"

	"github.com/altrove/habitlens/internal/core/domain"
)

// wellbeingWindowDays is how far back the score and trend look.
const wellbeingWindowDays = 7

type WellbeingService struct {
	screenRepo domain.ScreenTimeRepository
	detoxRepo  domain.DetoxPlanRepository
	limitRepo  domain.AppLimitRepository
}

func NewWellbeingService(screenRepo domain.ScreenTimeRepository, detoxRepo domain.DetoxPlanRepository, limitRepo domain.AppLimitRepository) *WellbeingService {
	return &WellbeingService{
		screenRepo: screenRepo,
		detoxRepo:  detoxRepo,
		limitRepo:  limitRepo,
	}
}

// Insights computes the wellbeing score, band, trend and limit
// effectiveness over the trailing week.
func (s *WellbeingService) Insights(ctx context.Context, userID string) (*domain.WellbeingInsights, error) {
	today := domain.Day(time.Now().UTC())
	logs, err := s.screenRepo.ListByUserID(ctx, userID, today.AddDate(0, 0, -(wellbeingWindowDays-1)), today)
	if err != nil {
		return nil, err
	}

	active, err := s.detoxRepo.ListActive(ctx, userID)
	if err != nil {
		return nil, err
	}

	limits, err := s.limitRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	summary := domain.SummarizeScreenTime(logs, 0)
	score := domain.WellbeingScore(summary.DailyAverage, len(active) > 0, len(limits))

	return &domain.WellbeingInsights{
		Score:       score,
		Band:        domain.BandForScore(score),
		Trend:       domain.ScreenTimeTrend(logs),
		DetoxActive: len(active) > 0,
		LimitEffect: domain.LimitEffectiveness(logs, limits),
	}, nil
}

type StartDetoxInput struct {
	UserID               string
	DailyLimitMinutes    int
	BreakIntervalMinutes int
	EnableAppBlocking    bool
}

func (s *WellbeingService) StartDetox(ctx context.Context, input StartDetoxInput) (*domain.DetoxPlan, error) {
	plan, err := domain.NewDetoxPlan(input.UserID, input.DailyLimitMinutes, input.BreakIntervalMinutes)
	if err != nil {
		return nil, err
	}
	plan.EnableAppBlocking = input.EnableAppBlocking

	if err := s.detoxRepo.Create(ctx, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

// CompleteDetox deactivates the plan, stamping today as the end date.
// Completed plans feed the detox achievement criteria.
func (s *WellbeingService) CompleteDetox(ctx context.Context, planID string, userID string) (*domain.DetoxPlan, error) {
	plan, err := s.detoxRepo.GetByID(ctx, planID)
	if err != nil {
		return nil, err
	}
	if plan.UserID != userID {
		return nil, domain.ErrDetoxPlanNotFound
	}

	if err := plan.Deactivate(); err != nil {
		return nil, err
	}
	if err := s.detoxRepo.Update(ctx, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

func (s *WellbeingService) ActiveDetoxPlans(ctx context.Context, userID string) ([]*domain.DetoxPlan, error) {
	return s.detoxRepo.ListActive(ctx, userID)
}

// SetAppLimit creates or replaces the cap for one app. One limit per
// (user, app): setting it again overwrites the minutes.
func (s *WellbeingService) SetAppLimit(ctx context.Context, userID, appName string, dailyLimit int) (*domain.AppLimit, error) {
	if dailyLimit <= 0 {
		return nil, domain.ErrInvalidDailyLimit
	}

	existing, err := s.limitRepo.GetByUserAndApp(ctx, userID, appName)
	if err == nil {
		existing.DailyLimitMinutes = dailyLimit
		existing.IsActive = true
		if err := s.limitRepo.Update(ctx, existing); err != nil {
			return nil, err
		}
		return existing, nil
	}

	limit, err := domain.NewAppLimit(userID, appName, dailyLimit)
	if err != nil {
		return nil, err
	}
	if err := s.limitRepo.Create(ctx, limit); err != nil {
		return nil, err
	}
	return limit, nil
}

func (s *WellbeingService) ListAppLimits(ctx context.Context, userID string) ([]*domain.AppLimit, error) {
	return s.limitRepo.ListByUserID(ctx, userID)
}

func (s *WellbeingService) RemoveAppLimit(ctx context.Context, limitID string, userID string) error {
	limit, err := s.limitRepo.GetByID(ctx, limitID)
	if err != nil {
		return err
	}
	if limit.UserID != userID {
		return domain.ErrAppLimitNotFound
	}
	return s.limitRepo.Delete(ctx, limitID)
}
