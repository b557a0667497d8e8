package services

import (
	"context"
	"errors"
	"time"

	"github.com/altrove/habitlens/internal/core/domain"
)

var ErrNoScreenTimeRows = errors.New("no valid screen time rows")

const topAppsDefault = 5

type ScreenTimeService struct {
	repo domain.ScreenTimeRepository
}

func NewScreenTimeService(repo domain.ScreenTimeRepository) *ScreenTimeService {
	return &ScreenTimeService{repo: repo}
}

type ScreenTimeRow struct {
	Date         time.Time
	AppName      string
	UsageMinutes int
}

// Ingest validates and stores a batch of usage rows. An all-invalid
// batch is rejected; a mixed batch stores the valid rows and reports
// how many were skipped.
func (s *ScreenTimeService) Ingest(ctx context.Context, userID string, rows []ScreenTimeRow, uploadFile string) (stored int, skipped int, err error) {
	logs := make([]*domain.ScreenTimeLog, 0, len(rows))
	for _, r := range rows {
		log, err := domain.NewScreenTimeLog(userID, r.Date, r.AppName, r.UsageMinutes)
		if err != nil {
			skipped++
			continue
		}
		log.UploadFile = uploadFile
		logs = append(logs, log)
	}

	if len(logs) == 0 {
		return 0, skipped, ErrNoScreenTimeRows
	}

	if err := s.repo.CreateBatch(ctx, logs); err != nil {
		return 0, skipped, err
	}
	return len(logs), skipped, nil
}

// Summary aggregates the window [from, to]. A zero from means the full
// history.
func (s *ScreenTimeService) Summary(ctx context.Context, userID string, from, to time.Time) (domain.ScreenTimeSummary, error) {
	logs, err := s.repo.ListByUserID(ctx, userID, from, to)
	if err != nil {
		return domain.ScreenTimeSummary{}, err
	}
	return domain.SummarizeScreenTime(logs, topAppsDefault), nil
}

// WeekOverWeekChange compares the daily average of the 7 days ending at
// ref with the 7 days before that.
func (s *ScreenTimeService) WeekOverWeekChange(ctx context.Context, userID string, ref time.Time) (float64, error) {
	refDay := domain.Day(ref)

	current, err := s.repo.ListByUserID(ctx, userID, refDay.AddDate(0, 0, -6), refDay)
	if err != nil {
		return 0, err
	}
	previous, err := s.repo.ListByUserID(ctx, userID, refDay.AddDate(0, 0, -13), refDay.AddDate(0, 0, -7))
	if err != nil {
		return 0, err
	}

	cur := domain.SummarizeScreenTime(current, 0)
	prev := domain.SummarizeScreenTime(previous, 0)

	return domain.WeekOverWeekChange(cur.DailyAverage, prev.DailyAverage), nil
}

// RecentLogs exposes the raw rows of the trailing n days, used by the
// wellbeing and insight calculators.
func (s *ScreenTimeService) RecentLogs(ctx context.Context, userID string, days int) ([]*domain.ScreenTimeLog, error) {
	today := domain.Day(time.Now().UTC())
	return s.repo.ListByUserID(ctx, userID, today.AddDate(0, 0, -(days-1)), today)
}
