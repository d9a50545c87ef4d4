package service

import (
	"context"
	"time"

	"hotel-shift-bot/internal/calendar"
	"hotel-shift-bot/internal/models"
	"hotel-shift-bot/internal/repository"
	"hotel-shift-bot/pkg/weekends"

	"github.com/sirupsen/logrus"
)

type NonWorkingDayService struct {
	repo   repository.NonWorkingDayRepository
	logger *logrus.Logger
}

func NewNonWorkingDayService(repo repository.NonWorkingDayRepository, logger *logrus.Logger) *NonWorkingDayService {
	return &NonWorkingDayService{repo: repo, logger: logger}
}

// LoadFromJSON replaces the stored hotel holidays with the days listed in filePath.
func (s *NonWorkingDayService) LoadFromJSON(ctx context.Context, filePath string) (int, error) {
	days, err := weekends.ParseFile(filePath)
	if err != nil {
		return 0, err
	}
	return s.Replace(ctx, days)
}

func (s *NonWorkingDayService) Replace(ctx context.Context, days []weekends.Day) (int, error) {
	records := make([]models.NonWorkingDay, 0, len(days))
	for _, d := range days {
		records = append(records, models.NonWorkingDay{
			Date:  d.Date,
			Year:  d.Year,
			Month: d.Month,
			Day:   d.Day,
		})
	}

	if err := s.repo.ReplaceAll(ctx, records); err != nil {
		return 0, err
	}

	s.logger.WithField("count", len(records)).Info("Non-working days loaded")
	return len(records), nil
}

// InRange returns the holiday dates in [a, b] as a set keyed by YYYY-MM-DD.
func (s *NonWorkingDayService) InRange(ctx context.Context, a, b time.Time) (map[string]bool, error) {
	start, end := calendar.Ordered(a, b)
	days, err := s.repo.ListByRange(ctx, calendar.Format(start), calendar.Format(end))
	if err != nil {
		return nil, err
	}

	set := make(map[string]bool, len(days))
	for _, d := range days {
		set[d.Date] = true
	}
	return set, nil
}

func (s *NonWorkingDayService) IsNonWorkingDay(ctx context.Context, date time.Time) (bool, error) {
	return s.repo.IsNonWorkingDay(ctx, calendar.Format(date))
}
