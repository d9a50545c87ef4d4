// internal/service/shift.go
package service

import (
	"context"
	"time"

	"hotel-shift-bot/internal/apperr"
	"hotel-shift-bot/internal/calendar"
	"hotel-shift-bot/internal/models"
	"hotel-shift-bot/internal/repository"

	"github.com/sirupsen/logrus"
)

// ShiftService owns shift lookups and the shift state machine.
type ShiftService struct {
	repo   repository.ShiftScheduleRepository
	clock  Clock
	logger *logrus.Logger
}

func NewShiftService(repo repository.ShiftScheduleRepository, clock Clock, logger *logrus.Logger) *ShiftService {
	return &ShiftService{
		repo:   repo,
		clock:  clock,
		logger: logger,
	}
}

func (s *ShiftService) Get(ctx context.Context, id uint) (*models.ShiftSchedule, error) {
	return s.repo.GetByID(ctx, id)
}

// LookupByDate returns the shift on date, or nil when there is none.
func (s *ShiftService) LookupByDate(ctx context.Context, scope models.Scope, date time.Time) (*models.ShiftSchedule, error) {
	return s.repo.GetByDate(ctx, scope, calendar.Format(date))
}

// LookupByRange returns the shifts in the inclusive range; the bounds may come in
// either order.
func (s *ShiftService) LookupByRange(ctx context.Context, scope models.Scope, a, b time.Time) ([]*models.ShiftSchedule, error) {
	start, end := calendar.Ordered(a, b)
	return s.repo.ListByRange(ctx, scope, calendar.Format(start), calendar.Format(end))
}

// ClockIn starts today's shift and confirms it.
func (s *ShiftService) ClockIn(ctx context.Context, scheduleID, actorID uint) (*models.ShiftSchedule, error) {
	const op = "ShiftService.ClockIn"

	shift, err := s.repo.GetByID(ctx, scheduleID)
	if err != nil {
		return nil, err
	}

	today := calendar.Format(s.clock.Now())
	if err := checkClockIn(op, shift, today); err != nil {
		s.rejected(op, shift, err)
		return nil, err
	}

	now := s.clock.Now()
	ok, err := s.repo.Transition(ctx, scheduleID,
		repository.ShiftGuard{Status: models.ShiftScheduled, StartUnset: true},
		map[string]any{
			"status":            models.ShiftConfirmed,
			"actual_start_time": now,
			"is_confirmed":      true,
			"confirmed_at":      now,
			"confirmed_by":      actorID,
			"updated_at":        now,
		})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, s.lostRace(ctx, op, scheduleID, func(fresh *models.ShiftSchedule) error {
			return checkClockIn(op, fresh, today)
		})
	}

	shift.Status = models.ShiftConfirmed
	shift.ActualStartTime = &now
	shift.IsConfirmed = true
	shift.ConfirmedAt = &now
	shift.ConfirmedBy = &actorID
	shift.UpdatedAt = now

	s.logger.WithFields(logrus.Fields{
		"schedule_id": shift.ID,
		"staff_id":    shift.StaffID,
		"actor_id":    actorID,
		"clock_in":    now.Format("15:04"),
	}).Info("Staff clocked in")

	return shift, nil
}

// ClockOut ends today's started shift.
func (s *ShiftService) ClockOut(ctx context.Context, scheduleID, actorID uint) (*models.ShiftSchedule, error) {
	const op = "ShiftService.ClockOut"

	shift, err := s.repo.GetByID(ctx, scheduleID)
	if err != nil {
		return nil, err
	}

	today := calendar.Format(s.clock.Now())
	if err := checkClockOut(op, shift, today); err != nil {
		s.rejected(op, shift, err)
		return nil, err
	}

	now := s.clock.Now()
	if now.Before(*shift.ActualStartTime) {
		now = *shift.ActualStartTime
	}

	ok, err := s.repo.Transition(ctx, scheduleID,
		repository.ShiftGuard{Status: models.ShiftConfirmed, StartSet: true, EndUnset: true},
		map[string]any{
			"status":          models.ShiftCompleted,
			"actual_end_time": now,
			"updated_at":      now,
		})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, s.lostRace(ctx, op, scheduleID, func(fresh *models.ShiftSchedule) error {
			return checkClockOut(op, fresh, today)
		})
	}

	shift.Status = models.ShiftCompleted
	shift.ActualEndTime = &now
	shift.UpdatedAt = now

	s.logger.WithFields(logrus.Fields{
		"schedule_id":    shift.ID,
		"staff_id":       shift.StaffID,
		"actor_id":       actorID,
		"clock_out":      now.Format("15:04"),
		"worked_minutes": int(shift.WorkedDuration().Minutes()),
	}).Info("Staff clocked out")

	return shift, nil
}

// ConfirmShift confirms a scheduled shift in advance without starting it.
func (s *ShiftService) ConfirmShift(ctx context.Context, scheduleID, actorID uint) (*models.ShiftSchedule, error) {
	const op = "ShiftService.ConfirmShift"

	shift, err := s.repo.GetByID(ctx, scheduleID)
	if err != nil {
		return nil, err
	}

	if err := checkConfirm(op, shift); err != nil {
		s.rejected(op, shift, err)
		return nil, err
	}

	now := s.clock.Now()
	ok, err := s.repo.Transition(ctx, scheduleID,
		repository.ShiftGuard{Status: models.ShiftScheduled, Unconfirmed: true},
		map[string]any{
			"status":       models.ShiftConfirmed,
			"is_confirmed": true,
			"confirmed_at": now,
			"confirmed_by": actorID,
			"updated_at":   now,
		})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, s.lostRace(ctx, op, scheduleID, func(fresh *models.ShiftSchedule) error {
			return checkConfirm(op, fresh)
		})
	}

	shift.Status = models.ShiftConfirmed
	shift.IsConfirmed = true
	shift.ConfirmedAt = &now
	shift.ConfirmedBy = &actorID
	shift.UpdatedAt = now

	s.logger.WithFields(logrus.Fields{
		"schedule_id": shift.ID,
		"staff_id":    shift.StaffID,
		"actor_id":    actorID,
	}).Info("Shift confirmed")

	return shift, nil
}

// lostRace re-reads a shift after a failed compare-and-swap and reports why the
// transition no longer applies.
func (s *ShiftService) lostRace(ctx context.Context, op string, id uint, check func(*models.ShiftSchedule) error) error {
	fresh, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := check(fresh); err != nil {
		s.rejected(op, fresh, err)
		return err
	}
	return apperr.New(apperr.KindInvalidTransition, op)
}

func (s *ShiftService) rejected(op string, shift *models.ShiftSchedule, err error) {
	s.logger.WithFields(logrus.Fields{
		"op":          op,
		"schedule_id": shift.ID,
		"status":      shift.Status,
		"reason":      apperr.KindOf(err),
	}).Info("Shift transition rejected")
}

func checkClockIn(op string, shift *models.ShiftSchedule, today string) error {
	switch {
	case shift.Status == models.ShiftCancelled:
		return apperr.New(apperr.KindInvalidTransition, op)
	case shift.IsStarted():
		return apperr.New(apperr.KindAlreadyStarted, op)
	case shift.Status != models.ShiftScheduled:
		return apperr.New(apperr.KindInvalidTransition, op)
	case shift.ScheduleDate != today:
		return apperr.New(apperr.KindNotToday, op)
	}
	return nil
}

func checkClockOut(op string, shift *models.ShiftSchedule, today string) error {
	switch {
	case shift.Status == models.ShiftCancelled:
		return apperr.New(apperr.KindInvalidTransition, op)
	case shift.IsEnded():
		return apperr.New(apperr.KindAlreadyEnded, op)
	case !shift.IsStarted():
		return apperr.New(apperr.KindNotStarted, op)
	case shift.Status != models.ShiftConfirmed:
		return apperr.New(apperr.KindInvalidTransition, op)
	case shift.ScheduleDate != today:
		return apperr.New(apperr.KindNotToday, op)
	}
	return nil
}

func checkConfirm(op string, shift *models.ShiftSchedule) error {
	switch {
	case shift.Status == models.ShiftCancelled:
		return apperr.New(apperr.KindInvalidTransition, op)
	case shift.IsConfirmed:
		return apperr.New(apperr.KindAlreadyConfirmed, op)
	case shift.Status != models.ShiftScheduled:
		return apperr.New(apperr.KindInvalidTransition, op)
	}
	return nil
}
