package service

import (
	"context"
	"errors"
	"time"

	"hotel-shift-bot/internal/apperr"
	"hotel-shift-bot/internal/calendar"
	"hotel-shift-bot/internal/models"
	"hotel-shift-bot/internal/notify"
	"hotel-shift-bot/internal/selection"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// CalendarView is one rendered month or week for a staff member.
type CalendarView struct {
	Scope          models.Scope                        `json:"scope"`
	Anchor         time.Time                           `json:"anchor"`
	Mode           calendar.ViewMode                   `json:"mode"`
	Dates          []time.Time                         `json:"dates"`
	ScheduleByDate map[string]*models.ShiftSchedule    `json:"schedule_by_date"`
	AbsencesByDate map[string][]*models.AbsenceRequest `json:"absences_by_date"`
	Holidays       map[string]bool                     `json:"holidays"`
}

func (v *CalendarView) Shift(date time.Time) *models.ShiftSchedule {
	return v.ScheduleByDate[calendar.Format(date)]
}

func (v *CalendarView) Absences(date time.Time) []*models.AbsenceRequest {
	return v.AbsencesByDate[calendar.Format(date)]
}

func (v *CalendarView) IsHoliday(date time.Time) bool {
	return v.Holidays[calendar.Format(date)]
}

// InPeriod reports whether date belongs to the anchor's month in month mode. Every
// week-mode date is in period.
func (v *CalendarView) InPeriod(date time.Time) bool {
	if v.Mode == calendar.ViewWeek {
		return true
	}
	return date.Year() == v.Anchor.Year() && date.Month() == v.Anchor.Month()
}

// Conflicts lists live records overlapping a candidate absence range.
type Conflicts struct {
	Shifts   []*models.ShiftSchedule  `json:"shifts"`
	Absences []*models.AbsenceRequest `json:"absences"`
}

func (c Conflicts) Any() bool {
	return len(c.Shifts) > 0 || len(c.Absences) > 0
}

// SchedulingService is the single entry point the bot and the HTTP API talk to.
type SchedulingService struct {
	shifts     *ShiftService
	absences   *AbsenceService
	holidays   *NonWorkingDayService
	selections selection.Store
	notifier   notify.Notifier
	clock      Clock
	logger     *logrus.Logger
}

// NewSchedulingService wires the engine. holidays may be nil; a nil notifier discards events.
func NewSchedulingService(
	shifts *ShiftService,
	absences *AbsenceService,
	holidays *NonWorkingDayService,
	selections selection.Store,
	notifier notify.Notifier,
	clock Clock,
	logger *logrus.Logger,
) *SchedulingService {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &SchedulingService{
		shifts:     shifts,
		absences:   absences,
		holidays:   holidays,
		selections: selections,
		notifier:   notifier,
		clock:      clock,
		logger:     logger,
	}
}

// Today is the current hotel-local calendar date.
func (s *SchedulingService) Today() time.Time {
	return calendar.DateOf(s.clock.Now())
}

// GetCalendarView fetches shifts, absences and holidays once for the whole grid span
// and buckets them per date.
func (s *SchedulingService) GetCalendarView(ctx context.Context, scope models.Scope, anchor time.Time, mode calendar.ViewMode) (*CalendarView, error) {
	anchor = calendar.DateOf(anchor)
	dates := calendar.Grid(anchor, mode)
	first, last := dates[0], dates[len(dates)-1]

	var (
		shifts   []*models.ShiftSchedule
		absences []*models.AbsenceRequest
		holidays map[string]bool
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		shifts, err = s.shifts.LookupByRange(gctx, scope, first, last)
		return err
	})
	g.Go(func() error {
		var err error
		absences, err = s.absences.OverlapsRange(gctx, scope, first, last)
		return err
	})
	if s.holidays != nil {
		g.Go(func() error {
			var err error
			holidays, err = s.holidays.InRange(gctx, first, last)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if holidays == nil {
		holidays = map[string]bool{}
	}

	view := &CalendarView{
		Scope:          scope,
		Anchor:         anchor,
		Mode:           mode,
		Dates:          dates,
		ScheduleByDate: make(map[string]*models.ShiftSchedule, len(shifts)),
		AbsencesByDate: make(map[string][]*models.AbsenceRequest),
		Holidays:       holidays,
	}

	for _, shift := range shifts {
		view.ScheduleByDate[shift.ScheduleDate] = shift
	}
	for _, date := range dates {
		key := calendar.Format(date)
		for _, request := range absences {
			if request.Covers(key) {
				view.AbsencesByDate[key] = append(view.AbsencesByDate[key], request)
			}
		}
	}

	s.logger.WithFields(logrus.Fields{
		"staff_id": scope.StaffID,
		"anchor":   calendar.Format(anchor),
		"mode":     mode,
		"shifts":   len(shifts),
		"absences": len(absences),
	}).Debug("Calendar view built")

	return view, nil
}

// PressDate feeds one click into the range picker. The first click arms the picker and
// returns nil; the second returns the ordered range and disarms it.
func (s *SchedulingService) PressDate(ctx context.Context, staffID uint, date time.Time) (*calendar.Range, error) {
	date = calendar.DateOf(date)

	start, armed, err := s.selections.Press(ctx, staffID, date)
	if err != nil {
		return nil, apperr.Storage("SchedulingService.PressDate", err)
	}
	if !armed {
		return nil, nil
	}

	r := calendar.NewRange(start, date)
	return &r, nil
}

var errSelectionLost = errors.New("range selection is no longer armed")

// SelectAbsenceRange runs a fresh two-click selection. The result does not depend on
// click order.
func (s *SchedulingService) SelectAbsenceRange(ctx context.Context, staffID uint, first, second time.Time) (calendar.Range, error) {
	if err := s.CancelSelection(ctx, staffID); err != nil {
		return calendar.Range{}, err
	}
	if _, err := s.PressDate(ctx, staffID, first); err != nil {
		return calendar.Range{}, err
	}
	r, err := s.PressDate(ctx, staffID, second)
	if err != nil {
		return calendar.Range{}, err
	}
	if r == nil {
		// Another client took the first click, or it expired.
		return calendar.Range{}, apperr.Wrap(apperr.KindInvalidInput, "SchedulingService.SelectAbsenceRange", errSelectionLost)
	}
	return *r, nil
}

func (s *SchedulingService) CancelSelection(ctx context.Context, staffID uint) error {
	if err := s.selections.Clear(ctx, staffID); err != nil {
		return apperr.Storage("SchedulingService.CancelSelection", err)
	}
	return nil
}

// Conflicts returns non-cancelled shifts and pending or approved absences overlapping
// the range. Callers warn; submission is never blocked.
func (s *SchedulingService) Conflicts(ctx context.Context, scope models.Scope, a, b time.Time) (Conflicts, error) {
	var (
		shifts   []*models.ShiftSchedule
		absences []*models.AbsenceRequest
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		shifts, err = s.shifts.LookupByRange(gctx, scope, a, b)
		return err
	})
	g.Go(func() error {
		var err error
		absences, err = s.absences.OverlapsRange(gctx, scope, a, b)
		return err
	})
	if err := g.Wait(); err != nil {
		return Conflicts{}, err
	}

	var c Conflicts
	for _, shift := range shifts {
		if shift.Status != models.ShiftCancelled {
			c.Shifts = append(c.Shifts, shift)
		}
	}
	for _, request := range absences {
		if request.Status == models.AbsencePending || request.Status == models.AbsenceApproved {
			c.Absences = append(c.Absences, request)
		}
	}
	return c, nil
}

// MonthlySummary totals planned and clocked time for one month. Absence days count
// approved requests only.
func (s *SchedulingService) MonthlySummary(ctx context.Context, scope models.Scope, year int, month time.Month) (*models.MonthlySummary, error) {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	last := time.Date(year, month, calendar.DaysIn(year, month), 0, 0, 0, 0, time.UTC)

	shifts, err := s.shifts.LookupByRange(ctx, scope, first, last)
	if err != nil {
		return nil, err
	}
	absences, err := s.absences.OverlapsRange(ctx, scope, first, last)
	if err != nil {
		return nil, err
	}

	summary := &models.MonthlySummary{StaffID: scope.StaffID, Year: year, Month: int(month)}
	for _, shift := range shifts {
		summary.AddShift(shift)
	}
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		key := calendar.Format(d)
		for _, request := range absences {
			if request.Status == models.AbsenceApproved && request.Covers(key) {
				summary.AbsenceDays++
				break
			}
		}
	}
	summary.CalculateStats()

	return summary, nil
}

func (s *SchedulingService) Shift(ctx context.Context, id uint) (*models.ShiftSchedule, error) {
	return s.shifts.Get(ctx, id)
}

func (s *SchedulingService) ShiftOn(ctx context.Context, scope models.Scope, date time.Time) (*models.ShiftSchedule, error) {
	return s.shifts.LookupByDate(ctx, scope, date)
}

func (s *SchedulingService) Absence(ctx context.Context, id uint) (*models.AbsenceRequest, error) {
	return s.absences.Get(ctx, id)
}

func (s *SchedulingService) AbsencesFor(ctx context.Context, scope models.Scope) ([]*models.AbsenceRequest, error) {
	return s.absences.ListForStaff(ctx, scope)
}

func (s *SchedulingService) AbsencesOn(ctx context.Context, scope models.Scope, date time.Time) ([]*models.AbsenceRequest, error) {
	return s.absences.ForDate(ctx, scope, date)
}

func (s *SchedulingService) ClockIn(ctx context.Context, scheduleID, actorID uint) (*models.ShiftSchedule, error) {
	shift, err := s.shifts.ClockIn(ctx, scheduleID, actorID)
	if err != nil {
		return nil, err
	}
	s.shiftEvent(ctx, notify.EventShiftClockedIn, shift)
	return shift, nil
}

func (s *SchedulingService) ClockOut(ctx context.Context, scheduleID, actorID uint) (*models.ShiftSchedule, error) {
	shift, err := s.shifts.ClockOut(ctx, scheduleID, actorID)
	if err != nil {
		return nil, err
	}
	s.shiftEvent(ctx, notify.EventShiftClockedOut, shift)
	return shift, nil
}

func (s *SchedulingService) ConfirmShift(ctx context.Context, scheduleID, actorID uint) (*models.ShiftSchedule, error) {
	shift, err := s.shifts.ConfirmShift(ctx, scheduleID, actorID)
	if err != nil {
		return nil, err
	}
	s.shiftEvent(ctx, notify.EventShiftConfirmed, shift)
	return shift, nil
}

func (s *SchedulingService) SubmitAbsence(ctx context.Context, in SubmitAbsenceInput) (*models.AbsenceRequest, error) {
	request, err := s.absences.Submit(ctx, in)
	if err != nil {
		return nil, err
	}
	s.absenceEvent(ctx, notify.EventAbsenceSubmitted, request)
	return request, nil
}

func (s *SchedulingService) UpdateAbsence(ctx context.Context, id uint, patch AbsencePatch) (*models.AbsenceRequest, error) {
	request, err := s.absences.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}

	event := notify.EventAbsenceStatusChanged
	if _, ok := patch.(EditNotes); ok {
		event = notify.EventAbsenceNotesUpdated
	}
	s.absenceEvent(ctx, event, request)
	return request, nil
}

func (s *SchedulingService) CancelAbsence(ctx context.Context, id uint) (*models.AbsenceRequest, error) {
	return s.UpdateAbsence(ctx, id, ChangeStatus{Status: models.AbsenceCancelled})
}

// DeleteAbsence removes a request in any status. Deleting a missing request succeeds
// and reports false.
func (s *SchedulingService) DeleteAbsence(ctx context.Context, id uint) (bool, error) {
	request, err := s.absences.Get(ctx, id)
	if errors.Is(err, apperr.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	deleted, err := s.absences.Delete(ctx, id)
	if err != nil {
		return false, err
	}
	if deleted {
		s.absenceEvent(ctx, notify.EventAbsenceDeleted, request)
	}
	return deleted, nil
}

func (s *SchedulingService) shiftEvent(ctx context.Context, typ notify.EventType, shift *models.ShiftSchedule) {
	s.emit(ctx, notify.NewEvent(typ, shift.StaffID, shift.HotelID, shift.ID,
		string(shift.Status), s.clock.Now(), shift.ScheduleDate))
}

func (s *SchedulingService) absenceEvent(ctx context.Context, typ notify.EventType, request *models.AbsenceRequest) {
	s.emit(ctx, notify.NewEvent(typ, request.StaffID, request.HotelID, request.ID,
		string(request.Status), s.clock.Now(), request.StartDate, request.EndDate))
}

func (s *SchedulingService) emit(ctx context.Context, event notify.Event) {
	if err := s.notifier.Notify(ctx, event); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"event_id": event.ID,
			"event":    event.Type,
		}).Warn("Notification failed")
	}
}
