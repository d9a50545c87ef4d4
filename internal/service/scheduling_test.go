package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"hotel-shift-bot/internal/apperr"
	"hotel-shift-bot/internal/calendar"
	"hotel-shift-bot/internal/models"
	"hotel-shift-bot/internal/notify"
	"hotel-shift-bot/internal/selection"
	"hotel-shift-bot/internal/testutil"
	"hotel-shift-bot/pkg/weekends"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalendarViewBucketsRecords(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, at("2024-03-05", 9, 0))

	f.addShift(t, "2024-02-26")
	f.addShift(t, "2024-03-05")
	f.addShift(t, "2024-04-20")
	f.addAbsence(t, "2024-03-10", "2024-03-12", models.AbsencePending)
	f.addAbsence(t, "2024-03-12", "2024-03-12", models.AbsenceRejected)

	_, err := f.holidays.Replace(ctx, []weekends.Day{{Date: "2024-03-08", Year: 2024, Month: 3, Day: 8}})
	require.NoError(t, err)

	view, err := f.engine.GetCalendarView(ctx, scope, calendar.MustParse("2024-03-15"), calendar.ViewMonth)
	require.NoError(t, err)

	require.Len(t, view.Dates, calendar.MonthCells)
	assert.Equal(t, "2024-02-25", calendar.Format(view.Dates[0]))

	assert.Len(t, view.ScheduleByDate, 2, "only shifts inside the grid")
	assert.NotNil(t, view.Shift(calendar.MustParse("2024-02-26")))
	assert.NotNil(t, view.Shift(calendar.MustParse("2024-03-05")))
	assert.Nil(t, view.Shift(calendar.MustParse("2024-03-06")))

	assert.Len(t, view.Absences(calendar.MustParse("2024-03-10")), 1)
	assert.Len(t, view.Absences(calendar.MustParse("2024-03-12")), 2)
	assert.Empty(t, view.Absences(calendar.MustParse("2024-03-13")))

	assert.True(t, view.IsHoliday(calendar.MustParse("2024-03-08")))
	assert.False(t, view.IsHoliday(calendar.MustParse("2024-03-09")))

	assert.True(t, view.InPeriod(calendar.MustParse("2024-03-01")))
	assert.False(t, view.InPeriod(calendar.MustParse("2024-02-26")))
}

func TestWeekCalendarView(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, at("2024-03-05", 9, 0))
	f.addShift(t, "2024-03-05")
	f.addShift(t, "2024-03-10")

	view, err := f.engine.GetCalendarView(ctx, scope, calendar.MustParse("2024-03-06"), calendar.ViewWeek)
	require.NoError(t, err)

	require.Len(t, view.Dates, calendar.WeekCells)
	assert.Equal(t, "2024-03-03", calendar.Format(view.Dates[0]))
	assert.Len(t, view.ScheduleByDate, 1)
}

func TestRangeSelectionIsSymmetric(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, at("2024-01-02", 9, 0))
	a, b := calendar.MustParse("2024-01-14"), calendar.MustParse("2024-01-10")

	forward, err := f.engine.SelectAbsenceRange(ctx, 1, a, b)
	require.NoError(t, err)
	backward, err := f.engine.SelectAbsenceRange(ctx, 1, b, a)
	require.NoError(t, err)

	assert.Equal(t, forward, backward)
	assert.Equal(t, "2024-01-10", calendar.Format(forward.Start))
	assert.Equal(t, "2024-01-14", calendar.Format(forward.End))
	assert.Equal(t, 5, forward.Days())
}

// expiring never keeps a first click, as when it times out or another client takes it.
type expiring struct{}

func (expiring) Press(context.Context, uint, time.Time) (time.Time, bool, error) {
	return time.Time{}, false, nil
}

func (expiring) Clear(context.Context, uint) error { return nil }

func TestSelectAbsenceRangeLostSelection(t *testing.T) {
	f := newFixture(t, at("2024-01-02", 9, 0))
	f.engine.selections = expiring{}

	_, err := f.engine.SelectAbsenceRange(context.Background(), 1,
		calendar.MustParse("2024-01-10"), calendar.MustParse("2024-01-14"))
	assert.True(t, errors.Is(err, apperr.ErrInvalidInput))
}

func TestPressDateMachine(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, at("2024-01-02", 9, 0))

	r, err := f.engine.PressDate(ctx, 1, calendar.MustParse("2024-01-10"))
	require.NoError(t, err)
	assert.Nil(t, r, "first press only arms")

	r, err = f.engine.PressDate(ctx, 1, calendar.MustParse("2024-01-10"))
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.Equal(t, 1, r.Days())

	r, err = f.engine.PressDate(ctx, 1, calendar.MustParse("2024-01-20"))
	require.NoError(t, err)
	assert.Nil(t, r, "picker is idle again after a completed range")

	require.NoError(t, f.engine.CancelSelection(ctx, 1))
	r, err = f.engine.PressDate(ctx, 1, calendar.MustParse("2024-01-22"))
	require.NoError(t, err)
	assert.Nil(t, r)
}

func TestVacationScenario(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, at("2024-01-02", 9, 0))

	if _, err := f.engine.PressDate(ctx, scope.StaffID, calendar.MustParse("2024-01-15")); err != nil {
		t.Fatal(err)
	}
	r, err := f.engine.PressDate(ctx, scope.StaffID, calendar.MustParse("2024-01-10"))
	require.NoError(t, err)
	require.NotNil(t, r)

	request, err := f.engine.SubmitAbsence(ctx, SubmitAbsenceInput{
		StaffID:     scope.StaffID,
		HotelID:     scope.HotelID,
		RequestType: models.AbsenceVacation,
		StartDate:   r.Start,
		EndDate:     r.End,
	})
	require.NoError(t, err)
	assert.Equal(t, models.AbsencePending, request.Status)

	view, err := f.engine.GetCalendarView(ctx, scope, calendar.MustParse("2024-01-01"), calendar.ViewMonth)
	require.NoError(t, err)
	for d := r.Start; !d.After(r.End); d = d.AddDate(0, 0, 1) {
		covering := view.Absences(d)
		require.Len(t, covering, 1, calendar.Format(d))
		assert.Equal(t, request.ID, covering[0].ID)
	}
	assert.Empty(t, view.Absences(calendar.MustParse("2024-01-09")))
	assert.Empty(t, view.Absences(calendar.MustParse("2024-01-16")))

	approved, err := f.engine.UpdateAbsence(ctx, request.ID, ChangeStatus{Status: models.AbsenceApproved})
	require.NoError(t, err)
	assert.Equal(t, models.AbsenceApproved, approved.Status)

	_, err = f.engine.UpdateAbsence(ctx, request.ID, EditNotes{Notes: strPtr("one more day")})
	assert.ErrorIs(t, err, apperr.ErrNotEditable)

	assert.Equal(t, []notify.EventType{
		notify.EventAbsenceSubmitted,
		notify.EventAbsenceStatusChanged,
	}, f.events.types())
}

func TestConflictsIgnoreDeadRecords(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, at("2024-01-02", 9, 0))

	f.addShift(t, "2024-01-11")
	f.addAbsence(t, "2024-01-08", "2024-01-10", models.AbsenceApproved)
	f.addAbsence(t, "2024-01-12", "2024-01-13", models.AbsenceCancelled)

	c, err := f.engine.Conflicts(ctx, scope, calendar.MustParse("2024-01-14"), calendar.MustParse("2024-01-10"))
	require.NoError(t, err)
	assert.True(t, c.Any())
	assert.Len(t, c.Shifts, 1)
	assert.Len(t, c.Absences, 1)

	c, err = f.engine.Conflicts(ctx, scope, calendar.MustParse("2024-01-20"), calendar.MustParse("2024-01-25"))
	require.NoError(t, err)
	assert.False(t, c.Any())
}

func TestDeleteAbsenceIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, at("2024-01-02", 9, 0))
	request := f.addAbsence(t, "2024-01-08", "2024-01-10", models.AbsenceApproved)

	deleted, err := f.engine.DeleteAbsence(ctx, request.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = f.engine.DeleteAbsence(ctx, request.ID)
	require.NoError(t, err)
	assert.False(t, deleted)

	assert.Equal(t, []notify.EventType{notify.EventAbsenceDeleted}, f.events.types())
}

func TestShiftEventsAreEmitted(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, at("2024-03-05", 9, 0))
	shift := f.addShift(t, "2024-03-05")

	_, err := f.engine.ClockIn(ctx, shift.ID, staffActor)
	require.NoError(t, err)
	_, err = f.engine.ClockIn(ctx, shift.ID, staffActor)
	require.Error(t, err)
	f.clock.Advance(time.Hour)
	_, err = f.engine.ClockOut(ctx, shift.ID, staffActor)
	require.NoError(t, err)

	require.Equal(t, []notify.EventType{notify.EventShiftClockedIn, notify.EventShiftClockedOut}, f.events.types())
	event := f.events.events[0]
	assert.Equal(t, scope.StaffID, event.StaffID)
	assert.Equal(t, shift.ID, event.RequestOrScheduleID)
	assert.Equal(t, []string{"2024-03-05"}, event.Dates)
	assert.NotEmpty(t, event.ID)
}

type failingNotifier struct{}

func (failingNotifier) Notify(context.Context, notify.Event) error {
	return errors.New("sink down")
}

func TestNotifierFailureDoesNotFailOperation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, at("2024-03-05", 9, 0))
	engine := NewSchedulingService(f.shifts, f.absences, nil, selection.NewMemory(0), failingNotifier{}, f.clock, testutil.NewLogger())
	shift := f.addShift(t, "2024-03-05")

	_, err := engine.ClockIn(ctx, shift.ID, staffActor)
	assert.NoError(t, err)
}

func TestMonthlySummary(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, at("2024-03-05", 9, 0))

	done := f.addShift(t, "2024-03-05")
	f.addShift(t, "2024-03-06")
	f.addAbsence(t, "2024-02-28", "2024-03-02", models.AbsenceApproved)
	f.addAbsence(t, "2024-03-20", "2024-03-21", models.AbsencePending)

	_, err := f.engine.ClockIn(ctx, done.ID, staffActor)
	require.NoError(t, err)
	f.clock.Advance(9 * time.Hour)
	_, err = f.engine.ClockOut(ctx, done.ID, staffActor)
	require.NoError(t, err)

	summary, err := f.engine.MonthlySummary(ctx, scope, 2024, time.March)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.PlannedShifts)
	assert.Equal(t, 16*60, summary.PlannedMinutes)
	assert.Equal(t, 1, summary.WorkedShifts)
	assert.Equal(t, 9*60, summary.WorkedMinutes)
	assert.Equal(t, 7*60, summary.DeficitMinutes)
	assert.Equal(t, 2, summary.AbsenceDays)
}
