package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"hotel-shift-bot/internal/models"
	"hotel-shift-bot/internal/notify"
	"hotel-shift-bot/internal/repository"
	"hotel-shift-bot/internal/selection"
	"hotel-shift-bot/internal/testutil"

	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu     sync.Mutex
	events []notify.Event
}

func (r *recorder) Notify(_ context.Context, e notify.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recorder) types() []notify.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []notify.EventType
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

type fixture struct {
	shiftRepo  *repository.GormShiftScheduleRepository
	absenceRep *repository.GormAbsenceRequestRepository
	holidays   *NonWorkingDayService
	shifts     *ShiftService
	absences   *AbsenceService
	engine     *SchedulingService
	clock      *testutil.FixedClock
	events     *recorder
}

var scope = models.Scope{StaffID: 7, HotelID: 1}

func newFixture(t *testing.T, now time.Time) *fixture {
	t.Helper()

	db := testutil.NewDB(t)
	logger := testutil.NewLogger()

	shiftRepo, err := repository.NewGormShiftScheduleRepository(db, logger)
	require.NoError(t, err)
	absenceRepo, err := repository.NewGormAbsenceRequestRepository(db, logger)
	require.NoError(t, err)
	dayRepo, err := repository.NewGormNonWorkingDayRepository(db)
	require.NoError(t, err)

	clock := &testutil.FixedClock{T: now}
	events := &recorder{}

	f := &fixture{
		shiftRepo:  shiftRepo,
		absenceRep: absenceRepo,
		holidays:   NewNonWorkingDayService(dayRepo, logger),
		shifts:     NewShiftService(shiftRepo, clock, logger),
		absences:   NewAbsenceService(absenceRepo, clock, logger),
		clock:      clock,
		events:     events,
	}
	f.engine = NewSchedulingService(f.shifts, f.absences, f.holidays, selection.NewMemory(0), events, clock, logger)
	return f
}

func (f *fixture) addShift(t *testing.T, date string) *models.ShiftSchedule {
	t.Helper()
	shift := &models.ShiftSchedule{
		StaffID:      scope.StaffID,
		HotelID:      scope.HotelID,
		ScheduleDate: date,
		ShiftType:    models.ShiftMorning,
		ShiftStart:   "07:00",
		ShiftEnd:     "15:00",
	}
	require.NoError(t, f.shiftRepo.Create(context.Background(), shift))
	return shift
}

func (f *fixture) addAbsence(t *testing.T, start, end string, status models.AbsenceStatus) *models.AbsenceRequest {
	t.Helper()
	request := &models.AbsenceRequest{
		StaffID:     scope.StaffID,
		HotelID:     scope.HotelID,
		RequestType: models.AbsenceVacation,
		StartDate:   start,
		EndDate:     end,
		Status:      status,
	}
	require.NoError(t, f.absenceRep.Create(context.Background(), request))
	return request
}

func at(date string, hour, minute int) time.Time {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		panic(err)
	}
	return time.Date(t.Year(), t.Month(), t.Day(), hour, minute, 0, 0, time.UTC)
}

func strPtr(s string) *string {
	return &s
}
