package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func validShift() *ShiftSchedule {
	return &ShiftSchedule{
		StaffID:      1,
		HotelID:      1,
		ScheduleDate: "2024-03-01",
		ShiftType:    ShiftMorning,
		ShiftStart:   "07:00",
		ShiftEnd:     "15:00",
		Status:       ShiftScheduled,
	}
}

func TestShiftScheduleValidate(t *testing.T) {
	assert.NoError(t, validShift().Validate())

	s := validShift()
	s.IsConfirmed = true
	assert.Error(t, s.Validate(), "confirmation fields are all-or-nothing")

	now := time.Now()
	actor := uint(7)
	s.ConfirmedAt = &now
	s.ConfirmedBy = &actor
	assert.NoError(t, s.Validate())

	start := now
	end := now.Add(-time.Minute)
	s.ActualStartTime = &start
	s.ActualEndTime = &end
	assert.Error(t, s.Validate())

	s = validShift()
	s.ShiftType = "LATE"
	assert.Error(t, s.Validate())

	s = validShift()
	s.ScheduleDate = "01.03.2024"
	assert.Error(t, s.Validate())
}

func TestWorkedDurationSubtractsBreak(t *testing.T) {
	s := validShift()
	assert.Zero(t, s.WorkedDuration())

	in := time.Date(2024, 3, 1, 7, 0, 0, 0, time.UTC)
	out := in.Add(8 * time.Hour)
	br := 30
	s.ActualStartTime, s.ActualEndTime, s.BreakMinutes = &in, &out, &br

	assert.Equal(t, 7*time.Hour+30*time.Minute, s.WorkedDuration())
}

func TestPlannedMinutes(t *testing.T) {
	s := validShift()
	assert.Equal(t, 480, PlannedMinutes(s))

	s.ShiftStart, s.ShiftEnd = "22:00", "06:00"
	assert.Equal(t, 480, PlannedMinutes(s))

	br := 60
	s.BreakMinutes = &br
	assert.Equal(t, 420, PlannedMinutes(s))
}

func TestMonthlySummary(t *testing.T) {
	ms := &MonthlySummary{}

	done := validShift()
	in := time.Date(2024, 3, 1, 7, 0, 0, 0, time.UTC)
	out := in.Add(9 * time.Hour)
	done.Status, done.ActualStartTime, done.ActualEndTime = ShiftCompleted, &in, &out

	cancelled := validShift()
	cancelled.Status = ShiftCancelled

	ms.AddShift(done)
	ms.AddShift(validShift())
	ms.AddShift(cancelled)
	ms.CalculateStats()

	assert.Equal(t, 2, ms.PlannedShifts)
	assert.Equal(t, 960, ms.PlannedMinutes)
	assert.Equal(t, 1, ms.WorkedShifts)
	assert.Equal(t, 540, ms.WorkedMinutes)
	assert.Equal(t, 420, ms.DeficitMinutes)
	assert.Zero(t, ms.OvertimeMinutes)
}

func TestAbsenceRequestCoversAndValidate(t *testing.T) {
	r := &AbsenceRequest{
		StaffID: 1, HotelID: 1,
		RequestType: AbsenceVacation,
		StartDate:   "2024-01-10",
		EndDate:     "2024-01-15",
		Status:      AbsencePending,
	}

	assert.NoError(t, r.Validate())
	assert.True(t, r.Covers("2024-01-10"))
	assert.True(t, r.Covers("2024-01-15"))
	assert.False(t, r.Covers("2024-01-16"))
	assert.Equal(t, 6, r.Days())

	r.StartDate = "2024-01-20"
	assert.Error(t, r.Validate())

	r.StartDate, r.RequestType = "2024-01-10", "holiday"
	assert.Error(t, r.Validate())
}
