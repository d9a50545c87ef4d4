package models

import "time"

// MonthlySummary compares planned shift time with clocked time for one month.
type MonthlySummary struct {
	StaffID uint `json:"staff_id"`
	Year    int  `json:"year"`
	Month   int  `json:"month"`

	PlannedShifts  int `json:"planned_shifts"`
	PlannedMinutes int `json:"planned_minutes"`

	WorkedShifts    int `json:"worked_shifts"`
	WorkedMinutes   int `json:"worked_minutes"`
	OvertimeMinutes int `json:"overtime_minutes"`
	DeficitMinutes  int `json:"deficit_minutes"`

	AbsenceDays int `json:"absence_days"`
}

// CalculateStats derives overtime and deficit from planned and worked minutes.
func (ms *MonthlySummary) CalculateStats() {
	diff := ms.WorkedMinutes - ms.PlannedMinutes
	if diff > 0 {
		ms.OvertimeMinutes = diff
		ms.DeficitMinutes = 0
	} else {
		ms.OvertimeMinutes = 0
		ms.DeficitMinutes = -diff
	}
}

// AddShift accounts one shift. Cancelled shifts are not planned time.
func (ms *MonthlySummary) AddShift(s *ShiftSchedule) {
	if s.Status == ShiftCancelled {
		return
	}
	ms.PlannedShifts++
	ms.PlannedMinutes += PlannedMinutes(s)
	if s.Status == ShiftCompleted {
		ms.WorkedShifts++
		ms.WorkedMinutes += int(s.WorkedDuration().Minutes())
	}
}

// PlannedMinutes is the scheduled length of s minus its break. Shifts that end at or
// before their start run past midnight.
func PlannedMinutes(s *ShiftSchedule) int {
	start, err1 := time.Parse("15:04", s.ShiftStart)
	end, err2 := time.Parse("15:04", s.ShiftEnd)
	if err1 != nil || err2 != nil {
		return 0
	}
	if !end.After(start) {
		end = end.Add(24 * time.Hour)
	}
	minutes := int(end.Sub(start).Minutes())
	if s.BreakMinutes != nil {
		minutes -= *s.BreakMinutes
	}
	if minutes < 0 {
		return 0
	}
	return minutes
}
