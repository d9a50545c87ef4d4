package models

import (
	"errors"
	"fmt"
	"time"
)

type ShiftType string

const (
	ShiftMorning   ShiftType = "MORNING"
	ShiftAfternoon ShiftType = "AFTERNOON"
	ShiftEvening   ShiftType = "EVENING"
	ShiftNight     ShiftType = "NIGHT"
	ShiftSplit     ShiftType = "SPLIT"
)

func (t ShiftType) Valid() bool {
	switch t {
	case ShiftMorning, ShiftAfternoon, ShiftEvening, ShiftNight, ShiftSplit:
		return true
	}
	return false
}

type ShiftStatus string

// Shift statuses
const (
	ShiftScheduled ShiftStatus = "SCHEDULED"
	ShiftConfirmed ShiftStatus = "CONFIRMED"
	ShiftCompleted ShiftStatus = "COMPLETED"
	ShiftCancelled ShiftStatus = "CANCELLED"
)

func (s ShiftStatus) Valid() bool {
	switch s {
	case ShiftScheduled, ShiftConfirmed, ShiftCompleted, ShiftCancelled:
		return true
	}
	return false
}

// ShiftSchedule is one day's assigned work period for a staff member.
type ShiftSchedule struct {
	ID           uint        `gorm:"primarykey" json:"id"`
	StaffID      uint        `gorm:"not null;uniqueIndex:idx_shift_scope_date,priority:1" json:"staff_id"`
	HotelID      uint        `gorm:"not null;uniqueIndex:idx_shift_scope_date,priority:2" json:"hotel_id"`
	ScheduleDate string      `gorm:"type:varchar(10);not null;uniqueIndex:idx_shift_scope_date,priority:3" json:"schedule_date"`
	ShiftType    ShiftType   `gorm:"type:varchar(16);not null" json:"shift_type"`
	ShiftStart   string      `gorm:"type:varchar(5);not null" json:"shift_start"`
	ShiftEnd     string      `gorm:"type:varchar(5);not null" json:"shift_end"`
	Status       ShiftStatus `gorm:"type:varchar(16);not null;default:'SCHEDULED';index" json:"status"`

	IsConfirmed bool       `gorm:"not null;default:false" json:"is_confirmed"`
	ConfirmedAt *time.Time `json:"confirmed_at"`
	ConfirmedBy *uint      `json:"confirmed_by"`

	ActualStartTime *time.Time `json:"actual_start_time"`
	ActualEndTime   *time.Time `json:"actual_end_time"`

	BreakMinutes *int    `json:"break_minutes"`
	Notes        *string `json:"notes"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (ShiftSchedule) TableName() string {
	return "shift_schedules"
}

// BreakDuration returns the recorded break, if any.
func (s *ShiftSchedule) BreakDuration() (time.Duration, bool) {
	if s.BreakMinutes == nil {
		return 0, false
	}
	return time.Duration(*s.BreakMinutes) * time.Minute, true
}

// WorkedDuration is the clocked time minus the break. Zero until clock-out.
func (s *ShiftSchedule) WorkedDuration() time.Duration {
	if s.ActualStartTime == nil || s.ActualEndTime == nil {
		return 0
	}
	worked := s.ActualEndTime.Sub(*s.ActualStartTime)
	if br, ok := s.BreakDuration(); ok {
		worked -= br
	}
	if worked < 0 {
		return 0
	}
	return worked
}

func (s *ShiftSchedule) IsStarted() bool {
	return s.ActualStartTime != nil
}

func (s *ShiftSchedule) IsEnded() bool {
	return s.ActualEndTime != nil
}

// Validate checks the record invariants.
func (s *ShiftSchedule) Validate() error {
	if s.StaffID == 0 || s.HotelID == 0 {
		return errors.New("staff and hotel are required")
	}
	if _, err := time.Parse("2006-01-02", s.ScheduleDate); err != nil {
		return fmt.Errorf("invalid schedule date %q", s.ScheduleDate)
	}
	if !s.ShiftType.Valid() {
		return fmt.Errorf("invalid shift type %q", s.ShiftType)
	}
	if !s.Status.Valid() {
		return fmt.Errorf("invalid shift status %q", s.Status)
	}
	if _, err := time.Parse("15:04", s.ShiftStart); err != nil {
		return fmt.Errorf("invalid shift start %q", s.ShiftStart)
	}
	if _, err := time.Parse("15:04", s.ShiftEnd); err != nil {
		return fmt.Errorf("invalid shift end %q", s.ShiftEnd)
	}
	if s.ActualStartTime != nil && s.ActualEndTime != nil && s.ActualEndTime.Before(*s.ActualStartTime) {
		return errors.New("actual end time is before actual start time")
	}
	if s.BreakMinutes != nil && *s.BreakMinutes < 0 {
		return errors.New("break duration cannot be negative")
	}

	confirmedSet := 0
	if s.IsConfirmed {
		confirmedSet++
	}
	if s.ConfirmedAt != nil {
		confirmedSet++
	}
	if s.ConfirmedBy != nil {
		confirmedSet++
	}
	if confirmedSet != 0 && confirmedSet != 3 {
		return errors.New("confirmation fields must be all set or all empty")
	}
	return nil
}

// FormatTimes renders the planned and clocked times for display.
func (s *ShiftSchedule) FormatTimes() string {
	out := fmt.Sprintf("🕘 %s–%s", s.ShiftStart, s.ShiftEnd)
	if s.ActualStartTime != nil {
		out += fmt.Sprintf(" | in: %s", s.ActualStartTime.Format("15:04"))
	}
	if s.ActualEndTime != nil {
		out += fmt.Sprintf(" | out: %s", s.ActualEndTime.Format("15:04"))
	}
	return out
}
