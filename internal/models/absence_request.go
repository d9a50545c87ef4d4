// internal/models/absence_request.go
package models

import (
	"errors"
	"fmt"
	"time"
)

type AbsenceType string

const (
	AbsenceVacation AbsenceType = "vacation"
	AbsenceSick     AbsenceType = "sick"
	AbsencePersonal AbsenceType = "personal"
	AbsenceTraining AbsenceType = "training"
	AbsenceOther    AbsenceType = "other"
)

var AbsenceTypes = []AbsenceType{AbsenceVacation, AbsenceSick, AbsencePersonal, AbsenceTraining, AbsenceOther}

func (t AbsenceType) Valid() bool {
	for _, v := range AbsenceTypes {
		if t == v {
			return true
		}
	}
	return false
}

func (t AbsenceType) Emoji() string {
	switch t {
	case AbsenceVacation:
		return "🏖️"
	case AbsenceSick:
		return "🏥"
	case AbsencePersonal:
		return "🎯"
	case AbsenceTraining:
		return "📚"
	}
	return "📝"
}

type AbsenceStatus string

const (
	AbsencePending   AbsenceStatus = "pending"
	AbsenceApproved  AbsenceStatus = "approved"
	AbsenceRejected  AbsenceStatus = "rejected"
	AbsenceCancelled AbsenceStatus = "cancelled"
)

func (s AbsenceStatus) Valid() bool {
	switch s {
	case AbsencePending, AbsenceApproved, AbsenceRejected, AbsenceCancelled:
		return true
	}
	return false
}

// AbsenceRequest is a staff request to be away over an inclusive date range.
type AbsenceRequest struct {
	ID          uint          `gorm:"primaryKey" json:"id"`
	StaffID     uint          `gorm:"not null;index:idx_absence_scope_dates,priority:1" json:"staff_id"`
	HotelID     uint          `gorm:"not null;index:idx_absence_scope_dates,priority:2" json:"hotel_id"`
	RequestType AbsenceType   `gorm:"type:varchar(20);not null" json:"request_type"`
	StartDate   string        `gorm:"type:varchar(10);not null;index:idx_absence_scope_dates,priority:3" json:"start_date"`
	EndDate     string        `gorm:"type:varchar(10);not null;index:idx_absence_scope_dates,priority:4" json:"end_date"`
	Status      AbsenceStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	Notes       *string       `json:"notes"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

func (AbsenceRequest) TableName() string {
	return "absence_requests"
}

// Covers reports whether date (YYYY-MM-DD) falls inside the request range.
func (r *AbsenceRequest) Covers(date string) bool {
	return r.StartDate <= date && r.EndDate >= date
}

func (r *AbsenceRequest) IsPending() bool {
	return r.Status == AbsencePending
}

// Days returns the number of calendar days the request spans.
func (r *AbsenceRequest) Days() int {
	start, err1 := time.Parse("2006-01-02", r.StartDate)
	end, err2 := time.Parse("2006-01-02", r.EndDate)
	if err1 != nil || err2 != nil || end.Before(start) {
		return 0
	}
	return int(end.Sub(start).Hours()/24) + 1
}

func (r *AbsenceRequest) Validate() error {
	if r.StaffID == 0 || r.HotelID == 0 {
		return errors.New("staff and hotel are required")
	}
	if !r.RequestType.Valid() {
		return fmt.Errorf("invalid request type %q", r.RequestType)
	}
	if !r.Status.Valid() {
		return fmt.Errorf("invalid status %q", r.Status)
	}
	if _, err := time.Parse("2006-01-02", r.StartDate); err != nil {
		return fmt.Errorf("invalid start date %q", r.StartDate)
	}
	if _, err := time.Parse("2006-01-02", r.EndDate); err != nil {
		return fmt.Errorf("invalid end date %q", r.EndDate)
	}
	if r.StartDate > r.EndDate {
		return errors.New("start date is after end date")
	}
	return nil
}
