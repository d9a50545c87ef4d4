package models

import "time"

type Role string

const (
	RoleStaff   Role = "staff"
	RoleManager Role = "manager"
)

// Staff is a hotel employee known to the bot by Telegram chat ID.
type Staff struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	ChatID    int64     `gorm:"uniqueIndex;not null" json:"chat_id"`
	HotelID   uint      `gorm:"not null;index" json:"hotel_id"`
	Username  string    `json:"username"`
	FirstName string    `gorm:"not null" json:"first_name"`
	LastName  string    `json:"last_name"`
	Role      Role      `gorm:"type:varchar(16);default:'staff'" json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Staff) TableName() string {
	return "staff"
}

func (s *Staff) IsManager() bool {
	return s.Role == RoleManager
}

func (s *Staff) FullName() string {
	if s.LastName == "" {
		return s.FirstName
	}
	return s.FirstName + " " + s.LastName
}

// Scope returns the staff member's own staff+hotel scope.
func (s *Staff) Scope() Scope {
	return Scope{StaffID: s.ID, HotelID: s.HotelID}
}

// Scope selects the records of one staff member. HotelID zero matches every hotel.
type Scope struct {
	StaffID uint `json:"staff_id"`
	HotelID uint `json:"hotel_id"`
}
