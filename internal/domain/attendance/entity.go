package attendance

import (
	"time"
)

type Status string

const (
	StatusPresent Status = "present"
	StatusAbsent  Status = "absent"
	StatusHalfDay Status = "half-day"
	StatusLeave   Status = "leave"
)

// Statuses lists every valid status in display order.
var Statuses = []Status{StatusPresent, StatusHalfDay, StatusAbsent, StatusLeave}

func (s Status) IsValid() bool {
	switch s {
	case StatusPresent, StatusAbsent, StatusHalfDay, StatusLeave:
		return true
	}
	return false
}

// Punch is a single check-in or check-out event.
type Punch struct {
	Time      time.Time
	Latitude  *float64
	Longitude *float64
}

type Attendance struct {
	ID          string
	UserID      string
	TeamID      string
	Date        time.Time // local midnight of the covered day
	CheckIn     *Punch
	CheckOut    *Punch
	Status      Status
	WorkHours   float64
	Notes       *string
	LeaveReason *string
	IsApproved  bool
	MarkedBy    string
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// DTO / Join
	UserName  *string
	UserEmail *string
	UserRole  *string
}
