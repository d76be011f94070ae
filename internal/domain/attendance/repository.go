package attendance

import (
	"context"
	"time"
)

// AttendanceRepository defines data access methods for attendance records.
// Day arguments are local midnights; implementations match the whole day.
type AttendanceRepository interface {
	// Create inserts a new record. A second record for the same user and day
	// fails with ErrDuplicateAttendance.
	Create(ctx context.Context, attendance Attendance) (Attendance, error)

	// GetByID returns ErrAttendanceNotFound when no record matches.
	GetByID(ctx context.Context, id string) (Attendance, error)

	// GetByUserAndDay returns nil when the user has no record for the day.
	GetByUserAndDay(ctx context.Context, userID string, day time.Time) (*Attendance, error)

	// Update overwrites the mutable fields of an existing record.
	Update(ctx context.Context, attendance Attendance) (Attendance, error)

	// ListByUserAndRange returns the user's records in [start, end], newest first.
	ListByUserAndRange(ctx context.Context, userID string, start, end time.Time) ([]Attendance, error)

	ListByTeamAndDay(ctx context.Context, teamID string, day time.Time) ([]Attendance, error)

	ListByDay(ctx context.Context, day time.Time) ([]Attendance, error)

	GetUserStats(ctx context.Context, userID string, start, end time.Time) (UserStats, error)

	// GetTeamDailyStats groups the team's records for the day by status.
	// Statuses with no records are omitted.
	GetTeamDailyStats(ctx context.Context, teamID string, day time.Time) ([]StatusCount, error)
}
