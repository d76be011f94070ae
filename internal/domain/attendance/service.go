package attendance

import (
	"context"
	"time"
)

// AttendanceService defines business logic for attendance operations
type AttendanceService interface {
	// MarkAttendance creates or amends the member's record for the requested day.
	MarkAttendance(ctx context.Context, actingUserID string, req MarkAttendanceRequest) (AttendanceResponse, error)

	// UpdateAttendance patches a record addressed by id.
	UpdateAttendance(ctx context.Context, actingUserID string, req UpdateAttendanceRequest) (AttendanceResponse, error)

	GetUserAttendance(ctx context.Context, filter UserAttendanceFilter) (UserAttendanceResponse, error)

	GetTeamAttendance(ctx context.Context, filter TeamAttendanceFilter) (TeamAttendanceResponse, error)

	// GetAllTeamsSummary returns per-team status breakdowns in team listing order.
	GetAllTeamsSummary(ctx context.Context, day time.Time) ([]TeamSummary, error)

	// GetAllMembersSnapshot returns every user's state for the day with an
	// organization-wide rollup.
	GetAllMembersSnapshot(ctx context.Context, day time.Time) (AllMembersResponse, error)
}
