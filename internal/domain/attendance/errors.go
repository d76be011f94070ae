package attendance

import "errors"

// Attendance domain errors
var (
	ErrAttendanceNotFound  = errors.New("attendance record not found")
	ErrNoTeamAssigned      = errors.New("user is not assigned to any team")
	ErrDuplicateAttendance = errors.New("attendance for this user and day already exists")
)
