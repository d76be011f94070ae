package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/crm-attendance/internal/domain/attendance"
	"github.com/cmlabs-hris/crm-attendance/internal/domain/auth"
	"github.com/cmlabs-hris/crm-attendance/internal/domain/team"
	"github.com/cmlabs-hris/crm-attendance/internal/domain/user"
	"github.com/cmlabs-hris/crm-attendance/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Auth domain errors
	case errors.Is(err, auth.ErrInvalidToken):
		Unauthorized(w, "Not authorized, token failed")
	case errors.Is(err, auth.ErrAccountBlocked):
		Forbidden(w, "Your account has been blocked")

	// Directory errors
	case errors.Is(err, user.ErrUserNotFound):
		NotFound(w, "User not found")
	case errors.Is(err, user.ErrAdminPrivilegeRequired):
		Forbidden(w, "Admin access required")
	case errors.Is(err, team.ErrTeamNotFound):
		NotFound(w, "Team not found")

	// Attendance domain errors
	case errors.Is(err, attendance.ErrAttendanceNotFound):
		NotFound(w, "Attendance record not found")
	case errors.Is(err, attendance.ErrNoTeamAssigned):
		BadRequest(w, "User is not assigned to any team", nil)
	case errors.Is(err, attendance.ErrDuplicateAttendance):
		Conflict(w, "Attendance for this user and day was recorded concurrently, retry the request")

	// Default
	default:
		slog.Error("unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred", err.Error())
	}
}
