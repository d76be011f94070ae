package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/cmlabs-hris/crm-attendance/internal/domain/attendance"
	"github.com/cmlabs-hris/crm-attendance/internal/handler/http/middleware"
	"github.com/cmlabs-hris/crm-attendance/internal/handler/http/response"
	"github.com/cmlabs-hris/crm-attendance/internal/pkg/spreadsheet"
	"github.com/go-chi/chi/v5"
)

type AttendanceHandler interface {
	Mark(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	GetUser(w http.ResponseWriter, r *http.Request)
	GetTeam(w http.ResponseWriter, r *http.Request)
	TeamsSummary(w http.ResponseWriter, r *http.Request)
	AllMembers(w http.ResponseWriter, r *http.Request)
	ExportAllMembers(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
}

func NewAttendanceHandler(attendanceService attendance.AttendanceService) AttendanceHandler {
	return &attendanceHandlerImpl{
		attendanceService: attendanceService,
	}
}

func queryParam(r *http.Request, key string) *string {
	if !r.URL.Query().Has(key) {
		return nil
	}
	v := r.URL.Query().Get(key)
	return &v
}

// Mark implements AttendanceHandler.
func (h *attendanceHandlerImpl) Mark(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.UserFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	var req attendance.MarkAttendanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Debug("Failed to decode mark request", "error", err)
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.attendanceService.MarkAttendance(r.Context(), actor.ID, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, attendance.AttendanceMessageResponse{
		Message:    "Attendance marked successfully",
		Attendance: result,
	})
}

// Update implements AttendanceHandler.
func (h *attendanceHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.UserFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	var req attendance.UpdateAttendanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Debug("Failed to decode update request", "error", err)
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.ID = chi.URLParam(r, "attendanceId")

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.attendanceService.UpdateAttendance(r.Context(), actor.ID, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, attendance.AttendanceMessageResponse{
		Message:    "Attendance updated successfully",
		Attendance: result,
	})
}

// GetUser implements AttendanceHandler.
func (h *attendanceHandlerImpl) GetUser(w http.ResponseWriter, r *http.Request) {
	filter := attendance.UserAttendanceFilter{
		UserID:    chi.URLParam(r, "userId"),
		StartDate: queryParam(r, "startDate"),
		EndDate:   queryParam(r, "endDate"),
	}

	result, err := h.attendanceService.GetUserAttendance(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// GetTeam implements AttendanceHandler.
func (h *attendanceHandlerImpl) GetTeam(w http.ResponseWriter, r *http.Request) {
	filter := attendance.TeamAttendanceFilter{
		TeamID: chi.URLParam(r, "teamId"),
		Date:   queryParam(r, "date"),
	}

	result, err := h.attendanceService.GetTeamAttendance(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// TeamsSummary implements AttendanceHandler.
func (h *attendanceHandlerImpl) TeamsSummary(w http.ResponseWriter, r *http.Request) {
	day, verr := attendance.ParseDayParam(queryParam(r, "date"), time.Now())
	if verr != nil {
		response.HandleError(w, verr)
		return
	}

	result, err := h.attendanceService.GetAllTeamsSummary(r.Context(), day)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// AllMembers implements AttendanceHandler.
func (h *attendanceHandlerImpl) AllMembers(w http.ResponseWriter, r *http.Request) {
	day, verr := attendance.ParseDayParam(queryParam(r, "date"), time.Now())
	if verr != nil {
		response.HandleError(w, verr)
		return
	}

	result, err := h.attendanceService.GetAllMembersSnapshot(r.Context(), day)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ExportAllMembers implements AttendanceHandler.
func (h *attendanceHandlerImpl) ExportAllMembers(w http.ResponseWriter, r *http.Request) {
	day, verr := attendance.ParseDayParam(queryParam(r, "date"), time.Now())
	if verr != nil {
		response.HandleError(w, verr)
		return
	}

	snapshot, err := h.attendanceService.GetAllMembersSnapshot(r.Context(), day)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	// Render fully before writing headers so a failure can still become a 500.
	var buf bytes.Buffer
	if err := spreadsheet.WriteMembersSnapshot(&buf, snapshot); err != nil {
		response.HandleError(w, err)
		return
	}

	filename := fmt.Sprintf("attendance-%s.xlsx", snapshot.Date)
	w.Header().Set("Content-Type", spreadsheet.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		slog.Error("Failed to write export", "error", err)
	}
}
