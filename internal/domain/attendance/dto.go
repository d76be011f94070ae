package attendance

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cmlabs-hris/crm-attendance/internal/pkg/validator"
)

// ========================================
// REQUEST DTOs
// ========================================

// PunchInput accepts either a bare timestamp string or
// {"time": "...", "latitude": n, "longitude": n}.
type PunchInput struct {
	Time      string   `json:"time"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`

	parsed time.Time
}

func (p *PunchInput) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		return json.Unmarshal(b, &p.Time)
	}

	type alias PunchInput
	var v alias
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*p = PunchInput(v)
	return nil
}

// Punch converts a validated input into a Punch.
func (p PunchInput) Punch() *Punch {
	return &Punch{Time: p.parsed, Latitude: p.Latitude, Longitude: p.Longitude}
}

func (p *PunchInput) validate(field string) validator.ValidationErrors {
	var errs validator.ValidationErrors

	t, ok := validator.ParseTimestamp(p.Time)
	if !ok {
		errs = append(errs, validator.ValidationError{
			Field:   field,
			Message: field + " must be a valid timestamp",
		})
	}
	p.parsed = t

	if p.Latitude != nil && !validator.IsInRange(*p.Latitude, -90, 90) {
		errs = append(errs, validator.ValidationError{
			Field:   field + ".latitude",
			Message: "latitude must be between -90 and 90",
		})
	}
	if p.Longitude != nil && !validator.IsInRange(*p.Longitude, -180, 180) {
		errs = append(errs, validator.ValidationError{
			Field:   field + ".longitude",
			Message: "longitude must be between -180 and 180",
		})
	}

	return errs
}

// MarkAttendanceRequest creates or amends the record of a member for one day.
// Only fields carrying a value are applied to an existing record.
type MarkAttendanceRequest struct {
	MemberID    string               `json:"memberId" validate:"required"`
	Date        string               `json:"date" validate:"required"`
	CheckIn     Optional[PunchInput] `json:"checkIn"`
	CheckOut    Optional[PunchInput] `json:"checkOut"`
	Status      Optional[Status]     `json:"status"`
	Notes       Optional[string]     `json:"notes"`
	LeaveReason Optional[string]     `json:"leaveReason"`

	ParsedDate time.Time `json:"-"`
}

func (r *MarkAttendanceRequest) Validate() error {
	errs := validator.Struct(r)

	if !validator.IsEmpty(r.Date) {
		d, ok := validator.ParseTimestamp(r.Date)
		if !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "date",
				Message: "date must be a valid date (YYYY-MM-DD) or timestamp",
			})
		}
		r.ParsedDate = DayOf(d)
	}

	if r.CheckIn.Present() {
		errs = append(errs, r.CheckIn.Value.validate("checkIn")...)
	}
	if r.CheckOut.Present() {
		errs = append(errs, r.CheckOut.Value.validate("checkOut")...)
	}
	if r.Status.Present() && !r.Status.Value.IsValid() {
		errs = append(errs, invalidStatus())
	}

	errs = append(errs, punchOrder(r.CheckIn, r.CheckOut)...)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// UpdateAttendanceRequest patches a record by id. An explicit null clears
// notes, leaveReason, checkIn or checkOut. Unknown fields are ignored.
type UpdateAttendanceRequest struct {
	ID          string               `json:"-"`
	CheckIn     Optional[PunchInput] `json:"checkIn"`
	CheckOut    Optional[PunchInput] `json:"checkOut"`
	Status      Optional[Status]     `json:"status"`
	Notes       Optional[string]     `json:"notes"`
	LeaveReason Optional[string]     `json:"leaveReason"`
}

func (r *UpdateAttendanceRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ID) {
		errs = append(errs, validator.ValidationError{
			Field:   "id",
			Message: "attendance id is required",
		})
	}

	if r.CheckIn.Present() {
		errs = append(errs, r.CheckIn.Value.validate("checkIn")...)
	}
	if r.CheckOut.Present() {
		errs = append(errs, r.CheckOut.Value.validate("checkOut")...)
	}

	if r.Status.Set {
		if r.Status.Null || !r.Status.Value.IsValid() {
			errs = append(errs, invalidStatus())
		}
	}

	errs = append(errs, punchOrder(r.CheckIn, r.CheckOut)...)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func invalidStatus() validator.ValidationError {
	return validator.ValidationError{
		Field:   "status",
		Message: fmt.Sprintf("status must be one of: %s, %s, %s, %s", StatusPresent, StatusAbsent, StatusHalfDay, StatusLeave),
	}
}

// punchOrder rejects a check-out before the check-in when both arrive in the
// same request and both parsed.
func punchOrder(in, out Optional[PunchInput]) validator.ValidationErrors {
	if !in.Present() || !out.Present() {
		return nil
	}
	if in.Value.parsed.IsZero() || out.Value.parsed.IsZero() {
		return nil
	}
	if out.Value.parsed.Before(in.Value.parsed) {
		return validator.ValidationErrors{{
			Field:   "checkOut",
			Message: "checkOut must not be before checkIn",
		}}
	}
	return nil
}

type UserAttendanceFilter struct {
	UserID    string
	StartDate *string
	EndDate   *string

	Start time.Time
	End   time.Time
}

// Validate resolves the inclusive day range, defaulting to the last month.
func (f *UserAttendanceFilter) Validate(now time.Time) error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(f.UserID) {
		errs = append(errs, validator.ValidationError{Field: "userId", Message: "userId is required"})
	}

	f.Start = DayOf(now.AddDate(0, -1, 0))
	_, f.End = DayBounds(now)

	if f.StartDate != nil && !validator.IsEmpty(*f.StartDate) {
		t, ok := validator.ParseTimestamp(*f.StartDate)
		if !ok {
			errs = append(errs, validator.ValidationError{Field: "startDate", Message: "startDate must be a valid date (YYYY-MM-DD)"})
		}
		f.Start = DayOf(t)
	}
	if f.EndDate != nil && !validator.IsEmpty(*f.EndDate) {
		t, ok := validator.ParseTimestamp(*f.EndDate)
		if !ok {
			errs = append(errs, validator.ValidationError{Field: "endDate", Message: "endDate must be a valid date (YYYY-MM-DD)"})
		}
		_, f.End = DayBounds(t)
	}

	if len(errs) == 0 && f.End.Before(f.Start) {
		errs = append(errs, validator.ValidationError{Field: "endDate", Message: "endDate must not be before startDate"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type TeamAttendanceFilter struct {
	TeamID string
	Date   *string

	Day time.Time
}

func (f *TeamAttendanceFilter) Validate(now time.Time) error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(f.TeamID) {
		errs = append(errs, validator.ValidationError{Field: "teamId", Message: "teamId is required"})
	}

	day, err := ParseDayParam(f.Date, now)
	if err != nil {
		errs = append(errs, err...)
	}
	f.Day = day

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ParseDayParam resolves an optional ?date query value to local midnight,
// falling back to the day of now.
func ParseDayParam(date *string, now time.Time) (time.Time, validator.ValidationErrors) {
	if date == nil || validator.IsEmpty(*date) {
		return DayOf(now), nil
	}
	t, ok := validator.ParseTimestamp(*date)
	if !ok {
		return time.Time{}, validator.ValidationErrors{{
			Field:   "date",
			Message: "date must be a valid date (YYYY-MM-DD)",
		}}
	}
	return DayOf(t), nil
}

// ========================================
// RESPONSE DTOs
// ========================================

type PunchResponse struct {
	Time      time.Time `json:"time"`
	Latitude  *float64  `json:"latitude,omitempty"`
	Longitude *float64  `json:"longitude,omitempty"`
}

type UserSummary struct {
	ID    string  `json:"id"`
	Name  *string `json:"name"`
	Email *string `json:"email"`
	Role  *string `json:"role"`
}

type AttendanceResponse struct {
	ID          string         `json:"id"`
	UserID      string         `json:"userId"`
	User        *UserSummary   `json:"user,omitempty"`
	TeamID      string         `json:"teamId"`
	Date        string         `json:"date"`
	CheckIn     *PunchResponse `json:"checkIn"`
	CheckOut    *PunchResponse `json:"checkOut"`
	Status      Status         `json:"status"`
	WorkHours   float64        `json:"workHours"`
	Notes       *string        `json:"notes"`
	LeaveReason *string        `json:"leaveReason"`
	IsApproved  bool           `json:"isApproved"`
	MarkedBy    string         `json:"markedBy"`
	CreatedAt   *time.Time     `json:"createdAt,omitempty"`
	UpdatedAt   *time.Time     `json:"updatedAt,omitempty"`
}

// NewAttendanceResponse maps a record to its wire form. Placeholders that were
// never stored carry no timestamps.
func NewAttendanceResponse(a Attendance) AttendanceResponse {
	resp := AttendanceResponse{
		ID:          a.ID,
		UserID:      a.UserID,
		TeamID:      a.TeamID,
		Date:        a.Date.Format("2006-01-02"),
		CheckIn:     toPunchResponse(a.CheckIn),
		CheckOut:    toPunchResponse(a.CheckOut),
		Status:      a.Status,
		WorkHours:   a.WorkHours,
		Notes:       a.Notes,
		LeaveReason: a.LeaveReason,
		IsApproved:  a.IsApproved,
		MarkedBy:    a.MarkedBy,
	}
	if a.UserName != nil || a.UserEmail != nil || a.UserRole != nil {
		resp.User = &UserSummary{ID: a.UserID, Name: a.UserName, Email: a.UserEmail, Role: a.UserRole}
	}
	if !a.CreatedAt.IsZero() {
		resp.CreatedAt = &a.CreatedAt
	}
	if !a.UpdatedAt.IsZero() {
		resp.UpdatedAt = &a.UpdatedAt
	}
	return resp
}

func NewAttendanceResponses(list []Attendance) []AttendanceResponse {
	out := make([]AttendanceResponse, 0, len(list))
	for _, a := range list {
		out = append(out, NewAttendanceResponse(a))
	}
	return out
}

func toPunchResponse(p *Punch) *PunchResponse {
	if p == nil {
		return nil
	}
	return &PunchResponse{Time: p.Time, Latitude: p.Latitude, Longitude: p.Longitude}
}

type AttendanceMessageResponse struct {
	Message    string             `json:"message"`
	Attendance AttendanceResponse `json:"attendance"`
}

// UserStats summarizes one user's records over a date range.
type UserStats struct {
	TotalDays      int64   `json:"totalDays"`
	PresentDays    int64   `json:"presentDays"`
	HalfDays       int64   `json:"halfDays"`
	AbsentDays     int64   `json:"absentDays"`
	LeaveDays      int64   `json:"leaveDays"`
	TotalWorkHours float64 `json:"totalWorkHours"`
	AvgWorkHours   float64 `json:"avgWorkHours"`
}

type UserAttendanceResponse struct {
	Attendance []AttendanceResponse `json:"attendance"`
	Statistics UserStats            `json:"statistics"`
}

// StatusCount is one bucket of a team's daily breakdown.
type StatusCount struct {
	Status         Status  `json:"status"`
	Count          int64   `json:"count"`
	TotalWorkHours float64 `json:"totalWorkHours"`
}

type TeamAttendanceResponse struct {
	Attendance []AttendanceResponse `json:"attendance"`
	Statistics []StatusCount        `json:"statistics"`
}

type TeamSummary struct {
	TeamID     string        `json:"teamId"`
	TeamName   string        `json:"teamName"`
	Statistics []StatusCount `json:"statistics"`
}

type TeamRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type DailyFlags struct {
	Present bool `json:"present"`
	HalfDay bool `json:"halfDay"`
	Absent  bool `json:"absent"`
	Leave   bool `json:"leave"`
}

func FlagsFor(s Status) DailyFlags {
	return DailyFlags{
		Present: s == StatusPresent,
		HalfDay: s == StatusHalfDay,
		Absent:  s == StatusAbsent,
		Leave:   s == StatusLeave,
	}
}

type MemberSnapshot struct {
	UserID     string             `json:"userId"`
	Name       string             `json:"name"`
	Email      string             `json:"email"`
	Team       *TeamRef           `json:"team"`
	Attendance AttendanceResponse `json:"attendance"`
	DailyStats DailyFlags         `json:"dailyStats"`
}

type OverallStats struct {
	TotalEmployees int64   `json:"totalEmployees"`
	PresentCount   int64   `json:"presentCount"`
	HalfDayCount   int64   `json:"halfDayCount"`
	AbsentCount    int64   `json:"absentCount"`
	LeaveCount     int64   `json:"leaveCount"`
	TotalWorkHours float64 `json:"totalWorkHours"`
	AvgWorkHours   float64 `json:"avgWorkHours"`
}

type AllMembersResponse struct {
	Date         string           `json:"date"`
	OverallStats OverallStats     `json:"overallStats"`
	Members      []MemberSnapshot `json:"members"`
}
