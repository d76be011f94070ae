package attendance

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/cmlabs-hris/crm-attendance/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validationFields(t *testing.T, err error) map[string]string {
	t.Helper()
	var errs validator.ValidationErrors
	require.ErrorAs(t, err, &errs)
	return errs.ToMap()
}

func TestMarkAttendanceRequest_Decode(t *testing.T) {
	body := `{
		"memberId": "u1",
		"date": "2024-03-10",
		"checkIn": "2024-03-10T09:00:00",
		"checkOut": {"time": "2024-03-10T18:00:00", "latitude": -6.2, "longitude": 106.8},
		"notes": null
	}`

	var req MarkAttendanceRequest
	require.NoError(t, json.Unmarshal([]byte(body), &req))
	require.NoError(t, req.Validate())

	assert.Equal(t, time.Date(2024, 3, 10, 0, 0, 0, 0, time.Local), req.ParsedDate)

	require.True(t, req.CheckIn.Present())
	assert.Equal(t, time.Date(2024, 3, 10, 9, 0, 0, 0, time.Local), req.CheckIn.Value.Punch().Time)
	assert.Nil(t, req.CheckIn.Value.Punch().Latitude)

	out := req.CheckOut.Value.Punch()
	require.NotNil(t, out.Latitude)
	assert.Equal(t, -6.2, *out.Latitude)
	assert.Equal(t, 106.8, *out.Longitude)

	assert.True(t, req.Notes.Set)
	assert.True(t, req.Notes.Null)
	assert.False(t, req.Status.Set)
	assert.False(t, req.LeaveReason.Set)
}

func TestMarkAttendanceRequest_Validate(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		fields []string
	}{
		{"missing member and date", `{}`, []string{"memberId", "date"}},
		{"bad date", `{"memberId":"u1","date":"10/03/2024"}`, []string{"date"}},
		{"bad status", `{"memberId":"u1","date":"2024-03-10","status":"late"}`, []string{"status"}},
		{"bad timestamp", `{"memberId":"u1","date":"2024-03-10","checkIn":"soon"}`, []string{"checkIn"}},
		{"latitude out of range", `{"memberId":"u1","date":"2024-03-10","checkIn":{"time":"2024-03-10T09:00:00Z","latitude":91}}`, []string{"checkIn.latitude"}},
		{"longitude out of range", `{"memberId":"u1","date":"2024-03-10","checkOut":{"time":"2024-03-10T09:00:00Z","longitude":-181}}`, []string{"checkOut.longitude"}},
		{"check-out before check-in", `{"memberId":"u1","date":"2024-03-10","checkIn":"2024-03-10T18:00:00Z","checkOut":"2024-03-10T09:00:00Z"}`, []string{"checkOut"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req MarkAttendanceRequest
			require.NoError(t, json.Unmarshal([]byte(tt.body), &req))

			fields := validationFields(t, req.Validate())
			assert.Len(t, fields, len(tt.fields))
			for _, f := range tt.fields {
				assert.Contains(t, fields, f)
			}
		})
	}
}

func TestUpdateAttendanceRequest_Decode(t *testing.T) {
	body := `{"checkOut":"2024-03-10T18:00:00Z","notes":null,"status":"leave","userId":"someone-else","isApproved":false}`

	var req UpdateAttendanceRequest
	require.NoError(t, json.Unmarshal([]byte(body), &req))
	req.ID = "a1"
	require.NoError(t, req.Validate())

	assert.False(t, req.CheckIn.Set)
	assert.True(t, req.CheckOut.Present())
	assert.True(t, req.Notes.Null)
	assert.Equal(t, StatusLeave, req.Status.Value)
}

func TestUpdateAttendanceRequest_NullStatusRejected(t *testing.T) {
	var req UpdateAttendanceRequest
	require.NoError(t, json.Unmarshal([]byte(`{"status":null}`), &req))
	req.ID = "a1"

	fields := validationFields(t, req.Validate())
	assert.Contains(t, fields, "status")
}

func TestUserAttendanceFilter_Validate(t *testing.T) {
	now := time.Date(2024, 3, 10, 15, 0, 0, 0, time.Local)

	t.Run("defaults to last month", func(t *testing.T) {
		f := UserAttendanceFilter{UserID: "u1"}
		require.NoError(t, f.Validate(now))
		assert.Equal(t, time.Date(2024, 2, 10, 0, 0, 0, 0, time.Local), f.Start)
		assert.Equal(t, time.Date(2024, 3, 10, 23, 59, 59, 999_000_000, time.Local), f.End)
	})

	t.Run("end date is inclusive", func(t *testing.T) {
		start, end := "2024-01-01", "2024-01-31"
		f := UserAttendanceFilter{UserID: "u1", StartDate: &start, EndDate: &end}
		require.NoError(t, f.Validate(now))
		assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.Local), f.Start)
		assert.Equal(t, time.Date(2024, 1, 31, 23, 59, 59, 999_000_000, time.Local), f.End)
	})

	t.Run("inverted range", func(t *testing.T) {
		start, end := "2024-02-01", "2024-01-01"
		f := UserAttendanceFilter{UserID: "u1", StartDate: &start, EndDate: &end}
		assert.Contains(t, validationFields(t, f.Validate(now)), "endDate")
	})
}

func TestParseDayParam(t *testing.T) {
	now := time.Date(2024, 3, 10, 15, 0, 0, 0, time.Local)

	day, errs := ParseDayParam(nil, now)
	assert.Nil(t, errs)
	assert.Equal(t, time.Date(2024, 3, 10, 0, 0, 0, 0, time.Local), day)

	s := "2024-01-05"
	day, errs = ParseDayParam(&s, now)
	assert.Nil(t, errs)
	assert.Equal(t, time.Date(2024, 1, 5, 0, 0, 0, 0, time.Local), day)

	bad := "yesterday"
	_, errs = ParseDayParam(&bad, now)
	assert.Len(t, errs, 1)
}

func TestNewAttendanceResponse(t *testing.T) {
	name, email, role := "Ana", "ana@example.com", "employee"
	a := Attendance{
		ID:        "a1",
		UserID:    "u1",
		TeamID:    "t1",
		Date:      time.Date(2024, 3, 10, 0, 0, 0, 0, time.Local),
		CheckIn:   at(9, 0),
		Status:    StatusPresent,
		UserName:  &name,
		UserEmail: &email,
		UserRole:  &role,
	}

	resp := NewAttendanceResponse(a)
	assert.Equal(t, "2024-03-10", resp.Date)
	require.NotNil(t, resp.User)
	assert.Equal(t, "Ana", *resp.User.Name)
	assert.NotNil(t, resp.CheckIn)
	assert.Nil(t, resp.CheckOut)
	assert.Nil(t, resp.CreatedAt)
}
