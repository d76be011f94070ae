package spreadsheet

import (
	"bytes"
	"testing"
	"time"

	"github.com/cmlabs-hris/crm-attendance/internal/domain/attendance"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestWriteMembersSnapshot(t *testing.T) {
	day := time.Date(2024, 3, 10, 0, 0, 0, 0, time.Local)
	notes := "client visit"

	snapshot := attendance.AllMembersResponse{
		Date: "2024-03-10",
		OverallStats: attendance.OverallStats{
			TotalEmployees: 2,
			PresentCount:   1,
			AbsentCount:    1,
			TotalWorkHours: 9,
			AvgWorkHours:   4.5,
		},
		Members: []attendance.MemberSnapshot{
			{
				UserID: "u1",
				Name:   "Ana",
				Email:  "ana@example.com",
				Team:   &attendance.TeamRef{ID: "t1", Name: "Sales"},
				Attendance: attendance.AttendanceResponse{
					Status:    attendance.StatusPresent,
					CheckIn:   &attendance.PunchResponse{Time: day.Add(9 * time.Hour)},
					CheckOut:  &attendance.PunchResponse{Time: day.Add(18 * time.Hour)},
					WorkHours: 9,
					Notes:     &notes,
				},
			},
			{
				UserID:     "u2",
				Name:       "Bo",
				Email:      "bo@example.com",
				Attendance: attendance.AttendanceResponse{Status: attendance.StatusAbsent},
			},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteMembersSnapshot(&buf, snapshot))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{MembersSheet, SummarySheet}, f.GetSheetList())

	rows, err := f.GetRows(MembersSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Name", rows[0][0])
	assert.Equal(t, []string{"Ana", "ana@example.com", "Sales", "present", "09:00", "18:00", "9", "client visit"}, rows[1])
	assert.Equal(t, "Bo", rows[2][0])
	assert.Equal(t, "", rows[2][2])
	assert.Equal(t, "absent", rows[2][3])

	summary, err := f.GetRows(SummarySheet)
	require.NoError(t, err)
	require.Len(t, summary, 9)
	assert.Equal(t, []string{"Date", "2024-03-10"}, summary[1])
	assert.Equal(t, []string{"Total Employees", "2"}, summary[2])
	assert.Equal(t, []string{"Average Work Hours", "4.5"}, summary[8])
}
