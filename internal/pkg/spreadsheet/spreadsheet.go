package spreadsheet

import (
	"fmt"
	"io"

	"github.com/cmlabs-hris/crm-attendance/internal/domain/attendance"
	"github.com/xuri/excelize/v2"
)

const (
	MembersSheet = "Members"
	SummarySheet = "Summary"

	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var memberHeaders = []interface{}{
	"Name", "Email", "Team", "Status", "Check In", "Check Out", "Work Hours", "Notes",
}

// WriteMembersSnapshot renders the daily snapshot as a two sheet workbook:
// one row per member, then the organization rollup.
func WriteMembersSnapshot(w io.Writer, snapshot attendance.AllMembersResponse) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", MembersSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	if err := f.SetSheetRow(MembersSheet, "A1", &memberHeaders); err != nil {
		return fmt.Errorf("write header row: %w", err)
	}
	lastHeader, _ := excelize.CoordinatesToCellName(len(memberHeaders), 1)
	if err := f.SetCellStyle(MembersSheet, "A1", lastHeader, headerStyle); err != nil {
		return fmt.Errorf("style header row: %w", err)
	}

	for i, m := range snapshot.Members {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := memberRow(m)
		if err := f.SetSheetRow(MembersSheet, cell, &row); err != nil {
			return fmt.Errorf("write member %s: %w", m.UserID, err)
		}
	}
	_ = f.SetColWidth(MembersSheet, "A", "C", 24)
	_ = f.SetColWidth(MembersSheet, "H", "H", 32)

	if _, err := f.NewSheet(SummarySheet); err != nil {
		return fmt.Errorf("create summary sheet: %w", err)
	}

	stats := snapshot.OverallStats
	summary := [][]interface{}{
		{"Metric", "Value"},
		{"Date", snapshot.Date},
		{"Total Employees", stats.TotalEmployees},
		{"Present", stats.PresentCount},
		{"Half Day", stats.HalfDayCount},
		{"Absent", stats.AbsentCount},
		{"Leave", stats.LeaveCount},
		{"Total Work Hours", stats.TotalWorkHours},
		{"Average Work Hours", stats.AvgWorkHours},
	}
	for i, row := range summary {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(SummarySheet, cell, &row); err != nil {
			return fmt.Errorf("write summary: %w", err)
		}
	}
	if err := f.SetCellStyle(SummarySheet, "A1", "B1", headerStyle); err != nil {
		return fmt.Errorf("style summary header: %w", err)
	}
	_ = f.SetColWidth(SummarySheet, "A", "A", 22)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func memberRow(m attendance.MemberSnapshot) []interface{} {
	team := ""
	if m.Team != nil {
		team = m.Team.Name
	}

	notes := ""
	if m.Attendance.Notes != nil {
		notes = *m.Attendance.Notes
	}

	return []interface{}{
		m.Name,
		m.Email,
		team,
		string(m.Attendance.Status),
		clock(m.Attendance.CheckIn),
		clock(m.Attendance.CheckOut),
		m.Attendance.WorkHours,
		notes,
	}
}

func clock(p *attendance.PunchResponse) string {
	if p == nil {
		return ""
	}
	return p.Time.Local().Format("15:04")
}
