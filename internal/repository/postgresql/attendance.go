package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/crm-attendance/internal/domain/attendance"
	"github.com/cmlabs-hris/crm-attendance/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

const attendanceColumns = `
	a.id, a.user_id, a.team_id, a.date,
	a.check_in_time, a.check_in_latitude, a.check_in_longitude,
	a.check_out_time, a.check_out_latitude, a.check_out_longitude,
	a.status, a.work_hours, a.notes, a.leave_reason, a.is_approved, a.marked_by,
	a.created_at, a.updated_at,
	u.name, u.email, u.role
`

const attendanceFrom = `
	FROM attendances a
	LEFT JOIN users u ON u.id = a.user_id
`

type attendanceRepository struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAttendance(row rowScanner) (attendance.Attendance, error) {
	var (
		att             attendance.Attendance
		status          string
		inTime, outTime *time.Time
		inLat, inLong   *float64
		outLat, outLong *float64
	)

	err := row.Scan(
		&att.ID, &att.UserID, &att.TeamID, &att.Date,
		&inTime, &inLat, &inLong,
		&outTime, &outLat, &outLong,
		&status, &att.WorkHours, &att.Notes, &att.LeaveReason, &att.IsApproved, &att.MarkedBy,
		&att.CreatedAt, &att.UpdatedAt,
		&att.UserName, &att.UserEmail, &att.UserRole,
	)
	if err != nil {
		return attendance.Attendance{}, err
	}

	att.Date = attendance.LocalDay(att.Date)
	att.Status = attendance.Status(status)
	if inTime != nil {
		att.CheckIn = &attendance.Punch{Time: *inTime, Latitude: inLat, Longitude: inLong}
	}
	if outTime != nil {
		att.CheckOut = &attendance.Punch{Time: *outTime, Latitude: outLat, Longitude: outLong}
	}

	return att, nil
}

func (a *attendanceRepository) list(ctx context.Context, op string, query string, args ...any) ([]attendance.Attendance, error) {
	q := database.GetQuerier(ctx, a.db)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to %s: %w", op, err)
	}
	defer rows.Close()

	records := []attendance.Attendance{}
	for rows.Next() {
		att, err := scanAttendance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance: %w", err)
		}
		records = append(records, att)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to %s: %w", op, err)
	}

	return records, nil
}

// dateParam normalizes t to its local calendar day; pgx encodes a DATE from
// the year, month and day of the value in its own location.
func dateParam(t time.Time) time.Time {
	return attendance.DayOf(t)
}

func punchArgs(p *attendance.Punch) (*time.Time, *float64, *float64) {
	if p == nil {
		return nil, nil, nil
	}
	t := p.Time
	return &t, p.Latitude, p.Longitude
}

// Create implements attendance.AttendanceRepository.
func (a *attendanceRepository) Create(ctx context.Context, newAttendance attendance.Attendance) (attendance.Attendance, error) {
	q := database.GetQuerier(ctx, a.db)

	id, err := uuid.NewV7()
	if err != nil {
		return attendance.Attendance{}, fmt.Errorf("failed to generate attendance id: %w", err)
	}
	newAttendance.ID = id.String()

	inTime, inLat, inLong := punchArgs(newAttendance.CheckIn)
	outTime, outLat, outLong := punchArgs(newAttendance.CheckOut)

	query := `
		INSERT INTO attendances (
			id, user_id, team_id, date,
			check_in_time, check_in_latitude, check_in_longitude,
			check_out_time, check_out_latitude, check_out_longitude,
			status, work_hours, notes, leave_reason, is_approved, marked_by
		) VALUES (
			$1, $2, $3, $4::date, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16
		) RETURNING created_at, updated_at
	`

	err = q.QueryRow(ctx, query,
		newAttendance.ID,
		newAttendance.UserID,
		newAttendance.TeamID,
		dateParam(newAttendance.Date),
		inTime, inLat, inLong,
		outTime, outLat, outLong,
		string(newAttendance.Status),
		newAttendance.WorkHours,
		newAttendance.Notes,
		newAttendance.LeaveReason,
		newAttendance.IsApproved,
		newAttendance.MarkedBy,
	).Scan(&newAttendance.CreatedAt, &newAttendance.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return attendance.Attendance{}, attendance.ErrDuplicateAttendance
		}
		return attendance.Attendance{}, fmt.Errorf("failed to create attendance: %w", err)
	}

	return newAttendance, nil
}

// GetByID implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetByID(ctx context.Context, id string) (attendance.Attendance, error) {
	if _, err := uuid.Parse(id); err != nil {
		return attendance.Attendance{}, attendance.ErrAttendanceNotFound
	}

	q := database.GetQuerier(ctx, a.db)

	query := `SELECT ` + attendanceColumns + attendanceFrom + ` WHERE a.id = $1`

	att, err := scanAttendance(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Attendance{}, attendance.ErrAttendanceNotFound
		}
		return attendance.Attendance{}, fmt.Errorf("failed to get attendance by id: %w", err)
	}

	return att, nil
}

// GetByUserAndDay implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetByUserAndDay(ctx context.Context, userID string, day time.Time) (*attendance.Attendance, error) {
	q := database.GetQuerier(ctx, a.db)

	query := `SELECT ` + attendanceColumns + attendanceFrom + `
		WHERE a.user_id = $1
		  AND a.date = $2::date
		LIMIT 1
	`

	att, err := scanAttendance(q.QueryRow(ctx, query, userID, dateParam(day)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get attendance by user and day: %w", err)
	}

	return &att, nil
}

// Update implements attendance.AttendanceRepository.
func (a *attendanceRepository) Update(ctx context.Context, att attendance.Attendance) (attendance.Attendance, error) {
	if _, err := uuid.Parse(att.ID); err != nil {
		return attendance.Attendance{}, attendance.ErrAttendanceNotFound
	}

	q := database.GetQuerier(ctx, a.db)

	inTime, inLat, inLong := punchArgs(att.CheckIn)
	outTime, outLat, outLong := punchArgs(att.CheckOut)

	query := `
		UPDATE attendances SET
			check_in_time = $2, check_in_latitude = $3, check_in_longitude = $4,
			check_out_time = $5, check_out_latitude = $6, check_out_longitude = $7,
			status = $8, work_hours = $9, notes = $10, leave_reason = $11,
			is_approved = $12, marked_by = $13, updated_at = NOW()
		WHERE id = $1
		RETURNING created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		att.ID,
		inTime, inLat, inLong,
		outTime, outLat, outLong,
		string(att.Status),
		att.WorkHours,
		att.Notes,
		att.LeaveReason,
		att.IsApproved,
		att.MarkedBy,
	).Scan(&att.CreatedAt, &att.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Attendance{}, attendance.ErrAttendanceNotFound
		}
		return attendance.Attendance{}, fmt.Errorf("failed to update attendance: %w", err)
	}

	return att, nil
}

// ListByUserAndRange implements attendance.AttendanceRepository.
func (a *attendanceRepository) ListByUserAndRange(ctx context.Context, userID string, start, end time.Time) ([]attendance.Attendance, error) {
	query := `SELECT ` + attendanceColumns + attendanceFrom + `
		WHERE a.user_id = $1
		  AND a.date BETWEEN $2::date AND $3::date
		ORDER BY a.date DESC
	`
	return a.list(ctx, "list attendance by user", query, userID, dateParam(start), dateParam(end))
}

// ListByTeamAndDay implements attendance.AttendanceRepository.
func (a *attendanceRepository) ListByTeamAndDay(ctx context.Context, teamID string, day time.Time) ([]attendance.Attendance, error) {
	query := `SELECT ` + attendanceColumns + attendanceFrom + `
		WHERE a.team_id = $1
		  AND a.date = $2::date
		ORDER BY u.name
	`
	return a.list(ctx, "list attendance by team", query, teamID, dateParam(day))
}

// ListByDay implements attendance.AttendanceRepository.
func (a *attendanceRepository) ListByDay(ctx context.Context, day time.Time) ([]attendance.Attendance, error) {
	query := `SELECT ` + attendanceColumns + attendanceFrom + `
		WHERE a.date = $1::date
	`
	return a.list(ctx, "list attendance by day", query, dateParam(day))
}

// GetUserStats implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetUserStats(ctx context.Context, userID string, start, end time.Time) (attendance.UserStats, error) {
	q := database.GetQuerier(ctx, a.db)

	query := `
		SELECT
			COUNT(*) AS total_days,
			COALESCE(SUM(CASE WHEN status = 'present' THEN 1 ELSE 0 END), 0) AS present_days,
			COALESCE(SUM(CASE WHEN status = 'half-day' THEN 1 ELSE 0 END), 0) AS half_days,
			COALESCE(SUM(CASE WHEN status = 'absent' THEN 1 ELSE 0 END), 0) AS absent_days,
			COALESCE(SUM(CASE WHEN status = 'leave' THEN 1 ELSE 0 END), 0) AS leave_days,
			COALESCE(SUM(work_hours), 0) AS total_work_hours
		FROM attendances
		WHERE user_id = $1
		  AND date BETWEEN $2::date AND $3::date
	`

	var stats attendance.UserStats
	err := q.QueryRow(ctx, query, userID, dateParam(start), dateParam(end)).Scan(
		&stats.TotalDays, &stats.PresentDays, &stats.HalfDays, &stats.AbsentDays, &stats.LeaveDays,
		&stats.TotalWorkHours,
	)
	if err != nil {
		return attendance.UserStats{}, fmt.Errorf("failed to get user attendance stats: %w", err)
	}

	stats.TotalWorkHours = attendance.RoundHours(stats.TotalWorkHours)
	if stats.TotalDays > 0 {
		stats.AvgWorkHours = attendance.RoundHours(stats.TotalWorkHours / float64(stats.TotalDays))
	}

	return stats, nil
}

// GetTeamDailyStats implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetTeamDailyStats(ctx context.Context, teamID string, day time.Time) ([]attendance.StatusCount, error) {
	q := database.GetQuerier(ctx, a.db)

	query := `
		SELECT status, COUNT(*) AS count, COALESCE(SUM(work_hours), 0) AS total_work_hours
		FROM attendances
		WHERE team_id = $1
		  AND date = $2::date
		GROUP BY status
		ORDER BY status
	`

	rows, err := q.Query(ctx, query, teamID, dateParam(day))
	if err != nil {
		return nil, fmt.Errorf("failed to get team daily stats: %w", err)
	}
	defer rows.Close()

	stats := []attendance.StatusCount{}
	for rows.Next() {
		var (
			sc     attendance.StatusCount
			status string
		)
		if err := rows.Scan(&status, &sc.Count, &sc.TotalWorkHours); err != nil {
			return nil, fmt.Errorf("failed to scan team daily stats: %w", err)
		}
		sc.Status = attendance.Status(status)
		sc.TotalWorkHours = attendance.RoundHours(sc.TotalWorkHours)
		stats = append(stats, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to get team daily stats: %w", err)
	}

	return stats, nil
}
