package attendance

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/crm-attendance/internal/domain/attendance"
	"github.com/cmlabs-hris/crm-attendance/internal/domain/team"
	"github.com/cmlabs-hris/crm-attendance/internal/domain/user"
	"github.com/cmlabs-hris/crm-attendance/internal/pkg/validator"
	"golang.org/x/sync/errgroup"
)

// summaryConcurrency bounds the per-team queries of GetAllTeamsSummary.
const summaryConcurrency = 8

type AttendanceServiceImpl struct {
	attendanceRepo attendance.AttendanceRepository
	userRepo       user.UserRepository
	teamRepo       team.TeamRepository
	now            func() time.Time
}

func NewAttendanceService(
	attendanceRepo attendance.AttendanceRepository,
	userRepo user.UserRepository,
	teamRepo team.TeamRepository,
) attendance.AttendanceService {
	return &AttendanceServiceImpl{
		attendanceRepo: attendanceRepo,
		userRepo:       userRepo,
		teamRepo:       teamRepo,
		now:            time.Now,
	}
}

// enrich copies the member's display fields onto a record.
func enrich(rec *attendance.Attendance, member user.User) {
	name, email, role := member.Name, member.Email, string(member.Role)
	rec.UserName = &name
	rec.UserEmail = &email
	rec.UserRole = &role
}

// checkPunchOrder rejects records whose merged check-out precedes check-in.
func checkPunchOrder(rec attendance.Attendance) error {
	if rec.CheckIn != nil && rec.CheckOut != nil && rec.CheckOut.Time.Before(rec.CheckIn.Time) {
		return validator.ValidationErrors{{
			Field:   "checkOut",
			Message: "checkOut must not be before checkIn",
		}}
	}
	return nil
}

// MarkAttendance implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) MarkAttendance(ctx context.Context, actingUserID string, req attendance.MarkAttendanceRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	member, err := s.userRepo.GetByID(ctx, req.MemberID)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}
	if !member.HasTeam() {
		return attendance.AttendanceResponse{}, attendance.ErrNoTeamAssigned
	}

	existing, err := s.attendanceRepo.GetByUserAndDay(ctx, member.ID, req.ParsedDate)
	if err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to look up attendance for day: %w", err)
	}

	var rec attendance.Attendance
	if existing != nil {
		rec = *existing
	} else {
		rec = attendance.Attendance{
			UserID:     member.ID,
			TeamID:     *member.TeamID,
			Date:       req.ParsedDate,
			Status:     attendance.StatusAbsent,
			IsApproved: true,
		}
	}

	// Only fields carrying a value are applied; null and empty text keep
	// what the record already has.
	if req.CheckIn.Present() {
		rec.CheckIn = req.CheckIn.Value.Punch()
	}
	if req.CheckOut.Present() {
		rec.CheckOut = req.CheckOut.Value.Punch()
	}
	if req.Status.Present() {
		rec.Status = req.Status.Value
	}
	if req.Notes.Present() && req.Notes.Value != "" {
		notes := req.Notes.Value
		rec.Notes = &notes
	}
	if req.LeaveReason.Present() && req.LeaveReason.Value != "" {
		reason := req.LeaveReason.Value
		rec.LeaveReason = &reason
	}
	rec.MarkedBy = actingUserID

	if err := checkPunchOrder(rec); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	attendance.Derive(&rec)

	var saved attendance.Attendance
	if existing != nil {
		saved, err = s.attendanceRepo.Update(ctx, rec)
	} else {
		saved, err = s.attendanceRepo.Create(ctx, rec)
	}
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	enrich(&saved, member)

	slog.Info("attendance marked",
		"attendance_id", saved.ID,
		"user_id", saved.UserID,
		"date", saved.Date.Format("2006-01-02"),
		"status", saved.Status,
		"work_hours", saved.WorkHours,
		"marked_by", actingUserID,
		"created", existing == nil,
	)

	return attendance.NewAttendanceResponse(saved), nil
}

// UpdateAttendance implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) UpdateAttendance(ctx context.Context, actingUserID string, req attendance.UpdateAttendanceRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	rec, err := s.attendanceRepo.GetByID(ctx, req.ID)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	// Punches set through an update keep only the time.
	if req.CheckIn.Set {
		rec.CheckIn = nil
		if !req.CheckIn.Null {
			rec.CheckIn = &attendance.Punch{Time: req.CheckIn.Value.Punch().Time}
		}
	}
	if req.CheckOut.Set {
		rec.CheckOut = nil
		if !req.CheckOut.Null {
			rec.CheckOut = &attendance.Punch{Time: req.CheckOut.Value.Punch().Time}
		}
	}
	if req.Status.Present() {
		rec.Status = req.Status.Value
	}
	if req.Notes.Set {
		rec.Notes = nil
		if !req.Notes.Null {
			notes := req.Notes.Value
			rec.Notes = &notes
		}
	}
	if req.LeaveReason.Set {
		rec.LeaveReason = nil
		if !req.LeaveReason.Null {
			reason := req.LeaveReason.Value
			rec.LeaveReason = &reason
		}
	}
	rec.MarkedBy = actingUserID

	if err := checkPunchOrder(rec); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	attendance.Derive(&rec)

	saved, err := s.attendanceRepo.Update(ctx, rec)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	slog.Info("attendance updated",
		"attendance_id", saved.ID,
		"status", saved.Status,
		"work_hours", saved.WorkHours,
		"marked_by", actingUserID,
	)

	return attendance.NewAttendanceResponse(saved), nil
}

// GetUserAttendance implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetUserAttendance(ctx context.Context, filter attendance.UserAttendanceFilter) (attendance.UserAttendanceResponse, error) {
	if err := filter.Validate(s.now()); err != nil {
		return attendance.UserAttendanceResponse{}, err
	}

	if _, err := s.userRepo.GetByID(ctx, filter.UserID); err != nil {
		return attendance.UserAttendanceResponse{}, err
	}

	var (
		records []attendance.Attendance
		stats   attendance.UserStats
	)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		records, err = s.attendanceRepo.ListByUserAndRange(gCtx, filter.UserID, filter.Start, filter.End)
		return err
	})

	g.Go(func() error {
		var err error
		stats, err = s.attendanceRepo.GetUserStats(gCtx, filter.UserID, filter.Start, filter.End)
		return err
	})

	if err := g.Wait(); err != nil {
		return attendance.UserAttendanceResponse{}, err
	}

	return attendance.UserAttendanceResponse{
		Attendance: attendance.NewAttendanceResponses(records),
		Statistics: stats,
	}, nil
}

// GetTeamAttendance implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetTeamAttendance(ctx context.Context, filter attendance.TeamAttendanceFilter) (attendance.TeamAttendanceResponse, error) {
	if err := filter.Validate(s.now()); err != nil {
		return attendance.TeamAttendanceResponse{}, err
	}

	if _, err := s.teamRepo.GetByID(ctx, filter.TeamID); err != nil {
		return attendance.TeamAttendanceResponse{}, err
	}

	var (
		records []attendance.Attendance
		stats   []attendance.StatusCount
	)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		records, err = s.attendanceRepo.ListByTeamAndDay(gCtx, filter.TeamID, filter.Day)
		return err
	})

	g.Go(func() error {
		var err error
		stats, err = s.attendanceRepo.GetTeamDailyStats(gCtx, filter.TeamID, filter.Day)
		return err
	})

	if err := g.Wait(); err != nil {
		return attendance.TeamAttendanceResponse{}, err
	}

	if stats == nil {
		stats = []attendance.StatusCount{}
	}

	return attendance.TeamAttendanceResponse{
		Attendance: attendance.NewAttendanceResponses(records),
		Statistics: stats,
	}, nil
}

// GetAllTeamsSummary implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetAllTeamsSummary(ctx context.Context, day time.Time) ([]attendance.TeamSummary, error) {
	day = attendance.DayOf(day)

	teams, err := s.teamRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	summaries := make([]attendance.TeamSummary, len(teams))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(summaryConcurrency)

	for i, t := range teams {
		i, t := i, t
		g.Go(func() error {
			stats, err := s.attendanceRepo.GetTeamDailyStats(gCtx, t.ID, day)
			if err != nil {
				return fmt.Errorf("team %s: %w", t.ID, err)
			}
			if stats == nil {
				stats = []attendance.StatusCount{}
			}
			summaries[i] = attendance.TeamSummary{
				TeamID:     t.ID,
				TeamName:   t.Name,
				Statistics: stats,
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return summaries, nil
}

// GetAllMembersSnapshot implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetAllMembersSnapshot(ctx context.Context, day time.Time) (attendance.AllMembersResponse, error) {
	day = attendance.DayOf(day)

	var (
		members []user.User
		records []attendance.Attendance
	)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		members, err = s.userRepo.List(gCtx)
		return err
	})

	g.Go(func() error {
		var err error
		records, err = s.attendanceRepo.ListByDay(gCtx, day)
		return err
	})

	if err := g.Wait(); err != nil {
		return attendance.AllMembersResponse{}, err
	}

	byUser := make(map[string]attendance.Attendance, len(records))
	for _, rec := range records {
		byUser[rec.UserID] = rec
	}

	overall := attendance.OverallStats{TotalEmployees: int64(len(members))}
	snapshots := make([]attendance.MemberSnapshot, 0, len(members))

	for _, m := range members {
		rec, ok := byUser[m.ID]
		if !ok {
			rec = absentPlaceholder(m, day)
		}
		enrich(&rec, m)

		switch rec.Status {
		case attendance.StatusPresent:
			overall.PresentCount++
		case attendance.StatusHalfDay:
			overall.HalfDayCount++
		case attendance.StatusAbsent:
			overall.AbsentCount++
		case attendance.StatusLeave:
			overall.LeaveCount++
		}
		overall.TotalWorkHours += rec.WorkHours

		var teamRef *attendance.TeamRef
		if m.HasTeam() {
			teamRef = &attendance.TeamRef{ID: *m.TeamID}
			if m.TeamName != nil {
				teamRef.Name = *m.TeamName
			}
		}

		snapshots = append(snapshots, attendance.MemberSnapshot{
			UserID:     m.ID,
			Name:       m.Name,
			Email:      m.Email,
			Team:       teamRef,
			Attendance: attendance.NewAttendanceResponse(rec),
			DailyStats: attendance.FlagsFor(rec.Status),
		})
	}

	overall.TotalWorkHours = attendance.RoundHours(overall.TotalWorkHours)
	if overall.TotalEmployees > 0 {
		overall.AvgWorkHours = attendance.RoundHours(overall.TotalWorkHours / float64(overall.TotalEmployees))
	}

	return attendance.AllMembersResponse{
		Date:         day.Format("2006-01-02"),
		OverallStats: overall,
		Members:      snapshots,
	}, nil
}

// absentPlaceholder stands in for a member with no record on day. It is
// never persisted.
func absentPlaceholder(m user.User, day time.Time) attendance.Attendance {
	rec := attendance.Attendance{
		UserID:     m.ID,
		Date:       day,
		Status:     attendance.StatusAbsent,
		IsApproved: true,
	}
	if m.HasTeam() {
		rec.TeamID = *m.TeamID
	}
	return rec
}
