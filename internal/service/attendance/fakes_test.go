package attendance

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/cmlabs-hris/crm-attendance/internal/domain/attendance"
	"github.com/cmlabs-hris/crm-attendance/internal/domain/team"
	"github.com/cmlabs-hris/crm-attendance/internal/domain/user"
)

// memAttendanceRepo keeps records in memory and enforces one record per
// user and day like the real stores.
type memAttendanceRepo struct {
	mu        sync.Mutex
	records   map[string]attendance.Attendance
	seq       int
	creates   int
	updates   int
	createErr error
}

func newMemAttendanceRepo() *memAttendanceRepo {
	return &memAttendanceRepo{records: map[string]attendance.Attendance{}}
}

func sameDay(a, b time.Time) bool {
	return attendance.DayOf(a).Equal(attendance.DayOf(b))
}

func (r *memAttendanceRepo) Create(_ context.Context, a attendance.Attendance) (attendance.Attendance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.createErr != nil {
		return attendance.Attendance{}, r.createErr
	}
	for _, existing := range r.records {
		if existing.UserID == a.UserID && sameDay(existing.Date, a.Date) {
			return attendance.Attendance{}, attendance.ErrDuplicateAttendance
		}
	}

	r.seq++
	r.creates++
	a.ID = fmt.Sprintf("att-%d", r.seq)
	a.CreatedAt = time.Now()
	a.UpdatedAt = a.CreatedAt
	a.UserName, a.UserEmail, a.UserRole = nil, nil, nil
	r.records[a.ID] = a
	return a, nil
}

func (r *memAttendanceRepo) GetByID(_ context.Context, id string) (attendance.Attendance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.records[id]
	if !ok {
		return attendance.Attendance{}, attendance.ErrAttendanceNotFound
	}
	return a, nil
}

func (r *memAttendanceRepo) GetByUserAndDay(_ context.Context, userID string, day time.Time) (*attendance.Attendance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, a := range r.records {
		if a.UserID == userID && sameDay(a.Date, day) {
			return &a, nil
		}
	}
	return nil, nil
}

func (r *memAttendanceRepo) Update(_ context.Context, a attendance.Attendance) (attendance.Attendance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.records[a.ID]
	if !ok {
		return attendance.Attendance{}, attendance.ErrAttendanceNotFound
	}
	r.updates++
	a.CreatedAt = existing.CreatedAt
	a.UpdatedAt = time.Now()
	r.records[a.ID] = a
	return a, nil
}

func (r *memAttendanceRepo) filter(keep func(attendance.Attendance) bool) []attendance.Attendance {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := []attendance.Attendance{}
	for _, a := range r.records {
		if keep(a) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out
}

func inRange(d, start, end time.Time) bool {
	return !d.Before(attendance.DayOf(start)) && !d.After(end)
}

func (r *memAttendanceRepo) ListByUserAndRange(_ context.Context, userID string, start, end time.Time) ([]attendance.Attendance, error) {
	return r.filter(func(a attendance.Attendance) bool {
		return a.UserID == userID && inRange(a.Date, start, end)
	}), nil
}

func (r *memAttendanceRepo) ListByTeamAndDay(_ context.Context, teamID string, day time.Time) ([]attendance.Attendance, error) {
	return r.filter(func(a attendance.Attendance) bool {
		return a.TeamID == teamID && sameDay(a.Date, day)
	}), nil
}

func (r *memAttendanceRepo) ListByDay(_ context.Context, day time.Time) ([]attendance.Attendance, error) {
	return r.filter(func(a attendance.Attendance) bool { return sameDay(a.Date, day) }), nil
}

func (r *memAttendanceRepo) GetUserStats(ctx context.Context, userID string, start, end time.Time) (attendance.UserStats, error) {
	list, _ := r.ListByUserAndRange(ctx, userID, start, end)

	var s attendance.UserStats
	for _, a := range list {
		s.TotalDays++
		s.TotalWorkHours += a.WorkHours
		switch a.Status {
		case attendance.StatusPresent:
			s.PresentDays++
		case attendance.StatusHalfDay:
			s.HalfDays++
		case attendance.StatusAbsent:
			s.AbsentDays++
		case attendance.StatusLeave:
			s.LeaveDays++
		}
	}
	s.TotalWorkHours = attendance.RoundHours(s.TotalWorkHours)
	if s.TotalDays > 0 {
		s.AvgWorkHours = attendance.RoundHours(s.TotalWorkHours / float64(s.TotalDays))
	}
	return s, nil
}

func (r *memAttendanceRepo) GetTeamDailyStats(ctx context.Context, teamID string, day time.Time) ([]attendance.StatusCount, error) {
	list, _ := r.ListByTeamAndDay(ctx, teamID, day)

	buckets := map[attendance.Status]*attendance.StatusCount{}
	for _, a := range list {
		b, ok := buckets[a.Status]
		if !ok {
			b = &attendance.StatusCount{Status: a.Status}
			buckets[a.Status] = b
		}
		b.Count++
		b.TotalWorkHours += a.WorkHours
	}

	out := []attendance.StatusCount{}
	for _, s := range attendance.Statuses {
		if b, ok := buckets[s]; ok {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (r *memAttendanceRepo) writes() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.creates + r.updates
}

type memUserRepo struct {
	users []user.User
}

func (r *memUserRepo) GetByID(_ context.Context, id string) (user.User, error) {
	for _, u := range r.users {
		if u.ID == id {
			return u, nil
		}
	}
	return user.User{}, user.ErrUserNotFound
}

func (r *memUserRepo) List(context.Context) ([]user.User, error) {
	return append([]user.User{}, r.users...), nil
}

type memTeamRepo struct {
	teams []team.Team
}

func (r *memTeamRepo) List(context.Context) ([]team.Team, error) {
	return append([]team.Team{}, r.teams...), nil
}

func (r *memTeamRepo) GetByID(_ context.Context, id string) (team.Team, error) {
	for _, t := range r.teams {
		if t.ID == id {
			return t, nil
		}
	}
	return team.Team{}, team.ErrTeamNotFound
}
