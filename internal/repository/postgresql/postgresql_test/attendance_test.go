package postgresql_test

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/crm-attendance/internal/domain/attendance"
	"github.com/cmlabs-hris/crm-attendance/internal/repository/postgresql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

func clock(d time.Time, hour, minute int) *attendance.Punch {
	return &attendance.Punch{Time: d.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)}
}

func newRecord(userID, teamID string, d time.Time, status attendance.Status, hours float64) attendance.Attendance {
	return attendance.Attendance{
		UserID:     userID,
		TeamID:     teamID,
		Date:       d,
		Status:     status,
		WorkHours:  hours,
		IsApproved: true,
		MarkedBy:   userID,
	}
}

func TestAttendanceRepository_CreateAndRead(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	teamID := createTestTeam(t, ctx, "Sales")
	userID := createTestUser(t, ctx, "Ana", "employee", &teamID)
	repo := postgresql.NewAttendanceRepository(db)

	d := day(2024, 3, 10)
	lat, long := -6.2, 106.8
	rec := newRecord(userID, teamID, d, attendance.StatusPresent, 9)
	rec.CheckIn = clock(d, 9, 0)
	rec.CheckIn.Latitude, rec.CheckIn.Longitude = &lat, &long
	rec.CheckOut = clock(d, 18, 0)

	created, err := repo.Create(ctx, rec)
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	found, err := repo.GetByUserAndDay(ctx, userID, d.Add(15*time.Hour))
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, created.ID, found.ID)
	assert.True(t, found.Date.Equal(d))
	assert.True(t, found.CheckIn.Time.Equal(rec.CheckIn.Time))
	assert.Equal(t, lat, *found.CheckIn.Latitude)
	assert.Nil(t, found.CheckOut.Latitude)
	assert.Equal(t, 9.0, found.WorkHours)
	require.NotNil(t, found.UserName)
	assert.Equal(t, "Ana", *found.UserName)

	byID, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusPresent, byID.Status)

	missing, err := repo.GetByUserAndDay(ctx, userID, day(2024, 3, 11))
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestAttendanceRepository_Create_DuplicateDay(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	teamID := createTestTeam(t, ctx, "Sales")
	userID := createTestUser(t, ctx, "Ana", "employee", &teamID)
	repo := postgresql.NewAttendanceRepository(db)

	d := day(2024, 3, 10)
	_, err := repo.Create(ctx, newRecord(userID, teamID, d, attendance.StatusAbsent, 0))
	require.NoError(t, err)

	_, err = repo.Create(ctx, newRecord(userID, teamID, d, attendance.StatusLeave, 0))
	assert.ErrorIs(t, err, attendance.ErrDuplicateAttendance)
}

func TestAttendanceRepository_Update(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	teamID := createTestTeam(t, ctx, "Sales")
	userID := createTestUser(t, ctx, "Ana", "employee", &teamID)
	adminID := createTestUser(t, ctx, "Boss", "admin", nil)
	repo := postgresql.NewAttendanceRepository(db)

	d := day(2024, 3, 10)
	created, err := repo.Create(ctx, newRecord(userID, teamID, d, attendance.StatusAbsent, 0))
	require.NoError(t, err)

	notes := "late train"
	created.CheckIn = clock(d, 9, 0)
	created.CheckOut = clock(d, 13, 30)
	created.Status = attendance.StatusHalfDay
	created.WorkHours = 4.5
	created.Notes = &notes
	created.MarkedBy = adminID

	updated, err := repo.Update(ctx, created)
	require.NoError(t, err)
	assert.False(t, updated.UpdatedAt.Before(created.CreatedAt))

	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusHalfDay, got.Status)
	assert.Equal(t, 4.5, got.WorkHours)
	assert.Equal(t, "late train", *got.Notes)
	assert.Equal(t, adminID, got.MarkedBy)

	_, err = repo.Update(ctx, newRecord(userID, teamID, d, attendance.StatusAbsent, 0))
	assert.ErrorIs(t, err, attendance.ErrAttendanceNotFound)
}

func TestAttendanceRepository_GetByID_NotFound(t *testing.T) {
	db := openTestDB(t)
	repo := postgresql.NewAttendanceRepository(db)

	_, err := repo.GetByID(context.Background(), newID(t))
	assert.ErrorIs(t, err, attendance.ErrAttendanceNotFound)

	_, err = repo.GetByID(context.Background(), "garbage")
	assert.ErrorIs(t, err, attendance.ErrAttendanceNotFound)
}

func TestAttendanceRepository_UserRangeAndStats(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	teamID := createTestTeam(t, ctx, "Sales")
	userID := createTestUser(t, ctx, "Ana", "employee", &teamID)
	repo := postgresql.NewAttendanceRepository(db)

	seed := []attendance.Attendance{
		newRecord(userID, teamID, day(2024, 2, 29), attendance.StatusPresent, 9),
		newRecord(userID, teamID, day(2024, 3, 1), attendance.StatusPresent, 8.5),
		newRecord(userID, teamID, day(2024, 3, 2), attendance.StatusHalfDay, 4.25),
		newRecord(userID, teamID, day(2024, 3, 3), attendance.StatusLeave, 0),
		newRecord(userID, teamID, day(2024, 3, 4), attendance.StatusAbsent, 0),
	}
	for _, rec := range seed {
		_, err := repo.Create(ctx, rec)
		require.NoError(t, err)
	}

	start := day(2024, 3, 1)
	_, end := attendance.DayBounds(day(2024, 3, 4))

	list, err := repo.ListByUserAndRange(ctx, userID, start, end)
	require.NoError(t, err)
	require.Len(t, list, 4)
	assert.True(t, list[0].Date.Equal(day(2024, 3, 4)))
	assert.True(t, list[3].Date.Equal(day(2024, 3, 1)))

	stats, err := repo.GetUserStats(ctx, userID, start, end)
	require.NoError(t, err)
	assert.Equal(t, attendance.UserStats{
		TotalDays:      4,
		PresentDays:    1,
		HalfDays:       1,
		AbsentDays:     1,
		LeaveDays:      1,
		TotalWorkHours: 12.75,
		AvgWorkHours:   3.19,
	}, stats)

	empty, err := repo.GetUserStats(ctx, userID, day(2023, 1, 1), day(2023, 1, 31))
	require.NoError(t, err)
	assert.Equal(t, attendance.UserStats{}, empty)
}

func TestAttendanceRepository_TeamDay(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	salesID := createTestTeam(t, ctx, "Sales")
	opsID := createTestTeam(t, ctx, "Ops")
	repo := postgresql.NewAttendanceRepository(db)

	d := day(2024, 3, 10)
	statuses := []attendance.Status{attendance.StatusPresent, attendance.StatusPresent, attendance.StatusHalfDay, attendance.StatusAbsent}
	hours := []float64{9, 8, 4.5, 0}
	for i, s := range statuses {
		userID := createTestUser(t, ctx, string(rune('A'+i)), "employee", &salesID)
		_, err := repo.Create(ctx, newRecord(userID, salesID, d, s, hours[i]))
		require.NoError(t, err)
	}
	other := createTestUser(t, ctx, "Other", "employee", &opsID)
	_, err := repo.Create(ctx, newRecord(other, opsID, d, attendance.StatusLeave, 0))
	require.NoError(t, err)

	list, err := repo.ListByTeamAndDay(ctx, salesID, d)
	require.NoError(t, err)
	assert.Len(t, list, 4)

	stats, err := repo.GetTeamDailyStats(ctx, salesID, d)
	require.NoError(t, err)

	var total int64
	byStatus := map[attendance.Status]attendance.StatusCount{}
	for _, sc := range stats {
		total += sc.Count
		byStatus[sc.Status] = sc
	}
	assert.Equal(t, int64(len(list)), total)
	assert.Len(t, stats, 3)
	assert.Equal(t, int64(2), byStatus[attendance.StatusPresent].Count)
	assert.Equal(t, 17.0, byStatus[attendance.StatusPresent].TotalWorkHours)
	assert.NotContains(t, byStatus, attendance.StatusLeave)

	all, err := repo.ListByDay(ctx, d)
	require.NoError(t, err)
	assert.Len(t, all, 5)
}
