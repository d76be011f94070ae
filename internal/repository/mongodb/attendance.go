package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/crm-attendance/internal/domain/attendance"
	"github.com/cmlabs-hris/crm-attendance/internal/pkg/database"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type attendanceRepository struct {
	coll *mongo.Collection
}

func NewAttendanceRepository(db *database.MongoDB) attendance.AttendanceRepository {
	return &attendanceRepository{coll: db.Collection(attendanceCollection)}
}

// EnsureIndexes creates the per-day uniqueness constraint and the team/day
// lookup index.
func EnsureIndexes(ctx context.Context, db *database.MongoDB) error {
	_, err := db.Collection(attendanceCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "date", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("userId_date_unique"),
		},
		{
			Keys:    bson.D{{Key: "teamId", Value: 1}, {Key: "date", Value: 1}},
			Options: options.Index().SetName("teamId_date"),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create attendance indexes: %w", err)
	}
	return nil
}

// now is truncated to BSON datetime precision.
func now() time.Time {
	return time.Now().Truncate(time.Millisecond)
}

func dayRange(start, end time.Time) bson.D {
	return bson.D{{Key: "$gte", Value: start}, {Key: "$lte", Value: end}}
}

var lookupUser = bson.D{{Key: "$lookup", Value: bson.D{
	{Key: "from", Value: userCollection},
	{Key: "localField", Value: "userId"},
	{Key: "foreignField", Value: "_id"},
	{Key: "as", Value: "user"},
}}}

// find runs match → sort → $lookup and decodes the enriched records.
func (r *attendanceRepository) find(ctx context.Context, op string, match bson.D, sort bson.D, limit int64) ([]attendance.Attendance, error) {
	pipeline := mongo.Pipeline{{{Key: "$match", Value: match}}}
	if sort != nil {
		pipeline = append(pipeline, bson.D{{Key: "$sort", Value: sort}})
	}
	if limit > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$limit", Value: limit}})
	}
	pipeline = append(pipeline, lookupUser)

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to %s: %w", op, err)
	}

	var docs []attendanceDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to %s: %w", op, err)
	}

	records := make([]attendance.Attendance, 0, len(docs))
	for _, d := range docs {
		records = append(records, d.toEntity())
	}
	return records, nil
}

func toDocument(a attendance.Attendance) (attendanceDocument, error) {
	ids, ok := objectIDs(a.UserID, a.TeamID, a.MarkedBy)
	if !ok {
		return attendanceDocument{}, fmt.Errorf("invalid object id in attendance for user %q", a.UserID)
	}
	return attendanceDocument{
		UserID:      ids[0],
		TeamID:      ids[1],
		Date:        attendance.DayOf(a.Date),
		CheckIn:     toPunchDocument(a.CheckIn),
		CheckOut:    toPunchDocument(a.CheckOut),
		Status:      string(a.Status),
		WorkHours:   a.WorkHours,
		Notes:       a.Notes,
		LeaveReason: a.LeaveReason,
		IsApproved:  a.IsApproved,
		MarkedBy:    ids[2],
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}, nil
}

// Create implements attendance.AttendanceRepository.
func (r *attendanceRepository) Create(ctx context.Context, newAttendance attendance.Attendance) (attendance.Attendance, error) {
	doc, err := toDocument(newAttendance)
	if err != nil {
		return attendance.Attendance{}, err
	}
	doc.ID = bson.NewObjectID()
	doc.CreatedAt = now()
	doc.UpdatedAt = doc.CreatedAt

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return attendance.Attendance{}, attendance.ErrDuplicateAttendance
		}
		return attendance.Attendance{}, fmt.Errorf("failed to create attendance: %w", err)
	}

	newAttendance.ID = doc.ID.Hex()
	newAttendance.Date = doc.Date
	newAttendance.CreatedAt = doc.CreatedAt
	newAttendance.UpdatedAt = doc.UpdatedAt
	return newAttendance, nil
}

// GetByID implements attendance.AttendanceRepository.
func (r *attendanceRepository) GetByID(ctx context.Context, id string) (attendance.Attendance, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return attendance.Attendance{}, attendance.ErrAttendanceNotFound
	}

	records, err := r.find(ctx, "get attendance by id", bson.D{{Key: "_id", Value: oid}}, nil, 1)
	if err != nil {
		return attendance.Attendance{}, err
	}
	if len(records) == 0 {
		return attendance.Attendance{}, attendance.ErrAttendanceNotFound
	}
	return records[0], nil
}

// GetByUserAndDay implements attendance.AttendanceRepository.
func (r *attendanceRepository) GetByUserAndDay(ctx context.Context, userID string, day time.Time) (*attendance.Attendance, error) {
	uid, err := bson.ObjectIDFromHex(userID)
	if err != nil {
		return nil, nil
	}

	start, end := attendance.DayBounds(day)
	match := bson.D{
		{Key: "userId", Value: uid},
		{Key: "date", Value: dayRange(start, end)},
	}

	records, err := r.find(ctx, "get attendance by user and day", match, nil, 1)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return &records[0], nil
}

// Update implements attendance.AttendanceRepository.
func (r *attendanceRepository) Update(ctx context.Context, att attendance.Attendance) (attendance.Attendance, error) {
	oid, err := bson.ObjectIDFromHex(att.ID)
	if err != nil {
		return attendance.Attendance{}, attendance.ErrAttendanceNotFound
	}

	doc, err := toDocument(att)
	if err != nil {
		return attendance.Attendance{}, err
	}

	set := bson.D{
		{Key: "status", Value: doc.Status},
		{Key: "workHours", Value: doc.WorkHours},
		{Key: "isApproved", Value: doc.IsApproved},
		{Key: "markedBy", Value: doc.MarkedBy},
		{Key: "updatedAt", Value: now()},
	}
	var unset bson.D
	optional := []struct {
		field string
		value any
		isNil bool
	}{
		{"checkIn", doc.CheckIn, doc.CheckIn == nil},
		{"checkOut", doc.CheckOut, doc.CheckOut == nil},
		{"notes", doc.Notes, doc.Notes == nil},
		{"leaveReason", doc.LeaveReason, doc.LeaveReason == nil},
	}
	for _, f := range optional {
		if f.isNil {
			unset = append(unset, bson.E{Key: f.field, Value: ""})
			continue
		}
		set = append(set, bson.E{Key: f.field, Value: f.value})
	}

	update := bson.D{{Key: "$set", Value: set}}
	if len(unset) > 0 {
		update = append(update, bson.E{Key: "$unset", Value: unset})
	}

	var updated attendanceDocument
	err = r.coll.FindOneAndUpdate(ctx, bson.D{{Key: "_id", Value: oid}}, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return attendance.Attendance{}, attendance.ErrAttendanceNotFound
		}
		return attendance.Attendance{}, fmt.Errorf("failed to update attendance: %w", err)
	}

	att.CreatedAt = updated.CreatedAt
	att.UpdatedAt = updated.UpdatedAt
	return att, nil
}

// ListByUserAndRange implements attendance.AttendanceRepository.
func (r *attendanceRepository) ListByUserAndRange(ctx context.Context, userID string, start, end time.Time) ([]attendance.Attendance, error) {
	uid, err := bson.ObjectIDFromHex(userID)
	if err != nil {
		return []attendance.Attendance{}, nil
	}

	match := bson.D{
		{Key: "userId", Value: uid},
		{Key: "date", Value: dayRange(start, end)},
	}
	return r.find(ctx, "list attendance by user", match, bson.D{{Key: "date", Value: -1}}, 0)
}

// ListByTeamAndDay implements attendance.AttendanceRepository.
func (r *attendanceRepository) ListByTeamAndDay(ctx context.Context, teamID string, day time.Time) ([]attendance.Attendance, error) {
	tid, err := bson.ObjectIDFromHex(teamID)
	if err != nil {
		return []attendance.Attendance{}, nil
	}

	start, end := attendance.DayBounds(day)
	match := bson.D{
		{Key: "teamId", Value: tid},
		{Key: "date", Value: dayRange(start, end)},
	}
	return r.find(ctx, "list attendance by team", match, bson.D{{Key: "createdAt", Value: 1}}, 0)
}

// ListByDay implements attendance.AttendanceRepository.
func (r *attendanceRepository) ListByDay(ctx context.Context, day time.Time) ([]attendance.Attendance, error) {
	start, end := attendance.DayBounds(day)
	return r.find(ctx, "list attendance by day", bson.D{{Key: "date", Value: dayRange(start, end)}}, nil, 0)
}

func countStatus(s attendance.Status) bson.D {
	return bson.D{{Key: "$sum", Value: bson.D{{Key: "$cond", Value: bson.A{
		bson.D{{Key: "$eq", Value: bson.A{"$status", string(s)}}}, 1, 0,
	}}}}}
}

// GetUserStats implements attendance.AttendanceRepository.
func (r *attendanceRepository) GetUserStats(ctx context.Context, userID string, start, end time.Time) (attendance.UserStats, error) {
	uid, err := bson.ObjectIDFromHex(userID)
	if err != nil {
		return attendance.UserStats{}, nil
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{
			{Key: "userId", Value: uid},
			{Key: "date", Value: dayRange(start, end)},
		}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "totalDays", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "presentDays", Value: countStatus(attendance.StatusPresent)},
			{Key: "halfDays", Value: countStatus(attendance.StatusHalfDay)},
			{Key: "absentDays", Value: countStatus(attendance.StatusAbsent)},
			{Key: "leaveDays", Value: countStatus(attendance.StatusLeave)},
			{Key: "totalWorkHours", Value: bson.D{{Key: "$sum", Value: "$workHours"}}},
		}}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return attendance.UserStats{}, fmt.Errorf("failed to get user attendance stats: %w", err)
	}

	var rows []struct {
		TotalDays      int64   `bson:"totalDays"`
		PresentDays    int64   `bson:"presentDays"`
		HalfDays       int64   `bson:"halfDays"`
		AbsentDays     int64   `bson:"absentDays"`
		LeaveDays      int64   `bson:"leaveDays"`
		TotalWorkHours float64 `bson:"totalWorkHours"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return attendance.UserStats{}, fmt.Errorf("failed to get user attendance stats: %w", err)
	}
	if len(rows) == 0 {
		return attendance.UserStats{}, nil
	}

	row := rows[0]
	stats := attendance.UserStats{
		TotalDays:      row.TotalDays,
		PresentDays:    row.PresentDays,
		HalfDays:       row.HalfDays,
		AbsentDays:     row.AbsentDays,
		LeaveDays:      row.LeaveDays,
		TotalWorkHours: attendance.RoundHours(row.TotalWorkHours),
	}
	if stats.TotalDays > 0 {
		stats.AvgWorkHours = attendance.RoundHours(stats.TotalWorkHours / float64(stats.TotalDays))
	}
	return stats, nil
}

// GetTeamDailyStats implements attendance.AttendanceRepository.
func (r *attendanceRepository) GetTeamDailyStats(ctx context.Context, teamID string, day time.Time) ([]attendance.StatusCount, error) {
	tid, err := bson.ObjectIDFromHex(teamID)
	if err != nil {
		return []attendance.StatusCount{}, nil
	}

	start, end := attendance.DayBounds(day)
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{
			{Key: "teamId", Value: tid},
			{Key: "date", Value: dayRange(start, end)},
		}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$status"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "totalWorkHours", Value: bson.D{{Key: "$sum", Value: "$workHours"}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to get team daily stats: %w", err)
	}

	var rows []struct {
		Status         string  `bson:"_id"`
		Count          int64   `bson:"count"`
		TotalWorkHours float64 `bson:"totalWorkHours"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to get team daily stats: %w", err)
	}

	stats := make([]attendance.StatusCount, 0, len(rows))
	for _, row := range rows {
		stats = append(stats, attendance.StatusCount{
			Status:         attendance.Status(row.Status),
			Count:          row.Count,
			TotalWorkHours: attendance.RoundHours(row.TotalWorkHours),
		})
	}
	return stats, nil
}
