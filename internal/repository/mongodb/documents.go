// Package mongodb stores attendance records and reads the user and team
// directory from MongoDB collections.
package mongodb

import (
	"time"

	"github.com/cmlabs-hris/crm-attendance/internal/domain/attendance"
	"github.com/cmlabs-hris/crm-attendance/internal/domain/team"
	"github.com/cmlabs-hris/crm-attendance/internal/domain/user"
	"go.mongodb.org/mongo-driver/v2/bson"
)

const (
	attendanceCollection = "attendances"
	userCollection       = "users"
	teamCollection       = "teams"
)

type punchDocument struct {
	Time      time.Time `bson:"time"`
	Latitude  *float64  `bson:"latitude,omitempty"`
	Longitude *float64  `bson:"longitude,omitempty"`
}

type attendanceDocument struct {
	ID          bson.ObjectID  `bson:"_id,omitempty"`
	UserID      bson.ObjectID  `bson:"userId"`
	TeamID      bson.ObjectID  `bson:"teamId"`
	Date        time.Time      `bson:"date"`
	CheckIn     *punchDocument `bson:"checkIn,omitempty"`
	CheckOut    *punchDocument `bson:"checkOut,omitempty"`
	Status      string         `bson:"status"`
	WorkHours   float64        `bson:"workHours"`
	Notes       *string        `bson:"notes,omitempty"`
	LeaveReason *string        `bson:"leaveReason,omitempty"`
	IsApproved  bool           `bson:"isApproved"`
	MarkedBy    bson.ObjectID  `bson:"markedBy"`
	CreatedAt   time.Time      `bson:"createdAt"`
	UpdatedAt   time.Time      `bson:"updatedAt"`

	// $lookup into users
	User []userDocument `bson:"user,omitempty"`
}

type userDocument struct {
	ID        bson.ObjectID  `bson:"_id"`
	Name      string         `bson:"name"`
	Email     string         `bson:"email"`
	Role      string         `bson:"role"`
	TeamID    *bson.ObjectID `bson:"teamId,omitempty"`
	IsBlocked bool           `bson:"isBlocked"`
	CreatedAt time.Time      `bson:"createdAt"`
	UpdatedAt time.Time      `bson:"updatedAt"`

	// $lookup into teams
	Team []teamDocument `bson:"team,omitempty"`
}

type teamDocument struct {
	ID        bson.ObjectID `bson:"_id"`
	Name      string        `bson:"teamName"`
	CreatedAt time.Time     `bson:"createdAt"`
	UpdatedAt time.Time     `bson:"updatedAt"`
}

// objectIDs parses every hex id, reporting false on the first invalid one.
func objectIDs(hexes ...string) ([]bson.ObjectID, bool) {
	ids := make([]bson.ObjectID, 0, len(hexes))
	for _, h := range hexes {
		id, err := bson.ObjectIDFromHex(h)
		if err != nil {
			return nil, false
		}
		ids = append(ids, id)
	}
	return ids, true
}

func toPunchDocument(p *attendance.Punch) *punchDocument {
	if p == nil {
		return nil
	}
	return &punchDocument{Time: p.Time, Latitude: p.Latitude, Longitude: p.Longitude}
}

func (p *punchDocument) toPunch() *attendance.Punch {
	if p == nil {
		return nil
	}
	return &attendance.Punch{Time: p.Time.In(time.Local), Latitude: p.Latitude, Longitude: p.Longitude}
}

func (d attendanceDocument) toEntity() attendance.Attendance {
	att := attendance.Attendance{
		ID:          d.ID.Hex(),
		UserID:      d.UserID.Hex(),
		TeamID:      d.TeamID.Hex(),
		Date:        attendance.DayOf(d.Date),
		CheckIn:     d.CheckIn.toPunch(),
		CheckOut:    d.CheckOut.toPunch(),
		Status:      attendance.Status(d.Status),
		WorkHours:   d.WorkHours,
		Notes:       d.Notes,
		LeaveReason: d.LeaveReason,
		IsApproved:  d.IsApproved,
		MarkedBy:    d.MarkedBy.Hex(),
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
	if len(d.User) > 0 {
		u := d.User[0]
		role := u.Role
		att.UserName = &u.Name
		att.UserEmail = &u.Email
		att.UserRole = &role
	}
	return att
}

func (d userDocument) toEntity() user.User {
	u := user.User{
		ID:        d.ID.Hex(),
		Name:      d.Name,
		Email:     d.Email,
		Role:      user.Role(d.Role),
		IsBlocked: d.IsBlocked,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
	if d.TeamID != nil {
		teamID := d.TeamID.Hex()
		u.TeamID = &teamID
	}
	if len(d.Team) > 0 {
		name := d.Team[0].Name
		u.TeamName = &name
	}
	return u
}

func (d teamDocument) toEntity() team.Team {
	return team.Team{
		ID:        d.ID.Hex(),
		Name:      d.Name,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}
