package user

import "time"

type Role string

const (
	RoleAdmin    Role = "admin"    // Can export organization-wide reports
	RoleEmployee Role = "employee" // Regular member
)

type User struct {
	ID        string
	Name      string
	Email     string
	Role      Role
	TeamID    *string
	IsBlocked bool
	CreatedAt time.Time
	UpdatedAt time.Time

	// DTO / Join
	TeamName *string
}

// IsAdmin checks if user is an administrator
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// HasTeam reports whether the user belongs to a team
func (u *User) HasTeam() bool {
	return u.TeamID != nil && *u.TeamID != ""
}
