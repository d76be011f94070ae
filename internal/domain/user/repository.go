package user

import (
	"context"
)

// UserRepository is a read-only view of the user directory.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (User, error)
	// List returns every user ordered by name, joined with the team name.
	List(ctx context.Context) ([]User, error)
}
