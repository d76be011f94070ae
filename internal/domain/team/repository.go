package team

import "context"

// TeamRepository is a read-only view of the team directory.
type TeamRepository interface {
	// List returns every team ordered by name.
	List(ctx context.Context) ([]Team, error)
	GetByID(ctx context.Context, id string) (Team, error)
}
