package mongodb

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/crm-attendance/internal/domain/team"
	"github.com/cmlabs-hris/crm-attendance/internal/pkg/database"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type teamRepositoryImpl struct {
	coll *mongo.Collection
}

func NewTeamRepository(db *database.MongoDB) team.TeamRepository {
	return &teamRepositoryImpl{coll: db.Collection(teamCollection)}
}

// List implements team.TeamRepository.
func (r *teamRepositoryImpl) List(ctx context.Context) ([]team.Team, error) {
	cursor, err := r.coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "teamName", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}

	var docs []teamDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}

	teams := make([]team.Team, 0, len(docs))
	for _, d := range docs {
		teams = append(teams, d.toEntity())
	}
	return teams, nil
}

// GetByID implements team.TeamRepository.
func (r *teamRepositoryImpl) GetByID(ctx context.Context, id string) (team.Team, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return team.Team{}, team.ErrTeamNotFound
	}

	var doc teamDocument
	if err := r.coll.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return team.Team{}, team.ErrTeamNotFound
		}
		return team.Team{}, fmt.Errorf("failed to get team by id: %w", err)
	}
	return doc.toEntity(), nil
}
