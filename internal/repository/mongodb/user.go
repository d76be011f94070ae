package mongodb

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/crm-attendance/internal/domain/user"
	"github.com/cmlabs-hris/crm-attendance/internal/pkg/database"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

type userRepositoryImpl struct {
	coll *mongo.Collection
}

func NewUserRepository(db *database.MongoDB) user.UserRepository {
	return &userRepositoryImpl{coll: db.Collection(userCollection)}
}

var lookupTeam = bson.D{{Key: "$lookup", Value: bson.D{
	{Key: "from", Value: teamCollection},
	{Key: "localField", Value: "teamId"},
	{Key: "foreignField", Value: "_id"},
	{Key: "as", Value: "team"},
}}}

func (r *userRepositoryImpl) aggregate(ctx context.Context, pipeline mongo.Pipeline) ([]user.User, error) {
	cursor, err := r.coll.Aggregate(ctx, append(pipeline, lookupTeam))
	if err != nil {
		return nil, err
	}

	var docs []userDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	users := make([]user.User, 0, len(docs))
	for _, d := range docs {
		users = append(users, d.toEntity())
	}
	return users, nil
}

// GetByID implements user.UserRepository.
func (r *userRepositoryImpl) GetByID(ctx context.Context, id string) (user.User, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return user.User{}, user.ErrUserNotFound
	}

	users, err := r.aggregate(ctx, mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "_id", Value: oid}}}},
		{{Key: "$limit", Value: 1}},
	})
	if err != nil {
		return user.User{}, fmt.Errorf("failed to get user by id: %w", err)
	}
	if len(users) == 0 {
		return user.User{}, user.ErrUserNotFound
	}
	return users[0], nil
}

// List implements user.UserRepository.
func (r *userRepositoryImpl) List(ctx context.Context) ([]user.User, error) {
	users, err := r.aggregate(ctx, mongo.Pipeline{
		{{Key: "$sort", Value: bson.D{{Key: "name", Value: 1}, {Key: "_id", Value: 1}}}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}
