package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/pilab-dev/shadow-identity/log"
)

func userIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "normalized_user_name", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			// Email is optional, only present values are unique.
			Keys: bson.D{{Key: "normalized_email", Value: 1}},
			Options: options.Index().SetUnique(true).
				SetPartialFilterExpression(bson.D{{Key: "normalized_email", Value: bson.D{{Key: "$type", Value: "string"}}}}),
		},
		{Keys: bson.D{{Key: "roles", Value: 1}}},
		{Keys: bson.D{{Key: "logins.login_provider", Value: 1}, {Key: "logins.provider_key", Value: 1}}},
		{Keys: bson.D{{Key: "claims.type", Value: 1}, {Key: "claims.value", Value: 1}}},
	}
}

func roleIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "normalized_name", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
}

// EnsureIndexes creates the indexes the identity store queries rely on.
func EnsureIndexes(ctx context.Context, users, roles *mongo.Collection, logger log.Logger) error {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	if _, err := users.Indexes().CreateMany(ctx, userIndexes()); err != nil {
		logger.Warn(ctx, "Error creating indexes for users collection (may already exist or options conflict)", log.Fields{"error": err.Error()})
		return fmt.Errorf("failed to create indexes for %s collection: %w", users.Name(), err)
	}
	if _, err := roles.Indexes().CreateMany(ctx, roleIndexes()); err != nil {
		logger.Warn(ctx, "Error creating indexes for roles collection (may already exist or options conflict)", log.Fields{"error": err.Error()})
		return fmt.Errorf("failed to create indexes for %s collection: %w", roles.Name(), err)
	}
	logger.Info(ctx, "Indexes for identity collections ensured.")
	return nil
}
