package db

import (
	"context"

	"github.com/RachanaRJadav/arecanut-ai/internal/config"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	usersCollection   = "users"
	resultsCollection = "grading_results"
	batchesCollection = "batches"
)

// NewConnection establishes the process-wide MongoDB client. The client
// is created once in main and reused for the lifetime of the process.
func NewConnection(ctx context.Context, cfg *config.Config) (*mongo.Client, error) {
	opts := options.Client().
		ApplyURI(cfg.Mongo.URI).
		SetMaxPoolSize(cfg.Mongo.MaxPoolSize)

	connectCtx, cancel := context.WithTimeout(ctx, cfg.Mongo.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, opts)
	if err != nil {
		return nil, err
	}

	if err := client.Ping(connectCtx, nil); err != nil {
		return nil, err
	}

	return client, nil
}

// EnsureIndexes creates the indexes the read paths depend on: a unique
// index on account email and (user_id, created_at desc) on grading
// results and batches.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(usersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return err
	}

	ownerRecency := mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
	}

	for _, name := range []string{resultsCollection, batchesCollection} {
		if _, err := db.Collection(name).Indexes().CreateOne(ctx, ownerRecency); err != nil {
			return err
		}
	}

	return nil
}
