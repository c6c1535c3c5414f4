package db

import (
	"context"
	"errors"
	"time"

	"github.com/RachanaRJadav/arecanut-ai/internal/model"
	apperrors "github.com/RachanaRJadav/arecanut-ai/pkg/errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Repository interface {
	CreateUser(ctx context.Context, user *model.User) (primitive.ObjectID, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)

	InsertBatch(ctx context.Context, batch *model.Batch) (primitive.ObjectID, error)
	CompleteBatch(ctx context.Context, id primitive.ObjectID, completion model.BatchCompletion) error
	FailBatch(ctx context.Context, id primitive.ObjectID) error

	InsertGradingResult(ctx context.Context, result *model.GradingResult) (primitive.ObjectID, error)
	ResultsByOwner(ctx context.Context, userID string) ([]model.GradingResult, error)
	RecentResults(ctx context.Context, userID string, limit int64) ([]model.GradingResult, error)
}

type mongoRepository struct {
	db *mongo.Database
}

func NewRepository(db *mongo.Database) Repository {
	return &mongoRepository{db: db}
}

// ownerFilter matches an owner identifier stored either as a plain hex
// string (canonical form for new writes) or as an ObjectID (legacy
// documents). Both forms are unioned.
func ownerFilter(userID string) bson.M {
	or := []bson.M{{"user_id": userID}}
	if oid, err := primitive.ObjectIDFromHex(userID); err == nil {
		or = append(or, bson.M{"user_id": oid})
	}
	return bson.M{"$or": or}
}

func (r *mongoRepository) CreateUser(ctx context.Context, user *model.User) (primitive.ObjectID, error) {
	res, err := r.db.Collection(usersCollection).InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, apperrors.ErrUserExists
		}
		return primitive.NilObjectID, err
	}
	return res.InsertedID.(primitive.ObjectID), nil
}

func (r *mongoRepository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := r.db.Collection(usersCollection).FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *mongoRepository) InsertBatch(ctx context.Context, batch *model.Batch) (primitive.ObjectID, error) {
	res, err := r.db.Collection(batchesCollection).InsertOne(ctx, batch)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return res.InsertedID.(primitive.ObjectID), nil
}

func (r *mongoRepository) CompleteBatch(ctx context.Context, id primitive.ObjectID, completion model.BatchCompletion) error {
	update := bson.M{"$set": bson.M{
		"status":                model.BatchStatusCompleted,
		"processed_images":      completion.ProcessedImages,
		"results":               completion.Results,
		"average_quality_score": completion.AverageQualityScore,
		"average_price":         completion.AveragePrice,
		"completed_at":          completion.CompletedAt,
		"updated_at":            time.Now(),
	}}

	res, err := r.db.Collection(batchesCollection).UpdateByID(ctx, id, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperrors.ErrBatchNotFound
	}
	return nil
}

func (r *mongoRepository) FailBatch(ctx context.Context, id primitive.ObjectID) error {
	update := bson.M{"$set": bson.M{
		"status":     model.BatchStatusFailed,
		"updated_at": time.Now(),
	}}
	_, err := r.db.Collection(batchesCollection).UpdateByID(ctx, id, update)
	return err
}

func (r *mongoRepository) InsertGradingResult(ctx context.Context, result *model.GradingResult) (primitive.ObjectID, error) {
	res, err := r.db.Collection(resultsCollection).InsertOne(ctx, result)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return res.InsertedID.(primitive.ObjectID), nil
}

func (r *mongoRepository) ResultsByOwner(ctx context.Context, userID string) ([]model.GradingResult, error) {
	cursor, err := r.db.Collection(resultsCollection).Find(ctx, ownerFilter(userID))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var results []model.GradingResult
	if err := cursor.All(ctx, &results); err != nil {
		return nil, err
	}
	return results, nil
}

// RecentResults returns an owner's results, newest first. A limit of 0
// means no limit.
func (r *mongoRepository) RecentResults(ctx context.Context, userID string, limit int64) ([]model.GradingResult, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit)

	cursor, err := r.db.Collection(resultsCollection).Find(ctx, ownerFilter(userID), opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var results []model.GradingResult
	if err := cursor.All(ctx, &results); err != nil {
		return nil, err
	}
	return results, nil
}
