package repository

import (
	"context"

	"assessment-service/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type AttemptRepository struct {
	Col *mongo.Collection
}

func NewAttemptRepository(db *mongo.Database) *AttemptRepository {
	return &AttemptRepository{Col: db.Collection("attempts")}
}

// Create inserts a new attempt. The unique (test_id, user_id,
// attempt_number) index turns a concurrent duplicate into a duplicate-key
// error; IsDuplicate classifies it for the admission retry.
func (r *AttemptRepository) Create(ctx context.Context, attempt *models.Attempt) error {
	if attempt.ID == "" {
		attempt.ID = primitive.NewObjectID().Hex()
	}
	_, err := r.Col.InsertOne(ctx, attempt)
	return err
}

func (r *AttemptRepository) IsDuplicate(err error) bool {
	return mongo.IsDuplicateKeyError(err)
}

func (r *AttemptRepository) FindByID(ctx context.Context, id string) (*models.Attempt, error) {
	var attempt models.Attempt
	err := r.Col.FindOne(ctx, bson.M{"_id": id}).Decode(&attempt)
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (r *AttemptRepository) CountByTestAndUser(ctx context.Context, testID, userID string) (int, error) {
	n, err := r.Col.CountDocuments(ctx, bson.M{"test_id": testID, "user_id": userID})
	return int(n), err
}

func (r *AttemptRepository) CountByTest(ctx context.Context, testID string) (int, error) {
	n, err := r.Col.CountDocuments(ctx, bson.M{"test_id": testID})
	return int(n), err
}

func (r *AttemptRepository) FindByTestAndUser(ctx context.Context, testID, userID string) ([]models.Attempt, error) {
	opts := options.Find().SetSort(bson.D{{Key: "attempt_number", Value: 1}})
	cur, err := r.Col.Find(ctx, bson.M{"test_id": testID, "user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var attempts []models.Attempt
	for cur.Next(ctx) {
		var a models.Attempt
		if err := cur.Decode(&a); err != nil {
			return nil, err
		}
		attempts = append(attempts, a)
	}
	return attempts, nil
}

// UpdateIfStatus applies update only while the attempt is still in
// fromStatus. Returns the number of documents modified: zero means the
// status moved underfoot (or the attempt is gone) and the caller lost the
// race.
func (r *AttemptRepository) UpdateIfStatus(ctx context.Context, id, fromStatus string, update bson.M) (int64, error) {
	res, err := r.Col.UpdateOne(ctx,
		bson.M{"_id": id, "status": fromStatus},
		bson.M{"$set": update},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// FindPendingGrading lists submitted attempts awaiting a human grader,
// oldest submission first.
func (r *AttemptRepository) FindPendingGrading(ctx context.Context) ([]models.Attempt, error) {
	opts := options.Find().SetSort(bson.D{{Key: "submitted_at", Value: 1}})
	cur, err := r.Col.Find(ctx, bson.M{"status": models.AttemptStatusSubmitted}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var attempts []models.Attempt
	for cur.Next(ctx) {
		var a models.Attempt
		if err := cur.Decode(&a); err != nil {
			return nil, err
		}
		attempts = append(attempts, a)
	}
	return attempts, nil
}

func (r *AttemptRepository) FindGradedByUser(ctx context.Context, userID string) ([]models.Attempt, error) {
	opts := options.Find().SetSort(bson.D{{Key: "graded_at", Value: -1}})
	cur, err := r.Col.Find(ctx, bson.M{"user_id": userID, "status": models.AttemptStatusGraded}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var attempts []models.Attempt
	for cur.Next(ctx) {
		var a models.Attempt
		if err := cur.Decode(&a); err != nil {
			return nil, err
		}
		attempts = append(attempts, a)
	}
	return attempts, nil
}

// AverageGradedScoreByCourse aggregates the user's graded attempts, joins
// each to its test for the course reference, and averages per course.
func (r *AttemptRepository) AverageGradedScoreByCourse(ctx context.Context, userID string) (map[string]float64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"user_id": userID,
			"status":  models.AttemptStatusGraded,
			"score":   bson.M{"$ne": nil},
		}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         "tests",
			"localField":   "test_id",
			"foreignField": "_id",
			"as":           "test",
		}}},
		{{Key: "$unwind", Value: "$test"}},
		{{Key: "$group", Value: bson.M{
			"_id":           "$test.course_id",
			"average_score": bson.M{"$avg": "$score"},
		}}},
	}

	cur, err := r.Col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	averages := make(map[string]float64)
	for cur.Next(ctx) {
		var row struct {
			CourseID     string  `bson:"_id"`
			AverageScore float64 `bson:"average_score"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		averages[row.CourseID] = row.AverageScore
	}
	return averages, cur.Err()
}
