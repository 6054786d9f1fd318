package repository

import (
	"context"
	"time"

	"assessment-service/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnrollmentRepository mirrors completion facts owned by the course
// service. The skill engine reads only completed rows.
type EnrollmentRepository struct {
	Col *mongo.Collection
}

func NewEnrollmentRepository(db *mongo.Database) *EnrollmentRepository {
	return &EnrollmentRepository{Col: db.Collection("enrollments")}
}

func (r *EnrollmentRepository) UpsertCompletion(ctx context.Context, userID, courseID string, completedAt time.Time) error {
	_, err := r.Col.UpdateOne(ctx,
		bson.M{"user_id": userID, "course_id": courseID},
		bson.M{"$set": bson.M{"completed_at": completedAt}},
		options.Update().SetUpsert(true),
	)
	return err
}

func (r *EnrollmentRepository) FindCompletedCourseIDs(ctx context.Context, userID string) ([]string, error) {
	cur, err := r.Col.Find(ctx, bson.M{
		"user_id":      userID,
		"completed_at": bson.M{"$ne": nil},
	})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var courseIDs []string
	for cur.Next(ctx) {
		var e models.Enrollment
		if err := cur.Decode(&e); err != nil {
			return nil, err
		}
		courseIDs = append(courseIDs, e.CourseID)
	}
	return courseIDs, nil
}
