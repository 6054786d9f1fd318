package repository

import (
	"context"

	"assessment-service/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type AnswerRepository struct {
	Col *mongo.Collection
}

func NewAnswerRepository(db *mongo.Database) *AnswerRepository {
	return &AnswerRepository{Col: db.Collection("answers")}
}

func (r *AnswerRepository) CreateMany(ctx context.Context, answers []models.Answer) error {
	docs := make([]interface{}, len(answers))
	for i := range answers {
		if answers[i].ID == "" {
			answers[i].ID = primitive.NewObjectID().Hex()
		}
		docs[i] = answers[i]
	}
	_, err := r.Col.InsertMany(ctx, docs)
	return err
}

func (r *AnswerRepository) FindByAttempt(ctx context.Context, attemptID string) ([]models.Answer, error) {
	cur, err := r.Col.Find(ctx, bson.M{"attempt_id": attemptID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var answers []models.Answer
	for cur.Next(ctx) {
		var a models.Answer
		if err := cur.Decode(&a); err != nil {
			return nil, err
		}
		answers = append(answers, a)
	}
	return answers, nil
}

// UpdateAward records a manual grade for one (attempt, question) answer.
func (r *AnswerRepository) UpdateAward(ctx context.Context, attemptID, questionID string, points float64, feedback string) error {
	update := bson.M{"points_awarded": points}
	if feedback != "" {
		update["feedback"] = feedback
	}
	_, err := r.Col.UpdateOne(ctx,
		bson.M{"attempt_id": attemptID, "question_id": questionID},
		bson.M{"$set": update},
	)
	return err
}
