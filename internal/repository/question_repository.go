package repository

import (
	"context"

	"assessment-service/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type QuestionRepository struct {
	Col *mongo.Collection
}

func NewQuestionRepository(db *mongo.Database) *QuestionRepository {
	return &QuestionRepository{Col: db.Collection("questions")}
}

func (r *QuestionRepository) CreateMany(ctx context.Context, questions []models.Question) error {
	docs := make([]interface{}, len(questions))
	for i := range questions {
		if questions[i].ID == "" {
			questions[i].ID = primitive.NewObjectID().Hex()
		}
		for j := range questions[i].Options {
			if questions[i].Options[j].ID == "" {
				questions[i].Options[j].ID = primitive.NewObjectID().Hex()
			}
		}
		docs[i] = questions[i]
	}
	_, err := r.Col.InsertMany(ctx, docs)
	return err
}

// FindByTestID returns the test's questions in stable order_index order.
func (r *QuestionRepository) FindByTestID(ctx context.Context, testID string) ([]models.Question, error) {
	opts := options.Find().SetSort(bson.D{{Key: "order_index", Value: 1}})
	cur, err := r.Col.Find(ctx, bson.M{"test_id": testID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var questions []models.Question
	for cur.Next(ctx) {
		var q models.Question
		if err := cur.Decode(&q); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, nil
}
