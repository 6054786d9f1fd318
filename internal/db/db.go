package db

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var Client *mongo.Client

func InitMongo(uri string, timeout time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		log.Fatalf("Failed to ping MongoDB: %v", err)
	}
	Client = client
	log.Println("Connected to MongoDB")
}

// EnsureIndexes creates the indexes the lifecycle invariants rely on. The
// unique (test_id, user_id, attempt_number) index is what makes the
// admission ceiling authoritative under concurrent starts.
func EnsureIndexes(ctx context.Context, database *mongo.Database) error {
	_, err := database.Collection("attempts").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "test_id", Value: 1},
			{Key: "user_id", Value: 1},
			{Key: "attempt_number", Value: 1},
		},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return err
	}

	_, err = database.Collection("questions").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "test_id", Value: 1},
			{Key: "order_index", Value: 1},
		},
	})
	if err != nil {
		return err
	}

	_, err = database.Collection("answers").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "attempt_id", Value: 1},
			{Key: "question_id", Value: 1},
		},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return err
	}

	_, err = database.Collection("skills").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return err
	}

	_, err = database.Collection("user_skills").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "user_id", Value: 1},
			{Key: "skill_id", Value: 1},
		},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return err
	}

	_, err = database.Collection("course_skills").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "course_id", Value: 1},
			{Key: "skill_id", Value: 1},
		},
		Options: options.Index().SetUnique(true),
	})
	return err
}

// TxRunner runs a function inside one atomic unit. The mongo-backed
// implementation uses a session transaction; test fakes just call fn.
type TxRunner interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type mongoTxRunner struct {
	client *mongo.Client
}

func NewTxRunner(client *mongo.Client) TxRunner {
	return &mongoTxRunner{client: client}
}

func (r *mongoTxRunner) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := r.client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}
