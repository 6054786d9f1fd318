package service

import (
	"context"
	"time"

	"assessment-service/internal/models"

	"go.mongodb.org/mongo-driver/bson"
)

// Store interfaces are consumed here and satisfied by the mongo
// repositories. Tests swap in in-memory fakes, which is also what keeps
// the persistence layer a replaceable dependency.

type TestStore interface {
	Create(ctx context.Context, test *models.Test) error
	FindByID(ctx context.Context, id string) (*models.Test, error)
	FindByCourse(ctx context.Context, courseID string) ([]models.Test, error)
	Update(ctx context.Context, id string, update bson.M) error
}

type QuestionStore interface {
	CreateMany(ctx context.Context, questions []models.Question) error
	FindByTestID(ctx context.Context, testID string) ([]models.Question, error)
}

type AttemptStore interface {
	Create(ctx context.Context, attempt *models.Attempt) error
	// IsDuplicate classifies a Create error as a unique-index collision on
	// (test_id, user_id, attempt_number).
	IsDuplicate(err error) bool
	FindByID(ctx context.Context, id string) (*models.Attempt, error)
	CountByTestAndUser(ctx context.Context, testID, userID string) (int, error)
	CountByTest(ctx context.Context, testID string) (int, error)
	FindByTestAndUser(ctx context.Context, testID, userID string) ([]models.Attempt, error)
	UpdateIfStatus(ctx context.Context, id, fromStatus string, update bson.M) (int64, error)
	FindPendingGrading(ctx context.Context) ([]models.Attempt, error)
	FindGradedByUser(ctx context.Context, userID string) ([]models.Attempt, error)
	AverageGradedScoreByCourse(ctx context.Context, userID string) (map[string]float64, error)
}

type AnswerStore interface {
	CreateMany(ctx context.Context, answers []models.Answer) error
	FindByAttempt(ctx context.Context, attemptID string) ([]models.Answer, error)
	UpdateAward(ctx context.Context, attemptID, questionID string, points float64, feedback string) error
}

type SkillStore interface {
	Create(ctx context.Context, skill *models.Skill) error
	FindByID(ctx context.Context, id string) (*models.Skill, error)
	FindAll(ctx context.Context) ([]models.Skill, error)
	UpsertCourseLink(ctx context.Context, link *models.CourseSkill) error
	FindLinksByCourses(ctx context.Context, courseIDs []string) ([]models.CourseSkill, error)
	UpsertUserSkill(ctx context.Context, us *models.UserSkill) error
	FindUserSkills(ctx context.Context, userID string) ([]models.UserSkill, error)
}

type EnrollmentStore interface {
	UpsertCompletion(ctx context.Context, userID, courseID string, completedAt time.Time) error
	FindCompletedCourseIDs(ctx context.Context, userID string) ([]string, error)
}

type NotificationStore interface {
	Create(ctx context.Context, n *models.Notification) error
	FindByUser(ctx context.Context, userID string) ([]models.Notification, error)
}

// Notifier is the outbound event emitter; *event.EventPublisher satisfies
// it and a nil publisher is tolerated upstream.
type Notifier interface {
	Publish(eventType string, payload interface{}) error
}
