package service

import (
	"context"
	"errors"
	"time"

	"assessment-service/internal/apperrors"
	"assessment-service/internal/cache"
	"assessment-service/internal/db"
	"assessment-service/internal/grading"
	"assessment-service/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type TestService struct {
	Tests     TestStore
	Questions QuestionStore
	Attempts  AttemptStore
	Tx        db.TxRunner
	Cache     *cache.TestCache

	DefaultPassingScore int
	DefaultMaxAttempts  int
}

func NewTestService(tests TestStore, questions QuestionStore, attempts AttemptStore, tx db.TxRunner, testCache *cache.TestCache, defaultPassingScore, defaultMaxAttempts int) *TestService {
	return &TestService{
		Tests:               tests,
		Questions:           questions,
		Attempts:            attempts,
		Tx:                  tx,
		Cache:               testCache,
		DefaultPassingScore: defaultPassingScore,
		DefaultMaxAttempts:  defaultMaxAttempts,
	}
}

type OptionInput struct {
	Text      string `json:"option_text" binding:"required"`
	IsCorrect bool   `json:"is_correct"`
}

type QuestionInput struct {
	Text    string        `json:"question_text" binding:"required"`
	Type    string        `json:"question_type"`
	Points  *int          `json:"points"`
	Options []OptionInput `json:"options"`
}

type CreateTestInput struct {
	CourseID         string          `json:"course_id" binding:"required"`
	Title            string          `json:"title" binding:"required"`
	Description      string          `json:"description"`
	Type             string          `json:"test_type" binding:"required"`
	PassingScore     *int            `json:"passing_score"`
	TimeLimitMinutes int             `json:"time_limit_minutes"`
	MaxAttempts      *int            `json:"max_attempts"`
	Questions        []QuestionInput `json:"questions" binding:"required"`
}

// CreateTest persists a test with its full question tree in one
// transaction: either the whole tree commits or nothing does.
func (s *TestService) CreateTest(ctx context.Context, identity models.Identity, input CreateTestInput) (*models.Test, []models.Question, error) {
	now := time.Now()

	test := &models.Test{
		CourseID:         input.CourseID,
		Title:            input.Title,
		Description:      input.Description,
		Type:             input.Type,
		PassingScore:     s.DefaultPassingScore,
		TimeLimitMinutes: input.TimeLimitMinutes,
		MaxAttempts:      s.DefaultMaxAttempts,
		CreatedBy:        identity.UserID,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if input.PassingScore != nil {
		test.PassingScore = *input.PassingScore
	}
	if input.MaxAttempts != nil {
		test.MaxAttempts = *input.MaxAttempts
	}

	questions := make([]models.Question, len(input.Questions))
	for i, qi := range input.Questions {
		q := models.Question{
			Text:       qi.Text,
			Type:       qi.Type,
			Points:     1,
			OrderIndex: i,
		}
		if q.Type == "" {
			q.Type = test.Type
		}
		if qi.Points != nil {
			q.Points = *qi.Points
		}
		for j, oi := range qi.Options {
			q.Options = append(q.Options, models.Option{
				Text:       oi.Text,
				IsCorrect:  oi.IsCorrect,
				OrderIndex: j,
			})
		}
		questions[i] = q
	}

	if err := grading.ValidateTestTree(test, questions); err != nil {
		return nil, nil, err
	}

	err := s.Tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.Tests.Create(ctx, test); err != nil {
			return err
		}
		for i := range questions {
			questions[i].TestID = test.ID
		}
		return s.Questions.CreateMany(ctx, questions)
	})
	if err != nil {
		return nil, nil, err
	}

	return test, questions, nil
}

// TestDetail is the read-side view: the question tree (sanitized for
// callers without grading authority), the caller's attempt history, and
// how many attempts they have left.
type TestDetail struct {
	Test              models.Test       `json:"test"`
	Questions         []models.Question `json:"questions"`
	Attempts          []models.Attempt  `json:"attempts"`
	AttemptsRemaining int               `json:"attempts_remaining"`
}

func (s *TestService) GetTest(ctx context.Context, identity models.Identity, testID string) (*TestDetail, error) {
	test, questions, err := s.loadTree(ctx, testID)
	if err != nil {
		return nil, err
	}

	if !identity.CanGrade() {
		questions = models.SanitizeQuestions(questions)
	}

	attempts, err := s.Attempts.FindByTestAndUser(ctx, testID, identity.UserID)
	if err != nil {
		return nil, err
	}

	remaining := test.MaxAttempts - len(attempts)
	if remaining < 0 {
		remaining = 0
	}

	return &TestDetail{
		Test:              *test,
		Questions:         questions,
		Attempts:          attempts,
		AttemptsRemaining: remaining,
	}, nil
}

// loadTree fetches test + questions, serving from the redis cache when
// possible. Cached trees keep is_correct; sanitizing stays the caller's
// responsibility.
func (s *TestService) loadTree(ctx context.Context, testID string) (*models.Test, []models.Question, error) {
	if tree, ok := s.Cache.Get(ctx, testID); ok {
		return &tree.Test, tree.Questions, nil
	}

	test, err := s.Tests.FindByID(ctx, testID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil, apperrors.NotFound("test", testID)
		}
		return nil, nil, err
	}
	questions, err := s.Questions.FindByTestID(ctx, testID)
	if err != nil {
		return nil, nil, err
	}

	s.Cache.Set(ctx, testID, &cache.CachedTestTree{Test: *test, Questions: questions})
	return test, questions, nil
}

type UpdateTestInput struct {
	Title            *string `json:"title"`
	Description      *string `json:"description"`
	Type             *string `json:"test_type"`
	PassingScore     *int    `json:"passing_score"`
	TimeLimitMinutes *int    `json:"time_limit_minutes"`
	MaxAttempts      *int    `json:"max_attempts"`
}

// UpdateTest changes test metadata. The type is frozen once any attempt
// references the test.
func (s *TestService) UpdateTest(ctx context.Context, testID string, input UpdateTestInput) (*models.Test, error) {
	test, err := s.Tests.FindByID(ctx, testID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NotFound("test", testID)
		}
		return nil, err
	}

	update := bson.M{"updated_at": time.Now()}
	if input.Title != nil {
		if *input.Title == "" {
			return nil, apperrors.Validation("title must not be empty")
		}
		update["title"] = *input.Title
	}
	if input.Description != nil {
		update["description"] = *input.Description
	}
	if input.Type != nil && *input.Type != test.Type {
		if !models.ValidTestType(*input.Type) {
			return nil, apperrors.Validation("invalid test type %q", *input.Type)
		}
		attempts, err := s.Attempts.CountByTest(ctx, testID)
		if err != nil {
			return nil, err
		}
		if attempts > 0 {
			return nil, apperrors.InvalidState("test type is immutable once attempts exist (%d found)", attempts)
		}
		update["type"] = *input.Type
	}
	if input.PassingScore != nil {
		if *input.PassingScore < 0 || *input.PassingScore > 100 {
			return nil, apperrors.Validation("passing_score must be within [0, 100]")
		}
		update["passing_score"] = *input.PassingScore
	}
	if input.TimeLimitMinutes != nil {
		update["time_limit_minutes"] = *input.TimeLimitMinutes
	}
	if input.MaxAttempts != nil {
		if *input.MaxAttempts < 1 {
			return nil, apperrors.Validation("max_attempts must be at least 1")
		}
		update["max_attempts"] = *input.MaxAttempts
	}

	if err := s.Tests.Update(ctx, testID, update); err != nil {
		return nil, err
	}
	s.Cache.Invalidate(ctx, testID)

	return s.Tests.FindByID(ctx, testID)
}

func (s *TestService) ListByCourse(ctx context.Context, courseID string) ([]models.Test, error) {
	return s.Tests.FindByCourse(ctx, courseID)
}
