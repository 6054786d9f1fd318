package service

import (
	"context"
	"errors"
	"log"
	"time"

	"assessment-service/internal/apperrors"
	"assessment-service/internal/db"
	"assessment-service/internal/event"
	"assessment-service/internal/grading"
	"assessment-service/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type AttemptService struct {
	Attempts      AttemptStore
	Answers       AnswerStore
	Tests         TestStore
	Questions     QuestionStore
	Notifications NotificationStore
	Publisher     Notifier
	Tx            db.TxRunner
}

func NewAttemptService(attempts AttemptStore, answers AnswerStore, tests TestStore, questions QuestionStore, notifications NotificationStore, publisher Notifier, tx db.TxRunner) *AttemptService {
	return &AttemptService{
		Attempts:      attempts,
		Answers:       answers,
		Tests:         tests,
		Questions:     questions,
		Notifications: notifications,
		Publisher:     publisher,
		Tx:            tx,
	}
}

// Start admits a new attempt, enforcing the max-attempts ceiling. The
// count-then-insert window is closed by the unique attempt-number index:
// on a duplicate-key collision the admission is retried once with a fresh
// count, and a second collision surfaces as a concurrency conflict.
func (s *AttemptService) Start(ctx context.Context, identity models.Identity, testID string) (*models.Attempt, error) {
	test, err := s.Tests.FindByID(ctx, testID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NotFound("test", testID)
		}
		return nil, err
	}

	attempt, err := s.tryAdmit(ctx, test, identity.UserID)
	if err != nil && s.Attempts.IsDuplicate(err) {
		attempt, err = s.tryAdmit(ctx, test, identity.UserID)
		if err != nil && s.Attempts.IsDuplicate(err) {
			return nil, apperrors.Conflict("concurrent attempt start for test %s", testID)
		}
	}
	if err != nil {
		return nil, err
	}
	return attempt, nil
}

func (s *AttemptService) tryAdmit(ctx context.Context, test *models.Test, userID string) (*models.Attempt, error) {
	count, err := s.Attempts.CountByTestAndUser(ctx, test.ID, userID)
	if err != nil {
		return nil, err
	}
	if count >= test.MaxAttempts {
		return nil, &apperrors.QuotaError{Used: count, Ceiling: test.MaxAttempts}
	}

	attempt := &models.Attempt{
		TestID:        test.ID,
		UserID:        userID,
		Status:        models.AttemptStatusInProgress,
		AttemptNumber: count + 1,
		StartedAt:     time.Now(),
	}
	if err := s.Attempts.Create(ctx, attempt); err != nil {
		return nil, err
	}
	return attempt, nil
}

// QuestionsForAttempt returns the question tree a candidate sees while
// taking the test, with the answer key stripped.
func (s *AttemptService) QuestionsForAttempt(ctx context.Context, testID string) ([]models.Question, error) {
	questions, err := s.Questions.FindByTestID(ctx, testID)
	if err != nil {
		return nil, err
	}
	return models.SanitizeQuestions(questions), nil
}

type SubmitResult struct {
	Status   string   `json:"status"`
	Score    *float64 `json:"score"`
	Passed   bool     `json:"passed"`
	Feedback string   `json:"feedback"`
}

// Submit records a submission's answers and auto-grades what it can. All
// writes share one transaction; the status update is predicated on the
// attempt still being in_progress, so a racing submit loses cleanly.
func (s *AttemptService) Submit(ctx context.Context, identity models.Identity, attemptID string, answers []grading.SubmittedAnswer) (*SubmitResult, error) {
	attempt, err := s.Attempts.FindByID(ctx, attemptID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NotFound("attempt", attemptID)
		}
		return nil, err
	}
	if attempt.UserID != identity.UserID {
		return nil, apperrors.NotFound("attempt", attemptID)
	}
	if attempt.Status != models.AttemptStatusInProgress {
		return nil, apperrors.InvalidState("attempt %s already submitted (status %s)", attemptID, attempt.Status)
	}

	test, err := s.Tests.FindByID(ctx, attempt.TestID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NotFound("test", attempt.TestID)
		}
		return nil, err
	}
	questions, err := s.Questions.FindByTestID(ctx, attempt.TestID)
	if err != nil {
		return nil, err
	}

	outcome, err := grading.AutoGrade(questions, answers, test.PassingScore)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	rows := make([]models.Answer, len(outcome.Answers))
	for i, graded := range outcome.Answers {
		rows[i] = models.Answer{
			AttemptID:        attemptID,
			QuestionID:       graded.QuestionID,
			AnswerText:       graded.AnswerText,
			SelectedOptionID: graded.SelectedOptionID,
			PointsAwarded:    graded.PointsAwarded,
			CreatedAt:        now,
		}
	}

	update := bson.M{
		"submitted_at": now,
		"feedback":     outcome.Feedback,
	}
	if outcome.AutoGraded {
		update["status"] = models.AttemptStatusGraded
		update["score"] = *outcome.Score
		update["graded_at"] = now
	} else {
		update["status"] = models.AttemptStatusSubmitted
	}

	err = s.Tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.Answers.CreateMany(ctx, rows); err != nil {
			return err
		}
		modified, err := s.Attempts.UpdateIfStatus(ctx, attemptID, models.AttemptStatusInProgress, update)
		if err != nil {
			return err
		}
		if modified == 0 {
			return apperrors.Conflict("attempt %s changed state during submission", attemptID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result := &SubmitResult{
		Status:   update["status"].(string),
		Score:    outcome.Score,
		Passed:   outcome.Passed,
		Feedback: outcome.Feedback,
	}
	s.notifySubmission(ctx, attempt, result)
	return result, nil
}

type GradeResult struct {
	Status string  `json:"status"`
	Score  float64 `json:"score"`
	Passed bool    `json:"passed"`
}

// Grade applies a grader's awards to a submitted attempt. The grader's
// identity is trusted to be pre-authorized; each award is still validated
// against the question's maximum.
func (s *AttemptService) Grade(ctx context.Context, grader models.Identity, attemptID string, awards []grading.ManualAward, overallFeedback string) (*GradeResult, error) {
	attempt, err := s.Attempts.FindByID(ctx, attemptID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NotFound("attempt", attemptID)
		}
		return nil, err
	}
	if attempt.Status != models.AttemptStatusSubmitted {
		return nil, apperrors.InvalidState("attempt %s is %s, only submitted attempts can be graded", attemptID, attempt.Status)
	}

	test, err := s.Tests.FindByID(ctx, attempt.TestID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NotFound("test", attempt.TestID)
		}
		return nil, err
	}
	questions, err := s.Questions.FindByTestID(ctx, attempt.TestID)
	if err != nil {
		return nil, err
	}
	answers, err := s.Answers.FindByAttempt(ctx, attemptID)
	if err != nil {
		return nil, err
	}

	outcome, err := grading.ManualGrade(questions, answers, awards, test.PassingScore)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	err = s.Tx.WithTransaction(ctx, func(ctx context.Context) error {
		for questionID, award := range outcome.Awards {
			if err := s.Answers.UpdateAward(ctx, attemptID, questionID, award.PointsAwarded, award.Feedback); err != nil {
				return err
			}
		}
		modified, err := s.Attempts.UpdateIfStatus(ctx, attemptID, models.AttemptStatusSubmitted, bson.M{
			"status":    models.AttemptStatusGraded,
			"score":     outcome.Score,
			"graded_at": now,
			"graded_by": grader.UserID,
			"feedback":  overallFeedback,
		})
		if err != nil {
			return err
		}
		if modified == 0 {
			return apperrors.Conflict("attempt %s changed state during grading", attemptID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result := &GradeResult{
		Status: models.AttemptStatusGraded,
		Score:  outcome.Score,
		Passed: outcome.Passed,
	}
	s.notifyGraded(ctx, attempt, outcome.Score, outcome.Passed)
	return result, nil
}

// AttemptDetail is an attempt with its answer rows.
type AttemptDetail struct {
	Attempt models.Attempt  `json:"attempt"`
	Answers []models.Answer `json:"answers"`
}

func (s *AttemptService) Get(ctx context.Context, identity models.Identity, attemptID string) (*AttemptDetail, error) {
	attempt, err := s.Attempts.FindByID(ctx, attemptID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NotFound("attempt", attemptID)
		}
		return nil, err
	}
	if attempt.UserID != identity.UserID && !identity.CanGrade() {
		return nil, apperrors.NotFound("attempt", attemptID)
	}
	answers, err := s.Answers.FindByAttempt(ctx, attemptID)
	if err != nil {
		return nil, err
	}
	return &AttemptDetail{Attempt: *attempt, Answers: answers}, nil
}

func (s *AttemptService) PendingGrading(ctx context.Context) ([]models.Attempt, error) {
	return s.Attempts.FindPendingGrading(ctx)
}

func (s *AttemptService) ResultsByUser(ctx context.Context, userID string) ([]models.Attempt, error) {
	return s.Attempts.FindGradedByUser(ctx, userID)
}

// NotificationsForUser lists a user's in-app notification records, newest
// first.
func (s *AttemptService) NotificationsForUser(ctx context.Context, userID string) ([]models.Notification, error) {
	return s.Notifications.FindByUser(ctx, userID)
}

// Notification emission is best-effort: the grading transaction has
// already committed, so failures here are logged and dropped.
func (s *AttemptService) notifySubmission(ctx context.Context, attempt *models.Attempt, result *SubmitResult) {
	if result.Status == models.AttemptStatusGraded {
		s.notifyGraded(ctx, attempt, *result.Score, result.Passed)
		return
	}
	s.emit(ctx, attempt.UserID, models.NotificationSubmittedPending, event.TopicSubmittedPending,
		"Submission received",
		"Your answers were submitted and are awaiting manual review.",
		map[string]interface{}{"attempt_id": attempt.ID, "test_id": attempt.TestID})
}

func (s *AttemptService) notifyGraded(ctx context.Context, attempt *models.Attempt, score float64, passed bool) {
	topic := event.TopicGradedFailed
	eventName := models.NotificationGradedFailed
	body := "Your attempt has been graded. Unfortunately you did not pass."
	if passed {
		topic = event.TopicGradedPassed
		eventName = models.NotificationGradedPassed
		body = "Your attempt has been graded. Congratulations, you passed!"
	}
	s.emit(ctx, attempt.UserID, eventName, topic,
		"Attempt graded", body,
		map[string]interface{}{"attempt_id": attempt.ID, "test_id": attempt.TestID, "score": score})
}

func (s *AttemptService) emit(ctx context.Context, userID, eventName, topic, title, body string, payload map[string]interface{}) {
	if s.Notifications != nil {
		notification := &models.Notification{
			UserID:  userID,
			Event:   eventName,
			Title:   title,
			Body:    body,
			Payload: payload,
		}
		if err := s.Notifications.Create(ctx, notification); err != nil {
			log.Printf("Failed to record notification for user %s: %v", userID, err)
		}
	}
	if s.Publisher != nil {
		payload["user_id"] = userID
		if err := s.Publisher.Publish(topic, payload); err != nil {
			log.Printf("Failed to publish %s: %v", topic, err)
		}
	}
}
