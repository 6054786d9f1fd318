package grading

import (
	"errors"
	"testing"

	"assessment-service/internal/apperrors"
	"assessment-service/internal/models"
)

func mcq(id string, points int, correctOption string, otherOptions ...string) models.Question {
	q := models.Question{
		ID:     id,
		Type:   models.TestTypeMultipleChoice,
		Text:   "question " + id,
		Points: points,
		Options: []models.Option{
			{ID: correctOption, Text: "correct", IsCorrect: true, OrderIndex: 0},
		},
	}
	for i, opt := range otherOptions {
		q.Options = append(q.Options, models.Option{ID: opt, Text: "wrong", OrderIndex: i + 1})
	}
	return q
}

func written(id string, points int) models.Question {
	return models.Question{
		ID:     id,
		Type:   models.TestTypeWritten,
		Text:   "question " + id,
		Points: points,
	}
}

func TestAutoGrade_AllCorrect(t *testing.T) {
	questions := []models.Question{
		mcq("q1", 1, "q1-a", "q1-b"),
		mcq("q2", 3, "q2-a", "q2-b"),
	}
	submissions := []SubmittedAnswer{
		{QuestionID: "q1", SelectedOptionID: "q1-a"},
		{QuestionID: "q2", SelectedOptionID: "q2-a"},
	}

	outcome, err := AutoGrade(questions, submissions, 70)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if !outcome.AutoGraded {
		t.Error("Expected fully auto-graded outcome")
	}
	if outcome.Score == nil || *outcome.Score != 100.00 {
		t.Errorf("Expected score 100.00, got %v", outcome.Score)
	}
	if !outcome.Passed {
		t.Error("Expected passed=true at 100%")
	}
	if outcome.EarnedPoints != 4 || outcome.PossiblePoints != 4 {
		t.Errorf("Expected 4/4 points, got %v/%v", outcome.EarnedPoints, outcome.PossiblePoints)
	}
}

func TestAutoGrade_AllWrong(t *testing.T) {
	questions := []models.Question{
		mcq("q1", 2, "q1-a", "q1-b"),
		mcq("q2", 2, "q2-a", "q2-b"),
	}
	submissions := []SubmittedAnswer{
		{QuestionID: "q1", SelectedOptionID: "q1-b"},
		{QuestionID: "q2", SelectedOptionID: "q2-b"},
	}

	outcome, err := AutoGrade(questions, submissions, 70)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if outcome.Score == nil || *outcome.Score != 0.00 {
		t.Errorf("Expected score 0.00, got %v", outcome.Score)
	}
	if outcome.Passed {
		t.Error("Expected passed=false at 0%")
	}
	for _, a := range outcome.Answers {
		if a.PointsAwarded == nil || *a.PointsAwarded != 0 {
			t.Errorf("Expected 0 points for %s, got %v", a.QuestionID, a.PointsAwarded)
		}
	}
}

func TestAutoGrade_TwoDecimalRounding(t *testing.T) {
	// 1 of 3 points earned: 33.333... must come out as 33.33.
	questions := []models.Question{
		mcq("q1", 1, "q1-a", "q1-b"),
		mcq("q2", 2, "q2-a", "q2-b"),
	}
	submissions := []SubmittedAnswer{
		{QuestionID: "q1", SelectedOptionID: "q1-a"},
		{QuestionID: "q2", SelectedOptionID: "q2-b"},
	}

	outcome, err := AutoGrade(questions, submissions, 70)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if outcome.Score == nil || *outcome.Score != 33.33 {
		t.Errorf("Expected score 33.33, got %v", outcome.Score)
	}
}

func TestAutoGrade_WrittenQuestionForcesManualReview(t *testing.T) {
	questions := []models.Question{
		mcq("q1", 1, "q1-a", "q1-b"),
		written("q2", 5),
	}
	submissions := []SubmittedAnswer{
		{QuestionID: "q1", SelectedOptionID: "q1-a"},
		{QuestionID: "q2", AnswerText: "free response"},
	}

	outcome, err := AutoGrade(questions, submissions, 70)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if outcome.AutoGraded {
		t.Error("Expected outcome to require manual review")
	}
	if outcome.Score != nil {
		t.Errorf("Expected nil score, got %v", *outcome.Score)
	}

	// The MCQ part is still graded eagerly.
	if outcome.Answers[0].PointsAwarded == nil || *outcome.Answers[0].PointsAwarded != 1 {
		t.Errorf("Expected MCQ answer pre-graded with 1 point, got %v", outcome.Answers[0].PointsAwarded)
	}
	if outcome.Answers[1].PointsAwarded != nil {
		t.Errorf("Expected written answer ungraded, got %v", *outcome.Answers[1].PointsAwarded)
	}
}

func TestAutoGrade_UnselectedMCQForcesManualReview(t *testing.T) {
	questions := []models.Question{mcq("q1", 1, "q1-a", "q1-b")}
	submissions := []SubmittedAnswer{{QuestionID: "q1"}}

	outcome, err := AutoGrade(questions, submissions, 70)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if outcome.AutoGraded || outcome.Score != nil {
		t.Error("Expected MCQ without selection to stay ungraded")
	}
}

func TestAutoGrade_InputErrors(t *testing.T) {
	questions := []models.Question{mcq("q1", 1, "q1-a", "q1-b")}

	cases := []struct {
		name        string
		submissions []SubmittedAnswer
		want        error
	}{
		{"empty", nil, apperrors.ErrValidation},
		{"missing question id", []SubmittedAnswer{{}}, apperrors.ErrValidation},
		{"unknown question", []SubmittedAnswer{{QuestionID: "nope"}}, apperrors.ErrNotFound},
		{"unknown option", []SubmittedAnswer{{QuestionID: "q1", SelectedOptionID: "nope"}}, apperrors.ErrNotFound},
		{"duplicate", []SubmittedAnswer{
			{QuestionID: "q1", SelectedOptionID: "q1-a"},
			{QuestionID: "q1", SelectedOptionID: "q1-b"},
		}, apperrors.ErrValidation},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := AutoGrade(questions, tc.submissions, 70)
			if !errors.Is(err, tc.want) {
				t.Errorf("Expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestManualGrade_ScoreAndPassing(t *testing.T) {
	questions := []models.Question{
		written("q1", 5),
		written("q2", 5),
	}
	answers := []models.Answer{
		{QuestionID: "q1", AnswerText: "a"},
		{QuestionID: "q2", AnswerText: "b"},
	}
	awards := []ManualAward{
		{QuestionID: "q1", PointsAwarded: 4, Feedback: "good"},
		{QuestionID: "q2", PointsAwarded: 3},
	}

	outcome, err := ManualGrade(questions, answers, awards, 70)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if outcome.Score != 70.00 {
		t.Errorf("Expected score 70.00, got %v", outcome.Score)
	}
	if !outcome.Passed {
		t.Error("Expected passed=true at exactly the passing score")
	}
	if outcome.EarnedPoints != 7 || outcome.PossiblePoints != 10 {
		t.Errorf("Expected 7/10 points, got %v/%v", outcome.EarnedPoints, outcome.PossiblePoints)
	}
}

func TestManualGrade_MergesAutoGradedPoints(t *testing.T) {
	// One MCQ already auto-graded, one written graded by hand: the final
	// score covers both.
	auto := 2.0
	questions := []models.Question{
		mcq("q1", 2, "q1-a", "q1-b"),
		written("q2", 6),
	}
	answers := []models.Answer{
		{QuestionID: "q1", SelectedOptionID: "q1-a", PointsAwarded: &auto},
		{QuestionID: "q2", AnswerText: "essay"},
	}
	awards := []ManualAward{{QuestionID: "q2", PointsAwarded: 3}}

	outcome, err := ManualGrade(questions, answers, awards, 70)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if outcome.Score != 62.50 {
		t.Errorf("Expected score 62.50 (5/8), got %v", outcome.Score)
	}
	if outcome.Passed {
		t.Error("Expected passed=false below passing score")
	}
}

func TestManualGrade_Errors(t *testing.T) {
	questions := []models.Question{written("q1", 5), written("q2", 5)}
	answers := []models.Answer{
		{QuestionID: "q1", AnswerText: "a"},
		{QuestionID: "q2", AnswerText: "b"},
	}

	cases := []struct {
		name   string
		awards []ManualAward
		want   error
	}{
		{"empty", nil, apperrors.ErrValidation},
		{"unknown question", []ManualAward{{QuestionID: "nope", PointsAwarded: 1}}, apperrors.ErrNotFound},
		{"over max", []ManualAward{
			{QuestionID: "q1", PointsAwarded: 6},
			{QuestionID: "q2", PointsAwarded: 1},
		}, apperrors.ErrValidation},
		{"negative", []ManualAward{
			{QuestionID: "q1", PointsAwarded: -1},
			{QuestionID: "q2", PointsAwarded: 1},
		}, apperrors.ErrValidation},
		{"leaves q2 ungraded", []ManualAward{{QuestionID: "q1", PointsAwarded: 5}}, apperrors.ErrValidation},
		{"duplicate", []ManualAward{
			{QuestionID: "q1", PointsAwarded: 1},
			{QuestionID: "q1", PointsAwarded: 2},
		}, apperrors.ErrValidation},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ManualGrade(questions, answers, tc.awards, 70)
			if !errors.Is(err, tc.want) {
				t.Errorf("Expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestValidateTestTree(t *testing.T) {
	valid := func() (*models.Test, []models.Question) {
		return &models.Test{
				CourseID:     "c1",
				Title:        "Basics",
				Type:         models.TestTypeMultipleChoice,
				PassingScore: 70,
				MaxAttempts:  3,
			}, []models.Question{
				mcq("", 1, "a", "b"),
			}
	}

	t.Run("valid tree passes", func(t *testing.T) {
		test, questions := valid()
		if err := ValidateTestTree(test, questions); err != nil {
			t.Errorf("Unexpected error: %v", err)
		}
	})

	t.Run("missing title", func(t *testing.T) {
		test, questions := valid()
		test.Title = ""
		if err := ValidateTestTree(test, questions); !errors.Is(err, apperrors.ErrValidation) {
			t.Errorf("Expected validation error, got %v", err)
		}
	})

	t.Run("bad type", func(t *testing.T) {
		test, questions := valid()
		test.Type = "essay"
		if err := ValidateTestTree(test, questions); !errors.Is(err, apperrors.ErrValidation) {
			t.Errorf("Expected validation error, got %v", err)
		}
	})

	t.Run("no questions", func(t *testing.T) {
		test, _ := valid()
		if err := ValidateTestTree(test, nil); !errors.Is(err, apperrors.ErrValidation) {
			t.Errorf("Expected validation error, got %v", err)
		}
	})

	t.Run("mcq with two correct options", func(t *testing.T) {
		test, questions := valid()
		questions[0].Options[1].IsCorrect = true
		if err := ValidateTestTree(test, questions); !errors.Is(err, apperrors.ErrValidation) {
			t.Errorf("Expected validation error, got %v", err)
		}
	})

	t.Run("mcq with one option", func(t *testing.T) {
		test, questions := valid()
		questions[0].Options = questions[0].Options[:1]
		if err := ValidateTestTree(test, questions); !errors.Is(err, apperrors.ErrValidation) {
			t.Errorf("Expected validation error, got %v", err)
		}
	})

	t.Run("zero points", func(t *testing.T) {
		test, questions := valid()
		questions[0].Points = 0
		if err := ValidateTestTree(test, questions); !errors.Is(err, apperrors.ErrValidation) {
			t.Errorf("Expected validation error, got %v", err)
		}
	})

	t.Run("written question needs no options", func(t *testing.T) {
		test, _ := valid()
		test.Type = models.TestTypeWritten
		if err := ValidateTestTree(test, []models.Question{written("", 2)}); err != nil {
			t.Errorf("Unexpected error: %v", err)
		}
	})
}

func TestRound2(t *testing.T) {
	cases := []struct {
		in   float64
		want float64
	}{
		{33.333333, 33.33},
		{66.666666, 66.67},
		{100.0, 100.0},
		{0.005, 0.01},
		{62.5, 62.5},
	}
	for _, tc := range cases {
		if got := Round2(tc.in); got != tc.want {
			t.Errorf("Round2(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
