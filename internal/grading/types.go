package grading

import "assessment-service/internal/models"

// SubmittedAnswer is one answer as it arrives from the client.
type SubmittedAnswer struct {
	QuestionID       string `json:"question_id" binding:"required"`
	AnswerText       string `json:"answer_text,omitempty"`
	SelectedOptionID string `json:"selected_option_id,omitempty"`
}

// GradedAnswer is the per-question result of a grading pass. PointsAwarded
// stays nil for answers that need a human grader.
type GradedAnswer struct {
	QuestionID       string
	AnswerText       string
	SelectedOptionID string
	PointsAwarded    *float64
}

// Outcome is the aggregate result of auto-grading one submission.
type Outcome struct {
	Answers        []GradedAnswer
	AutoGraded     bool
	Score          *float64
	Passed         bool
	Feedback       string
	EarnedPoints   float64
	PossiblePoints float64
}

// ManualAward is one grader-supplied score entry.
type ManualAward struct {
	QuestionID    string  `json:"question_id" binding:"required"`
	PointsAwarded float64 `json:"points_awarded"`
	Feedback      string  `json:"feedback,omitempty"`
}

// ManualOutcome is the result of a manual grading pass over a submitted
// attempt.
type ManualOutcome struct {
	Score          float64
	Passed         bool
	EarnedPoints   float64
	PossiblePoints float64
	// Awards holds the resolved award per answered question, grader
	// entries merged over any prior auto-graded points.
	Awards map[string]ManualAward
}

// questionIndex builds a lookup by ID.
func questionIndex(questions []models.Question) map[string]models.Question {
	idx := make(map[string]models.Question, len(questions))
	for _, q := range questions {
		idx[q.ID] = q
	}
	return idx
}
