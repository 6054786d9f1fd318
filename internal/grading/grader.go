package grading

import (
	"fmt"
	"math"

	"assessment-service/internal/apperrors"
	"assessment-service/internal/models"
)

// Round2 is the single rounding policy for scores: two-decimal fixed point.
func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// AutoGrade grades one submission against the test's question set.
//
// The only automatic rule: a multiple_choice question with a selected
// option earns full points if the option is correct, zero otherwise.
// Everything else (written, coding, MCQ left unselected) stays ungraded
// and forces the attempt into the manual-review queue.
func AutoGrade(questions []models.Question, submissions []SubmittedAnswer, passingScore int) (*Outcome, error) {
	if len(submissions) == 0 {
		return nil, apperrors.Validation("answers must not be empty")
	}

	idx := questionIndex(questions)
	seen := make(map[string]bool, len(submissions))

	outcome := &Outcome{AutoGraded: true}

	for _, sub := range submissions {
		if sub.QuestionID == "" {
			return nil, apperrors.Validation("answer missing question_id")
		}
		if seen[sub.QuestionID] {
			return nil, apperrors.Validation("duplicate answer for question %s", sub.QuestionID)
		}
		seen[sub.QuestionID] = true

		question, ok := idx[sub.QuestionID]
		if !ok {
			return nil, apperrors.NotFound("question", sub.QuestionID)
		}

		graded := GradedAnswer{
			QuestionID:       sub.QuestionID,
			AnswerText:       sub.AnswerText,
			SelectedOptionID: sub.SelectedOptionID,
		}

		outcome.PossiblePoints += float64(question.Points)

		if question.Type == models.TestTypeMultipleChoice && sub.SelectedOptionID != "" {
			option := question.OptionByID(sub.SelectedOptionID)
			if option == nil {
				return nil, apperrors.NotFound("option", sub.SelectedOptionID)
			}
			points := 0.0
			if option.IsCorrect {
				points = float64(question.Points)
			}
			graded.PointsAwarded = &points
			outcome.EarnedPoints += points
		} else {
			// Needs a human grader.
			outcome.AutoGraded = false
		}

		outcome.Answers = append(outcome.Answers, graded)
	}

	if outcome.AutoGraded && outcome.PossiblePoints > 0 {
		score := Round2(100 * outcome.EarnedPoints / outcome.PossiblePoints)
		outcome.Score = &score
		outcome.Passed = score >= float64(passingScore)
		outcome.Feedback = scoreFeedback(score, passingScore)
	} else {
		outcome.AutoGraded = false
		outcome.Feedback = "Your answers have been submitted and are awaiting manual review."
	}

	return outcome, nil
}

// ManualGrade resolves grader-supplied awards against a submitted attempt's
// answers. Every previously ungraded answer must receive an award; each
// award is validated against [0, question.points]. The final score covers
// every answered question, merging prior auto-graded points with the
// grader's entries (grader entries win).
func ManualGrade(questions []models.Question, answers []models.Answer, awards []ManualAward, passingScore int) (*ManualOutcome, error) {
	if len(awards) == 0 {
		return nil, apperrors.Validation("awards must not be empty")
	}

	idx := questionIndex(questions)

	answerByQuestion := make(map[string]models.Answer, len(answers))
	for _, a := range answers {
		answerByQuestion[a.QuestionID] = a
	}

	resolved := make(map[string]ManualAward, len(answers))

	for _, award := range awards {
		question, ok := idx[award.QuestionID]
		if !ok {
			return nil, apperrors.NotFound("question", award.QuestionID)
		}
		if _, ok := answerByQuestion[award.QuestionID]; !ok {
			return nil, apperrors.Validation("no answer on this attempt for question %s", award.QuestionID)
		}
		if _, dup := resolved[award.QuestionID]; dup {
			return nil, apperrors.Validation("duplicate award for question %s", award.QuestionID)
		}
		if award.PointsAwarded < 0 || award.PointsAwarded > float64(question.Points) {
			return nil, apperrors.Validation(
				"award %.2f for question %s outside [0, %d]",
				award.PointsAwarded, award.QuestionID, question.Points)
		}
		resolved[award.QuestionID] = award
	}

	outcome := &ManualOutcome{Awards: resolved}

	for _, answer := range answers {
		question, ok := idx[answer.QuestionID]
		if !ok {
			return nil, apperrors.NotFound("question", answer.QuestionID)
		}
		outcome.PossiblePoints += float64(question.Points)

		if award, ok := resolved[answer.QuestionID]; ok {
			outcome.EarnedPoints += award.PointsAwarded
			continue
		}
		if answer.PointsAwarded == nil {
			return nil, apperrors.Validation("question %s left ungraded", answer.QuestionID)
		}
		outcome.EarnedPoints += *answer.PointsAwarded
	}

	if outcome.PossiblePoints <= 0 {
		return nil, apperrors.Validation("attempt has no gradable points")
	}

	outcome.Score = Round2(100 * outcome.EarnedPoints / outcome.PossiblePoints)
	outcome.Passed = outcome.Score >= float64(passingScore)
	return outcome, nil
}

func scoreFeedback(score float64, passingScore int) string {
	if score >= float64(passingScore) {
		return fmt.Sprintf("You scored %.2f%%. Congratulations, you passed (passing score: %d%%).", score, passingScore)
	}
	return fmt.Sprintf("You scored %.2f%%. Unfortunately you did not reach the passing score of %d%%.", score, passingScore)
}

// ValidateTestTree checks a test and its question tree before anything is
// persisted. Creation is all-or-nothing; a failure here means no writes.
func ValidateTestTree(test *models.Test, questions []models.Question) error {
	if test.CourseID == "" {
		return apperrors.Validation("course_id is required")
	}
	if test.Title == "" {
		return apperrors.Validation("title is required")
	}
	if !models.ValidTestType(test.Type) {
		return apperrors.Validation("invalid test type %q", test.Type)
	}
	if test.PassingScore < 0 || test.PassingScore > 100 {
		return apperrors.Validation("passing_score must be within [0, 100]")
	}
	if test.MaxAttempts < 1 {
		return apperrors.Validation("max_attempts must be at least 1")
	}
	if len(questions) == 0 {
		return apperrors.Validation("questions must not be empty")
	}

	for i, q := range questions {
		if q.Text == "" {
			return apperrors.Validation("question %d: text is required", i)
		}
		if !models.ValidTestType(q.Type) {
			return apperrors.Validation("question %d: invalid type %q", i, q.Type)
		}
		if q.Points < 1 {
			return apperrors.Validation("question %d: points must be positive", i)
		}
		if q.Type != models.TestTypeMultipleChoice {
			continue
		}
		if len(q.Options) < 2 {
			return apperrors.Validation("question %d: multiple_choice needs at least 2 options", i)
		}
		correct := 0
		for j, opt := range q.Options {
			if opt.Text == "" {
				return apperrors.Validation("question %d option %d: text is required", i, j)
			}
			if opt.IsCorrect {
				correct++
			}
		}
		// Exactly one keeps auto-grading well-defined.
		if correct != 1 {
			return apperrors.Validation("question %d: multiple_choice needs exactly one correct option, got %d", i, correct)
		}
	}
	return nil
}
