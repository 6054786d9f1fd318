package models

import "time"

const (
	AttemptStatusInProgress = "in_progress"
	AttemptStatusSubmitted  = "submitted"
	AttemptStatusGraded     = "graded"
)

type Attempt struct {
	ID            string     `bson:"_id,omitempty" json:"id"`
	TestID        string     `bson:"test_id" json:"test_id"`
	UserID        string     `bson:"user_id" json:"user_id"`
	Status        string     `bson:"status" json:"status"`
	AttemptNumber int        `bson:"attempt_number" json:"attempt_number"`
	StartedAt     time.Time  `bson:"started_at" json:"started_at"`
	SubmittedAt   *time.Time `bson:"submitted_at,omitempty" json:"submitted_at,omitempty"`
	Score         *float64   `bson:"score,omitempty" json:"score"`
	GradedAt      *time.Time `bson:"graded_at,omitempty" json:"graded_at,omitempty"`
	GradedBy      string     `bson:"graded_by,omitempty" json:"graded_by,omitempty"`
	Feedback      string     `bson:"feedback,omitempty" json:"feedback,omitempty"`
}

// Passed reports whether the attempt is graded with a score at or above
// the passing threshold.
func (a Attempt) Passed(passingScore int) bool {
	return a.Status == AttemptStatusGraded && a.Score != nil && *a.Score >= float64(passingScore)
}
