package models

import "time"

const (
	TestTypeMultipleChoice = "multiple_choice"
	TestTypeWritten        = "written"
	TestTypeCoding         = "coding"
)

// ValidTestType reports whether t is one of the supported test/question types.
func ValidTestType(t string) bool {
	switch t {
	case TestTypeMultipleChoice, TestTypeWritten, TestTypeCoding:
		return true
	}
	return false
}

type Test struct {
	ID               string    `bson:"_id,omitempty" json:"id"`
	CourseID         string    `bson:"course_id" json:"course_id"`
	Title            string    `bson:"title" json:"title"`
	Description      string    `bson:"description" json:"description"`
	Type             string    `bson:"type" json:"test_type"`
	PassingScore     int       `bson:"passing_score" json:"passing_score"`
	TimeLimitMinutes int       `bson:"time_limit_minutes,omitempty" json:"time_limit_minutes,omitempty"`
	MaxAttempts      int       `bson:"max_attempts" json:"max_attempts"`
	CreatedBy        string    `bson:"created_by" json:"created_by"`
	CreatedAt        time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt        time.Time `bson:"updated_at" json:"updated_at"`
}
