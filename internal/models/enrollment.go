package models

import "time"

// Enrollment mirrors course-service completion facts; the skill
// aggregation engine only cares about completed rows.
type Enrollment struct {
	ID          string     `bson:"_id,omitempty" json:"id"`
	UserID      string     `bson:"user_id" json:"user_id"`
	CourseID    string     `bson:"course_id" json:"course_id"`
	CompletedAt *time.Time `bson:"completed_at,omitempty" json:"completed_at,omitempty"`
}
