package models

import "time"

type Answer struct {
	ID               string    `bson:"_id,omitempty" json:"id"`
	AttemptID        string    `bson:"attempt_id" json:"attempt_id"`
	QuestionID       string    `bson:"question_id" json:"question_id"`
	AnswerText       string    `bson:"answer_text,omitempty" json:"answer_text,omitempty"`
	SelectedOptionID string    `bson:"selected_option_id,omitempty" json:"selected_option_id,omitempty"`
	PointsAwarded    *float64  `bson:"points_awarded,omitempty" json:"points_awarded"`
	Feedback         string    `bson:"feedback,omitempty" json:"feedback,omitempty"`
	CreatedAt        time.Time `bson:"created_at" json:"created_at"`
}
