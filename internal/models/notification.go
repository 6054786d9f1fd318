package models

import "time"

const (
	NotificationGradedPassed     = "graded-passed"
	NotificationGradedFailed     = "graded-failed"
	NotificationSubmittedPending = "submitted-pending"
	NotificationFlagged          = "flagged"
)

// Notification is the in-app record written alongside an emitted event.
type Notification struct {
	ID        string                 `bson:"_id,omitempty" json:"id"`
	UserID    string                 `bson:"user_id" json:"user_id"`
	Event     string                 `bson:"event" json:"event"`
	Title     string                 `bson:"title" json:"title"`
	Body      string                 `bson:"body" json:"body"`
	Payload   map[string]interface{} `bson:"payload,omitempty" json:"payload,omitempty"`
	Read      bool                   `bson:"read" json:"read"`
	CreatedAt time.Time              `bson:"created_at" json:"created_at"`
}
