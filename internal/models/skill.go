package models

import "time"

type Skill struct {
	ID          string    `bson:"_id,omitempty" json:"id"`
	Name        string    `bson:"name" json:"name"`
	Description string    `bson:"description" json:"description"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
}

// CourseSkill links a course to a skill it develops. Weight is in [0,1].
type CourseSkill struct {
	ID       string  `bson:"_id,omitempty" json:"id"`
	CourseID string  `bson:"course_id" json:"course_id"`
	SkillID  string  `bson:"skill_id" json:"skill_id"`
	Weight   float64 `bson:"weight" json:"weight"`
}

// UserSkill is the derived per-(user, skill) level, upserted wholesale by
// each recalculation.
type UserSkill struct {
	ID               string    `bson:"_id,omitempty" json:"id"`
	UserID           string    `bson:"user_id" json:"user_id"`
	SkillID          string    `bson:"skill_id" json:"skill_id"`
	Level            float64   `bson:"level" json:"level"`
	CoursesCompleted int       `bson:"courses_completed" json:"courses_completed"`
	TestAverage      float64   `bson:"test_average" json:"test_average"`
	SupervisorRating float64   `bson:"supervisor_rating" json:"supervisor_rating"`
	LastCalculated   time.Time `bson:"last_calculated" json:"last_calculated"`
}
