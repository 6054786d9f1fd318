package service

import (
	"context"
	"errors"
	"log"
	"time"

	"assessment-service/internal/apperrors"
	"assessment-service/internal/db"
	"assessment-service/internal/event"
	"assessment-service/internal/models"
	"assessment-service/internal/skills"

	"go.mongodb.org/mongo-driver/mongo"
)

type SkillService struct {
	Skills      SkillStore
	Enrollments EnrollmentStore
	Attempts    AttemptStore
	Ratings     skills.RatingSource
	Publisher   Notifier
	Tx          db.TxRunner
}

func NewSkillService(skillStore SkillStore, enrollments EnrollmentStore, attempts AttemptStore, ratings skills.RatingSource, publisher Notifier, tx db.TxRunner) *SkillService {
	return &SkillService{
		Skills:      skillStore,
		Enrollments: enrollments,
		Attempts:    attempts,
		Ratings:     ratings,
		Publisher:   publisher,
		Tx:          tx,
	}
}

// Recalculate rebuilds every derived skill row for one user from completed
// courses and graded attempt averages. All upserts share one transaction.
func (s *SkillService) Recalculate(ctx context.Context, userID string) ([]models.UserSkill, error) {
	completedCourses, err := s.Enrollments.FindCompletedCourseIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	links, err := s.Skills.FindLinksByCourses(ctx, completedCourses)
	if err != nil {
		return nil, err
	}
	averages, err := s.Attempts.AverageGradedScoreByCourse(ctx, userID)
	if err != nil {
		return nil, err
	}

	aggregates := skills.BuildAggregates(links, completedCourses, averages)

	now := time.Now()
	userSkills := make([]models.UserSkill, 0, len(aggregates))
	for _, agg := range aggregates {
		rating, err := s.Ratings.Rating(ctx, userID, agg.SkillID)
		if err != nil {
			return nil, err
		}
		userSkills = append(userSkills, models.UserSkill{
			UserID:           userID,
			SkillID:          agg.SkillID,
			Level:            skills.Level(agg.CoursesCompleted, agg.TestAverage, rating),
			CoursesCompleted: agg.CoursesCompleted,
			TestAverage:      agg.TestAverage,
			SupervisorRating: rating,
			LastCalculated:   now,
		})
	}

	err = s.Tx.WithTransaction(ctx, func(ctx context.Context) error {
		for i := range userSkills {
			if err := s.Skills.UpsertUserSkill(ctx, &userSkills[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.Publisher != nil {
		if err := s.Publisher.Publish(event.TopicSkillsUpdated, map[string]interface{}{
			"user_id":      userID,
			"skills_count": len(userSkills),
		}); err != nil {
			log.Printf("Failed to publish skills recalculation for %s: %v", userID, err)
		}
	}

	return userSkills, nil
}

func (s *SkillService) CreateSkill(ctx context.Context, name, description string) (*models.Skill, error) {
	if name == "" {
		return nil, apperrors.Validation("name is required")
	}
	skill := &models.Skill{Name: name, Description: description}
	if err := s.Skills.Create(ctx, skill); err != nil {
		return nil, err
	}
	return skill, nil
}

func (s *SkillService) ListSkills(ctx context.Context) ([]models.Skill, error) {
	return s.Skills.FindAll(ctx)
}

func (s *SkillService) GetSkill(ctx context.Context, id string) (*models.Skill, error) {
	skill, err := s.Skills.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NotFound("skill", id)
		}
		return nil, err
	}
	return skill, nil
}

func (s *SkillService) UserSkills(ctx context.Context, userID string) ([]models.UserSkill, error) {
	return s.Skills.FindUserSkills(ctx, userID)
}

// LinkCourseSkill upserts the (course, skill) contribution weight.
func (s *SkillService) LinkCourseSkill(ctx context.Context, courseID, skillID string, weight float64) error {
	if courseID == "" || skillID == "" {
		return apperrors.Validation("course_id and skill_id are required")
	}
	if weight < 0 || weight > 1 {
		return apperrors.Validation("weight must be within [0, 1]")
	}
	if _, err := s.GetSkill(ctx, skillID); err != nil {
		return err
	}
	return s.Skills.UpsertCourseLink(ctx, &models.CourseSkill{
		CourseID: courseID,
		SkillID:  skillID,
		Weight:   weight,
	})
}

// IngestCompletion mirrors a course-completion fact from the course
// service.
func (s *SkillService) IngestCompletion(ctx context.Context, userID, courseID string, completedAt time.Time) error {
	if userID == "" || courseID == "" {
		return apperrors.Validation("user_id and course_id are required")
	}
	if completedAt.IsZero() {
		completedAt = time.Now()
	}
	return s.Enrollments.UpsertCompletion(ctx, userID, courseID, completedAt)
}
