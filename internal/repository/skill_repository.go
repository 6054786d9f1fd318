package repository

import (
	"context"
	"time"

	"assessment-service/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type SkillRepository struct {
	Skills       *mongo.Collection
	CourseSkills *mongo.Collection
	UserSkills   *mongo.Collection
}

func NewSkillRepository(db *mongo.Database) *SkillRepository {
	return &SkillRepository{
		Skills:       db.Collection("skills"),
		CourseSkills: db.Collection("course_skills"),
		UserSkills:   db.Collection("user_skills"),
	}
}

func (r *SkillRepository) Create(ctx context.Context, skill *models.Skill) error {
	if skill.ID == "" {
		skill.ID = primitive.NewObjectID().Hex()
	}
	skill.CreatedAt = time.Now()
	_, err := r.Skills.InsertOne(ctx, skill)
	return err
}

func (r *SkillRepository) FindByID(ctx context.Context, id string) (*models.Skill, error) {
	var skill models.Skill
	err := r.Skills.FindOne(ctx, bson.M{"_id": id}).Decode(&skill)
	if err != nil {
		return nil, err
	}
	return &skill, nil
}

func (r *SkillRepository) FindAll(ctx context.Context) ([]models.Skill, error) {
	cur, err := r.Skills.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var skills []models.Skill
	for cur.Next(ctx) {
		var s models.Skill
		if err := cur.Decode(&s); err != nil {
			return nil, err
		}
		skills = append(skills, s)
	}
	return skills, nil
}

// UpsertCourseLink creates or overwrites the (course, skill) weight link.
func (r *SkillRepository) UpsertCourseLink(ctx context.Context, link *models.CourseSkill) error {
	_, err := r.CourseSkills.UpdateOne(ctx,
		bson.M{"course_id": link.CourseID, "skill_id": link.SkillID},
		bson.M{"$set": bson.M{"weight": link.Weight}},
		options.Update().SetUpsert(true),
	)
	return err
}

func (r *SkillRepository) FindLinksByCourses(ctx context.Context, courseIDs []string) ([]models.CourseSkill, error) {
	if len(courseIDs) == 0 {
		return nil, nil
	}
	cur, err := r.CourseSkills.Find(ctx, bson.M{"course_id": bson.M{"$in": courseIDs}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var links []models.CourseSkill
	for cur.Next(ctx) {
		var l models.CourseSkill
		if err := cur.Decode(&l); err != nil {
			return nil, err
		}
		links = append(links, l)
	}
	return links, nil
}

// UpsertUserSkill overwrites the derived row for one (user, skill) pair.
func (r *SkillRepository) UpsertUserSkill(ctx context.Context, us *models.UserSkill) error {
	_, err := r.UserSkills.UpdateOne(ctx,
		bson.M{"user_id": us.UserID, "skill_id": us.SkillID},
		bson.M{"$set": bson.M{
			"level":             us.Level,
			"courses_completed": us.CoursesCompleted,
			"test_average":      us.TestAverage,
			"supervisor_rating": us.SupervisorRating,
			"last_calculated":   us.LastCalculated,
		}},
		options.Update().SetUpsert(true),
	)
	return err
}

func (r *SkillRepository) FindUserSkills(ctx context.Context, userID string) ([]models.UserSkill, error) {
	cur, err := r.UserSkills.Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var userSkills []models.UserSkill
	for cur.Next(ctx) {
		var us models.UserSkill
		if err := cur.Decode(&us); err != nil {
			return nil, err
		}
		userSkills = append(userSkills, us)
	}
	return userSkills, nil
}
