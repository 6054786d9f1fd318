package skills

import (
	"context"
	"math"
	"sort"

	"assessment-service/internal/models"
)

// Aggregate is the per-skill input to the level formula.
type Aggregate struct {
	SkillID          string
	CoursesCompleted int
	TestAverage      float64
}

// RatingSource supplies the human supervisor rating for a (user, skill)
// pair. A real supervisor-review service plugs in here; until then the
// fixed source provides the configured default.
type RatingSource interface {
	Rating(ctx context.Context, userID, skillID string) (float64, error)
}

type FixedRatingSource struct {
	Value float64
}

func (s FixedRatingSource) Rating(ctx context.Context, userID, skillID string) (float64, error) {
	return Clamp(s.Value, 0, 5), nil
}

// Level computes the derived skill level on a 0-5 scale:
//
//	raw   = (courses_completed * test_average/100 * supervisor_rating) / 3
//	level = round2(min(5, raw * 5))
func Level(coursesCompleted int, testAverage, supervisorRating float64) float64 {
	raw := (float64(coursesCompleted) * (testAverage / 100) * supervisorRating) / 3
	level := math.Min(5, raw*5)
	return math.Round(level*100) / 100
}

func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// BuildAggregates groups course→skill links by skill over the user's
// completed courses. courseAverages maps course ID to the mean score of
// the user's graded attempts in that course; a completed course with no
// graded attempts contributes 0 to the skill's test average.
func BuildAggregates(links []models.CourseSkill, completedCourses []string, courseAverages map[string]float64) []Aggregate {
	completed := make(map[string]bool, len(completedCourses))
	for _, c := range completedCourses {
		completed[c] = true
	}

	type bucket struct {
		courses map[string]bool
		sum     float64
	}
	bySkill := make(map[string]*bucket)

	for _, link := range links {
		if !completed[link.CourseID] {
			continue
		}
		b, ok := bySkill[link.SkillID]
		if !ok {
			b = &bucket{courses: make(map[string]bool)}
			bySkill[link.SkillID] = b
		}
		if b.courses[link.CourseID] {
			continue
		}
		b.courses[link.CourseID] = true
		b.sum += courseAverages[link.CourseID]
	}

	aggregates := make([]Aggregate, 0, len(bySkill))
	for skillID, b := range bySkill {
		n := len(b.courses)
		avg := 0.0
		if n > 0 {
			avg = b.sum / float64(n)
		}
		aggregates = append(aggregates, Aggregate{
			SkillID:          skillID,
			CoursesCompleted: n,
			TestAverage:      avg,
		})
	}

	// Deterministic ordering keeps recalculation output stable.
	sort.Slice(aggregates, func(i, j int) bool {
		return aggregates[i].SkillID < aggregates[j].SkillID
	})
	return aggregates
}
