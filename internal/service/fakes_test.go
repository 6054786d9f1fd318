package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"assessment-service/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// In-memory stores backing the service tests. The attempt fake enforces
// the same unique (test_id, user_id, attempt_number) constraint the mongo
// index provides, which is what the admission stress test leans on.

type fakeTx struct{}

func (fakeTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

var errDuplicateAttempt = errors.New("duplicate attempt number")

type fakeAttemptStore struct {
	mu       sync.Mutex
	attempts map[string]*models.Attempt
	averages map[string]float64
	seq      int
}

func newFakeAttemptStore() *fakeAttemptStore {
	return &fakeAttemptStore{attempts: map[string]*models.Attempt{}}
}

func (f *fakeAttemptStore) Create(ctx context.Context, attempt *models.Attempt) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.attempts {
		if existing.TestID == attempt.TestID &&
			existing.UserID == attempt.UserID &&
			existing.AttemptNumber == attempt.AttemptNumber {
			return errDuplicateAttempt
		}
	}
	f.seq++
	attempt.ID = fmt.Sprintf("attempt-%d", f.seq)
	stored := *attempt
	f.attempts[attempt.ID] = &stored
	return nil
}

func (f *fakeAttemptStore) IsDuplicate(err error) bool {
	return errors.Is(err, errDuplicateAttempt)
}

func (f *fakeAttemptStore) FindByID(ctx context.Context, id string) (*models.Attempt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	attempt, ok := f.attempts[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	copied := *attempt
	return &copied, nil
}

func (f *fakeAttemptStore) CountByTestAndUser(ctx context.Context, testID, userID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, a := range f.attempts {
		if a.TestID == testID && a.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (f *fakeAttemptStore) CountByTest(ctx context.Context, testID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, a := range f.attempts {
		if a.TestID == testID {
			n++
		}
	}
	return n, nil
}

func (f *fakeAttemptStore) FindByTestAndUser(ctx context.Context, testID, userID string) ([]models.Attempt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Attempt
	for number := 1; ; number++ {
		found := false
		for _, a := range f.attempts {
			if a.TestID == testID && a.UserID == userID && a.AttemptNumber == number {
				out = append(out, *a)
				found = true
				break
			}
		}
		if !found {
			return out, nil
		}
	}
}

func (f *fakeAttemptStore) UpdateIfStatus(ctx context.Context, id, fromStatus string, update bson.M) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	attempt, ok := f.attempts[id]
	if !ok || attempt.Status != fromStatus {
		return 0, nil
	}
	for key, value := range update {
		switch key {
		case "status":
			attempt.Status = value.(string)
		case "score":
			score := value.(float64)
			attempt.Score = &score
		case "submitted_at":
			at := value.(time.Time)
			attempt.SubmittedAt = &at
		case "graded_at":
			at := value.(time.Time)
			attempt.GradedAt = &at
		case "graded_by":
			attempt.GradedBy = value.(string)
		case "feedback":
			attempt.Feedback = value.(string)
		}
	}
	return 1, nil
}

func (f *fakeAttemptStore) FindPendingGrading(ctx context.Context) ([]models.Attempt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Attempt
	for _, a := range f.attempts {
		if a.Status == models.AttemptStatusSubmitted {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (f *fakeAttemptStore) FindGradedByUser(ctx context.Context, userID string) ([]models.Attempt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Attempt
	for _, a := range f.attempts {
		if a.UserID == userID && a.Status == models.AttemptStatusGraded {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (f *fakeAttemptStore) AverageGradedScoreByCourse(ctx context.Context, userID string) (map[string]float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]float64, len(f.averages))
	for k, v := range f.averages {
		out[k] = v
	}
	return out, nil
}

type fakeTestStore struct {
	mu    sync.Mutex
	tests map[string]*models.Test
	seq   int
}

func newFakeTestStore() *fakeTestStore {
	return &fakeTestStore{tests: map[string]*models.Test{}}
}

func (f *fakeTestStore) Create(ctx context.Context, test *models.Test) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	test.ID = fmt.Sprintf("test-%d", f.seq)
	stored := *test
	f.tests[test.ID] = &stored
	return nil
}

func (f *fakeTestStore) FindByID(ctx context.Context, id string) (*models.Test, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	test, ok := f.tests[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	copied := *test
	return &copied, nil
}

func (f *fakeTestStore) FindByCourse(ctx context.Context, courseID string) ([]models.Test, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Test
	for _, t := range f.tests {
		if t.CourseID == courseID {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (f *fakeTestStore) Update(ctx context.Context, id string, update bson.M) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	test, ok := f.tests[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	for key, value := range update {
		switch key {
		case "title":
			test.Title = value.(string)
		case "description":
			test.Description = value.(string)
		case "type":
			test.Type = value.(string)
		case "passing_score":
			test.PassingScore = value.(int)
		case "time_limit_minutes":
			test.TimeLimitMinutes = value.(int)
		case "max_attempts":
			test.MaxAttempts = value.(int)
		case "updated_at":
			test.UpdatedAt = value.(time.Time)
		}
	}
	return nil
}

type fakeQuestionStore struct {
	mu        sync.Mutex
	questions []models.Question
	seq       int
}

func (f *fakeQuestionStore) CreateMany(ctx context.Context, questions []models.Question) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range questions {
		f.seq++
		questions[i].ID = fmt.Sprintf("question-%d", f.seq)
		for j := range questions[i].Options {
			questions[i].Options[j].ID = fmt.Sprintf("question-%d-option-%d", f.seq, j)
		}
		f.questions = append(f.questions, questions[i])
	}
	return nil
}

func (f *fakeQuestionStore) FindByTestID(ctx context.Context, testID string) ([]models.Question, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Question
	for number := 0; ; number++ {
		found := false
		for _, q := range f.questions {
			if q.TestID == testID && q.OrderIndex == number {
				out = append(out, q)
				found = true
				break
			}
		}
		if !found {
			return out, nil
		}
	}
}

type fakeAnswerStore struct {
	mu      sync.Mutex
	answers []models.Answer
	seq     int
}

func (f *fakeAnswerStore) CreateMany(ctx context.Context, answers []models.Answer) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range answers {
		f.seq++
		answers[i].ID = fmt.Sprintf("answer-%d", f.seq)
		f.answers = append(f.answers, answers[i])
	}
	return nil
}

func (f *fakeAnswerStore) FindByAttempt(ctx context.Context, attemptID string) ([]models.Answer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Answer
	for _, a := range f.answers {
		if a.AttemptID == attemptID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAnswerStore) UpdateAward(ctx context.Context, attemptID, questionID string, points float64, feedback string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.answers {
		if f.answers[i].AttemptID == attemptID && f.answers[i].QuestionID == questionID {
			f.answers[i].PointsAwarded = &points
			if feedback != "" {
				f.answers[i].Feedback = feedback
			}
			return nil
		}
	}
	return mongo.ErrNoDocuments
}

type fakeSkillStore struct {
	mu         sync.Mutex
	skills     map[string]*models.Skill
	links      []models.CourseSkill
	userSkills map[string]*models.UserSkill // keyed user|skill
	seq        int
}

func newFakeSkillStore() *fakeSkillStore {
	return &fakeSkillStore{
		skills:     map[string]*models.Skill{},
		userSkills: map[string]*models.UserSkill{},
	}
}

func (f *fakeSkillStore) Create(ctx context.Context, skill *models.Skill) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	skill.ID = fmt.Sprintf("skill-%d", f.seq)
	stored := *skill
	f.skills[skill.ID] = &stored
	return nil
}

func (f *fakeSkillStore) FindByID(ctx context.Context, id string) (*models.Skill, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	skill, ok := f.skills[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	copied := *skill
	return &copied, nil
}

func (f *fakeSkillStore) FindAll(ctx context.Context) ([]models.Skill, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Skill
	for _, s := range f.skills {
		out = append(out, *s)
	}
	return out, nil
}

func (f *fakeSkillStore) UpsertCourseLink(ctx context.Context, link *models.CourseSkill) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.links {
		if f.links[i].CourseID == link.CourseID && f.links[i].SkillID == link.SkillID {
			f.links[i].Weight = link.Weight
			return nil
		}
	}
	f.links = append(f.links, *link)
	return nil
}

func (f *fakeSkillStore) FindLinksByCourses(ctx context.Context, courseIDs []string) ([]models.CourseSkill, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	wanted := map[string]bool{}
	for _, c := range courseIDs {
		wanted[c] = true
	}
	var out []models.CourseSkill
	for _, l := range f.links {
		if wanted[l.CourseID] {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f *fakeSkillStore) UpsertUserSkill(ctx context.Context, us *models.UserSkill) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored := *us
	f.userSkills[us.UserID+"|"+us.SkillID] = &stored
	return nil
}

func (f *fakeSkillStore) FindUserSkills(ctx context.Context, userID string) ([]models.UserSkill, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.UserSkill
	for _, us := range f.userSkills {
		if us.UserID == userID {
			out = append(out, *us)
		}
	}
	return out, nil
}

type fakeEnrollmentStore struct {
	mu        sync.Mutex
	completed map[string][]string // user -> course IDs
}

func newFakeEnrollmentStore() *fakeEnrollmentStore {
	return &fakeEnrollmentStore{completed: map[string][]string{}}
}

func (f *fakeEnrollmentStore) UpsertCompletion(ctx context.Context, userID, courseID string, completedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.completed[userID] {
		if c == courseID {
			return nil
		}
	}
	f.completed[userID] = append(f.completed[userID], courseID)
	return nil
}

func (f *fakeEnrollmentStore) FindCompletedCourseIDs(ctx context.Context, userID string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.completed[userID]...), nil
}

type fakeNotificationStore struct {
	mu      sync.Mutex
	records []models.Notification
}

func (f *fakeNotificationStore) Create(ctx context.Context, n *models.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, *n)
	return nil
}

func (f *fakeNotificationStore) FindByUser(ctx context.Context, userID string) ([]models.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Notification
	for _, n := range f.records {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out, nil
}

type fakeNotifier struct {
	mu     sync.Mutex
	topics []string
}

func (f *fakeNotifier) Publish(eventType string, payload interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.topics = append(f.topics, eventType)
	return nil
}
