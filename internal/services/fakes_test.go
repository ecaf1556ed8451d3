package services

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/SAP-F-2025/quiz-service/internal/grading"
	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/SAP-F-2025/quiz-service/internal/repositories"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeRepository keeps every collection in memory. Stored values are copied
// in and out so services cannot mutate them behind the repository's back.
type fakeRepository struct {
	mu          sync.Mutex
	quizzes     map[string]models.Quiz
	classes     map[string]models.Class
	enrollments map[string]models.ClassEnrollment
	submissions []models.Submission
	profiles    map[string]models.UserProfile

	teacherEmails repositories.TeacherEmailRepository
	// writeErr, when set, is returned by every create and update
	writeErr error
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		quizzes:       map[string]models.Quiz{},
		classes:       map[string]models.Class{},
		enrollments:   map[string]models.ClassEnrollment{},
		profiles:      map[string]models.UserProfile{},
		teacherEmails: &fakeTeacherEmails{emails: map[string]models.TeacherEmail{}},
	}
}

func (r *fakeRepository) Quiz() repositories.QuizRepository                 { return fakeQuizzes{r} }
func (r *fakeRepository) Class() repositories.ClassRepository               { return fakeClasses{r} }
func (r *fakeRepository) Enrollment() repositories.EnrollmentRepository     { return fakeEnrollments{r} }
func (r *fakeRepository) Submission() repositories.SubmissionRepository     { return fakeSubmissions{r} }
func (r *fakeRepository) TeacherEmail() repositories.TeacherEmailRepository { return r.teacherEmails }
func (r *fakeRepository) UserProfile() repositories.UserProfileRepository   { return fakeProfiles{r} }

func cloneQuiz(q models.Quiz) *models.Quiz {
	q.Questions = append([]models.Question(nil), q.Questions...)
	return &q
}

type fakeQuizzes struct{ r *fakeRepository }

func (f fakeQuizzes) Create(ctx context.Context, quiz *models.Quiz) error {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	if f.r.writeErr != nil {
		return f.r.writeErr
	}
	f.r.quizzes[quiz.ID] = *cloneQuiz(*quiz)
	return nil
}

func (f fakeQuizzes) GetByID(ctx context.Context, id string) (*models.Quiz, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	q, ok := f.r.quizzes[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return cloneQuiz(q), nil
}

func (f fakeQuizzes) Update(ctx context.Context, quiz *models.Quiz) error {
	return f.Create(ctx, quiz)
}

func (f fakeQuizzes) Delete(ctx context.Context, id string) error {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	delete(f.r.quizzes, id)
	return nil
}

func (f fakeQuizzes) list(match func(*models.Quiz) bool) []*models.Quiz {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	out := []*models.Quiz{}
	for _, q := range f.r.quizzes {
		if match(&q) {
			out = append(out, cloneQuiz(q))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (f fakeQuizzes) ListByTeacher(ctx context.Context, teacherID string) ([]*models.Quiz, error) {
	return f.list(func(q *models.Quiz) bool { return q.TeacherID == teacherID }), nil
}

func (f fakeQuizzes) ListByClass(ctx context.Context, classID string) ([]*models.Quiz, error) {
	return f.list(func(q *models.Quiz) bool { return q.ClassID == classID }), nil
}

func (f fakeQuizzes) ListByClasses(ctx context.Context, classIDs []string) ([]*models.Quiz, error) {
	set := map[string]bool{}
	for _, id := range classIDs {
		set[id] = true
	}
	return f.list(func(q *models.Quiz) bool { return set[q.ClassID] }), nil
}

func (f fakeQuizzes) ListWithoutClass(ctx context.Context, teacherID string) ([]*models.Quiz, error) {
	return f.list(func(q *models.Quiz) bool { return q.TeacherID == teacherID && q.ClassID == "" }), nil
}

type fakeClasses struct{ r *fakeRepository }

func (f fakeClasses) Create(ctx context.Context, class *models.Class) error {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	if f.r.writeErr != nil {
		return f.r.writeErr
	}
	if _, ok := f.r.classes[class.ID]; ok {
		return repositories.ErrDuplicate
	}
	f.r.classes[class.ID] = *class
	return nil
}

func (f fakeClasses) GetByID(ctx context.Context, id string) (*models.Class, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	c, ok := f.r.classes[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &c, nil
}

func (f fakeClasses) Update(ctx context.Context, class *models.Class) error {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	if f.r.writeErr != nil {
		return f.r.writeErr
	}
	f.r.classes[class.ID] = *class
	return nil
}

func (f fakeClasses) Delete(ctx context.Context, id string) error {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	delete(f.r.classes, id)
	for key, e := range f.r.enrollments {
		if e.ClassID == id {
			delete(f.r.enrollments, key)
		}
	}
	return nil
}

func (f fakeClasses) ListByTeacher(ctx context.Context, teacherID string) ([]*models.Class, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	out := []*models.Class{}
	for _, c := range f.r.classes {
		if c.TeacherID == teacherID {
			c := c
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f fakeClasses) GetDefault(ctx context.Context, teacherID string) (*models.Class, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	for _, c := range f.r.classes {
		if c.TeacherID == teacherID && c.IsDefault {
			return &c, nil
		}
	}
	return nil, repositories.ErrNotFound
}

type fakeEnrollments struct{ r *fakeRepository }

func (f fakeEnrollments) Upsert(ctx context.Context, enrollment *models.ClassEnrollment) error {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	if f.r.writeErr != nil {
		return f.r.writeErr
	}
	f.r.enrollments[enrollment.ID] = *enrollment
	return nil
}

func (f fakeEnrollments) Delete(ctx context.Context, id string) error {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	if _, ok := f.r.enrollments[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(f.r.enrollments, id)
	return nil
}

func (f fakeEnrollments) Exists(ctx context.Context, classID, studentID string) (bool, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	_, ok := f.r.enrollments[models.EnrollmentID(classID, studentID)]
	return ok, nil
}

func (f fakeEnrollments) list(match func(*models.ClassEnrollment) bool) []*models.ClassEnrollment {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	out := []*models.ClassEnrollment{}
	for _, e := range f.r.enrollments {
		if match(&e) {
			e := e
			out = append(out, &e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (f fakeEnrollments) ListByStudent(ctx context.Context, studentID string) ([]*models.ClassEnrollment, error) {
	return f.list(func(e *models.ClassEnrollment) bool { return e.StudentID == studentID }), nil
}

func (f fakeEnrollments) ListByClass(ctx context.Context, classID string) ([]*models.ClassEnrollment, error) {
	return f.list(func(e *models.ClassEnrollment) bool { return e.ClassID == classID }), nil
}

type fakeSubmissions struct{ r *fakeRepository }

func (f fakeSubmissions) Create(ctx context.Context, submission *models.Submission) error {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	if f.r.writeErr != nil {
		return f.r.writeErr
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	f.r.submissions = append(f.r.submissions, *submission)
	return nil
}

func (f fakeSubmissions) GetByID(ctx context.Context, id string) (*models.Submission, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	for _, s := range f.r.submissions {
		if s.ID == id {
			return &s, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f fakeSubmissions) Delete(ctx context.Context, id string) error {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	kept := f.r.submissions[:0]
	for _, s := range f.r.submissions {
		if s.ID != id {
			kept = append(kept, s)
		}
	}
	f.r.submissions = kept
	return nil
}

func (f fakeSubmissions) list(match func(*models.Submission) bool) []models.Submission {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	out := []models.Submission{}
	for _, s := range f.r.submissions {
		if match(&s) {
			out = append(out, s)
		}
	}
	return out
}

func (f fakeSubmissions) ListByStudent(ctx context.Context, studentID string) ([]models.Submission, error) {
	return f.list(func(s *models.Submission) bool { return s.StudentID == studentID }), nil
}

func (f fakeSubmissions) ListByQuiz(ctx context.Context, quizID string) ([]models.Submission, error) {
	return f.list(func(s *models.Submission) bool { return s.QuizID == quizID }), nil
}

func (f fakeSubmissions) ListByClass(ctx context.Context, classID string) ([]models.Submission, error) {
	return f.list(func(s *models.Submission) bool { return s.ClassID == classID }), nil
}

type fakeProfiles struct{ r *fakeRepository }

func (f fakeProfiles) Upsert(ctx context.Context, profile *models.UserProfile) error {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	if f.r.writeErr != nil {
		return f.r.writeErr
	}
	f.r.profiles[profile.ID] = *profile
	return nil
}

func (f fakeProfiles) GetByID(ctx context.Context, id string) (*models.UserProfile, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	p, ok := f.r.profiles[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &p, nil
}

type fakeTeacherEmails struct {
	mu     sync.Mutex
	emails map[string]models.TeacherEmail
}

func (f *fakeTeacherEmails) Exists(ctx context.Context, email string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.emails[email]
	return ok, nil
}

func (f *fakeTeacherEmails) Add(ctx context.Context, entry *models.TeacherEmail) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.emails[entry.Email]; !ok {
		f.emails[entry.Email] = *entry
	}
	return nil
}

func (f *fakeTeacherEmails) Remove(ctx context.Context, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.emails[email]; !ok {
		return repositories.ErrNotFound
	}
	delete(f.emails, email)
	return nil
}

// MockTeacherEmailRepository is a mock implementation of TeacherEmailRepository
type MockTeacherEmailRepository struct {
	mock.Mock
}

func (m *MockTeacherEmailRepository) Exists(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockTeacherEmailRepository) Add(ctx context.Context, entry *models.TeacherEmail) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockTeacherEmailRepository) Remove(ctx context.Context, email string) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

// MockGrader is a mock implementation of grading.Service
type MockGrader struct {
	mock.Mock
}

func (m *MockGrader) Grade(ctx context.Context, req grading.GradeRequest) (models.Evaluations, error) {
	args := m.Called(ctx, req)
	evaluations, _ := args.Get(0).(models.Evaluations)
	return evaluations, args.Error(1)
}

// slowGrader blocks until the context gives up
type slowGrader struct{}

func (slowGrader) Grade(ctx context.Context, req grading.GradeRequest) (models.Evaluations, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

// identityShuffler leaves the order alone
type identityShuffler struct{}

func (identityShuffler) Shuffle(n int, swap func(i, j int)) {}

// reverseShuffler reverses the order so shuffled sessions are recognisable
type reverseShuffler struct{}

func (reverseShuffler) Shuffle(n int, swap func(i, j int)) {
	for i, j := 0, n-1; i < j; i, j = i+1, j-1 {
		swap(i, j)
	}
}

var fixedNow = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

var (
	teacher      = Actor{UserID: "t1", Email: "Teacher@School.org", DisplayName: "Ms. Teacher", Role: models.RoleTeacher}
	otherTeacher = Actor{UserID: "t2", Email: "other@school.org", DisplayName: "Mr. Other", Role: models.RoleTeacher}
	student      = Actor{UserID: "s1", Email: "s1@school.org", DisplayName: "Student One", Role: models.RoleStudent}
	outsider     = Actor{UserID: "s9", Email: "s9@school.org", DisplayName: "Not Enrolled", Role: models.RoleStudent}
)
