package repositories

import (
	"context"

	"github.com/SAP-F-2025/quiz-service/internal/models"
)

// Repository groups the per-collection repositories
type Repository interface {
	Quiz() QuizRepository
	Class() ClassRepository
	Enrollment() EnrollmentRepository
	Submission() SubmissionRepository
	TeacherEmail() TeacherEmailRepository
	UserProfile() UserProfileRepository
}

type QuizRepository interface {
	Create(ctx context.Context, quiz *models.Quiz) error
	GetByID(ctx context.Context, id string) (*models.Quiz, error)
	Update(ctx context.Context, quiz *models.Quiz) error
	Delete(ctx context.Context, id string) error

	ListByTeacher(ctx context.Context, teacherID string) ([]*models.Quiz, error)
	ListByClass(ctx context.Context, classID string) ([]*models.Quiz, error)
	ListByClasses(ctx context.Context, classIDs []string) ([]*models.Quiz, error)
	// ListWithoutClass returns the teacher's quizzes created before classes existed
	ListWithoutClass(ctx context.Context, teacherID string) ([]*models.Quiz, error)
}

type ClassRepository interface {
	Create(ctx context.Context, class *models.Class) error
	GetByID(ctx context.Context, id string) (*models.Class, error)
	Update(ctx context.Context, class *models.Class) error
	Delete(ctx context.Context, id string) error

	ListByTeacher(ctx context.Context, teacherID string) ([]*models.Class, error)
	GetDefault(ctx context.Context, teacherID string) (*models.Class, error)
}

type EnrollmentRepository interface {
	// Upsert writes the enrollment under its deterministic id
	Upsert(ctx context.Context, enrollment *models.ClassEnrollment) error
	Delete(ctx context.Context, id string) error
	Exists(ctx context.Context, classID, studentID string) (bool, error)

	ListByStudent(ctx context.Context, studentID string) ([]*models.ClassEnrollment, error)
	ListByClass(ctx context.Context, classID string) ([]*models.ClassEnrollment, error)
}

// SubmissionRepository is append-only: submissions are created and deleted,
// never updated.
type SubmissionRepository interface {
	Create(ctx context.Context, submission *models.Submission) error
	GetByID(ctx context.Context, id string) (*models.Submission, error)
	Delete(ctx context.Context, id string) error

	ListByStudent(ctx context.Context, studentID string) ([]models.Submission, error)
	ListByQuiz(ctx context.Context, quizID string) ([]models.Submission, error)
	ListByClass(ctx context.Context, classID string) ([]models.Submission, error)
}

type TeacherEmailRepository interface {
	Exists(ctx context.Context, email string) (bool, error)
	Add(ctx context.Context, entry *models.TeacherEmail) error
	Remove(ctx context.Context, email string) error
}

type UserProfileRepository interface {
	Upsert(ctx context.Context, profile *models.UserProfile) error
	GetByID(ctx context.Context, id string) (*models.UserProfile, error)
}
