package postgres

import (
	"log/slog"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/quiz-service/internal/repositories"
)

type repository struct {
	quiz         repositories.QuizRepository
	class        repositories.ClassRepository
	enrollment   repositories.EnrollmentRepository
	submission   repositories.SubmissionRepository
	teacherEmail repositories.TeacherEmailRepository
	userProfile  repositories.UserProfileRepository
}

// NewRepository wires every collection to db. Writes are announced on feed.
func NewRepository(db *gorm.DB, feed repositories.ChangeFeed, logger *slog.Logger) repositories.Repository {
	helpers := NewSharedHelpers(feed, logger)
	return &repository{
		quiz:         NewQuizPostgreSQL(db, helpers),
		class:        NewClassPostgreSQL(db, helpers),
		enrollment:   NewEnrollmentPostgreSQL(db, helpers),
		submission:   NewSubmissionPostgreSQL(db, helpers),
		teacherEmail: NewTeacherEmailPostgreSQL(db, helpers),
		userProfile:  NewUserProfilePostgreSQL(db, helpers),
	}
}

func (r *repository) Quiz() repositories.QuizRepository               { return r.quiz }
func (r *repository) Class() repositories.ClassRepository             { return r.class }
func (r *repository) Enrollment() repositories.EnrollmentRepository   { return r.enrollment }
func (r *repository) Submission() repositories.SubmissionRepository   { return r.submission }
func (r *repository) TeacherEmail() repositories.TeacherEmailRepository { return r.teacherEmail }
func (r *repository) UserProfile() repositories.UserProfileRepository { return r.userProfile }
