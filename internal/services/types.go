package services

import (
	"context"

	"github.com/SAP-F-2025/quiz-service/internal/ledger"
	"github.com/SAP-F-2025/quiz-service/internal/models"
)

// Actor is the authenticated caller of a service operation
type Actor struct {
	UserID      string          `json:"userId"`
	Email       string          `json:"email"`
	DisplayName string          `json:"displayName"`
	Role        models.UserRole `json:"role"`
}

func (a Actor) IsTeacher() bool {
	return a.Role == models.RoleTeacher
}

// ===== REQUESTS =====

type CreateQuizRequest struct {
	Title                  string               `json:"title" validate:"required,not_blank,max=200"`
	Description            string               `json:"description" validate:"max=2000"`
	ClassID                string               `json:"classId" validate:"omitempty,max=64"`
	MaxAttempts            *models.AttemptLimit `json:"maxAttempts"`
	PrefillFromLastAttempt bool                 `json:"prefillFromLastAttempt"`
	AllowShuffle           bool                 `json:"allowShuffle"`
	AllowReview            bool                 `json:"allowReview"`
	IsLocked               bool                 `json:"isLocked"`
	Questions              []models.Question    `json:"questions" validate:"required,min=1,dive"`
}

func (r *CreateQuizRequest) QuizQuestions() []models.Question      { return r.Questions }
func (r *CreateQuizRequest) QuizMaxAttempts() *models.AttemptLimit { return r.MaxAttempts }

// UpdateQuizRequest merges into the stored quiz: nil fields are left as they
// are. Questions, when present, replace the whole list.
type UpdateQuizRequest struct {
	Title                  *string              `json:"title" validate:"omitempty,not_blank,max=200"`
	Description            *string              `json:"description" validate:"omitempty,max=2000"`
	ClassID                *string              `json:"classId" validate:"omitempty,max=64"`
	MaxAttempts            *models.AttemptLimit `json:"maxAttempts"`
	PrefillFromLastAttempt *bool                `json:"prefillFromLastAttempt"`
	AllowShuffle           *bool                `json:"allowShuffle"`
	AllowReview            *bool                `json:"allowReview"`
	Questions              []models.Question    `json:"questions" validate:"omitempty,min=1,dive"`
}

func (r *UpdateQuizRequest) QuizQuestions() []models.Question      { return r.Questions }
func (r *UpdateQuizRequest) QuizMaxAttempts() *models.AttemptLimit { return r.MaxAttempts }

type CreateClassRequest struct {
	Name string `json:"name" validate:"required,not_blank,max=200"`
}

type RenameClassRequest struct {
	Name string `json:"name" validate:"required,not_blank,max=200"`
}

type EnrollStudentRequest struct {
	StudentID    string `json:"studentId" validate:"required,max=255"`
	StudentEmail string `json:"studentEmail" validate:"omitempty,email"`
	StudentName  string `json:"studentName" validate:"max=200"`
}

type SubmitAttemptRequest struct {
	Answers models.Answers `json:"answers"`
}

type TeacherEmailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ===== RESPONSES =====

type SubmitAttemptResponse struct {
	Submission *models.Submission `json:"submission"`
	Attempts   ledger.AttemptInfo `json:"attempts"`
	// GradingUnavailable is set when the answers were kept for teacher review
	GradingUnavailable bool `json:"gradingUnavailable"`
}

// QuizResults is a teacher's view of one quiz: attempts grouped per student,
// newest attempt first
type QuizResults struct {
	Quiz      *models.Quiz                   `json:"quiz"`
	ByStudent map[string][]models.Submission `json:"byStudent"`
}

// ===== SERVICE INTERFACES =====

type QuizService interface {
	Create(ctx context.Context, actor Actor, req *CreateQuizRequest) (*models.Quiz, error)
	Update(ctx context.Context, actor Actor, quizID string, req *UpdateQuizRequest) (*models.Quiz, error)
	Delete(ctx context.Context, actor Actor, quizID string) error
	Get(ctx context.Context, actor Actor, quizID string) (*models.Quiz, error)
	ListForTeacher(ctx context.Context, actor Actor) ([]*models.Quiz, error)
	ListForStudent(ctx context.Context, actor Actor) ([]*models.Quiz, error)
	SetLocked(ctx context.Context, actor Actor, quizID string, locked bool) (*models.Quiz, error)
	MigrateLegacyQuizzes(ctx context.Context, actor Actor) (int, error)
}

type ClassService interface {
	Create(ctx context.Context, actor Actor, req *CreateClassRequest) (*models.Class, error)
	Rename(ctx context.Context, actor Actor, classID string, req *RenameClassRequest) (*models.Class, error)
	SetArchived(ctx context.Context, actor Actor, classID string, archived bool) (*models.Class, error)
	Delete(ctx context.Context, actor Actor, classID string) error
	ListForTeacher(ctx context.Context, actor Actor) ([]*models.Class, error)
	Enroll(ctx context.Context, actor Actor, classID string, req *EnrollStudentRequest) (*models.ClassEnrollment, error)
	Unenroll(ctx context.Context, actor Actor, classID, studentID string) error
	Roster(ctx context.Context, actor Actor, classID string) ([]*models.ClassEnrollment, error)
	EnsureDefaultClass(ctx context.Context, actor Actor) (*models.Class, error)
}

type AttemptService interface {
	Overview(ctx context.Context, actor Actor) ([]ledger.QuizStatus, error)
	Start(ctx context.Context, actor Actor, quizID string) (*ledger.AttemptSession, error)
	Submit(ctx context.Context, actor Actor, quizID string, req *SubmitAttemptRequest) (*SubmitAttemptResponse, error)
	History(ctx context.Context, actor Actor) (map[string][]models.Submission, error)
	ReturnAttempt(ctx context.Context, actor Actor, submissionID string) error
}

type ReviewService interface {
	TeacherFeed(ctx context.Context, actor Actor) ([]models.Submission, error)
	QuizSubmissions(ctx context.Context, actor Actor, quizID string) (*QuizResults, error)
	ClassSubmissions(ctx context.Context, actor Actor, classID string) (map[string][]models.Submission, error)
	ExportQuizResults(ctx context.Context, actor Actor, quizID string) ([]byte, string, error)
}

type IdentityService interface {
	ResolveRole(ctx context.Context, email string) (models.UserRole, error)
	EnsureProfile(ctx context.Context, actor Actor) (*models.UserProfile, error)
	AddTeacherEmail(ctx context.Context, actor Actor, req *TeacherEmailRequest) (*models.TeacherEmail, error)
	RemoveTeacherEmail(ctx context.Context, actor Actor, email string) error
	SeedTeacherEmails(ctx context.Context, emails []string) error
}
