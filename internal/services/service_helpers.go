package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/SAP-F-2025/quiz-service/internal/repositories"
)

func requireTeacher(actor Actor) error {
	if !actor.IsTeacher() {
		return ErrTeacherOnly
	}
	return nil
}

// storeError turns a repository failure into a service error. A database
// privilege failure becomes a rule-denied PermissionError; anything else is
// wrapped as an unknown failure.
func storeError(err error, actor Actor, resource, resourceID, action string) error {
	if repositories.IsPermissionDenied(err) {
		return &PermissionError{
			UserID:      actor.UserID,
			ResourceID:  resourceID,
			Resource:    resource,
			Action:      action,
			Reason:      "the database rules denied the write",
			RulesDenied: true,
			Err:         err,
		}
	}
	return fmt.Errorf("failed to %s %s: %w", action, resource, err)
}

func loadQuiz(ctx context.Context, repo repositories.Repository, quizID string) (*models.Quiz, error) {
	quiz, err := repo.Quiz().GetByID(ctx, quizID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}
	return quiz, nil
}

// loadOwnedQuiz returns the quiz when actor is its teacher
func loadOwnedQuiz(ctx context.Context, repo repositories.Repository, actor Actor, quizID, action string) (*models.Quiz, error) {
	if err := requireTeacher(actor); err != nil {
		return nil, err
	}
	quiz, err := loadQuiz(ctx, repo, quizID)
	if err != nil {
		return nil, err
	}
	if quiz.TeacherID != actor.UserID {
		return nil, NewPermissionError(actor.UserID, quizID, "quiz", action, "not the quiz owner", ErrQuizAccessDenied)
	}
	return quiz, nil
}

// loadOwnedClass returns the class when actor is its teacher
func loadOwnedClass(ctx context.Context, repo repositories.Repository, actor Actor, classID, action string) (*models.Class, error) {
	if err := requireTeacher(actor); err != nil {
		return nil, err
	}
	class, err := repo.Class().GetByID(ctx, classID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrClassNotFound
		}
		return nil, fmt.Errorf("failed to get class: %w", err)
	}
	if class.TeacherID != actor.UserID {
		return nil, NewPermissionError(actor.UserID, classID, "class", action, "not the class owner", ErrClassAccessDenied)
	}
	return class, nil
}

// ensureDefaultClass returns the teacher's default class, creating it on
// first use. The id is derived from the teacher id, so concurrent callers
// converge on one row.
func ensureDefaultClass(ctx context.Context, repo repositories.Repository, actor Actor) (*models.Class, error) {
	class, err := repo.Class().GetDefault(ctx, actor.UserID)
	if err == nil {
		return class, nil
	}
	if !repositories.IsNotFoundError(err) {
		return nil, fmt.Errorf("failed to get default class: %w", err)
	}

	class = &models.Class{
		ID:        models.DefaultClassID(actor.UserID),
		Name:      models.DefaultClassName,
		TeacherID: actor.UserID,
		IsDefault: true,
	}
	if err := repo.Class().Create(ctx, class); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return repo.Class().GetByID(ctx, class.ID)
		}
		return nil, storeError(err, actor, "class", class.ID, "create")
	}
	return class, nil
}

func isEnrolled(ctx context.Context, repo repositories.Repository, classID, studentID string) (bool, error) {
	if classID == "" {
		return false, nil
	}
	ok, err := repo.Enrollment().Exists(ctx, classID, studentID)
	if err != nil {
		return false, fmt.Errorf("failed to check enrollment: %w", err)
	}
	return ok, nil
}

// studentQuizzes lists the quizzes of every class the student is enrolled in
func studentQuizzes(ctx context.Context, repo repositories.Repository, studentID string) ([]*models.Quiz, error) {
	enrollments, err := repo.Enrollment().ListByStudent(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list enrollments: %w", err)
	}
	classIDs := make([]string, 0, len(enrollments))
	for _, e := range enrollments {
		classIDs = append(classIDs, e.ClassID)
	}
	if len(classIDs) == 0 {
		return []*models.Quiz{}, nil
	}
	quizzes, err := repo.Quiz().ListByClasses(ctx, classIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list quizzes: %w", err)
	}
	return quizzes, nil
}

// withQuestionIDs copies questions and assigns an id to those without one
func withQuestionIDs(questions []models.Question) []models.Question {
	out := make([]models.Question, len(questions))
	for i, q := range questions {
		if q.ID == "" {
			q.ID = uuid.NewString()
		}
		out[i] = q
	}
	return out
}
