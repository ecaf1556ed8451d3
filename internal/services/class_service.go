package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/SAP-F-2025/quiz-service/internal/cache"
	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/SAP-F-2025/quiz-service/internal/repositories"
	"github.com/SAP-F-2025/quiz-service/internal/validator"
)

type classService struct {
	repo      repositories.Repository
	cache     cache.CacheService
	logger    *slog.Logger
	log       *ServiceLogger
	validator *validator.Validator
}

func NewClassService(repo repositories.Repository, cacheService cache.CacheService, logger *slog.Logger, validator *validator.Validator) ClassService {
	return &classService{
		repo:      repo,
		cache:     cacheService,
		logger:    logger,
		log:       NewServiceLogger(logger, "class"),
		validator: validator,
	}
}

func (s *classService) Create(ctx context.Context, actor Actor, req *CreateClassRequest) (class *models.Class, err error) {
	op := s.log.WithOperation(ctx, "class.create", actor.UserID)
	defer func() {
		id := ""
		if class != nil {
			id = class.ID
		}
		op.LogResult(id, "class", err)
	}()

	if err = requireTeacher(actor); err != nil {
		return nil, err
	}
	if err = s.validator.ValidateStruct(req); err != nil {
		return nil, err
	}

	class = &models.Class{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(req.Name),
		TeacherID: actor.UserID,
	}
	if err = s.repo.Class().Create(ctx, class); err != nil {
		return nil, storeError(err, actor, "class", class.ID, "create")
	}
	return class, nil
}

// Rename changes the class name and rewrites the denormalized className on
// every quiz of the class.
func (s *classService) Rename(ctx context.Context, actor Actor, classID string, req *RenameClassRequest) (class *models.Class, err error) {
	op := s.log.WithOperation(ctx, "class.rename", actor.UserID)
	defer func() { op.LogResult(classID, "class", err) }()

	if err = s.validator.ValidateStruct(req); err != nil {
		return nil, err
	}
	class, err = loadOwnedClass(ctx, s.repo, actor, classID, "rename")
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if class.Name == name {
		return class, nil
	}
	class.Name = name
	if err = s.repo.Class().Update(ctx, class); err != nil {
		return nil, storeError(err, actor, "class", classID, "rename")
	}

	quizzes, err := s.repo.Quiz().ListByClass(ctx, classID)
	if err != nil {
		return nil, fmt.Errorf("failed to list class quizzes: %w", err)
	}
	for _, quiz := range quizzes {
		quiz.ClassName = name
		if err = s.repo.Quiz().Update(ctx, quiz); err != nil {
			return nil, storeError(err, actor, "quiz", quiz.ID, "update")
		}
		if cerr := s.cache.Delete(ctx, quizCacheKey(quiz.ID)); cerr != nil {
			s.logger.Warn("Quiz cache eviction failed", "quiz_id", quiz.ID, "error", cerr)
		}
	}
	return class, nil
}

// SetArchived archives or restores a class. Archived classes keep their
// quizzes and enrollments but cannot receive new quizzes.
func (s *classService) SetArchived(ctx context.Context, actor Actor, classID string, archived bool) (class *models.Class, err error) {
	op := s.log.WithOperation(ctx, "class.set_archived", actor.UserID)
	defer func() { op.LogResult(classID, "class", err) }()

	class, err = loadOwnedClass(ctx, s.repo, actor, classID, "archive")
	if err != nil {
		return nil, err
	}
	if archived && class.IsDefault {
		return nil, ErrDefaultClassNotArchivable
	}
	if class.IsArchived == archived {
		return class, nil
	}

	class.IsArchived = archived
	if err = s.repo.Class().Update(ctx, class); err != nil {
		return nil, storeError(err, actor, "class", classID, "archive")
	}
	return class, nil
}

// Delete removes a class and its enrollments. Quizzes and submissions that
// reference it are left untouched.
func (s *classService) Delete(ctx context.Context, actor Actor, classID string) (err error) {
	op := s.log.WithOperation(ctx, "class.delete", actor.UserID)
	defer func() { op.LogResult(classID, "class", err) }()

	class, err := loadOwnedClass(ctx, s.repo, actor, classID, "delete")
	if err != nil {
		return err
	}
	if class.IsDefault {
		return ErrDefaultClassNotDeletable
	}
	if err = s.repo.Class().Delete(ctx, classID); err != nil {
		return storeError(err, actor, "class", classID, "delete")
	}
	return nil
}

func (s *classService) ListForTeacher(ctx context.Context, actor Actor) ([]*models.Class, error) {
	if err := requireTeacher(actor); err != nil {
		return nil, err
	}
	classes, err := s.repo.Class().ListByTeacher(ctx, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list classes: %w", err)
	}
	return classes, nil
}

// Enroll adds a student to the class. Enrolling twice overwrites the first
// enrollment.
func (s *classService) Enroll(ctx context.Context, actor Actor, classID string, req *EnrollStudentRequest) (enrollment *models.ClassEnrollment, err error) {
	op := s.log.WithOperation(ctx, "class.enroll", actor.UserID)
	defer func() { op.LogResult(classID, "class", err) }()

	if err = s.validator.ValidateStruct(req); err != nil {
		return nil, err
	}
	if _, err = loadOwnedClass(ctx, s.repo, actor, classID, "enroll into"); err != nil {
		return nil, err
	}

	enrollment = &models.ClassEnrollment{
		ID:           models.EnrollmentID(classID, req.StudentID),
		ClassID:      classID,
		StudentID:    req.StudentID,
		StudentEmail: models.NormalizeEmail(req.StudentEmail),
		StudentName:  strings.TrimSpace(req.StudentName),
	}
	if err = s.repo.Enrollment().Upsert(ctx, enrollment); err != nil {
		return nil, storeError(err, actor, "enrollment", enrollment.ID, "create")
	}
	return enrollment, nil
}

func (s *classService) Unenroll(ctx context.Context, actor Actor, classID, studentID string) (err error) {
	op := s.log.WithOperation(ctx, "class.unenroll", actor.UserID)
	defer func() { op.LogResult(classID, "class", err) }()

	if _, err = loadOwnedClass(ctx, s.repo, actor, classID, "unenroll from"); err != nil {
		return err
	}
	id := models.EnrollmentID(classID, studentID)
	if err = s.repo.Enrollment().Delete(ctx, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrNotEnrolled
		}
		return storeError(err, actor, "enrollment", id, "delete")
	}
	return nil
}

func (s *classService) Roster(ctx context.Context, actor Actor, classID string) ([]*models.ClassEnrollment, error) {
	if _, err := loadOwnedClass(ctx, s.repo, actor, classID, "view roster of"); err != nil {
		return nil, err
	}
	roster, err := s.repo.Enrollment().ListByClass(ctx, classID)
	if err != nil {
		return nil, fmt.Errorf("failed to list enrollments: %w", err)
	}
	return roster, nil
}

func (s *classService) EnsureDefaultClass(ctx context.Context, actor Actor) (*models.Class, error) {
	if err := requireTeacher(actor); err != nil {
		return nil, err
	}
	return ensureDefaultClass(ctx, s.repo, actor)
}
