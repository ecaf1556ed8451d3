package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/SAP-F-2025/quiz-service/internal/cache"
	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/SAP-F-2025/quiz-service/internal/repositories"
	"github.com/SAP-F-2025/quiz-service/internal/validator"
)

const quizCacheTTL = 5 * time.Minute

func quizCacheKey(id string) string {
	return "quiz:" + id
}

type quizService struct {
	repo      repositories.Repository
	cache     cache.CacheService
	logger    *slog.Logger
	log       *ServiceLogger
	validator *validator.Validator
}

func NewQuizService(repo repositories.Repository, cacheService cache.CacheService, logger *slog.Logger, validator *validator.Validator) QuizService {
	return &quizService{
		repo:      repo,
		cache:     cacheService,
		logger:    logger,
		log:       NewServiceLogger(logger, "quiz"),
		validator: validator,
	}
}

func (s *quizService) Create(ctx context.Context, actor Actor, req *CreateQuizRequest) (quiz *models.Quiz, err error) {
	op := s.log.WithOperation(ctx, "quiz.create", actor.UserID)
	defer func() { op.LogResult(quizID(quiz), "quiz", err) }()

	if err = requireTeacher(actor); err != nil {
		return nil, err
	}
	if err = s.validator.Validate(req); err != nil {
		return nil, err
	}

	class, err := s.targetClass(ctx, actor, req.ClassID)
	if err != nil {
		return nil, err
	}

	quiz = &models.Quiz{
		ID:                     uuid.NewString(),
		Title:                  strings.TrimSpace(req.Title),
		Description:            req.Description,
		IsLocked:               req.IsLocked,
		MaxAttempts:            models.NewAttemptLimit(models.DefaultMaxAttempts),
		PrefillFromLastAttempt: req.PrefillFromLastAttempt,
		AllowShuffle:           req.AllowShuffle,
		AllowReview:            req.AllowReview,
		ClassID:                class.ID,
		ClassName:              class.Name,
		TeacherID:              actor.UserID,
		TeacherName:            actor.DisplayName,
		Questions:              withQuestionIDs(req.Questions),
	}
	if req.MaxAttempts != nil && req.MaxAttempts.Valid {
		quiz.MaxAttempts = *req.MaxAttempts
	}

	if err = s.repo.Quiz().Create(ctx, quiz); err != nil {
		return nil, storeError(err, actor, "quiz", quiz.ID, "create")
	}
	return quiz, nil
}

// targetClass resolves the class a quiz is written into. An empty id means
// the teacher's default class.
func (s *quizService) targetClass(ctx context.Context, actor Actor, classID string) (*models.Class, error) {
	if classID == "" {
		return ensureDefaultClass(ctx, s.repo, actor)
	}
	class, err := loadOwnedClass(ctx, s.repo, actor, classID, "add quiz to")
	if err != nil {
		return nil, err
	}
	if class.IsArchived {
		return nil, ErrClassArchived
	}
	return class, nil
}

func (s *quizService) Update(ctx context.Context, actor Actor, id string, req *UpdateQuizRequest) (quiz *models.Quiz, err error) {
	op := s.log.WithOperation(ctx, "quiz.update", actor.UserID)
	defer func() { op.LogResult(id, "quiz", err) }()

	if err = s.validator.Validate(req); err != nil {
		return nil, err
	}
	quiz, err = loadOwnedQuiz(ctx, s.repo, actor, id, "update")
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		quiz.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		quiz.Description = *req.Description
	}
	if req.MaxAttempts != nil {
		quiz.MaxAttempts = *req.MaxAttempts
	}
	if req.PrefillFromLastAttempt != nil {
		quiz.PrefillFromLastAttempt = *req.PrefillFromLastAttempt
	}
	if req.AllowShuffle != nil {
		quiz.AllowShuffle = *req.AllowShuffle
	}
	if req.AllowReview != nil {
		quiz.AllowReview = *req.AllowReview
	}
	if req.ClassID != nil && *req.ClassID != quiz.ClassID {
		class, err := s.targetClass(ctx, actor, *req.ClassID)
		if err != nil {
			return nil, err
		}
		quiz.ClassID = class.ID
		quiz.ClassName = class.Name
	}
	// Question ids already answered by students are kept as sent; renaming
	// one orphans its evaluations in past submissions.
	if req.Questions != nil {
		quiz.Questions = withQuestionIDs(req.Questions)
	}

	if err = s.save(ctx, actor, quiz); err != nil {
		return nil, err
	}
	return quiz, nil
}

// Delete removes the quiz. Existing submissions are left in place.
func (s *quizService) Delete(ctx context.Context, actor Actor, id string) (err error) {
	op := s.log.WithOperation(ctx, "quiz.delete", actor.UserID)
	defer func() { op.LogResult(id, "quiz", err) }()

	if _, err = loadOwnedQuiz(ctx, s.repo, actor, id, "delete"); err != nil {
		return err
	}
	if err = s.repo.Quiz().Delete(ctx, id); err != nil {
		return storeError(err, actor, "quiz", id, "delete")
	}
	s.evict(ctx, id)
	return nil
}

// Get returns a quiz to its teacher or to a student enrolled in its class
func (s *quizService) Get(ctx context.Context, actor Actor, id string) (*models.Quiz, error) {
	quiz, err := s.cached(ctx, id)
	if err != nil {
		return nil, err
	}

	if actor.IsTeacher() && quiz.TeacherID == actor.UserID {
		return quiz, nil
	}
	enrolled, err := isEnrolled(ctx, s.repo, quiz.ClassID, actor.UserID)
	if err != nil {
		return nil, err
	}
	if !enrolled {
		return nil, NewPermissionError(actor.UserID, id, "quiz", "read", "not enrolled in the quiz's class", ErrQuizAccessDenied)
	}
	return quiz, nil
}

func (s *quizService) ListForTeacher(ctx context.Context, actor Actor) ([]*models.Quiz, error) {
	if err := requireTeacher(actor); err != nil {
		return nil, err
	}
	quizzes, err := s.repo.Quiz().ListByTeacher(ctx, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list quizzes: %w", err)
	}
	return quizzes, nil
}

func (s *quizService) ListForStudent(ctx context.Context, actor Actor) ([]*models.Quiz, error) {
	return studentQuizzes(ctx, s.repo, actor.UserID)
}

func (s *quizService) SetLocked(ctx context.Context, actor Actor, id string, locked bool) (quiz *models.Quiz, err error) {
	op := s.log.WithOperation(ctx, "quiz.set_locked", actor.UserID)
	defer func() { op.LogResult(id, "quiz", err) }()

	quiz, err = loadOwnedQuiz(ctx, s.repo, actor, id, "lock")
	if err != nil {
		return nil, err
	}
	if quiz.IsLocked == locked {
		return quiz, nil
	}
	quiz.IsLocked = locked
	if err = s.save(ctx, actor, quiz); err != nil {
		return nil, err
	}
	return quiz, nil
}

// MigrateLegacyQuizzes moves the teacher's quizzes that have no class into
// the default class and returns how many were moved
func (s *quizService) MigrateLegacyQuizzes(ctx context.Context, actor Actor) (moved int, err error) {
	op := s.log.WithOperation(ctx, "quiz.migrate_legacy", actor.UserID)
	defer func() { op.LogResult("", "quiz", err) }()

	if err = requireTeacher(actor); err != nil {
		return 0, err
	}
	legacy, err := s.repo.Quiz().ListWithoutClass(ctx, actor.UserID)
	if err != nil {
		return 0, fmt.Errorf("failed to list legacy quizzes: %w", err)
	}
	if len(legacy) == 0 {
		return 0, nil
	}

	class, err := ensureDefaultClass(ctx, s.repo, actor)
	if err != nil {
		return 0, err
	}
	for _, quiz := range legacy {
		quiz.ClassID = class.ID
		quiz.ClassName = class.Name
		if err = s.save(ctx, actor, quiz); err != nil {
			return moved, err
		}
		moved++
	}

	s.logger.Info("Migrated legacy quizzes", "teacher_id", actor.UserID, "count", moved, "class_id", class.ID)
	return moved, nil
}

func (s *quizService) save(ctx context.Context, actor Actor, quiz *models.Quiz) error {
	if err := s.repo.Quiz().Update(ctx, quiz); err != nil {
		return storeError(err, actor, "quiz", quiz.ID, "update")
	}
	s.evict(ctx, quiz.ID)
	return nil
}

func (s *quizService) cached(ctx context.Context, id string) (*models.Quiz, error) {
	var quiz models.Quiz
	err := s.cache.Get(ctx, quizCacheKey(id), &quiz)
	if err == nil {
		return &quiz, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn("Quiz cache read failed", "quiz_id", id, "error", err)
	}

	loaded, err := loadQuiz(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, quizCacheKey(id), loaded, quizCacheTTL); err != nil {
		s.logger.Warn("Quiz cache write failed", "quiz_id", id, "error", err)
	}
	return loaded, nil
}

func (s *quizService) evict(ctx context.Context, id string) {
	if err := s.cache.Delete(ctx, quizCacheKey(id)); err != nil {
		s.logger.Warn("Quiz cache eviction failed", "quiz_id", id, "error", err)
	}
}

func quizID(quiz *models.Quiz) string {
	if quiz == nil {
		return ""
	}
	return quiz.ID
}
