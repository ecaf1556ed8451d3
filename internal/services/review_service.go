package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SAP-F-2025/quiz-service/internal/ledger"
	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/SAP-F-2025/quiz-service/internal/repositories"
)

type reviewService struct {
	repo   repositories.Repository
	logger *slog.Logger
	log    *ServiceLogger
}

func NewReviewService(repo repositories.Repository, logger *slog.Logger) ReviewService {
	return &reviewService{
		repo:   repo,
		logger: logger,
		log:    NewServiceLogger(logger, "review"),
	}
}

// TeacherFeed lists the submissions of all the teacher's quizzes, newest first
func (s *reviewService) TeacherFeed(ctx context.Context, actor Actor) ([]models.Submission, error) {
	if err := requireTeacher(actor); err != nil {
		return nil, err
	}
	quizzes, err := s.repo.Quiz().ListByTeacher(ctx, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list quizzes: %w", err)
	}

	perQuiz := make([][]models.Submission, 0, len(quizzes))
	for _, quiz := range quizzes {
		submissions, err := s.repo.Submission().ListByQuiz(ctx, quiz.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to list submissions for quiz %s: %w", quiz.ID, err)
		}
		perQuiz = append(perQuiz, submissions)
	}
	return ledger.TeacherFeed(perQuiz...), nil
}

func (s *reviewService) QuizSubmissions(ctx context.Context, actor Actor, quizID string) (*QuizResults, error) {
	quiz, err := loadOwnedQuiz(ctx, s.repo, actor, quizID, "review")
	if err != nil {
		return nil, err
	}
	submissions, err := s.repo.Submission().ListByQuiz(ctx, quizID)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	return &QuizResults{
		Quiz:      quiz,
		ByStudent: ledger.GroupByStudent(submissions),
	}, nil
}

func (s *reviewService) ClassSubmissions(ctx context.Context, actor Actor, classID string) (map[string][]models.Submission, error) {
	if _, err := loadOwnedClass(ctx, s.repo, actor, classID, "review"); err != nil {
		return nil, err
	}
	submissions, err := s.repo.Submission().ListByClass(ctx, classID)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	return ledger.GroupByClass(submissions), nil
}
