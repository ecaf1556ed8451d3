package grading

import (
	"context"
	"errors"

	"github.com/SAP-F-2025/quiz-service/internal/models"
)

// FallbackFeedback is attached to every question when automatic grading fails.
const FallbackFeedback = "Automatic grading is unavailable. Your teacher will review this answer."

// Outcome is what gets stored on the submission.
type Outcome struct {
	Evaluations models.Evaluations
	GradeStatus models.GradeStatus
	// Err is the grading failure that triggered the fallback, if any.
	Err error
}

// NeedsReview reports whether the fallback branch was taken.
func (o Outcome) NeedsReview() bool {
	return o.GradeStatus == models.GradeStatusNeedsTeacherReview
}

// GradeOrFallback grades the answers and never fails: on any error (timeout,
// bad response, service down, missing service) every question of the quiz
// is marked incorrect with FallbackFeedback and the status becomes
// needs_teacher_review. The caller persists the submission in both cases.
func GradeOrFallback(ctx context.Context, quiz *models.Quiz, answers models.Answers, svc Service) Outcome {
	if svc == nil {
		return fallbackOutcome(quiz, ErrNotConfigured)
	}

	evaluations, err := svc.Grade(ctx, NewGradeRequest(quiz, answers))
	if err == nil && evaluations == nil {
		err = ErrMalformedResponse
	}
	if err != nil {
		return fallbackOutcome(quiz, err)
	}

	return Outcome{
		Evaluations: evaluations,
		GradeStatus: models.GradeStatusGraded,
	}
}

// FallbackEvaluations builds the review-required evaluation for every
// question of the quiz.
func FallbackEvaluations(quiz *models.Quiz) models.Evaluations {
	evaluations := make(models.Evaluations, len(quiz.Questions))
	for _, q := range quiz.Questions {
		evaluations[q.ID] = models.Evaluation{IsCorrect: false, Feedback: FallbackFeedback}
	}
	return evaluations
}

func fallbackOutcome(quiz *models.Quiz, err error) Outcome {
	return Outcome{
		Evaluations: FallbackEvaluations(quiz),
		GradeStatus: models.GradeStatusNeedsTeacherReview,
		Err:         err,
	}
}

// IsTimeout reports whether a grading failure was caused by the deadline.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var timeout interface{ Timeout() bool }
	return errors.As(err, &timeout) && timeout.Timeout()
}
