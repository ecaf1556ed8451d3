package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/SAP-F-2025/quiz-service/internal/events"
	"github.com/SAP-F-2025/quiz-service/internal/grading"
	"github.com/SAP-F-2025/quiz-service/internal/ledger"
	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/SAP-F-2025/quiz-service/internal/repositories"
)

const defaultGradingTimeout = 8 * time.Second

type attemptService struct {
	repo           repositories.Repository
	grader         grading.Service
	publisher      events.EventPublisher
	gradingTimeout time.Duration
	shuffler       ledger.Shuffler
	now            func() time.Time
	logger         *slog.Logger
	log            *ServiceLogger
}

// NewAttemptService builds the attempt flow. A nil grader sends every
// submission to teacher review.
func NewAttemptService(repo repositories.Repository, grader grading.Service, publisher events.EventPublisher, gradingTimeout time.Duration, logger *slog.Logger) AttemptService {
	if gradingTimeout <= 0 {
		gradingTimeout = defaultGradingTimeout
	}
	return &attemptService{
		repo:           repo,
		grader:         grader,
		publisher:      publisher,
		gradingTimeout: gradingTimeout,
		now:            time.Now,
		logger:         logger,
		log:            NewServiceLogger(logger, "attempt"),
	}
}

func (s *attemptService) Overview(ctx context.Context, actor Actor) ([]ledger.QuizStatus, error) {
	quizzes, err := studentQuizzes(ctx, s.repo, actor.UserID)
	if err != nil {
		return nil, err
	}
	summary, err := s.summary(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}

	list := make([]models.Quiz, 0, len(quizzes))
	for _, quiz := range quizzes {
		list = append(list, *quiz)
	}
	return ledger.BuildOverview(list, summary), nil
}

// Start admits the student and returns a new session. The session is not
// stored and every call draws a fresh question order, so a client keeps the
// returned order for the whole attempt instead of starting again.
func (s *attemptService) Start(ctx context.Context, actor Actor, quizID string) (session *ledger.AttemptSession, err error) {
	op := s.log.WithOperation(ctx, "attempt.start", actor.UserID)
	defer func() { op.LogResult(quizID, "quiz", err) }()

	quiz, summary, _, err := s.admit(ctx, actor, quizID)
	if err != nil {
		return nil, err
	}
	return ledger.NewAttemptSession(quiz, summary, s.shuffler, s.now()), nil
}

// Submit grades and stores one attempt. Grading failures never fail the
// submission: the answers are kept for teacher review instead.
func (s *attemptService) Submit(ctx context.Context, actor Actor, quizID string, req *SubmitAttemptRequest) (resp *SubmitAttemptResponse, err error) {
	op := s.log.WithOperation(ctx, "attempt.submit", actor.UserID)
	defer func() { op.LogResult(quizID, "quiz", err) }()

	quiz, summary, info, err := s.admit(ctx, actor, quizID)
	if err != nil {
		return nil, err
	}

	answers := make(models.Answers, len(quiz.Questions))
	for _, q := range quiz.Questions {
		if answer, ok := req.Answers[q.ID]; ok {
			answers[q.ID] = answer
		}
	}

	gradeCtx, cancel := context.WithTimeout(ctx, s.gradingTimeout)
	outcome := grading.GradeOrFallback(gradeCtx, quiz, answers, s.grader)
	cancel()
	if outcome.Err != nil {
		s.logger.Warn("Automatic grading failed, submission kept for review",
			"quiz_id", quiz.ID,
			"student_id", actor.UserID,
			"timeout", grading.IsTimeout(outcome.Err),
			"error", outcome.Err)
	}

	submission := &models.Submission{
		ID:                      uuid.NewString(),
		QuizID:                  quiz.ID,
		ClassID:                 quiz.ClassID,
		StudentID:               actor.UserID,
		Answers:                 answers,
		Evaluations:             outcome.Evaluations,
		GradeStatus:             outcome.GradeStatus,
		AttemptNumber:           summary.NextAttemptNumber(quiz.ID),
		MaxAttemptsAtSubmission: info.MaxAttempts,
		AttemptedAt:             s.now().UTC(),
	}

	// Grading may have used up the request deadline; the write must still land.
	storeCtx := context.WithoutCancel(ctx)
	if err = s.repo.Submission().Create(storeCtx, submission); err != nil {
		return nil, storeError(err, actor, "submission", submission.ID, "create")
	}

	s.publish(storeCtx, events.NewSubmissionCreatedEvent(submission))
	if outcome.NeedsReview() {
		reason := ""
		if outcome.Err != nil {
			reason = outcome.Err.Error()
		}
		s.publish(storeCtx, events.NewGradingReviewRequiredEvent(submission, quiz, reason))
	}

	info.UsedAttempts++
	info.RemainingAttempts = max(info.MaxAttempts-info.UsedAttempts, 0)

	visible := ledger.StudentProjection(quiz, *submission)
	return &SubmitAttemptResponse{
		Submission:         &visible,
		Attempts:           info,
		GradingUnavailable: outcome.NeedsReview(),
	}, nil
}

// admit loads the quiz and checks that actor may begin another attempt.
func (s *attemptService) admit(ctx context.Context, actor Actor, quizID string) (*models.Quiz, ledger.Summary, ledger.AttemptInfo, error) {
	quiz, err := loadQuiz(ctx, s.repo, quizID)
	if err != nil {
		return nil, nil, ledger.AttemptInfo{}, err
	}
	enrolled, err := isEnrolled(ctx, s.repo, quiz.ClassID, actor.UserID)
	if err != nil {
		return nil, nil, ledger.AttemptInfo{}, err
	}
	if !enrolled {
		return nil, nil, ledger.AttemptInfo{}, NewPermissionError(actor.UserID, quizID, "quiz", "attempt", "not enrolled in the quiz's class", ErrNotEnrolled)
	}
	if quiz.IsLocked {
		return nil, nil, ledger.AttemptInfo{}, ErrQuizLocked
	}

	summary, err := s.summary(ctx, actor.UserID)
	if err != nil {
		return nil, nil, ledger.AttemptInfo{}, err
	}
	info := ledger.AttemptInfoFor(quiz, summary)
	if !ledger.Startable(quiz, info) {
		return nil, nil, ledger.AttemptInfo{}, ErrAttemptLimitExceeded
	}
	return quiz, summary, info, nil
}

// History returns the student's attempts grouped per quiz. Quizzes without
// allowReview only expose attempt metadata; feedback follows each question's
// showFeedback.
func (s *attemptService) History(ctx context.Context, actor Actor) (map[string][]models.Submission, error) {
	submissions, err := s.repo.Submission().ListByStudent(ctx, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	quizzes, err := studentQuizzes(ctx, s.repo, actor.UserID)
	if err != nil {
		return nil, err
	}
	index := make(map[string]*models.Quiz, len(quizzes))
	for _, quiz := range quizzes {
		index[quiz.ID] = quiz
	}
	return ledger.StudentHistory(ledger.GroupByQuiz(submissions), index), nil
}

// ReturnAttempt deletes a submission so the student gets the attempt back.
// Allowed for the student who made it and for the quiz's teacher.
func (s *attemptService) ReturnAttempt(ctx context.Context, actor Actor, submissionID string) (err error) {
	op := s.log.WithOperation(ctx, "attempt.return", actor.UserID)
	defer func() { op.LogResult(submissionID, "submission", err) }()

	submission, err := s.repo.Submission().GetByID(ctx, submissionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrSubmissionNotFound
		}
		return fmt.Errorf("failed to get submission: %w", err)
	}

	if submission.StudentID != actor.UserID {
		if err = s.requireQuizOwner(ctx, actor, submission); err != nil {
			return err
		}
	}

	if err = s.repo.Submission().Delete(ctx, submissionID); err != nil {
		return storeError(err, actor, "submission", submissionID, "delete")
	}
	s.publish(ctx, events.NewAttemptReturnedEvent(submission, actor.UserID))
	return nil
}

func (s *attemptService) requireQuizOwner(ctx context.Context, actor Actor, submission *models.Submission) error {
	denied := NewPermissionError(actor.UserID, submission.ID, "submission", "return", "neither the student nor the quiz owner", ErrSubmissionAccessDenied)
	if !actor.IsTeacher() {
		return denied
	}
	quiz, err := loadQuiz(ctx, s.repo, submission.QuizID)
	if err != nil {
		return err
	}
	if quiz.TeacherID != actor.UserID {
		return denied
	}
	return nil
}

func (s *attemptService) summary(ctx context.Context, studentID string) (ledger.Summary, error) {
	submissions, err := s.repo.Submission().ListByStudent(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	return ledger.SummarizeByQuiz(submissions, studentID), nil
}

func (s *attemptService) publish(ctx context.Context, event *events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishEvent(ctx, event); err != nil {
		s.logger.Error("Failed to publish event", "event_type", event.Type, "event_id", event.ID, "error", err)
	}
}
