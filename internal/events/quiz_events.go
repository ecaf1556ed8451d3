package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/SAP-F-2025/quiz-service/internal/models"
)

// EventType identifies a domain event on the submission topic
type EventType string

const (
	EventSubmissionCreated     EventType = "submission.created"
	EventGradingReviewRequired EventType = "grading.review_required"
	EventAttemptReturned       EventType = "attempt.returned"
)

const (
	eventSource  = "quiz-service"
	eventVersion = "1.0"
)

// Event is the envelope for every published event
type Event struct {
	ID        string         `json:"id"`
	Type      EventType      `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	Source    string         `json:"source"`
	Version   string         `json:"version"`
	Data      interface{}    `json:"data"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// NewEvent wraps data in an envelope with a fresh id
func NewEvent(eventType EventType, data interface{}) *Event {
	return &Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Source:    eventSource,
		Version:   eventVersion,
		Data:      data,
	}
}

type SubmissionCreatedEvent struct {
	SubmissionID  string             `json:"submission_id"`
	QuizID        string             `json:"quiz_id"`
	ClassID       string             `json:"class_id"`
	StudentID     string             `json:"student_id"`
	AttemptNumber int                `json:"attempt_number"`
	MaxAttempts   int                `json:"max_attempts"`
	GradeStatus   models.GradeStatus `json:"grade_status"`
	AttemptedAt   time.Time          `json:"attempted_at"`
}

type GradingReviewRequiredEvent struct {
	SubmissionID string `json:"submission_id"`
	QuizID       string `json:"quiz_id"`
	QuizTitle    string `json:"quiz_title"`
	TeacherID    string `json:"teacher_id"`
	StudentID    string `json:"student_id"`
	Reason       string `json:"reason"`
}

type AttemptReturnedEvent struct {
	SubmissionID  string    `json:"submission_id"`
	QuizID        string    `json:"quiz_id"`
	StudentID     string    `json:"student_id"`
	AttemptNumber int       `json:"attempt_number"`
	ReturnedBy    string    `json:"returned_by"`
	ReturnedAt    time.Time `json:"returned_at"`
}

func NewSubmissionCreatedEvent(s *models.Submission) *Event {
	return NewEvent(EventSubmissionCreated, SubmissionCreatedEvent{
		SubmissionID:  s.ID,
		QuizID:        s.QuizID,
		ClassID:       s.ClassID,
		StudentID:     s.StudentID,
		AttemptNumber: s.AttemptNumber,
		MaxAttempts:   s.MaxAttemptsAtSubmission,
		GradeStatus:   s.GradeStatus,
		AttemptedAt:   s.AttemptedAt,
	})
}

func NewGradingReviewRequiredEvent(s *models.Submission, quiz *models.Quiz, reason string) *Event {
	return NewEvent(EventGradingReviewRequired, GradingReviewRequiredEvent{
		SubmissionID: s.ID,
		QuizID:       quiz.ID,
		QuizTitle:    quiz.Title,
		TeacherID:    quiz.TeacherID,
		StudentID:    s.StudentID,
		Reason:       reason,
	})
}

func NewAttemptReturnedEvent(s *models.Submission, returnedBy string) *Event {
	return NewEvent(EventAttemptReturned, AttemptReturnedEvent{
		SubmissionID:  s.ID,
		QuizID:        s.QuizID,
		StudentID:     s.StudentID,
		AttemptNumber: s.AttemptNumber,
		ReturnedBy:    returnedBy,
		ReturnedAt:    time.Now().UTC(),
	})
}
