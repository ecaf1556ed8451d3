// Package grading talks to the AI grading boundary: the client used by the
// attempt flow, the degrade-to-review fallback, and the server-side proxy
// that forwards requests to a hosted language model.
package grading

import (
	"context"
	"errors"
	"fmt"

	"github.com/SAP-F-2025/quiz-service/internal/models"
)

// QuestionPayload is the question shape sent across the grading boundary.
type QuestionPayload struct {
	ID   string `json:"id" validate:"required"`
	Text string `json:"text"`
}

// GradeRequest is the JSON body accepted by the grading endpoint.
type GradeRequest struct {
	QuizTitle      string            `json:"quizTitle"`
	Questions      []QuestionPayload `json:"questions" validate:"required,min=1,dive"`
	StudentAnswers map[string]string `json:"studentAnswers"`
}

// GradeResponse is the success body of the grading endpoint.
type GradeResponse struct {
	Evaluations models.Evaluations `json:"evaluations"`
}

// ErrorBody is returned with every non-2xx status.
type ErrorBody struct {
	Error string `json:"error"`
}

// Service grades a set of answers. Implementations must honour ctx
// cancellation so callers can bound the wait.
type Service interface {
	Grade(ctx context.Context, req GradeRequest) (models.Evaluations, error)
}

// NewGradeRequest builds the boundary request for a quiz and a set of
// answers. Answers for questions that are not in the quiz are dropped.
func NewGradeRequest(quiz *models.Quiz, answers models.Answers) GradeRequest {
	req := GradeRequest{
		QuizTitle:      quiz.Title,
		Questions:      make([]QuestionPayload, 0, len(quiz.Questions)),
		StudentAnswers: make(map[string]string, len(quiz.Questions)),
	}
	for _, q := range quiz.Questions {
		req.Questions = append(req.Questions, QuestionPayload{ID: q.ID, Text: q.Text})
		req.StudentAnswers[q.ID] = answers[q.ID]
	}
	return req
}

var (
	ErrNotConfigured     = errors.New("grading service is not configured")
	ErrMalformedResponse = errors.New("malformed grading response")
	ErrNoCandidates      = errors.New("no grading model candidates configured")
)

// UpstreamError carries a non-2xx status from an HTTP boundary.
type UpstreamError struct {
	StatusCode int
	Message    string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("grading upstream returned %d: %s", e.StatusCode, e.Message)
}
