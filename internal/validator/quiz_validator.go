package validator

import (
	"fmt"
	"math"
	"strings"

	"github.com/SAP-F-2025/quiz-service/internal/models"
)

// QuizContent is implemented by requests that create or replace quiz content
type QuizContent interface {
	QuizQuestions() []models.Question
	QuizMaxAttempts() *models.AttemptLimit
}

// QuizValidator checks the rules tags cannot express
type QuizValidator struct{}

func NewQuizValidator() *QuizValidator {
	return &QuizValidator{}
}

func (v *QuizValidator) Validate(content QuizContent) ValidationErrors {
	var errs ValidationErrors
	errs = append(errs, v.ValidateQuestions(content.QuizQuestions())...)
	if limit := content.QuizMaxAttempts(); limit != nil {
		if err := v.ValidateMaxAttempts(*limit); err != nil {
			errs = append(errs, *err)
		}
	}
	return errs
}

// ValidateQuestions rejects blank question text and repeated ids. Empty ids
// are allowed; they are assigned on save.
func (v *QuizValidator) ValidateQuestions(questions []models.Question) ValidationErrors {
	var errs ValidationErrors
	seen := make(map[string]int, len(questions))
	for i, q := range questions {
		if strings.TrimSpace(q.Text) == "" {
			errs = append(errs, *NewValidationErrorWithRule(
				fmt.Sprintf("questions[%d].text", i), "must not be blank", "not_blank", q.Text))
		}
		if q.ID == "" {
			continue
		}
		if first, ok := seen[q.ID]; ok {
			errs = append(errs, *NewValidationErrorWithRule(
				fmt.Sprintf("questions[%d].id", i),
				fmt.Sprintf("must be unique within the quiz (same as questions[%d])", first),
				"unique_question_id", q.ID))
			continue
		}
		seen[q.ID] = i
	}
	return errs
}

// ValidateMaxAttempts accepts null (meaning the default) or a whole number
// of at least 1. Stored documents are read tolerantly; this only guards
// writes.
func (v *QuizValidator) ValidateMaxAttempts(limit models.AttemptLimit) *ValidationError {
	if !limit.Valid {
		return nil
	}
	n := limit.Number
	if math.IsNaN(n) || math.IsInf(n, 0) || n < 1 || n != math.Trunc(n) || n > math.MaxInt32 {
		return NewValidationErrorWithRule("maxAttempts", "must be a whole number of at least 1", "max_attempts", n)
	}
	return nil
}
