// Package ledger derives attempt accounting views from raw submission
// records. Everything here is a pure fold over an in-memory snapshot: no I/O,
// no hidden state, deterministic for a fixed input order.
package ledger

import (
	"github.com/SAP-F-2025/quiz-service/internal/models"
)

// QuizSummary is the per-quiz result of SummarizeByQuiz. The Latest* fields
// always come from the same submission.
type QuizSummary struct {
	Count               int                `json:"count"`
	LatestAttemptNumber int                `json:"latestAttemptNumber"`
	LatestAnswers       models.Answers     `json:"latestAnswers"`
	LatestEvaluations   models.Evaluations `json:"latestEvaluations,omitempty"`
}

// Summary maps quiz id to its QuizSummary.
type Summary map[string]QuizSummary

// SummarizeByQuiz folds one student's submissions into per-quiz counts and
// the latest-attempt snapshot.
//
// Ties on attemptNumber go to the record seen later in iteration order.
// Change streams deliver records in no particular order, so "last observed
// wins" is the only rule that does not depend on delivery order being
// meaningful. Records with an empty quiz id are skipped. When studentID is
// non-empty, records of other students are skipped as well.
func SummarizeByQuiz(submissions []models.Submission, studentID string) Summary {
	summary := make(Summary)
	for i := range submissions {
		sub := &submissions[i]
		if sub.QuizID == "" {
			continue
		}
		if studentID != "" && sub.StudentID != "" && sub.StudentID != studentID {
			continue
		}

		entry, seen := summary[sub.QuizID]
		entry.Count++
		if !seen || sub.AttemptNumber >= entry.LatestAttemptNumber {
			entry.LatestAttemptNumber = sub.AttemptNumber
			entry.LatestAnswers = sub.Answers.Clone()
			entry.LatestEvaluations = sub.Evaluations.Clone()
		}
		summary[sub.QuizID] = entry
	}
	return summary
}

// Count returns the number of submissions recorded for a quiz.
func (s Summary) Count(quizID string) int {
	return s[quizID].Count
}

// NextAttemptNumber is the number the next submission for quizID receives:
// prior count plus one. It is not reserved anywhere, so two concurrent
// submissions can compute the same number.
func (s Summary) NextAttemptNumber(quizID string) int {
	return s.Count(quizID) + 1
}
