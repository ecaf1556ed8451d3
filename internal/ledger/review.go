package ledger

import (
	"github.com/SAP-F-2025/quiz-service/internal/models"
)

// VisibleEvaluations returns a copy of evaluations with the feedback cleared
// for every question that does not have showFeedback set. Correctness is
// always kept. Evaluations for ids that are no longer questions of the quiz
// lose their feedback too.
func VisibleEvaluations(quiz *models.Quiz, evaluations models.Evaluations) models.Evaluations {
	if evaluations == nil {
		return nil
	}
	shown := make(map[string]bool)
	if quiz != nil {
		for _, q := range quiz.Questions {
			shown[q.ID] = q.ShowFeedback
		}
	}
	out := make(models.Evaluations, len(evaluations))
	for id, evaluation := range evaluations {
		if !shown[id] {
			evaluation.Feedback = ""
		}
		out[id] = evaluation
	}
	return out
}

// StudentProjection is what the student who made a submission may see of it
// right after submitting: answers in full, feedback only where the question
// allows it.
func StudentProjection(quiz *models.Quiz, submission models.Submission) models.Submission {
	submission.Answers = submission.Answers.Clone()
	submission.Evaluations = VisibleEvaluations(quiz, submission.Evaluations)
	return submission
}

// StudentHistory projects a student's grouped history for display. Quizzes
// with allowReview keep their attempts with feedback filtered as in
// StudentProjection. Other quizzes, and quizzes missing from quizzes, keep
// only the attempt metadata: answers and evaluations are removed.
func StudentHistory(history map[string][]models.Submission, quizzes map[string]*models.Quiz) map[string][]models.Submission {
	out := make(map[string][]models.Submission, len(history))
	for quizID, attempts := range history {
		quiz := quizzes[quizID]
		projected := make([]models.Submission, 0, len(attempts))
		for _, submission := range attempts {
			if quiz != nil && quiz.AllowReview {
				projected = append(projected, StudentProjection(quiz, submission))
			} else {
				projected = append(projected, redactAttempt(submission))
			}
		}
		out[quizID] = projected
	}
	return out
}

func redactAttempt(submission models.Submission) models.Submission {
	submission.Answers = models.Answers{}
	submission.Evaluations = nil
	return submission
}

// studentSummary applies the same rules to the latest-attempt snapshot shown
// in the overview.
func studentSummary(quiz *models.Quiz, latest QuizSummary) QuizSummary {
	if !quiz.AllowReview {
		latest.LatestAnswers = nil
		latest.LatestEvaluations = nil
		return latest
	}
	latest.LatestAnswers = latest.LatestAnswers.Clone()
	latest.LatestEvaluations = VisibleEvaluations(quiz, latest.LatestEvaluations)
	return latest
}

// QuizIndex maps quiz id to quiz.
func QuizIndex(quizzes []models.Quiz) map[string]*models.Quiz {
	index := make(map[string]*models.Quiz, len(quizzes))
	for i := range quizzes {
		index[quizzes[i].ID] = &quizzes[i]
	}
	return index
}
