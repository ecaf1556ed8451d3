package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/quiz-service/internal/models"
)

func reviewQuiz(allowReview bool) *models.Quiz {
	return &models.Quiz{
		ID:          "q1",
		AllowReview: allowReview,
		Questions: []models.Question{
			{ID: "a", ShowFeedback: true},
			{ID: "b", ShowFeedback: false},
		},
	}
}

func gradedSubmission(attempt int) models.Submission {
	return models.Submission{
		ID:            "s" + string(rune('0'+attempt)),
		QuizID:        "q1",
		StudentID:     "st",
		AttemptNumber: attempt,
		Answers:       models.Answers{"a": "1", "b": "2"},
		Evaluations: models.Evaluations{
			"a":       {IsCorrect: true, Feedback: "Right."},
			"b":       {IsCorrect: false, Feedback: "Check the sign."},
			"removed": {IsCorrect: true, Feedback: "Old question."},
		},
	}
}

func TestStudentProjection_ClearsHiddenFeedback(t *testing.T) {
	original := gradedSubmission(1)

	visible := StudentProjection(reviewQuiz(true), original)

	assert.Equal(t, "Right.", visible.Evaluations["a"].Feedback)
	assert.Empty(t, visible.Evaluations["b"].Feedback)
	assert.False(t, visible.Evaluations["b"].IsCorrect)
	assert.Empty(t, visible.Evaluations["removed"].Feedback)
	assert.Equal(t, "Check the sign.", original.Evaluations["b"].Feedback, "the stored record must not change")
}

func TestVisibleEvaluations_Nil(t *testing.T) {
	assert.Nil(t, VisibleEvaluations(reviewQuiz(true), nil))
}

func TestStudentHistory_AllowReview(t *testing.T) {
	history := GroupByQuiz([]models.Submission{gradedSubmission(1), gradedSubmission(2)})

	reviewable := StudentHistory(history, map[string]*models.Quiz{"q1": reviewQuiz(true)})
	require.Len(t, reviewable["q1"], 2)
	assert.Equal(t, "1", reviewable["q1"][0].Answers["a"])
	assert.Equal(t, "Right.", reviewable["q1"][0].Evaluations["a"].Feedback)
	assert.Empty(t, reviewable["q1"][0].Evaluations["b"].Feedback)

	hidden := StudentHistory(history, map[string]*models.Quiz{"q1": reviewQuiz(false)})
	require.Len(t, hidden["q1"], 2)
	assert.Equal(t, 2, hidden["q1"][0].AttemptNumber)
	assert.Empty(t, hidden["q1"][0].Answers)
	assert.Nil(t, hidden["q1"][0].Evaluations)

	unknown := StudentHistory(history, nil)
	assert.Nil(t, unknown["q1"][1].Evaluations)

	assert.Equal(t, "Right.", history["q1"][0].Evaluations["a"].Feedback)
}

func TestBuildOverview_LatestFollowsReviewSettings(t *testing.T) {
	summary := SummarizeByQuiz([]models.Submission{gradedSubmission(1)}, "st")

	hidden := BuildOverview([]models.Quiz{*reviewQuiz(false)}, summary)
	require.NotNil(t, hidden[0].Latest)
	assert.Equal(t, 1, hidden[0].Latest.LatestAttemptNumber)
	assert.Nil(t, hidden[0].Latest.LatestAnswers)
	assert.Nil(t, hidden[0].Latest.LatestEvaluations)

	shown := BuildOverview([]models.Quiz{*reviewQuiz(true)}, summary)
	require.NotNil(t, shown[0].Latest)
	assert.Equal(t, "Right.", shown[0].Latest.LatestEvaluations["a"].Feedback)
	assert.Empty(t, shown[0].Latest.LatestEvaluations["b"].Feedback)
	assert.Equal(t, "Check the sign.", summary["q1"].LatestEvaluations["b"].Feedback)
}

func TestStudentView_VisibleHistory(t *testing.T) {
	view := NewStudentView("st")
	view.Apply([]models.Submission{gradedSubmission(1)})

	visible := view.VisibleHistory([]models.Quiz{*reviewQuiz(false)})
	require.Len(t, visible["q1"], 1)
	assert.Nil(t, visible["q1"][0].Evaluations)
	assert.NotNil(t, view.History()["q1"][0].Evaluations)
}
