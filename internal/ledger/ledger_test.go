package ledger

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sub(quizID string, attempt int, answers models.Answers) models.Submission {
	return models.Submission{
		QuizID:        quizID,
		StudentID:     "student-1",
		AttemptNumber: attempt,
		Answers:       answers,
	}
}

func TestSummarizeByQuiz_CountsPerQuiz(t *testing.T) {
	input := []models.Submission{
		sub("q1", 1, nil),
		sub("q2", 1, nil),
		sub("q1", 2, nil),
		sub("q1", 3, nil),
		sub("", 9, nil),
	}

	summary := SummarizeByQuiz(input, "student-1")

	require.Len(t, summary, 2)
	assert.Equal(t, 3, summary["q1"].Count)
	assert.Equal(t, 1, summary["q2"].Count)
	assert.Equal(t, 3, summary["q1"].LatestAttemptNumber)
	_, hasEmpty := summary[""]
	assert.False(t, hasEmpty, "submissions without quiz id must be skipped")
}

func TestSummarizeByQuiz_EmptyInput(t *testing.T) {
	assert.Empty(t, SummarizeByQuiz(nil, "student-1"))
	assert.Empty(t, SummarizeByQuiz([]models.Submission{}, ""))
}

func TestSummarizeByQuiz_TieGoesToLaterRecord(t *testing.T) {
	now := time.Now()
	first := sub("q1", 2, models.Answers{"a": "first"})
	first.AttemptedAt = now
	second := sub("q1", 2, models.Answers{"a": "second"})
	second.AttemptedAt = now.Add(-time.Hour)
	second.Evaluations = models.Evaluations{"a": {IsCorrect: true, Feedback: "ok"}}

	summary := SummarizeByQuiz([]models.Submission{first, second}, "student-1")
	assert.Equal(t, "second", summary["q1"].LatestAnswers["a"])
	assert.True(t, summary["q1"].LatestEvaluations["a"].IsCorrect)

	summary = SummarizeByQuiz([]models.Submission{second, first}, "student-1")
	assert.Equal(t, "first", summary["q1"].LatestAnswers["a"])
	assert.Nil(t, summary["q1"].LatestEvaluations, "latest evaluations must come from the same record")
}

func TestSummarizeByQuiz_LowerAttemptDoesNotReplaceLatest(t *testing.T) {
	input := []models.Submission{
		sub("q1", 3, models.Answers{"a": "three"}),
		sub("q1", 1, models.Answers{"a": "one"}),
	}
	summary := SummarizeByQuiz(input, "student-1")
	assert.Equal(t, 3, summary["q1"].LatestAttemptNumber)
	assert.Equal(t, "three", summary["q1"].LatestAnswers["a"])
}

func TestSummarizeByQuiz_Idempotent(t *testing.T) {
	input := []models.Submission{
		sub("q1", 1, models.Answers{"a": "x"}),
		sub("q1", 2, models.Answers{"a": "y"}),
		sub("q2", 1, models.Answers{"b": "z"}),
	}
	assert.Equal(t, SummarizeByQuiz(input, "student-1"), SummarizeByQuiz(input, "student-1"))
}

func TestSummarizeByQuiz_DoesNotAliasInput(t *testing.T) {
	input := []models.Submission{sub("q1", 1, models.Answers{"a": "x"})}
	summary := SummarizeByQuiz(input, "student-1")
	summary["q1"].LatestAnswers["a"] = "changed"
	assert.Equal(t, "x", input[0].Answers["a"])
}

func TestEffectiveMaxAttempts(t *testing.T) {
	cases := []struct {
		name  string
		input any
		want  int
	}{
		{"zero", 0, 1},
		{"negative", -3, 1},
		{"garbage string", "abc", 1},
		{"nil", nil, 1},
		{"fraction floors", 3.7, 3},
		{"numeric string", "4", 4},
		{"nan", math.NaN(), 1},
		{"infinity", math.Inf(1), 1},
		{"below one", 0.5, 1},
		{"plain", 5, 5},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, EffectiveMaxAttempts(tc.input))
		})
	}
}

func TestAttemptInfoFor_MalformedStoredValues(t *testing.T) {
	for _, raw := range []string{`0`, `-3`, `"abc"`, `null`, `{}`, `[1]`, `true`} {
		var quiz models.Quiz
		require.NoError(t, json.Unmarshal([]byte(`{"id":"q1","maxAttempts":`+raw+`}`), &quiz), raw)
		info := AttemptInfoFor(&quiz, nil)
		assert.Equal(t, 1, info.MaxAttempts, raw)
	}

	var missing models.Quiz
	require.NoError(t, json.Unmarshal([]byte(`{"id":"q1"}`), &missing))
	assert.Equal(t, 1, AttemptInfoFor(&missing, nil).MaxAttempts)

	var fractional models.Quiz
	require.NoError(t, json.Unmarshal([]byte(`{"id":"q1","maxAttempts":3.7}`), &fractional))
	assert.Equal(t, 3, AttemptInfoFor(&fractional, nil).MaxAttempts)
}

func TestAttemptInfoFor_NeverNegative(t *testing.T) {
	quiz := &models.Quiz{ID: "q1", MaxAttempts: models.NewAttemptLimit(2)}
	summary := Summary{"q1": {Count: 5}}

	info := AttemptInfoFor(quiz, summary)
	assert.Equal(t, AttemptInfo{MaxAttempts: 2, UsedAttempts: 5, RemainingAttempts: 0}, info)
	assert.False(t, Startable(quiz, info))
}

func TestAttemptInfoFor_NilInputs(t *testing.T) {
	assert.NotPanics(t, func() {
		info := AttemptInfoFor(nil, nil)
		assert.Equal(t, 1, info.MaxAttempts)
		assert.False(t, Startable(nil, info))
	})
}

func TestStartable_LockedQuiz(t *testing.T) {
	quiz := &models.Quiz{ID: "q1", MaxAttempts: models.NewAttemptLimit(3), IsLocked: true}
	info := AttemptInfoFor(quiz, nil)
	assert.Equal(t, 3, info.RemainingAttempts)
	assert.False(t, Startable(quiz, info))
}

func TestRetakeScenario(t *testing.T) {
	quiz := &models.Quiz{ID: "q1", MaxAttempts: models.NewAttemptLimit(2)}
	summary := SummarizeByQuiz([]models.Submission{sub("q1", 1, models.Answers{"a": "x"})}, "student-1")

	info := AttemptInfoFor(quiz, summary)
	assert.Equal(t, AttemptInfo{MaxAttempts: 2, UsedAttempts: 1, RemainingAttempts: 1}, info)
	assert.True(t, Startable(quiz, info))

	session := NewAttemptSession(quiz, summary, nil, time.Now())
	assert.Equal(t, 2, session.AttemptNumber)
	assert.Equal(t, 2, summary.NextAttemptNumber("q1"))
}
