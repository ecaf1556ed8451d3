package ledger

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupByQuiz_AttemptNumberBeatsTimestamp(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	input := []models.Submission{
		{ID: "s1", QuizID: "q1", AttemptNumber: 1, AttemptedAt: t0},
		{ID: "s2", QuizID: "q1", AttemptNumber: 2, AttemptedAt: t0.Add(-time.Hour)},
	}

	groups := GroupByQuiz(input)

	require.Len(t, groups["q1"], 2)
	assert.Equal(t, "s2", groups["q1"][0].ID)
	assert.Equal(t, "s1", groups["q1"][1].ID)
}

func TestGroupByQuiz_TimestampBreaksAttemptTies(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	input := []models.Submission{
		{ID: "old", QuizID: "q1", AttemptNumber: 2, AttemptedAt: t0},
		{ID: "new", QuizID: "q1", AttemptNumber: 2, AttemptedAt: t0.Add(time.Minute)},
		{ID: "other", QuizID: "q2", AttemptNumber: 1, AttemptedAt: t0},
	}

	groups := GroupByQuiz(input)

	assert.Len(t, groups, 2)
	assert.Equal(t, []string{"new", "old"}, ids(groups["q1"]))
}

func TestGroupByClass(t *testing.T) {
	t0 := time.Now()
	input := []models.Submission{
		{ID: "a", ClassID: "c1", AttemptNumber: 1, AttemptedAt: t0},
		{ID: "b", ClassID: "c2", AttemptNumber: 1, AttemptedAt: t0},
		{ID: "c", ClassID: "c1", AttemptNumber: 3, AttemptedAt: t0.Add(-time.Hour)},
	}

	groups := GroupByClass(input)
	assert.Equal(t, []string{"c", "a"}, ids(groups["c1"]))
	assert.Equal(t, []string{"b"}, ids(groups["c2"]))
}

func TestGroupByStudent(t *testing.T) {
	t0 := time.Now()
	input := []models.Submission{
		{ID: "a", QuizID: "q1", StudentID: "ana", AttemptNumber: 1, AttemptedAt: t0},
		{ID: "b", QuizID: "q1", StudentID: "ben", AttemptNumber: 1, AttemptedAt: t0},
		{ID: "c", QuizID: "q1", StudentID: "ana", AttemptNumber: 2, AttemptedAt: t0.Add(-time.Hour)},
	}

	groups := GroupByStudent(input)
	assert.Equal(t, []string{"c", "a"}, ids(groups["ana"]))
	assert.Equal(t, []string{"b"}, ids(groups["ben"]))
}

func TestTeacherFeed_SortsByTimestampOnly(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	quizA := []models.Submission{
		{ID: "a1", QuizID: "qa", AttemptNumber: 5, AttemptedAt: t0},
	}
	quizB := []models.Submission{
		{ID: "b1", QuizID: "qb", AttemptNumber: 1, AttemptedAt: t0.Add(time.Minute)},
		{ID: "b2", QuizID: "qb", AttemptNumber: 2, AttemptedAt: t0.Add(-time.Minute)},
	}

	feed := TeacherFeed(quizA, quizB)

	assert.Equal(t, []string{"b1", "a1", "b2"}, ids(feed))
}

func TestNewAttemptSession_PrefillCopiesAnswers(t *testing.T) {
	quiz := &models.Quiz{
		ID:                     "q1",
		PrefillFromLastAttempt: true,
		Questions:              []models.Question{{ID: "a"}, {ID: "b"}},
	}
	summary := Summary{"q1": {Count: 1, LatestAttemptNumber: 1, LatestAnswers: models.Answers{"a": "42"}}}

	session := NewAttemptSession(quiz, summary, nil, time.Now())
	session.Answers["a"] = "edited"
	session.Answers["b"] = "new"

	assert.Equal(t, "42", summary["q1"].LatestAnswers["a"])
	_, leaked := summary["q1"].LatestAnswers["b"]
	assert.False(t, leaked)
}

func TestNewAttemptSession_NoPrefill(t *testing.T) {
	quiz := &models.Quiz{ID: "q1", Questions: []models.Question{{ID: "a"}}}
	summary := Summary{"q1": {Count: 1, LatestAnswers: models.Answers{"a": "42"}}}

	session := NewAttemptSession(quiz, summary, nil, time.Now())
	assert.NotNil(t, session.Answers)
	assert.Empty(t, session.Answers)
}

func TestNewAttemptSession_ShuffleIsFixedAndLeavesQuizIntact(t *testing.T) {
	questions := make([]models.Question, 0, 12)
	for _, id := range []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k", "l"} {
		questions = append(questions, models.Question{ID: id})
	}
	quiz := &models.Quiz{ID: "q1", AllowShuffle: true, Questions: questions}

	session := NewAttemptSession(quiz, nil, rand.New(rand.NewPCG(1, 2)), time.Now())

	assert.True(t, session.Shuffled)
	assert.ElementsMatch(t, quiz.QuestionIDs(), questionIDs(session.Questions))
	assert.Equal(t, "a", quiz.Questions[0].ID, "the quiz's own order must not change")

	order := questionIDs(session.Questions)
	assert.Equal(t, order, questionIDs(session.Questions), "order is computed once per session")
}

func TestNewAttemptSession_NoShuffleKeepsOrder(t *testing.T) {
	quiz := &models.Quiz{ID: "q1", Questions: []models.Question{{ID: "a"}, {ID: "b"}, {ID: "c"}}}
	session := NewAttemptSession(quiz, nil, rand.New(rand.NewPCG(1, 2)), time.Now())
	assert.Equal(t, []string{"a", "b", "c"}, questionIDs(session.Questions))
	assert.Equal(t, 1, session.AttemptNumber)
}

func TestStudentView_SnapshotReplacesState(t *testing.T) {
	view := NewStudentView("student-1")
	view.Apply([]models.Submission{
		{QuizID: "q1", StudentID: "student-1", AttemptNumber: 1},
		{QuizID: "q1", StudentID: "student-1", AttemptNumber: 2},
	})
	assert.Equal(t, 2, view.Summary().Count("q1"))

	// A later snapshot without one record (attempt given back) must shrink the count.
	view.Apply([]models.Submission{{QuizID: "q1", StudentID: "student-1", AttemptNumber: 1}})
	assert.Equal(t, 1, view.Summary().Count("q1"))
	assert.Len(t, view.History()["q1"], 1)

	overview := view.Overview([]models.Quiz{{ID: "q1", MaxAttempts: models.NewAttemptLimit(2)}})
	require.Len(t, overview, 1)
	assert.True(t, overview[0].Startable)
	assert.Equal(t, 1, overview[0].Attempts.RemainingAttempts)
}

func ids(subs []models.Submission) []string {
	out := make([]string, 0, len(subs))
	for _, s := range subs {
		out = append(out, s.ID)
	}
	return out
}

func questionIDs(questions []models.Question) []string {
	out := make([]string, 0, len(questions))
	for _, q := range questions {
		out = append(out, q.ID)
	}
	return out
}
