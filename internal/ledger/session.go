package ledger

import (
	"math/rand/v2"
	"time"

	"github.com/SAP-F-2025/quiz-service/internal/models"
)

// Shuffler is satisfied by *rand.Rand.
type Shuffler interface {
	Shuffle(n int, swap func(i, j int))
}

// AttemptSession is the state of one attempt from start to submission. The
// question order is fixed when the session is created and must be reused
// for the lifetime of the attempt.
type AttemptSession struct {
	QuizID        string            `json:"quizId"`
	AttemptNumber int               `json:"attemptNumber"`
	Questions     []models.Question `json:"questions"`
	Answers       models.Answers    `json:"answers"`
	Shuffled      bool              `json:"shuffled"`
	StartedAt     time.Time         `json:"startedAt"`
}

// NewAttemptSession seeds a fresh attempt. Answers are copied from the latest
// attempt only when the quiz enables prefill; the copy is independent of the
// summary. With allowShuffle the questions are permuted once here, and a new
// session gets a new permutation. A nil shuffler uses the global source.
func NewAttemptSession(quiz *models.Quiz, summary Summary, shuffler Shuffler, now time.Time) *AttemptSession {
	questions := make([]models.Question, len(quiz.Questions))
	copy(questions, quiz.Questions)

	if quiz.AllowShuffle && len(questions) > 1 {
		swap := func(i, j int) { questions[i], questions[j] = questions[j], questions[i] }
		if shuffler != nil {
			shuffler.Shuffle(len(questions), swap)
		} else {
			rand.Shuffle(len(questions), swap)
		}
	}

	answers := models.Answers{}
	if quiz.PrefillFromLastAttempt {
		if latest, ok := summary[quiz.ID]; ok {
			answers = latest.LatestAnswers.Clone()
		}
	}

	return &AttemptSession{
		QuizID:        quiz.ID,
		AttemptNumber: summary.NextAttemptNumber(quiz.ID),
		Questions:     questions,
		Answers:       answers,
		Shuffled:      quiz.AllowShuffle,
		StartedAt:     now,
	}
}
