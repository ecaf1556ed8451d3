package ledger

import (
	"sync"

	"github.com/SAP-F-2025/quiz-service/internal/models"
)

// StudentView keeps the derived views of one student's submissions up to date
// as snapshots arrive. Every snapshot replaces the previous state entirely;
// nothing is merged or diffed.
type StudentView struct {
	mu        sync.RWMutex
	studentID string
	summary   Summary
	history   map[string][]models.Submission
}

func NewStudentView(studentID string) *StudentView {
	return &StudentView{
		studentID: studentID,
		summary:   Summary{},
		history:   map[string][]models.Submission{},
	}
}

// Apply replaces the view with the given full snapshot.
func (v *StudentView) Apply(snapshot []models.Submission) {
	summary := SummarizeByQuiz(snapshot, v.studentID)
	history := GroupByQuiz(snapshot)

	v.mu.Lock()
	v.summary = summary
	v.history = history
	v.mu.Unlock()
}

func (v *StudentView) Summary() Summary {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.summary
}

func (v *StudentView) History() map[string][]models.Submission {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.history
}

// Overview returns the attempt allowance of each quiz against the current
// snapshot.
func (v *StudentView) Overview(quizzes []models.Quiz) []QuizStatus {
	summary := v.Summary()
	return BuildOverview(quizzes, summary)
}

// VisibleHistory is History projected with StudentHistory against the
// quizzes the student can currently see.
func (v *StudentView) VisibleHistory(quizzes []models.Quiz) map[string][]models.Submission {
	return StudentHistory(v.History(), QuizIndex(quizzes))
}

// QuizStatus is one row of a student's quiz overview.
type QuizStatus struct {
	QuizID    string       `json:"quizId"`
	Title     string       `json:"title"`
	ClassID   string       `json:"classId"`
	ClassName string       `json:"className"`
	IsLocked  bool         `json:"isLocked"`
	Attempts  AttemptInfo  `json:"attempts"`
	Startable bool         `json:"startable"`
	Latest    *QuizSummary `json:"latest,omitempty"`
}

// BuildOverview is the student's quiz list. The latest-attempt snapshot of
// each row is filtered by the quiz's review and feedback settings.
func BuildOverview(quizzes []models.Quiz, summary Summary) []QuizStatus {
	out := make([]QuizStatus, 0, len(quizzes))
	for i := range quizzes {
		quiz := &quizzes[i]
		info := AttemptInfoFor(quiz, summary)
		status := QuizStatus{
			QuizID:    quiz.ID,
			Title:     quiz.Title,
			ClassID:   quiz.ClassID,
			ClassName: quiz.ClassName,
			IsLocked:  quiz.IsLocked,
			Attempts:  info,
			Startable: Startable(quiz, info),
		}
		if latest, ok := summary[quiz.ID]; ok {
			visible := studentSummary(quiz, latest)
			status.Latest = &visible
		}
		out = append(out, status)
	}
	return out
}
