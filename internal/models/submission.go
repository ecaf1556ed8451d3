package models

import "time"

type GradeStatus string

const (
	GradeStatusGraded             GradeStatus = "graded"
	GradeStatusNeedsTeacherReview GradeStatus = "needs_teacher_review"
)

// Evaluation is the grading outcome for one question.
type Evaluation struct {
	IsCorrect bool   `json:"isCorrect"`
	Feedback  string `json:"feedback"`
}

// Answers maps question id to the student's answer text.
type Answers map[string]string

// Clone returns an independent copy. A nil map clones to an empty map.
func (a Answers) Clone() Answers {
	out := make(Answers, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// Evaluations maps question id to its evaluation.
type Evaluations map[string]Evaluation

func (e Evaluations) Clone() Evaluations {
	if e == nil {
		return nil
	}
	out := make(Evaluations, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}

// Submission is one graded attempt. Rows are append-only: they are created
// once at grading time and only ever deleted afterwards.
type Submission struct {
	ID        string `json:"id" gorm:"primaryKey;size:64"`
	QuizID    string `json:"quizId" gorm:"size:64;index"`
	ClassID   string `json:"classId" gorm:"size:320;index"`
	StudentID string `json:"studentId" gorm:"not null;size:255;index"`

	Answers     Answers     `json:"answers" gorm:"type:jsonb;serializer:json"`
	Evaluations Evaluations `json:"evaluations,omitempty" gorm:"type:jsonb;serializer:json"`
	GradeStatus GradeStatus `json:"gradeStatus" gorm:"size:32;index"`

	// AttemptNumber is assigned by the submitting client as prior count + 1
	// and is not enforced by the store.
	AttemptNumber           int       `json:"attemptNumber" gorm:"not null"`
	MaxAttemptsAtSubmission int       `json:"maxAttemptsAtSubmission"`
	AttemptedAt             time.Time `json:"attemptedAt" gorm:"index"`
}

func (Submission) TableName() string {
	return CollectionSubmissions
}
