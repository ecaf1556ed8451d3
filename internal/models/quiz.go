package models

import (
	"time"

	"gorm.io/datatypes"
)

// Question is a single prompt inside a quiz. Text holds Markdown, LaTeX and
// embedded computation cells as authored; it is never rendered server-side.
//
// Submissions index answers and evaluations by ID, so an ID must not change
// once any submission references it.
type Question struct {
	ID           string `json:"id" validate:"omitempty,max=64,question_id"`
	Text         string `json:"text" validate:"required"`
	ShowFeedback bool   `json:"showFeedback"`
}

type Quiz struct {
	ID          string `json:"id" gorm:"primaryKey;size:64"`
	Title       string `json:"title" gorm:"not null;size:200;index" validate:"required,min=1,max=200"`
	Description string `json:"description" gorm:"type:text" validate:"max=2000"`
	IsLocked    bool   `json:"isLocked" gorm:"default:false"`

	// Attempt settings
	MaxAttempts            AttemptLimit `json:"maxAttempts"`
	PrefillFromLastAttempt bool         `json:"prefillFromLastAttempt" gorm:"default:false"`
	AllowShuffle           bool         `json:"allowShuffle" gorm:"default:false"`
	AllowReview            bool         `json:"allowReview" gorm:"default:false"`

	// Ownership
	ClassID     string `json:"classId" gorm:"size:320;index"`
	ClassName   string `json:"className" gorm:"size:200"`
	TeacherID   string `json:"teacherId" gorm:"not null;size:255;index"`
	TeacherName string `json:"teacherName" gorm:"size:200"`

	Questions datatypes.JSONSlice[Question] `json:"questions" gorm:"type:jsonb"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Quiz) TableName() string {
	return CollectionQuizzes
}

// QuestionIDs returns the question ids in authoring order.
func (q *Quiz) QuestionIDs() []string {
	ids := make([]string, 0, len(q.Questions))
	for _, question := range q.Questions {
		ids = append(ids, question.ID)
	}
	return ids
}

// DuplicateQuestionID reports the first question id that appears more than
// once, or "" when all ids are unique.
func (q *Quiz) DuplicateQuestionID() string {
	seen := make(map[string]struct{}, len(q.Questions))
	for _, question := range q.Questions {
		if _, ok := seen[question.ID]; ok {
			return question.ID
		}
		seen[question.ID] = struct{}{}
	}
	return ""
}
