package grading

import "unicode/utf8"

// Limits applied to a request before it reaches the model.
const (
	MaxTitleLength = 200
	MaxFieldLength = 1200
	MaxQuestions   = 20
	Ellipsis       = "…"
)

// TruncateText cuts s to at most limit characters and appends Ellipsis when
// anything was removed.
func TruncateText(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit]) + Ellipsis
}

// Truncate bounds the prompt size of a request: the title, every question
// text and every answer are shortened, and only the first MaxQuestions
// questions are kept together with their answers. The input is not modified.
func Truncate(req GradeRequest) GradeRequest {
	questions := req.Questions
	if len(questions) > MaxQuestions {
		questions = questions[:MaxQuestions]
	}

	out := GradeRequest{
		QuizTitle:      TruncateText(req.QuizTitle, MaxTitleLength),
		Questions:      make([]QuestionPayload, 0, len(questions)),
		StudentAnswers: make(map[string]string, len(questions)),
	}
	for _, q := range questions {
		out.Questions = append(out.Questions, QuestionPayload{
			ID:   q.ID,
			Text: TruncateText(q.Text, MaxFieldLength),
		})
		out.StudentAnswers[q.ID] = TruncateText(req.StudentAnswers[q.ID], MaxFieldLength)
	}
	return out
}
