package grading

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/SAP-F-2025/quiz-service/internal/models"
)

// MissingEvaluationFeedback is used for questions the model skipped.
const MissingEvaluationFeedback = "No evaluation returned"

// evaluationSchema describes the structured output requested from the model.
var evaluationSchema = map[string]any{
	"type": "OBJECT",
	"properties": map[string]any{
		"evaluations": map[string]any{
			"type": "ARRAY",
			"items": map[string]any{
				"type": "OBJECT",
				"properties": map[string]any{
					"id": map[string]any{
						"type":        "STRING",
						"description": "The question id exactly as given",
					},
					"isCorrect": map[string]any{
						"type":        "BOOLEAN",
						"description": "Whether the student's answer is mathematically correct",
					},
					"feedback": map[string]any{
						"type":        "STRING",
						"description": "One or two sentences of feedback addressed to the student",
					},
				},
				"required": []any{"id", "isCorrect", "feedback"},
			},
		},
	},
	"required": []any{"evaluations"},
}

// BuildPrompt renders the grading instructions for an already truncated
// request.
func BuildPrompt(req GradeRequest) string {
	var b strings.Builder
	b.WriteString("You are a careful mathematics teacher grading a student's quiz.\n")
	b.WriteString("Questions are written in Markdown with LaTeX. Judge each answer on mathematical correctness; ")
	b.WriteString("accept equivalent forms (simplified fractions, rearranged expressions, different notation).\n")
	b.WriteString("Return one evaluation per question id. Keep feedback short, encouraging and specific.\n\n")
	fmt.Fprintf(&b, "Quiz: %s\n\n", req.QuizTitle)

	for i, q := range req.Questions {
		fmt.Fprintf(&b, "Question %d (id: %s)\n%s\n", i+1, q.ID, q.Text)
		answer := strings.TrimSpace(req.StudentAnswers[q.ID])
		if answer == "" {
			answer = "(no answer)"
		}
		fmt.Fprintf(&b, "Student answer:\n%s\n\n", answer)
	}
	return b.String()
}

type evaluationItem struct {
	ID        string `json:"id"`
	IsCorrect bool   `json:"isCorrect"`
	Feedback  string `json:"feedback"`
}

// ParseEvaluations reads the model output. Both the array form requested by
// the schema and a map keyed by question id are accepted, with or without a
// Markdown code fence. Every id in questionIDs is present in the result;
// unknown ids are dropped.
func ParseEvaluations(text string, questionIDs []string) (models.Evaluations, error) {
	raw := stripCodeFence(text)

	var envelope struct {
		Evaluations json.RawMessage `json:"evaluations"`
	}
	if err := json.Unmarshal([]byte(raw), &envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if len(envelope.Evaluations) == 0 {
		return nil, fmt.Errorf("%w: missing evaluations", ErrMalformedResponse)
	}

	parsed := make(models.Evaluations)
	var items []evaluationItem
	if err := json.Unmarshal(envelope.Evaluations, &items); err == nil {
		for _, item := range items {
			parsed[item.ID] = models.Evaluation{IsCorrect: item.IsCorrect, Feedback: item.Feedback}
		}
	} else if err := json.Unmarshal(envelope.Evaluations, &parsed); err != nil {
		return nil, fmt.Errorf("%w: unexpected evaluations shape", ErrMalformedResponse)
	}

	out := make(models.Evaluations, len(questionIDs))
	for _, id := range questionIDs {
		if eval, ok := parsed[id]; ok {
			out[id] = eval
			continue
		}
		out[id] = models.Evaluation{IsCorrect: false, Feedback: MissingEvaluationFeedback}
	}
	return out, nil
}

func stripCodeFence(text string) string {
	s := strings.TrimSpace(text)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
