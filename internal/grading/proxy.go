package grading

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SAP-F-2025/quiz-service/internal/models"
)

// DefaultModels is the candidate order used when none is configured.
var DefaultModels = []string{"gemini-2.5-flash", "gemini-2.0-flash", "gemini-1.5-flash"}

// Proxy grades requests against a hosted model. It backs the /api/grade
// endpoint and can also be used in-process as a Service.
type Proxy struct {
	llm        LLM
	configured bool
	models     []string
	logger     *slog.Logger
}

// NewProxy builds a proxy. configured is false when no API key is set; every
// Grade call then fails with ErrNotConfigured.
func NewProxy(llm LLM, configured bool, candidates []string, logger *slog.Logger) *Proxy {
	cleaned := make([]string, 0, len(candidates))
	for _, m := range candidates {
		if m = strings.TrimSpace(m); m != "" {
			cleaned = append(cleaned, m)
		}
	}
	return &Proxy{
		llm:        llm,
		configured: configured && llm != nil,
		models:     cleaned,
		logger:     logger,
	}
}

func (p *Proxy) Configured() bool {
	return p.configured
}

// Grade truncates the request, asks each model candidate in order and parses
// the first answer. Only a not-found error moves on to the next candidate.
func (p *Proxy) Grade(ctx context.Context, req GradeRequest) (models.Evaluations, error) {
	if !p.configured {
		return nil, ErrNotConfigured
	}
	if len(p.models) == 0 {
		return nil, ErrNoCandidates
	}

	req = Truncate(req)
	prompt := BuildPrompt(req)
	ids := make([]string, 0, len(req.Questions))
	for _, q := range req.Questions {
		ids = append(ids, q.ID)
	}

	var lastErr error
	for _, model := range p.models {
		text, err := p.llm.Generate(ctx, model, prompt, evaluationSchema)
		if err != nil {
			if IsModelNotFound(err) {
				p.logger.Warn("Grading model not available, trying next candidate",
					"model", model,
					"error", err)
				lastErr = err
				continue
			}
			return nil, fmt.Errorf("grading with model %s failed: %w", model, err)
		}

		evaluations, err := ParseEvaluations(text, ids)
		if err != nil {
			return nil, err
		}
		p.logger.Debug("Graded submission", "model", model, "questions", len(ids))
		return evaluations, nil
	}

	return nil, fmt.Errorf("all grading models failed: %w", lastErr)
}
