package grading

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// LLM generates a completion for a prompt with a given model. The output is
// expected to be JSON matching schema.
type LLM interface {
	Generate(ctx context.Context, model, prompt string, schema map[string]any) (string, error)
}

// ModelNotFoundError is returned when the upstream does not know a model.
// It is the only error that moves the proxy on to the next candidate.
type ModelNotFoundError struct {
	Model   string
	Message string
}

func (e *ModelNotFoundError) Error() string {
	return fmt.Sprintf("model %q not found: %s", e.Model, e.Message)
}

func IsModelNotFound(err error) bool {
	var nf *ModelNotFoundError
	return errors.As(err, &nf)
}

const DefaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// GeminiClient calls the generateContent REST method of the Gemini API.
type GeminiClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewGeminiClient(baseURL, apiKey string, timeout time.Duration) *GeminiClient {
	if baseURL == "" {
		baseURL = DefaultGeminiBaseURL
	}
	return &GeminiClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents         []geminiContent `json:"contents"`
	GenerationConfig map[string]any  `json:"generationConfig,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

func (g *GeminiClient) Generate(ctx context.Context, model, prompt string, schema map[string]any) (string, error) {
	reqBody := geminiRequest{
		Contents: []geminiContent{{Role: "user", Parts: []geminiPart{{Text: prompt}}}},
		GenerationConfig: map[string]any{
			"temperature":      0.2,
			"responseMimeType": "application/json",
			"responseSchema":   schema,
		},
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal model request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", g.baseURL, model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create model request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", g.apiKey)

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("failed to call model %s: %w", model, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", fmt.Errorf("failed to read model response: %w", err)
	}

	var out geminiResponse
	decodeErr := json.Unmarshal(payload, &out)

	if resp.StatusCode != http.StatusOK {
		message := http.StatusText(resp.StatusCode)
		status := ""
		if decodeErr == nil && out.Error != nil {
			message = out.Error.Message
			status = out.Error.Status
		}
		if resp.StatusCode == http.StatusNotFound || status == "NOT_FOUND" ||
			strings.Contains(strings.ToLower(message), "not found") {
			return "", &ModelNotFoundError{Model: model, Message: message}
		}
		return "", &UpstreamError{StatusCode: resp.StatusCode, Message: message}
	}

	if decodeErr != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedResponse, decodeErr)
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("%w: no candidates", ErrMalformedResponse)
	}

	var text strings.Builder
	for _, part := range out.Candidates[0].Content.Parts {
		text.WriteString(part.Text)
	}
	return text.String(), nil
}
