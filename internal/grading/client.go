package grading

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/SAP-F-2025/quiz-service/internal/models"
)

// DefaultTimeout bounds a grading call when the configuration gives none.
const DefaultTimeout = 8 * time.Second

// HTTPClient calls a grading endpoint that speaks the GradeRequest /
// GradeResponse protocol, normally the proxy exposed by this service.
type HTTPClient struct {
	endpoint string
	timeout  time.Duration
	client   *http.Client
	logger   *slog.Logger
}

func NewHTTPClient(endpoint string, timeout time.Duration, logger *slog.Logger) *HTTPClient {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTPClient{
		endpoint: endpoint,
		timeout:  timeout,
		client: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// Grade posts the request and returns the evaluations. It gives up at the
// configured timeout even if ctx allows longer.
func (c *HTTPClient) Grade(ctx context.Context, req GradeRequest) (models.Evaluations, error) {
	if c.endpoint == "" {
		return nil, ErrNotConfigured
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := json.Marshal(Truncate(req))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal grading request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create grading request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to call grading service: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read grading response: %w", err)
	}

	c.logger.Debug("Grading service responded",
		"status_code", resp.StatusCode,
		"duration", time.Since(start).String())

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errBody ErrorBody
		_ = json.Unmarshal(payload, &errBody)
		if errBody.Error == "" {
			errBody.Error = http.StatusText(resp.StatusCode)
		}
		return nil, &UpstreamError{StatusCode: resp.StatusCode, Message: errBody.Error}
	}

	var out GradeResponse
	if err := json.Unmarshal(payload, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if out.Evaluations == nil {
		return nil, fmt.Errorf("%w: missing evaluations", ErrMalformedResponse)
	}

	return out.Evaluations, nil
}
