package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	pkgerrors "github.com/chrisgaborit/storyboard-engine/internal/pkg/errors"
	"github.com/chrisgaborit/storyboard-engine/internal/pkg/httpx"
	"github.com/chrisgaborit/storyboard-engine/internal/platform/envutil"
	"github.com/chrisgaborit/storyboard-engine/internal/platform/logger"
)

// Client is the generation-service boundary the pipeline consumes. It is
// constructor-injected everywhere so tests can substitute a fake.
type Client interface {
	// Plain text (no schema).
	GenerateText(ctx context.Context, system string, user string) (string, error)

	// Structured outputs (json_schema, strict).
	GenerateJSON(ctx context.Context, system string, user string, schemaName string, schema map[string]any) (map[string]any, error)
}

type client struct {
	log        *logger.Logger
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	maxRetries int
}

func NewClient(log *logger.Logger) (Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	apiKey := strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
	if apiKey == "" {
		return nil, fmt.Errorf("missing OPENAI_API_KEY")
	}
	baseURL := strings.TrimRight(envutil.String("OPENAI_BASE_URL", "https://api.openai.com"), "/")
	model := envutil.String("OPENAI_MODEL", "gpt-4o")
	timeout := envutil.DurationSeconds("OPENAI_TIMEOUT_SECONDS", 120*time.Second)
	maxRetries := envutil.Int("OPENAI_MAX_RETRIES", 3)
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &client{
		log:        log.With("service", "OpenAIClient"),
		baseURL:    baseURL,
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
		maxRetries: maxRetries,
	}, nil
}

type httpError struct {
	StatusCode int
	Body       string
}

func (e *httpError) Error() string {
	return fmt.Sprintf("openai http %d: %s", e.StatusCode, e.Body)
}

func (e *httpError) HTTPStatusCode() int {
	if e == nil {
		return 0
	}
	return e.StatusCode
}

func (c *client) doOnce(ctx context.Context, path string, body any) (*http.Response, []byte, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, err
	}
	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return resp, nil, readErr
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp, raw, &httpError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	return resp, raw, nil
}

func (c *client) do(ctx context.Context, path string, body any, out any) error {
	backoff := 1 * time.Second
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		resp, raw, err := c.doOnce(ctx, path, body)
		if err == nil {
			if out == nil {
				return nil
			}
			if uErr := json.Unmarshal(raw, out); uErr != nil {
				return fmt.Errorf("openai decode error: %w", uErr)
			}
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !httpx.IsRetryableError(err) || attempt == c.maxRetries {
			return err
		}
		sleepFor := httpx.JitterSleep(httpx.RetryAfterDuration(resp, backoff, 10*time.Second))
		c.log.Warn("OpenAI request retrying",
			"path", path,
			"attempt", attempt+1,
			"max_retries", c.maxRetries,
			"sleep", sleepFor.String(),
			"error", err.Error(),
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(sleepFor):
		}
		backoff *= 2
	}
	return fmt.Errorf("unreachable retry loop")
}

type responsesRequest struct {
	Model string `json:"model"`
	Input []struct {
		Role    string `json:"role"`
		Content any    `json:"content"`
	} `json:"input"`
	Text struct {
		Format map[string]any `json:"format,omitempty"`
	} `json:"text,omitempty"`
	Temperature float64 `json:"temperature,omitempty"`
}

type responsesResponse struct {
	Output []struct {
		Type    string `json:"type"`
		Role    string `json:"role,omitempty"`
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text,omitempty"`
		} `json:"content,omitempty"`
	} `json:"output"`
	Refusal string `json:"refusal,omitempty"`
}

func extractOutputText(resp responsesResponse) string {
	var out strings.Builder
	for _, item := range resp.Output {
		if item.Type == "message" && item.Role == "assistant" {
			for _, c := range item.Content {
				if c.Type == "output_text" && c.Text != "" {
					out.WriteString(c.Text)
				}
			}
		}
	}
	return out.String()
}

func newRequest(model, system, user string) responsesRequest {
	req := responsesRequest{Model: model, Temperature: 0.2}
	req.Input = []struct {
		Role    string `json:"role"`
		Content any    `json:"content"`
	}{
		{Role: "system", Content: system},
		{Role: "user", Content: user},
	}
	return req
}

func (c *client) GenerateText(ctx context.Context, system string, user string) (string, error) {
	req := newRequest(c.model, system, user)

	var resp responsesResponse
	if err := c.do(ctx, "/v1/responses", req, &resp); err != nil {
		return "", err
	}
	if resp.Refusal != "" {
		return "", fmt.Errorf("model refused: %s", resp.Refusal)
	}
	text := extractOutputText(resp)
	if strings.TrimSpace(text) == "" {
		return "", errors.New("no output_text found in response")
	}
	return text, nil
}

func (c *client) GenerateJSON(ctx context.Context, system string, user string, schemaName string, schema map[string]any) (map[string]any, error) {
	if schemaName == "" {
		return nil, errors.New("schemaName required")
	}
	if schema == nil {
		return nil, errors.New("schema required")
	}
	req := newRequest(c.model, system, user)
	req.Text.Format = map[string]any{
		"type":   "json_schema",
		"name":   schemaName,
		"schema": schema,
		"strict": true,
	}

	var resp responsesResponse
	if err := c.do(ctx, "/v1/responses", req, &resp); err != nil {
		return nil, err
	}
	if resp.Refusal != "" {
		return nil, fmt.Errorf("model refused: %s", resp.Refusal)
	}
	jsonText := extractOutputText(resp)
	if strings.TrimSpace(jsonText) == "" {
		return nil, errors.New("no output_text found in response")
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(jsonText), &obj); err != nil {
		return nil, fmt.Errorf("%w: %v", pkgerrors.ErrMalformedOutput, err)
	}
	return obj, nil
}
