package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	pkgerrors "github.com/chrisgaborit/storyboard-engine/internal/pkg/errors"
	"github.com/chrisgaborit/storyboard-engine/internal/platform/logger"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	t.Setenv("OPENAI_API_KEY", "test-key")
	t.Setenv("OPENAI_BASE_URL", srv.URL)
	t.Setenv("OPENAI_MAX_RETRIES", "1")
	c, err := NewClient(logger.NewNop())
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return c
}

func writeOutputText(w http.ResponseWriter, text string) {
	resp := map[string]any{
		"output": []any{
			map[string]any{
				"type": "message",
				"role": "assistant",
				"content": []any{
					map[string]any{"type": "output_text", "text": text},
				},
			},
		},
	}
	_ = json.NewEncoder(w).Encode(resp)
}

func TestGenerateTextExtractsOutput(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("authorization header = %q", got)
		}
		writeOutputText(w, "hello from the model")
	})
	got, err := c.GenerateText(context.Background(), "sys", "user")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "hello from the model" {
		t.Fatalf("text = %q", got)
	}
}

func TestGenerateJSONParsesObject(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeOutputText(w, `{"narration": "structured"}`)
	})
	obj, err := c.GenerateJSON(context.Background(), "sys", "user", "scene_draft", map[string]any{"type": "object"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if obj["narration"] != "structured" {
		t.Fatalf("obj = %v", obj)
	}
}

func TestGenerateJSONMalformedOutput(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeOutputText(w, "sorry, no JSON today")
	})
	_, err := c.GenerateJSON(context.Background(), "sys", "user", "scene_draft", map[string]any{"type": "object"})
	if !errors.Is(err, pkgerrors.ErrMalformedOutput) {
		t.Fatalf("expected ErrMalformedOutput, got %v", err)
	}
}

func TestGenerateTextRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		writeOutputText(w, "recovered")
	})
	got, err := c.GenerateText(context.Background(), "sys", "user")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "recovered" || calls.Load() != 2 {
		t.Fatalf("text = %q, calls = %d", got, calls.Load())
	}
}

func TestGenerateTextDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	})
	if _, err := c.GenerateText(context.Background(), "sys", "user"); err == nil {
		t.Fatal("expected error")
	}
	if calls.Load() != 1 {
		t.Fatalf("calls = %d, want 1", calls.Load())
	}
}
