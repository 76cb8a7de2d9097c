package openai

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"

	"github.com/felixbhw/n17-dash/internal/platform/resilience"
	"github.com/felixbhw/n17-dash/internal/usecase"
)

func newTestClient(t *testing.T, srv *httptest.Server, retries int, breaker resilience.CircuitBreakerConfig) *Client {
	t.Helper()
	c := NewClient(ClientConfig{
		HTTPClient:     srv.Client(),
		BaseURL:        srv.URL,
		APIKey:         "sk-test",
		Model:          "gpt-test",
		MaxRetries:     retries,
		CircuitBreaker: breaker,
	})
	c.backoff = func(int) time.Duration { return 0 }
	return c
}

func TestClientComplete_SendsJSONModeRequest(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer sk-test" {
			t.Errorf("unexpected auth header: %q", auth)
		}
		raw, _ := io.ReadAll(r.Body)
		if err := sonic.Unmarshal(raw, &got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":" {\"players\":[]} "},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv, 0, resilience.CircuitBreakerConfig{})
	out, err := c.Complete(context.Background(), "Extract facts.", "Title: X", `{"players":[]}`)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if string(out) != `{"players":[]}` {
		t.Fatalf("unexpected content: %s", out)
	}

	if got.Model != "gpt-test" || got.ResponseFormat.Type != "json_object" {
		t.Fatalf("unexpected request: %+v", got)
	}
	if len(got.Messages) != 2 || got.Messages[0].Role != "system" || got.Messages[1].Content != "Title: X" {
		t.Fatalf("unexpected messages: %+v", got.Messages)
	}
	if !strings.Contains(got.Messages[0].Content, `{"players":[]}`) {
		t.Fatalf("expected shape hint in system message, got %q", got.Messages[0].Content)
	}
}

func TestClientComplete_RetriesTransientStatus(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"{}"}}]}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv, 2, resilience.CircuitBreakerConfig{})
	if _, err := c.Complete(context.Background(), "i", "c", ""); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if calls.Load() != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls.Load())
	}
}

func TestClientComplete_DoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"bad"}}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv, 3, resilience.CircuitBreakerConfig{})
	if _, err := c.Complete(context.Background(), "i", "c", ""); err == nil {
		t.Fatalf("expected error")
	}
	if calls.Load() != 1 {
		t.Fatalf("expected a single attempt, got %d", calls.Load())
	}
}

func TestClientComplete_CircuitOpensOnTransientFailures(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := newTestClient(t, srv, 0, resilience.CircuitBreakerConfig{
		Enabled:          true,
		FailureThreshold: 2,
		OpenTimeout:      time.Minute,
		HalfOpenMaxReq:   1,
	})
	for i := 0; i < 2; i++ {
		if _, err := c.Complete(context.Background(), "i", "c", ""); err == nil {
			t.Fatalf("attempt %d: expected error", i)
		}
	}

	_, err := c.Complete(context.Background(), "i", "c", "")
	if !crerr.Is(err, usecase.ErrDependencyUnavailable) {
		t.Fatalf("expected dependency unavailable, got %v", err)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected open circuit to short-circuit, got %d calls", calls.Load())
	}
}

func TestClientComplete_RequiresAPIKey(t *testing.T) {
	c := NewClient(ClientConfig{})
	if _, err := c.Complete(context.Background(), "i", "c", ""); !crerr.Is(err, usecase.ErrDependencyUnavailable) {
		t.Fatalf("expected dependency unavailable, got %v", err)
	}
}
