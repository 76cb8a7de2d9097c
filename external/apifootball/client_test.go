package apifootball

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/google/go-cmp/cmp"

	"github.com/felixbhw/n17-dash/internal/domain/identity"
	"github.com/felixbhw/n17-dash/internal/platform/resilience"
	"github.com/felixbhw/n17-dash/internal/usecase"
)

func newTestClient(t *testing.T, srv *httptest.Server, retries int) *Client {
	t.Helper()
	c := NewClient(ClientConfig{
		HTTPClient: srv.Client(),
		BaseURL:    srv.URL,
		APIKey:     "key-1",
		MaxRetries: retries,
	})
	c.backoff = func(int) time.Duration { return 0 }
	return c
}

func TestClientSquad(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/players/squads" || r.URL.Query().Get("team") != "47" {
			t.Errorf("unexpected request: %s", r.URL.String())
		}
		if r.Header.Get("x-apisports-key") != "key-1" {
			t.Errorf("missing api key header")
		}
		_, _ = w.Write([]byte(`{"errors":[],"response":[{"team":{"id":47,"name":"Tottenham"},"players":[
			{"id":186,"name":"Son Heung-Min","age":32,"number":7,"position":"Attacker"},
			{"id":0,"name":"ghost"},
			{"id":270510,"name":"M. Tel","age":19,"number":null,"position":"Attacker"}
		]}]}`))
	}))
	defer srv.Close()

	got, err := newTestClient(t, srv, 0).Squad(context.Background(), "47")
	if err != nil {
		t.Fatalf("squad: %v", err)
	}
	want := []identity.Entry{
		{ID: "186", Name: "Son Heung-Min"},
		{ID: "270510", Name: "M. Tel"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected squad (-want +got):\n%s", diff)
	}
}

func TestClientSquad_RejectsNonNumericTeam(t *testing.T) {
	c := NewClient(ClientConfig{APIKey: "k"})
	if _, err := c.Squad(context.Background(), "spurs"); !crerr.Is(err, usecase.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestClientSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/players/profiles" || r.URL.Query().Get("search") != "Solanke" {
			t.Errorf("unexpected request: %s", r.URL.String())
		}
		_, _ = w.Write([]byte(`{"errors":[],"response":[{"player":{"id":18,"name":"D. Solanke","firstname":"Dominic","lastname":"Solanke-Mitchell"}}]}`))
	}))
	defer srv.Close()

	got, err := newTestClient(t, srv, 0).Search(context.Background(), "Solanke")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	want := []identity.Entry{{ID: "18", Name: "D. Solanke", Firstname: "Dominic", Lastname: "Solanke-Mitchell"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected results (-want +got):\n%s", diff)
	}
}

func TestClientSearch_ProviderErrorsObject(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"errors":{"search":"The Search field must contain at least 4 characters."},"response":[]}`))
	}))
	defer srv.Close()

	if _, err := newTestClient(t, srv, 0).Search(context.Background(), "Tel"); err == nil {
		t.Fatalf("expected provider error")
	}
}

func TestClientSearch_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"errors":[],"response":[]}`))
	}))
	defer srv.Close()

	got, err := newTestClient(t, srv, 1).Search(context.Background(), "Kane")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) != 0 || calls.Load() != 2 {
		t.Fatalf("expected empty result after one retry, got %d results in %d calls", len(got), calls.Load())
	}
}

func TestClient_CircuitBreakerRejects(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(ClientConfig{
		HTTPClient: srv.Client(),
		BaseURL:    srv.URL,
		APIKey:     "key-1",
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          true,
			FailureThreshold: 1,
			OpenTimeout:      time.Minute,
			HalfOpenMaxReq:   1,
		},
	})
	_, _ = c.Search(context.Background(), "Kane")
	if _, err := c.Search(context.Background(), "Kane"); !crerr.Is(err, usecase.ErrDependencyUnavailable) {
		t.Fatalf("expected dependency unavailable, got %v", err)
	}
}

func TestProviderErrors(t *testing.T) {
	if err := providerErrors([]any{}); err != nil {
		t.Fatalf("empty array must be nil, got %v", err)
	}
	if err := providerErrors(map[string]any{}); err != nil {
		t.Fatalf("empty object must be nil, got %v", err)
	}
	if err := providerErrors(map[string]any{"rateLimit": "too many"}); !isAPIFootballCircuitFailure(err) {
		t.Fatalf("rate limit must count as transient, got %v", err)
	}
	if err := providerErrors(map[string]any{"token": "bad"}); err == nil || isAPIFootballCircuitFailure(err) {
		t.Fatalf("token error must be a non-transient error, got %v", err)
	}
}
