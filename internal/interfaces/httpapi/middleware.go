package httpapi

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/felixbhw/n17-dash/internal/platform/logging"
	"github.com/felixbhw/n17-dash/internal/usecase"
)

const internalJobTokenHeader = "X-Internal-Job-Token"

// untracedPaths are probe endpoints; they get neither a server span nor a
// handler span.
var untracedPaths = map[string]struct{}{
	"/healthz": {},
	"/health":  {},
	"/livez":   {},
	"/readyz":  {},
}

// RequireInternalJobToken guards the job and ingest routes. An unset token
// disables them rather than leaving them open.
func RequireInternalJobToken(token string, next http.Handler) http.Handler {
	expected := []byte(strings.TrimSpace(token))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if len(expected) == 0 {
			writeError(r.Context(), w, errors.Wrap(usecase.ErrDependencyUnavailable, "internal job token is not configured"))
			return
		}
		provided := []byte(strings.TrimSpace(r.Header.Get(internalJobTokenHeader)))
		if len(provided) == 0 || subtle.ConstantTimeCompare(provided, expected) != 1 {
			writeError(r.Context(), w, errors.Wrap(usecase.ErrUnauthorized, "invalid internal job token"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(p []byte) (int, error) {
	n, err := r.ResponseWriter.Write(p)
	r.bytes += n
	return n, err
}

// RequestLogging writes one line per request. Server errors log at error
// level and client errors at warn.
func RequestLogging(logger *logging.Logger, next http.Handler) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}
	logger = logger.Named("http")
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		args := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"bytes", rec.bytes,
			"remote_addr", r.RemoteAddr,
			"duration_ms", time.Since(started).Milliseconds(),
		}
		switch {
		case rec.status >= http.StatusInternalServerError:
			logger.ErrorContext(r.Context(), "http request", args...)
		case rec.status >= http.StatusBadRequest:
			logger.WarnContext(r.Context(), "http request", args...)
		default:
			logger.InfoContext(r.Context(), "http request", args...)
		}
	})
}

func RequestTracing(next http.Handler) http.Handler {
	return otelhttp.NewHandler(next, "n17-dash-http",
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
		otelhttp.WithFilter(func(r *http.Request) bool {
			return shouldTraceRequest(r.URL.Path)
		}),
	)
}

func shouldTraceRequest(path string) bool {
	_, skip := untracedPaths[strings.ToLower(strings.TrimSpace(path))]
	return !skip
}

type corsPolicy struct {
	any     bool
	origins map[string]struct{}
}

func newCORSPolicy(allowed []string) corsPolicy {
	policy := corsPolicy{origins: make(map[string]struct{}, len(allowed))}
	for _, origin := range allowed {
		switch origin = strings.TrimSpace(origin); origin {
		case "":
		case "*":
			policy.any = true
		default:
			policy.origins[origin] = struct{}{}
		}
	}
	return policy
}

func (p corsPolicy) allowOrigin(origin string) (string, bool) {
	if p.any {
		return "*", true
	}
	if _, ok := p.origins[origin]; ok {
		return origin, true
	}
	return "", false
}

// CORS answers preflight requests itself and decorates the rest.
func CORS(allowedOrigins []string, next http.Handler) http.Handler {
	policy := newCORSPolicy(allowedOrigins)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := strings.TrimSpace(r.Header.Get("Origin"))
		if origin == "" {
			next.ServeHTTP(w, r)
			return
		}

		if value, ok := policy.allowOrigin(origin); ok {
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", value)
			if value != "*" {
				h.Add("Vary", "Origin")
			}
			h.Set("Access-Control-Allow-Methods", "GET,POST,DELETE,OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Content-Type,Accept,"+internalJobTokenHeader)
			h.Set("Access-Control-Max-Age", "600")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
