package httpapi

import (
	"net/http"

	"github.com/felixbhw/n17-dash/internal/platform/logging"
)

// NewRouter mounts every route. Middleware order from the outside in:
// tracing, request log, CORS, panic recovery.
func NewRouter(handler *Handler, logger *logging.Logger, corsAllowedOrigins []string, internalJobToken string) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}

	mux := http.NewServeMux()
	registerSystemRoutes(mux, handler)
	registerPlayerLinkRoutes(mux, handler)
	registerIdentityRoutes(mux, handler)
	registerInternalJobRoutes(mux, handler, internalJobToken)

	return RequestTracing(RequestLogging(logger, CORS(corsAllowedOrigins, recoverPanic(logger, mux))))
}

func recoverPanic(logger *logging.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.ErrorContext(r.Context(), "panic recovered", "panic", rec, "path", r.URL.Path)
				writeInternalError(w)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
