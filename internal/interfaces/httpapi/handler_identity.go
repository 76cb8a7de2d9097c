package httpapi

import (
	"net/http"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/felixbhw/n17-dash/internal/usecase"
)

// ResolvePlayer exposes the resolver for operators checking a name before
// adding a manual mapping.
func (h *Handler) ResolvePlayer(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ResolvePlayer")
	defer span.End()

	if h.resolver == nil {
		writeError(ctx, w, errors.Wrap(usecase.ErrDependencyUnavailable, "identity resolver is not configured"))
		return
	}

	query := r.URL.Query()
	name := strings.TrimSpace(query.Get("name"))
	if name == "" {
		writeError(ctx, w, errors.Wrap(usecase.ErrInvalidInput, "query parameter name is required"))
		return
	}
	team := strings.TrimSpace(query.Get("team"))

	candidate, ok := h.resolver.Resolve(ctx, name, team)
	if !ok {
		writeError(ctx, w, errors.Wrapf(usecase.ErrNotFound, "no player matches %q", name))
		return
	}

	writeSuccess(ctx, w, http.StatusOK, toCandidateDTO(candidate))
}
