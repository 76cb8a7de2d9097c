package httpapi

import (
	"net/http"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/felixbhw/n17-dash/internal/domain/news"
	"github.com/felixbhw/n17-dash/internal/usecase"
)

func (h *Handler) RunProcessNews(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunProcessNews")
	defer span.End()

	if h.newsService == nil {
		writeError(ctx, w, errors.Wrap(usecase.ErrDependencyUnavailable, "news linker is not configured"))
		return
	}

	result, err := h.newsService.ProcessPending(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "process news job failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, toProcessResultDTO(result))
}

func (h *Handler) AddNews(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.AddNews")
	defer span.End()

	if h.newsService == nil {
		writeError(ctx, w, errors.Wrap(usecase.ErrDependencyUnavailable, "news linker is not configured"))
		return
	}

	var req submitNewsRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	item := news.Item{
		ID:     strings.TrimSpace(req.ID),
		Source: strings.TrimSpace(req.Source),
		URL:    strings.TrimSpace(req.URL),
		Title:  req.Title,
		Body:   req.Body,
		Tier:   news.Tier(req.Tier),
	}
	if req.CreatedAt != nil {
		item.CreatedAt = req.CreatedAt.UTC()
	}
	if err := h.newsService.SubmitNews(ctx, item); err != nil {
		h.logger.WarnContext(ctx, "submit news failed", "news_id", item.ID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, map[string]string{"id": item.ID})
}
