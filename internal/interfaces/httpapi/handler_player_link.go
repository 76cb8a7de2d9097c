package httpapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/felixbhw/n17-dash/internal/usecase"
)

func (h *Handler) ListPlayerLinks(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListPlayerLinks")
	defer span.End()

	links, err := h.linkService.List(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list player links failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	out := make([]playerLinkSummaryDTO, 0, len(links))
	for _, link := range links {
		out = append(out, toPlayerLinkSummaryDTO(link))
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}

func (h *Handler) GetPlayerLink(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetPlayerLink")
	defer span.End()

	playerID := strings.TrimSpace(r.PathValue("playerID"))
	link, err := h.linkService.Get(ctx, playerID)
	if err != nil {
		if !errors.Is(err, usecase.ErrNotFound) {
			h.logger.ErrorContext(ctx, "get player link failed", "player_id", playerID, "error", err)
		}
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, toPlayerLinkDTO(link))
}

func (h *Handler) ResetPlayerLinkStatus(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ResetPlayerLinkStatus")
	defer span.End()

	var req resetStatusRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	playerID := strings.TrimSpace(r.PathValue("playerID"))
	link, err := h.linkService.ResetStatus(ctx, playerID, req.Status)
	if err != nil {
		h.logger.WarnContext(ctx, "reset player link status failed", "player_id", playerID, "status", req.Status, "error", err)
		writeError(ctx, w, err)
		return
	}

	h.logger.InfoContext(ctx, "player link status reset", "player_id", playerID, "status", link.Status.String())
	writeSuccess(ctx, w, http.StatusOK, toPlayerLinkDTO(link))
}

func (h *Handler) DeletePlayerLinkEvent(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.DeletePlayerLinkEvent")
	defer span.End()

	playerID := strings.TrimSpace(r.PathValue("playerID"))
	index, err := strconv.Atoi(strings.TrimSpace(r.PathValue("index")))
	if err != nil {
		writeError(ctx, w, errors.Wrapf(usecase.ErrInvalidInput, "timeline index must be an integer, got %q", r.PathValue("index")))
		return
	}

	link, err := h.linkService.DeleteEvent(ctx, playerID, index)
	if err != nil {
		h.logger.WarnContext(ctx, "delete timeline event failed", "player_id", playerID, "index", index, "error", err)
		writeError(ctx, w, err)
		return
	}

	h.logger.InfoContext(ctx, "timeline event deleted", "player_id", playerID, "index", index)
	writeSuccess(ctx, w, http.StatusOK, toPlayerLinkDTO(link))
}
