package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerPlayerLinkRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/player-links", handler.ListPlayerLinks)
	mux.HandleFunc("GET /v1/player-links/{playerID}", handler.GetPlayerLink)
	// Operator corrections. Status reset is the only path that may lower a status.
	mux.HandleFunc("POST /v1/player-links/{playerID}/status", handler.ResetPlayerLinkStatus)
	mux.HandleFunc("DELETE /v1/player-links/{playerID}/timeline/{index}", handler.DeletePlayerLinkEvent)
}

func registerIdentityRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/identity/resolve", handler.ResolvePlayer)
}

func registerInternalJobRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /internal/jobs/process-news", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunProcessNews)))
	mux.Handle("POST /internal/news", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.AddNews)))
}
