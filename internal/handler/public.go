package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/snipvault/internal/auth"
	"github.com/sakif/snipvault/internal/service"
)

// PublicHandler serves the anonymous browsing surface. Routes sit behind
// OptionalAuth: a valid token lets an owner fetch their own private snippet
// by ID, but changes nothing else.
type PublicHandler struct {
	svc    *service.PublicService
	logger *slog.Logger
}

func NewPublicHandler(svc *service.PublicService, logger *slog.Logger) *PublicHandler {
	return &PublicHandler{svc: svc, logger: logger}
}

// HandleList returns public snippets, newest first.
//
// HTTP: GET /public/snippets?language&tag&search&limit&offset
func (h *PublicHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)
	q := r.URL.Query()

	snippets, err := h.svc.List(r.Context(), service.PublicFilter{
		Language: q.Get("language"),
		Tag:      q.Get("tag"),
		Search:   q.Get("search"),
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, snippets)
}

// HandleGet returns a single public snippet by ID. Private snippets 404
// unless the (optionally authenticated) viewer owns them.
//
// HTTP: GET /public/snippets/{id}
func (h *PublicHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	viewerID, _ := auth.UserIDFromContext(r.Context())

	snippet, err := h.svc.Get(r.Context(), viewerID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, snippet)
}
