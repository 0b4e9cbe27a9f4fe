package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/snipvault/internal/service"
)

// TagHandler serves the global tag vocabulary: anyone can read it, creating
// a tag requires auth.
type TagHandler struct {
	svc    *service.TagService
	logger *slog.Logger
}

func NewTagHandler(svc *service.TagService, logger *slog.Logger) *TagHandler {
	return &TagHandler{svc: svc, logger: logger}
}

type tagRequest struct {
	Name string `json:"name"`
}

// HandleList returns every tag, sorted by name.
//
// HTTP: GET /tags
func (h *TagHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	tags, err := h.svc.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, tags)
}

// HandleCreate registers a new tag.
//
// HTTP: POST /tags (RequireAuth)
func (h *TagHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req tagRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	tag, err := h.svc.Create(r.Context(), req.Name)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, tag)
}
