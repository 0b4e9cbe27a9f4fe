package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/snipvault/internal/auth"
	"github.com/sakif/snipvault/internal/service"
)

// SnippetHandler serves the owner-facing snippet CRUD. Every route here sits
// behind RequireAuth, so the user ID is always in the request context.
type SnippetHandler struct {
	svc    *service.SnippetService
	logger *slog.Logger
}

func NewSnippetHandler(svc *service.SnippetService, logger *slog.Logger) *SnippetHandler {
	return &SnippetHandler{svc: svc, logger: logger}
}

// snippetRequest is the create/update body. Pointer fields distinguish
// absent from zero: an update that omits "code" leaves the code alone, one
// that sends "code": "" is rejected.
type snippetRequest struct {
	Title       *string  `json:"title"`
	Code        *string  `json:"code"`
	Language    *string  `json:"language"`
	Description *string  `json:"description"`
	IsPublic    *bool    `json:"is_public"`
	Tags        []string `json:"tags"`
}

func (req snippetRequest) fields() service.SnippetFields {
	return service.SnippetFields{
		Title:       req.Title,
		Code:        req.Code,
		Language:    req.Language,
		Description: req.Description,
		IsPublic:    req.IsPublic,
		Tags:        req.Tags,
	}
}

// HandleCreate saves a new snippet for the authenticated user.
//
// HTTP: POST /snippets
func (h *SnippetHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req snippetRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	snippet, err := h.svc.Create(r.Context(), userID, req.fields())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, snippet)
}

// HandleList returns the authenticated user's snippets.
//
// HTTP: GET /snippets?limit&offset
func (h *SnippetHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	limit, offset := parsePagination(r)

	snippets, err := h.svc.List(r.Context(), userID, limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, snippets)
}

// HandleGet returns one of the user's snippets by ID.
//
// HTTP: GET /snippets/{id}
func (h *SnippetHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	snippet, err := h.svc.GetOwned(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, snippet)
}

// HandleUpdate applies a partial update to an owned snippet.
//
// HTTP: PUT /snippets/{id}
func (h *SnippetHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req snippetRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	snippet, err := h.svc.Update(r.Context(), userID, chi.URLParam(r, "id"), req.fields())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, snippet)
}

// HandleDelete removes an owned snippet.
//
// HTTP: DELETE /snippets/{id}
func (h *SnippetHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	if err := h.svc.Delete(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleTogglePublic flips a snippet's visibility and returns the updated
// record so the client can sync its local copy.
//
// HTTP: PATCH /snippets/{id}/toggle-public
func (h *SnippetHandler) HandleTogglePublic(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	snippet, err := h.svc.ToggleVisibility(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, snippet)
}

// parsePagination reads limit and offset query params, ignoring anything
// unparseable. The repository clamps the final values.
func parsePagination(r *http.Request) (limit, offset int) {
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			offset = n
		}
	}
	return limit, offset
}
