package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/sakif/code-journal/internal/apperror"
	"github.com/sakif/code-journal/internal/auth"
	"github.com/sakif/code-journal/internal/service"
)

// EntryHandler manages CRUD operations for journal entries.
//
// Every route it serves sits behind auth.RequireAuth, so the identity in the
// request context is always present and already verified. The handler's job
// is purely translation: URL/body → service call → JSON/status.
type EntryHandler struct {
	service *service.EntryService
	logger  *slog.Logger
}

// NewEntryHandler creates a new EntryHandler.
func NewEntryHandler(service *service.EntryService, logger *slog.Logger) *EntryHandler {
	return &EntryHandler{service: service, logger: logger}
}

// entryRequest is the body of create and update.
type entryRequest struct {
	Title    string `json:"title"`
	Notes    string `json:"notes"`
	PhotoURL string `json:"photoUrl"`
}

// HandleCreate saves a new entry owned by the caller.
//
// HTTP: POST /api/entries
// REQUEST BODY: {"title": "...", "notes": "...", "photoUrl": "..."}
// RESPONSES: 201 Entry, 400 invalid body, 401 unauthenticated.
func (h *EntryHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("valid authentication required"))
		return
	}

	var req entryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}

	entry, err := h.service.Create(r.Context(), identity, req.Title, req.Notes, req.PhotoURL)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, entry)
}

// HandleList returns all of the caller's entries, newest first.
//
// HTTP: GET /api/entries
func (h *EntryHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("valid authentication required"))
		return
	}

	entries, err := h.service.List(r.Context(), identity)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, entries)
}

// HandleGet returns a single owned entry.
//
// HTTP: GET /api/entries/{entryId}
// RESPONSES: 200 Entry, 404 not found / not owned / unparseable id.
// The read contract only knows 404 — a garbage id is treated like a missing
// entry, not a validation failure.
func (h *EntryHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("valid authentication required"))
		return
	}

	raw := r.PathValue("entryId")
	entryID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		writeError(w, apperror.NotFound("entry", raw))
		return
	}

	entry, err := h.service.Get(r.Context(), identity, entryID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, entry)
}

// HandleUpdate replaces the writable fields of an owned entry.
//
// HTTP: PUT /api/entries/{entryId}
// RESPONSES: 200 Entry, 400 bad id or body, 404 not found / not owned.
// Unlike reads, writes report a malformed id as a 400 — the validation runs
// before any store access.
func (h *EntryHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("valid authentication required"))
		return
	}

	entryID, err := parseWriteID(r.PathValue("entryId"))
	if err != nil {
		writeError(w, err)
		return
	}

	var req entryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}

	entry, err := h.service.Update(r.Context(), identity, entryID, req.Title, req.Notes, req.PhotoURL)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, entry)
}

// HandleDelete removes an owned entry.
//
// HTTP: DELETE /api/entries/{entryId}
// RESPONSES: 204 no content, 400 bad id, 404 not found / not owned.
func (h *EntryHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("valid authentication required"))
		return
	}

	entryID, err := parseWriteID(r.PathValue("entryId"))
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.service.Delete(r.Context(), identity, entryID); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// parseWriteID parses the entryId path segment for update/delete, where a
// non-numeric id is a ValidationError (the service re-checks positivity, so
// "0" and "-1" fail the same way further down).
func parseWriteID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, apperror.ValidationFailed("entryId", "entryId must be a positive integer")
	}
	return id, nil
}
