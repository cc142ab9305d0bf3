package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/ayusman/tactipad/internal/store"
)

// RecordsHandler serves what a session recorded.
// Expected paths: /api/sessions/{id}/events and /api/sessions/{id}/samples
type RecordsHandler struct {
	store *store.Store
}

// NewRecordsHandler creates a new RecordsHandler with the given store.
func NewRecordsHandler(s *store.Store) *RecordsHandler {
	return &RecordsHandler{store: s}
}

// ServeHTTP implements the http.Handler interface.
func (h *RecordsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/sessions/")
	parts := strings.Split(path, "/")

	if len(parts) != 2 || parts[0] == "" {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sessionID := parts[0]
	if _, err := h.store.Sessions().GetByID(sessionID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Session not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get session")
		return
	}

	switch parts[1] {
	case "events":
		h.events(w, r, sessionID)
	case "samples":
		h.samples(w, r, sessionID)
	default:
		writeError(w, http.StatusNotFound, "Not found")
	}
}

// Response types

type listEventsResponse struct {
	Events []store.Event `json:"events"`
}

type listSamplesResponse struct {
	Samples []store.Sample `json:"samples"`
}

// events handles GET /api/sessions/{id}/events
func (h *RecordsHandler) events(w http.ResponseWriter, r *http.Request, sessionID string) {
	events, err := h.store.Events().ListBySession(sessionID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list events")
		return
	}
	if events == nil {
		events = []store.Event{}
	}
	writeJSON(w, http.StatusOK, listEventsResponse{Events: events})
}

// samples handles GET /api/sessions/{id}/samples?limit=N
func (h *RecordsHandler) samples(w http.ResponseWriter, r *http.Request, sessionID string) {
	limit, err := limitParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	samples, err := h.store.Samples().ListBySession(sessionID, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list samples")
		return
	}
	if samples == nil {
		samples = []store.Sample{}
	}
	writeJSON(w, http.StatusOK, listSamplesResponse{Samples: samples})
}
