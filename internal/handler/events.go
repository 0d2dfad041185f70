package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/civicsite/civicsite/internal/model"
	"github.com/civicsite/civicsite/internal/store"
)

const (
	minEventTitleLength = 3
	maxEventTitleLength = 150
	minEventDescLength  = 10
	maxEventDescLength  = 2000
)

// EventHandler serves the events collection. Listing is public; creation and
// deletion require a session.
type EventHandler struct {
	store  *store.Store
	logger *slog.Logger
}

func NewEventHandler(st *store.Store, logger *slog.Logger) *EventHandler {
	return &EventHandler{store: st, logger: logger}
}

// List returns all events ordered by date ascending.
// GET /api/events
func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	events, err := h.store.ListEvents(r.Context())
	if err != nil {
		serverError(w, h.logger, "list events", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"events": events})
}

type createEventRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Date        string `json:"date"`
	ImageURL    string `json:"imageUrl"`
}

// Create adds a new event.
// POST /api/events
func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createEventRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)
	req.Date = strings.TrimSpace(req.Date)

	var missing []string
	if req.Title == "" {
		missing = append(missing, "title")
	}
	if req.Description == "" {
		missing = append(missing, "description")
	}
	if req.Date == "" {
		missing = append(missing, "date")
	}
	if len(missing) > 0 {
		writeError(w, http.StatusBadRequest, "Missing required fields: "+strings.Join(missing, ", "))
		return
	}

	switch {
	case len(req.Title) < minEventTitleLength || len(req.Title) > maxEventTitleLength:
		writeError(w, http.StatusBadRequest,
			fmt.Sprintf("title must be between %d and %d characters", minEventTitleLength, maxEventTitleLength))
		return
	case len(req.Description) < minEventDescLength || len(req.Description) > maxEventDescLength:
		writeError(w, http.StatusBadRequest,
			fmt.Sprintf("description must be between %d and %d characters", minEventDescLength, maxEventDescLength))
		return
	case req.ImageURL != "" && !validImageURL(req.ImageURL):
		writeError(w, http.StatusBadRequest, "imageUrl must be an http(s) URL")
		return
	}

	date, err := parseEventDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "date must be an ISO 8601 date or timestamp")
		return
	}

	event := &model.Event{
		Title:       req.Title,
		Description: req.Description,
		Date:        date,
		ImageURL:    req.ImageURL,
	}
	if err := h.store.CreateEvent(r.Context(), event); err != nil {
		serverError(w, h.logger, "create event", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"event": event})
}

// Delete removes an event by ID.
// DELETE /api/events/{id}
func (h *EventHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid event ID")
		return
	}
	if err := h.store.DeleteEvent(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Event not found")
			return
		}
		serverError(w, h.logger, "delete event", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Event deleted successfully"})
}

// parseEventDate accepts a full RFC 3339 timestamp or a bare calendar date.
func parseEventDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
