package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"upnext/internal/clock"
	"upnext/internal/event"

	"github.com/go-chi/chi/v5"
)

type EventHandler struct {
	Store *event.Store
	Clock clock.Clock
}

type eventReq struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Date        string  `json:"date"` // RFC3339
	Image       *string `json:"image"`
	Category    *string `json:"category"`
}

type eventDTO struct {
	ID              string                  `json:"id"`
	Name            string                  `json:"name"`
	Description     string                  `json:"description,omitempty"`
	Date            time.Time               `json:"date"`
	Image           string                  `json:"image,omitempty"`
	Category        event.Category          `json:"category"`
	NotificationIDs []event.NotificationRef `json:"notificationIds,omitempty"`
	TimeRemaining   string                  `json:"timeRemaining"`
}

// toDTO recomputes the time-remaining label against the current clock
// reading; it is never cached.
func (h *EventHandler) toDTO(ev event.Event, now time.Time) eventDTO {
	return eventDTO{
		ID:              ev.ID,
		Name:            ev.Name,
		Description:     ev.Description,
		Date:            ev.Date,
		Image:           ev.Image,
		Category:        ev.Category,
		NotificationIDs: ev.NotificationIDs,
		TimeRemaining:   event.TimeRemaining(ev, now),
	}
}

func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	events := h.Store.Events()

	if q := strings.TrimSpace(r.URL.Query().Get("q")); q != "" {
		events = event.Search(q, events)
	}

	now := h.Clock.Now()
	out := make([]eventDTO, 0, len(events))
	for _, ev := range events {
		out = append(out, h.toDTO(ev, now))
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(out)
}

func (h *EventHandler) Get(w http.ResponseWriter, r *http.Request) {
	ev, err := h.Store.Get(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(h.toDTO(ev, h.Clock.Now()))
}

func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	draft, ok := h.decodeDraft(w, r)
	if !ok {
		return
	}

	ev, err := h.Store.Add(r.Context(), draft)
	if err != nil {
		h.writeStoreError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(h.toDTO(ev, h.Clock.Now()))
}

func (h *EventHandler) Update(w http.ResponseWriter, r *http.Request) {
	draft, ok := h.decodeDraft(w, r)
	if !ok {
		return
	}

	ev, err := h.Store.Update(r.Context(), chi.URLParam(r, "id"), draft)
	if err != nil {
		h.writeStoreError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(h.toDTO(ev, h.Clock.Now()))
}

func (h *EventHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Remove(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *EventHandler) decodeDraft(w http.ResponseWriter, r *http.Request) (event.Draft, bool) {
	var req eventReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return event.Draft{}, false
	}

	date, err := time.Parse(time.RFC3339, strings.TrimSpace(req.Date))
	if err != nil {
		http.Error(w, "invalid date (RFC3339)", http.StatusBadRequest)
		return event.Draft{}, false
	}

	draft := event.Draft{
		Name:        req.Name,
		Description: req.Description,
		Date:        date,
		Image:       req.Image,
	}
	if req.Category != nil {
		c := event.Category(strings.TrimSpace(*req.Category))
		if !c.Valid() {
			http.Error(w, "invalid category", http.StatusBadRequest)
			return event.Draft{}, false
		}
		draft.Category = &c
	}
	return draft, true
}

func (h *EventHandler) writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, event.ErrInvalidName):
		http.Error(w, "name required", http.StatusBadRequest)
	case errors.Is(err, event.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	default:
		http.Error(w, "server error", http.StatusInternalServerError)
	}
}
