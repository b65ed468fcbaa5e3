package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"upnext/internal/kv"
)

const themeKey = "theme"

// ThemeHandler persists the UI theme preference next to the events.
type ThemeHandler struct {
	KV kv.Store
}

func (h *ThemeHandler) Get(w http.ResponseWriter, r *http.Request) {
	theme, err := h.KV.Get(r.Context(), themeKey)
	if errors.Is(err, kv.ErrNotFound) {
		theme = "light"
	} else if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"theme": theme})
}

func (h *ThemeHandler) Put(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Theme string `json:"theme"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.Theme != "dark" && req.Theme != "light" {
		http.Error(w, "theme must be dark or light", http.StatusBadRequest)
		return
	}

	if err := h.KV.Set(r.Context(), themeKey, req.Theme); err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
