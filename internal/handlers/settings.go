package handlers

import (
	"encoding/json"
	"net/http"

	"cardpile-backend/internal/middleware"
	"cardpile-backend/internal/models"
	"cardpile-backend/internal/repository"
)

type SettingsHandler struct {
	settings *repository.SettingsStore
}

func NewSettingsHandler(settings *repository.SettingsStore) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	writeJSON(w, http.StatusOK, h.settings.Get(r.Context(), userID))
}

func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req models.Settings
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	if req.Theme != "light" && req.Theme != "dark" {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "theme must be light or dark", r))
		return
	}
	if req.CardsPerPage <= 0 {
		req.CardsPerPage = models.DefaultSettings().CardsPerPage
	}

	userID := middleware.GetUserID(r.Context())
	h.settings.Put(r.Context(), userID, req)

	writeJSON(w, http.StatusOK, req)
}
