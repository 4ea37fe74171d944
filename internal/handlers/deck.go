package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"cardpile-backend/internal/middleware"
	"cardpile-backend/internal/models"
	"cardpile-backend/internal/repository"
	"cardpile-backend/internal/services"
)

type DeckHandler struct {
	decks       *repository.DeckStore
	importer    *services.ImportService
	exporter    *services.ExportService
	maxUploadMB int
}

func NewDeckHandler(decks *repository.DeckStore, importer *services.ImportService, exporter *services.ExportService, maxUploadMB int) *DeckHandler {
	return &DeckHandler{
		decks:       decks,
		importer:    importer,
		exporter:    exporter,
		maxUploadMB: maxUploadMB,
	}
}

func (h *DeckHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	decks := h.decks.Load(r.Context(), userID)
	writeJSON(w, http.StatusOK, map[string]interface{}{"decks": decks})
}

func (h *DeckHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateDeckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Deck name is required", r))
		return
	}

	deck := models.FlashcardDeck{
		ID:        uuid.New(),
		Name:      req.Name,
		Cards:     []models.Flashcard{},
		CreatedAt: time.Now(),
		Tags:      req.Tags,
	}
	if desc := strings.TrimSpace(req.Description); desc != "" {
		deck.Description = &desc
	}

	userID := middleware.GetUserID(r.Context())
	h.decks.Save(r.Context(), userID, deck)

	writeJSON(w, http.StatusCreated, map[string]interface{}{"deck": deck})
}

func (h *DeckHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid deck ID", r))
		return
	}

	userID := middleware.GetUserID(r.Context())
	deck, ok := h.decks.GetByID(r.Context(), userID, id)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Deck not found", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"deck": deck})
}

// Delete requires an explicit confirmation flag in the body before the
// deck is removed.
func (h *DeckHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid deck ID", r))
		return
	}

	var req models.DeleteDeckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || !req.Confirm {
		writeJSON(w, http.StatusBadRequest, errorResp("CONFIRMATION_REQUIRED", "Deck deletion must be confirmed", r))
		return
	}

	userID := middleware.GetUserID(r.Context())
	if _, ok := h.decks.GetByID(r.Context(), userID, id); !ok {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Deck not found", r))
		return
	}

	h.decks.Remove(r.Context(), userID, id)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Deck deleted"})
}

func (h *DeckHandler) Import(w http.ResponseWriter, r *http.Request) {
	maxBytes := int64(h.maxUploadMB) * 1024 * 1024
	if r.ContentLength > maxBytes {
		writeJSON(w, http.StatusRequestEntityTooLarge, errorResp("FILE_TOO_LARGE", "File size exceeds the upload limit", r))
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "No file provided", r))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Could not read uploaded file", r))
		return
	}

	cards, err := h.importer.Parse(header.Filename, data)
	if err != nil {
		var importErr *services.ImportError
		if errors.As(err, &importErr) {
			writeJSON(w, http.StatusUnprocessableEntity, errorRespWithFields(
				importErr.Code, importErr.Message,
				map[string]string{"file": importErr.FileName}, r))
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Import failed", r))
		return
	}

	name := strings.TrimSpace(r.FormValue("name"))
	if name == "" {
		name = deckNameFromFile(header.Filename)
	}

	deck := models.FlashcardDeck{
		ID:        uuid.New(),
		Name:      name,
		Cards:     cards,
		CreatedAt: time.Now(),
	}

	userID := middleware.GetUserID(r.Context())
	h.decks.Save(r.Context(), userID, deck)

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"deck":       deck,
		"card_count": len(cards),
	})
}

func (h *DeckHandler) Export(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid deck ID", r))
		return
	}

	userID := middleware.GetUserID(r.Context())
	deck, ok := h.decks.GetByID(r.Context(), userID, id)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Deck not found", r))
		return
	}

	data := h.exporter.CSV(*deck)
	fileName := h.exporter.FileName(deck.Name)

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+fileName+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func deckNameFromFile(fileName string) string {
	name := fileName
	if idx := strings.LastIndex(name, "."); idx > 0 {
		name = name[:idx]
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = "Imported deck"
	}
	return name
}
