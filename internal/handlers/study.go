package handlers

import (
	"encoding/json"
	"math/rand"
	"net/http"
	"time"

	"github.com/google/uuid"

	"cardpile-backend/internal/middleware"
	"cardpile-backend/internal/repository"
	"cardpile-backend/internal/study"
)

type StudyHandler struct {
	sessions *study.Manager
	decks    *repository.DeckStore
	log      *repository.SessionLog
	settings *repository.SettingsStore
}

func NewStudyHandler(sessions *study.Manager, decks *repository.DeckStore, log *repository.SessionLog, settings *repository.SettingsStore) *StudyHandler {
	return &StudyHandler{
		sessions: sessions,
		decks:    decks,
		log:      log,
		settings: settings,
	}
}

// Start borrows a copy of the deck's cards for a new session. Any
// session the user already had is discarded.
func (h *StudyHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DeckID string `json:"deck_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	deckID, err := uuid.Parse(req.DeckID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid deck_id", r))
		return
	}

	userID := middleware.GetUserID(r.Context())
	deck, ok := h.decks.GetByID(r.Context(), userID, deckID)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Deck not found", r))
		return
	}

	// The session treats the borrowed copy's order as the original, so
	// a shuffled session resets to its shuffled order, not a new one.
	if h.settings.Get(r.Context(), userID).ShuffleOnStart {
		rand.Shuffle(len(deck.Cards), func(i, j int) {
			deck.Cards[i], deck.Cards[j] = deck.Cards[j], deck.Cards[i]
		})
	}

	session := h.sessions.Start(userID, deck)
	writeJSON(w, http.StatusCreated, session.State())
}

func (h *StudyHandler) State(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, session.State())
}

func (h *StudyHandler) Flip(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	session.Flip()
	writeJSON(w, http.StatusOK, session.State())
}

func (h *StudyHandler) Next(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	session.Next()
	writeJSON(w, http.StatusOK, session.State())
}

func (h *StudyHandler) Prev(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	session.Prev()
	writeJSON(w, http.StatusOK, session.State())
}

func (h *StudyHandler) SwitchPile(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	var req struct {
		Pile string `json:"pile"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	pile, err := study.ParsePile(req.Pile)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "pile must be study, review or mastered", r))
		return
	}

	session.SwitchPile(pile)
	writeJSON(w, http.StatusOK, session.State())
}

// Move is the non-pointer path for sorting the current card.
func (h *StudyHandler) Move(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	var req struct {
		Target string `json:"target"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	target, err := study.ParsePile(req.Target)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "target must be study, review or mastered", r))
		return
	}

	if !session.MoveCurrent(target) {
		writeJSON(w, http.StatusConflict, errorResp("NO_CARD", "No card to move", r))
		return
	}

	writeJSON(w, http.StatusOK, session.State())
}

func (h *StudyHandler) PointerDown(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	var req struct {
		Point    study.Point `json:"point"`
		Review   study.Rect  `json:"review"`
		Mastered study.Rect  `json:"mastered"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	session.PointerDown(req.Point, req.Review, req.Mastered)
	writeJSON(w, http.StatusOK, session.State())
}

func (h *StudyHandler) PointerMove(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	var req struct {
		Point study.Point `json:"point"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	session.PointerMove(req.Point)
	writeJSON(w, http.StatusOK, session.State())
}

func (h *StudyHandler) PointerUp(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	var req struct {
		Point study.Point `json:"point"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	result := session.PointerUp(req.Point)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"result": result,
		"state":  session.State(),
	})
}

func (h *StudyHandler) Reset(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	session.Reset()
	writeJSON(w, http.StatusOK, session.State())
}

func (h *StudyHandler) Grid(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, session.Grid())
}

func (h *StudyHandler) GridFlip(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	var req struct {
		CardID string `json:"card_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	cardID, err := uuid.Parse(req.CardID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid card_id", r))
		return
	}

	session.ToggleGridFlip(cardID)
	writeJSON(w, http.StatusOK, session.Grid())
}

// Select jumps from the grid back to single-card view with the chosen
// card current.
func (h *StudyHandler) Select(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	var req struct {
		Pile   string `json:"pile"`
		CardID string `json:"card_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	pile, err := study.ParsePile(req.Pile)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "pile must be study, review or mastered", r))
		return
	}

	cardID, err := uuid.Parse(req.CardID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid card_id", r))
		return
	}

	if !session.Select(pile, cardID) {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Card not found in pile", r))
		return
	}

	writeJSON(w, http.StatusOK, session.State())
}

// Finish ends the session, appends the study record to the log and
// stamps the deck's last-studied time.
func (h *StudyHandler) Finish(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	session, ok := h.sessions.End(userID)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResp("NO_ACTIVE_SESSION", "No active study session", r))
		return
	}

	record := session.Finish()
	h.log.Append(r.Context(), userID, record)

	if deck, ok := h.decks.GetByID(r.Context(), userID, session.DeckID); ok {
		now := time.Now()
		deck.LastStudiedAt = &now
		h.decks.Save(r.Context(), userID, *deck)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"session": record})
}

func (h *StudyHandler) session(w http.ResponseWriter, r *http.Request) (*study.Session, bool) {
	userID := middleware.GetUserID(r.Context())
	session, ok := h.sessions.Get(userID)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResp("NO_ACTIVE_SESSION", "No active study session", r))
		return nil, false
	}
	return session, true
}
