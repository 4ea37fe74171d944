package models

import (
	"time"

	"github.com/google/uuid"
)

// StudySessionRecord is appended to the per-user session log when a
// study session finishes. The log is write-only: no endpoint reads it.
type StudySessionRecord struct {
	DeckID         uuid.UUID   `json:"deck_id"`
	StartedAt      time.Time   `json:"started_at"`
	EndedAt        time.Time   `json:"ended_at"`
	CorrectCount   int         `json:"correct_count"`
	TotalCount     int         `json:"total_count"`
	StudiedCardIDs []uuid.UUID `json:"studied_card_ids"`
}

type Settings struct {
	Theme          string `json:"theme"`
	ShuffleOnStart bool   `json:"shuffle_on_start"`
	CardsPerPage   int    `json:"cards_per_page"`
}

func DefaultSettings() Settings {
	return Settings{
		Theme:          "light",
		ShuffleOnStart: false,
		CardsPerPage:   12,
	}
}
