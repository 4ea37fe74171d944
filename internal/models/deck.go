package models

import (
	"time"

	"github.com/google/uuid"
)

// Flashcard content is immutable once imported. The review counters are
// reserved fields: nothing increments or reads them yet.
type Flashcard struct {
	ID             uuid.UUID  `json:"id"`
	Question       string     `json:"question"`
	Answer         string     `json:"answer"`
	ImageURL       *string    `json:"image_url,omitempty"`
	LastReviewedAt *time.Time `json:"last_reviewed_at,omitempty"`
	CorrectCount   int        `json:"correct_count"`
	IncorrectCount int        `json:"incorrect_count"`
}

type FlashcardDeck struct {
	ID            uuid.UUID   `json:"id"`
	Name          string      `json:"name"`
	Description   *string     `json:"description,omitempty"`
	Cards         []Flashcard `json:"cards"`
	CreatedAt     time.Time   `json:"created_at"`
	LastStudiedAt *time.Time  `json:"last_studied_at,omitempty"`
	Tags          []string    `json:"tags,omitempty"`
}

type CreateDeckRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}

type DeleteDeckRequest struct {
	Confirm bool `json:"confirm"`
}
