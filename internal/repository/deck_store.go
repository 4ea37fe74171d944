package repository

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"github.com/google/uuid"

	"cardpile-backend/internal/models"
)

// DeckStore persists each user's deck collection as one JSON record.
// Failures never reach the caller: reads degrade to an empty collection
// and writes are dropped, both with a logged diagnostic.
type DeckStore struct {
	records RecordStore
}

func NewDeckStore(records RecordStore) *DeckStore {
	return &DeckStore{records: records}
}

func deckRecordName(userID uuid.UUID) string {
	return "decks:" + userID.String()
}

func (s *DeckStore) Load(ctx context.Context, userID uuid.UUID) []models.FlashcardDeck {
	data, err := s.records.Get(ctx, deckRecordName(userID))
	if errors.Is(err, ErrRecordNotFound) {
		return []models.FlashcardDeck{}
	}
	if err != nil {
		log.Printf("deck store: read failed for user %s: %v", userID, err)
		return []models.FlashcardDeck{}
	}

	var decks []models.FlashcardDeck
	if err := json.Unmarshal(data, &decks); err != nil {
		log.Printf("deck store: unparseable deck record for user %s: %v", userID, err)
		return []models.FlashcardDeck{}
	}
	return decks
}

func (s *DeckStore) GetByID(ctx context.Context, userID, deckID uuid.UUID) (*models.FlashcardDeck, bool) {
	for _, d := range s.Load(ctx, userID) {
		if d.ID == deckID {
			return &d, true
		}
	}
	return nil, false
}

// Save upserts the deck by ID (replace if present, else append), then
// persists the complete collection.
func (s *DeckStore) Save(ctx context.Context, userID uuid.UUID, deck models.FlashcardDeck) {
	decks := s.Load(ctx, userID)

	found := false
	for i := range decks {
		if decks[i].ID == deck.ID {
			decks[i] = deck
			found = true
			break
		}
	}
	if !found {
		decks = append(decks, deck)
	}

	s.persist(ctx, userID, decks)
}

func (s *DeckStore) Remove(ctx context.Context, userID, deckID uuid.UUID) {
	decks := s.Load(ctx, userID)

	kept := decks[:0]
	for _, d := range decks {
		if d.ID != deckID {
			kept = append(kept, d)
		}
	}

	s.persist(ctx, userID, kept)
}

func (s *DeckStore) persist(ctx context.Context, userID uuid.UUID, decks []models.FlashcardDeck) {
	data, err := json.Marshal(decks)
	if err != nil {
		log.Printf("deck store: marshal failed for user %s: %v", userID, err)
		return
	}
	if err := s.records.Put(ctx, deckRecordName(userID), data); err != nil {
		log.Printf("deck store: write dropped for user %s: %v", userID, err)
	}
}
