package repository

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"

	"cardpile-backend/internal/models"
)

// memRecordStore is an in-memory RecordStore for tests. Setting failGet
// or failPut simulates a backend outage.
type memRecordStore struct {
	data    map[string][]byte
	failGet bool
	failPut bool
}

func newMemRecordStore() *memRecordStore {
	return &memRecordStore{data: make(map[string][]byte)}
}

func (m *memRecordStore) Get(_ context.Context, name string) ([]byte, error) {
	if m.failGet {
		return nil, errors.New("backend unavailable")
	}
	data, ok := m.data[name]
	if !ok {
		return nil, ErrRecordNotFound
	}
	return data, nil
}

func (m *memRecordStore) Put(_ context.Context, name string, data []byte) error {
	if m.failPut {
		return errors.New("backend unavailable")
	}
	m.data[name] = data
	return nil
}

func testFlashcardDeck(name string) models.FlashcardDeck {
	return models.FlashcardDeck{
		ID:   uuid.New(),
		Name: name,
		Cards: []models.Flashcard{
			{ID: uuid.New(), Question: "q", Answer: "a"},
		},
	}
}

func TestDeckStoreSaveAndLoad(t *testing.T) {
	ctx := context.Background()
	store := NewDeckStore(newMemRecordStore())
	userID := uuid.New()

	first := testFlashcardDeck("First")
	second := testFlashcardDeck("Second")
	store.Save(ctx, userID, first)
	store.Save(ctx, userID, second)

	decks := store.Load(ctx, userID)
	if len(decks) != 2 {
		t.Fatalf("Expected 2 decks, got %d", len(decks))
	}
	if decks[0].ID != first.ID || decks[1].ID != second.ID {
		t.Error("Expected decks in insertion order")
	}
}

func TestDeckStoreSaveUpserts(t *testing.T) {
	ctx := context.Background()
	store := NewDeckStore(newMemRecordStore())
	userID := uuid.New()

	deck := testFlashcardDeck("Original")
	store.Save(ctx, userID, deck)

	deck.Name = "Renamed"
	store.Save(ctx, userID, deck)

	decks := store.Load(ctx, userID)
	if len(decks) != 1 {
		t.Fatalf("Expected 1 deck after upsert, got %d", len(decks))
	}
	if decks[0].Name != "Renamed" {
		t.Errorf("Expected renamed deck, got %q", decks[0].Name)
	}
}

func TestDeckStoreRemove(t *testing.T) {
	ctx := context.Background()
	store := NewDeckStore(newMemRecordStore())
	userID := uuid.New()

	keep := testFlashcardDeck("Keep")
	drop := testFlashcardDeck("Drop")
	store.Save(ctx, userID, keep)
	store.Save(ctx, userID, drop)

	store.Remove(ctx, userID, drop.ID)

	decks := store.Load(ctx, userID)
	if len(decks) != 1 || decks[0].ID != keep.ID {
		t.Errorf("Expected only the kept deck, got %+v", decks)
	}
}

func TestDeckStoreGetByID(t *testing.T) {
	ctx := context.Background()
	store := NewDeckStore(newMemRecordStore())
	userID := uuid.New()

	deck := testFlashcardDeck("Findable")
	store.Save(ctx, userID, deck)

	got, ok := store.GetByID(ctx, userID, deck.ID)
	if !ok || got.Name != "Findable" {
		t.Errorf("Expected to find deck, got %+v (ok=%v)", got, ok)
	}

	if _, ok := store.GetByID(ctx, userID, uuid.New()); ok {
		t.Error("Expected miss for an unknown deck ID")
	}
	if _, ok := store.GetByID(ctx, uuid.New(), deck.ID); ok {
		t.Error("Expected miss for another user's collection")
	}
}

func TestDeckStoreDegradesToEmpty(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("missing record", func(t *testing.T) {
		store := NewDeckStore(newMemRecordStore())
		if decks := store.Load(ctx, userID); len(decks) != 0 {
			t.Errorf("Expected empty collection, got %d decks", len(decks))
		}
	})

	t.Run("corrupt record", func(t *testing.T) {
		records := newMemRecordStore()
		records.data[deckRecordName(userID)] = []byte("{not json")
		store := NewDeckStore(records)
		if decks := store.Load(ctx, userID); len(decks) != 0 {
			t.Errorf("Expected empty collection on corrupt record, got %d decks", len(decks))
		}
	})

	t.Run("read failure", func(t *testing.T) {
		records := newMemRecordStore()
		records.failGet = true
		store := NewDeckStore(records)
		if decks := store.Load(ctx, userID); len(decks) != 0 {
			t.Errorf("Expected empty collection on read failure, got %d decks", len(decks))
		}
	})
}

func TestDeckStoreDroppedWriteDoesNotPanic(t *testing.T) {
	ctx := context.Background()
	records := newMemRecordStore()
	records.failPut = true
	store := NewDeckStore(records)

	// Writes are dropped silently toward the caller.
	store.Save(ctx, uuid.New(), testFlashcardDeck("Doomed"))
}

func TestSessionLogAppend(t *testing.T) {
	ctx := context.Background()
	records := newMemRecordStore()
	logStore := NewSessionLog(records)
	userID := uuid.New()

	logStore.Append(ctx, userID, models.StudySessionRecord{DeckID: uuid.New(), CorrectCount: 3, TotalCount: 5})
	logStore.Append(ctx, userID, models.StudySessionRecord{DeckID: uuid.New(), CorrectCount: 5, TotalCount: 5})

	data, err := records.Get(ctx, sessionRecordName(userID))
	if err != nil {
		t.Fatalf("Expected session record, got %v", err)
	}

	var sessions []models.StudySessionRecord
	if err := json.Unmarshal(data, &sessions); err != nil {
		t.Fatalf("Unmarshal session log: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("Expected 2 logged sessions, got %d", len(sessions))
	}
	if sessions[1].CorrectCount != 5 {
		t.Errorf("Expected latest session last, got %+v", sessions[1])
	}
}

func TestSessionLogCorruptRecordStartsFresh(t *testing.T) {
	ctx := context.Background()
	records := newMemRecordStore()
	userID := uuid.New()
	records.data[sessionRecordName(userID)] = []byte("][")

	logStore := NewSessionLog(records)
	logStore.Append(ctx, userID, models.StudySessionRecord{DeckID: uuid.New(), TotalCount: 1})

	var sessions []models.StudySessionRecord
	data, _ := records.Get(ctx, sessionRecordName(userID))
	if err := json.Unmarshal(data, &sessions); err != nil {
		t.Fatalf("Unmarshal session log: %v", err)
	}
	if len(sessions) != 1 {
		t.Errorf("Expected the corrupt log replaced by a single entry, got %d", len(sessions))
	}
}

func TestSettingsStoreDefaults(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("missing record", func(t *testing.T) {
		store := NewSettingsStore(newMemRecordStore())
		if got := store.Get(ctx, userID); got != models.DefaultSettings() {
			t.Errorf("Expected defaults, got %+v", got)
		}
	})

	t.Run("corrupt record", func(t *testing.T) {
		records := newMemRecordStore()
		records.data[settingsRecordName(userID)] = []byte("nope")
		store := NewSettingsStore(records)
		if got := store.Get(ctx, userID); got != models.DefaultSettings() {
			t.Errorf("Expected defaults on corrupt record, got %+v", got)
		}
	})
}

func TestSettingsStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewSettingsStore(newMemRecordStore())
	userID := uuid.New()

	want := models.Settings{Theme: "dark", ShuffleOnStart: true, CardsPerPage: 24}
	store.Put(ctx, userID, want)

	if got := store.Get(ctx, userID); got != want {
		t.Errorf("Expected %+v, got %+v", want, got)
	}
}
