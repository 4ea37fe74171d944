package repository

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"github.com/google/uuid"

	"cardpile-backend/internal/models"
)

// SettingsStore keeps the per-user settings document. Unreadable
// settings degrade to defaults.
type SettingsStore struct {
	records RecordStore
}

func NewSettingsStore(records RecordStore) *SettingsStore {
	return &SettingsStore{records: records}
}

func settingsRecordName(userID uuid.UUID) string {
	return "settings:" + userID.String()
}

func (s *SettingsStore) Get(ctx context.Context, userID uuid.UUID) models.Settings {
	data, err := s.records.Get(ctx, settingsRecordName(userID))
	if errors.Is(err, ErrRecordNotFound) {
		return models.DefaultSettings()
	}
	if err != nil {
		log.Printf("settings store: read failed for user %s: %v", userID, err)
		return models.DefaultSettings()
	}

	var settings models.Settings
	if err := json.Unmarshal(data, &settings); err != nil {
		log.Printf("settings store: unparseable record for user %s: %v", userID, err)
		return models.DefaultSettings()
	}
	return settings
}

func (s *SettingsStore) Put(ctx context.Context, userID uuid.UUID, settings models.Settings) {
	data, err := json.Marshal(settings)
	if err != nil {
		log.Printf("settings store: marshal failed for user %s: %v", userID, err)
		return
	}
	if err := s.records.Put(ctx, settingsRecordName(userID), data); err != nil {
		log.Printf("settings store: write dropped for user %s: %v", userID, err)
	}
}
