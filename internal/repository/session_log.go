package repository

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"github.com/google/uuid"

	"cardpile-backend/internal/models"
)

// SessionLog appends finished study sessions to a per-user JSON record.
// The log is write-only; a corrupt or unreadable record is replaced by
// a fresh list rather than blocking the append.
type SessionLog struct {
	records RecordStore
}

func NewSessionLog(records RecordStore) *SessionLog {
	return &SessionLog{records: records}
}

func sessionRecordName(userID uuid.UUID) string {
	return "study_sessions:" + userID.String()
}

func (l *SessionLog) Append(ctx context.Context, userID uuid.UUID, rec models.StudySessionRecord) {
	var sessions []models.StudySessionRecord

	data, err := l.records.Get(ctx, sessionRecordName(userID))
	if err != nil && !errors.Is(err, ErrRecordNotFound) {
		log.Printf("session log: read failed for user %s: %v", userID, err)
	}
	if err == nil {
		if err := json.Unmarshal(data, &sessions); err != nil {
			log.Printf("session log: unparseable record for user %s, starting fresh: %v", userID, err)
			sessions = nil
		}
	}

	sessions = append(sessions, rec)

	out, err := json.Marshal(sessions)
	if err != nil {
		log.Printf("session log: marshal failed for user %s: %v", userID, err)
		return
	}
	if err := l.records.Put(ctx, sessionRecordName(userID), out); err != nil {
		log.Printf("session log: write dropped for user %s: %v", userID, err)
	}
}
