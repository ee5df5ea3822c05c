package db

import (
	"context"
	"sync"
	"time"

	"github.com/bentswoodworking/bents-api/internal/models"
)

// MemorySessions keeps session history in process. Used for local runs
// with SESSION_BACKEND=memory and in tests.
type MemorySessions struct {
	mu      sync.RWMutex
	records map[string]models.SessionRecord
}

func NewMemorySessions() *MemorySessions {
	return &MemorySessions{records: make(map[string]models.SessionRecord)}
}

func (m *MemorySessions) LoadSessions(_ context.Context, userID string) (*models.SessionRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	record, ok := m.records[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return &record, nil
}

func (m *MemorySessions) SaveSessions(_ context.Context, userID string, sessions []models.Session) (*models.SessionRecord, error) {
	payload, err := encodeSessions(sessions)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now().UTC()
	record, ok := m.records[userID]
	if !ok {
		record = models.SessionRecord{UserID: userID, CreatedAt: now}
	}
	record.SessionData = payload
	record.UpdatedAt = now
	m.records[userID] = record

	return &record, nil
}
