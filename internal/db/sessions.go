package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/bentswoodworking/bents-api/internal/models"
)

// SessionStore persists the per-user session history.
// LoadSessions returns ErrNotFound when the user has none yet.
type SessionStore interface {
	LoadSessions(ctx context.Context, userID string) (*models.SessionRecord, error)
	SaveSessions(ctx context.Context, userID string, sessions []models.Session) (*models.SessionRecord, error)
}

// PostgresSessions stores one session_hist row per user.
type PostgresSessions struct {
	pg *Postgres
}

func NewPostgresSessions(pg *Postgres) *PostgresSessions {
	return &PostgresSessions{pg: pg}
}

func (s *PostgresSessions) LoadSessions(ctx context.Context, userID string) (*models.SessionRecord, error) {
	const query = "SELECT user_id, session_data, created_at, updated_at FROM session_hist WHERE user_id = $1"

	record, err := scanSessionRecord(s.pg.Pool.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("postgres: load sessions: %w", err)
	}

	return record, nil
}

func (s *PostgresSessions) SaveSessions(ctx context.Context, userID string, sessions []models.Session) (*models.SessionRecord, error) {
	payload, err := encodeSessions(sessions)
	if err != nil {
		return nil, err
	}

	const query = `INSERT INTO session_hist (user_id, session_data)
VALUES ($1, $2)
ON CONFLICT (user_id) DO UPDATE SET session_data = EXCLUDED.session_data, updated_at = NOW()
RETURNING user_id, session_data, created_at, updated_at`

	record, err := scanSessionRecord(s.pg.Pool.QueryRow(ctx, query, userID, payload))
	if err != nil {
		return nil, fmt.Errorf("postgres: save sessions: %w", err)
	}

	return record, nil
}

func scanSessionRecord(row pgx.Row) (*models.SessionRecord, error) {
	var (
		record models.SessionRecord
		data   []byte
	)
	if err := row.Scan(&record.UserID, &data, &record.CreatedAt, &record.UpdatedAt); err != nil {
		return nil, err
	}
	record.SessionData = json.RawMessage(data)
	return &record, nil
}

func encodeSessions(sessions []models.Session) ([]byte, error) {
	if sessions == nil {
		sessions = []models.Session{}
	}
	payload, err := json.Marshal(sessions)
	if err != nil {
		return nil, fmt.Errorf("db: encode sessions: %w", err)
	}
	return payload, nil
}
