package models

import (
	"encoding/json"
	"time"
)

// Conversation is one question/answer exchange inside a chat session.
// VideoLinks values are kept verbatim: the LLM backend sends objects with a
// "links" list, older clients stored plain URL lists.
// Decoding is lossy: fields not declared here, such as the "products" list
// clients attach, are dropped and never reach storage.
type Conversation struct {
	Question      string                     `json:"question"`
	Text          string                     `json:"text"`
	InitialAnswer string                     `json:"initial_answer,omitempty"`
	Video         []string                   `json:"video"`
	VideoLinks    map[string]json.RawMessage `json:"videoLinks"`
	Timestamp     string                     `json:"timestamp,omitempty"`
}

// Time parses Timestamp, returning the zero time when absent or malformed.
func (c Conversation) Time() time.Time {
	if c.Timestamp == "" {
		return time.Time{}
	}
	ts, err := time.Parse(time.RFC3339Nano, c.Timestamp)
	if err != nil {
		return time.Time{}
	}
	return ts
}

// Session is an ordered list of conversations. Like Conversation, any
// undeclared session fields are dropped when decoded.
type Session struct {
	ID            string         `json:"id"`
	Conversations []Conversation `json:"conversations"`
}

// LatestTime is the timestamp of the last conversation.
func (s Session) LatestTime() time.Time {
	if len(s.Conversations) == 0 {
		return time.Time{}
	}
	return s.Conversations[len(s.Conversations)-1].Time()
}

// SessionRecord is the persisted per-user session history.
type SessionRecord struct {
	UserID      string          `json:"user_id"`
	SessionData json.RawMessage `json:"session_data"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Sessions decodes SessionData.
func (r SessionRecord) Sessions() ([]Session, error) {
	if len(r.SessionData) == 0 {
		return []Session{}, nil
	}
	var sessions []Session
	if err := json.Unmarshal(r.SessionData, &sessions); err != nil {
		return nil, err
	}
	if sessions == nil {
		sessions = []Session{}
	}
	return sessions, nil
}
