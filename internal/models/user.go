package models

import (
	"encoding/json"
	"time"
)

// User represents an application user record.
type User struct {
	ID           string          `json:"id"`
	Username     string          `json:"username"`
	Email        string          `json:"email"`
	PasswordHash string          `json:"-"`
	Profile      json.RawMessage `json:"profile,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// Sanitize returns a copy of the user without sensitive fields populated.
func (u User) Sanitize() User {
	u.PasswordHash = ""
	return u
}
