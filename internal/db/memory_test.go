package db_test

import (
	"context"
	"errors"
	"testing"

	"github.com/bentswoodworking/bents-api/internal/db"
	"github.com/bentswoodworking/bents-api/internal/models"
)

func TestMemorySessions(t *testing.T) {
	store := db.NewMemorySessions()
	ctx := context.Background()

	if _, err := store.LoadSessions(ctx, "u1"); !errors.Is(err, db.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	first, err := store.SaveSessions(ctx, "u1", nil)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if string(first.SessionData) != "[]" {
		t.Fatalf("expected empty list to be stored as [], got %s", first.SessionData)
	}

	second, err := store.SaveSessions(ctx, "u1", []models.Session{{ID: "a"}})
	if err != nil {
		t.Fatalf("second save failed: %v", err)
	}
	if !second.CreatedAt.Equal(first.CreatedAt) {
		t.Fatalf("expected created_at preserved")
	}

	loaded, err := store.LoadSessions(ctx, "u1")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	sessions, err := loaded.Sessions()
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(sessions) != 1 || sessions[0].ID != "a" {
		t.Fatalf("unexpected sessions %+v", sessions)
	}
}
