package db_test

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/bentswoodworking/bents-api/internal/auth"
	"github.com/bentswoodworking/bents-api/internal/db"
	"github.com/bentswoodworking/bents-api/internal/models"
	"github.com/bentswoodworking/bents-api/internal/utils"
)

func connectPostgres(t *testing.T) *db.Postgres {
	t.Helper()

	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set; skipping postgres integration test")
	}

	store, err := db.NewPostgres(context.Background(), utils.PostgresConfig{
		DSN:            dsn,
		ConnectTimeout: 5 * time.Second,
	})
	if err != nil {
		t.Fatalf("failed to connect to postgres: %v", err)
	}
	t.Cleanup(store.Close)

	if err := store.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("ensure schema failed: %v", err)
	}
	return store
}

func TestPostgresProductsCRUD(t *testing.T) {
	store := connectPostgres(t)
	ctx := context.Background()

	created, err := store.CreateProduct(ctx, db.ProductInput{
		Title: "Festool Domino",
		Tags:  "Floating Shelves, Workbench Build, Domino",
		Link:  "https://example.com/domino",
	})
	if err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	t.Cleanup(func() { store.DeleteProduct(context.Background(), created.ID) })

	if _, err := uuid.Parse(created.ID); err != nil {
		t.Fatalf("expected uuid id, got %q", created.ID)
	}

	if err := store.UpdateProduct(ctx, created.ID, db.ProductInput{Title: "Festool Domino DF 500", Tags: created.Tags, Link: created.Link}); err != nil {
		t.Fatalf("update product failed: %v", err)
	}

	fetched, err := store.GetProduct(ctx, created.ID)
	if err != nil {
		t.Fatalf("get product failed: %v", err)
	}
	if fetched.Title != "Festool Domino DF 500" {
		t.Fatalf("expected updated title, got %s", fetched.Title)
	}

	if err := store.DeleteProduct(ctx, created.ID); err != nil {
		t.Fatalf("delete product failed: %v", err)
	}
	if _, err := store.GetProduct(ctx, created.ID); !errors.Is(err, db.ErrNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}

func TestPostgresUsersUniqueness(t *testing.T) {
	store := connectPostgres(t)
	users := db.NewUsers(store)
	ctx := context.Background()

	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")
	now := time.Now().UTC()
	user := &models.User{
		ID:           uuid.NewString(),
		Username:     "user_" + suffix,
		Email:        suffix + "@example.com",
		PasswordHash: "hash",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := users.CreateUser(ctx, user); err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	t.Cleanup(func() { store.Pool.Exec(context.Background(), "DELETE FROM users WHERE id = $1", user.ID) })

	dup := *user
	dup.ID = uuid.NewString()
	dup.Username = strings.ToUpper(user.Username)
	dup.Email = "other_" + user.Email
	if err := users.CreateUser(ctx, &dup); !errors.Is(err, auth.ErrUserExists) {
		t.Fatalf("expected duplicate username error, got %v", err)
	}

	dup.Username = "other_" + suffix
	dup.Email = strings.ToUpper(user.Email)
	if err := users.CreateUser(ctx, &dup); !errors.Is(err, auth.ErrEmailExists) {
		t.Fatalf("expected duplicate email error, got %v", err)
	}

	found, err := users.FindUser(ctx, user.Email)
	if err != nil {
		t.Fatalf("find user by email failed: %v", err)
	}
	if found.ID != user.ID {
		t.Fatalf("expected user %s, got %s", user.ID, found.ID)
	}
}

func TestPostgresSessionsUpsert(t *testing.T) {
	store := connectPostgres(t)
	sessionStore := db.NewPostgresSessions(store)
	ctx := context.Background()

	userID := "user-" + uuid.NewString()
	t.Cleanup(func() { store.Pool.Exec(context.Background(), "DELETE FROM session_hist WHERE user_id = $1", userID) })

	if _, err := sessionStore.LoadSessions(ctx, userID); !errors.Is(err, db.ErrNotFound) {
		t.Fatalf("expected not found before first save, got %v", err)
	}

	first, err := sessionStore.SaveSessions(ctx, userID, []models.Session{{ID: "a"}})
	if err != nil {
		t.Fatalf("save sessions failed: %v", err)
	}

	second, err := sessionStore.SaveSessions(ctx, userID, []models.Session{{ID: "a"}, {ID: "b"}})
	if err != nil {
		t.Fatalf("second save failed: %v", err)
	}
	if !second.CreatedAt.Equal(first.CreatedAt) {
		t.Fatalf("expected created_at to be preserved on update")
	}

	loaded, err := sessionStore.LoadSessions(ctx, userID)
	if err != nil {
		t.Fatalf("load sessions failed: %v", err)
	}
	sessions, err := loaded.Sessions()
	if err != nil {
		t.Fatalf("decode sessions failed: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(sessions))
	}
}

func TestPostgresQuestionsAndMigratedData(t *testing.T) {
	store := connectPostgres(t)
	ctx := context.Background()

	text := "What finish should I use on a cutting board? " + uuid.NewString()
	t.Cleanup(func() { store.Pool.Exec(context.Background(), "DELETE FROM questions WHERE question_text = $1", text) })

	inserted, err := store.SeedQuestions(ctx, []string{text, text})
	if err != nil {
		t.Fatalf("seed questions failed: %v", err)
	}
	if inserted != 1 {
		t.Fatalf("expected 1 inserted question, got %d", inserted)
	}

	questions, err := store.RandomQuestions(ctx, 10)
	if err != nil {
		t.Fatalf("random questions failed: %v", err)
	}
	if len(questions) == 0 || len(questions) > 10 {
		t.Fatalf("unexpected question count %d", len(questions))
	}

	if _, err := store.MigratedData(ctx); err != nil {
		t.Fatalf("migrated data failed: %v", err)
	}
}
