package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/bentswoodworking/bents-api/internal/auth"
	"github.com/bentswoodworking/bents-api/internal/models"
)

const (
	usernameIndex = "users_username_lower_key"
	emailIndex    = "users_email_lower_key"

	userColumns = "id, username, email, password_hash, profile, created_at, updated_at"
)

// Users adapts the users table to auth.UserStore.
type Users struct {
	pg *Postgres
}

func NewUsers(pg *Postgres) *Users {
	return &Users{pg: pg}
}

func (u *Users) CreateUser(ctx context.Context, user *models.User) error {
	profile := user.Profile
	if len(profile) == 0 {
		profile = json.RawMessage(`{}`)
	}

	const query = "INSERT INTO users (" + userColumns + ") VALUES ($1, $2, $3, $4, $5, $6, $7)"
	_, err := u.pg.Pool.Exec(ctx, query,
		user.ID, user.Username, user.Email, user.PasswordHash, []byte(profile), user.CreatedAt, user.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			if pgErr.ConstraintName == emailIndex {
				return auth.ErrEmailExists
			}
			return auth.ErrUserExists
		}
		return fmt.Errorf("postgres: insert user: %w", err)
	}

	return nil
}

// FindUser looks a user up by username or email, ignoring case.
func (u *Users) FindUser(ctx context.Context, identifier string) (*models.User, error) {
	key := strings.ToLower(strings.TrimSpace(identifier))
	const query = "SELECT " + userColumns + " FROM users WHERE LOWER(username) = $1 OR (email <> '' AND LOWER(email) = $1) ORDER BY LOWER(username) = $1 DESC LIMIT 1"

	rows, err := u.pg.Pool.Query(ctx, query, key)
	if err != nil {
		return nil, fmt.Errorf("postgres: find user: %w", err)
	}

	user, err := pgx.CollectExactlyOneRow(rows, scanUser)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, auth.ErrUserNotFound
		}
		return nil, fmt.Errorf("postgres: find user: %w", err)
	}

	return &user, nil
}

func (u *Users) TouchUser(ctx context.Context, id string, at time.Time) error {
	if _, err := u.pg.Pool.Exec(ctx, "UPDATE users SET updated_at = $2 WHERE id = $1", id, at); err != nil {
		return fmt.Errorf("postgres: touch user: %w", err)
	}
	return nil
}

func (u *Users) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := u.pg.Pool.Query(ctx, "SELECT "+userColumns+" FROM users ORDER BY created_at")
	if err != nil {
		return nil, fmt.Errorf("postgres: list users: %w", err)
	}

	users, err := pgx.CollectRows(rows, scanUser)
	if err != nil {
		return nil, fmt.Errorf("postgres: scan users: %w", err)
	}

	return users, nil
}

func scanUser(row pgx.CollectableRow) (models.User, error) {
	var (
		user    models.User
		profile []byte
	)
	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &profile, &user.CreatedAt, &user.UpdatedAt)
	user.Profile = json.RawMessage(profile)
	return user, err
}
