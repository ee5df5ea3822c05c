package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/bentswoodworking/bents-api/internal/models"
)

var (
	ErrSecretRequired     = errors.New("auth: jwt secret required")
	ErrUserExists         = errors.New("auth: user already exists")
	ErrEmailExists        = errors.New("auth: email already registered")
	ErrUserNotFound       = errors.New("auth: user not found")
	ErrUsernameRequired   = errors.New("auth: username is required")
	ErrPasswordTooWeak    = errors.New("auth: password must be at least 6 characters")
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	ErrInvalidToken       = errors.New("auth: invalid token")
)

// UserStore persists users. CreateUser reports ErrUserExists or
// ErrEmailExists on conflicts; FindUser matches username or email without
// regard to case and returns ErrUserNotFound when nothing matches.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	FindUser(ctx context.Context, identifier string) (*models.User, error)
	TouchUser(ctx context.Context, id string, at time.Time) error
	ListUsers(ctx context.Context) ([]models.User, error)
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
}

type LoginInput struct {
	Identifier string
	Password   string
}

type AuthResult struct {
	Token     string
	ExpiresAt time.Time
	User      models.User
}

type Service struct {
	secret []byte
	ttl    time.Duration
	users  UserStore
}

// NewService builds the auth service. A nil store keeps users in memory.
func NewService(secret string, ttl time.Duration, users UserStore) (*Service, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, ErrSecretRequired
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if users == nil {
		users = NewMemoryUserStore()
	}

	return &Service{
		secret: []byte(secret),
		ttl:    ttl,
		users:  users,
	}, nil
}

func (s *Service) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" {
		return nil, ErrUsernameRequired
	}
	if len(strings.TrimSpace(input.Password)) < 6 {
		return nil, ErrPasswordTooWeak
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &models.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        strings.TrimSpace(input.Email),
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	return s.issue(user)
}

func (s *Service) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	identifier := strings.TrimSpace(input.Identifier)
	if identifier == "" || strings.TrimSpace(input.Password) == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.FindUser(ctx, identifier)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	user.UpdatedAt = time.Now().UTC()
	if err := s.users.TouchUser(ctx, user.ID, user.UpdatedAt); err != nil {
		return nil, err
	}

	return s.issue(user)
}

// Users lists every account with password hashes stripped.
func (s *Service) Users(ctx context.Context) ([]models.User, error) {
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, err
	}

	sanitized := make([]models.User, 0, len(users))
	for _, user := range users {
		sanitized = append(sanitized, user.Sanitize())
	}
	return sanitized, nil
}

func (s *Service) VerifyToken(token string) (*jwt.RegisteredClaims, error) {
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

func (s *Service) issue(user *models.User) (*AuthResult, error) {
	token, expiresAt, err := s.generateToken(user)
	if err != nil {
		return nil, err
	}

	return &AuthResult{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      user.Sanitize(),
	}, nil
}

func (s *Service) generateToken(user *models.User) (string, time.Time, error) {
	expiresAt := time.Now().UTC().Add(s.ttl)
	claims := jwt.RegisteredClaims{
		Subject:   user.ID,
		IssuedAt:  jwt.NewNumericDate(time.Now().UTC()),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}

	return signed, expiresAt, nil
}
