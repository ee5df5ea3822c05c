package auth

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bentswoodworking/bents-api/internal/models"
)

// MemoryUserStore keeps users in process, keyed by lower-cased username
// and email.
type MemoryUserStore struct {
	mu           sync.RWMutex
	usersByName  map[string]*models.User
	usersByEmail map[string]*models.User
}

func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{
		usersByName:  make(map[string]*models.User),
		usersByEmail: make(map[string]*models.User),
	}
}

func (m *MemoryUserStore) CreateUser(_ context.Context, user *models.User) error {
	usernameKey := strings.ToLower(user.Username)
	emailKey := normalizeEmail(user.Email)

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.usersByName[usernameKey]; exists {
		return ErrUserExists
	}
	if emailKey != "" {
		if _, exists := m.usersByEmail[emailKey]; exists {
			return ErrEmailExists
		}
	}

	stored := *user
	m.usersByName[usernameKey] = &stored
	if emailKey != "" {
		m.usersByEmail[emailKey] = &stored
	}
	return nil
}

func (m *MemoryUserStore) FindUser(_ context.Context, identifier string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if user, ok := m.usersByName[strings.ToLower(strings.TrimSpace(identifier))]; ok {
		copied := *user
		return &copied, nil
	}
	if user, ok := m.usersByEmail[normalizeEmail(identifier)]; ok {
		copied := *user
		return &copied, nil
	}
	return nil, ErrUserNotFound
}

func (m *MemoryUserStore) TouchUser(_ context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, user := range m.usersByName {
		if user.ID == id {
			user.UpdatedAt = at
			return nil
		}
	}
	return ErrUserNotFound
}

func (m *MemoryUserStore) ListUsers(_ context.Context) ([]models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	users := make([]models.User, 0, len(m.usersByName))
	for _, user := range m.usersByName {
		users = append(users, *user)
	}
	sort.Slice(users, func(i, j int) bool {
		return users[i].CreatedAt.Before(users[j].CreatedAt)
	})
	return users, nil
}

func normalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}
