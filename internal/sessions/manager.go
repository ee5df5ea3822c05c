// Package sessions keeps the chat session bookkeeping: which session is
// active, how new exchanges are appended, how a client's local copy is
// merged with the stored one, and what the sidebar shows.
package sessions

import (
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bentswoodworking/bents-api/internal/models"
)

var ErrSessionNotFound = errors.New("sessions: session not found")

const emptySessionTitle = "Empty session"

// Manager tracks an ordered session list and the id of the current session.
// It is not safe for concurrent use; callers load, mutate and save per request.
type Manager struct {
	sessions []models.Session
	current  string

	newID func() string
	now   func() time.Time
}

type Option func(*Manager)

func WithIDGenerator(fn func() string) Option {
	return func(m *Manager) { m.newID = fn }
}

func WithClock(fn func() time.Time) Option {
	return func(m *Manager) { m.now = fn }
}

func NewManager(list []models.Session, opts ...Option) *Manager {
	m := &Manager{
		sessions: Clean(list),
		newID:    uuid.NewString,
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) Sessions() []models.Session {
	return m.sessions
}

func (m *Manager) CurrentID() string {
	return m.current
}

// Current returns the active session, or nil before activation.
func (m *Manager) Current() *models.Session {
	if i := m.indexOf(m.current); i >= 0 {
		return &m.sessions[i]
	}
	return nil
}

// Activate picks the session a freshly opened chat works in: the trailing
// session if it is still empty, otherwise a newly appended one.
func (m *Manager) Activate() models.Session {
	if n := len(m.sessions); n > 0 && len(m.sessions[n-1].Conversations) == 0 {
		m.current = m.sessions[n-1].ID
		return m.sessions[n-1]
	}
	return m.StartNew()
}

// StartNew appends an empty session and makes it current.
func (m *Manager) StartNew() models.Session {
	session := models.Session{ID: m.newID(), Conversations: []models.Conversation{}}
	m.sessions = append(m.sessions, session)
	m.current = session.ID
	return session
}

func (m *Manager) Select(id string) error {
	if m.indexOf(id) < 0 {
		return ErrSessionNotFound
	}
	m.current = id
	return nil
}

// Append adds conv to the current session, stamping it when it has no timestamp.
func (m *Manager) Append(conv models.Conversation) (models.Conversation, error) {
	i := m.indexOf(m.current)
	if i < 0 {
		return models.Conversation{}, ErrSessionNotFound
	}
	if conv.Timestamp == "" {
		conv.Timestamp = m.now().Format(time.RFC3339Nano)
	}
	conv = cleanConversation(conv)
	m.sessions[i].Conversations = append(m.sessions[i].Conversations, conv)
	return conv, nil
}

// ChatHistory flattens the current session into the alternating
// question/answer list the LLM backend expects.
func (m *Manager) ChatHistory() []string {
	current := m.Current()
	if current == nil {
		return []string{}
	}
	return ChatHistory(current.Conversations)
}

func (m *Manager) indexOf(id string) int {
	if id == "" {
		return -1
	}
	for i := range m.sessions {
		if m.sessions[i].ID == id {
			return i
		}
	}
	return -1
}

func ChatHistory(conversations []models.Conversation) []string {
	history := make([]string, 0, 2*len(conversations))
	for _, conv := range conversations {
		answer := conv.InitialAnswer
		if answer == "" {
			answer = conv.Text
		}
		history = append(history, conv.Question, answer)
	}
	return history
}

// Clean fills the defaults every stored conversation must carry.
func Clean(list []models.Session) []models.Session {
	cleaned := make([]models.Session, 0, len(list))
	for _, session := range list {
		convs := make([]models.Conversation, 0, len(session.Conversations))
		for _, conv := range session.Conversations {
			convs = append(convs, cleanConversation(conv))
		}
		cleaned = append(cleaned, models.Session{ID: session.ID, Conversations: convs})
	}
	return cleaned
}

func cleanConversation(conv models.Conversation) models.Conversation {
	if conv.Video == nil {
		conv.Video = []string{}
	}
	if conv.VideoLinks == nil {
		conv.VideoLinks = map[string]json.RawMessage{}
	}
	return conv
}

// Merge reconciles a client's local session list with the stored one.
// Sessions are matched by id; the copy with more conversations wins, then
// the one whose last exchange is newer, then the stored copy.
func Merge(stored, local []models.Session) []models.Session {
	localByID := make(map[string]models.Session, len(local))
	for _, s := range local {
		localByID[s.ID] = s
	}

	seen := make(map[string]struct{}, len(stored)+len(local))
	merged := make([]models.Session, 0, len(stored)+len(local))

	for _, s := range stored {
		if _, dup := seen[s.ID]; dup {
			continue
		}
		seen[s.ID] = struct{}{}
		if l, ok := localByID[s.ID]; ok && preferLocal(s, l) {
			merged = append(merged, l)
			continue
		}
		merged = append(merged, s)
	}

	for _, l := range local {
		if _, dup := seen[l.ID]; dup {
			continue
		}
		seen[l.ID] = struct{}{}
		merged = append(merged, l)
	}

	return Clean(merged)
}

func preferLocal(stored, local models.Session) bool {
	if len(local.Conversations) != len(stored.Conversations) {
		return len(local.Conversations) > len(stored.Conversations)
	}
	return local.LatestTime().After(stored.LatestTime())
}

// Summary is one sidebar entry. UpdatedAt is nil when no conversation
// carries a usable timestamp.
type Summary struct {
	ID                string     `json:"id"`
	Title             string     `json:"title"`
	ConversationCount int        `json:"conversationCount"`
	UpdatedAt         *time.Time `json:"updatedAt,omitempty"`
	VideoIDs          []string   `json:"videoIds"`
}

// Summaries lists sessions most recent first. Sessions without a usable
// timestamp sort last and keep their relative order.
func Summaries(list []models.Session) []Summary {
	summaries := make([]Summary, 0, len(list))
	for _, s := range list {
		summary := Summary{
			ID:                s.ID,
			Title:             Title(s),
			ConversationCount: len(s.Conversations),
			VideoIDs:          SessionVideoIDs(s),
		}
		if latest := s.LatestTime(); !latest.IsZero() {
			summary.UpdatedAt = &latest
		}
		summaries = append(summaries, summary)
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		a, b := summaries[i].UpdatedAt, summaries[j].UpdatedAt
		return a != nil && (b == nil || a.After(*b))
	})
	return summaries
}

func Title(s models.Session) string {
	if len(s.Conversations) == 0 {
		return emptySessionTitle
	}
	if q := strings.TrimSpace(s.Conversations[0].Question); q != "" {
		return q
	}
	return emptySessionTitle
}
