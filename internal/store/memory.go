package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/chatinsight/core/internal/models"
)

// Memory is a process-local Store for tests and the memory driver.
type Memory struct {
	mu        sync.RWMutex
	messages  map[string][]models.ChatMessage
	summaries map[string]models.ConversationSummary
	users     map[string]models.User
	nextID    uint
	now       func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		messages:  make(map[string][]models.ChatMessage),
		summaries: make(map[string]models.ConversationSummary),
		users:     make(map[string]models.User),
		now:       time.Now,
	}
}

func (m *Memory) InsertMessage(_ context.Context, msg *models.ChatMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.messages[msg.ConversationID] {
		if existing.MessageID == msg.MessageID {
			return ErrDuplicate
		}
	}
	m.nextID++
	msg.ID = m.nextID
	m.messages[msg.ConversationID] = append(m.messages[msg.ConversationID], *msg)
	return nil
}

func (m *Memory) ListMessages(_ context.Context, conversationID string, skip, limit int) ([]models.ChatMessage, error) {
	m.mu.RLock()
	msgs := append([]models.ChatMessage(nil), m.messages[conversationID]...)
	m.mu.RUnlock()

	sort.SliceStable(msgs, func(i, j int) bool { return msgs[i].Timestamp.Before(msgs[j].Timestamp) })
	return window(msgs, skip, limit), nil
}

func (m *Memory) CountMessages(_ context.Context, conversationID string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.messages[conversationID])), nil
}

func (m *Memory) ListUserConversations(_ context.Context, userID string, page, limit int) ([]models.ConversationPreview, int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0)
	for id, msgs := range m.messages {
		for _, msg := range msgs {
			if msg.UserID == userID {
				ids = append(ids, id)
				break
			}
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(ids)))
	total := int64(len(ids))

	ids = window(ids, offsetFor(page, limit), limit)
	out := make([]models.ConversationPreview, 0, len(ids))
	for _, id := range ids {
		msgs := m.messages[id]
		last := msgs[0]
		for _, msg := range msgs[1:] {
			if !msg.Timestamp.Before(last.Timestamp) {
				last = msg
			}
		}
		out = append(out, models.ConversationPreview{
			ConversationID: id,
			LastMessage:    &last,
			MessageCount:   int64(len(msgs)),
		})
	}
	return out, total, nil
}

func (m *Memory) DeleteConversation(_ context.Context, conversationID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, hadMessages := m.messages[conversationID]
	_, hadSummary := m.summaries[conversationID]
	delete(m.messages, conversationID)
	delete(m.summaries, conversationID)
	return hadMessages || hadSummary, nil
}

func (m *Memory) GetSummary(_ context.Context, conversationID string) (*models.ConversationSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.summaries[conversationID]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneSummary(s), nil
}

func (m *Memory) UpsertSummary(_ context.Context, summary *models.ConversationSummary) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.summaries[summary.ConversationID]; ok {
		summary.CreatedAt = existing.CreatedAt
	}
	m.summaries[summary.ConversationID] = *cloneSummary(*summary)
	return nil
}

// cloneSummary copies s so callers never share list storage with the map.
func cloneSummary(s models.ConversationSummary) *models.ConversationSummary {
	s.ActionItems = s.ActionItems.Strings()
	s.Decisions = s.Decisions.Strings()
	s.Questions = s.Questions.Strings()
	s.Keywords = s.Keywords.Strings()
	return &s
}

func (m *Memory) CreateUser(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.APIKey == user.APIKey || u.Email == user.Email {
			return ErrDuplicate
		}
	}
	user.EnsureID()
	now := m.now()
	user.CreatedAt, user.UpdatedAt = now, now
	if user.Role == "" {
		user.Role = models.RoleUser
	}
	m.users[user.ID] = *user
	return nil
}

func (m *Memory) GetUserByAPIKey(_ context.Context, apiKey string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, u := range m.users {
		if apiKey != "" && u.APIKey == apiKey {
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) GetUser(_ context.Context, id string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (m *Memory) TouchLastLogin(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return ErrNotFound
	}
	now := m.now()
	u.LastLogin = &now
	m.users[id] = u
	return nil
}

func (m *Memory) Ping(context.Context) error { return nil }

func (m *Memory) Close(context.Context) error { return nil }

func window[T any](items []T, skip, limit int) []T {
	if skip < 0 {
		skip = 0
	}
	if skip >= len(items) {
		return []T{}
	}
	items = items[skip:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
