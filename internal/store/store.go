// Package store persists chat messages, conversation summaries and users.
package store

import (
	"context"
	"errors"

	"github.com/chatinsight/core/internal/models"
)

var (
	// ErrNotFound is returned when a keyed lookup matches nothing.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when a message id is reused within a conversation.
	ErrDuplicate = errors.New("duplicate key")
)

// MessageStore holds chat messages grouped by conversation id.
type MessageStore interface {
	InsertMessage(ctx context.Context, msg *models.ChatMessage) error
	// ListMessages returns messages in timestamp order. A limit <= 0 means no limit.
	ListMessages(ctx context.Context, conversationID string, skip, limit int) ([]models.ChatMessage, error)
	CountMessages(ctx context.Context, conversationID string) (int64, error)
	// ListUserConversations returns one page of the user's conversations,
	// newest conversation id first, and the total number of conversations.
	ListUserConversations(ctx context.Context, userID string, page, limit int) ([]models.ConversationPreview, int64, error)
	// DeleteConversation removes the messages and the summary of a conversation.
	// It reports whether anything was removed.
	DeleteConversation(ctx context.Context, conversationID string) (bool, error)
}

// SummaryStore holds at most one summary per conversation id.
type SummaryStore interface {
	GetSummary(ctx context.Context, conversationID string) (*models.ConversationSummary, error)
	// UpsertSummary inserts or wholesale replaces the summary keyed by its
	// conversation id. An existing created_at is preserved.
	UpsertSummary(ctx context.Context, summary *models.ConversationSummary) error
}

// UserStore resolves API consumers.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByAPIKey(ctx context.Context, apiKey string) (*models.User, error)
	GetUser(ctx context.Context, id string) (*models.User, error)
	TouchLastLogin(ctx context.Context, id string) error
}

// Store is the full persistence surface used by the service.
type Store interface {
	MessageStore
	SummaryStore
	UserStore
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

func offsetFor(page, limit int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * limit
}

var (
	_ Store = (*Memory)(nil)
	_ Store = (*SQL)(nil)
	_ Store = (*Mongo)(nil)
)
