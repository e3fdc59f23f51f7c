package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/chatinsight/core/internal/models"
	"github.com/chatinsight/core/internal/store"
)

var (
	ErrConversationNotFound = errors.New("conversation not found")
	ErrInvalidMessage       = errors.New("invalid message")
	ErrDuplicateMessage     = errors.New("message already exists in conversation")
)

// Service stores and reads chat messages.
type Service struct {
	messages store.MessageStore
	now      func() time.Time
}

func NewService(messages store.MessageStore) *Service {
	return &Service{messages: messages, now: func() time.Time { return time.Now().UTC() }}
}

// CreateMessage validates and stores one message. A missing message id is
// generated and a missing timestamp is set to now.
func (s *Service) CreateMessage(ctx context.Context, msg *models.ChatMessage) error {
	msg.ConversationID = strings.TrimSpace(msg.ConversationID)
	msg.MessageID = strings.TrimSpace(msg.MessageID)
	if err := msg.Validate(); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidMessage, err.Error())
	}
	if msg.MessageID == "" {
		msg.MessageID = uuid.NewString()
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = s.now()
	}

	if err := s.messages.InsertMessage(ctx, msg); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return ErrDuplicateMessage
		}
		return err
	}
	return nil
}

// Conversation returns one window of a conversation in timestamp order.
func (s *Service) Conversation(ctx context.Context, conversationID string, skip, limit int) ([]models.ChatMessage, error) {
	msgs, err := s.messages.ListMessages(ctx, conversationID, skip, limit)
	if err != nil {
		return nil, err
	}
	if len(msgs) == 0 {
		return nil, ErrConversationNotFound
	}
	return msgs, nil
}

// DeleteConversation removes a conversation's messages and its summary.
func (s *Service) DeleteConversation(ctx context.Context, conversationID string) error {
	deleted, err := s.messages.DeleteConversation(ctx, conversationID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrConversationNotFound
	}
	return nil
}
