package models

import (
	"errors"
	"strings"
	"time"
)

// UserType identifies who wrote a chat message.
type UserType string

const (
	UserTypeCustomer     UserType = "customer"
	UserTypeSupportAgent UserType = "support_agent"
)

func (t UserType) Valid() bool {
	return t == UserTypeCustomer || t == UserTypeSupportAgent
}

// ParseUserType accepts the two known user types, case-insensitively.
func ParseUserType(raw string) (UserType, bool) {
	t := UserType(strings.ToLower(strings.TrimSpace(raw)))
	return t, t.Valid()
}

// ChatMessage is one turn of a support conversation. Messages are immutable
// once stored and are only removed together with their conversation.
type ChatMessage struct {
	ID             uint      `json:"-"               bson:"-"               gorm:"primaryKey;autoIncrement"`
	ConversationID string    `json:"conversation_id" bson:"conversation_id" gorm:"size:191;not null;index;uniqueIndex:idx_chat_messages_conversation_message,priority:1"`
	MessageID      string    `json:"message_id"      bson:"message_id"      gorm:"size:191;not null;uniqueIndex:idx_chat_messages_conversation_message,priority:2"`
	MessageContent string    `json:"message_content" bson:"message_content" gorm:"type:text;not null"`
	UserID         string    `json:"user_id"         bson:"user_id"         gorm:"size:191;not null;index"`
	UserType       UserType  `json:"user_type"       bson:"user_type"       gorm:"size:32;not null"`
	Timestamp      time.Time `json:"timestamp"       bson:"timestamp"       gorm:"not null;index"`
}

func (ChatMessage) TableName() string { return "chat_messages" }

// Validate checks the fields a caller must supply.
func (m *ChatMessage) Validate() error {
	switch {
	case strings.TrimSpace(m.ConversationID) == "":
		return errors.New("conversation_id is required")
	case strings.TrimSpace(m.MessageContent) == "":
		return errors.New("message_content is required")
	case strings.TrimSpace(m.UserID) == "":
		return errors.New("user_id is required")
	case !m.UserType.Valid():
		return errors.New("user_type must be customer or support_agent")
	}
	return nil
}

// ConversationPreview is one row of a user's conversation listing.
type ConversationPreview struct {
	ConversationID string       `json:"conversation_id"`
	LastMessage    *ChatMessage `json:"last_message"`
	MessageCount   int64        `json:"message_count"`
}
