package user

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/chatinsight/core/internal/models"
	"github.com/chatinsight/core/internal/pkg/jwt"
	"github.com/chatinsight/core/internal/store"
)

const apiKeyLength = 32

const apiKeyAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

var (
	ErrForbidden     = errors.New("not allowed to read another user's conversations")
	ErrInvalidAPIKey = errors.New("invalid API key")
	ErrEmailRequired = errors.New("email is required")
	ErrEmailTaken    = errors.New("email or api key already registered")
)

// Service manages API consumers and their conversation listings.
type Service struct {
	users    store.UserStore
	messages store.MessageStore
	signer   *jwt.Signer
	tokenTTL time.Duration
}

func NewService(users store.UserStore, messages store.MessageStore, signer *jwt.Signer, tokenTTL time.Duration) *Service {
	return &Service{users: users, messages: messages, signer: signer, tokenTTL: tokenTTL}
}

// GenerateAPIKey returns a random alphanumeric key.
func GenerateAPIKey() (string, error) {
	var b strings.Builder
	b.Grow(apiKeyLength)
	size := big.NewInt(int64(len(apiKeyAlphabet)))
	for i := 0; i < apiKeyLength; i++ {
		n, err := rand.Int(rand.Reader, size)
		if err != nil {
			return "", err
		}
		b.WriteByte(apiKeyAlphabet[n.Int64()])
	}
	return b.String(), nil
}

// CreateUser registers a local user with a fresh API key.
func (s *Service) CreateUser(ctx context.Context, email, name string, role models.Role) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, ErrEmailRequired
	}
	if role == "" {
		role = models.RoleUser
	}
	key, err := GenerateAPIKey()
	if err != nil {
		return nil, fmt.Errorf("generate api key: %w", err)
	}

	u := &models.User{
		Email:        email,
		Name:         strings.TrimSpace(name),
		AuthProvider: models.AuthProviderLocal,
		APIKey:       key,
		Role:         role,
	}
	if err := s.users.CreateUser(ctx, u); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return u, nil
}

// Token is an issued access token.
type Token struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// IssueToken exchanges an API key for a bearer token and records the login.
func (s *Service) IssueToken(ctx context.Context, apiKey string) (*Token, error) {
	u, err := s.users.GetUserByAPIKey(ctx, strings.TrimSpace(apiKey))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidAPIKey
		}
		return nil, err
	}
	token, expires, err := s.signer.Sign(u.ID, string(u.Role), s.tokenTTL)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	if err := s.users.TouchLastLogin(ctx, u.ID); err != nil {
		return nil, fmt.Errorf("record login: %w", err)
	}
	return &Token{AccessToken: token, TokenType: "bearer", ExpiresAt: expires}, nil
}

// Conversations lists the conversations userID took part in. Callers that
// are not admins may only list their own.
func (s *Service) Conversations(ctx context.Context, callerID string, callerIsAdmin bool, userID string, page, limit int) ([]models.ConversationPreview, int64, error) {
	if userID == "me" {
		userID = callerID
	}
	if userID != callerID && !callerIsAdmin {
		return nil, 0, ErrForbidden
	}
	return s.messages.ListUserConversations(ctx, userID, page, limit)
}
