package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/chatinsight/core/internal/models"
	"github.com/chatinsight/core/internal/pkg/jwt"
	"github.com/chatinsight/core/internal/pkg/response"
	"github.com/chatinsight/core/internal/store"
)

const (
	ContextKeyUserID = "user_id"
	ContextKeyRole   = "role"
	apiKeyHeader     = "X-API-Key"
)

// Auth accepts either an X-API-Key header resolved against the user store or
// a bearer access token issued by signer.
func Auth(users store.UserStore, signer *jwt.Signer, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if key := strings.TrimSpace(c.GetHeader(apiKeyHeader)); key != "" {
			user, err := users.GetUserByAPIKey(c.Request.Context(), key)
			if err != nil {
				if errors.Is(err, store.ErrNotFound) {
					response.Unauthorized(c, "Invalid API key")
					return
				}
				log.Error("api key lookup failed", zap.Error(err))
				response.InternalError(c, err)
				return
			}
			setIdentity(c, user.ID, user.Role)
			c.Next()
			return
		}

		token := NormalizeToken(c.GetHeader("Authorization"))
		if token == "" || signer == nil {
			response.Unauthorized(c, "API key required")
			return
		}
		claims, err := signer.Parse(token)
		if err != nil {
			response.Unauthorized(c, "Invalid access token")
			return
		}
		setIdentity(c, claims.UserID, models.Role(claims.Role))
		c.Next()
	}
}

func setIdentity(c *gin.Context, userID string, role models.Role) {
	c.Set(ContextKeyUserID, userID)
	c.Set(ContextKeyRole, role)
}

// CurrentUserID extracts the authenticated user ID from context.
func CurrentUserID(c *gin.Context) string {
	v, _ := c.Get(ContextKeyUserID)
	id, _ := v.(string)
	return id
}

// CurrentRole returns the role of the authenticated user.
func CurrentRole(c *gin.Context) models.Role {
	v, _ := c.Get(ContextKeyRole)
	role, _ := v.(models.Role)
	return role
}

func IsAdmin(c *gin.Context) bool {
	return CurrentRole(c) == models.RoleAdmin
}

// NormalizeToken trims spaces and strips optional Bearer prefix.
func NormalizeToken(raw string) string {
	token := strings.TrimSpace(raw)
	if token == "" {
		return ""
	}
	if strings.HasPrefix(strings.ToLower(token), "bearer ") {
		return strings.TrimSpace(token[7:])
	}
	return token
}
