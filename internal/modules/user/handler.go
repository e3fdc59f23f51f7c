package user

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/chatinsight/core/internal/middleware"
	"github.com/chatinsight/core/internal/pkg/pagination"
	"github.com/chatinsight/core/internal/pkg/response"
)

var conversationBounds = pagination.Bounds{DefaultLimit: 10, MaxLimit: 50}

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	rg.GET("/users/:user_id/chats", authMW, h.conversations)
	rg.POST("/auth/token", h.token)
}

// GET /users/:user_id/chats?page=&limit=
func (h *Handler) conversations(c *gin.Context) {
	q, err := pagination.PageFromContext(c, conversationBounds)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	items, total, err := h.svc.Conversations(c.Request.Context(),
		middleware.CurrentUserID(c), middleware.IsAdmin(c), c.Param("user_id"), q.Page, q.Limit)
	if err != nil {
		if errors.Is(err, ErrForbidden) {
			response.Forbidden(c, "Not authorized to access this user's conversations")
			return
		}
		response.InternalError(c, err)
		return
	}
	response.Paged(c, "conversations", items, response.NewPagination(total, q.Page, q.Limit))
}

type tokenDTO struct {
	APIKey string `json:"api_key"`
}

// POST /auth/token
// The key is read from X-API-Key or the JSON body.
func (h *Handler) token(c *gin.Context) {
	key := c.GetHeader("X-API-Key")
	if key == "" {
		var dto tokenDTO
		if err := c.ShouldBindJSON(&dto); err != nil {
			response.BadRequest(c, err.Error())
			return
		}
		key = dto.APIKey
	}
	if key == "" {
		response.Unauthorized(c, "API key required")
		return
	}

	tok, err := h.svc.IssueToken(c.Request.Context(), key)
	if err != nil {
		if errors.Is(err, ErrInvalidAPIKey) {
			response.Unauthorized(c, "Invalid API key")
			return
		}
		response.InternalError(c, err)
		return
	}
	response.OK(c, tok)
}
