package chat

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/chatinsight/core/internal/models"
	"github.com/chatinsight/core/internal/pkg/pagination"
	"github.com/chatinsight/core/internal/pkg/response"
)

var conversationBounds = pagination.Bounds{DefaultLimit: 50, MaxLimit: 100}

type Handler struct {
	svc *Service
	log *zap.Logger
}

func NewHandler(svc *Service, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{svc: svc, log: log}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/chats", authMW)
	g.POST("", h.create)
	g.GET("/:conversation_id", h.get)
	g.DELETE("/:conversation_id", h.delete)
}

// POST /chats
func (h *Handler) create(c *gin.Context) {
	var msg models.ChatMessage
	if err := c.ShouldBindJSON(&msg); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if err := h.svc.CreateMessage(c.Request.Context(), &msg); err != nil {
		switch {
		case errors.Is(err, ErrDuplicateMessage):
			response.Conflict(c, fmt.Sprintf("Message %s already exists in conversation %s", msg.MessageID, msg.ConversationID))
		case errors.Is(err, ErrInvalidMessage):
			response.BadRequest(c, err.Error())
		default:
			h.log.Error("store message failed", zap.String("conversation_id", msg.ConversationID), zap.Error(err))
			response.InternalError(c, err)
		}
		return
	}
	response.Created(c, msg)
}

// GET /chats/:conversation_id?skip=&limit=
func (h *Handler) get(c *gin.Context) {
	win, err := pagination.WindowFromContext(c, conversationBounds)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	conversationID := c.Param("conversation_id")
	msgs, err := h.svc.Conversation(c.Request.Context(), conversationID, win.Skip, win.Limit)
	if err != nil {
		if errors.Is(err, ErrConversationNotFound) {
			response.NotFound(c, fmt.Sprintf("Conversation %s not found", conversationID))
			return
		}
		response.InternalError(c, err)
		return
	}
	response.OK(c, msgs)
}

// DELETE /chats/:conversation_id
func (h *Handler) delete(c *gin.Context) {
	conversationID := c.Param("conversation_id")
	if err := h.svc.DeleteConversation(c.Request.Context(), conversationID); err != nil {
		if errors.Is(err, ErrConversationNotFound) {
			response.NotFound(c, fmt.Sprintf("Conversation %s not found", conversationID))
			return
		}
		response.InternalError(c, err)
		return
	}
	response.NoContent(c)
}
