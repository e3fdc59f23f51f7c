package insight

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/chatinsight/core/internal/models"
	"github.com/chatinsight/core/internal/pkg/response"
)

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
	g.POST("/summarize", h.summarize)
	g.POST("/insights", h.insights)
	g.GET("/:conversation_id/summary", h.getSummary)
}

type summarizeDTO struct {
	ConversationID string `json:"conversation_id" binding:"required"`
}

// POST /chats/summarize?provider=...
func (h *Handler) summarize(c *gin.Context) {
	var dto summarizeDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	summary, err := h.svc.Summarize(c.Request.Context(), dto.ConversationID, c.Query("provider"))
	if err != nil {
		if errors.Is(err, ErrConversationNotFound) {
			response.NotFound(c, fmt.Sprintf("Conversation %s not found", dto.ConversationID))
			return
		}
		h.log.Error("summarize failed", zap.String("conversation_id", dto.ConversationID), zap.Error(err))
		response.InternalError(c, err)
		return
	}
	response.OK(c, summary)
}

// GET /chats/:conversation_id/summary
func (h *Handler) getSummary(c *gin.Context) {
	conversationID := c.Param("conversation_id")
	summary, err := h.svc.GetSummary(c.Request.Context(), conversationID)
	if err != nil {
		if errors.Is(err, ErrSummaryNotFound) {
			response.NotFound(c, fmt.Sprintf("Summary for conversation %s not found", conversationID))
			return
		}
		response.InternalError(c, err)
		return
	}
	response.OK(c, summary)
}

// POST /chats/insights?provider=...
func (h *Handler) insights(c *gin.Context) {
	var msgs []models.ChatMessage
	if err := c.ShouldBindJSON(&msgs); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	for i := range msgs {
		if err := msgs[i].Validate(); err != nil {
			response.BadRequest(c, fmt.Sprintf("message %d: %s", i, err.Error()))
			return
		}
	}

	out, err := h.svc.GenerateInsights(c.Request.Context(), msgs, c.Query("provider"))
	if err != nil {
		if errors.Is(err, ErrNoMessages) {
			response.BadRequest(c, "No messages provided")
			return
		}
		response.InternalError(c, err)
		return
	}
	response.OK(c, out)
}
