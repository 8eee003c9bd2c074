package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/voicetranslatorpro/voice-translator-pro/internal/adapters/http/dto"
	"github.com/voicetranslatorpro/voice-translator-pro/internal/app"
	"github.com/voicetranslatorpro/voice-translator-pro/internal/domain"
)

// ConversationHandler serves multi-turn conversations and the single-shot
// session endpoint.
type ConversationHandler struct {
	svc *app.ConversationService
}

// NewConversationHandler creates the handler.
func NewConversationHandler(svc *app.ConversationService) *ConversationHandler {
	return &ConversationHandler{svc: svc}
}

// Start handles POST /api/v1/conversations.
func (h *ConversationHandler) Start(c *gin.Context) {
	var req dto.StartConversationRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.HandleError(c, err)
		return
	}

	mode, err := domain.ParseConversationMode(req.Mode)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	conv, err := h.svc.Start(c.Request.Context(), req.Participant1Language, req.Participant2Language, mode)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ConversationResponse{Meta: dto.OK(), Conversation: conv})
}

// List handles GET /api/v1/conversations.
func (h *ConversationHandler) List(c *gin.Context) {
	convs, err := h.svc.List(c.Request.Context())
	if err != nil {
		dto.HandleError(c, err)
		return
	}
	if convs == nil {
		convs = []domain.Conversation{}
	}

	c.JSON(http.StatusOK, dto.ConversationsResponse{Meta: dto.OK(), Conversations: convs, Count: len(convs)})
}

// Get handles GET /api/v1/conversations/:id.
func (h *ConversationHandler) Get(c *gin.Context) {
	h.withConversation(c, h.svc.Get, http.StatusOK)
}

// Pause handles POST /api/v1/conversations/:id/pause.
func (h *ConversationHandler) Pause(c *gin.Context) {
	h.withConversation(c, h.svc.Pause, http.StatusOK)
}

// Resume handles POST /api/v1/conversations/:id/resume.
func (h *ConversationHandler) Resume(c *gin.Context) {
	h.withConversation(c, h.svc.Resume, http.StatusOK)
}

// End handles POST /api/v1/conversations/:id/end.
func (h *ConversationHandler) End(c *gin.Context) {
	h.withConversation(c, h.svc.End, http.StatusOK)
}

// Delete handles DELETE /api/v1/conversations/:id.
func (h *ConversationHandler) Delete(c *gin.Context) {
	id, ok := conversationID(c)
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		dto.HandleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// AddMessage handles POST /api/v1/conversations/:id/messages.
func (h *ConversationHandler) AddMessage(c *gin.Context) {
	id, ok := conversationID(c)
	if !ok {
		return
	}

	var req dto.AddMessageRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.HandleError(c, err)
		return
	}

	msg, err := h.svc.AddMessage(c.Request.Context(), id, req.Participant, req.Text)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.MessageResponse{Meta: dto.OK(), ConversationID: id, Message: msg})
}

// Converse handles the single-shot POST /api/v1/conversation.
func (h *ConversationHandler) Converse(c *gin.Context) {
	var req dto.SessionRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.HandleError(c, err)
		return
	}

	reply, err := h.svc.Converse(c.Request.Context(), req.Domain())
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewSessionResponse(reply))
}

func (h *ConversationHandler) withConversation(
	c *gin.Context,
	op func(ctx context.Context, id string) (*domain.Conversation, error),
	status int,
) {
	id, ok := conversationID(c)
	if !ok {
		return
	}

	conv, err := op(c.Request.Context(), id)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(status, dto.ConversationResponse{Meta: dto.OK(), Conversation: conv})
}

func conversationID(c *gin.Context) (string, bool) {
	var uri dto.ConversationURI
	if err := c.ShouldBindUri(&uri); err != nil {
		dto.HandleError(c, fmt.Errorf("%w: %w", dto.ErrBinding, err))
		return "", false
	}
	if err := dto.Validate(&uri); err != nil {
		dto.HandleError(c, err)
		return "", false
	}

	return uri.ID, true
}
