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

// GroupHandler serves group conversations.
type GroupHandler struct {
	svc *app.GroupService
}

// NewGroupHandler creates the handler.
func NewGroupHandler(svc *app.GroupService) *GroupHandler {
	return &GroupHandler{svc: svc}
}

// Create handles POST /api/v1/groups.
func (h *GroupHandler) Create(c *gin.Context) {
	var req dto.CreateGroupRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.HandleError(c, err)
		return
	}

	g, err := h.svc.Create(c.Request.Context(), req.Domain())
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.GroupResponse{Meta: dto.OK(), Group: g})
}

// List handles GET /api/v1/groups.
func (h *GroupHandler) List(c *gin.Context) {
	groups, err := h.svc.List(c.Request.Context())
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.GroupsResponse{Meta: dto.OK(), Groups: groups, Count: len(groups)})
}

// Get handles GET /api/v1/groups/:id.
func (h *GroupHandler) Get(c *gin.Context) {
	id, ok := groupID(c)
	if !ok {
		return
	}

	g, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.GroupResponse{Meta: dto.OK(), Group: g})
}

// Delete handles DELETE /api/v1/groups/:id.
func (h *GroupHandler) Delete(c *gin.Context) {
	id, ok := groupID(c)
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		dto.HandleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Join handles POST /api/v1/groups/:id/join.
func (h *GroupHandler) Join(c *gin.Context) {
	var req dto.JoinGroupRequest
	h.withGroup(c, &req, func(ctx context.Context, id string) (*domain.Group, error) {
		return h.svc.Join(ctx, id, req.ParticipantID, req.Name, req.Language)
	})
}

// Leave handles POST /api/v1/groups/:id/leave.
func (h *GroupHandler) Leave(c *gin.Context) {
	var req dto.GroupMemberRequest
	h.withGroup(c, &req, func(ctx context.Context, id string) (*domain.Group, error) {
		return h.svc.Leave(ctx, id, req.ParticipantID)
	})
}

// End handles POST /api/v1/groups/:id/end.
func (h *GroupHandler) End(c *gin.Context) {
	var req dto.GroupMemberRequest
	h.withGroup(c, &req, func(ctx context.Context, id string) (*domain.Group, error) {
		return h.svc.End(ctx, id, req.ParticipantID)
	})
}

// UpdateSettings handles PATCH /api/v1/groups/:id/settings.
func (h *GroupHandler) UpdateSettings(c *gin.Context) {
	var req dto.GroupSettingsRequest
	h.withGroup(c, &req, func(ctx context.Context, id string) (*domain.Group, error) {
		return h.svc.UpdateSettings(ctx, id, req.ParticipantID, req.Domain())
	})
}

// Send handles POST /api/v1/groups/:id/messages.
func (h *GroupHandler) Send(c *gin.Context) {
	id, ok := groupID(c)
	if !ok {
		return
	}

	var req dto.SendGroupMessageRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.HandleError(c, err)
		return
	}

	msg, err := h.svc.Send(c.Request.Context(), id, req.SenderID, req.Text)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.GroupMessageResponse{Meta: dto.OK(), GroupID: id, Message: msg})
}

// withGroup binds the path id and body into req, then runs op.
func (h *GroupHandler) withGroup(c *gin.Context, req any, op func(ctx context.Context, id string) (*domain.Group, error)) {
	id, ok := groupID(c)
	if !ok {
		return
	}

	if err := dto.BindAndValidate(c, req); err != nil {
		dto.HandleError(c, err)
		return
	}

	g, err := op(c.Request.Context(), id)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.GroupResponse{Meta: dto.OK(), Group: g})
}

func groupID(c *gin.Context) (string, bool) {
	var uri dto.GroupURI
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
