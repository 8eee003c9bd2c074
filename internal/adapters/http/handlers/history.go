package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/voicetranslatorpro/voice-translator-pro/internal/adapters/http/dto"
	"github.com/voicetranslatorpro/voice-translator-pro/internal/adapters/http/middleware"
	"github.com/voicetranslatorpro/voice-translator-pro/internal/app"
)

// HistoryHandler serves the translation history.
type HistoryHandler struct {
	svc *app.HistoryService
}

// NewHistoryHandler creates the handler.
func NewHistoryHandler(svc *app.HistoryService) *HistoryHandler {
	return &HistoryHandler{svc: svc}
}

// List handles GET /api/v1/translations. The caller's identity takes
// precedence over the userId query parameter.
func (h *HistoryHandler) List(c *gin.Context) {
	var q dto.HistoryQuery
	if err := dto.BindQueryAndValidate(c, &q); err != nil {
		dto.HandleError(c, err)
		return
	}

	cursor, err := q.HistoryCursor()
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	userID := middleware.UserID(c)
	if userID == "" {
		userID = q.UserID
	}

	limit := h.svc.Limit(q.Limit)

	page, err := h.svc.List(c.Request.Context(), userID, limit, cursor)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewHistoryResponse(page, limit))
}

// Save handles POST /api/v1/translations.
func (h *HistoryHandler) Save(c *gin.Context) {
	var req dto.SaveTranslationRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.HandleError(c, err)
		return
	}

	rec := req.Record(middleware.UserID(c))
	if err := h.svc.Save(c.Request.Context(), rec); err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.SaveTranslationResponse{Meta: dto.OK(), Translation: dto.NewHistoryRecord(rec)})
}
