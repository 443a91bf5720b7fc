package handlers

import (
	"net/http"

	"github.com/anonto42/moments/backend/internal/ai"
	"github.com/anonto42/moments/backend/internal/models"
	"github.com/labstack/echo/v4"
)

// AIHandler serves generated suggestions. Generation failures never surface:
// the suggester falls back to fixed suggestions.
type AIHandler struct {
	suggester *ai.Suggester
}

func NewAIHandler(suggester *ai.Suggester) *AIHandler {
	return &AIHandler{suggester: suggester}
}

func (h *AIHandler) RegisterAIRoutes(g *echo.Group) {
	g.POST("/ai/meetups", h.SuggestMeetups)
	g.POST("/ai/caption", h.GenerateCaption)
	g.POST("/ai/replies", h.MagicReplies)
}

func (h *AIHandler) SuggestMeetups(c echo.Context) error {
	var req models.MeetupRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if req.ContentType == "" {
		req.ContentType = models.PostTypeImage
	}
	ideas := h.suggester.SuggestMeetupIdeas(c.Request().Context(), req.Caption, req.ContentType)
	return success(c, http.StatusOK, echo.Map{"ideas": ideas})
}

func (h *AIHandler) GenerateCaption(c echo.Context) error {
	var req models.CaptionRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	caption := h.suggester.GenerateCaption(c.Request().Context(), req.Description)
	return success(c, http.StatusOK, echo.Map{"caption": caption})
}

func (h *AIHandler) MagicReplies(c echo.Context) error {
	var req models.MagicReplyRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	replies := h.suggester.MagicReplies(c.Request().Context(), req.LastMessage, req.Context)
	return success(c, http.StatusOK, echo.Map{"replies": replies})
}
