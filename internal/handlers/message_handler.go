package handlers

import (
	"net/http"

	"github.com/anonto42/moments/backend/internal/models"
	"github.com/anonto42/moments/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

const (
	conversationsLimit = 50
	messagesLimit      = 50
)

// MessageHandler handles direct messaging
type MessageHandler struct {
	messageRepository repositories.MessageRepository
	userRepository    repositories.UserRepository
	notifier          notifier
}

func NewMessageHandler(messageRepo repositories.MessageRepository, userRepo repositories.UserRepository, notifRepo repositories.NotificationRepository) *MessageHandler {
	return &MessageHandler{
		messageRepository: messageRepo,
		userRepository:    userRepo,
		notifier:          notifier{repo: notifRepo},
	}
}

// RegisterMessageRoutes registers conversation and message routes
func (h *MessageHandler) RegisterMessageRoutes(g *echo.Group) {
	g.POST("/conversations", h.StartConversation)
	g.GET("/conversations", h.ListConversations)
	g.GET("/conversations/:id/messages", h.ListMessages)
	g.POST("/conversations/:id/messages", h.SendMessage)
}

// StartConversation finds or creates the one-to-one conversation with a user
func (h *MessageHandler) StartConversation(c echo.Context) error {
	uid, err := requireUser(c)
	if err != nil {
		return err
	}

	var req models.StartConversationRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()

	if _, err := h.userRepository.GetProfile(ctx, req.ParticipantID); err != nil {
		return httpError(err)
	}
	conv, err := h.messageRepository.GetOrCreateConversation(ctx, uid, req.ParticipantID)
	if err != nil {
		return httpError(err)
	}
	return success(c, http.StatusOK, echo.Map{"conversation": conv})
}

func (h *MessageHandler) ListConversations(c echo.Context) error {
	uid, err := requireUser(c)
	if err != nil {
		return err
	}

	convs, err := h.messageRepository.ListConversations(c.Request().Context(), uid, queryInt(c, "limit", conversationsLimit, conversationsLimit))
	if err != nil {
		return httpError(err)
	}
	return success(c, http.StatusOK, echo.Map{"conversations": convs})
}

func (h *MessageHandler) ListMessages(c echo.Context) error {
	uid, err := requireUser(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	conv, err := h.messageRepository.GetConversation(ctx, c.Param("id"), uid)
	if err != nil {
		return httpError(err)
	}
	msgs, err := h.messageRepository.ListMessages(ctx, conv.ID, queryInt(c, "limit", messagesLimit, messagesLimit))
	if err != nil {
		return httpError(err)
	}
	return success(c, http.StatusOK, echo.Map{"messages": msgs})
}

// SendMessage appends a message and notifies the other participants
func (h *MessageHandler) SendMessage(c echo.Context) error {
	uid, err := requireUser(c)
	if err != nil {
		return err
	}

	var req models.SendMessageRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()

	conv, err := h.messageRepository.GetConversation(ctx, c.Param("id"), uid)
	if err != nil {
		return httpError(err)
	}

	msg := &models.Message{SenderID: uid, Text: req.Text}
	if err := h.messageRepository.SendMessage(ctx, conv.ID, msg); err != nil {
		return httpError(err)
	}

	for _, p := range conv.Participants {
		h.notifier.notify(&models.Notification{
			Type:        models.NotificationMessage,
			ActorID:     uid,
			RecipientID: p,
			TargetID:    conv.ID,
			TargetType:  "conversation",
			Message:     req.Text,
		})
	}

	return success(c, http.StatusCreated, echo.Map{"message": msg})
}
