package handlers

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/anonto42/moments/backend/internal/models"
	"github.com/anonto42/moments/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// NotificationHandler handles notification-related HTTP requests
type NotificationHandler struct {
	notificationRepository repositories.NotificationRepository
	userRepository         repositories.UserRepository
	now                    func() time.Time
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(notifRepo repositories.NotificationRepository, userRepo repositories.UserRepository) *NotificationHandler {
	return &NotificationHandler{
		notificationRepository: notifRepo,
		userRepository:         userRepo,
		now:                    time.Now,
	}
}

// RegisterNotificationRoutes registers notification routes
func (h *NotificationHandler) RegisterNotificationRoutes(g *echo.Group) {
	g.GET("/notifications", h.GetNotifications)
	g.GET("/notifications/grouped", h.GetGroupedNotifications)
	g.GET("/notifications/unread-count", h.GetUnreadCount)
	g.PUT("/notifications/:id/read", h.MarkAsRead)
	g.PUT("/notifications/read-all", h.MarkAllAsRead)
}

// EnrichedNotification includes actor info
type EnrichedNotification struct {
	models.Notification
	Actor *models.UserCompact `json:"actor,omitempty"`
}

func (h *NotificationHandler) enrichNotifications(c echo.Context, notifications []models.Notification) []EnrichedNotification {
	actorIDs := make([]string, len(notifications))
	for i, n := range notifications {
		actorIDs[i] = n.ActorID
	}
	cards, err := compactProfiles(c, h.userRepository, actorIDs)
	if err != nil {
		cards = map[string]models.UserCompact{}
	}

	enriched := make([]EnrichedNotification, len(notifications))
	for i, n := range notifications {
		enriched[i] = EnrichedNotification{Notification: n}
		if card, ok := cards[n.ActorID]; ok {
			enriched[i].Actor = &card
		}
	}
	return enriched
}

// GetNotifications returns paginated notifications
func (h *NotificationHandler) GetNotifications(c echo.Context) error {
	uid, err := requireUser(c)
	if err != nil {
		return err
	}

	page := queryInt(c, "page", 1, 0)
	limit := queryInt(c, "limit", 20, 50)

	notifications, total, err := h.notificationRepository.GetByRecipientID(uid, page, limit)
	if err != nil {
		return httpError(err)
	}

	totalPages := int(math.Ceil(float64(total) / float64(limit)))

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data": echo.Map{
			"notifications": h.enrichNotifications(c, notifications),
		},
		"meta": echo.Map{
			"currentPage":     page,
			"totalPages":      totalPages,
			"totalItems":      total,
			"itemsPerPage":    limit,
			"hasNextPage":     page < totalPages,
			"hasPreviousPage": page > 1,
		},
	})
}

// GetGroupedNotifications returns notifications grouped by time period
func (h *NotificationHandler) GetGroupedNotifications(c echo.Context) error {
	uid, err := requireUser(c)
	if err != nil {
		return err
	}

	g, err := h.notificationRepository.GetGrouped(uid, h.now())
	if err != nil {
		return httpError(err)
	}

	unreadCount, err := h.notificationRepository.GetUnreadCount(uid)
	if err != nil {
		return httpError(err)
	}

	return success(c, http.StatusOK, echo.Map{
		"notifications": echo.Map{
			"today":     h.enrichNotifications(c, g.Today),
			"yesterday": h.enrichNotifications(c, g.Yesterday),
			"thisWeek":  h.enrichNotifications(c, g.ThisWeek),
			"older":     h.enrichNotifications(c, g.Older),
		},
		"unreadCount": unreadCount,
	})
}

// GetUnreadCount returns the unread notification count
func (h *NotificationHandler) GetUnreadCount(c echo.Context) error {
	uid, err := requireUser(c)
	if err != nil {
		return err
	}

	count, err := h.notificationRepository.GetUnreadCount(uid)
	if err != nil {
		return httpError(err)
	}
	return success(c, http.StatusOK, echo.Map{"count": count})
}

// MarkAsRead marks one of the caller's notifications as read
func (h *NotificationHandler) MarkAsRead(c echo.Context) error {
	uid, err := requireUser(c)
	if err != nil {
		return err
	}

	notifID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid notification ID")
	}

	if err := h.notificationRepository.MarkAsRead(uint(notifID), uid); err != nil {
		return httpError(err)
	}
	return success(c, http.StatusOK, echo.Map{"read": true})
}

// MarkAllAsRead marks all notifications as read
func (h *NotificationHandler) MarkAllAsRead(c echo.Context) error {
	uid, err := requireUser(c)
	if err != nil {
		return err
	}

	if err := h.notificationRepository.MarkAllAsRead(uid); err != nil {
		return httpError(err)
	}
	return success(c, http.StatusOK, echo.Map{"read": true})
}
