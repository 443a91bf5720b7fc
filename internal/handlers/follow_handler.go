package handlers

import (
	"net/http"

	"github.com/anonto42/moments/backend/internal/ledger"
	"github.com/anonto42/moments/backend/internal/models"
	"github.com/anonto42/moments/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// FollowHandler handles follow/unfollow HTTP requests
type FollowHandler struct {
	graph          *ledger.Graph
	userRepository repositories.UserRepository
	notifier       notifier
}

// NewFollowHandler creates a new FollowHandler
func NewFollowHandler(graph *ledger.Graph, userRepo repositories.UserRepository, notifRepo repositories.NotificationRepository) *FollowHandler {
	return &FollowHandler{
		graph:          graph,
		userRepository: userRepo,
		notifier:       notifier{repo: notifRepo},
	}
}

// RegisterFollowRoutes registers follow-related routes
func (h *FollowHandler) RegisterFollowRoutes(g *echo.Group) {
	g.POST("/users/:id/follow", h.FollowUser)
	g.DELETE("/users/:id/follow", h.UnfollowUser)
	g.GET("/users/:id/follow", h.GetFollowStatus)
}

// FollowUser follows a user
func (h *FollowHandler) FollowUser(c echo.Context) error {
	uid, err := requireUser(c)
	if err != nil {
		return err
	}
	targetID := c.Param("id")
	ctx := c.Request().Context()

	if uid != targetID {
		if _, err := h.userRepository.GetProfile(ctx, targetID); err != nil {
			return httpError(err)
		}
		// Check if already following
		following, err := h.graph.IsFollowing(ctx, uid, targetID)
		if err != nil {
			return httpError(err)
		}
		if following {
			return echo.NewHTTPError(http.StatusConflict, "Already following this user")
		}
	}

	if err := h.graph.Follow(ctx, uid, targetID); err != nil {
		return httpError(err)
	}

	message := "Someone started following you"
	if actor, err := h.userRepository.GetProfile(ctx, uid); err == nil {
		message = actor.DisplayName + " started following you"
	}
	h.notifier.notify(&models.Notification{
		Type:        models.NotificationFollow,
		ActorID:     uid,
		RecipientID: targetID,
		TargetID:    uid,
		TargetType:  "user",
		Message:     message,
	})

	return success(c, http.StatusOK, echo.Map{"following": true})
}

// UnfollowUser unfollows a user
func (h *FollowHandler) UnfollowUser(c echo.Context) error {
	uid, err := requireUser(c)
	if err != nil {
		return err
	}

	targetID := c.Param("id")
	ctx := c.Request().Context()

	if uid != targetID {
		following, err := h.graph.IsFollowing(ctx, uid, targetID)
		if err != nil {
			return httpError(err)
		}
		if !following {
			return echo.NewHTTPError(http.StatusConflict, "Not following this user")
		}
	}

	if err := h.graph.Unfollow(ctx, uid, targetID); err != nil {
		return httpError(err)
	}
	return success(c, http.StatusOK, echo.Map{"following": false})
}

func (h *FollowHandler) GetFollowStatus(c echo.Context) error {
	uid, err := requireUser(c)
	if err != nil {
		return err
	}

	following, err := h.graph.IsFollowing(c.Request().Context(), uid, c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return success(c, http.StatusOK, echo.Map{"following": following})
}
