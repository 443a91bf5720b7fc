package handlers

import (
	"net/http"

	"github.com/anonto42/moments/backend/internal/ledger"
	"github.com/anonto42/moments/backend/internal/models"
	"github.com/anonto42/moments/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// UserHandler handles HTTP requests related to profiles and the social graph reads
type UserHandler struct {
	userRepository repositories.UserRepository
	graph          *ledger.Graph
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userRepo repositories.UserRepository, graph *ledger.Graph) *UserHandler {
	return &UserHandler{userRepository: userRepo, graph: graph}
}

// RegisterProfileRoutes registers user profile-related routes
func (h *UserHandler) RegisterProfileRoutes(g *echo.Group) {
	g.GET("/profile", h.GetProfile)    // Get own profile
	g.PUT("/profile", h.UpdateProfile) // Update own profile
	g.GET("/users/search", h.SearchUsers)
	g.GET("/users/:id", h.GetUser)
	g.GET("/users/:id/followers", h.GetFollowers)
	g.GET("/users/:id/following", h.GetFollowing)
	g.GET("/users/:id/mutual", h.GetMutualFriends)
}

func (h *UserHandler) GetUser(c echo.Context) error {
	user, err := h.userRepository.GetProfile(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, user)
}

// GetProfile retrieves the authenticated user's profile
func (h *UserHandler) GetProfile(c echo.Context) error {
	uid, err := requireUser(c)
	if err != nil {
		return err
	}
	user, err := h.userRepository.GetProfile(c.Request().Context(), uid)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, user)
}

// UpdateProfile updates the display fields of the authenticated user's profile
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	uid, err := requireUser(c)
	if err != nil {
		return err
	}

	var req models.UpdateProfileRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.userRepository.UpdateProfile(c.Request().Context(), uid, &req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, user)
}

// SearchUsers finds users whose username starts with q (case-insensitive)
func (h *UserHandler) SearchUsers(c echo.Context) error {
	query := c.QueryParam("q")
	if query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Search query 'q' is required")
	}
	limit := queryInt(c, "limit", ledger.DefaultSearchLimit, 50)

	users, err := h.graph.SearchByHandlePrefix(c.Request().Context(), query, limit)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, toCompact(users))
}

func (h *UserHandler) GetFollowers(c echo.Context) error {
	users, err := h.graph.Followers(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, toCompact(users))
}

func (h *UserHandler) GetFollowing(c echo.Context) error {
	users, err := h.graph.Following(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, toCompact(users))
}

// GetMutualFriends lists users the given user follows who also follow back.
func (h *UserHandler) GetMutualFriends(c echo.Context) error {
	ids, err := h.graph.MutualFriends(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	cards, err := compactProfiles(c, h.userRepository, ids)
	if err != nil {
		return httpError(err)
	}
	out := make([]models.UserCompact, 0, len(ids))
	for _, id := range ids {
		if card, ok := cards[id]; ok {
			out = append(out, card)
		}
	}
	return c.JSON(http.StatusOK, out)
}

func toCompact(users []models.UserProfile) []models.UserCompact {
	out := make([]models.UserCompact, len(users))
	for i := range users {
		out[i] = users[i].ToCompact()
	}
	return out
}
