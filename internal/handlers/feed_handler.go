package handlers

import (
	"net/http"
	"slices"

	apperrors "github.com/anonto42/moments/backend/internal/errors"
	"github.com/anonto42/moments/backend/internal/logger"
	"github.com/anonto42/moments/backend/internal/models"
	"github.com/anonto42/moments/backend/internal/repositories"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const feedLimit = 20

// FeedHandler handles feed-related HTTP requests
type FeedHandler struct {
	postRepository      repositories.PostRepository
	userRepository      repositories.UserRepository
	savedPostRepository repositories.SavedPostRepository
}

// NewFeedHandler creates a new FeedHandler
func NewFeedHandler(
	postRepo repositories.PostRepository,
	userRepo repositories.UserRepository,
	savedPostRepo repositories.SavedPostRepository,
) *FeedHandler {
	return &FeedHandler{
		postRepository:      postRepo,
		userRepository:      userRepo,
		savedPostRepository: savedPostRepo,
	}
}

// RegisterFeedRoutes registers feed-related routes
func (h *FeedHandler) RegisterFeedRoutes(g *echo.Group) {
	g.GET("/feed", h.GetFeed)
}

// GetFeed returns the caller's own and followed authors' friends-visible
// posts, newest first, with author cards and liked/saved flags.
func (h *FeedHandler) GetFeed(c echo.Context) error {
	uid, err := requireUser(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	authors := []string{uid}
	profile, err := h.userRepository.GetProfile(ctx, uid)
	switch {
	case err == nil:
		for _, id := range profile.Following {
			if id != uid && !slices.Contains(authors, id) {
				authors = append(authors, id)
			}
		}
	case !apperrors.IsNotFound(err):
		return httpError(err)
	}

	posts, err := h.postRepository.GetFeed(ctx, authors, queryInt(c, "limit", feedLimit, 50))
	if err != nil {
		return httpError(err)
	}

	views, err := h.enrich(c, uid, posts)
	if err != nil {
		return httpError(err)
	}
	return success(c, http.StatusOK, echo.Map{"posts": views})
}

func (h *FeedHandler) enrich(c echo.Context, uid string, posts []models.Post) ([]models.PostView, error) {
	authorIDs := make([]string, 0, len(posts))
	postIDs := make([]string, len(posts))
	for i, p := range posts {
		authorIDs = append(authorIDs, p.UserID)
		postIDs[i] = p.ID
	}

	cards, err := compactProfiles(c, h.userRepository, authorIDs)
	if err != nil {
		return nil, err
	}

	saved, err := h.savedPostRepository.GetSavedPostIDs(uid, postIDs)
	if err != nil {
		logger.Log.Warn("Failed to load saved flags for feed", logger.WithUserID(uid), zap.Error(err))
		saved = map[string]bool{}
	}

	views := make([]models.PostView, len(posts))
	for i, p := range posts {
		views[i] = models.PostView{
			Post:    p,
			IsLiked: slices.Contains(p.Likes, uid),
			IsSaved: saved[p.ID],
		}
		if card, ok := cards[p.UserID]; ok {
			views[i].Author = &card
		}
	}
	return views, nil
}
