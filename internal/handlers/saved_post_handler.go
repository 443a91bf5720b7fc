package handlers

import (
	"net/http"

	apperrors "github.com/anonto42/moments/backend/internal/errors"
	"github.com/anonto42/moments/backend/internal/models"
	"github.com/anonto42/moments/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// SavedPostHandler handles saved post HTTP requests
type SavedPostHandler struct {
	savedPostRepository repositories.SavedPostRepository
	postRepository      repositories.PostRepository
}

// NewSavedPostHandler creates a new SavedPostHandler
func NewSavedPostHandler(savedPostRepo repositories.SavedPostRepository, postRepo repositories.PostRepository) *SavedPostHandler {
	return &SavedPostHandler{
		savedPostRepository: savedPostRepo,
		postRepository:      postRepo,
	}
}

// RegisterSavedPostRoutes registers saved post routes
func (h *SavedPostHandler) RegisterSavedPostRoutes(g *echo.Group) {
	g.GET("/saved", h.GetSavedPosts)
	g.POST("/posts/:id/save", h.SavePost)
	g.DELETE("/posts/:id/save", h.UnsavePost)
}

// SavePost saves/bookmarks a post
func (h *SavedPostHandler) SavePost(c echo.Context) error {
	uid, err := requireUser(c)
	if err != nil {
		return err
	}
	postID := c.Param("id")

	if _, err := h.postRepository.GetPostByID(c.Request().Context(), postID); err != nil {
		return httpError(err)
	}

	if err := h.savedPostRepository.SavePost(&models.SavedPost{UserID: uid, PostID: postID}); err != nil {
		return httpError(err)
	}
	return success(c, http.StatusOK, echo.Map{"saved": true})
}

// UnsavePost removes a post from saved
func (h *SavedPostHandler) UnsavePost(c echo.Context) error {
	uid, err := requireUser(c)
	if err != nil {
		return err
	}

	if err := h.savedPostRepository.UnsavePost(uid, c.Param("id")); err != nil {
		return httpError(err)
	}
	return success(c, http.StatusOK, echo.Map{"saved": false})
}

// GetSavedPosts returns the caller's saved posts, most recently saved first.
// Posts deleted since they were saved are left out.
func (h *SavedPostHandler) GetSavedPosts(c echo.Context) error {
	uid, err := requireUser(c)
	if err != nil {
		return err
	}

	saved, err := h.savedPostRepository.GetSavedPostsByUser(uid)
	if err != nil {
		return httpError(err)
	}

	posts := make([]models.Post, 0, len(saved))
	for _, s := range saved {
		post, err := h.postRepository.GetPostByID(c.Request().Context(), s.PostID)
		if apperrors.IsNotFound(err) {
			continue
		}
		if err != nil {
			return httpError(err)
		}
		posts = append(posts, *post)
	}
	return success(c, http.StatusOK, echo.Map{"posts": posts})
}
