package handlers

import (
	"net/http"

	"github.com/anonto42/moments/backend/internal/models"
	"github.com/anonto42/moments/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// Listing limits.
const (
	userPostsLimit = 50
	listLimit      = 20
)

// PostHandler handles HTTP requests related to posts
type PostHandler struct {
	postRepository repositories.PostRepository
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(postRepo repositories.PostRepository) *PostHandler {
	return &PostHandler{postRepository: postRepo}
}

// RegisterPostRoutes registers post-related routes
func (h *PostHandler) RegisterPostRoutes(g *echo.Group) {
	g.POST("/posts", h.CreatePost)
	g.GET("/posts/public", h.GetPublicPosts)
	g.GET("/posts/:id", h.GetPost)
	g.GET("/posts", h.GetPosts) // posts by user (user_id query param, defaults to self)
	g.GET("/reels", h.GetReels)
	g.PUT("/posts/:id", h.UpdatePost)
	g.DELETE("/posts/:id", h.DeletePost)
}

// CreatePost creates a new post
func (h *PostHandler) CreatePost(c echo.Context) error {
	uid, err := requireUser(c)
	if err != nil {
		return err
	}

	var req models.CreatePostRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	post := &models.Post{
		UserID:     uid,
		Type:       req.Type,
		ContentURL: req.ContentURL,
		Caption:    req.Caption,
		Visibility: req.Visibility,
		Hashtags:   req.Hashtags,
	}
	if err := h.postRepository.CreatePost(c.Request().Context(), post); err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusCreated, post)
}

// GetPost retrieves a post by ID
func (h *PostHandler) GetPost(c echo.Context) error {
	post, err := h.postRepository.GetPostByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, post)
}

// GetPosts returns a user's posts, newest first
func (h *PostHandler) GetPosts(c echo.Context) error {
	userID := c.QueryParam("user_id")
	if userID == "" {
		userID = getUserIDFromContext(c)
	}
	limit := queryInt(c, "limit", userPostsLimit, userPostsLimit)

	posts, err := h.postRepository.GetPostsByUserID(c.Request().Context(), userID, limit)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, posts)
}

func (h *PostHandler) GetPublicPosts(c echo.Context) error {
	posts, err := h.postRepository.GetPublicPosts(c.Request().Context(), queryInt(c, "limit", listLimit, 50))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, posts)
}

func (h *PostHandler) GetReels(c echo.Context) error {
	posts, err := h.postRepository.GetReels(c.Request().Context(), queryInt(c, "limit", listLimit, 50))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, posts)
}

// UpdatePost updates caption, visibility or hashtags of the caller's post
func (h *PostHandler) UpdatePost(c echo.Context) error {
	uid, err := requireUser(c)
	if err != nil {
		return err
	}

	var req models.UpdatePostRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	post, err := h.postRepository.UpdatePost(c.Request().Context(), c.Param("id"), uid, &req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, post)
}

// DeletePost deletes a post
func (h *PostHandler) DeletePost(c echo.Context) error {
	uid, err := requireUser(c)
	if err != nil {
		return err
	}

	if err := h.postRepository.DeletePost(c.Request().Context(), c.Param("id"), uid); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
