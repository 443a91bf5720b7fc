package handlers

import (
	"net/http"

	"github.com/anonto42/moments/backend/internal/models"
	"github.com/anonto42/moments/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

const commentsLimit = 50

// CommentHandler handles HTTP requests related to comments
type CommentHandler struct {
	commentRepository repositories.CommentRepository
	postRepository    repositories.PostRepository
	userRepository    repositories.UserRepository
	notifier          notifier
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(commentRepo repositories.CommentRepository, postRepo repositories.PostRepository, userRepo repositories.UserRepository, notifRepo repositories.NotificationRepository) *CommentHandler {
	return &CommentHandler{
		commentRepository: commentRepo,
		postRepository:    postRepo,
		userRepository:    userRepo,
		notifier:          notifier{repo: notifRepo},
	}
}

// RegisterCommentRoutes registers comment-related routes
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group) {
	g.POST("/posts/:post_id/comments", h.CreateComment)
	g.GET("/posts/:post_id/comments", h.GetCommentsByPostID)
	g.DELETE("/posts/:post_id/comments/:id", h.DeleteComment)
}

// CreateComment creates a new comment on a post
func (h *CommentHandler) CreateComment(c echo.Context) error {
	uid, err := requireUser(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	postID := c.Param("post_id")

	var req models.CreateCommentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	post, err := h.postRepository.GetPostByID(ctx, postID)
	if err != nil {
		return httpError(err)
	}

	username := ""
	author, err := h.userRepository.GetProfile(ctx, uid)
	if err == nil {
		username = author.Username
	}

	comment := &models.Comment{
		PostID:   postID,
		UserID:   uid,
		Username: username,
		Text:     req.Text,
	}
	if err := h.commentRepository.AddComment(ctx, comment); err != nil {
		return httpError(err)
	}

	h.notifier.notify(&models.Notification{
		Type:            models.NotificationComment,
		ActorID:         uid,
		RecipientID:     post.UserID,
		TargetID:        postID,
		TargetType:      "post",
		PreviewImageURL: post.ContentURL,
		Message:         "New comment: " + req.Text,
	})

	return c.JSON(http.StatusCreated, comment)
}

// GetCommentsByPostID returns a post's latest comments, newest first
func (h *CommentHandler) GetCommentsByPostID(c echo.Context) error {
	postID := c.Param("post_id")

	if _, err := h.postRepository.GetPostByID(c.Request().Context(), postID); err != nil {
		return httpError(err)
	}

	comments, err := h.commentRepository.GetComments(c.Request().Context(), postID, queryInt(c, "limit", commentsLimit, commentsLimit))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, comments)
}

// DeleteComment deletes one of the caller's comments
func (h *CommentHandler) DeleteComment(c echo.Context) error {
	uid, err := requireUser(c)
	if err != nil {
		return err
	}

	if err := h.commentRepository.DeleteComment(c.Request().Context(), c.Param("post_id"), c.Param("id"), uid); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
