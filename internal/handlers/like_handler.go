package handlers

import (
	"net/http"
	"slices"

	"github.com/anonto42/moments/backend/internal/ledger"
	"github.com/anonto42/moments/backend/internal/models"
	"github.com/anonto42/moments/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// LikeHandler handles HTTP requests related to likes
type LikeHandler struct {
	engagement     *ledger.Engagement
	postRepository repositories.PostRepository
	userRepository repositories.UserRepository
	notifier       notifier
}

// NewLikeHandler creates a new LikeHandler
func NewLikeHandler(engagement *ledger.Engagement, postRepo repositories.PostRepository, userRepo repositories.UserRepository, notifRepo repositories.NotificationRepository) *LikeHandler {
	return &LikeHandler{
		engagement:     engagement,
		postRepository: postRepo,
		userRepository: userRepo,
		notifier:       notifier{repo: notifRepo},
	}
}

// RegisterLikeRoutes registers like-related routes
func (h *LikeHandler) RegisterLikeRoutes(g *echo.Group) {
	g.POST("/posts/:post_id/likes", h.LikePost)
	g.DELETE("/posts/:post_id/likes", h.UnlikePost)
	g.GET("/posts/:post_id/likes/count", h.GetLikesCountForPost)
	g.GET("/posts/:post_id/likes/status", h.GetUserLikeStatusForPost)
}

// LikePost handles liking a post
func (h *LikeHandler) LikePost(c echo.Context) error {
	uid, err := requireUser(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	postID := c.Param("post_id")

	post, err := h.postRepository.GetPostByID(ctx, postID)
	if err != nil {
		return httpError(err)
	}
	// Check if user has already liked the post
	if slices.Contains(post.Likes, uid) {
		return echo.NewHTTPError(http.StatusConflict, "Post already liked by this user")
	}

	if err := h.engagement.Like(ctx, postID, uid); err != nil {
		return httpError(err)
	}

	message := "Someone liked your post"
	if actor, err := h.userRepository.GetProfile(ctx, uid); err == nil {
		message = actor.DisplayName + " liked your post"
	}
	h.notifier.notify(&models.Notification{
		Type:            models.NotificationLike,
		ActorID:         uid,
		RecipientID:     post.UserID,
		TargetID:        postID,
		TargetType:      "post",
		PreviewImageURL: post.ContentURL,
		Message:         message,
	})

	return success(c, http.StatusOK, echo.Map{"liked": true})
}

// UnlikePost handles unliking a post
func (h *LikeHandler) UnlikePost(c echo.Context) error {
	uid, err := requireUser(c)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	postID := c.Param("post_id")

	post, err := h.postRepository.GetPostByID(ctx, postID)
	if err != nil {
		return httpError(err)
	}
	if !slices.Contains(post.Likes, uid) {
		return echo.NewHTTPError(http.StatusConflict, "Post not liked by this user")
	}

	if err := h.engagement.Unlike(ctx, postID, uid); err != nil {
		return httpError(err)
	}
	return success(c, http.StatusOK, echo.Map{"liked": false})
}

// GetLikesCountForPost returns the stored likesCount of a post
func (h *LikeHandler) GetLikesCountForPost(c echo.Context) error {
	postID := c.Param("post_id")

	post, err := h.postRepository.GetPostByID(c.Request().Context(), postID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"postId": postID, "likesCount": post.LikesCount})
}

// GetUserLikeStatusForPost checks if the authenticated user has liked a specific post
func (h *LikeHandler) GetUserLikeStatusForPost(c echo.Context) error {
	uid, err := requireUser(c)
	if err != nil {
		return err
	}
	postID := c.Param("post_id")

	hasLiked, err := h.engagement.HasLiked(c.Request().Context(), postID, uid)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"postId": postID, "userId": uid, "hasLiked": hasLiked})
}
