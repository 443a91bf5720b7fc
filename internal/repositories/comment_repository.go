package repositories

import (
	"context"

	apperrors "github.com/anonto42/moments/backend/internal/errors"
	"github.com/anonto42/moments/backend/internal/models"
	"github.com/anonto42/moments/backend/internal/store"
)

// CommentRepository defines the interface for comment data operations
type CommentRepository interface {
	AddComment(ctx context.Context, comment *models.Comment) error
	GetComments(ctx context.Context, postID string, limit int) ([]models.Comment, error)
	DeleteComment(ctx context.Context, postID, commentID, userID string) error
}

// StoreCommentRepository keeps comments in the posts/{postId}/comments child
// collection and moves the parent's commentsCount with them.
type StoreCommentRepository struct {
	store store.Store
	posts PostRepository
}

func NewStoreCommentRepository(s store.Store, posts PostRepository) *StoreCommentRepository {
	return &StoreCommentRepository{store: s, posts: posts}
}

func commentsOf(postID string) string {
	return store.Sub(models.CollectionPosts, postID, models.SubcollectionComments)
}

// AddComment requires the parent post to exist.
func (r *StoreCommentRepository) AddComment(ctx context.Context, comment *models.Comment) error {
	if _, err := r.posts.GetPostByID(ctx, comment.PostID); err != nil {
		return err
	}
	id, err := r.store.Create(ctx, commentsOf(comment.PostID), "", map[string]any{
		"postId":   comment.PostID,
		"userId":   comment.UserID,
		"username": comment.Username,
		"text":     comment.Text,
	})
	if err != nil {
		return storeError("addComment", "comment", err)
	}
	if err := r.posts.IncrementCommentsCount(ctx, comment.PostID, 1); err != nil {
		return err
	}
	created, err := store.GetAs[models.Comment](ctx, r.store, commentsOf(comment.PostID), id)
	if err != nil {
		return storeError("addComment", "comment", err)
	}
	*comment = *created
	return nil
}

// GetComments returns a post's comments, newest first.
func (r *StoreCommentRepository) GetComments(ctx context.Context, postID string, limit int) ([]models.Comment, error) {
	q := store.NewQuery().Order("createdAt", store.Desc).Take(limit)
	comments, err := store.FindAs[models.Comment](ctx, r.store, commentsOf(postID), q)
	if err != nil {
		return nil, storeError("getComments", "comment", err)
	}
	return comments, nil
}

func (r *StoreCommentRepository) DeleteComment(ctx context.Context, postID, commentID, userID string) error {
	comment, err := store.GetAs[models.Comment](ctx, r.store, commentsOf(postID), commentID)
	if err != nil {
		return storeError("deleteComment", "comment", err)
	}
	if comment.UserID != userID {
		return apperrors.NotOwner("comment")
	}
	if err := r.store.Delete(ctx, commentsOf(postID), commentID); err != nil {
		return storeError("deleteComment", "comment", err)
	}
	return r.posts.IncrementCommentsCount(ctx, postID, -1)
}
