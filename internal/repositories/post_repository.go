package repositories

import (
	"context"

	apperrors "github.com/anonto42/moments/backend/internal/errors"
	"github.com/anonto42/moments/backend/internal/models"
	"github.com/anonto42/moments/backend/internal/store"
)

// MaxInFilter is the largest id list a single `in` query may carry.
const MaxInFilter = 30

// PostRepository defines the interface for post data operations
type PostRepository interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetPostByID(ctx context.Context, id string) (*models.Post, error)
	GetPostsByUserID(ctx context.Context, userID string, limit int) ([]models.Post, error)
	GetPublicPosts(ctx context.Context, limit int) ([]models.Post, error)
	GetReels(ctx context.Context, limit int) ([]models.Post, error)
	GetFeed(ctx context.Context, authorIDs []string, limit int) ([]models.Post, error)
	UpdatePost(ctx context.Context, id, userID string, req *models.UpdatePostRequest) (*models.Post, error)
	DeletePost(ctx context.Context, id, userID string) error
	IncrementCommentsCount(ctx context.Context, postID string, delta int64) error
}

// StorePostRepository implements PostRepository on the document store
type StorePostRepository struct {
	store store.Store
}

// NewStorePostRepository creates a new StorePostRepository
func NewStorePostRepository(s store.Store) *StorePostRepository {
	return &StorePostRepository{store: s}
}

// CreatePost stores a post with zeroed counters and an empty likes set.
func (r *StorePostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	if post.Visibility == "" {
		post.Visibility = models.VisibilityFriends
	}
	if post.Hashtags == nil {
		post.Hashtags = []string{}
	}
	post.Likes = []string{}
	post.LikesCount = 0
	post.CommentsCount = 0

	id, err := r.store.Create(ctx, models.CollectionPosts, "", map[string]any{
		"userId":        post.UserID,
		"type":          post.Type,
		"contentUrl":    post.ContentURL,
		"caption":       post.Caption,
		"visibility":    post.Visibility,
		"hashtags":      post.Hashtags,
		"likes":         post.Likes,
		"likesCount":    int64(0),
		"commentsCount": int64(0),
	})
	if err != nil {
		return storeError("createPost", "post", err)
	}
	created, err := r.GetPostByID(ctx, id)
	if err != nil {
		return err
	}
	*post = *created
	return nil
}

func (r *StorePostRepository) GetPostByID(ctx context.Context, id string) (*models.Post, error) {
	post, err := store.GetAs[models.Post](ctx, r.store, models.CollectionPosts, id)
	if err != nil {
		return nil, storeError("getPost", "post", err)
	}
	return post, nil
}

// GetPostsByUserID returns a user's posts, newest first.
func (r *StorePostRepository) GetPostsByUserID(ctx context.Context, userID string, limit int) ([]models.Post, error) {
	q := store.NewQuery().
		Where("userId", store.OpEqual, userID).
		Order("createdAt", store.Desc).
		Take(limit)
	return r.find(ctx, "getUserPosts", q)
}

func (r *StorePostRepository) GetPublicPosts(ctx context.Context, limit int) ([]models.Post, error) {
	q := store.NewQuery().
		Where("visibility", store.OpEqual, models.VisibilityPublic).
		Order("createdAt", store.Desc).
		Take(limit)
	return r.find(ctx, "getPublicPosts", q)
}

func (r *StorePostRepository) GetReels(ctx context.Context, limit int) ([]models.Post, error) {
	q := store.NewQuery().
		Where("type", store.OpEqual, models.PostTypeReel).
		Order("createdAt", store.Desc).
		Take(limit)
	return r.find(ctx, "getReels", q)
}

// GetFeed returns friends-visible posts of the given authors, newest first.
// Only the first MaxInFilter authors are queried.
func (r *StorePostRepository) GetFeed(ctx context.Context, authorIDs []string, limit int) ([]models.Post, error) {
	if len(authorIDs) == 0 {
		return []models.Post{}, nil
	}
	if len(authorIDs) > MaxInFilter {
		authorIDs = authorIDs[:MaxInFilter]
	}
	q := store.NewQuery().
		Where("userId", store.OpIn, authorIDs).
		Where("visibility", store.OpEqual, models.VisibilityFriends).
		Order("createdAt", store.Desc).
		Take(limit)
	return r.find(ctx, "getFeed", q)
}

// UpdatePost changes the editable fields of a post owned by userID.
func (r *StorePostRepository) UpdatePost(ctx context.Context, id, userID string, req *models.UpdatePostRequest) (*models.Post, error) {
	post, err := r.GetPostByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if post.UserID != userID {
		return nil, apperrors.NotOwner("post")
	}

	updates := []store.Update{store.ServerTimestamp("updatedAt")}
	if req.Caption != nil {
		updates = append(updates, store.Set("caption", *req.Caption))
	}
	if req.Visibility != "" {
		updates = append(updates, store.Set("visibility", req.Visibility))
	}
	if req.Hashtags != nil {
		updates = append(updates, store.Set("hashtags", req.Hashtags))
	}
	if err := r.store.Update(ctx, models.CollectionPosts, id, updates...); err != nil {
		return nil, storeError("updatePost", "post", err)
	}
	return r.GetPostByID(ctx, id)
}

// DeletePost removes a post and its comments. Only its author may delete it.
// Comments go first, so a failure leaves the post in place to retry.
func (r *StorePostRepository) DeletePost(ctx context.Context, id, userID string) error {
	post, err := r.GetPostByID(ctx, id)
	if err != nil {
		return err
	}
	if post.UserID != userID {
		return apperrors.NotOwner("post")
	}
	if err := r.deleteComments(ctx, id); err != nil {
		return storeError("deletePost", "comment", err)
	}
	return storeError("deletePost", "post", r.store.Delete(ctx, models.CollectionPosts, id))
}

const deleteBatchSize = 100

func (r *StorePostRepository) deleteComments(ctx context.Context, postID string) error {
	path := store.Sub(models.CollectionPosts, postID, models.SubcollectionComments)
	for {
		page, err := r.store.Find(ctx, path, store.NewQuery().Take(deleteBatchSize))
		if err != nil {
			return err
		}
		for _, snap := range page {
			if err := r.store.Delete(ctx, path, snap.ID()); err != nil {
				return err
			}
		}
		if len(page) < deleteBatchSize {
			return nil
		}
	}
}

func (r *StorePostRepository) IncrementCommentsCount(ctx context.Context, postID string, delta int64) error {
	err := r.store.Update(ctx, models.CollectionPosts, postID, store.Increment("commentsCount", delta))
	return storeError("incrementCommentsCount", "post", err)
}

func (r *StorePostRepository) find(ctx context.Context, op string, q store.Query) ([]models.Post, error) {
	posts, err := store.FindAs[models.Post](ctx, r.store, models.CollectionPosts, q)
	if err != nil {
		return nil, storeError(op, "post", err)
	}
	return posts, nil
}
