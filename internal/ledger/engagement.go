package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/anonto42/moments/backend/internal/logger"
	"github.com/anonto42/moments/backend/internal/models"
	"github.com/anonto42/moments/backend/internal/store"
	"go.uber.org/zap"
)

// Engagement maintains the likes set and likesCount of posts.
type Engagement struct {
	store store.Store
	mode  Mode
}

func NewEngagement(s store.Store, mode Mode) *Engagement {
	return &Engagement{store: s, mode: mode}
}

// Like adds userID to the post's likes and increments likesCount in one write.
// Outside ModeTransactional a repeated like increments the counter again.
func (e *Engagement) Like(ctx context.Context, postID, userID string) error {
	return e.apply(ctx, "like", postID, userID, true)
}

// Unlike removes userID from the post's likes and decrements likesCount.
func (e *Engagement) Unlike(ctx context.Context, postID, userID string) error {
	return e.apply(ctx, "unlike", postID, userID, false)
}

// HasLiked reports whether userID is in the post's likes. An absent post is
// reported as not liked.
func (e *Engagement) HasLiked(ctx context.Context, postID, userID string) (bool, error) {
	post, err := store.GetAs[models.Post](ctx, e.store, models.CollectionPosts, postID)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, wrap("hasLiked", "post", err)
	}
	return contains(post.Likes, userID), nil
}

func (e *Engagement) apply(ctx context.Context, op, postID, userID string, add bool) (err error) {
	start := time.Now()
	skipped := false
	defer func() {
		record(op, start, outcomeOf(err, skipped))
		if err != nil {
			logger.Log.Warn("Ledger write failed",
				zap.String("op", op),
				logger.WithPostID(postID),
				logger.WithUserID(userID),
				zap.Error(err),
			)
		}
	}()

	if e.mode == ModeTransactional {
		skipped, err = e.applyTx(ctx, postID, userID, add)
		return wrap(op, "post", err)
	}

	updates := membershipUpdates(fieldLikes, fieldLikesCount, userID, add)
	return wrap(op, "post", e.store.Update(ctx, models.CollectionPosts, postID, updates...))
}

// applyTx writes only when the membership differs from the requested state.
func (e *Engagement) applyTx(ctx context.Context, postID, userID string, add bool) (bool, error) {
	skipped := false
	err := e.store.RunTransaction(ctx, func(ctx context.Context, tx store.Tx) error {
		skipped = false
		post, err := store.TxGetAs[models.Post](ctx, tx, models.CollectionPosts, postID)
		if err != nil {
			return err
		}
		if contains(post.Likes, userID) == add {
			skipped = true
			return nil
		}
		updates := membershipUpdates(fieldLikes, fieldLikesCount, userID, add)
		return tx.Update(ctx, models.CollectionPosts, postID, updates...)
	})
	return skipped, err
}
