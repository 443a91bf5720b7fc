package ledger

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"
	"time"

	apperrors "github.com/anonto42/moments/backend/internal/errors"
	"github.com/anonto42/moments/backend/internal/logger"
	"github.com/anonto42/moments/backend/internal/metrics"
	"github.com/anonto42/moments/backend/internal/models"
	"github.com/anonto42/moments/backend/internal/store"
	"go.uber.org/zap"
)

// DefaultSearchLimit caps SearchByHandlePrefix when no limit is given.
const DefaultSearchLimit = 10

// prefixEnd is appended to a prefix to form the exclusive upper bound of a
// handle range scan.
const prefixEnd = "\uf8ff"

// Graph maintains the followers/following sets and counters of user profiles.
// Every follow touches two documents.
type Graph struct {
	store store.Store
	mode  Mode
}

func NewGraph(s store.Store, mode Mode) *Graph {
	return &Graph{store: s, mode: mode}
}

// Follow adds targetID to the actor's following and actorID to the target's
// followers, incrementing both counters.
func (g *Graph) Follow(ctx context.Context, actorID, targetID string) error {
	if actorID == targetID {
		return apperrors.InvalidOperation("you can't follow yourself")
	}
	return g.apply(ctx, "follow", actorID, targetID, true)
}

// Unfollow is the reverse of Follow.
func (g *Graph) Unfollow(ctx context.Context, actorID, targetID string) error {
	if actorID == targetID {
		return apperrors.InvalidOperation("you can't unfollow yourself")
	}
	return g.apply(ctx, "unfollow", actorID, targetID, false)
}

func (g *Graph) apply(ctx context.Context, op, actorID, targetID string, add bool) (err error) {
	start := time.Now()
	skipped := false
	defer func() {
		record(op, start, outcomeOf(err, skipped))
		if err != nil {
			logger.Log.Warn("Ledger write failed",
				zap.String("op", op),
				logger.WithUserID(actorID),
				logger.WithTargetID(targetID),
				zap.Error(err),
			)
		}
	}()

	if g.mode == ModeTransactional {
		skipped, err = g.applyTx(ctx, actorID, targetID, add)
		return wrap(op, "user", err)
	}
	return g.applyWrites(ctx, op, actorID, targetID, add)
}

func (g *Graph) applyWrites(ctx context.Context, op, actorID, targetID string, add bool) error {
	actorUpdates := membershipUpdates(fieldFollowing, fieldFollowingCount, targetID, add)
	if err := g.store.Update(ctx, models.CollectionUsers, actorID, actorUpdates...); err != nil {
		return wrap(op, "user", err)
	}

	targetUpdates := membershipUpdates(fieldFollowers, fieldFollowersCount, actorID, add)
	err := g.store.Update(ctx, models.CollectionUsers, targetID, targetUpdates...)
	if err == nil {
		return nil
	}

	if g.mode == ModeCompensating {
		undo := membershipUpdates(fieldFollowing, fieldFollowingCount, targetID, !add)
		cerr := g.store.Update(ctx, models.CollectionUsers, actorID, undo...)
		m := metrics.Get()
		if cerr == nil {
			m.LedgerCompensationsTotal.WithLabelValues(op, metrics.OutcomeOK).Inc()
			return wrap(op, "user", err)
		}
		m.LedgerCompensationsTotal.WithLabelValues(op, metrics.OutcomeError).Inc()
		logger.Log.Error("Compensation failed",
			zap.String("op", op),
			logger.WithUserID(actorID),
			logger.WithTargetID(targetID),
			zap.Error(cerr),
		)
		return apperrors.RemoteFailure(op, fmt.Errorf("%w: target %s: %w (undo failed: %v)", ErrPartialWrite, targetID, err, cerr))
	}

	return apperrors.RemoteFailure(op, fmt.Errorf("%w: actor %s updated, target %s not: %w", ErrPartialWrite, actorID, targetID, err))
}

// applyTx reads both profiles and writes only the sides not already in the
// requested state. It reports whether nothing needed writing.
func (g *Graph) applyTx(ctx context.Context, actorID, targetID string, add bool) (bool, error) {
	skipped := false
	err := g.store.RunTransaction(ctx, func(ctx context.Context, tx store.Tx) error {
		skipped = false
		actor, err := store.TxGetAs[models.UserProfile](ctx, tx, models.CollectionUsers, actorID)
		if err != nil {
			return err
		}
		target, err := store.TxGetAs[models.UserProfile](ctx, tx, models.CollectionUsers, targetID)
		if err != nil {
			return err
		}

		writeActor := contains(actor.Following, targetID) != add
		writeTarget := contains(target.Followers, actorID) != add
		if !writeActor && !writeTarget {
			skipped = true
			return nil
		}
		if writeActor {
			updates := membershipUpdates(fieldFollowing, fieldFollowingCount, targetID, add)
			if err := tx.Update(ctx, models.CollectionUsers, actorID, updates...); err != nil {
				return err
			}
		}
		if writeTarget {
			updates := membershipUpdates(fieldFollowers, fieldFollowersCount, actorID, add)
			if err := tx.Update(ctx, models.CollectionUsers, targetID, updates...); err != nil {
				return err
			}
		}
		return nil
	})
	return skipped, err
}

// IsFollowing reports whether targetID is in the actor's following set. An
// absent actor follows no one.
func (g *Graph) IsFollowing(ctx context.Context, actorID, targetID string) (bool, error) {
	actor, err := store.GetAs[models.UserProfile](ctx, g.store, models.CollectionUsers, actorID)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, wrap("isFollowing", "user", err)
	}
	return contains(actor.Following, targetID), nil
}

// FollowersSeq yields the profiles of userID's followers, one point read per
// member in stored order. Members whose profile is gone are skipped. The first
// read failure is yielded and ends the sequence.
func (g *Graph) FollowersSeq(ctx context.Context, userID string) iter.Seq2[models.UserProfile, error] {
	return g.members(ctx, "followers", userID, func(u *models.UserProfile) []string { return u.Followers })
}

// FollowingSeq is FollowersSeq for the following set.
func (g *Graph) FollowingSeq(ctx context.Context, userID string) iter.Seq2[models.UserProfile, error] {
	return g.members(ctx, "following", userID, func(u *models.UserProfile) []string { return u.Following })
}

// Followers collects FollowersSeq. An absent user has no followers.
func (g *Graph) Followers(ctx context.Context, userID string) ([]models.UserProfile, error) {
	return collect(g.FollowersSeq(ctx, userID))
}

func (g *Graph) Following(ctx context.Context, userID string) ([]models.UserProfile, error) {
	return collect(g.FollowingSeq(ctx, userID))
}

func (g *Graph) members(ctx context.Context, op, userID string, pick func(*models.UserProfile) []string) iter.Seq2[models.UserProfile, error] {
	return func(yield func(models.UserProfile, error) bool) {
		root, err := store.GetAs[models.UserProfile](ctx, g.store, models.CollectionUsers, userID)
		if errors.Is(err, store.ErrNotFound) {
			return
		}
		if err != nil {
			yield(models.UserProfile{}, wrap(op, "user", err))
			return
		}
		for _, id := range pick(root) {
			member, err := store.GetAs[models.UserProfile](ctx, g.store, models.CollectionUsers, id)
			if errors.Is(err, store.ErrNotFound) {
				continue
			}
			if err != nil {
				yield(models.UserProfile{}, wrap(op, "user", err))
				return
			}
			if !yield(*member, nil) {
				return
			}
		}
	}
}

func collect(seq iter.Seq2[models.UserProfile, error]) ([]models.UserProfile, error) {
	out := []models.UserProfile{}
	for p, err := range seq {
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// MutualFriends returns the ids present in both userID's followers and
// following sets, in following order.
func (g *Graph) MutualFriends(ctx context.Context, userID string) ([]string, error) {
	user, err := store.GetAs[models.UserProfile](ctx, g.store, models.CollectionUsers, userID)
	if errors.Is(err, store.ErrNotFound) {
		return []string{}, nil
	}
	if err != nil {
		return nil, wrap("mutualFriends", "user", err)
	}

	followers := make(map[string]struct{}, len(user.Followers))
	for _, id := range user.Followers {
		followers[id] = struct{}{}
	}
	mutual := []string{}
	seen := make(map[string]struct{})
	for _, id := range user.Following {
		if _, ok := followers[id]; !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		mutual = append(mutual, id)
	}
	return mutual, nil
}

// SearchByHandlePrefix returns up to limit profiles whose username starts with
// the lowercased term, ordered by username.
func (g *Graph) SearchByHandlePrefix(ctx context.Context, term string, limit int) ([]models.UserProfile, error) {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	lower := strings.ToLower(term)
	q := store.NewQuery().
		Where(fieldUsername, store.OpGreaterOrEqual, lower).
		Where(fieldUsername, store.OpLess, lower+prefixEnd).
		Order(fieldUsername, store.Asc).
		Take(limit)

	users, err := store.FindAs[models.UserProfile](ctx, g.store, models.CollectionUsers, q)
	if err != nil {
		return nil, wrap("searchByHandlePrefix", "user", err)
	}
	if len(users) > limit {
		users = users[:limit]
	}
	return users, nil
}
