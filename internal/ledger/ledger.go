// Package ledger keeps membership sets and their denormalized counters in step:
// post likes (Engagement) and the follower/following graph (Graph).
package ledger

import (
	"errors"
	"slices"
	"time"

	apperrors "github.com/anonto42/moments/backend/internal/errors"
	"github.com/anonto42/moments/backend/internal/metrics"
	"github.com/anonto42/moments/backend/internal/store"
)

// ErrPartialWrite marks a follow or unfollow where only the actor's document
// was updated.
var ErrPartialWrite = errors.New("partial write")

// Stored field names.
const (
	fieldLikes          = "likes"
	fieldLikesCount     = "likesCount"
	fieldFollowers      = "followers"
	fieldFollowing      = "following"
	fieldFollowersCount = "followersCount"
	fieldFollowingCount = "followingCount"
	fieldUsername       = "username"
)

// membershipUpdates adds or removes member from setField and moves countField by one.
func membershipUpdates(setField, countField, member string, add bool) []store.Update {
	if add {
		return []store.Update{store.ArrayUnion(setField, member), store.Increment(countField, 1)}
	}
	return []store.Update{store.ArrayRemove(setField, member), store.Increment(countField, -1)}
}

// wrap converts store errors into application errors. Errors that already carry
// a code pass through.
func wrap(op, resource string, err error) error {
	if err == nil {
		return nil
	}
	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		return err
	}
	if errors.Is(err, store.ErrNotFound) {
		e := apperrors.NotFound(resource)
		e.Op = op
		e.Err = err
		return e
	}
	return apperrors.RemoteFailure(op, err)
}

func outcomeOf(err error, skipped bool) string {
	switch {
	case errors.Is(err, ErrPartialWrite):
		return metrics.OutcomePartial
	case err != nil:
		return metrics.OutcomeError
	case skipped:
		return metrics.OutcomeSkipped
	}
	return metrics.OutcomeOK
}

func record(op string, start time.Time, outcome string) {
	m := metrics.Get()
	m.LedgerOperationDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	m.LedgerOperationsTotal.WithLabelValues(op, outcome).Inc()
}

func contains(set []string, id string) bool {
	return slices.Contains(set, id)
}
