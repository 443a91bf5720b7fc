package ledger

import (
	"context"
	"time"

	"github.com/anonto42/moments/backend/internal/logger"
	"github.com/anonto42/moments/backend/internal/metrics"
	"github.com/anonto42/moments/backend/internal/models"
	"github.com/anonto42/moments/backend/internal/store"
	"go.uber.org/zap"
)

const defaultPageSize = 200

// Report summarizes one reconciliation pass.
type Report struct {
	PostsScanned  int           `json:"postsScanned"`
	PostsRepaired int           `json:"postsRepaired"`
	UsersScanned  int           `json:"usersScanned"`
	UsersRepaired int           `json:"usersRepaired"`
	Duration      time.Duration `json:"duration"`
}

// Reconciler recomputes denormalized counters from the cardinality of their
// membership sets and strips users from their own follower/following sets.
type Reconciler struct {
	store    store.Store
	mode     Mode
	pageSize int
}

func NewReconciler(s store.Store, mode Mode) *Reconciler {
	return &Reconciler{store: s, mode: mode, pageSize: defaultPageSize}
}

// WithPageSize sets how many documents are read per query.
func (r *Reconciler) WithPageSize(n int) *Reconciler {
	if n > 0 {
		r.pageSize = n
	}
	return r
}

// Run scans posts then users. In ModeTransactional each repair re-reads the
// document inside a transaction; otherwise the repair is a plain field write.
func (r *Reconciler) Run(ctx context.Context) (Report, error) {
	start := time.Now()
	var report Report
	m := metrics.Get()

	err := r.scan(ctx, models.CollectionPosts, func(snap store.Snapshot) (bool, error) {
		report.PostsScanned++
		m.ReconcileScannedTotal.WithLabelValues(models.CollectionPosts).Inc()
		post, err := store.Decode[models.Post](snap)
		if err != nil {
			return false, err
		}
		if postRepairs(post) == nil {
			return false, nil
		}
		return true, r.repair(ctx, models.CollectionPosts, post.ID, func(tx store.Tx) ([]store.Update, error) {
			if tx == nil {
				return postRepairs(post), nil
			}
			fresh, err := store.TxGetAs[models.Post](ctx, tx, models.CollectionPosts, post.ID)
			if err != nil {
				return nil, err
			}
			return postRepairs(fresh), nil
		})
	}, &report.PostsRepaired)
	if err != nil {
		return report, wrap("reconcile", "post", err)
	}

	err = r.scan(ctx, models.CollectionUsers, func(snap store.Snapshot) (bool, error) {
		report.UsersScanned++
		m.ReconcileScannedTotal.WithLabelValues(models.CollectionUsers).Inc()
		user, err := store.Decode[models.UserProfile](snap)
		if err != nil {
			return false, err
		}
		if userRepairs(user) == nil {
			return false, nil
		}
		return true, r.repair(ctx, models.CollectionUsers, user.UID, func(tx store.Tx) ([]store.Update, error) {
			if tx == nil {
				return userRepairs(user), nil
			}
			fresh, err := store.TxGetAs[models.UserProfile](ctx, tx, models.CollectionUsers, user.UID)
			if err != nil {
				return nil, err
			}
			return userRepairs(fresh), nil
		})
	}, &report.UsersRepaired)
	if err != nil {
		return report, wrap("reconcile", "user", err)
	}

	report.Duration = time.Since(start)
	logger.Log.Info("Reconciliation finished",
		zap.Int("posts_scanned", report.PostsScanned),
		zap.Int("posts_repaired", report.PostsRepaired),
		zap.Int("users_scanned", report.UsersScanned),
		zap.Int("users_repaired", report.UsersRepaired),
		zap.Duration("duration", report.Duration),
	)
	return report, nil
}

// scan pages through a collection in id order and counts the documents visit
// reports as repaired.
func (r *Reconciler) scan(ctx context.Context, collection string, visit func(store.Snapshot) (bool, error), repaired *int) error {
	m := metrics.Get()
	for offset := 0; ; offset += r.pageSize {
		if err := ctx.Err(); err != nil {
			return err
		}
		page, err := r.store.Find(ctx, collection, store.NewQuery().Skip(offset).Take(r.pageSize))
		if err != nil {
			return err
		}
		for _, snap := range page {
			fixed, err := visit(snap)
			if err != nil {
				return err
			}
			if fixed {
				logger.Log.Debug("Counters repaired", logger.WithCollection(collection), zap.String("id", snap.ID()))
				*repaired++
				m.ReconcileRepairedTotal.WithLabelValues(collection).Inc()
			}
		}
		if len(page) < r.pageSize {
			return nil
		}
	}
}

// repair writes the updates returned by plan. plan receives nil outside a
// transaction.
func (r *Reconciler) repair(ctx context.Context, collection, id string, plan func(tx store.Tx) ([]store.Update, error)) error {
	if r.mode != ModeTransactional {
		updates, err := plan(nil)
		if err != nil || len(updates) == 0 {
			return err
		}
		return r.store.Update(ctx, collection, id, updates...)
	}
	return r.store.RunTransaction(ctx, func(ctx context.Context, tx store.Tx) error {
		updates, err := plan(tx)
		if err != nil || len(updates) == 0 {
			return err
		}
		return tx.Update(ctx, collection, id, updates...)
	})
}

func postRepairs(p *models.Post) []store.Update {
	likes := distinct(p.Likes)
	if int64(len(likes)) == p.LikesCount {
		return nil
	}
	return []store.Update{store.Set(fieldLikesCount, int64(len(likes)))}
}

func userRepairs(u *models.UserProfile) []store.Update {
	var updates []store.Update
	if contains(u.Followers, u.UID) || contains(u.Following, u.UID) {
		updates = append(updates,
			store.ArrayRemove(fieldFollowers, u.UID),
			store.ArrayRemove(fieldFollowing, u.UID),
		)
	}
	followers := int64(len(without(distinct(u.Followers), u.UID)))
	following := int64(len(without(distinct(u.Following), u.UID)))
	if followers != u.FollowersCount {
		updates = append(updates, store.Set(fieldFollowersCount, followers))
	}
	if following != u.FollowingCount {
		updates = append(updates, store.Set(fieldFollowingCount, following))
	}
	return updates
}

func distinct(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func without(ids []string, drop string) []string {
	out := ids[:0:0]
	for _, id := range ids {
		if id != drop {
			out = append(out, id)
		}
	}
	return out
}
