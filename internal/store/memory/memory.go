// Package memory is an in-process store.Store with the same field-operation and
// query semantics as the hosted backends.
package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/anonto42/moments/backend/internal/store"
	"github.com/google/uuid"
)

var errReadAfterWrite = errors.New("memory: transaction reads must happen before writes")

// Store keeps every collection in maps guarded by one mutex.
type Store struct {
	mu          sync.Mutex
	collections map[string]map[string]map[string]any
	now         func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the server timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New creates an empty Store.
func New(opts ...Option) *Store {
	s := &Store{
		collections: make(map[string]map[string]map[string]any),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ store.Store = (*Store)(nil)

type snapshot struct {
	id   string
	data map[string]any
}

func (s snapshot) ID() string { return s.id }

func (s snapshot) DataTo(dst any) error {
	b, err := json.Marshal(s.data)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, dst)
}

func (s *Store) Get(ctx context.Context, collection, id string) (store.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.get(collection, id)
}

func (s *Store) get(collection, id string) (store.Snapshot, error) {
	doc, ok := s.collections[collection][id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return snapshot{id: id, data: copyMap(doc)}, nil
}

func (s *Store) Find(ctx context.Context, collection string, q store.Query) ([]store.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	type row struct {
		id   string
		data map[string]any
	}
	var rows []row
	for id, doc := range s.collections[collection] {
		if matchesAll(doc, q.Filters) {
			if q.OrderBy != nil {
				if _, ok := doc[q.OrderBy.Field]; !ok {
					continue
				}
			}
			rows = append(rows, row{id: id, data: doc})
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if q.OrderBy != nil {
			c, ok := compare(rows[i].data[q.OrderBy.Field], rows[j].data[q.OrderBy.Field])
			if ok && c != 0 {
				if q.OrderBy.Direction == store.Desc {
					return c > 0
				}
				return c < 0
			}
		}
		return rows[i].id < rows[j].id
	})

	if q.Offset > 0 {
		if q.Offset >= len(rows) {
			rows = nil
		} else {
			rows = rows[q.Offset:]
		}
	}
	if q.Limit > 0 && len(rows) > q.Limit {
		rows = rows[:q.Limit]
	}

	out := make([]store.Snapshot, len(rows))
	for i, r := range rows {
		out[i] = snapshot{id: r.id, data: copyMap(r.data)}
	}
	return out, nil
}

func (s *Store) Create(ctx context.Context, collection, id string, fields map[string]any) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if id == "" {
		id = newID()
	}
	doc := make(map[string]any, len(fields)+2)
	for k, v := range fields {
		doc[k] = normalize(v)
	}
	now := s.now()
	doc["createdAt"] = now
	doc["updatedAt"] = now

	if s.collections[collection] == nil {
		s.collections[collection] = make(map[string]map[string]any)
	}
	s.collections[collection][id] = doc
	return id, nil
}

func (s *Store) Update(ctx context.Context, collection, id string, updates ...store.Update) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.apply(collection, id, updates)
}

func (s *Store) apply(collection, id string, updates []store.Update) error {
	current, ok := s.collections[collection][id]
	if !ok {
		return store.ErrNotFound
	}
	doc := copyMap(current)
	now := s.now()
	for _, u := range updates {
		if err := applyUpdate(doc, u, now); err != nil {
			return fmt.Errorf("memory: %s/%s field %q: %w", collection, id, u.Field, err)
		}
	}
	s.collections[collection][id] = doc
	return nil
}

func (s *Store) Delete(ctx context.Context, collection, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.collections[collection], id)
	// Child collections of the deleted document are left in place, as Firestore does.
	return nil
}

type pendingWrite struct {
	collection string
	id         string
	updates    []store.Update
}

type tx struct {
	s      *Store
	writes []pendingWrite
}

func (t *tx) Get(ctx context.Context, collection, id string) (store.Snapshot, error) {
	if len(t.writes) > 0 {
		return nil, errReadAfterWrite
	}
	return t.s.get(collection, id)
}

func (t *tx) Update(ctx context.Context, collection, id string, updates ...store.Update) error {
	t.writes = append(t.writes, pendingWrite{collection: collection, id: id, updates: updates})
	return nil
}

// RunTransaction holds the store lock for the duration of fn and commits the
// staged writes only if fn succeeds and every target document exists.
func (s *Store) RunTransaction(ctx context.Context, fn func(ctx context.Context, tx store.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	t := &tx{s: s}
	if err := fn(ctx, t); err != nil {
		return err
	}
	for _, w := range t.writes {
		if _, ok := s.collections[w.collection][w.id]; !ok {
			return store.ErrNotFound
		}
	}
	for _, w := range t.writes {
		if err := s.apply(w.collection, w.id, w.updates); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) Close() error { return nil }

// Len returns the number of documents in a collection.
func (s *Store) Len(collection string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.collections[collection])
}

func newID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:20]
}
