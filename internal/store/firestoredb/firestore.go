// Package firestoredb implements store.Store on Cloud Firestore.
package firestoredb

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"github.com/anonto42/moments/backend/internal/store"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Store wraps a Firestore client obtained from the Firebase app.
type Store struct {
	client *firestore.Client
}

// New creates a Store over an existing client. Close closes the client.
func New(client *firestore.Client) *Store {
	return &Store{client: client}
}

var _ store.Store = (*Store)(nil)

type snapshot struct {
	snap *firestore.DocumentSnapshot
}

func (s snapshot) ID() string { return s.snap.Ref.ID }

func (s snapshot) DataTo(dst any) error { return s.snap.DataTo(dst) }

func (s *Store) Get(ctx context.Context, collection, id string) (store.Snapshot, error) {
	snap, err := s.client.Collection(collection).Doc(id).Get(ctx)
	if err != nil {
		return nil, mapError(err)
	}
	return snapshot{snap: snap}, nil
}

func (s *Store) Find(ctx context.Context, collection string, q store.Query) ([]store.Snapshot, error) {
	query := s.client.Collection(collection).Query
	for _, f := range q.Filters {
		query = query.Where(f.Field, string(f.Op), f.Value)
	}
	if q.OrderBy != nil {
		dir := firestore.Asc
		if q.OrderBy.Direction == store.Desc {
			dir = firestore.Desc
		}
		query = query.OrderBy(q.OrderBy.Field, dir)
	}
	if q.Offset > 0 {
		query = query.Offset(q.Offset)
	}
	if q.Limit > 0 {
		query = query.Limit(q.Limit)
	}

	iter := query.Documents(ctx)
	defer iter.Stop()

	var out []store.Snapshot
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, mapError(err)
		}
		out = append(out, snapshot{snap: snap})
	}
	return out, nil
}

func (s *Store) Create(ctx context.Context, collection, id string, fields map[string]any) (string, error) {
	coll := s.client.Collection(collection)
	ref := coll.NewDoc()
	if id != "" {
		ref = coll.Doc(id)
	}

	data := make(map[string]any, len(fields)+2)
	for k, v := range fields {
		data[k] = v
	}
	data["createdAt"] = firestore.ServerTimestamp
	data["updatedAt"] = firestore.ServerTimestamp

	if _, err := ref.Set(ctx, data); err != nil {
		return "", mapError(err)
	}
	return ref.ID, nil
}

func (s *Store) Update(ctx context.Context, collection, id string, updates ...store.Update) error {
	_, err := s.client.Collection(collection).Doc(id).Update(ctx, toFirestore(updates))
	return mapError(err)
}

func (s *Store) Delete(ctx context.Context, collection, id string) error {
	_, err := s.client.Collection(collection).Doc(id).Delete(ctx)
	return mapError(err)
}

type tx struct {
	client *firestore.Client
	tx     *firestore.Transaction
}

func (t *tx) Get(_ context.Context, collection, id string) (store.Snapshot, error) {
	snap, err := t.tx.Get(t.client.Collection(collection).Doc(id))
	if err != nil {
		return nil, mapError(err)
	}
	return snapshot{snap: snap}, nil
}

func (t *tx) Update(_ context.Context, collection, id string, updates ...store.Update) error {
	return mapError(t.tx.Update(t.client.Collection(collection).Doc(id), toFirestore(updates)))
}

func (s *Store) RunTransaction(ctx context.Context, fn func(ctx context.Context, tx store.Tx) error) error {
	err := s.client.RunTransaction(ctx, func(ctx context.Context, ftx *firestore.Transaction) error {
		return fn(ctx, &tx{client: s.client, tx: ftx})
	})
	return mapError(err)
}

func (s *Store) Close() error {
	return s.client.Close()
}

func toFirestore(updates []store.Update) []firestore.Update {
	out := make([]firestore.Update, 0, len(updates))
	for _, u := range updates {
		var value any
		switch u.Kind {
		case store.KindSet:
			value = u.Value
		case store.KindIncrement:
			value = firestore.Increment(u.Delta)
		case store.KindArrayUnion:
			value = firestore.ArrayUnion(u.Values...)
		case store.KindArrayRemove:
			value = firestore.ArrayRemove(u.Values...)
		case store.KindServerTimestamp:
			value = firestore.ServerTimestamp
		default:
			panic(fmt.Sprintf("firestoredb: unknown update kind %d", u.Kind))
		}
		out = append(out, firestore.Update{Path: u.Field, Value: value})
	}
	return out
}

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, store.ErrNotFound) {
		return err
	}
	if status.Code(err) == codes.NotFound {
		return fmt.Errorf("%w: %v", store.ErrNotFound, err)
	}
	return err
}
