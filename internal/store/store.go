// Package store defines the document database capability the repositories and
// ledgers are written against: point reads, filtered queries, creates, partial
// updates with atomic field operations, deletes and multi-document transactions.
package store

import (
	"context"
	"errors"
	"strings"
)

// ErrNotFound is returned when the addressed document does not exist.
var ErrNotFound = errors.New("document not found")

// Store is implemented by the Firestore, MongoDB and in-memory backends.
type Store interface {
	Get(ctx context.Context, collection, id string) (Snapshot, error)
	Find(ctx context.Context, collection string, q Query) ([]Snapshot, error)
	// Create writes a new document. An empty id asks the backend to assign one.
	// createdAt and updatedAt are set to the server timestamp.
	Create(ctx context.Context, collection, id string, fields map[string]any) (string, error)
	// Update applies all updates to one document in a single write.
	Update(ctx context.Context, collection, id string, updates ...Update) error
	Delete(ctx context.Context, collection, id string) error
	RunTransaction(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	Close() error
}

// Tx is the view of the store inside RunTransaction. All reads must happen
// before the first write.
type Tx interface {
	Get(ctx context.Context, collection, id string) (Snapshot, error)
	Update(ctx context.Context, collection, id string, updates ...Update) error
}

// Snapshot is one document as read from the store.
type Snapshot interface {
	ID() string
	DataTo(dst any) error
}

// Sub returns the path of a child collection, e.g. Sub("posts", id, "comments").
func Sub(parent, id, child string) string {
	return parent + "/" + id + "/" + child
}

// SplitPath separates a collection path into its parent document path and leaf
// collection name. Top-level collections have an empty parent.
func SplitPath(collection string) (parent, leaf string) {
	i := strings.LastIndex(collection, "/")
	if i < 0 {
		return "", collection
	}
	return collection[:i], collection[i+1:]
}
