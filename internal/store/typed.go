package store

import (
	"context"
	"fmt"
)

// Entity is implemented by pointer model types whose id lives outside the document body.
type Entity[T any] interface {
	*T
	SetID(id string)
}

// Decode converts a snapshot into a model and stamps its id.
func Decode[T any, PT Entity[T]](snap Snapshot) (*T, error) {
	var v T
	if err := snap.DataTo(&v); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", snap.ID(), err)
	}
	PT(&v).SetID(snap.ID())
	return &v, nil
}

// GetAs reads one document into a model.
func GetAs[T any, PT Entity[T]](ctx context.Context, s Store, collection, id string) (*T, error) {
	snap, err := s.Get(ctx, collection, id)
	if err != nil {
		return nil, err
	}
	return Decode[T, PT](snap)
}

// FindAs runs a query and decodes every result.
func FindAs[T any, PT Entity[T]](ctx context.Context, s Store, collection string, q Query) ([]T, error) {
	snaps, err := s.Find(ctx, collection, q)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(snaps))
	for _, snap := range snaps {
		v, err := Decode[T, PT](snap)
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}
	return out, nil
}

// TxGetAs reads one document into a model inside a transaction.
func TxGetAs[T any, PT Entity[T]](ctx context.Context, tx Tx, collection, id string) (*T, error) {
	snap, err := tx.Get(ctx, collection, id)
	if err != nil {
		return nil, err
	}
	return Decode[T, PT](snap)
}
