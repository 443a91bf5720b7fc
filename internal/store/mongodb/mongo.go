// Package mongodb implements store.Store on MongoDB. Child collections such as
// posts/{id}/comments live in the leaf collection ("comments") and carry their
// parent path in a _parent field.
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/anonto42/moments/backend/internal/store"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const parentField = "_parent"

// Store maps collections onto one MongoDB database.
type Store struct {
	db *mongo.Database
}

// New creates a Store over db. Close disconnects the underlying client.
func New(db *mongo.Database) *Store {
	return &Store{db: db}
}

var _ store.Store = (*Store)(nil)

type snapshot struct {
	id  string
	raw bson.Raw
}

func (s snapshot) ID() string { return s.id }

func (s snapshot) DataTo(dst any) error { return bson.Unmarshal(s.raw, dst) }

func (s *Store) collection(path string) (*mongo.Collection, string) {
	parent, leaf := store.SplitPath(path)
	return s.db.Collection(leaf), parent
}

func keyFilter(parent, id string) bson.M {
	filter := bson.M{"_id": id}
	if parent != "" {
		filter[parentField] = parent
	}
	return filter
}

func (s *Store) Get(ctx context.Context, collection, id string) (store.Snapshot, error) {
	coll, parent := s.collection(collection)
	raw, err := coll.FindOne(ctx, keyFilter(parent, id)).Raw()
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return snapshot{id: id, raw: raw}, nil
}

func (s *Store) Find(ctx context.Context, collection string, q store.Query) ([]store.Snapshot, error) {
	coll, parent := s.collection(collection)

	findOptions := options.Find()
	sort := bson.D{{Key: "_id", Value: 1}}
	if q.OrderBy != nil {
		dir := 1
		if q.OrderBy.Direction == store.Desc {
			dir = -1
		}
		sort = append(bson.D{{Key: q.OrderBy.Field, Value: dir}}, sort...)
	}
	findOptions.SetSort(sort)
	if q.Offset > 0 {
		findOptions.SetSkip(int64(q.Offset))
	}
	if q.Limit > 0 {
		findOptions.SetLimit(int64(q.Limit))
	}

	filter := buildFilter(parent, q)
	cursor, err := coll.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []store.Snapshot
	for cursor.Next(ctx) {
		raw := make(bson.Raw, len(cursor.Current))
		copy(raw, cursor.Current)
		id, ok := raw.Lookup("_id").StringValueOK()
		if !ok {
			return nil, fmt.Errorf("mongodb: document in %s has a non-string _id", collection)
		}
		out = append(out, snapshot{id: id, raw: raw})
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// buildFilter merges all filters on one field into a single operator document,
// so range pairs such as >= and < apply together.
func buildFilter(parent string, q store.Query) bson.M {
	filter := bson.M{}
	if parent != "" {
		filter[parentField] = parent
	}
	ops := map[string]bson.M{}
	for _, f := range q.Filters {
		m, ok := ops[f.Field]
		if !ok {
			m = bson.M{}
			ops[f.Field] = m
		}
		switch f.Op {
		case store.OpEqual, store.OpArrayContains:
			m["$eq"] = f.Value
		case store.OpNotEqual:
			m["$ne"] = f.Value
			m["$exists"] = true
		case store.OpLess:
			m["$lt"] = f.Value
		case store.OpLessOrEqual:
			m["$lte"] = f.Value
		case store.OpGreater:
			m["$gt"] = f.Value
		case store.OpGreaterOrEqual:
			m["$gte"] = f.Value
		case store.OpIn, store.OpArrayContainsAny:
			m["$in"] = f.Value
		case store.OpNotIn:
			m["$nin"] = f.Value
			m["$exists"] = true
		}
	}
	for field, m := range ops {
		filter[field] = m
	}
	if q.OrderBy != nil {
		if _, filtered := ops[q.OrderBy.Field]; !filtered {
			filter[q.OrderBy.Field] = bson.M{"$exists": true}
		}
	}
	return filter
}

// Create writes the document whole, replacing any existing one. createdAt and
// updatedAt come from the server clock ($$NOW), like Firestore's
// ServerTimestamp.
func (s *Store) Create(ctx context.Context, collection, id string, fields map[string]any) (string, error) {
	coll, parent := s.collection(collection)
	if id == "" {
		id = primitive.NewObjectID().Hex()
	}

	_, err := coll.UpdateOne(ctx, keyFilter(parent, id), buildCreate(parent, id, fields), options.Update().SetUpsert(true))
	if err != nil {
		return "", err
	}
	return id, nil
}

// buildCreate is a replacement pipeline. Caller values go through $literal so
// strings starting with "$" are stored as-is.
func buildCreate(parent, id string, fields map[string]any) mongo.Pipeline {
	doc := bson.M{}
	for k, v := range fields {
		doc[k] = v
	}
	doc["_id"] = id
	if parent != "" {
		doc[parentField] = parent
	}
	return mongo.Pipeline{
		{{Key: "$replaceWith", Value: bson.M{"$mergeObjects": bson.A{
			bson.M{"$literal": doc},
			bson.M{"createdAt": "$$NOW", "updatedAt": "$$NOW"},
		}}}},
	}
}

func (s *Store) Update(ctx context.Context, collection, id string, updates ...store.Update) error {
	coll, parent := s.collection(collection)
	res, err := coll.UpdateOne(ctx, keyFilter(parent, id), buildUpdate(updates))
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func buildUpdate(updates []store.Update) bson.M {
	groups := map[string]bson.M{}
	put := func(op, field string, value any) {
		g, ok := groups[op]
		if !ok {
			g = bson.M{}
			groups[op] = g
		}
		g[field] = value
	}
	for _, u := range updates {
		switch u.Kind {
		case store.KindSet:
			put("$set", u.Field, u.Value)
		case store.KindIncrement:
			put("$inc", u.Field, u.Delta)
		case store.KindArrayUnion:
			put("$addToSet", u.Field, bson.M{"$each": u.Values})
		case store.KindArrayRemove:
			put("$pull", u.Field, bson.M{"$in": u.Values})
		case store.KindServerTimestamp:
			put("$currentDate", u.Field, true)
		}
	}
	update := bson.M{}
	for op, g := range groups {
		update[op] = g
	}
	return update
}

func (s *Store) Delete(ctx context.Context, collection, id string) error {
	coll, parent := s.collection(collection)
	_, err := coll.DeleteOne(ctx, keyFilter(parent, id))
	return err
}

type tx struct {
	s *Store
}

func (t tx) Get(ctx context.Context, collection, id string) (store.Snapshot, error) {
	return t.s.Get(ctx, collection, id)
}

func (t tx) Update(ctx context.Context, collection, id string, updates ...store.Update) error {
	return t.s.Update(ctx, collection, id, updates...)
}

// RunTransaction requires a replica set or sharded cluster.
func (s *Store) RunTransaction(ctx context.Context, fn func(ctx context.Context, tx store.Tx) error) error {
	session, err := s.db.Client().StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc, tx{s: s})
	})
	return err
}

func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.db.Client().Disconnect(ctx)
}
