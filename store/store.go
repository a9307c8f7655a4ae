// Package store abstracts the document database behind a small collection
// interface so the data layer can be exercised against either MongoDB or an
// in-memory implementation.
package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ErrNoDocument is returned by FindOne when no document matches the filter.
var ErrNoDocument = errors.New("store: no matching document")

// ErrDuplicateKey is returned by InsertOne when the document would violate a
// unique index.
var ErrDuplicateKey = errors.New("store: duplicate key")

// FindOptions carry the optional sort/limit/skip parameters of a Find.
type FindOptions struct {
	Sort  bson.D
	Limit int64
	Skip  int64
}

// Collection is the subset of document-collection operations the data layer
// depends on. results must be a pointer to a slice; result a pointer to a
// struct or map.
type Collection interface {
	Find(ctx context.Context, filter bson.M, opts *FindOptions, results interface{}) error
	FindOne(ctx context.Context, filter bson.M, result interface{}) error
	InsertOne(ctx context.Context, doc interface{}) (primitive.ObjectID, error)
	UpdateOne(ctx context.Context, filter bson.M, update bson.M) (int64, error)
	DeleteOne(ctx context.Context, filter bson.M) (int64, error)
	CountDocuments(ctx context.Context, filter bson.M) (int64, error)
}

// IsDuplicateKey reports whether err represents a unique-index violation,
// from either backend.
func IsDuplicateKey(err error) bool {
	return errors.Is(err, ErrDuplicateKey) || mongo.IsDuplicateKeyError(err)
}
