// Package docstore persists top-level identity documents with an optimistic
// concurrency stamp and reads them back, whole or projected.
package docstore

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/v2/bson"
)

var (
	// ErrNoDocuments is returned by Collection.FindOne when nothing matches.
	ErrNoDocuments = errors.New("docstore: no documents in result")
	// ErrDuplicateKey is returned by Collection.InsertOne on a unique key violation.
	ErrDuplicateKey = errors.New("docstore: duplicate key")
)

// Collection is what a document database has to offer for this package to work.
// Filters and projections are BSON documents; the supported filter operators are
// equality (which matches array membership), $in, $elemMatch and $and.
type Collection interface {
	InsertOne(ctx context.Context, doc any) error
	// ReplaceOne replaces the first document matching filter and returns the
	// number of documents modified.
	ReplaceOne(ctx context.Context, filter bson.D, doc any) (int64, error)
	// DeleteOne deletes the first document matching filter and returns the
	// number of documents deleted.
	DeleteOne(ctx context.Context, filter bson.D) (int64, error)
	FindOne(ctx context.Context, filter bson.D, projection bson.D) (bson.Raw, error)
	Find(ctx context.Context, filter bson.D, projection bson.D) ([]bson.Raw, error)
	// UpdateField sets a single top-level field of the document with the given id.
	// It reports whether a document matched.
	UpdateField(ctx context.Context, id any, field string, value any) (bool, error)
	Drop(ctx context.Context) error
}
