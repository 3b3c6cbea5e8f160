// Package memstore is an in-process document collection understanding the
// filter subset used by docstore. It backs unit tests and the CLI's --memory mode.
package memstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/pilab-dev/shadow-identity/docstore"
)

var errMissingID = errors.New("memstore: document has no _id")

// Collection keeps BSON documents in insertion order.
type Collection struct {
	mu     sync.RWMutex
	docs   []bson.Raw
	unique []string
}

// Option configures a Collection.
type Option func(*Collection)

// WithUnique makes the given top-level fields unique, like a unique index.
// Documents where the field is missing, null or empty are not constrained.
func WithUnique(fields ...string) Option {
	return func(c *Collection) { c.unique = append(c.unique, fields...) }
}

func New(opts ...Option) *Collection {
	c := &Collection{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ docstore.Collection = (*Collection)(nil)

// Len returns the number of stored documents.
func (c *Collection) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.docs)
}

func (c *Collection) InsertOne(ctx context.Context, doc any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	raw, err := bson.Marshal(doc)
	if err != nil {
		return err
	}
	id, err := bson.Raw(raw).LookupErr(docstore.FieldID)
	if err != nil {
		return errMissingID
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.indexOfID(id) >= 0 {
		return fmt.Errorf("%w: _id %s", docstore.ErrDuplicateKey, id)
	}
	if err := c.checkUnique(raw, -1); err != nil {
		return err
	}
	c.docs = append(c.docs, raw)
	return nil
}

func (c *Collection) ReplaceOne(ctx context.Context, filter bson.D, doc any) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	raw, err := bson.Marshal(doc)
	if err != nil {
		return 0, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	i, err := c.firstMatch(filter)
	if err != nil || i < 0 {
		return 0, err
	}
	if err := c.checkUnique(raw, i); err != nil {
		return 0, err
	}
	if bytes.Equal(c.docs[i], raw) {
		return 0, nil
	}
	c.docs[i] = raw
	return 1, nil
}

func (c *Collection) DeleteOne(ctx context.Context, filter bson.D) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	i, err := c.firstMatch(filter)
	if err != nil || i < 0 {
		return 0, err
	}
	c.docs = slices.Delete(c.docs, i, i+1)
	return 1, nil
}

func (c *Collection) FindOne(ctx context.Context, filter bson.D, projection bson.D) (bson.Raw, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	i, err := c.firstMatch(filter)
	if err != nil {
		return nil, err
	}
	if i < 0 {
		return nil, docstore.ErrNoDocuments
	}
	return project(c.docs[i], projection)
}

func (c *Collection) Find(ctx context.Context, filter bson.D, projection bson.D) ([]bson.Raw, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := marshalFilter(filter)
	if err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []bson.Raw
	for _, doc := range c.docs {
		ok, err := matches(doc, f)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		p, err := project(doc, projection)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (c *Collection) UpdateField(ctx context.Context, id any, field string, value any) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	i, err := c.firstMatch(docstore.ByID(id))
	if err != nil || i < 0 {
		return false, err
	}

	var d bson.D
	if err := bson.Unmarshal(c.docs[i], &d); err != nil {
		return false, err
	}
	set := false
	for j := range d {
		if d[j].Key == field {
			d[j].Value = value
			set = true
		}
	}
	if !set {
		d = append(d, bson.E{Key: field, Value: value})
	}
	raw, err := bson.Marshal(d)
	if err != nil {
		return false, err
	}
	if err := c.checkUnique(raw, i); err != nil {
		return false, err
	}
	c.docs[i] = raw
	return true, nil
}

func (c *Collection) Drop(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.docs = nil
	return nil
}

// firstMatch returns the index of the first document matching filter, or -1.
// The caller holds the lock.
func (c *Collection) firstMatch(filter bson.D) (int, error) {
	f, err := marshalFilter(filter)
	if err != nil {
		return -1, err
	}
	for i, doc := range c.docs {
		ok, err := matches(doc, f)
		if err != nil {
			return -1, err
		}
		if ok {
			return i, nil
		}
	}
	return -1, nil
}

func (c *Collection) indexOfID(id bson.RawValue) int {
	return slices.IndexFunc(c.docs, func(doc bson.Raw) bool {
		v, err := doc.LookupErr(docstore.FieldID)
		return err == nil && v.Equal(id)
	})
}

// checkUnique rejects raw when it collides on a unique field with any stored
// document other than the one at index skip.
func (c *Collection) checkUnique(raw bson.Raw, skip int) error {
	for _, field := range c.unique {
		v, err := raw.LookupErr(field)
		if err != nil || isEmpty(v) {
			continue
		}
		for i, doc := range c.docs {
			if i == skip {
				continue
			}
			if other, err := doc.LookupErr(field); err == nil && other.Equal(v) {
				return fmt.Errorf("%w: %s %s", docstore.ErrDuplicateKey, field, v)
			}
		}
	}
	return nil
}

func isEmpty(v bson.RawValue) bool {
	switch v.Type {
	case bson.TypeNull, bson.TypeUndefined:
		return true
	case bson.TypeString:
		return v.StringValue() == ""
	}
	return false
}
