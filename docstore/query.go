package docstore

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// GetByID returns the document with the given id, or nil when there is none.
func (s *Store[D, K]) GetByID(ctx context.Context, id K) (D, error) {
	return s.GetOne(ctx, ByID(id))
}

// GetOne returns the first document matching filter, or nil when there is none.
func (s *Store[D, K]) GetOne(ctx context.Context, filter bson.D) (D, error) {
	var doc D
	found, err := findOne(ctx, s.coll, filter, nil, &doc)
	if err != nil || !found {
		var zero D
		return zero, err
	}
	return doc, nil
}

// GetAll returns every document matching filter.
func (s *Store[D, K]) GetAll(ctx context.Context, filter bson.D) ([]D, error) {
	return findMany[D](ctx, s.coll, filter, nil)
}

// ProjectOne evaluates filter in the store and decodes only the projected
// fields of the first match into P. It returns nil when nothing matches.
func ProjectOne[P any, D interface{ Collection() Collection }](ctx context.Context, s D, filter, projection bson.D) (*P, error) {
	var p P
	found, err := findOne(ctx, s.Collection(), filter, projection, &p)
	if err != nil || !found {
		return nil, err
	}
	return &p, nil
}

// ProjectMany is ProjectOne for every match.
func ProjectMany[P any, D interface{ Collection() Collection }](ctx context.Context, s D, filter, projection bson.D) ([]P, error) {
	return findMany[P](ctx, s.Collection(), filter, projection)
}

func findOne(ctx context.Context, coll Collection, filter, projection bson.D, out any) (bool, error) {
	raw, err := coll.FindOne(ctx, filter, projection)
	if errors.Is(err, ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := bson.Unmarshal(raw, out); err != nil {
		return false, err
	}
	return true, nil
}

func findMany[T any](ctx context.Context, coll Collection, filter, projection bson.D) ([]T, error) {
	raws, err := coll.Find(ctx, filter, projection)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(raws))
	for _, raw := range raws {
		var v T
		if err := bson.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
