package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/pilab-dev/shadow-identity/docstore"
)

// Collection adapts a *mongo.Collection to docstore.Collection.
type Collection struct {
	coll *mongo.Collection
}

func NewCollection(coll *mongo.Collection) *Collection {
	return &Collection{coll: coll}
}

var _ docstore.Collection = (*Collection)(nil)

// Mongo returns the wrapped driver collection.
func (c *Collection) Mongo() *mongo.Collection { return c.coll }

func (c *Collection) InsertOne(ctx context.Context, doc any) error {
	_, err := c.coll.InsertOne(ctx, doc)
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%w: %v", docstore.ErrDuplicateKey, err)
	}
	return err
}

func (c *Collection) ReplaceOne(ctx context.Context, filter bson.D, doc any) (int64, error) {
	res, err := c.coll.ReplaceOne(ctx, filter, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return 0, fmt.Errorf("%w: %v", docstore.ErrDuplicateKey, err)
		}
		return 0, err
	}
	return res.ModifiedCount, nil
}

func (c *Collection) DeleteOne(ctx context.Context, filter bson.D) (int64, error) {
	res, err := c.coll.DeleteOne(ctx, filter)
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (c *Collection) FindOne(ctx context.Context, filter bson.D, projection bson.D) (bson.Raw, error) {
	opts := options.FindOne()
	if len(projection) > 0 {
		opts.SetProjection(projection)
	}
	raw, err := c.coll.FindOne(ctx, filterOrAll(filter), opts).Raw()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, docstore.ErrNoDocuments
	}
	return raw, err
}

func (c *Collection) Find(ctx context.Context, filter bson.D, projection bson.D) ([]bson.Raw, error) {
	opts := options.Find()
	if len(projection) > 0 {
		opts.SetProjection(projection)
	}
	cursor, err := c.coll.Find(ctx, filterOrAll(filter), opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []bson.Raw
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

func (c *Collection) UpdateField(ctx context.Context, id any, field string, value any) (bool, error) {
	res, err := c.coll.UpdateOne(ctx, docstore.ByID(id), bson.D{{Key: "$set", Value: bson.D{{Key: field, Value: value}}}})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return false, fmt.Errorf("%w: %v", docstore.ErrDuplicateKey, err)
		}
		return false, err
	}
	return res.MatchedCount > 0, nil
}

func (c *Collection) Drop(ctx context.Context) error {
	return c.coll.Drop(ctx)
}

func filterOrAll(filter bson.D) bson.D {
	if filter == nil {
		return bson.D{}
	}
	return filter
}
