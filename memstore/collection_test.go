package memstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/pilab-dev/shadow-identity/docstore"
)

type login struct {
	Provider string `bson:"login_provider"`
	Key      string `bson:"provider_key"`
}

type doc struct {
	ID     string   `bson:"_id"`
	Name   string   `bson:"name"`
	Stamp  string   `bson:"stamp"`
	Roles  []string `bson:"roles"`
	Logins []login  `bson:"logins"`
}

func seeded(t *testing.T, opts ...Option) *Collection {
	t.Helper()
	c := New(opts...)
	ctx := context.Background()
	require.NoError(t, c.InsertOne(ctx, doc{ID: "1", Name: "ann", Stamp: "s1", Roles: []string{"r1", "r2"},
		Logins: []login{{Provider: "github", Key: "ann-gh"}}}))
	require.NoError(t, c.InsertOne(ctx, doc{ID: "2", Name: "bob", Stamp: "s1", Roles: []string{"r2"},
		Logins: []login{{Provider: "google", Key: "bob-g"}, {Provider: "github", Key: "bob-gh"}}}))
	require.NoError(t, c.InsertOne(ctx, doc{ID: "3", Name: "cid", Stamp: "s1", Roles: []string{}}))
	return c
}

func ids(t *testing.T, raws []bson.Raw) []string {
	t.Helper()
	out := make([]string, 0, len(raws))
	for _, r := range raws {
		out = append(out, r.Lookup("_id").StringValue())
	}
	return out
}

func TestFind_FilterOperators(t *testing.T) {
	c := seeded(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		filter bson.D
		want   []string
	}{
		{"all", docstore.All(), []string{"1", "2", "3"}},
		{"equality", docstore.Eq("name", "bob"), []string{"2"}},
		{"array contains", docstore.Contains("roles", "r2"), []string{"1", "2"}},
		{"in", docstore.In(docstore.FieldID, []string{"1", "3", "9"}), []string{"1", "3"}},
		{"elemMatch", docstore.ElemMatch("logins", bson.D{{Key: "login_provider", Value: "github"}, {Key: "provider_key", Value: "bob-gh"}}), []string{"2"}},
		{"elemMatch needs one element to match all", docstore.ElemMatch("logins", bson.D{{Key: "login_provider", Value: "google"}, {Key: "provider_key", Value: "ann-gh"}}), []string{}},
		{"and", docstore.And(docstore.Contains("roles", "r2"), docstore.Eq("name", "ann")), []string{"1"}},
		{"missing field", docstore.Eq("nickname", "x"), []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.Find(ctx, tt.filter, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(t, got))
		})
	}
}

func TestFind_UnsupportedOperator(t *testing.T) {
	c := seeded(t)
	_, err := c.Find(context.Background(), bson.D{{Key: "name", Value: bson.D{{Key: "$regex", Value: "a"}}}}, nil)
	assert.Error(t, err)
}

func TestReplaceOneHonoursFilter(t *testing.T) {
	c := seeded(t)
	ctx := context.Background()
	filter := docstore.And(docstore.ByID("1"), docstore.Eq("stamp", "s1"))

	n, err := c.ReplaceOne(ctx, filter, doc{ID: "1", Name: "ann", Stamp: "s2"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	n, err = c.ReplaceOne(ctx, filter, doc{ID: "1", Name: "stale", Stamp: "s3"})
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)

	raw, err := c.FindOne(ctx, docstore.ByID("1"), nil)
	require.NoError(t, err)
	assert.Equal(t, "s2", raw.Lookup("stamp").StringValue())
}

func TestDeleteOne(t *testing.T) {
	c := seeded(t)
	ctx := context.Background()

	n, err := c.DeleteOne(ctx, docstore.And(docstore.ByID("2"), docstore.Eq("stamp", "other")))
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)

	n, err = c.DeleteOne(ctx, docstore.ByID("2"))
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	assert.Equal(t, 2, c.Len())

	_, err = c.FindOne(ctx, docstore.ByID("2"), nil)
	assert.ErrorIs(t, err, docstore.ErrNoDocuments)
}

func TestUpdateField(t *testing.T) {
	c := seeded(t)
	ctx := context.Background()

	ok, err := c.UpdateField(ctx, "3", "roles", []string{"r9"})
	require.NoError(t, err)
	assert.True(t, ok)

	var got doc
	raw, err := c.FindOne(ctx, docstore.ByID("3"), nil)
	require.NoError(t, err)
	require.NoError(t, bson.Unmarshal(raw, &got))
	assert.Equal(t, []string{"r9"}, got.Roles)
	assert.Equal(t, "cid", got.Name)

	ok, err = c.UpdateField(ctx, "404", "roles", []string{})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestProjection(t *testing.T) {
	c := seeded(t)
	raw, err := c.FindOne(context.Background(), docstore.ByID("1"), docstore.Fields("roles"))
	require.NoError(t, err)

	_, err = raw.LookupErr("roles")
	assert.NoError(t, err)
	_, err = raw.LookupErr("_id")
	assert.NoError(t, err)
	_, err = raw.LookupErr("name")
	assert.Error(t, err, "name is not projected")
}

func TestUniqueConstraints(t *testing.T) {
	c := seeded(t, WithUnique("name"))
	ctx := context.Background()

	err := c.InsertOne(ctx, doc{ID: "1", Name: "new"})
	assert.ErrorIs(t, err, docstore.ErrDuplicateKey)

	err = c.InsertOne(ctx, doc{ID: "4", Name: "bob"})
	assert.ErrorIs(t, err, docstore.ErrDuplicateKey)

	_, err = c.ReplaceOne(ctx, docstore.ByID("1"), doc{ID: "1", Name: "bob"})
	assert.ErrorIs(t, err, docstore.ErrDuplicateKey)

	require.NoError(t, c.InsertOne(ctx, doc{ID: "5", Name: ""}))
	require.NoError(t, c.InsertOne(ctx, doc{ID: "6", Name: ""}), "empty values are not constrained")
}

func TestCancelledContext(t *testing.T) {
	c := seeded(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Find(ctx, nil, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, c.InsertOne(ctx, doc{ID: "9"}), context.Canceled)
}
