package docstore_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/pilab-dev/shadow-identity/docstore"
	"github.com/pilab-dev/shadow-identity/domain"
	"github.com/pilab-dev/shadow-identity/memstore"
)

type userStore = docstore.Store[*domain.User[string], string]

func sequentialStamps() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("stamp-%d", n)
	}
}

func newUserStore(t *testing.T) (*userStore, *memstore.Collection) {
	t.Helper()
	coll := memstore.New()
	return docstore.NewStore[*domain.User[string], string](coll, "user", docstore.WithStampGenerator(sequentialStamps())), coll
}

func seedUser(t *testing.T, s *userStore, id string) {
	t.Helper()
	u := domain.NewUser[string](id)
	u.ID = id
	u.NormalizedUserName = id
	res, err := s.Create(context.Background(), u)
	require.NoError(t, err)
	require.True(t, res.Succeeded)
}

func TestStore_CreateAssignsStamp(t *testing.T) {
	s, _ := newUserStore(t)
	ctx := context.Background()

	u := domain.NewUser[string]("alice")
	u.ID = "u1"
	res, err := s.Create(ctx, u)
	require.NoError(t, err)
	assert.True(t, res.Succeeded)
	assert.Equal(t, "stamp-1", u.ConcurrencyStamp)

	got, err := s.GetByID(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "alice", got.UserName)
	assert.Equal(t, "stamp-1", got.ConcurrencyStamp)
}

func TestStore_CreateDuplicateIsFailedResult(t *testing.T) {
	s, _ := newUserStore(t)
	seedUser(t, s, "u1")

	dup := domain.NewUser[string]("again")
	dup.ID = "u1"
	res, err := s.Create(context.Background(), dup)
	require.NoError(t, err)
	assert.False(t, res.Succeeded)
	assert.True(t, res.Has(domain.CodeDuplicateKey))
}

func TestStore_UpdateDetectsLostUpdate(t *testing.T) {
	s, _ := newUserStore(t)
	ctx := context.Background()
	seedUser(t, s, "u1")

	copyA, err := s.GetByID(ctx, "u1")
	require.NoError(t, err)
	copyB, err := s.GetByID(ctx, "u1")
	require.NoError(t, err)

	copyA.Email = "a@example.com"
	res, err := s.Update(ctx, copyA)
	require.NoError(t, err)
	require.True(t, res.Succeeded)
	assert.NotEqual(t, copyB.ConcurrencyStamp, copyA.ConcurrencyStamp, "stamp must rotate on update")

	copyB.Email = "b@example.com"
	res, err = s.Update(ctx, copyB)
	require.NoError(t, err)
	assert.False(t, res.Succeeded)
	assert.True(t, res.IsConcurrencyFailure())

	stored, err := s.GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", stored.Email)
	assert.Equal(t, copyA.ConcurrencyStamp, stored.ConcurrencyStamp)
}

func TestStore_DeleteWithStaleStamp(t *testing.T) {
	s, coll := newUserStore(t)
	ctx := context.Background()
	seedUser(t, s, "u1")

	fresh, err := s.GetByID(ctx, "u1")
	require.NoError(t, err)
	stale, err := s.GetByID(ctx, "u1")
	require.NoError(t, err)

	res, err := s.Update(ctx, fresh)
	require.NoError(t, err)
	require.True(t, res.Succeeded)

	res, err = s.Delete(ctx, stale)
	require.NoError(t, err)
	assert.True(t, res.IsConcurrencyFailure())
	assert.Equal(t, 1, coll.Len(), "document must survive a stale delete")

	res, err = s.Delete(ctx, fresh)
	require.NoError(t, err)
	assert.True(t, res.Succeeded)
	assert.Equal(t, 0, coll.Len())
}

func TestStore_UpdateFieldLeavesStamp(t *testing.T) {
	s, _ := newUserStore(t)
	ctx := context.Background()
	seedUser(t, s, "u1")

	u, err := s.GetByID(ctx, "u1")
	require.NoError(t, err)
	stamp := u.ConcurrencyStamp

	u.AddClaim(domain.Claim{Type: "dept", Value: "ops"})
	ok, err := s.UpdateField(ctx, u, "claims", u.Claims)
	require.NoError(t, err)
	assert.True(t, ok)

	stored, err := s.GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, stamp, stored.ConcurrencyStamp)
	assert.Equal(t, []domain.Claim{{Type: "dept", Value: "ops"}}, stored.Claims)

	ghost := domain.NewUser[string]("ghost")
	ghost.ID = "missing"
	ok, err = s.UpdateField(ctx, ghost, "claims", ghost.Claims)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_QueriesReturnNilWhenAbsent(t *testing.T) {
	s, _ := newUserStore(t)
	ctx := context.Background()

	u, err := s.GetByID(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, u)

	all, err := s.GetAll(ctx, docstore.Eq("normalized_user_name", "NOPE"))
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestProjectManyDecodesOnlyProjectedFields(t *testing.T) {
	s, _ := newUserStore(t)
	ctx := context.Background()
	for _, id := range []string{"u1", "u2", "u3"} {
		seedUser(t, s, id)
	}

	type nameOnly struct {
		ID       string `bson:"_id"`
		UserName string `bson:"user_name"`
		Stamp    string `bson:"concurrency_stamp"`
	}
	got, err := docstore.ProjectMany[nameOnly](ctx, s, docstore.In(docstore.FieldID, []string{"u1", "u3"}), docstore.Fields("user_name"))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "u1", got[0].UserName)
	assert.Empty(t, got[0].Stamp, "unprojected field must not be decoded")

	one, err := docstore.ProjectOne[nameOnly](ctx, s, docstore.ByID("missing"), docstore.Fields("user_name"))
	require.NoError(t, err)
	assert.Nil(t, one)
}

// --- store errors pass through unchanged ---

type MockCollection struct {
	mock.Mock
}

func (m *MockCollection) InsertOne(ctx context.Context, doc any) error {
	return m.Called(ctx, doc).Error(0)
}
func (m *MockCollection) ReplaceOne(ctx context.Context, filter bson.D, doc any) (int64, error) {
	args := m.Called(ctx, filter, doc)
	return args.Get(0).(int64), args.Error(1)
}
func (m *MockCollection) DeleteOne(ctx context.Context, filter bson.D) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}
func (m *MockCollection) FindOne(ctx context.Context, filter bson.D, projection bson.D) (bson.Raw, error) {
	args := m.Called(ctx, filter, projection)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(bson.Raw), args.Error(1)
}
func (m *MockCollection) Find(ctx context.Context, filter bson.D, projection bson.D) ([]bson.Raw, error) {
	args := m.Called(ctx, filter, projection)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]bson.Raw), args.Error(1)
}
func (m *MockCollection) UpdateField(ctx context.Context, id any, field string, value any) (bool, error) {
	args := m.Called(ctx, id, field, value)
	return args.Bool(0), args.Error(1)
}
func (m *MockCollection) Drop(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func TestStore_UpdateUsesStampPrecondition(t *testing.T) {
	coll := new(MockCollection)
	s := docstore.NewStore[*domain.User[string], string](coll, "user", docstore.WithStampGenerator(func() string { return "new" }))
	ctx := context.Background()

	u := domain.NewUser[string]("alice")
	u.ID = "u1"
	u.ConcurrencyStamp = "old"

	want := docstore.And(docstore.ByID("u1"), docstore.Eq(docstore.FieldConcurrencyStamp, "old"))
	coll.On("ReplaceOne", mock.Anything, want, u).Return(int64(1), nil).Once()

	res, err := s.Update(ctx, u)
	require.NoError(t, err)
	assert.True(t, res.Succeeded)
	assert.Equal(t, "new", u.ConcurrencyStamp)
	coll.AssertExpectations(t)
}

func TestStore_StoreErrorsPropagate(t *testing.T) {
	coll := new(MockCollection)
	s := docstore.NewStore[*domain.User[string], string](coll, "user")
	ctx := context.Background()
	boom := errors.New("connection reset")

	u := domain.NewUser[string]("alice")
	u.ID = "u1"

	coll.On("InsertOne", mock.Anything, u).Return(boom).Once()
	coll.On("DeleteOne", mock.Anything, mock.Anything).Return(int64(0), boom).Once()
	coll.On("FindOne", mock.Anything, docstore.ByID("u1"), bson.D(nil)).Return(nil, boom).Once()

	_, err := s.Create(ctx, u)
	assert.ErrorIs(t, err, boom)

	_, err = s.Delete(ctx, u)
	assert.ErrorIs(t, err, boom)

	_, err = s.GetByID(ctx, "u1")
	assert.ErrorIs(t, err, boom)
	coll.AssertExpectations(t)
}
