package identity_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pilab-dev/shadow-identity/domain"
	"github.com/pilab-dev/shadow-identity/identity"
	"github.com/pilab-dev/shadow-identity/memstore"
)

func TestRoleStore(t *testing.T) {
	roles := identity.NewRoleStore[string](memstore.New(memstore.WithUnique("normalized_name")))
	ctx := context.Background()

	r := domain.NewRole[string]("Admin")
	r.NormalizedName = "ADMIN"
	res, err := roles.CreateRole(ctx, r)
	require.NoError(t, err)
	require.True(t, res.Succeeded)
	assert.NotEmpty(t, r.ID)

	dup := domain.NewRole[string]("admin")
	dup.NormalizedName = "ADMIN"
	res, err = roles.CreateRole(ctx, dup)
	require.NoError(t, err)
	assert.True(t, res.Has(domain.CodeDuplicateKey))

	byName, err := roles.FindRoleByName(ctx, "ADMIN")
	require.NoError(t, err)
	require.NotNil(t, byName)
	assert.Equal(t, r.ID, byName.ID)

	stale, err := roles.FindRoleByID(ctx, r.ID)
	require.NoError(t, err)

	r.Name = "Administrators"
	res, err = roles.UpdateRole(ctx, r)
	require.NoError(t, err)
	require.True(t, res.Succeeded)

	res, err = roles.DeleteRole(ctx, stale)
	require.NoError(t, err)
	assert.True(t, res.IsConcurrencyFailure())

	all, err := roles.ListRoles(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Administrators", all[0].Name)

	res, err = roles.DeleteRole(ctx, r)
	require.NoError(t, err)
	assert.True(t, res.Succeeded)

	gone, err := roles.FindRoleByName(ctx, "ADMIN")
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestUpperInvariantNormalizer(t *testing.T) {
	n := identity.UpperInvariantNormalizer{}
	assert.Equal(t, "ALICE@EXAMPLE.COM", n.Normalize("alice@Example.com"))
	assert.Equal(t, "ÉLAN", n.Normalize("élan"))
}
