package identity

import (
	"context"
	"time"

	"github.com/jellydator/ttlcache/v3"

	"github.com/pilab-dev/shadow-identity/docstore"
	"github.com/pilab-dev/shadow-identity/domain"
)

const fieldNormalizedName = "normalized_name"

// roleLookup resolves a role by its normalized name, nil when there is none.
type roleLookup[K comparable] interface {
	byName(ctx context.Context, normalizedName string) (*domain.Role[K], error)
}

type directRoleLookup[K comparable] struct {
	roles *docstore.Store[*domain.Role[K], K]
}

func (l directRoleLookup[K]) byName(ctx context.Context, normalizedName string) (*domain.Role[K], error) {
	return l.roles.GetOne(ctx, docstore.Eq(fieldNormalizedName, normalizedName))
}

// cachedRoleLookup remembers found roles only; a miss always goes to the store
// so a freshly created role is visible at once.
type cachedRoleLookup[K comparable] struct {
	next  roleLookup[K]
	cache *ttlcache.Cache[string, domain.Role[K]]
}

func newCachedRoleLookup[K comparable](next roleLookup[K], ttl time.Duration) *cachedRoleLookup[K] {
	return &cachedRoleLookup[K]{
		next: next,
		cache: ttlcache.New[string, domain.Role[K]](
			ttlcache.WithTTL[string, domain.Role[K]](ttl),
			ttlcache.WithDisableTouchOnHit[string, domain.Role[K]](),
		),
	}
}

func (l *cachedRoleLookup[K]) byName(ctx context.Context, normalizedName string) (*domain.Role[K], error) {
	if item := l.cache.Get(normalizedName); item != nil {
		role := item.Value()
		return &role, nil
	}
	role, err := l.next.byName(ctx, normalizedName)
	if err != nil || role == nil {
		return role, err
	}
	l.cache.Set(normalizedName, *role, ttlcache.DefaultTTL)
	return role, nil
}
