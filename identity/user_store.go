package identity

import (
	"context"

	"github.com/pilab-dev/shadow-identity/docstore"
	"github.com/pilab-dev/shadow-identity/domain"
	"github.com/pilab-dev/shadow-identity/log"
)

// Document field names the store filters or writes on.
const (
	fieldNormalizedUserName = "normalized_user_name"
	fieldNormalizedEmail    = "normalized_email"
	fieldClaims             = "claims"
	fieldRoles              = "roles"
	fieldLogins             = "logins"
	fieldTokens             = "tokens"
	fieldName               = "name"
)

// UserStore persists users and their embedded claims, roles, logins and tokens.
//
// Top-level fields are written through UpdateUser, which is guarded by the
// concurrency stamp. Embedded collections are written one field at a time by id
// alone: two callers changing the same collection of the same user concurrently
// resolve as last write wins.
type UserStore[K comparable] struct {
	users  *docstore.Store[*domain.User[K], K]
	roles  *docstore.Store[*domain.Role[K], K]
	lookup roleLookup[K]
	newID  func() K
	logger log.Logger
}

// NewUserStore creates a UserStore over the users and roles collections.
func NewUserStore[K comparable](users, roles docstore.Collection, opts ...Option) *UserStore[K] {
	o := buildOptions(opts)
	s := &UserStore[K]{
		users:  docstore.NewStore[*domain.User[K], K](users, "user", o.storeOptions()...),
		roles:  docstore.NewStore[*domain.Role[K], K](roles, "role", o.storeOptions()...),
		newID:  idGenerator[K](o),
		logger: o.logger.With(log.Fields{"component": "user_store"}),
	}
	s.lookup = directRoleLookup[K]{roles: s.roles}
	if o.roleCacheTTL > 0 {
		s.lookup = newCachedRoleLookup[K](s.lookup, o.roleCacheTTL)
	}
	return s
}

func isZero[K comparable](id K) bool {
	var zero K
	return id == zero
}

func requireID[K comparable](name string, id K) error {
	if isZero(id) {
		return &domain.ArgumentError{Name: name, Reason: "must not be empty"}
	}
	return nil
}

// CreateUser inserts a new user. A missing key, concurrency stamp or security
// stamp is generated.
func (s *UserStore[K]) CreateUser(ctx context.Context, user *domain.User[K]) (domain.Result, error) {
	if err := ctx.Err(); err != nil {
		return domain.Result{}, err
	}
	if err := domain.RequireNotNil("user", user); err != nil {
		return domain.Result{}, err
	}
	if isZero(user.ID) {
		if s.newID == nil {
			return domain.Result{}, &domain.ArgumentError{Name: "user.ID", Reason: "must be set when no id generator is configured"}
		}
		user.ID = s.newID()
	}
	if user.SecurityStamp == "" {
		user.SecurityStamp = s.users.NewStamp()
	}
	user.EnsureCollections()
	return s.users.Create(ctx, user)
}

// UpdateUser replaces the stored user if nobody else wrote it since it was loaded.
func (s *UserStore[K]) UpdateUser(ctx context.Context, user *domain.User[K]) (domain.Result, error) {
	if err := ctx.Err(); err != nil {
		return domain.Result{}, err
	}
	if err := domain.RequireNotNil("user", user); err != nil {
		return domain.Result{}, err
	}
	user.EnsureCollections()
	return s.users.Update(ctx, user)
}

// DeleteUser removes the user under the same stamp precondition as UpdateUser.
// The embedded collections are emptied in memory first.
func (s *UserStore[K]) DeleteUser(ctx context.Context, user *domain.User[K]) (domain.Result, error) {
	if err := ctx.Err(); err != nil {
		return domain.Result{}, err
	}
	if err := domain.RequireNotNil("user", user); err != nil {
		return domain.Result{}, err
	}
	user.ClearCollections()
	return s.users.Delete(ctx, user)
}

// FindByID returns nil when the user does not exist.
func (s *UserStore[K]) FindByID(ctx context.Context, id K) (*domain.User[K], error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := requireID("id", id); err != nil {
		return nil, err
	}
	return s.users.GetByID(ctx, id)
}

// FindByName looks a user up by normalized user name.
func (s *UserStore[K]) FindByName(ctx context.Context, normalizedUserName string) (*domain.User[K], error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := domain.RequireNotBlank("normalizedUserName", normalizedUserName); err != nil {
		return nil, err
	}
	return s.users.GetOne(ctx, docstore.Eq(fieldNormalizedUserName, normalizedUserName))
}

// FindByEmail looks a user up by normalized email.
func (s *UserStore[K]) FindByEmail(ctx context.Context, normalizedEmail string) (*domain.User[K], error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := domain.RequireNotBlank("normalizedEmail", normalizedEmail); err != nil {
		return nil, err
	}
	return s.users.GetOne(ctx, docstore.Eq(fieldNormalizedEmail, normalizedEmail))
}

// ListUsers returns every stored user.
func (s *UserStore[K]) ListUsers(ctx context.Context) ([]*domain.User[K], error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.users.GetAll(ctx, docstore.All())
}

// Drop removes the users collection.
func (s *UserStore[K]) Drop(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.users.Drop(ctx)
}

// writeField persists one embedded collection after an in-memory change.
func (s *UserStore[K]) writeField(ctx context.Context, user *domain.User[K], field string, value any) error {
	_, err := s.users.UpdateField(ctx, user, field, value)
	return err
}

// checkUser is the common entry guard of operations on a loaded user.
func checkUser[K comparable](ctx context.Context, user *domain.User[K]) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return domain.RequireNotNil("user", user)
}
