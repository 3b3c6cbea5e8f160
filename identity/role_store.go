package identity

import (
	"context"

	"github.com/pilab-dev/shadow-identity/docstore"
	"github.com/pilab-dev/shadow-identity/domain"
)

// RoleStore persists roles.
type RoleStore[K comparable] struct {
	roles *docstore.Store[*domain.Role[K], K]
	newID func() K
}

func NewRoleStore[K comparable](roles docstore.Collection, opts ...Option) *RoleStore[K] {
	o := buildOptions(opts)
	return &RoleStore[K]{
		roles: docstore.NewStore[*domain.Role[K], K](roles, "role", o.storeOptions()...),
		newID: idGenerator[K](o),
	}
}

func checkRole[K comparable](ctx context.Context, role *domain.Role[K]) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return domain.RequireNotNil("role", role)
}

func (s *RoleStore[K]) CreateRole(ctx context.Context, role *domain.Role[K]) (domain.Result, error) {
	if err := checkRole(ctx, role); err != nil {
		return domain.Result{}, err
	}
	if isZero(role.ID) {
		if s.newID == nil {
			return domain.Result{}, &domain.ArgumentError{Name: "role.ID", Reason: "must be set when no id generator is configured"}
		}
		role.ID = s.newID()
	}
	return s.roles.Create(ctx, role)
}

func (s *RoleStore[K]) UpdateRole(ctx context.Context, role *domain.Role[K]) (domain.Result, error) {
	if err := checkRole(ctx, role); err != nil {
		return domain.Result{}, err
	}
	return s.roles.Update(ctx, role)
}

// DeleteRole removes the role. Users keep the role id in their memberships;
// it no longer resolves to a name.
func (s *RoleStore[K]) DeleteRole(ctx context.Context, role *domain.Role[K]) (domain.Result, error) {
	if err := checkRole(ctx, role); err != nil {
		return domain.Result{}, err
	}
	return s.roles.Delete(ctx, role)
}

func (s *RoleStore[K]) FindRoleByID(ctx context.Context, id K) (*domain.Role[K], error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := requireID("id", id); err != nil {
		return nil, err
	}
	return s.roles.GetByID(ctx, id)
}

func (s *RoleStore[K]) FindRoleByName(ctx context.Context, normalizedName string) (*domain.Role[K], error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := domain.RequireNotBlank("normalizedName", normalizedName); err != nil {
		return nil, err
	}
	return s.roles.GetOne(ctx, docstore.Eq(fieldNormalizedName, normalizedName))
}

func (s *RoleStore[K]) ListRoles(ctx context.Context) ([]*domain.Role[K], error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.roles.GetAll(ctx, docstore.All())
}

func (s *RoleStore[K]) Drop(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.roles.Drop(ctx)
}
