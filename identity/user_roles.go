package identity

import (
	"context"
	"fmt"

	"github.com/pilab-dev/shadow-identity/docstore"
	"github.com/pilab-dev/shadow-identity/domain"
	"github.com/pilab-dev/shadow-identity/log"
)

type roleName struct {
	Name string `bson:"name"`
}

type roleMemberships[K comparable] struct {
	ID    K   `bson:"_id"`
	Roles []K `bson:"roles"`
}

// resolveRole fails with ErrRoleNotFound when no role has the normalized name.
func (s *UserStore[K]) resolveRole(ctx context.Context, normalizedRoleName string) (*domain.Role[K], error) {
	role, err := s.lookup.byName(ctx, normalizedRoleName)
	if err != nil {
		return nil, err
	}
	if role == nil {
		s.logger.Warn(ctx, "Role not found", log.Fields{"role": normalizedRoleName})
		return nil, fmt.Errorf("%w: %s", domain.ErrRoleNotFound, normalizedRoleName)
	}
	return role, nil
}

// AddToRole makes user a member of the role. A missing role is an error; an
// existing membership is left alone without a write.
func (s *UserStore[K]) AddToRole(ctx context.Context, user *domain.User[K], normalizedRoleName string) error {
	if err := checkUser(ctx, user); err != nil {
		return err
	}
	if err := domain.RequireNotBlank("normalizedRoleName", normalizedRoleName); err != nil {
		return err
	}
	role, err := s.resolveRole(ctx, normalizedRoleName)
	if err != nil {
		return err
	}
	if !user.AddRole(role.ID) {
		return nil
	}
	return s.writeField(ctx, user, fieldRoles, user.Roles)
}

// RemoveFromRole drops the membership. A missing role is an error, as for AddToRole.
func (s *UserStore[K]) RemoveFromRole(ctx context.Context, user *domain.User[K], normalizedRoleName string) error {
	if err := checkUser(ctx, user); err != nil {
		return err
	}
	if err := domain.RequireNotBlank("normalizedRoleName", normalizedRoleName); err != nil {
		return err
	}
	role, err := s.resolveRole(ctx, normalizedRoleName)
	if err != nil {
		return err
	}
	if !user.RemoveRole(role.ID) {
		return nil
	}
	return s.writeField(ctx, user, fieldRoles, user.Roles)
}

// GetRoles returns the names of the roles user belongs to.
func (s *UserStore[K]) GetRoles(ctx context.Context, user *domain.User[K]) ([]string, error) {
	if err := checkUser(ctx, user); err != nil {
		return nil, err
	}
	if len(user.Roles) == 0 {
		return []string{}, nil
	}
	found, err := docstore.ProjectMany[roleName](ctx, s.roles, docstore.In(docstore.FieldID, user.Roles), docstore.Fields(fieldName))
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(found))
	for _, r := range found {
		names = append(names, r.Name)
	}
	return names, nil
}

// IsInRole reports false for a role that does not exist.
func (s *UserStore[K]) IsInRole(ctx context.Context, user *domain.User[K], normalizedRoleName string) (bool, error) {
	if err := checkUser(ctx, user); err != nil {
		return false, err
	}
	if err := domain.RequireNotBlank("normalizedRoleName", normalizedRoleName); err != nil {
		return false, err
	}
	role, err := s.lookup.byName(ctx, normalizedRoleName)
	if err != nil || role == nil {
		return false, err
	}
	return user.IsInRole(role.ID), nil
}

// GetUsersInRole returns the members of a role, none when the role does not exist.
func (s *UserStore[K]) GetUsersInRole(ctx context.Context, normalizedRoleName string) ([]*domain.User[K], error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := domain.RequireNotBlank("normalizedRoleName", normalizedRoleName); err != nil {
		return nil, err
	}
	role, err := s.lookup.byName(ctx, normalizedRoleName)
	if err != nil {
		return nil, err
	}
	if role == nil {
		return []*domain.User[K]{}, nil
	}
	return s.users.GetAll(ctx, docstore.Contains(fieldRoles, role.ID))
}

// FindUserRole projects the user-role association out of the user's role list.
// It returns nil when the user does not exist or is not a member.
func (s *UserStore[K]) FindUserRole(ctx context.Context, userID, roleID K) (*domain.UserRole[K], error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := requireID("userID", userID); err != nil {
		return nil, err
	}
	if err := requireID("roleID", roleID); err != nil {
		return nil, err
	}
	m, err := docstore.ProjectOne[roleMemberships[K]](ctx, s.users,
		docstore.And(docstore.ByID(userID), docstore.Contains(fieldRoles, roleID)),
		docstore.Fields(fieldRoles))
	if err != nil || m == nil {
		return nil, err
	}
	return &domain.UserRole[K]{UserID: m.ID, RoleID: roleID}, nil
}
