package identity

import (
	"context"
	"slices"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/pilab-dev/shadow-identity/docstore"
	"github.com/pilab-dev/shadow-identity/domain"
)

type userLogins[K comparable] struct {
	ID     K                  `bson:"_id"`
	Logins []domain.UserLogin `bson:"logins"`
}

func loginFilter(loginProvider, providerKey string) bson.D {
	return docstore.ElemMatch(fieldLogins, bson.D{
		{Key: "login_provider", Value: loginProvider},
		{Key: "provider_key", Value: providerKey},
	})
}

func validateLogin(loginProvider, providerKey string) error {
	if err := domain.RequireNotBlank("loginProvider", loginProvider); err != nil {
		return err
	}
	return domain.RequireNotBlank("providerKey", providerKey)
}

func (s *UserStore[K]) AddLogin(ctx context.Context, user *domain.User[K], login domain.UserLogin) error {
	if err := checkUser(ctx, user); err != nil {
		return err
	}
	if err := validateLogin(login.LoginProvider, login.ProviderKey); err != nil {
		return err
	}
	if !user.AddLogin(login) {
		return nil
	}
	return s.writeField(ctx, user, fieldLogins, user.Logins)
}

func (s *UserStore[K]) RemoveLogin(ctx context.Context, user *domain.User[K], loginProvider, providerKey string) error {
	if err := checkUser(ctx, user); err != nil {
		return err
	}
	if err := validateLogin(loginProvider, providerKey); err != nil {
		return err
	}
	if !user.RemoveLogin(loginProvider, providerKey) {
		return nil
	}
	return s.writeField(ctx, user, fieldLogins, user.Logins)
}

func (s *UserStore[K]) GetLogins(ctx context.Context, user *domain.User[K]) ([]domain.UserLogin, error) {
	if err := checkUser(ctx, user); err != nil {
		return nil, err
	}
	return slices.Clone(user.Logins), nil
}

// FindUserLogin finds a login across all users and reports which user owns it.
func (s *UserStore[K]) FindUserLogin(ctx context.Context, loginProvider, providerKey string) (*domain.UserLoginOwner[K], error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := validateLogin(loginProvider, providerKey); err != nil {
		return nil, err
	}
	return s.projectLogin(ctx, loginFilter(loginProvider, providerKey), loginProvider, providerKey)
}

// FindUserLoginForUser finds a login of one particular user.
func (s *UserStore[K]) FindUserLoginForUser(ctx context.Context, userID K, loginProvider, providerKey string) (*domain.UserLoginOwner[K], error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := requireID("userID", userID); err != nil {
		return nil, err
	}
	if err := validateLogin(loginProvider, providerKey); err != nil {
		return nil, err
	}
	filter := docstore.And(docstore.ByID(userID), loginFilter(loginProvider, providerKey))
	return s.projectLogin(ctx, filter, loginProvider, providerKey)
}

func (s *UserStore[K]) projectLogin(ctx context.Context, filter bson.D, loginProvider, providerKey string) (*domain.UserLoginOwner[K], error) {
	found, err := docstore.ProjectOne[userLogins[K]](ctx, s.users, filter, docstore.Fields(fieldLogins))
	if err != nil || found == nil {
		return nil, err
	}
	for _, l := range found.Logins {
		if l.LoginProvider == loginProvider && l.ProviderKey == providerKey {
			return &domain.UserLoginOwner[K]{UserLogin: l, UserID: found.ID}, nil
		}
	}
	return nil, nil
}

// FindByLogin resolves the owner of a login and loads that user.
func (s *UserStore[K]) FindByLogin(ctx context.Context, loginProvider, providerKey string) (*domain.User[K], error) {
	owner, err := s.FindUserLogin(ctx, loginProvider, providerKey)
	if err != nil || owner == nil {
		return nil, err
	}
	return s.FindByID(ctx, owner.UserID)
}
