package identity

import (
	"context"
	"slices"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/pilab-dev/shadow-identity/docstore"
	"github.com/pilab-dev/shadow-identity/domain"
)

func validateClaim(name string, c domain.Claim) error {
	return domain.RequireNotBlank(name+".Type", c.Type)
}

func (s *UserStore[K]) GetClaims(ctx context.Context, user *domain.User[K]) ([]domain.Claim, error) {
	if err := checkUser(ctx, user); err != nil {
		return nil, err
	}
	return slices.Clone(user.Claims), nil
}

// AddClaims adds the claims user does not have yet and writes once if any was added.
func (s *UserStore[K]) AddClaims(ctx context.Context, user *domain.User[K], claims ...domain.Claim) error {
	if err := checkUser(ctx, user); err != nil {
		return err
	}
	for _, c := range claims {
		if err := validateClaim("claim", c); err != nil {
			return err
		}
	}
	changed := false
	for _, c := range claims {
		if user.AddClaim(c) {
			changed = true
		}
	}
	if !changed {
		return nil
	}
	return s.writeField(ctx, user, fieldClaims, user.Claims)
}

// ReplaceClaim overwrites every claim equal to claim with newClaim.
func (s *UserStore[K]) ReplaceClaim(ctx context.Context, user *domain.User[K], claim, newClaim domain.Claim) error {
	if err := checkUser(ctx, user); err != nil {
		return err
	}
	if err := validateClaim("claim", claim); err != nil {
		return err
	}
	if err := validateClaim("newClaim", newClaim); err != nil {
		return err
	}
	if !user.ReplaceClaim(claim, newClaim) {
		return nil
	}
	return s.writeField(ctx, user, fieldClaims, user.Claims)
}

func (s *UserStore[K]) RemoveClaims(ctx context.Context, user *domain.User[K], claims ...domain.Claim) error {
	if err := checkUser(ctx, user); err != nil {
		return err
	}
	changed := false
	for _, c := range claims {
		if user.RemoveClaim(c) {
			changed = true
		}
	}
	if !changed {
		return nil
	}
	return s.writeField(ctx, user, fieldClaims, user.Claims)
}

// GetUsersForClaim returns every user holding a claim with the same type and value.
func (s *UserStore[K]) GetUsersForClaim(ctx context.Context, claim domain.Claim) ([]*domain.User[K], error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := validateClaim("claim", claim); err != nil {
		return nil, err
	}
	return s.users.GetAll(ctx, docstore.ElemMatch(fieldClaims, bson.D{
		{Key: "type", Value: claim.Type},
		{Key: "value", Value: claim.Value},
	}))
}
