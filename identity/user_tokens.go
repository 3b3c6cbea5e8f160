package identity

import (
	"context"
	"slices"
	"strings"

	"github.com/pilab-dev/shadow-identity/domain"
)

const (
	internalLoginProvider = "[AspNetUserStore]"
	authenticatorKeyToken = "AuthenticatorKey"
	recoveryCodesToken    = "RecoveryCodes"
	recoveryCodeSeparator = ";"
)

func validateToken(loginProvider, name string) error {
	if err := domain.RequireNotBlank("loginProvider", loginProvider); err != nil {
		return err
	}
	return domain.RequireNotBlank("name", name)
}

// GetToken returns the token value and whether the token exists.
func (s *UserStore[K]) GetToken(ctx context.Context, user *domain.User[K], loginProvider, name string) (string, bool, error) {
	if err := checkUser(ctx, user); err != nil {
		return "", false, err
	}
	if err := validateToken(loginProvider, name); err != nil {
		return "", false, err
	}
	t, ok := user.FindToken(loginProvider, name)
	return t.Value, ok, nil
}

// SetToken updates the token in place, adding it when missing, and writes the tokens.
func (s *UserStore[K]) SetToken(ctx context.Context, user *domain.User[K], loginProvider, name, value string) error {
	if err := checkUser(ctx, user); err != nil {
		return err
	}
	if err := validateToken(loginProvider, name); err != nil {
		return err
	}
	if !user.SetTokenValue(loginProvider, name, value) {
		user.AddToken(domain.UserToken{LoginProvider: loginProvider, Name: name, Value: value})
	}
	return s.writeField(ctx, user, fieldTokens, user.Tokens)
}

func (s *UserStore[K]) RemoveToken(ctx context.Context, user *domain.User[K], loginProvider, name string) error {
	if err := checkUser(ctx, user); err != nil {
		return err
	}
	if err := validateToken(loginProvider, name); err != nil {
		return err
	}
	if !user.RemoveToken(loginProvider, name) {
		return nil
	}
	return s.writeField(ctx, user, fieldTokens, user.Tokens)
}

func (s *UserStore[K]) SetAuthenticatorKey(ctx context.Context, user *domain.User[K], key string) error {
	return s.SetToken(ctx, user, internalLoginProvider, authenticatorKeyToken, key)
}

// GetAuthenticatorKey returns an empty string when no key was set.
func (s *UserStore[K]) GetAuthenticatorKey(ctx context.Context, user *domain.User[K]) (string, error) {
	key, _, err := s.GetToken(ctx, user, internalLoginProvider, authenticatorKeyToken)
	return key, err
}

// ReplaceCodes stores the recovery codes as one token, replacing any previous set.
func (s *UserStore[K]) ReplaceCodes(ctx context.Context, user *domain.User[K], codes []string) error {
	return s.SetToken(ctx, user, internalLoginProvider, recoveryCodesToken, strings.Join(codes, recoveryCodeSeparator))
}

// RedeemCode consumes a recovery code. It reports false when the code is not
// (or no longer) valid.
func (s *UserStore[K]) RedeemCode(ctx context.Context, user *domain.User[K], code string) (bool, error) {
	if err := checkUser(ctx, user); err != nil {
		return false, err
	}
	if err := domain.RequireNotBlank("code", code); err != nil {
		return false, err
	}
	codes, err := s.recoveryCodes(ctx, user)
	if err != nil {
		return false, err
	}
	i := slices.Index(codes, code)
	if i < 0 {
		return false, nil
	}
	if err := s.ReplaceCodes(ctx, user, slices.Delete(codes, i, i+1)); err != nil {
		return false, err
	}
	return true, nil
}

// CountCodes returns how many recovery codes are left.
func (s *UserStore[K]) CountCodes(ctx context.Context, user *domain.User[K]) (int, error) {
	if err := checkUser(ctx, user); err != nil {
		return 0, err
	}
	codes, err := s.recoveryCodes(ctx, user)
	return len(codes), err
}

func (s *UserStore[K]) recoveryCodes(ctx context.Context, user *domain.User[K]) ([]string, error) {
	merged, _, err := s.GetToken(ctx, user, internalLoginProvider, recoveryCodesToken)
	if err != nil || merged == "" {
		return nil, err
	}
	return strings.Split(merged, recoveryCodeSeparator), nil
}
