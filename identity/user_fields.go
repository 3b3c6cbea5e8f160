package identity

import (
	"context"
	"time"

	"github.com/pilab-dev/shadow-identity/domain"
)

// The setters below only change the loaded user. UpdateUser persists them.

func (s *UserStore[K]) SetUserName(ctx context.Context, user *domain.User[K], userName string) error {
	if err := checkUser(ctx, user); err != nil {
		return err
	}
	user.UserName = userName
	return nil
}

func (s *UserStore[K]) SetNormalizedUserName(ctx context.Context, user *domain.User[K], normalizedName string) error {
	if err := checkUser(ctx, user); err != nil {
		return err
	}
	user.NormalizedUserName = normalizedName
	return nil
}

func (s *UserStore[K]) SetEmail(ctx context.Context, user *domain.User[K], email string) error {
	if err := checkUser(ctx, user); err != nil {
		return err
	}
	user.Email = email
	return nil
}

func (s *UserStore[K]) SetNormalizedEmail(ctx context.Context, user *domain.User[K], normalizedEmail string) error {
	if err := checkUser(ctx, user); err != nil {
		return err
	}
	user.NormalizedEmail = normalizedEmail
	return nil
}

func (s *UserStore[K]) SetEmailConfirmed(ctx context.Context, user *domain.User[K], confirmed bool) error {
	if err := checkUser(ctx, user); err != nil {
		return err
	}
	user.EmailConfirmed = confirmed
	return nil
}

// SetPasswordHash stores an opaque hash produced by the caller.
func (s *UserStore[K]) SetPasswordHash(ctx context.Context, user *domain.User[K], passwordHash string) error {
	if err := checkUser(ctx, user); err != nil {
		return err
	}
	user.PasswordHash = passwordHash
	return nil
}

func (s *UserStore[K]) HasPassword(ctx context.Context, user *domain.User[K]) (bool, error) {
	if err := checkUser(ctx, user); err != nil {
		return false, err
	}
	return user.PasswordHash != "", nil
}

func (s *UserStore[K]) SetSecurityStamp(ctx context.Context, user *domain.User[K], stamp string) error {
	if err := checkUser(ctx, user); err != nil {
		return err
	}
	if err := domain.RequireNotBlank("stamp", stamp); err != nil {
		return err
	}
	user.SecurityStamp = stamp
	return nil
}

func (s *UserStore[K]) SetPhoneNumber(ctx context.Context, user *domain.User[K], phoneNumber string) error {
	if err := checkUser(ctx, user); err != nil {
		return err
	}
	user.PhoneNumber = phoneNumber
	return nil
}

func (s *UserStore[K]) SetPhoneNumberConfirmed(ctx context.Context, user *domain.User[K], confirmed bool) error {
	if err := checkUser(ctx, user); err != nil {
		return err
	}
	user.PhoneNumberConfirmed = confirmed
	return nil
}

func (s *UserStore[K]) SetTwoFactorEnabled(ctx context.Context, user *domain.User[K], enabled bool) error {
	if err := checkUser(ctx, user); err != nil {
		return err
	}
	user.TwoFactorEnabled = enabled
	return nil
}

func (s *UserStore[K]) SetLockoutEnabled(ctx context.Context, user *domain.User[K], enabled bool) error {
	if err := checkUser(ctx, user); err != nil {
		return err
	}
	user.LockoutEnabled = enabled
	return nil
}

// SetLockoutEnd sets the end of the lockout; nil clears it.
func (s *UserStore[K]) SetLockoutEnd(ctx context.Context, user *domain.User[K], end *time.Time) error {
	if err := checkUser(ctx, user); err != nil {
		return err
	}
	if end != nil {
		utc := end.UTC()
		end = &utc
	}
	user.LockoutEnd = end
	return nil
}

// IncrementAccessFailedCount returns the new count.
func (s *UserStore[K]) IncrementAccessFailedCount(ctx context.Context, user *domain.User[K]) (int, error) {
	if err := checkUser(ctx, user); err != nil {
		return 0, err
	}
	user.AccessFailedCount++
	return user.AccessFailedCount, nil
}

func (s *UserStore[K]) ResetAccessFailedCount(ctx context.Context, user *domain.User[K]) error {
	if err := checkUser(ctx, user); err != nil {
		return err
	}
	user.AccessFailedCount = 0
	return nil
}
