package cmd

import (
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/pilab-dev/shadow-identity/domain"
)

type userView struct {
	ID                string             `yaml:"id"`
	UserName          string             `yaml:"user_name"`
	Email             string             `yaml:"email,omitempty"`
	EmailConfirmed    bool               `yaml:"email_confirmed"`
	HasPassword       bool               `yaml:"has_password"`
	PhoneNumber       string             `yaml:"phone_number,omitempty"`
	TwoFactorEnabled  bool               `yaml:"two_factor_enabled"`
	LockoutEnabled    bool               `yaml:"lockout_enabled"`
	LockoutEnd        *time.Time         `yaml:"lockout_end,omitempty"`
	AccessFailedCount int                `yaml:"access_failed_count"`
	Roles             []string           `yaml:"roles,omitempty"`
	Claims            []domain.Claim     `yaml:"claims,omitempty"`
	Logins            []domain.UserLogin `yaml:"logins,omitempty"`
}

func newUserView(u *domain.User[string], roleNames []string) userView {
	return userView{
		ID:                u.ID,
		UserName:          u.UserName,
		Email:             u.Email,
		EmailConfirmed:    u.EmailConfirmed,
		HasPassword:       u.PasswordHash != "",
		PhoneNumber:       u.PhoneNumber,
		TwoFactorEnabled:  u.TwoFactorEnabled,
		LockoutEnabled:    u.LockoutEnabled,
		LockoutEnd:        u.LockoutEnd,
		AccessFailedCount: u.AccessFailedCount,
		Roles:             roleNames,
		Claims:            u.Claims,
		Logins:            u.Logins,
	}
}

type roleView struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

func newRoleView(r *domain.Role[string]) roleView {
	return roleView{ID: r.ID, Name: r.Name}
}

func printYAML(w io.Writer, v any) error {
	out, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	_, err = w.Write(out)
	return err
}

// resultError turns a failed store result into a command error.
func resultError(what string, res domain.Result) error {
	if res.Succeeded {
		return nil
	}
	return fmt.Errorf("%s failed: %s", what, res)
}
