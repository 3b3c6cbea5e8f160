package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/pilab-dev/shadow-identity/domain"
	"github.com/pilab-dev/shadow-identity/internal/auth"
)

var errUserNotFound = errors.New("user not found")

// loadUser finds a user by user name.
func (e *environment) loadUser(ctx context.Context, userName string) (*domain.User[string], error) {
	u, err := e.users.FindByName(ctx, e.normalizer.Normalize(userName))
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, fmt.Errorf("%w: %s", errUserNotFound, userName)
	}
	return u, nil
}

func (e *environment) printUser(cmd *cobra.Command, u *domain.User[string]) error {
	roles, err := e.users.GetRoles(cmd.Context(), u)
	if err != nil {
		return err
	}
	return printYAML(cmd.OutOrStdout(), newUserView(u, roles))
}

func readPassword() (string, error) {
	fmt.Fprint(os.Stderr, "Enter password: ")
	first, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	fmt.Fprint(os.Stderr, "Confirm password: ")
	second, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read password confirmation: %w", err)
	}
	if string(first) != string(second) {
		return "", errors.New("passwords do not match")
	}
	return string(first), nil
}

func newUserCommand(env *environment) *cobra.Command {
	userCmd := &cobra.Command{
		Use:     "user",
		Short:   "Manage users",
		Aliases: []string{"users"},
	}
	userCmd.AddCommand(
		newUserCreateCommand(env),
		&cobra.Command{
			Use:   "get USER_NAME",
			Short: "Show a user",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				u, err := env.loadUser(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return env.printUser(cmd, u)
			},
		},
		&cobra.Command{
			Use:   "list",
			Short: "List all users",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				all, err := env.users.ListUsers(cmd.Context())
				if err != nil {
					return err
				}
				views := make([]userView, 0, len(all))
				for _, u := range all {
					views = append(views, newUserView(u, nil))
				}
				return printYAML(cmd.OutOrStdout(), views)
			},
		},
		&cobra.Command{
			Use:   "delete USER_NAME",
			Short: "Delete a user",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				u, err := env.loadUser(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				res, err := env.users.DeleteUser(cmd.Context(), u)
				if err != nil {
					return err
				}
				return resultError("delete user", res)
			},
		},
		&cobra.Command{
			Use:   "roles USER_NAME",
			Short: "List the roles of a user",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				u, err := env.loadUser(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				names, err := env.users.GetRoles(cmd.Context(), u)
				if err != nil {
					return err
				}
				return printYAML(cmd.OutOrStdout(), names)
			},
		},
		&cobra.Command{
			Use:   "add-role USER_NAME ROLE",
			Short: "Add a user to a role",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				u, err := env.loadUser(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return env.users.AddToRole(cmd.Context(), u, env.normalizer.Normalize(args[1]))
			},
		},
		&cobra.Command{
			Use:   "remove-role USER_NAME ROLE",
			Short: "Remove a user from a role",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				u, err := env.loadUser(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return env.users.RemoveFromRole(cmd.Context(), u, env.normalizer.Normalize(args[1]))
			},
		},
		&cobra.Command{
			Use:   "claim-add USER_NAME TYPE VALUE",
			Short: "Add a claim to a user",
			Args:  cobra.ExactArgs(3),
			RunE: func(cmd *cobra.Command, args []string) error {
				u, err := env.loadUser(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return env.users.AddClaims(cmd.Context(), u, domain.Claim{Type: args[1], Value: args[2]})
			},
		},
		&cobra.Command{
			Use:   "claim-remove USER_NAME TYPE VALUE",
			Short: "Remove a claim from a user",
			Args:  cobra.ExactArgs(3),
			RunE: func(cmd *cobra.Command, args []string) error {
				u, err := env.loadUser(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return env.users.RemoveClaims(cmd.Context(), u, domain.Claim{Type: args[1], Value: args[2]})
			},
		},
		&cobra.Command{
			Use:   "with-claim TYPE VALUE",
			Short: "List users holding a claim",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				found, err := env.users.GetUsersForClaim(cmd.Context(), domain.Claim{Type: args[0], Value: args[1]})
				if err != nil {
					return err
				}
				names := make([]string, 0, len(found))
				for _, u := range found {
					names = append(names, u.UserName)
				}
				return printYAML(cmd.OutOrStdout(), names)
			},
		},
		newUserLoginAddCommand(env),
		&cobra.Command{
			Use:   "find-login PROVIDER KEY",
			Short: "Show the user owning an external login",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				u, err := env.users.FindByLogin(cmd.Context(), args[0], args[1])
				if err != nil {
					return err
				}
				if u == nil {
					return fmt.Errorf("%w: login %s/%s", errUserNotFound, args[0], args[1])
				}
				return env.printUser(cmd, u)
			},
		},
	)
	return userCmd
}

func newUserCreateCommand(env *environment) *cobra.Command {
	var (
		email          string
		password       string
		promptPassword bool
	)
	c := &cobra.Command{
		Use:   "create USER_NAME",
		Short: "Create a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			u := domain.NewUser[string](args[0])
			u.NormalizedUserName = env.normalizer.Normalize(args[0])
			if email != "" {
				u.Email = email
				u.NormalizedEmail = env.normalizer.Normalize(email)
			}

			if promptPassword {
				p, err := readPassword()
				if err != nil {
					return err
				}
				password = p
			}
			if password != "" {
				hash, err := auth.NewBcryptPasswordHasher(0).Hash(password)
				if err != nil {
					return err
				}
				if err := env.users.SetPasswordHash(ctx, u, hash); err != nil {
					return err
				}
			}

			res, err := env.users.CreateUser(ctx, u)
			if err != nil {
				return err
			}
			if err := resultError("create user", res); err != nil {
				return err
			}
			return env.printUser(cmd, u)
		},
	}
	c.Flags().StringVar(&email, "email", "", "email address")
	c.Flags().StringVar(&password, "password", "", "initial password, stored as a bcrypt hash")
	c.Flags().BoolVar(&promptPassword, "prompt-password", false, "read the password from the terminal")
	return c
}

func newUserLoginAddCommand(env *environment) *cobra.Command {
	var displayName string
	c := &cobra.Command{
		Use:   "login-add USER_NAME PROVIDER KEY",
		Short: "Link an external login to a user",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := env.loadUser(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return env.users.AddLogin(cmd.Context(), u, domain.UserLogin{
				LoginProvider:       args[1],
				ProviderKey:         args[2],
				ProviderDisplayName: displayName,
			})
		},
	}
	c.Flags().StringVar(&displayName, "display-name", "", "provider display name")
	return c
}
