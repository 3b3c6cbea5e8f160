package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pilab-dev/shadow-identity/domain"
)

func (e *environment) loadRole(ctx context.Context, name string) (*domain.Role[string], error) {
	r, err := e.roles.FindRoleByName(ctx, e.normalizer.Normalize(name))
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrRoleNotFound, name)
	}
	return r, nil
}

func newRoleCommand(env *environment) *cobra.Command {
	roleCmd := &cobra.Command{
		Use:     "role",
		Short:   "Manage roles",
		Aliases: []string{"roles"},
	}
	roleCmd.AddCommand(
		&cobra.Command{
			Use:   "create NAME",
			Short: "Create a role",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				r := domain.NewRole[string](args[0])
				r.NormalizedName = env.normalizer.Normalize(args[0])
				res, err := env.roles.CreateRole(cmd.Context(), r)
				if err != nil {
					return err
				}
				if err := resultError("create role", res); err != nil {
					return err
				}
				return printYAML(cmd.OutOrStdout(), newRoleView(r))
			},
		},
		&cobra.Command{
			Use:   "rename NAME NEW_NAME",
			Short: "Rename a role",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				r, err := env.loadRole(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				r.Name = args[1]
				r.NormalizedName = env.normalizer.Normalize(args[1])
				res, err := env.roles.UpdateRole(cmd.Context(), r)
				if err != nil {
					return err
				}
				return resultError("rename role", res)
			},
		},
		&cobra.Command{
			Use:   "delete NAME",
			Short: "Delete a role",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				r, err := env.loadRole(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				res, err := env.roles.DeleteRole(cmd.Context(), r)
				if err != nil {
					return err
				}
				return resultError("delete role", res)
			},
		},
		&cobra.Command{
			Use:   "list",
			Short: "List all roles",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				all, err := env.roles.ListRoles(cmd.Context())
				if err != nil {
					return err
				}
				views := make([]roleView, 0, len(all))
				for _, r := range all {
					views = append(views, newRoleView(r))
				}
				return printYAML(cmd.OutOrStdout(), views)
			},
		},
		&cobra.Command{
			Use:   "members NAME",
			Short: "List the users in a role",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				members, err := env.users.GetUsersInRole(cmd.Context(), env.normalizer.Normalize(args[0]))
				if err != nil {
					return err
				}
				names := make([]string, 0, len(members))
				for _, u := range members {
					names = append(names, u.UserName)
				}
				return printYAML(cmd.OutOrStdout(), names)
			},
		},
	)
	return roleCmd
}
