package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func newResetCommand(env *environment) *cobra.Command {
	var yes bool
	c := &cobra.Command{
		Use:   "reset",
		Short: "Drop the users and roles collections",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return errors.New("refusing to drop collections without --yes")
			}
			if err := env.users.Drop(cmd.Context()); err != nil {
				return err
			}
			if err := env.roles.Drop(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Users and roles dropped.")
			return nil
		},
	}
	c.Flags().BoolVar(&yes, "yes", false, "confirm dropping all data")
	return c
}
