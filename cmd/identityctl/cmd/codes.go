package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pilab-dev/shadow-identity/internal/auth/totp"
)

func newCodesCommand(env *environment) *cobra.Command {
	codesCmd := &cobra.Command{
		Use:   "codes",
		Short: "Manage two-factor recovery codes",
	}

	var count, length int
	replace := &cobra.Command{
		Use:   "replace USER_NAME",
		Short: "Generate a new set of recovery codes, invalidating the old ones",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := env.loadUser(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			codes, err := totp.GenerateRecoveryCodes(count, length)
			if err != nil {
				return err
			}
			if err := env.users.ReplaceCodes(cmd.Context(), u, codes); err != nil {
				return err
			}
			return printYAML(cmd.OutOrStdout(), codes)
		},
	}
	replace.Flags().IntVar(&count, "count", totp.DefaultNumRecoveryCodes, "number of codes")
	replace.Flags().IntVar(&length, "length", totp.DefaultRecoveryCodeLength, "length of each code")

	codesCmd.AddCommand(
		replace,
		&cobra.Command{
			Use:   "redeem USER_NAME CODE",
			Short: "Use up a recovery code",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				u, err := env.loadUser(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				ok, err := env.users.RedeemCode(cmd.Context(), u, args[1])
				if err != nil {
					return err
				}
				if !ok {
					return errors.New("invalid recovery code")
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Recovery code redeemed.")
				return nil
			},
		},
		&cobra.Command{
			Use:   "count USER_NAME",
			Short: "Show how many recovery codes are left",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				u, err := env.loadUser(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				n, err := env.users.CountCodes(cmd.Context(), u)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), n)
				return nil
			},
		},
	)
	return codesCmd
}

func newAuthenticatorCommand(env *environment) *cobra.Command {
	authCmd := &cobra.Command{
		Use:   "authenticator",
		Short: "Manage the authenticator app key of a user",
	}

	var issuer string
	reset := &cobra.Command{
		Use:   "reset USER_NAME",
		Short: "Generate a new authenticator key and print its otpauth URI",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := env.loadUser(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			key, err := totp.GenerateAuthenticatorKey(issuer, u.UserName)
			if err != nil {
				return err
			}
			if err := env.users.SetAuthenticatorKey(cmd.Context(), u, key.Secret()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), key.URL())
			return nil
		},
	}
	reset.Flags().StringVar(&issuer, "issuer", "shadow-identity", "issuer shown in the authenticator app")

	authCmd.AddCommand(
		reset,
		&cobra.Command{
			Use:   "verify USER_NAME CODE",
			Short: "Check a code from the authenticator app",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				u, err := env.loadUser(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				key, err := env.users.GetAuthenticatorKey(cmd.Context(), u)
				if err != nil {
					return err
				}
				if key == "" {
					return errors.New("no authenticator key set")
				}
				if !totp.ValidateCode(key, args[1]) {
					return errors.New("invalid code")
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Code is valid.")
				return nil
			},
		},
	)
	return authCmd
}
