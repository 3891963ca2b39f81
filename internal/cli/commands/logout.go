package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewLogoutCmd creates the logout command
func NewLogoutCmd() *cobra.Command {
	var local bool

	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Sign out",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogout(cmd, local)
		},
	}

	cmd.Flags().BoolVar(&local, "local", false, "Forget the saved session and cookies without contacting the API")

	return cmd
}

func runLogout(cmd *cobra.Command, local bool) error {
	a, err := appFrom(cmd)
	if err != nil {
		return err
	}

	if local {
		if err := a.Forget(); err != nil {
			return fmt.Errorf("failed to forget local session: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Local session removed.")
		return nil
	}

	return a.Auth.Logout(cmd.Context())
}
