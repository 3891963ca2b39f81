package commands

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/shiplabel-dev/shiplabel/internal/router"
)

// NewStatusCmd creates the status command
func NewStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the saved session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd)
		},
	}
}

func runStatus(cmd *cobra.Command) error {
	a, err := appFrom(cmd)
	if err != nil {
		return err
	}
	s := a.Session()

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "API:\t%s\n", a.Client.BaseURL())
	fmt.Fprintf(w, "Signed in:\t%s\n", yesNo(s.IsAuthenticated))

	if s.IsAuthenticated && s.User != nil {
		fmt.Fprintf(w, "User:\t%s (%s)\n", s.User.Name, s.User.Email)
		fmt.Fprintf(w, "Role:\t%s\n", s.User.Role)
		fmt.Fprintf(w, "Home:\t%s\n", router.Landing(s.User))
	}

	if expiry, ok := a.Jar.Expiry(); ok {
		state := "expires"
		if !expiry.After(time.Now()) {
			state = "expired"
		}
		fmt.Fprintf(w, "Session cookie:\t%s %s\n", state, expiry.Local().Format(time.RFC1123))
	}

	return w.Flush()
}
