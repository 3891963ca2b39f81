package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewOpenCmd creates the open command
func NewOpenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "open <path>",
		Short: "Resolve a page path against the current session",
		Long: `Resolve a page path the way navigation does: guarded sections check the
session first, then the page is looked up.

Examples:
  shiplabel open /main/orders
  shiplabel open /admin`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOpen(cmd, args[0])
		},
	}
}

func runOpen(cmd *cobra.Command, path string) error {
	a, err := appFrom(cmd)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	res := a.Resolve(path)
	switch {
	case res.Redirect != "":
		fmt.Fprintf(out, "%s → %s\n", res.Path, res.Redirect)
		return nil
	case res.NotFound:
		return fmt.Errorf("no page at %s", res.Path)
	}

	if res.Section != "" {
		fmt.Fprintf(out, "%s: %s (%s)\n", res.Path, res.Page, res.Section)
		return nil
	}
	fmt.Fprintf(out, "%s: %s\n", res.Path, res.Page)
	return nil
}
