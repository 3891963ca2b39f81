package commands

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/shiplabel-dev/shiplabel/internal/router"
)

// NewMainCmd creates the command group for the signed-in user pages under /main
func NewMainCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:               "main",
		Short:             "User pages (requires a signed-in user)",
		PersistentPreRunE: requireSection(router.PrefixMain),
	}

	cmd.AddCommand(NewUserDashboardCmd())
	cmd.AddCommand(NewAccountCmd())
	cmd.AddCommand(NewServicesCmd())
	cmd.AddCommand(NewOrdersCmd())
	cmd.AddCommand(NewOrderLabelCmd())

	return cmd
}

func mainPath(page string) string {
	return router.PrefixMain + "/" + page
}

// NewUserDashboardCmd creates the user dashboard command
func NewUserDashboardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show the user dashboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDashboard(cmd, router.PrefixMain)
		},
	}
	return withRoute(cmd, mainPath(router.PageDashboard))
}

// runDashboard greets the user and lists the pages of the section
func runDashboard(cmd *cobra.Command, prefix string) error {
	a, err := appFrom(cmd)
	if err != nil {
		return err
	}
	user, err := currentUser(cmd, a)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "Welcome, %s\n\n", user.Name)

	sec, ok := a.Router.Section(prefix)
	if !ok {
		return fmt.Errorf("no section at %s", prefix)
	}
	fmt.Fprintln(out, "Pages:")
	for _, r := range sec.Routes {
		fmt.Fprintf(out, "  %s\n", sec.Path(r.Page))
	}
	return nil
}

// NewAccountCmd creates the account command
func NewAccountCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Show the signed-in account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := appFrom(cmd)
			if err != nil {
				return err
			}
			user, err := currentUser(cmd, a)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "ID:\t%s\n", user.ID)
			fmt.Fprintf(w, "Name:\t%s\n", user.Name)
			fmt.Fprintf(w, "Email:\t%s\n", user.Email)
			fmt.Fprintf(w, "Role:\t%s\n", user.Role)
			return w.Flush()
		},
	}
	return withRoute(cmd, mainPath(router.PageAccount))
}

// NewServicesCmd creates the services command
func NewServicesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "services",
		Short: "List the carrier services available for new orders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServices(cmd)
		},
	}
	return withRoute(cmd, mainPath(router.PageOrderLabel))
}

func runServices(cmd *cobra.Command) error {
	a, err := appFrom(cmd)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	services, err := a.Client.ShipmentServices(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list services: %w", err)
	}

	if len(services) == 0 {
		fmt.Fprintln(out, "No services available.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SERVICE\tDETAILS")
	fmt.Fprintln(w, "───────\t───────")
	for _, svc := range services {
		fmt.Fprintf(w, "%s\t%s\n", svc.Name, formatAttributes(svc.Attributes))
	}
	return w.Flush()
}

func formatAttributes(attrs map[string]json.RawMessage) string {
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + string(attrs[k])
	}
	return strings.Join(parts, " ")
}
