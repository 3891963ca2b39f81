package commands

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/shiplabel-dev/shiplabel/internal/app"
	"github.com/shiplabel-dev/shiplabel/internal/client"
	"github.com/shiplabel-dev/shiplabel/internal/models"
	"github.com/shiplabel-dev/shiplabel/internal/router"
)

// NewAdminCmd creates the command group for the admin pages under /admin
func NewAdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:               "admin",
		Short:             "Admin pages (requires a signed-in admin)",
		PersistentPreRunE: requireSection(router.PrefixAdmin),
	}

	cmd.AddCommand(NewAdminDashboardCmd())
	cmd.AddCommand(NewUsersCmd())

	return cmd
}

func adminPath(page string) string {
	return router.PrefixAdmin + "/" + page
}

// NewAdminDashboardCmd creates the admin dashboard command
func NewAdminDashboardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show the admin dashboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := runDashboard(cmd, router.PrefixAdmin); err != nil {
				return err
			}
			return printUserSummary(cmd)
		},
	}
	return withRoute(cmd, adminPath(router.PageDashboard))
}

func printUserSummary(cmd *cobra.Command) error {
	a, err := appFrom(cmd)
	if err != nil {
		return err
	}

	users, err := a.Client.ListUsers(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to fetch users: %w", err)
	}

	var admins, withAccess int
	for _, u := range users {
		if u.Role == models.RoleAdmin {
			admins++
		}
		if u.HasAccess {
			withAccess++
		}
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "\nUsers: %d (%d admins, %d with service access)\n", len(users), admins, withAccess)
	return nil
}

// NewUsersCmd creates the user management command group
func NewUsersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage user roles and access",
	}

	cmd.AddCommand(NewUsersListCmd())
	cmd.AddCommand(NewSetRoleCmd())
	cmd.AddCommand(NewToggleAccessCmd())
	cmd.AddCommand(NewDeleteUserCmd())

	return withRoute(cmd, adminPath(router.PageUsers))
}

// NewUsersListCmd creates the users ls command
func NewUsersListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List all users",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUsersList(cmd)
		},
	}
}

func runUsersList(cmd *cobra.Command) error {
	a, err := appFrom(cmd)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	users, err := a.Client.ListUsers(cmd.Context())
	if err != nil {
		a.Notifier.Error(client.GenericFailureMessage)
		return reported(err)
	}

	if len(users) == 0 {
		fmt.Fprintln(out, "No users found.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tEMAIL\tROLE\tACCESS")
	fmt.Fprintln(w, "──\t────\t─────\t────\t──────")
	for _, u := range users {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", u.ID, u.Name, u.Email, u.Role, yesNo(u.HasAccess))
	}
	return w.Flush()
}

// NewSetRoleCmd creates the users set-role command
func NewSetRoleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-role <user-id> [admin|user]",
		Short: "Change a user's role",
		Long: `Change a user's role. Without a role argument, the role is chosen
interactively.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var role models.Role
			if len(args) == 2 {
				role = models.Role(args[1])
			}
			return runSetRole(cmd, args[0], role)
		},
	}
}

func runSetRole(cmd *cobra.Command, id string, role models.Role) error {
	a, err := appFrom(cmd)
	if err != nil {
		return err
	}

	if role == "" {
		if !interactive() {
			return fmt.Errorf("role is required in non-interactive mode (admin or user)")
		}
		if role, err = selectRole(); err != nil {
			return err
		}
	}
	if !role.Valid() {
		return fmt.Errorf("invalid role %q (expected admin or user)", role)
	}

	return updateUser(cmd.Context(), a, id, client.UpdateUserRequest{Role: &role})
}

func selectRole() (models.Role, error) {
	roles := []models.Role{models.RoleUser, models.RoleAdmin}

	templates := &promptui.SelectTemplates{
		Label:    "{{ . }}",
		Active:   "> {{ . | cyan }}",
		Inactive: "  {{ . }}",
		Selected: "{{ . | green }}",
	}

	prompt := promptui.Select{
		Label:     "Select a role",
		Items:     roles,
		Templates: templates,
	}

	index, _, err := prompt.Run()
	if err != nil {
		return "", fmt.Errorf("role selection cancelled: %w", err)
	}
	return roles[index], nil
}

// NewToggleAccessCmd creates the users toggle-access command
func NewToggleAccessCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle-access <user-id>",
		Short: "Grant or revoke a user's service access",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runToggleAccess(cmd, args[0])
		},
	}
}

func runToggleAccess(cmd *cobra.Command, id string) error {
	a, err := appFrom(cmd)
	if err != nil {
		return err
	}

	users, err := a.Client.ListUsers(cmd.Context())
	if err != nil {
		a.Notifier.Error(client.GenericFailureMessage)
		return reported(err)
	}

	var target *models.User
	for i := range users {
		if users[i].ID == id {
			target = &users[i]
			break
		}
	}
	if target == nil {
		return fmt.Errorf("user %s not found", id)
	}

	access := !target.HasAccess
	if err := updateUser(cmd.Context(), a, id, client.UpdateUserRequest{HasAccess: &access}); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s access: %s\n", target.Email, yesNo(access))
	return nil
}

func updateUser(ctx context.Context, a *app.App, id string, req client.UpdateUserRequest) error {
	resp, err := a.Client.UpdateUser(ctx, id, req)
	if err != nil {
		a.Notifier.Error(client.Message(err))
		return reported(err)
	}
	a.Notifier.Success(resp.Message)
	return nil
}

// NewDeleteUserCmd creates the users rm command
func NewDeleteUserCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "rm <user-id>",
		Aliases: []string{"delete"},
		Short:   "Delete a user",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDeleteUser(cmd, args[0])
		},
	}
}

func runDeleteUser(cmd *cobra.Command, id string) error {
	a, err := appFrom(cmd)
	if err != nil {
		return err
	}

	resp, err := a.Client.DeleteUser(cmd.Context(), id)
	if err != nil {
		msg := client.Message(err)
		if msg == "" {
			msg = "Failed to delete user."
		}
		a.Notifier.Error(msg)
		return reported(err)
	}

	msg := resp.Message
	if msg == "" {
		msg = "User deleted successfully."
	}
	a.Notifier.Success(msg)
	return nil
}
