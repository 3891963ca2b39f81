package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shiplabel-dev/shiplabel/internal/models"
	"github.com/shiplabel-dev/shiplabel/internal/router"
	"github.com/shiplabel-dev/shiplabel/internal/validation"
)

// NewRegisterCmd creates the register command
func NewRegisterCmd() *cobra.Command {
	var form models.RegisterForm

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Long: `Create an account on the shipping-label service.

Registering does not sign you in. Run 'shiplabel login' afterwards.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRegister(cmd, form)
		},
	}

	cmd.Flags().StringVar(&form.Name, "name", "", "Full name")
	cmd.Flags().StringVar(&form.Email, "email", "", "Email address (or set SHIPLABEL_EMAIL)")
	cmd.Flags().StringVar(&form.Password, "password", "", "Password (or set SHIPLABEL_PASSWORD, will prompt if not provided)")
	cmd.Flags().StringVar(&form.ConfirmPassword, "confirm-password", "", "Password confirmation (defaults to --password when it comes from the environment)")

	return withRoute(cmd, router.PathRegister)
}

func runRegister(cmd *cobra.Command, form models.RegisterForm) error {
	a, err := appFrom(cmd)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	form.Email = envOr(form.Email, "SHIPLABEL_EMAIL")
	if form.Password == "" {
		form.Password = envOr("", "SHIPLABEL_PASSWORD")
		if form.ConfirmPassword == "" {
			form.ConfirmPassword = form.Password
		}
	}

	if interactive() {
		if form.Name == "" {
			if form.Name, err = promptText("Name", nil); err != nil {
				return err
			}
		}
		if form.Email == "" {
			if form.Email, err = promptText("Email", nil); err != nil {
				return err
			}
		}
		if form.Password == "" {
			if form.Password, err = readPassword(out, "Password"); err != nil {
				return err
			}
		}
		if form.ConfirmPassword == "" {
			if form.ConfirmPassword, err = readPassword(out, "Confirm password"); err != nil {
				return err
			}
		}
	}

	if err := validation.Register(form); err != nil {
		return err
	}

	if err := a.Auth.Register(cmd.Context(), form); err != nil {
		return err
	}

	fmt.Fprintf(out, "\nContinue at %s: shiplabel login --email %s\n", router.AfterRegister, form.Email)
	return nil
}
