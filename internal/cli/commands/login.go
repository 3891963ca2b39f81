package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shiplabel-dev/shiplabel/internal/models"
	"github.com/shiplabel-dev/shiplabel/internal/router"
	"github.com/shiplabel-dev/shiplabel/internal/validation"
)

// NewLoginCmd creates the login command
func NewLoginCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to the shipping-label service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogin(cmd, email, password)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address (or set SHIPLABEL_EMAIL)")
	cmd.Flags().StringVar(&password, "password", "", "Password (or set SHIPLABEL_PASSWORD, will prompt if not provided)")

	return withRoute(cmd, router.PathLogin)
}

func runLogin(cmd *cobra.Command, email, password string) error {
	a, err := appFrom(cmd)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	// Check for environment variables (useful for CI/CD)
	email = envOr(email, "SHIPLABEL_EMAIL")
	password = envOr(password, "SHIPLABEL_PASSWORD")

	if interactive() {
		if email == "" {
			if email, err = promptText("Email", nil); err != nil {
				return err
			}
		}
		if password == "" {
			if password, err = readPassword(out, "Password"); err != nil {
				return err
			}
		}
	}

	form := models.LoginForm{Email: email, Password: password}
	if err := validation.Login(form); err != nil {
		return err
	}

	user, err := a.Auth.Login(cmd.Context(), form)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "  User: %s (%s)\n", user.Name, user.Email)
	fmt.Fprintf(out, "  Role: %s\n", user.Role)
	fmt.Fprintf(out, "\nContinue at %s\n", router.Landing(user))
	return nil
}
