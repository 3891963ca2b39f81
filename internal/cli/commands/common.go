package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/shiplabel-dev/shiplabel/internal/app"
	"github.com/shiplabel-dev/shiplabel/internal/models"
	"github.com/shiplabel-dev/shiplabel/internal/router"
)

// routeAnnotation names the page a command shows
const routeAnnotation = "route"

// RedirectError is returned when the session may not see the page behind a command
type RedirectError struct {
	Path string
	To   string
}

func (e *RedirectError) Error() string {
	if e.To == router.PathLogin {
		return fmt.Sprintf("%s requires a signed-in user with access to it\nRun 'shiplabel login' (%s) first", e.Path, e.To)
	}
	return fmt.Sprintf("%s is not available, continue at %s", e.Path, e.To)
}

// interactive reports whether prompts can be shown. Tests replace it.
var interactive = func() bool {
	return term.IsTerminal(int(syscall.Stdin))
}

// appFrom returns the App the root command attached to the command context
func appFrom(cmd *cobra.Command) (*app.App, error) {
	a := app.FromContext(cmd.Context())
	if a == nil {
		return nil, errors.New("application not initialized")
	}
	return a, nil
}

// withRoute marks cmd as showing the page at path
func withRoute(cmd *cobra.Command, path string) *cobra.Command {
	if cmd.Annotations == nil {
		cmd.Annotations = map[string]string{}
	}
	cmd.Annotations[routeAnnotation] = path
	return cmd
}

// routeOf returns the page a command shows, inherited from its closest annotated ancestor
func routeOf(cmd *cobra.Command) string {
	for c := cmd; c != nil; c = c.Parent() {
		if r := c.Annotations[routeAnnotation]; r != "" {
			return r
		}
	}
	return ""
}

// requireSection returns a pre-run that runs the section's guard for the invoked command
func requireSection(prefix string) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := appFrom(cmd)
		if err != nil {
			return err
		}

		target := routeOf(cmd)
		if target == "" {
			target = prefix
		}

		res := a.Resolve(target)
		switch {
		case res.Redirect != "":
			a.Logger.Debug().Str("path", target).Str("redirect", res.Redirect).Msg("Navigation denied")
			return &RedirectError{Path: target, To: res.Redirect}
		case res.NotFound:
			return fmt.Errorf("no page at %s", target)
		}
		return nil
	}
}

// currentUser returns the session identity. Guarded commands always have one.
func currentUser(cmd *cobra.Command, a *app.App) (*models.User, error) {
	s := a.Session()
	if !s.IsAuthenticated || s.User == nil {
		return nil, &RedirectError{Path: routeOf(cmd), To: router.PathLogin}
	}
	return s.User, nil
}

// promptText asks for a value on the terminal
func promptText(label string, validate promptui.ValidateFunc) (string, error) {
	prompt := promptui.Prompt{
		Label:    label,
		Validate: validate,
	}
	value, err := prompt.Run()
	if err != nil {
		return "", fmt.Errorf("%s prompt cancelled: %w", strings.ToLower(label), err)
	}
	return strings.TrimSpace(value), nil
}

// readPassword reads a password from the terminal without echoing it
func readPassword(out io.Writer, label string) (string, error) {
	fmt.Fprintf(out, "%s: ", label)
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	fmt.Fprintln(out) // New line after password input
	return string(bytePassword), nil
}

// envOr returns value, or the named environment variable when value is empty
func envOr(value, name string) string {
	if value != "" {
		return value
	}
	return os.Getenv(name)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// ReportedError is an error the user has already been notified of
type ReportedError struct {
	Err error
}

func (e *ReportedError) Error() string {
	return e.Err.Error()
}

func (e *ReportedError) Unwrap() error {
	return e.Err
}

func reported(err error) error {
	return &ReportedError{Err: err}
}
