package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/shiplabel-dev/shiplabel/internal/app"
	"github.com/shiplabel-dev/shiplabel/internal/auth"
	"github.com/shiplabel-dev/shiplabel/internal/cli/commands"
	"github.com/shiplabel-dev/shiplabel/internal/config"
	"github.com/shiplabel-dev/shiplabel/internal/logger"
	"github.com/shiplabel-dev/shiplabel/internal/notify"
	"github.com/shiplabel-dev/shiplabel/internal/storage"
)

var version = "dev" // Will be set during build

func init() {
	// Section guards live on the group commands and must run after the root pre-run
	cobra.EnableTraverseRunHooks = true
}

// Flags are the global flags that override the configuration
type Flags struct {
	APIURL      string
	Storage     string
	StoragePath string
	LogLevel    string
	Ephemeral   bool
}

// Factory builds the App a command runs against
type Factory func(cmd *cobra.Command, flags Flags) (*app.App, error)

// NewRootCmd creates the shiplabel command tree
func NewRootCmd(newApp Factory) *cobra.Command {
	var flags Flags
	var current *app.App

	rootCmd := &cobra.Command{
		Use:   "shiplabel",
		Short: "Shiplabel - Shipping labels from your terminal",
		Long: `Shiplabel CLI - Order shipping labels and manage your account.

Sign in once with 'shiplabel login'; the session is kept between runs.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !needsApp(cmd) {
				return nil
			}

			a, err := newApp(cmd, flags)
			if err != nil {
				return err
			}
			current = a
			cmd.SetContext(app.WithContext(cmd.Context(), a))
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if current == nil {
				return nil
			}
			err := current.Close()
			current = nil
			return err
		},
	}

	rootCmd.PersistentFlags().StringVar(&flags.APIURL, "api-url", "", "API base URL (or set SHIPLABEL_API_URL)")
	rootCmd.PersistentFlags().StringVar(&flags.Storage, "storage", "", "Session storage backend: file, sqlite or memory")
	rootCmd.PersistentFlags().StringVar(&flags.StoragePath, "storage-path", "", "Directory for session storage (default ~/.config/shiplabel)")
	rootCmd.PersistentFlags().StringVar(&flags.LogLevel, "log-level", "", "Log level (default warn, or LOG_LEVEL)")
	rootCmd.PersistentFlags().BoolVar(&flags.Ephemeral, "ephemeral", false, "Keep the session in memory for this run only")

	rootCmd.AddCommand(&cobra.Command{
		Use:         "version",
		Short:       "Print the version number",
		Annotations: map[string]string{skipAppAnnotation: "true"},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "shiplabel version %s\n", version)
		},
	})

	// Add all subcommands
	rootCmd.AddCommand(commands.NewRegisterCmd())
	rootCmd.AddCommand(commands.NewLoginCmd())
	rootCmd.AddCommand(commands.NewLogoutCmd())
	rootCmd.AddCommand(commands.NewStatusCmd())
	rootCmd.AddCommand(commands.NewOpenCmd())
	rootCmd.AddCommand(commands.NewMainCmd())
	rootCmd.AddCommand(commands.NewAdminCmd())

	return rootCmd
}

const skipAppAnnotation = "skip-app"

// needsApp reports whether cmd talks to the session or the API
func needsApp(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations[skipAppAnnotation] == "true" {
			return false
		}
		switch c.Name() {
		case "help", "completion", cobra.ShellCompRequestCmd, cobra.ShellCompNoDescRequestCmd:
			return false
		}
	}
	return true
}

// DefaultFactory loads the configuration, applies flags and builds the App
func DefaultFactory(cmd *cobra.Command, flags Flags) (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if flags.APIURL != "" {
		cfg.APIURL = flags.APIURL
	}
	if flags.Storage != "" {
		cfg.Storage.Backend = flags.Storage
	}
	if flags.StoragePath != "" {
		cfg.Storage.Path = flags.StoragePath
	}
	if flags.Ephemeral {
		cfg.Storage.Backend = storage.BackendMemory
	}
	if flags.LogLevel != "" {
		cfg.Logging.Level = flags.LogLevel
	}
	if cfg.Logging.Level == "" {
		// Keep command output free of routine log lines
		cfg.Logging.Level = "warn"
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger.InitWithWriter(os.Stderr, cfg.Logging.Level, cfg.Logging.Format)

	out := cmd.OutOrStdout()
	color := out == os.Stdout && term.IsTerminal(int(os.Stdout.Fd()))

	return app.New(app.Options{
		Config:   cfg,
		Logger:   logger.GetLogger(),
		Notifier: notify.NewConsole(out, color),
	})
}

// Execute runs the root command
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCmd(DefaultFactory).ExecuteContext(ctx); err != nil {
		if !alreadyReported(err) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		return err
	}
	return nil
}

// alreadyReported reports whether the user was notified of err while the command ran
func alreadyReported(err error) bool {
	var authErr *auth.Error
	var reportedErr *commands.ReportedError
	return errors.As(err, &authErr) || errors.As(err, &reportedErr)
}
