package cli

import (
	"context"
	"fmt"
	"io"

	"todo-backend/internal/app"
	"todo-backend/pkg/config"
	"todo-backend/pkg/logger"

	"github.com/spf13/cobra"
)

// Opener builds the application for one command invocation
type Opener func(ctx context.Context) (*app.App, error)

// DefaultOpener loads configuration from the environment
func DefaultOpener(ctx context.Context) (*app.App, error) {
	cfg := config.Load()
	log := logger.New(logger.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})
	return app.New(ctx, cfg, log)
}

// NewRootCommand creates the root command for the todo application
func NewRootCommand(version string, open Opener) *cobra.Command {
	if open == nil {
		open = DefaultOpener
	}

	cmd := &cobra.Command{
		Use:           "todo",
		Short:         "todo - personal task list with reminders",
		Long:          `Tasks grouped by day, persisted locally, with reminder notifications.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
		},
	}

	cmd.AddCommand(
		NewServeCommand(open),
		NewAddCommand(open),
		NewListCommand(open),
		NewToggleCommand(open),
		NewEditCommand(open),
		NewRemoveCommand(open),
		NewStatsCommand(open),
		NewSearchCommand(open),
	)

	return cmd
}

// Execute runs the root command and prints any error to stderr
func Execute(version string, stderr io.Writer) int {
	if err := NewRootCommand(version, nil).Execute(); err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return 1
	}
	return 0
}

// withApp opens the application, runs fn and always closes it again
func withApp(cmd *cobra.Command, open Opener, fn func(a *app.App) error) error {
	a, err := open(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}
