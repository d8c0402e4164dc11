package cli

import (
	"os"
	"os/signal"
	"syscall"

	api "todo-backend/cmd/api"
	"todo-backend/internal/app"
	"todo-backend/pkg/logger"

	"github.com/spf13/cobra"
)

// NewServeCommand runs the local API and the alert center until interrupted
func NewServeCommand(open Opener) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the local API and deliver reminders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return withApp(cmd, open, func(a *app.App) error {
				if err := a.Center.Start(ctx); err != nil {
					return err
				}
				if addr == "" {
					addr = a.Config.APIAddr
				}
				h := api.NewHandler(a.Tasks, a.Devices, a.Config, a.PushEnabled, logger.Component(a.Logger, "api"))
				return h.Start(ctx, addr)
			})
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from API_ADDR)")
	return cmd
}
