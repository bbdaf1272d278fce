package server

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	httptransport "github.com/helpdesk-kit/helpdesk/internal/api/http"
	"github.com/helpdesk-kit/helpdesk/internal/cli"
)

// NewCommand returns the server command, equivalent to cmd/api.
func NewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "server",
		Short: "Run the HTTP API and the in-process SLA worker",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			container, err := cli.BootstrapAllowMemory(ctx)
			if err != nil {
				return err
			}
			defer container.Logger.Sync() //nolint:errcheck
			defer container.Close()

			workerDone := container.StartSLAWorker(ctx)
			app := httptransport.NewApp(container)

			listenErr := make(chan error, 1)
			go func() {
				listenErr <- app.Listen(container.Config.App.Addr())
			}()

			select {
			case err := <-listenErr:
				stop()
				<-workerDone
				return err
			case <-ctx.Done():
				container.Logger.Info("shutting down", zap.Error(ctx.Err()))
			}
			_ = app.Shutdown()
			<-workerDone
			return nil
		},
	}
}
