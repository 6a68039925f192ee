package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/safwentrabelsi/spl-approval-revoker/api"
	"github.com/safwentrabelsi/spl-approval-revoker/config"
	"github.com/safwentrabelsi/spl-approval-revoker/metrics"
	"github.com/safwentrabelsi/spl-approval-revoker/utils"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the local control API",
	Long: `Serve a JSON control API over the same session the terminal UI uses, for a
browser front end. Metrics are exposed on a separate port.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(configFile)
		if err != nil {
			return err
		}
		closer, err := setupLogging(cfg.Log, false)
		if err != nil {
			return err
		}
		defer closer.Close()

		if err := metrics.Init(); err != nil {
			return err
		}

		app, err := newApplication(cfg, metrics.Prometheus{}, true)
		if err != nil {
			return err
		}
		defer app.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		if app.session.TryReconnect(ctx) {
			log.Info("Wallet available, connected at startup")
		}

		server := api.NewAPIServer(cfg.Server, app.session, app.feed)
		// app.Close runs after the server has drained.
		return utils.Run(ctx, cancel, server.Run)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
