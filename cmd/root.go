package cmd

import (
	"context"
	"os"

	"github.com/safwentrabelsi/spl-approval-revoker/config"
	"github.com/safwentrabelsi/spl-approval-revoker/metrics"
	"github.com/safwentrabelsi/spl-approval-revoker/tui"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:   "revoker",
	Short: "Inspect and revoke SPL token delegations",
	Long: `revoker lists the SPL token accounts of your wallet that have an active delegate
and revokes the selected delegations in a single signed transaction.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(configFile)
		if err != nil {
			return err
		}
		closer, err := setupLogging(cfg.Log, true)
		if err != nil {
			return err
		}
		defer closer.Close()

		app, err := newApplication(cfg, metrics.Nop{}, false)
		if err != nil {
			return err
		}
		defer app.Close()

		return tui.Run(cmd.Context(), app.session, app.feed)
	},
}

func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		log.Errorf("Command execution error: %v", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "config.yaml", "path to the configuration file")
}
