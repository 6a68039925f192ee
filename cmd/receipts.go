package cmd

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/safwentrabelsi/spl-approval-revoker/config"
	"github.com/safwentrabelsi/spl-approval-revoker/metrics"
	"github.com/safwentrabelsi/spl-approval-revoker/types"
	"github.com/spf13/cobra"
)

var receiptsCmd = &cobra.Command{
	Use:   "receipts",
	Short: "List the revocation transactions submitted from this wallet",
	Args:  cobra.NoArgs,
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

		app, err := newApplication(cfg, metrics.Nop{}, false)
		if err != nil {
			return err
		}
		defer app.Close()

		if err := app.session.ConnectWallet(cmd.Context()); err != nil {
			return err
		}
		receipts, err := app.session.Receipts(cmd.Context())
		if err != nil {
			return err
		}
		printReceipts(cmd.OutOrStdout(), receipts)
		return nil
	},
}

func printReceipts(w io.Writer, receipts []types.Receipt) {
	if len(receipts) == 0 {
		fmt.Fprintln(w, "No receipts.")
		return
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("SUBMITTED", "SIGNATURE", "COUNT", "MINTS")
	for _, r := range receipts {
		t.Row(r.SubmittedAt.Format(time.RFC3339), r.Signature, fmt.Sprint(r.Count), strings.Join(r.Mints, ", "))
	}
	fmt.Fprintln(w, t.Render())
}

func init() {
	rootCmd.AddCommand(receiptsCmd)
}
