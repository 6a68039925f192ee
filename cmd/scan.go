package cmd

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/safwentrabelsi/spl-approval-revoker/config"
	"github.com/safwentrabelsi/spl-approval-revoker/metrics"
	"github.com/safwentrabelsi/spl-approval-revoker/types"
	"github.com/spf13/cobra"
)

var scanMock bool

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "List the delegated token accounts of the wallet",
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

		var tokens []types.Token
		if scanMock {
			tokens, err = app.session.LoadMockTokens()
			if err != nil {
				return err
			}
		} else {
			if err := app.session.ConnectWallet(cmd.Context()); err != nil {
				return err
			}
			tokens, err = app.session.FetchDelegatedTokens(cmd.Context())
			if err != nil {
				return err
			}
		}
		printTokens(cmd.OutOrStdout(), tokens)
		return nil
	},
}

func printTokens(w io.Writer, tokens []types.Token) {
	if len(tokens) == 0 {
		fmt.Fprintln(w, "No delegated tokens.")
		return
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("MINT", "DELEGATE", "DELEGATED", "OWNER")
	for _, token := range tokens {
		t.Row(token.Mint, token.Delegate, token.UIDelegatedAmount(), token.Owner)
	}
	fmt.Fprintln(w, t.Render())
}

func init() {
	scanCmd.Flags().BoolVar(&scanMock, "mock", false, "list demo delegations instead of querying the RPC")
	rootCmd.AddCommand(scanCmd)
}
