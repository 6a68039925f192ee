package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/safwentrabelsi/spl-approval-revoker/config"
	"github.com/safwentrabelsi/spl-approval-revoker/metrics"
	"github.com/safwentrabelsi/spl-approval-revoker/revoke"
	"github.com/spf13/cobra"
)

var (
	revokeAll   bool
	revokeMints []string
)

// selector is the part of the session the revoke command selects through.
type selector interface {
	Toggle(mint string) error
	SelectAll(checked bool)
}

func applySelection(s selector, all bool, mints []string) error {
	if all {
		s.SelectAll(true)
		return nil
	}
	if len(mints) == 0 {
		return errors.New("either --all or at least one --mint is required")
	}
	for _, mint := range mints {
		if err := s.Toggle(mint); err != nil {
			return err
		}
	}
	return nil
}

var revokeCmd = &cobra.Command{
	Use:   "revoke",
	Short: "Revoke delegations in one transaction",
	Long: `Revoke the delegations of the given mints, or of every delegated token account
with --all. The current delegations are fetched first; mints without an active
delegate are rejected.`,
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

		app, err := newApplication(cfg, metrics.Nop{}, true)
		if err != nil {
			return err
		}
		defer app.Close()

		ctx := cmd.Context()
		if err := app.session.ConnectWallet(ctx); err != nil {
			return err
		}
		if _, err := app.session.FetchDelegatedTokens(ctx); err != nil {
			return err
		}
		if err := applySelection(app.session, revokeAll, revokeMints); err != nil {
			return err
		}

		result, err := app.session.RevokeSelected(ctx)
		if errors.Is(err, revoke.ErrEmptySelection) {
			fmt.Fprintln(cmd.OutOrStdout(), "Nothing to revoke.")
			return nil
		}
		if err != nil {
			return err
		}
		printResult(cmd.OutOrStdout(), result)
		return nil
	},
}

func printResult(w io.Writer, result revoke.Result) {
	fmt.Fprintf(w, "Revoked approvals for %d tokens.\n", result.Count())
	fmt.Fprintf(w, "Signature: %s\n", result.Signature)
	for _, mint := range result.Mints {
		fmt.Fprintf(w, "  %s\n", mint)
	}
}

func init() {
	revokeCmd.Flags().BoolVar(&revokeAll, "all", false, "revoke every delegation of the wallet")
	revokeCmd.Flags().StringSliceVar(&revokeMints, "mint", nil, "mint whose delegation to revoke (repeatable)")
	rootCmd.AddCommand(revokeCmd)
}
