package commands

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"saldo/internal/logger"
	"saldo/internal/services"
)

func newReconcileCommand() *cobra.Command {
	var userID string
	var apply bool

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Compare stored account balances with their transactions",
		Long: "Recomputes each account balance as its opening balance plus the sum of its " +
			"transactions and reports accounts that differ. With --apply the stored balance is corrected.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, manager, err := openDatabase()
			if err != nil {
				return err
			}
			defer manager.Close()

			accounts := services.NewAccountService(manager.DB(), nil)
			var drifts []services.BalanceDrift
			if userID != "" {
				drifts, err = accounts.Reconcile(cmd.Context(), userID, apply)
			} else {
				drifts, err = accounts.ReconcileAll(cmd.Context(), apply)
			}
			if err != nil {
				return fmt.Errorf("reconciling balances: %w", err)
			}

			if apply && len(drifts) > 0 {
				logger.Named("reconcile").Infow("corrected account balances", "accounts", len(drifts), "user_id", userID)
			}
			return printDrifts(cmd.OutOrStdout(), drifts)
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "only reconcile this user's accounts")
	cmd.Flags().BoolVar(&apply, "apply", false, "write the recomputed balances")

	return cmd
}

func printDrifts(w io.Writer, drifts []services.BalanceDrift) error {
	if len(drifts) == 0 {
		_, err := fmt.Fprintln(w, "All balances match.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ACCOUNT\tUSER\tNAME\tSTORED\tEXPECTED\tDRIFT\tAPPLIED")
	for _, d := range drifts {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%v\n",
			d.AccountID, d.UserID, d.Name,
			d.Stored.StringFixed(2), d.Expected.StringFixed(2), d.Drift.StringFixed(2), d.Applied)
	}
	return tw.Flush()
}
