package cmd

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/mmynk/borrowchecker/internal/calculator"
	"github.com/mmynk/borrowchecker/internal/models"
)

var balanceUser string

// balancesCmd represents the balances command.
var balancesCmd = &cobra.Command{
	Use:   "balances <ledger>",
	Short: "Show what everyone owes a user, per currency",
	Long: `Show what every entity owes the viewing user (positive) or is owed
by them (negative), per currency, followed by the user's total.

The user comes from --user (ID or display name) or BORROWCHECKER_USER_ID.`,
	Args: cobra.ExactArgs(1),
	RunE: runBalances,
}

func init() {
	balancesCmd.Flags().StringVar(&balanceUser, "user", "", "viewing user (ID or display name)")
}

func runBalances(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	sess, repo, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer repo.Close()

	ledger, err := findLedger(sess, args[0])
	if err != nil {
		return err
	}
	group := sess.Group()

	userID := uuid.Nil
	if balanceUser != "" {
		e, err := findEntity(group, balanceUser)
		if err != nil {
			return err
		}
		userID = e.ID
	} else if _, ok := sess.CurrentUser(); !ok {
		return fmt.Errorf("%w: pass --user or set BORROWCHECKER_USER_ID", models.ErrNotFound)
	}

	balances, err := sess.Balances(ctx, ledger.ID, userID)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, currency := range balances.Currencies() {
		fmt.Fprintf(out, "%s\n", currency)
		for _, e := range group.Entities {
			amount, ok := balances[currency][e.ID]
			if !ok {
				continue
			}
			status := ""
			if calculator.IsSettled(amount, currency) {
				status = "  (settled)"
			}
			fmt.Fprintf(out, "  %-20s %16s%s\n", e.DisplayName, calculator.Format(amount, currency), status)
		}
		fmt.Fprintf(out, "  %-20s %16s\n", "Total", calculator.Format(balances.Total(currency), currency))
	}
	return nil
}
