package cmd

import (
	"fmt"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"github.com/mmynk/borrowchecker/internal/calculator"
	"github.com/mmynk/borrowchecker/internal/models"
)

// transactionsCmd represents the transactions command.
var transactionsCmd = &cobra.Command{
	Use:   "transactions <ledger>",
	Short: "List a ledger's transactions, oldest first",
	Args:  cobra.ExactArgs(1),
	RunE:  runTransactions,
}

func runTransactions(cmd *cobra.Command, args []string) error {
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
	txns, err := sess.Transactions(ctx, ledger.ID)
	if err != nil {
		return err
	}
	slices.SortStableFunc(txns, func(a, b models.Transaction) int {
		return a.Datetime.Compare(b.Datetime)
	})

	group := sess.Group()
	out := cmd.OutOrStdout()
	for i := range txns {
		t := &txns[i]
		fmt.Fprintf(out, "%s  %-24s %16s  paid by %s\n",
			t.Datetime.Format(time.DateTime),
			t.Description,
			calculator.Format(t.Amount.Rat(), t.Currency),
			group.DisplayName(t.PaidByEntity),
		)
	}
	return nil
}
