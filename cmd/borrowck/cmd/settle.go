package cmd

import (
	"fmt"
	"maps"
	"slices"

	"github.com/spf13/cobra"

	"github.com/mmynk/borrowchecker/internal/calculator"
)

// settleCmd represents the settle command.
var settleCmd = &cobra.Command{
	Use:   "settle <ledger>",
	Short: "Propose payments that settle a ledger",
	Args:  cobra.ExactArgs(1),
	RunE:  runSettle,
}

func runSettle(cmd *cobra.Command, args []string) error {
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
	byCurrency, err := sess.Settlements(ctx, ledger.ID)
	if err != nil {
		return err
	}

	group := sess.Group()
	out := cmd.OutOrStdout()
	count := 0
	for _, currency := range slices.Sorted(maps.Keys(byCurrency)) {
		for _, s := range byCurrency[currency] {
			fmt.Fprintf(out, "%-20s -> %-20s %16s\n",
				group.DisplayName(s.From), group.DisplayName(s.To), calculator.Format(s.Amount, s.Currency))
			count++
		}
	}
	if count == 0 {
		fmt.Fprintln(out, "All settled.")
	}
	return nil
}
