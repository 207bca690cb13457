package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mmynk/borrowchecker/internal/validation"
)

// validateCmd represents the validate command.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the group and every ledger for rule violations",
	Args:  cobra.NoArgs,
	RunE:  runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	sess, repo, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer repo.Close()

	out := cmd.OutOrStdout()
	problems := report(out, "group", validation.ValidateGroup(sess.Group()))
	for _, l := range sess.Ledgers() {
		result, err := sess.ValidateLedger(ctx, l.ID)
		if err != nil {
			return err
		}
		problems += report(out, "ledger "+l.DisplayName, result)
	}

	if problems > 0 {
		return fmt.Errorf("%d problem(s) found", problems)
	}
	fmt.Fprintln(out, "OK")
	return nil
}

func report(out io.Writer, scope string, result validation.Result) int {
	for _, fe := range result.Errors {
		fmt.Fprintf(out, "%s: %s: %s [%s]\n", scope, fe.Field, fe.Message, fe.Kind)
	}
	return len(result.Errors)
}
