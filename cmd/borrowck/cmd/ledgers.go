package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// ledgersCmd represents the ledgers command.
var ledgersCmd = &cobra.Command{
	Use:   "ledgers",
	Short: "List ledgers",
	Args:  cobra.NoArgs,
	RunE:  runLedgers,
}

func runLedgers(cmd *cobra.Command, args []string) error {
	sess, repo, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer repo.Close()

	group := sess.Group()
	out := cmd.OutOrStdout()
	for _, l := range sess.Ledgers() {
		names := make([]string, len(l.Participants))
		for i, p := range l.Participants {
			names[i] = group.DisplayName(p)
		}
		fmt.Fprintf(out, "%s  %-20s %s\n", l.ID, l.DisplayName, strings.Join(names, ", "))
	}
	return nil
}
