package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jingkaihe/interpose/pkg/lifecycle"
)

var historyCmd = &cobra.Command{
	Use:   "history <journal> [type]",
	Short: "Print the definition phases recorded in a journal",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	j, err := lifecycle.OpenJournal(args[0])
	if err != nil {
		return err
	}
	defer j.Close()

	name := ""
	if len(args) > 1 {
		name = args[1]
	}
	entries, err := j.History(name)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SEQ\tTYPE\tPHASE\tCOMPLETIONS\tUPDATED\tID")
	for _, e := range entries {
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\t%s\n",
			e.Seq, e.Name, e.Phase, e.Completions, e.UpdatedAt.Format("2006-01-02 15:04:05"), e.TargetID)
	}
	return w.Flush()
}
