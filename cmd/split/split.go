// Package split implements the shared-spend split commands.
package split

import (
	"fmt"

	"github.com/spf13/cobra"

	"tripclerk/expense-engine/cmd/root"
	"tripclerk/expense-engine/internal/currencyutils"
)

// Cmd is the split command group.
var Cmd = &cobra.Command{
	Use:   "split",
	Short: "Detect, apply and undo shared-spend splits.",
}

var suggestCmd = &cobra.Command{
	Use:   "suggest",
	Short: "List transactions that look like shared spend, with proposed splits.",
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := root.BuildEngine()
		if err != nil {
			return err
		}

		suggestions := eng.Split.SplitSuggestions()
		if len(suggestions) == 0 {
			fmt.Println("No split candidates found")
			return nil
		}
		for _, suggestion := range suggestions {
			fmt.Printf("%s  %d%%  %s\n", suggestion.TransactionID, suggestion.ConfidenceScore, suggestion.Reason)
			for _, item := range suggestion.SuggestedSplits {
				marker := ""
				if item.IsExternal {
					marker = " (external)"
				}
				fmt.Printf("  %s  %s%s\n", item.Email, currencyutils.FormatAmount(item.AmountUSD, "USD"), marker)
			}
		}
		return nil
	},
}

var applyCmd = &cobra.Command{
	Use:   "apply TRANSACTION_ID",
	Short: "Apply the suggested split for a transaction.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := root.BuildEngine()
		if err != nil {
			return err
		}

		tx, ok := eng.Store.Transaction(args[0])
		if !ok {
			return fmt.Errorf("transaction %s not found", args[0])
		}
		suggestion := eng.Split.SuggestFor(tx)
		if suggestion == nil {
			return fmt.Errorf("no split suggestion for %s", args[0])
		}
		if !eng.Split.ApplySplit(args[0], suggestion.SuggestedSplits, root.SharedFlags.Actor) {
			return fmt.Errorf("split failed for %s", args[0])
		}
		fmt.Printf("Split %s into %d parts\n", args[0], len(suggestion.SuggestedSplits))
		return nil
	},
}

var undoCmd = &cobra.Command{
	Use:   "undo TRANSACTION_ID",
	Short: "Undo a previously applied split.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := root.BuildEngine()
		if err != nil {
			return err
		}
		if !eng.Split.UndoSplit(args[0], root.SharedFlags.Actor) {
			return fmt.Errorf("undo failed: %s is absent or not split", args[0])
		}
		fmt.Printf("Undid split of %s\n", args[0])
		return nil
	},
}

func init() {
	Cmd.AddCommand(suggestCmd)
	Cmd.AddCommand(applyCmd)
	Cmd.AddCommand(undoCmd)
}
