// Package validate implements the field-validation command.
package validate

import (
	"fmt"

	"github.com/spf13/cobra"

	"tripclerk/expense-engine/cmd/root"
)

// Cmd is the validate command.
var Cmd = &cobra.Command{
	Use:   "validate",
	Short: "Run field-level validation over the fixture set.",
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := root.BuildEngine()
		if err != nil {
			return err
		}

		invalid := 0
		for _, tx := range eng.Store.AllTransactions() {
			result := eng.Validator.ValidateTransaction(tx)
			if result.IsValid && len(result.Warnings) == 0 {
				continue
			}
			if !result.IsValid {
				invalid++
			}
			fmt.Printf("%s\n", tx.ID)
			for _, e := range result.Errors {
				fmt.Printf("  ERROR %s (%s): %s\n", e.RuleCode, e.Field, e.Message)
			}
			for _, w := range result.Warnings {
				fmt.Printf("  WARN  %s (%s): %s\n", w.RuleCode, w.Field, w.Message)
			}
		}

		for _, trip := range eng.Store.Trips() {
			result := eng.Validator.ValidateTrip(trip)
			if result.IsValid && len(result.Warnings) == 0 {
				continue
			}
			fmt.Printf("trip %d\n", trip.ID)
			for _, e := range result.Errors {
				fmt.Printf("  ERROR %s (%s): %s\n", e.RuleCode, e.Field, e.Message)
			}
			for _, w := range result.Warnings {
				fmt.Printf("  WARN  %s (%s): %s\n", w.RuleCode, w.Field, w.Message)
			}
		}

		fmt.Printf("%d invalid transactions\n", invalid)
		return nil
	},
}
