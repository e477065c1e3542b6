// Package comply implements the policy-compliance command.
package comply

import (
	"fmt"

	"github.com/spf13/cobra"

	"tripclerk/expense-engine/cmd/root"
	"tripclerk/expense-engine/internal/models"
)

var transactionID string

// Cmd is the comply command.
var Cmd = &cobra.Command{
	Use:   "comply",
	Short: "Check transactions against the policy rule set.",
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := root.BuildEngine()
		if err != nil {
			return err
		}

		var transactions []*models.Transaction
		if transactionID != "" {
			tx, ok := eng.Store.Transaction(transactionID)
			if !ok {
				return fmt.Errorf("transaction %s not found", transactionID)
			}
			transactions = append(transactions, tx)
		} else {
			transactions = eng.Store.AllTransactions()
		}

		nonCompliant := 0
		for _, tx := range transactions {
			result := eng.Policy.CheckCompliance(tx)
			if result.IsCompliant() {
				continue
			}
			nonCompliant++
			fmt.Printf("%s (%s, %s USD)\n", tx.ID, tx.CategoryID, tx.AmountUSD.StringFixed(2))
			for _, violation := range result.Violations {
				approval := ""
				if violation.RequiresApproval {
					approval = " [approval required]"
				}
				fmt.Printf("  %-26s %-6s %s%s\n", violation.Type, violation.Severity, violation.Description, approval)
			}
		}
		fmt.Printf("%d of %d transactions non-compliant\n", nonCompliant, len(transactions))
		return nil
	},
}

func init() {
	Cmd.Flags().StringVar(&transactionID, "transaction", "", "Check a single transaction id")
}
