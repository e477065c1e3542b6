// Package match implements the trip-matching commands.
package match

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"tripclerk/expense-engine/cmd/root"
	"tripclerk/expense-engine/internal/models"
)

var tripID int

// Cmd is the match command group.
var Cmd = &cobra.Command{
	Use:   "match",
	Short: "Suggest and manage transaction-to-trip links.",
}

var suggestCmd = &cobra.Command{
	Use:   "suggest",
	Short: "Rank candidate transactions for a trip, or for all unlinked trips.",
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := root.BuildEngine()
		if err != nil {
			return err
		}

		if tripID > 0 {
			trip, ok := eng.Store.Trip(tripID)
			if !ok {
				return fmt.Errorf("trip %d not found", tripID)
			}
			suggestion := eng.Matching.SuggestionsForTrip(trip)
			if suggestion == nil {
				fmt.Printf("No matches above the confidence floor for trip %d\n", tripID)
				return nil
			}
			printSuggestion(suggestion)
			return nil
		}

		suggestions := eng.Matching.AutoSuggestions()
		if len(suggestions) == 0 {
			fmt.Println("No unlinked trips with candidate transactions")
			return nil
		}
		for _, suggestion := range suggestions {
			printSuggestion(suggestion)
		}
		return nil
	},
}

var linkCmd = &cobra.Command{
	Use:   "link TRANSACTION_ID TRIP_ID",
	Short: "Link a transaction to a trip.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := root.BuildEngine()
		if err != nil {
			return err
		}
		trip, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid trip id '%s'", args[1])
		}
		if !eng.Matching.Link(args[0], trip, root.SharedFlags.Actor) {
			return fmt.Errorf("link failed: check that transaction %s and trip %d exist", args[0], trip)
		}
		fmt.Printf("Linked %s to trip %d\n", args[0], trip)
		return nil
	},
}

var unlinkCmd = &cobra.Command{
	Use:   "unlink TRANSACTION_ID",
	Short: "Remove a transaction's trip link.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := root.BuildEngine()
		if err != nil {
			return err
		}
		if !eng.Matching.Unlink(args[0], root.SharedFlags.Actor) {
			return fmt.Errorf("unlink failed: transaction %s not found", args[0])
		}
		fmt.Printf("Unlinked %s\n", args[0])
		return nil
	},
}

func printSuggestion(suggestion *models.MatchSuggestion) {
	fmt.Printf("Trip %d (overall confidence %.1f)\n", suggestion.TripID, suggestion.OverallConfidence)
	for _, match := range suggestion.SuggestedTransactions {
		linked := ""
		if match.IsAlreadyLinked {
			linked = " [already linked]"
		}
		fmt.Printf("  %s  %d%%  %s%s\n", match.TransactionID, match.Confidence, match.Reason, linked)
	}
}

func init() {
	suggestCmd.Flags().IntVar(&tripID, "trip", 0, "Suggest for one trip id instead of all unlinked trips")
	Cmd.AddCommand(suggestCmd)
	Cmd.AddCommand(linkCmd)
	Cmd.AddCommand(unlinkCmd)
}
