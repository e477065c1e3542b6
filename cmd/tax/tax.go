// Package tax implements the tax-exposure command.
package tax

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"tripclerk/expense-engine/cmd/root"
	"tripclerk/expense-engine/internal/models"
)

var tripID int

// Cmd is the tax command.
var Cmd = &cobra.Command{
	Use:   "tax",
	Short: "Compute per-trip tax exposure against jurisdictional caps.",
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := root.BuildEngine()
		if err != nil {
			return err
		}

		var trips []*models.Trip
		if tripID > 0 {
			trip, ok := eng.Store.Trip(tripID)
			if !ok {
				return fmt.Errorf("trip %d not found", tripID)
			}
			trips = append(trips, trip)
		} else {
			trips = eng.Store.Trips()
		}

		for _, trip := range trips {
			transactions := eng.Store.TransactionsByTrip(trip.ID)
			result := eng.Tax.Calculate(trip, transactions)

			fmt.Printf("Trip %d (%s, %d days)\n", trip.ID, trip.Country1, trip.Duration())
			if result.Note != "" {
				fmt.Printf("  %s\n", result.Note)
			}
			fmt.Printf("  Meals exposure:   USD %s\n", result.MealsExposure.StringFixed(2))
			fmt.Printf("  Lodging exposure: USD %s\n", result.LodgingExposure.StringFixed(2))
			fmt.Printf("  Total exposure:   USD %s\n", result.TotalTaxExposure.StringFixed(2))
			if result.HasPremiumAirfare {
				fmt.Printf("  Premium airfare (%s): surcharge USD %s (reported separately)\n",
					strings.Join(result.PremiumCabinClasses, ", "),
					result.PremiumAirfareSurcharge.StringFixed(2))
			}
		}
		return nil
	},
}

func init() {
	Cmd.Flags().IntVar(&tripID, "trip", 0, "Compute for a single trip id")
}
