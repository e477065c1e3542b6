// Package root contains the root command for the application
package root

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"tripclerk/expense-engine/cmd/common"
	"tripclerk/expense-engine/internal/config"
	"tripclerk/expense-engine/internal/logging"
	"tripclerk/expense-engine/pkg/engine"
)

// CommonFlags represents the flags that are common to multiple commands
type CommonFlags struct {
	Transactions string
	Trips        string
	Actor        string
}

var (
	// Log is the shared logger instance for commands
	Log = logrus.New()

	// Cfg is the loaded application configuration
	Cfg *config.Config

	// Cmd is the root command
	Cmd = &cobra.Command{
		Use:   "expense-engine",
		Short: "Reconciliation and compliance engine for corporate travel expenses.",
		Long: `expense-engine links transactions to trips, detects shared spend and
proposes splits, checks transactions against the policy rule set, and
computes per-trip tax exposure against jurisdictional caps.`,
		Run: func(cmd *cobra.Command, args []string) {
			Log.Info("Welcome to expense-engine!")
			Log.Info("Use --help to see available commands")
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			config.LoadEnv()
			Log = config.ConfigureLogging()

			cfg, err := config.InitializeConfig()
			if err != nil {
				return err
			}
			Cfg = cfg

			if SharedFlags.Transactions == "" {
				SharedFlags.Transactions = cfg.Data.TransactionsFile
			}
			if SharedFlags.Trips == "" {
				SharedFlags.Trips = cfg.Data.TripsFile
			}
			return nil
		},
	}

	// SharedFlags holds common flags accessible to all commands
	SharedFlags = CommonFlags{}
)

// Init initializes the root command and all flags
func Init() {
	Cmd.PersistentFlags().StringVarP(&SharedFlags.Transactions, "transactions", "t", "", "Transactions fixture CSV")
	Cmd.PersistentFlags().StringVarP(&SharedFlags.Trips, "trips", "r", "", "Trips fixture CSV")
	Cmd.PersistentFlags().StringVarP(&SharedFlags.Actor, "actor", "a", "cli", "Actor recorded in audit entries")
}

// BuildEngine wires a fully configured engine and loads the fixture files
// into its store.
func BuildEngine() (*engine.Engine, error) {
	if Cfg == nil {
		return nil, fmt.Errorf("configuration not initialized")
	}

	eng, err := engine.New(Cfg, logging.NewLogrusAdapterFromLogger(Log))
	if err != nil {
		return nil, err
	}

	if err := common.Populate(eng.Store, SharedFlags.Transactions, SharedFlags.Trips); err != nil {
		return nil, fmt.Errorf("loading fixtures: %w", err)
	}
	return eng, nil
}
