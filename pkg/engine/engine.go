// Package engine wires the record store, audit sink and every engine into
// a single facade callers can embed. The CLI uses it; library consumers can
// construct engines individually instead.
package engine

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"tripclerk/expense-engine/internal/audit"
	"tripclerk/expense-engine/internal/config"
	"tripclerk/expense-engine/internal/logging"
	"tripclerk/expense-engine/internal/matching"
	"tripclerk/expense-engine/internal/notify"
	"tripclerk/expense-engine/internal/policy"
	"tripclerk/expense-engine/internal/split"
	"tripclerk/expense-engine/internal/store"
	"tripclerk/expense-engine/internal/tax"
	"tripclerk/expense-engine/internal/validation"
)

// Engine bundles the reconciliation and compliance engines over one shared
// record store.
type Engine struct {
	Store     *store.MemoryStore
	Audit     audit.Sink
	Rules     *policy.RulesProvider
	Matching  *matching.Engine
	Split     *split.Engine
	Policy    *policy.Engine
	Tax       *tax.Calculator
	Validator *validation.Validator
}

// New builds a fully wired Engine from the application configuration.
func New(cfg *config.Config, logger logging.Logger) (*Engine, error) {
	if logger == nil {
		logger = logging.NewLogrusAdapter(cfg.Log.Level, cfg.Log.Format)
	}

	recordStore := store.NewMemoryStore()
	auditSink := audit.NewLogSink(logger)
	notifier := notify.NewLogSink(logger)

	rules := policy.NewRulesProvider(
		cfg.Policy.RulesFile,
		time.Duration(cfg.Policy.CacheTTLMinutes)*time.Minute,
		logger,
	)

	taxRules, err := tax.LoadRules(cfg.Tax.RulesFile, logger)
	if err != nil {
		return nil, fmt.Errorf("loading tax rules: %w", err)
	}

	return &Engine{
		Store: recordStore,
		Audit: auditSink,
		Rules: rules,
		Matching: matching.NewEngine(
			recordStore,
			auditSink,
			cfg.Matching.ToleranceDays,
			cfg.Matching.MinConfidence,
			logger,
		),
		Split: split.NewEngine(recordStore, auditSink, split.Options{
			MinAmountUSD:         decimal.NewFromFloat(cfg.Split.MinAmountUSD),
			MinConfidence:        cfg.Split.MinConfidence,
			ExternalPlaceholder:  cfg.Split.ExternalPlaceholder,
			ColleaguePlaceholder: cfg.Split.ColleaguePlaceholder,
		}, logger),
		Policy:    policy.NewEngine(recordStore, rules, auditSink, notifier, cfg.Notify.BaseURL, logger),
		Tax:       tax.NewCalculator(taxRules, rules.Rules().ApprovedPremiumCabinClasses, logger),
		Validator: validation.New(logger),
	}, nil
}
