// Package policy evaluates transactions against the configurable compliance
// rule set and manages the cached PolicyRules snapshot.
package policy

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"tripclerk/expense-engine/internal/logging"
	"tripclerk/expense-engine/internal/models"
)

// rulesFile is the YAML shape of the policy rules file. Thresholds are plain
// numbers on disk and converted to decimals on load.
type rulesFile struct {
	HighValueMealThreshold                  float64  `yaml:"high_value_meal_threshold"`
	LowValueLodgingThreshold                float64  `yaml:"low_value_lodging_threshold"`
	ClientEntertainmentThreshold            float64  `yaml:"client_entertainment_threshold"`
	DocumentationRequiredThreshold          float64  `yaml:"documentation_required_threshold"`
	DocumentationGracePeriodDays            int      `yaml:"documentation_grace_period_days"`
	ApprovedPremiumCabinClasses             []string `yaml:"approved_premium_cabin_classes"`
	ApprovedCurrencies                      []string `yaml:"approved_currencies"`
	MealsRequireParticipants                bool     `yaml:"meals_require_participants"`
	ClientEntertainmentRequiresParticipants bool     `yaml:"client_entertainment_requires_participants"`
	LodgingRequiresReceipt                  bool     `yaml:"lodging_requires_receipt"`
	PremiumCabinRequiresApproval            bool     `yaml:"premium_cabin_requires_approval"`
	UncategorizedRequiresReview             bool     `yaml:"uncategorized_requires_review"`
}

// DefaultRules returns the built-in policy rule set used when no rules file
// is present.
func DefaultRules() models.PolicyRules {
	return models.PolicyRules{
		HighValueMealThreshold:                  decimal.NewFromInt(80),
		LowValueLodgingThreshold:                decimal.NewFromInt(100),
		ClientEntertainmentThreshold:            decimal.NewFromInt(150),
		DocumentationRequiredThreshold:          decimal.NewFromInt(75),
		DocumentationGracePeriodDays:            14,
		ApprovedPremiumCabinClasses:             []string{"Business", "First", "Premium Economy"},
		ApprovedCurrencies:                      []string{"USD", "EUR", "GBP", "CHF", "JPY"},
		MealsRequireParticipants:                false,
		ClientEntertainmentRequiresParticipants: true,
		LodgingRequiresReceipt:                  true,
		PremiumCabinRequiresApproval:            true,
		UncategorizedRequiresReview:             true,
	}
}

// RulesProvider loads PolicyRules from a YAML file and caches the snapshot
// with a coarse time-based expiry. Writers replace the snapshot wholesale;
// readers tolerate staleness up to the TTL.
type RulesProvider struct {
	mu        sync.RWMutex
	rulesFile string
	ttl       time.Duration
	cached    *models.PolicyRules
	loadedAt  time.Time
	logger    logging.Logger
	now       func() time.Time
}

// NewRulesProvider creates a provider reading from rulesFile with the given
// cache TTL.
func NewRulesProvider(rulesFile string, ttl time.Duration, logger logging.Logger) *RulesProvider {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	return &RulesProvider{
		rulesFile: rulesFile,
		ttl:       ttl,
		logger:    logger.WithField("component", "policy.rules"),
		now:       time.Now,
	}
}

// WithClock overrides the provider's clock, for tests.
func (p *RulesProvider) WithClock(now func() time.Time) *RulesProvider {
	p.now = now
	return p
}

// Rules returns the current policy rule snapshot, reloading it when the
// cached copy has expired. A missing rules file yields the defaults.
func (p *RulesProvider) Rules() models.PolicyRules {
	p.mu.RLock()
	if p.cached != nil && p.now().Sub(p.loadedAt) < p.ttl {
		rules := *p.cached
		p.mu.RUnlock()
		return rules
	}
	p.mu.RUnlock()

	p.mu.Lock()
	defer p.mu.Unlock()
	// Another writer may have refreshed while we upgraded the lock.
	if p.cached != nil && p.now().Sub(p.loadedAt) < p.ttl {
		return *p.cached
	}

	rules, err := p.load()
	if err != nil {
		p.logger.WithError(err).Warn("falling back to default policy rules")
		rules = DefaultRules()
	}
	p.cached = &rules
	p.loadedAt = p.now()
	return rules
}

// Update persists a new rule set and replaces the cached snapshot
// atomically relative to readers.
func (p *RulesProvider) Update(rules models.PolicyRules) error {
	data, err := yaml.Marshal(toRulesFile(rules))
	if err != nil {
		return fmt.Errorf("error marshaling policy rules: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if dir := filepath.Dir(p.rulesFile); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("error creating directory: %w", err)
		}
	}
	if err := os.WriteFile(p.rulesFile, data, 0644); err != nil {
		return fmt.Errorf("error writing policy rules: %w", err)
	}

	p.cached = &rules
	p.loadedAt = p.now()
	p.logger.Info("policy rules updated", logging.Field{Key: "file", Value: p.rulesFile})
	return nil
}

// Invalidate drops the cached snapshot so the next read reloads from disk.
func (p *RulesProvider) Invalidate() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cached = nil
}

func (p *RulesProvider) load() (models.PolicyRules, error) {
	if p.rulesFile == "" {
		return DefaultRules(), nil
	}

	data, err := os.ReadFile(p.rulesFile)
	if err != nil {
		if os.IsNotExist(err) {
			p.logger.Warn("policy rules file not found, using defaults",
				logging.Field{Key: "file", Value: p.rulesFile})
			return DefaultRules(), nil
		}
		return models.PolicyRules{}, fmt.Errorf("error reading policy rules file: %w", err)
	}

	var file rulesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return models.PolicyRules{}, fmt.Errorf("error parsing policy rules: %w", err)
	}

	p.logger.Debug("policy rules loaded", logging.Field{Key: "file", Value: p.rulesFile})
	return fromRulesFile(file), nil
}

func fromRulesFile(f rulesFile) models.PolicyRules {
	defaults := DefaultRules()
	rules := models.PolicyRules{
		HighValueMealThreshold:                  decimal.NewFromFloat(f.HighValueMealThreshold),
		LowValueLodgingThreshold:                decimal.NewFromFloat(f.LowValueLodgingThreshold),
		ClientEntertainmentThreshold:            decimal.NewFromFloat(f.ClientEntertainmentThreshold),
		DocumentationRequiredThreshold:          decimal.NewFromFloat(f.DocumentationRequiredThreshold),
		DocumentationGracePeriodDays:            f.DocumentationGracePeriodDays,
		ApprovedPremiumCabinClasses:             f.ApprovedPremiumCabinClasses,
		ApprovedCurrencies:                      f.ApprovedCurrencies,
		MealsRequireParticipants:                f.MealsRequireParticipants,
		ClientEntertainmentRequiresParticipants: f.ClientEntertainmentRequiresParticipants,
		LodgingRequiresReceipt:                  f.LodgingRequiresReceipt,
		PremiumCabinRequiresApproval:            f.PremiumCabinRequiresApproval,
		UncategorizedRequiresReview:             f.UncategorizedRequiresReview,
	}
	// Zero-valued thresholds in the file fall back to the defaults so a
	// partial file does not disable whole rule families.
	if rules.HighValueMealThreshold.IsZero() {
		rules.HighValueMealThreshold = defaults.HighValueMealThreshold
	}
	if rules.LowValueLodgingThreshold.IsZero() {
		rules.LowValueLodgingThreshold = defaults.LowValueLodgingThreshold
	}
	if rules.ClientEntertainmentThreshold.IsZero() {
		rules.ClientEntertainmentThreshold = defaults.ClientEntertainmentThreshold
	}
	if rules.DocumentationRequiredThreshold.IsZero() {
		rules.DocumentationRequiredThreshold = defaults.DocumentationRequiredThreshold
	}
	if rules.DocumentationGracePeriodDays == 0 {
		rules.DocumentationGracePeriodDays = defaults.DocumentationGracePeriodDays
	}
	if len(rules.ApprovedPremiumCabinClasses) == 0 {
		rules.ApprovedPremiumCabinClasses = defaults.ApprovedPremiumCabinClasses
	}
	if len(rules.ApprovedCurrencies) == 0 {
		rules.ApprovedCurrencies = defaults.ApprovedCurrencies
	}
	return rules
}

func toRulesFile(rules models.PolicyRules) rulesFile {
	return rulesFile{
		HighValueMealThreshold:                  rules.HighValueMealThreshold.InexactFloat64(),
		LowValueLodgingThreshold:                rules.LowValueLodgingThreshold.InexactFloat64(),
		ClientEntertainmentThreshold:            rules.ClientEntertainmentThreshold.InexactFloat64(),
		DocumentationRequiredThreshold:          rules.DocumentationRequiredThreshold.InexactFloat64(),
		DocumentationGracePeriodDays:            rules.DocumentationGracePeriodDays,
		ApprovedPremiumCabinClasses:             rules.ApprovedPremiumCabinClasses,
		ApprovedCurrencies:                      rules.ApprovedCurrencies,
		MealsRequireParticipants:                rules.MealsRequireParticipants,
		ClientEntertainmentRequiresParticipants: rules.ClientEntertainmentRequiresParticipants,
		LodgingRequiresReceipt:                  rules.LodgingRequiresReceipt,
		PremiumCabinRequiresApproval:            rules.PremiumCabinRequiresApproval,
		UncategorizedRequiresReview:             rules.UncategorizedRequiresReview,
	}
}
