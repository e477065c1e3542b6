package policy

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"tripclerk/expense-engine/internal/audit"
	"tripclerk/expense-engine/internal/logging"
	"tripclerk/expense-engine/internal/models"
	"tripclerk/expense-engine/internal/notify"
	"tripclerk/expense-engine/internal/store"
)

var two = decimal.NewFromInt(2)
var three = decimal.NewFromInt(3)

// Engine evaluates transactions against the policy rule set. Checks are
// independent: each may append zero or more violations and none
// short-circuits another.
type Engine struct {
	store    store.RecordStore
	rules    *RulesProvider
	sink     audit.Sink
	notifier notify.Sink
	logger   logging.Logger
	linkBase string
	now      func() time.Time
}

// NewEngine creates a compliance engine. linkBase is prepended to the
// transaction id in notification links.
func NewEngine(recordStore store.RecordStore, rules *RulesProvider, sink audit.Sink, notifier notify.Sink, linkBase string, logger logging.Logger) *Engine {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	return &Engine{
		store:    recordStore,
		rules:    rules,
		sink:     sink,
		notifier: notifier,
		logger:   logger.WithField("component", "policy"),
		linkBase: strings.TrimRight(linkBase, "/"),
		now:      time.Now,
	}
}

// WithClock overrides the engine's clock, for tests.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// CheckCompliance evaluates every policy check against the transaction and
// returns the aggregated result. A non-compliant result with a known owner
// triggers one best-effort notification; notification failures are logged
// and swallowed.
func (e *Engine) CheckCompliance(tx *models.Transaction) models.PolicyComplianceResult {
	rules := e.rules.Rules()
	result := models.PolicyComplianceResult{TransactionID: tx.ID}

	e.checkMeals(tx, rules, &result)
	e.checkLodging(tx, rules, &result)
	e.checkAirfare(tx, rules, &result)
	e.checkClientEntertainment(tx, rules, &result)
	e.checkDocumentation(tx, rules, &result)
	e.checkCategorization(tx, rules, &result)
	e.checkCurrency(tx, rules, &result)

	if !result.IsCompliant() && tx.Email != "" && e.notifier != nil {
		summary := summarize(result.Violations)
		link := fmt.Sprintf("%s/%s", e.linkBase, tx.ID)
		if err := e.notifier.PolicyViolation(tx.Email, tx.ID, summary, link); err != nil {
			e.logger.WithError(err).Warn("policy violation notification failed",
				logging.Field{Key: "transaction", Value: tx.ID})
		}
	}

	e.logger.Debug("compliance checked",
		logging.Field{Key: "transaction", Value: tx.ID},
		logging.Field{Key: "violations", Value: len(result.Violations)},
	)
	return result
}

func (e *Engine) checkMeals(tx *models.Transaction, rules models.PolicyRules, result *models.PolicyComplianceResult) {
	if tx.CategoryID != models.CategoryMeals {
		return
	}

	threshold := rules.HighValueMealThreshold
	if tx.AmountUSD.GreaterThanOrEqual(threshold) {
		doubled := threshold.Mul(two)
		severity := models.SeverityMedium
		requiresApproval := false
		if tx.AmountUSD.GreaterThanOrEqual(doubled) {
			severity = models.SeverityHigh
			requiresApproval = true
		}
		result.Violations = append(result.Violations, models.PolicyViolation{
			Type:             models.ViolationHighValueMeal,
			Description:      fmt.Sprintf("Meal of %s exceeds the %s USD threshold", tx.AmountUSD.StringFixed(2), threshold.StringFixed(2)),
			Rule:             "HighValueMealThreshold",
			ThresholdValue:   &threshold,
			ActualValue:      &tx.AmountUSD,
			Severity:         severity,
			RequiresApproval: requiresApproval,
		})
	}

	if rules.MealsRequireParticipants && e.participantsMissing(tx) {
		result.Violations = append(result.Violations, models.PolicyViolation{
			Type:        models.ViolationMissingParticipants,
			Description: "Meal requires validated participants",
			Rule:        "MealsRequireParticipants",
			Severity:    models.SeverityMedium,
		})
	}
}

func (e *Engine) checkLodging(tx *models.Transaction, rules models.PolicyRules, result *models.PolicyComplianceResult) {
	if tx.CategoryID != models.CategoryLodging {
		return
	}

	threshold := rules.LowValueLodgingThreshold
	if tx.AmountUSD.GreaterThan(decimal.Zero) && tx.AmountUSD.LessThanOrEqual(threshold) {
		result.Violations = append(result.Violations, models.PolicyViolation{
			Type:           models.ViolationLowValueLodging,
			Description:    fmt.Sprintf("Lodging of %s is unusually low; possible miscategorization", tx.AmountUSD.StringFixed(2)),
			Rule:           "LowValueLodgingThreshold",
			ThresholdValue: &threshold,
			ActualValue:    &tx.AmountUSD,
			Severity:       models.SeverityLow,
		})
	}

	if rules.LodgingRequiresReceipt && tx.DocumentURL == "" {
		result.Violations = append(result.Violations, models.PolicyViolation{
			Type:        models.ViolationMissingDocumentation,
			Description: "Lodging requires a receipt",
			Rule:        "LodgingRequiresReceipt",
			Severity:    models.SeverityHigh,
		})
	}
}

func (e *Engine) checkAirfare(tx *models.Transaction, rules models.PolicyRules, result *models.PolicyComplianceResult) {
	if tx.CategoryID != models.CategoryAirfare || tx.CabinClass == "" {
		return
	}

	if rules.PremiumCabinRequiresApproval && IsPremiumCabin(tx.CabinClass, rules.ApprovedPremiumCabinClasses) {
		result.Violations = append(result.Violations, models.PolicyViolation{
			Type:             models.ViolationPremiumCabinClass,
			Description:      fmt.Sprintf("Premium cabin class '%s' requires approval", tx.CabinClass),
			Rule:             "PremiumCabinRequiresApproval",
			Severity:         models.SeverityHigh,
			RequiresApproval: true,
		})
	}
}

func (e *Engine) checkClientEntertainment(tx *models.Transaction, rules models.PolicyRules, result *models.PolicyComplianceResult) {
	if tx.CategoryID != models.CategoryClientEntertainment {
		return
	}

	if rules.ClientEntertainmentRequiresParticipants && e.participantsMissing(tx) {
		result.Violations = append(result.Violations, models.PolicyViolation{
			Type:        models.ViolationMissingParticipants,
			Description: "Client entertainment requires validated participants",
			Rule:        "ClientEntertainmentRequiresParticipants",
			Severity:    models.SeverityHigh,
		})
	}

	threshold := rules.ClientEntertainmentThreshold.Mul(three)
	if tx.AmountUSD.GreaterThanOrEqual(threshold) {
		result.Violations = append(result.Violations, models.PolicyViolation{
			Type:             models.ViolationExcessiveSpending,
			Description:      fmt.Sprintf("Client entertainment of %s exceeds three times the %s USD threshold", tx.AmountUSD.StringFixed(2), rules.ClientEntertainmentThreshold.StringFixed(2)),
			Rule:             "ClientEntertainmentThreshold",
			ThresholdValue:   &threshold,
			ActualValue:      &tx.AmountUSD,
			Severity:         models.SeverityMedium,
			RequiresApproval: true,
		})
	}
}

func (e *Engine) checkDocumentation(tx *models.Transaction, rules models.PolicyRules, result *models.PolicyComplianceResult) {
	threshold := rules.DocumentationRequiredThreshold
	if tx.AmountUSD.Abs().LessThan(threshold) || tx.DocumentURL != "" {
		return
	}

	severity := models.SeverityMedium
	if tx.AgeDays(e.now()) > rules.DocumentationGracePeriodDays {
		severity = models.SeverityHigh
	}
	result.Violations = append(result.Violations, models.PolicyViolation{
		Type:           models.ViolationMissingDocumentation,
		Description:    fmt.Sprintf("Transaction of %s requires documentation", tx.AmountUSD.StringFixed(2)),
		Rule:           "DocumentationRequiredThreshold",
		ThresholdValue: &threshold,
		ActualValue:    &tx.AmountUSD,
		Severity:       severity,
	})
}

func (e *Engine) checkCategorization(tx *models.Transaction, rules models.PolicyRules, result *models.PolicyComplianceResult) {
	if !rules.UncategorizedRequiresReview || !tx.CategoryID.IsUncategorized() {
		return
	}
	result.Violations = append(result.Violations, models.PolicyViolation{
		Type:        models.ViolationUncategorizedTransaction,
		Description: "Transaction is uncategorized and requires review",
		Rule:        "UncategorizedRequiresReview",
		Severity:    models.SeverityMedium,
	})
}

func (e *Engine) checkCurrency(tx *models.Transaction, rules models.PolicyRules, result *models.PolicyComplianceResult) {
	if tx.Currency == "" {
		return
	}
	for _, approved := range rules.ApprovedCurrencies {
		if strings.EqualFold(approved, tx.Currency) {
			return
		}
	}
	result.Violations = append(result.Violations, models.PolicyViolation{
		Type:        models.ViolationInvalidCurrency,
		Description: fmt.Sprintf("Currency '%s' is not in the approved set", tx.Currency),
		Rule:        "ApprovedCurrencies",
		Severity:    models.SeverityLow,
	})
}

func (e *Engine) participantsMissing(tx *models.Transaction) bool {
	return len(tx.ParticipantList()) == 0 || !tx.ParticipantsValidated
}

// IsPremiumCabin reports whether the cabin class name matches one of the
// configured premium classes, case-insensitively.
func IsPremiumCabin(cabinClass string, premiumClasses []string) bool {
	for _, premium := range premiumClasses {
		if strings.EqualFold(premium, strings.TrimSpace(cabinClass)) {
			return true
		}
	}
	return false
}

// FlagTransaction marks a transaction for manual review, appending a note to
// its validation state. Unlike the bulk flows, a missing id is an error.
func (e *Engine) FlagTransaction(transactionID, note, actor string) error {
	tx, ok := e.store.Transaction(transactionID)
	if !ok {
		return fmt.Errorf("transaction %s not found", transactionID)
	}

	before := audit.Snapshot(tx)
	tx.IsValid = false
	tx.DataValidation = appendNote(tx.DataValidation, note)
	tx.Stamp(actor, e.now())
	if err := e.store.SaveTransactions(tx); err != nil {
		return fmt.Errorf("saving flagged transaction: %w", err)
	}

	entry := audit.NewEntry(actor, audit.ActionFlag, "Transaction", tx.ID)
	entry.OldValue = before
	entry.NewValue = audit.Snapshot(tx)
	entry.Comment = note
	e.sink.Log(entry)
	return nil
}

// ApproveException clears the review state on a flagged transaction,
// recording who approved it and why.
func (e *Engine) ApproveException(transactionID, note, actor string) error {
	tx, ok := e.store.Transaction(transactionID)
	if !ok {
		return fmt.Errorf("transaction %s not found", transactionID)
	}

	before := audit.Snapshot(tx)
	tx.IsValid = true
	tx.DataValidation = appendNote(tx.DataValidation, note)
	tx.Stamp(actor, e.now())
	if err := e.store.SaveTransactions(tx); err != nil {
		return fmt.Errorf("saving approved transaction: %w", err)
	}

	entry := audit.NewEntry(actor, audit.ActionApproveException, "Transaction", tx.ID)
	entry.OldValue = before
	entry.NewValue = audit.Snapshot(tx)
	entry.Comment = note
	e.sink.Log(entry)
	return nil
}

func summarize(violations []models.PolicyViolation) string {
	descriptions := make([]string, 0, len(violations))
	for _, v := range violations {
		descriptions = append(descriptions, v.Description)
	}
	return strings.Join(descriptions, "; ")
}

func appendNote(existing, note string) string {
	if note == "" {
		return existing
	}
	if existing == "" {
		return note
	}
	return existing + " | " + note
}
