package models

import "github.com/shopspring/decimal"

// ViolationType identifies the policy rule a transaction breached.
type ViolationType string

const (
	ViolationHighValueMeal            ViolationType = "HighValueMeal"
	ViolationMissingParticipants      ViolationType = "MissingParticipants"
	ViolationLowValueLodging          ViolationType = "LowValueLodging"
	ViolationMissingDocumentation     ViolationType = "MissingDocumentation"
	ViolationPremiumCabinClass        ViolationType = "PremiumCabinClass"
	ViolationExcessiveSpending        ViolationType = "ExcessiveSpending"
	ViolationUncategorizedTransaction ViolationType = "UncategorizedTransaction"
	ViolationInvalidCurrency          ViolationType = "InvalidCurrency"
)

// Severity grades how serious a policy violation is.
type Severity string

const (
	SeverityLow    Severity = "Low"
	SeverityMedium Severity = "Medium"
	SeverityHigh   Severity = "High"
)

// PolicyRules is a configuration snapshot of every tunable compliance
// threshold. It is loaded once, cached with a time-based expiry and replaced
// wholesale on update.
type PolicyRules struct {
	HighValueMealThreshold                  decimal.Decimal
	LowValueLodgingThreshold                decimal.Decimal
	ClientEntertainmentThreshold            decimal.Decimal
	DocumentationRequiredThreshold          decimal.Decimal
	DocumentationGracePeriodDays            int
	ApprovedPremiumCabinClasses             []string
	ApprovedCurrencies                      []string
	MealsRequireParticipants                bool
	ClientEntertainmentRequiresParticipants bool
	LodgingRequiresReceipt                  bool
	PremiumCabinRequiresApproval            bool
	UncategorizedRequiresReview             bool
}

// PolicyViolation is one structured finding against a transaction.
type PolicyViolation struct {
	Type             ViolationType
	Description      string
	Rule             string
	ThresholdValue   *decimal.Decimal
	ActualValue      *decimal.Decimal
	Severity         Severity
	RequiresApproval bool
}

// PolicyComplianceResult aggregates the violations found for one transaction.
type PolicyComplianceResult struct {
	TransactionID string
	Violations    []PolicyViolation
}

// IsCompliant reports whether no violations were found.
func (r *PolicyComplianceResult) IsCompliant() bool {
	return len(r.Violations) == 0
}
