// Package validation provides field-level rule evaluation for domain
// records. Every rule carries a stable code so downstream consumers can
// filter findings without parsing messages. Errors block persistence;
// warnings are informational only.
package validation

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"tripclerk/expense-engine/internal/currencyutils"
	"tripclerk/expense-engine/internal/logging"
	"tripclerk/expense-engine/internal/models"
)

// Rule codes for transaction validation.
const (
	RuleTxnIDRequired       = "TXN_ID_REQUIRED"
	RuleTxnEmailRequired    = "TXN_EMAIL_REQUIRED"
	RuleTxnEmailFormat      = "TXN_EMAIL_FORMAT"
	RuleTxnDateRequired     = "TXN_DATE_REQUIRED"
	RuleTxnDateFuture       = "TXN_DATE_FUTURE"
	RuleTxnDateTooOld       = "TXN_DATE_TOO_OLD"
	RuleTxnCurrencyRequired = "TXN_CURRENCY_REQUIRED"
	RuleTxnAmountZero       = "TXN_AMOUNT_ZERO"
	RuleTxnUSDMismatch      = "TXN_USD_MISMATCH"
	RuleTxnDocumentURL      = "TXN_DOCUMENT_URL_FORMAT"
	RuleTxnParticipantEmail = "TXN_PARTICIPANT_EMAIL_FORMAT"
)

// Rule codes for trip validation.
const (
	RuleTripIDRequired    = "TRIP_ID_REQUIRED"
	RuleTripEmailRequired = "TRIP_EMAIL_REQUIRED"
	RuleTripEmailFormat   = "TRIP_EMAIL_FORMAT"
	RuleTripDateOrder     = "TRIP_DATE_ORDER"
	RuleTripCountryEmpty  = "TRIP_COUNTRY_EMPTY"
)

// earliestDate bounds how old a transaction or trip may be dated.
var earliestDate = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

// Validator evaluates field-level rules against domain records.
type Validator struct {
	validate *validator.Validate
	logger   logging.Logger
	now      func() time.Time
}

// New creates a Validator.
func New(logger logging.Logger) *Validator {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	return &Validator{
		validate: validator.New(),
		logger:   logger.WithField("component", "validation"),
		now:      time.Now,
	}
}

// WithClock overrides the validator's clock, for tests.
func (v *Validator) WithClock(now func() time.Time) *Validator {
	v.now = now
	return v
}

// ValidateTransaction evaluates every transaction rule and returns the
// aggregated result. Rules never short-circuit each other.
func (v *Validator) ValidateTransaction(tx *models.Transaction) models.ValidationResult {
	result := models.ValidationResult{
		EntityID:   tx.ID,
		EntityType: "Transaction",
		IsValid:    true,
	}

	if tx.ID == "" {
		result.AddError(RuleTxnIDRequired, "ID", "transaction id is required")
	}

	if tx.Email == "" {
		result.AddError(RuleTxnEmailRequired, "Email", "owner email is required")
	} else if v.validate.Var(tx.Email, "email") != nil {
		result.AddError(RuleTxnEmailFormat, "Email", fmt.Sprintf("'%s' is not a valid email address", tx.Email))
	}

	switch {
	case tx.Date.IsZero():
		result.AddError(RuleTxnDateRequired, "Date", "transaction date is required")
	case tx.Date.After(v.now()):
		result.AddError(RuleTxnDateFuture, "Date", "transaction date is in the future")
	case tx.Date.Before(earliestDate):
		result.AddError(RuleTxnDateTooOld, "Date", "transaction date is before 2000-01-01")
	}

	if tx.Currency == "" {
		result.AddError(RuleTxnCurrencyRequired, "Currency", "currency code is required")
	}

	if tx.Amount.IsZero() && tx.AmountUSD.IsZero() {
		result.AddWarning(RuleTxnAmountZero, "Amount", "amount is zero")
	}

	// Amount x ExchangeRate must agree with AmountUSD within one cent.
	if !tx.ExchangeRate.IsZero() {
		expected := currencyutils.ToUSD(tx.Amount, tx.ExchangeRate)
		if !currencyutils.WithinCentTolerance(expected, tx.AmountUSD) {
			result.AddError(RuleTxnUSDMismatch, "AmountUSD",
				fmt.Sprintf("amount %s x rate %s = %s, but AmountUSD is %s",
					tx.Amount, tx.ExchangeRate, expected, tx.AmountUSD))
		}
	}

	if tx.DocumentURL != "" && v.validate.Var(tx.DocumentURL, "url") != nil {
		result.AddWarning(RuleTxnDocumentURL, "DocumentURL",
			fmt.Sprintf("'%s' is not a valid URL", tx.DocumentURL))
	}

	for _, participant := range tx.ParticipantList() {
		if v.validate.Var(participant, "email") != nil {
			result.AddWarning(RuleTxnParticipantEmail, "Participants",
				fmt.Sprintf("participant '%s' is not a valid email address", participant))
		}
	}

	v.logger.Debug("transaction validated",
		logging.Field{Key: "transaction", Value: tx.ID},
		logging.Field{Key: "errors", Value: len(result.Errors)},
		logging.Field{Key: "warnings", Value: len(result.Warnings)},
	)
	return result
}

// ValidateTrip evaluates every trip rule and returns the aggregated result.
func (v *Validator) ValidateTrip(trip *models.Trip) models.ValidationResult {
	result := models.ValidationResult{
		EntityID:   fmt.Sprintf("%d", trip.ID),
		EntityType: "Trip",
		IsValid:    true,
	}

	if trip.ID == 0 {
		result.AddError(RuleTripIDRequired, "ID", "trip id is required")
	}

	if trip.Email == "" {
		result.AddError(RuleTripEmailRequired, "Email", "owner email is required")
	} else if v.validate.Var(trip.Email, "email") != nil {
		result.AddError(RuleTripEmailFormat, "Email", fmt.Sprintf("'%s' is not a valid email address", trip.Email))
	}

	if !trip.StartDate.IsZero() && !trip.EndDate.IsZero() && trip.EndDate.Before(trip.StartDate) {
		result.AddError(RuleTripDateOrder, "EndDate", "end date precedes start date")
	}

	if trip.Country1 == "" {
		result.AddWarning(RuleTripCountryEmpty, "Country1", "destination country is empty; tax rules cannot be resolved")
	}

	return result
}
