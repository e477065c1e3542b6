package models

import "github.com/shopspring/decimal"

// TaxRule carries the per-day and per-night reimbursement ceilings for one
// fiscal year and country, in USD.
type TaxRule struct {
	FiscalYear int
	Country    string
	MealsCap   decimal.Decimal
	LodgingCap decimal.Decimal
}

// TaxExposureResult is the per-trip breakdown of spend exceeding the
// jurisdiction's reimbursement caps.
type TaxExposureResult struct {
	TripID           int
	MealsExposure    decimal.Decimal
	LodgingExposure  decimal.Decimal
	TotalTaxExposure decimal.Decimal

	// Premium airfare is reported as a separate informational signal.
	// The surcharge is never folded into TotalTaxExposure; aggregate
	// consumers decide whether to add it.
	HasPremiumAirfare       bool
	PremiumCabinClasses     []string
	PremiumAirfareSurcharge decimal.Decimal

	// Note explains a zero-exposure result when no tax rule was found.
	Note string
}
