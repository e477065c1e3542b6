// Package tax computes a trip's tax exposure: the portion of category-level
// spend exceeding the jurisdiction's per-day and per-night reimbursement
// caps.
package tax

import (
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"tripclerk/expense-engine/internal/logging"
	"tripclerk/expense-engine/internal/models"
	"tripclerk/expense-engine/internal/policy"
)

// surchargeRate is the informational premium-airfare surcharge (10% of
// premium airfare spend). It is reported separately and never folded into
// TotalTaxExposure.
var surchargeRate = decimal.NewFromFloat(0.10)

type ruleKey struct {
	year    int
	country string
}

// Calculator resolves tax rules by (fiscal year, country) and computes
// per-trip exposure.
type Calculator struct {
	rules          map[ruleKey]models.TaxRule
	premiumClasses []string
	logger         logging.Logger
}

// NewCalculator creates a Calculator over the given rule set.
// premiumClasses configures premium-cabin airfare detection.
func NewCalculator(rules []models.TaxRule, premiumClasses []string, logger logging.Logger) *Calculator {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	index := make(map[ruleKey]models.TaxRule, len(rules))
	for _, rule := range rules {
		index[ruleKey{year: rule.FiscalYear, country: strings.ToLower(strings.TrimSpace(rule.Country))}] = rule
	}
	return &Calculator{
		rules:          index,
		premiumClasses: premiumClasses,
		logger:         logger.WithField("component", "tax"),
	}
}

// Calculate computes the exposure breakdown for one trip over its linked
// transactions. A missing tax rule yields a zero-exposure result with an
// explanatory note, not an error.
func (c *Calculator) Calculate(trip *models.Trip, transactions []*models.Transaction) models.TaxExposureResult {
	result := models.TaxExposureResult{
		TripID:           trip.ID,
		MealsExposure:    decimal.Zero,
		LodgingExposure:  decimal.Zero,
		TotalTaxExposure: decimal.Zero,
	}

	c.flagPremiumAirfare(transactions, &result)

	rule, ok := c.rules[ruleKey{year: trip.StartDate.Year(), country: strings.ToLower(strings.TrimSpace(trip.Country1))}]
	if !ok {
		result.Note = fmt.Sprintf("no tax rule for fiscal year %d and country '%s'", trip.StartDate.Year(), trip.Country1)
		c.logger.Debug("tax rule missing",
			logging.Field{Key: "trip", Value: trip.ID},
			logging.Field{Key: "year", Value: trip.StartDate.Year()},
			logging.Field{Key: "country", Value: trip.Country1},
		)
		return result
	}

	duration := decimal.NewFromInt(int64(trip.Duration()))
	nights := decimal.NewFromInt(int64(trip.Nights()))

	mealsTotal := sumByCategory(transactions, models.CategoryMeals)
	mealsPerDay := mealsTotal.Div(duration)
	if overage := mealsPerDay.Sub(rule.MealsCap); overage.GreaterThan(decimal.Zero) {
		result.MealsExposure = overage.Mul(duration).Round(2)
	}

	lodgingTotal := sumByCategory(transactions, models.CategoryLodging)
	lodgingPerNight := lodgingTotal.Div(nights)
	if overage := lodgingPerNight.Sub(rule.LodgingCap); overage.GreaterThan(decimal.Zero) {
		result.LodgingExposure = overage.Mul(nights).Round(2)
	}

	result.TotalTaxExposure = result.MealsExposure.Add(result.LodgingExposure)

	c.logger.Debug("tax exposure calculated",
		logging.Field{Key: "trip", Value: trip.ID},
		logging.Field{Key: "meals", Value: result.MealsExposure.StringFixed(2)},
		logging.Field{Key: "lodging", Value: result.LodgingExposure.StringFixed(2)},
	)
	return result
}

// flagPremiumAirfare records premium-cabin airfare as an informational
// signal and computes the separate 10% surcharge over that spend.
func (c *Calculator) flagPremiumAirfare(transactions []*models.Transaction, result *models.TaxExposureResult) {
	premiumSpend := decimal.Zero
	seen := map[string]bool{}
	for _, tx := range transactions {
		if tx.CategoryID != models.CategoryAirfare {
			continue
		}
		if !policy.IsPremiumCabin(tx.CabinClass, c.premiumClasses) {
			continue
		}
		result.HasPremiumAirfare = true
		premiumSpend = premiumSpend.Add(tx.AmountUSD)
		if !seen[tx.CabinClass] {
			seen[tx.CabinClass] = true
			result.PremiumCabinClasses = append(result.PremiumCabinClasses, tx.CabinClass)
		}
	}
	result.PremiumAirfareSurcharge = premiumSpend.Mul(surchargeRate).Round(2)
}

func sumByCategory(transactions []*models.Transaction, category models.Category) decimal.Decimal {
	total := decimal.Zero
	for _, tx := range transactions {
		if tx.CategoryID == category {
			total = total.Add(tx.AmountUSD)
		}
	}
	return total
}

// rulesFile is the YAML shape of the tax rules file.
type rulesFile struct {
	Rules []struct {
		FiscalYear int     `yaml:"fiscal_year"`
		Country    string  `yaml:"country"`
		MealsCap   float64 `yaml:"meals_cap"`
		LodgingCap float64 `yaml:"lodging_cap"`
	} `yaml:"rules"`
}

// LoadRules reads tax rules from a YAML file. A missing file yields an
// empty rule set, which makes every trip calculate to zero exposure with a
// note.
func LoadRules(path string, logger logging.Logger) ([]models.TaxRule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			if logger != nil {
				logger.Warn("tax rules file not found", logging.Field{Key: "file", Value: path})
			}
			return nil, nil
		}
		return nil, fmt.Errorf("error reading tax rules file: %w", err)
	}

	var file rulesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("error parsing tax rules: %w", err)
	}

	rules := make([]models.TaxRule, 0, len(file.Rules))
	for _, r := range file.Rules {
		rules = append(rules, models.TaxRule{
			FiscalYear: r.FiscalYear,
			Country:    r.Country,
			MealsCap:   decimal.NewFromFloat(r.MealsCap),
			LodgingCap: decimal.NewFromFloat(r.LodgingCap),
		})
	}
	return rules, nil
}
