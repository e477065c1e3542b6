package policy

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tripclerk/expense-engine/internal/logging"
)

func writeRules(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "policy.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestRulesMissingFileUsesDefaults(t *testing.T) {
	provider := NewRulesProvider(filepath.Join(t.TempDir(), "absent.yaml"), time.Hour, logging.NewMockLogger())

	rules := provider.Rules()
	assert.True(t, rules.HighValueMealThreshold.Equal(usd("80")))
	assert.Equal(t, []string{"Business", "First", "Premium Economy"}, rules.ApprovedPremiumCabinClasses)
	assert.True(t, rules.LodgingRequiresReceipt)
}

func TestRulesLoadFromFile(t *testing.T) {
	path := writeRules(t, `
high_value_meal_threshold: 120
low_value_lodging_threshold: 60
client_entertainment_threshold: 200
documentation_required_threshold: 50
documentation_grace_period_days: 7
approved_currencies: ["USD", "SEK"]
lodging_requires_receipt: false
`)
	provider := NewRulesProvider(path, time.Hour, logging.NewMockLogger())

	rules := provider.Rules()
	assert.True(t, rules.HighValueMealThreshold.Equal(usd("120")))
	assert.True(t, rules.LowValueLodgingThreshold.Equal(usd("60")))
	assert.Equal(t, 7, rules.DocumentationGracePeriodDays)
	assert.Equal(t, []string{"USD", "SEK"}, rules.ApprovedCurrencies)
	assert.False(t, rules.LodgingRequiresReceipt)
}

func TestRulesPartialFileFallsBackToDefaults(t *testing.T) {
	path := writeRules(t, "high_value_meal_threshold: 90\n")
	provider := NewRulesProvider(path, time.Hour, logging.NewMockLogger())

	rules := provider.Rules()
	assert.True(t, rules.HighValueMealThreshold.Equal(usd("90")))
	// Unset thresholds keep their defaults instead of collapsing to zero.
	assert.True(t, rules.LowValueLodgingThreshold.Equal(usd("100")))
	assert.Equal(t, 14, rules.DocumentationGracePeriodDays)
	assert.NotEmpty(t, rules.ApprovedCurrencies)
}

func TestRulesCacheRespectsTTL(t *testing.T) {
	path := writeRules(t, "high_value_meal_threshold: 90\n")
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	provider := NewRulesProvider(path, 30*time.Minute, logging.NewMockLogger())
	provider.WithClock(func() time.Time { return now })

	assert.True(t, provider.Rules().HighValueMealThreshold.Equal(usd("90")))

	// Rewrite the file; within the TTL the cached snapshot is served.
	require.NoError(t, os.WriteFile(path, []byte("high_value_meal_threshold: 200\n"), 0644))
	now = now.Add(10 * time.Minute)
	assert.True(t, provider.Rules().HighValueMealThreshold.Equal(usd("90")))

	// Past the TTL the file is re-read.
	now = now.Add(25 * time.Minute)
	assert.True(t, provider.Rules().HighValueMealThreshold.Equal(usd("200")))
}

func TestRulesInvalidateForcesReload(t *testing.T) {
	path := writeRules(t, "high_value_meal_threshold: 90\n")
	provider := NewRulesProvider(path, time.Hour, logging.NewMockLogger())

	assert.True(t, provider.Rules().HighValueMealThreshold.Equal(usd("90")))

	require.NoError(t, os.WriteFile(path, []byte("high_value_meal_threshold: 200\n"), 0644))
	provider.Invalidate()
	assert.True(t, provider.Rules().HighValueMealThreshold.Equal(usd("200")))
}

func TestRulesUpdatePersistsAndRefreshesCache(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "policy.yaml")
	provider := NewRulesProvider(path, time.Hour, logging.NewMockLogger())

	rules := DefaultRules()
	rules.HighValueMealThreshold = usd("95")
	rules.ApprovedCurrencies = []string{"USD", "NOK"}
	require.NoError(t, provider.Update(rules))

	// The cached snapshot reflects the update immediately.
	assert.True(t, provider.Rules().HighValueMealThreshold.Equal(usd("95")))

	// A fresh provider reads the same values back from disk.
	fresh := NewRulesProvider(path, time.Hour, logging.NewMockLogger())
	reloaded := fresh.Rules()
	assert.True(t, reloaded.HighValueMealThreshold.Equal(usd("95")))
	assert.Equal(t, []string{"USD", "NOK"}, reloaded.ApprovedCurrencies)
}

func TestRulesMalformedFileFallsBackToDefaults(t *testing.T) {
	path := writeRules(t, "high_value_meal_threshold: [not a number\n")
	provider := NewRulesProvider(path, time.Hour, logging.NewMockLogger())

	rules := provider.Rules()
	assert.True(t, rules.HighValueMealThreshold.Equal(usd("80")))
}
