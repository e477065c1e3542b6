// Package config provides Viper-based hierarchical configuration management
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config represents the complete application configuration
type Config struct {
	Log struct {
		Level  string `mapstructure:"level" yaml:"level"`
		Format string `mapstructure:"format" yaml:"format"`
	} `mapstructure:"log" yaml:"log"`

	Matching struct {
		ToleranceDays int `mapstructure:"tolerance_days" yaml:"tolerance_days"`
		MinConfidence int `mapstructure:"min_confidence" yaml:"min_confidence"`
	} `mapstructure:"matching" yaml:"matching"`

	Split struct {
		MinAmountUSD         float64 `mapstructure:"min_amount_usd" yaml:"min_amount_usd"`
		MinConfidence        int     `mapstructure:"min_confidence" yaml:"min_confidence"`
		ExternalPlaceholder  string  `mapstructure:"external_placeholder" yaml:"external_placeholder"`
		ColleaguePlaceholder string  `mapstructure:"colleague_placeholder" yaml:"colleague_placeholder"`
	} `mapstructure:"split" yaml:"split"`

	Policy struct {
		RulesFile       string `mapstructure:"rules_file" yaml:"rules_file"`
		CacheTTLMinutes int    `mapstructure:"cache_ttl_minutes" yaml:"cache_ttl_minutes"`
	} `mapstructure:"policy" yaml:"policy"`

	Tax struct {
		RulesFile string `mapstructure:"rules_file" yaml:"rules_file"`
	} `mapstructure:"tax" yaml:"tax"`

	Notify struct {
		BaseURL string `mapstructure:"base_url" yaml:"base_url"`
	} `mapstructure:"notify" yaml:"notify"`

	Data struct {
		TransactionsFile string `mapstructure:"transactions_file" yaml:"transactions_file"`
		TripsFile        string `mapstructure:"trips_file" yaml:"trips_file"`
	} `mapstructure:"data" yaml:"data"`
}

// InitializeConfig initializes Viper configuration with hierarchical loading
func InitializeConfig() (*Config, error) {
	v := viper.New()

	// 1. Set defaults
	setDefaults(v)

	// 2. Config file locations
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("$HOME/.expense-engine")
	v.AddConfigPath(".expense-engine")
	v.AddConfigPath(".")

	// 3. Environment variables
	v.SetEnvPrefix("EXPENSE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// 4. Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// Log the error but don't fail - continue with defaults and env vars
			fmt.Printf("Warning: error reading config file %s: %v\n", v.ConfigFileUsed(), err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("matching.tolerance_days", 5)
	v.SetDefault("matching.min_confidence", 30)

	v.SetDefault("split.min_amount_usd", 50.0)
	v.SetDefault("split.min_confidence", 50)
	v.SetDefault("split.external_placeholder", "external.guest@client.example")
	v.SetDefault("split.colleague_placeholder", "colleague@company.example")

	v.SetDefault("policy.rules_file", "policy.yaml")
	v.SetDefault("policy.cache_ttl_minutes", 60)

	v.SetDefault("tax.rules_file", "taxrules.yaml")

	v.SetDefault("notify.base_url", "https://expenses.example.com/transactions")

	v.SetDefault("data.transactions_file", "transactions.csv")
	v.SetDefault("data.trips_file", "trips.csv")
}

// validateConfig performs basic sanity checks on the loaded configuration
func validateConfig(config *Config) error {
	switch strings.ToLower(config.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("unsupported log level: %s", config.Log.Level)
	}

	if config.Matching.ToleranceDays < 0 {
		return fmt.Errorf("matching.tolerance_days must not be negative")
	}
	if config.Matching.MinConfidence < 0 || config.Matching.MinConfidence > 100 {
		return fmt.Errorf("matching.min_confidence must be between 0 and 100")
	}
	if config.Split.MinConfidence < 0 || config.Split.MinConfidence > 100 {
		return fmt.Errorf("split.min_confidence must be between 0 and 100")
	}
	if config.Policy.CacheTTLMinutes <= 0 {
		return fmt.Errorf("policy.cache_ttl_minutes must be positive")
	}

	return nil
}
