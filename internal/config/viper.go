// Package config provides Viper-based hierarchical configuration management
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/Bublikus/groshify-sub000/internal/aggregation"
	"github.com/Bublikus/groshify-sub000/internal/categorizer"
	"github.com/Bublikus/groshify-sub000/internal/currencyutils"
	"github.com/Bublikus/groshify-sub000/internal/dateutils"
	"github.com/Bublikus/groshify-sub000/internal/parser"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Config represents the complete application configuration
type Config struct {
	Log struct {
		Level  string `mapstructure:"level" yaml:"level"`
		Format string `mapstructure:"format" yaml:"format"`
	} `mapstructure:"log" yaml:"log"`

	Parsers struct {
		SheetIndex    int  `mapstructure:"sheet_index" yaml:"sheet_index"`
		HeaderRow     int  `mapstructure:"header_row" yaml:"header_row"`
		SkipEmptyRows bool `mapstructure:"skip_empty_rows" yaml:"skip_empty_rows"`
		TrimHeaders   bool `mapstructure:"trim_headers" yaml:"trim_headers"`
		CAMT          struct {
			Enabled bool `mapstructure:"enabled" yaml:"enabled"`
		} `mapstructure:"camt" yaml:"camt"`
	} `mapstructure:"parsers" yaml:"parsers"`

	Aggregation struct {
		DateColumn        int    `mapstructure:"date_column" yaml:"date_column"`
		DescriptionColumn int    `mapstructure:"description_column" yaml:"description_column"`
		AmountColumn      int    `mapstructure:"amount_column" yaml:"amount_column"`
		Locale            string `mapstructure:"locale" yaml:"locale"`
	} `mapstructure:"aggregation" yaml:"aggregation"`

	Categorization struct {
		BatchSize           int     `mapstructure:"batch_size" yaml:"batch_size"`
		ConfidenceThreshold float64 `mapstructure:"confidence_threshold" yaml:"confidence_threshold"`
		DefaultCategory     string  `mapstructure:"default_category" yaml:"default_category"`
		StrictTaxonomy      bool    `mapstructure:"strict_taxonomy" yaml:"strict_taxonomy"`
		TaxonomyFile        string  `mapstructure:"taxonomy_file" yaml:"taxonomy_file"`
	} `mapstructure:"categorization" yaml:"categorization"`

	AI struct {
		Model          string `mapstructure:"model" yaml:"model"`
		TimeoutSeconds int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
		APIKey         string `mapstructure:"api_key" yaml:"-"` // Never serialize API key
	} `mapstructure:"ai" yaml:"ai"`

	Format struct {
		CurrencySymbol string `mapstructure:"currency_symbol" yaml:"currency_symbol"`
		// CurrencyCode is an ISO 4217 code; when set, its symbol replaces
		// CurrencySymbol.
		CurrencyCode string `mapstructure:"currency_code" yaml:"currency_code"`
		Decimals     int    `mapstructure:"decimals" yaml:"decimals"`
	} `mapstructure:"format" yaml:"format"`

	Server struct {
		Address string `mapstructure:"address" yaml:"address"`
	} `mapstructure:"server" yaml:"server"`
}

// InitializeConfig initializes Viper configuration with hierarchical loading
func InitializeConfig() (*Config, error) {
	return InitializeConfigFromFile("")
}

// InitializeConfigFromFile behaves like InitializeConfig but reads the given
// file instead of searching the default locations when path is not empty.
// Unlike the searched locations, an explicit file must exist.
func InitializeConfigFromFile(path string) (*Config, error) {
	v := viper.New()

	// 1. Set defaults
	setDefaults(v)

	// 2. Config file locations
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("$HOME/.groshify")
		v.AddConfigPath(".groshify")
		v.AddConfigPath(".")
	}

	// 3. Environment variables
	v.SetEnvPrefix("GROSHIFY")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// 4. Read config file (optional unless explicit)
	if err := v.ReadInConfig(); err != nil {
		if path != "" {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Printf("Warning: error reading config file %s: %v\n", v.ConfigFileUsed(), err)
		}
	}

	// 5. The API key keeps its conventional unprefixed name
	if err := v.BindEnv("ai.api_key", "GEMINI_API_KEY"); err != nil {
		fmt.Printf("Warning: failed to bind GEMINI_API_KEY environment variable: %v\n", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 6. Validate configuration
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("parsers.sheet_index", 0)
	v.SetDefault("parsers.header_row", 0)
	v.SetDefault("parsers.skip_empty_rows", true)
	v.SetDefault("parsers.trim_headers", true)
	v.SetDefault("parsers.camt.enabled", false)

	v.SetDefault("aggregation.date_column", 0)
	v.SetDefault("aggregation.description_column", 1)
	v.SetDefault("aggregation.amount_column", 2)
	v.SetDefault("aggregation.locale", "en")

	v.SetDefault("categorization.batch_size", categorizer.DefaultBatchSize)
	v.SetDefault("categorization.confidence_threshold", categorizer.DefaultConfidenceThreshold)
	v.SetDefault("categorization.default_category", "other")
	v.SetDefault("categorization.strict_taxonomy", true)
	v.SetDefault("categorization.taxonomy_file", "")

	v.SetDefault("ai.model", categorizer.DefaultGeminiModel)
	v.SetDefault("ai.timeout_seconds", 30)

	v.SetDefault("format.currency_symbol", "$")
	v.SetDefault("format.currency_code", "")
	v.SetDefault("format.decimals", 2)

	v.SetDefault("server.address", ":8080")
}

// validateConfig validates the configuration values
func validateConfig(config *Config) error {
	if _, err := logrus.ParseLevel(config.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", config.Log.Level)
	}

	if config.Log.Format != "text" && config.Log.Format != "json" {
		return fmt.Errorf("invalid log format: %s (must be 'text' or 'json')", config.Log.Format)
	}

	if config.Parsers.SheetIndex < 0 || config.Parsers.HeaderRow < 0 {
		return fmt.Errorf("parsers.sheet_index and parsers.header_row must not be negative")
	}

	a := config.Aggregation
	if a.DateColumn < 0 || a.DescriptionColumn < 0 || a.AmountColumn < 0 {
		return fmt.Errorf("aggregation columns must not be negative, got: %d/%d/%d", a.DateColumn, a.DescriptionColumn, a.AmountColumn)
	}

	if !dateutils.SupportedLocale(a.Locale) {
		return fmt.Errorf("aggregation.locale %q is not supported", a.Locale)
	}

	if config.Categorization.ConfidenceThreshold < 0.0 || config.Categorization.ConfidenceThreshold > 1.0 {
		return fmt.Errorf("categorization.confidence_threshold must be between 0.0 and 1.0, got: %f", config.Categorization.ConfidenceThreshold)
	}

	if config.Categorization.BatchSize < 1 {
		return fmt.Errorf("categorization.batch_size must be positive, got: %d", config.Categorization.BatchSize)
	}

	if strings.TrimSpace(config.Categorization.DefaultCategory) == "" {
		return fmt.Errorf("categorization.default_category must not be empty")
	}

	if config.AI.TimeoutSeconds < 1 || config.AI.TimeoutSeconds > 300 {
		return fmt.Errorf("ai.timeout_seconds must be between 1 and 300, got: %d", config.AI.TimeoutSeconds)
	}

	if config.Format.Decimals < 0 {
		return fmt.Errorf("format.decimals must not be negative, got: %d", config.Format.Decimals)
	}

	return nil
}

// ParserOptions returns the parse options configured under parsers.
func (c *Config) ParserOptions() parser.Options {
	return parser.Options{
		SheetIndex:    c.Parsers.SheetIndex,
		HeaderRow:     c.Parsers.HeaderRow,
		SkipEmptyRows: c.Parsers.SkipEmptyRows,
		TrimHeaders:   c.Parsers.TrimHeaders,
	}
}

// Columns returns the semantic column layout.
func (c *Config) Columns() aggregation.Columns {
	return aggregation.Columns{
		Date:        c.Aggregation.DateColumn,
		Description: c.Aggregation.DescriptionColumn,
		Amount:      c.Aggregation.AmountColumn,
	}
}

// GatewayConfig returns the categorization gateway settings.
func (c *Config) GatewayConfig() categorizer.Config {
	return categorizer.Config{
		ConfidenceThreshold: c.Categorization.ConfidenceThreshold,
		Timeout:             time.Duration(c.AI.TimeoutSeconds) * time.Second,
		BatchSize:           c.Categorization.BatchSize,
		StrictTaxonomy:      c.Categorization.StrictTaxonomy,
	}
}

// FormatOptions returns currency formatting options for the configured locale.
func (c *Config) FormatOptions() currencyutils.FormatOptions {
	opts := currencyutils.DefaultFormatOptions()
	opts.Decimals = c.Format.Decimals
	opts.CurrencySymbol = c.Format.CurrencySymbol
	if c.Format.CurrencyCode != "" {
		opts.CurrencySymbol = currencyutils.SymbolForCode(c.Format.CurrencyCode)
	}
	opts.Locale = c.Aggregation.Locale
	return opts
}

// ConfigureLoggingFromConfig configures logging based on the Config struct
func ConfigureLoggingFromConfig(config *Config) *logrus.Logger {
	logger := logrus.New()

	logLevel, err := logrus.ParseLevel(strings.ToLower(config.Log.Level))
	if err != nil {
		logger.Warnf("Invalid log level '%s', using 'info'", config.Log.Level)
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	if strings.ToLower(config.Log.Format) == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	return logger
}
