// Package config loads the dpa configuration from a YAML file, a .env file and
// DPA_* environment variables, in increasing order of precedence.
package config

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/Rhymond/go-money"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the configuration file read when none is given.
const DefaultPath = "dpa.yaml"

// Config holds all application configuration.
type Config struct {
	// Book is the file holding portfolios and plans (.yaml or .json).
	Book string `yaml:"book"`
	// Deposits is the JSONL deposit journal.
	Deposits string `yaml:"deposits"`
	// Database is the SQLite database keeping the allocation history.
	Database string `yaml:"database"`
	// Currency is used to format amounts, it overrides the book currency.
	Currency string `yaml:"currency"`
	LogLevel string `yaml:"log_level"`
	Server   struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	Forecast struct {
		Months int `yaml:"months"`
	} `yaml:"forecast"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
// A missing file is not an error, defaults apply.
func Load(path string) (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("DPA_BOOK"); v != "" {
		cfg.Book = v
	}
	if v := os.Getenv("DPA_DEPOSITS"); v != "" {
		cfg.Deposits = v
	}
	if v := os.Getenv("DPA_DB"); v != "" {
		cfg.Database = v
	}
	if v := os.Getenv("DPA_CURRENCY"); v != "" {
		cfg.Currency = v
	}
	if v := os.Getenv("DPA_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("DPA_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("DPA_FORECAST_MONTHS"); v != "" {
		months, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("DPA_FORECAST_MONTHS: %w", err)
		}
		cfg.Forecast.Months = months
	}

	// Defaults
	if cfg.Book == "" {
		cfg.Book = "book.yaml"
	}
	if cfg.Deposits == "" {
		cfg.Deposits = "deposits.jsonl"
	}
	if cfg.Database == "" {
		cfg.Database = "data/dpa.db"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Forecast.Months == 0 {
		cfg.Forecast.Months = 3
	}

	return cfg, nil
}

// Validate checks that all fields hold usable values.
func (c *Config) Validate() error {
	if c.Book == "" {
		return fmt.Errorf("book is required")
	}
	if c.Deposits == "" {
		return fmt.Errorf("deposits is required")
	}
	if c.Currency != "" && money.GetCurrency(c.Currency) == nil {
		return fmt.Errorf("currency %q is not a known currency code", c.Currency)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	if c.Forecast.Months <= 0 {
		return fmt.Errorf("forecast.months must be positive")
	}
	return nil
}

// Logger returns a logger writing to w at the configured level.
func (c *Config) Logger(w io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w, NoColor: true}).Level(level).With().Timestamp().Logger()
}
