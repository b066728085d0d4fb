// Package config loads server settings from the environment, optionally seeded
// from a .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	engine "github.com/vanshdiora21/Declare/engine"
)

// Config holds every server setting.
type Config struct {
	Addr           string        `env:"DECLARE_ADDR" envDefault:":5050"`
	AllowedOrigins []string      `env:"DECLARE_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
	LogLevel       string        `env:"DECLARE_LOG_LEVEL" envDefault:"info"`
	LogFormat      string        `env:"DECLARE_LOG_FORMAT" envDefault:"text"`
	RoundDelay     time.Duration `env:"DECLARE_ROUND_DELAY" envDefault:"5s"`

	// Optional backends. Empty disables them.
	RedisURL     string `env:"DECLARE_REDIS_URL"`
	HistorianKey string `env:"DECLARE_HISTORIAN_KEY" envDefault:"declare:actions"`
	DatabaseURL  string `env:"DECLARE_DATABASE_URL"`

	Rules RulesConfig
}

// RulesConfig overrides the house rules.
type RulesConfig struct {
	HandSize                int  `env:"DECLARE_HAND_SIZE" envDefault:"7"`
	MinDeclareTurns         int  `env:"DECLARE_MIN_DECLARE_TURNS" envDefault:"2"`
	DeclareThreshold        int  `env:"DECLARE_DECLARE_THRESHOLD" envDefault:"15"`
	DeclareInclusive        bool `env:"DECLARE_DECLARE_INCLUSIVE" envDefault:"false"`
	SameRankSameSuit        bool `env:"DECLARE_SAME_RANK_SAME_SUIT" envDefault:"false"`
	RejectDuplicateRunRanks bool `env:"DECLARE_REJECT_DUPLICATE_RUN_RANKS" envDefault:"false"`
	FirstPickRequired       bool `env:"DECLARE_FIRST_PICK_REQUIRED" envDefault:"false"`
}

// Load reads the given env files (".env" when none are named), then parses
// the environment. Missing files are skipped; variables already set win over
// file entries.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot run with.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return fmt.Errorf("DECLARE_ADDR is required")
	}
	if c.RoundDelay < 0 {
		return fmt.Errorf("DECLARE_ROUND_DELAY must not be negative")
	}
	if c.Rules.HandSize <= 0 {
		return fmt.Errorf("DECLARE_HAND_SIZE must be positive")
	}
	if c.Rules.MinDeclareTurns < 0 {
		return fmt.Errorf("DECLARE_MIN_DECLARE_TURNS must not be negative")
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("DECLARE_LOG_LEVEL: %w", err)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("DECLARE_LOG_FORMAT must be text or json, got %q", c.LogFormat)
	}
	return nil
}

// HouseRules applies the overrides to the default rules.
func (c Config) HouseRules() engine.HouseRules {
	r := engine.DefaultHouseRules()
	r.HandSize = c.Rules.HandSize
	r.MinDeclareTurns = c.Rules.MinDeclareTurns
	r.DeclareThreshold = c.Rules.DeclareThreshold
	r.DeclareInclusive = c.Rules.DeclareInclusive
	r.SameRankSameSuit = c.Rules.SameRankSameSuit
	r.RejectDuplicateRunRanks = c.Rules.RejectDuplicateRunRanks
	r.FirstPickRequired = c.Rules.FirstPickRequired
	return r
}

// NewLogger builds the process logger from the log settings.
func (c Config) NewLogger() (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}
	logger := logrus.New()
	logger.SetLevel(level)
	if c.LogFormat == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return logger, nil
}
