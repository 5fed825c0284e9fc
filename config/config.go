package config

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the full daemon configuration.
type Config struct {
	Engine  EngineConfig  `yaml:"engine"`
	Ledger  LedgerConfig  `yaml:"ledger"`
	Stats   StatsConfig   `yaml:"stats"`
	Kafka   KafkaConfig   `yaml:"kafka"`
	Metrics MetricsConfig `yaml:"metrics"`
	Log     LogConfig     `yaml:"log"`
}

// EngineConfig drives the wager lifecycle policy.
type EngineConfig struct {
	MinBet              float64 `yaml:"min_bet"`
	MaxBet              float64 `yaml:"max_bet"`
	MaxBalancePercent   float64 `yaml:"max_balance_percent"` // 0 disables the cap
	RequireWholeNumbers bool    `yaml:"require_whole_numbers"`

	TaxEnabled   bool    `yaml:"tax_enabled"`
	TaxPercent   float64 `yaml:"tax_percent"`
	TaxRecipient string  `yaml:"tax_recipient"` // participant uuid; empty = house

	OneActivePerParticipant bool `yaml:"one_active_per_participant"`

	ExpireSeconds        int `yaml:"expire_seconds"`
	PrivateExpireSeconds int `yaml:"private_expire_seconds"`
	SweepIntervalSeconds int `yaml:"sweep_interval_seconds"`
}

// LedgerConfig selects the balance provider.
type LedgerConfig struct {
	Mode          string `yaml:"mode"` // memory | wallet
	WalletBaseURL string `yaml:"wallet_base_url"`
}

// StatsConfig controls where results are persisted.
type StatsConfig struct {
	DSN string `yaml:"dsn"` // SQLite file path, or ":memory:"
}

// KafkaConfig controls the event publisher.
type KafkaConfig struct {
	Enabled bool   `yaml:"enabled"`
	Brokers string `yaml:"brokers"` // "a:9092,b:9092"
	Topic   string `yaml:"topic"`
}

// MetricsConfig controls the /metrics + /healthz server.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Port    string `yaml:"port"`
}

// LogConfig controls log format and level.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Load reads the YAML file and the .env file if present. Values from
// the environment override the YAML for the keys that map to one.
func Load(path string) (*Config, error) {
	// Load .env if present (silences the error when there is none)
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// PublicTTL is how long a public wager stays open.
func (c *Config) PublicTTL() time.Duration {
	return time.Duration(c.Engine.ExpireSeconds) * time.Second
}

// PrivateTTL is how long a private invitation stays open.
func (c *Config) PrivateTTL() time.Duration {
	return time.Duration(c.Engine.PrivateExpireSeconds) * time.Second
}

// SweepInterval is the expiry sweeper period.
func (c *Config) SweepInterval() time.Duration {
	return time.Duration(c.Engine.SweepIntervalSeconds) * time.Second
}

// TaxRecipientID parses the configured tax sink, uuid.Nil for house.
func (c *Config) TaxRecipientID() uuid.UUID {
	if c.Engine.TaxRecipient == "" || c.Engine.TaxRecipient == "house" {
		return uuid.Nil
	}
	id, err := uuid.Parse(c.Engine.TaxRecipient)
	if err != nil {
		return uuid.Nil
	}
	return id
}

func (c *Config) validate() error {
	if c.Engine.MinBet > c.Engine.MaxBet {
		return fmt.Errorf("config: min_bet %v above max_bet %v", c.Engine.MinBet, c.Engine.MaxBet)
	}
	switch c.Ledger.Mode {
	case "memory", "wallet":
	default:
		return fmt.Errorf("config: unknown ledger mode %q", c.Ledger.Mode)
	}
	if c.Ledger.Mode == "wallet" && c.Ledger.WalletBaseURL == "" {
		return fmt.Errorf("config: ledger mode wallet needs wallet_base_url")
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("WALLET_BASE_URL"); v != "" {
		cfg.Ledger.WalletBaseURL = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = v
	}
	if v := os.Getenv("STATS_DSN"); v != "" {
		cfg.Stats.DSN = v
	}
}

func setDefaults(cfg *Config) {
	if cfg.Engine.MinBet <= 0 {
		cfg.Engine.MinBet = 100
	}
	if cfg.Engine.MaxBet <= 0 {
		cfg.Engine.MaxBet = 1_000_000
	}
	if cfg.Engine.ExpireSeconds <= 0 {
		cfg.Engine.ExpireSeconds = 300
	}
	if cfg.Engine.PrivateExpireSeconds <= 0 {
		cfg.Engine.PrivateExpireSeconds = 60
	}
	if cfg.Engine.SweepIntervalSeconds <= 0 {
		cfg.Engine.SweepIntervalSeconds = 1
	}
	if cfg.Ledger.Mode == "" {
		cfg.Ledger.Mode = "memory"
	}
	if cfg.Stats.DSN == "" {
		cfg.Stats.DSN = "coinflip.db"
	}
	if cfg.Kafka.Topic == "" {
		cfg.Kafka.Topic = "coinflip.events"
	}
	if cfg.Kafka.Brokers == "" {
		cfg.Kafka.Brokers = "localhost:9092"
	}
	if cfg.Metrics.Port == "" {
		cfg.Metrics.Port = "9095"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}
