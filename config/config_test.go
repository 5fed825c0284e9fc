package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, "engine:\n  tax_enabled: true\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 100.0, cfg.Engine.MinBet)
	assert.Equal(t, 1_000_000.0, cfg.Engine.MaxBet)
	assert.Equal(t, 5*time.Minute, cfg.PublicTTL())
	assert.Equal(t, time.Minute, cfg.PrivateTTL())
	assert.Equal(t, time.Second, cfg.SweepInterval())
	assert.Equal(t, "memory", cfg.Ledger.Mode)
	assert.Equal(t, "coinflip.db", cfg.Stats.DSN)
	assert.Equal(t, "coinflip.events", cfg.Kafka.Topic)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_ExplicitValues(t *testing.T) {
	path := writeConfig(t, `
engine:
  min_bet: 50
  max_bet: 5000
  expire_seconds: 120
ledger:
  mode: wallet
  wallet_base_url: http://wallet:8080
log:
  level: debug
  format: json
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 50.0, cfg.Engine.MinBet)
	assert.Equal(t, 2*time.Minute, cfg.PublicTTL())
	assert.Equal(t, "wallet", cfg.Ledger.Mode)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_Validation(t *testing.T) {
	_, err := Load(writeConfig(t, "engine:\n  min_bet: 500\n  max_bet: 100\n"))
	assert.ErrorContains(t, err, "min_bet")

	_, err = Load(writeConfig(t, "ledger:\n  mode: postgres\n"))
	assert.ErrorContains(t, err, "ledger mode")

	_, err = Load(writeConfig(t, "ledger:\n  mode: wallet\n"))
	assert.ErrorContains(t, err, "wallet_base_url")
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("STATS_DSN", ":memory:")
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := Load(writeConfig(t, "log:\n  level: info\n"))
	require.NoError(t, err)
	assert.Equal(t, ":memory:", cfg.Stats.DSN)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestTaxRecipientID(t *testing.T) {
	cfg := &Config{}
	assert.Equal(t, uuid.Nil, cfg.TaxRecipientID())

	cfg.Engine.TaxRecipient = "house"
	assert.Equal(t, uuid.Nil, cfg.TaxRecipientID())

	id := uuid.New()
	cfg.Engine.TaxRecipient = id.String()
	assert.Equal(t, id, cfg.TaxRecipientID())

	cfg.Engine.TaxRecipient = "not-a-uuid"
	assert.Equal(t, uuid.Nil, cfg.TaxRecipientID())
}
