package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "ETH/USD", cfg.Trading.Symbol)
	assert.Equal(t, "5m", cfg.Trading.Timeframe)
	assert.Equal(t, 100, cfg.Trading.CandleLimit)
	assert.Equal(t, 60*time.Second, cfg.CheckInterval())
	assert.Equal(t, 10000.0, cfg.Trading.StartingCashBalance)
	assert.Equal(t, 500.0, cfg.Trading.TradeAmount)
	assert.Equal(t, 7, cfg.Strategy.Period)
	assert.Equal(t, 3.0, cfg.Strategy.Multiplier)
	assert.Equal(t, "data/trade_history.json", cfg.Ledger.StateFile)
	assert.False(t, cfg.TelegramEnabled())
	require.NoError(t, cfg.Validate())
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	path := writeConfig(t, `
trading:
  symbol: "BTC/USD"
  timeframe: "1h"
  trade_amount: 250
strategy:
  period: 10
  multiplier: 2.5
`)
	t.Setenv("TRADE_AMOUNT", "125.5")
	t.Setenv("SUPERTREND_PERIOD", "14")
	t.Setenv("LEDGER_FILE", "/tmp/ledger.json")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "BTC/USD", cfg.Trading.Symbol)
	assert.Equal(t, "1h", cfg.Trading.Timeframe)
	assert.Equal(t, 125.5, cfg.Trading.TradeAmount)
	assert.Equal(t, 14, cfg.Strategy.Period)
	assert.Equal(t, 2.5, cfg.Strategy.Multiplier)
	assert.Equal(t, "/tmp/ledger.json", cfg.Ledger.StateFile)
}

func TestLoadBadEnv(t *testing.T) {
	t.Setenv("CHECK_INTERVAL_SECONDS", "soon")
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestLoadBadYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "trading: [unclosed"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative period", func(c *Config) { c.Strategy.Period = -1 }},
		{"negative multiplier", func(c *Config) { c.Strategy.Multiplier = -3 }},
		{"negative interval", func(c *Config) { c.Trading.CheckIntervalSeconds = -5 }},
		{"negative trade amount", func(c *Config) { c.Trading.TradeAmount = -1 }},
		{"negative starting cash", func(c *Config) { c.Trading.StartingCashBalance = -100 }},
		{"unknown timeframe", func(c *Config) { c.Trading.Timeframe = "2h" }},
		{"window too short", func(c *Config) { c.Trading.CandleLimit = c.Strategy.Period }},
		{"half telegram", func(c *Config) { c.Telegram.BotToken = "token" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
			require.NoError(t, err)
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
