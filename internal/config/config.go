package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"TrendSentinel/internal/collector"
)

// Config holds all application configuration.
type Config struct {
	Exchange struct {
		BaseURL           string  `yaml:"base_url"`
		TimeoutSeconds    int     `yaml:"timeout_seconds"`
		RequestsPerSecond float64 `yaml:"requests_per_second"`
		Burst             int     `yaml:"burst"`
	} `yaml:"exchange"`
	Trading struct {
		Symbol               string  `yaml:"symbol"`
		Timeframe            string  `yaml:"timeframe"`
		CandleLimit          int     `yaml:"candle_limit"`
		CheckIntervalSeconds int     `yaml:"check_interval_seconds"`
		StartingCashBalance  float64 `yaml:"starting_cash_balance"`
		TradeAmount          float64 `yaml:"trade_amount"`
	} `yaml:"trading"`
	Strategy struct {
		Period     int     `yaml:"period"`
		Multiplier float64 `yaml:"multiplier"`
	} `yaml:"strategy"`
	Ledger struct {
		StateFile string `yaml:"state_file"`
	} `yaml:"ledger"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Metrics struct {
		Addr string `yaml:"addr"`
	} `yaml:"metrics"`
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides
// and defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() error {
	strs := map[string]*string{
		"SYMBOL":             &c.Trading.Symbol,
		"TIMEFRAME":          &c.Trading.Timeframe,
		"LEDGER_FILE":        &c.Ledger.StateFile,
		"SQLITE_PATH":        &c.Database.SQLitePath,
		"TELEGRAM_BOT_TOKEN": &c.Telegram.BotToken,
		"TELEGRAM_CHAT_ID":   &c.Telegram.ChatID,
		"METRICS_ADDR":       &c.Metrics.Addr,
		"LOG_LEVEL":          &c.Log.Level,
		"HTTPS_PROXY":        &c.Proxy,
		"KRAKEN_BASE_URL":    &c.Exchange.BaseURL,
	}
	for key, dst := range strs {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	floats := map[string]*float64{
		"STARTING_CASH_BALANCE": &c.Trading.StartingCashBalance,
		"TRADE_AMOUNT":          &c.Trading.TradeAmount,
		"SUPERTREND_MULTIPLIER": &c.Strategy.Multiplier,
	}
	for key, dst := range floats {
		if v := os.Getenv(key); v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("env %s: %w", key, err)
			}
			*dst = f
		}
	}

	ints := map[string]*int{
		"CHECK_INTERVAL_SECONDS": &c.Trading.CheckIntervalSeconds,
		"SUPERTREND_PERIOD":      &c.Strategy.Period,
	}
	for key, dst := range ints {
		if v := os.Getenv(key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("env %s: %w", key, err)
			}
			*dst = n
		}
	}
	return nil
}

// applyDefaults fills unset options. Zero counts as unset for every numeric
// option, starting_cash_balance included.
func (c *Config) applyDefaults() {
	if c.Exchange.BaseURL == "" {
		c.Exchange.BaseURL = collector.DefaultKrakenBaseURL
	}
	if c.Exchange.TimeoutSeconds == 0 {
		c.Exchange.TimeoutSeconds = 15
	}
	if c.Exchange.RequestsPerSecond == 0 {
		c.Exchange.RequestsPerSecond = 1
	}
	if c.Exchange.Burst == 0 {
		c.Exchange.Burst = 2
	}
	if c.Trading.Symbol == "" {
		c.Trading.Symbol = "ETH/USD"
	}
	if c.Trading.Timeframe == "" {
		c.Trading.Timeframe = "5m"
	}
	if c.Trading.CandleLimit == 0 {
		c.Trading.CandleLimit = 100
	}
	if c.Trading.CheckIntervalSeconds == 0 {
		c.Trading.CheckIntervalSeconds = 60
	}
	if c.Trading.StartingCashBalance == 0 {
		c.Trading.StartingCashBalance = 10000
	}
	if c.Trading.TradeAmount == 0 {
		c.Trading.TradeAmount = 500
	}
	if c.Strategy.Period == 0 {
		c.Strategy.Period = 7
	}
	if c.Strategy.Multiplier == 0 {
		c.Strategy.Multiplier = 3
	}
	if c.Ledger.StateFile == "" {
		c.Ledger.StateFile = "data/trade_history.json"
	}
	if c.Database.SQLitePath == "" {
		c.Database.SQLitePath = "data/trend_sentinel.db"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// Validate checks that every option is usable.
func (c *Config) Validate() error {
	if c.Trading.Symbol == "" {
		return fmt.Errorf("trading.symbol is required")
	}
	if !collector.SupportedTimeframe(c.Trading.Timeframe) {
		return fmt.Errorf("trading.timeframe %q is not supported", c.Trading.Timeframe)
	}
	if c.Strategy.Period <= 0 {
		return fmt.Errorf("strategy.period must be positive")
	}
	if !(c.Strategy.Multiplier > 0) {
		return fmt.Errorf("strategy.multiplier must be positive")
	}
	if c.Trading.CandleLimit <= c.Strategy.Period {
		return fmt.Errorf("trading.candle_limit must exceed strategy.period (%d)", c.Strategy.Period)
	}
	if c.Trading.CheckIntervalSeconds <= 0 {
		return fmt.Errorf("trading.check_interval_seconds must be positive")
	}
	if c.Trading.StartingCashBalance < 0 {
		return fmt.Errorf("trading.starting_cash_balance must not be negative")
	}
	if !(c.Trading.TradeAmount > 0) {
		return fmt.Errorf("trading.trade_amount must be positive")
	}
	if c.Ledger.StateFile == "" {
		return fmt.Errorf("ledger.state_file is required")
	}
	if c.Exchange.RequestsPerSecond < 0 || c.Exchange.Burst < 0 {
		return fmt.Errorf("exchange rate limits must not be negative")
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id must be set together")
	}
	return nil
}

// CheckInterval returns the tick period.
func (c *Config) CheckInterval() time.Duration {
	return time.Duration(c.Trading.CheckIntervalSeconds) * time.Second
}

// ExchangeTimeout returns the HTTP client timeout.
func (c *Config) ExchangeTimeout() time.Duration {
	return time.Duration(c.Exchange.TimeoutSeconds) * time.Second
}

// TelegramEnabled reports whether alerts and commands are configured.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}
