package notifier

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"TrendSentinel/internal/model"
)

func TestFormatStatus(t *testing.T) {
	s := &model.Status{
		Symbol:         "ETH/USD",
		Price:          2000,
		CandleTime:     time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		InUptrend:      true,
		Position:       model.PositionLong,
		PortfolioValue: 10100,
		TotalPnL:       100,
		TotalPnLPct:    1,
		UnrealizedPnL:  100,
		TradeCount:     1,
	}
	out := FormatStatus(s)
	assert.Contains(t, out, "2024-01-02 03:04:05")
	assert.Contains(t, out, "ETH/USD: $2000.00")
	assert.Contains(t, out, "UP")
	assert.Contains(t, out, "$+100.00 (+1.00%)")
	assert.Contains(t, out, "Position: LONG | Trades: 1")
	assert.Contains(t, out, "Unrealized: $+100.00")

	s.Position = model.PositionFlat
	s.TotalPnL = -50
	s.InUptrend = false
	out = FormatStatus(s)
	assert.Contains(t, out, "DOWN")
	assert.Contains(t, out, "💔")
	assert.NotContains(t, out, "Unrealized")
}

func TestFormatTrade(t *testing.T) {
	out := FormatTrade("ETH/USD", &model.Trade{
		Action:                model.ActionBuy,
		Price:                 2000,
		AssetAmount:           0.25,
		CashFlow:              500,
		ResultingCashBalance:  9500,
		ResultingAssetBalance: 0.25,
	})
	assert.Contains(t, out, "BUY ETH/USD")
	assert.Contains(t, out, "0.250000 ETH")
	assert.Contains(t, out, "Cost:      $500.00")

	out = FormatTrade("ETH/USD", &model.Trade{Action: model.ActionSell, CashFlow: 600})
	assert.Contains(t, out, "Revenue:   $600.00")
}

func TestFormatSummary(t *testing.T) {
	assert.Contains(t, FormatSummary(model.LedgerSummary{CashBalance: 10000}), "No trades executed yet")

	out := FormatSummary(model.LedgerSummary{
		TotalTrades: 3, Buys: 2, Sells: 1,
		RealizedPnL: 100, OpenCost: 500,
		StartingCashBalance: 10000, CashBalance: 9600, AssetBalance: 0.25,
	})
	assert.Contains(t, out, "Total trades:     3")
	assert.Contains(t, out, "Realized PnL:     $+100.00")
	assert.Contains(t, out, "Open cost:        $500.00")
	assert.Contains(t, out, "Asset balance:    0.250000")
}

func TestFormatTrades(t *testing.T) {
	assert.Equal(t, "No trades yet", FormatTrades(nil))
	out := FormatTrades([]model.Trade{
		{Timestamp: time.Date(2024, 5, 6, 7, 8, 0, 0, time.UTC), Action: model.ActionBuy, AssetAmount: 0.5, Price: 1000, CashFlow: 500},
	})
	assert.Contains(t, out, "05-06 07:08 BUY  0.500000 @ $1000.00 ($500.00)")
}

func TestFormatStartup(t *testing.T) {
	out := FormatStartup(StartupInfo{
		Exchange: "kraken", Symbol: "ETH/USD", Timeframe: "5m",
		Period: 7, Multiplier: 3, StartingCash: 10000, TradeAmount: 500,
		CheckInterval: time.Minute,
	})
	assert.Contains(t, out, "SuperTrend (period=7, multiplier=3)")
	assert.Contains(t, out, "Check interval:   1m0s")
}
