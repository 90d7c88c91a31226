package model

import "time"

// Signal is the trend-reversal event detected on the latest candle.
type Signal string

const (
	SignalBuy  Signal = "BUY"
	SignalSell Signal = "SELL"
	SignalNone Signal = "NONE"
)

// Action is the side of an executed trade.
type Action string

const (
	ActionBuy  Action = "BUY"
	ActionSell Action = "SELL"
)

// Status is the per-tick report shown to the operator.
type Status struct {
	Symbol         string
	Price          float64
	CandleTime     time.Time
	InUptrend      bool
	Signal         Signal
	Position       Position
	PortfolioValue float64
	TotalPnL       float64
	TotalPnLPct    float64
	UnrealizedPnL  float64
	TradeCount     int
}
