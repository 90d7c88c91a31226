package recorder

import (
	"time"

	"TrendSentinel/internal/model"
)

// TickEvent is one scheduler tick as written to the journal.
type TickEvent struct {
	Time           time.Time
	Symbol         string
	Price          float64
	InUptrend      bool
	Signal         model.Signal
	Position       model.Position
	PortfolioValue float64
	Outcome        string // "TRADED", "IGNORED", "NONE"
	Note           string
}

// Recorder journals ticks and trades for later analysis. It is never read
// back to restore state.
type Recorder interface {
	RecordTick(evt *TickEvent) error
	RecordTrade(trade *model.Trade) error
	RecentTrades(limit int) ([]model.Trade, error)
	Close() error
}
