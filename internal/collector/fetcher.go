package collector

import (
	"context"

	"TrendSentinel/internal/model"
)

// Fetcher defines the interface for fetching market data.
type Fetcher interface {
	FetchCandles(ctx context.Context, symbol, timeframe string, limit int) ([]model.Candle, error)
	FetchTicker(ctx context.Context, symbol string) (*model.Ticker, error)
	Name() string
}
