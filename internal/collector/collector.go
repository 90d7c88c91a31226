package collector

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"TrendSentinel/internal/model"
)

// ErrDataUnavailable wraps every fetch failure; the caller skips the tick.
var ErrDataUnavailable = errors.New("market data unavailable")

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	mu      sync.Mutex
	Price   float64
	Candles []model.Candle
	Err     error
	calls   int
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchCandles(ctx context.Context, _ string, _ string, limit int) ([]model.Candle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Candles != nil {
		return append([]model.Candle(nil), m.Candles...), nil
	}
	return generateMockCandles(m.Price, limit), nil
}

func (m *MockFetcher) FetchTicker(ctx context.Context, symbol string) (*model.Ticker, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.Err != nil {
		return nil, m.Err
	}
	return &model.Ticker{
		Symbol: symbol,
		Last:   m.Price,
		High:   m.Price * 1.01,
		Low:    m.Price * 0.99,
		Time:   time.Now(),
	}, nil
}

// Calls returns how many times FetchCandles was invoked.
func (m *MockFetcher) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// SetCandles replaces the window returned by later calls.
func (m *MockFetcher) SetCandles(candles []model.Candle, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Candles = candles
	m.Err = err
}

func generateMockCandles(basePrice float64, count int) []model.Candle {
	candles := make([]model.Candle, count)
	start := time.Now().Truncate(5 * time.Minute).Add(-time.Duration(count) * 5 * time.Minute)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001)
		candles[i] = model.Candle{
			Time:   start.Add(time.Duration(i) * 5 * time.Minute),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000,
		}
	}
	return candles
}

// Collector fetches the candle window for one symbol and timeframe.
type Collector struct {
	Fetcher   Fetcher
	Symbol    string
	Timeframe string
	Limit     int
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, symbol, timeframe string, limit int) *Collector {
	return &Collector{Fetcher: fetcher, Symbol: symbol, Timeframe: timeframe, Limit: limit}
}

// Collect returns a chronological window with unique timestamps.
// Any failure is wrapped in ErrDataUnavailable.
func (c *Collector) Collect(ctx context.Context) ([]model.Candle, error) {
	candles, err := c.Fetcher.FetchCandles(ctx, c.Symbol, c.Timeframe, c.Limit)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch %s %s candles: %w", ErrDataUnavailable, c.Symbol, c.Timeframe, err)
	}
	if len(candles) == 0 {
		return nil, fmt.Errorf("%w: no candles returned for %s", ErrDataUnavailable, c.Symbol)
	}
	return normalizeCandles(candles), nil
}

// Ticker returns the current quote for the collector's symbol.
func (c *Collector) Ticker(ctx context.Context) (*model.Ticker, error) {
	t, err := c.Fetcher.FetchTicker(ctx, c.Symbol)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch %s ticker: %w", ErrDataUnavailable, c.Symbol, err)
	}
	return t, nil
}

// normalizeCandles sorts by time and keeps the latest sample for a repeated timestamp.
func normalizeCandles(in []model.Candle) []model.Candle {
	candles := append([]model.Candle(nil), in...)
	sort.SliceStable(candles, func(i, j int) bool { return candles[i].Time.Before(candles[j].Time) })

	out := candles[:0]
	for _, c := range candles {
		if n := len(out); n > 0 && out[n-1].Time.Equal(c.Time) {
			out[n-1] = c
			continue
		}
		out = append(out, c)
	}
	return out
}
