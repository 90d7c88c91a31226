package collector

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TrendSentinel/internal/model"
)

func at(min int) time.Time {
	return time.Date(2024, 1, 1, 0, min, 0, 0, time.UTC)
}

func TestCollectSortsAndDedupes(t *testing.T) {
	mock := &MockFetcher{Candles: []model.Candle{
		{Time: at(10), Close: 3},
		{Time: at(0), Close: 1},
		{Time: at(5), Close: 2},
		{Time: at(10), Close: 4},
	}}
	c := NewCollector(mock, "ETH/USD", "5m", 100)

	candles, err := c.Collect(context.Background())
	require.NoError(t, err)
	require.Len(t, candles, 3)
	assert.Equal(t, []float64{1, 2, 4}, []float64{candles[0].Close, candles[1].Close, candles[2].Close})
	assert.Equal(t, 1, mock.Calls())
}

func TestCollectWrapsFetchError(t *testing.T) {
	upstream := errors.New("connection refused")
	mock := &MockFetcher{Err: upstream}
	c := NewCollector(mock, "ETH/USD", "5m", 100)

	_, err := c.Collect(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDataUnavailable)
	assert.ErrorIs(t, err, upstream)
}

func TestCollectEmptyWindow(t *testing.T) {
	mock := &MockFetcher{Candles: []model.Candle{}}
	c := NewCollector(mock, "ETH/USD", "5m", 100)

	_, err := c.Collect(context.Background())
	assert.ErrorIs(t, err, ErrDataUnavailable)
}

func TestCollectGeneratedCandles(t *testing.T) {
	c := NewCollector(&MockFetcher{Price: 2000}, "ETH/USD", "5m", 50)

	candles, err := c.Collect(context.Background())
	require.NoError(t, err)
	require.Len(t, candles, 50)
	for i := 1; i < len(candles); i++ {
		assert.True(t, candles[i].Time.After(candles[i-1].Time))
	}
}

func TestTickerWrapsError(t *testing.T) {
	c := NewCollector(&MockFetcher{Err: errors.New("boom")}, "ETH/USD", "5m", 50)
	_, err := c.Ticker(context.Background())
	assert.ErrorIs(t, err, ErrDataUnavailable)

	c = NewCollector(&MockFetcher{Price: 2000}, "ETH/USD", "5m", 50)
	tk, err := c.Ticker(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2000.0, tk.Last)
}

func TestNormalizeDoesNotMutateInput(t *testing.T) {
	in := []model.Candle{{Time: at(5)}, {Time: at(0)}}
	_ = normalizeCandles(in)
	assert.Equal(t, at(5), in[0].Time)
}
