package collector

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ohlcBody = `{"error":[],"result":{"XETHZUSD":[
[1700000600,"2010.0","2030.0","2000.0","2020.0","2015.0","12.5",40],
[1700000000,"2000.0","2020.0","1990.0","2010.0","2005.0","10.0",32],
[1700000300,"2010.0","2025.0","2005.0","2015.0","2012.0","8.0",21]
],"last":1700000600}}`

const tickerBody = `{"error":[],"result":{"XETHZUSD":{
"a":["2101.0","1","1.000"],"b":["2100.0","1","1.000"],
"c":["2100.50","0.1"],"v":["100.0","1234.5"],
"p":["2090.0","2080.0"],"t":[10,200],
"l":["2050.0","2000.0"],"h":["2110.0","2150.0"],"o":"2000.0"}}}`

func newTestKraken(t *testing.T, h http.HandlerFunc) *KrakenFetcher {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewKrakenFetcher(KrakenOptions{BaseURL: srv.URL, Timeout: 2 * time.Second, RequestsPerSecond: 100, Burst: 10})
}

func TestKrakenFetchCandles(t *testing.T) {
	var gotPath, gotPair, gotInterval string
	f := newTestKraken(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotPair = r.URL.Query().Get("pair")
		gotInterval = r.URL.Query().Get("interval")
		_, _ = w.Write([]byte(ohlcBody))
	})

	candles, err := f.FetchCandles(context.Background(), "ETH/USD", "5m", 2)
	require.NoError(t, err)

	assert.Equal(t, "/OHLC", gotPath)
	assert.Equal(t, "ETHUSD", gotPair)
	assert.Equal(t, "5", gotInterval)

	// sorted ascending then trimmed to the newest two
	require.Len(t, candles, 2)
	assert.Equal(t, time.Unix(1700000300, 0).UTC(), candles[0].Time)
	assert.Equal(t, time.Unix(1700000600, 0).UTC(), candles[1].Time)
	assert.Equal(t, 2010.0, candles[1].Open)
	assert.Equal(t, 2030.0, candles[1].High)
	assert.Equal(t, 2000.0, candles[1].Low)
	assert.Equal(t, 2020.0, candles[1].Close)
	assert.Equal(t, 12.5, candles[1].Volume)
}

func TestKrakenFetchTicker(t *testing.T) {
	f := newTestKraken(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/Ticker", r.URL.Path)
		_, _ = w.Write([]byte(tickerBody))
	})

	tk, err := f.FetchTicker(context.Background(), "ETH/USD")
	require.NoError(t, err)
	assert.Equal(t, "ETH/USD", tk.Symbol)
	assert.Equal(t, 2100.5, tk.Last)
	assert.Equal(t, 2150.0, tk.High)
	assert.Equal(t, 2000.0, tk.Low)
	assert.Equal(t, 1234.5, tk.BaseVolume)
	assert.InDelta(t, 5.025, tk.Percentage, 1e-9)
}

func TestKrakenAPIError(t *testing.T) {
	f := newTestKraken(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error":["EQuery:Unknown asset pair"]}`))
	})

	_, err := f.FetchCandles(context.Background(), "FOO/BAR", "5m", 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Unknown asset pair")
}

func TestKrakenNon200(t *testing.T) {
	f := newTestKraken(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "maintenance", http.StatusServiceUnavailable)
	})

	_, err := f.FetchCandles(context.Background(), "ETH/USD", "5m", 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 503")
}

func TestKrakenBreakerOpensAfterFailures(t *testing.T) {
	var hits int32
	f := newTestKraken(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusInternalServerError)
	})

	for i := 0; i < 5; i++ {
		_, err := f.FetchCandles(context.Background(), "ETH/USD", "5m", 10)
		require.Error(t, err)
	}
	assert.Equal(t, int32(3), atomic.LoadInt32(&hits))
}

func TestKrakenUnsupportedTimeframe(t *testing.T) {
	f := newTestKraken(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	})
	_, err := f.FetchCandles(context.Background(), "ETH/USD", "7m", 10)
	require.Error(t, err)
}

func TestKrakenCancelledContext(t *testing.T) {
	f := newTestKraken(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(ohlcBody))
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.FetchCandles(ctx, "ETH/USD", "5m", 10)
	require.ErrorIs(t, err, context.Canceled)
}

func TestKrakenPair(t *testing.T) {
	assert.Equal(t, "ETHUSD", krakenPair("ETH/USD"))
	assert.Equal(t, "XBTUSD", krakenPair("btc/usd"))
	assert.Equal(t, "ETHUSD", krakenPair("ETHUSD"))
}

func TestParseOHLCRowRejectsShortRow(t *testing.T) {
	_, err := parseOHLCRow([]interface{}{1700000000.0, "1", "2"})
	require.Error(t, err)

	_, err = parseOHLCRow([]interface{}{1700000000.0, "1", "2", "x", "4", "5", "6", 1.0})
	require.Error(t, err)
}

func TestSupportedTimeframe(t *testing.T) {
	for _, tf := range []string{"1m", "5m", "15m", "30m", "1h", "4h", "1d", "1w", "15d"} {
		assert.True(t, SupportedTimeframe(tf), tf)
	}
	assert.False(t, SupportedTimeframe("2h"))
}
