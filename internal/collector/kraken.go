package collector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"TrendSentinel/internal/model"
)

const DefaultKrakenBaseURL = "https://api.kraken.com/0/public"

// krakenIntervals maps timeframes to Kraken OHLC intervals in minutes.
var krakenIntervals = map[string]int{
	"1m":  1,
	"5m":  5,
	"15m": 15,
	"30m": 30,
	"1h":  60,
	"4h":  240,
	"1d":  1440,
	"1w":  10080,
	"15d": 21600,
}

// SupportedTimeframe reports whether tf has a Kraken interval.
func SupportedTimeframe(tf string) bool {
	_, ok := krakenIntervals[tf]
	return ok
}

// KrakenOptions configures the Kraken public REST client.
type KrakenOptions struct {
	BaseURL           string
	ProxyURL          string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
}

// KrakenFetcher implements Fetcher using Kraken's public REST API.
// Calls go through a token-bucket limiter and a circuit breaker.
type KrakenFetcher struct {
	BaseURL string
	Client  *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
}

// NewKrakenFetcher creates a new fetcher with optional proxy support.
func NewKrakenFetcher(opts KrakenOptions) *KrakenFetcher {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultKrakenBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.RequestsPerSecond <= 0 {
		opts.RequestsPerSecond = 1
	}
	if opts.Burst <= 0 {
		opts.Burst = 1
	}

	transport := &http.Transport{}
	if opts.ProxyURL != "" {
		if u, err := url.Parse(opts.ProxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}

	st := gobreaker.Settings{
		Name:     "kraken",
		Interval: 60 * time.Second,
		Timeout:  30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		// A cancelled fetch says nothing about Kraken's health.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	}

	return &KrakenFetcher{
		BaseURL: strings.TrimRight(opts.BaseURL, "/"),
		Client: &http.Client{
			Timeout:   opts.Timeout,
			Transport: transport,
		},
		limiter: rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), opts.Burst),
		breaker: gobreaker.NewCircuitBreaker(st),
	}
}

func (f *KrakenFetcher) Name() string { return "kraken" }

// krakenPair converts "ETH/USD" to Kraken's "ETHUSD". Kraken names bitcoin XBT.
func krakenPair(symbol string) string {
	parts := strings.Split(strings.ToUpper(symbol), "/")
	for i, p := range parts {
		if p == "BTC" {
			parts[i] = "XBT"
		}
	}
	return strings.Join(parts, "")
}

type krakenEnvelope struct {
	Error  []string        `json:"error"`
	Result json.RawMessage `json:"result"`
}

type krakenTicker struct {
	Close  []string `json:"c"`
	Volume []string `json:"v"`
	Low    []string `json:"l"`
	High   []string `json:"h"`
	Open   string   `json:"o"`
}

// FetchCandles returns up to limit of the most recent candles, oldest first.
func (f *KrakenFetcher) FetchCandles(ctx context.Context, symbol, timeframe string, limit int) ([]model.Candle, error) {
	interval, ok := krakenIntervals[timeframe]
	if !ok {
		return nil, fmt.Errorf("unsupported timeframe %q", timeframe)
	}
	q := url.Values{}
	q.Set("pair", krakenPair(symbol))
	q.Set("interval", strconv.Itoa(interval))

	var result map[string]json.RawMessage
	if err := f.get(ctx, "OHLC", q, &result); err != nil {
		return nil, err
	}
	raw, err := pairResult(result)
	if err != nil {
		return nil, err
	}

	var rows [][]interface{}
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("decode ohlc: %w", err)
	}
	candles := make([]model.Candle, 0, len(rows))
	for i, r := range rows {
		c, err := parseOHLCRow(r)
		if err != nil {
			return nil, fmt.Errorf("ohlc row %d: %w", i, err)
		}
		candles = append(candles, c)
	}

	sort.Slice(candles, func(i, j int) bool { return candles[i].Time.Before(candles[j].Time) })
	if limit > 0 && len(candles) > limit {
		candles = candles[len(candles)-limit:]
	}
	return candles, nil
}

// FetchTicker returns the last trade price with 24h high, low and volume.
func (f *KrakenFetcher) FetchTicker(ctx context.Context, symbol string) (*model.Ticker, error) {
	q := url.Values{}
	q.Set("pair", krakenPair(symbol))

	var result map[string]json.RawMessage
	if err := f.get(ctx, "Ticker", q, &result); err != nil {
		return nil, err
	}
	raw, err := pairResult(result)
	if err != nil {
		return nil, err
	}
	var kt krakenTicker
	if err := json.Unmarshal(raw, &kt); err != nil {
		return nil, fmt.Errorf("decode ticker: %w", err)
	}

	t := &model.Ticker{Symbol: symbol, Time: time.Now()}
	fields := []struct {
		src []string
		idx int
		dst *float64
	}{
		{kt.Close, 0, &t.Last},
		{kt.High, 1, &t.High},
		{kt.Low, 1, &t.Low},
		{kt.Volume, 1, &t.BaseVolume},
	}
	for _, fl := range fields {
		if len(fl.src) <= fl.idx {
			return nil, errors.New("ticker: missing field")
		}
		v, err := strconv.ParseFloat(fl.src[fl.idx], 64)
		if err != nil {
			return nil, fmt.Errorf("ticker: %w", err)
		}
		*fl.dst = v
	}
	if open, err := strconv.ParseFloat(kt.Open, 64); err == nil && open > 0 {
		t.Percentage = (t.Last - open) / open * 100
	}
	return t, nil
}

func (f *KrakenFetcher) get(ctx context.Context, method string, q url.Values, out interface{}) error {
	_, err := f.breaker.Execute(func() (interface{}, error) {
		return nil, f.do(ctx, method, q, out)
	})
	return err
}

func (f *KrakenFetcher) do(ctx context.Context, method string, q url.Values, out interface{}) error {
	if err := f.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	endpoint := fmt.Sprintf("%s/%s?%s", f.BaseURL, method, q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", "TrendSentinel/1.0")

	resp, err := f.Client.Do(req)
	if err != nil {
		return fmt.Errorf("kraken %s: %w", method, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("kraken read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("kraken %s: status %d, body: %s", method, resp.StatusCode, string(body))
	}

	var env krakenEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("kraken decode: %w", err)
	}
	if len(env.Error) > 0 {
		return fmt.Errorf("kraken api error: %s", strings.Join(env.Error, "; "))
	}
	if err := json.Unmarshal(env.Result, out); err != nil {
		return fmt.Errorf("kraken decode result: %w", err)
	}
	return nil
}

// pairResult picks the single pair entry; Kraken keys it by its own pair
// name (e.g. XETHZUSD) next to a "last" cursor.
func pairResult(result map[string]json.RawMessage) (json.RawMessage, error) {
	for k, v := range result {
		if k == "last" {
			continue
		}
		return v, nil
	}
	return nil, errors.New("kraken: no data returned")
}

// parseOHLCRow decodes [time, open, high, low, close, vwap, volume, count].
func parseOHLCRow(r []interface{}) (model.Candle, error) {
	if len(r) < 7 {
		return model.Candle{}, fmt.Errorf("expected at least 7 fields, got %d", len(r))
	}
	var vals [7]float64
	for i := range vals {
		v, err := toFloat(r[i])
		if err != nil {
			return model.Candle{}, fmt.Errorf("field %d: %w", i, err)
		}
		vals[i] = v
	}
	return model.Candle{
		Time:   time.Unix(int64(vals[0]), 0).UTC(),
		Open:   vals[1],
		High:   vals[2],
		Low:    vals[3],
		Close:  vals[4],
		Volume: vals[6],
	}, nil
}

func toFloat(v interface{}) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case string:
		return strconv.ParseFloat(n, 64)
	default:
		return 0, fmt.Errorf("unexpected type %T", v)
	}
}
