package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	TicksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trendsentinel_ticks_total",
			Help: "Scheduler ticks by outcome.",
		},
		[]string{"result"},
	)

	TickDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "trendsentinel_tick_duration_seconds",
			Help:    "Wall time of one tick, fetch included.",
			Buckets: prometheus.DefBuckets,
		},
	)

	SignalsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trendsentinel_signals_total",
			Help: "Detected trend-reversal signals.",
		},
		[]string{"signal"},
	)

	SignalsIgnored = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trendsentinel_signals_ignored_total",
			Help: "Signals that did not produce a trade, by reason.",
		},
		[]string{"reason"},
	)

	TradesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trendsentinel_trades_total",
			Help: "Executed paper trades by action.",
		},
		[]string{"action"},
	)

	PersistFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "trendsentinel_ledger_persist_failures_total",
			Help: "Failed ledger snapshot writes.",
		},
	)

	LastPrice = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "trendsentinel_last_price",
			Help: "Close of the latest candle.",
		},
	)

	InUptrend = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "trendsentinel_in_uptrend",
			Help: "1 when the latest SuperTrend row is in an uptrend.",
		},
	)

	PortfolioValue = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "trendsentinel_portfolio_value",
			Help: "Cash plus marked-to-market asset value.",
		},
	)

	CashBalance = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "trendsentinel_cash_balance",
			Help: "Simulated cash balance.",
		},
	)

	AssetBalance = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "trendsentinel_asset_balance",
			Help: "Simulated asset balance.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		TicksTotal, TickDuration,
		SignalsTotal, SignalsIgnored, TradesTotal, PersistFailures,
		LastPrice, InUptrend, PortfolioValue, CashBalance, AssetBalance,
	)
}

// Bool converts a flag to a gauge value.
func Bool(v bool) float64 {
	if v {
		return 1
	}
	return 0
}
