package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"TrendSentinel/internal/calculator"
	"TrendSentinel/internal/collector"
	"TrendSentinel/internal/fund"
	"TrendSentinel/internal/metrics"
	"TrendSentinel/internal/model"
	"TrendSentinel/internal/notifier"
	"TrendSentinel/internal/recorder"
	"TrendSentinel/internal/strategy"
)

// Options are the strategy parameters the tick loop runs with.
type Options struct {
	Period     int
	Multiplier float64
	Interval   time.Duration
}

// Scheduler runs the fixed-interval trading loop.
type Scheduler struct {
	Cron      *cron.Cron
	Collector *collector.Collector
	Fund      *fund.Manager
	Notifier  notifier.Notifier
	Recorder  recorder.Recorder
	Ctx       context.Context
	Opts      Options

	job    cron.Job
	tickMu sync.Mutex
	wg     sync.WaitGroup

	statusMu   sync.Mutex
	lastStatus *model.Status
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, col *collector.Collector, fm *fund.Manager, n notifier.Notifier, rec recorder.Recorder, opts Options) *Scheduler {
	if n == nil {
		n = notifier.NoopNotifier{}
	}
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	s := &Scheduler{
		Cron:      cron.New(cron.WithLogger(cronLogger{})),
		Collector: col,
		Fund:      fm,
		Notifier:  n,
		Recorder:  rec,
		Ctx:       ctx,
		Opts:      opts,
	}
	// The start-up tick and the scheduled ticks share one wrapped job, so
	// SkipIfStillRunning covers both.
	s.job = cron.NewChain(
		cron.Recover(cronLogger{}),
		cron.SkipIfStillRunning(cronLogger{}),
	).Then(cron.FuncJob(s.tick))
	return s
}

// Start runs one tick immediately, then one every Opts.Interval.
func (s *Scheduler) Start() error {
	if s.Opts.Interval <= 0 {
		return fmt.Errorf("check interval must be positive, got %s", s.Opts.Interval)
	}
	s.Cron.Schedule(cron.Every(s.Opts.Interval), s.job)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.job.Run()
	}()

	s.Cron.Start()
	log.Info().Dur("interval", s.Opts.Interval).Msg("scheduler started")
	return nil
}

// Stop stops the cron, waits for an in-flight tick, then flushes the ledger.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.wg.Wait()
	if err := s.Fund.Flush(); err != nil {
		log.Error().Err(err).Msg("final ledger flush failed")
	}
	log.Info().Msg("scheduler stopped")
}

func (s *Scheduler) tick() {
	// Errors are logged and counted inside RunOnce.
	_, _ = s.RunOnce(s.Ctx)
}

// RunOnce performs one fetch-compute-act cycle. Fetch and indicator errors
// skip the cycle without touching the ledger; rejected signals are logged
// and do not fail it.
func (s *Scheduler) RunOnce(ctx context.Context) (*model.Status, error) {
	s.tickMu.Lock()
	defer s.tickMu.Unlock()

	start := time.Now()
	defer func() { metrics.TickDuration.Observe(time.Since(start).Seconds()) }()

	candles, err := s.Collector.Collect(ctx)
	if err != nil {
		metrics.TicksTotal.WithLabelValues("fetch_failed").Inc()
		log.Warn().Err(err).Str("symbol", s.Collector.Symbol).Msg("skipping tick: market data unavailable")
		return nil, err
	}

	rows, err := calculator.CalculateSuperTrend(candles, s.Opts.Period, s.Opts.Multiplier)
	if err != nil {
		if errors.Is(err, calculator.ErrInsufficientData) {
			metrics.TicksTotal.WithLabelValues("insufficient_data").Inc()
			log.Warn().Int("candles", len(candles)).Int("period", s.Opts.Period).
				Msg("skipping tick: not enough candles")
		} else {
			metrics.TicksTotal.WithLabelValues("indicator_failed").Inc()
			log.Error().Err(err).Msg("skipping tick: indicator failed")
		}
		return nil, err
	}

	ev := strategy.Evaluate(rows)
	last := candles[len(candles)-1]
	price := last.Close

	outcome, note := "NONE", ""
	if ev.Signal != model.SignalNone {
		metrics.SignalsTotal.WithLabelValues(string(ev.Signal)).Inc()
		log.Info().Str("signal", string(ev.Signal)).Float64("price", price).Msg("trend reversal detected")

		trade, err := s.Fund.ApplySignal(ev.Signal, price)
		switch {
		case err != nil:
			outcome, note = "IGNORED", err.Error()
			metrics.SignalsIgnored.WithLabelValues(ignoreReason(err)).Inc()
			log.Info().Err(err).Str("signal", string(ev.Signal)).Msg("signal ignored")
		case trade != nil:
			outcome = "TRADED"
			s.onTrade(trade)
		}
	}

	status := s.buildStatus(last, ev)
	s.publishStatus(status)

	if err := s.Recorder.RecordTick(&recorder.TickEvent{
		Time:           last.Time,
		Symbol:         status.Symbol,
		Price:          price,
		InUptrend:      status.InUptrend,
		Signal:         ev.Signal,
		Position:       status.Position,
		PortfolioValue: status.PortfolioValue,
		Outcome:        outcome,
		Note:           note,
	}); err != nil {
		log.Error().Err(err).Msg("record tick")
	}

	metrics.TicksTotal.WithLabelValues("ok").Inc()
	return status, nil
}

func (s *Scheduler) onTrade(trade *model.Trade) {
	log.Info().
		Str("action", string(trade.Action)).
		Float64("price", trade.Price).
		Float64("amount", trade.AssetAmount).
		Float64("cash_flow", trade.CashFlow).
		Float64("cash", trade.ResultingCashBalance).
		Float64("asset", trade.ResultingAssetBalance).
		Msg("paper trade executed")

	if err := s.Recorder.RecordTrade(trade); err != nil {
		log.Error().Err(err).Msg("record trade")
	}
	s.trySend(notifier.FormatTrade(s.Collector.Symbol, trade))
}

func (s *Scheduler) buildStatus(last model.Candle, ev *strategy.Evaluation) *model.Status {
	val := s.Fund.Value(last.Close)
	return &model.Status{
		Symbol:         s.Collector.Symbol,
		Price:          last.Close,
		CandleTime:     last.Time,
		InUptrend:      ev.Latest.InUptrend,
		Signal:         ev.Signal,
		Position:       s.Fund.Position(),
		PortfolioValue: val.PortfolioValue,
		TotalPnL:       val.TotalPnL,
		TotalPnLPct:    val.TotalPnLPct,
		UnrealizedPnL:  val.UnrealizedPnL,
		TradeCount:     len(s.Fund.Trades()),
	}
}

func (s *Scheduler) publishStatus(st *model.Status) {
	acct := s.Fund.GetAccount()
	metrics.LastPrice.Set(st.Price)
	metrics.InUptrend.Set(metrics.Bool(st.InUptrend))
	metrics.PortfolioValue.Set(st.PortfolioValue)
	metrics.CashBalance.Set(acct.CashBalance)
	metrics.AssetBalance.Set(acct.AssetBalance)

	log.Info().
		Str("symbol", st.Symbol).
		Time("candle", st.CandleTime).
		Float64("price", st.Price).
		Bool("uptrend", st.InUptrend).
		Str("position", string(st.Position)).
		Float64("portfolio", st.PortfolioValue).
		Float64("pnl", st.TotalPnL).
		Float64("pnl_pct", st.TotalPnLPct).
		Int("trades", st.TradeCount).
		Msg("status")

	s.statusMu.Lock()
	s.lastStatus = st
	s.statusMu.Unlock()
}

// LastStatus returns the status of the last completed tick, or nil.
func (s *Scheduler) LastStatus() *model.Status {
	s.statusMu.Lock()
	defer s.statusMu.Unlock()
	if s.lastStatus == nil {
		return nil
	}
	cp := *s.lastStatus
	return &cp
}

func ignoreReason(err error) string {
	switch {
	case errors.Is(err, fund.ErrWrongPosition):
		return "wrong_position"
	case errors.Is(err, fund.ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, fund.ErrNoPosition):
		return "no_position"
	case errors.Is(err, fund.ErrInvalidPrice):
		return "invalid_price"
	default:
		return "other"
	}
}

const recentTradesLimit = 10

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(command string) string {
	switch command {
	case "/status":
		st := s.LastStatus()
		if st == nil {
			return "No completed check yet"
		}
		return notifier.FormatStatus(st)
	case "/summary":
		return notifier.FormatSummary(s.Fund.Summary())
	case "/trades":
		return notifier.FormatTrades(s.recentTrades())
	default:
		return "Available commands:\n• /status\n• /summary\n• /trades"
	}
}

// recentTrades prefers the journal and falls back to the ledger.
func (s *Scheduler) recentTrades() []model.Trade {
	trades, err := s.Recorder.RecentTrades(recentTradesLimit)
	if err != nil {
		log.Warn().Err(err).Msg("read journal trades")
	}
	if len(trades) > 0 {
		return trades
	}
	trades = s.Fund.Trades()
	if len(trades) > recentTradesLimit {
		trades = trades[len(trades)-recentTradesLimit:]
	}
	return trades
}

type retrySender interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

func (s *Scheduler) trySend(text string) {
	var err error
	if r, ok := s.Notifier.(retrySender); ok {
		err = r.SendWithRetry(s.Ctx, text, 3)
	} else {
		err = s.Notifier.Send(s.Ctx, text)
	}
	if err != nil {
		log.Error().Err(err).Msg("send notification")
	}
}
