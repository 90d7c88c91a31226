package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"TrendSentinel/internal/collector"
	"TrendSentinel/internal/config"
	"TrendSentinel/internal/fund"
	"TrendSentinel/internal/notifier"
	"TrendSentinel/internal/recorder"
	"TrendSentinel/internal/scheduler"
)

type configLoader func() (*config.Config, error)

func newFetcher(cfg *config.Config) *collector.KrakenFetcher {
	return collector.NewKrakenFetcher(collector.KrakenOptions{
		BaseURL:           cfg.Exchange.BaseURL,
		ProxyURL:          cfg.Proxy,
		Timeout:           cfg.ExchangeTimeout(),
		RequestsPerSecond: cfg.Exchange.RequestsPerSecond,
		Burst:             cfg.Exchange.Burst,
	})
}

func runCmd(load configLoader) *cobra.Command {
	var mock bool
	var mockPrice float64
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the trading loop until interrupted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			var fetcher collector.Fetcher = newFetcher(cfg)
			if mock {
				fetcher = &collector.MockFetcher{Price: mockPrice}
			}
			return run(cmd.Context(), cfg, fetcher)
		},
	}
	cmd.Flags().BoolVar(&mock, "mock", false, "use generated candles instead of Kraken")
	cmd.Flags().Float64Var(&mockPrice, "mock-price", 2000, "base price for generated candles")
	return cmd
}

func run(ctx context.Context, cfg *config.Config, fetcher collector.Fetcher) error {
	fmt.Println(notifier.FormatStartup(notifier.StartupInfo{
		Exchange:      fetcher.Name(),
		Symbol:        cfg.Trading.Symbol,
		Timeframe:     cfg.Trading.Timeframe,
		Period:        cfg.Strategy.Period,
		Multiplier:    cfg.Strategy.Multiplier,
		StartingCash:  cfg.Trading.StartingCashBalance,
		TradeAmount:   cfg.Trading.TradeAmount,
		CheckInterval: cfg.CheckInterval(),
	}))

	col := collector.NewCollector(fetcher, cfg.Trading.Symbol, cfg.Trading.Timeframe, cfg.Trading.CandleLimit)

	fm, err := fund.NewManager(cfg.Ledger.StateFile, cfg.Trading.StartingCashBalance, cfg.Trading.TradeAmount)
	if err != nil {
		return fmt.Errorf("init fund manager: %w", err)
	}

	var rec recorder.Recorder = recorder.NewNoopRecorder()
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Warn().Err(err).Msg("init sqlite recorder failed, using noop")
		} else {
			rec = sr
			defer sr.Close()
		}
	}

	var n notifier.Notifier = notifier.NoopNotifier{}
	var tn *notifier.TelegramNotifier
	if cfg.TelegramEnabled() {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
		n = tn
	}

	if cfg.Metrics.Addr != "" {
		srv := &http.Server{Addr: cfg.Metrics.Addr, Handler: metricsMux(), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Msg("metrics server")
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
		log.Info().Str("addr", cfg.Metrics.Addr).Msg("metrics endpoint enabled")
	}

	sched := scheduler.NewScheduler(ctx, col, fm, n, rec, scheduler.Options{
		Period:     cfg.Strategy.Period,
		Multiplier: cfg.Strategy.Multiplier,
		Interval:   cfg.CheckInterval(),
	})
	if err := sched.Start(); err != nil {
		return err
	}

	if tn != nil {
		go tn.StartPolling(ctx, sched.HandleCommand)
		log.Info().Msg("telegram polling started")
	}

	log.Info().Msg("TrendSentinel is running, press Ctrl+C to stop")
	<-ctx.Done()

	log.Info().Msg("shutdown signal received, stopping")
	sched.Stop()

	fmt.Println(notifier.FormatSummary(fm.Summary()))
	log.Info().Msg("TrendSentinel stopped")
	return nil
}

func metricsMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

func summaryCmd(load configLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Print the persisted ledger summary",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			snap, err := fund.LoadLedger(cfg.Ledger.StateFile)
			if err != nil {
				return err
			}
			if snap == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "📊 No trades executed yet")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), notifier.FormatSummary(fund.SummarizeSnapshot(snap)))
			fmt.Fprintln(cmd.OutOrStdout(), notifier.FormatTrades(snap.Trades))
			return nil
		},
	}
}

func priceCmd(load configLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "price [symbol]",
		Short: "Print the current ticker",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			symbol := cfg.Trading.Symbol
			if len(args) == 1 {
				symbol = args[0]
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.ExchangeTimeout())
			defer cancel()

			col := collector.NewCollector(newFetcher(cfg), symbol, cfg.Trading.Timeframe, cfg.Trading.CandleLimit)
			t, err := col.Ticker(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), notifier.FormatTicker(t))
			return nil
		},
	}
}
