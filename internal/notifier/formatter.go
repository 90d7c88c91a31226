package notifier

import (
	"fmt"
	"strings"
	"time"

	"TrendSentinel/internal/model"
)

const rule = "──────────────────────────────────────────"

// StartupInfo is what the startup banner reports.
type StartupInfo struct {
	Exchange      string
	Symbol        string
	Timeframe     string
	Period        int
	Multiplier    float64
	StartingCash  float64
	TradeAmount   float64
	CheckInterval time.Duration
}

// baseAsset returns "ETH" for "ETH/USD".
func baseAsset(symbol string) string {
	if i := strings.Index(symbol, "/"); i > 0 {
		return symbol[:i]
	}
	return symbol
}

func trendLabel(up bool) string {
	if up {
		return "📈 UP"
	}
	return "📉 DOWN"
}

// FormatStartup formats the banner printed when the bot starts.
func FormatStartup(info StartupInfo) string {
	var b strings.Builder
	b.WriteString("🤖 TrendSentinel paper trading bot started\n")
	b.WriteString(rule + "\n")
	fmt.Fprintf(&b, "Exchange:         %s\n", info.Exchange)
	fmt.Fprintf(&b, "Symbol:           %s\n", info.Symbol)
	fmt.Fprintf(&b, "Timeframe:        %s\n", info.Timeframe)
	fmt.Fprintf(&b, "Strategy:         SuperTrend (period=%d, multiplier=%g)\n", info.Period, info.Multiplier)
	fmt.Fprintf(&b, "Starting balance: $%.2f\n", info.StartingCash)
	fmt.Fprintf(&b, "Trade size:       $%.2f\n", info.TradeAmount)
	fmt.Fprintf(&b, "Check interval:   %s\n", info.CheckInterval)
	b.WriteString(rule)
	return b.String()
}

// FormatStatus formats one tick's status report.
func FormatStatus(s *model.Status) string {
	var b strings.Builder
	fmt.Fprintf(&b, "⏰ %s\n", s.CandleTime.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "💱 %s: $%.2f | Trend: %s\n", s.Symbol, s.Price, trendLabel(s.InUptrend))
	mark := "💚"
	if s.TotalPnL < 0 {
		mark = "💔"
	}
	fmt.Fprintf(&b, "💰 Portfolio: $%.2f | PnL: %s $%+.2f (%+.2f%%)\n", s.PortfolioValue, mark, s.TotalPnL, s.TotalPnLPct)
	fmt.Fprintf(&b, "📊 Position: %s | Trades: %d", s.Position, s.TradeCount)
	if s.Position == model.PositionLong {
		fmt.Fprintf(&b, " | Unrealized: $%+.2f", s.UnrealizedPnL)
	}
	return b.String()
}

// FormatTrade formats an executed trade alert.
func FormatTrade(symbol string, t *model.Trade) string {
	var b strings.Builder
	icon := "🟢"
	flow := "Cost"
	if t.Action == model.ActionSell {
		icon = "🔴"
		flow = "Revenue"
	}
	fmt.Fprintf(&b, "%s %s %s\n", icon, t.Action, symbol)
	fmt.Fprintf(&b, "Time:      %s\n", t.Timestamp.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Price:     $%.2f\n", t.Price)
	fmt.Fprintf(&b, "Amount:    %.6f %s\n", t.AssetAmount, baseAsset(symbol))
	fmt.Fprintf(&b, "%-10s $%.2f\n", flow+":", t.CashFlow)
	fmt.Fprintf(&b, "Cash:      $%.2f\n", t.ResultingCashBalance)
	fmt.Fprintf(&b, "Holding:   %.6f %s", t.ResultingAssetBalance, baseAsset(symbol))
	return b.String()
}

// FormatSummary formats the ledger summary shown on shutdown and on /summary.
func FormatSummary(s model.LedgerSummary) string {
	if s.TotalTrades == 0 {
		return fmt.Sprintf("📊 No trades executed yet\nCash: $%.2f", s.CashBalance)
	}
	var b strings.Builder
	b.WriteString("📊 Trading summary\n")
	b.WriteString(rule + "\n")
	fmt.Fprintf(&b, "Total trades:     %d\n", s.TotalTrades)
	fmt.Fprintf(&b, "  Buys:           %d\n", s.Buys)
	fmt.Fprintf(&b, "  Sells:          %d\n", s.Sells)
	if s.Sells > 0 {
		fmt.Fprintf(&b, "Realized PnL:     $%+.2f\n", s.RealizedPnL)
	}
	if s.OpenCost > 0 {
		fmt.Fprintf(&b, "Open cost:        $%.2f\n", s.OpenCost)
	}
	fmt.Fprintf(&b, "Starting balance: $%.2f\n", s.StartingCashBalance)
	fmt.Fprintf(&b, "Cash balance:     $%.2f\n", s.CashBalance)
	fmt.Fprintf(&b, "Asset balance:    %.6f\n", s.AssetBalance)
	b.WriteString(rule)
	return b.String()
}

// FormatTrades lists trades, one per line.
func FormatTrades(trades []model.Trade) string {
	if len(trades) == 0 {
		return "No trades yet"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "🧾 Last %d trades\n", len(trades))
	for _, t := range trades {
		fmt.Fprintf(&b, "%s %-4s %.6f @ $%.2f ($%.2f)\n",
			t.Timestamp.Format("01-02 15:04"), t.Action, t.AssetAmount, t.Price, t.CashFlow)
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatTicker formats a price quote.
func FormatTicker(t *model.Ticker) string {
	return fmt.Sprintf("💱 %s: $%.2f (24h %+.2f%%, high $%.2f, low $%.2f, vol %.2f)",
		t.Symbol, t.Last, t.Percentage, t.High, t.Low, t.BaseVolume)
}
