package fund

import (
	"time"

	"TrendSentinel/internal/model"
)

// Ledger is the account plus its append-only trade history. Balances only
// change through append, which takes them from the trade being recorded.
type Ledger struct {
	account model.Account
	trades  []model.Trade
}

// Valuation marks the account to a price.
type Valuation struct {
	PortfolioValue float64
	TotalPnL       float64
	TotalPnLPct    float64
	UnrealizedPnL  float64
}

func newLedger(startingCash float64) *Ledger {
	return &Ledger{
		account: model.Account{
			CashBalance:         startingCash,
			StartingCashBalance: startingCash,
		},
	}
}

func ledgerFromSnapshot(snap *model.LedgerSnapshot) *Ledger {
	trades := make([]model.Trade, len(snap.Trades))
	copy(trades, snap.Trades)
	return &Ledger{account: snap.Account, trades: trades}
}

// Position is LONG iff the asset balance is positive.
func (l *Ledger) Position() model.Position {
	if l.account.AssetBalance > 0 {
		return model.PositionLong
	}
	return model.PositionFlat
}

func (l *Ledger) Account() model.Account { return l.account }

// Trades returns a copy of the history.
func (l *Ledger) Trades() []model.Trade {
	cp := make([]model.Trade, len(l.trades))
	copy(cp, l.trades)
	return cp
}

// Snapshot returns the persistable form of the ledger.
func (l *Ledger) Snapshot() *model.LedgerSnapshot {
	return &model.LedgerSnapshot{Account: l.account, Trades: l.Trades()}
}

func (l *Ledger) append(t model.Trade) {
	l.trades = append(l.trades, t)
	l.account.CashBalance = t.ResultingCashBalance
	l.account.AssetBalance = t.ResultingAssetBalance
}

func (l *Ledger) lastTradeTime() time.Time {
	if len(l.trades) == 0 {
		return time.Time{}
	}
	return l.trades[len(l.trades)-1].Timestamp
}

// Summary pairs each sell with the earliest unmatched buy, in the order the
// trades were executed, to compute realized P&L.
func (l *Ledger) Summary() model.LedgerSummary {
	s := model.LedgerSummary{
		TotalTrades:         len(l.trades),
		StartingCashBalance: l.account.StartingCashBalance,
		CashBalance:         l.account.CashBalance,
		AssetBalance:        l.account.AssetBalance,
	}
	var open []float64
	for _, t := range l.trades {
		switch t.Action {
		case model.ActionBuy:
			s.Buys++
			open = append(open, t.CashFlow)
		case model.ActionSell:
			s.Sells++
			if len(open) > 0 {
				s.RealizedPnL += t.CashFlow - open[0]
				open = open[1:]
			}
		}
	}
	for _, cost := range open {
		s.OpenCost += cost
	}
	return s
}

// Value marks the ledger to price.
func (l *Ledger) Value(price float64) Valuation {
	acct := l.account
	v := Valuation{PortfolioValue: acct.CashBalance + acct.AssetBalance*price}
	v.TotalPnL = v.PortfolioValue - acct.StartingCashBalance
	if acct.StartingCashBalance > 0 {
		v.TotalPnLPct = v.TotalPnL / acct.StartingCashBalance * 100
	}
	if acct.AssetBalance > 0 {
		v.UnrealizedPnL = acct.AssetBalance*price - l.Summary().OpenCost
	}
	return v
}

// SummarizeSnapshot summarizes a persisted ledger without loading a Manager.
func SummarizeSnapshot(snap *model.LedgerSnapshot) model.LedgerSummary {
	return ledgerFromSnapshot(snap).Summary()
}
