package model

import "time"

// Position is derived from the asset balance: LONG iff AssetBalance > 0.
type Position string

const (
	PositionFlat Position = "FLAT"
	PositionLong Position = "LONG"
)

// Account holds the simulated balances.
type Account struct {
	CashBalance         float64 `json:"cash_balance"`
	AssetBalance        float64 `json:"asset_balance"`
	StartingCashBalance float64 `json:"starting_cash_balance"`
}

// Trade is one executed simulated trade. CashFlow is the cash moved:
// cost for a buy, revenue for a sell.
type Trade struct {
	ID                    string    `json:"id"`
	Timestamp             time.Time `json:"timestamp"`
	Action                Action    `json:"action"`
	Price                 float64   `json:"price"`
	AssetAmount           float64   `json:"asset_amount"`
	CashFlow              float64   `json:"cash_flow"`
	ResultingCashBalance  float64   `json:"resulting_cash_balance"`
	ResultingAssetBalance float64   `json:"resulting_asset_balance"`
}

// LedgerSnapshot is the persisted ledger.
type LedgerSnapshot struct {
	Account   Account   `json:"account"`
	Trades    []Trade   `json:"trades"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LedgerSummary aggregates the trade history.
type LedgerSummary struct {
	TotalTrades         int
	Buys                int
	Sells               int
	RealizedPnL         float64
	OpenCost            float64 // cost of the buy not yet matched by a sell
	StartingCashBalance float64
	CashBalance         float64
	AssetBalance        float64
}
