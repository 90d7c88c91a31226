package fund

import (
	"errors"
	"fmt"
	"math"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"TrendSentinel/internal/metrics"
	"TrendSentinel/internal/model"
)

var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrNoPosition        = errors.New("no position to sell")
	ErrWrongPosition     = errors.New("signal ignored: wrong position state")
	ErrInvalidPrice      = errors.New("invalid price")
)

// Manager is the FLAT/LONG position state machine. It owns the ledger; every
// read and write goes through mu, and at most one trade is executed per call.
type Manager struct {
	mu          sync.Mutex
	ledger      *Ledger
	filePath    string
	tradeAmount float64
	dirty       bool
	now         func() time.Time
}

// NewManager creates a Manager, restoring the ledger from disk or starting a
// fresh one with startingCash.
func NewManager(filePath string, startingCash, tradeAmount float64) (*Manager, error) {
	if !(tradeAmount > 0) {
		return nil, errors.New("trade amount must be positive")
	}
	if !validBalance(startingCash) {
		return nil, errors.New("starting cash balance must be non-negative")
	}

	snap, err := LoadLedger(filePath)
	var ledger *Ledger
	switch {
	case errors.Is(err, ErrCorruptLedger):
		backup := fmt.Sprintf("%s.corrupt-%d", filePath, time.Now().Unix())
		if rerr := os.Rename(filePath, backup); rerr != nil {
			return nil, fmt.Errorf("move corrupt ledger aside: %w", rerr)
		}
		log.Warn().Err(err).Str("backup", backup).Msg("could not load previous session, starting fresh")
		ledger = newLedger(startingCash)
	case err != nil:
		return nil, fmt.Errorf("load ledger: %w", err)
	case snap == nil:
		log.Info().Str("file", filePath).Msg("no previous session, starting fresh")
		ledger = newLedger(startingCash)
	default:
		ledger = ledgerFromSnapshot(snap)
		log.Info().Int("trades", len(snap.Trades)).
			Str("position", string(ledger.Position())).
			Msg("loaded previous session")
	}

	m := &Manager{
		ledger:      ledger,
		filePath:    filePath,
		tradeAmount: tradeAmount,
		now:         time.Now,
	}
	_ = m.persist()
	return m, nil
}

// ApplySignal executes at most one simulated trade for sig at price.
// A nil trade with a nil error means there was nothing to do.
func (m *Manager) ApplySignal(sig model.Signal, price float64) (*model.Trade, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch sig {
	case model.SignalNone:
		return nil, nil
	case model.SignalBuy:
		if m.ledger.Position() == model.PositionLong {
			return nil, fmt.Errorf("%w: BUY while %s", ErrWrongPosition, model.PositionLong)
		}
		return m.buy(price)
	case model.SignalSell:
		if m.ledger.Position() == model.PositionFlat {
			return nil, fmt.Errorf("%w: SELL while %s", ErrWrongPosition, model.PositionFlat)
		}
		return m.sell(price)
	default:
		return nil, fmt.Errorf("unknown signal %q", sig)
	}
}

func (m *Manager) buy(price float64) (*model.Trade, error) {
	if !validPrice(price) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPrice, price)
	}
	acct := m.ledger.Account()
	if acct.CashBalance < m.tradeAmount {
		return nil, fmt.Errorf("%w: need %.2f, have %.2f", ErrInsufficientFunds, m.tradeAmount, acct.CashBalance)
	}

	amount := m.tradeAmount / price
	trade := model.Trade{
		ID:                    uuid.NewString(),
		Timestamp:             m.nextTimestamp(),
		Action:                model.ActionBuy,
		Price:                 price,
		AssetAmount:           amount,
		CashFlow:              m.tradeAmount,
		ResultingCashBalance:  acct.CashBalance - m.tradeAmount,
		ResultingAssetBalance: acct.AssetBalance + amount,
	}
	m.commit(trade)
	return &trade, nil
}

func (m *Manager) sell(price float64) (*model.Trade, error) {
	if !validPrice(price) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPrice, price)
	}
	acct := m.ledger.Account()
	if acct.AssetBalance <= 0 {
		return nil, ErrNoPosition
	}

	revenue := acct.AssetBalance * price
	trade := model.Trade{
		ID:                    uuid.NewString(),
		Timestamp:             m.nextTimestamp(),
		Action:                model.ActionSell,
		Price:                 price,
		AssetAmount:           acct.AssetBalance,
		CashFlow:              revenue,
		ResultingCashBalance:  acct.CashBalance + revenue,
		ResultingAssetBalance: 0,
	}
	m.commit(trade)
	return &trade, nil
}

func (m *Manager) commit(trade model.Trade) {
	m.ledger.append(trade)
	metrics.TradesTotal.WithLabelValues(string(trade.Action)).Inc()
	_ = m.persist()
}

// nextTimestamp keeps trade timestamps strictly increasing even if the wall
// clock stalls or steps back.
func (m *Manager) nextTimestamp() time.Time {
	ts := m.now().UTC()
	if last := m.ledger.lastTradeTime(); !ts.After(last) {
		ts = last.Add(time.Nanosecond)
	}
	return ts
}

// Flush rewrites the snapshot unconditionally.
func (m *Manager) Flush() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.persist()
}

// Dirty reports whether the last snapshot write failed.
func (m *Manager) Dirty() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dirty
}

// Position returns the current position.
func (m *Manager) Position() model.Position {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ledger.Position()
}

// GetAccount returns a copy of the current balances.
func (m *Manager) GetAccount() model.Account {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ledger.Account()
}

// Trades returns a copy of the trade history.
func (m *Manager) Trades() []model.Trade {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ledger.Trades()
}

func (m *Manager) Summary() model.LedgerSummary {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ledger.Summary()
}

func (m *Manager) Value(price float64) Valuation {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ledger.Value(price)
}

// persist must be called with mu held. Failures are logged, not returned to
// the trading path: the in-memory ledger stays authoritative and the next
// write carries the full snapshot.
func (m *Manager) persist() error {
	if err := SaveLedger(m.filePath, m.ledger.Snapshot()); err != nil {
		m.dirty = true
		metrics.PersistFailures.Inc()
		log.Warn().Err(err).Str("file", m.filePath).Msg("failed to save ledger snapshot")
		return err
	}
	m.dirty = false
	return nil
}

func validPrice(p float64) bool {
	return p > 0 && !math.IsInf(p, 0)
}
