package recorder

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TrendSentinel/internal/model"
)

func newTestRecorder(t *testing.T) *SQLiteRecorder {
	t.Helper()
	r, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "nested", "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func TestRecordTick(t *testing.T) {
	r := newTestRecorder(t)

	require.NoError(t, r.RecordTick(&TickEvent{
		Time:      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Symbol:    "ETH/USD",
		Price:     2000,
		InUptrend: true,
		Signal:    model.SignalNone,
		Position:  model.PositionFlat,
		Outcome:   "NONE",
	}))
	require.NoError(t, r.RecordTick(&TickEvent{Symbol: "ETH/USD", Price: 2001}))

	n, err := r.TickCount()
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestRecordAndReadTrades(t *testing.T) {
	r := newTestRecorder(t)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, action := range []model.Action{model.ActionBuy, model.ActionSell, model.ActionBuy} {
		require.NoError(t, r.RecordTrade(&model.Trade{
			ID:        string(rune('a' + i)),
			Timestamp: base.Add(time.Duration(i) * time.Minute),
			Action:    action,
			Price:     100 + float64(i),
			CashFlow:  500,
		}))
	}

	trades, err := r.RecentTrades(2)
	require.NoError(t, err)
	require.Len(t, trades, 2)
	assert.Equal(t, "b", trades[0].ID)
	assert.Equal(t, model.ActionSell, trades[0].Action)
	assert.Equal(t, "c", trades[1].ID)
	assert.True(t, trades[1].Timestamp.Equal(base.Add(2*time.Minute)))
	assert.Equal(t, 102.0, trades[1].Price)
}

func TestRecordTradeIsIdempotent(t *testing.T) {
	r := newTestRecorder(t)
	tr := &model.Trade{ID: "same", Timestamp: time.Now(), Action: model.ActionBuy}
	require.NoError(t, r.RecordTrade(tr))
	require.NoError(t, r.RecordTrade(tr))

	trades, err := r.RecentTrades(10)
	require.NoError(t, err)
	assert.Len(t, trades, 1)
}

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NewNoopRecorder()
	assert.NoError(t, r.RecordTick(&TickEvent{}))
	assert.NoError(t, r.RecordTrade(&model.Trade{}))
	trades, err := r.RecentTrades(5)
	assert.NoError(t, err)
	assert.Empty(t, trades)
	assert.NoError(t, r.Close())
}
