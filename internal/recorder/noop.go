package recorder

import "TrendSentinel/internal/model"

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordTick(_ *TickEvent) error             { return nil }
func (n *NoopRecorder) RecordTrade(_ *model.Trade) error          { return nil }
func (n *NoopRecorder) RecentTrades(_ int) ([]model.Trade, error) { return nil, nil }
func (n *NoopRecorder) Close() error                              { return nil }
