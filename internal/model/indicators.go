package model

// IndicatorRow is the SuperTrend state derived for one candle.
// ATR and both bands are NaN while Ready is false (ATR warm-up).
type IndicatorRow struct {
	TrueRange float64
	ATR       float64
	UpperBand float64
	LowerBand float64
	InUptrend bool
	Ready     bool
}
