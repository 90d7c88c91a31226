package calculator

import (
	"errors"
	"fmt"
	"math"

	"TrendSentinel/internal/model"
)

// ErrInsufficientData is returned when the candle window is not longer than the period.
var ErrInsufficientData = errors.New("insufficient data")

// CalculateSuperTrend derives one IndicatorRow per candle. Each row is folded
// from the previous row's finalized bands, so the result depends only on the
// window and the two parameters.
func CalculateSuperTrend(candles []model.Candle, period int, multiplier float64) ([]model.IndicatorRow, error) {
	if period <= 0 {
		return nil, errors.New("period must be positive")
	}
	if !(multiplier > 0) {
		return nil, errors.New("multiplier must be positive")
	}
	if len(candles) <= period {
		return nil, fmt.Errorf("%w: need more than %d candles, got %d", ErrInsufficientData, period, len(candles))
	}

	tr := CalculateTrueRange(candles)
	atr, err := CalculateRollingSMA(tr, period)
	if err != nil {
		return nil, err
	}

	rows := make([]model.IndicatorRow, len(candles))
	rows[0] = seedRow(candles[0], tr[0], atr[0], multiplier)
	for i := 1; i < len(candles); i++ {
		rows[i] = nextRow(rows[i-1], candles[i], tr[i], atr[i], multiplier)
	}
	return rows, nil
}

func seedRow(c model.Candle, tr, atr, multiplier float64) model.IndicatorRow {
	upper, lower := rawBands(c, atr, multiplier)
	return model.IndicatorRow{
		TrueRange: tr,
		ATR:       atr,
		UpperBand: upper,
		LowerBand: lower,
		InUptrend: true,
		Ready:     !math.IsNaN(atr),
	}
}

// nextRow applies the breakout test against prev's bands, then ratchets the
// band that trails the prevailing trend. A flip resets both bands to raw.
func nextRow(prev model.IndicatorRow, c model.Candle, tr, atr, multiplier float64) model.IndicatorRow {
	row := model.IndicatorRow{
		TrueRange: tr,
		ATR:       atr,
		InUptrend: prev.InUptrend,
		Ready:     !math.IsNaN(atr),
	}

	// NaN bands compare false, so warm-up rows never break out.
	switch {
	case c.Close > prev.UpperBand:
		row.InUptrend = true
	case c.Close < prev.LowerBand:
		row.InUptrend = false
	}

	row.UpperBand, row.LowerBand = rawBands(c, atr, multiplier)
	if !row.Ready || row.InUptrend != prev.InUptrend {
		return row
	}
	if row.InUptrend {
		row.LowerBand = ratchetUp(row.LowerBand, prev.LowerBand)
	} else {
		row.UpperBand = ratchetDown(row.UpperBand, prev.UpperBand)
	}
	return row
}

func rawBands(c model.Candle, atr, multiplier float64) (upper, lower float64) {
	mid := (c.High + c.Low) / 2
	return mid + multiplier*atr, mid - multiplier*atr
}

// ratchetUp keeps the higher of the raw and previous lower band.
func ratchetUp(raw, prev float64) float64 {
	if math.IsNaN(prev) || raw >= prev {
		return raw
	}
	return prev
}

// ratchetDown keeps the lower of the raw and previous upper band.
func ratchetDown(raw, prev float64) float64 {
	if math.IsNaN(prev) || raw <= prev {
		return raw
	}
	return prev
}
