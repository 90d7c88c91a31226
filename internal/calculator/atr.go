package calculator

import (
	"math"

	"TrendSentinel/internal/model"
)

// CalculateTrueRange returns the true range of every candle. The first
// candle has no previous close, so its true range is high-low.
func CalculateTrueRange(candles []model.Candle) []float64 {
	tr := make([]float64, len(candles))
	for i, c := range candles {
		if i == 0 {
			tr[i] = c.High - c.Low
			continue
		}
		prevClose := candles[i-1].Close
		tr[i] = math.Max(c.High-c.Low, math.Max(math.Abs(c.High-prevClose), math.Abs(c.Low-prevClose)))
	}
	return tr
}

// CalculateATR returns the simple-average true range over period candles,
// NaN for the first period-1 entries.
func CalculateATR(candles []model.Candle, period int) ([]float64, error) {
	return CalculateRollingSMA(CalculateTrueRange(candles), period)
}
