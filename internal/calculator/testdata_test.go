package calculator

import (
	"math"
	"time"

	"TrendSentinel/internal/model"
)

var baseTime = time.Date(2025, 1, 6, 12, 0, 0, 0, time.UTC)

// flatCandles returns n candles closing at price with a fixed 2-point range.
func flatCandles(n int, price float64) []model.Candle {
	candles := make([]model.Candle, n)
	for i := range candles {
		candles[i] = model.Candle{
			Time:   baseTime.Add(time.Duration(i) * 5 * time.Minute),
			Open:   price,
			High:   price + 1,
			Low:    price - 1,
			Close:  price,
			Volume: 10,
		}
	}
	return candles
}

// reversalCandles is ten flat candles at 100, a drop to 80 that breaks the
// lower band, then a rally to 200 that breaks the upper band.
func reversalCandles() []model.Candle {
	candles := flatCandles(10, 100)
	candles = append(candles,
		model.Candle{Time: baseTime.Add(50 * time.Minute), Open: 100, High: 100, Low: 80, Close: 80, Volume: 10},
		model.Candle{Time: baseTime.Add(55 * time.Minute), Open: 190, High: 200, Low: 190, Close: 200, Volume: 10},
	)
	return candles
}

// waveCandles oscillates the close around 100 with a constant 2-point range.
func waveCandles(n int) []model.Candle {
	candles := make([]model.Candle, n)
	for i := range candles {
		c := 100 + 10*math.Sin(float64(i)/5)
		candles[i] = model.Candle{
			Time:   baseTime.Add(time.Duration(i) * 5 * time.Minute),
			Open:   c,
			High:   c + 1,
			Low:    c - 1,
			Close:  c,
			Volume: 10,
		}
	}
	return candles
}
