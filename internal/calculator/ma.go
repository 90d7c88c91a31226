package calculator

import (
	"errors"
	"math"
)

// CalculateSMA computes the simple moving average of the last period values.
func CalculateSMA(values []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(values) < period {
		return 0, errors.New("not enough data for SMA calculation")
	}
	sum := 0.0
	for i := len(values) - period; i < len(values); i++ {
		sum += values[i]
	}
	return sum / float64(period), nil
}

// CalculateRollingSMA returns the SMA ending at every index. Entries before
// period-1 have no value and are NaN.
func CalculateRollingSMA(values []float64, period int) ([]float64, error) {
	if period <= 0 {
		return nil, errors.New("period must be positive")
	}
	out := make([]float64, len(values))
	for i := range values {
		if i < period-1 {
			out[i] = math.NaN()
			continue
		}
		sma, err := CalculateSMA(values[:i+1], period)
		if err != nil {
			return nil, err
		}
		out[i] = sma
	}
	return out, nil
}
