package calculator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateSMA(t *testing.T) {
	sma, err := CalculateSMA([]float64{1, 2, 3, 4, 5}, 3)
	require.NoError(t, err)
	assert.InDelta(t, 4.0, sma, 1e-9)

	_, err = CalculateSMA([]float64{1, 2}, 3)
	assert.Error(t, err)

	_, err = CalculateSMA([]float64{1, 2}, 0)
	assert.Error(t, err)
}

func TestCalculateRollingSMA_WarmUp(t *testing.T) {
	out, err := CalculateRollingSMA([]float64{2, 4, 6, 8}, 3)
	require.NoError(t, err)
	require.Len(t, out, 4)
	assert.True(t, math.IsNaN(out[0]))
	assert.True(t, math.IsNaN(out[1]))
	assert.InDelta(t, 4.0, out[2], 1e-9)
	assert.InDelta(t, 6.0, out[3], 1e-9)
}
