package calculator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateRSI_MonotonicRise(t *testing.T) {
	closes := make([]float64, 20)
	for i := range closes {
		closes[i] = 100 + float64(i)*0.5
	}
	rsi, err := CalculateRSI(closes, 14)
	require.NoError(t, err)
	assert.InDelta(t, 100.0, rsi, 1e-9)

	for i, v := range RSISeries(closes, 14) {
		assert.GreaterOrEqualf(t, v, 0.0, "index %d", i)
		assert.LessOrEqualf(t, v, 100.0, "index %d", i)
	}
}

func TestCalculateRSI_FlatSeries(t *testing.T) {
	closes := make([]float64, 15)
	for i := range closes {
		closes[i] = 42
	}
	rsi, err := CalculateRSI(closes, 14)
	require.NoError(t, err)
	assert.Equal(t, 100.0, rsi)
}

func TestCalculateRSI_KnownValue(t *testing.T) {
	// averages start at 0: gain 1/14 -> 13/196, loss 0 -> 1/14, RS = 13/14
	rsi, err := CalculateRSI([]float64{1, 2, 1}, 14)
	require.NoError(t, err)
	assert.InDelta(t, 100.0-100.0/(1.0+13.0/14.0), rsi, 1e-9)
}

// Expected values come from ta.momentum.RSIIndicator(window=14), last row.
func TestCalculateRSI_ChartingReference(t *testing.T) {
	tests := []struct {
		name   string
		closes []float64
		want   float64
	}{
		{
			name: "large first move up",
			closes: []float64{100, 112, 111, 113, 112.5, 114, 113.2, 115, 116, 115.4,
				117, 116.8, 118, 119, 118.5, 120, 121, 120.2, 122, 123},
			want: 84.86325046191669,
		},
		{
			name: "first move down, minimum window",
			closes: []float64{50, 47, 47.5, 48, 48.2, 48.1, 48.6, 49, 48.8, 49.3,
				49.9, 49.7, 50.2, 50.6},
			want: 63.92430288992805,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rsi, err := CalculateRSI(tt.closes, 14)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, rsi, 1e-9)
		})
	}
}

func TestCalculateRSI_MonotonicFall(t *testing.T) {
	closes := make([]float64, 20)
	for i := range closes {
		closes[i] = 100 - float64(i)
	}
	rsi, err := CalculateRSI(closes, 14)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, rsi, 1e-9)
}

func TestCalculateRSI_Errors(t *testing.T) {
	_, err := CalculateRSI([]float64{1, 2, 3}, 0)
	assert.Error(t, err)
	_, err = CalculateRSI([]float64{1}, 14)
	assert.Error(t, err)
}

func TestRSISeries_Alignment(t *testing.T) {
	closes := []float64{10, 11, 10.5, 12, 11.8, 13}
	var idx []int
	for i, v := range RSISeries(closes, 14) {
		idx = append(idx, i)
		assert.True(t, v >= 0 && v <= 100)
	}
	assert.Equal(t, []int{1, 2, 3, 4, 5}, idx)
}

func TestRSISeries_StopsEarly(t *testing.T) {
	closes := []float64{1, 2, 3, 4, 5}
	count := 0
	for range RSISeries(closes, 14) {
		count++
		if count == 2 {
			break
		}
	}
	assert.Equal(t, 2, count)
}
