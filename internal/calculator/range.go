package calculator

import (
	"errors"
	"math"

	"CoinSentinel/internal/model"
)

// RecentHigh returns the highest High over the most recent `window` candles.
// Shorter inputs are scanned in full.
func RecentHigh(candles []model.Candle, window int) (float64, error) {
	if window <= 0 {
		return 0, errors.New("window must be positive")
	}
	if len(candles) == 0 {
		return 0, errors.New("no candles provided")
	}
	n := len(candles)
	start := n - window
	if start < 0 {
		start = 0
	}
	high := math.Inf(-1)
	for i := start; i < n; i++ {
		if candles[i].High > high {
			high = candles[i].High
		}
	}
	return high, nil
}

// NearHigh reports whether recentHigh is within ratio of the reference high.
// The comparison is inclusive.
func NearHigh(recentHigh, high24h, ratio float64) bool {
	return recentHigh >= high24h*ratio
}

// ExtractCloses returns the close prices in candle order.
func ExtractCloses(candles []model.Candle) []float64 {
	closes := make([]float64, len(candles))
	for i, c := range candles {
		closes[i] = c.Close
	}
	return closes
}
