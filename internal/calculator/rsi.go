package calculator

import (
	"errors"
	"iter"
)

// RSISeries lazily yields the Wilder-smoothed RSI for every close from index 1
// onwards, paired with that close's index. The missing change before the first
// close counts as zero gain and zero loss, so both averages start at 0 and are
// smoothed with alpha = 1/period. This reproduces the ewm(alpha=1/period,
// adjust=False) RSI common charting libraries compute.
func RSISeries(closes []float64, period int) iter.Seq2[int, float64] {
	return func(yield func(int, float64) bool) {
		if period <= 0 || len(closes) < 2 {
			return
		}
		var avgGain, avgLoss float64
		for i := 1; i < len(closes); i++ {
			gain, loss := splitChange(closes[i] - closes[i-1])
			avgGain = (avgGain*float64(period-1) + gain) / float64(period)
			avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
			if !yield(i, rsiFromAverages(avgGain, avgLoss)) {
				return
			}
		}
	}
}

// CalculateRSI returns the most recent value of RSISeries.
func CalculateRSI(closes []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(closes) < 2 {
		return 0, errors.New("not enough data for RSI calculation")
	}
	var last float64
	for _, v := range RSISeries(closes, period) {
		last = v
	}
	return last, nil
}

func splitChange(change float64) (gain, loss float64) {
	if change > 0 {
		return change, 0
	}
	return 0, -change
}

// rsiFromAverages saturates at 100 when there were no losses.
func rsiFromAverages(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100.0
	}
	rs := avgGain / avgLoss
	return 100.0 - 100.0/(1.0+rs)
}
