package collector

import (
	"context"
	"fmt"

	"CoinSentinel/internal/model"
)

// MockFetcher serves fixed data for development and tests.
type MockFetcher struct {
	Tickers    []model.TickerSnapshot
	TickersErr error
	Candles    map[string][]model.Candle
	CandleErrs map[string]error
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchTickers(ctx context.Context) ([]model.TickerSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.TickersErr != nil {
		return nil, m.TickersErr
	}
	return m.Tickers, nil
}

func (m *MockFetcher) FetchCandles(ctx context.Context, symbol, _ string, limit int) ([]model.Candle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err, ok := m.CandleErrs[symbol]; ok {
		return nil, err
	}
	candles, ok := m.Candles[symbol]
	if !ok {
		return nil, fmt.Errorf("mock: no candles for %s", symbol)
	}
	if limit > 0 && len(candles) > limit {
		candles = candles[len(candles)-limit:]
	}
	return candles, nil
}
