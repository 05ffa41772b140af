package collector

import (
	"context"

	"CoinSentinel/internal/model"
)

// MarketSnapshotSource returns the full 24h ticker list in one call.
type MarketSnapshotSource interface {
	FetchTickers(ctx context.Context) ([]model.TickerSnapshot, error)
}

// PriceHistorySource returns recent candles for one symbol, oldest first.
type PriceHistorySource interface {
	FetchCandles(ctx context.Context, symbol, interval string, limit int) ([]model.Candle, error)
}

// Fetcher is a market data provider that serves both snapshot and history.
type Fetcher interface {
	MarketSnapshotSource
	PriceHistorySource
	Name() string
}
