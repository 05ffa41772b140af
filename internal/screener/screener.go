package screener

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"CoinSentinel/internal/calculator"
	"CoinSentinel/internal/collector"
	"CoinSentinel/internal/model"
)

// MinCloses is the shortest candle window the indicator is computed on.
const MinCloses = 14

// Config holds the screening thresholds.
type Config struct {
	QuoteSuffix      string
	ChangeThreshold  float64
	ProximityRatio   float64
	CandleInterval   string
	CandleLimit      int
	RecentHighWindow int
	RSIPeriod        int
	Workers          int
}

// DefaultConfig returns the stock thresholds.
func DefaultConfig() Config {
	return Config{
		QuoteSuffix:      "USDT",
		ChangeThreshold:  10.0,
		ProximityRatio:   0.99,
		CandleInterval:   "1m",
		CandleLimit:      20,
		RecentHighWindow: 10,
		RSIPeriod:        14,
		Workers:          4,
	}
}

// Report is the outcome of a successful screening run.
type Report struct {
	Scanned  int
	Volatile []model.Candidate
	Skipped  []*SymbolError
	Alerts   model.RankedAlertList
}

// Screener runs the three-stage pipeline against a market data provider.
type Screener struct {
	Snapshots collector.MarketSnapshotSource
	History   collector.PriceHistorySource
	Config    Config
}

// NewScreener creates a new Screener.
func NewScreener(snapshots collector.MarketSnapshotSource, history collector.PriceHistorySource, cfg Config) *Screener {
	return &Screener{Snapshots: snapshots, History: history, Config: cfg}
}

// Run fetches the snapshot and screens it. Snapshot failures and
// cancellation are returned as *RunError.
func (s *Screener) Run(ctx context.Context) (*Report, error) {
	tickers, err := s.Snapshots.FetchTickers(ctx)
	if err != nil {
		return nil, &RunError{Stage: "fetch snapshot", Err: err}
	}
	return Screen(ctx, tickers, s.History, s.Config)
}

// Screen is the pure pipeline: volatility filter, proximity and momentum
// confirmation, ranking. Only the history source touches the network.
func Screen(ctx context.Context, tickers []model.TickerSnapshot, history collector.PriceHistorySource, cfg Config) (*Report, error) {
	volatile := FilterVolatile(tickers, cfg)
	log.Debug().Int("tickers", len(tickers)).Int("volatile", len(volatile)).Msg("volatility filter done")

	confirmed, skipped := confirm(ctx, volatile, history, cfg)
	if err := ctx.Err(); err != nil {
		return nil, &RunError{Stage: "confirm candidates", Err: err}
	}

	return &Report{
		Scanned:  len(tickers),
		Volatile: volatile,
		Skipped:  skipped,
		Alerts:   Rank(confirmed),
	}, nil
}

// FilterVolatile keeps tickers quoted in cfg.QuoteSuffix whose 24h change is
// strictly above cfg.ChangeThreshold. Input order is preserved.
func FilterVolatile(tickers []model.TickerSnapshot, cfg Config) []model.Candidate {
	var out []model.Candidate
	for _, t := range tickers {
		if !strings.HasSuffix(t.Symbol, cfg.QuoteSuffix) {
			continue
		}
		if t.ChangePercent <= cfg.ChangeThreshold {
			continue
		}
		out = append(out, model.Candidate{
			Symbol:        t.Symbol,
			Price:         t.LastPrice,
			ChangePercent: t.ChangePercent,
			High24h:       t.High24h,
		})
	}
	return out
}

// Evaluate applies the proximity and momentum checks to one candidate.
// It returns the candidate with RSI filled in and whether it was accepted.
func Evaluate(c model.Candidate, candles []model.Candle, cfg Config) (model.Candidate, bool, error) {
	if len(candles) < MinCloses {
		return c, false, fmt.Errorf("%w: %d closes, need %d", ErrInsufficientHistory, len(candles), MinCloses)
	}
	recentHigh, err := calculator.RecentHigh(candles, cfg.RecentHighWindow)
	if err != nil {
		return c, false, fmt.Errorf("recent high: %w", err)
	}
	rsi, err := calculator.CalculateRSI(calculator.ExtractCloses(candles), cfg.RSIPeriod)
	if err != nil {
		return c, false, fmt.Errorf("rsi: %w", err)
	}
	if !calculator.NearHigh(recentHigh, c.High24h, cfg.ProximityRatio) {
		return c, false, nil
	}
	c.RSI = rsi
	return c, true, nil
}

// Rank sorts candidates by ChangePercent descending. Ties keep their order.
func Rank(candidates []model.Candidate) model.RankedAlertList {
	ranked := make(model.RankedAlertList, len(candidates))
	copy(ranked, candidates)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].ChangePercent > ranked[j].ChangePercent
	})
	return ranked
}

type outcome struct {
	candidate model.Candidate
	accepted  bool
	err       *SymbolError
}

// confirm runs Evaluate for every candidate on a bounded worker pool.
// A failing symbol never cancels its siblings.
func confirm(ctx context.Context, candidates []model.Candidate, history collector.PriceHistorySource, cfg Config) ([]model.Candidate, []*SymbolError) {
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}

	results := make([]outcome, len(candidates))
	var g errgroup.Group
	g.SetLimit(workers)
	for i, c := range candidates {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			results[i] = confirmOne(ctx, c, history, cfg)
			return nil
		})
	}
	_ = g.Wait()

	var confirmed []model.Candidate
	var skipped []*SymbolError
	for _, r := range results {
		switch {
		case r.err != nil:
			skipped = append(skipped, r.err)
		case r.accepted:
			confirmed = append(confirmed, r.candidate)
		}
	}
	return confirmed, skipped
}

func confirmOne(ctx context.Context, c model.Candidate, history collector.PriceHistorySource, cfg Config) outcome {
	candles, err := history.FetchCandles(ctx, c.Symbol, cfg.CandleInterval, cfg.CandleLimit)
	if err != nil {
		log.Warn().Err(err).Str("symbol", c.Symbol).Msg("skip symbol: candle fetch failed")
		return outcome{err: &SymbolError{Symbol: c.Symbol, Err: err}}
	}
	enriched, ok, err := Evaluate(c, candles, cfg)
	if err != nil {
		log.Warn().Err(err).Str("symbol", c.Symbol).Msg("skip symbol")
		return outcome{err: &SymbolError{Symbol: c.Symbol, Err: err}}
	}
	if !ok {
		log.Debug().Str("symbol", c.Symbol).Msg("not near 24h high")
	}
	return outcome{candidate: enriched, accepted: ok}
}
