package collector

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"

	"CoinSentinel/internal/model"
)

const (
	tickerPath = "/api/v3/ticker/24hr"
	klinesPath = "/api/v3/klines"
)

// StatusError is returned when the exchange answers with a non-2xx status.
type StatusError struct {
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: status %d, body: %s", e.Endpoint, e.StatusCode, e.Body)
}

// BinanceOptions tunes the REST client.
type BinanceOptions struct {
	BaseURL           string
	Proxy             string
	Timeout           time.Duration
	RequestsPerSecond float64 // pacing for kline requests, <= 0 disables
}

// BinanceFetcher implements Fetcher against the Binance spot REST API.
type BinanceFetcher struct {
	client  *resty.Client
	limiter *rate.Limiter
}

// NewBinanceFetcher creates a fetcher with optional proxy support.
func NewBinanceFetcher(opts BinanceOptions) *BinanceFetcher {
	if opts.Timeout == 0 {
		opts.Timeout = 10 * time.Second
	}
	client := resty.New().
		SetBaseURL(strings.TrimSuffix(opts.BaseURL, "/")).
		SetTimeout(opts.Timeout).
		SetHeader("Accept", "application/json")
	if opts.Proxy != "" {
		client.SetProxy(opts.Proxy)
	}

	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}
	return &BinanceFetcher{
		client:  client,
		limiter: rate.NewLimiter(limit, 1),
	}
}

func (f *BinanceFetcher) Name() string { return "binance" }

// FetchTickers returns every pair from the 24h ticker endpoint.
func (f *BinanceFetcher) FetchTickers(ctx context.Context) ([]model.TickerSnapshot, error) {
	body, err := f.get(ctx, tickerPath, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch tickers: %w", err)
	}
	tickers, err := parseTickers(body)
	if err != nil {
		return nil, fmt.Errorf("decode tickers: %w", err)
	}
	return tickers, nil
}

// FetchCandles returns up to limit candles for symbol, oldest first.
func (f *BinanceFetcher) FetchCandles(ctx context.Context, symbol, interval string, limit int) ([]model.Candle, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("fetch klines %s: %w", symbol, err)
	}
	body, err := f.get(ctx, klinesPath, map[string]string{
		"symbol":   symbol,
		"interval": interval,
		"limit":    strconv.Itoa(limit),
	})
	if err != nil {
		return nil, fmt.Errorf("fetch klines %s: %w", symbol, err)
	}
	candles, err := parseKlines(body)
	if err != nil {
		return nil, fmt.Errorf("decode klines %s: %w", symbol, err)
	}
	return candles, nil
}

func (f *BinanceFetcher) get(ctx context.Context, path string, params map[string]string) ([]byte, error) {
	req := f.client.R().SetContext(ctx)
	if params != nil {
		req.SetQueryParams(params)
	}
	resp, err := req.Get(path)
	if err != nil {
		return nil, err
	}
	if !resp.IsSuccess() {
		return nil, &StatusError{Endpoint: path, StatusCode: resp.StatusCode(), Body: resp.String()}
	}
	return resp.Body(), nil
}

func parseTickers(body []byte) ([]model.TickerSnapshot, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("invalid json")
	}
	root := gjson.ParseBytes(body)
	if !root.IsArray() {
		return nil, fmt.Errorf("expected array, got %s", root.Type)
	}

	items := root.Array()
	tickers := make([]model.TickerSnapshot, 0, len(items))
	for i, item := range items {
		symbol := item.Get("symbol").String()
		if symbol == "" {
			return nil, fmt.Errorf("ticker %d: missing symbol", i)
		}
		last, err := parseNumber(item.Get("lastPrice"))
		if err != nil {
			return nil, fmt.Errorf("ticker %s lastPrice: %w", symbol, err)
		}
		change, err := parseNumber(item.Get("priceChangePercent"))
		if err != nil {
			return nil, fmt.Errorf("ticker %s priceChangePercent: %w", symbol, err)
		}
		high, err := parseNumber(item.Get("highPrice"))
		if err != nil {
			return nil, fmt.Errorf("ticker %s highPrice: %w", symbol, err)
		}
		tickers = append(tickers, model.TickerSnapshot{
			Symbol:        symbol,
			LastPrice:     last,
			ChangePercent: change,
			High24h:       high,
		})
	}
	return tickers, nil
}

// parseKlines reads positional kline rows:
// [openTime, open, high, low, close, volume, closeTime, ...]
func parseKlines(body []byte) ([]model.Candle, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("invalid json")
	}
	root := gjson.ParseBytes(body)
	if !root.IsArray() {
		return nil, fmt.Errorf("expected array, got %s", root.Type)
	}

	rows := root.Array()
	candles := make([]model.Candle, 0, len(rows))
	for i, row := range rows {
		fields := row.Array()
		if len(fields) < 5 {
			return nil, fmt.Errorf("kline %d: expected at least 5 fields, got %d", i, len(fields))
		}
		high, err := parseNumber(fields[2])
		if err != nil {
			return nil, fmt.Errorf("kline %d high: %w", i, err)
		}
		closePrice, err := parseNumber(fields[4])
		if err != nil {
			return nil, fmt.Errorf("kline %d close: %w", i, err)
		}
		candles = append(candles, model.Candle{
			OpenTime: fields[0].Int(),
			High:     high,
			Close:    closePrice,
		})
	}
	// Ensure chronological order
	sort.SliceStable(candles, func(i, j int) bool { return candles[i].OpenTime < candles[j].OpenTime })
	return candles, nil
}

// parseNumber accepts both JSON numbers and the quoted decimals Binance sends.
// NaN and infinities are rejected.
func parseNumber(r gjson.Result) (float64, error) {
	var v float64
	switch r.Type {
	case gjson.Number:
		v = r.Num
	case gjson.String:
		parsed, err := strconv.ParseFloat(r.Str, 64)
		if err != nil {
			return 0, fmt.Errorf("parse %q: %w", r.Str, err)
		}
		v = parsed
	default:
		return 0, fmt.Errorf("missing or non-numeric value")
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("non-finite value %q", r.Raw)
	}
	return v, nil
}
