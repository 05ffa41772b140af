package collector

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

const tickerJSON = `[
	{"symbol":"AAAUSDT","lastPrice":"1.2345","priceChangePercent":"15.20","highPrice":"1.3000"},
	{"symbol":"BBBBTC","lastPrice":"0.0001","priceChangePercent":"-2.00","highPrice":"0.0002"}
]`

const klinesJSON = `[
	[1700000060000,"1.0","1.10","0.9","1.05","100",1700000119999],
	[1700000000000,"1.0","1.20","0.9","1.00","100",1700000059999]
]`

func newTestServer(t *testing.T, handler http.HandlerFunc) *BinanceFetcher {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewBinanceFetcher(BinanceOptions{BaseURL: srv.URL, Timeout: 2 * time.Second})
}

func TestBinanceFetcher_FetchTickers(t *testing.T) {
	f := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, tickerPath, r.URL.Path)
		w.Write([]byte(tickerJSON))
	})

	tickers, err := f.FetchTickers(context.Background())
	require.NoError(t, err)
	require.Len(t, tickers, 2)
	assert.Equal(t, "AAAUSDT", tickers[0].Symbol)
	assert.InDelta(t, 1.2345, tickers[0].LastPrice, 1e-12)
	assert.InDelta(t, 15.2, tickers[0].ChangePercent, 1e-12)
	assert.InDelta(t, 1.3, tickers[0].High24h, 1e-12)
}

func TestBinanceFetcher_FetchTickersStatusError(t *testing.T) {
	f := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	_, err := f.FetchTickers(context.Background())
	require.Error(t, err)
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusInternalServerError, se.StatusCode)
}

func TestBinanceFetcher_FetchTickersMalformed(t *testing.T) {
	cases := map[string]string{
		"not json":     `{{{`,
		"not an array": `{"symbol":"X"}`,
		"bad number":   `[{"symbol":"AUSDT","lastPrice":"abc","priceChangePercent":"1","highPrice":"1"}]`,
		"missing high": `[{"symbol":"AUSDT","lastPrice":"1","priceChangePercent":"1"}]`,
		"infinite change": `[{"symbol":"AUSDT","lastPrice":"1","priceChangePercent":"Inf","highPrice":"1"}]`,
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			f := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(payload))
			})
			_, err := f.FetchTickers(context.Background())
			assert.Error(t, err)
		})
	}
}

func TestBinanceFetcher_FetchCandles(t *testing.T) {
	f := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, klinesPath, r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "AAAUSDT", q.Get("symbol"))
		assert.Equal(t, "1m", q.Get("interval"))
		assert.Equal(t, "20", q.Get("limit"))
		w.Write([]byte(klinesJSON))
	})

	candles, err := f.FetchCandles(context.Background(), "AAAUSDT", "1m", 20)
	require.NoError(t, err)
	require.Len(t, candles, 2)
	// sorted oldest first
	assert.Equal(t, int64(1700000000000), candles[0].OpenTime)
	assert.InDelta(t, 1.20, candles[0].High, 1e-12)
	assert.InDelta(t, 1.05, candles[1].Close, 1e-12)
}

func TestBinanceFetcher_FetchCandlesShortRow(t *testing.T) {
	f := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[[1700000000000,"1.0","1.1"]]`))
	})
	_, err := f.FetchCandles(context.Background(), "AAAUSDT", "1m", 20)
	assert.Error(t, err)
}

func TestBinanceFetcher_FetchCandlesNonFinite(t *testing.T) {
	for _, raw := range []string{"NaN", "nan", "+Inf", "-Infinity"} {
		t.Run(raw, func(t *testing.T) {
			f := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`[[1700000000000,"1.0","1.1","0.9","` + raw + `","100"]]`))
			})
			_, err := f.FetchCandles(context.Background(), "AAAUSDT", "1m", 20)
			assert.Error(t, err)
		})
	}
}

func TestBinanceFetcher_FetchCandlesCancelled(t *testing.T) {
	f := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(klinesJSON))
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := f.FetchCandles(ctx, "AAAUSDT", "1m", 20)
	assert.Error(t, err)
}

func TestNewBinanceFetcher_Pacing(t *testing.T) {
	paced := NewBinanceFetcher(BinanceOptions{BaseURL: "http://localhost", RequestsPerSecond: 5})
	assert.Equal(t, rate.Limit(5), paced.limiter.Limit())

	unpaced := NewBinanceFetcher(BinanceOptions{BaseURL: "http://localhost", RequestsPerSecond: 0})
	assert.Equal(t, rate.Inf, unpaced.limiter.Limit())
}
