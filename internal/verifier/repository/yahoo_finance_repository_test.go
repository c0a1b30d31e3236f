package repository

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finfluencer-tracker/internal/verifier/config"
	"finfluencer-tracker/pkg/logger"
	"finfluencer-tracker/pkg/metrics"
	"finfluencer-tracker/pkg/utils"
)

const niftyChartJSON = `{
  "chart": {
    "result": [{
      "meta": {"symbol": "^NSEI", "currency": "INR", "gmtoffset": 19800},
      "timestamp": [1701402300, 1701661500, 1701747900, 1701834300, 1703907900],
      "indicators": {"quote": [{"close": [19000.0, 21800.0, null, 18900.0, 21500.0]}]}
    }],
    "error": null
  }
}`

func newTestYahooRepo(t *testing.T, handler http.HandlerFunc) (*yahooFinanceRepository, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	repo := NewYahooFinanceRepository(config.MarketData{
		BaseURL:         srv.URL,
		CacheTTL:        time.Minute,
		MaxRetryElapsed: 3 * time.Second,
	}, logger.NewNop(), metrics.NewRegistry()).(*yahooFinanceRepository)
	return repo, srv
}

func TestYahooFinanceRepository_GetPriceRange(t *testing.T) {
	var calls int32
	var gotPath, gotInterval string
	repo, _ := newTestYahooRepo(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		gotPath = r.URL.Path
		gotInterval = r.URL.Query().Get("interval")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(niftyChartJSON))
	})

	start, end := utils.Date(2023, 12, 1), utils.Date(2023, 12, 31)
	pr, err := repo.GetPriceRange(context.Background(), "NIFTY 50", start, end)
	require.NoError(t, err)
	require.NotNil(t, pr)

	assert.Equal(t, "/v8/finance/chart/^NSEI", gotPath)
	assert.Equal(t, "1d", gotInterval)
	assert.Equal(t, 19000.0, pr.StartPrice)
	assert.Equal(t, 21500.0, pr.EndPrice)
	assert.Equal(t, 21800.0, pr.High)
	assert.Equal(t, 18900.0, pr.Low)
	assert.Equal(t, "2023-12-01", pr.StartDate)
	assert.Equal(t, "2023-12-30", pr.EndDate)
	assert.Equal(t, DataSourceYahooFinance, pr.Source)

	_, err = repo.GetPriceRange(context.Background(), "nifty", start, end)
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "second lookup is served from cache")
}

func TestYahooFinanceRepository_NotFoundIsNoData(t *testing.T) {
	repo, _ := newTestYahooRepo(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`))
	})

	pr, err := repo.GetPriceRange(context.Background(), "NOSUCHCO", utils.Date(2023, 1, 1), utils.Date(2023, 1, 31))
	require.NoError(t, err)
	assert.Nil(t, pr)
}

func TestYahooFinanceRepository_EmptySeriesIsNoData(t *testing.T) {
	repo, _ := newTestYahooRepo(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"chart":{"result":[{"meta":{"symbol":"X.NS"},"timestamp":[1701402300],"indicators":{"quote":[{"close":[null]}]}}],"error":null}}`))
	})

	pr, err := repo.GetPriceRange(context.Background(), "X", utils.Date(2023, 12, 1), utils.Date(2023, 12, 2))
	require.NoError(t, err)
	assert.Nil(t, pr)
}

func TestYahooFinanceRepository_UnknownAssetSkipsRequest(t *testing.T) {
	var calls int32
	repo, _ := newTestYahooRepo(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	})

	pr, err := repo.GetPriceRange(context.Background(), "real estate (tier 2)", utils.Date(2023, 1, 1), utils.Date(2023, 2, 1))
	require.NoError(t, err)
	assert.Nil(t, pr)
	assert.Zero(t, atomic.LoadInt32(&calls))
}

func TestYahooFinanceRepository_RetriesServerErrors(t *testing.T) {
	var calls int32
	repo, _ := newTestYahooRepo(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(niftyChartJSON))
	})

	pr, err := repo.GetPriceRange(context.Background(), "NIFTY", utils.Date(2023, 12, 1), utils.Date(2023, 12, 31))
	require.NoError(t, err)
	require.NotNil(t, pr)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestYahooFinanceRepository_ClientErrorIsNotRetried(t *testing.T) {
	var calls int32
	repo, _ := newTestYahooRepo(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := repo.GetPriceRange(context.Background(), "TCS", utils.Date(2023, 12, 1), utils.Date(2023, 12, 31))
	require.Error(t, err)

	var statusErr *HTTPStatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusUnauthorized, statusErr.StatusCode)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}
