package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"finfluencer-tracker/internal/verifier/config"
	"finfluencer-tracker/internal/verifier/dto"
	"finfluencer-tracker/pkg/logger"
	"finfluencer-tracker/pkg/metrics"
	"finfluencer-tracker/pkg/ratelimit"
	"finfluencer-tracker/pkg/utils"

	"github.com/cenkalti/backoff/v4"
	"github.com/patrickmn/go-cache"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

// DataSourceYahooFinance is recorded as the market data source of outcomes
// resolved through this repository.
const DataSourceYahooFinance = "yahoo_finance"

var errSymbolNotFound = errors.New("symbol not found")

// HTTPStatusError represents a non-200 response from an upstream API.
type HTTPStatusError struct {
	StatusCode int
	Body       string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

type yahooChartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol    string `json:"symbol"`
				Currency  string `json:"currency"`
				GMTOffset int    `json:"gmtoffset"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

type yahooFinanceRepository struct {
	cfg     config.MarketData
	client  *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
	cache   *cache.Cache
	logger  *logger.Logger
	metrics *metrics.Registry
}

// NewYahooFinanceRepository creates a MarketDataRepository backed by the
// Yahoo Finance chart API. Daily closes are cached in memory for CacheTTL.
func NewYahooFinanceRepository(cfg config.MarketData, log *logger.Logger, m *metrics.Registry) MarketDataRepository {
	if cfg.MaxRetryElapsed <= 0 {
		cfg.MaxRetryElapsed = 30 * time.Second
	}
	st := gobreaker.Settings{
		Name:     "yahoo_finance",
		Interval: 60 * time.Second,
		Timeout:  60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, errSymbolNotFound)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("Circuit breaker state changed",
				logger.StringField("breaker", name),
				logger.StringField("from", from.String()),
				logger.StringField("to", to.String()),
			)
		},
	}

	return &yahooFinanceRepository{
		cfg:     cfg,
		client:  &http.Client{Timeout: cfg.Timeout},
		limiter: ratelimit.NewRequestLimiter(cfg.MaxRequestPerMinute),
		breaker: gobreaker.NewCircuitBreaker(st),
		cache:   cache.New(cfg.CacheTTL, 2*cfg.CacheTTL),
		logger:  log,
		metrics: m,
	}
}

// GetPriceRange reduces the daily close series between start and end
// (inclusive) to its first, last, highest and lowest close.
func (r *yahooFinanceRepository) GetPriceRange(ctx context.Context, asset string, start, end time.Time) (*dto.PriceRange, error) {
	symbol := ResolveSymbol(asset)
	if symbol == "" {
		r.logger.DebugContext(ctx, "No market symbol for asset", logger.StringField("asset", asset))
		r.metrics.ObserveMarketData("no_data")
		return nil, nil
	}

	key := symbol + "|" + utils.FormatDate(start) + "|" + utils.FormatDate(end)
	if cached, ok := r.cache.Get(key); ok {
		r.metrics.ObserveMarketData("hit")
		pr, _ := cached.(*dto.PriceRange)
		return pr, nil
	}
	r.metrics.ObserveMarketData("miss")

	result, err := r.breaker.Execute(func() (interface{}, error) {
		return r.fetchChart(ctx, symbol, start, end)
	})
	if errors.Is(err, errSymbolNotFound) {
		r.cache.SetDefault(key, (*dto.PriceRange)(nil))
		r.metrics.ObserveMarketData("no_data")
		return nil, nil
	}
	if err != nil {
		r.metrics.ObserveMarketData("error")
		return nil, fmt.Errorf("failed to fetch %s from yahoo finance: %w", symbol, err)
	}

	pr := reducePriceSeries(result.(*yahooChartResponse))
	if pr == nil {
		r.metrics.ObserveMarketData("no_data")
	}
	r.cache.SetDefault(key, pr)
	return pr, nil
}

func (r *yahooFinanceRepository) fetchChart(ctx context.Context, symbol string, start, end time.Time) (*yahooChartResponse, error) {
	params := url.Values{}
	params.Set("period1", strconv.FormatInt(start.Unix(), 10))
	params.Set("period2", strconv.FormatInt(end.AddDate(0, 0, 1).Unix(), 10))
	params.Set("interval", "1d")
	params.Set("events", "history")
	apiURL := fmt.Sprintf("%s/v8/finance/chart/%s?%s", r.cfg.BaseURL, url.PathEscape(symbol), params.Encode())

	var chart yahooChartResponse
	operation := func() error {
		if err := r.limiter.Wait(ctx); err != nil {
			return backoff.Permanent(err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
		}
		req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; finfluencer-tracker/1.0)")
		req.Header.Set("Accept", "application/json")

		resp, err := r.client.Do(req)
		if err != nil {
			return fmt.Errorf("failed to send request: %w", err)
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusNotFound:
			return backoff.Permanent(errSymbolNotFound)
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			return &HTTPStatusError{StatusCode: resp.StatusCode, Body: string(body)}
		case resp.StatusCode != http.StatusOK:
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			return backoff.Permanent(&HTTPStatusError{StatusCode: resp.StatusCode, Body: string(body)})
		}

		chart = yahooChartResponse{}
		if err := json.NewDecoder(resp.Body).Decode(&chart); err != nil {
			return backoff.Permanent(fmt.Errorf("failed to decode chart response: %w", err))
		}
		if chart.Chart.Error != nil {
			if chart.Chart.Error.Code == "Not Found" {
				return backoff.Permanent(errSymbolNotFound)
			}
			return backoff.Permanent(fmt.Errorf("chart error %s: %s", chart.Chart.Error.Code, chart.Chart.Error.Description))
		}
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = r.cfg.MaxRetryElapsed
	notify := func(err error, wait time.Duration) {
		r.logger.Warn("Retrying Yahoo Finance request",
			logger.StringField("symbol", symbol),
			logger.ErrorField(err),
			logger.StringField("wait", wait.String()),
		)
	}
	if err := backoff.RetryNotify(operation, backoff.WithContext(bo, ctx), notify); err != nil {
		return nil, err
	}
	return &chart, nil
}

// reducePriceSeries collapses a chart response into a PriceRange, skipping
// bars without a close. It returns nil when no bar has a close.
func reducePriceSeries(chart *yahooChartResponse) *dto.PriceRange {
	if chart == nil || len(chart.Chart.Result) == 0 {
		return nil
	}
	res := chart.Chart.Result[0]
	if len(res.Indicators.Quote) == 0 {
		return nil
	}
	closes := res.Indicators.Quote[0].Close
	loc := time.FixedZone(res.Meta.Symbol, res.Meta.GMTOffset)

	var pr *dto.PriceRange
	for i, ts := range res.Timestamp {
		if i >= len(closes) || closes[i] == nil {
			continue
		}
		c := *closes[i]
		day := utils.FormatDate(time.Unix(ts, 0).In(loc))
		if pr == nil {
			pr = &dto.PriceRange{
				StartPrice: c,
				High:       c,
				Low:        c,
				StartDate:  day,
				Source:     DataSourceYahooFinance,
			}
		}
		pr.EndPrice = c
		pr.EndDate = day
		if c > pr.High {
			pr.High = c
		}
		if c < pr.Low {
			pr.Low = c
		}
	}
	return pr
}
