package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"finfluencer-tracker/internal/verifier/config"
	"finfluencer-tracker/internal/verifier/dto"
	"finfluencer-tracker/pkg/logger"
	"finfluencer-tracker/pkg/ratelimit"
	"finfluencer-tracker/pkg/utils"

	"golang.org/x/time/rate"
)

const (
	SearchProviderExa = "exa"

	// maxSummaryChars bounds each evidence summary passed to the model.
	maxSummaryChars = 500
)

type exaSearchRequest struct {
	Query      string            `json:"query"`
	Type       string            `json:"type"`
	NumResults int               `json:"numResults"`
	Contents   exaSearchContents `json:"contents"`
}

type exaSearchContents struct {
	Text       bool `json:"text"`
	Highlights bool `json:"highlights"`
}

type exaSearchResponse struct {
	Results []struct {
		Title         string `json:"title"`
		URL           string `json:"url"`
		PublishedDate string `json:"publishedDate"`
		Text          string `json:"text"`
	} `json:"results"`
}

type exaSearchRepository struct {
	cfg     config.Search
	client  *http.Client
	limiter *rate.Limiter
	logger  *logger.Logger
}

// NewExaSearchRepository creates a SearchRepository backed by the Exa neural
// search API.
func NewExaSearchRepository(cfg config.Search, log *logger.Logger) SearchRepository {
	return &exaSearchRepository{
		cfg:     cfg,
		client:  &http.Client{Timeout: cfg.Timeout},
		limiter: ratelimit.NewRequestLimiter(cfg.ExaMaxRequestPerMinute),
		logger:  log,
	}
}

// BuildSearchQuery is the query sent to search providers for a prediction.
func BuildSearchQuery(asset, timeframe string) string {
	return fmt.Sprintf("%s market performance %s India stock market actual", asset, timeframe)
}

// Search looks up articles describing how the asset actually performed.
func (r *exaSearchRepository) Search(ctx context.Context, statement, asset, timeframe, predictionDate string) (*dto.SearchEvidence, error) {
	if r.cfg.ExaAPIKey == "" {
		return nil, nil
	}

	query := BuildSearchQuery(asset, timeframe)
	payload := exaSearchRequest{
		Query:      query,
		Type:       "neural",
		NumResults: r.cfg.NumResults,
		Contents:   exaSearchContents{Text: true, Highlights: true},
	}
	jsonPayload, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	if err := r.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("failed to wait for request limit: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.cfg.ExaBaseURL+"/search", bytes.NewReader(jsonPayload))
	if err != nil {
		return nil, fmt.Errorf("failed to create new http request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", r.cfg.ExaAPIKey)

	started := time.Now()
	resp, err := r.client.Do(req)
	if err != nil {
		r.logger.Error("Failed to send request to Exa API", logger.ErrorField(err), logger.StringField("query", query))
		return nil, fmt.Errorf("failed to send request to Exa API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		r.logger.Error("Received non-OK response from Exa API",
			logger.IntField("status_code", resp.StatusCode),
			logger.StringField("query", query),
		)
		return nil, &HTTPStatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var exaResp exaSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&exaResp); err != nil {
		return nil, fmt.Errorf("failed to decode response body: %w", err)
	}
	if len(exaResp.Results) == 0 {
		return nil, nil
	}

	evidence := &dto.SearchEvidence{
		Query:       query,
		ResultCount: len(exaResp.Results),
		Provider:    SearchProviderExa,
	}
	for _, res := range exaResp.Results {
		if res.Text != "" {
			evidence.Summaries = append(evidence.Summaries, utils.Truncate(res.Text, maxSummaryChars))
		}
		if res.URL != "" {
			evidence.Sources = append(evidence.Sources, res.URL)
		}
	}

	r.logger.DebugContext(ctx, "Exa search completed",
		logger.StringField("query", query),
		logger.IntField("results", evidence.ResultCount),
		logger.StringField("took", time.Since(started).String()),
	)
	return evidence, nil
}
