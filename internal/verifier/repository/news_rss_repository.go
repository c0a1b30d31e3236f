package repository

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"finfluencer-tracker/internal/verifier/config"
	"finfluencer-tracker/internal/verifier/dto"
	"finfluencer-tracker/pkg/logger"
	"finfluencer-tracker/pkg/utils"

	"github.com/PuerkitoBio/goquery"
	"github.com/mauidude/go-readability"
	"github.com/mmcdole/gofeed"
)

const (
	SearchProviderNewsRSS = "google_news_rss"

	// thinDescriptionChars is the description length below which the
	// article itself is fetched for a better summary.
	thinDescriptionChars = 120
)

type newsRSSRepository struct {
	cfg    config.Search
	client *http.Client
	logger *logger.Logger
}

// NewNewsRSSRepository creates a SearchRepository over the Google News RSS
// search feed. It needs no API key.
func NewNewsRSSRepository(cfg config.Search, log *logger.Logger) SearchRepository {
	return &newsRSSRepository{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: log,
	}
}

// Search reads the news feed for the prediction query and turns each item
// into a plain-text summary.
func (r *newsRSSRepository) Search(ctx context.Context, statement, asset, timeframe, predictionDate string) (*dto.SearchEvidence, error) {
	if !r.cfg.NewsRSSEnabled {
		return nil, nil
	}

	query := BuildSearchQuery(asset, timeframe)
	params := url.Values{}
	params.Set("q", query)
	params.Set("hl", "en-IN")
	params.Set("gl", "IN")
	params.Set("ceid", "IN:en")
	feedURL := r.cfg.NewsRSSBaseURL + "?" + params.Encode()

	fp := gofeed.NewParser()
	fp.Client = r.client
	feed, err := fp.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		r.logger.Error("Failed to parse RSS feed", logger.ErrorField(err), logger.StringField("query", query))
		return nil, fmt.Errorf("failed to parse RSS feed: %w", err)
	}
	if len(feed.Items) == 0 {
		return nil, nil
	}

	items := feed.Items
	if limit := r.cfg.NumResults; limit > 0 && len(items) > limit {
		items = items[:limit]
	}

	evidence := &dto.SearchEvidence{
		Query:       query,
		ResultCount: len(items),
		Provider:    SearchProviderNewsRSS,
	}
	for _, item := range items {
		summary := htmlToText(item.Description)
		if len(summary) < thinDescriptionChars && item.Link != "" {
			if article, err := r.fetchArticleText(ctx, item.Link); err == nil && article != "" {
				summary = article
			} else if err != nil {
				r.logger.DebugContext(ctx, "Failed to fetch article body", logger.ErrorField(err), logger.StringField("url", item.Link))
			}
		}
		if summary == "" {
			summary = item.Title
		}
		if summary != "" {
			evidence.Summaries = append(evidence.Summaries, utils.Truncate(summary, maxSummaryChars))
		}
		if item.Link != "" {
			evidence.Sources = append(evidence.Sources, item.Link)
		}
	}
	return evidence, nil
}

func (r *newsRSSRepository) fetchArticleText(ctx context.Context, link string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; finfluencer-tracker/1.0)")

	resp, err := r.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to fetch article, status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	doc, err := readability.NewDocument(string(body))
	if err != nil {
		return "", fmt.Errorf("failed to parse article: %w", err)
	}
	return htmlToText(doc.Content()), nil
}

// htmlToText strips markup and collapses whitespace.
func htmlToText(fragment string) string {
	if strings.TrimSpace(fragment) == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return strings.TrimSpace(fragment)
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}
