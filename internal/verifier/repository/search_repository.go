package repository

import (
	"context"

	"finfluencer-tracker/internal/verifier/dto"
	"finfluencer-tracker/pkg/logger"
	"finfluencer-tracker/pkg/metrics"
)

// SearchProvider names a SearchRepository for logs and metrics.
type SearchProvider struct {
	Name string
	Repo SearchRepository
}

type multiSearchRepository struct {
	providers []SearchProvider
	logger    *logger.Logger
	metrics   *metrics.Registry
}

// NewMultiSearchRepository tries each provider in order and returns the
// first evidence with at least one summary. A failing provider is logged and
// skipped.
func NewMultiSearchRepository(log *logger.Logger, m *metrics.Registry, providers ...SearchProvider) SearchRepository {
	r := &multiSearchRepository{logger: log, metrics: m}
	for _, p := range providers {
		if p.Repo != nil {
			r.providers = append(r.providers, p)
		}
	}
	return r
}

func (r *multiSearchRepository) Search(ctx context.Context, statement, asset, timeframe, predictionDate string) (*dto.SearchEvidence, error) {
	for _, p := range r.providers {
		evidence, err := p.Repo.Search(ctx, statement, asset, timeframe, predictionDate)
		if err != nil {
			r.metrics.ObserveSearch(p.Name, "error")
			r.logger.WarnContext(ctx, "Search provider failed",
				logger.StringField("provider", p.Name),
				logger.ErrorField(err),
			)
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			continue
		}
		if evidence.HasSummaries() {
			r.metrics.ObserveSearch(p.Name, "ok")
			return evidence, nil
		}
		r.metrics.ObserveSearch(p.Name, "empty")
	}
	return nil, nil
}
