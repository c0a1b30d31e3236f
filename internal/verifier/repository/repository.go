package repository

import (
	"context"
	"time"

	"finfluencer-tracker/internal/entity"
	"finfluencer-tracker/internal/verifier/dto"
)

// MarketDataRepository fetches historical prices. GetPriceRange returns
// nil, nil when the asset is unknown or no bars exist in the range.
type MarketDataRepository interface {
	GetPriceRange(ctx context.Context, asset string, start, end time.Time) (*dto.PriceRange, error)
}

// SearchRepository finds free-text evidence about what happened after a
// prediction. It returns nil, nil when no provider is available.
type SearchRepository interface {
	Search(ctx context.Context, statement, asset, timeframe, predictionDate string) (*dto.SearchEvidence, error)
}

// JudgmentRepository sends a prompt to a language model and returns its raw
// text reply.
type JudgmentRepository interface {
	Generate(ctx context.Context, prompt string, opts dto.GenerateOptions) (string, error)
}

// PredictionRepository reads predictions awaiting verification.
type PredictionRepository interface {
	GetUnverified(ctx context.Context, limit int) ([]entity.Prediction, error)
	FindByID(ctx context.Context, id uint) (*entity.Prediction, error)
}

// VerificationRepository persists verification results.
type VerificationRepository interface {
	Upsert(ctx context.Context, verification *entity.Verification) error
}

// CreatorRepository maintains creator aggregates.
type CreatorRepository interface {
	RecalculateScores(ctx context.Context) error
	GetLeaderboard(ctx context.Context, limit int) ([]dto.LeaderboardEntry, error)
}
