package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"finfluencer-tracker/internal/entity"
	"finfluencer-tracker/internal/verifier/dto"
)

type mockMarketData struct{ mock.Mock }

func (m *mockMarketData) GetPriceRange(ctx context.Context, asset string, start, end time.Time) (*dto.PriceRange, error) {
	args := m.Called(ctx, asset, start, end)
	pr, _ := args.Get(0).(*dto.PriceRange)
	return pr, args.Error(1)
}

type mockSearch struct{ mock.Mock }

func (m *mockSearch) Search(ctx context.Context, statement, asset, timeframe, predictionDate string) (*dto.SearchEvidence, error) {
	args := m.Called(ctx, statement, asset, timeframe, predictionDate)
	ev, _ := args.Get(0).(*dto.SearchEvidence)
	return ev, args.Error(1)
}

type mockJudge struct{ mock.Mock }

func (m *mockJudge) Generate(ctx context.Context, prompt string, opts dto.GenerateOptions) (string, error) {
	args := m.Called(ctx, prompt, opts)
	return args.String(0), args.Error(1)
}

type mockPredictions struct{ mock.Mock }

func (m *mockPredictions) GetUnverified(ctx context.Context, limit int) ([]entity.Prediction, error) {
	args := m.Called(ctx, limit)
	ps, _ := args.Get(0).([]entity.Prediction)
	return ps, args.Error(1)
}

func (m *mockPredictions) FindByID(ctx context.Context, id uint) (*entity.Prediction, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(*entity.Prediction)
	return p, args.Error(1)
}

type mockVerifications struct{ mock.Mock }

func (m *mockVerifications) Upsert(ctx context.Context, v *entity.Verification) error {
	return m.Called(ctx, v).Error(0)
}

type mockCreators struct{ mock.Mock }

func (m *mockCreators) RecalculateScores(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockCreators) GetLeaderboard(ctx context.Context, limit int) ([]dto.LeaderboardEntry, error) {
	args := m.Called(ctx, limit)
	entries, _ := args.Get(0).([]dto.LeaderboardEntry)
	return entries, args.Error(1)
}

type mockLocker struct{ mock.Mock }

func (m *mockLocker) Acquire(ctx context.Context) (func(), error) {
	args := m.Called(ctx)
	release, _ := args.Get(0).(func())
	return release, args.Error(1)
}

type mockNotifier struct{ mock.Mock }

func (m *mockNotifier) SendMessage(text string) error {
	return m.Called(text).Error(0)
}
