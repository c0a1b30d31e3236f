package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"finfluencer-tracker/internal/entity"
	"finfluencer-tracker/internal/verifier/config"
	"finfluencer-tracker/internal/verifier/dto"
	"finfluencer-tracker/internal/verifier/service"
	"finfluencer-tracker/pkg/logger"
	"finfluencer-tracker/pkg/utils"
)

type mockVerificationService struct{ mock.Mock }

func (m *mockVerificationService) VerifyPrediction(ctx context.Context, p entity.Prediction) dto.VerificationResult {
	return m.Called(ctx, p).Get(0).(dto.VerificationResult)
}

func (m *mockVerificationService) VerifyByID(ctx context.Context, id uint) (dto.VerificationResult, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(dto.VerificationResult), args.Error(1)
}

func (m *mockVerificationService) VerifyUnverified(ctx context.Context, limit int, delay time.Duration) (dto.BatchSummary, error) {
	args := m.Called(ctx, limit, delay)
	return args.Get(0).(dto.BatchSummary), args.Error(1)
}

type mockLeaderboardService struct{ mock.Mock }

func (m *mockLeaderboardService) GetLeaderboard(ctx context.Context, limit int) ([]dto.LeaderboardEntry, error) {
	args := m.Called(ctx, limit)
	entries, _ := args.Get(0).([]dto.LeaderboardEntry)
	return entries, args.Error(1)
}

func newTestServer(vs service.VerificationService, ls service.LeaderboardService, cfg config.Verifier) *echo.Echo {
	e := echo.New()
	api := e.Group("/api/v1")
	NewVerificationHandler(vs, cfg, logger.NewNop()).RegisterRoutes(api)
	NewLeaderboardHandler(ls, logger.NewNop()).RegisterRoutes(api.Group("/leaderboard"))
	return e
}

func serve(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

var testVerifierConfig = config.Verifier{BatchLimit: 10, BatchDelay: 6 * time.Second}

func TestVerifyPredictionHandler(t *testing.T) {
	vs := &mockVerificationService{}
	vs.On("VerifyByID", mock.Anything, uint(7)).Return(dto.VerificationResult{
		PredictionID: 7,
		Status:       dto.StatusVerified,
		Score:        &dto.ScoreResult{OverallScore: 0.804},
	}, nil)
	e := newTestServer(vs, &mockLeaderboardService{}, testVerifierConfig)

	rec := serve(e, http.MethodPost, "/api/v1/predictions/7/verify", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var got dto.VerificationResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, dto.StatusVerified, got.Status)
	assert.Equal(t, 0.804, got.Score.OverallScore)
}

func TestVerifyPredictionHandler_Errors(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		err    error
		status int
	}{
		{"bad id", "/api/v1/predictions/abc/verify", nil, http.StatusBadRequest},
		{"not found", "/api/v1/predictions/9/verify", fmt.Errorf("prediction 9: %w", service.ErrPredictionNotFound), http.StatusNotFound},
		{"internal", "/api/v1/predictions/9/verify", errors.New("connection refused"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vs := &mockVerificationService{}
			vs.On("VerifyByID", mock.Anything, uint(9)).Return(dto.VerificationResult{Status: dto.StatusError}, tt.err)
			e := newTestServer(vs, &mockLeaderboardService{}, testVerifierConfig)

			rec := serve(e, http.MethodPost, tt.path, "")

			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestRunBatchHandler(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		cfg       config.Verifier
		wantLimit int
		wantDelay time.Duration
	}{
		{"default limit", "", testVerifierConfig, 10, 6 * time.Second},
		{"explicit limit", `{"limit": 3}`, testVerifierConfig, 3, 6 * time.Second},
		{"pause disabled", "", config.Verifier{BatchLimit: 10, BatchDelay: -1}, 10, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vs := &mockVerificationService{}
			vs.On("VerifyUnverified", mock.Anything, tt.wantLimit, tt.wantDelay).
				Return(dto.BatchSummary{RunID: "run-1", Processed: 2, Verified: 2, AverageScore: 0.6}, nil).Once()
			e := newTestServer(vs, &mockLeaderboardService{}, tt.cfg)

			rec := serve(e, http.MethodPost, "/api/v1/verifications/batch", tt.body)

			require.Equal(t, http.StatusOK, rec.Code)
			var got dto.BatchSummary
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
			assert.Equal(t, "run-1", got.RunID)
			vs.AssertExpectations(t)
		})
	}
}

func TestRunBatchHandler_Errors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		err    error
		status int
	}{
		{"negative limit", `{"limit": -1}`, nil, http.StatusBadRequest},
		{"malformed body", `{"limit": "ten"}`, nil, http.StatusBadRequest},
		{"already running", "", service.ErrBatchAlreadyRunning, http.StatusConflict},
		{"failure", "", errors.New("db down"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vs := &mockVerificationService{}
			vs.On("VerifyUnverified", mock.Anything, mock.Anything, mock.Anything).Return(dto.BatchSummary{}, tt.err)
			e := newTestServer(vs, &mockLeaderboardService{}, testVerifierConfig)

			rec := serve(e, http.MethodPost, "/api/v1/verifications/batch", tt.body)

			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestGetLeaderboardHandler(t *testing.T) {
	ls := &mockLeaderboardService{}
	ls.On("GetLeaderboard", mock.Anything, 5).Return([]dto.LeaderboardEntry{
		{ID: 1, Name: "Alpha", Slug: "alpha", TotalPredictions: 3, AccuracyScore: utils.ToPointer(0.7), VideoCount: 2},
	}, nil)
	e := newTestServer(&mockVerificationService{}, ls, testVerifierConfig)

	rec := serve(e, http.MethodGet, "/api/v1/leaderboard?limit=5", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var got []dto.LeaderboardEntry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "alpha", got[0].Slug)
	assert.Equal(t, 0.7, *got[0].AccuracyScore)
}

func TestGetLeaderboardHandler_Errors(t *testing.T) {
	ls := &mockLeaderboardService{}
	ls.On("GetLeaderboard", mock.Anything, 0).Return(nil, errors.New("db down"))
	e := newTestServer(&mockVerificationService{}, ls, testVerifierConfig)

	assert.Equal(t, http.StatusBadRequest, serve(e, http.MethodGet, "/api/v1/leaderboard?limit=x", "").Code)
	assert.Equal(t, http.StatusInternalServerError, serve(e, http.MethodGet, "/api/v1/leaderboard", "").Code)
}
