package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"finfluencer-tracker/internal/verifier/config"
	"finfluencer-tracker/internal/verifier/dto"
	"finfluencer-tracker/pkg/logger"
)

type fakeModels struct {
	reply      string
	err        error
	tokens     int32
	gotModel   string
	gotConfig  *genai.GenerateContentConfig
	gotPrompt  string
	countCalls int
}

func (f *fakeModels) GenerateContent(_ context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.gotModel = model
	f.gotConfig = cfg
	if len(contents) > 0 && len(contents[0].Parts) > 0 {
		f.gotPrompt = contents[0].Parts[0].Text
	}
	if f.err != nil {
		return nil, f.err
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{Text: f.reply}}},
		}},
	}, nil
}

func (f *fakeModels) CountTokens(_ context.Context, _ string, _ []*genai.Content, _ *genai.CountTokensConfig) (*genai.CountTokensResponse, error) {
	f.countCalls++
	return &genai.CountTokensResponse{TotalTokens: f.tokens}, nil
}

func TestGeminiAIRepository_Generate(t *testing.T) {
	models := &fakeModels{reply: "  {\"direction_correct\": true}\n", tokens: 120}
	repo := newGeminiAIRepository(config.Gemini{
		Model:               "models/gemini-2.0-flash-lite",
		MaxRequestPerMinute: 60,
		MaxTokenPerMinute:   10000,
	}, logger.NewNop(), models)

	out, err := repo.Generate(context.Background(), "judge this", dto.GenerateOptions{Temperature: 0.1, MaxOutputTokens: 1024})
	require.NoError(t, err)

	assert.Equal(t, `{"direction_correct": true}`, out)
	assert.Equal(t, "models/gemini-2.0-flash-lite", models.gotModel)
	assert.Equal(t, "judge this", models.gotPrompt)
	require.NotNil(t, models.gotConfig.Temperature)
	assert.InDelta(t, 0.1, *models.gotConfig.Temperature, 1e-6)
	assert.Equal(t, int32(1024), models.gotConfig.MaxOutputTokens)
	assert.Equal(t, 1, models.countCalls)
}

func TestGeminiAIRepository_SkipsTokenCountWithoutBudget(t *testing.T) {
	models := &fakeModels{reply: "ok"}
	repo := newGeminiAIRepository(config.Gemini{Model: "m"}, logger.NewNop(), models)

	_, err := repo.Generate(context.Background(), "p", dto.GenerateOptions{})
	require.NoError(t, err)
	assert.Zero(t, models.countCalls)
}

func TestGeminiAIRepository_Errors(t *testing.T) {
	t.Run("api error", func(t *testing.T) {
		repo := newGeminiAIRepository(config.Gemini{Model: "m"}, logger.NewNop(), &fakeModels{err: errors.New("quota exceeded")})

		_, err := repo.Generate(context.Background(), "p", dto.GenerateOptions{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "quota exceeded")
	})

	t.Run("empty reply", func(t *testing.T) {
		repo := newGeminiAIRepository(config.Gemini{Model: "m"}, logger.NewNop(), &fakeModels{reply: "   "})

		_, err := repo.Generate(context.Background(), "p", dto.GenerateOptions{})
		assert.Error(t, err)
	})
}

func TestNewGeminiAIRepository_RequiresClient(t *testing.T) {
	_, err := NewGeminiAIRepository(config.Gemini{}, logger.NewNop(), nil)
	assert.Error(t, err)
}
