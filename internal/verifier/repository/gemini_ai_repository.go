package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"finfluencer-tracker/internal/verifier/config"
	"finfluencer-tracker/internal/verifier/dto"
	"finfluencer-tracker/pkg/logger"
	"finfluencer-tracker/pkg/ratelimit"

	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

// contentGenerator is the subset of *genai.Models used here.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
	CountTokens(ctx context.Context, model string, contents []*genai.Content, config *genai.CountTokensConfig) (*genai.CountTokensResponse, error)
}

// geminiAIRepository is a JudgmentRepository backed by the Google Gemini API.
type geminiAIRepository struct {
	cfg            config.Gemini
	logger         *logger.Logger
	models         contentGenerator
	requestLimiter *rate.Limiter
	tokenLimiter   *ratelimit.TokenLimiter
}

// NewGeminiAIRepository creates a Gemini-backed JudgmentRepository.
func NewGeminiAIRepository(cfg config.Gemini, log *logger.Logger, genAiClient *genai.Client) (JudgmentRepository, error) {
	if genAiClient == nil {
		return nil, errors.New("gemini client is required")
	}
	return newGeminiAIRepository(cfg, log, genAiClient.Models), nil
}

func newGeminiAIRepository(cfg config.Gemini, log *logger.Logger, models contentGenerator) *geminiAIRepository {
	return &geminiAIRepository{
		cfg:            cfg,
		logger:         log,
		models:         models,
		requestLimiter: ratelimit.NewRequestLimiter(cfg.MaxRequestPerMinute),
		tokenLimiter:   ratelimit.NewTokenLimiter(cfg.MaxTokenPerMinute),
	}
}

// Generate sends prompt to the configured model and returns the reply text.
// Calls are throttled to the configured request and token rates.
func (r *geminiAIRepository) Generate(ctx context.Context, prompt string, opts dto.GenerateOptions) (string, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(prompt, "user"),
	}

	if r.cfg.MaxTokenPerMinute > 0 {
		tokenResp, err := r.models.CountTokens(ctx, r.cfg.Model, contents, nil)
		if err != nil {
			return "", fmt.Errorf("failed to count tokens: %w", err)
		}
		r.logger.Debug("Gemini token count",
			logger.IntField("total_tokens", int(tokenResp.TotalTokens)),
			logger.IntField("remaining", r.tokenLimiter.GetRemaining()),
		)
		if err := r.tokenLimiter.Wait(ctx, int(tokenResp.TotalTokens)); err != nil {
			return "", fmt.Errorf("failed to wait for token limit: %w", err)
		}
	}

	if err := r.requestLimiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("failed to wait for request limit: %w", err)
	}

	genCfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(opts.Temperature),
		MaxOutputTokens: opts.MaxOutputTokens,
	}
	resp, err := r.models.GenerateContent(ctx, r.cfg.Model, contents, genCfg)
	if err != nil {
		r.logger.Error("Failed to call Gemini API", logger.ErrorField(err), logger.StringField("model", r.cfg.Model))
		return "", fmt.Errorf("failed to call Gemini API: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", errors.New("empty response from Gemini API")
	}
	return text, nil
}
