package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"finfluencer-tracker/internal/entity"
	"finfluencer-tracker/internal/verifier/dto"
	"finfluencer-tracker/internal/verifier/repository"
	"finfluencer-tracker/internal/verifier/scoring"
	"finfluencer-tracker/pkg/logger"
	"finfluencer-tracker/pkg/metrics"
	"finfluencer-tracker/pkg/utils"
)

const (
	judgmentTemperature     = 0.1
	judgmentMaxOutputTokens = 1024

	fallbackNoAI        = "Verified using market data only (no AI analysis)."
	fallbackAIErrorFmt  = "Verified using market data only (AI error: %s)."
	fallbackErrorMaxLen = 50

	judgmentModeAI           = "ai"
	judgmentModeUnconfigured = "fallback_unconfigured"
	judgmentModeError        = "fallback_error"
)

var (
	leadingFencePattern  = regexp.MustCompile("^```(?:json)?\\s*")
	trailingFencePattern = regexp.MustCompile("\\s*```$")
)

// SemanticVerifier asks a language model to judge a prediction and falls
// back to the rule-based score whenever the model is unavailable or its
// reply is unusable.
type SemanticVerifier struct {
	judge   repository.JudgmentRepository
	logger  *logger.Logger
	metrics *metrics.Registry
}

// NewSemanticVerifier creates a SemanticVerifier. A nil judge disables AI
// judgment.
func NewSemanticVerifier(judge repository.JudgmentRepository, log *logger.Logger, m *metrics.Registry) *SemanticVerifier {
	return &SemanticVerifier{judge: judge, logger: log, metrics: m}
}

// Verify scores p against outcome. The model is called at most once.
func (v *SemanticVerifier) Verify(ctx context.Context, p entity.Prediction, predictionDate string, outcome dto.MarketOutcome, evidence *dto.SearchEvidence) dto.ScoreResult {
	base := scoring.Score(outcome, p.Direction, p.TargetText())

	if v.judge == nil {
		v.metrics.ObserveJudgment(judgmentModeUnconfigured, base.OverallScore)
		return withFallbackNote(base, fallbackNoAI)
	}

	prompt := repository.BuildVerificationPrompt(p, predictionDate, outcome, evidence)
	reply, err := v.judge.Generate(ctx, prompt, dto.GenerateOptions{
		Temperature:     judgmentTemperature,
		MaxOutputTokens: judgmentMaxOutputTokens,
	})
	if err == nil {
		var judgment *dto.GeminiJudgment
		if judgment, err = parseJudgment(reply); err == nil {
			res := scoreFromJudgment(judgment, base)
			v.metrics.ObserveJudgment(judgmentModeAI, res.OverallScore)
			return res
		}
	}

	v.logger.WarnContext(ctx, "AI judgment unavailable, using market data score",
		logger.IntField("prediction_id", int(p.ID)),
		logger.ErrorField(err),
	)
	v.metrics.ObserveJudgment(judgmentModeError, base.OverallScore)
	return withFallbackNote(base, fmt.Sprintf(fallbackAIErrorFmt, utils.Truncate(err.Error(), fallbackErrorMaxLen)))
}

func withFallbackNote(base dto.ScoreResult, note string) dto.ScoreResult {
	res := base
	res.AIJudged = false
	if base.Explanation != "" {
		res.Explanation = note + " " + base.Explanation
	} else {
		res.Explanation = note
	}
	return res
}

// parseJudgment decodes the model reply, tolerating a markdown code fence,
// and checks that every required field is present and in range.
func parseJudgment(reply string) (*dto.GeminiJudgment, error) {
	text := strings.TrimSpace(reply)
	if strings.HasPrefix(text, "```") {
		text = leadingFencePattern.ReplaceAllString(text, "")
		text = trailingFencePattern.ReplaceAllString(text, "")
	}

	var j dto.GeminiJudgment
	if err := json.Unmarshal([]byte(text), &j); err != nil {
		return nil, fmt.Errorf("malformed judgment: %w", err)
	}
	if j.DirectionCorrect == nil {
		return nil, errors.New("judgment missing direction_correct")
	}
	if err := checkUnit("target_accuracy", j.TargetAccuracy); err != nil {
		return nil, err
	}
	if err := checkUnit("timing_accuracy", j.TimingAccuracy); err != nil {
		return nil, err
	}
	return &j, nil
}

func checkUnit(name string, v *float64) error {
	if v == nil {
		return fmt.Errorf("judgment missing %s", name)
	}
	if *v < 0 || *v > 1 {
		return fmt.Errorf("judgment %s out of range: %v", name, *v)
	}
	return nil
}

func scoreFromJudgment(j *dto.GeminiJudgment, base dto.ScoreResult) dto.ScoreResult {
	res := dto.ScoreResult{
		DirectionCorrect: *j.DirectionCorrect,
		TargetScore:      *j.TargetAccuracy,
		TimingScore:      *j.TimingAccuracy,
		AIJudged:         true,
	}
	if res.DirectionCorrect {
		res.DirectionScore = 1.0
	}
	res.OverallScore = scoring.OverallScore(res.DirectionScore, res.TargetScore, res.TimingScore)

	res.Explanation = strings.TrimSpace(j.OverallExplanation)
	if res.Explanation == "" {
		var parts []string
		for _, s := range []string{j.DirectionExplanation, j.TargetExplanation, j.TimingExplanation} {
			if s = strings.TrimSpace(s); s != "" {
				parts = append(parts, s)
			}
		}
		res.Explanation = strings.Join(parts, " ")
	}
	if res.Explanation == "" {
		res.Explanation = base.Explanation
	}
	return res
}
