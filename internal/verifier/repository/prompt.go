package repository

import (
	"encoding/json"
	"fmt"
	"strings"

	"finfluencer-tracker/internal/entity"
	"finfluencer-tracker/internal/verifier/dto"
)

const (
	noSearchContext    = "No additional context available."
	noTargetSpecified  = "Not specified"
	maxPromptSummaries = 3
)

const verificationPromptTemplate = `You are an expert financial analyst verifying a prediction against actual market outcomes.

PREDICTION:
- Statement: %s
- Asset: %s
- Direction: %s
- Target: %s
- Timeframe: %s
- Made on: %s

ACTUAL MARKET DATA:
%s

ADDITIONAL CONTEXT (from web search):
%s

Analyze whether this prediction was accurate. Consider:
1. Was the direction (bullish/bearish) correct?
2. Was any price target achieved?
3. Was the timing accurate?

Respond with a JSON object:
{
    "direction_correct": true/false,
    "direction_explanation": "brief explanation",
    "target_accuracy": 0.0-1.0 (1.0 if fully met, 0.5 if partially met, 0 if missed),
    "target_explanation": "brief explanation",
    "timing_accuracy": 0.0-1.0 (1.0 if on time, lower if early/late),
    "timing_explanation": "brief explanation",
    "overall_explanation": "2-3 sentence summary of how the prediction held up against reality"
}

Respond ONLY with the JSON object, no other text.`

// BuildVerificationPrompt renders the judgment prompt for one prediction.
// At most three search summaries are included.
func BuildVerificationPrompt(p entity.Prediction, predictionDate string, outcome dto.MarketOutcome, evidence *dto.SearchEvidence) string {
	marketData, err := json.MarshalIndent(outcome, "", "  ")
	if err != nil {
		marketData = []byte("{}")
	}

	searchContext := noSearchContext
	if evidence.HasSummaries() {
		summaries := evidence.Summaries
		if len(summaries) > maxPromptSummaries {
			summaries = summaries[:maxPromptSummaries]
		}
		searchContext = strings.Join(summaries, "\n")
	}

	target := p.TargetText()
	if strings.TrimSpace(target) == "" {
		target = noTargetSpecified
	}

	return fmt.Sprintf(verificationPromptTemplate,
		p.Statement,
		p.Asset,
		p.Direction,
		target,
		p.Timeframe,
		predictionDate,
		string(marketData),
		searchContext,
	)
}
