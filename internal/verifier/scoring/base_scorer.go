package scoring

import (
	"fmt"
	"math"
	"strings"

	"finfluencer-tracker/internal/entity"
	"finfluencer-tracker/internal/verifier/dto"
)

// Fixed score weights. The overall score is always
// 0.40*direction + 0.40*target + 0.20*timing.
const (
	WeightDirection = 0.40
	WeightTarget    = 0.40
	WeightTiming    = 0.20
)

// Empirical constants carried over unchanged from the original grading
// rules. They are not derived from anything and are not configurable.
const (
	// DirectionBandPct is the absolute move, in percent, below which the
	// market is considered flat.
	DirectionBandPct = 5.0

	flatMarketCredit   = 0.3
	noTargetCredit     = 0.5
	unknownTargetScore = 0.5
	missedTargetCap    = 0.7
	// verifiedTimingScore is a placeholder: elapsed time is not compared
	// against the claimed timeframe at this layer.
	verifiedTimingScore = 0.8
)

// OverallScore combines sub-scores with the fixed weights.
func OverallScore(direction, target, timing float64) float64 {
	return WeightDirection*direction + WeightTarget*target + WeightTiming*timing
}

// ClassifyDirection maps a percent change onto bullish/bearish/neutral using
// the fixed ±5% band.
func ClassifyDirection(changePct float64) entity.Direction {
	switch {
	case changePct > DirectionBandPct:
		return entity.DirectionBullish
	case changePct < -DirectionBandPct:
		return entity.DirectionBearish
	default:
		return entity.DirectionNeutral
	}
}

// Score grades a market outcome against the predicted direction and target
// without any I/O. Outcomes that are not verified score zero throughout.
func Score(outcome dto.MarketOutcome, direction entity.Direction, target string) dto.ScoreResult {
	if !outcome.IsVerified() {
		return dto.ScoreResult{
			Explanation: fmt.Sprintf("Market outcome is %s; no score assigned.", outcome.Outcome),
		}
	}

	actual := entity.DirectionNeutral
	if outcome.ActualDirection != nil {
		actual = *outcome.ActualDirection
	}

	res := dto.ScoreResult{}
	res.DirectionScore, res.DirectionCorrect = directionScore(direction, actual)
	res.TargetScore = targetScore(outcome, direction, target)
	res.TimingScore = verifiedTimingScore
	res.OverallScore = OverallScore(res.DirectionScore, res.TargetScore, res.TimingScore)
	res.Explanation = explain(outcome, direction, actual, target)
	return res
}

func directionScore(predicted, actual entity.Direction) (float64, bool) {
	switch {
	case predicted == actual:
		return 1.0, true
	case predicted.IsDirectional() && actual == entity.DirectionNeutral:
		return flatMarketCredit, false
	default:
		return 0, false
	}
}

func targetScore(outcome dto.MarketOutcome, direction entity.Direction, target string) float64 {
	if !HasTarget(target) {
		return noTargetCredit
	}
	if outcome.TargetReached == nil {
		return unknownTargetScore
	}
	if *outcome.TargetReached {
		return 1.0
	}

	targetPrice, ok := ParseTarget(target)
	if !ok {
		return unknownTargetScore
	}

	switch direction {
	case entity.DirectionBullish:
		high := valueOf(outcome.PeriodHigh)
		if high <= 0 || targetPrice <= 0 {
			return 0
		}
		return math.Min(high/targetPrice, 1.0) * missedTargetCap
	case entity.DirectionBearish:
		low := valueOf(outcome.PeriodLow)
		if low <= 0 {
			low = valueOf(outcome.EndPrice)
		}
		if low <= 0 {
			return 0
		}
		return math.Min(targetPrice/low, 1.0) * missedTargetCap
	default:
		return 0
	}
}

func explain(outcome dto.MarketOutcome, predicted, actual entity.Direction, target string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s moved", outcome.Asset)
	if outcome.ActualPriceChange != nil {
		fmt.Fprintf(&b, " %+.2f%%", *outcome.ActualPriceChange)
	}
	fmt.Fprintf(&b, " (%s) between %s and %s; predicted %s.", actual, outcome.WindowStart, outcome.WindowEnd, predicted)

	if HasTarget(target) {
		switch {
		case outcome.TargetReached == nil:
			fmt.Fprintf(&b, " Target %q could not be evaluated.", target)
		case *outcome.TargetReached:
			fmt.Fprintf(&b, " Target %s was reached.", target)
		default:
			fmt.Fprintf(&b, " Target %s was not reached", target)
			if outcome.PeriodHigh != nil && outcome.PeriodLow != nil {
				fmt.Fprintf(&b, " (period range %.2f-%.2f)", *outcome.PeriodLow, *outcome.PeriodHigh)
			}
			b.WriteString(".")
		}
	}
	return b.String()
}

func valueOf(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}
