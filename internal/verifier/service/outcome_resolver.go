package service

import (
	"context"
	"math"
	"time"

	"finfluencer-tracker/internal/entity"
	"finfluencer-tracker/internal/verifier/dto"
	"finfluencer-tracker/internal/verifier/repository"
	"finfluencer-tracker/internal/verifier/scoring"
	"finfluencer-tracker/pkg/common"
	"finfluencer-tracker/pkg/logger"
	"finfluencer-tracker/pkg/utils"
)

const (
	notePending = "Prediction timeframe has not completed yet"
	noteNoData  = "Could not fetch market data for this asset"
)

// OutcomeResolver decides what the market actually did over a window.
// Provider failures are folded into the returned outcome and never
// returned as errors.
type OutcomeResolver struct {
	marketData repository.MarketDataRepository
	logger     *logger.Logger
	now        func() time.Time
}

// NewOutcomeResolver creates an OutcomeResolver using the IST wall clock.
func NewOutcomeResolver(marketData repository.MarketDataRepository, log *logger.Logger) *OutcomeResolver {
	return &OutcomeResolver{
		marketData: marketData,
		logger:     log,
		now:        utils.TimeNowIST,
	}
}

// WithClock replaces the clock used for the pending check.
func (r *OutcomeResolver) WithClock(now func() time.Time) *OutcomeResolver {
	r.now = now
	return r
}

// Resolve fetches prices for window and classifies the move. A window
// ending after today is pending and triggers no fetch.
func (r *OutcomeResolver) Resolve(ctx context.Context, asset string, direction entity.Direction, target *string, window dto.VerificationWindow) dto.MarketOutcome {
	outcome := dto.MarketOutcome{
		Asset:               asset,
		PredictionDirection: direction,
		PredictionTarget:    target,
		WindowStart:         window.Start(),
		WindowEnd:           window.End(),
		DataSource:          common.DataSourceUnknown,
	}

	now := r.now()
	today := utils.Date(now.Year(), now.Month(), now.Day())
	if window.EndDate.After(today) {
		outcome.Outcome = dto.OutcomePending
		outcome.Note = notePending
		return outcome
	}

	pr, err := r.marketData.GetPriceRange(ctx, asset, window.StartDate, window.EndDate)
	if err != nil {
		r.logger.WarnContext(ctx, "Failed to fetch market data",
			logger.StringField("asset", asset),
			logger.StringField("window_start", outcome.WindowStart),
			logger.StringField("window_end", outcome.WindowEnd),
			logger.ErrorField(err),
		)
		outcome.Outcome = dto.OutcomeError
		outcome.Error = err.Error()
		return outcome
	}
	if pr == nil || pr.StartPrice <= 0 || pr.EndPrice <= 0 {
		outcome.Outcome = dto.OutcomeNoData
		outcome.Note = noteNoData
		return outcome
	}

	changePct := (pr.EndPrice - pr.StartPrice) / pr.StartPrice * 100
	actual := scoring.ClassifyDirection(changePct)

	outcome.Outcome = dto.OutcomeVerified
	outcome.DataSource = pr.Source
	if outcome.DataSource == "" {
		outcome.DataSource = common.DataSourceUnknown
	}
	outcome.StartPrice = utils.ToPointer(pr.StartPrice)
	outcome.EndPrice = utils.ToPointer(pr.EndPrice)
	outcome.PeriodHigh = utils.ToPointer(pr.High)
	outcome.PeriodLow = utils.ToPointer(pr.Low)
	outcome.ActualPriceChange = utils.ToPointer(roundTo(changePct, 2))
	outcome.ActualDirection = &actual
	outcome.TargetReached = targetReached(target, direction, pr)
	return outcome
}

// targetReached is nil when there is no target or it cannot be parsed.
// Bullish calls need the period high at or above the target; anything
// else needs the period low at or below it.
func targetReached(target *string, direction entity.Direction, pr *dto.PriceRange) *bool {
	if target == nil || !scoring.HasTarget(*target) {
		return nil
	}
	price, ok := scoring.ParseTarget(*target)
	if !ok {
		return nil
	}
	if direction == entity.DirectionBullish {
		return utils.ToPointer(pr.High >= price)
	}
	return utils.ToPointer(pr.Low <= price)
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
