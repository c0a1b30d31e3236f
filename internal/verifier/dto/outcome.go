package dto

import (
	"time"

	"finfluencer-tracker/internal/entity"
	"finfluencer-tracker/pkg/utils"
)

// Outcome is the resolution state of a market lookup.
type Outcome string

const (
	OutcomePending  Outcome = "pending"
	OutcomeVerified Outcome = "verified"
	OutcomeNoData   Outcome = "no_data"
	OutcomeError    Outcome = "error"
)

// VerificationWindow is the date range a prediction is checked against.
type VerificationWindow struct {
	StartDate time.Time
	EndDate   time.Time
}

func (w VerificationWindow) Start() string { return utils.FormatDate(w.StartDate) }
func (w VerificationWindow) End() string   { return utils.FormatDate(w.EndDate) }

// PriceRange is the reduced price series returned by a market data provider.
type PriceRange struct {
	StartPrice float64 `json:"start_price"`
	EndPrice   float64 `json:"end_price"`
	High       float64 `json:"high"`
	Low        float64 `json:"low"`
	StartDate  string  `json:"start_date"`
	EndDate    string  `json:"end_date"`
	Source     string  `json:"source"`
}

// MarketOutcome is the observed market behaviour over a verification window.
// Price fields are only set when Outcome is OutcomeVerified.
type MarketOutcome struct {
	Asset               string            `json:"asset"`
	PredictionDirection entity.Direction  `json:"prediction_direction"`
	PredictionTarget    *string           `json:"prediction_target"`
	WindowStart         string            `json:"window_start"`
	WindowEnd           string            `json:"window_end"`
	Outcome             Outcome           `json:"outcome"`
	ActualDirection     *entity.Direction `json:"actual_direction"`
	StartPrice          *float64          `json:"start_price,omitempty"`
	EndPrice            *float64          `json:"end_price,omitempty"`
	PeriodHigh          *float64          `json:"period_high,omitempty"`
	PeriodLow           *float64          `json:"period_low,omitempty"`
	ActualPriceChange   *float64          `json:"actual_price_change"`
	TargetReached       *bool             `json:"target_reached"`
	DataSource          string            `json:"data_source"`
	Note                string            `json:"note,omitempty"`
	Error               string            `json:"error,omitempty"`
}

func (o MarketOutcome) IsVerified() bool {
	return o.Outcome == OutcomeVerified
}

// NeedsEvidence reports whether the market data alone was inconclusive and
// supplementary search evidence should be gathered.
func (o MarketOutcome) NeedsEvidence() bool {
	return o.Outcome == OutcomeNoData || o.Outcome == OutcomeError
}
