package dto

// VerificationStatus is the terminal state of a single pipeline run.
type VerificationStatus string

const (
	StatusVerified VerificationStatus = "verified"
	StatusPending  VerificationStatus = "pending"
	StatusError    VerificationStatus = "error"
)

// VerificationResult is what the pipeline returns for one prediction.
type VerificationResult struct {
	PredictionID  uint               `json:"prediction_id"`
	Status        VerificationStatus `json:"status"`
	Message       string             `json:"message,omitempty"`
	Score         *ScoreResult       `json:"score,omitempty"`
	MarketOutcome MarketOutcome      `json:"market_outcome"`
	Evidence      *SearchEvidence    `json:"evidence,omitempty"`
	DataSource    string             `json:"data_source,omitempty"`
}

// BatchSummary accumulates the outcome of a batch run.
type BatchSummary struct {
	RunID        string  `json:"run_id"`
	Processed    int     `json:"processed"`
	Verified     int     `json:"verified"`
	Pending      int     `json:"pending"`
	Errors       int     `json:"errors"`
	AverageScore float64 `json:"average_score"`
}

// LeaderboardEntry is a creator ranked by aggregate accuracy.
type LeaderboardEntry struct {
	ID               uint     `json:"id"`
	Name             string   `json:"name"`
	Slug             string   `json:"slug"`
	ChannelURL       string   `json:"channel_url"`
	Description      string   `json:"description"`
	TotalPredictions int      `json:"total_predictions"`
	AccuracyScore    *float64 `json:"accuracy_score"`
	VideoCount       int      `json:"video_count"`
}

// BatchRequest is the body of a batch verification trigger.
type BatchRequest struct {
	Limit int `json:"limit"`
}

// ErrorResponse represents a generic error response body.
type ErrorResponse struct {
	Error string `json:"error"`
}
