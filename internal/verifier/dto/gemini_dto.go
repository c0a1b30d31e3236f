package dto

// GenerateOptions are the sampling settings for a judgment call.
type GenerateOptions struct {
	Temperature     float32
	MaxOutputTokens int32
}

// GeminiJudgment is the JSON object the model is asked to return. Required
// fields are pointers so that missing keys can be told apart from zeros.
type GeminiJudgment struct {
	DirectionCorrect     *bool    `json:"direction_correct"`
	DirectionExplanation string   `json:"direction_explanation"`
	TargetAccuracy       *float64 `json:"target_accuracy"`
	TargetExplanation    string   `json:"target_explanation"`
	TimingAccuracy       *float64 `json:"timing_accuracy"`
	TimingExplanation    string   `json:"timing_explanation"`
	OverallExplanation   string   `json:"overall_explanation"`
}
