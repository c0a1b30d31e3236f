package dto

// ScoreResult is a graded accuracy score. OverallScore is always the fixed
// weighted sum of the three sub-scores.
type ScoreResult struct {
	DirectionCorrect bool    `json:"direction_correct"`
	DirectionScore   float64 `json:"direction_score"`
	TargetScore      float64 `json:"target_score"`
	TimingScore      float64 `json:"timing_score"`
	OverallScore     float64 `json:"overall_score"`
	Explanation      string  `json:"explanation"`
	// AIJudged is true when the sub-scores came from the language model.
	AIJudged bool `json:"ai_judged"`
}
