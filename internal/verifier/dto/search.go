package dto

// SearchEvidence is free-text context about what happened after a
// prediction, used when market data is missing.
type SearchEvidence struct {
	Query       string   `json:"query"`
	Summaries   []string `json:"summaries"`
	Sources     []string `json:"sources"`
	ResultCount int      `json:"result_count"`
	Provider    string   `json:"provider"`
}

func (e *SearchEvidence) HasSummaries() bool {
	return e != nil && len(e.Summaries) > 0
}
