package telegram

import (
	"fmt"
	"strings"
	"time"

	"finfluencer-tracker/internal/verifier/dto"
)

const maxMessageLen = 4090

// FormatBatchSummary renders a batch verification run for the operator chat.
func FormatBatchSummary(summary dto.BatchSummary, elapsed time.Duration) string {
	var b strings.Builder
	b.WriteString("📊 *Prediction Verification Run*\n\n")
	fmt.Fprintf(&b, "🆔 Run: `%s`\n", summary.RunID)
	fmt.Fprintf(&b, "📥 Processed: %d\n", summary.Processed)
	fmt.Fprintf(&b, "✅ Verified: %d\n", summary.Verified)
	fmt.Fprintf(&b, "⏳ Pending: %d\n", summary.Pending)
	fmt.Fprintf(&b, "❌ Errors: %d\n", summary.Errors)
	if summary.Verified > 0 {
		fmt.Fprintf(&b, "🎯 Average score: %.3f\n", summary.AverageScore)
	}
	fmt.Fprintf(&b, "⏱ Took: %s\n", elapsed.Round(time.Second))
	return b.String()
}

// FormatLeaderboard renders the top creators by accuracy.
func FormatLeaderboard(entries []dto.LeaderboardEntry, top int) string {
	if len(entries) == 0 {
		return "No creators have verified predictions yet."
	}
	if top > 0 && len(entries) > top {
		entries = entries[:top]
	}

	var b strings.Builder
	b.WriteString("🏆 *Creator Leaderboard*\n\n")
	for i, e := range entries {
		score := "n/a"
		if e.AccuracyScore != nil {
			score = fmt.Sprintf("%.1f%%", *e.AccuracyScore*100)
		}
		fmt.Fprintf(&b, "%d. *%s*: %s (%d predictions)\n", i+1, e.Name, score, e.TotalPredictions)
	}
	return b.String()
}

// SplitMessage breaks text into chunks of at most limit bytes, preferring
// line boundaries.
func SplitMessage(text string, limit int) []string {
	if len(text) <= limit {
		return []string{text}
	}

	var parts []string
	var current strings.Builder
	for _, line := range strings.SplitAfter(text, "\n") {
		for len(line) > limit {
			if current.Len() > 0 {
				parts = append(parts, current.String())
				current.Reset()
			}
			parts = append(parts, line[:limit])
			line = line[limit:]
		}
		if current.Len()+len(line) > limit {
			parts = append(parts, current.String())
			current.Reset()
		}
		current.WriteString(line)
	}
	if current.Len() > 0 {
		parts = append(parts, current.String())
	}
	return parts
}
