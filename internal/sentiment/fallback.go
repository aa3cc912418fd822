package sentiment

import (
	"context"
	"strings"

	"github.com/alexanderramin/slotwise/internal/domain"
)

var positiveWords = []string{
	"important", "crucial", "essential", "vital", "help", "improve",
	"benefit", "achieve", "goal", "success", "progress", "growth",
}

var negativeWords = []string{
	"stress", "worry", "anxiety", "difficult", "hard", "struggle",
	"problem", "issue", "concern", "fear",
}

var importanceWords = []string{
	"important", "crucial", "essential", "vital", "critical", "priority",
}

// Fallback scores a statement locally. Words match by substring.
func Fallback(statement string) Result {
	lower := strings.ToLower(statement)
	pos := countContained(lower, positiveWords)
	neg := countContained(lower, negativeWords)

	sent := domain.SentimentNeutral
	switch {
	case pos > neg:
		sent = domain.SentimentPositive
	case neg > pos:
		sent = domain.SentimentNegative
	}

	importance := 50
	switch {
	case countContained(lower, importanceWords) > 0:
		importance = 75
	case sent == domain.SentimentPositive:
		importance = 60
	case sent == domain.SentimentNegative:
		importance = 70
	}

	return Result{
		Sentiment:  sent,
		Importance: importance,
		Confidence: 0.5,
		Fallback:   true,
	}
}

func countContained(s string, words []string) int {
	n := 0
	for _, w := range words {
		if strings.Contains(s, w) {
			n++
		}
	}
	return n
}

// LocalAnalyzer always uses the heuristic. Useful when no endpoint is set.
type LocalAnalyzer struct{}

func (LocalAnalyzer) Analyze(_ context.Context, statement string) Result {
	return Fallback(statement)
}
