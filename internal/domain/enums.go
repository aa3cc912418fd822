package domain

type Urgency string

const (
	UrgencyLow    Urgency = "low"
	UrgencyMedium Urgency = "medium"
	UrgencyHigh   Urgency = "high"
)

type EntryKind string

const (
	EntryTask  EntryKind = "task"
	EntryBreak EntryKind = "break"
)

type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
)

// ValidSentiments is the canonical set of accepted sentiment labels.
var ValidSentiments = map[Sentiment]bool{
	SentimentPositive: true, SentimentNegative: true, SentimentNeutral: true,
}

type HabitStatus string

const (
	HabitActive     HabitStatus = "active"
	HabitBackBurner HabitStatus = "back_burner"
)

// DefaultGroup labels tasks that match no group pattern.
const DefaultGroup = "General"

// BreakGroup is the output group label for inserted breaks.
const BreakGroup = "Wellness"

// DefaultQuickActions are attached to every placed or unplaced task.
func DefaultQuickActions() []string {
	return []string{"Move earlier", "Mark as urgent", "Postpone"}
}
