package domain

import "time"

// DefaultHabitMinutes applies when a habit gives no usable duration.
const DefaultHabitMinutes = 20

type Habit struct {
	ID                  string
	Name                string
	ImportanceStatement string
	DurationMinutes     int
	EndGoal             string
}

type Motivation struct {
	Message   string
	Citations []string // MLA-style HTML fragments
}

// HabitPlan is a habit after sentiment analysis and activation ranking.
type HabitPlan struct {
	Habit
	Importance             int
	Sentiment              Sentiment
	Confidence             float64
	SentimentFallback      bool
	Status                 HabitStatus
	Motivation             Motivation
	NotificationTime       time.Time
	AccountabilityPrompted bool
}
