package scheduler

import (
	"math"
	"time"

	"github.com/alexanderramin/slotwise/internal/domain"
)

// ScoringWeights are the linear coefficients of the priority score.
type ScoringWeights struct {
	Deadline     float64
	Importance   float64
	Effort       float64
	OverdueBonus float64
}

func DefaultWeights() ScoringWeights {
	return ScoringWeights{
		Deadline:     0.5,
		Importance:   0.4,
		Effort:       -0.1,
		OverdueBonus: 0.3,
	}
}

// Urgency thresholds on the clamped score.
const (
	highUrgencyScore   = 0.7
	mediumUrgencyScore = 0.4
)

// Descriptive tags, emitted in this order.
const (
	TagOverdue        = "Overdue"
	TagDueToday       = "Due today"
	TagHighImportance = "High importance"
	TagQuickWin       = "Quick win"
)

type ScoringInput struct {
	Deadline        *time.Time
	Importance      int
	DurationMinutes int
	Now             time.Time
	Weights         ScoringWeights
}

// ScoreReason records one factor's contribution to the score.
type ScoreReason struct {
	Factor string
	Delta  float64
}

type ScoreResult struct {
	Score   float64
	Urgency domain.Urgency
	Tags    []string
	Reasons []ScoreReason
}

// ScoreTask computes the clamped priority score, urgency and descriptive tags.
func ScoreTask(input ScoringInput) ScoreResult {
	var result ScoreResult
	var score float64
	factors := []func(ScoringInput) (float64, *ScoreReason){
		scoreDeadline,
		scoreImportance,
		scoreEffort,
		scoreOverdue,
	}
	for _, f := range factors {
		delta, reason := f(input)
		score += delta
		if reason != nil {
			result.Reasons = append(result.Reasons, *reason)
		}
	}

	result.Score = clampFloat(score, 0, 1)
	result.Urgency = UrgencyFor(result.Score)
	result.Tags = descriptiveTags(input)
	return result
}

// UrgencyFor maps a score to its urgency band.
func UrgencyFor(score float64) domain.Urgency {
	switch {
	case score >= highUrgencyScore:
		return domain.UrgencyHigh
	case score >= mediumUrgencyScore:
		return domain.UrgencyMedium
	default:
		return domain.UrgencyLow
	}
}

// PriorityFromScore converts a 0..1 score into the 0..100 display priority.
func PriorityFromScore(score float64) int {
	return int(math.Round(score * 100))
}

func isOverdue(deadline *time.Time, now time.Time) bool {
	return deadline != nil && !deadline.After(now)
}

// DeadlineFactor is 1.0 once the deadline has passed and decays with the
// number of days remaining otherwise.
func DeadlineFactor(deadline *time.Time, now time.Time) float64 {
	if deadline == nil {
		return 0
	}
	if isOverdue(deadline, now) {
		return 1.0
	}
	hours := deadline.Sub(now).Hours()
	return math.Min(1.0, 1.0/(1.0+hours/24))
}

// EffortFactor rewards short tasks.
func EffortFactor(durationMin int) float64 {
	switch {
	case durationMin <= 30:
		return 1.0
	case durationMin <= 60:
		return 0.9
	case durationMin <= 120:
		return 0.8
	default:
		return 0.7
	}
}

func scoreDeadline(input ScoringInput) (float64, *ScoreReason) {
	df := DeadlineFactor(input.Deadline, input.Now)
	if df == 0 {
		return 0, nil
	}
	delta := df * input.Weights.Deadline
	return delta, &ScoreReason{Factor: "deadline", Delta: delta}
}

func scoreImportance(input ScoringInput) (float64, *ScoreReason) {
	norm := clampFloat(float64(input.Importance)/100, 0, 1)
	if norm == 0 {
		return 0, nil
	}
	delta := norm * input.Weights.Importance
	return delta, &ScoreReason{Factor: "importance", Delta: delta}
}

func scoreEffort(input ScoringInput) (float64, *ScoreReason) {
	delta := EffortFactor(input.DurationMinutes) * input.Weights.Effort
	return delta, &ScoreReason{Factor: "effort", Delta: delta}
}

func scoreOverdue(input ScoringInput) (float64, *ScoreReason) {
	if !isOverdue(input.Deadline, input.Now) {
		return 0, nil
	}
	delta := input.Weights.OverdueBonus
	return delta, &ScoreReason{Factor: "overdue", Delta: delta}
}

func descriptiveTags(input ScoringInput) []string {
	var tags []string
	if isOverdue(input.Deadline, input.Now) {
		tags = append(tags, TagOverdue)
	}
	if input.Deadline != nil {
		hours := input.Deadline.Sub(input.Now).Hours()
		if hours >= 0 && hours <= 24 {
			tags = append(tags, TagDueToday)
		}
	}
	if input.Importance >= 80 {
		tags = append(tags, TagHighImportance)
	}
	if input.DurationMinutes <= 30 {
		tags = append(tags, TagQuickWin)
	}
	return tags
}

// Prioritize scores every task against now and returns decorated copies
// sorted by descending score. The input slice is not modified.
func Prioritize(tasks []domain.Task, now time.Time) []domain.Task {
	weights := DefaultWeights()
	out := make([]domain.Task, len(tasks))
	for i, t := range tasks {
		c := t.Clone()
		res := ScoreTask(ScoringInput{
			Deadline:        c.Deadline,
			Importance:      c.Importance,
			DurationMinutes: c.DurationMinutes,
			Now:             now,
			Weights:         weights,
		})
		c.PriorityScore = res.Score
		c.Priority = PriorityFromScore(res.Score)
		c.Urgency = res.Urgency
		c.MergeTags(res.Tags...)
		out[i] = c
	}
	SortByScore(out)
	return out
}

func clampFloat(val, lo, hi float64) float64 {
	if val < lo {
		return lo
	}
	if val > hi {
		return hi
	}
	return val
}
