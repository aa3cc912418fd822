// Package habits ranks habits by importance, keeps a bounded number active
// and attaches motivation and a notification time to each.
package habits

import (
	"context"
	"sort"
	"time"

	"github.com/alexanderramin/slotwise/internal/domain"
	"github.com/alexanderramin/slotwise/internal/sentiment"
)

const (
	DefaultMaxActive        = 3
	DefaultNotificationHour = 8
)

type Options struct {
	MaxActive        int
	NotificationHour int
}

func DefaultOptions() Options {
	return Options{MaxActive: DefaultMaxActive, NotificationHour: DefaultNotificationHour}
}

type Processor struct {
	analyzer sentiment.Analyzer
	opts     Options
}

// NewProcessor creates a Processor. A nil analyzer uses the local heuristic.
func NewProcessor(analyzer sentiment.Analyzer, opts Options) *Processor {
	if analyzer == nil {
		analyzer = sentiment.LocalAnalyzer{}
	}
	if opts.MaxActive < 0 {
		opts.MaxActive = DefaultMaxActive
	}
	if opts.NotificationHour < 0 || opts.NotificationHour > 23 {
		opts.NotificationHour = DefaultNotificationHour
	}
	return &Processor{analyzer: analyzer, opts: opts}
}

// Process analyses each habit, orders them by importance (ties keep input
// order) and marks the first MaxActive as active. now fixes "today" and
// must already be in the request zone.
func (p *Processor) Process(ctx context.Context, habits []domain.Habit, slots []domain.FreeSlot, now time.Time) []domain.HabitPlan {
	notifyAt := NotificationTime(slots, now, p.opts.NotificationHour)

	plans := make([]domain.HabitPlan, 0, len(habits))
	for _, h := range habits {
		h.DurationMinutes = domain.PositiveIntOr(h.DurationMinutes, domain.DefaultHabitMinutes)
		res := p.analyzer.Analyze(ctx, h.ImportanceStatement)
		plans = append(plans, domain.HabitPlan{
			Habit:             h,
			Importance:        res.Importance,
			Sentiment:         res.Sentiment,
			Confidence:        res.Confidence,
			SentimentFallback: res.Fallback,
			Motivation:        Motivate(h, res.Sentiment, res.Importance),
			NotificationTime:  notifyAt,
		})
	}

	sort.SliceStable(plans, func(i, j int) bool {
		return plans[i].Importance > plans[j].Importance
	})
	for i := range plans {
		if i < p.opts.MaxActive {
			plans[i].Status = domain.HabitActive
		} else {
			plans[i].Status = domain.HabitBackBurner
		}
	}
	return plans
}

// NotificationTime returns the start of the earliest slot at or after
// hour:00 on now's date, or hour:00 itself when no slot qualifies.
func NotificationTime(slots []domain.FreeSlot, now time.Time, hour int) time.Time {
	y, m, d := now.Date()
	threshold := time.Date(y, m, d, hour, 0, 0, 0, now.Location())

	var best *time.Time
	for _, s := range slots {
		if s.Start.Before(threshold) {
			continue
		}
		if best == nil || s.Start.Before(*best) {
			start := s.Start
			best = &start
		}
	}
	if best == nil {
		return threshold
	}
	return *best
}
