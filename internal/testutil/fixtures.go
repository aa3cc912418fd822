package testutil

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/alexanderramin/slotwise/internal/domain"
)

var runCounter atomic.Int64

type RunOption func(*domain.ScheduleRun)

func WithRunID(id string) RunOption {
	return func(r *domain.ScheduleRun) { r.ID = id }
}

func WithCreatedAt(t time.Time) RunOption {
	return func(r *domain.ScheduleRun) { r.CreatedAt = t }
}

func WithWarnings(w ...string) RunOption {
	return func(r *domain.ScheduleRun) { r.Warnings = w }
}

func WithRequest(json string) RunOption {
	return func(r *domain.ScheduleRun) { r.RequestJSON = []byte(json) }
}

func WithCounts(placed, unplaced, breaks int) RunOption {
	return func(r *domain.ScheduleRun) {
		r.PlacedCount = placed
		r.UnplacedCount = unplaced
		r.BreakCount = breaks
		r.TaskCount = placed + unplaced
	}
}

// NewTestRun builds a run with a unique ID and a minimal request/response.
func NewTestRun(opts ...RunOption) *domain.ScheduleRun {
	n := runCounter.Add(1)
	r := &domain.ScheduleRun{
		ID:           fmt.Sprintf("run-%d", n),
		CreatedAt:    time.Date(2025, 11, 22, 8, 0, 0, 0, time.UTC).Add(time.Duration(n) * time.Minute),
		Timezone:     "America/Los_Angeles",
		RequestJSON:  []byte(`{"tasks":[],"calendar_free":[]}`),
		ResponseJSON: []byte(`{}`),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}
