package domain

import (
	"fmt"
	"time"

	"github.com/alexanderramin/slotwise/internal/timeutil"
)

// ScheduleEntry is one row of a schedule: a placed (or unplaced) task part,
// or an inserted break.
type ScheduleEntry struct {
	Kind EntryKind
	Task Task

	// Break only: focused minutes accumulated before the break.
	CumulativeWorkMinutes int
}

func TaskEntry(t Task) ScheduleEntry {
	return ScheduleEntry{Kind: EntryTask, Task: t}
}

// NewBreak builds a break entry starting at start.
func NewBreak(start time.Time, minutes, cumulative int) ScheduleEntry {
	at := start
	return ScheduleEntry{
		Kind: EntryBreak,
		Task: Task{
			ID:              "break_" + timeutil.Format(start),
			Description:     fmt.Sprintf("Break (%d min)", minutes),
			DurationMinutes: minutes,
			Group:           BreakGroup,
			Urgency:         UrgencyLow,
			ScheduledTime:   &at,
			Justification: fmt.Sprintf(
				"Inserted %d-minute break after %d minutes of focused work to maintain productivity and prevent burnout.",
				minutes, cumulative),
		},
		CumulativeWorkMinutes: cumulative,
	}
}

func (e ScheduleEntry) IsBreak() bool {
	return e.Kind == EntryBreak
}

// Scheduled reports whether the entry has a start time.
func (e ScheduleEntry) Scheduled() bool {
	return e.Task.ScheduledTime != nil
}

func (e ScheduleEntry) Start() *time.Time {
	return e.Task.ScheduledTime
}

func (e ScheduleEntry) End() *time.Time {
	return e.Task.End()
}

func (e ScheduleEntry) DurationMinutes() int {
	return e.Task.DurationMinutes
}

// Interval returns the occupied range; ok is false for unplaced entries.
func (e ScheduleEntry) Interval() (timeutil.Interval, bool) {
	if e.Task.ScheduledTime == nil {
		return timeutil.Interval{}, false
	}
	return timeutil.Interval{Start: *e.Task.ScheduledTime, End: *e.Task.End()}, true
}

// Tasks extracts the task view of each entry, breaks included.
func Tasks(entries []ScheduleEntry) []Task {
	out := make([]Task, len(entries))
	for i, e := range entries {
		out[i] = e.Task.Clone()
	}
	return out
}
