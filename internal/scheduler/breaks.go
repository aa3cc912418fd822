package scheduler

import (
	"time"

	"github.com/alexanderramin/slotwise/internal/domain"
	"github.com/alexanderramin/slotwise/internal/timeutil"
)

// BreakPolicy sets when breaks are due and how long they last.
type BreakPolicy struct {
	LongAfterMin  int
	LongBreakMin  int
	ShortAfterMin int
	ShortBreakMin int
}

func DefaultBreakPolicy() BreakPolicy {
	return BreakPolicy{
		LongAfterMin:  90,
		LongBreakMin:  15,
		ShortAfterMin: 50,
		ShortBreakMin: 5,
	}
}

// BreakFor returns the break length due after cumulative focused minutes,
// or 0 when none is due.
func (p BreakPolicy) BreakFor(cumulative int) int {
	if cumulative <= 0 {
		return 0
	}
	switch {
	case cumulative >= p.LongAfterMin:
		return p.LongBreakMin
	case cumulative >= p.ShortAfterMin:
		return p.ShortBreakMin
	default:
		return 0
	}
}

// InsertBreaks walks a time-ordered schedule once and inserts breaks before
// tasks once enough focused work has accumulated. Placed tasks are never
// moved: a break goes immediately before the task when that window is free,
// otherwise into the gap after the previous timed entry, otherwise it is
// skipped. Unplaced entries pass through without counting as work.
func InsertBreaks(entries []domain.ScheduleEntry, policy BreakPolicy) []domain.ScheduleEntry {
	if len(entries) == 0 {
		return nil
	}

	out := make([]domain.ScheduleEntry, 0, len(entries))
	cumulative := 0
	var last timeutil.Interval
	haveLast := false

	for _, e := range entries {
		iv, timed := e.Interval()
		if !timed {
			out = append(out, e)
			continue
		}
		if e.IsBreak() {
			out = append(out, e)
			last, haveLast = iv, true
			continue
		}

		if d := policy.BreakFor(cumulative); d > 0 {
			start, ok := breakStart(iv, last, haveLast, d)
			if ok {
				brk := domain.NewBreak(start, d, cumulative)
				out = append(out, brk)
				last, _ = brk.Interval()
				haveLast = true
				cumulative = 0
			}
		}

		out = append(out, e)
		last, haveLast = iv, true
		cumulative += e.DurationMinutes()
	}
	return out
}

// breakStart picks where a d-minute break before task can go.
func breakStart(task, last timeutil.Interval, haveLast bool, d int) (time.Time, bool) {
	candidate := timeutil.Interval{Start: timeutil.AddMinutes(task.Start, -d), End: task.Start}
	if !haveLast || !candidate.Overlaps(last) {
		return candidate.Start, true
	}
	gap, err := timeutil.DurationMinutes(last.End, task.Start)
	if err != nil || gap < d {
		return time.Time{}, false
	}
	return last.End, true
}
