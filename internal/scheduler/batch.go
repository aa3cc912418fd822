package scheduler

import (
	"github.com/alexanderramin/slotwise/internal/domain"
	"github.com/alexanderramin/slotwise/internal/grouper"
)

// Options configures a scheduling run.
type Options struct {
	MeetingBufferMin int
	Breaks           BreakPolicy
}

func DefaultOptions() Options {
	return Options{
		MeetingBufferMin: DefaultMeetingBufferMin,
		Breaks:           DefaultBreakPolicy(),
	}
}

// Result is the outcome of a scheduling run.
type Result struct {
	Entries   []domain.ScheduleEntry
	Remaining []domain.FreeSlot
	Placed    int
	Unplaced  int
	Split     int
	Breaks    int
}

// Schedule places tasks greedily by descending score, batched by group so
// same-group tasks are attempted together, threading the shrinking slot pool
// from one placement to the next. Tasks that cannot be placed are kept with
// no scheduled time. Breaks are inserted over the chronological result.
func Schedule(tasks []domain.Task, slots []domain.FreeSlot, opts Options) Result {
	sorted := domain.CloneTasks(tasks)
	SortByScore(sorted)

	pool := domain.CloneSlots(slots)
	var res Result
	var entries []domain.ScheduleEntry
	for _, batch := range grouper.Batch(sorted) {
		for _, task := range batch {
			p := Place(task, pool, PlacementOptions{
				MeetingBufferMin: opts.MeetingBufferMin,
				PreferMorning:    IsDeepFocus(task),
				IsMeeting:        IsMeeting(task),
			})
			pool = p.Slots
			entries = append(entries, p.Entries...)
			switch {
			case !p.Placed:
				res.Unplaced++
			case len(p.Entries) > 1:
				res.Split++
				res.Placed++
			default:
				res.Placed++
			}
		}
	}

	OrderChronologically(entries)
	res.Entries = InsertBreaks(entries, opts.Breaks)
	res.Breaks = len(res.Entries) - len(entries)
	res.Remaining = pool
	return res
}
