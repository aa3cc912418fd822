package scheduler

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/alexanderramin/slotwise/internal/domain"
	"github.com/alexanderramin/slotwise/internal/timeutil"
)

// Morning window for deep-focus placement, as local clock hours [start, end).
const (
	morningStartHour = 8
	morningEndHour   = 12
)

// DefaultMeetingBufferMin pads both sides of a meeting.
const DefaultMeetingBufferMin = 30

// PlacementOptions describes how a single task is fitted into free time.
type PlacementOptions struct {
	MeetingBufferMin int
	PreferMorning    bool
	IsMeeting        bool
}

// Placement is the result of placing one task. Entries holds one entry for
// a whole or unplaced task and one per part for a split task; Slots is the
// updated pool.
type Placement struct {
	Entries []domain.ScheduleEntry
	Slots   []domain.FreeSlot
	Placed  bool
}

// FindSlot returns the index in slots of the first slot, in start order,
// whose capacity is at least required minutes. With preferMorning, a slot
// starting in the morning window wins over earlier non-morning slots.
func FindSlot(required int, slots []domain.FreeSlot, preferMorning bool) (int, bool) {
	order := make([]int, len(slots))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return slots[order[a]].Start.Before(slots[order[b]].Start)
	})

	if preferMorning {
		for _, i := range order {
			if isMorning(slots[i]) && slots[i].Minutes() >= required {
				return i, true
			}
		}
	}
	for _, i := range order {
		if slots[i].Minutes() >= required {
			return i, true
		}
	}
	return -1, false
}

func isMorning(s domain.FreeSlot) bool {
	h := s.Start.Hour()
	return h >= morningStartHour && h < morningEndHour
}

// Place fits task into slots, splitting it across several slots when no
// single slot can hold it. The input slice is never modified.
func Place(task domain.Task, slots []domain.FreeSlot, opts PlacementOptions) Placement {
	pool := domain.CloneSlots(slots)
	buffer := 0
	if opts.IsMeeting {
		buffer = opts.MeetingBufferMin
	}
	overhead := 2 * buffer
	dur := task.DurationMinutes

	if i, ok := FindSlot(dur+overhead, pool, opts.PreferMorning); ok {
		slot := pool[i]
		start := timeutil.AddMinutes(slot.Start, buffer)
		placed := task.Clone()
		placed.ScheduledTime = &start
		placed.Split = false
		placed.Justification = wholeJustification(task, slot, opts, buffer)
		placed.QuickActions = domain.DefaultQuickActions()
		pool = consume(pool, i, timeutil.AddMinutes(start, dur+buffer))
		return Placement{
			Entries: []domain.ScheduleEntry{domain.TaskEntry(placed)},
			Slots:   pool,
			Placed:  true,
		}
	}

	first, ok := FindSlot(1+overhead, pool, opts.PreferMorning)
	if !ok {
		return Placement{
			Entries: []domain.ScheduleEntry{domain.TaskEntry(Unplaced(task))},
			Slots:   pool,
			Placed:  false,
		}
	}

	firstCapacity := pool[first].Minutes() - overhead
	estimated := ceilDiv(dur, firstCapacity)

	var parts []domain.Task
	remaining := dur
	for remaining > 0 {
		partNumber := len(parts) + 1
		i, ok := FindSlot(1+overhead, pool, opts.PreferMorning)
		if !ok {
			part := task.Clone()
			part.ScheduledTime = nil
			part.DurationMinutes = remaining
			part.Split = true
			part.PartNumber = partNumber
			part.Justification = fmt.Sprintf(
				"Part %d could not be scheduled due to insufficient available time. Consider rescheduling.",
				partNumber)
			part.QuickActions = domain.DefaultQuickActions()
			parts = append(parts, part)
			break
		}

		capacity := pool[i].Minutes() - overhead
		partDur := min(remaining, capacity)
		start := timeutil.AddMinutes(pool[i].Start, buffer)

		part := task.Clone()
		part.ScheduledTime = &start
		part.DurationMinutes = partDur
		part.Split = true
		part.PartNumber = partNumber
		if partNumber == 1 {
			part.Justification = fmt.Sprintf(
				"Split task across multiple parts due to limited continuous time. Part 1 of %d scheduled.",
				estimated)
		} else {
			part.Justification = fmt.Sprintf("Part %d of split task scheduled in available slot.", partNumber)
		}
		part.QuickActions = domain.DefaultQuickActions()
		parts = append(parts, part)

		pool = consume(pool, i, timeutil.AddMinutes(start, partDur+buffer))
		remaining -= partDur
	}

	entries := make([]domain.ScheduleEntry, len(parts))
	for k := range parts {
		parts[k].TotalParts = len(parts)
		parts[k].EstimatedParts = estimated
		entries[k] = domain.TaskEntry(parts[k])
	}
	return Placement{Entries: entries, Slots: pool, Placed: true}
}

// Unplaced marks a task as not scheduled, keeping it in the output.
func Unplaced(task domain.Task) domain.Task {
	t := task.Clone()
	t.ScheduledTime = nil
	t.Justification = "Task could not be scheduled due to insufficient available time. Consider rescheduling or splitting."
	t.QuickActions = domain.DefaultQuickActions()
	return t
}

// consume removes [slot.Start, until) from pool[i]. The remainder stays at
// the same index; an exhausted slot is dropped.
func consume(pool []domain.FreeSlot, i int, until time.Time) []domain.FreeSlot {
	if until.Before(pool[i].End) {
		pool[i].Start = until
		return pool
	}
	return append(pool[:i], pool[i+1:]...)
}

func wholeJustification(task domain.Task, slot domain.FreeSlot, opts PlacementOptions, buffer int) string {
	var parts []string
	if opts.PreferMorning {
		if isMorning(slot) {
			parts = append(parts, "Scheduled in morning slot for deep-focus work")
		} else {
			parts = append(parts, "No morning slot fit this deep-focus work; placed in the earliest slot that did")
		}
	}
	if opts.IsMeeting {
		parts = append(parts, fmt.Sprintf("Added %d-min buffers for context switching", buffer))
	}
	if len(task.Tags) > 0 {
		parts = append(parts, "Tags: "+strings.Join(task.Tags, ", "))
	}
	if len(parts) == 0 {
		return "Scheduled in the first available slot."
	}
	return strings.Join(parts, ". ")
}

func ceilDiv(a, b int) int {
	if b <= 0 {
		return 0
	}
	return (a + b - 1) / b
}
