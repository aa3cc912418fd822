package scheduler

import (
	"sort"
	"time"

	"github.com/alexanderramin/slotwise/internal/domain"
)

// SortByScore orders tasks by descending priority score. Ties keep their
// input order.
func SortByScore(tasks []domain.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].PriorityScore > tasks[j].PriorityScore
	})
}

// SortSlots orders free slots by start time. Ties keep their input order.
func SortSlots(slots []domain.FreeSlot) {
	sort.SliceStable(slots, func(i, j int) bool {
		return slots[i].Start.Before(slots[j].Start)
	})
}

// OrderChronologically sorts the timed entries by start time within the
// positions they already occupy. Unplaced entries keep their positions.
func OrderChronologically(entries []domain.ScheduleEntry) {
	var idx []int
	var timed []domain.ScheduleEntry
	for i, e := range entries {
		if e.Scheduled() {
			idx = append(idx, i)
			timed = append(timed, e)
		}
	}
	sort.SliceStable(timed, func(i, j int) bool {
		return startOf(timed[i]).Before(startOf(timed[j]))
	})
	for k, i := range idx {
		entries[i] = timed[k]
	}
}

func startOf(e domain.ScheduleEntry) time.Time {
	return *e.Start()
}
