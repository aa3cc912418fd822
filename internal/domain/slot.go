package domain

import (
	"time"

	"github.com/alexanderramin/slotwise/internal/timeutil"
)

// FreeSlot is a half-open [Start, End) interval of available time.
type FreeSlot struct {
	Start time.Time
	End   time.Time
}

func (s FreeSlot) Minutes() int {
	return s.Interval().Minutes()
}

func (s FreeSlot) Interval() timeutil.Interval {
	return timeutil.Interval{Start: s.Start, End: s.End}
}

// Valid reports Start < End.
func (s FreeSlot) Valid() bool {
	return s.Start.Before(s.End)
}

// TotalMinutes sums the capacity of a slot pool.
func TotalMinutes(slots []FreeSlot) int {
	total := 0
	for _, s := range slots {
		total += s.Minutes()
	}
	return total
}

// CloneSlots copies a slot pool.
func CloneSlots(slots []FreeSlot) []FreeSlot {
	return append([]FreeSlot(nil), slots...)
}
