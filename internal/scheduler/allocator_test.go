package scheduler

import (
	"testing"
	"time"

	"github.com/alexanderramin/slotwise/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day = time.Date(2025, 11, 22, 0, 0, 0, 0, time.FixedZone("PST", -8*3600))

func at(hour, minute int) time.Time {
	return day.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
}

func slot(startH, startM, minutes int) domain.FreeSlot {
	s := at(startH, startM)
	return domain.FreeSlot{Start: s, End: s.Add(time.Duration(minutes) * time.Minute)}
}

func TestFindSlot_FirstFitInStartOrder(t *testing.T) {
	slots := []domain.FreeSlot{slot(14, 0, 60), slot(9, 0, 30), slot(10, 0, 90)}
	i, ok := FindSlot(45, slots, false)
	require.True(t, ok)
	assert.Equal(t, 2, i, "10:00 is the earliest slot with 45 minutes")

	_, ok = FindSlot(120, slots, false)
	assert.False(t, ok)
}

func TestFindSlot_PrefersMorningWindow(t *testing.T) {
	slots := []domain.FreeSlot{slot(6, 0, 120), slot(13, 0, 120), slot(9, 0, 120)}
	i, ok := FindSlot(60, slots, true)
	require.True(t, ok)
	assert.Equal(t, 2, i)

	i, ok = FindSlot(60, slots, false)
	require.True(t, ok)
	assert.Equal(t, 0, i)
}

func TestFindSlot_MorningFallsBackToFirstFit(t *testing.T) {
	slots := []domain.FreeSlot{slot(9, 0, 30), slot(15, 0, 120)}
	i, ok := FindSlot(60, slots, true)
	require.True(t, ok)
	assert.Equal(t, 1, i)
}

func TestPlace_WholeFit(t *testing.T) {
	task := domain.Task{ID: "t1", Description: "Tidy desk", DurationMinutes: 60, Importance: 50}
	slots := []domain.FreeSlot{slot(9, 0, 120)}

	p := Place(task, slots, PlacementOptions{MeetingBufferMin: 30})
	require.True(t, p.Placed)
	require.Len(t, p.Entries, 1)
	got := p.Entries[0].Task
	require.NotNil(t, got.ScheduledTime)
	assert.Equal(t, at(9, 0), *got.ScheduledTime)
	assert.False(t, got.Split)
	assert.Equal(t, 60, got.DurationMinutes)
	assert.Equal(t, domain.DefaultQuickActions(), got.QuickActions)

	require.Len(t, p.Slots, 1)
	assert.Equal(t, at(10, 0), p.Slots[0].Start)
	assert.Equal(t, at(9, 0), slots[0].Start, "input pool is not modified")
}

func TestPlace_ExactFitDropsSlot(t *testing.T) {
	task := domain.Task{ID: "t1", DurationMinutes: 60}
	slots := []domain.FreeSlot{slot(9, 0, 60), slot(13, 0, 30)}
	p := Place(task, slots, PlacementOptions{})
	require.True(t, p.Placed)
	assert.Equal(t, []domain.FreeSlot{slot(13, 0, 30)}, p.Slots)
}

func TestPlace_SplitsAcrossSlots(t *testing.T) {
	task := domain.Task{ID: "t1", Description: "Tidy garage", DurationMinutes: 150}
	slots := []domain.FreeSlot{slot(9, 0, 60), slot(11, 0, 120)}

	p := Place(task, slots, PlacementOptions{MeetingBufferMin: 30})
	require.True(t, p.Placed)
	require.Len(t, p.Entries, 2)

	first, second := p.Entries[0].Task, p.Entries[1].Task
	assert.Equal(t, at(9, 0), *first.ScheduledTime)
	assert.Equal(t, 60, first.DurationMinutes)
	assert.Equal(t, at(11, 0), *second.ScheduledTime)
	assert.Equal(t, 90, second.DurationMinutes)

	for k, e := range p.Entries {
		assert.True(t, e.Task.Split)
		assert.Equal(t, k+1, e.Task.PartNumber)
		assert.Equal(t, 2, e.Task.TotalParts)
		assert.Equal(t, 3, e.Task.EstimatedParts, "estimate is normalised to the first slot")
	}
	assert.Contains(t, first.Justification, "Part 1 of 3")

	require.Len(t, p.Slots, 1)
	assert.Equal(t, at(12, 30), p.Slots[0].Start)
}

func TestPlace_SplitLeavesUnscheduledTail(t *testing.T) {
	task := domain.Task{ID: "t1", DurationMinutes: 100}
	slots := []domain.FreeSlot{slot(9, 0, 30), slot(10, 0, 40)}

	p := Place(task, slots, PlacementOptions{})
	require.True(t, p.Placed)
	require.Len(t, p.Entries, 3)
	tail := p.Entries[2].Task
	assert.Nil(t, tail.ScheduledTime)
	assert.Equal(t, 30, tail.DurationMinutes)
	assert.Equal(t, 3, tail.PartNumber)
	assert.Contains(t, tail.Justification, "could not be scheduled")
	assert.Empty(t, p.Slots)

	total := 0
	for _, e := range p.Entries {
		total += e.Task.DurationMinutes
	}
	assert.Equal(t, 100, total)
}

func TestPlace_MeetingBuffers(t *testing.T) {
	task := domain.Task{ID: "m1", Description: "Client call", DurationMinutes: 30}
	slots := []domain.FreeSlot{slot(9, 0, 120)}

	p := Place(task, slots, PlacementOptions{MeetingBufferMin: 30, IsMeeting: true})
	require.True(t, p.Placed)
	got := p.Entries[0].Task
	assert.Equal(t, at(9, 30), *got.ScheduledTime)
	assert.Contains(t, got.Justification, "30-min buffers")
	require.Len(t, p.Slots, 1)
	assert.Equal(t, at(10, 30), p.Slots[0].Start, "trailing buffer is consumed")
}

func TestPlace_MeetingWithoutRoomForBuffers(t *testing.T) {
	task := domain.Task{ID: "m1", Description: "Team meeting", DurationMinutes: 30}
	slots := []domain.FreeSlot{slot(9, 0, 30)}

	p := Place(task, slots, PlacementOptions{MeetingBufferMin: 30, IsMeeting: true})
	assert.False(t, p.Placed)
	require.Len(t, p.Entries, 1)
	assert.Nil(t, p.Entries[0].Task.ScheduledTime)
	assert.Equal(t, slots, p.Slots)
}

func TestPlace_MeetingSplitSkipsSlotsTooSmallForBuffers(t *testing.T) {
	task := domain.Task{ID: "m1", Description: "Design review meeting", DurationMinutes: 90}
	slots := []domain.FreeSlot{slot(9, 0, 60), slot(10, 0, 120), slot(13, 0, 100)}

	p := Place(task, slots, PlacementOptions{MeetingBufferMin: 30, IsMeeting: true})
	require.True(t, p.Placed)
	require.Len(t, p.Entries, 2)
	assert.Equal(t, at(10, 30), *p.Entries[0].Task.ScheduledTime)
	assert.Equal(t, 60, p.Entries[0].Task.DurationMinutes)
	assert.Equal(t, at(13, 30), *p.Entries[1].Task.ScheduledTime)
	assert.Equal(t, 30, p.Entries[1].Task.DurationMinutes)
}

func TestPlace_NoSlots(t *testing.T) {
	p := Place(domain.Task{ID: "x", DurationMinutes: 15}, nil, PlacementOptions{})
	assert.False(t, p.Placed)
	require.Len(t, p.Entries, 1)
	assert.Contains(t, p.Entries[0].Task.Justification, "insufficient available time")
}
