package features

import (
	"fmt"
	"math"
	"strings"

	"github.com/alexanderramin/slotwise/internal/domain"
	"github.com/alexanderramin/slotwise/internal/timeutil"
)

// DefaultSnoozeMinutes applies when the requested amount is unusable.
const DefaultSnoozeMinutes = 30

type snoozeUnit int

const (
	unitMinutes snoozeUnit = iota
	unitHours
)

// SnoozeAmount is a postponement expressed either in minutes or in hours.
type SnoozeAmount struct {
	value float64
	unit  snoozeUnit
}

func SnoozeMinutes(m float64) SnoozeAmount { return SnoozeAmount{value: m, unit: unitMinutes} }
func SnoozeHours(h float64) SnoozeAmount   { return SnoozeAmount{value: h, unit: unitHours} }

// Minutes normalises the amount; ok is false when it is not positive.
func (a SnoozeAmount) Minutes() (int, bool) {
	v := a.value
	if a.unit == unitHours {
		v *= 60
	}
	m := int(math.Round(v))
	if m <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return m, true
}

func (a SnoozeAmount) String() string {
	if a.unit == unitHours {
		return fmt.Sprintf("%gh", a.value)
	}
	return fmt.Sprintf("%gm", a.value)
}

type SnoozeResult struct {
	Outcome
	Snoozed       *domain.Task
	SnoozeMinutes int
	Rescheduled   []domain.Task
	Updates       []domain.Task
}

// Snooze pushes a scheduled task back and moves related tasks that would
// now collide with it to just after it. Related means same group or at
// least two description words in common.
func Snooze(tasks []domain.Task, taskID string, amount SnoozeAmount) SnoozeResult {
	if len(tasks) == 0 {
		return SnoozeResult{Outcome: fail("No tasks provided.", "Tasks list is empty.")}
	}
	if taskID == "" {
		return SnoozeResult{Outcome: fail("Task ID is required.", "No task ID provided.")}
	}

	var warnings []string
	minutes, ok := amount.Minutes()
	if !ok {
		warnings = append(warnings, fmt.Sprintf("invalid snooze amount %s, using %d minutes", amount, DefaultSnoozeMinutes))
		minutes = DefaultSnoozeMinutes
	}

	idx := -1
	for i := range tasks {
		if tasks[i].ID == taskID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return SnoozeResult{Outcome: fail(fmt.Sprintf("Task %s not found.", taskID), "Task ID not found in task list.")}
	}
	task := tasks[idx]
	if task.ScheduledTime == nil {
		return SnoozeResult{Outcome: fail(
			"Task is not currently scheduled.",
			"Cannot snooze unscheduled task. Please schedule it first.")}
	}

	original := *task.ScheduledTime
	newStart := timeutil.AddMinutes(original, minutes)
	snoozed := task.Clone()
	snoozed.ScheduledTime = &newStart
	snoozed.Justification = fmt.Sprintf("Task snoozed by %d minutes. Original time: %s, new time: %s.",
		minutes, timeutil.Format(original), timeutil.Format(newStart))

	var moved []domain.Task
	for i, t := range tasks {
		if i == idx || t.ID == taskID || t.ScheduledTime == nil {
			continue
		}
		if t.Group != task.Group && !related(t, task) {
			continue
		}
		end := timeutil.AddMinutes(*t.ScheduledTime, domain.PositiveIntOr(t.DurationMinutes, 60))
		if t.ScheduledTime.Before(newStart) && end.After(newStart) {
			dep := t.Clone()
			at := timeutil.AddMinutes(newStart, domain.PositiveIntOr(task.DurationMinutes, 60))
			dep.ScheduledTime = &at
			dep.Justification = fmt.Sprintf("Auto-rescheduled due to dependency on snoozed task %s.", taskID)
			moved = append(moved, dep)
		}
	}

	updates := append([]domain.Task{snoozed.Clone()}, domain.CloneTasks(moved)...)
	return SnoozeResult{
		Outcome: Outcome{
			Success: true,
			Message: fmt.Sprintf("Task snoozed by %d minutes", minutes),
			Reasoning: fmt.Sprintf("Snoozed task %q by %d minutes. New scheduled time: %s. "+
				"%d dependent task(s) auto-rescheduled to prevent conflicts.",
				task.Description, minutes, timeutil.Format(newStart), len(moved)),
			Warnings: warnings,
		},
		Snoozed:       &snoozed,
		SnoozeMinutes: minutes,
		Rescheduled:   moved,
		Updates:       updates,
	}
}

func related(a, b domain.Task) bool {
	words := make(map[string]bool)
	for _, w := range strings.Fields(strings.ToLower(a.Description)) {
		words[w] = true
	}
	common := 0
	seen := make(map[string]bool)
	for _, w := range strings.Fields(strings.ToLower(b.Description)) {
		if words[w] && !seen[w] {
			seen[w] = true
			common++
		}
	}
	return common >= 2
}
