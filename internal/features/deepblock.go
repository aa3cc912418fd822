package features

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/alexanderramin/slotwise/internal/domain"
	"github.com/alexanderramin/slotwise/internal/scheduler"
	"github.com/alexanderramin/slotwise/internal/timeutil"
)

// DefaultDeepBlockMinutes is used when the caller gives no usable length.
const DefaultDeepBlockMinutes = 120

var focusKeywords = []string{
	"code", "programming", "write", "design", "analyze", "research",
	"plan", "strategy", "think", "solve", "create", "develop",
	"build", "architect", "review", "debug", "draft", "study",
	"implement",
}

// DeepBlock is a reserved stretch of uninterrupted work.
type DeepBlock struct {
	Start               time.Time
	DurationMinutes     int
	Tasks               []domain.Task
	NotificationsPaused bool
}

type DeepBlockResult struct {
	Outcome
	Block   *DeepBlock
	Updates []domain.Task
}

// RequiresDeepFocus reports whether a task benefits from a protected block:
// focus keywords in the description, importance of 70 or more, or an hour or
// longer of work.
func RequiresDeepFocus(t domain.Task) bool {
	desc := strings.ToLower(t.Description)
	for _, kw := range focusKeywords {
		if strings.Contains(desc, kw) {
			return true
		}
	}
	return t.Importance >= 70 || t.DurationMinutes >= 60
}

// PlanDeepBlock reserves a block of durationMin minutes in the first free
// slot that holds it, preferring morning, and fills it with the
// highest-priority deep-focus tasks whose combined duration fits.
func PlanDeepBlock(tasks []domain.Task, slots []domain.FreeSlot, durationMin int) DeepBlockResult {
	if len(tasks) == 0 {
		return DeepBlockResult{Outcome: fail("No tasks provided for deep block creation.", "Tasks list is empty.")}
	}
	if len(slots) == 0 {
		return DeepBlockResult{Outcome: fail("No available calendar slots for deep block.", "No free time slots available.")}
	}

	var warnings []string
	if durationMin <= 0 {
		warnings = append(warnings, fmt.Sprintf("invalid deep block duration %d, using %d", durationMin, DefaultDeepBlockMinutes))
		durationMin = DefaultDeepBlockMinutes
	}

	var focus []domain.Task
	for _, t := range tasks {
		if RequiresDeepFocus(t) {
			focus = append(focus, t.Clone())
		}
	}
	if len(focus) == 0 {
		return DeepBlockResult{Outcome: fail(
			"No deep-focus tasks found. Deep blocks work best for tasks requiring concentration.",
			"No tasks identified as requiring deep focus.")}
	}
	sort.SliceStable(focus, func(i, j int) bool {
		return focus[i].PriorityScore > focus[j].PriorityScore
	})

	idx, ok := scheduler.FindSlot(durationMin, slots, true)
	if !ok {
		return DeepBlockResult{Outcome: fail(
			fmt.Sprintf("No available time slot found for %d-minute deep block.", durationMin),
			"Insufficient free time for deep work block.")}
	}
	blockStart := slots[idx].Start

	var selected []domain.Task
	total := 0
	for _, t := range focus {
		d := domain.PositiveIntOr(t.DurationMinutes, 60)
		if total+d <= durationMin {
			selected = append(selected, t)
			total += d
		}
		if total >= durationMin {
			break
		}
	}
	if len(selected) == 0 {
		return DeepBlockResult{Outcome: fail(
			"Could not fit any tasks into the deep block.",
			"Tasks too large for available block duration.")}
	}

	cursor := blockStart
	for i := range selected {
		at := cursor
		selected[i].ScheduledTime = &at
		selected[i].Justification = "Scheduled in deep work block. High priority task requiring " +
			"focused attention. Notifications paused during this block."
		cursor = timeutil.AddMinutes(cursor, domain.PositiveIntOr(selected[i].DurationMinutes, 60))
	}

	reasoning := fmt.Sprintf(
		"Created %d-minute deep work block in %s (%s). Selected %d high-priority deep-focus tasks. "+
			"Notifications will be paused during this block to minimize interruptions.",
		durationMin, timeOfDay(blockStart), timeutil.Format(blockStart), len(selected))

	return DeepBlockResult{
		Outcome: Outcome{
			Success:   true,
			Message:   fmt.Sprintf("Created %d-minute deep work block with %d tasks.", durationMin, len(selected)),
			Reasoning: reasoning,
			Warnings:  warnings,
		},
		Block: &DeepBlock{
			Start:               blockStart,
			DurationMinutes:     durationMin,
			Tasks:               selected,
			NotificationsPaused: true,
		},
		Updates: domain.CloneTasks(selected),
	}
}

func timeOfDay(t time.Time) string {
	switch h := t.Hour(); {
	case h >= 8 && h < 12:
		return "morning"
	case h >= 12 && h < 17:
		return "afternoon"
	default:
		return "evening"
	}
}
