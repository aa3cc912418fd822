package intelligence

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/slotwise/internal/domain"
	"github.com/alexanderramin/slotwise/internal/features"
	"github.com/alexanderramin/slotwise/internal/timeutil"
)

const chatRules = `You are a task scheduling and habit management assistant. You help users manage their tasks, schedule their time and build productive habits.

## Capabilities

1. Task prioritization: score = deadline_factor * 0.5 + importance_norm * 0.4 + effort_factor * -0.1 + overdue_bonus (0.3 when overdue)
2. Task grouping: similar tasks (emails, errands, coding, meetings) are batched together
3. Scheduling: fit tasks into free calendar slots, split large tasks across slots, insert breaks after long work blocks
4. Habits: at most 3 active habits per day, importance from the sentiment of the user's statement, motivational messages with MLA citations

## Advanced features

%s

## Rules

- Prefer morning slots (8 AM - 12 PM) for deep-focus work
- Pad meetings with a 30-minute buffer before and after
- Breaks: 10-15 min after 90 min of work, 5-10 min after 50 min
- If a task is longer than any slot, split it across slots
- If total work exceeds free time, suggest rescheduling or splitting
- Habit notifications go at the earliest free slot after 08:00 local time

## Response format

Respond with ONLY a JSON object:
{
  "response": "your conversational reply",
  "reasoning": "why you chose this reply or action",
  "action": "one of: schedule, deep_block, snooze, tag, deadline, habit, info, none",
  "action_data": {},
  "quick_actions": ["suggested next action", "..."]
}

action_data by action:
- deep_block: {"duration_minutes": number}
- snooze: {"task_id": string, "snooze_minutes": number} or {"task_id": string, "hours": number}
- tag: {"tags": [string]} or {"tag": string}
- deadline: {"task_id": string, "new_deadline": ISO-8601 string}

Only use task IDs that appear in the context. Always explain your reasoning and suggest helpful next actions.`

const userSuffix = "\n\nProvide your response as JSON following the format specified in the system prompt. " +
	"Be helpful, explain your reasoning, and suggest appropriate actions."

func buildChatSystemPrompt(req ChatRequest) string {
	var feats []string
	for _, f := range features.Catalog() {
		feats = append(feats, fmt.Sprintf("- %s: %s", f.Name, f.Purpose))
	}

	var b strings.Builder
	fmt.Fprintf(&b, chatRules, strings.Join(feats, "\n"))
	b.WriteString("\n\n## Current Context\n\n")
	b.WriteString(buildContext(req))
	b.WriteString("\n\nTimezone: ")
	b.WriteString(req.Timezone)
	return b.String()
}

func buildContext(req ChatRequest) string {
	var parts []string
	if len(req.Tasks) > 0 {
		parts = append(parts, "Current Tasks:\n"+formatTasks(req.Tasks))
	}
	if len(req.Slots) > 0 {
		parts = append(parts, "Available Calendar Slots:\n"+formatSlots(req.Slots))
	}
	if len(req.Habits) > 0 {
		parts = append(parts, "Current Habits:\n"+formatHabits(req.Habits))
	}
	if len(parts) == 0 {
		return "No tasks, calendar, or habits provided."
	}
	return strings.Join(parts, "\n\n")
}

func formatTasks(tasks []domain.Task) string {
	lines := make([]string, 0, len(tasks))
	for _, t := range tasks {
		deadline := "No deadline"
		if t.Deadline != nil {
			deadline = timeutil.Format(*t.Deadline)
		}
		line := fmt.Sprintf("- [%s] %s (%d min, importance: %d, deadline: %s)",
			t.ID, t.Description, t.DurationMinutes, t.Importance, deadline)
		if t.ScheduledTime != nil {
			line += ", scheduled: " + timeutil.Format(*t.ScheduledTime)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func formatSlots(slots []domain.FreeSlot) string {
	lines := make([]string, 0, len(slots))
	for _, s := range slots {
		lines = append(lines, fmt.Sprintf("- %s to %s", timeutil.Format(s.Start), timeutil.Format(s.End)))
	}
	return strings.Join(lines, "\n")
}

func formatHabits(habits []domain.Habit) string {
	lines := make([]string, 0, len(habits))
	for _, h := range habits {
		lines = append(lines, fmt.Sprintf("- %s (%d min)", h.Name, h.DurationMinutes))
	}
	return strings.Join(lines, "\n")
}
