package intelligence

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/alexanderramin/slotwise/internal/domain"
	"github.com/alexanderramin/slotwise/internal/features"
)

var wordSplit = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// DeterministicChat answers without the model by routing on keywords. cause
// is the failure that made the model unusable and shapes the preamble.
func DeterministicChat(req ChatRequest, cause error) *ChatResult {
	msg := strings.ToLower(req.Message)
	result := &ChatResult{
		Success:      true,
		Action:       ActionInfo,
		ActionData:   map[string]any{},
		QuickActions: DefaultQuickActions(),
		Fallback:     true,
		Source:       SourceDeterministic,
	}

	var body string
	switch {
	case containsAny(msg, "deep", "focus"):
		res := features.PlanDeepBlock(req.Tasks, req.Slots, features.DefaultDeepBlockMinutes)
		result.Action = ActionDeepBlock
		result.ActionData["duration_minutes"] = features.DefaultDeepBlockMinutes
		result.ScheduleUpdates = res.Updates
		result.Reasoning = res.Reasoning
		body = res.Message

	case containsAny(msg, "tag", "label", "categor"):
		res := features.ApplyTags(req.Tasks, nil, true)
		result.Action = ActionTag
		result.TaggedTasks = res.Tagged
		result.Reasoning = res.Reasoning
		body = res.Message

	case containsAny(msg, "deadline", "extension", "extend"):
		res := features.NegotiateDeadline(req.Tasks, req.Slots,
			features.DeadlineRequest{TaskID: mentionedTaskID(req.Message, req.Tasks)}, req.Now)
		result.Action = ActionDeadline
		if res.Success {
			result.Deadline = &res
		}
		result.Reasoning = res.Reasoning
		body = res.Message

	case containsAny(msg, "snooze", "postpone", "later") && mentionedTaskID(req.Message, req.Tasks) != "":
		id := mentionedTaskID(req.Message, req.Tasks)
		res := features.Snooze(req.Tasks, id, features.SnoozeMinutes(features.DefaultSnoozeMinutes))
		result.Action = ActionSnooze
		result.ActionData["task_id"] = id
		result.ActionData["snooze_minutes"] = features.DefaultSnoozeMinutes
		result.ScheduleUpdates = res.Updates
		result.Reasoning = res.Reasoning
		body = res.Message

	default:
		body = summarize(req)
		result.Reasoning = "Summarised the current context without the assistant."
	}

	result.Response = strings.TrimSpace(errorPreamble(cause) + " " + body)
	return result
}

func containsAny(s string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

// mentionedTaskID returns the first known task ID appearing in the message.
func mentionedTaskID(message string, tasks []domain.Task) string {
	for _, word := range wordSplit.Split(message, -1) {
		if word == "" {
			continue
		}
		for _, t := range tasks {
			if strings.EqualFold(t.ID, word) {
				return t.ID
			}
		}
	}
	return ""
}

func summarize(req ChatRequest) string {
	if len(req.Tasks) == 0 && len(req.Slots) == 0 {
		return "Share your tasks and free calendar slots and I can build a schedule."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "You have %d task(s) and %d free minute(s) across %d slot(s).",
		len(req.Tasks), domain.TotalMinutes(req.Slots), len(req.Slots))
	if top := topTask(req.Tasks); top != nil {
		fmt.Fprintf(&b, " Highest priority: %s.", top.Description)
	}
	return b.String()
}

func topTask(tasks []domain.Task) *domain.Task {
	var top *domain.Task
	for i := range tasks {
		if top == nil || tasks[i].PriorityScore > top.PriorityScore {
			top = &tasks[i]
		}
	}
	return top
}
