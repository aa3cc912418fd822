package formatter

import (
	"strings"

	"github.com/alexanderramin/slotwise/internal/contract"
)

// FormatChat renders one assistant turn.
func FormatChat(resp *contract.ChatResponse) string {
	var b strings.Builder
	title := "Assistant"
	if resp.Fallback {
		title = "Assistant (offline)"
	}
	b.WriteString(RenderBox(title, resp.Response))
	b.WriteString("\n")
	if resp.Reasoning != "" {
		b.WriteString(Dim(resp.Reasoning) + "\n")
	}
	if len(resp.ScheduleUpdates) > 0 {
		b.WriteString("\n")
		b.WriteString(taskTable(resp.ScheduleUpdates))
	}
	if len(resp.QuickActions) > 0 {
		b.WriteString("\n" + Dim("Try: ") + strings.Join(resp.QuickActions, Dim(" · ")) + "\n")
	}
	return b.String()
}

// FormatFeature renders a feature result head and the tasks it changed.
func FormatFeature(name string, head contract.FeatureHead, tasks []contract.TaskView) string {
	var b strings.Builder
	b.WriteString(Header(name))
	b.WriteString("\n")
	b.WriteString(StatusBadge(head.Success, head.Message, head.Message) + "\n")
	if head.Reasoning != "" {
		b.WriteString(Dim(head.Reasoning) + "\n")
	}
	for _, w := range head.Warnings {
		b.WriteString(StyleYellow.Render("! "+w) + "\n")
	}
	if len(tasks) > 0 {
		b.WriteString("\n")
		b.WriteString(taskTable(tasks))
	}
	return b.String()
}

func taskTable(tasks []contract.TaskView) string {
	rows := make([][]string, 0, len(tasks))
	for _, t := range tasks {
		rows = append(rows, []string{
			ClockTime(t.ScheduledTime),
			Truncate(t.Description, maxCellWidth),
			Minutes(t.DurationMinutes),
			strings.Join(t.Tags, " "),
		})
	}
	return RenderTable([]string{"TIME", "TASK", "LEN", "TAGS"}, rows)
}
