package formatter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alexanderramin/slotwise/internal/contract"
	"github.com/alexanderramin/slotwise/internal/domain"
)

// FormatSchedule renders a schedule response for a terminal.
func FormatSchedule(resp *contract.ScheduleResponse) string {
	var b strings.Builder

	b.WriteString(Header("Schedule"))
	b.WriteString("\n")
	rows := make([][]string, 0, len(resp.Schedule))
	placed, total := 0, 0
	for _, item := range resp.Schedule {
		desc := Truncate(item.Description, maxCellWidth)
		if item.Split {
			desc += Dim(" (part)")
		}
		if item.Group != domain.BreakGroup {
			total += item.DurationMinutes
			if item.ScheduledTime != "" {
				placed += item.DurationMinutes
			}
		} else {
			desc = StyleBlue.Render(desc)
		}
		rows = append(rows, []string{
			ClockTime(item.ScheduledTime),
			desc,
			item.Group,
			Minutes(item.DurationMinutes),
			UrgencyBadge(item.Urgency),
			strconv.Itoa(item.Priority),
		})
	}
	b.WriteString(RenderTable([]string{"TIME", "TASK", "GROUP", "LEN", "URGENCY", "PRI"}, rows))
	b.WriteString(fmt.Sprintf("\nPlaced work  %s  %s\n", RenderProgress(placed, total, 20),
		Dim(fmt.Sprintf("%s of %s", Minutes(placed), Minutes(total)))))

	if len(resp.Habits) > 0 {
		b.WriteString("\n")
		b.WriteString(Header("Habits"))
		b.WriteString("\n")
		hrows := make([][]string, 0, len(resp.Habits))
		for _, h := range resp.Habits {
			hrows = append(hrows, []string{
				Truncate(h.Name, maxCellWidth),
				StatusBadge(h.Status == string(domain.HabitActive), "active", "back burner"),
				strconv.Itoa(h.Importance),
				h.Sentiment,
				ClockTime(h.NotificationTime),
			})
		}
		b.WriteString(RenderTable([]string{"HABIT", "STATUS", "IMP", "SENTIMENT", "NOTIFY"}, hrows))
	}

	if resp.CursorPrompt != "" {
		b.WriteString("\n")
		b.WriteString(Bold("Next: ") + resp.CursorPrompt + "\n")
	}
	if resp.ValidationSummary != "" {
		b.WriteString(Dim(resp.ValidationSummary) + "\n")
	}
	return b.String()
}

// FormatRuns renders the stored run listing.
func FormatRuns(runs []contract.RunSummary) string {
	if len(runs) == 0 {
		return Dim("No stored runs.") + "\n"
	}
	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		rows = append(rows, []string{
			r.ID,
			r.CreatedAt,
			r.Timezone,
			strconv.Itoa(r.TaskCount),
			strconv.Itoa(r.PlacedCount),
			strconv.Itoa(r.UnplacedCount),
			strconv.Itoa(r.BreakCount),
		})
	}
	return RenderTable([]string{"RUN", "CREATED", "ZONE", "TASKS", "PLACED", "UNPLACED", "BREAKS"}, rows)
}
