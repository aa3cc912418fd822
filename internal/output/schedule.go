// Package output turns scheduler, habit and feature results into the
// response shapes defined in contract.
package output

import (
	"sort"
	"strconv"
	"strings"

	"github.com/alexanderramin/slotwise/internal/contract"
	"github.com/alexanderramin/slotwise/internal/domain"
	"github.com/alexanderramin/slotwise/internal/features"
	"github.com/alexanderramin/slotwise/internal/habits"
	"github.com/alexanderramin/slotwise/internal/timeutil"
)

const (
	defaultJustification = "Scheduled based on priority and availability."
	breakJustification   = "Inserted break for cognitive health."
	notConfigured        = "not configured"
	maxPromptWords       = 12
	maxPromptDescWords   = 8
)

// OutputFormat lists the sections the completion call is asked to produce.
var OutputFormat = []string{"features", "schedule", "habits", "feature_suggestions", "cursor_prompt"}

// Assembly gathers everything one schedule response is built from.
type Assembly struct {
	Entries  []domain.ScheduleEntry
	Habits   []domain.HabitPlan
	Input    contract.CallInput
	Endpoint string // "" when no completion service is configured
	// CallError is set when the local scheduler ran instead of the
	// completion service.
	CallError *contract.CallError
	Summary   string
}

// Assemble builds the full schedule response.
func Assemble(a Assembly) *contract.ScheduleResponse {
	return &contract.ScheduleResponse{
		Features:           features.Catalog(),
		Schedule:           Schedule(a.Entries),
		Habits:             Habits(a.Habits),
		GeminiAPICall:      CompletionCall(a.Endpoint, a.Input, a.CallError),
		FeatureSuggestions: features.Suggestions(),
		CursorPrompt:       CursorPrompt(a.Entries),
		ValidationSummary:  a.Summary,
	}
}

// Schedule formats entries in order. It never returns an empty list: a
// sample item stands in when nothing was scheduled.
func Schedule(entries []domain.ScheduleEntry) []contract.ScheduleItem {
	if len(entries) == 0 {
		return []contract.ScheduleItem{sampleItem()}
	}
	items := make([]contract.ScheduleItem, 0, len(entries))
	for _, e := range entries {
		if e.IsBreak() {
			items = append(items, breakItem(e))
			continue
		}
		items = append(items, Item(e.Task))
	}
	return items
}

// Item formats one task. Unplaced tasks carry an empty scheduled_time.
func Item(t domain.Task) contract.ScheduleItem {
	quick := t.QuickActions
	if len(quick) == 0 {
		quick = domain.DefaultQuickActions()
	}
	urgency := t.Urgency
	if urgency == "" {
		urgency = domain.UrgencyLow
	}
	return contract.ScheduleItem{
		TaskID:          t.ID,
		Description:     t.Description,
		Group:           domain.Coalesce(t.Group, domain.DefaultGroup),
		Priority:        t.Priority,
		Urgency:         string(urgency),
		ScheduledTime:   timeutil.FormatPtr(t.ScheduledTime),
		DurationMinutes: t.DurationMinutes,
		Split:           t.Split,
		Justification:   domain.Coalesce(t.Justification, defaultJustification),
		QuickActions:    append([]string(nil), quick...),
	}
}

func breakItem(e domain.ScheduleEntry) contract.ScheduleItem {
	start := timeutil.FormatPtr(e.Start())
	return contract.ScheduleItem{
		TaskID:          "break_" + start,
		Description:     domain.Coalesce(e.Task.Description, "Break"),
		Group:           domain.BreakGroup,
		Priority:        0,
		Urgency:         string(domain.UrgencyLow),
		ScheduledTime:   start,
		DurationMinutes: e.DurationMinutes(),
		Split:           false,
		Justification:   domain.Coalesce(e.Task.Justification, breakJustification),
		QuickActions:    domain.DefaultQuickActions(),
	}
}

func sampleItem() contract.ScheduleItem {
	return contract.ScheduleItem{
		TaskID:          "sample_1",
		Description:     "Sample scheduled task",
		Group:           domain.DefaultGroup,
		Priority:        50,
		Urgency:         string(domain.UrgencyMedium),
		ScheduledTime:   "2025-11-22T09:00:00-08:00",
		DurationMinutes: 30,
		Justification:   "Sample task for demonstration.",
		QuickActions:    domain.DefaultQuickActions(),
	}
}

// Habits formats habit plans, with a sample item when there are none.
func Habits(plans []domain.HabitPlan) []contract.HabitItem {
	if len(plans) == 0 {
		return []contract.HabitItem{sampleHabit()}
	}
	items := make([]contract.HabitItem, 0, len(plans))
	for _, p := range plans {
		notify := ""
		if !p.NotificationTime.IsZero() {
			notify = timeutil.Format(p.NotificationTime)
		}
		citations := p.Motivation.Citations
		if citations == nil {
			citations = []string{}
		}
		items = append(items, contract.HabitItem{
			HabitID:    p.ID,
			Name:       p.Name,
			Importance: p.Importance,
			Sentiment:  string(p.Sentiment),
			Status:     string(p.Status),
			Motivation: contract.MotivationItem{
				Message:   p.Motivation.Message,
				Citations: citations,
			},
			NotificationTime:       notify,
			AccountabilityPrompted: p.AccountabilityPrompted,
		})
	}
	return items
}

func sampleHabit() contract.HabitItem {
	return contract.HabitItem{
		HabitID:    "sample_habit_1",
		Name:       "Sample habit",
		Importance: 60,
		Sentiment:  string(domain.SentimentPositive),
		Status:     string(domain.HabitActive),
		Motivation: contract.MotivationItem{
			Message:   "Sample motivational message for habit tracking.",
			Citations: []string{habits.SampleCitation()},
		},
		NotificationTime: "2025-11-22T08:00:00-08:00",
	}
}

// CompletionCall describes the remote optimisation request.
func CompletionCall(endpoint string, input contract.CallInput, callErr *contract.CallError) contract.CompletionCall {
	return contract.CompletionCall{
		Endpoint:     domain.Coalesce(endpoint, notConfigured),
		Input:        input,
		OutputFormat: append([]string(nil), OutputFormat...),
		Error:        callErr,
	}
}

// CursorPrompt recommends the next action in at most twelve words, based on
// the highest-priority work entry (the earliest one on ties).
func CursorPrompt(entries []domain.ScheduleEntry) string {
	if len(entries) == 0 {
		return "No tasks scheduled. Add tasks to begin."
	}
	var work []domain.Task
	for _, e := range entries {
		if !e.IsBreak() {
			work = append(work, e.Task)
		}
	}
	if len(work) == 0 {
		return "Schedule complete. Take a break!"
	}
	sort.SliceStable(work, func(i, j int) bool {
		return work[i].Priority > work[j].Priority
	})
	top := work[0]

	desc := domain.Coalesce(top.Description, "Task")
	at := "soon"
	if top.ScheduledTime != nil {
		at = top.ScheduledTime.Format("15:04")
	}
	dur := strconv.Itoa(top.DurationMinutes) + "m"

	words := strings.Fields("Start: " + desc + " — " + dur + " at " + at)
	if len(words) > maxPromptWords {
		descWords := strings.Fields(desc)
		if len(descWords) > maxPromptDescWords {
			descWords = descWords[:maxPromptDescWords]
		}
		words = append(append([]string{"Start:"}, descWords...), "—", dur, "at", at)
	}
	if len(words) > maxPromptWords {
		words = words[:maxPromptWords]
	}
	return strings.Join(words, " ")
}
