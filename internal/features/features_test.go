package features

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/slotwise/internal/domain"
)

var pst = time.FixedZone("PST", -8*3600)

func at(hour, min int) time.Time {
	return time.Date(2025, 11, 22, hour, min, 0, 0, pst)
}

func ptr(t time.Time) *time.Time { return &t }

func slot(h1, m1, h2, m2 int) domain.FreeSlot {
	return domain.FreeSlot{Start: at(h1, m1), End: at(h2, m2)}
}

func TestCatalog(t *testing.T) {
	cat := Catalog()
	require.Len(t, cat, 4)
	assert.Equal(t, NameDeepBlock, cat[0].Name)
	assert.Equal(t, NameQuickTags, cat[3].Name)
	assert.Len(t, Suggestions(), 3)
}

// --- deep block ---

func TestRequiresDeepFocus(t *testing.T) {
	assert.True(t, RequiresDeepFocus(domain.Task{Description: "Debug login flow", DurationMinutes: 20}))
	assert.True(t, RequiresDeepFocus(domain.Task{Description: "Taxes", Importance: 70, DurationMinutes: 20}))
	assert.True(t, RequiresDeepFocus(domain.Task{Description: "Taxes", DurationMinutes: 60}))
	assert.False(t, RequiresDeepFocus(domain.Task{Description: "Email Bob", Importance: 40, DurationMinutes: 15}))
}

func TestPlanDeepBlock_PrefersMorningAndFillsByPriority(t *testing.T) {
	tasks := []domain.Task{
		{ID: "low", Description: "Write notes", DurationMinutes: 60, PriorityScore: 0.3},
		{ID: "high", Description: "Implement parser", DurationMinutes: 60, PriorityScore: 0.9},
		{ID: "mid", Description: "Research caching", DurationMinutes: 45, PriorityScore: 0.6},
		{ID: "email", Description: "Email Bob", DurationMinutes: 10, PriorityScore: 1.0},
	}
	slots := []domain.FreeSlot{slot(7, 0, 7, 30), slot(13, 0, 17, 0), slot(9, 0, 11, 0)}

	res := PlanDeepBlock(tasks, slots, 120)

	require.True(t, res.Success, res.Message)
	require.NotNil(t, res.Block)
	assert.True(t, res.Block.Start.Equal(at(9, 0)))
	assert.True(t, res.Block.NotificationsPaused)

	// high (60) then mid (45) fit; low (60) would overflow 120.
	require.Len(t, res.Updates, 2)
	assert.Equal(t, "high", res.Updates[0].ID)
	assert.True(t, res.Updates[0].ScheduledTime.Equal(at(9, 0)))
	assert.Equal(t, "mid", res.Updates[1].ID)
	assert.True(t, res.Updates[1].ScheduledTime.Equal(at(10, 0)))
	assert.Contains(t, res.Reasoning, "morning")
	assert.Equal(t, "Created 120-minute deep work block with 2 tasks.", res.Message)
}

func TestPlanDeepBlock_InvalidDurationDefaults(t *testing.T) {
	tasks := []domain.Task{{ID: "a", Description: "Code review", DurationMinutes: 30}}
	res := PlanDeepBlock(tasks, []domain.FreeSlot{slot(13, 0, 16, 0)}, 0)

	require.True(t, res.Success)
	assert.Equal(t, DefaultDeepBlockMinutes, res.Block.DurationMinutes)
	assert.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Reasoning, "afternoon")
}

func TestPlanDeepBlock_Failures(t *testing.T) {
	focus := []domain.Task{{ID: "a", Description: "Code", DurationMinutes: 30}}

	assert.False(t, PlanDeepBlock(nil, []domain.FreeSlot{slot(9, 0, 12, 0)}, 60).Success)
	assert.False(t, PlanDeepBlock(focus, nil, 60).Success)

	res := PlanDeepBlock([]domain.Task{{ID: "b", Description: "Email", DurationMinutes: 10}}, []domain.FreeSlot{slot(9, 0, 12, 0)}, 60)
	assert.False(t, res.Success)
	assert.Contains(t, res.Message, "No deep-focus tasks")

	res = PlanDeepBlock(focus, []domain.FreeSlot{slot(9, 0, 9, 30)}, 60)
	assert.False(t, res.Success)
	assert.Equal(t, "No available time slot found for 60-minute deep block.", res.Message)

	res = PlanDeepBlock([]domain.Task{{ID: "c", Description: "Code", DurationMinutes: 90}}, []domain.FreeSlot{slot(9, 0, 12, 0)}, 60)
	assert.False(t, res.Success)
	assert.Equal(t, "Could not fit any tasks into the deep block.", res.Message)
}

// --- deadline ---

func TestNegotiateDeadline_SuggestsExtension(t *testing.T) {
	now := at(8, 0)
	tasks := []domain.Task{
		{ID: "report", Description: "Quarterly report", DurationMinutes: 240, Deadline: ptr(at(18, 0)), PriorityScore: 0.8},
		{ID: "other", Description: "Slides", DurationMinutes: 120, Deadline: ptr(at(20, 0)), PriorityScore: 0.5},
	}
	slots := []domain.FreeSlot{slot(9, 0, 10, 0), slot(17, 0, 19, 0)}

	res := NegotiateDeadline(tasks, slots, DeadlineRequest{TaskID: "report"}, now)

	require.True(t, res.Success, res.Message)
	require.NotNil(t, res.Analysis)
	// 60 min before 17:00 plus 60 min clipped at the 18:00 deadline.
	assert.Equal(t, 120, res.Analysis.AvailableMinutes)
	assert.Equal(t, 240, res.Analysis.TaskDurationMinutes)
	assert.Equal(t, "120 minutes for other tasks", res.Analysis.WorkloadAnalysis)
	// max(24, (240 + 36)/60 + 8) = 24
	assert.InDelta(t, 24.0, res.Analysis.ExtensionHours, 1e-9)
	assert.True(t, res.Analysis.SuggestedDeadline.Equal(at(18, 0).Add(24*time.Hour)))
	assert.Equal(t, "Suggested deadline extension: 24 hours", res.Message)

	require.NotNil(t, res.Email)
	assert.Equal(t, "Request for Deadline Extension: Quarterly report", res.Email.Subject)
	assert.Equal(t, "Requesting 1-day extension for Quarterly report", res.Email.Snippet)
	assert.Contains(t, res.Email.Body, "Current Deadline: November 22, 2025 at 06:00 PM")
	assert.Contains(t, res.Email.Body, "Extension Requested: 1 day\n")
}

func TestNegotiateDeadline_UsesCallerDeadline(t *testing.T) {
	now := at(8, 0)
	tasks := []domain.Task{{ID: "a", Description: "Essay", DurationMinutes: 60, Deadline: ptr(at(12, 0))}}
	want := at(12, 0).Add(72 * time.Hour)

	res := NegotiateDeadline(tasks, nil, DeadlineRequest{TaskID: "a", NewDeadline: &want}, now)

	require.True(t, res.Success)
	assert.InDelta(t, 72.0, res.Analysis.ExtensionHours, 1e-9)
	assert.Contains(t, res.Email.Body, "Extension Requested: 3 days")
}

func TestNegotiateDeadline_FeasibleDeadline(t *testing.T) {
	now := at(8, 0)
	tasks := []domain.Task{{ID: "a", Description: "Essay", DurationMinutes: 60, Deadline: ptr(now.Add(72 * time.Hour))}}
	res := NegotiateDeadline(tasks, []domain.FreeSlot{slot(9, 0, 12, 0)}, DeadlineRequest{}, now)

	assert.False(t, res.Success)
	assert.Equal(t, "Deadline appears realistic based on available time.", res.Message)
	assert.Equal(t, "a", res.TaskID)
}

func TestNegotiateDeadline_PicksHighestPriorityWithDeadline(t *testing.T) {
	now := at(8, 0)
	tasks := []domain.Task{
		{ID: "nodl", Description: "x", PriorityScore: 0.99},
		{ID: "low", Description: "y", Deadline: ptr(at(10, 0)), PriorityScore: 0.2},
		{ID: "high", Description: "z", Deadline: ptr(at(11, 0)), PriorityScore: 0.7},
	}
	res := NegotiateDeadline(tasks, nil, DeadlineRequest{}, now)
	assert.Equal(t, "high", res.TaskID)
}

func TestNegotiateDeadline_Failures(t *testing.T) {
	now := at(8, 0)
	assert.Equal(t, "No tasks provided.", NegotiateDeadline(nil, nil, DeadlineRequest{}, now).Message)

	tasks := []domain.Task{{ID: "a", Description: "x"}}
	assert.Equal(t, "Task not found.", NegotiateDeadline(tasks, nil, DeadlineRequest{TaskID: "zz"}, now).Message)
	assert.Equal(t, "Task does not have a deadline.", NegotiateDeadline(tasks, nil, DeadlineRequest{TaskID: "a"}, now).Message)
	assert.Equal(t, "No tasks with deadlines found.", NegotiateDeadline(tasks, nil, DeadlineRequest{}, now).Message)
}

// --- snooze ---

func TestSnoozeAmount_Minutes(t *testing.T) {
	m, ok := SnoozeMinutes(15).Minutes()
	assert.True(t, ok)
	assert.Equal(t, 15, m)

	m, ok = SnoozeHours(1.5).Minutes()
	assert.True(t, ok)
	assert.Equal(t, 90, m)

	// 24 stays minutes; no unit guessing.
	m, _ = SnoozeMinutes(24).Minutes()
	assert.Equal(t, 24, m)

	_, ok = SnoozeMinutes(0).Minutes()
	assert.False(t, ok)
	_, ok = SnoozeHours(-1).Minutes()
	assert.False(t, ok)
}

func TestSnooze_ShiftsTaskAndReschedulesRelated(t *testing.T) {
	tasks := []domain.Task{
		{ID: "a", Description: "Write design doc", Group: "Writing", DurationMinutes: 60, ScheduledTime: ptr(at(9, 0))},
		{ID: "b", Description: "Edit blog post", Group: "Writing", DurationMinutes: 60, ScheduledTime: ptr(at(9, 0))},
		{ID: "c", Description: "Groceries", Group: "Errands", DurationMinutes: 60, ScheduledTime: ptr(at(9, 0))},
		{ID: "d", Description: "Review design doc", Group: "Study", DurationMinutes: 30, ScheduledTime: ptr(at(9, 15))},
		{ID: "e", Description: "Polish blog", Group: "Writing", DurationMinutes: 30, ScheduledTime: ptr(at(11, 0))},
	}

	res := Snooze(tasks, "a", SnoozeMinutes(30))

	require.True(t, res.Success, res.Message)
	assert.Equal(t, 30, res.SnoozeMinutes)
	assert.True(t, res.Snoozed.ScheduledTime.Equal(at(9, 30)))
	assert.Equal(t, "Task snoozed by 30 minutes", res.Message)

	// b shares the group and d shares "design doc"; c is unrelated and e does not collide.
	require.Len(t, res.Rescheduled, 2)
	assert.Equal(t, "b", res.Rescheduled[0].ID)
	assert.Equal(t, "d", res.Rescheduled[1].ID)
	for _, dep := range res.Rescheduled {
		assert.True(t, dep.ScheduledTime.Equal(at(10, 30)))
		assert.Equal(t, "Auto-rescheduled due to dependency on snoozed task a.", dep.Justification)
	}
	assert.Len(t, res.Updates, 3)

	// Input untouched.
	assert.True(t, tasks[0].ScheduledTime.Equal(at(9, 0)))
	assert.True(t, tasks[1].ScheduledTime.Equal(at(9, 0)))
}

func TestSnooze_InvalidAmountDefaults(t *testing.T) {
	tasks := []domain.Task{{ID: "a", Description: "x", DurationMinutes: 30, ScheduledTime: ptr(at(9, 0))}}
	res := Snooze(tasks, "a", SnoozeMinutes(-5))

	require.True(t, res.Success)
	assert.Equal(t, DefaultSnoozeMinutes, res.SnoozeMinutes)
	assert.Len(t, res.Warnings, 1)
}

func TestSnooze_Failures(t *testing.T) {
	tasks := []domain.Task{{ID: "a", Description: "x"}}
	assert.Equal(t, "No tasks provided.", Snooze(nil, "a", SnoozeMinutes(15)).Message)
	assert.Equal(t, "Task ID is required.", Snooze(tasks, "", SnoozeMinutes(15)).Message)
	assert.Equal(t, "Task zz not found.", Snooze(tasks, "zz", SnoozeMinutes(15)).Message)
	assert.Equal(t, "Task is not currently scheduled.", Snooze(tasks, "a", SnoozeMinutes(15)).Message)
}

// --- tags ---

func TestDetectTags(t *testing.T) {
	assert.Equal(t, []string{"#email", "#urgent"}, DetectTags("URGENT: reply to client email"))
	assert.Equal(t, []string{"#errand"}, DetectTags("Buy milk"))
	assert.Empty(t, DetectTags("Taxes"))
}

func TestApplyTags_Explicit(t *testing.T) {
	tasks := []domain.Task{
		{ID: "a", Description: "x", Tags: []string{"#work"}},
		{ID: "b", Description: "y"},
	}
	res := ApplyTags(tasks, []string{" #focus ", "#focus"}, true)

	require.True(t, res.Success)
	assert.Equal(t, []string{"#work", "#focus"}, res.Tagged[0].Tags)
	assert.Equal(t, []string{"#focus"}, res.Tagged[1].Tags)
	assert.Len(t, res.Groups["#work"], 1)
	assert.Len(t, res.Groups["#focus"], 1)
	assert.Equal(t, "Applied tags [#focus] to 2 task(s).", res.Message)
	assert.Nil(t, tasks[1].Tags)
}

func TestApplyTags_AutoDetect(t *testing.T) {
	tasks := []domain.Task{
		{ID: "a", Description: "Reply to email"},
		{ID: "b", Description: "Debug function"},
		{ID: "c", Description: "Taxes"},
	}
	res := ApplyTags(tasks, nil, true)

	require.True(t, res.Success)
	assert.Equal(t, []string{"#coding", "#email"}, res.Detected)
	assert.Len(t, res.Groups[UntaggedGroup], 1)
	assert.Equal(t, "c", res.Groups[UntaggedGroup][0].ID)
	assert.Empty(t, res.Tagged[2].Justification)
}

func TestApplyTags_Failures(t *testing.T) {
	assert.False(t, ApplyTags(nil, []string{"#x"}, true).Success)
	res := ApplyTags([]domain.Task{{ID: "a"}}, nil, false)
	assert.False(t, res.Success)
	assert.Equal(t, "No tags provided and auto-detect is disabled.", res.Message)
}
