package output

import (
	"github.com/alexanderramin/slotwise/internal/contract"
	"github.com/alexanderramin/slotwise/internal/domain"
	"github.com/alexanderramin/slotwise/internal/features"
	"github.com/alexanderramin/slotwise/internal/intelligence"
	"github.com/alexanderramin/slotwise/internal/timeutil"
)

// TaskView formats a task with the fields features round-trip.
func TaskView(t domain.Task) contract.TaskView {
	return contract.TaskView{
		ScheduleItem:   Item(t),
		Tags:           t.Tags,
		DeadlineISO:    timeutil.FormatPtr(t.Deadline),
		PriorityScore:  t.PriorityScore,
		PartNumber:     t.PartNumber,
		TotalParts:     t.TotalParts,
		EstimatedParts: t.EstimatedParts,
	}
}

func TaskViews(tasks []domain.Task) []contract.TaskView {
	views := make([]contract.TaskView, 0, len(tasks))
	for _, t := range tasks {
		views = append(views, TaskView(t))
	}
	return views
}

func head(o features.Outcome) contract.FeatureHead {
	return contract.FeatureHead{
		Success:   o.Success,
		Message:   o.Message,
		Reasoning: o.Reasoning,
		Warnings:  o.Warnings,
	}
}

func DeepBlock(res features.DeepBlockResult) *contract.DeepBlockResponse {
	out := &contract.DeepBlockResponse{
		FeatureHead:     head(res.Outcome),
		ScheduleUpdates: TaskViews(res.Updates),
	}
	if res.Block != nil {
		out.DeepBlock = &contract.DeepBlockView{
			StartTime:           timeutil.Format(res.Block.Start),
			DurationMinutes:     res.Block.DurationMinutes,
			Tasks:               TaskViews(res.Block.Tasks),
			NotificationsPaused: res.Block.NotificationsPaused,
		}
	}
	return out
}

func Snooze(res features.SnoozeResult) *contract.SnoozeResponse {
	out := &contract.SnoozeResponse{
		FeatureHead:               head(res.Outcome),
		SnoozeMinutes:             res.SnoozeMinutes,
		DependentTasksRescheduled: TaskViews(res.Rescheduled),
		ScheduleUpdates:           TaskViews(res.Updates),
	}
	if res.Snoozed != nil {
		v := TaskView(*res.Snoozed)
		out.SnoozedTask = &v
	}
	return out
}

func Tags(res features.TagResult) *contract.TagResponse {
	out := &contract.TagResponse{
		FeatureHead:  head(res.Outcome),
		TaggedTasks:  TaskViews(res.Tagged),
		DetectedTags: res.Detected,
	}
	if len(res.Groups) > 0 {
		out.Groups = make(map[string][]contract.TaskView, len(res.Groups))
		for tag, tasks := range res.Groups {
			out.Groups[tag] = TaskViews(tasks)
		}
	}
	return out
}

func Deadline(res features.DeadlineResult) *contract.DeadlineResponse {
	return &contract.DeadlineResponse{
		FeatureHead:      head(res.Outcome),
		TaskID:           res.TaskID,
		DeadlineAnalysis: deadlineAnalysis(res.Analysis),
		EmailTemplate:    res.Email,
	}
}

func deadlineAnalysis(a *features.DeadlineAnalysis) *contract.DeadlineAnalysisView {
	if a == nil {
		return nil
	}
	return &contract.DeadlineAnalysisView{
		CurrentDeadline:      timeutil.Format(a.CurrentDeadline),
		SuggestedDeadline:    timeutil.Format(a.SuggestedDeadline),
		ExtensionHours:       a.ExtensionHours,
		AvailableTimeMinutes: a.AvailableMinutes,
		TaskDurationMinutes:  a.TaskDurationMinutes,
		WorkloadAnalysis:     a.WorkloadAnalysis,
	}
}

// Chat formats an assistant turn.
func Chat(res *intelligence.ChatResult) *contract.ChatResponse {
	out := &contract.ChatResponse{
		Success:         res.Success,
		Response:        res.Response,
		Reasoning:       res.Reasoning,
		Action:          string(res.Action),
		ActionData:      res.ActionData,
		QuickActions:    res.QuickActions,
		ScheduleUpdates: TaskViews(res.ScheduleUpdates),
		Fallback:        res.Fallback,
	}
	if out.ActionData == nil {
		out.ActionData = map[string]any{}
	}
	if len(res.TaggedTasks) > 0 {
		out.TaggedTasks = TaskViews(res.TaggedTasks)
	}
	if res.Deadline != nil {
		out.DeadlineAnalysis = deadlineAnalysis(res.Deadline.Analysis)
		out.EmailTemplate = res.Deadline.Email
	}
	return out
}
