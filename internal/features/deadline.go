package features

import (
	"fmt"
	"math"
	"time"

	"github.com/alexanderramin/slotwise/internal/domain"
	"github.com/alexanderramin/slotwise/internal/timeutil"
)

// DeadlineRequest selects the task to renegotiate. An empty TaskID picks the
// highest-priority task that has a deadline.
type DeadlineRequest struct {
	TaskID      string
	NewDeadline *time.Time
}

type DeadlineAnalysis struct {
	CurrentDeadline     time.Time
	SuggestedDeadline   time.Time
	ExtensionHours      float64
	AvailableMinutes    int
	TaskDurationMinutes int
	WorkloadAnalysis    string
}

type EmailTemplate struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
	Snippet string `json:"snippet"`
}

type DeadlineResult struct {
	Outcome
	TaskID   string
	Analysis *DeadlineAnalysis
	Email    *EmailTemplate
}

// NegotiateDeadline decides whether a task's deadline is realistic given the
// free time before it and the rest of the workload, and if not proposes an
// extension with a ready-to-send request.
func NegotiateDeadline(tasks []domain.Task, slots []domain.FreeSlot, req DeadlineRequest, now time.Time) DeadlineResult {
	if len(tasks) == 0 {
		return DeadlineResult{Outcome: fail("No tasks provided.", "Tasks list is empty.")}
	}

	var task *domain.Task
	if req.TaskID != "" {
		for i := range tasks {
			if tasks[i].ID == req.TaskID {
				task = &tasks[i]
				break
			}
		}
		if task == nil {
			return DeadlineResult{Outcome: fail("Task not found.", "Task ID not found in task list.")}
		}
	} else {
		for i := range tasks {
			if tasks[i].Deadline == nil {
				continue
			}
			if task == nil || tasks[i].PriorityScore > task.PriorityScore {
				task = &tasks[i]
			}
		}
		if task == nil {
			return DeadlineResult{Outcome: fail(
				"No tasks with deadlines found.",
				"Cannot negotiate deadline without existing deadline.")}
		}
	}
	if task.Deadline == nil {
		return DeadlineResult{Outcome: fail(
			"Task does not have a deadline.",
			"Cannot negotiate deadline for task without existing deadline.")}
	}
	deadline := *task.Deadline

	available := 0
	for _, s := range slots {
		if !s.Start.Before(deadline) {
			continue
		}
		end := s.End
		if end.After(deadline) {
			end = deadline
		}
		available += timeutil.Interval{Start: s.Start, End: end}.Minutes()
	}

	duration := domain.PositiveIntOr(task.DurationMinutes, 60)
	others := 0
	for _, t := range tasks {
		if t.ID != task.ID && t.Deadline != nil {
			others += domain.PositiveIntOr(t.DurationMinutes, 60)
		}
	}

	hoursLeft := deadline.Sub(now).Hours()
	needsExtension := float64(available) < float64(duration)+0.5*float64(others) || hoursLeft < 24
	if !needsExtension {
		return DeadlineResult{
			TaskID: task.ID,
			Outcome: fail(
				"Deadline appears realistic based on available time.",
				fmt.Sprintf("%d minutes available before deadline, task requires %d minutes. Current deadline is feasible.",
					available, duration)),
		}
	}

	var suggested time.Time
	if req.NewDeadline != nil {
		suggested = *req.NewDeadline
	} else {
		hours := math.Max(24, (float64(duration)+0.3*float64(others))/60+8)
		suggested = deadline.Add(time.Duration(hours * float64(time.Hour)))
	}
	extension := suggested.Sub(deadline).Hours()

	return DeadlineResult{
		TaskID: task.ID,
		Outcome: Outcome{
			Success: true,
			Message: fmt.Sprintf("Suggested deadline extension: %.0f hours", extension),
			Reasoning: fmt.Sprintf(
				"Analyzed workload and calendar. Current deadline (%s) is unrealistic given %d minutes available "+
					"and %d minutes required. Suggested extension: %.0f hours to %s.",
				timeutil.Format(deadline), available, duration, extension, timeutil.Format(suggested)),
		},
		Analysis: &DeadlineAnalysis{
			CurrentDeadline:     deadline,
			SuggestedDeadline:   suggested,
			ExtensionHours:      extension,
			AvailableMinutes:    available,
			TaskDurationMinutes: duration,
			WorkloadAnalysis:    fmt.Sprintf("%d minutes for other tasks", others),
		},
		Email: extensionEmail(*task, deadline, suggested),
	}
}

const emailDateLayout = "January 02, 2006 at 03:04 PM"

func extensionEmail(t domain.Task, current, requested time.Time) *EmailTemplate {
	desc := domain.Coalesce(t.Description, "Task")
	days := int(math.Floor(requested.Sub(current).Hours() / 24))
	plural := "s"
	if days == 1 {
		plural = ""
	}

	body := fmt.Sprintf(`Dear [Recipient],

I hope this message finds you well. I am writing to request a deadline extension for the following task:

Task: %s
Current Deadline: %s
Requested New Deadline: %s
Extension Requested: %d day%s

After reviewing my current workload and calendar availability, the current deadline is not feasible given the scope of work required. The additional time will allow me to complete this task thoroughly.

I am happy to discuss this further and can share more detail about my current commitments if needed.

Thank you for your understanding.

Best regards,
[Your Name]`, desc, current.Format(emailDateLayout), requested.Format(emailDateLayout), days, plural)

	return &EmailTemplate{
		Subject: "Request for Deadline Extension: " + desc,
		Body:    body,
		Snippet: fmt.Sprintf("Requesting %d-day extension for %s", days, desc),
	}
}
