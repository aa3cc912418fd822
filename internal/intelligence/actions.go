package intelligence

import (
	"encoding/json"
	"fmt"

	"github.com/alexanderramin/slotwise/internal/contract"
	"github.com/alexanderramin/slotwise/internal/domain"
	"github.com/alexanderramin/slotwise/internal/features"
)

// actionOutcome is what a locally executed action adds to a chat result.
type actionOutcome struct {
	updates   []domain.Task
	tagged    []domain.Task
	deadline  *features.DeadlineResult
	message   string
	reasoning string
	success   bool
	warnings  []string
}

func (o actionOutcome) mergeInto(r *ChatResult) {
	if len(o.updates) > 0 {
		r.ScheduleUpdates = o.updates
	}
	if len(o.tagged) > 0 {
		r.TaggedTasks = o.tagged
	}
	if o.deadline != nil && o.deadline.Success {
		r.Deadline = o.deadline
	}
	if o.success && o.reasoning != "" {
		r.Reasoning = o.reasoning
	}
}

// executeAction runs the feature named by action with the model's
// parameters. Parameters share the feature request shape.
func executeAction(action Action, raw json.RawMessage, req ChatRequest) (actionOutcome, error) {
	var params contract.FeatureRequest
	if err := json.Unmarshal(raw, &params); err != nil {
		return actionOutcome{}, fmt.Errorf("decoding action_data: %w", err)
	}

	switch action {
	case ActionDeepBlock:
		if len(req.Tasks) == 0 || len(req.Slots) == 0 {
			return actionOutcome{}, fmt.Errorf("deep_block needs tasks and free slots")
		}
		res := features.PlanDeepBlock(req.Tasks, req.Slots, params.BlockMinutes())
		return actionOutcome{
			updates: res.Updates, message: res.Message, reasoning: res.Reasoning,
			success: res.Success, warnings: res.Warnings,
		}, nil

	case ActionSnooze:
		if len(req.Tasks) == 0 {
			return actionOutcome{}, fmt.Errorf("snooze needs tasks")
		}
		res := features.Snooze(req.Tasks, params.TaskID, params.SnoozeAmount())
		return actionOutcome{
			updates: res.Updates, message: res.Message, reasoning: res.Reasoning,
			success: res.Success, warnings: res.Warnings,
		}, nil

	case ActionTag:
		tags := params.TagsToApply()
		if len(tags) == 0 {
			return actionOutcome{}, fmt.Errorf("tag action without tag or tags")
		}
		res := features.ApplyTags(req.Tasks, tags, false)
		return actionOutcome{
			tagged: res.Tagged, message: res.Message, reasoning: res.Reasoning, success: res.Success,
		}, nil

	case ActionDeadline:
		if len(req.Tasks) == 0 {
			return actionOutcome{}, fmt.Errorf("deadline needs tasks")
		}
		newDeadline, warn := params.Deadline(req.Location)
		res := features.NegotiateDeadline(req.Tasks, req.Slots,
			features.DeadlineRequest{TaskID: params.TaskID, NewDeadline: newDeadline}, req.Now)
		out := actionOutcome{deadline: &res, message: res.Message, reasoning: res.Reasoning, success: res.Success}
		if warn != "" {
			out.warnings = append(out.warnings, warn)
		}
		return out, nil

	default:
		return actionOutcome{}, nil
	}
}
