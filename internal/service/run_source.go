package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/alexanderramin/slotwise/internal/contract"
	"github.com/alexanderramin/slotwise/internal/repository"
)

// ErrRunStoreDisabled is returned when a request names a stored run but no
// history store is configured.
var ErrRunStoreDisabled = errors.New("run history is not enabled")

// resolveFeatureInput fills a feature request from a stored run when it
// names one and carries no tasks of its own. Tasks come from the stored
// request; the scheduled time and group of each come from the first
// schedule item with the same ID.
func resolveFeatureInput(ctx context.Context, runs repository.RunRepo, req *contract.FeatureRequest) error {
	if req.RunID == "" || len(req.Tasks) > 0 {
		return nil
	}
	if runs == nil {
		return ErrRunStoreDisabled
	}
	run, err := runs.GetByID(ctx, req.RunID)
	if err != nil {
		return fmt.Errorf("loading run %s: %w", req.RunID, err)
	}

	var stored contract.ScheduleRequest
	if err := json.Unmarshal(run.RequestJSON, &stored); err != nil {
		return fmt.Errorf("decoding stored request: %w", err)
	}
	var resp contract.ScheduleResponse
	if err := json.Unmarshal(run.ResponseJSON, &resp); err != nil {
		return fmt.Errorf("decoding stored response: %w", err)
	}

	placed := make(map[string]contract.ScheduleItem, len(resp.Schedule))
	for _, item := range resp.Schedule {
		if _, seen := placed[item.TaskID]; !seen {
			placed[item.TaskID] = item
		}
	}

	tasks := make([]contract.TaskInput, len(stored.Tasks))
	for i, t := range stored.Tasks {
		if item, ok := placed[t.TaskID]; ok {
			t.ScheduledTime = item.ScheduledTime
			t.Group = item.Group
			t.PriorityScore = contract.NewNumber(math.Min(1, float64(item.Priority)/100))
		}
		tasks[i] = t
	}
	req.Tasks = tasks
	if len(req.CalendarFree) == 0 {
		req.CalendarFree = stored.CalendarFree
	}
	if req.Timezone == "" {
		req.Timezone = run.Timezone
	}
	return nil
}
