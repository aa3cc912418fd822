package contract

import (
	"fmt"
	"time"

	"github.com/alexanderramin/slotwise/internal/domain"
	"github.com/alexanderramin/slotwise/internal/features"
	"github.com/alexanderramin/slotwise/internal/timeutil"
)

// FeatureRequest drives one of the assistant features. Tasks come either
// inline or from a stored run named by RunID.
type FeatureRequest struct {
	Tasks        []TaskInput `json:"tasks,omitempty"`
	CalendarFree []SlotInput `json:"calendar_free,omitempty"`
	Timezone     string      `json:"timezone,omitempty"`
	RunID        string      `json:"run_id,omitempty"`

	TaskID          string         `json:"task_id,omitempty"`
	DurationMinutes Number         `json:"duration_minutes"`
	SnoozeMinutes   Number         `json:"snooze_minutes"`
	Hours           Number         `json:"hours"`
	Tag             domain.TagList `json:"tag,omitempty"`
	Tags            domain.TagList `json:"tags,omitempty"`
	AutoDetect      *bool          `json:"auto_detect,omitempty"`
	NewDeadline     string         `json:"new_deadline,omitempty"`
}

// DecodeFeatureRequest parses a feature request. Tasks are required unless
// a run_id is given.
func DecodeFeatureRequest(data []byte) (*FeatureRequest, error) {
	raw, err := decodeObject(data)
	if err != nil {
		return nil, err
	}
	var req FeatureRequest
	if err := decodeInto(data, &req); err != nil {
		return nil, err
	}
	if _, ok := raw["tasks"]; !ok && req.RunID == "" {
		return nil, &ValidationError{Problems: []string{`missing required field "tasks" (or "run_id")`}}
	}
	return &req, nil
}

func (r *FeatureRequest) Normalize(opts NormalizeOptions) (*Normalized, error) {
	return normalize(r.Tasks, r.CalendarFree, nil, r.Timezone, opts)
}

// BlockMinutes returns the requested deep block length. A present but
// unusable value yields 0 so the planner substitutes its default.
func (r *FeatureRequest) BlockMinutes() int {
	if !r.DurationMinutes.Present() {
		return features.DefaultDeepBlockMinutes
	}
	d, _ := r.DurationMinutes.PositiveInt()
	return d
}

// SnoozeAmount picks hours over minutes when both are present.
func (r *FeatureRequest) SnoozeAmount() features.SnoozeAmount {
	switch {
	case r.Hours.Present():
		h, _ := r.Hours.Float()
		return features.SnoozeHours(h)
	case r.SnoozeMinutes.Present():
		m, _ := r.SnoozeMinutes.Float()
		return features.SnoozeMinutes(m)
	default:
		return features.SnoozeMinutes(features.DefaultSnoozeMinutes)
	}
}

// TagsToApply merges the singular and plural tag fields.
func (r *FeatureRequest) TagsToApply() []string {
	return domain.NormalizeTags(append(append([]string(nil), r.Tag...), r.Tags...))
}

// AutoDetectTags defaults to true.
func (r *FeatureRequest) AutoDetectTags() bool {
	return r.AutoDetect == nil || *r.AutoDetect
}

// Deadline parses new_deadline. A malformed value is dropped with a warning
// and the negotiator computes its own suggestion.
func (r *FeatureRequest) Deadline(loc *time.Location) (*time.Time, string) {
	if r.NewDeadline == "" {
		return nil, ""
	}
	t, err := timeutil.Parse(r.NewDeadline, loc)
	if err != nil {
		return nil, fmt.Sprintf("new_deadline: %v, calculating a suggestion instead", err)
	}
	return &t, ""
}
