package contract

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/alexanderramin/slotwise/internal/domain"
	"github.com/alexanderramin/slotwise/internal/timeutil"
)

// DefaultTaskMinutes applies to tasks without a usable duration.
const DefaultTaskMinutes = 60

type TaskInput struct {
	TaskID          string         `json:"task_id,omitempty"`
	Description     string         `json:"description"`
	DurationMinutes Number         `json:"duration_minutes"`
	DeadlineISO     string         `json:"deadline_iso,omitempty"`
	Importance      Number         `json:"importance"`
	Group           string         `json:"group,omitempty"`
	Tags            domain.TagList `json:"tags,omitempty"`

	// Set when a previously produced schedule is fed back in.
	ScheduledTime string `json:"scheduled_time,omitempty"`
	PriorityScore Number `json:"priority_score"`
}

type SlotInput struct {
	StartISO string `json:"start_iso"`
	EndISO   string `json:"end_iso"`
}

type HabitInput struct {
	HabitID             string `json:"habit_id,omitempty"`
	Name                string `json:"name"`
	ImportanceStatement string `json:"importance_statement,omitempty"`
	DurationMinutes     Number `json:"duration_minutes"`
	EndGoal             string `json:"end_goal,omitempty"`
}

// ScheduleRequest is the top-level scheduling input.
type ScheduleRequest struct {
	Tasks        []TaskInput  `json:"tasks"`
	CalendarFree []SlotInput  `json:"calendar_free"`
	Habits       []HabitInput `json:"habits,omitempty"`
	Timezone     string       `json:"timezone,omitempty"`

	raw map[string]json.RawMessage
}

// Normalized is a request converted to domain values in one zone.
type Normalized struct {
	Tasks    []domain.Task
	Slots    []domain.FreeSlot
	Habits   []domain.Habit
	Location *time.Location
	Timezone string
	Warnings []string
}

// NormalizeOptions controls defaults applied while normalising.
type NormalizeOptions struct {
	DefaultTimezone string
	NewID           func() string
}

func (o NormalizeOptions) withDefaults() NormalizeOptions {
	if o.DefaultTimezone == "" {
		o.DefaultTimezone = timeutil.DefaultZone
	}
	if o.NewID == nil {
		o.NewID = uuid.NewString
	}
	return o
}

// DecodeScheduleRequest parses a scheduling request. Syntax errors wrap
// ErrMalformedJSON; missing required keys and wrongly typed fields are
// reported together as a *ValidationError.
func DecodeScheduleRequest(data []byte) (*ScheduleRequest, error) {
	raw, err := decodeObject(data)
	if err != nil {
		return nil, err
	}
	verr := &ValidationError{}
	for _, key := range []string{"tasks", "calendar_free"} {
		if v, ok := raw[key]; !ok || string(v) == "null" {
			verr.addf("missing required field %q", key)
		}
	}
	if err := verr.orNil(); err != nil {
		return nil, err
	}

	var req ScheduleRequest
	if err := decodeInto(data, &req); err != nil {
		return nil, err
	}
	req.raw = raw
	return &req, nil
}

// Echo returns the request as received, for the completion call metadata.
func (r *ScheduleRequest) Echo() CallInput {
	in := CallInput{Timezone: r.Timezone}
	if r.raw != nil {
		in.Tasks = r.raw["tasks"]
		in.CalendarFree = r.raw["calendar_free"]
		in.Habits = r.raw["habits"]
	}
	if in.Tasks == nil {
		in.Tasks, _ = json.Marshal(r.Tasks)
	}
	if in.CalendarFree == nil {
		in.CalendarFree, _ = json.Marshal(r.CalendarFree)
	}
	if in.Habits == nil {
		in.Habits = json.RawMessage("[]")
	}
	return in
}

// AssignTaskIDs gives every task without an ID a fresh one, so a stored
// copy of the request matches the response it produced.
func (r *ScheduleRequest) AssignTaskIDs(newID func() string) {
	if newID == nil {
		newID = uuid.NewString
	}
	for i := range r.Tasks {
		if strings.TrimSpace(r.Tasks[i].TaskID) == "" {
			r.Tasks[i].TaskID = newID()
		}
	}
}

// Normalize validates timestamps and converts the request to domain values.
// Every malformed timestamp or inverted slot is collected into one
// *ValidationError; lenient fields are corrected and reported in Warnings.
func (r *ScheduleRequest) Normalize(opts NormalizeOptions) (*Normalized, error) {
	return normalize(r.Tasks, r.CalendarFree, r.Habits, r.Timezone, opts)
}

func normalize(tasks []TaskInput, slots []SlotInput, habits []HabitInput, tz string, opts NormalizeOptions) (*Normalized, error) {
	opts = opts.withDefaults()
	out := &Normalized{}
	verr := &ValidationError{}

	fallback, _ := timeutil.LoadLocation(opts.DefaultTimezone, timeutil.MustDefaultLocation())
	out.Location, out.Timezone = fallback, opts.DefaultTimezone
	if tz != "" {
		loc, ok := timeutil.LoadLocation(tz, fallback)
		if ok {
			out.Location, out.Timezone = loc, tz
		} else {
			out.warnf("unknown timezone %q, using %s", tz, opts.DefaultTimezone)
		}
	}

	for i, in := range tasks {
		out.Tasks = append(out.Tasks, normalizeTask(i, in, out, verr, opts))
	}
	for i, in := range slots {
		if s, ok := normalizeSlot(i, in, out.Location, verr); ok {
			out.Slots = append(out.Slots, s)
		}
	}
	for i, in := range habits {
		out.Habits = append(out.Habits, normalizeHabit(i, in, out, opts))
	}

	if err := verr.orNil(); err != nil {
		return nil, err
	}
	return out, nil
}

func (n *Normalized) warnf(format string, args ...any) {
	n.Warnings = append(n.Warnings, fmt.Sprintf(format, args...))
}

func normalizeTask(i int, in TaskInput, out *Normalized, verr *ValidationError, opts NormalizeOptions) domain.Task {
	t := domain.Task{
		ID:          strings.TrimSpace(in.TaskID),
		Description: strings.TrimSpace(in.Description),
		Group:       strings.TrimSpace(in.Group),
		Tags:        []string(in.Tags),
	}
	if t.ID == "" {
		t.ID = opts.NewID()
	}

	if d, ok := in.DurationMinutes.PositiveInt(); ok {
		t.DurationMinutes = d
	} else {
		if in.DurationMinutes.Present() {
			out.warnf("tasks[%d].duration_minutes: invalid value %s, using %d", i, in.DurationMinutes.Raw(), DefaultTaskMinutes)
		}
		t.DurationMinutes = DefaultTaskMinutes
	}

	if in.Importance.Present() {
		v, ok := in.Importance.Float()
		switch {
		case !ok:
			out.warnf("tasks[%d].importance: invalid value %s, using 0", i, in.Importance.Raw())
		case v < 0 || v > 100:
			t.Importance = int(math.Round(math.Max(0, math.Min(100, v))))
			out.warnf("tasks[%d].importance: %s out of range, clamped to %d", i, in.Importance.Raw(), t.Importance)
		default:
			t.Importance = int(math.Round(v))
		}
	}

	if in.DeadlineISO != "" {
		d, err := timeutil.Parse(in.DeadlineISO, out.Location)
		if err != nil {
			verr.addf("tasks[%d].deadline_iso: %v", i, err)
		} else {
			t.Deadline = &d
		}
	}
	if in.ScheduledTime != "" {
		s, err := timeutil.Parse(in.ScheduledTime, out.Location)
		if err != nil {
			verr.addf("tasks[%d].scheduled_time: %v", i, err)
		} else {
			t.ScheduledTime = &s
		}
	}
	if score, ok := in.PriorityScore.Float(); ok {
		t.PriorityScore = math.Max(0, math.Min(1, score))
		t.Priority = int(math.Round(t.PriorityScore * 100))
	}
	return t
}

func normalizeSlot(i int, in SlotInput, loc *time.Location, verr *ValidationError) (domain.FreeSlot, bool) {
	var s domain.FreeSlot
	ok := true
	if in.StartISO == "" {
		verr.addf("calendar_free[%d].start_iso is required", i)
		ok = false
	} else if t, err := timeutil.Parse(in.StartISO, loc); err != nil {
		verr.addf("calendar_free[%d].start_iso: %v", i, err)
		ok = false
	} else {
		s.Start = t
	}
	if in.EndISO == "" {
		verr.addf("calendar_free[%d].end_iso is required", i)
		ok = false
	} else if t, err := timeutil.Parse(in.EndISO, loc); err != nil {
		verr.addf("calendar_free[%d].end_iso: %v", i, err)
		ok = false
	} else {
		s.End = t
	}
	if ok && !s.Valid() {
		verr.addf("calendar_free[%d]: start %s must be before end %s", i, in.StartISO, in.EndISO)
		ok = false
	}
	return s, ok
}

func normalizeHabit(i int, in HabitInput, out *Normalized, opts NormalizeOptions) domain.Habit {
	h := domain.Habit{
		ID:                  strings.TrimSpace(in.HabitID),
		Name:                strings.TrimSpace(in.Name),
		ImportanceStatement: in.ImportanceStatement,
		EndGoal:             in.EndGoal,
	}
	if h.ID == "" {
		h.ID = opts.NewID()
	}
	if d, ok := in.DurationMinutes.PositiveInt(); ok {
		h.DurationMinutes = d
	} else {
		if in.DurationMinutes.Present() {
			out.warnf("habits[%d].duration_minutes: invalid value %s, using %d", i, in.DurationMinutes.Raw(), domain.DefaultHabitMinutes)
		}
		h.DurationMinutes = domain.DefaultHabitMinutes
	}
	return h
}

func decodeObject(data []byte) (map[string]json.RawMessage, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, &ValidationError{Problems: []string{"request must be a JSON object"}}
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformedJSON, err)
	}
	if raw == nil {
		return nil, &ValidationError{Problems: []string{"request must be a JSON object"}}
	}
	return raw, nil
}

func decodeInto(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return &ValidationError{Problems: []string{
				fmt.Sprintf("%s: expected %s, got %s", typeErr.Field, typeErr.Type, typeErr.Value),
			}}
		}
		return &ValidationError{Problems: []string{err.Error()}}
	}
	return nil
}
