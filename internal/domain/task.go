package domain

import "time"

// Task is a unit of work to be placed into free time. The derived fields are
// filled in by the scorer and the scheduler; a split task appears as several
// Tasks sharing an ID with distinct PartNumbers.
type Task struct {
	ID              string
	Description     string
	DurationMinutes int
	Deadline        *time.Time
	Importance      int
	Group           string
	Tags            []string // first entry is the primary tag

	PriorityScore float64
	Priority      int
	Urgency       Urgency

	ScheduledTime  *time.Time // nil when unplaced
	Split          bool
	PartNumber     int
	TotalParts     int
	EstimatedParts int
	Justification  string
	QuickActions   []string
}

// PrimaryTag returns the first tag, or "" when the task is untagged.
func (t Task) PrimaryTag() string {
	if len(t.Tags) == 0 {
		return ""
	}
	return t.Tags[0]
}

// HasTag reports whether tag is present.
func (t Task) HasTag(tag string) bool {
	for _, existing := range t.Tags {
		if existing == tag {
			return true
		}
	}
	return false
}

// End returns ScheduledTime+DurationMinutes, or nil when unplaced.
func (t Task) End() *time.Time {
	if t.ScheduledTime == nil {
		return nil
	}
	end := t.ScheduledTime.Add(time.Duration(t.DurationMinutes) * time.Minute)
	return &end
}

// Clone returns a deep copy so callers can decorate without aliasing.
func (t Task) Clone() Task {
	c := t
	if t.Deadline != nil {
		d := *t.Deadline
		c.Deadline = &d
	}
	if t.ScheduledTime != nil {
		s := *t.ScheduledTime
		c.ScheduledTime = &s
	}
	if t.Tags != nil {
		c.Tags = append([]string(nil), t.Tags...)
	}
	if t.QuickActions != nil {
		c.QuickActions = append([]string(nil), t.QuickActions...)
	}
	return c
}

// MergeTags appends tags not already present, keeping existing order.
func (t *Task) MergeTags(tags ...string) {
	for _, tag := range tags {
		if tag == "" || t.HasTag(tag) {
			continue
		}
		t.Tags = append(t.Tags, tag)
	}
}

// CloneTasks deep-copies a task list.
func CloneTasks(tasks []Task) []Task {
	out := make([]Task, len(tasks))
	for i, t := range tasks {
		out[i] = t.Clone()
	}
	return out
}
