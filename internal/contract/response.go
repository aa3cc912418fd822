package contract

import (
	"encoding/json"

	"github.com/alexanderramin/slotwise/internal/features"
)

// ScheduleResponse is the top-level scheduling output.
type ScheduleResponse struct {
	Features           []features.Feature    `json:"features"`
	Schedule           []ScheduleItem        `json:"schedule"`
	Habits             []HabitItem           `json:"habits"`
	GeminiAPICall      CompletionCall        `json:"gemini_api_call"`
	FeatureSuggestions []features.Suggestion `json:"feature_suggestions"`
	CursorPrompt       string                `json:"cursor_prompt"`
	ValidationSummary  string                `json:"validation_summary"`
}

// ScheduleItem has a fixed field set; scheduled_time is "" when unplaced.
type ScheduleItem struct {
	TaskID          string   `json:"task_id"`
	Description     string   `json:"description"`
	Group           string   `json:"group"`
	Priority        int      `json:"priority"`
	Urgency         string   `json:"urgency"`
	ScheduledTime   string   `json:"scheduled_time"`
	DurationMinutes int      `json:"duration_minutes"`
	Split           bool     `json:"split"`
	Justification   string   `json:"justification"`
	QuickActions    []string `json:"quick_actions"`
}

type HabitItem struct {
	HabitID                string         `json:"habit_id"`
	Name                   string         `json:"name"`
	Importance             int            `json:"importance"`
	Sentiment              string         `json:"sentiment"`
	Status                 string         `json:"status"`
	Motivation             MotivationItem `json:"motivation"`
	NotificationTime       string         `json:"notification_time"`
	AccountabilityPrompted bool           `json:"accountability_prompted"`
}

type MotivationItem struct {
	Message   string   `json:"message"`
	Citations []string `json:"citations"`
}

// CompletionCall describes the optional remote optimisation step and,
// when the local scheduler ran instead, why.
type CompletionCall struct {
	Endpoint     string     `json:"endpoint"`
	Input        CallInput  `json:"input"`
	OutputFormat []string   `json:"output_format"`
	Error        *CallError `json:"error,omitempty"`
}

type CallInput struct {
	Tasks        json.RawMessage `json:"tasks"`
	CalendarFree json.RawMessage `json:"calendar_free"`
	Habits       json.RawMessage `json:"habits"`
	Timezone     string          `json:"timezone"`
}

type CallError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// TaskView is a schedule item plus the fields features need to round-trip.
type TaskView struct {
	ScheduleItem
	Tags          []string `json:"tags,omitempty"`
	DeadlineISO   string   `json:"deadline_iso,omitempty"`
	PriorityScore float64  `json:"priority_score"`
	PartNumber    int      `json:"part_number,omitempty"`
	TotalParts    int      `json:"total_parts,omitempty"`
	// EstimatedParts is the part count guessed from the first slot's
	// capacity when the split began.
	EstimatedParts int `json:"estimated_parts,omitempty"`
}

type FeatureHead struct {
	Success   bool     `json:"success"`
	Message   string   `json:"message"`
	Reasoning string   `json:"reasoning"`
	Warnings  []string `json:"warnings,omitempty"`
}

type DeepBlockView struct {
	StartTime           string     `json:"start_time"`
	DurationMinutes     int        `json:"duration_minutes"`
	Tasks               []TaskView `json:"tasks"`
	NotificationsPaused bool       `json:"notifications_paused"`
}

type DeepBlockResponse struct {
	FeatureHead
	DeepBlock       *DeepBlockView `json:"deep_block,omitempty"`
	ScheduleUpdates []TaskView     `json:"schedule_updates"`
}

type SnoozeResponse struct {
	FeatureHead
	SnoozedTask               *TaskView  `json:"snoozed_task,omitempty"`
	SnoozeMinutes             int        `json:"snooze_minutes,omitempty"`
	DependentTasksRescheduled []TaskView `json:"dependent_tasks_rescheduled"`
	ScheduleUpdates           []TaskView `json:"schedule_updates"`
}

type TagResponse struct {
	FeatureHead
	TaggedTasks  []TaskView            `json:"tagged_tasks"`
	Groups       map[string][]TaskView `json:"groups,omitempty"`
	DetectedTags []string              `json:"detected_tags,omitempty"`
}

type DeadlineAnalysisView struct {
	CurrentDeadline      string  `json:"current_deadline"`
	SuggestedDeadline    string  `json:"suggested_deadline"`
	ExtensionHours       float64 `json:"extension_hours"`
	AvailableTimeMinutes int     `json:"available_time_minutes"`
	TaskDurationMinutes  int     `json:"task_duration_minutes"`
	WorkloadAnalysis     string  `json:"workload_analysis"`
}

type DeadlineResponse struct {
	FeatureHead
	TaskID           string                  `json:"task_id,omitempty"`
	DeadlineAnalysis *DeadlineAnalysisView   `json:"deadline_analysis,omitempty"`
	EmailTemplate    *features.EmailTemplate `json:"email_template,omitempty"`
}

type ChatResponse struct {
	Success          bool                    `json:"success"`
	Response         string                  `json:"response"`
	Reasoning        string                  `json:"reasoning"`
	Action           string                  `json:"action"`
	ActionData       map[string]any          `json:"action_data"`
	QuickActions     []string                `json:"quick_actions"`
	ScheduleUpdates  []TaskView              `json:"schedule_updates"`
	TaggedTasks      []TaskView              `json:"tagged_tasks,omitempty"`
	DeadlineAnalysis *DeadlineAnalysisView   `json:"deadline_analysis,omitempty"`
	EmailTemplate    *features.EmailTemplate `json:"email_template,omitempty"`
	Fallback         bool                    `json:"fallback"`
}

// RunSummary is one row of the stored run listing.
type RunSummary struct {
	ID            string `json:"id"`
	CreatedAt     string `json:"created_at"`
	Timezone      string `json:"timezone"`
	TaskCount     int    `json:"task_count"`
	PlacedCount   int    `json:"placed_count"`
	UnplacedCount int    `json:"unplaced_count"`
	BreakCount    int    `json:"break_count"`
}
