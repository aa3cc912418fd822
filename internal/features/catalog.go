package features

// Feature describes one assistant capability offered alongside the schedule.
type Feature struct {
	Name                     string `json:"name"`
	Purpose                  string `json:"purpose"`
	Type                     string `json:"type"`
	ImplementationDifficulty string `json:"implementation_difficulty"`
}

// Suggestion is a candidate future enhancement.
type Suggestion struct {
	Name          string `json:"name"`
	Justification string `json:"justification"`
}

const (
	NameDeepBlock = "Deep-Block Planner"
	NameDeadline  = "Smart Deadline Negotiator"
	NameSnooze    = "One-Click Snooze"
	NameQuickTags = "Quick-Tags"
)

// Catalog returns the four built-in features in display order.
func Catalog() []Feature {
	return []Feature{
		{
			Name: NameDeepBlock,
			Purpose: "Auto-creates interruption-free deep work blocks and pauses notifications " +
				"during those blocks. Justifies placement by priority and focus windows.",
			Type:                     "practical",
			ImplementationDifficulty: "medium",
		},
		{
			Name: NameDeadline,
			Purpose: "Suggests realistic deadline extensions and drafts an email or snippet to " +
				"request them, based on workload and calendar analysis.",
			Type:                     "practical",
			ImplementationDifficulty: "medium",
		},
		{
			Name: NameSnooze,
			Purpose: "Postpones a scheduled item by +15/30/60 minutes with one click and " +
				"reschedules related tasks that would otherwise collide.",
			Type:                     "easy",
			ImplementationDifficulty: "easy",
		},
		{
			Name: NameQuickTags,
			Purpose: "Instant task tagging (#email, #errand, #urgent) with automatic grouping " +
				"of tagged tasks for batch execution.",
			Type:                     "easy",
			ImplementationDifficulty: "easy",
		},
	}
}

// Suggestions returns the enhancement ideas reported with every schedule.
func Suggestions() []Suggestion {
	return []Suggestion{
		{
			Name: "Context-Aware Task Batching",
			Justification: "Groups tasks that need similar tools, locations or mental states " +
				"so context switches are rare. For example, all email tasks in one block.",
		},
		{
			Name: "Energy Level Optimization",
			Justification: "Learns the user's energy pattern through the day and puts " +
				"high-cognitive work into peak hours.",
		},
		{
			Name: "Habit Streak Tracker",
			Justification: "Shows habit completion streaks and celebrates milestones to " +
				"help users stay consistent.",
		},
	}
}

// Outcome is the common head of every feature result.
type Outcome struct {
	Success   bool     `json:"success"`
	Message   string   `json:"message"`
	Reasoning string   `json:"reasoning"`
	Warnings  []string `json:"-"`
}

func fail(message, reasoning string) Outcome {
	return Outcome{Message: message, Reasoning: reasoning}
}
