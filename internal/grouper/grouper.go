// Package grouper assigns category labels to tasks by keyword pattern and
// buckets them into same-group batches.
package grouper

import (
	"regexp"
	"sort"
	"strings"

	"github.com/alexanderramin/slotwise/internal/domain"
)

type groupPattern struct {
	name     string
	patterns []*regexp.Regexp
}

// Table order breaks ties between equally scored groups.
var groupPatterns = []groupPattern{
	{"Emails", compile(
		`\b(email|reply|respond|inbox|message|correspondence)\b`,
		`\b(send|read|check|review.*email)\b`,
	)},
	{"Errands", compile(
		`\b(errand|grocery|shopping|store|pickup|delivery|post office|bank)\b`,
		`\b(buy|purchase|get|fetch|collect)\b`,
	)},
	{"Coding", compile(
		`\b(code|programming|develop|debug|fix|implement|refactor|test|git|commit)\b`,
		`\b(function|class|api|endpoint|database|sql|python|javascript|typescript)\b`,
	)},
	{"Study", compile(
		`\b(study|learn|read|research|review|notes|homework|assignment|exam|test)\b`,
		`\b(chapter|book|article|course|lecture|practice)\b`,
	)},
	{"Meetings", compile(
		`\b(meeting|call|conference|discussion|standup|sync|presentation|demo)\b`,
		`\b(zoom|teams|video|phone|interview)\b`,
	)},
	{"Writing", compile(
		`\b(write|draft|edit|document|report|blog|article|essay|proposal)\b`,
		`\b(content|copy|manuscript|script)\b`,
	)},
	{"Planning", compile(
		`\b(plan|organize|schedule|prepare|outline|strategy|roadmap)\b`,
		`\b(design|architecture|structure|framework)\b`,
	)},
}

func compile(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(exprs))
	for i, e := range exprs {
		out[i] = regexp.MustCompile(e)
	}
	return out
}

// Groups lists the known group labels in table order.
func Groups() []string {
	names := make([]string, len(groupPatterns))
	for i, g := range groupPatterns {
		names[i] = g.name
	}
	return names
}

// Classify returns the group whose patterns match description most often,
// or domain.DefaultGroup when nothing matches.
func Classify(description string) string {
	lower := strings.ToLower(description)
	best, bestScore := domain.DefaultGroup, 0
	for _, g := range groupPatterns {
		score := 0
		for _, re := range g.patterns {
			score += len(re.FindAllStringIndex(lower, -1))
		}
		if score > bestScore {
			best, bestScore = g.name, score
		}
	}
	return best
}

// GroupTasks returns copies of tasks with Group assigned.
func GroupTasks(tasks []domain.Task) []domain.Task {
	out := make([]domain.Task, len(tasks))
	for i, t := range tasks {
		c := t.Clone()
		c.Group = Classify(c.Description)
		out[i] = c
	}
	return out
}

// Batch groups tasks and buckets them by label. Batches are ordered
// alphabetically by label; order within a batch follows the input.
func Batch(tasks []domain.Task) [][]domain.Task {
	grouped := GroupTasks(tasks)
	buckets := make(map[string][]domain.Task)
	for _, t := range grouped {
		buckets[t.Group] = append(buckets[t.Group], t)
	}
	labels := make([]string, 0, len(buckets))
	for label := range buckets {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	batches := make([][]domain.Task, 0, len(labels))
	for _, label := range labels {
		batches = append(batches, buckets[label])
	}
	return batches
}
