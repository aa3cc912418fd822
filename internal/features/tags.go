package features

import (
	"fmt"
	"sort"
	"strings"

	"github.com/alexanderramin/slotwise/internal/domain"
)

// UntaggedGroup collects tasks without any tag.
const UntaggedGroup = "general"

type tagPattern struct {
	tag      string
	keywords []string
}

var tagPatterns = []tagPattern{
	{"#email", []string{"email", "mail", "inbox", "reply", "respond"}},
	{"#errand", []string{"errand", "pickup", "store", "shop", "buy", "purchase", "grocery"}},
	{"#urgent", []string{"urgent", "asap", "immediate", "critical", "emergency"}},
	{"#coding", []string{"code", "programming", "debug", "develop", "implement", "function"}},
	{"#meeting", []string{"meeting", "call", "zoom", "conference", "discuss"}},
	{"#reading", []string{"read", "review", "study", "learn", "research"}},
	{"#writing", []string{"write", "draft", "document", "article", "blog"}},
	{"#exercise", []string{"exercise", "workout", "gym", "run", "walk", "fitness"}},
	{"#cooking", []string{"cook", "meal", "dinner", "lunch", "recipe"}},
	{"#cleaning", []string{"clean", "organize", "tidy", "declutter"}},
}

type TagResult struct {
	Outcome
	Tagged   []domain.Task
	Groups   map[string][]domain.Task
	Detected []string
}

// DetectTags returns the quick tags whose keywords occur in description.
func DetectTags(description string) []string {
	lower := strings.ToLower(description)
	var out []string
	for _, p := range tagPatterns {
		for _, kw := range p.keywords {
			if strings.Contains(lower, kw) {
				out = append(out, p.tag)
				break
			}
		}
	}
	return out
}

// ApplyTags merges tags into every task, or with no tags and autoDetect set,
// tags each task from its description. Tasks are then grouped by primary tag.
func ApplyTags(tasks []domain.Task, tags []string, autoDetect bool) TagResult {
	if len(tasks) == 0 {
		return TagResult{Outcome: fail("No tasks provided.", "Cannot tag empty task list.")}
	}
	tags = domain.NormalizeTags(tags)

	if len(tags) > 0 {
		tagged := make([]domain.Task, len(tasks))
		for i, t := range tasks {
			c := t.Clone()
			c.MergeTags(tags...)
			c.Justification = fmt.Sprintf("Applied tags %v. Task will be grouped with other tasks sharing these tags.", tags)
			tagged[i] = c
		}
		groups := GroupByTag(tagged)
		return TagResult{
			Outcome: Outcome{
				Success: true,
				Message: fmt.Sprintf("Applied tags %v to %d task(s).", tags, len(tagged)),
				Reasoning: fmt.Sprintf("Tagged %d tasks with %v. Created %d tag-based groups for batch execution.",
					len(tagged), tags, len(groups)),
			},
			Tagged: tagged,
			Groups: groups,
		}
	}

	if !autoDetect {
		return TagResult{Outcome: fail(
			"No tags provided and auto-detect is disabled.",
			"Cannot apply tags without tags or auto-detection.")}
	}

	all := make(map[string]bool)
	tagged := make([]domain.Task, len(tasks))
	for i, t := range tasks {
		c := t.Clone()
		detected := DetectTags(c.Description)
		c.MergeTags(detected...)
		if len(c.Tags) > 0 {
			for _, tag := range c.Tags {
				all[tag] = true
			}
			c.Justification = fmt.Sprintf("Auto-detected tags %v from task description. Task will be grouped for batch execution.", detected)
		}
		tagged[i] = c
	}
	detected := make([]string, 0, len(all))
	for tag := range all {
		detected = append(detected, tag)
	}
	sort.Strings(detected)

	groups := GroupByTag(tagged)
	return TagResult{
		Outcome: Outcome{
			Success: true,
			Message: fmt.Sprintf("Auto-detected and applied %d tag(s) to tasks.", len(detected)),
			Reasoning: fmt.Sprintf("Auto-detected tags %v from task descriptions. Created %d tag-based groups for efficient batch execution.",
				detected, len(groups)),
		},
		Tagged:   tagged,
		Groups:   groups,
		Detected: detected,
	}
}

// GroupByTag buckets tasks by their primary tag.
func GroupByTag(tasks []domain.Task) map[string][]domain.Task {
	groups := make(map[string][]domain.Task)
	for _, t := range tasks {
		key := domain.Coalesce(t.PrimaryTag(), UntaggedGroup)
		groups[key] = append(groups[key], t)
	}
	return groups
}
