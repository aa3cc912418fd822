package scheduler

import (
	"strings"

	"github.com/alexanderramin/slotwise/internal/domain"
)

var deepFocusKeywords = []string{
	"code", "programming", "write", "draft", "design", "plan",
	"study", "research", "analyze", "implement", "develop",
}

var meetingKeywords = []string{
	"meeting", "call", "conference", "discussion", "standup",
	"sync", "presentation", "demo", "interview",
}

// IsDeepFocus reports whether the task needs uninterrupted focus. Matching
// is by substring on the lowercased description or group.
func IsDeepFocus(t domain.Task) bool {
	return matchesAny(t, deepFocusKeywords)
}

// IsMeeting reports whether the task is collaborative and needs buffers.
func IsMeeting(t domain.Task) bool {
	return matchesAny(t, meetingKeywords)
}

func matchesAny(t domain.Task, keywords []string) bool {
	desc := strings.ToLower(t.Description)
	group := strings.ToLower(t.Group)
	for _, kw := range keywords {
		if strings.Contains(desc, kw) || strings.Contains(group, kw) {
			return true
		}
	}
	return false
}
