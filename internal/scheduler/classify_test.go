package scheduler

import (
	"testing"

	"github.com/alexanderramin/slotwise/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestIsDeepFocus(t *testing.T) {
	assert.True(t, IsDeepFocus(domain.Task{Description: "Implement login flow"}))
	assert.True(t, IsDeepFocus(domain.Task{Description: "Misc", Group: "Planning"}), "group label counts")
	assert.True(t, IsDeepFocus(domain.Task{Description: "Decode logs"}), "substring match")
	assert.False(t, IsDeepFocus(domain.Task{Description: "Buy milk", Group: "Errands"}))
}

func TestIsMeeting(t *testing.T) {
	assert.True(t, IsMeeting(domain.Task{Description: "Weekly SYNC with design"}))
	assert.True(t, IsMeeting(domain.Task{Description: "Prep", Group: "Meetings"}))
	assert.False(t, IsMeeting(domain.Task{Description: "Write essay", Group: "Writing"}))
}
