package grouper

import (
	"testing"

	"github.com/alexanderramin/slotwise/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		desc string
		want string
	}{
		{"Reply to client email", "Emails"},
		{"Buy groceries at the store", "Errands"},
		{"Debug the API endpoint", "Coding"},
		{"Study chapter 4 for the exam", "Study"},
		{"Team standup call on Zoom", "Meetings"},
		{"Draft blog post", "Writing"},
		{"Outline the Q3 roadmap", "Planning"},
		{"Water the plants", domain.DefaultGroup},
		{"", domain.DefaultGroup},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Classify(tc.desc), "desc=%q", tc.desc)
	}
}

func TestClassify_TieGoesToFirstListedGroup(t *testing.T) {
	// "read" scores once for Emails and once for Study.
	assert.Equal(t, "Emails", Classify("read"))
}

func TestClassify_CaseInsensitive(t *testing.T) {
	assert.Equal(t, "Coding", Classify("REFACTOR the Database layer"))
}

func TestBatch_AlphabeticalAndStable(t *testing.T) {
	tasks := []domain.Task{
		{ID: "w1", Description: "Write report"},
		{ID: "c1", Description: "Fix bug in code"},
		{ID: "w2", Description: "Edit essay"},
		{ID: "g1", Description: "Water plants"},
		{ID: "c2", Description: "Refactor module"},
	}
	batches := Batch(tasks)
	require.Len(t, batches, 3)

	var labels []string
	var ids [][]string
	for _, b := range batches {
		labels = append(labels, b[0].Group)
		var bIDs []string
		for _, task := range b {
			bIDs = append(bIDs, task.ID)
		}
		ids = append(ids, bIDs)
	}
	assert.Equal(t, []string{"Coding", domain.DefaultGroup, "Writing"}, labels)
	assert.Equal(t, [][]string{{"c1", "c2"}, {"g1"}, {"w1", "w2"}}, ids)
	assert.Empty(t, tasks[0].Group, "input is not modified")
}

func TestGroups(t *testing.T) {
	assert.Equal(t, []string{"Emails", "Errands", "Coding", "Study", "Meetings", "Writing", "Planning"}, Groups())
}
