package intelligence

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/alexanderramin/slotwise/internal/domain"
	"github.com/alexanderramin/slotwise/internal/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pst = time.FixedZone("PST", -8*3600)

type mockLLMClient struct {
	response string
	err      error
	last     llm.GenerateRequest
}

func (m *mockLLMClient) Generate(_ context.Context, req llm.GenerateRequest) (*llm.GenerateResponse, error) {
	m.last = req
	if m.err != nil {
		return nil, m.err
	}
	return &llm.GenerateResponse{Text: m.response, Model: "gpt-4o-mini"}, nil
}

func (m *mockLLMClient) Available(_ context.Context) bool { return m.err == nil }

func at(hour, min int) time.Time {
	return time.Date(2025, 11, 22, hour, min, 0, 0, pst)
}

func replyJSON(t *testing.T, reply map[string]any) string {
	t.Helper()
	data, err := json.Marshal(reply)
	require.NoError(t, err)
	return string(data)
}

func testChatRequest(message string) ChatRequest {
	s1 := at(9, 0)
	return ChatRequest{
		Message: message,
		Tasks: []domain.Task{
			{ID: "t1", Description: "Write quarterly report", DurationMinutes: 60, Importance: 80, PriorityScore: 0.7, ScheduledTime: &s1},
			{ID: "t2", Description: "Reply to emails", DurationMinutes: 30, Importance: 30, PriorityScore: 0.2},
		},
		Slots:    []domain.FreeSlot{{Start: at(9, 0), End: at(12, 0)}},
		Timezone: "America/Los_Angeles",
		Location: pst,
		Now:      at(8, 0),
	}
}

func TestChat_NotConfigured(t *testing.T) {
	svc := NewChatService(&mockLLMClient{err: llm.ErrNotConfigured}, nil)

	res, err := svc.Chat(context.Background(), testChatRequest("hello"))
	require.NoError(t, err)

	assert.False(t, res.Success)
	assert.Contains(t, res.Response, "OPENAI_API_KEY")
	assert.Equal(t, ActionNone, res.Action)
	assert.Equal(t, DefaultQuickActions(), res.QuickActions)
	assert.False(t, res.Fallback)
}

func TestChat_NilClientIsNotConfigured(t *testing.T) {
	res, err := NewChatService(nil, nil).Chat(context.Background(), testChatRequest("hello"))
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, SourceDeterministic, res.Source)
}

func TestChat_ValidReply(t *testing.T) {
	client := &mockLLMClient{response: replyJSON(t, map[string]any{
		"response":      "You should start with the report.",
		"reasoning":     "It has the highest priority.",
		"action":        "info",
		"action_data":   map[string]any{},
		"quick_actions": []string{"Create Deep Block"},
	})}
	svc := NewChatService(client, nil)

	res, err := svc.Chat(context.Background(), testChatRequest("what should I do first?"))
	require.NoError(t, err)

	assert.True(t, res.Success)
	assert.Equal(t, "You should start with the report.", res.Response)
	assert.Equal(t, "It has the highest priority.", res.Reasoning)
	assert.Equal(t, ActionInfo, res.Action)
	assert.Equal(t, []string{"Create Deep Block"}, res.QuickActions)
	assert.Equal(t, SourceLLM, res.Source)
	assert.False(t, res.Fallback)
}

func TestChat_RequestShape(t *testing.T) {
	client := &mockLLMClient{response: `{"response":"ok"}`}
	req := testChatRequest("plan my day")
	req.History = []llm.Message{
		{Role: "user", Content: "hi"},
		{Role: "assistant", Content: "hello"},
	}

	_, err := NewChatService(client, nil).Chat(context.Background(), req)
	require.NoError(t, err)

	require.Len(t, client.last.Messages, 4)
	assert.Equal(t, llm.TaskChat, client.last.Task)
	assert.True(t, client.last.JSONMode)
	assert.Equal(t, "system", client.last.Messages[0].Role)
	assert.Contains(t, client.last.Messages[0].Content, "Current Tasks:")
	assert.Contains(t, client.last.Messages[0].Content, "[t1] Write quarterly report")
	assert.Contains(t, client.last.Messages[0].Content, "Timezone: America/Los_Angeles")
	assert.Equal(t, "hi", client.last.Messages[1].Content)
	assert.True(t, strings.HasPrefix(client.last.Messages[3].Content, "plan my day"))
}

func TestChat_DefaultsFilledIn(t *testing.T) {
	client := &mockLLMClient{response: `{"response":"Sure."}`}

	res, err := NewChatService(client, nil).Chat(context.Background(), testChatRequest("hi"))
	require.NoError(t, err)

	assert.Equal(t, "Processed request successfully.", res.Reasoning)
	assert.Equal(t, ActionNone, res.Action)
	assert.Equal(t, DefaultQuickActions(), res.QuickActions)
	assert.NotNil(t, res.ActionData)
}

func TestChat_UnparseableReplyReturnedAsText(t *testing.T) {
	client := &mockLLMClient{response: "Just start with the report, honestly."}

	res, err := NewChatService(client, nil).Chat(context.Background(), testChatRequest("hi"))
	require.NoError(t, err)

	assert.True(t, res.Success)
	assert.True(t, res.Fallback)
	assert.Equal(t, "Just start with the report, honestly.", res.Response)
	assert.Equal(t, "Provided conversational response (JSON parsing failed).", res.Reasoning)
	assert.Equal(t, ActionNone, res.Action)
}

func TestChat_FencedReply(t *testing.T) {
	client := &mockLLMClient{response: "```json\n{\"response\":\"Fenced.\",\"action\":\"none\"}\n```"}

	res, err := NewChatService(client, nil).Chat(context.Background(), testChatRequest("hi"))
	require.NoError(t, err)

	assert.Equal(t, "Fenced.", res.Response)
	assert.False(t, res.Fallback)
}

func TestChat_ExecutesDeepBlockAction(t *testing.T) {
	client := &mockLLMClient{response: replyJSON(t, map[string]any{
		"response":    "Blocking focus time.",
		"action":      "deep_block",
		"action_data": map[string]any{"duration_minutes": 90},
	})}

	res, err := NewChatService(client, nil).Chat(context.Background(), testChatRequest("I need to focus"))
	require.NoError(t, err)

	assert.Equal(t, ActionDeepBlock, res.Action)
	require.Len(t, res.ScheduleUpdates, 1)
	assert.Equal(t, "t1", res.ScheduleUpdates[0].ID)
	assert.True(t, res.ScheduleUpdates[0].ScheduledTime.Equal(at(9, 0)))
	assert.Contains(t, res.Reasoning, "90-minute deep work block")
}

func TestChat_ExecutesSnoozeAction(t *testing.T) {
	client := &mockLLMClient{response: replyJSON(t, map[string]any{
		"response":    "Pushed it back.",
		"action":      "snooze",
		"action_data": map[string]any{"task_id": "t1", "hours": 1},
	})}

	res, err := NewChatService(client, nil).Chat(context.Background(), testChatRequest("snooze the report"))
	require.NoError(t, err)

	require.NotEmpty(t, res.ScheduleUpdates)
	assert.Equal(t, "t1", res.ScheduleUpdates[0].ID)
	assert.True(t, res.ScheduleUpdates[0].ScheduledTime.Equal(at(10, 0)))
}

func TestChat_ExecutesTagAction(t *testing.T) {
	client := &mockLLMClient{response: replyJSON(t, map[string]any{
		"response":    "Tagged.",
		"action":      "tag",
		"action_data": map[string]any{"tag": "work"},
	})}

	res, err := NewChatService(client, nil).Chat(context.Background(), testChatRequest("tag everything as work"))
	require.NoError(t, err)

	require.Len(t, res.TaggedTasks, 2)
	for _, task := range res.TaggedTasks {
		assert.Contains(t, task.Tags, "work")
	}
}

func TestChat_ExecutesDeadlineAction(t *testing.T) {
	req := testChatRequest("I need more time on the report")
	deadline := at(10, 0)
	req.Tasks[0].Deadline = &deadline
	client := &mockLLMClient{response: replyJSON(t, map[string]any{
		"response":    "Let's ask for more time.",
		"action":      "deadline",
		"action_data": map[string]any{"task_id": "t1", "new_deadline": "2025-11-24T17:00:00-08:00"},
	})}

	res, err := NewChatService(client, nil).Chat(context.Background(), req)
	require.NoError(t, err)

	require.NotNil(t, res.Deadline)
	require.NotNil(t, res.Deadline.Email)
	assert.Contains(t, res.Deadline.Email.Subject, "Write quarterly report")
}

func TestChat_InvalidActionDataIgnored(t *testing.T) {
	client := &mockLLMClient{response: replyJSON(t, map[string]any{
		"response":    "Tagging.",
		"action":      "tag",
		"action_data": map[string]any{"auto": true},
	})}

	res, err := NewChatService(client, nil).Chat(context.Background(), testChatRequest("tag"))
	require.NoError(t, err)

	assert.True(t, res.Success)
	assert.Empty(t, res.TaggedTasks)
	assert.Equal(t, "Tagging.", res.Response)
}

func TestChat_FallsBackOnTransportErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		contains string
	}{
		{"rate limited", llm.ErrRateLimited, "high demand"},
		{"unavailable", llm.ErrUnavailable, "trouble connecting"},
		{"timeout", llm.ErrTimeout, "trouble connecting"},
		{"other", llm.ErrRetryExhausted, "handled this locally"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := NewChatService(&mockLLMClient{err: tt.err}, nil).Chat(context.Background(), testChatRequest("hello"))
			require.NoError(t, err)
			assert.True(t, res.Fallback)
			assert.Equal(t, SourceDeterministic, res.Source)
			assert.Contains(t, res.Response, tt.contains)
		})
	}
}
