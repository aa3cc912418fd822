package llm

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testPayload struct {
	Message      string   `json:"message"`
	Action       string   `json:"action"`
	QuickActions []string `json:"quick_actions"`
	Confidence   float64  `json:"confidence"`
}

func TestDecodeReply_CleanJSON(t *testing.T) {
	raw := `{"message":"Blocked 90 minutes","action":"deep_block","confidence":0.95}`
	result, err := DecodeReply[testPayload](raw, nil)
	require.NoError(t, err)
	assert.Equal(t, "deep_block", result.Action)
	assert.Equal(t, 0.95, result.Confidence)
}

func TestDecodeReply_FencedJSON(t *testing.T) {
	raw := "```json\n{\"message\":\"done\",\"action\":\"snooze\"}\n```"
	result, err := DecodeReply[testPayload](raw, nil)
	require.NoError(t, err)
	assert.Equal(t, "snooze", result.Action)
}

func TestDecodeReply_SurroundingText(t *testing.T) {
	raw := "Sure! Here is my answer:\n{\"message\":\"Tagged it\",\"action\":\"tag\"}\nLet me know."
	result, err := DecodeReply[testPayload](raw, nil)
	require.NoError(t, err)
	assert.Equal(t, "Tagged it", result.Message)
}

func TestDecodeReply_NestedBraces(t *testing.T) {
	type nested struct {
		Action string            `json:"action"`
		Params map[string]string `json:"action_params"`
	}
	raw := `{"action":"tag","action_params":{"task_id":"t1"}}`
	result, err := DecodeReply[nested](raw, nil)
	require.NoError(t, err)
	assert.Equal(t, "tag", result.Action)
	assert.Equal(t, "t1", result.Params["task_id"])
}

func TestDecodeReply_NoJSON(t *testing.T) {
	raw := "I'm not sure what you mean."
	_, err := DecodeReply[testPayload](raw, nil)
	assert.ErrorIs(t, err, ErrInvalidOutput)
}

func TestDecodeReply_RepairsTruncatedObject(t *testing.T) {
	raw := `{"message":"Here you go","quick_actions":["Schedule Tasks","Add Habit"`
	result, err := DecodeReply[testPayload](raw, nil)
	require.NoError(t, err)
	assert.Equal(t, "Here you go", result.Message)
	assert.Equal(t, []string{"Schedule Tasks", "Add Habit"}, result.QuickActions)
}

func TestDecodeReply_RepairsTrailingComma(t *testing.T) {
	raw := `{"message":"ok","action":"none",}`
	result, err := DecodeReply[testPayload](raw, nil)
	require.NoError(t, err)
	assert.Equal(t, "none", result.Action)
}

func TestDecodeReply_ValidationFailure(t *testing.T) {
	raw := `{"message":"hi","confidence":1.5}`
	validator := func(p testPayload) error {
		if p.Confidence < 0 || p.Confidence > 1 {
			return fmt.Errorf("confidence must be in [0,1], got %f", p.Confidence)
		}
		return nil
	}
	_, err := DecodeReply(raw, validator)
	assert.ErrorIs(t, err, ErrInvalidOutput)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestDecodeReply_BracesInsideString(t *testing.T) {
	raw := `{"message":"use {curly} braces","action":"none"}`
	result, err := DecodeReply[testPayload](raw, nil)
	require.NoError(t, err)
	assert.Equal(t, "use {curly} braces", result.Message)
}

func TestDecodeReply_MultipleFences(t *testing.T) {
	raw := "Some text\n```\n{\"message\":\"m\",\"action\":\"deadline\"}\n```\nMore text"
	result, err := DecodeReply[testPayload](raw, nil)
	require.NoError(t, err)
	assert.Equal(t, "deadline", result.Action)
}

func TestDecodeReply_SkipsBraceInProse(t *testing.T) {
	raw := "Set {focus} first.\n{\"message\":\"ok\",\"action\":\"deep_block\"}"
	result, err := DecodeReply[testPayload](raw, nil)
	require.NoError(t, err)
	assert.Equal(t, "deep_block", result.Action)
}

func TestDecodeReply_NestedObjectIsNotACandidate(t *testing.T) {
	raw := `{"message":"m","action":"tag","action_params":{"task_id":"t1"},}`
	result, err := DecodeReply[testPayload](raw, nil)
	require.NoError(t, err)
	assert.Equal(t, "tag", result.Action)
}
