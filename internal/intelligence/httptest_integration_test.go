package intelligence

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/alexanderramin/slotwise/internal/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHTTPTestServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()

	var srv *httptest.Server
	func() {
		defer func() {
			if r := recover(); r != nil {
				t.Skipf("skipping HTTP integration test: local listener unavailable (%v)", r)
			}
		}()
		srv = httptest.NewServer(handler)
	}()
	return srv
}

func testLLMConfig(endpoint string) llm.LLMConfig {
	cfg := llm.DefaultConfig()
	cfg.Endpoint = endpoint
	cfg.APIKey = "sk-test"
	cfg.RetryDelayMs = 1
	cfg.RateLimitPerSec = 0
	return cfg
}

// TestChat_WithHTTPTestServer drives the chat service through the real
// completion client so the wire format and reply parsing stay in sync.
func TestChat_WithHTTPTestServer(t *testing.T) {
	reply, err := json.Marshal(map[string]any{
		"response":      "Snoozing the report by an hour.",
		"reasoning":     "You asked for more time.",
		"action":        "snooze",
		"action_data":   map[string]any{"task_id": "t1", "snooze_minutes": 60},
		"quick_actions": []string{"View Schedule"},
	})
	require.NoError(t, err)

	srv := newHTTPTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, map[string]any{"type": "json_object"}, body["response_format"])

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"model": "gpt-4o-mini",
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": string(reply)}},
			},
		})
	})
	defer srv.Close()

	svc := NewChatService(llm.NewChatClient(testLLMConfig(srv.URL), llm.NoopObserver{}), nil)
	res, err := svc.Chat(context.Background(), testChatRequest("snooze the report an hour"))
	require.NoError(t, err)

	assert.True(t, res.Success)
	assert.Equal(t, ActionSnooze, res.Action)
	assert.Equal(t, []string{"View Schedule"}, res.QuickActions)
	require.NotEmpty(t, res.ScheduleUpdates)
	assert.True(t, res.ScheduleUpdates[0].ScheduledTime.Equal(at(10, 0)))
}

func TestChat_WithHTTPTestServer_ServerErrorFallsBack(t *testing.T) {
	var calls atomic.Int32
	srv := newHTTPTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	defer srv.Close()

	svc := NewChatService(llm.NewChatClient(testLLMConfig(srv.URL), llm.NoopObserver{}), nil)
	res, err := svc.Chat(context.Background(), testChatRequest("how am I doing?"))
	require.NoError(t, err)

	assert.True(t, res.Fallback)
	assert.Equal(t, ActionInfo, res.Action)
	assert.Equal(t, int32(3), calls.Load())
}
