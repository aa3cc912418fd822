package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/alexanderramin/slotwise/internal/app"
	"github.com/alexanderramin/slotwise/internal/config"
	"github.com/alexanderramin/slotwise/internal/contract"
	"github.com/alexanderramin/slotwise/internal/service"
	"github.com/alexanderramin/slotwise/internal/testutil"
)

const scheduleRequest = `{
  "tasks": [
    {"task_id": "t1", "description": "Write quarterly report", "duration_minutes": 60, "importance": 80},
    {"task_id": "t2", "description": "Reply to emails", "duration_minutes": 30}
  ],
  "calendar_free": [{"start_iso": "2025-11-22T09:00:00Z", "end_iso": "2025-11-22T12:00:00Z"}],
  "habits": [{"name": "Run", "importance_statement": "Running is essential for me"}],
  "timezone": "UTC"
}`

// testBuilder wires the real use cases over one in-memory database shared
// by every command of a test.
func testBuilder(t *testing.T) Builder {
	t.Helper()
	database := testutil.NewTestDB(t)
	return func(cfg *config.Config, logger *slog.Logger, opts app.Options) (*app.App, error) {
		cfg.LLM.APIKey = ""
		cfg.Sentiment.Endpoint = ""
		if !opts.NoHistory {
			opts.DB = database
		}
		opts.Now = func() time.Time { return time.Date(2025, 11, 22, 8, 0, 0, 0, time.UTC) }
		return app.Build(cfg, logger, opts)
	}
}

// executeCmd runs a fresh root command and captures stdout and stderr.
func executeCmd(t *testing.T, build Builder, stdin string, args ...string) (string, string, error) {
	t.Helper()
	root := NewRootCmd(build)
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append([]string{"--timezone", "UTC", "--log-level", "error"}, args...))
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func decodeSchedule(t *testing.T, data string) contract.ScheduleResponse {
	t.Helper()
	var resp contract.ScheduleResponse
	require.NoError(t, json.Unmarshal([]byte(data), &resp))
	return resp
}

// --- schedule ---

func TestRootCmd_SchedulesInputFileToOutputFile(t *testing.T) {
	build := testBuilder(t)
	in := writeFile(t, "request.json", scheduleRequest)
	out := filepath.Join(t.TempDir(), "response.json")

	stdout, stderr, err := executeCmd(t, build, "", in, "-o", out)
	require.NoError(t, err)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "Validation: Prioritized 2 tasks")

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "{\n  \""), "two-space indent")
	resp := decodeSchedule(t, string(data))
	require.Len(t, resp.Schedule, 2)
	// Batches run in group order, so Emails goes before Writing despite
	// the lower priority.
	assert.Equal(t, "t2", resp.Schedule[0].TaskID)
	assert.Equal(t, "2025-11-22T09:00:00Z", resp.Schedule[0].ScheduledTime)
	assert.Equal(t, "t1", resp.Schedule[1].TaskID)
	assert.Equal(t, "2025-11-22T09:30:00Z", resp.Schedule[1].ScheduledTime)
}

func TestScheduleCmd_ReadsStdin(t *testing.T) {
	stdout, _, err := executeCmd(t, testBuilder(t), scheduleRequest, "schedule")
	require.NoError(t, err)

	resp := decodeSchedule(t, stdout)
	ids := make([]string, 0, len(resp.Schedule))
	for _, item := range resp.Schedule {
		ids = append(ids, item.TaskID)
	}
	assert.Contains(t, ids, "t1")
	assert.Contains(t, ids, "t2")
	require.Len(t, resp.Habits, 1)
	assert.NotNil(t, resp.GeminiAPICall.Error)
	assert.Equal(t, service.LocalSchedulerCode, resp.GeminiAPICall.Error.Code)
}

func TestScheduleCmd_MissingCalendarFree(t *testing.T) {
	stdout, _, err := executeCmd(t, testBuilder(t), `{"tasks": []}`, "schedule")
	require.Error(t, err)
	assert.True(t, contract.IsValidation(err))
	assert.Empty(t, stdout, "no partial output")
}

func TestScheduleCmd_MalformedJSON(t *testing.T) {
	_, _, err := executeCmd(t, testBuilder(t), `{"tasks": [`, "schedule")
	require.Error(t, err)
	assert.ErrorIs(t, err, contract.ErrMalformedJSON)
}

func TestScheduleCmd_Pretty(t *testing.T) {
	_, stderr, err := executeCmd(t, testBuilder(t), scheduleRequest, "schedule", "--pretty")
	require.NoError(t, err)
	assert.Contains(t, stderr, "SCHEDULE")
	assert.Contains(t, stderr, "Write quarterly report")
	assert.Contains(t, stderr, "HABITS")
}

func TestScheduleCmd_YAMLFormat(t *testing.T) {
	stdout, _, err := executeCmd(t, testBuilder(t), scheduleRequest, "--format", "yaml", "schedule")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stdout, "features:"), "keeps response key order")
	assert.Contains(t, stdout, "task_id: t1")

	var doc map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(stdout), &doc))
	assert.Len(t, doc["habits"], 1)
}

func TestScheduleCmd_YAMLByOutputExtension(t *testing.T) {
	out := filepath.Join(t.TempDir(), "response.yml")
	_, _, err := executeCmd(t, testBuilder(t), scheduleRequest, "schedule", "-o", out)
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "{")
	assert.Contains(t, string(data), "task_id: t2")
}

func TestRootCmd_UnknownFormat(t *testing.T) {
	_, _, err := executeCmd(t, testBuilder(t), scheduleRequest, "--format", "xml", "schedule")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown output format "xml"`)
}

func TestScheduleCmd_NoHistory(t *testing.T) {
	build := testBuilder(t)
	_, stderr, err := executeCmd(t, build, scheduleRequest, "--no-history", "schedule")
	require.NoError(t, err)
	assert.NotContains(t, stderr, "saved")

	_, _, err = executeCmd(t, build, "", "history", "list")
	require.NoError(t, err)
}

// --- history ---

func TestHistoryCmd_ListAndShow(t *testing.T) {
	build := testBuilder(t)
	_, stderr, err := executeCmd(t, build, scheduleRequest, "schedule")
	require.NoError(t, err)
	assert.Contains(t, stderr, "saved.")

	stdout, _, err := executeCmd(t, build, "", "history", "list")
	require.NoError(t, err)
	var runs []contract.RunSummary
	require.NoError(t, json.Unmarshal([]byte(stdout), &runs))
	require.Len(t, runs, 1)
	assert.Equal(t, 2, runs[0].TaskCount)

	stdout, _, err = executeCmd(t, build, "", "history", "show", runs[0].ID)
	require.NoError(t, err)
	resp := decodeSchedule(t, stdout)
	assert.NotEmpty(t, resp.Schedule)

	stdout, _, err = executeCmd(t, build, "", "history", "show", "--request")
	require.NoError(t, err)
	assert.Contains(t, stdout, `"calendar_free"`)
}

func TestHistoryCmd_Disabled(t *testing.T) {
	_, _, err := executeCmd(t, testBuilder(t), "", "--no-history", "history", "list")
	assert.ErrorIs(t, err, service.ErrRunStoreDisabled)
}

// --- features ---

func TestSnoozeCmd_LatestRun(t *testing.T) {
	build := testBuilder(t)
	_, _, err := executeCmd(t, build, scheduleRequest, "schedule")
	require.NoError(t, err)

	stdout, _, err := executeCmd(t, build, "", "snooze", "--run", "latest", "--task", "t1", "--minutes", "15")
	require.NoError(t, err)

	var resp contract.SnoozeResponse
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.True(t, resp.Success, resp.Message)
	assert.Equal(t, 15, resp.SnoozeMinutes)
	require.NotNil(t, resp.SnoozedTask)
	assert.Equal(t, "t1", resp.SnoozedTask.TaskID)
}

func TestSnoozeCmd_UnknownRun(t *testing.T) {
	_, _, err := executeCmd(t, testBuilder(t), "", "snooze", "--run", "nope", "--task", "t1")
	require.Error(t, err)
}

func TestTagCmd_InlineTasks(t *testing.T) {
	stdout, stderr, err := executeCmd(t, testBuilder(t), scheduleRequest, "tag", "--tag", "#q4", "--pretty")
	require.NoError(t, err)

	var resp contract.TagResponse
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.True(t, resp.Success)
	require.Len(t, resp.TaggedTasks, 2)
	for _, task := range resp.TaggedTasks {
		assert.Contains(t, task.Tags, "#q4")
	}
	assert.Contains(t, stderr, "TAGS")
}

func TestDeepBlockCmd_InlineTasks(t *testing.T) {
	stdout, _, err := executeCmd(t, testBuilder(t), scheduleRequest, "deep-block", "--minutes", "90")
	require.NoError(t, err)

	var resp contract.DeepBlockResponse
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.NotEmpty(t, resp.Message)
}

func TestDeadlineCmd_MalformedDeadlineWarns(t *testing.T) {
	stdout, _, err := executeCmd(t, testBuilder(t), scheduleRequest, "deadline", "--task", "t1", "--deadline", "soon")
	require.NoError(t, err)

	var resp contract.DeadlineResponse
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Contains(t, strings.Join(resp.Warnings, "\n"), "new_deadline")
}

// --- chat ---

func TestChatCmd_NotConfigured(t *testing.T) {
	stdout, _, err := executeCmd(t, testBuilder(t), "", "chat", "what", "now?")
	require.NoError(t, err)

	var resp contract.ChatResponse
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Response, "OPENAI_API_KEY")
}

func TestChatCmd_ContextWithoutMessage(t *testing.T) {
	ctxFile := writeFile(t, "context.json", `{"tasks": [{"description": "Write report"}]}`)
	_, _, err := executeCmd(t, testBuilder(t), "", "chat", "--context", ctxFile)
	require.Error(t, err)
	assert.True(t, contract.IsValidation(err))
}

func TestChatCmd_PipedRequest(t *testing.T) {
	stdout, _, err := executeCmd(t, testBuilder(t), `{"message": "plan my day", "tasks": []}`, "chat")
	require.NoError(t, err)
	assert.Contains(t, stdout, `"response"`)
}

// --- errors ---

func TestPrintError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want []string
	}{
		{
			name: "validation lists problems",
			err:  &contract.ValidationError{Problems: []string{`missing required field "tasks"`, `missing required field "calendar_free"`}},
			want: []string{"Validation failed:", `  - missing required field "tasks"`, `  - missing required field "calendar_free"`},
		},
		{
			name: "malformed json",
			err:  contract.ErrMalformedJSON,
			want: []string{"Validation failed: invalid JSON input"},
		},
		{
			name: "other",
			err:  errors.New("disk full"),
			want: []string{"Error: disk full"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			printError(&buf, tt.err)
			for _, w := range tt.want {
				assert.Contains(t, buf.String(), w)
			}
		})
	}
}

func TestReadInput_MissingFile(t *testing.T) {
	_, _, err := executeCmd(t, testBuilder(t), "", "schedule", filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
