package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/slotwise/internal/llm"
)

func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	for _, name := range []string{"OPENAI_API_KEY", "SENTIMENT_API_ENDPOINT", "SENTIMENT_API_KEY", "TIMEZONE"} {
		t.Setenv(name, "")
		os.Unsetenv(name)
	}
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load(New(), "")
	require.NoError(t, err)

	assert.Equal(t, "America/Los_Angeles", cfg.Timezone)
	assert.Equal(t, 30, cfg.Scheduling.MeetingBufferMinutes)
	assert.Equal(t, 90, cfg.Breaks.LongAfterMinutes)
	assert.Equal(t, 15, cfg.Breaks.LongMinutes)
	assert.Equal(t, 50, cfg.Breaks.ShortAfterMinutes)
	assert.Equal(t, 5, cfg.Breaks.ShortMinutes)
	assert.Equal(t, 3, cfg.Habits.MaxActive)
	assert.Equal(t, 8, cfg.Habits.NotificationHour)
	assert.Empty(t, cfg.Sentiment.Endpoint)
	assert.Empty(t, cfg.LLM.APIKey)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.False(t, cfg.LLMClientConfig().Configured())
}

func TestLoad_File(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "slotwise.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
timezone: Europe/Berlin
habits:
  max_active: 2
sentiment:
  timeout: 3s
llm:
  model: gpt-4o
`), 0o600))

	cfg, err := Load(New(), path)
	require.NoError(t, err)

	assert.Equal(t, "Europe/Berlin", cfg.Timezone)
	assert.Equal(t, 2, cfg.Habits.MaxActive)
	assert.Equal(t, 3*time.Second, cfg.Sentiment.Timeout)
	assert.Equal(t, "gpt-4o", cfg.LLM.Model)
	assert.Equal(t, 30, cfg.Scheduling.MeetingBufferMinutes)
}

func TestLoad_ExplicitFileMustExist(t *testing.T) {
	isolate(t)
	_, err := Load(New(), filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestLoad_Env(t *testing.T) {
	isolate(t)
	t.Setenv("SLOTWISE_HABITS_MAX_ACTIVE", "5")
	t.Setenv("OPENAI_API_KEY", "sk-legacy")
	t.Setenv("SENTIMENT_API_ENDPOINT", "http://localhost:9000/analyze")
	t.Setenv("TIMEZONE", "UTC")

	cfg, err := Load(New(), "")
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Habits.MaxActive)
	assert.Equal(t, "sk-legacy", cfg.LLM.APIKey)
	assert.Equal(t, "http://localhost:9000/analyze", cfg.Sentiment.Endpoint)
	assert.Equal(t, "UTC", cfg.Timezone)
	assert.True(t, cfg.LLMClientConfig().Configured())
}

func TestLoad_PrefixedEnvWinsOverLegacy(t *testing.T) {
	isolate(t)
	t.Setenv("SLOTWISE_LLM_API_KEY", "sk-new")
	t.Setenv("OPENAI_API_KEY", "sk-legacy")

	cfg, err := Load(New(), "")
	require.NoError(t, err)
	assert.Equal(t, "sk-new", cfg.LLM.APIKey)
}

func TestBindFlags(t *testing.T) {
	isolate(t)
	v := New()
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("timezone", "", "")
	flags.Int("meeting-buffer", 0, "")
	require.NoError(t, flags.Parse([]string{"--timezone", "Asia/Tokyo"}))

	require.NoError(t, BindFlags(v, flags, map[string]string{
		"timezone":                          "timezone",
		"scheduling.meeting_buffer_minutes": "meeting-buffer",
		"log.level":                         "not-a-flag",
	}))
	cfg, err := Load(v, "")
	require.NoError(t, err)

	assert.Equal(t, "Asia/Tokyo", cfg.Timezone)
	assert.Equal(t, 30, cfg.Scheduling.MeetingBufferMinutes, "unchanged flags keep lower layers")
}

func TestValidate(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	cfg.Habits.NotificationHour = 25
	cfg.Log.Format = "xml"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "notification_hour")
	assert.Contains(t, err.Error(), "log.format")
}

func TestConversions(t *testing.T) {
	cfg := Default()
	cfg.Scheduling.MeetingBufferMinutes = 10
	cfg.LLM.APIKey = "sk"
	cfg.LLM.Endpoint = "https://api.example.com/v1/"
	cfg.LLM.TimeoutMs = 5000

	assert.Equal(t, 10, cfg.SchedulerOptions().MeetingBufferMin)
	assert.Equal(t, 15, cfg.SchedulerOptions().Breaks.LongBreakMin)
	assert.Equal(t, 3, cfg.HabitOptions().MaxActive)

	lc := cfg.LLMClientConfig()
	assert.Equal(t, "https://api.example.com/v1", lc.Endpoint)
	assert.Equal(t, 5000, lc.TaskTimeout(llm.TaskChat))
	assert.True(t, lc.Configured())

	sc := cfg.SentimentClientConfig()
	assert.Empty(t, sc.Endpoint)
	assert.Equal(t, 256, sc.CacheSize)
}
