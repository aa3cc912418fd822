package llm

// TaskType identifies the kind of completion being performed.
type TaskType string

const (
	TaskChat TaskType = "chat"
)

// TaskConfig holds per-task completion parameters.
type TaskConfig struct {
	Temperature float64
	MaxTokens   int
	TimeoutMs   int // overrides global if > 0
}

// LLMConfig holds all configuration for the completion client.
type LLMConfig struct {
	Enabled         bool
	LogCalls        bool
	Endpoint        string // OpenAI-compatible base URL, without /chat/completions
	APIKey          string
	Model           string
	TimeoutMs       int
	MaxRetries      int
	RetryDelayMs    int
	RateLimitPerSec float64 // 0 disables client-side limiting
	RateBurst       int
	Tasks           map[TaskType]TaskConfig
}

// DefaultConfig returns an LLMConfig with sensible defaults. Calls are only
// made once an API key is supplied.
func DefaultConfig() LLMConfig {
	return LLMConfig{
		Enabled:         true,
		LogCalls:        false,
		Endpoint:        "https://api.openai.com/v1",
		Model:           "gpt-4o-mini",
		TimeoutMs:       30000,
		MaxRetries:      2,
		RetryDelayMs:    1000,
		RateLimitPerSec: 1,
		RateBurst:       3,
		Tasks: map[TaskType]TaskConfig{
			TaskChat: {Temperature: 0.7, MaxTokens: 1024, TimeoutMs: 30000},
		},
	}
}

// Configured reports whether the client can make calls at all.
func (c LLMConfig) Configured() bool {
	return c.Enabled && c.APIKey != "" && c.Endpoint != ""
}

// TaskTimeout returns the effective timeout for a given task type.
// Uses the task-specific timeout if set, otherwise the global timeout.
func (c LLMConfig) TaskTimeout(task TaskType) int {
	if tc, ok := c.Tasks[task]; ok && tc.TimeoutMs > 0 {
		return tc.TimeoutMs
	}
	return c.TimeoutMs
}

// WithTaskTimeout returns a copy with task's timeout overridden. Values <= 0
// are ignored.
func (c LLMConfig) WithTaskTimeout(task TaskType, ms int) LLMConfig {
	if ms <= 0 {
		return c
	}
	tasks := make(map[TaskType]TaskConfig, len(c.Tasks))
	for k, v := range c.Tasks {
		tasks[k] = v
	}
	tc := tasks[task]
	tc.TimeoutMs = ms
	tasks[task] = tc
	c.Tasks = tasks
	return c
}
