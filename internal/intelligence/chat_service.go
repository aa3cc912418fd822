package intelligence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/alexanderramin/slotwise/internal/domain"
	"github.com/alexanderramin/slotwise/internal/features"
	"github.com/alexanderramin/slotwise/internal/llm"
)

// Action names the local operation the assistant asked for.
type Action string

const (
	ActionSchedule  Action = "schedule"
	ActionDeepBlock Action = "deep_block"
	ActionSnooze    Action = "snooze"
	ActionTag       Action = "tag"
	ActionDeadline  Action = "deadline"
	ActionHabit     Action = "habit"
	ActionInfo      Action = "info"
	ActionNone      Action = "none"
)

const (
	SourceLLM           = "llm"
	SourceDeterministic = "deterministic"
)

// DefaultQuickActions are suggested whenever the model offers none.
func DefaultQuickActions() []string {
	return []string{"Schedule Tasks", "Add Habit", "View Calendar"}
}

// ChatRequest is a normalised conversation turn with its planning context.
type ChatRequest struct {
	Message  string
	History  []llm.Message
	Tasks    []domain.Task
	Slots    []domain.FreeSlot
	Habits   []domain.Habit
	Timezone string
	Location *time.Location
	Now      time.Time
}

// ChatResult is the assistant's answer plus the effect of any action it ran.
type ChatResult struct {
	Success         bool
	Response        string
	Reasoning       string
	Action          Action
	ActionData      map[string]any
	QuickActions    []string
	ScheduleUpdates []domain.Task
	TaggedTasks     []domain.Task
	Deadline        *features.DeadlineResult
	Fallback        bool
	Source          string
}

// ChatService answers scheduling questions and runs the assistant features
// the model asks for. Model failures degrade into a deterministic answer
// rather than an error.
type ChatService interface {
	Chat(ctx context.Context, req ChatRequest) (*ChatResult, error)
}

type chatService struct {
	client llm.LLMClient
	logger *slog.Logger
}

// NewChatService creates a ChatService backed by an LLM client. A nil client
// behaves like an unconfigured one.
func NewChatService(client llm.LLMClient, logger *slog.Logger) ChatService {
	if logger == nil {
		logger = slog.Default()
	}
	return &chatService{client: client, logger: logger}
}

// agentReply is the JSON structure expected from the model.
type agentReply struct {
	Response     string          `json:"response"`
	Reasoning    string          `json:"reasoning"`
	Action       string          `json:"action"`
	ActionData   json.RawMessage `json:"action_data"`
	QuickActions domain.TagList  `json:"quick_actions"`
}

func (s *chatService) Chat(ctx context.Context, req ChatRequest) (*ChatResult, error) {
	if req.Now.IsZero() {
		req.Now = time.Now()
	}
	if req.Location != nil {
		req.Now = req.Now.In(req.Location)
	}
	if s.client == nil {
		return notConfigured(), nil
	}

	resp, err := s.client.Generate(ctx, llm.GenerateRequest{
		Task:     llm.TaskChat,
		Messages: buildMessages(req),
		JSONMode: true,
	})
	if errors.Is(err, llm.ErrNotConfigured) {
		s.logger.Warn("chat_not_configured")
		return notConfigured(), nil
	}
	if err != nil {
		s.logger.Warn("chat_fallback", "error", err)
		return DeterministicChat(req, err), nil
	}

	reply, err := llm.DecodeReply[agentReply](resp.Text, nil)
	if err != nil {
		if strings.TrimSpace(resp.Text) == "" {
			return DeterministicChat(req, err), nil
		}
		s.logger.Warn("chat_unparseable_reply", "error", err)
		return &ChatResult{
			Success:      true,
			Response:     resp.Text,
			Reasoning:    "Provided conversational response (JSON parsing failed).",
			Action:       ActionNone,
			ActionData:   map[string]any{},
			QuickActions: DefaultQuickActions(),
			Fallback:     true,
			Source:       SourceLLM,
		}, nil
	}

	result := &ChatResult{
		Success:      true,
		Response:     reply.Response,
		Reasoning:    domain.Coalesce(reply.Reasoning, "Processed request successfully."),
		Action:       Action(domain.Coalesce(strings.TrimSpace(reply.Action), string(ActionNone))),
		ActionData:   decodeActionData(reply.ActionData),
		QuickActions: []string(reply.QuickActions),
		Source:       SourceLLM,
	}
	if len(result.QuickActions) == 0 {
		result.QuickActions = DefaultQuickActions()
	}

	if result.Action != ActionNone && len(result.ActionData) > 0 {
		out, err := executeAction(result.Action, reply.ActionData, req)
		if err != nil {
			s.logger.Warn("chat_action_failed", "action", string(result.Action), "error", err)
		} else {
			out.mergeInto(result)
			for _, w := range out.warnings {
				s.logger.Warn("chat_action_corrected", "action", string(result.Action), "detail", w)
			}
		}
	}

	s.logger.Info("chat_complete", "action", string(result.Action), "updates", len(result.ScheduleUpdates))
	return result, nil
}

func buildMessages(req ChatRequest) []llm.Message {
	msgs := []llm.Message{{Role: "system", Content: buildChatSystemPrompt(req)}}
	history := req.History
	if len(history) > 10 {
		history = history[len(history)-10:]
	}
	for _, m := range history {
		if m.Role == "user" || m.Role == "assistant" {
			msgs = append(msgs, m)
		}
	}
	return append(msgs, llm.Message{Role: "user", Content: req.Message + userSuffix})
}

func decodeActionData(raw json.RawMessage) map[string]any {
	data := map[string]any{}
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &data)
	}
	if data == nil {
		data = map[string]any{}
	}
	return data
}

func notConfigured() *ChatResult {
	return &ChatResult{
		Success:      false,
		Response:     "AI Agent is not configured. Please set OPENAI_API_KEY in your environment variables.",
		Reasoning:    "Completion API key not available.",
		Action:       ActionNone,
		ActionData:   map[string]any{},
		QuickActions: DefaultQuickActions(),
		Source:       SourceDeterministic,
	}
}

func errorPreamble(err error) string {
	switch {
	case errors.Is(err, llm.ErrRateLimited):
		return "I'm currently experiencing high demand. Please wait a moment and try again."
	case errors.Is(err, llm.ErrUnavailable), errors.Is(err, llm.ErrTimeout):
		return "I'm having trouble connecting to the AI service. Please check your internet connection and try again."
	default:
		return fmt.Sprintf("I couldn't reach the assistant (%v), so I handled this locally.", err)
	}
}
