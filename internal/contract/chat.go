package contract

import (
	"strings"
)

// HistoryLimit bounds how many prior turns are forwarded to the model.
const HistoryLimit = 10

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatRequest struct {
	Message             string        `json:"message"`
	ConversationHistory []ChatMessage `json:"conversation_history,omitempty"`
	Tasks               []TaskInput   `json:"tasks,omitempty"`
	CalendarFree        []SlotInput   `json:"calendar_free,omitempty"`
	Habits              []HabitInput  `json:"habits,omitempty"`
	Timezone            string        `json:"timezone,omitempty"`
}

func DecodeChatRequest(data []byte) (*ChatRequest, error) {
	if _, err := decodeObject(data); err != nil {
		return nil, err
	}
	var req ChatRequest
	if err := decodeInto(data, &req); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Message) == "" {
		return nil, &ValidationError{Problems: []string{`missing required field "message"`}}
	}
	return &req, nil
}

func (r *ChatRequest) Normalize(opts NormalizeOptions) (*Normalized, error) {
	return normalize(r.Tasks, r.CalendarFree, r.Habits, r.Timezone, opts)
}

// RecentHistory keeps the last HistoryLimit user and assistant turns.
func (r *ChatRequest) RecentHistory() []ChatMessage {
	var kept []ChatMessage
	for _, m := range r.ConversationHistory {
		if m.Role == "user" || m.Role == "assistant" {
			kept = append(kept, m)
		}
	}
	if len(kept) > HistoryLimit {
		kept = kept[len(kept)-HistoryLimit:]
	}
	return kept
}
