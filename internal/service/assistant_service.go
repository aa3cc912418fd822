package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/alexanderramin/slotwise/internal/contract"
	"github.com/alexanderramin/slotwise/internal/intelligence"
	"github.com/alexanderramin/slotwise/internal/llm"
	"github.com/alexanderramin/slotwise/internal/logging"
	"github.com/alexanderramin/slotwise/internal/output"
)

type assistantService struct {
	chat      intelligence.ChatService
	defaultTZ string
	now       func() time.Time
	logger    *slog.Logger
	observer  UseCaseObserver
}

func NewAssistantService(
	chat intelligence.ChatService,
	defaultTZ string,
	now func() time.Time,
	logger *slog.Logger,
	observers ...UseCaseObserver,
) AssistantService {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &assistantService{
		chat:      chat,
		defaultTZ: defaultTZ,
		now:       now,
		logger:    logger,
		observer:  useCaseObserverOrNoop(observers),
	}
}

func (s *assistantService) Chat(ctx context.Context, req *contract.ChatRequest) (resp *contract.ChatResponse, err error) {
	startedAt := time.Now()
	fields := map[string]any{}
	defer func() {
		s.observer.ObserveUseCase(ctx, UseCaseEvent{
			Name:      UseCaseChat,
			StartedAt: startedAt,
			Duration:  time.Since(startedAt),
			Success:   err == nil,
			Err:       err,
			Fields:    fields,
		})
	}()

	norm, err := req.Normalize(contract.NormalizeOptions{DefaultTimezone: s.defaultTZ})
	if err != nil {
		return nil, err
	}
	logWarnings(ctx, s.logger, norm.Warnings)

	history := req.RecentHistory()
	msgs := make([]llm.Message, 0, len(history))
	for _, m := range history {
		msgs = append(msgs, llm.Message{Role: m.Role, Content: m.Content})
	}

	res, err := s.chat.Chat(ctx, intelligence.ChatRequest{
		Message:  req.Message,
		History:  msgs,
		Tasks:    norm.Tasks,
		Slots:    norm.Slots,
		Habits:   norm.Habits,
		Timezone: norm.Timezone,
		Location: norm.Location,
		Now:      s.now().In(norm.Location),
	})
	if err != nil {
		return nil, err
	}
	fields["action"] = string(res.Action)
	fields["source"] = res.Source
	fields["fallback"] = res.Fallback
	return output.Chat(res), nil
}
