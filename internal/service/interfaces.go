package service

import (
	"context"

	"github.com/alexanderramin/slotwise/internal/contract"
	"github.com/alexanderramin/slotwise/internal/domain"
)

// Use case names reported to observers.
const (
	UseCaseSchedule  = "schedule"
	UseCaseDeepBlock = "deep-block"
	UseCaseSnooze    = "snooze"
	UseCaseTags      = "tags"
	UseCaseDeadline  = "deadline"
	UseCaseChat      = "chat"
)

// ScheduleResult is a produced schedule plus what the caller may want to
// report beside it.
type ScheduleResult struct {
	Response *contract.ScheduleResponse
	Entries  []domain.ScheduleEntry
	RunID    string // "" when no history store is configured
	Warnings []string
	Placed   int
	Unplaced int
	Breaks   int
}

type ScheduleService interface {
	Process(ctx context.Context, req *contract.ScheduleRequest) (*ScheduleResult, error)
}

type FeatureService interface {
	DeepBlock(ctx context.Context, req *contract.FeatureRequest) (*contract.DeepBlockResponse, error)
	Snooze(ctx context.Context, req *contract.FeatureRequest) (*contract.SnoozeResponse, error)
	Tags(ctx context.Context, req *contract.FeatureRequest) (*contract.TagResponse, error)
	Deadline(ctx context.Context, req *contract.FeatureRequest) (*contract.DeadlineResponse, error)
}

type AssistantService interface {
	Chat(ctx context.Context, req *contract.ChatRequest) (*contract.ChatResponse, error)
}

type HistoryService interface {
	List(ctx context.Context, limit int) ([]contract.RunSummary, error)
	Get(ctx context.Context, id string) (*domain.ScheduleRun, error)
	Latest(ctx context.Context) (*domain.ScheduleRun, error)
}
