package service

import (
	"context"
	"fmt"

	"github.com/alexanderramin/slotwise/internal/contract"
	"github.com/alexanderramin/slotwise/internal/domain"
	"github.com/alexanderramin/slotwise/internal/repository"
	"github.com/alexanderramin/slotwise/internal/timeutil"
)

type historyService struct {
	runs repository.RunRepo
}

func NewHistoryService(runs repository.RunRepo) HistoryService {
	return &historyService{runs: runs}
}

func (s *historyService) List(ctx context.Context, limit int) ([]contract.RunSummary, error) {
	runs, err := s.runs.ListRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	out := make([]contract.RunSummary, 0, len(runs))
	for _, r := range runs {
		out = append(out, Summarize(r))
	}
	return out, nil
}

func (s *historyService) Get(ctx context.Context, id string) (*domain.ScheduleRun, error) {
	return s.runs.GetByID(ctx, id)
}

func (s *historyService) Latest(ctx context.Context) (*domain.ScheduleRun, error) {
	return s.runs.Latest(ctx)
}

// Summarize is the listing view of a stored run.
func Summarize(r *domain.ScheduleRun) contract.RunSummary {
	return contract.RunSummary{
		ID:            r.ID,
		CreatedAt:     timeutil.Format(r.CreatedAt),
		Timezone:      r.Timezone,
		TaskCount:     r.TaskCount,
		PlacedCount:   r.PlacedCount,
		UnplacedCount: r.UnplacedCount,
		BreakCount:    r.BreakCount,
	}
}
