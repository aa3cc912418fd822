package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/alexanderramin/slotwise/internal/contract"
	"github.com/alexanderramin/slotwise/internal/domain"
	"github.com/alexanderramin/slotwise/internal/grouper"
	"github.com/alexanderramin/slotwise/internal/habits"
	"github.com/alexanderramin/slotwise/internal/logging"
	"github.com/alexanderramin/slotwise/internal/output"
	"github.com/alexanderramin/slotwise/internal/repository"
	"github.com/alexanderramin/slotwise/internal/scheduler"
)

// LocalSchedulerCode marks a response produced without the remote
// optimisation step.
const LocalSchedulerCode = "LOCAL_SCHEDULER"

// ScheduleConfig holds the knobs the pipeline needs beyond its collaborators.
type ScheduleConfig struct {
	Scheduler       scheduler.Options
	DefaultTimezone string
	// CompletionEndpoint is reported in gemini_api_call; "" when the
	// completion service is not configured.
	CompletionEndpoint string
	Now                func() time.Time
	NewID              func() string
}

func (c ScheduleConfig) withDefaults() ScheduleConfig {
	if c.Scheduler == (scheduler.Options{}) {
		c.Scheduler = scheduler.DefaultOptions()
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	if c.NewID == nil {
		c.NewID = uuid.NewString
	}
	return c
}

type scheduleService struct {
	cfg      ScheduleConfig
	habits   *habits.Processor
	runs     repository.RunRepo
	logger   *slog.Logger
	observer UseCaseObserver
}

// NewScheduleService wires the scheduling pipeline. runs may be nil, in
// which case nothing is stored.
func NewScheduleService(
	cfg ScheduleConfig,
	processor *habits.Processor,
	runs repository.RunRepo,
	logger *slog.Logger,
	observers ...UseCaseObserver,
) ScheduleService {
	if logger == nil {
		logger = logging.Discard()
	}
	return &scheduleService{
		cfg:      cfg.withDefaults(),
		habits:   processor,
		runs:     runs,
		logger:   logger,
		observer: useCaseObserverOrNoop(observers),
	}
}

func (s *scheduleService) Process(ctx context.Context, req *contract.ScheduleRequest) (res *ScheduleResult, err error) {
	startedAt := time.Now()
	fields := map[string]any{}
	defer func() {
		s.observer.ObserveUseCase(ctx, UseCaseEvent{
			Name:      UseCaseSchedule,
			StartedAt: startedAt,
			Duration:  time.Since(startedAt),
			Success:   err == nil,
			Err:       err,
			Fields:    fields,
		})
	}()

	req.AssignTaskIDs(s.cfg.NewID)
	norm, err := req.Normalize(contract.NormalizeOptions{
		DefaultTimezone: s.cfg.DefaultTimezone,
		NewID:           s.cfg.NewID,
	})
	if err != nil {
		return nil, err
	}
	logWarnings(ctx, s.logger, norm.Warnings)

	now := s.cfg.Now().In(norm.Location)
	prioritized := scheduler.Prioritize(norm.Tasks, now)
	grouped := grouper.GroupTasks(prioritized)
	placed := scheduler.Schedule(grouped, norm.Slots, s.cfg.Scheduler)

	var plans []domain.HabitPlan
	if s.habits != nil {
		plans = s.habits.Process(ctx, norm.Habits, norm.Slots, now)
	}

	resp := output.Assemble(output.Assembly{
		Entries:  placed.Entries,
		Habits:   plans,
		Input:    req.Echo(),
		Endpoint: s.cfg.CompletionEndpoint,
		CallError: &contract.CallError{
			Code:    LocalSchedulerCode,
			Message: "Remote optimisation disabled; the local heuristic scheduler produced this plan.",
		},
		Summary: validationSummary(grouped, plans),
	})

	fields["tasks"] = len(norm.Tasks)
	fields["placed"] = placed.Placed
	fields["unplaced"] = placed.Unplaced
	fields["split"] = placed.Split
	fields["breaks"] = placed.Breaks
	fields["habits"] = len(plans)
	fields["warnings"] = len(norm.Warnings)
	if n := sentimentFallbacks(plans); n > 0 {
		fields["sentiment_fallbacks"] = n
	}

	res = &ScheduleResult{
		Response: resp,
		Entries:  placed.Entries,
		Warnings: norm.Warnings,
		Placed:   placed.Placed,
		Unplaced: placed.Unplaced,
		Breaks:   placed.Breaks,
	}
	if s.runs == nil {
		return res, nil
	}

	run, err := newRun(req, resp, norm, placed, sentimentFallbacks(plans) > 0)
	if err != nil {
		return nil, err
	}
	if err = s.runs.Create(ctx, run); err != nil {
		return nil, fmt.Errorf("storing run: %w", err)
	}
	res.RunID = run.ID
	fields["run_id"] = run.ID
	return res, nil
}

// validationSummary narrates each pipeline step in one line.
func validationSummary(grouped []domain.Task, plans []domain.HabitPlan) string {
	groups := make(map[string]struct{}, len(grouped))
	for _, t := range grouped {
		groups[t.Group] = struct{}{}
	}
	active := 0
	for _, p := range plans {
		if p.Status == domain.HabitActive {
			active++
		}
	}
	return fmt.Sprintf(
		"Prioritized %d tasks using the scoring algorithm. "+
			"Grouped tasks into %d categories for efficiency. "+
			"Processed %d habits, %d active, %d on back-burner. "+
			"Used the local heuristic scheduler.",
		len(grouped), len(groups), len(plans), active, len(plans)-active,
	)
}

func sentimentFallbacks(plans []domain.HabitPlan) int {
	n := 0
	for _, p := range plans {
		if p.SentimentFallback {
			n++
		}
	}
	return n
}

func newRun(req *contract.ScheduleRequest, resp *contract.ScheduleResponse, norm *contract.Normalized, placed scheduler.Result, fallback bool) (*domain.ScheduleRun, error) {
	reqJSON, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}
	respJSON, err := json.Marshal(resp)
	if err != nil {
		return nil, fmt.Errorf("encoding response: %w", err)
	}
	return &domain.ScheduleRun{
		Timezone:      norm.Timezone,
		TaskCount:     len(norm.Tasks),
		PlacedCount:   placed.Placed,
		UnplacedCount: placed.Unplaced,
		SplitCount:    placed.Split,
		BreakCount:    placed.Breaks,
		RequestJSON:   reqJSON,
		ResponseJSON:  respJSON,
		Fallback:      fallback,
		Warnings:      norm.Warnings,
	}, nil
}

func logWarnings(ctx context.Context, logger *slog.Logger, warnings []string) {
	for _, w := range warnings {
		logger.WarnContext(ctx, "corrected request field", "detail", w)
	}
}
