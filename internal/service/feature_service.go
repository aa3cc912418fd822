package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/alexanderramin/slotwise/internal/contract"
	"github.com/alexanderramin/slotwise/internal/features"
	"github.com/alexanderramin/slotwise/internal/logging"
	"github.com/alexanderramin/slotwise/internal/output"
	"github.com/alexanderramin/slotwise/internal/repository"
	"github.com/alexanderramin/slotwise/internal/scheduler"
)

type featureService struct {
	defaultTZ string
	now       func() time.Time
	runs      repository.RunRepo
	logger    *slog.Logger
	observer  UseCaseObserver
}

// NewFeatureService serves the assistant features over inline tasks or a
// stored run. runs may be nil.
func NewFeatureService(
	defaultTZ string,
	now func() time.Time,
	runs repository.RunRepo,
	logger *slog.Logger,
	observers ...UseCaseObserver,
) FeatureService {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &featureService{
		defaultTZ: defaultTZ,
		now:       now,
		runs:      runs,
		logger:    logger,
		observer:  useCaseObserverOrNoop(observers),
	}
}

// featureInput is a normalised feature request.
type featureInput struct {
	*contract.Normalized
	now time.Time
}

func (s *featureService) load(ctx context.Context, req *contract.FeatureRequest) (*featureInput, error) {
	if err := resolveFeatureInput(ctx, s.runs, req); err != nil {
		return nil, err
	}
	norm, err := req.Normalize(contract.NormalizeOptions{DefaultTimezone: s.defaultTZ})
	if err != nil {
		return nil, err
	}
	logWarnings(ctx, s.logger, norm.Warnings)
	return &featureInput{Normalized: norm, now: s.now().In(norm.Location)}, nil
}

func (s *featureService) observe(ctx context.Context, name string, startedAt time.Time, err error, fields map[string]any) {
	s.observer.ObserveUseCase(ctx, UseCaseEvent{
		Name:      name,
		StartedAt: startedAt,
		Duration:  time.Since(startedAt),
		Success:   err == nil,
		Err:       err,
		Fields:    fields,
	})
}

func (s *featureService) DeepBlock(ctx context.Context, req *contract.FeatureRequest) (resp *contract.DeepBlockResponse, err error) {
	startedAt := time.Now()
	fields := map[string]any{"run_id": req.RunID}
	defer func() { s.observe(ctx, UseCaseDeepBlock, startedAt, err, fields) }()

	in, err := s.load(ctx, req)
	if err != nil {
		return nil, err
	}
	tasks := scheduler.Prioritize(in.Tasks, in.now)
	res := features.PlanDeepBlock(tasks, in.Slots, req.BlockMinutes())
	res.Warnings = joinWarnings(in.Warnings, res.Warnings)
	fields["success"] = res.Success
	fields["updates"] = len(res.Updates)
	return output.DeepBlock(res), nil
}

func (s *featureService) Snooze(ctx context.Context, req *contract.FeatureRequest) (resp *contract.SnoozeResponse, err error) {
	startedAt := time.Now()
	fields := map[string]any{"run_id": req.RunID, "task_id": req.TaskID}
	defer func() { s.observe(ctx, UseCaseSnooze, startedAt, err, fields) }()

	in, err := s.load(ctx, req)
	if err != nil {
		return nil, err
	}
	res := features.Snooze(in.Tasks, req.TaskID, req.SnoozeAmount())
	res.Warnings = joinWarnings(in.Warnings, res.Warnings)
	fields["success"] = res.Success
	fields["snooze_minutes"] = res.SnoozeMinutes
	fields["rescheduled"] = len(res.Rescheduled)
	return output.Snooze(res), nil
}

func (s *featureService) Tags(ctx context.Context, req *contract.FeatureRequest) (resp *contract.TagResponse, err error) {
	startedAt := time.Now()
	fields := map[string]any{"run_id": req.RunID}
	defer func() { s.observe(ctx, UseCaseTags, startedAt, err, fields) }()

	in, err := s.load(ctx, req)
	if err != nil {
		return nil, err
	}
	res := features.ApplyTags(in.Tasks, req.TagsToApply(), req.AutoDetectTags())
	res.Warnings = joinWarnings(in.Warnings, res.Warnings)
	fields["success"] = res.Success
	fields["groups"] = len(res.Groups)
	return output.Tags(res), nil
}

func (s *featureService) Deadline(ctx context.Context, req *contract.FeatureRequest) (resp *contract.DeadlineResponse, err error) {
	startedAt := time.Now()
	fields := map[string]any{"run_id": req.RunID, "task_id": req.TaskID}
	defer func() { s.observe(ctx, UseCaseDeadline, startedAt, err, fields) }()

	in, err := s.load(ctx, req)
	if err != nil {
		return nil, err
	}
	newDeadline, warning := req.Deadline(in.Location)
	var extra []string
	if warning != "" {
		s.logger.WarnContext(ctx, "corrected request field", "detail", warning)
		extra = []string{warning}
	}

	tasks := scheduler.Prioritize(in.Tasks, in.now)
	res := features.NegotiateDeadline(tasks, in.Slots, features.DeadlineRequest{
		TaskID:      req.TaskID,
		NewDeadline: newDeadline,
	}, in.now)
	res.Warnings = joinWarnings(in.Warnings, extra, res.Warnings)
	fields["success"] = res.Success
	fields["extension"] = res.Email != nil
	return output.Deadline(res), nil
}

func joinWarnings(parts ...[]string) []string {
	var out []string
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}
