// Package app builds the slotwise use cases from configuration. The CLI
// and the HTTP server share one App per process.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/alexanderramin/slotwise/internal/calendar"
	"github.com/alexanderramin/slotwise/internal/config"
	"github.com/alexanderramin/slotwise/internal/db"
	"github.com/alexanderramin/slotwise/internal/habits"
	"github.com/alexanderramin/slotwise/internal/intelligence"
	"github.com/alexanderramin/slotwise/internal/llm"
	"github.com/alexanderramin/slotwise/internal/logging"
	"github.com/alexanderramin/slotwise/internal/metrics"
	"github.com/alexanderramin/slotwise/internal/repository"
	"github.com/alexanderramin/slotwise/internal/sentiment"
	"github.com/alexanderramin/slotwise/internal/service"
)

// App holds the wired use cases. History is nil when run storage is off.
type App struct {
	Config    *config.Config
	Logger    *slog.Logger
	Metrics   *metrics.Metrics
	Schedule  service.ScheduleService
	Features  service.FeatureService
	Assistant service.AssistantService
	History   service.HistoryService

	db     *sql.DB
	ownsDB bool
}

type Options struct {
	// NoHistory skips opening the run store.
	NoHistory bool
	// DB reuses an open handle instead of opening cfg.DB.Path.
	DB *sql.DB
	// Now overrides the clock.
	Now func() time.Time
	// LLMClient overrides the completion client built from cfg.LLM.
	LLMClient llm.LLMClient
}

// Build wires every use case from cfg.
func Build(cfg *config.Config, logger *slog.Logger, opts Options) (*App, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = logging.Discard()
	}

	a := &App{Config: cfg, Logger: logger, Metrics: metrics.New()}
	observers := []service.UseCaseObserver{
		service.NewLogUseCaseObserver(logger),
		service.NewMetricsUseCaseObserver(a.Metrics),
	}

	analyzer, err := buildAnalyzer(cfg, logger)
	if err != nil {
		return nil, err
	}
	processor := habits.NewProcessor(analyzer, cfg.HabitOptions())

	llmCfg := cfg.LLMClientConfig()
	client := opts.LLMClient
	if client == nil && llmCfg.Configured() {
		observer := llm.MultiObserver{a.Metrics}
		if llmCfg.LogCalls {
			observer = append(observer, llm.NewLogObserver(logger))
		}
		client = llm.NewChatClient(llmCfg, observer)
	}
	endpoint := ""
	if client != nil {
		endpoint = llmCfg.Endpoint
	}

	var runs repository.RunRepo
	switch {
	case opts.DB != nil:
		a.db = opts.DB
		runs = repository.NewSQLiteRunRepo(opts.DB)
	case !opts.NoHistory && cfg.DB.Path != "":
		database, err := db.OpenDB(cfg.DB.Path)
		if err != nil {
			return nil, fmt.Errorf("opening run history: %w", err)
		}
		a.db, a.ownsDB = database, true
		runs = repository.NewSQLiteRunRepo(database)
	}

	a.Schedule = service.NewScheduleService(service.ScheduleConfig{
		Scheduler:          cfg.SchedulerOptions(),
		DefaultTimezone:    cfg.Timezone,
		CompletionEndpoint: endpoint,
		Now:                opts.Now,
	}, processor, runs, logger, observers...)
	a.Features = service.NewFeatureService(cfg.Timezone, opts.Now, runs, logger, observers...)
	a.Assistant = service.NewAssistantService(
		intelligence.NewChatService(client, logger), cfg.Timezone, opts.Now, logger, observers...)
	if runs != nil {
		a.History = service.NewHistoryService(runs)
	}

	logger.Debug("app_built",
		"timezone", cfg.Timezone,
		"history", runs != nil,
		"llm", client != nil,
		"remote_sentiment", cfg.Sentiment.Endpoint != "",
	)
	return a, nil
}

func buildAnalyzer(cfg *config.Config, logger *slog.Logger) (sentiment.Analyzer, error) {
	if cfg.Sentiment.Endpoint == "" {
		return sentiment.LocalAnalyzer{}, nil
	}
	client, err := sentiment.NewClient(cfg.SentimentClientConfig(), logger)
	if err != nil {
		return nil, fmt.Errorf("creating sentiment client: %w", err)
	}
	return client, nil
}

// ErrCalendarNotConfigured indicates no OAuth credentials file is set.
var ErrCalendarNotConfigured = errors.New("calendar credentials not configured")

// Calendar connects to the configured Google calendar using the cached
// token.
func (a *App) Calendar(ctx context.Context) (*calendar.Client, error) {
	c := a.Config.Calendar
	if c.CredentialsFile == "" {
		return nil, ErrCalendarNotConfigured
	}
	srv, err := calendar.NewService(ctx, c.CredentialsFile, c.TokenFile)
	if err != nil {
		return nil, err
	}
	wd := calendar.Workday{StartHour: c.WorkdayStart, EndHour: c.WorkdayEnd}
	return calendar.NewClient(srv, c.CalendarID, wd, a.Config.Location(), a.Logger), nil
}

// Close releases the run store when Build opened it.
func (a *App) Close() error {
	if a.db == nil || !a.ownsDB {
		return nil
	}
	return a.db.Close()
}
