// Package server exposes the scheduling pipeline and assistant features
// over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/alexanderramin/slotwise/internal/logging"
	"github.com/alexanderramin/slotwise/internal/metrics"
	"github.com/alexanderramin/slotwise/internal/service"
)

const (
	readTimeout     = 30 * time.Second
	writeTimeout    = 90 * time.Second
	shutdownTimeout = 10 * time.Second
	maxBodyBytes    = 1 << 20
)

// Services are the use cases the API serves. History may be nil when run
// storage is disabled.
type Services struct {
	Schedule  service.ScheduleService
	Features  service.FeatureService
	Assistant service.AssistantService
	History   service.HistoryService
}

type Config struct {
	Addr        string
	CORSOrigins []string
	Debug       bool
}

type Server struct {
	engine  *gin.Engine
	http    *http.Server
	svc     Services
	metrics *metrics.Metrics
	logger  *slog.Logger
	started time.Time
}

func New(cfg Config, svc Services, m *metrics.Metrics, logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.Discard()
	}
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(requestLogger(logger, m))
	if len(cfg.CORSOrigins) > 0 {
		corsConfig := cors.DefaultConfig()
		if len(cfg.CORSOrigins) == 1 && cfg.CORSOrigins[0] == "*" {
			corsConfig.AllowAllOrigins = true
		} else {
			corsConfig.AllowOrigins = cfg.CORSOrigins
		}
		corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
		corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
		engine.Use(cors.New(corsConfig))
	}

	s := &Server{
		engine:  engine,
		svc:     svc,
		metrics: m,
		logger:  logger,
		started: time.Now(),
	}
	s.http = &http.Server{
		Addr:         cfg.Addr,
		Handler:      engine,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.engine.GET("/healthz", s.handleHealth)
	if s.metrics != nil {
		s.engine.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}

	v1 := s.engine.Group("/v1")
	v1.Use(limitBody(maxBodyBytes))
	v1.POST("/schedule", s.handleSchedule)
	v1.POST("/chat", s.handleChat)

	feats := v1.Group("/features")
	{
		feats.POST("/deep-block", s.handleDeepBlock)
		feats.POST("/snooze", s.handleSnooze)
		feats.POST("/tags", s.handleTags)
		feats.POST("/deadline", s.handleDeadline)
	}

	runs := v1.Group("/runs")
	{
		runs.GET("", s.handleListRuns)
		runs.GET("/:id", s.handleGetRun)
	}
}

// Handler exposes the engine, mainly for tests.
func (s *Server) Handler() http.Handler { return s.engine }

// Run serves until ctx is cancelled, then shuts down gracefully. A listen
// failure also ends the shutdown watcher.
func (s *Server) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("http server listening", "addr", s.http.Addr)
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.logger.Info("http server shutting down")
		if err := s.http.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down: %w", err)
		}
		return nil
	})
	return g.Wait()
}
