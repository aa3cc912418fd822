package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/alexanderramin/slotwise/internal/contract"
	"github.com/alexanderramin/slotwise/internal/repository"
	"github.com/alexanderramin/slotwise/internal/service"
)

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error    string   `json:"error"`
	Problems []string `json:"problems,omitempty"`
}

type HealthResponse struct {
	Status string `json:"status"`
	Uptime string `json:"uptime"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status: "ok",
		Uptime: time.Since(s.started).Round(time.Second).String(),
	})
}

func (s *Server) handleSchedule(c *gin.Context) {
	body, ok := readBody(c)
	if !ok {
		return
	}
	req, err := contract.DecodeScheduleRequest(body)
	if err != nil {
		s.fail(c, err)
		return
	}
	res, err := s.svc.Schedule.Process(c.Request.Context(), req)
	if err != nil {
		s.fail(c, err)
		return
	}
	if res.RunID != "" {
		c.Header("X-Run-ID", res.RunID)
	}
	c.JSON(http.StatusOK, res.Response)
}

func (s *Server) handleChat(c *gin.Context) {
	body, ok := readBody(c)
	if !ok {
		return
	}
	req, err := contract.DecodeChatRequest(body)
	if err != nil {
		s.fail(c, err)
		return
	}
	resp, err := s.svc.Assistant.Chat(c.Request.Context(), req)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleDeepBlock(c *gin.Context) {
	serveFeature(s, c, s.svc.Features.DeepBlock)
}

func (s *Server) handleSnooze(c *gin.Context) {
	serveFeature(s, c, s.svc.Features.Snooze)
}

func (s *Server) handleTags(c *gin.Context) {
	serveFeature(s, c, s.svc.Features.Tags)
}

func (s *Server) handleDeadline(c *gin.Context) {
	serveFeature(s, c, s.svc.Features.Deadline)
}

// serveFeature decodes a feature request and replies with the feature's
// result. An unsuccessful feature outcome is still a 200: the body says
// why.
func serveFeature[T any](s *Server, c *gin.Context, run func(context.Context, *contract.FeatureRequest) (T, error)) {
	body, ok := readBody(c)
	if !ok {
		return
	}
	req, err := contract.DecodeFeatureRequest(body)
	if err != nil {
		s.fail(c, err)
		return
	}
	resp, err := run(c.Request.Context(), req)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleListRuns(c *gin.Context) {
	if s.svc.History == nil {
		s.fail(c, service.ErrRunStoreDisabled)
		return
	}
	limit := repository.DefaultListLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "limit must be a positive integer"})
			return
		}
		limit = n
	}
	runs, err := s.svc.History.List(c.Request.Context(), limit)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs})
}

// handleGetRun returns the stored response exactly as it was produced.
func (s *Server) handleGetRun(c *gin.Context) {
	if s.svc.History == nil {
		s.fail(c, service.ErrRunStoreDisabled)
		return
	}
	run, err := s.svc.History.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.Header("X-Run-ID", run.ID)
	c.Data(http.StatusOK, "application/json; charset=utf-8", run.ResponseJSON)
}

func readBody(c *gin.Context) ([]byte, bool) {
	body, err := c.GetRawData()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, ErrorResponse{Error: "request body too large"})
			return nil, false
		}
		c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Error: "reading request body: " + err.Error()})
		return nil, false
	}
	return body, true
}

// fail maps service errors onto status codes.
func (s *Server) fail(c *gin.Context, err error) {
	_ = c.Error(err)

	var verr *contract.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request", Problems: verr.Problems})
	case errors.Is(err, contract.ErrMalformedJSON):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrRunStoreDisabled):
		c.JSON(http.StatusNotImplemented, ErrorResponse{Error: err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
}
