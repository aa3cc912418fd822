// Package metrics holds the Prometheus instruments slotwise exports.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/alexanderramin/slotwise/internal/llm"
)

const namespace = "slotwise"

// Metrics holds all Prometheus metrics. Each instance owns its registry so
// tests and embedded servers never collide on registration.
type Metrics struct {
	registry *prometheus.Registry

	// Counters
	useCases   *prometheus.CounterVec
	tasks      *prometheus.CounterVec
	breaks     prometheus.Counter
	fallbacks  *prometheus.CounterVec
	llmCalls   *prometheus.CounterVec
	httpServed *prometheus.CounterVec

	// Histograms
	useCaseDuration *prometheus.HistogramVec
	llmLatency      *prometheus.HistogramVec
	httpDuration    *prometheus.HistogramVec
}

// New creates and registers all metrics on a fresh registry, together with
// the Go runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		useCases: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "use_cases_total",
				Help:      "Service use cases executed, by outcome",
			},
			[]string{"use_case", "outcome"},
		),
		tasks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "tasks_total",
				Help:      "Tasks processed by the scheduler, by placement state",
			},
			[]string{"state"},
		),
		breaks: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "breaks_inserted_total",
				Help:      "Breaks inserted into schedules",
			},
		),
		fallbacks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "fallbacks_total",
				Help:      "Times a remote collaborator was replaced by local logic",
			},
			[]string{"component"},
		),
		llmCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "llm_calls_total",
				Help:      "Completion calls, by task and status",
			},
			[]string{"task", "status"},
		),
		httpServed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "HTTP requests served",
			},
			[]string{"method", "route", "code"},
		),
		useCaseDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "use_case_duration_seconds",
				Help:      "Service use case duration in seconds",
				Buckets:   []float64{.001, .005, .01, .05, .1, .5, 1, 5, 30},
			},
			[]string{"use_case"},
		),
		llmLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "llm_call_duration_seconds",
				Help:      "Completion call latency in seconds, retries included",
				Buckets:   []float64{.1, .5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"task"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"route"},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.useCases,
		m.tasks,
		m.breaks,
		m.fallbacks,
		m.llmCalls,
		m.httpServed,
		m.useCaseDuration,
		m.llmLatency,
		m.httpDuration,
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) ObserveUseCase(name string, d time.Duration, success bool) {
	outcome := "success"
	if !success {
		outcome = "error"
	}
	m.useCases.WithLabelValues(name, outcome).Inc()
	m.useCaseDuration.WithLabelValues(name).Observe(d.Seconds())
}

// ObserveSchedule records the shape of one scheduling run.
func (m *Metrics) ObserveSchedule(placed, unplaced, split, breaks int) {
	m.tasks.WithLabelValues("placed").Add(float64(placed))
	m.tasks.WithLabelValues("unplaced").Add(float64(unplaced))
	m.tasks.WithLabelValues("split").Add(float64(split))
	m.breaks.Add(float64(breaks))
}

func (m *Metrics) Fallback(component string) {
	m.fallbacks.WithLabelValues(component).Inc()
}

// OnCallComplete makes Metrics an llm.Observer.
func (m *Metrics) OnCallComplete(event llm.LLMCallEvent) {
	status := "ok"
	if !event.Success {
		status = event.ErrorCode
	}
	m.llmCalls.WithLabelValues(string(event.Task), status).Inc()
	m.llmLatency.WithLabelValues(string(event.Task)).Observe(float64(event.LatencyMs) / 1000)
}

func (m *Metrics) ObserveHTTP(method, route string, code int, d time.Duration) {
	m.httpServed.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	m.httpDuration.WithLabelValues(route).Observe(d.Seconds())
}
