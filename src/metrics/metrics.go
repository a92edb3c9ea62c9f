// Package metrics defines the prometheus collectors for the agent loop,
// tool calls, and the HTTP shell.
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/elee1766/moviefinder/src/aisdk"
	"github.com/elee1766/moviefinder/src/orclient"
)

const namespace = "moviefinder"

// Metrics holds every collector, registered on its own registry.
type Metrics struct {
	registry *prometheus.Registry

	Runs           *prometheus.CounterVec
	RunSteps       prometheus.Histogram
	RunDuration    *prometheus.HistogramVec
	ModelCalls     *prometheus.CounterVec
	ModelDuration  prometheus.Histogram
	Tokens         *prometheus.CounterVec
	ToolCalls      *prometheus.CounterVec
	ToolDuration   *prometheus.HistogramVec
	HTTPRequests   *prometheus.CounterVec
	HTTPDuration   *prometheus.HistogramVec
	ActiveSessions prometheus.Gauge
}

// New builds the collectors. Go runtime and process collectors are included.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		Runs: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "agent_runs_total",
			Help:      "Agent loop runs by outcome.",
		}, []string{"outcome"}),
		RunSteps: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "agent_run_steps",
			Help:      "Reasoning steps taken per run.",
			Buckets:   []float64{1, 2, 3, 5, 8, 13, 21, 40, 75},
		}),
		RunDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "agent_run_duration_seconds",
			Help:      "Wall time of agent loop runs.",
			Buckets:   prometheus.ExponentialBuckets(0.25, 2, 10),
		}, []string{"outcome"}),
		ModelCalls: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "model_calls_total",
			Help:      "Reasoning engine calls by result.",
		}, []string{"result"}),
		ModelDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "model_call_duration_seconds",
			Help:      "Latency of reasoning engine calls.",
			Buckets:   prometheus.DefBuckets,
		}),
		Tokens: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "model_tokens_total",
			Help:      "Tokens reported by the reasoning engine.",
		}, []string{"kind"}),
		ToolCalls: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tool_calls_total",
			Help:      "Tool executions by tool and result.",
		}, []string{"tool", "result"}),
		ToolDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "tool_call_duration_seconds",
			Help:      "Latency of tool executions.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"tool"}),
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"route", "code"}),
		HTTPDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		ActiveSessions: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Sessions currently held by the session manager.",
		}),
	}
}

// Registry exposes the underlying registry, mostly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveRun records one agent loop run.
func (m *Metrics) ObserveRun(outcome string, steps int, d time.Duration) {
	m.Runs.WithLabelValues(outcome).Inc()
	m.RunSteps.Observe(float64(steps))
	m.RunDuration.WithLabelValues(outcome).Observe(d.Seconds())
}

// ObserveModelCall records one reasoning engine call.
func (m *Metrics) ObserveModelCall(d time.Duration, err error) {
	m.ModelDuration.Observe(d.Seconds())
	m.ModelCalls.WithLabelValues(modelResult(err)).Inc()
}

// ObserveTokens adds token usage.
func (m *Metrics) ObserveTokens(u aisdk.Usage) {
	m.Tokens.WithLabelValues("prompt").Add(float64(u.PromptTokens))
	m.Tokens.WithLabelValues("completion").Add(float64(u.CompletionTokens))
}

// ObserveTool records one tool execution.
func (m *Metrics) ObserveTool(name string, d time.Duration, failed bool) {
	result := "ok"
	if failed {
		result = "error"
	}
	m.ToolCalls.WithLabelValues(name, result).Inc()
	m.ToolDuration.WithLabelValues(name).Observe(d.Seconds())
}

// ObserveHTTP records one served request.
func (m *Metrics) ObserveHTTP(route string, code int, d time.Duration) {
	m.HTTPRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
	m.HTTPDuration.WithLabelValues(route).Observe(d.Seconds())
}

// SessionOpened and SessionClosed track the active session gauge.
func (m *Metrics) SessionOpened() { m.ActiveSessions.Inc() }
func (m *Metrics) SessionClosed() { m.ActiveSessions.Dec() }

func modelResult(err error) string {
	if err == nil {
		return "ok"
	}
	var apiErr *orclient.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.IsAuthError():
			return "auth_error"
		case apiErr.IsRateLimit():
			return "rate_limited"
		}
		return "api_error"
	}
	return "error"
}
