package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/nbenliogludev/go-news-ai-agent/internal/llm"
)

// Search outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeEmpty   = "empty"
	OutcomeFailure = "failure"
	OutcomeInvalid = "invalid"
)

// Metrics holds the collectors of one process. A nil *Metrics records nothing.
type Metrics struct {
	Searches    *prometheus.CounterVec
	AgentRun    *prometheus.HistogramVec
	PDFExports  *prometheus.CounterVec
	LLMRequests *prometheus.CounterVec
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Searches: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "newsagent_searches_total",
				Help: "Number of news searches by outcome",
			},
			[]string{"outcome"},
		),
		AgentRun: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "newsagent_agent_run_seconds",
				Help:    "Duration of one agent run in seconds",
				Buckets: prometheus.ExponentialBuckets(0.5, 2, 10), // 0.5s to ~4m
			},
			[]string{"driver"},
		),
		PDFExports: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "newsagent_pdf_exports_total",
				Help: "Number of PDF exports by status",
			},
			[]string{"status"},
		),
		LLMRequests: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "newsagent_llm_requests_total",
				Help: "Number of model calls by provider and status",
			},
			[]string{"provider", "status"},
		),
	}
}

func (m *Metrics) RecordSearch(outcome string) {
	if m == nil {
		return
	}
	m.Searches.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RecordAgentRun(driver string, d time.Duration) {
	if m == nil {
		return
	}
	m.AgentRun.WithLabelValues(driver).Observe(d.Seconds())
}

func (m *Metrics) RecordPDFExport(err error) {
	if m == nil {
		return
	}
	m.PDFExports.WithLabelValues(status(err)).Inc()
}

// LLMObserver counts model calls; pass it to llm.WithObserver.
func (m *Metrics) LLMObserver() llm.Observer {
	if m == nil {
		return nil
	}
	return func(provider string, err error) {
		m.LLMRequests.WithLabelValues(provider, status(err)).Inc()
	}
}

func status(err error) string {
	if err != nil {
		return "failed"
	}
	return "success"
}
