// Package metrics provides a Prometheus implementation of driven.MetricsRecorder.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/custodia-labs/coursemate/internal/core/domain"
	"github.com/custodia-labs/coursemate/internal/core/ports/driven"
)

// Ensure Recorder implements the interface.
var _ driven.MetricsRecorder = (*Recorder)(nil)

const namespace = "coursemate"

// Recorder holds all Prometheus metrics for coursemate.
type Recorder struct {
	registry *prometheus.Registry

	QueryStatesTotal   *prometheus.CounterVec
	QueriesTotal       *prometheus.CounterVec
	QueryDuration      prometheus.Histogram
	ToolExecutions     *prometheus.CounterVec
	SearchesTotal      *prometheus.CounterVec
	SearchDuration     prometheus.Histogram
	DocumentsProcessed *prometheus.CounterVec
}

// NewRecorder creates a recorder with its own registry, including the
// standard Go and process collectors.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,

		QueryStatesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "query_states_total",
				Help:      "Total number of query control loop transitions by state",
			},
			[]string{"state"},
		),
		QueriesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "queries_total",
				Help:      "Total number of answered questions by outcome",
			},
			[]string{"failed"},
		),
		QueryDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "query_duration_seconds",
				Help:      "Duration of questions from first model call to answer",
				Buckets:   []float64{.1, .25, .5, 1, 2.5, 5, 10, 20, 40},
			},
		),
		ToolExecutions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "tool_executions_total",
				Help:      "Total number of tool executions by tool and result",
			},
			[]string{"tool", "ok"},
		),
		SearchesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "searches_total",
				Help:      "Total number of content searches by status",
			},
			[]string{"status"},
		),
		SearchDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "search_duration_seconds",
				Help:      "Duration of content searches including embedding",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
			},
		),
		DocumentsProcessed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "documents_ingested_total",
				Help:      "Total number of course documents processed by outcome",
			},
			[]string{"outcome"},
		),
	}
}

// Handler serves the recorder's registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// Registry returns the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// QueryState counts a control loop transition.
func (r *Recorder) QueryState(state domain.QueryState) {
	r.QueryStatesTotal.WithLabelValues(string(state)).Inc()
}

// QueryCompleted observes a finished query.
func (r *Recorder) QueryCompleted(failed bool, elapsed time.Duration) {
	r.QueriesTotal.WithLabelValues(strconv.FormatBool(failed)).Inc()
	r.QueryDuration.Observe(elapsed.Seconds())
}

// ToolExecuted counts a tool execution.
func (r *Recorder) ToolExecuted(tool string, ok bool) {
	r.ToolExecutions.WithLabelValues(tool, strconv.FormatBool(ok)).Inc()
}

// Search counts a content search.
func (r *Recorder) Search(status domain.SearchStatus, elapsed time.Duration) {
	r.SearchesTotal.WithLabelValues(string(status)).Inc()
	r.SearchDuration.Observe(elapsed.Seconds())
}

// DocumentIngested counts a processed document.
func (r *Recorder) DocumentIngested(outcome domain.IngestOutcome) {
	r.DocumentsProcessed.WithLabelValues(string(outcome)).Inc()
}
