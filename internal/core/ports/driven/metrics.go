package driven

import (
	"time"

	"github.com/custodia-labs/coursemate/internal/core/domain"
)

// MetricsRecorder records operational metrics.
// Services accept a nil recorder and fall back to NopMetrics.
type MetricsRecorder interface {
	// QueryState counts a control loop transition.
	QueryState(state domain.QueryState)

	// QueryCompleted observes a finished query.
	QueryCompleted(failed bool, elapsed time.Duration)

	// ToolExecuted counts a tool execution by name and success.
	ToolExecuted(tool string, ok bool)

	// Search counts a content search by status.
	Search(status domain.SearchStatus, elapsed time.Duration)

	// DocumentIngested counts an ingested document by outcome.
	DocumentIngested(outcome domain.IngestOutcome)
}

// NopMetrics discards everything.
type NopMetrics struct{}

func (NopMetrics) QueryState(domain.QueryState) {}
func (NopMetrics) QueryCompleted(bool, time.Duration) {}
func (NopMetrics) ToolExecuted(string, bool) {}
func (NopMetrics) Search(domain.SearchStatus, time.Duration) {}
func (NopMetrics) DocumentIngested(domain.IngestOutcome) {}

var _ MetricsRecorder = NopMetrics{}
