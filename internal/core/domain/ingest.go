package domain

// IngestOptions controls how documents are added to the index.
type IngestOptions struct {
	// Force replaces a course whose title is already indexed.
	Force bool
}

// IngestOutcome is the result of ingesting one document.
type IngestOutcome string

// Ingest outcomes.
const (
	IngestAdded    IngestOutcome = "added"
	IngestReplaced IngestOutcome = "replaced"
	IngestSkipped  IngestOutcome = "skipped"
	IngestFailed   IngestOutcome = "failed"
)

// IngestResult records what happened to a single document.
type IngestResult struct {
	URI         string        `json:"uri"`
	CourseTitle string        `json:"course_title,omitempty"`
	Outcome     IngestOutcome `json:"outcome"`
	Chunks      int           `json:"chunks"`
	Err         error         `json:"-"`
}

// IngestReport summarises a batch. A failed document never aborts the batch.
type IngestReport struct {
	Results []IngestResult `json:"results"`
}

// Add appends a result to the report.
func (r *IngestReport) Add(res IngestResult) {
	r.Results = append(r.Results, res)
}

// Count returns the number of results with the given outcome.
func (r *IngestReport) Count(outcome IngestOutcome) int {
	n := 0
	for _, res := range r.Results {
		if res.Outcome == outcome {
			n++
		}
	}
	return n
}

// Chunks returns the total number of chunks written.
func (r *IngestReport) Chunks() int {
	n := 0
	for _, res := range r.Results {
		n += res.Chunks
	}
	return n
}

// Failures returns the results that failed.
func (r *IngestReport) Failures() []IngestResult {
	var out []IngestResult
	for _, res := range r.Results {
		if res.Outcome == IngestFailed {
			out = append(out, res)
		}
	}
	return out
}
