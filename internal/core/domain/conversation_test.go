package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatHistory(t *testing.T) {
	assert.Equal(t, "", FormatHistory(nil))

	got := FormatHistory([]Exchange{
		{Question: "What is X?", Answer: "X is a thing."},
		{Question: "And Y?", Answer: "Y too."},
	})
	assert.Equal(t, "User: What is X?\nAssistant: X is a thing.\nUser: And Y?\nAssistant: Y too.", got)
}

func TestQueryResponse_Helpers(t *testing.T) {
	resp := &QueryResponse{
		Sources: []Source{{Label: "A – Lesson 1"}, {Label: "B"}},
		Trace:   []QueryState{StateAwaitingModel, StateDone},
	}

	assert.Equal(t, []string{"A – Lesson 1", "B"}, resp.SourceLabels())
	assert.True(t, resp.Visited(StateDone))
	assert.False(t, resp.Visited(StateToolExecuted))
}

func TestIngestReport(t *testing.T) {
	var r IngestReport
	r.Add(IngestResult{URI: "a.txt", Outcome: IngestAdded, Chunks: 3})
	r.Add(IngestResult{URI: "b.txt", Outcome: IngestSkipped})
	r.Add(IngestResult{URI: "c.txt", Outcome: IngestFailed, Err: ErrMalformedDocument})
	r.Add(IngestResult{URI: "d.txt", Outcome: IngestAdded, Chunks: 2})

	assert.Equal(t, 2, r.Count(IngestAdded))
	assert.Equal(t, 1, r.Count(IngestSkipped))
	assert.Equal(t, 5, r.Chunks())
	failures := r.Failures()
	assert.Len(t, failures, 1)
	assert.Equal(t, "c.txt", failures[0].URI)
}
