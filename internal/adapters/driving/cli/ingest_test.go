package cli

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/coursemate/internal/core/domain"
)

func TestIngestCmd_NoArgs(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := executeCommand("ingest")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nothing to ingest")
}

func TestIngestCmd_WatchNeedsPath(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := executeCommand("ingest", "--watch", "--github", "owner/repo")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--watch needs at least one path")
}

func TestIngestCmd_ServiceNotConfigured(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	ingestService = nil

	_, err := executeCommand("ingest", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ingest service not configured")
}

func TestIngestCmd_Paths(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	first, second := t.TempDir(), t.TempDir()
	_, err := executeCommand("ingest", first, second)
	require.NoError(t, err)

	assert.Equal(t, []string{"filesystem:" + first, "filesystem:" + second}, ts.ingest.sources)
	assert.False(t, ts.ingest.opts.Force)
}

func TestIngestCmd_Force(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	_, err := executeCommand("ingest", "--force", t.TempDir())
	require.NoError(t, err)
	assert.True(t, ts.ingest.opts.Force)
}

func TestIngestCmd_EmptyReport(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	output, err := executeCommand("ingest", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, output, "No course documents found.")
}

func TestIngestCmd_PrintsReport(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	ts.ingest.report = &domain.IngestReport{Results: []domain.IngestResult{
		{URI: "a.txt", CourseTitle: "Intro to MCP", Outcome: domain.IngestAdded, Chunks: 4},
		{URI: "b.txt", CourseTitle: "Advanced RAG", Outcome: domain.IngestReplaced, Chunks: 6},
		{URI: "c.txt", CourseTitle: "Prompting", Outcome: domain.IngestSkipped},
		{URI: "d.pdf", Outcome: domain.IngestFailed, Err: errors.New("unreadable")},
	}}

	output, err := executeCommand("ingest", t.TempDir())
	require.NoError(t, err)

	assert.Contains(t, output, "added     Intro to MCP (4 chunks)")
	assert.Contains(t, output, "replaced  Advanced RAG (6 chunks)")
	assert.Contains(t, output, "skipped   Prompting (already indexed)")
	assert.Contains(t, output, "failed    d.pdf: unreadable")
	assert.Contains(t, output, "Added 1, replaced 1, skipped 1, failed 1 (10 chunks)")
}

func TestIngestCmd_AllFailed(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	ts.ingest.report = &domain.IngestReport{Results: []domain.IngestResult{
		{URI: "d.pdf", Outcome: domain.IngestFailed, Err: errors.New("unreadable")},
	}}

	_, err := executeCommand("ingest", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "every document failed to ingest")
}

func TestIngestCmd_SourceError(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	dir := t.TempDir()
	ts.ingest.err = errors.New("root not found")

	_, err := executeCommand("ingest", dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ingest "+dir)
	assert.Contains(t, err.Error(), "root not found")
}

func TestIngestCmd_InvalidGitHubSpec(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	_, err := executeCommand("ingest", "--github", "not-a-repo")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "owner/repo")
	assert.Empty(t, ts.ingest.sources)
}

func TestIngestCmd_Flags(t *testing.T) {
	for _, name := range []string{"force", "watch", "github"} {
		assert.NotNil(t, ingestCmd.Flags().Lookup(name), name)
	}
	assert.Equal(t, "f", ingestCmd.Flags().Lookup("force").Shorthand)
	assert.Equal(t, "w", ingestCmd.Flags().Lookup("watch").Shorthand)
}
