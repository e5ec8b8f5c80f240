package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/coursemate/internal/core/ports/driven"
)

func TestLiteralRoundTrip(t *testing.T) {
	v := []float32{1, -0.5, 0.25, 3.1415927}

	literal := ToLiteral(v)
	assert.Equal(t, "[1,-0.5,0.25,3.1415927]", literal)

	parsed, err := ParseLiteral(literal)
	require.NoError(t, err)
	assert.Equal(t, v, parsed)
}

func TestParseLiteral_Invalid(t *testing.T) {
	tests := []string{"", "1,2", "[1,x]", "[1,2"}
	for _, in := range tests {
		t.Run(in, func(t *testing.T) {
			_, err := ParseLiteral(in)
			assert.Error(t, err)
		})
	}

	empty, err := ParseLiteral("[]")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestFilterJSON(t *testing.T) {
	got, err := filterJSON(nil)
	require.NoError(t, err)
	assert.Equal(t, "{}", got)

	got, err = filterJSON(driven.Filter{"course_title": "Intro to X", "lesson_number": 2})
	require.NoError(t, err)
	assert.JSONEq(t, `{"course_title":"Intro to X","lesson_number":2}`, got)
}

// newIntegrationStore connects to the database named by
// COURSEMATE_TEST_POSTGRES_URL, skipping the test when it is unset.
func newIntegrationStore(t *testing.T) *VectorStore {
	t.Helper()
	dsn := os.Getenv("COURSEMATE_TEST_POSTGRES_URL")
	if dsn == "" {
		t.Skip("COURSEMATE_TEST_POSTGRES_URL not set")
	}
	store, err := NewVectorStore(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = store.Drop(context.Background(), "test_content")
		_ = store.Close()
	})
	return store
}

func TestVectorStore_Integration(t *testing.T) {
	store := newIntegrationStore(t)
	ctx := context.Background()
	require.NoError(t, store.Drop(ctx, "test_content"))

	records := []driven.VectorRecord{
		{ID: "a", Vector: []float32{1, 0}, Document: "A", Metadata: map[string]any{"course_title": "X", "lesson_number": 1}},
		{ID: "b", Vector: []float32{0, 1}, Document: "B", Metadata: map[string]any{"course_title": "X", "lesson_number": 2}},
		{ID: "c", Vector: []float32{1, 0}, Document: "C", Metadata: map[string]any{"course_title": "Y", "lesson_number": 1}},
	}
	require.NoError(t, store.Upsert(ctx, "test_content", records))

	matches, err := store.Query(ctx, "test_content", []float32{1, 0}, nil, 2)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "a", matches[0].Record.ID)
	assert.Equal(t, "c", matches[1].Record.ID)
	assert.InDelta(t, 1.0, matches[0].Score, 1e-6)

	matches, err = store.Query(ctx, "test_content", []float32{1, 0}, driven.Filter{"course_title": "X", "lesson_number": 2}, 5)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "b", matches[0].Record.ID)

	got, err := store.Get(ctx, "test_content", []string{"c", "missing", "a"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "c", got[0].ID)

	removed, err := store.Delete(ctx, "test_content", driven.Filter{"course_title": "X"})
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	count, err := store.Count(ctx, "test_content")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
