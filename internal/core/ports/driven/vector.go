package driven

import (
	"context"
	"encoding/json"
	"fmt"
)

// Collection names used by the dual index.
const (
	// CollectionCatalog holds one record per course, for name resolution.
	CollectionCatalog = "course_catalog"

	// CollectionContent holds one record per chunk, for content search.
	CollectionContent = "course_content"
)

// Metadata keys stored with vector records.
const (
	MetaCourseTitle  = "course_title"
	MetaLessonNumber = "lesson_number"
	MetaLessonLink   = "lesson_link"
	MetaChunkIndex   = "chunk_index"
	MetaInstructor   = "instructor"
	MetaCourseLink   = "course_link"
	MetaLessonCount  = "lesson_count"
	MetaLessonsJSON  = "lessons_json"
)

// VectorStore holds named collections of embedded records and answers
// nearest-neighbour queries over them, optionally restricted by metadata.
// Implementations must be safe for concurrent reads.
type VectorStore interface {
	// Upsert inserts or replaces records by ID.
	Upsert(ctx context.Context, collection string, records []VectorRecord) error

	// Query returns up to limit records closest to vector that match filter,
	// by descending similarity. Ties keep insertion order.
	Query(ctx context.Context, collection string, vector []float32, filter Filter, limit int) ([]VectorMatch, error)

	// Get returns the records with the given IDs. Missing IDs are skipped.
	Get(ctx context.Context, collection string, ids []string) ([]VectorRecord, error)

	// List returns every record matching filter in insertion order.
	List(ctx context.Context, collection string, filter Filter) ([]VectorRecord, error)

	// Count returns the number of records in the collection.
	Count(ctx context.Context, collection string) (int, error)

	// Delete removes records matching filter and returns how many were removed.
	// An empty filter removes nothing; use Drop to clear a collection.
	Delete(ctx context.Context, collection string, filter Filter) (int, error)

	// Drop removes every record of the collection.
	Drop(ctx context.Context, collection string) error

	// Close releases resources.
	Close() error
}

// VectorRecord is an embedded document with metadata.
type VectorRecord struct {
	ID       string
	Vector   []float32
	Document string
	Metadata map[string]any
}

// VectorMatch is a record with its similarity to the query vector.
type VectorMatch struct {
	Record VectorRecord

	// Score is the cosine similarity (higher is closer).
	Score float64
}

// Filter restricts records by metadata equality. All entries must match.
type Filter map[string]any

// Matches reports whether metadata satisfies every entry of the filter.
// Numeric values compare by value regardless of their Go type, since
// metadata that round-trips through JSON comes back as float64.
func (f Filter) Matches(metadata map[string]any) bool {
	for k, want := range f {
		got, ok := metadata[k]
		if !ok || !equalValues(want, got) {
			return false
		}
	}
	return true
}

func equalValues(a, b any) bool {
	if fa, ok := toFloat(a); ok {
		fb, ok := toFloat(b)
		return ok && fa == fb
	}
	return fmt.Sprint(a) == fmt.Sprint(b)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
