package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/coursemate/internal/adapters/driven/storage/vectors"
	"github.com/custodia-labs/coursemate/internal/core/ports/driven"
)

// Ensure VectorStore implements the interface.
var _ driven.VectorStore = (*VectorStore)(nil)

// collection keeps records in insertion order with an ID index.
type collection struct {
	records []driven.VectorRecord
	index   map[string]int
}

func newCollection() *collection {
	return &collection{index: make(map[string]int)}
}

func (c *collection) rebuildIndex() {
	c.index = make(map[string]int, len(c.records))
	for i, r := range c.records {
		c.index[r.ID] = i
	}
}

// VectorStore is an in-memory implementation of driven.VectorStore.
// Queries scan every record of the collection.
type VectorStore struct {
	mu          sync.RWMutex
	collections map[string]*collection
}

// NewVectorStore creates a new in-memory vector store.
func NewVectorStore() *VectorStore {
	return &VectorStore{
		collections: make(map[string]*collection),
	}
}

// Upsert inserts or replaces records. A replaced record keeps its original position.
func (s *VectorStore) Upsert(_ context.Context, name string, records []driven.VectorRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.collections[name]
	if !ok {
		c = newCollection()
		s.collections[name] = c
	}
	for _, r := range records {
		r = copyRecord(r)
		if i, exists := c.index[r.ID]; exists {
			c.records[i] = r
			continue
		}
		c.index[r.ID] = len(c.records)
		c.records = append(c.records, r)
	}
	return nil
}

// Query returns the closest matching records by cosine similarity.
func (s *VectorStore) Query(
	_ context.Context, name string, vector []float32, filter driven.Filter, limit int,
) ([]driven.VectorMatch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.collections[name]
	if !ok || limit <= 0 {
		return nil, nil
	}

	matches := make([]driven.VectorMatch, 0, len(c.records))
	for _, r := range c.records {
		if !filter.Matches(r.Metadata) {
			continue
		}
		score, err := vectors.Cosine(vector, r.Vector)
		if err != nil {
			return nil, fmt.Errorf("record %s: %w", r.ID, err)
		}
		matches = append(matches, driven.VectorMatch{Record: copyRecord(r), Score: score})
	}
	return vectors.TopK(matches, limit), nil
}

// Get returns the records with the given IDs.
func (s *VectorStore) Get(_ context.Context, name string, ids []string) ([]driven.VectorRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.collections[name]
	if !ok {
		return nil, nil
	}
	var out []driven.VectorRecord
	for _, id := range ids {
		if i, exists := c.index[id]; exists {
			out = append(out, copyRecord(c.records[i]))
		}
	}
	return out, nil
}

// List returns every matching record in insertion order.
func (s *VectorStore) List(_ context.Context, name string, filter driven.Filter) ([]driven.VectorRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.collections[name]
	if !ok {
		return nil, nil
	}
	var out []driven.VectorRecord
	for _, r := range c.records {
		if filter.Matches(r.Metadata) {
			out = append(out, copyRecord(r))
		}
	}
	return out, nil
}

// Count returns the number of records in the collection.
func (s *VectorStore) Count(_ context.Context, name string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.collections[name]
	if !ok {
		return 0, nil
	}
	return len(c.records), nil
}

// Delete removes matching records. An empty filter removes nothing.
func (s *VectorStore) Delete(_ context.Context, name string, filter driven.Filter) (int, error) {
	if len(filter) == 0 {
		return 0, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.collections[name]
	if !ok {
		return 0, nil
	}
	kept := c.records[:0]
	removed := 0
	for _, r := range c.records {
		if filter.Matches(r.Metadata) {
			removed++
			continue
		}
		kept = append(kept, r)
	}
	c.records = kept
	c.rebuildIndex()
	return removed, nil
}

// Drop removes the collection.
func (s *VectorStore) Drop(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.collections, name)
	return nil
}

// Close releases resources.
func (s *VectorStore) Close() error {
	return nil
}

func copyRecord(r driven.VectorRecord) driven.VectorRecord {
	out := r
	out.Vector = append([]float32(nil), r.Vector...)
	if r.Metadata != nil {
		out.Metadata = make(map[string]any, len(r.Metadata))
		for k, v := range r.Metadata {
			out.Metadata[k] = v
		}
	}
	return out
}
