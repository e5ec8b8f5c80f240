// Package local provides an offline embedding service that hashes character
// n-grams and words into a fixed-size vector.
//
// It needs no model download or network access, which makes ingestion and
// search work out of the box and keeps tests deterministic. Similarity is
// lexical rather than semantic: misspellings such as "into to x" still land
// near "Intro to X", but synonyms do not.
package local

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"unicode"

	"github.com/custodia-labs/coursemate/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// Default configuration values.
const (
	DefaultModel      = "ngram-hash-256"
	DefaultDimensions = 256
	DefaultNGram      = 3
	wordWeight        = 0.5
)

// Config holds configuration for the local embedding service.
type Config struct {
	// Dimensions is the vector size (default: 256).
	Dimensions int

	// NGram is the character n-gram length (default: 3).
	NGram int
}

// EmbeddingService embeds text by feature hashing.
type EmbeddingService struct {
	dimensions int
	ngram      int
}

// NewEmbeddingService creates a new local embedding service.
func NewEmbeddingService(cfg Config) *EmbeddingService {
	if cfg.Dimensions <= 0 {
		cfg.Dimensions = DefaultDimensions
	}
	if cfg.NGram <= 0 {
		cfg.NGram = DefaultNGram
	}
	return &EmbeddingService{dimensions: cfg.Dimensions, ngram: cfg.NGram}
}

// Embed generates a unit-length vector for the text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.embed(text), nil
}

// EmbedBatch embeds each text in order.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out[i] = s.embed(t)
	}
	return out, nil
}

// Dimensions returns the embedding vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

// ModelName returns the name of the embedding model.
func (s *EmbeddingService) ModelName() string {
	if s.dimensions == DefaultDimensions && s.ngram == DefaultNGram {
		return DefaultModel
	}
	return "ngram-hash"
}

// Ping always succeeds.
func (s *EmbeddingService) Ping(_ context.Context) error {
	return nil
}

// Close releases resources.
func (s *EmbeddingService) Close() error {
	return nil
}

func (s *EmbeddingService) embed(text string) []float32 {
	vec := make([]float64, s.dimensions)
	words := tokenize(text)

	for _, w := range words {
		s.add(vec, "w:"+w, wordWeight)

		padded := []rune(" " + w + " ")
		if len(padded) <= s.ngram {
			s.add(vec, string(padded), 1)
			continue
		}
		for i := 0; i+s.ngram <= len(padded); i++ {
			s.add(vec, string(padded[i:i+s.ngram]), 1)
		}
	}

	var norm float64
	for _, v := range vec {
		norm += v * v
	}
	out := make([]float32, s.dimensions)
	if norm == 0 {
		return out
	}
	norm = math.Sqrt(norm)
	for i, v := range vec {
		out[i] = float32(v / norm)
	}
	return out
}

// add hashes a feature into a bucket. The sign comes from a separate bit so
// that collisions tend to cancel rather than accumulate.
func (s *EmbeddingService) add(vec []float64, feature string, weight float64) {
	h := fnv.New64a()
	_, _ = h.Write([]byte(feature))
	sum := h.Sum64()
	bucket := int(sum % uint64(s.dimensions))
	if sum&(1<<63) != 0 {
		weight = -weight
	}
	vec[bucket] += weight
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
