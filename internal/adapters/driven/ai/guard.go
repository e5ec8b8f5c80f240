package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/coursemate/internal/core/ports/driven"
	"github.com/custodia-labs/coursemate/internal/logger"
)

// Circuit breaker tuning for remote AI providers.
const (
	breakerFailures = 5
	breakerInterval = 60 * time.Second
	breakerTimeout  = 30 * time.Second
)

// Guard paces calls to a remote provider and stops calling it after
// repeated failures until the breaker timeout elapses.
type Guard struct {
	name    string
	breaker *gobreaker.CircuitBreaker
	limiter *rate.Limiter
}

// NewGuard creates a guard. A non-positive rps disables pacing.
func NewGuard(name string, rps float64) *Guard {
	g := &Guard{name: name}
	if rps > 0 {
		g.limiter = rate.NewLimiter(rate.Limit(rps), max(1, int(rps)))
	}
	g.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    breakerInterval,
		Timeout:     breakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= breakerFailures
		},
		// Cancellation is the caller's doing, not the provider's.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Circuit breaker %s: %s -> %s", name, from, to)
		},
	})
	return g
}

// Do runs fn when the limiter and breaker allow it.
func (g *Guard) Do(ctx context.Context, fn func() error) error {
	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("%s: %w", g.name, err)
		}
	}
	_, err := g.breaker.Execute(func() (interface{}, error) {
		return nil, fn()
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%s temporarily unavailable: %w", g.name, err)
	}
	return err
}

// State returns the breaker state.
func (g *Guard) State() gobreaker.State {
	return g.breaker.State()
}

// guardedLLM routes completions through a guard.
type guardedLLM struct {
	driven.LLMService
	guard *Guard
}

// GuardLLM wraps an LLM service with pacing and a circuit breaker.
func GuardLLM(svc driven.LLMService, guard *Guard) driven.LLMService {
	return &guardedLLM{LLMService: svc, guard: guard}
}

func (g *guardedLLM) Complete(ctx context.Context, req driven.CompletionRequest) (*driven.Completion, error) {
	var out *driven.Completion
	err := g.guard.Do(ctx, func() error {
		var err error
		out, err = g.LLMService.Complete(ctx, req)
		return err
	})
	return out, err
}

// guardedEmbedder routes embedding requests through a guard.
type guardedEmbedder struct {
	driven.EmbeddingService
	guard *Guard
}

// GuardEmbedding wraps an embedding service with pacing and a circuit breaker.
func GuardEmbedding(svc driven.EmbeddingService, guard *Guard) driven.EmbeddingService {
	return &guardedEmbedder{EmbeddingService: svc, guard: guard}
}

func (g *guardedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	var out []float32
	err := g.guard.Do(ctx, func() error {
		var err error
		out, err = g.EmbeddingService.Embed(ctx, text)
		return err
	})
	return out, err
}

func (g *guardedEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	var out [][]float32
	err := g.guard.Do(ctx, func() error {
		var err error
		out, err = g.EmbeddingService.EmbedBatch(ctx, texts)
		return err
	})
	return out, err
}
