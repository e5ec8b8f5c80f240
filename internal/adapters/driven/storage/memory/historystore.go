package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/coursemate/internal/core/domain"
	"github.com/custodia-labs/coursemate/internal/core/ports/driven"
)

// Ensure HistoryStore implements the interface.
var _ driven.HistoryStore = (*HistoryStore)(nil)

// DefaultMaxExchanges is the number of exchanges kept per session.
const DefaultMaxExchanges = 2

// HistoryStore is an in-memory implementation of driven.HistoryStore.
type HistoryStore struct {
	mu           sync.RWMutex
	maxExchanges int
	sessions     map[string][]domain.Exchange
}

// NewHistoryStore creates a history store that keeps the last maxExchanges
// exchanges of each session. A non-positive value uses DefaultMaxExchanges.
func NewHistoryStore(maxExchanges int) *HistoryStore {
	if maxExchanges <= 0 {
		maxExchanges = DefaultMaxExchanges
	}
	return &HistoryStore{
		maxExchanges: maxExchanges,
		sessions:     make(map[string][]domain.Exchange),
	}
}

// GetHistory returns the formatted history of a session.
func (s *HistoryStore) GetHistory(ctx context.Context, sessionID string) (string, error) {
	exchanges, err := s.Exchanges(ctx, sessionID)
	if err != nil {
		return "", err
	}
	return domain.FormatHistory(exchanges), nil
}

// Exchanges returns a copy of the session's exchanges.
func (s *HistoryStore) Exchanges(_ context.Context, sessionID string) ([]domain.Exchange, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Exchange(nil), s.sessions[sessionID]...), nil
}

// Append records an exchange, dropping the oldest beyond the limit.
func (s *HistoryStore) Append(_ context.Context, sessionID, question, answer string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	exchanges := append(s.sessions[sessionID], domain.Exchange{Question: question, Answer: answer})
	if over := len(exchanges) - s.maxExchanges; over > 0 {
		exchanges = append([]domain.Exchange(nil), exchanges[over:]...)
	}
	s.sessions[sessionID] = exchanges
	return nil
}

// Clear removes a session's history.
func (s *HistoryStore) Clear(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}

// Close releases resources.
func (s *HistoryStore) Close() error {
	return nil
}
