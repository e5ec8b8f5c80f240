package driven

import (
	"context"

	"github.com/custodia-labs/coursemate/internal/core/domain"
)

// HistoryStore keeps per-session conversation history.
// Sessions are isolated from each other. Implementations keep at most
// their configured number of exchanges per session, dropping the oldest.
type HistoryStore interface {
	// GetHistory returns the session's history formatted as
	// "User: ...\nAssistant: ..." lines, oldest first. Unknown sessions
	// return an empty string.
	GetHistory(ctx context.Context, sessionID string) (string, error)

	// Exchanges returns the raw exchanges of a session, oldest first.
	Exchanges(ctx context.Context, sessionID string) ([]domain.Exchange, error)

	// Append records a completed exchange.
	Append(ctx context.Context, sessionID, question, answer string) error

	// Clear removes a session's history.
	Clear(ctx context.Context, sessionID string) error

	// Close releases resources.
	Close() error
}
