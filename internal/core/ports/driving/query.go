package driving

import (
	"context"

	"github.com/custodia-labs/coursemate/internal/core/domain"
)

// QueryService answers questions by letting the model decide whether to search.
type QueryService interface {
	// Query runs the tool-calling loop for one question.
	// A model failure still yields a response with Failed set; the error
	// return is reserved for invalid input.
	Query(ctx context.Context, question, sessionID string) (*domain.QueryResponse, error)
}
