package gemini

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEmbeddingService_RequiresAPIKey(t *testing.T) {
	_, err := NewEmbeddingService(context.Background(), Config{})

	require.Error(t, err)
}

func TestBatches(t *testing.T) {
	texts := make([]string, 250)

	got := batches(texts, 100)

	require.Len(t, got, 3)
	assert.Len(t, got[0], 100)
	assert.Len(t, got[2], 50)
	assert.Empty(t, batches(nil, 100))
}
