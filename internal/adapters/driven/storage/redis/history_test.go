package redis

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/coursemate/internal/core/domain"
)

func TestClientOptions(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		wantAddr string
		wantDB   int
		wantErr  bool
	}{
		{name: "empty uses localhost", url: "", wantAddr: "localhost:6379"},
		{name: "host and port", url: "cache:6380", wantAddr: "cache:6380"},
		{name: "redis url", url: "redis://:secret@cache:6379/2", wantAddr: "cache:6379", wantDB: 2},
		{name: "bad url", url: "redis://cache:6379/notadb", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, err := clientOptions(tt.url)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantAddr, opts.Addr)
			assert.Equal(t, tt.wantDB, opts.DB)
		})
	}
}

func TestNewHistoryStore_Defaults(t *testing.T) {
	store := newHistoryStore(nil, Config{})

	assert.Equal(t, DefaultMaxExchanges, store.maxExchanges)
	assert.Equal(t, DefaultTTL, store.ttl)
	assert.Equal(t, "coursemate:history:abc", store.key("abc"))
}

func TestDecodeExchanges(t *testing.T) {
	got, err := decodeExchanges([]string{`{"q":"What is X?","a":"A framework."}`})
	require.NoError(t, err)
	assert.Equal(t, []domain.Exchange{{Question: "What is X?", Answer: "A framework."}}, got)

	_, err = decodeExchanges([]string{"not json"})
	assert.Error(t, err)
}

func TestHistoryStore_Integration(t *testing.T) {
	url := os.Getenv("COURSEMATE_TEST_REDIS_URL")
	if url == "" {
		t.Skip("COURSEMATE_TEST_REDIS_URL not set")
	}
	ctx := context.Background()
	store, err := NewHistoryStore(ctx, Config{
		URL:          url,
		MaxExchanges: 2,
		TTL:          time.Minute,
		KeyPrefix:    fmt.Sprintf("coursemate-test-%d:", time.Now().UnixNano()),
	})
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Append(ctx, "s1", "q1", "a1"))
	require.NoError(t, store.Append(ctx, "s1", "q2", "a2"))
	require.NoError(t, store.Append(ctx, "s1", "q3", "a3"))

	history, err := store.GetHistory(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "User: q2\nAssistant: a2\nUser: q3\nAssistant: a3", history)

	other, err := store.GetHistory(ctx, "s2")
	require.NoError(t, err)
	assert.Empty(t, other)

	require.NoError(t, store.Clear(ctx, "s1"))
	history, err = store.GetHistory(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, history)
}
