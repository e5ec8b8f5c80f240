// Package redis provides a Redis-backed implementation of driven.HistoryStore,
// for sharing conversation history between several coursemate processes.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/custodia-labs/coursemate/internal/core/domain"
	"github.com/custodia-labs/coursemate/internal/core/ports/driven"
)

// Ensure HistoryStore implements the interface.
var _ driven.HistoryStore = (*HistoryStore)(nil)

// Default configuration values.
const (
	DefaultMaxExchanges = 2
	DefaultTTL          = 24 * time.Hour
	DefaultKeyPrefix    = "coursemate:history:"
)

// Config holds configuration for the Redis history store.
type Config struct {
	// URL is either a redis:// URL or a host:port address.
	URL string

	// MaxExchanges bounds each session's history (default: 2).
	MaxExchanges int

	// TTL expires idle sessions (default: 24h).
	TTL time.Duration

	// KeyPrefix namespaces session keys (default: coursemate:history:).
	KeyPrefix string
}

// HistoryStore keeps each session as a Redis list of JSON-encoded exchanges.
type HistoryStore struct {
	client       *redis.Client
	maxExchanges int
	ttl          time.Duration
	prefix       string
}

// NewHistoryStore connects to Redis and verifies the connection.
func NewHistoryStore(ctx context.Context, cfg Config) (*HistoryStore, error) {
	opts, err := clientOptions(cfg.URL)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return newHistoryStore(client, cfg), nil
}

func newHistoryStore(client *redis.Client, cfg Config) *HistoryStore {
	if cfg.MaxExchanges <= 0 {
		cfg.MaxExchanges = DefaultMaxExchanges
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = DefaultKeyPrefix
	}
	return &HistoryStore{
		client:       client,
		maxExchanges: cfg.MaxExchanges,
		ttl:          cfg.TTL,
		prefix:       cfg.KeyPrefix,
	}
}

// clientOptions accepts both redis:// URLs and bare host:port addresses.
func clientOptions(url string) (*redis.Options, error) {
	if url == "" {
		return &redis.Options{Addr: "localhost:6379"}, nil
	}
	if strings.HasPrefix(url, "redis://") || strings.HasPrefix(url, "rediss://") {
		opts, err := redis.ParseURL(url)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		return opts, nil
	}
	return &redis.Options{Addr: url}, nil
}

func (s *HistoryStore) key(sessionID string) string {
	return s.prefix + sessionID
}

// GetHistory returns the formatted history of a session.
func (s *HistoryStore) GetHistory(ctx context.Context, sessionID string) (string, error) {
	exchanges, err := s.Exchanges(ctx, sessionID)
	if err != nil {
		return "", err
	}
	return domain.FormatHistory(exchanges), nil
}

// Exchanges returns the session's exchanges, oldest first.
func (s *HistoryStore) Exchanges(ctx context.Context, sessionID string) ([]domain.Exchange, error) {
	items, err := s.client.LRange(ctx, s.key(sessionID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	return decodeExchanges(items)
}

// Append records an exchange, dropping the oldest beyond the limit, and
// refreshes the session's expiry.
func (s *HistoryStore) Append(ctx context.Context, sessionID, question, answer string) error {
	item, err := json.Marshal(exchangeJSON{Question: question, Answer: answer})
	if err != nil {
		return fmt.Errorf("encode exchange: %w", err)
	}

	key := s.key(sessionID)
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, key, item)
		pipe.LTrim(ctx, key, int64(-s.maxExchanges), -1)
		pipe.Expire(ctx, key, s.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("append history: %w", err)
	}
	return nil
}

// Clear removes a session's history.
func (s *HistoryStore) Clear(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, s.key(sessionID)).Err(); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	return nil
}

// Close closes the Redis client.
func (s *HistoryStore) Close() error {
	return s.client.Close()
}

type exchangeJSON struct {
	Question string `json:"q"`
	Answer   string `json:"a"`
}

func decodeExchanges(items []string) ([]domain.Exchange, error) {
	out := make([]domain.Exchange, 0, len(items))
	for _, item := range items {
		var e exchangeJSON
		if err := json.Unmarshal([]byte(item), &e); err != nil {
			return nil, fmt.Errorf("decode exchange: %w", err)
		}
		out = append(out, domain.Exchange{Question: e.Question, Answer: e.Answer})
	}
	return out, nil
}
