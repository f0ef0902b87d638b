package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	popularSearchesKey    = "search:popular"
	autocompleteKeyPrefix = "search:autocomplete:"
)

// SearchLog records executed search terms and serves aggregated popular
// searches plus cached autocomplete results. Backed by Redis; every
// operation is best-effort from the caller's point of view.
type SearchLog interface {
	RecordSearch(ctx context.Context, term string) error
	Popular(ctx context.Context, limit int) ([]string, error)
	CachedAutocomplete(ctx context.Context, prefix string) ([]string, bool)
	CacheAutocomplete(ctx context.Context, prefix string, suggestions []string, ttl time.Duration) error
}

type redisSearchLog struct {
	client *redis.Client
}

// NewSearchLog creates a Redis-backed SearchLog.
func NewSearchLog(client *redis.Client) SearchLog {
	return &redisSearchLog{client: client}
}

// RecordSearch increments the popularity counter for a normalized term.
func (l *redisSearchLog) RecordSearch(ctx context.Context, term string) error {
	term = strings.TrimSpace(strings.ToLower(term))
	if term == "" {
		return nil
	}
	if err := l.client.ZIncrBy(ctx, popularSearchesKey, 1, term).Err(); err != nil {
		return fmt.Errorf("failed to record search term: %w", err)
	}
	return nil
}

// Popular returns the most-searched terms, highest count first.
func (l *redisSearchLog) Popular(ctx context.Context, limit int) ([]string, error) {
	if limit < 1 {
		limit = 10
	}
	terms, err := l.client.ZRevRange(ctx, popularSearchesKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch popular searches: %w", err)
	}
	return terms, nil
}

// CachedAutocomplete returns previously cached suggestions for a prefix.
// A miss (or any Redis error) reports ok = false.
func (l *redisSearchLog) CachedAutocomplete(ctx context.Context, prefix string) ([]string, bool) {
	raw, err := l.client.Get(ctx, autocompleteKeyPrefix+prefix).Result()
	if err != nil {
		return nil, false
	}
	var suggestions []string
	if err := json.Unmarshal([]byte(raw), &suggestions); err != nil {
		return nil, false
	}
	return suggestions, true
}

// CacheAutocomplete stores suggestions for a prefix with a TTL.
func (l *redisSearchLog) CacheAutocomplete(ctx context.Context, prefix string, suggestions []string, ttl time.Duration) error {
	raw, err := json.Marshal(suggestions)
	if err != nil {
		return fmt.Errorf("failed to marshal autocomplete cache entry: %w", err)
	}
	if err := l.client.Set(ctx, autocompleteKeyPrefix+prefix, raw, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache autocomplete entry: %w", err)
	}
	return nil
}
