// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// document.go is the L2 cache for downloadable template documents. Keys
// carry the template's update time, so a re-saved template never serves a
// stale document and old entries simply expire.
package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	docKeyPrefix = "doc:"

	// DefaultDocumentTTL is how long a rendered document stays cached.
	DefaultDocumentTTL = 10 * time.Minute
)

// DocumentCache stores rendered template documents in Valkey.
type DocumentCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewDocumentCache creates a document cache backed by the given client.
func NewDocumentCache(client *redis.Client, ttl time.Duration) *DocumentCache {
	if ttl == 0 {
		ttl = DefaultDocumentTTL
	}
	return &DocumentCache{client: client, ttl: ttl}
}

// DocumentKey returns the cache key for a template version.
func DocumentKey(templateID string, updatedAt time.Time) string {
	return fmt.Sprintf("%s@%d", templateID, updatedAt.UnixNano())
}

// Get retrieves a cached document. Errors count as a miss.
func (dc *DocumentCache) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := dc.client.Get(ctx, docKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		slog.Warn("document cache get error", "key", key, "error", err)
		return nil, false
	}
	slog.Debug("document cache hit", "key", key)
	return val, true
}

// Set stores a rendered document with the configured TTL.
func (dc *DocumentCache) Set(ctx context.Context, key string, doc []byte) {
	if err := dc.client.Set(ctx, docKeyPrefix+key, doc, dc.ttl).Err(); err != nil {
		slog.Warn("document cache set error", "key", key, "error", err)
	}
}

// InvalidateAll removes every cached document by scanning for the prefix.
func (dc *DocumentCache) InvalidateAll(ctx context.Context) {
	var cursor uint64
	var deleted int
	for {
		keys, next, err := dc.client.Scan(ctx, cursor, docKeyPrefix+"*", 100).Result()
		if err != nil {
			slog.Warn("document cache scan error", "error", err)
			return
		}
		if len(keys) > 0 {
			if err := dc.client.Del(ctx, keys...).Err(); err != nil {
				slog.Warn("document cache bulk delete error", "error", err)
			}
			deleted += len(keys)
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	if deleted > 0 {
		slog.Info("document cache cleared", "deleted", deleted)
	}
}
