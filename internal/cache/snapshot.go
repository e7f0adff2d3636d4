package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"mailcanvas/internal/models"
)

const (
	snapshotKeyPrefix = "canvas:"

	// DefaultSnapshotTTL keeps an abandoned editor resumable for a week.
	DefaultSnapshotTTL = 7 * 24 * time.Hour
)

// SnapshotCache mirrors the latest canvas snapshot of each editor session.
// Every write refreshes the TTL.
type SnapshotCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSnapshotCache creates a snapshot mirror backed by the given client.
func NewSnapshotCache(client *redis.Client, ttl time.Duration) *SnapshotCache {
	if ttl == 0 {
		ttl = DefaultSnapshotTTL
	}
	return &SnapshotCache{client: client, ttl: ttl}
}

// PublishSnapshot stores snap as the session's latest state.
func (sc *SnapshotCache) PublishSnapshot(ctx context.Context, sessionID string, snap models.CanvasSnapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := sc.client.Set(ctx, snapshotKeyPrefix+sessionID, data, sc.ttl).Err(); err != nil {
		return fmt.Errorf("store snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot returns the mirrored snapshot, or nil if there is none.
func (sc *SnapshotCache) LoadSnapshot(ctx context.Context, sessionID string) (*models.CanvasSnapshot, error) {
	data, err := sc.client.Get(ctx, snapshotKeyPrefix+sessionID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	var snap models.CanvasSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &snap, nil
}

// DeleteSnapshot drops the session's mirror.
func (sc *SnapshotCache) DeleteSnapshot(ctx context.Context, sessionID string) error {
	if err := sc.client.Del(ctx, snapshotKeyPrefix+sessionID).Err(); err != nil {
		return fmt.Errorf("delete snapshot: %w", err)
	}
	return nil
}
