// Package cache holds the Valkey (Redis-compatible) client and the two
// caches built on it: rendered download documents and editor snapshots.
package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrValkeyUnavailable is returned when no ping succeeded within the
// configured attempts.
var ErrValkeyUnavailable = errors.New("valkey unavailable")

// ValkeyConfig locates the Valkey server. Zero retry values mean a single
// attempt.
type ValkeyConfig struct {
	Host          string
	Port          string
	Password      string
	DB            int
	RetryAttempts int
	RetryInterval time.Duration
}

const valkeyPingTimeout = 5 * time.Second

// ConnectValkey creates a Valkey client and pings it until it answers or the
// attempts run out.
func ConnectValkey(ctx context.Context, cfg ValkeyConfig) (*redis.Client, error) {
	addr := net.JoinHostPort(cfg.Host, cfg.Port)
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  valkeyPingTimeout,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	attempts := max(cfg.RetryAttempts, 1)
	var err error
	for i := range attempts {
		pingCtx, cancel := context.WithTimeout(ctx, valkeyPingTimeout)
		err = client.Ping(pingCtx).Err()
		cancel()
		if err == nil {
			slog.Info("valkey connected", "addr", addr, "db", cfg.DB, "attempt", i+1)
			return client, nil
		}
		if i == attempts-1 {
			break
		}

		slog.Warn("valkey not ready, retrying", "addr", addr, "attempt", i+1, "error", err)
		select {
		case <-ctx.Done():
			_ = client.Close()
			return nil, fmt.Errorf("%w: %w", ErrValkeyUnavailable, ctx.Err())
		case <-time.After(cfg.RetryInterval):
		}
	}

	_ = client.Close()
	return nil, fmt.Errorf("%w: %s: %w", ErrValkeyUnavailable, addr, err)
}

// Healthcheck returns a ping function for health endpoints.
func Healthcheck(client *redis.Client) func(context.Context) error {
	return func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}
}
