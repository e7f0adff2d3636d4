// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package mongostore keeps saved templates in MongoDB. Documents use
// ObjectID keys and camelCase fields, the layout of the legacy templates
// collection, so existing data is served unchanged.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// ErrFailedToConnect is returned when every connection attempt failed.
var ErrFailedToConnect = errors.New("failed to connect to mongo")

// Config holds MongoDB connection settings.
type Config struct {
	URL           string
	RetryAttempts int
	RetryInterval time.Duration
	Timeout       time.Duration
}

// Connect opens a client and verifies it with a ping, retrying while the
// server comes up.
func Connect(ctx context.Context, cfg Config) (*mongo.Client, error) {
	attempts := max(cfg.RetryAttempts, 1)
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 5 * time.Second
	}

	var lastErr error
	for i := range attempts {
		client, err := mongo.Connect(options.Client().
			ApplyURI(cfg.URL).
			SetConnectTimeout(timeout).
			SetServerSelectionTimeout(timeout))
		if err == nil {
			pingCtx, cancel := context.WithTimeout(ctx, timeout)
			err = client.Ping(pingCtx, nil)
			cancel()
			if err == nil {
				slog.Info("mongo connected")
				return client, nil
			}
			_ = client.Disconnect(context.Background())
		}
		lastErr = err

		if i < attempts-1 {
			select {
			case <-ctx.Done():
				return nil, errors.Join(ErrFailedToConnect, ctx.Err())
			case <-time.After(cfg.RetryInterval):
			}
		}
	}
	return nil, fmt.Errorf("%w: %w", ErrFailedToConnect, lastErr)
}

// Healthcheck returns a ping function for health endpoints.
func Healthcheck(client *mongo.Client) func(context.Context) error {
	return func(ctx context.Context) error {
		return client.Ping(ctx, nil)
	}
}
