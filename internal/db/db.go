// Package db defines the narrow key-value store facade pipedex needs.
// Only budget counters live in the store; CRM record sets are never
// cached here.
package db

import (
	"context"
	"time"
)

// Store combines the sub-interfaces plus lifecycle operations.
type Store interface {
	Pinger
	KVStore
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// KVStore provides the counter operations used by the budget repository.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	IncrBy(ctx context.Context, key string, val int64) error
	Expire(ctx context.Context, key string, ttl time.Duration, nx bool) error
}
