// Package cache provides the snapshot cache used for rendered share views.
// Two implementations exist: a process-local LRU with TTL and a Redis
// backed store for multi-instance deployments.
package cache

import "context"

// Store is the cache contract consumed by the HTTP layer.
type Store interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}
