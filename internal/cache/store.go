package cache

import (
	"context"
	"time"
)

// Backend names reported in Stats.
const (
	BackendRedis    = "redis"
	BackendDatabase = "database"
)

// Store is the key-value interface shared by the Redis client and the database fallback.
type Store interface {
	IncrementWithTTL(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Delete(ctx context.Context, keys ...string) error
	Stats(ctx context.Context) (Stats, error)
	Ping(ctx context.Context) error
}

// Stats is a point-in-time snapshot of store counters.
type Stats struct {
	Backend          string
	ConnectedClients int64
	UsedMemoryHuman  string
	KeyspaceHits     int64
	KeyspaceMisses   int64
}

// HitRate returns hits / (hits + misses), guarding against an empty denominator.
// The result is always within [0, 1].
func (s Stats) HitRate() float64 {
	hits, misses := s.KeyspaceHits, s.KeyspaceMisses
	if hits < 0 {
		hits = 0
	}
	if misses < 0 {
		misses = 0
	}
	denom := hits + misses
	if denom < 1 {
		denom = 1
	}
	return float64(hits) / float64(denom)
}
