package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/charlesng35/aidemo/internal/cache"
	"github.com/charlesng35/aidemo/internal/cache/cachetest"
)

func newTestRedis(t *testing.T, cfg cache.RedisConfig, opts ...cachetest.Option) (*cache.RedisClient, *cachetest.FakeRedis) {
	t.Helper()

	server := cachetest.NewFakeRedis(t, opts...)
	cfg.Address = server.Addr()
	client, err := cache.NewRedisClient(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client, server
}

func TestNewRedisClientRequiresAddress(t *testing.T) {
	_, err := cache.NewRedisClient(cache.RedisConfig{Address: "  "})
	require.Error(t, err)
}

func TestRedisClientSetGetDelete(t *testing.T) {
	client, server := newTestRedis(t, cache.RedisConfig{KeyPrefix: "aidemo:"})
	ctx := context.Background()

	require.NoError(t, client.Ping(ctx))

	_, ok, err := client.Get(ctx, "prediction:abc")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, client.Set(ctx, "prediction:abc", []byte(`{"label":"POSITIVE","score":0.99}`), time.Hour))
	require.Equal(t, []string{"aidemo:prediction:abc"}, server.Keys())
	require.InDelta(t, time.Hour.Seconds(), server.TTL("aidemo:prediction:abc").Seconds(), 5)

	value, ok, err := client.Get(ctx, "prediction:abc")
	require.NoError(t, err)
	require.True(t, ok)
	require.JSONEq(t, `{"label":"POSITIVE","score":0.99}`, string(value))

	require.NoError(t, client.Delete(ctx, "prediction:abc", "missing"))
	require.Empty(t, server.Keys())
}

func TestRedisClientSetWithoutTTL(t *testing.T) {
	client, server := newTestRedis(t, cache.RedisConfig{})

	require.NoError(t, client.Set(context.Background(), "plain", []byte("v"), 0))
	require.Zero(t, server.TTL("plain"))
}

func TestRedisClientStats(t *testing.T) {
	client, _ := newTestRedis(t, cache.RedisConfig{})
	ctx := context.Background()

	require.NoError(t, client.Set(ctx, "k", []byte("v"), time.Minute))
	_, _, err := client.Get(ctx, "k")
	require.NoError(t, err)
	_, _, err = client.Get(ctx, "absent")
	require.NoError(t, err)
	_, _, err = client.Get(ctx, "k")
	require.NoError(t, err)

	stats, err := client.Stats(ctx)
	require.NoError(t, err)
	require.Equal(t, cache.BackendRedis, stats.Backend)
	require.Equal(t, int64(1), stats.ConnectedClients)
	require.Equal(t, "1.00M", stats.UsedMemoryHuman)
	require.Equal(t, int64(2), stats.KeyspaceHits)
	require.Equal(t, int64(1), stats.KeyspaceMisses)
	require.InDelta(t, 2.0/3.0, stats.HitRate(), 1e-9)
}

func TestRedisClientIncrementWithTTL(t *testing.T) {
	client, server := newTestRedis(t, cache.RedisConfig{KeyPrefix: "rl:"})
	ctx := context.Background()

	count, ttl, err := client.IncrementWithTTL(ctx, "predict:10.0.0.1", time.Minute)
	require.NoError(t, err)
	require.Equal(t, int64(1), count)
	require.Greater(t, ttl, 55*time.Second)

	count, _, err = client.IncrementWithTTL(ctx, "predict:10.0.0.1", time.Minute)
	require.NoError(t, err)
	require.Equal(t, int64(2), count)

	// PEXPIRE only runs for the first hit of a window
	pexpire := 0
	for _, cmd := range server.Commands() {
		if cmd == "PEXPIRE" {
			pexpire++
		}
	}
	require.Equal(t, 1, pexpire)
}

func TestRedisClientAuthAndSelect(t *testing.T) {
	client, server := newTestRedis(t, cache.RedisConfig{Password: "s3cret", DB: 2}, cachetest.WithPassword("s3cret"))

	require.NoError(t, client.Ping(context.Background()))
	require.Equal(t, []string{"AUTH", "SELECT", "PING"}, server.Commands())
}

func TestRedisClientWrongPassword(t *testing.T) {
	server := cachetest.NewFakeRedis(t, cachetest.WithPassword("right"))

	_, err := cache.NewRedisClient(cache.RedisConfig{Address: server.Addr(), Password: "wrong"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "AUTH failed")
}

func TestRedisClientErrorReplyKeepsConnection(t *testing.T) {
	client, server := newTestRedis(t, cache.RedisConfig{})
	ctx := context.Background()

	server.FailNext("GET")
	_, _, err := client.Get(ctx, "k")
	require.Error(t, err)
	require.Contains(t, err.Error(), "injected failure")

	require.NoError(t, client.Ping(ctx))
}

func TestRedisClientFailsWhenServerGone(t *testing.T) {
	server := cachetest.NewFakeRedis(t)
	client, err := cache.NewRedisClient(cache.RedisConfig{Address: server.Addr(), Timeout: time.Second})
	require.NoError(t, err)
	defer client.Close()

	server.Close()
	require.Error(t, client.Ping(context.Background()))
}
