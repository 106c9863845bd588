package cache

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"
)

// RedisConfig captures the connection parameters of the RESP client.
type RedisConfig struct {
	Address   string
	Username  string
	Password  string
	DB        int
	TLS       bool
	Timeout   time.Duration
	KeyPrefix string
}

const defaultRedisTimeout = 5 * time.Second

// RedisClient speaks the handful of commands the cache and rate limiter need over a
// single mutex-guarded connection, re-dialled after any transport error.
type RedisClient struct {
	cfg  RedisConfig
	mu   sync.Mutex
	conn *respConn
}

// NewRedisClient dials eagerly so a wrong address or password fails startup rather
// than the first request.
func NewRedisClient(cfg RedisConfig) (*RedisClient, error) {
	cfg.Address = strings.TrimSpace(cfg.Address)
	if cfg.Address == "" {
		return nil, errors.New("redis: address is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultRedisTimeout
	}

	client := &RedisClient{cfg: cfg}
	client.mu.Lock()
	defer client.mu.Unlock()
	if err := client.connectLocked(context.Background()); err != nil {
		return nil, err
	}
	return client, nil
}

// Close drops the connection. The client re-dials on next use.
func (c *RedisClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

func (c *RedisClient) Ping(ctx context.Context) error {
	rep, err := c.do(ctx, "PING")
	if err != nil {
		return err
	}
	if status, _ := rep.status(); !strings.EqualFold(status, "PONG") {
		return fmt.Errorf("redis: unexpected PING reply %q", status)
	}
	return nil
}

// IncrementWithTTL counts a hit in a fixed window. INCR and PTTL share one round trip;
// the window is (re)armed when the key has no expiry, which covers both the first hit
// and a key left without TTL by an earlier failed PEXPIRE.
func (c *RedisClient) IncrementWithTTL(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	key = c.key(key)
	replies, err := c.pipeline(ctx, []string{"INCR", key}, []string{"PTTL", key})
	if err != nil {
		return 0, 0, err
	}
	count, err := replies[0].integer()
	if err != nil {
		return 0, 0, err
	}

	ttl, err := replies[1].integer()
	if err == nil && ttl > 0 {
		return count, time.Duration(ttl) * time.Millisecond, nil
	}

	if _, err := c.do(ctx, "PEXPIRE", key, millis(window)); err != nil {
		return 0, 0, err
	}
	return count, window, nil
}

// Set stores value, with PX when ttl is positive.
func (c *RedisClient) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	args := []string{"SET", c.key(key), string(value)}
	if ttl > 0 {
		args = append(args, "PX", millis(ttl))
	}
	rep, err := c.do(ctx, args...)
	if err != nil {
		return err
	}
	_, err = rep.status()
	return err
}

func (c *RedisClient) Get(ctx context.Context, key string) ([]byte, bool, error) {
	rep, err := c.do(ctx, "GET", c.key(key))
	if err != nil {
		return nil, false, err
	}
	if rep.kind != '$' {
		return nil, false, fmt.Errorf("redis: expected bulk reply to GET, got %q", rep.kind)
	}
	if rep.null {
		return nil, false, nil
	}
	return rep.bulk, true, nil
}

// Delete removes keys; missing keys are not an error.
func (c *RedisClient) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	args := []string{"DEL"}
	for _, key := range keys {
		args = append(args, c.key(key))
	}
	_, err := c.do(ctx, args...)
	return err
}

// Info runs INFO and returns its "field:value" pairs. Section headers are skipped.
func (c *RedisClient) Info(ctx context.Context, sections ...string) (map[string]string, error) {
	rep, err := c.do(ctx, append([]string{"INFO"}, sections...)...)
	if err != nil {
		return nil, err
	}
	if rep.kind != '$' || rep.null {
		return nil, fmt.Errorf("redis: expected bulk reply to INFO, got %q", rep.kind)
	}

	fields := make(map[string]string)
	for _, line := range strings.Split(string(rep.bulk), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || line[0] == '#' {
			continue
		}
		if name, value, ok := strings.Cut(line, ":"); ok {
			fields[name] = value
		}
	}
	return fields, nil
}

// Stats reads server-wide counters from INFO. Keyspace hits and misses count every
// client of the instance, not only this one.
func (c *RedisClient) Stats(ctx context.Context) (Stats, error) {
	info, err := c.Info(ctx)
	if err != nil {
		return Stats{}, err
	}

	number := func(field string) int64 {
		n, _ := strconv.ParseInt(info[field], 10, 64)
		return n
	}
	used := info["used_memory_human"]
	if used == "" {
		used = "0B"
	}
	return Stats{
		Backend:          BackendRedis,
		ConnectedClients: number("connected_clients"),
		UsedMemoryHuman:  used,
		KeyspaceHits:     number("keyspace_hits"),
		KeyspaceMisses:   number("keyspace_misses"),
	}, nil
}

func (c *RedisClient) key(key string) string {
	prefix := c.cfg.KeyPrefix
	if prefix == "" || strings.HasPrefix(key, prefix) {
		return key
	}
	return prefix + key
}

// do sends one command and surfaces an error reply as an error.
func (c *RedisClient) do(ctx context.Context, args ...string) (reply, error) {
	replies, err := c.pipeline(ctx, args)
	if err != nil {
		return reply{}, err
	}
	return replies[0], replies[0].err()
}

func (c *RedisClient) pipeline(ctx context.Context, cmds ...[]string) ([]reply, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		if err := c.connectLocked(ctx); err != nil {
			return nil, err
		}
	}

	replies, err := c.conn.pipeline(c.deadline(ctx), cmds...)
	if err != nil {
		_ = c.conn.Close()
		c.conn = nil
		return nil, err
	}
	for _, rep := range replies[:len(replies)-1] {
		if err := rep.err(); err != nil {
			return nil, err
		}
	}
	return replies, nil
}

func (c *RedisClient) connectLocked(ctx context.Context) error {
	dialCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	var (
		raw net.Conn
		err error
	)
	if c.cfg.TLS {
		raw, err = (&tls.Dialer{}).DialContext(dialCtx, "tcp", c.cfg.Address)
	} else {
		raw, err = (&net.Dialer{}).DialContext(dialCtx, "tcp", c.cfg.Address)
	}
	if err != nil {
		return err
	}
	conn := newRespConn(raw)

	var setup [][]string
	if c.cfg.Password != "" || c.cfg.Username != "" {
		auth := []string{"AUTH", c.cfg.Password}
		if c.cfg.Username != "" {
			auth = []string{"AUTH", c.cfg.Username, c.cfg.Password}
		}
		setup = append(setup, auth)
	}
	if c.cfg.DB > 0 {
		setup = append(setup, []string{"SELECT", strconv.Itoa(c.cfg.DB)})
	}

	if len(setup) > 0 {
		replies, err := conn.pipeline(c.deadline(dialCtx), setup...)
		if err != nil {
			_ = conn.Close()
			return err
		}
		for i, rep := range replies {
			if err := rep.err(); err != nil {
				_ = conn.Close()
				return fmt.Errorf("redis: %s failed: %w", setup[i][0], err)
			}
		}
	}

	c.conn = conn
	return nil
}

func (c *RedisClient) deadline(ctx context.Context) time.Time {
	if deadline, ok := ctx.Deadline(); ok {
		return deadline
	}
	return time.Now().Add(c.cfg.Timeout)
}

func millis(d time.Duration) string {
	if d <= 0 {
		return "0"
	}
	return strconv.FormatInt(d.Milliseconds(), 10)
}
