// Package cachetest provides an in-process RESP server for exercising the Redis client.
package cachetest

import (
	"bufio"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"
)

// FakeRedis understands the commands issued by cache.RedisClient and keeps
// keyspace_hits/keyspace_misses like a real server.
type FakeRedis struct {
	listener net.Listener
	password string

	mu       sync.Mutex
	data     map[string]entry
	hits     int64
	misses   int64
	commands []string
	clients  int64
	failNext string
	wg       sync.WaitGroup
	done     chan struct{}
	once     sync.Once
}

type entry struct {
	value     string
	expiresAt time.Time
}

// Option configures a FakeRedis.
type Option func(*FakeRedis)

// WithPassword requires AUTH with the given password before other commands.
func WithPassword(password string) Option {
	return func(f *FakeRedis) { f.password = password }
}

// NewFakeRedis starts a server on a random loopback port and stops it on test cleanup.
func NewFakeRedis(t testing.TB, opts ...Option) *FakeRedis {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	f := &FakeRedis{listener: ln, data: make(map[string]entry), done: make(chan struct{})}
	for _, opt := range opts {
		opt(f)
	}

	f.wg.Add(1)
	go f.serve()
	t.Cleanup(f.Close)
	return f
}

// Addr returns the host:port the server listens on.
func (f *FakeRedis) Addr() string {
	return f.listener.Addr().String()
}

// Close stops accepting connections and waits for handlers to exit.
func (f *FakeRedis) Close() {
	f.once.Do(func() {
		close(f.done)
		_ = f.listener.Close()
	})
	f.wg.Wait()
}

// Commands returns the command names received so far, upper-cased.
func (f *FakeRedis) Commands() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.commands...)
}

// Keys returns the stored keys that have not expired.
func (f *FakeRedis) Keys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	keys := make([]string, 0, len(f.data))
	for key, e := range f.data {
		if !e.expired(time.Now()) {
			keys = append(keys, key)
		}
	}
	return keys
}

// TTL returns the remaining time to live of key, or zero when it has none.
func (f *FakeRedis) TTL(key string) time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.data[key]
	if !ok || e.expiresAt.IsZero() {
		return 0
	}
	return time.Until(e.expiresAt)
}

// FailNext makes the next command named cmd reply with an error.
func (f *FakeRedis) FailNext(cmd string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failNext = strings.ToUpper(cmd)
}

func (e entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

func (f *FakeRedis) serve() {
	defer f.wg.Done()
	for {
		conn, err := f.listener.Accept()
		if err != nil {
			return
		}
		f.wg.Add(1)
		go f.handle(conn)
	}
}

func (f *FakeRedis) handle(conn net.Conn) {
	defer f.wg.Done()
	defer conn.Close()

	f.mu.Lock()
	f.clients++
	f.mu.Unlock()
	defer func() {
		f.mu.Lock()
		f.clients--
		f.mu.Unlock()
	}()

	go func() {
		// unblock reads once the server shuts down
		<-f.done
		_ = conn.Close()
	}()

	reader := bufio.NewReader(conn)
	authed := f.password == ""
	for {
		args, err := readCommand(reader)
		if err != nil {
			return
		}
		reply := f.exec(args, &authed)
		if _, err := io.WriteString(conn, reply); err != nil {
			return
		}
	}
}

func (f *FakeRedis) exec(args []string, authed *bool) string {
	if len(args) == 0 {
		return "-ERR empty command\r\n"
	}
	cmd := strings.ToUpper(args[0])

	f.mu.Lock()
	defer f.mu.Unlock()

	f.commands = append(f.commands, cmd)
	if f.failNext == cmd {
		f.failNext = ""
		return "-ERR injected failure\r\n"
	}

	if cmd == "AUTH" {
		if args[len(args)-1] != f.password {
			return "-WRONGPASS invalid password\r\n"
		}
		*authed = true
		return "+OK\r\n"
	}
	if !*authed {
		return "-NOAUTH Authentication required.\r\n"
	}

	now := time.Now()
	switch cmd {
	case "PING":
		return "+PONG\r\n"
	case "SELECT":
		return "+OK\r\n"
	case "GET":
		e, ok := f.data[args[1]]
		if !ok || e.expired(now) {
			delete(f.data, args[1])
			f.misses++
			return "$-1\r\n"
		}
		f.hits++
		return bulk(e.value)
	case "SET":
		e := entry{value: args[2]}
		if len(args) == 5 && strings.EqualFold(args[3], "PX") {
			ms, _ := strconv.ParseInt(args[4], 10, 64)
			e.expiresAt = now.Add(time.Duration(ms) * time.Millisecond)
		}
		f.data[args[1]] = e
		return "+OK\r\n"
	case "DEL":
		var n int
		for _, key := range args[1:] {
			if _, ok := f.data[key]; ok {
				delete(f.data, key)
				n++
			}
		}
		return fmt.Sprintf(":%d\r\n", n)
	case "INCR":
		e := f.data[args[1]]
		if e.expired(now) {
			e = entry{}
		}
		n, _ := strconv.ParseInt(e.value, 10, 64)
		n++
		e.value = strconv.FormatInt(n, 10)
		f.data[args[1]] = e
		return fmt.Sprintf(":%d\r\n", n)
	case "PEXPIRE":
		e, ok := f.data[args[1]]
		if !ok {
			return ":0\r\n"
		}
		ms, _ := strconv.ParseInt(args[2], 10, 64)
		e.expiresAt = now.Add(time.Duration(ms) * time.Millisecond)
		f.data[args[1]] = e
		return ":1\r\n"
	case "PTTL":
		e, ok := f.data[args[1]]
		if !ok {
			return ":-2\r\n"
		}
		if e.expiresAt.IsZero() {
			return ":-1\r\n"
		}
		return fmt.Sprintf(":%d\r\n", time.Until(e.expiresAt).Milliseconds())
	case "INFO":
		info := fmt.Sprintf("# Clients\r\nconnected_clients:%d\r\n\r\n# Memory\r\nused_memory:1048576\r\nused_memory_human:1.00M\r\n\r\n# Stats\r\nkeyspace_hits:%d\r\nkeyspace_misses:%d\r\n",
			f.clients, f.hits, f.misses)
		return bulk(info)
	default:
		return fmt.Sprintf("-ERR unknown command '%s'\r\n", args[0])
	}
}

func bulk(value string) string {
	return fmt.Sprintf("$%d\r\n%s\r\n", len(value), value)
}

func readCommand(r *bufio.Reader) ([]string, error) {
	header, err := readLine(r)
	if err != nil {
		return nil, err
	}
	if !strings.HasPrefix(header, "*") {
		return strings.Fields(header), nil
	}
	count, err := strconv.Atoi(header[1:])
	if err != nil {
		return nil, err
	}
	args := make([]string, 0, count)
	for i := 0; i < count; i++ {
		sizeLine, err := readLine(r)
		if err != nil {
			return nil, err
		}
		size, err := strconv.Atoi(strings.TrimPrefix(sizeLine, "$"))
		if err != nil {
			return nil, err
		}
		buf := make([]byte, size+2)
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, err
		}
		args = append(args, string(buf[:size]))
	}
	return args, nil
}

func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
