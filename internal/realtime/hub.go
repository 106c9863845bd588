// Package realtime serves the chat WebSocket and keeps track of open sessions.
package realtime

import (
	"context"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/charlesng35/aidemo/pkg/logger"
)

// pingEvery must stay below idleTimeout so a healthy client answers before its read
// deadline passes.
const (
	writeTimeout = 10 * time.Second
	idleTimeout  = time.Minute
	pingEvery    = idleTimeout * 9 / 10
	maxFrameSize = 64 << 10
	queueDepth   = 16
)

// Handler answers one text frame. The returned value is written back as JSON.
type Handler func(ctx context.Context, payload []byte) any

// Hub upgrades chat clients to WebSocket sessions and closes them together on shutdown.
type Hub struct {
	// OnConnect receives +1/-1 as sessions open and close.
	OnConnect func(delta int64)
	// OnMessage receives "in" for each answered frame and "out" for each reply.
	OnMessage func(direction string)

	log      *zap.Logger
	upgrader websocket.Upgrader

	mu       sync.Mutex
	sessions map[*session]struct{}
	draining bool
}

func NewHub() *Hub {
	return &Hub{
		log:      logger.WithModule("realtime"),
		upgrader: websocket.Upgrader{CheckOrigin: trustedOrigin},
		sessions: make(map[*session]struct{}),
	}
}

// Serve upgrades the request and answers frames in order until the client leaves or
// the hub closes.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, handler Handler) {
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Debug("websocket upgrade rejected", zap.Error(err))
		return
	}

	s := newSession(h, ws)
	if !h.track(s) {
		s.refuse()
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	go s.pump()
	s.listen(ctx, handler)
}

// Count reports the number of open sessions.
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}

// Close ends every open session. Sessions that arrive afterwards are refused.
func (h *Hub) Close() {
	h.mu.Lock()
	h.draining = true
	open := make([]*session, 0, len(h.sessions))
	for s := range h.sessions {
		open = append(open, s)
	}
	h.mu.Unlock()

	for _, s := range open {
		s.end()
	}
	if len(open) > 0 {
		h.log.Info("closed websocket sessions", zap.Int("count", len(open)))
	}
}

func (h *Hub) track(s *session) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.draining {
		return false
	}
	h.sessions[s] = struct{}{}
	h.connected(1)
	return true
}

func (h *Hub) forget(s *session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.sessions[s]; ok {
		delete(h.sessions, s)
		h.connected(-1)
	}
}

func (h *Hub) connected(delta int64) {
	if h.OnConnect != nil {
		h.OnConnect(delta)
	}
}

func (h *Hub) counted(direction string) {
	if h.OnMessage != nil {
		h.OnMessage(direction)
	}
}

// trustedOrigin accepts requests without an Origin header, origins on the request's own
// host, and loopback origins used during local development.
func trustedOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return false
	}
	host := u.Hostname()
	return strings.EqualFold(host, hostname(r.Host)) || loopback(host)
}

func hostname(hostport string) string {
	hostport = strings.TrimSpace(hostport)
	if host, _, err := net.SplitHostPort(hostport); err == nil {
		return host
	}
	return strings.Trim(hostport, "[]")
}

func loopback(host string) bool {
	if strings.EqualFold(host, "localhost") {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
