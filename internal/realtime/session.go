package realtime

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type session struct {
	hub     *Hub
	ws      *websocket.Conn
	replies chan any
	quit    chan struct{}
	once    sync.Once
}

func newSession(hub *Hub, ws *websocket.Conn) *session {
	return &session{
		hub:     hub,
		ws:      ws,
		replies: make(chan any, queueDepth),
		quit:    make(chan struct{}),
	}
}

// refuse turns away a client that connected while the hub was closing.
func (s *session) refuse() {
	msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
	_ = s.ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeTimeout))
	_ = s.ws.Close()
}

func (s *session) listen(ctx context.Context, handler Handler) {
	defer s.end()

	s.ws.SetReadLimit(maxFrameSize)
	extend := func(string) error {
		return s.ws.SetReadDeadline(time.Now().Add(idleTimeout))
	}
	_ = extend("")
	s.ws.SetPongHandler(extend)

	for {
		kind, payload, err := s.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				s.hub.log.Debug("websocket closed unexpectedly", zap.Error(err))
			}
			return
		}
		if kind != websocket.TextMessage || len(payload) == 0 {
			continue
		}
		s.hub.counted("in")

		select {
		case s.replies <- handler(ctx, payload):
		case <-s.quit:
			return
		}
	}
}

// pump is the only writer on the socket: replies, keepalive pings and the close frame.
func (s *session) pump() {
	ping := time.NewTicker(pingEvery)
	defer ping.Stop()

	for {
		select {
		case <-s.quit:
			_ = s.write(websocket.CloseMessage, []byte{})
			_ = s.ws.Close()
			return
		case reply := <-s.replies:
			data, err := json.Marshal(reply)
			if err != nil {
				s.hub.log.Error("encode websocket reply", zap.Error(err))
				continue
			}
			if err := s.write(websocket.TextMessage, data); err != nil {
				s.end()
				continue
			}
			s.hub.counted("out")
		case <-ping.C:
			if err := s.write(websocket.PingMessage, nil); err != nil {
				s.end()
			}
		}
	}
}

func (s *session) write(kind int, data []byte) error {
	if err := s.ws.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return err
	}
	return s.ws.WriteMessage(kind, data)
}

func (s *session) end() {
	s.once.Do(func() {
		s.hub.forget(s)
		close(s.quit)
	})
}
