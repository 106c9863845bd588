package handlers

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/charlesng35/aidemo/internal/prediction"
	"github.com/charlesng35/aidemo/internal/realtime"
	"github.com/charlesng35/aidemo/internal/sentiment"
)

func dialStream(t *testing.T, predictor Predictor) *websocket.Conn {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hub := realtime.NewHub()
	handler, err := NewStreamHandler(hub, predictor)
	require.NoError(t, err)

	r := gin.New()
	r.GET("/ws", handler.Serve)
	srv := httptest.NewServer(r)
	t.Cleanup(func() {
		hub.Close()
		srv.Close()
	})

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestStreamAnswersPredictions(t *testing.T) {
	conn := dialStream(t, newPredictionService(t, true))

	require.NoError(t, conn.WriteJSON(map[string]string{"text": "I love this!"}))
	var first prediction.Result
	require.NoError(t, conn.ReadJSON(&first))
	require.Equal(t, sentiment.LabelPositive, first.Prediction.Label)
	require.False(t, first.Cached)

	require.NoError(t, conn.WriteJSON(map[string]string{"text": "I love this!"}))
	var second prediction.Result
	require.NoError(t, conn.ReadJSON(&second))
	require.True(t, second.Cached)
}

func TestStreamReportsErrors(t *testing.T) {
	conn := dialStream(t, newPredictionService(t, false))

	cases := []struct {
		frame  string
		error  string
		status int
	}{
		{frame: `not json`, error: "invalid JSON payload", status: 400},
		{frame: `{"text":""}`, error: "No text provided", status: 400},
		{frame: `{"text":"hello"}`, error: "Model not available", status: 503},
	}

	for _, tc := range cases {
		require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(tc.frame)))
		var reply streamError
		require.NoError(t, conn.ReadJSON(&reply))
		require.Equal(t, tc.error, reply.Error, tc.frame)
		require.Equal(t, tc.status, reply.Status, tc.frame)
	}
}

func TestNewStreamHandlerValidates(t *testing.T) {
	_, err := NewStreamHandler(nil, newPredictionService(t, true))
	require.Error(t, err)
	_, err = NewStreamHandler(realtime.NewHub(), nil)
	require.Error(t, err)
}
