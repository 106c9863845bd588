package handlers

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/aidemo/internal/realtime"
	appErrors "github.com/charlesng35/aidemo/pkg/errors"
)

// StreamHandler serves predictions over a WebSocket: every text frame carrying
// {"text": "..."} is answered with the same payload POST /predict returns.
type StreamHandler struct {
	hub       *realtime.Hub
	predictor Predictor
}

type streamError struct {
	Error  string `json:"error"`
	Status int    `json:"status"`
}

// NewStreamHandler wires the websocket hub to the predictor.
func NewStreamHandler(hub *realtime.Hub, predictor Predictor) (*StreamHandler, error) {
	if hub == nil {
		return nil, errors.New("stream handler: hub is required")
	}
	if predictor == nil {
		return nil, errors.New("stream handler: predictor is required")
	}
	return &StreamHandler{hub: hub, predictor: predictor}, nil
}

// Serve upgrades the request.
// GET /ws
func (h *StreamHandler) Serve(c *gin.Context) {
	h.hub.Serve(c.Writer, c.Request, h.answer)
}

func (h *StreamHandler) answer(ctx context.Context, payload []byte) any {
	var req predictRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return streamError{Error: "invalid JSON payload", Status: appErrors.ErrBadRequest.StatusCode}
	}

	result, err := h.predictor.Predict(ctx, req.Text)
	if err != nil {
		appErr := appErrors.Surface(err)
		return streamError{Error: appErr.Message, Status: appErr.StatusCode}
	}
	return result
}
