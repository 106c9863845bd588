package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/charlesng35/aidemo/internal/monitoring"
	"github.com/charlesng35/aidemo/internal/prediction"
	"github.com/charlesng35/aidemo/internal/tts"
	appErrors "github.com/charlesng35/aidemo/pkg/errors"
	"github.com/charlesng35/aidemo/pkg/logger"
	"github.com/charlesng35/aidemo/pkg/response"
)

const chatInputMaxLength = 500

// Predictor answers sentiment queries, consulting the cache first.
type Predictor interface {
	Predict(ctx context.Context, text string) (prediction.Result, error)
	Available() bool
}

// Speaker turns text into audio.
type Speaker interface {
	Synthesize(ctx context.Context, text, voiceID string) (tts.Audio, error)
}

// ChatHandler serves the chat page and its JSON endpoints.
type ChatHandler struct {
	predictor Predictor
	speaker   Speaker
	log       *zap.Logger
}

// NewChatHandler constructs the chat handler. The speaker may be nil, in which case
// /speak reports the TTS service as failed.
func NewChatHandler(predictor Predictor, speaker Speaker) (*ChatHandler, error) {
	if predictor == nil {
		return nil, errors.New("chat handler: predictor is required")
	}
	return &ChatHandler{
		predictor: predictor,
		speaker:   speaker,
		log:       logger.WithModule("chat"),
	}, nil
}

type chatPage struct {
	Title      string
	MaxLength  int
	ModelReady bool
}

type predictRequest struct {
	Text string `json:"text"`
}

type speakRequest struct {
	Text    string `json:"text"`
	VoiceID string `json:"voiceId"`
}

// Index renders the chat page.
// GET /
func (h *ChatHandler) Index(c *gin.Context) {
	c.HTML(http.StatusOK, "chat.html", chatPage{
		Title:      "AI Sentiment Analysis Chat",
		MaxLength:  chatInputMaxLength,
		ModelReady: h.predictor.Available(),
	})
}

// Predict classifies the posted text.
// POST /predict
func (h *ChatHandler) Predict(c *gin.Context) {
	var req predictRequest
	if !bindAndValidate(c, &req) {
		return
	}

	result, err := h.predictor.Predict(requestContext(c), req.Text)
	if err != nil {
		h.logFailure("prediction failed", err)
		response.Error(c, appErrors.Surface(err))
		return
	}
	response.Success(c, http.StatusOK, result)
}

// Speak proxies text to the TTS service and relays the audio.
// POST /speak
func (h *ChatHandler) Speak(c *gin.Context) {
	var req speakRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if h.speaker == nil {
		response.Error(c, appErrors.ErrTTSFailed)
		return
	}

	start := time.Now()
	audio, err := h.speaker.Synthesize(requestContext(c), req.Text, req.VoiceID)
	if err != nil {
		if !errors.Is(err, appErrors.ErrNoText) {
			monitoring.RecordTTSRequest("failure", time.Since(start))
		}
		response.Error(c, speakError(err))
		return
	}

	monitoring.RecordTTSRequest("success", time.Since(start))
	c.Data(http.StatusOK, audio.ContentType, audio.Data)
}

func speakError(err error) *appErrors.AppError {
	var upstream *tts.UpstreamStatusError
	if errors.As(err, &upstream) {
		logger.WithModule("chat").Warn("tts upstream rejected request",
			zap.Int("status", upstream.StatusCode),
			zap.String("body", upstream.Body),
		)
		return appErrors.ErrTTSFailed.WithInternal(err)
	}
	return appErrors.Surface(err)
}

func (h *ChatHandler) logFailure(msg string, err error) {
	var appErr *appErrors.AppError
	if errors.As(err, &appErr) && appErr.StatusCode < http.StatusInternalServerError {
		return
	}
	h.log.Error(msg, zap.Error(err))
}
