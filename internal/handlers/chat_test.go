package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/charlesng35/aidemo/internal/cache"
	"github.com/charlesng35/aidemo/internal/database/testutil"
	"github.com/charlesng35/aidemo/internal/prediction"
	"github.com/charlesng35/aidemo/internal/sentiment"
	"github.com/charlesng35/aidemo/internal/tts"
	"github.com/charlesng35/aidemo/pkg/response"
	"github.com/charlesng35/aidemo/web"
)

type failingPredictor struct{ err error }

func (f failingPredictor) Predict(context.Context, string) (prediction.Result, error) {
	return prediction.Result{}, f.err
}

func (f failingPredictor) Available() bool { return true }

func newPredictionService(t *testing.T, withModel bool) *prediction.Service {
	t.Helper()
	store := cache.NewDatabaseStore(testutil.MustOpenTestDB(t, testutil.WithAutoMigrate()))

	var classifier sentiment.Classifier
	if withModel {
		lex, err := sentiment.NewLexicon()
		require.NoError(t, err)
		classifier = lex
	}

	svc, err := prediction.NewService(store, classifier)
	require.NoError(t, err)
	return svc
}

func newChatRouter(t *testing.T, predictor Predictor, speaker Speaker) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	handler, err := NewChatHandler(predictor, speaker)
	require.NoError(t, err)

	tmpl, err := web.Templates()
	require.NoError(t, err)

	r := gin.New()
	r.SetHTMLTemplate(tmpl)
	r.GET("/", handler.Index)
	r.POST("/predict", handler.Predict)
	r.POST("/speak", handler.Speak)
	return r
}

func postJSON(r http.Handler, path string, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) response.ErrorBody {
	t.Helper()
	var body response.ErrorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestChatIndexRendersPage(t *testing.T) {
	r := newChatRouter(t, newPredictionService(t, true), nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "AI Sentiment Analysis Demo")
	require.Contains(t, w.Body.String(), "/static/js/chat.js")
	require.NotContains(t, w.Body.String(), "Model not loaded")
}

func TestPredictCachesResult(t *testing.T) {
	r := newChatRouter(t, newPredictionService(t, true), nil)

	first := postJSON(r, "/predict", `{"text":"I love this!"}`)
	require.Equal(t, http.StatusOK, first.Code)

	var miss prediction.Result
	require.NoError(t, json.Unmarshal(first.Body.Bytes(), &miss))
	require.Equal(t, "I love this!", miss.Text)
	require.Equal(t, sentiment.LabelPositive, miss.Prediction.Label)
	require.Greater(t, miss.Prediction.Score, 0.95)
	require.False(t, miss.Cached)

	second := postJSON(r, "/predict", `{"text":"I love this!"}`)
	require.Equal(t, http.StatusOK, second.Code)

	var hit prediction.Result
	require.NoError(t, json.Unmarshal(second.Body.Bytes(), &hit))
	require.True(t, hit.Cached)
	require.Zero(t, hit.ProcessingTime)
	require.Equal(t, miss.Prediction, hit.Prediction)
}

func TestPredictEmptyText(t *testing.T) {
	r := newChatRouter(t, newPredictionService(t, true), nil)

	for _, body := range []string{`{"text":""}`, `{}`} {
		w := postJSON(r, "/predict", body)
		require.Equal(t, http.StatusBadRequest, w.Code)
		require.Equal(t, "No text provided", decodeError(t, w).Error)
	}
}

func TestPredictInvalidBody(t *testing.T) {
	r := newChatRouter(t, newPredictionService(t, true), nil)

	w := postJSON(r, "/predict", `not json`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "BAD_REQUEST", decodeError(t, w).Code)
}

func TestPredictModelUnavailable(t *testing.T) {
	r := newChatRouter(t, newPredictionService(t, false), nil)

	w := postJSON(r, "/predict", `{"text":"hello"}`)
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	require.Equal(t, "Model not available", decodeError(t, w).Error)

	page := httptest.NewRecorder()
	r.ServeHTTP(page, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Contains(t, page.Body.String(), "Model not loaded")
}

func TestPredictSurfacesInternalError(t *testing.T) {
	r := newChatRouter(t, failingPredictor{err: errors.New("cache get: connection refused")}, nil)

	w := postJSON(r, "/predict", `{"text":"hello"}`)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.Equal(t, "cache get: connection refused", decodeError(t, w).Error)
}

func newTTSClient(t *testing.T, url string) *tts.Client {
	t.Helper()
	client, err := tts.NewClient(tts.Config{URL: url})
	require.NoError(t, err)
	return client
}

func TestSpeakRelaysAudio(t *testing.T) {
	var received map[string]string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &received)
		w.Header().Set("Content-Type", "audio/ogg")
		_, _ = w.Write([]byte("OggS-bytes"))
	}))
	defer upstream.Close()

	r := newChatRouter(t, newPredictionService(t, true), newTTSClient(t, upstream.URL))

	w := postJSON(r, "/speak", `{"text":"  hello there ","voiceId":" henry "}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "audio/ogg", w.Header().Get("Content-Type"))
	require.Equal(t, "OggS-bytes", w.Body.String())
	require.Equal(t, map[string]string{"text": "hello there", "voiceId": "henry", "format": "mp3"}, received)
}

func TestSpeakDefaultsVoice(t *testing.T) {
	var received map[string]string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&received)
		_, _ = w.Write([]byte("ID3"))
	}))
	defer upstream.Close()

	r := newChatRouter(t, newPredictionService(t, true), newTTSClient(t, upstream.URL))

	w := postJSON(r, "/speak", `{"text":"hi"}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "cliff", received["voiceId"])
}

func TestSpeakForwardsVoiceIDVerbatim(t *testing.T) {
	var voices []string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var received map[string]string
		_ = json.NewDecoder(r.Body).Decode(&received)
		voices = append(voices, received["voiceId"])
		_, _ = w.Write([]byte("ID3"))
	}))
	defer upstream.Close()

	r := newChatRouter(t, newPredictionService(t, true), newTTSClient(t, upstream.URL))

	for _, voice := range []string{"en-US.cliff", "Joanna Neural", "ö"} {
		body, err := json.Marshal(map[string]string{"text": "hi", "voiceId": " " + voice + " "})
		require.NoError(t, err)
		w := postJSON(r, "/speak", string(body))
		require.Equal(t, http.StatusOK, w.Code, voice)
	}
	require.Equal(t, []string{"en-US.cliff", "Joanna Neural", "ö"}, voices)
}

func TestSpeakErrors(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer upstream.Close()

	r := newChatRouter(t, newPredictionService(t, true), newTTSClient(t, upstream.URL))

	w := postJSON(r, "/speak", `{"text":"   "}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "No text provided", decodeError(t, w).Error)

	w = postJSON(r, "/speak", `{"text":"hi"}`)
	require.Equal(t, http.StatusBadGateway, w.Code)
	require.Equal(t, "TTS failed", decodeError(t, w).Error)
}

func TestSpeakTransportFailure(t *testing.T) {
	upstream := httptest.NewServer(http.NotFoundHandler())
	url := upstream.URL
	upstream.Close()

	r := newChatRouter(t, newPredictionService(t, true), newTTSClient(t, url))

	w := postJSON(r, "/speak", `{"text":"hi"}`)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.Contains(t, decodeError(t, w).Error, "connection refused")
}

func TestNewChatHandlerRequiresPredictor(t *testing.T) {
	_, err := NewChatHandler(nil, nil)
	require.Error(t, err)
}
