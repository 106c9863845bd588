// Package tts proxies text to the speech synthesis service.
package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	apperrors "github.com/charlesng35/aidemo/pkg/errors"
)

const (
	DefaultURL         = "http://tts-service:3000/tts"
	DefaultVoice       = "cliff"
	DefaultFormat      = "mp3"
	DefaultContentType = "audio/mpeg"
	defaultTimeout     = 30 * time.Second
	maxAudioBytes      = 32 << 20
	maxErrorBody       = 4 << 10
)

// Config configures the TTS client.
type Config struct {
	URL          string
	Timeout      time.Duration
	DefaultVoice string
	Format       string
	HTTPClient   *http.Client
}

// Audio is the synthesized payload relayed to the caller.
type Audio struct {
	Data        []byte
	ContentType string
}

// UpstreamStatusError reports a non-200 answer from the TTS service.
type UpstreamStatusError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamStatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("tts: upstream status %d", e.StatusCode)
	}
	return fmt.Sprintf("tts: upstream status %d: %s", e.StatusCode, e.Body)
}

type synthesizeRequest struct {
	Text    string `json:"text"`
	VoiceID string `json:"voiceId"`
	Format  string `json:"format"`
}

// Client posts synthesis requests. It never retries.
type Client struct {
	url          string
	defaultVoice string
	format       string
	http         *http.Client
}

// NewClient builds a Client, filling unset fields with defaults.
func NewClient(cfg Config) (*Client, error) {
	url := strings.TrimSpace(cfg.URL)
	if url == "" {
		url = DefaultURL
	}
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return nil, fmt.Errorf("tts: url %q must be http or https", url)
	}

	voice := strings.TrimSpace(cfg.DefaultVoice)
	if voice == "" {
		voice = DefaultVoice
	}
	format := strings.TrimSpace(cfg.Format)
	if format == "" {
		format = DefaultFormat
	}

	client := cfg.HTTPClient
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		client = &http.Client{Timeout: timeout}
	}

	return &Client{url: url, defaultVoice: voice, format: format, http: client}, nil
}

// URL returns the upstream endpoint.
func (c *Client) URL() string { return c.url }

// Synthesize trims text and voiceID, substitutes the default voice when voiceID is blank,
// and returns the upstream bytes verbatim.
func (c *Client) Synthesize(ctx context.Context, text, voiceID string) (Audio, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Audio{}, apperrors.ErrNoText
	}
	voiceID = strings.TrimSpace(voiceID)
	if voiceID == "" {
		voiceID = c.defaultVoice
	}
	if ctx == nil {
		ctx = context.Background()
	}

	payload, err := json.Marshal(synthesizeRequest{Text: text, VoiceID: voiceID, Format: c.format})
	if err != nil {
		return Audio{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return Audio{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return Audio{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return Audio{}, &UpstreamStatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxAudioBytes+1))
	if err != nil {
		return Audio{}, err
	}
	if len(data) > maxAudioBytes {
		return Audio{}, errors.New("tts: audio response too large")
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = DefaultContentType
	}
	return Audio{Data: data, ContentType: contentType}, nil
}
