package sentiment

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
)

const (
	defaultHuggingFaceEndpoint = "https://api-inference.huggingface.co/models"
	defaultHuggingFaceModel    = "distilbert-base-uncased-finetuned-sst-2-english"
	defaultHuggingFaceTimeout  = 30 * time.Second
	maxErrorBody               = 4 << 10
)

// HuggingFaceConfig configures the hosted inference client.
type HuggingFaceConfig struct {
	Endpoint   string
	Model      string
	Token      string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// HuggingFace calls the Inference API text-classification pipeline.
type HuggingFace struct {
	url    string
	model  string
	token  string
	client *http.Client
}

// NewHuggingFace validates the configuration and builds a client.
func NewHuggingFace(cfg HuggingFaceConfig) (*HuggingFace, error) {
	endpoint := strings.TrimRight(strings.TrimSpace(cfg.Endpoint), "/")
	if endpoint == "" {
		endpoint = defaultHuggingFaceEndpoint
	}
	model := strings.Trim(strings.TrimSpace(cfg.Model), "/")
	if model == "" {
		model = defaultHuggingFaceModel
	}
	client := cfg.HTTPClient
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultHuggingFaceTimeout
		}
		client = &http.Client{Timeout: timeout}
	}

	return &HuggingFace{
		url:    endpoint + "/" + model,
		model:  model,
		token:  strings.TrimSpace(cfg.Token),
		client: client,
	}, nil
}

// Name identifies the classifier in logs and health reports.
func (h *HuggingFace) Name() string { return ProviderHuggingFace + ":" + h.model }

type inferenceRequest struct {
	Inputs string `json:"inputs"`
}

type inferenceError struct {
	Error string `json:"error"`
}

// Classify sends text to the model and returns the highest scoring label.
func (h *HuggingFace) Classify(ctx context.Context, text string) (Prediction, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	payload, err := json.Marshal(inferenceRequest{Inputs: text})
	if err != nil {
		return Prediction{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.url, bytes.NewReader(payload))
	if err != nil {
		return Prediction{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if h.token != "" {
		req.Header.Set("Authorization", "Bearer "+h.token)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return Prediction{}, fmt.Errorf("sentiment: inference request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		var apiErr inferenceError
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != "" {
			return Prediction{}, fmt.Errorf("sentiment: inference status %d: %s", resp.StatusCode, apiErr.Error)
		}
		return Prediction{}, fmt.Errorf("sentiment: inference status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Prediction{}, err
	}
	candidates, err := decodeCandidates(body)
	if err != nil {
		return Prediction{}, err
	}
	return best(candidates)
}

// decodeCandidates accepts both the nested [[...]] shape returned for single inputs
// and a flat [...] list.
func decodeCandidates(body []byte) ([]Prediction, error) {
	var nested [][]Prediction
	if err := json.Unmarshal(body, &nested); err == nil {
		if len(nested) == 0 {
			return nil, errors.New("sentiment: empty inference response")
		}
		return nested[0], nil
	}
	var flat []Prediction
	if err := json.Unmarshal(body, &flat); err != nil {
		return nil, fmt.Errorf("sentiment: decode inference response: %w", err)
	}
	return flat, nil
}

func best(candidates []Prediction) (Prediction, error) {
	if len(candidates) == 0 {
		return Prediction{}, errors.New("sentiment: no labels in inference response")
	}
	top := candidates[0]
	for _, c := range candidates[1:] {
		if c.Score > top.Score {
			top = c
		}
	}
	top.Label = strings.ToUpper(top.Label)
	return top, nil
}
