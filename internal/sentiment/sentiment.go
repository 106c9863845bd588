// Package sentiment wraps the binary sentiment classifiers the chat server can run with.
package sentiment

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Labels emitted by every classifier, matching the SST-2 label set.
const (
	LabelPositive = "POSITIVE"
	LabelNegative = "NEGATIVE"
)

// Provider names accepted by New.
const (
	ProviderLexicon     = "lexicon"
	ProviderHuggingFace = "huggingface"
	ProviderDisabled    = "disabled"
)

// Prediction is a label with the classifier's confidence in it.
type Prediction struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Classifier labels text. Implementations are safe for concurrent use.
type Classifier interface {
	Classify(ctx context.Context, text string) (Prediction, error)
	Name() string
}

// Config selects and configures a classifier.
type Config struct {
	Provider string
	Model    string
	Endpoint string
	Token    string
	Timeout  time.Duration
}

// New builds the configured classifier. The disabled provider returns a nil Classifier
// and no error; callers treat that as "model not available".
func New(cfg Config) (Classifier, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", ProviderLexicon:
		return NewLexicon()
	case ProviderHuggingFace:
		return NewHuggingFace(HuggingFaceConfig{
			Endpoint: cfg.Endpoint,
			Model:    cfg.Model,
			Token:    cfg.Token,
			Timeout:  cfg.Timeout,
		})
	case ProviderDisabled, "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("sentiment: unknown provider %q", cfg.Provider)
	}
}
