// Package prediction implements cache-lookaside sentiment prediction.
package prediction

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/charlesng35/aidemo/internal/cache"
	"github.com/charlesng35/aidemo/internal/sentiment"
	apperrors "github.com/charlesng35/aidemo/pkg/errors"
	"github.com/charlesng35/aidemo/pkg/logger"
)

const (
	// DefaultTTL is how long a prediction stays cached.
	DefaultTTL = time.Hour
	// DefaultKeyPrefix namespaces prediction keys in the shared store.
	DefaultKeyPrefix = "prediction:"
)

// Outcomes reported to an Observer.
const (
	OutcomeHit   = "hit"
	OutcomeMiss  = "miss"
	OutcomeError = "error"
)

// Result is the payload returned to clients for one prediction.
type Result struct {
	Text           string               `json:"text"`
	Prediction     sentiment.Prediction `json:"prediction"`
	Cached         bool                 `json:"cached"`
	ProcessingTime float64              `json:"processing_time"`
}

// Observer receives the outcome and latency of every Predict call.
type Observer func(outcome string, elapsed time.Duration)

// Service looks predictions up in the cache before asking the classifier. Concurrent
// misses for the same text share one classifier call.
type Service struct {
	store      cache.Store
	classifier sentiment.Classifier
	ttl        time.Duration
	keyPrefix  string
	now        func() time.Time
	observe    Observer
	group      singleflight.Group
	log        *zap.Logger
}

// Option customises the Service.
type Option func(*Service)

// WithTTL overrides the cache lifetime of new predictions.
func WithTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithKeyPrefix overrides the prefix placed before the text digest.
func WithKeyPrefix(prefix string) Option {
	return func(s *Service) {
		if prefix != "" {
			s.keyPrefix = prefix
		}
	}
}

// WithClock overrides the clock used to measure processing time.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithObserver registers a hook for metrics.
func WithObserver(observer Observer) Option {
	return func(s *Service) {
		s.observe = observer
	}
}

// NewService constructs a Service. A nil classifier is allowed: cached predictions are
// still served and misses fail with ErrModelUnavailable.
func NewService(store cache.Store, classifier sentiment.Classifier, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("prediction: cache store is required")
	}

	svc := &Service{
		store:      store,
		classifier: classifier,
		ttl:        DefaultTTL,
		keyPrefix:  DefaultKeyPrefix,
		now:        time.Now,
		log:        logger.WithModule("prediction"),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// CacheKey returns prefix followed by the hex MD5 digest of text.
func CacheKey(prefix, text string) string {
	sum := md5.Sum([]byte(text))
	return prefix + hex.EncodeToString(sum[:])
}

// Key returns the cache key used for text.
func (s *Service) Key(text string) string {
	return CacheKey(s.keyPrefix, text)
}

// Available reports whether a classifier is loaded.
func (s *Service) Available() bool {
	return s.classifier != nil
}

// ClassifierName returns the loaded classifier's name, or "" when none is loaded.
func (s *Service) ClassifierName() string {
	if s.classifier == nil {
		return ""
	}
	return s.classifier.Name()
}

// Predict returns the cached prediction for text or computes and caches a new one.
// The text is used verbatim; only the empty string is rejected.
func (s *Service) Predict(ctx context.Context, text string) (Result, error) {
	if text == "" {
		return Result{}, apperrors.ErrNoText
	}
	if ctx == nil {
		ctx = context.Background()
	}

	start := s.now()
	key := s.Key(text)

	raw, ok, err := s.store.Get(ctx, key)
	if err != nil {
		s.report(OutcomeError, start)
		return Result{}, fmt.Errorf("cache get: %w", err)
	}
	if ok {
		var cached sentiment.Prediction
		if err := json.Unmarshal(raw, &cached); err == nil {
			s.log.Debug("cache hit", zap.String("key", key))
			s.report(OutcomeHit, start)
			return Result{Text: text, Prediction: cached, Cached: true, ProcessingTime: 0}, nil
		}
		s.log.Warn("discarding undecodable cache entry", zap.String("key", key))
	}

	if s.classifier == nil {
		s.report(OutcomeError, start)
		return Result{}, apperrors.ErrModelUnavailable
	}

	value, err, _ := s.group.Do(key, func() (interface{}, error) {
		// shared by every waiter, so one caller's cancellation must not fail the rest
		callCtx := context.WithoutCancel(ctx)
		pred, err := s.classifier.Classify(callCtx, text)
		if err != nil {
			return nil, err
		}
		payload, err := json.Marshal(pred)
		if err != nil {
			return nil, err
		}
		if err := s.store.Set(callCtx, key, payload, s.ttl); err != nil {
			return nil, fmt.Errorf("cache set: %w", err)
		}
		s.log.Info("new prediction cached", zap.String("key", key), zap.String("label", pred.Label))
		return pred, nil
	})
	if err != nil {
		s.report(OutcomeError, start)
		return Result{}, err
	}

	elapsed := s.now().Sub(start)
	s.report(OutcomeMiss, start)
	return Result{
		Text:           text,
		Prediction:     value.(sentiment.Prediction),
		Cached:         false,
		ProcessingTime: elapsed.Seconds(),
	}, nil
}

func (s *Service) report(outcome string, start time.Time) {
	if s.observe != nil {
		s.observe(outcome, s.now().Sub(start))
	}
}
