package main

import (
	"context"
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/charlesng35/aidemo/internal/api"
	"github.com/charlesng35/aidemo/internal/app"
	"github.com/charlesng35/aidemo/internal/app/maintenance"
	"github.com/charlesng35/aidemo/internal/database"
	"github.com/charlesng35/aidemo/internal/monitoring"
	"github.com/charlesng35/aidemo/internal/monitoring/checks"
	"github.com/charlesng35/aidemo/internal/prediction"
	"github.com/charlesng35/aidemo/internal/realtime"
	"github.com/charlesng35/aidemo/internal/sentiment"
	"github.com/charlesng35/aidemo/internal/tts"
)

// runtimeStack bundles long-lived services used by the chat server.
type runtimeStack struct {
	DB         *gorm.DB
	Stores     app.CacheStores
	Monitoring *monitoring.Module
	Predictor  *prediction.Service
	Speaker    *tts.Client
	Cleaner    *maintenance.Cleaner
	Hub        *realtime.Hub
	Router     *gin.Engine
}

// bootstrapRuntime initialises the database, cache, classifier and HTTP router.
func bootstrapRuntime(cfg *app.Config, log *zap.Logger) (*runtimeStack, error) {
	stack := &runtimeStack{}
	var err error
	success := false

	defer func() {
		if !success {
			stack.Shutdown(context.Background(), log)
		}
	}()

	// enable gin debug mode
	if debug, _ := os.LookupEnv("GIN_DEBUG"); debug != "true" {
		gin.SetMode(gin.ReleaseMode)
	}

	stack.Monitoring, err = monitoring.NewModule(monitoring.Options{Service: "chat"})
	if err != nil {
		return nil, fmt.Errorf("initialise monitoring: %w", err)
	}
	monitoring.SetModule(stack.Monitoring)

	stack.DB, err = app.OpenDatabase(cfg)
	if err != nil {
		return nil, err
	}

	stack.Stores = app.OpenCacheStores(cfg, stack.DB)
	monitoring.SetCacheBackend(stack.Stores.Backend())
	store := stack.Stores.Active()

	classifier, err := sentiment.New(sentiment.Config{
		Provider: cfg.Sentiment.Provider,
		Model:    cfg.Sentiment.Model,
		Endpoint: cfg.Sentiment.HuggingFace.Endpoint,
		Token:    cfg.Sentiment.HuggingFace.Token,
		Timeout:  cfg.Sentiment.HuggingFace.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("initialise sentiment classifier: %w", err)
	}
	if classifier == nil {
		log.Warn("sentiment classifier disabled; only cached predictions will be served")
	} else {
		log.Info("sentiment classifier loaded", zap.String("classifier", classifier.Name()))
	}

	stack.Predictor, err = prediction.NewService(store, classifier,
		prediction.WithTTL(cfg.Prediction.CacheTTL),
		prediction.WithKeyPrefix(cfg.Prediction.KeyPrefix),
		prediction.WithObserver(monitoring.RecordPrediction),
	)
	if err != nil {
		return nil, fmt.Errorf("initialise prediction service: %w", err)
	}

	stack.Speaker, err = tts.NewClient(tts.Config{
		URL:          cfg.TTS.URL,
		Timeout:      cfg.TTS.Timeout,
		DefaultVoice: cfg.TTS.DefaultVoice,
		Format:       cfg.TTS.Format,
	})
	if err != nil {
		return nil, fmt.Errorf("initialise tts client: %w", err)
	}

	stack.Cleaner = maintenance.NewCleaner(stack.Stores.Purger(),
		maintenance.WithCacheSchedule(cfg.Maintenance.CachePurgeSchedule),
		maintenance.WithPurgeHook(monitoring.RecordCachePurge),
	)
	if err := stack.Cleaner.Start(); err != nil {
		return nil, fmt.Errorf("start maintenance jobs: %w", err)
	}

	if cfg.Monitoring.Health.Enabled {
		health := stack.Monitoring.Health()
		health.RegisterReadiness(checks.Database(stack.DB, 0))
		health.RegisterReadiness(checks.Cache(store, stack.Stores.Backend(), 0))
		health.RegisterReadiness(checks.Classifier(stack.Predictor))
		if stack.Cleaner.Enabled() {
			health.RegisterLiveness(checks.Maintenance(maintenance.CachePurgeJob, 0))
		}
	}

	stack.Hub = realtime.NewHub()

	stack.Router, err = api.NewRouter(api.ChatDeps{
		Config:     cfg,
		Predictor:  stack.Predictor,
		Speaker:    stack.Speaker,
		Stats:      store,
		RateStore:  store,
		Monitoring: stack.Monitoring,
		Hub:        stack.Hub,
	})
	if err != nil {
		return nil, fmt.Errorf("build api router: %w", err)
	}

	success = true
	return stack, nil
}

// Shutdown stops background jobs and releases resources.
func (s *runtimeStack) Shutdown(ctx context.Context, log *zap.Logger) {
	if s == nil {
		return
	}

	var errs error
	if s.Cleaner != nil {
		<-s.Cleaner.Stop().Done()
		errs = multierr.Append(errs, s.Cleaner.RunOnce(ctx))
	}
	if s.Hub != nil {
		s.Hub.Close()
	}
	errs = multierr.Append(errs, s.Stores.Close())
	if s.DB != nil {
		errs = multierr.Append(errs, database.Close(s.DB))
	}

	for _, err := range multierr.Errors(errs) {
		log.Warn("shutdown cleanup failed", zap.Error(err))
	}
}
