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
	"github.com/charlesng35/aidemo/pkg/crypto"
)

const csrfPurpose = "portfolio-csrf"

type runtimeStack struct {
	DB         *gorm.DB
	Stores     app.CacheStores
	Monitoring *monitoring.Module
	Cleaner    *maintenance.Cleaner
	Router     *gin.Engine
}

// bootstrapRuntime opens the blog database and builds the portfolio router. The cache
// store only backs rate limiting here.
func bootstrapRuntime(cfg *app.Config, log *zap.Logger) (*runtimeStack, error) {
	stack := &runtimeStack{}
	var err error
	success := false

	defer func() {
		if !success {
			stack.Shutdown(context.Background(), log)
		}
	}()

	if debug, _ := os.LookupEnv("GIN_DEBUG"); debug != "true" {
		gin.SetMode(gin.ReleaseMode)
	}

	stack.Monitoring, err = monitoring.NewModule(monitoring.Options{Service: "portfolio"})
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

	signer, err := crypto.NewSigner(cfg.Server.SecretKey, csrfPurpose)
	if err != nil {
		return nil, fmt.Errorf("initialise csrf signer: %w", err)
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
		health.RegisterReadiness(checks.Cache(stack.Stores.Active(), stack.Stores.Backend(), 0))
		if stack.Cleaner.Enabled() {
			health.RegisterLiveness(checks.Maintenance(maintenance.CachePurgeJob, 0))
		}
	}

	stack.Router, err = api.NewPortfolioRouter(api.PortfolioDeps{
		Config:     cfg,
		DB:         stack.DB,
		Signer:     signer,
		RateStore:  stack.Stores.Active(),
		Monitoring: stack.Monitoring,
	})
	if err != nil {
		return nil, fmt.Errorf("build portfolio router: %w", err)
	}

	log.Info("portfolio ready", zap.Int("projects", len(cfg.Portfolio.Projects)))
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
	errs = multierr.Append(errs, s.Stores.Close())
	if s.DB != nil {
		errs = multierr.Append(errs, database.Close(s.DB))
	}

	for _, err := range multierr.Errors(errs) {
		log.Warn("shutdown cleanup failed", zap.Error(err))
	}
}
