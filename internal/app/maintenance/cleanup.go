package maintenance

import (
	"context"
	"errors"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/charlesng35/aidemo/internal/monitoring"
	"github.com/charlesng35/aidemo/pkg/logger"
)

const defaultCacheSpec = "@every 10m"

// CachePurgeJob names the expired-entry purge in monitoring summaries.
const CachePurgeJob = "cache_purge"

// ExpiredPurger removes entries whose expiry lies before now.
type ExpiredPurger interface {
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}

// Cleaner coordinates background maintenance: today that is purging expired rows from
// the database-backed cache, which unlike Redis never evicts on its own.
type Cleaner struct {
	cache   ExpiredPurger
	cron    *cron.Cron
	now     func() time.Time
	log     *zap.Logger
	onPurge func(removed int64)

	cacheSchedule string
}

// Option customises the Cleaner.
type Option func(*Cleaner)

// WithCron injects a preconfigured cron instance, primarily for testing.
func WithCron(c *cron.Cron) Option {
	return func(cleaner *Cleaner) {
		if c != nil {
			cleaner.cron = c
		}
	}
}

// WithNow overrides the clock used for expiry comparisons.
func WithNow(now func() time.Time) Option {
	return func(cleaner *Cleaner) {
		if now != nil {
			cleaner.now = now
		}
	}
}

// WithCacheSchedule overrides the cron specification for the cache purge.
func WithCacheSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.cacheSchedule = spec
		}
	}
}

// WithPurgeHook registers a callback receiving the number of rows removed by each purge.
func WithPurgeHook(fn func(removed int64)) Option {
	return func(cleaner *Cleaner) {
		cleaner.onPurge = fn
	}
}

// NewCleaner constructs a Cleaner. A nil purger disables the cache job.
func NewCleaner(cache ExpiredPurger, opts ...Option) *Cleaner {
	cleaner := &Cleaner{
		cache:         cache,
		now:           time.Now,
		cacheSchedule: defaultCacheSpec,
		log:           logger.WithModule("maintenance"),
	}

	for _, opt := range opts {
		opt(cleaner)
	}

	if cleaner.cron == nil {
		cleaner.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}

	return cleaner
}

// Enabled reports whether any job would be scheduled.
func (c *Cleaner) Enabled() bool {
	return c != nil && c.cache != nil
}

// Start registers cleanup jobs with the cron scheduler and launches it if at least one cleanup is enabled.
func (c *Cleaner) Start() error {
	if !c.Enabled() {
		return nil
	}

	if _, err := c.cron.AddFunc(c.cacheSchedule, func() {
		if _, err := c.purgeCache(context.Background()); err != nil {
			c.log.Warn("cache purge failed", zap.Error(err))
		}
	}); err != nil {
		return err
	}

	c.cron.Start()
	c.log.Info("maintenance scheduler started", zap.String("cache_schedule", c.cacheSchedule))
	return nil
}

// Stop halts the underlying scheduler, waiting for any running jobs to complete.
func (c *Cleaner) Stop() context.Context {
	if c == nil || c.cron == nil {
		return context.Background()
	}
	return c.cron.Stop()
}

// RunOnce executes all configured cleanup routines sequentially. Used during graceful shutdown.
func (c *Cleaner) RunOnce(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if c == nil {
		return errors.New("maintenance: cleaner is nil")
	}

	var errs error
	if c.cache != nil {
		if _, err := c.purgeCache(ctx); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	return errs
}

func (c *Cleaner) purgeCache(ctx context.Context) (int64, error) {
	start := time.Now()
	removed, err := c.cache.PurgeExpired(ctx, c.now())
	if err != nil {
		monitoring.RecordMaintenanceRun(CachePurgeJob, "failure", err.Error(), time.Since(start))
		return 0, err
	}
	monitoring.RecordMaintenanceRun(CachePurgeJob, "success", "", time.Since(start))
	if removed > 0 {
		c.log.Debug("purged expired cache entries", zap.Int64("removed", removed))
	}
	if c.onPurge != nil {
		c.onPurge(removed)
	}
	return removed, nil
}
