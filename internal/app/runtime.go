package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/charlesng35/aidemo/internal/app/maintenance"
	"github.com/charlesng35/aidemo/internal/cache"
	"github.com/charlesng35/aidemo/internal/database"
	"github.com/charlesng35/aidemo/pkg/logger"
)

// Startup is the shared preamble of the HTTP binaries: it parses --config from args,
// loads the configuration, fills generated defaults and installs the global logger tagged
// with service. generated names the keys that were filled, for the security audit.
func Startup(program, service string, args []string, usage io.Writer) (cfg *Config, generated map[string]bool, err error) {
	fs := flag.NewFlagSet(program, flag.ContinueOnError)
	fs.SetOutput(usage)
	configPath := fs.String("config", "", "configuration directory, or a config.yaml inside one")
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	if cfg, err = LoadConfigFrom(*configPath); err != nil {
		return nil, nil, err
	}
	if generated, err = ApplyRuntimeDefaults(cfg); err != nil {
		return nil, nil, err
	}
	if err := ConfigureLogging(cfg.Server.LogLevel, cfg.Server.LogFormat, service); err != nil {
		return nil, nil, fmt.Errorf("configure logging: %w", err)
	}

	log := logger.WithModule("bootstrap")
	for key := range generated {
		log.Info("generated runtime default", zap.String("key", key))
	}
	return cfg, generated, nil
}

// LoadConfigFrom resolves a --config flag value, which may name a directory or a file
// inside one, and loads the configuration from it.
func LoadConfigFrom(path string) (*Config, error) {
	if strings.TrimSpace(path) == "" {
		return LoadConfig()
	}

	info, err := os.Stat(path)
	if err == nil {
		if info.IsDir() {
			return LoadConfig(path)
		}
		return LoadConfig(filepath.Dir(path))
	}
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config path %q does not exist", path)
	}
	return nil, fmt.Errorf("stat config path: %w", err)
}

// OpenDatabase connects to the configured database and applies migrations and seed data.
func OpenDatabase(cfg *Config) (*gorm.DB, error) {
	dbCfg := cfg.Database.DatabaseClientConfig()
	db, err := database.Open(dbCfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := database.AutoMigrateAndSeed(db); err != nil {
		_ = database.Close(db)
		return nil, fmt.Errorf("auto-migrate database: %w", err)
	}

	logger.WithModule("database").Info("database connected", zap.String("driver", dbCfg.Driver))
	return db, nil
}

// CacheStores is the selected cache backend. Database is always set; Redis only when
// it is enabled and answered the initial connection.
type CacheStores struct {
	Redis    *cache.RedisClient
	Database *cache.DatabaseStore
}

// OpenCacheStores prefers Redis and falls back to the database-backed store.
func OpenCacheStores(cfg *Config, db *gorm.DB) CacheStores {
	stores := CacheStores{Database: cache.NewDatabaseStore(db)}
	if !cfg.Cache.Redis.Enabled {
		return stores
	}

	log := logger.WithModule("cache")
	client, err := cache.NewRedisClient(cfg.Cache.RedisClientConfig())
	if err != nil {
		log.Warn("redis unavailable; falling back to database-backed cache", zap.Error(err))
		return stores
	}
	stores.Redis = client
	log.Info("redis connected", zap.String("addr", cfg.Cache.Redis.Addr()))
	return stores
}

// Active returns the store requests should use.
func (s CacheStores) Active() cache.Store {
	if s.Redis != nil {
		return s.Redis
	}
	return s.Database
}

// Backend names the active store.
func (s CacheStores) Backend() string {
	if s.Redis != nil {
		return cache.BackendRedis
	}
	return cache.BackendDatabase
}

// Purger returns the database store when it is the active backend. Redis expires keys
// on its own, so it needs no purge job.
func (s CacheStores) Purger() maintenance.ExpiredPurger {
	if s.Redis != nil || s.Database == nil {
		return nil
	}
	return s.Database
}

// Close releases the Redis connection, if any.
func (s CacheStores) Close() error {
	if s.Redis == nil {
		return nil
	}
	return s.Redis.Close()
}

// Serve runs srv until ctx is cancelled, then shuts it down within timeout.
func Serve(ctx context.Context, srv *http.Server, timeout time.Duration) error {
	log := logger.WithModule("server")

	serverErr := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var errs error
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		errs = multierr.Append(errs, fmt.Errorf("graceful shutdown: %w", err))
	}
	if err, ok := <-serverErr; ok && err != nil {
		errs = multierr.Append(errs, fmt.Errorf("server error: %w", err))
	}
	if errs != nil {
		return errs
	}

	log.Info("server stopped gracefully")
	return nil
}
