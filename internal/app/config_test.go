package app

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/charlesng35/aidemo/internal/cache"
	"github.com/charlesng35/aidemo/internal/database"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	require.Equal(t, 5000, cfg.Server.Port)
	require.Equal(t, "info", cfg.Server.LogLevel)
	require.True(t, cfg.Server.RateLimit.Enabled)
	require.Equal(t, time.Minute, cfg.Server.RateLimit.Window)
	require.Empty(t, cfg.Server.TrustedProxies)

	require.Equal(t, 8080, cfg.Portfolio.Port)
	require.Len(t, cfg.Portfolio.Projects, 3)
	require.Equal(t, "/name_generator", cfg.Portfolio.Projects[1].URL)

	require.Equal(t, "sqlite", cfg.Database.Driver)
	require.Equal(t, "redis-service:6379", cfg.Cache.Redis.Addr())
	require.Equal(t, 5*time.Second, cfg.Cache.Redis.Timeout)

	require.Equal(t, time.Hour, cfg.Prediction.CacheTTL)
	require.Equal(t, "prediction:", cfg.Prediction.KeyPrefix)

	require.Equal(t, "lexicon", cfg.Sentiment.Provider)
	require.Equal(t, "distilbert-base-uncased-finetuned-sst-2-english", cfg.Sentiment.Model)

	require.Equal(t, "http://tts-service:3000/tts", cfg.TTS.URL)
	require.Equal(t, 30*time.Second, cfg.TTS.Timeout)
	require.Equal(t, "cliff", cfg.TTS.DefaultVoice)
	require.Equal(t, "mp3", cfg.TTS.Format)

	require.Equal(t, "/metrics/prometheus", cfg.Monitoring.Prometheus.Endpoint)
	require.Equal(t, "@every 10m", cfg.Maintenance.CachePurgeSchedule)
}

func TestLoadConfigFromFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join("testdata"))
	require.NoError(t, err)

	require.Equal(t, 9090, cfg.Server.Port)
	require.Equal(t, "debug", cfg.Server.LogLevel)
	require.Equal(t, "from-file", cfg.Server.SecretKey)
	require.False(t, cfg.Server.RateLimit.Enabled)
	require.Equal(t, 30*time.Second, cfg.Server.RateLimit.Window)
	require.Equal(t, []string{"10.0.0.0/8"}, cfg.Server.TrustedProxies)

	require.Equal(t, 8181, cfg.Portfolio.Port)
	require.Equal(t, "Test Author", cfg.Portfolio.Author)
	require.Equal(t, []ProjectConfig{{
		Name:        "One",
		Description: "First project",
		URL:         "https://example.com/one",
		Tags:        []string{"go", "web"},
	}}, cfg.Portfolio.Projects)

	require.Equal(t, "postgres", cfg.Database.Driver)
	require.True(t, cfg.Database.Postgres.Enabled)
	require.Equal(t, "db.example.com", cfg.Database.Postgres.Host)

	require.Equal(t, "cache.internal:6380", cfg.Cache.Redis.Addr())
	require.Equal(t, 2*time.Second, cfg.Cache.Redis.Timeout)
	require.Equal(t, "aidemo:", cfg.Cache.Redis.KeyPrefix)

	require.Equal(t, 90*time.Minute, cfg.Prediction.CacheTTL)
	require.Equal(t, "huggingface", cfg.Sentiment.Provider)
	require.Equal(t, "hf_test", cfg.Sentiment.HuggingFace.Token)
	require.Equal(t, 10*time.Second, cfg.Sentiment.HuggingFace.Timeout)

	require.Equal(t, "http://localhost:3000/tts", cfg.TTS.URL)
	require.Equal(t, "henry", cfg.TTS.DefaultVoice)
	require.Equal(t, "/prom", cfg.Monitoring.Prometheus.Endpoint)
	require.Equal(t, "@hourly", cfg.Maintenance.CachePurgeSchedule)
}

func TestLoadConfigLegacyEnvironment(t *testing.T) {
	t.Setenv("REDIS_HOST", "10.1.2.3")
	t.Setenv("REDIS_PORT", "7000")
	t.Setenv("SPEECHIFY_TTS_URL", "http://localhost:3000/tts")
	t.Setenv("SECRET_KEY", "legacy-secret")
	t.Setenv("CLOUD_DB_URI", "postgresql://user:pass@db:5432/blog")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	require.Equal(t, "10.1.2.3:7000", cfg.Cache.Redis.Addr())
	require.Equal(t, "http://localhost:3000/tts", cfg.TTS.URL)
	require.Equal(t, "legacy-secret", cfg.Server.SecretKey)
	require.Equal(t, "postgresql://user:pass@db:5432/blog", cfg.Database.DSN)
	require.Equal(t, "postgres", cfg.Database.DatabaseClientConfig().Driver)
}

func TestLoadConfigPrefixedEnvironmentWins(t *testing.T) {
	t.Setenv("REDIS_HOST", "legacy")
	t.Setenv("AIDEMO_CACHE_REDIS_HOST", "prefixed")
	t.Setenv("AIDEMO_SERVER_PORT", "7070")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	require.Equal(t, "prefixed:6379", cfg.Cache.Redis.Addr())
	require.Equal(t, 7070, cfg.Server.Port)
}

func TestRedisCacheConfigAddr(t *testing.T) {
	require.Equal(t, "", RedisCacheConfig{}.Addr())
	require.Equal(t, "redis:6379", RedisCacheConfig{Host: "redis"}.Addr())
	require.Equal(t, "explicit:1", RedisCacheConfig{Host: "redis", Port: 7000, Address: " explicit:1 "}.Addr())
}

func TestCacheConfigAdapter(t *testing.T) {
	cfg := CacheConfig{Redis: RedisCacheConfig{
		Host:      "redis",
		Port:      6380,
		Username:  " user ",
		Password:  "pass",
		DB:        2,
		TLS:       true,
		Timeout:   time.Second,
		KeyPrefix: " aidemo: ",
	}}

	require.Equal(t, cache.RedisConfig{
		Address:   "redis:6380",
		Username:  "user",
		Password:  "pass",
		DB:        2,
		TLS:       true,
		Timeout:   time.Second,
		KeyPrefix: "aidemo:",
	}, cfg.RedisClientConfig())
}

func TestDatabaseConfigAdapter(t *testing.T) {
	sqlite := DatabaseConfig{Driver: "sqlite", Path: "./data/blog.db"}
	require.Equal(t, database.Config{Driver: "sqlite", Path: "./data/blog.db"}, sqlite.DatabaseClientConfig())

	pg := DatabaseConfig{
		Driver: "postgres",
		Postgres: DBAuthConfig{
			Enabled:  true,
			Host:     "db",
			Port:     5432,
			Database: "blog",
			Username: "u",
			Password: "p",
		},
	}
	require.Equal(t, database.Config{
		Driver:   "postgres",
		Host:     "db",
		Port:     5432,
		Name:     "blog",
		User:     "u",
		Password: "p",
	}, pg.DatabaseClientConfig())

	mysqlDSN := DatabaseConfig{Driver: "sqlite", DSN: "mysql://u:p@tcp(db:3306)/blog"}
	require.Equal(t, "mysql", mysqlDSN.DatabaseClientConfig().Driver)
}
