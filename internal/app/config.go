package app

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// Config represents the runtime configuration shared by the chat server and the portfolio site.
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Portfolio   PortfolioConfig   `mapstructure:"portfolio"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Cache       CacheConfig       `mapstructure:"cache"`
	Prediction  PredictionConfig  `mapstructure:"prediction"`
	Sentiment   SentimentConfig   `mapstructure:"sentiment"`
	TTS         TTSConfig         `mapstructure:"tts"`
	Monitoring  MonitoringConfig  `mapstructure:"monitoring"`
	Maintenance MaintenanceConfig `mapstructure:"maintenance"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port      int             `mapstructure:"port"`
	LogLevel  string          `mapstructure:"log_level"`
	LogFormat string          `mapstructure:"log_format"`
	SecretKey string          `mapstructure:"secret_key"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	// TrustedProxies lists the proxy addresses or CIDRs whose X-Forwarded-For is
	// honoured. Empty means the peer address is the client.
	TrustedProxies []string `mapstructure:"trusted_proxies"`
}

// RateLimitConfig bounds requests per client and route within a fixed window.
type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// PortfolioConfig configures the portfolio site.
type PortfolioConfig struct {
	Port     int             `mapstructure:"port"`
	Author   string          `mapstructure:"author"`
	Title    string          `mapstructure:"title"`
	Projects []ProjectConfig `mapstructure:"projects"`
}

// ProjectConfig is one entry on the project page.
type ProjectConfig struct {
	Name        string   `mapstructure:"name"`
	Description string   `mapstructure:"description"`
	URL         string   `mapstructure:"url"`
	Tags        []string `mapstructure:"tags"`
}

// DatabaseConfig describes connection options for the supported databases.
type DatabaseConfig struct {
	Driver   string       `mapstructure:"driver"`
	Path     string       `mapstructure:"path"`
	DSN      string       `mapstructure:"dsn"`
	Postgres DBAuthConfig `mapstructure:"postgres"`
	MySQL    DBAuthConfig `mapstructure:"mysql"`
}

// DBAuthConfig represents host based database parameters.
type DBAuthConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Database string `mapstructure:"database"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// CacheConfig describes cache backends.
type CacheConfig struct {
	Redis RedisCacheConfig `mapstructure:"redis"`
}

// RedisCacheConfig holds Redis connection options. Address wins over Host/Port when set.
type RedisCacheConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	Host      string        `mapstructure:"host"`
	Port      int           `mapstructure:"port"`
	Address   string        `mapstructure:"address"`
	Username  string        `mapstructure:"username"`
	Password  string        `mapstructure:"password"`
	DB        int           `mapstructure:"db"`
	TLS       bool          `mapstructure:"tls"`
	Timeout   time.Duration `mapstructure:"timeout"`
	KeyPrefix string        `mapstructure:"key_prefix"`
}

// Addr returns the dial address.
func (r RedisCacheConfig) Addr() string {
	if addr := strings.TrimSpace(r.Address); addr != "" {
		return addr
	}
	host := strings.TrimSpace(r.Host)
	if host == "" {
		return ""
	}
	port := r.Port
	if port <= 0 {
		port = 6379
	}
	return net.JoinHostPort(host, strconv.Itoa(port))
}

// PredictionConfig controls how sentiment results are cached.
type PredictionConfig struct {
	CacheTTL  time.Duration `mapstructure:"cache_ttl"`
	KeyPrefix string        `mapstructure:"key_prefix"`
}

// SentimentConfig selects the classifier backing /predict.
type SentimentConfig struct {
	Provider    string            `mapstructure:"provider"`
	Model       string            `mapstructure:"model"`
	HuggingFace HuggingFaceConfig `mapstructure:"huggingface"`
}

// HuggingFaceConfig configures the hosted inference client.
type HuggingFaceConfig struct {
	Endpoint string        `mapstructure:"endpoint"`
	Token    string        `mapstructure:"token"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// TTSConfig points at the text-to-speech service.
type TTSConfig struct {
	URL          string        `mapstructure:"url"`
	Timeout      time.Duration `mapstructure:"timeout"`
	DefaultVoice string        `mapstructure:"default_voice"`
	Format       string        `mapstructure:"format"`
}

// MonitoringConfig enables health checks and metrics.
type MonitoringConfig struct {
	Prometheus PrometheusConfig `mapstructure:"prometheus"`
	Health     HealthConfig     `mapstructure:"health_check"`
}

// PrometheusConfig toggles metrics endpoints.
type PrometheusConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
}

// HealthConfig toggles health endpoints.
type HealthConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// MaintenanceConfig schedules background jobs.
type MaintenanceConfig struct {
	CachePurgeSchedule string `mapstructure:"cache_purge_schedule"`
}

// legacyEnv maps config keys to the plain variables used by existing deployments.
var legacyEnv = map[string]string{
	"cache.redis.host":   "REDIS_HOST",
	"cache.redis.port":   "REDIS_PORT",
	"tts.url":            "SPEECHIFY_TTS_URL",
	"server.secret_key":  "SECRET_KEY",
	"database.dsn":       "CLOUD_DB_URI",
	"sentiment.provider": "SENTIMENT_PROVIDER",
}

// LoadConfig initialises application configuration using Viper with sensible defaults.
func LoadConfig(paths ...string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.AddConfigPath("./config")
	for _, path := range paths {
		v.AddConfigPath(path)
	}

	setDefaults(v)

	v.SetEnvPrefix("AIDEMO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, env := range legacyEnv {
		prefixed := "AIDEMO_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, env); err != nil {
			return nil, fmt.Errorf("config: bind %s: %w", env, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var cfgErr viper.ConfigFileNotFoundError
		if !errors.As(err, &cfgErr) {
			return nil, fmt.Errorf("config: read file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config, decodeHook()); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 5000)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.log_format", "json")
	v.SetDefault("server.secret_key", "")
	v.SetDefault("server.rate_limit.enabled", true)
	v.SetDefault("server.rate_limit.requests", 120)
	v.SetDefault("server.rate_limit.window", "1m")
	v.SetDefault("server.trusted_proxies", []string{})

	v.SetDefault("portfolio.port", 8080)
	v.SetDefault("portfolio.author", "Charles Ng")
	v.SetDefault("portfolio.title", "Projects")
	v.SetDefault("portfolio.projects", defaultProjects())

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "./data/blog.db")
	v.SetDefault("database.dsn", "")

	v.SetDefault("cache.redis.enabled", true)
	v.SetDefault("cache.redis.host", "redis-service")
	v.SetDefault("cache.redis.port", 6379)
	v.SetDefault("cache.redis.address", "")
	v.SetDefault("cache.redis.username", "")
	v.SetDefault("cache.redis.password", "")
	v.SetDefault("cache.redis.db", 0)
	v.SetDefault("cache.redis.tls", false)
	v.SetDefault("cache.redis.timeout", "5s")
	v.SetDefault("cache.redis.key_prefix", "")

	v.SetDefault("prediction.cache_ttl", "1h")
	v.SetDefault("prediction.key_prefix", "prediction:")

	v.SetDefault("sentiment.provider", "lexicon")
	v.SetDefault("sentiment.model", "distilbert-base-uncased-finetuned-sst-2-english")
	v.SetDefault("sentiment.huggingface.endpoint", "https://api-inference.huggingface.co/models")
	v.SetDefault("sentiment.huggingface.token", "")
	v.SetDefault("sentiment.huggingface.timeout", "30s")

	v.SetDefault("tts.url", "http://tts-service:3000/tts")
	v.SetDefault("tts.timeout", "30s")
	v.SetDefault("tts.default_voice", "cliff")
	v.SetDefault("tts.format", "mp3")

	v.SetDefault("monitoring.prometheus.enabled", true)
	v.SetDefault("monitoring.prometheus.endpoint", "/metrics/prometheus")
	v.SetDefault("monitoring.health_check.enabled", true)

	v.SetDefault("maintenance.cache_purge_schedule", "@every 10m")
}

func defaultProjects() []map[string]interface{} {
	return []map[string]interface{}{
		{
			"name":        "AI Sentiment Analysis Chat",
			"description": "Sentiment classification behind a Redis cache with a text-to-speech proxy, deployed on Kubernetes.",
			"url":         "/",
			"tags":        []string{"kubernetes", "redis", "ml"},
		},
		{
			"name":        "Code Name Generator",
			"description": "Combines your favourite thing and your pet's name into a code name.",
			"url":         "/name_generator",
			"tags":        []string{"forms"},
		},
		{
			"name":        "Treasure Island",
			"description": "A branching text adventure played in the terminal.",
			"url":         "",
			"tags":        []string{"cli", "game"},
		},
	}
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}
