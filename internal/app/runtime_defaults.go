package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/charlesng35/aidemo/pkg/crypto"
)

const (
	secretKeyBytes       = 48
	defaultPredictionTTL = time.Hour
)

// ApplyRuntimeDefaults ensures critical secrets are populated even when no configuration file is supplied.
// It returns a map describing which keys were generated so callers can log the event without exposing values.
func ApplyRuntimeDefaults(cfg *Config) (map[string]bool, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	generated := make(map[string]bool)

	if strings.TrimSpace(cfg.Server.SecretKey) == "" {
		secret, err := crypto.GenerateToken(secretKeyBytes)
		if err != nil {
			return nil, fmt.Errorf("generate secret key: %w", err)
		}
		cfg.Server.SecretKey = secret
		generated["server.secret_key"] = true
	}

	if cfg.Prediction.CacheTTL <= 0 {
		cfg.Prediction.CacheTTL = defaultPredictionTTL
		generated["prediction.cache_ttl"] = true
	}

	return generated, nil
}
