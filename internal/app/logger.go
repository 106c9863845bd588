package app

import (
	"strings"

	"github.com/charlesng35/aidemo/pkg/logger"
)

// ConfigureLogging initialises the global logger with the provided level, defaulting to info.
func ConfigureLogging(level, format, service string) error {
	level = strings.TrimSpace(level)
	if level == "" {
		level = "info"
	}
	return logger.InitWithOptions(level, logger.Options{
		Format:  strings.TrimSpace(format),
		Service: service,
	})
}
