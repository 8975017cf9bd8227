package app

import (
	"strings"

	"github.com/charlesng35/coffeeshop/pkg/logger"
)

// ConfigureLogging initialises the global logger from the server settings, defaulting to json at info.
func ConfigureLogging(cfg ServerConfig) error {
	level := strings.TrimSpace(cfg.LogLevel)
	if level == "" {
		level = "info"
	}
	format := strings.ToLower(strings.TrimSpace(cfg.LogFormat))
	if format == "" {
		format = "json"
	}
	return logger.Init(logger.Options{Level: level, Format: format})
}
