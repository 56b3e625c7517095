package config

import (
	"os"
	"strconv"
)

// Environment overrides. Each DOCNORM_* variable, when set, wins over both
// defaults and the config file.
const (
	EnvWorkers       = "DOCNORM_WORKERS"
	EnvSlugMaxLength = "DOCNORM_SLUG_MAX_LENGTH"
	EnvLogLevel      = "DOCNORM_LOG_LEVEL"
	EnvLogFormat     = "DOCNORM_LOG_FORMAT"
	EnvNATSURL       = "DOCNORM_NATS_URL"
	EnvStorePath     = "DOCNORM_STORE_PATH"
)

func (c *Config) applyEnv() {
	if v, ok := envInt(EnvWorkers); ok {
		c.Batch.Workers = v
	}
	if v, ok := envInt(EnvSlugMaxLength); ok {
		c.Batch.SlugMaxLength = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv(EnvLogFormat); v != "" {
		c.Logging.Format = v
	}
	if v := os.Getenv(EnvNATSURL); v != "" {
		c.Events.Enabled = true
		c.Events.NATSURL = v
	}
	if v := os.Getenv(EnvStorePath); v != "" {
		c.Store.Enabled = true
		c.Store.Path = v
	}
}

func envInt(key string) (int, bool) {
	raw := os.Getenv(key)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}
