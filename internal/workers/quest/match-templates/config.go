// internal/workers/quest/match-templates/config.go
package matchtemplates

import (
	"fmt"
	"time"

	"quest-workers/internal/common/config"
)

type Config struct {
	Timeout time.Duration
	// DefaultLimit caps the shortlist when the job does not send a limit.
	// Zero returns every match.
	DefaultLimit int
	// MaxRetries caps retries on transient failures. Zero defers to the
	// error code table.
	MaxRetries int
}

func DefaultConfig() *Config {
	return &Config{
		Timeout: 15 * time.Second,
	}
}

func LoadConfig(wcfg config.WorkerConfig) *Config {
	cfg := DefaultConfig()
	if wcfg.Timeout > 0 {
		cfg.Timeout = config.GetDuration(wcfg.Timeout)
	}
	cfg.DefaultLimit = wcfg.DefaultLimit
	cfg.MaxRetries = wcfg.MaxRetries
	return cfg
}

func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.DefaultLimit < 0 {
		return fmt.Errorf("default limit must not be negative")
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("max retries must not be negative")
	}
	return nil
}
