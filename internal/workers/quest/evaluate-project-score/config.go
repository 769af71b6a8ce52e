// internal/workers/quest/evaluate-project-score/config.go
package evaluateprojectscore

import (
	"fmt"
	"time"

	"quest-workers/internal/common/config"
)

type Config struct {
	Timeout time.Duration
	// MaxRetries caps retries on transient failures. Zero defers to the
	// error code table.
	MaxRetries int
}

func DefaultConfig() *Config {
	return &Config{
		Timeout: 10 * time.Second,
	}
}

// LoadConfig reads workers.<taskType>.timeout and max_retries when set.
func LoadConfig(wcfg config.WorkerConfig) *Config {
	cfg := DefaultConfig()
	if wcfg.Timeout > 0 {
		cfg.Timeout = config.GetDuration(wcfg.Timeout)
	}
	cfg.MaxRetries = wcfg.MaxRetries
	return cfg
}

func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("max retries must not be negative")
	}
	return nil
}
