package database

import (
	"context"
	"fmt"
)

// Pinger is anything the readiness probe can check.
type Pinger interface {
	Name() string
	Ping(ctx context.Context) error
}

// PingAll checks every dependency and reports the first failure.
func PingAll(ctx context.Context, deps ...Pinger) error {
	for _, dep := range deps {
		if dep == nil {
			continue
		}
		if err := dep.Ping(ctx); err != nil {
			return fmt.Errorf("%s: %w", dep.Name(), err)
		}
	}
	return nil
}
