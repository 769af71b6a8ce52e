// internal/common/camunda/client.go
package camunda

import (
	"context"
	"fmt"
	"time"

	"quest-workers/internal/common/config"
	"quest-workers/internal/common/logger"

	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
)

// Client wraps the Zeebe gateway connection.
type Client struct {
	zbc.Client
	requestTimeout time.Duration
}

// Connect dials the gateway and waits until it answers a topology request.
func Connect(ctx context.Context, cfg config.CamundaConfig, retry RetryConfig, log logger.Logger) (*Client, error) {
	zeebeClient, err := zbc.NewClient(&zbc.ClientConfig{
		GatewayAddress:         cfg.BrokerAddress,
		UsePlaintextConnection: cfg.Plaintext,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Zeebe client: %w", err)
	}

	c := &Client{Client: zeebeClient, requestTimeout: config.GetDuration(cfg.RequestTimeout)}

	if retry.Retryable == nil {
		retry.Retryable = IsTransient
	}
	err = RetryWithBackoff(ctx, retry, log, "Zeebe topology", func(ctx context.Context) error {
		return c.Ping(ctx)
	})
	if err != nil {
		_ = zeebeClient.Close()
		return nil, fmt.Errorf("failed to connect to Zeebe gateway at %s: %w", cfg.BrokerAddress, err)
	}
	return c, nil
}

func (c *Client) Name() string { return "zeebe" }

// Ping sends a topology request bounded by the request timeout.
func (c *Client) Ping(ctx context.Context) error {
	if c.requestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.requestTimeout)
		defer cancel()
	}
	if _, err := c.NewTopologyCommand().Send(ctx); err != nil {
		return fmt.Errorf("zeebe topology failed: %w", err)
	}
	return nil
}
