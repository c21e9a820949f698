// internal/common/camunda/client.go
package camunda

import (
	"context"
	"fmt"
	"time"

	"subscription-manager/internal/common/config"

	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
)

const connectionTimeout = 10 * time.Second

// Client wraps the Zeebe gRPC client. Commands are sent once; failures are reported to the
// caller and never retried here.
type Client struct {
	client  zbc.Client
	address string
}

// NewClient connects to the broker gateway and checks it answers a topology request.
func NewClient(ctx context.Context, cfg config.CamundaConfig) (*Client, error) {
	zeebeClient, err := zbc.NewClient(&zbc.ClientConfig{
		GatewayAddress:         cfg.BrokerAddress,
		UsePlaintextConnection: cfg.Plaintext,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Zeebe client: %w", err)
	}

	c := &Client{client: zeebeClient, address: cfg.BrokerAddress}
	if err := c.HealthCheck(ctx); err != nil {
		_ = zeebeClient.Close()
		return nil, fmt.Errorf("failed to connect to Zeebe broker at %s: %w", cfg.BrokerAddress, err)
	}
	return c, nil
}

// GetClient returns the raw Zeebe client for job worker registration.
func (c *Client) GetClient() zbc.Client {
	return c.client
}

// HealthCheck performs a topology request against the broker.
func (c *Client) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, connectionTimeout)
	defer cancel()

	if _, err := c.client.NewTopologyCommand().Send(ctx); err != nil {
		return fmt.Errorf("zeebe health check failed: %w", err)
	}
	return nil
}

// Close releases the underlying gRPC connection.
func (c *Client) Close() error {
	return c.client.Close()
}
