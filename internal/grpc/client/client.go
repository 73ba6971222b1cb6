package client

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	grpctls "github.com/nati-dev/nati-console/internal/grpc/tls"
)

const defaultCheckTimeout = 5 * time.Second

type TLSConfig struct {
	Enabled            bool
	CertFile           string
	KeyFile            string
	CAFile             string
	ServerNameOverride string
}

// Client probes the console's grpc.health.v1 endpoint.
type Client struct {
	serverAddr string
	conn       *grpc.ClientConn
	health     healthpb.HealthClient
}

func New(serverAddr string, tlsConfig *TLSConfig, extra ...grpc.DialOption) (*Client, error) {
	opts := make([]grpc.DialOption, 0, len(extra)+1)
	if tlsConfig != nil && tlsConfig.Enabled {
		creds, err := grpctls.LoadClientCredentials(tlsConfig.CertFile, tlsConfig.KeyFile, tlsConfig.CAFile, tlsConfig.ServerNameOverride)
		if err != nil {
			return nil, fmt.Errorf("failed to load TLS credentials: %w", err)
		}
		opts = append(opts, grpc.WithTransportCredentials(creds))
	} else {
		opts = append(opts, grpc.WithTransportCredentials(insecure.NewCredentials()))
	}
	opts = append(opts, extra...)

	conn, err := grpc.NewClient(serverAddr, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create gRPC client for %s: %w", serverAddr, err)
	}

	return &Client{
		serverAddr: serverAddr,
		conn:       conn,
		health:     healthpb.NewHealthClient(conn),
	}, nil
}

// Check returns the serving status of service ("" for the whole server).
func (c *Client) Check(ctx context.Context, service string) (healthpb.HealthCheckResponse_ServingStatus, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, defaultCheckTimeout)
		defer cancel()
	}

	resp, err := c.health.Check(ctx, &healthpb.HealthCheckRequest{Service: service})
	if err != nil {
		return healthpb.HealthCheckResponse_UNKNOWN, fmt.Errorf("health check %s: %w", c.serverAddr, err)
	}
	return resp.GetStatus(), nil
}

func (c *Client) Close() error {
	return c.conn.Close()
}
