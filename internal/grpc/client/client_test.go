package client

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/test/bufconn"

	"github.com/nati-dev/nati-console/internal/grpc/server"
)

func TestCheck(t *testing.T) {
	srv, err := server.NewServer(server.Config{}, nil)
	require.NoError(t, err)

	lis := bufconn.Listen(1024 * 1024)
	go func() {
		_ = srv.Serve(lis)
	}()
	defer func() { _ = srv.StopWithTimeout(time.Second) }()

	c, err := New("passthrough:///bufnet", nil, grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
		return lis.DialContext(ctx)
	}))
	require.NoError(t, err)
	defer c.Close()

	require.Eventually(t, func() bool {
		st, err := c.Check(context.Background(), server.ServiceName)
		return err == nil && st == healthpb.HealthCheckResponse_SERVING
	}, time.Second, 10*time.Millisecond)

	_, err = c.Check(context.Background(), "unknown.Service")
	assert.Error(t, err)
}

func TestNew_MissingTLSFiles(t *testing.T) {
	_, err := New("localhost:9090", &TLSConfig{Enabled: true, CertFile: "/nope.pem", KeyFile: "/nope.key", CAFile: "/nope-ca.pem"})
	assert.Error(t, err)
}
