package server

import (
	"context"
	"errors"
	"net"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/test/bufconn"
)

type flakyPinger struct {
	down atomic.Bool
}

func (p *flakyPinger) Ping(ctx context.Context) error {
	if p.down.Load() {
		return errors.New("connection refused")
	}
	return nil
}

func startServer(t *testing.T, pinger *flakyPinger) healthpb.HealthClient {
	t.Helper()

	srv, err := NewServer(Config{CheckInterval: 20 * time.Millisecond}, pinger)
	require.NoError(t, err)

	lis := bufconn.Listen(1024 * 1024)
	go func() {
		_ = srv.Serve(lis)
	}()
	t.Cleanup(func() {
		_ = srv.StopWithTimeout(time.Second)
	})

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return healthpb.NewHealthClient(conn)
}

// status returns UNKNOWN on RPC errors so it is safe inside Eventually.
func status(t *testing.T, client healthpb.HealthClient, service string) healthpb.HealthCheckResponse_ServingStatus {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	resp, err := client.Check(ctx, &healthpb.HealthCheckRequest{Service: service})
	if err != nil {
		return healthpb.HealthCheckResponse_UNKNOWN
	}
	return resp.GetStatus()
}

func TestHealth_ServingWhenDatabaseUp(t *testing.T) {
	client := startServer(t, &flakyPinger{})

	require.Eventually(t, func() bool {
		return status(t, client, ServiceName) == healthpb.HealthCheckResponse_SERVING
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, status(t, client, ""))
}

func TestHealth_FollowsDatabase(t *testing.T) {
	pinger := &flakyPinger{}
	client := startServer(t, pinger)

	require.Eventually(t, func() bool {
		return status(t, client, "") == healthpb.HealthCheckResponse_SERVING
	}, time.Second, 10*time.Millisecond)

	pinger.down.Store(true)
	require.Eventually(t, func() bool {
		return status(t, client, "") == healthpb.HealthCheckResponse_NOT_SERVING
	}, time.Second, 10*time.Millisecond)

	pinger.down.Store(false)
	require.Eventually(t, func() bool {
		return status(t, client, ServiceName) == healthpb.HealthCheckResponse_SERVING
	}, time.Second, 10*time.Millisecond)
}

func TestNewServer_InvalidTLS(t *testing.T) {
	_, err := NewServer(Config{TLS: TLSConfig{Enabled: true, ClientAuth: "sometimes"}}, nil)
	assert.Error(t, err)

	_, err = NewServer(Config{TLS: TLSConfig{Enabled: true, ClientAuth: "none", CertFile: "/nonexistent.pem", KeyFile: "/nonexistent.key"}}, nil)
	assert.Error(t, err)
}

func TestNewServer_AutoGenerateTLS(t *testing.T) {
	dir := t.TempDir()
	tlsCfg := TLSConfig{
		Enabled:      true,
		AutoGenerate: true,
		ClientAuth:   "require",
		CertFile:     filepath.Join(dir, "server.crt"),
		KeyFile:      filepath.Join(dir, "server.key"),
		CAFile:       filepath.Join(dir, "ca.crt"),
		CAKeyFile:    filepath.Join(dir, "ca.key"),
		Hosts:        []string{"localhost"},
	}

	srv, err := NewServer(Config{TLS: tlsCfg}, nil)
	require.NoError(t, err)
	srv.grpcServer.Stop()

	assert.FileExists(t, tlsCfg.CertFile)
	assert.FileExists(t, tlsCfg.CAFile)
}
