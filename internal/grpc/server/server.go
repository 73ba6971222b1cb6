package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/nati-dev/nati-console/internal/cert"
	"github.com/nati-dev/nati-console/internal/db"
	grpctls "github.com/nati-dev/nati-console/internal/grpc/tls"
)

// ServiceName is the health-check service name reported next to the
// overall ("") status.
const ServiceName = "nati.console.Dashboard"

const defaultCheckInterval = 15 * time.Second

type TLSConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	CertFile   string `mapstructure:"cert_file"`
	KeyFile    string `mapstructure:"key_file"`
	CAFile     string `mapstructure:"ca_file"`
	ClientAuth string `mapstructure:"client_auth"`
	// AutoGenerate creates a CA and server certificate on startup when the
	// files are missing.
	AutoGenerate bool     `mapstructure:"auto_generate"`
	CAKeyFile    string   `mapstructure:"ca_key_file"`
	Hosts        []string `mapstructure:"hosts"`
}

type Config struct {
	Port          int           `mapstructure:"port"`
	Reflection    bool          `mapstructure:"reflection"`
	CheckInterval time.Duration `mapstructure:"check_interval"`
	TLS           TLSConfig     `mapstructure:"tls"`
}

// Server exposes grpc.health.v1. The status follows a periodic database ping.
type Server struct {
	grpcServer *grpc.Server
	health     *health.Server
	pinger     db.Pinger
	cfg        Config

	stopCh   chan struct{}
	stopOnce sync.Once
}

func NewServer(cfg Config, pinger db.Pinger) (*Server, error) {
	if cfg.CheckInterval <= 0 {
		cfg.CheckInterval = defaultCheckInterval
	}

	var opts []grpc.ServerOption
	if cfg.TLS.Enabled {
		if cfg.TLS.AutoGenerate {
			err := cert.EnsureServer(cert.Paths{
				CACert: cfg.TLS.CAFile,
				CAKey:  cfg.TLS.CAKeyFile,
				Cert:   cfg.TLS.CertFile,
				Key:    cfg.TLS.KeyFile,
			}, cfg.TLS.Hosts)
			if err != nil {
				return nil, fmt.Errorf("failed to generate gRPC certificates: %w", err)
			}
		}
		clientAuth, err := grpctls.ParseClientAuthType(cfg.TLS.ClientAuth)
		if err != nil {
			return nil, err
		}
		creds, err := grpctls.LoadServerCredentials(cfg.TLS.CertFile, cfg.TLS.KeyFile, cfg.TLS.CAFile, clientAuth)
		if err != nil {
			return nil, fmt.Errorf("failed to load gRPC TLS credentials: %w", err)
		}
		opts = append(opts, grpc.Creds(creds))
		slog.Info("gRPC TLS enabled", "cert_file", cfg.TLS.CertFile, "client_auth", cfg.TLS.ClientAuth)
	}

	s := &Server{
		grpcServer: grpc.NewServer(opts...),
		health:     health.NewServer(),
		pinger:     pinger,
		cfg:        cfg,
		stopCh:     make(chan struct{}),
	}
	healthpb.RegisterHealthServer(s.grpcServer, s.health)
	if cfg.Reflection {
		reflection.Register(s.grpcServer)
	}
	s.health.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
	return s, nil
}

func (s *Server) Start() error {
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", s.cfg.Port))
	if err != nil {
		return fmt.Errorf("failed to listen on port %d: %w", s.cfg.Port, err)
	}
	slog.Info("Starting gRPC server", "port", s.cfg.Port)
	return s.Serve(lis)
}

// Serve blocks serving on lis until Stop.
func (s *Server) Serve(lis net.Listener) error {
	s.updateStatus()
	go s.watchDatabase()

	if err := s.grpcServer.Serve(lis); err != nil {
		return fmt.Errorf("failed to serve gRPC: %w", err)
	}
	return nil
}

func (s *Server) watchDatabase() {
	ticker := time.NewTicker(s.cfg.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.updateStatus()
		case <-s.stopCh:
			return
		}
	}
}

func (s *Server) updateStatus() {
	status := healthpb.HealthCheckResponse_SERVING
	if s.pinger != nil && !db.Healthy(context.Background(), s.pinger) {
		status = healthpb.HealthCheckResponse_NOT_SERVING
		slog.Warn("Database unreachable, reporting NOT_SERVING")
	}
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
}

func (s *Server) Stop(ctx context.Context) error {
	slog.Info("Stopping gRPC server")

	s.stopOnce.Do(func() { close(s.stopCh) })
	s.health.Shutdown()

	stopped := make(chan struct{})
	go func() {
		s.grpcServer.GracefulStop()
		close(stopped)
	}()

	select {
	case <-stopped:
		slog.Info("gRPC server stopped gracefully")
	case <-ctx.Done():
		slog.Warn("gRPC server stop timeout, forcing shutdown")
		s.grpcServer.Stop()
	}

	return nil
}

func (s *Server) StopWithTimeout(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.Stop(ctx)
}
