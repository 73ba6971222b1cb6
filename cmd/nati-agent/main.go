package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/nati-dev/nati-console/internal/agents"
	"github.com/nati-dev/nati-console/internal/api/http/handler"
	"github.com/nati-dev/nati-console/internal/api/http/middleware"
	"github.com/nati-dev/nati-console/internal/commands"
	"github.com/nati-dev/nati-console/internal/db"
	"github.com/nati-dev/nati-console/internal/db/sqlc"
	grpcclient "github.com/nati-dev/nati-console/internal/grpc/client"
	grpcserver "github.com/nati-dev/nati-console/internal/grpc/server"
	"github.com/nati-dev/nati-console/internal/heartbeat"
)

var (
	AppVersion string
	logCloser  io.Closer
)

func main() {
	InitConfig()
	defer logCloser.Close()

	slog.Info("Nati Agent", "version", AppVersion)

	checkConsole()

	initCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	pool, err := db.InitDB(initCtx, config.DB)
	cancel()
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	queries := sqlc.New(pool)
	var feed heartbeat.CommandFeed
	if config.Agent.PollCommands {
		feed = commands.NewService(queries)
	}

	reporter, err := heartbeat.NewReporter(config.Heartbeat, agents.NewService(queries), feed)
	if err != nil {
		slog.Error("Failed to create heartbeat reporter", "error", err)
		os.Exit(1)
	}
	reporter.Start()

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery(), middleware.RequestLogger())
	engine.GET("/health", handler.NewHealthHandler(pool).Check)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", config.Http.Port),
		Handler: engine,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("Starting HTTP server", "address", server.Addr)
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down agent", "session_id", config.Heartbeat.SessionID)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}
	// Stop marks the agent offline so the dashboard drops it on the next poll.
	if err := reporter.Stop(shutdownCtx); err != nil {
		slog.Error("Failed to mark agent offline", "error", err)
	}
	slog.Info("Shutdown complete")
}

// checkConsole logs whether the console reports itself healthy. The agent
// keeps running either way since it only talks to the database.
func checkConsole() {
	if config.Console.GrpcAddress == "" {
		return
	}

	tlsCfg := config.Console.TLS
	client, err := grpcclient.New(config.Console.GrpcAddress, &grpcclient.TLSConfig{
		Enabled:            tlsCfg.Enabled,
		CertFile:           tlsCfg.CertFile,
		KeyFile:            tlsCfg.KeyFile,
		CAFile:             tlsCfg.CAFile,
		ServerNameOverride: tlsCfg.ServerNameOverride,
	})
	if err != nil {
		slog.Warn("Failed to create console health client", "error", err)
		return
	}
	defer client.Close()

	status, err := client.Check(context.Background(), grpcserver.ServiceName)
	if err != nil {
		slog.Warn("Console health check failed", "address", config.Console.GrpcAddress, "error", err)
		return
	}
	if status != healthpb.HealthCheckResponse_SERVING {
		slog.Warn("Console is not serving", "address", config.Console.GrpcAddress, "status", status.String())
		return
	}
	slog.Info("Console is healthy", "address", config.Console.GrpcAddress)
}
