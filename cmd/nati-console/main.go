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

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/nati-dev/nati-console/internal/agents"
	internalhttp "github.com/nati-dev/nati-console/internal/api/http"
	"github.com/nati-dev/nati-console/internal/auth"
	"github.com/nati-dev/nati-console/internal/commands"
	"github.com/nati-dev/nati-console/internal/db"
	"github.com/nati-dev/nati-console/internal/db/sqlc"
	grpcserver "github.com/nati-dev/nati-console/internal/grpc/server"
	"github.com/nati-dev/nati-console/internal/session"
	"github.com/nati-dev/nati-console/internal/usage"
	"github.com/nati-dev/nati-console/internal/users"
)

const (
	connectTimeout  = 30 * time.Second
	shutdownTimeout = 10 * time.Second
)

var (
	AppVersion string
	logCloser  io.Closer
)

func main() {
	InitConfig()
	slog.Info("Nati Console", "version", AppVersion)

	err := run()
	if err != nil {
		slog.Error("Console exited", "error", err)
	}
	logCloser.Close()
	if err != nil {
		os.Exit(1)
	}
}

func run() error {
	if config.DB.AutoMigrate {
		if err := db.RunMigrations(config.DB.Url, config.DB.Schema); err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
	}

	connectCtx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	pool, err := db.InitDB(connectCtx, config.DB.Config)
	cancel()
	if err != nil {
		return err
	}
	defer pool.Close()

	queries := sqlc.New(pool)
	agentService := agents.NewService(queries)
	sessions := session.NewManager(agentService, commands.NewService(queries), config.Session)
	defer sessions.Stop()

	httpServer := &http.Server{
		Addr: fmt.Sprintf(":%d", config.Http.Port),
		Handler: newEngine(&internalhttp.Services{
			Sessions:  sessions,
			Auth:      auth.NewService(queries, config.JWT),
			Users:     users.NewService(queries),
			BuildLogs: agentService,
			Usage:     usage.NewService(usage.NewStore(queries), config.Usage.Location()),
			DB:        pool,
			JWTSecret: config.JWT.Secret,
		}),
	}

	var grpcSrv *grpcserver.Server
	if config.Grpc.Enabled {
		if grpcSrv, err = grpcserver.NewServer(config.Grpc.Config, pool); err != nil {
			return fmt.Errorf("grpc server: %w", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("Starting HTTP server", "address", httpServer.Addr)
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	if grpcSrv != nil {
		g.Go(grpcSrv.Start)
	}

	g.Go(func() error {
		<-ctx.Done()
		slog.Info("Shutting down servers...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("HTTP server shutdown error", "error", err)
		}
		if grpcSrv != nil {
			if err := grpcSrv.StopWithTimeout(shutdownTimeout); err != nil {
				slog.Error("gRPC server shutdown error", "error", err)
			}
		}
		return nil
	})

	err = g.Wait()
	slog.Info("Shutdown complete")
	return err
}

func newEngine(services *internalhttp.Services) *gin.Engine {
	origins := config.Http.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	engine.Use(gin.Recovery())
	internalhttp.SetupRoute(engine, services, config.Http)
	return engine
}
