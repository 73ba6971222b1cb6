package http

import (
	"github.com/gin-gonic/gin"

	"github.com/nati-dev/nati-console/internal/api/http/handler"
	"github.com/nati-dev/nati-console/internal/api/http/middleware"
	"github.com/nati-dev/nati-console/internal/db"
	"github.com/nati-dev/nati-console/internal/session"
)

type Services struct {
	Sessions  *session.Manager
	Auth      handler.Authenticator
	Users     handler.UserStore
	BuildLogs handler.BuildLogSource
	Usage     handler.Summarizer
	DB        db.Pinger
	JWTSecret string
}

func SetupRoute(engine *gin.Engine, srvs *Services, cfg Config) {
	engine.Use(middleware.RequestLogger())

	healthHandler := handler.NewHealthHandler(srvs.DB)
	engine.GET("/health", healthHandler.Check)

	authHandler := handler.NewAuthHandler(srvs.Auth)
	authGroup := engine.Group("/auth")
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)

	api := engine.Group("/api/v1")
	api.Use(middleware.JWTAuth(srvs.JWTSecret))

	agentsHandler := handler.NewAgentsHandler(srvs.Sessions, srvs.BuildLogs, cfg.BuildLogLimit)
	api.GET("/agents", agentsHandler.ListAgents)
	api.POST("/agents/refresh", agentsHandler.Refresh)
	api.PUT("/agents/selected", agentsHandler.Select)
	api.GET("/agents/stream", agentsHandler.Stream)
	api.GET("/agents/:id/build-logs", agentsHandler.ListBuildLogs)

	commandsHandler := handler.NewCommandsHandler(srvs.Sessions)
	api.POST("/commands", commandsHandler.Send)

	terminalHandler := handler.NewTerminalHandler(srvs.Sessions)
	api.GET("/terminal", terminalHandler.Lines)
	api.POST("/terminal", terminalHandler.Submit)
	api.DELETE("/terminal", terminalHandler.Clear)

	usageHandler := handler.NewUsageHandler(srvs.Usage, srvs.Sessions)
	api.GET("/usage", usageHandler.Summary)

	userHandler := handler.NewUserHandler(srvs.Users, srvs.Sessions)
	api.GET("/users/me", userHandler.Me)
	api.DELETE("/users/me", userHandler.DeleteUser)
	api.GET("/users", middleware.RequireRole("admin"), userHandler.ListUsers)
}
