package systemtest

import (
	"context"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/nati-dev/nati-console/internal/agents"
	internalhttp "github.com/nati-dev/nati-console/internal/api/http"
	"github.com/nati-dev/nati-console/internal/auth"
	"github.com/nati-dev/nati-console/internal/commands"
	"github.com/nati-dev/nati-console/internal/db"
	"github.com/nati-dev/nati-console/internal/db/sqlc"
	"github.com/nati-dev/nati-console/internal/session"
	"github.com/nati-dev/nati-console/internal/usage"
	"github.com/nati-dev/nati-console/internal/users"
	"github.com/nati-dev/nati-console/systemtest/postgres"
	"github.com/nati-dev/nati-console/systemtest/tests"
)

const jwtSecret = "systemtest-secret"

func TestSystemIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("starts a Postgres container")
	}

	ctx := context.Background()
	pg, err := postgres.Start(ctx, "nati")
	require.NoError(t, err)
	t.Cleanup(func() { _ = pg.Stop() })

	dbURL := pg.URL
	require.NoError(t, db.RunMigrations(dbURL, ""))

	pool, err := db.InitDB(ctx, db.Config{Url: dbURL, MaxConns: 5, MinConns: 1})
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	queries := sqlc.New(pool)
	agentService := agents.NewService(queries)
	commandService := commands.NewService(queries)
	usageStore := usage.NewStore(queries)

	sessions := session.NewManager(agentService, commandService, session.Config{
		PollInterval: time.Hour,
		SettleDelay:  50 * time.Millisecond,
	})
	t.Cleanup(sessions.Stop)

	gin.SetMode(gin.TestMode)
	engine := gin.New()
	internalhttp.SetupRoute(engine, &internalhttp.Services{
		Sessions:  sessions,
		Auth:      auth.NewService(queries, auth.Config{Secret: jwtSecret, ExpirationHours: 1}),
		Users:     users.NewService(queries),
		BuildLogs: agentService,
		Usage:     usage.NewService(usageStore, time.UTC),
		DB:        pool,
		JWTSecret: jwtSecret,
	}, internalhttp.Config{})

	env := &tests.Env{
		Router:    engine,
		JWTSecret: jwtSecret,
		Agents:    agentService,
		Commands:  commandService,
		Usage:     usageStore,
	}

	t.Run("HealthCheck", func(t *testing.T) { tests.TestHealthCheck(t, env) })
	t.Run("Register", func(t *testing.T) { tests.TestRegister(t, env) })
	t.Run("Login", func(t *testing.T) { tests.TestLogin(t, env) })
	t.Run("UserCRUD", func(t *testing.T) { tests.TestUserCRUD(t, env) })
	t.Run("Agents", func(t *testing.T) { tests.TestAgents(t, env) })
	t.Run("Commands", func(t *testing.T) { tests.TestCommands(t, env) })
	t.Run("Usage", func(t *testing.T) { tests.TestUsage(t, env) })
}
