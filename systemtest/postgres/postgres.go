// Package postgres runs a disposable PostgreSQL for the system tests.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const image = "postgres:17-alpine"

// Instance is a running container and the URL to reach it.
type Instance struct {
	container *postgres.PostgresContainer
	URL       string
}

// Start boots a container with user, password and database all set to name.
func Start(ctx context.Context, name string) (*Instance, error) {
	container, err := postgres.Run(ctx, image,
		postgres.WithUsername(name),
		postgres.WithPassword(name),
		postgres.WithDatabase(name),
		// The entrypoint restarts the server once after initdb.
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", image, err)
	}

	url, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = container.Terminate(context.Background())
		return nil, fmt.Errorf("connection string: %w", err)
	}
	return &Instance{container: container, URL: url}, nil
}

// Stop removes the container.
func (i *Instance) Stop() error {
	if err := i.container.Terminate(context.Background()); err != nil {
		return fmt.Errorf("terminate postgres: %w", err)
	}
	return nil
}
