// Package testutils starts the containers and schema the integration tests share.
package testutils

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/Black-And-White-Club/skill-ladder/app"
	"github.com/Black-And-White-Club/skill-ladder/integration_tests/containers"
)

// TestEnvironment holds the resources an integration test needs.
type TestEnvironment struct {
	Ctx           context.Context
	CancelContext context.CancelFunc
	PgContainer   *postgres.PostgresContainer
	DB            *bun.DB
	DSN           string
	Logger        *slog.Logger
	Tracer        trace.Tracer
}

var (
	sharedOnce sync.Once
	sharedEnv  *TestEnvironment
	sharedErr  error
)

// SharedEnvironment starts Postgres once per test binary and migrates it.
// Tests are skipped under -short or when Docker is unavailable.
func SharedEnvironment(t *testing.T) *TestEnvironment {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	sharedOnce.Do(func() {
		sharedEnv, sharedErr = NewTestEnvironment()
	})
	if sharedErr != nil {
		t.Skipf("integration environment unavailable: %v", sharedErr)
	}

	if err := CleanupDatabase(sharedEnv.Ctx, sharedEnv.DB); err != nil {
		t.Fatalf("failed to clean database: %v", err)
	}
	return sharedEnv
}

// NewTestEnvironment starts a Postgres container and applies every migration.
func NewTestEnvironment() (env *TestEnvironment, err error) {
	// testcontainers panics when no Docker provider can be found.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("docker unavailable: %v", r)
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	env = &TestEnvironment{
		Ctx:           ctx,
		CancelContext: cancel,
		Logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
		Tracer:        noop.NewTracerProvider().Tracer("integration"),
	}

	pgContainer, dsn, err := containers.SetupPostgresContainer(ctx)
	if err != nil {
		cancel()
		return nil, err
	}
	env.PgContainer, env.DSN = pgContainer, dsn

	db, err := app.OpenDB(ctx, dsn)
	if err != nil {
		env.Close()
		return nil, err
	}
	env.DB = db

	if err := RunMigrations(ctx, db, dsn); err != nil {
		env.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return env, nil
}

// Close releases the database and terminates the container.
func (env *TestEnvironment) Close() {
	if env.DB != nil {
		_ = env.DB.Close()
	}
	if env.PgContainer != nil {
		_ = testcontainers.TerminateContainer(env.PgContainer)
	}
	env.CancelContext()
}

// Shutdown closes the shared environment, if one was started.
func Shutdown() {
	if sharedEnv != nil {
		sharedEnv.Close()
	}
}
