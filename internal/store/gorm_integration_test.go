//go:build integration

package store_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/saulo-duarte/chronos-goals/internal/config"
	"github.com/saulo-duarte/chronos-goals/internal/store"
	"github.com/saulo-duarte/chronos-goals/internal/store/storetest"
)

// setupPostgres starts a Postgres container and returns its DSN.
func setupPostgres(t *testing.T) string {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "chronos",
			"POSTGRES_PASSWORD": "chronos",
			"POSTGRES_DB":       "chronos",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	pg, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("Failed to start Postgres container: %v", err)
	}
	t.Cleanup(func() {
		if err := pg.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate Postgres container: %v", err)
		}
	})

	host, err := pg.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}
	port, err := pg.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}
	return fmt.Sprintf("host=%s port=%s user=chronos password=chronos dbname=chronos sslmode=disable", host, port.Port())
}

func TestGormStore(t *testing.T) {
	dsn := setupPostgres(t)
	ctx := context.Background()

	db, err := config.Connect(ctx, dsn)
	require.NoError(t, err)
	s := store.NewGorm(db)
	require.NoError(t, s.Migrate(ctx))
	t.Cleanup(func() { s.Close() })

	storetest.Run(t, func(t *testing.T) store.Store {
		err := db.Exec(`TRUNCATE ambitions, key_results, quarterly_objectives, quarterly_key_results,
			actions, board_columns, progress_snapshots`).Error
		require.NoError(t, err)
		return s
	})
}
