package db

import (
	"context"
	"fmt"
	"io"
	"log"
	"testing"
	"time"

	"catalog-post/pkg/domain"

	"github.com/docker/go-connections/nat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// startContainer starts image and returns host:port of the exposed port.
// The test is skipped when Docker is not available.
func startContainer(t *testing.T, req testcontainers.ContainerRequest, port string) string {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	// suppress logging
	testcontainers.Logger = log.New(io.Discard, "", 0)

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Skipf("container %s unavailable: %v", req.Image, err)
	}
	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	mapped, err := container.MappedPort(ctx, nat.Port(port))
	require.NoError(t, err)
	return fmt.Sprintf("%s:%s", host, mapped.Port())
}

func sampleRuns(base time.Time) []domain.RunRecord {
	return []domain.RunRecord{
		{RunID: "run-1", StartedAt: base, FinishedAt: base.Add(time.Second), Outcome: "no_new_items", Candidates: 0},
		{RunID: "run-2", StartedAt: base.Add(time.Hour), FinishedAt: base.Add(time.Hour + time.Second),
			Outcome: "published", Title: "B", ProductID: "RJ2", PostID: "11", Candidates: 3, Duplicates: 1},
	}
}

func TestRunStore_Postgres(t *testing.T) {
	addr := startContainer(t, testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "catalog",
			"POSTGRES_PASSWORD": "catalog",
			"POSTGRES_DB":       "catalogpost",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(time.Minute),
	}, "5432/tcp")

	ctx := context.Background()
	pg := NewPostgresClient(PostgresConfig{
		DSN: fmt.Sprintf("postgres://catalog:catalog@%s/catalogpost?sslmode=disable", addr),
	})
	require.NoError(t, pg.Connect(ctx))
	defer pg.Close()

	store := NewRunStore(pg)
	require.NoError(t, store.EnsureSchema(ctx))
	require.NoError(t, store.EnsureSchema(ctx))

	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	runs := sampleRuns(base)
	require.NoError(t, store.SaveRun(ctx, runs[0]))
	require.NoError(t, store.SaveRuns(ctx, runs))

	runs[0].Outcome = "failed"
	runs[0].Error = "fetch catalog: boom"
	require.NoError(t, store.SaveRun(ctx, runs[0]))

	got, err := store.RecentRuns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "run-2", got[0].RunID)
	assert.Equal(t, "RJ2", got[0].ProductID)
	assert.Equal(t, "failed", got[1].Outcome)
	assert.Equal(t, "fetch catalog: boom", got[1].Error)

	got, err = store.RecentRuns(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestClient_Mongo(t *testing.T) {
	addr := startContainer(t, testcontainers.ContainerRequest{
		Image:        "mongo:7",
		ExposedPorts: []string{"27017/tcp"},
		WaitingFor:   wait.ForListeningPort("27017/tcp").WithStartupTimeout(time.Minute),
	}, "27017/tcp")

	ctx := context.Background()
	client := NewClient("mongodb://"+addr, "catalogpost", "runs")
	require.NoError(t, client.Connect(ctx))
	defer client.Close(ctx)

	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	for _, run := range sampleRuns(base) {
		require.NoError(t, client.SaveRun(ctx, run))
	}
	// Upsert by run id, no duplicate document.
	require.NoError(t, client.SaveRun(ctx, sampleRuns(base)[1]))

	got, err := client.RecentRuns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "run-2", got[0].RunID)
	assert.Equal(t, "B", got[0].Title)
	assert.True(t, got[1].StartedAt.Equal(base))
}
