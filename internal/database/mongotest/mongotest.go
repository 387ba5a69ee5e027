//go:build integration

// Package mongotest chạy mongod trong container cho các test tích hợp của store.
package mongotest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.mongodb.org/mongo-driver/mongo"

	"talking_menu/config"
	"talking_menu/internal/database"
	"talking_menu/internal/global"
)

const image = "mongo:7.0"

// Start chạy một mongod mới, tạo schema và đăng ký collection vào registry toàn cục.
// Container bị hủy khi test kết thúc.
func Start(t *testing.T) *mongo.Database {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        image,
			ExposedPorts: []string{"27017/tcp"},
			WaitingFor: wait.ForLog("Waiting for connections").
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err, "Failed to start MongoDB container")

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "27017")
	require.NoError(t, err)

	cfg := &config.Configuration{
		MongoDB_ConnectionURI: fmt.Sprintf("mongodb://%s:%s", host, port.Port()),
		MongoDB_DBName:        "talking_menu_test",
	}
	client, err := database.GetInstance(cfg)
	require.NoError(t, err)

	t.Cleanup(func() {
		cleanupCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		_ = database.CloseInstance(client)
		if err := container.Terminate(cleanupCtx); err != nil {
			t.Logf("Warning: Failed to terminate container: %v", err)
		}
	})

	db := client.Database(cfg.MongoDB_DBName)
	schemaCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	require.NoError(t, database.EnsureSchema(schemaCtx, db))
	require.NoError(t, global.RegisterCollections(db))
	return db
}
