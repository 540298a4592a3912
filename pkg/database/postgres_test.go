package database

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() Config {
	return Config{
		Host:            "localhost",
		Port:            5432,
		User:            "animehub",
		Password:        "animehub_dev_password",
		Database:        "animehub_dev",
		SSLMode:         "disable",
		MaxOpenConns:    5,
		MaxIdleConns:    2,
		ConnMaxLifetime: 5 * time.Minute,
		ConnMaxIdleTime: 2 * time.Minute,
		Timeout:         10 * time.Second,
	}
}

func TestNewDB(t *testing.T) {
	db, err := NewDB(testConfig())
	if err != nil {
		t.Skipf("Skipping test: PostgreSQL not available: %v", err)
		return
	}
	defer db.Close()

	ctx := context.Background()
	err = db.HealthCheck(ctx)
	require.NoError(t, err)

	stats := db.Stats()
	assert.GreaterOrEqual(t, stats.MaxOpenConnections, 5)
}

func TestHealthCheckCancelledContext(t *testing.T) {
	db, err := NewDB(testConfig())
	if err != nil {
		t.Skipf("Skipping test: PostgreSQL not available: %v", err)
		return
	}
	defer db.Close()

	assert.NoError(t, db.HealthCheck(context.Background()))

	cancelCtx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, db.HealthCheck(cancelCtx))
}

func TestMigrate(t *testing.T) {
	pool, err := NewPGXPool(testConfig())
	if err != nil {
		t.Skipf("Skipping test: PostgreSQL not available: %v", err)
		return
	}
	defer pool.Close()

	require.NoError(t, Migrate(context.Background(), pool))
	// Idempotent
	require.NoError(t, Migrate(context.Background(), pool))
}
