package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"animehub/pkg/database"
)

func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	pool, err := database.NewPGXPool(database.Config{
		Host:            "localhost",
		Port:            5432,
		User:            "animehub",
		Password:        "animehub_dev_password",
		Database:        "animehub_dev",
		SSLMode:         "disable",
		MaxOpenConns:    10,
		MaxIdleConns:    2,
		ConnMaxLifetime: 5 * time.Minute,
		ConnMaxIdleTime: 2 * time.Minute,
		Timeout:         10 * time.Second,
	})
	if err != nil {
		t.Skipf("Skipping test: PostgreSQL not available: %v", err)
	}
	t.Cleanup(pool.Close)

	require.NoError(t, database.Migrate(context.Background(), pool))
	return pool
}

func TestNextIDConcurrent(t *testing.T) {
	pool := testPool(t)
	repo := NewSequenceRepository(pool)

	// Fresh counter name per run so reruns start from 1 again.
	name := fmt.Sprintf("test_%d", time.Now().UnixNano())

	const n = 16
	ids := make([]int64, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id, err := repo.NextID(context.Background(), name)
			assert.NoError(t, err)
			ids[i] = id
		}(i)
	}
	wg.Wait()

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for i, id := range ids {
		assert.Equal(t, int64(i+1), id, "ids must be distinct and gap-free")
	}
}

func TestNextIDSequential(t *testing.T) {
	pool := testPool(t)
	repo := NewSequenceRepository(pool)

	name := fmt.Sprintf("test_seq_%d", time.Now().UnixNano())

	first, err := repo.NextID(context.Background(), name)
	require.NoError(t, err)
	assert.Equal(t, int64(1), first)

	second, err := repo.NextID(context.Background(), name)
	require.NoError(t, err)
	assert.Equal(t, int64(2), second)
}
