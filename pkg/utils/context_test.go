package utils

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithTimeoutSetsDeadline(t *testing.T) {
	ctx, cancel := WithTimeout(context.Background())
	defer cancel()

	deadline, ok := ctx.Deadline()
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(DefaultTimeout), deadline, time.Second)
}

func TestWithLongTimeoutExceedsDefault(t *testing.T) {
	shortCtx, shortCancel := WithTimeout(context.Background())
	defer shortCancel()
	longCtx, longCancel := WithLongTimeout(context.Background())
	defer longCancel()

	shortDeadline, _ := shortCtx.Deadline()
	longDeadline, _ := longCtx.Deadline()
	assert.True(t, longDeadline.After(shortDeadline))
}

func TestWithTimeoutKeepsEarlierDeadline(t *testing.T) {
	parent, parentCancel := context.WithTimeout(context.Background(), time.Second)
	defer parentCancel()

	ctx, cancel := WithTimeout(parent)
	defer cancel()

	deadline, ok := ctx.Deadline()
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(time.Second), deadline, 500*time.Millisecond)
}
