package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixedDelayIsConstant(t *testing.T) {
	d := NewFixed(3 * time.Second)

	for i := 0; i < 10; i++ {
		assert.Equal(t, 3*time.Second, d.Next())
	}
}

func TestRangeDelayStaysWithinBounds(t *testing.T) {
	min := 5 * time.Second
	max := 15 * time.Second
	d := NewRange(min, max)

	for i := 0; i < 100; i++ {
		next := d.Next()
		assert.GreaterOrEqual(t, next, min)
		assert.Less(t, next, max)
	}
}

func TestRangeWithEqualBounds(t *testing.T) {
	d := NewRange(2*time.Second, 2*time.Second)
	assert.Equal(t, 2*time.Second, d.Next())
}

func TestWaitHonorsCancellation(t *testing.T) {
	d := NewFixed(time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := d.Wait(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWaitCompletesShortDelay(t *testing.T) {
	d := NewFixed(time.Millisecond)

	require.NoError(t, d.Wait(context.Background()))
}
