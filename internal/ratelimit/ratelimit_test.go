package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimpleRateLimiterEnforcesDelay(t *testing.T) {
	r := NewSimpleRateLimiter(50*time.Millisecond, 50*time.Millisecond)

	require.NoError(t, r.Wait(context.Background()))

	start := time.Now()
	require.NoError(t, r.Wait(context.Background()))
	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
}

func TestSimpleRateLimiterHonorsCancel(t *testing.T) {
	r := NewSimpleRateLimiter(10*time.Second, 10*time.Second)
	require.NoError(t, r.Wait(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := r.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestAdaptiveRateLimiterBacksOff(t *testing.T) {
	r := NewAdaptiveRateLimiter(2*time.Second, 4*time.Second)

	for i := 0; i < 3; i++ {
		r.RecordError()
	}

	assert.Equal(t, 3*time.Second, r.minDelay)
	assert.Equal(t, 6*time.Second, r.maxDelay)
}

func TestAdaptiveRateLimiterSpeedsUpOnSuccess(t *testing.T) {
	r := NewAdaptiveRateLimiter(10*time.Second, 20*time.Second)

	for i := 0; i < 6; i++ {
		r.RecordSuccess()
	}

	assert.Equal(t, 9*time.Second, r.minDelay)
}
