package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMemoryLimiterAllowsUpToMax(t *testing.T) {
	l := NewMemoryLimiter(3, time.Hour)

	for i := 1; i <= 3; i++ {
		res, err := l.Take(context.Background(), GlobalKey)
		require.NoError(t, err)
		require.True(t, res.Allowed, "attempt %d", i)
		require.Equal(t, i, res.Count)
	}

	res, err := l.Take(context.Background(), GlobalKey)
	require.NoError(t, err)
	require.False(t, res.Allowed)
	require.Equal(t, 4, res.Count)
}

func TestMemoryLimiterExceedingAttemptsConsumeBudget(t *testing.T) {
	l := NewMemoryLimiter(2, time.Hour)

	for i := 0; i < 5; i++ {
		_, err := l.Take(context.Background(), GlobalKey)
		require.NoError(t, err)
	}
	res, err := l.Take(context.Background(), GlobalKey)
	require.NoError(t, err)
	require.Equal(t, 6, res.Count)
	require.False(t, res.Allowed)
}

func TestMemoryLimiterWindowReset(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	l := NewMemoryLimiter(1, time.Hour, WithClock(clock))

	res, err := l.Take(context.Background(), GlobalKey)
	require.NoError(t, err)
	require.True(t, res.Allowed)
	require.Equal(t, now.Add(time.Hour), res.ResetAt)

	res, err = l.Take(context.Background(), GlobalKey)
	require.NoError(t, err)
	require.False(t, res.Allowed)

	now = now.Add(time.Hour + time.Second)
	res, err = l.Take(context.Background(), GlobalKey)
	require.NoError(t, err)
	require.True(t, res.Allowed)
	require.Equal(t, 1, res.Count)
	require.Equal(t, now.Add(time.Hour), res.ResetAt)
}

func TestMemoryLimiterKeysAreIndependent(t *testing.T) {
	l := NewMemoryLimiter(1, time.Hour)

	res, err := l.Take(context.Background(), "actor-1")
	require.NoError(t, err)
	require.True(t, res.Allowed)

	res, err = l.Take(context.Background(), "actor-2")
	require.NoError(t, err)
	require.True(t, res.Allowed)

	res, err = l.Take(context.Background(), "actor-1")
	require.NoError(t, err)
	require.False(t, res.Allowed)
}

func TestMemoryLimiterConcurrentTakes(t *testing.T) {
	const attempts = 100
	l := NewMemoryLimiter(attempts/2, time.Hour)

	var wg sync.WaitGroup
	allowed := make(chan bool, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := l.Take(context.Background(), GlobalKey)
			require.NoError(t, err)
			allowed <- res.Allowed
		}()
	}
	wg.Wait()
	close(allowed)

	count := 0
	for a := range allowed {
		if a {
			count++
		}
	}
	require.Equal(t, attempts/2, count)

	res, err := l.Take(context.Background(), GlobalKey)
	require.NoError(t, err)
	require.Equal(t, attempts+1, res.Count)
}
