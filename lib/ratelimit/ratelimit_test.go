package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWindowReset(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	current := time.Date(2025, 1, 25, 12, 0, 0, 0, time.UTC)
	limiter := New(ctx, Options{
		Now: func() time.Time { return current },
	})

	first := limiter.Check(ctx, "198.51.100.7", 2, time.Second)
	require.True(t, first.Allowed)
	require.Equal(t, 1, first.Remaining)

	second := limiter.Check(ctx, "198.51.100.7", 2, time.Second)
	require.True(t, second.Allowed)
	require.Equal(t, 0, second.Remaining)

	third := limiter.Check(ctx, "198.51.100.7", 2, time.Second)
	require.False(t, third.Allowed)
	require.Equal(t, 1, third.RetryAfterSeconds)

	// a fresh window opens once the previous one has lapsed
	current = current.Add(time.Second + time.Millisecond)
	fourth := limiter.Check(ctx, "198.51.100.7", 2, time.Second)
	require.True(t, fourth.Allowed)
	require.Equal(t, 1, fourth.Remaining)
}

func TestIdentifiersCountedSeparately(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	limiter := New(ctx, Options{})

	exhausted := limiter.Check(ctx, "client-a", 1, time.Minute)
	require.True(t, exhausted.Allowed)
	denied := limiter.Check(ctx, "client-a", 1, time.Minute)
	require.False(t, denied.Allowed)

	other := limiter.Check(ctx, "client-b", 1, time.Minute)
	require.True(t, other.Allowed)
}

func TestSweepDropsExpiredWindows(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	current := time.Date(2025, 1, 25, 12, 0, 0, 0, time.UTC)
	limiter := New(ctx, Options{
		SweepInterval: time.Millisecond * 10,
		Now: func() time.Time {
			mu.Lock()
			defer mu.Unlock()
			return current
		},
	})

	limiter.Check(ctx, "client-a", 5, time.Second)
	limiter.Check(ctx, "client-b", 5, time.Second)

	mu.Lock()
	current = current.Add(time.Second * 2)
	mu.Unlock()

	require.Eventually(t, func() bool {
		limiter.mu.Lock()
		defer limiter.mu.Unlock()
		return len(limiter.windows) == 0
	}, time.Second, time.Millisecond*10)
}

func TestSweepKeepsActiveWindows(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	current := time.Date(2025, 1, 25, 12, 0, 0, 0, time.UTC)
	limiter := New(ctx, Options{
		Now: func() time.Time { return current },
	})

	limiter.Check(ctx, "client-a", 5, time.Second)
	limiter.Check(ctx, "client-b", 5, time.Minute)

	current = current.Add(time.Second * 2)
	limiter.Sweep()

	limiter.mu.Lock()
	defer limiter.mu.Unlock()
	require.Len(t, limiter.windows, 1)
	require.Contains(t, limiter.windows, "client-b")
}

func TestConcurrentChecksNeverExceedCeiling(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	limiter := New(ctx, Options{})

	var wg sync.WaitGroup
	allowed := make(chan bool, 100)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res := limiter.Check(ctx, "shared", 50, time.Minute)
			allowed <- res.Allowed
		}()
	}
	wg.Wait()
	close(allowed)

	count := 0
	for ok := range allowed {
		if ok {
			count++
		}
	}
	require.Equal(t, 50, count)
}
