package ratelimit

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBucket_BurstThenDeny(t *testing.T) {
	b := newBucket(10, 1.0)

	for i := 0; i < 10; i++ {
		ok, _, _ := b.take()
		require.True(t, ok, "request %d should pass on a full bucket", i+1)
	}

	ok, remaining, reset := b.take()
	assert.False(t, ok)
	assert.Equal(t, 0, remaining)
	assert.True(t, reset.After(time.Now()), "reset should lie in the future")
}

func TestBucket_RefillsOverTime(t *testing.T) {
	b := newBucket(2, 10.0) // one token every 100ms

	b.take()
	b.take()
	ok, _, _ := b.take()
	require.False(t, ok, "drained bucket should deny")

	time.Sleep(150 * time.Millisecond)

	ok, _, _ = b.take()
	assert.True(t, ok, "bucket should refill after waiting")
}

func TestBucket_ReportsPostConsumptionLevel(t *testing.T) {
	b := newBucket(5, 1.0)

	for want := 4; want >= 0; want-- {
		ok, remaining, _ := b.take()
		require.True(t, ok)
		assert.Equal(t, want, remaining)
	}
}

func TestLimiter_CountsDownAndDenies(t *testing.T) {
	l := NewLimiter(&Config{
		Enabled:       true,
		DefaultLimit:  10,
		DefaultWindow: time.Minute,
	})
	defer l.Stop()

	for i := 0; i < 10; i++ {
		ok, info := l.Allow("10.0.0.1", "/archetypes", "GET")
		require.True(t, ok, "request %d", i+1)
		assert.Equal(t, 10, info.Limit)
		assert.Equal(t, 9-i, info.Remaining)
	}

	ok, info := l.Allow("10.0.0.1", "/archetypes", "GET")
	assert.False(t, ok)
	assert.Equal(t, 0, info.Remaining)
	assert.Greater(t, info.RetryAfter, time.Duration(0))
}

func TestLimiter_ClientsAreIsolated(t *testing.T) {
	l := NewLimiter(&Config{
		Enabled:       true,
		DefaultLimit:  1,
		DefaultWindow: time.Minute,
	})
	defer l.Stop()

	ok, _ := l.Allow("10.0.0.1", "/questions", "GET")
	require.True(t, ok)
	ok, _ = l.Allow("10.0.0.1", "/questions", "GET")
	require.False(t, ok, "first client exhausted its budget")

	ok, _ = l.Allow("10.0.0.2", "/questions", "GET")
	assert.True(t, ok, "second client has its own bucket")
}

func TestLimiter_Whitelist(t *testing.T) {
	l := NewLimiter(&Config{
		Enabled:       true,
		DefaultLimit:  1,
		DefaultWindow: time.Minute,
		Whitelist:     map[string]bool{"10.0.0.1": true},
	})
	defer l.Stop()

	for i := 0; i < 50; i++ {
		ok, info := l.Allow("10.0.0.1", "/simulate", "POST")
		require.True(t, ok, "whitelisted request %d", i+1)
		assert.Zero(t, info.Limit)
	}
}

func TestLimiter_Blacklist(t *testing.T) {
	l := NewLimiter(&Config{
		Enabled:       true,
		DefaultLimit:  1000,
		DefaultWindow: time.Minute,
		Blacklist:     map[string]bool{"192.0.2.7": true},
	})
	defer l.Stop()

	ok, info := l.Allow("192.0.2.7", "/score", "POST")
	assert.False(t, ok)
	assert.False(t, info.Allowed)
}

func TestLimiter_Disabled(t *testing.T) {
	l := NewLimiter(&Config{})
	defer l.Stop()

	for i := 0; i < 50; i++ {
		ok, info := l.Allow("10.0.0.1", "/simulate", "POST")
		require.True(t, ok)
		assert.Zero(t, info.Limit)
	}
}

func TestLimiter_EndpointBudgetBeatsDefault(t *testing.T) {
	l := NewLimiter(&Config{
		Enabled:       true,
		DefaultLimit:  1000,
		DefaultWindow: time.Minute,
		EndpointConfigs: []EndpointConfig{
			{Path: "/simulate", Method: "POST", Limit: 3, Window: time.Hour, Burst: 3},
		},
	})
	defer l.Stop()

	for i := 0; i < 3; i++ {
		ok, info := l.Allow("10.0.0.1", "/simulate", "POST")
		require.True(t, ok, "request %d", i+1)
		assert.Equal(t, 3, info.Limit)
	}

	ok, _ := l.Allow("10.0.0.1", "/simulate", "POST")
	assert.False(t, ok, "endpoint budget exhausted")

	ok, info := l.Allow("10.0.0.1", "/archetypes", "GET")
	require.True(t, ok, "other endpoints keep the default budget")
	assert.Equal(t, 1000, info.Limit)
}

func TestLimiter_ConcurrentExactCount(t *testing.T) {
	l := NewLimiter(&Config{
		Enabled:       true,
		DefaultLimit:  100,
		DefaultWindow: time.Minute,
	})
	defer l.Stop()

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0

	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := l.Allow("10.0.0.1", "/match", "POST"); ok {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, allowed)
}

func TestLimiter_SweepDropsStaleBuckets(t *testing.T) {
	l := NewLimiter(&Config{
		Enabled:       true,
		DefaultLimit:  10,
		DefaultWindow: time.Minute,
	})
	defer l.Stop()

	for i := 0; i < 4; i++ {
		ok, _ := l.Allow(fmt.Sprintf("10.0.0.%d", i+1), "/score", "POST")
		require.True(t, ok)
	}

	l.mu.Lock()
	count := len(l.buckets)
	l.mu.Unlock()
	require.Equal(t, 4, count)

	// A cutoff in the future makes every bucket stale.
	l.sweep(time.Now().Add(time.Minute))

	l.mu.Lock()
	count = len(l.buckets)
	l.mu.Unlock()
	assert.Zero(t, count)

	ok, info := l.Allow("10.0.0.1", "/score", "POST")
	require.True(t, ok, "evicted clients start over with a fresh bucket")
	assert.Equal(t, 9, info.Remaining)
}

func TestNewLimiter_NilConfigUsesDefaults(t *testing.T) {
	l := NewLimiter(nil)
	defer l.Stop()

	ok, info := l.Allow("10.0.0.1", "/archetypes", "GET")
	require.True(t, ok)
	assert.Equal(t, 1000, info.Limit)
}

func TestLimiter_StopIsIdempotent(t *testing.T) {
	l := NewLimiter(nil)

	l.Stop()
	assert.NotPanics(t, l.Stop)
}

func TestMatchEndpoint_DefaultTiers(t *testing.T) {
	configs := DefaultEndpointConfigs()

	ec := MatchEndpoint("/assessments", "POST", configs)
	require.NotNil(t, ec)
	assert.Equal(t, 60, ec.Limit)

	ec = MatchEndpoint("/assessments/stream", "POST", configs)
	require.NotNil(t, ec)
	assert.Equal(t, 60, ec.Limit)

	// DELETE on a specific assessment matches the "/assessments/" prefix.
	ec = MatchEndpoint("/assessments/3f2a8c1e-0000-0000-0000-000000000000", "DELETE", configs)
	require.NotNil(t, ec)
	assert.Equal(t, 100, ec.Limit)

	// The health check resolves to an unlimited budget.
	ec = MatchEndpoint("/health", "GET", configs)
	require.NotNil(t, ec)
	assert.Zero(t, ec.Limit)

	// Unconfigured routes fall back to the default limit.
	assert.Nil(t, MatchEndpoint("/archetypes", "GET", configs))
}

func TestMatchEndpoint_ExactBeatsPrefix(t *testing.T) {
	configs := []EndpointConfig{
		{Path: "/assessments/", Method: "POST", Limit: 10, Window: time.Minute},
		{Path: "/assessments/stream", Method: "POST", Limit: 60, Window: time.Minute},
	}

	ec := MatchEndpoint("/assessments/stream", "POST", configs)
	require.NotNil(t, ec)
	assert.Equal(t, 60, ec.Limit)
}

func TestMatchEndpoint_LongestPrefixWins(t *testing.T) {
	configs := []EndpointConfig{
		{Path: "/a/", Method: "GET", Limit: 1, Window: time.Minute},
		{Path: "/a/b/", Method: "GET", Limit: 2, Window: time.Minute},
	}

	ec := MatchEndpoint("/a/b/c", "GET", configs)
	require.NotNil(t, ec)
	assert.Equal(t, 2, ec.Limit)
}
