// Package ratelimit throttles per-client request rates with token buckets.
package ratelimit

import (
	"sync"
	"time"
)

// staleAfter is how long a bucket may sit untouched before the janitor
// drops it.
const staleAfter = time.Hour

// bucket tracks the token level for one client+endpoint pair. The level
// refills continuously at rate tokens per second up to cap, and touched
// doubles as the refill anchor and the janitor's last-use marker.
type bucket struct {
	mu      sync.Mutex
	level   float64
	cap     float64
	rate    float64
	touched time.Time
}

func newBucket(capacity int, rate float64) *bucket {
	return &bucket{
		level:   float64(capacity),
		cap:     float64(capacity),
		rate:    rate,
		touched: time.Now(),
	}
}

// take refills the bucket for the elapsed time, consumes one token when
// available, and reports the post-consumption level and the time at which
// the bucket is full again. Everything happens in one critical section so
// the reported remaining count always matches the consume decision.
func (b *bucket) take() (ok bool, remaining int, reset time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	b.level += now.Sub(b.touched).Seconds() * b.rate
	if b.level > b.cap {
		b.level = b.cap
	}
	b.touched = now

	if b.level >= 1 {
		b.level--
		ok = true
	}

	reset = now
	if b.level < b.cap {
		refillSecs := (b.cap - b.level) / b.rate
		reset = now.Add(time.Duration(refillSecs * float64(time.Second)))
	}
	return ok, int(b.level), reset
}

func (b *bucket) lastUsed() time.Time {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.touched
}

// Info describes the rate limit decision for one request.
type Info struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetTime  time.Time
	RetryAfter time.Duration
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	CleanupInterval time.Duration
	Whitelist       map[string]bool
	Blacklist       map[string]bool
	EndpointConfigs []EndpointConfig
}

// Limiter hands out tokens per client and endpoint and evicts buckets
// that have gone stale.
type Limiter struct {
	cfg *Config

	mu      sync.Mutex
	buckets map[string]*bucket

	janitor *time.Ticker
	done    chan struct{}
	once    sync.Once
}

// NewLimiter creates a limiter from cfg. A nil cfg enables limiting with
// the default 1000 requests per minute and a five minute janitor sweep.
func NewLimiter(cfg *Config) *Limiter {
	if cfg == nil {
		cfg = &Config{
			Enabled:         true,
			DefaultLimit:    1000,
			DefaultWindow:   time.Minute,
			CleanupInterval: 5 * time.Minute,
			Whitelist:       map[string]bool{},
			Blacklist:       map[string]bool{},
		}
	}

	l := &Limiter{
		cfg:     cfg,
		buckets: make(map[string]*bucket),
	}
	if cfg.Enabled && cfg.CleanupInterval > 0 {
		l.janitor = time.NewTicker(cfg.CleanupInterval)
		l.done = make(chan struct{})
		go l.sweepLoop()
	}
	return l
}

// Allow decides whether clientID may hit the endpoint right now. The
// second return value carries the header fields for the response even
// when the request goes through.
func (l *Limiter) Allow(clientID, endpoint, method string) (bool, Info) {
	switch {
	case !l.cfg.Enabled, l.cfg.Whitelist[clientID]:
		return true, Info{Allowed: true}
	case l.cfg.Blacklist[clientID]:
		return false, Info{}
	}

	ec := MatchEndpoint(endpoint, method, l.cfg.EndpointConfigs)
	if ec == nil {
		ec = &EndpointConfig{
			Limit:  l.cfg.DefaultLimit,
			Window: l.cfg.DefaultWindow,
			Burst:  l.cfg.DefaultLimit,
		}
	}
	if ec.Limit <= 0 {
		// Unlimited endpoints such as the health check.
		return true, Info{Allowed: true}
	}

	key := method + " " + endpoint + " " + clientID
	ok, remaining, reset := l.bucketFor(key, ec).take()

	info := Info{
		Allowed:   ok,
		Limit:     ec.Limit,
		Remaining: remaining,
		ResetTime: reset,
	}
	if !ok {
		if wait := time.Until(reset); wait > 0 {
			info.RetryAfter = wait
		}
	}
	return ok, info
}

func (l *Limiter) bucketFor(key string, ec *EndpointConfig) *bucket {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, found := l.buckets[key]
	if !found {
		capacity := ec.Burst
		if capacity <= 0 {
			capacity = ec.Limit
		}
		b = newBucket(capacity, float64(ec.Limit)/ec.Window.Seconds())
		l.buckets[key] = b
	}
	return b
}

func (l *Limiter) sweepLoop() {
	for {
		select {
		case <-l.janitor.C:
			l.sweep(time.Now().Add(-staleAfter))
		case <-l.done:
			return
		}
	}
}

// sweep drops every bucket whose last use predates cutoff.
func (l *Limiter) sweep(cutoff time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for key, b := range l.buckets {
		if b.lastUsed().Before(cutoff) {
			delete(l.buckets, key)
		}
	}
}

// Stop shuts down the janitor goroutine. Safe to call more than once.
func (l *Limiter) Stop() {
	l.once.Do(func() {
		if l.janitor != nil {
			l.janitor.Stop()
		}
		if l.done != nil {
			close(l.done)
		}
	})
}
