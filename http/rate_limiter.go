package http

import (
	"sync"
	"time"
)

// idleWindows is how many quiet windows a client may sit out before its
// bucket is dropped.
const idleWindows = 60

type bucket struct {
	tokens   int
	refilled time.Time
	seen     time.Time
}

// Decision is the outcome of one Allow call.
type Decision struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// RateLimiter hands each client capacity tokens per window. The bucket is
// refilled in full once the window has passed since the last refill.
type RateLimiter struct {
	mu       sync.Mutex
	capacity int
	window   time.Duration
	buckets  map[string]*bucket
	now      func() time.Time

	done     chan struct{}
	stopOnce sync.Once
}

func NewRateLimiter(capacity int, window time.Duration) *RateLimiter {
	if window <= 0 {
		window = time.Minute
	}
	rl := &RateLimiter{
		capacity: capacity,
		window:   window,
		buckets:  make(map[string]*bucket),
		now:      time.Now,
		done:     make(chan struct{}),
	}
	go rl.sweepLoop(window * idleWindows / 2)
	return rl
}

func (r *RateLimiter) sweepLoop(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.sweep()
		case <-r.done:
			return
		}
	}
}

// sweep forgets clients that have not been seen for idleWindows windows.
func (r *RateLimiter) sweep() {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-r.window * idleWindows)
	for client, b := range r.buckets {
		if b.seen.Before(cutoff) {
			delete(r.buckets, client)
		}
	}
}

func (r *RateLimiter) Stop() {
	r.stopOnce.Do(func() { close(r.done) })
}

// Allow takes a token for client.
func (r *RateLimiter) Allow(client string) Decision {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	b, ok := r.buckets[client]
	if !ok || now.Sub(b.refilled) >= r.window {
		if !ok {
			b = &bucket{}
			r.buckets[client] = b
		}
		b.tokens = r.capacity
		b.refilled = now
	}
	b.seen = now

	if b.tokens <= 0 {
		return Decision{RetryAfter: b.refilled.Add(r.window).Sub(now)}
	}
	b.tokens--
	return Decision{Allowed: true, Remaining: b.tokens}
}
