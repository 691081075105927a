package ratelimit

import (
	"sync"
	"time"
)

const (
	defaultLimit  = 60
	defaultWindow = 60 * time.Second
	cleanupEvery  = 10 * time.Second
)

type entry struct {
	count   int
	resetAt time.Time
}

// RateLimit is a fixed-window limiter keyed by client.
type RateLimit struct {
	limit   int
	window  time.Duration
	mu      sync.Mutex
	buckets map[string]*entry
	now     func() time.Time

	stopCh  chan struct{}
	stopped bool
}

func New(limit int, window time.Duration) *RateLimit {
	if limit < 1 {
		limit = defaultLimit
	}

	if window <= 0 {
		window = defaultWindow
	}

	return &RateLimit{
		limit:   limit,
		window:  window,
		buckets: make(map[string]*entry),
		now:     time.Now,

		stopCh: make(chan struct{}),
	}
}

// Start runs the cleanup of expired windows until Stop is called.
func (rl *RateLimit) Start() {
	go func() {
		ticker := time.NewTicker(cleanupEvery)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				rl.cleanup()
			case <-rl.stopCh:
				return
			}
		}
	}()
}

func (rl *RateLimit) Stop() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if rl.stopped {
		return
	}

	close(rl.stopCh)
	rl.stopped = true
}

// Allow reports whether key may make another request. When it may not, the returned
// duration is the time left until its window resets.
func (rl *RateLimit) Allow(key string) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()

	ent, ok := rl.buckets[key]
	if !ok || !now.Before(ent.resetAt) {
		// New window
		rl.buckets[key] = &entry{
			count:   1,
			resetAt: now.Add(rl.window),
		}

		return true, 0
	}

	if ent.count < rl.limit {
		ent.count++
		return true, 0
	}

	return false, ent.resetAt.Sub(now)
}

func (rl *RateLimit) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()

	for key, ent := range rl.buckets {
		if !now.Before(ent.resetAt) {
			delete(rl.buckets, key)
		}
	}
}
