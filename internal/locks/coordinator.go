// Package locks provides keyed, process-local mutual exclusion.
//
// A Coordinator hands out one Handle per key. Handles are reference counted
// and live in a plain table while anyone holds or waits on them, so neither
// a release nor capacity pressure can hand a second caller a fresh handle for
// a key that is still in use. A held handle expires only after the TTL, as a
// safety net for holders that never release. Released handles are parked in a
// bounded LRU and reused when their key comes back.
package locks

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/semaphore"
)

const (
	DefaultTTL      = 5 * time.Minute
	DefaultCapacity = 10000
)

// Handle is a mutex that can be waited on with a context.
type Handle struct {
	key     string
	sem     *semaphore.Weighted
	refs    int       // guarded by Coordinator.mu
	touched time.Time // guarded by Coordinator.mu
}

func newHandle(key string) *Handle {
	return &Handle{key: key, sem: semaphore.NewWeighted(1)}
}

// Lock blocks until the handle is free or ctx is done.
func (h *Handle) Lock(ctx context.Context) error {
	return h.sem.Acquire(ctx, 1)
}

func (h *Handle) Unlock() {
	h.sem.Release(1)
}

type Coordinator struct {
	mu       sync.Mutex
	ttl      time.Duration
	capacity int
	held     map[string]*Handle
	idle     *expirable.LRU[string, *Handle]
	now      func() time.Time
}

func NewCoordinator(ttl time.Duration, capacity int) *Coordinator {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Coordinator{
		ttl:      ttl,
		capacity: capacity,
		held:     make(map[string]*Handle),
		idle:     expirable.NewLRU[string, *Handle](capacity, nil, ttl),
		now:      time.Now,
	}
}

// Acquire returns the handle for key, creating it if needed. Every Acquire
// must be paired with one Release of the returned handle.
func (c *Coordinator) Acquire(key string) *Handle {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	h, ok := c.held[key]
	if ok && c.expired(h, now) {
		// abandoned: its holders can no longer unmap the key
		delete(c.held, key)
		ok = false
	}
	if !ok {
		if parked, found := c.idle.Get(key); found {
			c.idle.Remove(key)
			h = parked
		} else {
			h = newHandle(key)
		}
		c.held[key] = h
	}
	h.refs++
	h.touched = now
	if len(c.held) > c.capacity {
		c.sweep(now)
	}
	return h
}

// Release drops one reference to h. When nobody else holds or waits on it the
// key leaves the table and the handle is parked for reuse. Releasing a handle
// that already expired only settles its count.
func (c *Coordinator) Release(h *Handle) {
	if h == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	h.refs--
	if h.refs > 0 {
		return
	}
	if current, ok := c.held[h.key]; ok && current == h {
		delete(c.held, h.key)
		c.idle.Add(h.key, h)
	}
}

// WithLock runs fn while holding the lock for key.
func (c *Coordinator) WithLock(ctx context.Context, key string, fn func() error) error {
	h := c.Acquire(key)
	defer c.Release(h)

	if err := h.Lock(ctx); err != nil {
		return err
	}
	defer h.Unlock()

	return fn()
}

// Len reports the number of keys currently held or waited on.
func (c *Coordinator) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.held)
}

func (c *Coordinator) expired(h *Handle, now time.Time) bool {
	return now.Sub(h.touched) > c.ttl
}

// sweep drops expired held handles. Live ones are never evicted for space.
func (c *Coordinator) sweep(now time.Time) {
	for key, h := range c.held {
		if c.expired(h, now) {
			delete(c.held, key)
		}
	}
}
