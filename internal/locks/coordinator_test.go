package locks

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquire_SameHandleForConcurrentCallers(t *testing.T) {
	c := NewCoordinator(time.Minute, 100)

	const workers = 64
	handles := make([]*Handle, workers)
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := range workers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			handles[i] = c.Acquire("owner-1")
		}(i)
	}
	close(start)
	wg.Wait()

	for _, h := range handles {
		assert.Same(t, handles[0], h)
	}
	for _, h := range handles {
		c.Release(h)
	}
	assert.Equal(t, 0, c.Len())
}

func TestWithLock_MutualExclusion(t *testing.T) {
	c := NewCoordinator(time.Minute, 100)

	var inside, maxInside, total int32
	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := c.WithLock(context.Background(), "key", func() error {
				n := atomic.AddInt32(&inside, 1)
				for {
					m := atomic.LoadInt32(&maxInside)
					if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
						break
					}
				}
				time.Sleep(time.Millisecond)
				atomic.AddInt32(&total, 1)
				atomic.AddInt32(&inside, -1)
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxInside)
	assert.Equal(t, int32(50), total)
	assert.Equal(t, 0, c.Len(), "keys should be reclaimed once every holder released")
}

func TestWithLock_DifferentKeysDoNotBlock(t *testing.T) {
	c := NewCoordinator(time.Minute, 100)

	held := c.Acquire("a")
	require.NoError(t, held.Lock(context.Background()))
	defer c.Release(held)
	defer held.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	ran := false
	require.NoError(t, c.WithLock(ctx, "b", func() error { ran = true; return nil }))
	assert.True(t, ran)
}

func TestWithLock_PropagatesError(t *testing.T) {
	c := NewCoordinator(time.Minute, 100)
	boom := errors.New("boom")

	err := c.WithLock(context.Background(), "k", func() error { return boom })

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, c.Len())
}

func TestLock_HonoursContext(t *testing.T) {
	c := NewCoordinator(time.Minute, 100)

	holder := c.Acquire("k")
	require.NoError(t, holder.Lock(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := c.WithLock(ctx, "k", func() error {
		t.Fatal("must not run while the key is held")
		return nil
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	holder.Unlock()
	c.Release(holder)
	assert.Equal(t, 0, c.Len())
}

func TestRelease_KeepsMappingWhileReferenced(t *testing.T) {
	c := NewCoordinator(time.Minute, 100)

	first := c.Acquire("k")
	second := c.Acquire("k")
	require.Same(t, first, second)

	c.Release(first)
	assert.Equal(t, 1, c.Len())
	assert.Same(t, first, c.Acquire("k"), "a waiter's handle must survive another holder's release")

	c.Release(first)
	c.Release(second)
	assert.Equal(t, 0, c.Len())
}

func TestAcquire_TTLEviction(t *testing.T) {
	c := NewCoordinator(30*time.Millisecond, 100)

	leaked := c.Acquire("k")
	time.Sleep(80 * time.Millisecond)

	fresh := c.Acquire("k")
	assert.NotSame(t, leaked, fresh)

	// releasing the stale handle must not unmap the fresh one
	c.Release(leaked)
	assert.Same(t, fresh, c.Acquire("k"))
}

func TestAcquire_CapacityNeverEvictsHeldHandles(t *testing.T) {
	c := NewCoordinator(time.Minute, 1)

	first := c.Acquire("k")
	require.NoError(t, first.Lock(context.Background()))
	other := c.Acquire("other")

	second := c.Acquire("k")
	assert.Same(t, first, second, "a held key keeps its handle under capacity pressure")
	assert.Equal(t, 2, c.Len())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, second.Lock(ctx), context.DeadlineExceeded, "second holder must wait for the first")

	first.Unlock()
	c.Release(first)
	c.Release(second)
	c.Release(other)
	assert.Equal(t, 0, c.Len())
}

func TestAcquire_SweepsExpiredHandlesOverCapacity(t *testing.T) {
	c := NewCoordinator(time.Minute, 1)
	now := time.Now()
	c.now = func() time.Time { return now }

	c.Acquire("leaked")
	now = now.Add(2 * time.Minute)
	c.Acquire("fresh")

	assert.Equal(t, 1, c.Len())
}

func TestRelease_ParksHandleForReuse(t *testing.T) {
	c := NewCoordinator(time.Minute, 10)

	h := c.Acquire("k")
	c.Release(h)
	assert.Equal(t, 0, c.Len())

	again := c.Acquire("k")
	assert.Same(t, h, again)
	require.NoError(t, again.Lock(context.Background()))
	again.Unlock()
	c.Release(again)
}
