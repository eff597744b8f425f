package cache

import (
	"sync"
	"time"

	"github.com/bangnoise/gohap/timerange"
)

// LockingCache wraps a Cache with a mutex and a condition variable so
// a consumer goroutine (the player's video frame fetch in Update) can
// block waiting for a producer (the demuxer) to store the packet it
// needs.
type LockingCache[T Item[T]] struct {
	mu   sync.Mutex
	cond *sync.Cond
	c    *Cache[T]
}

// NewLocking returns an empty LockingCache.
func NewLocking[T Item[T]]() *LockingCache[T] {
	lc := &LockingCache[T]{c: New[T]()}
	lc.cond = sync.NewCond(&lc.mu)
	return lc
}

// Store adds p to the active set and wakes any goroutine blocked in
// FetchWait.
func (lc *LockingCache[T]) Store(p T) {
	lc.mu.Lock()
	lc.c.Store(p)
	lc.mu.Unlock()
	lc.cond.Broadcast()
}

// Cache moves the active set into the stable cache.
func (lc *LockingCache[T]) Cache() {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	lc.c.Cache()
}

// Fetch returns the item covering pts without waiting.
func (lc *LockingCache[T]) Fetch(pts int64) (T, bool) {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	return lc.c.Fetch(pts)
}

// FetchWait returns the item covering pts, blocking up to timeout for
// a Store call to supply it if it is not yet present. It returns
// false if timeout elapses with nothing found.
func (lc *LockingCache[T]) FetchWait(pts int64, timeout time.Duration) (T, bool) {
	deadline := time.Now().Add(timeout)

	lc.mu.Lock()
	defer lc.mu.Unlock()

	for {
		if v, ok := lc.c.Fetch(pts); ok {
			return v, true
		}
		remaining := time.Until(deadline)
		if remaining <= 0 {
			var zero T
			return zero, false
		}
		waitWithTimeout(lc.cond, remaining)
		if time.Now().After(deadline) {
			if v, ok := lc.c.Fetch(pts); ok {
				return v, true
			}
			var zero T
			return zero, false
		}
	}
}

// FetchWaitActive is FetchWait, but also stops waiting early (returning
// false) the moment active reports false — for a consumer that should
// give up once it knows nothing more is coming, such as a video packet
// fetch abandoning once the demuxer has gone idle.
func (lc *LockingCache[T]) FetchWaitActive(pts int64, timeout time.Duration, active func() bool) (T, bool) {
	deadline := time.Now().Add(timeout)

	lc.mu.Lock()
	defer lc.mu.Unlock()

	for {
		if v, ok := lc.c.Fetch(pts); ok {
			return v, true
		}
		if !time.Now().Before(deadline) || !active() {
			var zero T
			return zero, false
		}
		waitWithTimeout(lc.cond, time.Until(deadline))
	}
}

// Limit discards entries outside rng, as Cache.Limit.
func (lc *LockingCache[T]) Limit(rng *timerange.Set) {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	lc.c.Limit(rng)
}

// Clear empties the cache.
func (lc *LockingCache[T]) Clear() {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	lc.c.Clear()
}

// waitWithTimeout wakes lc.cond.Wait() after d elapses even if no
// Broadcast occurs, by racing a timer against the condition variable
// on a helper goroutine. Caller holds cond.L.
func waitWithTimeout(cond *sync.Cond, d time.Duration) {
	timer := time.AfterFunc(d, func() {
		cond.Broadcast()
	})
	defer timer.Stop()
	cond.Wait()
}
