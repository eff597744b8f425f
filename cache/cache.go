// Package cache implements the decode caches: an active set freshly
// filled by the demuxer or decoder, and a stable cache of items kept
// around for repeat playback (looping, scrubbing, reverse playback)
// without redecoding.
package cache

import (
	"sort"

	"github.com/bangnoise/gohap/timerange"
)

// Item is anything a Cache can store: it must report the timeline
// range it covers and support an independent copy so the cache can
// hold a reference the original owner is free to reuse or release.
type Item[T any] interface {
	Range() timerange.TimeRange
	Clone() T
}

// Cache holds items keyed by their start position, split into an
// active set (the most recently stored, not yet promoted) and a
// stable cache (promoted by Cache, subject to Limit eviction). T must
// implement Item[T]; items are stored by value (pointer types with
// value receivers implementing Item[T] work naturally).
type Cache[T Item[T]] struct {
	active map[int64]T
	stable map[int64]T
}

// New returns an empty Cache.
func New[T Item[T]]() *Cache[T] {
	return &Cache[T]{
		active: make(map[int64]T),
		stable: make(map[int64]T),
	}
}

// Store adds p to the active set, keyed by its range's start.
func (c *Cache[T]) Store(p T) {
	c.active[p.Range().Start] = p.Clone()
}

// Fetch returns the item covering pts, checking the active set before
// the stable cache, and reports whether one was found.
func (c *Cache[T]) Fetch(pts int64) (T, bool) {
	if v, ok := fetch(c.active, pts); ok {
		return v, true
	}
	return fetch(c.stable, pts)
}

func fetch[T Item[T]](m map[int64]T, pts int64) (T, bool) {
	for _, v := range m {
		if v.Range().Includes(pts) {
			return v, true
		}
	}
	var zero T
	return zero, false
}

// Clear empties both the active set and the stable cache.
func (c *Cache[T]) Clear() {
	c.active = make(map[int64]T)
	c.stable = make(map[int64]T)
}

// Cache moves the active set into the stable cache, leaving active
// empty. Items already in the stable cache at the same key are
// overwritten by the more recent active entry.
func (c *Cache[T]) Cache() {
	for k, v := range c.active {
		c.stable[k] = v
	}
	c.active = make(map[int64]T)
}

// Limit discards stable cache entries entirely outside range, and
// active entries that start before range's earliest covered tick:
// the active set holds only what might still be needed to serve
// upcoming requests, while the stable cache can retain anything
// within the requested coverage for reuse (loops, reverse playback).
func (c *Cache[T]) Limit(rng *timerange.Set) {
	c.stable = limitMap(c.stable, rng, false)
	c.active = limitMap(c.active, rng, true)
}

func limitMap[T Item[T]](m map[int64]T, rng *timerange.Set, active bool) map[int64]T {
	out := make(map[int64]T, len(m))
	if rng.Len() == 0 {
		return out
	}
	earliest := rng.Earliest()
	for k, v := range m {
		r := v.Range()
		if active {
			if r.Earliest() >= earliest {
				out[k] = v
			}
			continue
		}
		for _, kept := range rng.Ranges() {
			if kept.Intersects(r) {
				out[k] = v
				break
			}
		}
	}
	return out
}

// Keys returns the start positions currently held across both the
// active set and the stable cache, in ascending order. Intended for
// diagnostics and tests.
func (c *Cache[T]) Keys() []int64 {
	seen := make(map[int64]struct{}, len(c.active)+len(c.stable))
	for k := range c.active {
		seen[k] = struct{}{}
	}
	for k := range c.stable {
		seen[k] = struct{}{}
	}
	out := make([]int64, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
