// Package clock implements the playback clock: mapping wall time to a
// position on the timeline under a rate, a pause state and a looping
// mode, the way a transport control does.
package clock

import "math"

// Mode selects how the clock behaves once it reaches the end of its
// period.
type Mode int

const (
	// Once plays the period once and clamps at either end.
	Once Mode = iota
	// Loop wraps back to the start (or end, running backwards) on
	// reaching a boundary.
	Loop
	// Palindrome reverses direction at each boundary instead of
	// wrapping.
	Palindrome
)

// Direction is the instantaneous direction of travel.
type Direction int

const (
	Forwards Direction = iota
	Backwards
)

// Clock maps wall-clock ticks to a position within [0, Period) in Loop
// and Palindrome mode, or within [0, Period] in Once mode; while paused
// it reports its stored time. The zero value is a Once clock with rate
// 0; New returns a Loop clock at rate 1 and time -1, and callers
// typically call SyncAt before use.
//
// A Clock is not safe for concurrent use; callers serialize access
// (the player does this from its own goroutine, or under a mutex when
// shared with an audio worker).
type Clock struct {
	Period int64
	Mode   Mode

	start int64
	time  int64
	pause bool
	rate  float64
}

// New returns a Clock at rate 1, unpaused, in Loop mode, at time -1 (not
// yet synced).
func New() *Clock {
	return &Clock{Mode: Loop, time: -1, rate: 1.0}
}

func clockMod(k, n int64) int64 {
	k %= n
	if k < 0 {
		k += n
	}
	return k
}

// SyncAt establishes that the clock is at position pos at wall time t,
// given the current rate.
func (c *Clock) SyncAt(pos, t int64) {
	c.start = t - int64(float64(pos)/c.rate)
	c.time = pos
}

// GetTime returns the position last computed by SyncAt, SetTimeAt or
// SetPausedAt.
func (c *Clock) GetTime() int64 {
	return c.time
}

// GetTimeAt computes the clock's position at wall time t without
// storing it.
func (c *Clock) GetTimeAt(t int64) int64 {
	rel := int64(float64(t-c.start) * c.rate)

	if c.pause {
		return c.time
	}
	if c.Mode == Once {
		if rel > c.Period {
			return c.Period
		}
		if rel < 0 {
			if rel < -c.Period {
				return 0
			}
			return c.Period + rel
		}
		return rel
	}
	if c.Period == 0 {
		return 0
	}
	if c.Mode == Palindrome && clockMod(rel/c.Period, 2) == 1 {
		return c.Period - clockMod(rel, c.Period) - 1
	}
	return clockMod(rel, c.Period)
}

// SetTimeAt stores and returns the clock's position at wall time t.
func (c *Clock) SetTimeAt(t int64) int64 {
	c.time = c.GetTimeAt(t)
	return c.time
}

// SetPausedAt pauses or unpauses the clock at wall time t.
func (c *Clock) SetPausedAt(paused bool, t int64) {
	if c.pause == paused {
		return
	}
	if paused {
		c.SetTimeAt(t)
	} else {
		c.SyncAt(c.time, t)
	}
	c.pause = paused
}

// GetPaused reports whether the clock is paused.
func (c *Clock) GetPaused() bool {
	return c.pause
}

// GetDirectionAt reports the direction of travel at wall time t.
func (c *Clock) GetDirectionAt(t int64) Direction {
	var rel int64
	if c.pause {
		rel = c.time
	} else {
		rel = int64(float64(t-c.start) * c.rate)
	}
	if c.Period == 0 {
		return Forwards
	}
	if c.Mode == Palindrome && clockMod(rel/c.Period, 2) == 1 {
		if c.rate > 0 {
			return Backwards
		}
		return Forwards
	}
	if c.rate > 0 {
		return Forwards
	}
	return Backwards
}

// GetRate returns the current playback rate.
func (c *Clock) GetRate() float64 {
	return c.rate
}

// SetRateAt changes the playback rate, re-anchoring at wall time t so
// the clock's current position is unaffected.
func (c *Clock) SetRateAt(r float64, t int64) {
	c.rate = r
	c.SyncAt(c.time, t)
}

// GetDone reports whether a Once clock has reached the end of its
// period.
func (c *Clock) GetDone() bool {
	return c.Mode == Once && c.GetTime() == c.Period
}

// Rescale converts the clock's period, start and time fields from the
// old tick rate to the next, rounding to the nearest tick.
func (c *Clock) Rescale(old, next int) {
	c.Period = rescaleRate(c.Period, old, next)
	c.start = rescaleRate(c.start, old, next)
	c.time = rescaleRate(c.time, old, next)
}

// rescaleRate rescales a value measured in 1/old units to 1/next
// units, rounding to the nearest integer (ties away from zero), the
// way av_rescale_q treats a {1,old} -> {1,next} conversion.
func rescaleRate(v int64, old, next int) int64 {
	if old == next {
		return v
	}
	num := float64(v) * float64(next)
	den := float64(old)
	q := num / den
	if q >= 0 {
		return int64(math.Floor(q + 0.5))
	}
	return int64(math.Ceil(q - 0.5))
}
