// Package movietime derives the ranges of movie time a clock will
// traverse next, for driving the demuxer and decode caches ahead of
// playback.
package movietime

import (
	"github.com/bangnoise/gohap/clock"
	"github.com/bangnoise/gohap/timerange"
)

// NextRange returns the single leg of travel the clock follows
// starting from absolute wall time, clamped to at most limit ticks.
func NextRange(c *clock.Clock, absolute, limit int64) timerange.TimeRange {
	start := c.GetTimeAt(absolute)
	if c.GetDirectionAt(absolute) == clock.Backwards {
		duration := start + 1
		if limit < duration {
			duration = limit
		}
		return timerange.New(start, -duration)
	}
	duration := c.Period - start
	if limit < duration {
		duration = limit
	}
	return timerange.New(start, duration)
}

// NextRanges walks the clock forward from absolute for duration ticks
// of wall time, returning the sequence of legs it traverses: a Loop
// clock may wrap and a Palindrome clock may turn around mid-sequence,
// so more than one leg can result.
func NextRanges(c *clock.Clock, absolute, duration int64) timerange.Sequence {
	var result timerange.Sequence
	for duration > 0 {
		next := NextRange(c, absolute, duration)
		if next.Length == 0 {
			break
		}
		length := next.Length
		if length < 0 {
			length = -length
		}
		duration -= length
		absolute += length
		result.Add(next)
	}
	return result
}
