// Package timerange implements the signed interval algebra the player
// uses to describe what part of a movie's timeline it needs cached,
// requested or delivered: a single signed TimeRange, an unsigned
// disjoint TimeRangeSet, and an ordered, sign-preserving
// TimeRangeSequence.
package timerange

// TimeRange is a signed half-open interval over an integer tick axis.
// Start is the first sample touched. Length may be negative, in which
// case the range runs backward from Start. A zero Length denotes an
// empty range.
type TimeRange struct {
	Start  int64
	Length int64
}

// New returns a TimeRange starting at start running length ticks;
// length may be negative.
func New(start, length int64) TimeRange {
	return TimeRange{Start: start, Length: length}
}

// Earliest returns the lowest tick the range covers.
func (r TimeRange) Earliest() int64 {
	if r.Length < 0 {
		return r.Start + r.Length + 1
	}
	return r.Start
}

// Latest returns the highest tick the range covers.
func (r TimeRange) Latest() int64 {
	if r.Length < 0 {
		return r.Start
	}
	return r.Start + r.Length - 1
}

// Abs returns the unsigned normalisation of r: a forward range
// covering the same ticks.
func (r TimeRange) Abs() TimeRange {
	length := r.Length
	if length < 0 {
		length = -length
	}
	return TimeRange{Start: r.Earliest(), Length: length}
}

// Empty reports whether r covers no ticks.
func (r TimeRange) Empty() bool {
	return r.Length == 0
}

// Includes reports whether t falls within [Earliest, Latest].
func (r TimeRange) Includes(t int64) bool {
	return t >= r.Earliest() && t <= r.Latest()
}

// Intersects reports whether r and o share any tick.
func (r TimeRange) Intersects(o TimeRange) bool {
	return r.Includes(o.Earliest()) || o.Includes(r.Earliest())
}

// Intersection returns the (possibly empty, forward) overlap of r and o.
func (r TimeRange) Intersection(o TimeRange) TimeRange {
	s := max64(r.Earliest(), o.Earliest())
	e := min64(r.Latest(), o.Latest())
	length := e - s + 1
	if length < 0 {
		length = 0
	}
	return TimeRange{Start: s, Length: length}
}

// setEarliest moves the low bound of r to e, preserving its Latest()
// and its sign, clamping to empty if e passes Latest().
func (r TimeRange) setEarliest(e int64) TimeRange {
	if e > r.Latest() {
		return TimeRange{Start: e, Length: 0}
	}
	if r.Length > 0 {
		r.Length += r.Start - e
		r.Start = e
	} else if r.Length < 0 {
		r.Length = -(r.Start - e + 1)
	}
	return r
}

// setLatest moves the high bound of r to l, preserving its Earliest()
// and its sign, clamping to empty if l passes Earliest().
func (r TimeRange) setLatest(l int64) TimeRange {
	if l < r.Earliest() {
		return TimeRange{Start: l, Length: 0}
	}
	if r.Length > 0 {
		r.Length = l - r.Start + 1
	} else {
		r.Length -= l - r.Start
		r.Start = l
	}
	return r
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
