package timerange

// Sequence is an ordered multiset of signed ranges, preserving
// insertion order and sign. It describes a walk of the timeline under
// a Clock: MovieTime builds one range per leg of travel, forward or
// backward, and Flatten reduces it to unsigned coverage.
type Sequence struct {
	ranges []TimeRange
}

// Len returns the number of ranges in the sequence.
func (sq *Sequence) Len() int {
	return len(sq.ranges)
}

// Ranges returns the sequence's ranges in insertion order. The slice
// is owned by the caller.
func (sq *Sequence) Ranges() []TimeRange {
	out := make([]TimeRange, len(sq.ranges))
	copy(out, sq.ranges)
	return out
}

// Add appends r to the sequence.
func (sq *Sequence) Add(r TimeRange) {
	sq.ranges = append(sq.ranges, r)
}

// Remove discards the ticks of r (unsigned) from every range in the
// sequence, splitting or shortening entries and preserving their
// original sign.
func (sq *Sequence) Remove(r TimeRange) {
	if r.Length == 0 {
		return
	}
	var out []TimeRange
	for _, itr := range sq.ranges {
		if !itr.Intersects(r) {
			out = append(out, itr)
			continue
		}
		if itr.Earliest() >= r.Earliest() && itr.Latest() <= r.Latest() {
			// Entirely within the range to be removed.
			continue
		}
		if itr.Earliest() >= r.Earliest() && itr.Latest() > r.Latest() {
			// Starts within, ends after: move the start forward.
			itr = itr.setEarliest(r.Latest() + 1)
		} else if itr.Includes(r.Earliest()) {
			// Starts before the range to be removed.
			if itr.Latest() > r.Latest() {
				// Ends after: split off the tail as its own entry,
				// preserving direction.
				rem := TimeRange{Start: r.Latest() + 1, Length: itr.Latest() - r.Latest()}
				if itr.Length < 0 {
					rem.Start, rem.Length = rem.Latest(), -rem.Length
				}
				out = append(out, rem)
			}
			itr = itr.setLatest(r.Earliest() - 1)
		}
		out = append(out, itr)
	}
	sq.ranges = out
}

// RemoveSet discards every range of set from the sequence.
func (sq *Sequence) RemoveSet(set *Set) {
	for _, r := range set.ranges {
		sq.Remove(r)
	}
}

// Flatten reduces seq to its unsigned coverage, preserving the order in
// which that coverage was first touched: each step takes the Abs() of
// the current head and removes that coverage from the remaining tail,
// so overlapping legs are not double-counted.
func Flatten(seq Sequence) Sequence {
	var flattened Sequence
	for seq.Len() > 0 {
		next := seq.ranges[0].Abs()
		flattened.Add(next)
		seq.Remove(next)
	}
	return flattened
}
