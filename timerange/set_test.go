package timerange

import "testing"

func TestSetAddMerge(t *testing.T) {
	t.Parallel()
	s := &Set{}
	s.Add(New(10, 5)) // 10..14
	s.Add(New(20, 5)) // 20..24
	if s.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", s.Len())
	}
	// Adjacent range (15..19) should merge both into one.
	s.Add(New(15, 5))
	if s.Len() != 1 {
		t.Fatalf("Len() = %d after adjacent add, want 1 (merged)", s.Len())
	}
	if s.Earliest() != 10 || s.Latest() != 24 {
		t.Errorf("merged range = [%d,%d], want [10,24]", s.Earliest(), s.Latest())
	}
}

func TestSetAddOverlap(t *testing.T) {
	t.Parallel()
	s := &Set{}
	s.Add(New(0, 10))  // 0..9
	s.Add(New(5, 10))  // 5..14, overlaps
	if s.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", s.Len())
	}
	if s.Earliest() != 0 || s.Latest() != 14 {
		t.Errorf("merged range = [%d,%d], want [0,14]", s.Earliest(), s.Latest())
	}
}

func TestSetAddMergesThroughToFartherNeighbor(t *testing.T) {
	t.Parallel()
	s := &Set{}
	s.Add(New(0, 10))  // 0..9
	s.Add(New(20, 10)) // 20..29
	// Covers 5..24: overlaps the first range and reaches into the
	// second only once the first range's extension is accounted for.
	s.Add(New(5, 20))
	if s.Len() != 1 {
		t.Fatalf("Len() = %d, want 1 (both neighbors absorbed)", s.Len())
	}
	if s.Earliest() != 0 || s.Latest() != 29 {
		t.Errorf("merged range = [%d,%d], want [0,29]", s.Earliest(), s.Latest())
	}
}

func TestSetInvariantDisjointOrdered(t *testing.T) {
	t.Parallel()
	s := &Set{}
	s.Add(New(100, 10))
	s.Add(New(0, 10))
	s.Add(New(50, 10))
	ranges := s.Ranges()
	for i := 1; i < len(ranges); i++ {
		if ranges[i-1].Latest()+1 >= ranges[i].Earliest() {
			t.Errorf("ranges %d and %d are not properly disjoint/ordered: %+v, %+v", i-1, i, ranges[i-1], ranges[i])
		}
	}
}

func TestSetRemove(t *testing.T) {
	t.Parallel()
	s := &Set{}
	s.Add(New(0, 100)) // 0..99
	s.Remove(New(40, 20)) // remove 40..59
	ranges := s.Ranges()
	if len(ranges) != 2 {
		t.Fatalf("Len() = %d, want 2 after splitting remove", len(ranges))
	}
	if ranges[0].Earliest() != 0 || ranges[0].Latest() != 39 {
		t.Errorf("first range = [%d,%d], want [0,39]", ranges[0].Earliest(), ranges[0].Latest())
	}
	if ranges[1].Earliest() != 60 || ranges[1].Latest() != 99 {
		t.Errorf("second range = [%d,%d], want [60,99]", ranges[1].Earliest(), ranges[1].Latest())
	}
}

func TestSetRemoveEntirely(t *testing.T) {
	t.Parallel()
	s := &Set{}
	s.Add(New(10, 10))
	s.Remove(New(0, 100))
	if s.Len() != 0 {
		t.Errorf("Len() = %d, want 0", s.Len())
	}
}

func TestSetIntersection(t *testing.T) {
	t.Parallel()
	a := &Set{}
	a.Add(New(0, 50)) // 0..49
	b := &Set{}
	b.Add(New(25, 50)) // 25..74
	got := a.Intersection(b)
	if got.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", got.Len())
	}
	if got.Earliest() != 25 || got.Latest() != 49 {
		t.Errorf("intersection = [%d,%d], want [25,49]", got.Earliest(), got.Latest())
	}
}

func TestSetClear(t *testing.T) {
	t.Parallel()
	s := &Set{}
	s.Add(New(0, 10))
	s.Clear()
	if s.Len() != 0 {
		t.Errorf("Len() = %d after Clear, want 0", s.Len())
	}
}
