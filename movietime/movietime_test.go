package movietime

import (
	"testing"

	"github.com/bangnoise/gohap/clock"
)

func TestNextRangeForward(t *testing.T) {
	t.Parallel()
	c := clock.New()
	c.Mode = clock.Loop
	c.Period = 100
	c.SyncAt(0, 0)

	r := NextRange(c, 0, 1000)
	if r.Start != 0 || r.Length != 100 {
		t.Errorf("NextRange = %+v, want {0 100}", r)
	}
}

func TestNextRangeBackward(t *testing.T) {
	t.Parallel()
	c := clock.New()
	c.Mode = clock.Loop
	c.Period = 1000
	c.SyncAt(500, 0)
	c.SetRateAt(-1.0, 0)

	r := NextRange(c, 0, 1000)
	if r.Start != 500 || r.Length != -501 {
		t.Errorf("NextRange = %+v, want {500 -501}", r)
	}
}

func TestNextRangeClampedByLimit(t *testing.T) {
	t.Parallel()
	c := clock.New()
	c.Mode = clock.Loop
	c.Period = 1000
	c.SyncAt(0, 0)

	r := NextRange(c, 0, 10)
	if r.Length != 10 {
		t.Errorf("NextRange length = %d, want 10 (clamped)", r.Length)
	}
}

func TestNextRangesSpansLoopWrap(t *testing.T) {
	t.Parallel()
	c := clock.New()
	c.Mode = clock.Loop
	c.Period = 100
	c.SyncAt(80, 0)

	seq := NextRanges(c, 0, 40)
	ranges := seq.Ranges()
	if len(ranges) != 2 {
		t.Fatalf("len(ranges) = %d, want 2 (wraps the loop boundary)", len(ranges))
	}
	if ranges[0].Start != 80 || ranges[0].Length != 20 {
		t.Errorf("first leg = %+v, want {80 20}", ranges[0])
	}
	if ranges[1].Start != 0 || ranges[1].Length != 20 {
		t.Errorf("second leg = %+v, want {0 20}", ranges[1])
	}
}

func TestNextRangesOnceStopsAtEnd(t *testing.T) {
	t.Parallel()
	c := clock.New()
	c.Mode = clock.Once
	c.Period = 50
	c.SyncAt(40, 0)

	seq := NextRanges(c, 0, 100)
	var total int64
	for _, r := range seq.Ranges() {
		l := r.Length
		if l < 0 {
			l = -l
		}
		total += l
	}
	if total != 10 {
		t.Errorf("total ticks traversed = %d, want 10 (clamped at period end)", total)
	}
}
