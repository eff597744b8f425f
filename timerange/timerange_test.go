package timerange

import "testing"

func TestTimeRangeEarliestLatest(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name            string
		r               TimeRange
		earliest, latest int64
	}{
		{"forward", New(10, 5), 10, 14},
		{"backward", New(10, -5), 6, 10},
		{"empty", New(10, 0), 10, 9},
		{"single forward", New(0, 1), 0, 0},
		{"single backward", New(0, -1), 0, 0},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.r.Earliest(); got != tt.earliest {
				t.Errorf("Earliest() = %d, want %d", got, tt.earliest)
			}
			if got := tt.r.Latest(); got != tt.latest {
				t.Errorf("Latest() = %d, want %d", got, tt.latest)
			}
		})
	}
}

func TestTimeRangeAbs(t *testing.T) {
	t.Parallel()
	r := New(10, -5).Abs()
	if r.Start != 6 || r.Length != 5 {
		t.Errorf("Abs() = %+v, want {6 5}", r)
	}
}

func TestTimeRangeIntersection(t *testing.T) {
	t.Parallel()
	a := New(0, 10)  // 0..9
	b := New(5, 10)  // 5..14
	got := a.Intersection(b)
	if got.Earliest() != 5 || got.Latest() != 9 {
		t.Errorf("Intersection = [%d,%d], want [5,9]", got.Earliest(), got.Latest())
	}

	c := New(100, 5)
	none := a.Intersection(c)
	if !none.Empty() {
		t.Errorf("expected empty intersection, got %+v", none)
	}
}

func TestTimeRangeIncludes(t *testing.T) {
	t.Parallel()
	r := New(10, -5) // 6..10
	for _, tc := range []struct {
		t    int64
		want bool
	}{{5, false}, {6, true}, {8, true}, {10, true}, {11, false}} {
		if got := r.Includes(tc.t); got != tc.want {
			t.Errorf("Includes(%d) = %v, want %v", tc.t, got, tc.want)
		}
	}
}
