package clock

import "testing"

func TestClockOnceClampsAtEnds(t *testing.T) {
	t.Parallel()
	c := New()
	c.Mode = Once
	c.Period = 100
	c.SyncAt(0, 0)

	if got := c.GetTimeAt(50); got != 50 {
		t.Errorf("GetTimeAt(50) = %d, want 50", got)
	}
	if got := c.GetTimeAt(200); got != 100 {
		t.Errorf("GetTimeAt(200) = %d, want 100 (clamped)", got)
	}
	if got := c.GetTimeAt(-200); got != 0 {
		t.Errorf("GetTimeAt(-200) = %d, want 0 (clamped)", got)
	}
}

func TestClockOnceDone(t *testing.T) {
	t.Parallel()
	c := New()
	c.Mode = Once
	c.Period = 100
	c.SyncAt(0, 0)
	c.SetTimeAt(100)
	if !c.GetDone() {
		t.Errorf("GetDone() = false at period end, want true")
	}
	c.SetTimeAt(50)
	if c.GetDone() {
		t.Errorf("GetDone() = true mid-period, want false")
	}
}

func TestClockLoopWraps(t *testing.T) {
	t.Parallel()
	c := New()
	c.Mode = Loop
	c.Period = 100
	c.SyncAt(0, 0)

	if got := c.GetTimeAt(150); got != 50 {
		t.Errorf("GetTimeAt(150) = %d, want 50", got)
	}
	if got := c.GetTimeAt(260); got != 60 {
		t.Errorf("GetTimeAt(260) = %d, want 60", got)
	}
}

func TestClockPalindromeReverses(t *testing.T) {
	t.Parallel()
	c := New()
	c.Mode = Palindrome
	c.Period = 100
	c.SyncAt(0, 0)

	// First leg: plain forward progression.
	if got := c.GetTimeAt(50); got != 50 {
		t.Errorf("GetTimeAt(50) = %d, want 50", got)
	}
	// Second leg (t in [100,200)): mirrored, counting back down.
	if got := c.GetTimeAt(150); got != 49 {
		t.Errorf("GetTimeAt(150) = %d, want 49", got)
	}
	if got := c.GetDirectionAt(150); got != Backwards {
		t.Errorf("GetDirectionAt(150) = %v, want Backwards", got)
	}
	if got := c.GetDirectionAt(50); got != Forwards {
		t.Errorf("GetDirectionAt(50) = %v, want Forwards", got)
	}
}

func TestClockPauseFreezesPosition(t *testing.T) {
	t.Parallel()
	c := New()
	c.Mode = Loop
	c.Period = 100
	c.SyncAt(0, 0)
	c.SetPausedAt(true, 30)
	if got := c.GetTime(); got != 30 {
		t.Errorf("GetTime() after pause = %d, want 30", got)
	}
	if got := c.GetTimeAt(90); got != 30 {
		t.Errorf("GetTimeAt() while paused = %d, want 30 (frozen)", got)
	}
	c.SetPausedAt(false, 90)
	if got := c.GetTimeAt(90); got != 30 {
		t.Errorf("GetTimeAt() on unpause at same t = %d, want 30", got)
	}
	if got := c.GetTimeAt(100); got != 40 {
		t.Errorf("GetTimeAt() 10 ticks after unpause = %d, want 40", got)
	}
}

func TestClockRateChangePreservesPosition(t *testing.T) {
	t.Parallel()
	c := New()
	c.Mode = Loop
	c.Period = 1000
	c.SyncAt(0, 0)
	c.SetTimeAt(100)
	c.SetRateAt(2.0, 100)
	if got := c.GetTimeAt(100); got != 100 {
		t.Errorf("GetTimeAt() right after rate change = %d, want 100", got)
	}
	if got := c.GetTimeAt(150); got != 200 {
		t.Errorf("GetTimeAt() 50 ticks after 2x rate change = %d, want 200", got)
	}
}

func TestClockNegativeRateReversesDirection(t *testing.T) {
	t.Parallel()
	c := New()
	c.Mode = Loop
	c.Period = 1000
	c.SyncAt(500, 0)
	c.SetRateAt(-1.0, 0)
	if got := c.GetDirectionAt(0); got != Backwards {
		t.Errorf("GetDirectionAt() with negative rate = %v, want Backwards", got)
	}
	if got := c.GetTimeAt(100); got != 400 {
		t.Errorf("GetTimeAt(100) with rate -1 = %d, want 400", got)
	}
}

func TestClockRescale(t *testing.T) {
	t.Parallel()
	c := New()
	c.Mode = Loop
	c.Period = 100
	c.SyncAt(50, 0)
	c.Rescale(1, 2)
	if c.Period != 200 {
		t.Errorf("Period after 1->2 rescale = %d, want 200", c.Period)
	}
	if c.time != 100 {
		t.Errorf("time after 1->2 rescale = %d, want 100", c.time)
	}
}
