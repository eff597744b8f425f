package player

import (
	"testing"
	"time"

	"github.com/bangnoise/gohap/timerange"
)

func TestVideoCacheStoreAndFetch(t *testing.T) {
	t.Parallel()
	vc := newVideoCache()
	vc.Store(videoPacket{PTS: 100, Duration: 10, Data: []byte{1, 2, 3}})

	got, ok := vc.Fetch(105)
	if !ok {
		t.Fatal("expected to fetch packet covering pts 105")
	}
	if got.PTS != 100 || len(got.Data) != 3 {
		t.Errorf("unexpected packet: %+v", got)
	}

	if _, ok := vc.Fetch(200); ok {
		t.Error("did not expect a packet covering pts 200")
	}
}

func TestVideoCacheFetchWaitReturnsOnStore(t *testing.T) {
	t.Parallel()
	vc := newVideoCache()

	done := make(chan videoPacket, 1)
	go func() {
		p, ok := vc.FetchWaitActive(100, time.Second, func() bool { return true })
		if ok {
			done <- p
		} else {
			close(done)
		}
	}()

	time.Sleep(20 * time.Millisecond)
	vc.Store(videoPacket{PTS: 100, Duration: 10, Data: []byte{9}})

	select {
	case p, ok := <-done:
		if !ok {
			t.Fatal("expected FetchWait to succeed")
		}
		if p.PTS != 100 {
			t.Errorf("PTS = %d, want 100", p.PTS)
		}
	case <-time.After(time.Second):
		t.Fatal("FetchWait did not return after Store")
	}
}

func TestVideoCacheFetchWaitTimesOut(t *testing.T) {
	t.Parallel()
	vc := newVideoCache()
	start := time.Now()
	_, ok := vc.FetchWaitActive(100, 20*time.Millisecond, func() bool { return true })
	if ok {
		t.Fatal("expected timeout, got a packet")
	}
	if time.Since(start) < 15*time.Millisecond {
		t.Errorf("returned too early: %v", time.Since(start))
	}
}

func TestVideoCacheFetchWaitAbandonsWhenInactive(t *testing.T) {
	t.Parallel()
	vc := newVideoCache()
	start := time.Now()
	_, ok := vc.FetchWaitActive(100, time.Second, func() bool { return false })
	if ok {
		t.Fatal("expected no packet when inactive")
	}
	if time.Since(start) > 200*time.Millisecond {
		t.Errorf("FetchWait should abandon quickly once inactive, took %v", time.Since(start))
	}
}

func TestVideoCacheLimitEvictsOutsideRange(t *testing.T) {
	t.Parallel()
	vc := newVideoCache()
	vc.Store(videoPacket{PTS: 0, Duration: 10, Data: []byte{1}})
	vc.Store(videoPacket{PTS: 1000, Duration: 10, Data: []byte{2}})
	vc.Cache()

	keep := &timerange.Set{}
	keep.Add(timerange.New(900, 200))
	vc.Limit(keep)

	if _, ok := vc.Fetch(5); ok {
		t.Error("expected packet at pts 0 to be evicted")
	}
	if _, ok := vc.Fetch(1005); !ok {
		t.Error("expected packet at pts 1000 to survive Limit")
	}
}
